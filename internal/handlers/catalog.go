package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/imrishuroy/topup-storefront/internal/catalog"
	"github.com/imrishuroy/topup-storefront/internal/validation"
)

type saveCatalogRequest struct {
	Catalog []catalog.Game `json:"catalog" validate:"required,dive"`
}

type savePaymentsRequest struct {
	Payments []catalog.Payment `json:"payments" validate:"required,dive"`
}

type saveSettingsRequest struct {
	Settings *catalog.Settings `json:"settings" validate:"required"`
}

func registerCatalogRoutes(r *gin.RouterGroup, cfg HandlerConfig) {
	r.GET("/catalog", func(c *gin.Context) {
		games, err := cfg.Catalog.Games(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"catalog": games})
	})

	r.POST("/catalog", func(c *gin.Context) {
		var req saveCatalogRequest
		if err := validation.BindAndValidate(c, &req, cfg.Validator); err != nil {
			return
		}
		if err := cfg.Catalog.SaveGames(c.Request.Context(), req.Catalog); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	r.GET("/payments", func(c *gin.Context) {
		payments, err := cfg.Catalog.Payments(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"payments": payments})
	})

	r.POST("/payments", func(c *gin.Context) {
		var req savePaymentsRequest
		if err := validation.BindAndValidate(c, &req, cfg.Validator); err != nil {
			return
		}
		if err := cfg.Catalog.SavePayments(c.Request.Context(), req.Payments); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	r.GET("/settings", func(c *gin.Context) {
		st, err := cfg.Catalog.Settings(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"settings": st})
	})

	r.POST("/settings", func(c *gin.Context) {
		var req saveSettingsRequest
		if err := validation.BindAndValidate(c, &req, cfg.Validator); err != nil {
			return
		}
		if err := cfg.Catalog.SaveSettings(c.Request.Context(), *req.Settings); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
}
