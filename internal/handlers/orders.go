package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/imrishuroy/topup-storefront/internal/apperr"
	"github.com/imrishuroy/topup-storefront/internal/checkout"
	"github.com/imrishuroy/topup-storefront/internal/orders"
	"github.com/imrishuroy/topup-storefront/internal/sales"
	"github.com/imrishuroy/topup-storefront/internal/validation"
)

// statusRequest is the PUT /order/:id body. "note" is accepted as an alias
// of "notes".
type statusRequest struct {
	Status orders.Status `json:"status" validate:"required"`
	Notes  *string       `json:"notes"`
	Note   *string       `json:"note"`
}

func (r statusRequest) patch() orders.StatusPatch {
	note := r.Notes
	if note == nil {
		note = r.Note
	}
	return orders.StatusPatch{Status: r.Status, Note: note}
}

func registerOrderRoutes(r *gin.RouterGroup, cfg HandlerConfig) {
	r.POST("/order", func(c *gin.Context) {
		var o orders.Order
		if err := validation.DecodeStrict(c.Request.Body, &o); err != nil {
			writeError(c, err)
			return
		}
		created, err := cfg.Orders.Create(c.Request.Context(), o)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "id": created.ID})
	})

	r.GET("/orders", func(c *gin.Context) {
		list, err := cfg.Orders.ListAll(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		orders.SortNewestFirst(list)
		c.JSON(http.StatusOK, gin.H{"orders": list})
	})

	r.GET("/order/:id", func(c *gin.Context) {
		o, err := cfg.Orders.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"order": o})
	})

	r.PUT("/order/:id", func(c *gin.Context) {
		var req statusRequest
		if err := validation.BindAndValidate(c, &req, cfg.Validator); err != nil {
			return
		}
		o, err := cfg.Orders.UpdateStatus(c.Request.Context(), c.Param("id"), req.patch())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "order": o})
	})

	r.DELETE("/orders", func(c *gin.Context) {
		n, err := cfg.Orders.DeleteAll(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "count": n})
	})

	r.POST("/checkout", func(c *gin.Context) {
		var req checkout.Request
		if err := validation.DecodeStrict(c.Request.Body, &req); err != nil {
			writeError(c, err)
			return
		}
		res, err := cfg.Checkout.Checkout(c.Request.Context(), req)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success":     true,
			"id":          res.Order.ID,
			"totalAmount": res.Order.TotalAmount,
			"message":     res.Message,
		})
	})

	r.GET("/dashboard", func(c *gin.Context) {
		month := c.Query("month")
		if month != "" && !sales.ValidMonth(month) {
			writeError(c, apperr.Validation("month", "expected YYYY-MM, got %q", month))
			return
		}
		v, err := cfg.Dashboard.View(c.Request.Context(), month)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, v)
	})
}
