package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/imrishuroy/topup-storefront/internal/apperr"
	"github.com/imrishuroy/topup-storefront/internal/assets"
)

// maxUploadBody caps the multipart request: the file plus form overhead.
const maxUploadBody = assets.MaxUploadBytes + 1<<20

func registerUploadRoutes(r *gin.RouterGroup, cfg HandlerConfig) {
	r.POST("/upload-receipt", uploadHandler(cfg, assets.TierPrivate))
	r.POST("/upload-banner", uploadHandler(cfg, assets.TierPublic))
}

// uploadHandler stores the multipart "file" field in tier and answers with
// its resolved URL.
func uploadHandler(cfg HandlerConfig, tier assets.Tier) gin.HandlerFunc {
	return func(c *gin.Context) {
		tooLarge := apperr.Validation("file", "exceeds %d bytes", assets.MaxUploadBytes)
		if c.Request.ContentLength > maxUploadBody {
			writeError(c, tooLarge)
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBody)

		fh, err := c.FormFile("file")
		if err != nil {
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) {
				writeError(c, tooLarge)
				return
			}
			writeError(c, apperr.Validation("file", "is required"))
			return
		}
		if fh.Size > assets.MaxUploadBytes {
			writeError(c, apperr.Validation("file", "exceeds %d bytes", assets.MaxUploadBytes))
			return
		}
		f, err := fh.Open()
		if err != nil {
			writeError(c, apperr.Validation("file", "unreadable: %s", err.Error()))
			return
		}
		defer f.Close()

		data, err := io.ReadAll(io.LimitReader(f, assets.MaxUploadBytes+1))
		if err != nil {
			writeError(c, apperr.Validation("file", "unreadable: %s", err.Error()))
			return
		}
		contentType, err := assets.CheckUpload(data)
		if err != nil {
			writeError(c, err)
			return
		}

		ctx := c.Request.Context()
		asset, err := cfg.Assets.Put(ctx, assets.Upload{
			Data:        data,
			ContentType: contentType,
			Filename:    fh.Filename,
			Tier:        tier,
		})
		if err != nil {
			writeError(c, err)
			return
		}
		res, err := cfg.Assets.Resolve(ctx, asset.ID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"url": res.URL, "id": asset.ID})
	}
}
