package validation

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/imrishuroy/topup-storefront/internal/apperr"
)

// BindAndValidate binds JSON body into `out` and runs validation.
// If binding or validation fails, it writes a 400 response and returns the error for the handler to short-circuit.
func BindAndValidate(c *gin.Context, out any, v *OrderValidator) error {
	if err := c.ShouldBindJSON(out); err != nil {
		err = apperr.Validation("body", "%s", err.Error())
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return err
	}
	if err := v.Struct(out); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return err
	}
	return nil
}

// DecodeStrict decodes a single JSON document and rejects unknown fields.
func DecodeStrict(r io.Reader, out any) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("body", "empty request body")
		}
		return apperr.Validation("body", "%s", err.Error())
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return apperr.Validation("body", "unexpected data after JSON document")
	}
	return nil
}
