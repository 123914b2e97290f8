package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-units-api/internal/middleware"
	"github.com/noah-isme/school-units-api/internal/service"
	appErrors "github.com/noah-isme/school-units-api/pkg/errors"
)

const maxBodyBytes = 1 << 20

// bindStrictJSON decodes a single JSON object rejecting unknown fields and trailing data.
func bindStrictJSON(c *gin.Context, dst interface{}) error {
	if c.Request.Body == nil {
		return appErrors.Validation("request body is required")
	}
	decoder := json.NewDecoder(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return appErrors.Validation("request body is required")
		}
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body: "+err.Error())
	}
	if decoder.More() {
		return appErrors.Validation("invalid request body: unexpected data after JSON object")
	}
	return nil
}

// pathID parses the :id route parameter.
func pathID(c *gin.Context) (int64, error) {
	id, ok := service.ParseID(c.Param("id"))
	if !ok {
		return 0, appErrors.Validation("invalid id")
	}
	return id, nil
}

func actorFromContext(c *gin.Context) string {
	return strings.TrimSpace(middleware.ClaimsFromContext(c).Identity())
}
