package v1

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"audio_conversion/entity"
)

type response struct {
	Detail string `json:"detail" example:"Conversion failed: upload failed: googleapi: Error 403"`
}

func errorResponse(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(code, response{msg})
}

// statusFor maps a failure to the HTTP status and detail message sent to the client.
func statusFor(err error) (int, string) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge, fmt.Sprintf("Upload exceeds %d bytes", tooLarge.Limit)
	}

	if entity.KindOf(err) == entity.KindValidation {
		return http.StatusBadRequest, err.Error()
	}

	return http.StatusInternalServerError, "Conversion failed: " + err.Error()
}
