package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"what-to-watch/internal/domains/opinion/model"
	"what-to-watch/internal/shared/response"
)

// mapOpinionError picks the status and public message for a domain error.
func mapOpinionError(err error) (int, string) {
	status := model.ToHTTPStatus(err)

	var oe *model.OpinionError
	if errors.As(err, &oe) {
		return status, oe.Message
	}
	var ve *model.ValidationError
	if errors.As(err, &ve) {
		return status, ve.Fields.Error()
	}
	return status, err.Error()
}

func respondError(c *gin.Context, err error) {
	response.Error(c, err, mapOpinionError)
}
