package handler

import (
	"strconv"

	"crypto-payments/internal/adapter/http/dto"
	"crypto-payments/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func parseUserID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		return 0, apperror.Validation("user_id must be an integer")
	}
	return id, nil
}

func parseInvoiceID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperror.Validation("invalid invoice id")
	}
	return id, nil
}

// bindJSON binds and sanitizes the request body, mapping binding failures to REQ_001.
func bindJSON(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return apperror.Validation(err.Error())
	}
	dto.SanitizeStruct(req)
	return nil
}
