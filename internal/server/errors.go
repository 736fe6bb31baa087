package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fakturlu/faktur-accounting/internal/model"
)

// writeError maps domain errors to HTTP statuses
func writeError(c *gin.Context, err error) {
	_ = c.Error(err)

	var (
		valErr *model.ValidationError
		trErr  *model.TransmissionError
	)
	switch {
	case errors.As(err, &valErr):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: valErr.Message, Field: valErr.Field, Details: err.Error()})
	case errors.Is(err, model.ErrUnsupportedFormat):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "unsupported format", Details: err.Error()})
	case errors.Is(err, model.ErrNoInvoices):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "no finalized invoices in period", Details: err.Error()})
	case errors.Is(err, model.ErrUnbalanced):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "unbalanced entries", Details: err.Error()})
	case errors.Is(err, model.ErrProviderNotConfigured):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "peppol provider not configured"})
	case errors.As(err, &trErr):
		status := http.StatusBadGateway
		if trErr.Permanent {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, ErrorResponse{Error: "transmission failed", Details: trErr.Message})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error", Details: err.Error()})
	}
}

func badRequest(c *gin.Context, msg string, err error) {
	resp := ErrorResponse{Error: msg}
	if err != nil {
		resp.Details = err.Error()
	}
	c.JSON(http.StatusBadRequest, resp)
}
