package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Veraticus/fintrack/internal/common"
	"github.com/Veraticus/fintrack/internal/form"
	"github.com/Veraticus/fintrack/internal/storage"
	"github.com/Veraticus/fintrack/internal/theme"
)

// Error codes.
const (
	CodeInvalidInput = "INVALID_INPUT"
	CodeNotFound     = "NOT_FOUND"
	CodeInternal     = "INTERNAL_ERROR"
)

var errTransactionNotFound = errors.New("transaction not found")

// respondWithError writes a consistent JSON error response. Input and
// not-found errors carry their message; anything else is logged and
// answered with a generic message.
func respondWithError(c *gin.Context, err error) {
	var verr *form.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(c, http.StatusBadRequest, CodeInvalidInput, verr.Message, gin.H{"field": verr.Field})
	case errors.Is(err, storage.ErrCategoryMismatch),
		errors.Is(err, storage.ErrInvalidType),
		errors.Is(err, storage.ErrInvalidDateRange),
		errors.Is(err, storage.ErrInvalidTransaction),
		errors.Is(err, storage.ErrEmptyString),
		errors.Is(err, theme.ErrInvalidMode),
		errors.Is(err, common.ErrInvalidInput):
		writeError(c, http.StatusBadRequest, CodeInvalidInput, err.Error(), nil)
	case errors.Is(err, errTransactionNotFound), errors.Is(err, common.ErrNotFound):
		writeError(c, http.StatusNotFound, CodeNotFound, "Transacción no encontrada", nil)
	default:
		slog.Error("unexpected error",
			"error", err.Error(),
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
		)
		writeError(c, http.StatusInternalServerError, CodeInternal, "No se pudo completar la operación", nil)
	}
}

func writeError(c *gin.Context, status int, code, message string, extra gin.H) {
	body := gin.H{
		"code":    code,
		"message": message,
	}
	for k, v := range extra {
		body[k] = v
	}
	c.AbortWithStatusJSON(status, gin.H{"error": body})
}
