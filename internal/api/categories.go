package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Veraticus/fintrack/internal/form"
	"github.com/Veraticus/fintrack/internal/model"
)

func (s *Server) listCategories(c *gin.Context) {
	if raw := c.Query("type"); raw != "" {
		txnType, err := model.ParseTransactionType(raw)
		if err != nil {
			respondWithError(c, &form.ValidationError{Field: "type", Message: form.MsgType})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"type":       txnType,
			"categories": model.CategoriesFor(txnType),
			"default":    model.DefaultCategory(txnType),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"income":  model.CategoriesFor(model.TypeIncome),
		"expense": model.CategoriesFor(model.TypeExpense),
	})
}
