package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Veraticus/fintrack/internal/model"
)

const recentLimit = 5

// SummaryResponse is the balance card.
type SummaryResponse struct {
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Balance  float64 `json:"balance"`
	Count    int     `json:"count"`
}

// CategoryTotalResponse is one row of the per-category breakdown.
type CategoryTotalResponse struct {
	Category string  `json:"category"`
	Type     string  `json:"type"`
	Total    float64 `json:"total"`
	Count    int     `json:"count"`
}

func (s *Server) dashboard(c *gin.Context) {
	txns, err := s.repo.GetAll(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary := model.Summarize(txns)
	totals := model.TotalsByCategory(txns)
	byCategory := make([]CategoryTotalResponse, len(totals))
	for i, t := range totals {
		byCategory[i] = CategoryTotalResponse{
			Category: string(t.Category),
			Type:     string(t.Type),
			Total:    t.Total,
			Count:    t.Count,
		}
	}

	recent := txns
	if len(recent) > recentLimit {
		recent = recent[:recentLimit]
	}

	c.JSON(http.StatusOK, gin.H{
		"summary": SummaryResponse{
			Income:   summary.Income,
			Expenses: summary.Expenses,
			Balance:  summary.Balance,
			Count:    summary.Count,
		},
		"byCategory": byCategory,
		"recent":     newTransactionResponses(recent),
	})
}
