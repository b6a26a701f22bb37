package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Veraticus/fintrack/internal/common"
	"github.com/Veraticus/fintrack/internal/form"
	"github.com/Veraticus/fintrack/internal/model"
)

// TransactionResponse is a transaction as returned by the API.
type TransactionResponse struct {
	Date        time.Time `json:"date"`
	CreatedAt   time.Time `json:"createdAt"`
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Amount      float64   `json:"amount"`
}

func newTransactionResponse(txn model.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:          txn.ID,
		Amount:      txn.Amount,
		Type:        string(txn.Type),
		Description: txn.Description,
		Category:    string(txn.Category),
		Date:        txn.Date,
		CreatedAt:   txn.CreatedAt,
	}
}

func newTransactionResponses(txns []model.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, len(txns))
	for i, txn := range txns {
		out[i] = newTransactionResponse(txn)
	}
	return out
}

// CreateTransactionRequest is the body of POST /transactions. A missing
// date means now.
type CreateTransactionRequest struct {
	Amount      json.Number `json:"amount"`
	Type        string      `json:"type"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	Date        string      `json:"date"`
}

// UpdateTransactionRequest is the body of PATCH /transactions/:id.
type UpdateTransactionRequest struct {
	Amount      *float64 `json:"amount"`
	Type        *string  `json:"type"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	Date        *string  `json:"date"`
}

type listQuery struct {
	Type string `form:"type" binding:"omitempty,transaction_type"`
	From string `form:"from"`
	To   string `form:"to"`
}

var maxDate = time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC)

func (s *Server) listTransactions(c *gin.Context) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, &form.ValidationError{Field: "type", Message: form.MsgType})
		return
	}
	ctx := c.Request.Context()

	var txns []model.Transaction
	var err error
	switch {
	case q.From != "" || q.To != "":
		from, to, rangeErr := parseRange(q.From, q.To)
		if rangeErr != nil {
			respondWithError(c, rangeErr)
			return
		}
		txns, err = s.repo.GetByDateRange(ctx, from, to)
		if err == nil && q.Type != "" {
			txns = filterType(txns, model.TransactionType(strings.ToLower(q.Type)))
		}
	case q.Type != "":
		txnType, _ := model.ParseTransactionType(q.Type)
		txns, err = s.repo.GetByType(ctx, txnType)
	default:
		txns, err = s.repo.GetAll(ctx)
	}
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"transactions": newTransactionResponses(txns),
		"count":        len(txns),
	})
}

func (s *Server) getTransaction(c *gin.Context) {
	txn, err := s.repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	if txn == nil {
		respondWithError(c, errTransactionNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transaction": newTransactionResponse(*txn)})
}

func (s *Server) createTransaction(c *gin.Context) {
	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, fmt.Errorf("%w: %s", common.ErrInvalidInput, err.Error()))
		return
	}

	date := s.now()
	if req.Date != "" {
		parsed, err := parseDate(req.Date)
		if err != nil {
			respondWithError(c, &form.ValidationError{Field: "date", Message: form.MsgDate})
			return
		}
		date = parsed
	}

	in, err := form.Validate(form.Input{
		Amount:      req.Amount.String(),
		Type:        req.Type,
		Description: req.Description,
		Category:    req.Category,
		Date:        date,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	txn, err := s.repo.Create(c.Request.Context(), in)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"transaction": newTransactionResponse(*txn)})
}

func (s *Server) updateTransaction(c *gin.Context) {
	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, fmt.Errorf("%w: %s", common.ErrInvalidInput, err.Error()))
		return
	}
	ctx := c.Request.Context()
	id := c.Param("id")

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if current == nil {
		respondWithError(c, errTransactionNotFound)
		return
	}

	in := form.PatchInput{
		Amount:      req.Amount,
		Type:        req.Type,
		Description: req.Description,
		Category:    req.Category,
	}
	if req.Date != nil {
		parsed, err := parseDate(*req.Date)
		if err != nil {
			respondWithError(c, &form.ValidationError{Field: "date", Message: form.MsgDate})
			return
		}
		in.Date = &parsed
	}

	patch, err := form.ValidatePatch(in, *current)
	if err != nil {
		respondWithError(c, err)
		return
	}

	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transaction": newTransactionResponse(*updated)})
}

func (s *Server) deleteTransaction(c *gin.Context) {
	if err := s.repo.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// parseDate accepts RFC 3339 timestamps and plain yyyy-mm-dd dates (UTC).
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, s)
}

// parseRange reads inclusive from/to bounds. A plain date as the upper
// bound covers that whole day.
func parseRange(fromStr, toStr string) (time.Time, time.Time, error) {
	from := time.Time{}
	to := maxDate

	if fromStr != "" {
		parsed, err := parseDate(fromStr)
		if err != nil {
			return time.Time{}, time.Time{}, &form.ValidationError{Field: "from", Message: form.MsgDate}
		}
		from = parsed
	}
	if toStr != "" {
		parsed, err := parseDate(toStr)
		if err != nil {
			return time.Time{}, time.Time{}, &form.ValidationError{Field: "to", Message: form.MsgDate}
		}
		if _, dateOnly := time.Parse(time.DateOnly, strings.TrimSpace(toStr)); dateOnly == nil {
			parsed = parsed.Add(24*time.Hour - time.Nanosecond)
		}
		to = parsed
	}
	return from, to, nil
}

func filterType(txns []model.Transaction, t model.TransactionType) []model.Transaction {
	out := make([]model.Transaction, 0, len(txns))
	for _, txn := range txns {
		if txn.Type == t {
			out = append(out, txn)
		}
	}
	return out
}
