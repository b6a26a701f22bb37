// Package form validates user input for new and edited transactions before
// it reaches storage.
package form

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Veraticus/fintrack/internal/model"
)

// User-facing messages.
const (
	MsgAmount      = "Ingresa un monto válido mayor a 0"
	MsgDescription = "Ingresa una descripción"
	MsgCategory    = "Selecciona una categoría"
	MsgType        = "Selecciona ingreso o gasto"
	MsgMismatch    = "La categoría no corresponde al tipo de transacción"
	MsgDate        = "Ingresa una fecha válida"
)

// ValidationError reports the first invalid field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Input is the raw content of the transaction form.
type Input struct {
	Date        time.Time
	Amount      string `validate:"amount"`
	Type        string `validate:"transaction_type"`
	Description string `validate:"notblank"`
	Category    string `validate:"notblank"`
}

// PatchInput holds the fields an edit changes. Nil fields are left alone.
type PatchInput struct {
	Amount      *float64   `validate:"omitnil,gt=0"`
	Type        *string    `validate:"omitnil,transaction_type"`
	Description *string    `validate:"omitnil,notblank"`
	Category    *string    `validate:"omitnil,notblank"`
	Date        *time.Time
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	Register(v)
	return v
}

// Register adds the form's custom tags to v.
func Register(v *validator.Validate) {
	_ = v.RegisterValidation("amount", validateAmount)
	_ = v.RegisterValidation("transaction_type", validateTransactionType)
	_ = v.RegisterValidation("notblank", validateNotBlank)
}

func validateAmount(fl validator.FieldLevel) bool {
	amount, err := ParseAmount(fl.Field().String())
	return err == nil && amount > 0
}

func validateTransactionType(fl validator.FieldLevel) bool {
	_, err := model.ParseTransactionType(fl.Field().String())
	return err == nil
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// ParseAmount reads an amount typed by the user. A comma is accepted as the
// decimal separator.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	amount, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, strconv.ErrRange
	}
	return amount, nil
}

// Validate checks in and converts it to a create request. The description
// is trimmed and the category name is matched case-insensitively.
func Validate(in Input) (model.NewTransaction, error) {
	if err := validate.Struct(in); err != nil {
		return model.NewTransaction{}, translate(err)
	}
	if in.Date.IsZero() {
		return model.NewTransaction{}, &ValidationError{Field: "date", Message: MsgDate}
	}

	txnType, _ := model.ParseTransactionType(in.Type)
	category, ok := model.LookupCategory(txnType, in.Category)
	if !ok {
		return model.NewTransaction{}, &ValidationError{Field: "category", Message: MsgMismatch}
	}
	amount, _ := ParseAmount(in.Amount)

	return model.NewTransaction{
		Amount:      amount,
		Type:        txnType,
		Description: strings.TrimSpace(in.Description),
		Category:    category,
		Date:        in.Date,
	}, nil
}

// ValidatePatch checks in and converts it to a patch. current is the stored
// transaction, used to resolve a category against the type it will have.
func ValidatePatch(in PatchInput, current model.Transaction) (model.TransactionPatch, error) {
	if err := validate.Struct(in); err != nil {
		return model.TransactionPatch{}, translate(err)
	}
	if in.Date != nil && in.Date.IsZero() {
		return model.TransactionPatch{}, &ValidationError{Field: "date", Message: MsgDate}
	}

	patch := model.TransactionPatch{
		Amount: in.Amount,
		Date:   in.Date,
	}

	txnType := current.Type
	if in.Type != nil {
		parsed, _ := model.ParseTransactionType(*in.Type)
		txnType = parsed
		patch.Type = &parsed
	}
	if in.Description != nil {
		desc := strings.TrimSpace(*in.Description)
		patch.Description = &desc
	}
	if in.Category != nil {
		category, ok := model.LookupCategory(txnType, *in.Category)
		if !ok {
			return model.TransactionPatch{}, &ValidationError{Field: "category", Message: MsgMismatch}
		}
		patch.Category = &category
	} else if patch.Type != nil && !current.Category.ValidFor(txnType) {
		// Switching type without a new category would orphan the old one.
		return model.TransactionPatch{}, &ValidationError{Field: "category", Message: MsgCategory}
	}

	return patch, nil
}

// translate maps the first validator failure to its user message.
func translate(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	fe := fieldErrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Field() {
	case "Amount":
		return &ValidationError{Field: field, Message: MsgAmount}
	case "Type":
		return &ValidationError{Field: field, Message: MsgType}
	case "Description":
		return &ValidationError{Field: field, Message: MsgDescription}
	case "Category":
		return &ValidationError{Field: field, Message: MsgCategory}
	default:
		return &ValidationError{Field: field, Message: fe.Error()}
	}
}
