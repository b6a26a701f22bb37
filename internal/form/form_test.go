package form

import (
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/fintrack/internal/model"
)

var feb5 = time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC)

func validInput() Input {
	return Input{
		Amount:      "1500",
		Type:        "expense",
		Description: "  Supermercado ",
		Category:    "comida",
		Date:        feb5,
	}
}

func TestValidate(t *testing.T) {
	got, err := Validate(validInput())
	require.NoError(t, err)
	assert.Equal(t, model.NewTransaction{
		Amount:      1500,
		Type:        model.TypeExpense,
		Description: "Supermercado",
		Category:    model.CategoryFood,
		Date:        feb5,
	}, got)
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Input)
		wantField string
		wantMsg   string
	}{
		{name: "empty amount", mutate: func(in *Input) { in.Amount = "" }, wantField: "amount", wantMsg: MsgAmount},
		{name: "zero amount", mutate: func(in *Input) { in.Amount = "0" }, wantField: "amount", wantMsg: MsgAmount},
		{name: "negative amount", mutate: func(in *Input) { in.Amount = "-10" }, wantField: "amount", wantMsg: MsgAmount},
		{name: "text amount", mutate: func(in *Input) { in.Amount = "mucho" }, wantField: "amount", wantMsg: MsgAmount},
		{name: "infinite amount", mutate: func(in *Input) { in.Amount = "Inf" }, wantField: "amount", wantMsg: MsgAmount},
		{name: "blank description", mutate: func(in *Input) { in.Description = "   " }, wantField: "description", wantMsg: MsgDescription},
		{name: "no category", mutate: func(in *Input) { in.Category = "" }, wantField: "category", wantMsg: MsgCategory},
		{name: "unknown type", mutate: func(in *Input) { in.Type = "transfer" }, wantField: "type", wantMsg: MsgType},
		{name: "category of the other type", mutate: func(in *Input) { in.Category = "Salario" }, wantField: "category", wantMsg: MsgMismatch},
		{name: "no date", mutate: func(in *Input) { in.Date = time.Time{} }, wantField: "date", wantMsg: MsgDate},
		{
			name:      "amount is reported before description",
			mutate:    func(in *Input) { in.Amount = ""; in.Description = "" },
			wantField: "amount",
			wantMsg:   MsgAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)

			_, err := Validate(in)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantField, verr.Field)
			assert.Equal(t, tt.wantMsg, verr.Error())
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input   string
		want    float64
		wantErr bool
	}{
		{input: "1500", want: 1500},
		{input: " 12.5 ", want: 12.5},
		{input: "12,5", want: 12.5},
		{input: "abc", wantErr: true},
		{input: "NaN", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestValidatePatch(t *testing.T) {
	current := model.Transaction{
		ID:       "t1",
		Type:     model.TypeExpense,
		Category: model.CategoryFood,
		Amount:   1500,
	}

	amount := 2000.0
	desc := "  Verdulería "
	patch, err := ValidatePatch(PatchInput{Amount: &amount, Description: &desc}, current)
	require.NoError(t, err)
	require.NotNil(t, patch.Amount)
	assert.Equal(t, 2000.0, *patch.Amount)
	require.NotNil(t, patch.Description)
	assert.Equal(t, "Verdulería", *patch.Description)
	assert.Nil(t, patch.Type)
	assert.Nil(t, patch.Category)

	empty, err := ValidatePatch(PatchInput{}, current)
	require.NoError(t, err)
	assert.True(t, empty.IsEmpty())
}

func TestValidatePatch_Errors(t *testing.T) {
	current := model.Transaction{Type: model.TypeExpense, Category: model.CategoryFood}
	zero := 0.0
	blank := " "
	income := "income"
	salario := "salario"
	comida := "Comida"
	var noDate time.Time

	tests := []struct {
		name    string
		in      PatchInput
		wantMsg string
	}{
		{name: "zero amount", in: PatchInput{Amount: &zero}, wantMsg: MsgAmount},
		{name: "blank description", in: PatchInput{Description: &blank}, wantMsg: MsgDescription},
		{name: "category of the other type", in: PatchInput{Category: &salario}, wantMsg: MsgMismatch},
		{name: "type change orphans category", in: PatchInput{Type: &income}, wantMsg: MsgCategory},
		{name: "type and stale category", in: PatchInput{Type: &income, Category: &comida}, wantMsg: MsgMismatch},
		{name: "zero date", in: PatchInput{Date: &noDate}, wantMsg: MsgDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidatePatch(tt.in, current)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantMsg, verr.Message)
		})
	}

	patch, err := ValidatePatch(PatchInput{Type: &income, Category: &salario}, current)
	require.NoError(t, err)
	assert.Equal(t, model.TypeIncome, *patch.Type)
	assert.Equal(t, model.CategorySalary, *patch.Category)
}

func TestRegister(t *testing.T) {
	type filter struct {
		Type string `validate:"omitempty,transaction_type"`
	}

	v := validator.New()
	Register(v)

	assert.NoError(t, v.Struct(filter{}))
	assert.NoError(t, v.Struct(filter{Type: "income"}))
	assert.Error(t, v.Struct(filter{Type: "transfer"}))
}
