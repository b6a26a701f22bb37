package api

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/fintrack/internal/certs"
	"github.com/Veraticus/fintrack/internal/model"
	"github.com/Veraticus/fintrack/internal/service"
	"github.com/Veraticus/fintrack/internal/storage"
	"github.com/Veraticus/fintrack/internal/testutil"
	"github.com/Veraticus/fintrack/internal/theme"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	*Server
	db       *testutil.TestDB
	resolver *theme.Resolver
}

func newTestServer(t *testing.T, seed []model.NewTransaction) *testServer {
	t.Helper()
	db := testutil.SetupTestDBWithOptions(t, testutil.TestDBOptions{Seed: seed})
	resolver := theme.NewResolver(db.Preferences, theme.Static(theme.AppearanceDark))
	resolver.Load(context.Background())

	s := NewServer(db.Transactions, resolver)
	s.now = func() time.Time { return time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC) }
	return &testServer{Server: s, db: db, resolver: resolver}
}

func doRequest(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

type transactionEnvelope struct {
	Transaction TransactionResponse `json:"transaction"`
}

type listEnvelope struct {
	Transactions []TransactionResponse `json:"transactions"`
	Count        int                   `json:"count"`
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Field   string `json:"field"`
	} `json:"error"`
}

func descriptions(txns []TransactionResponse) []string {
	out := make([]string, len(txns))
	for i, txn := range txns {
		out[i] = txn.Description
	}
	return out
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)
	rec := doRequest(s.Handler(), http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestListTransactions(t *testing.T) {
	s := newTestServer(t, model.SampleTransactions())

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "all newest first", query: "", want: []string{"Freelance", "Nafta", "Supermercado", "Salario de Enero"}},
		{name: "by type", query: "?type=income", want: []string{"Freelance", "Salario de Enero"}},
		{name: "by range", query: "?from=2026-02-05&to=2026-02-10", want: []string{"Nafta", "Supermercado"}},
		{name: "open ended range", query: "?from=2026-02-10", want: []string{"Freelance", "Nafta"}},
		{name: "range and type", query: "?from=2026-02-01&to=2026-02-10&type=expense", want: []string{"Nafta", "Supermercado"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(s.Handler(), http.MethodGet, "/api/v1/transactions"+tt.query, "")
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			body := decode[listEnvelope](t, rec)
			assert.Equal(t, tt.want, descriptions(body.Transactions))
			assert.Equal(t, len(tt.want), body.Count)
		})
	}
}

func TestListTransactions_BadInput(t *testing.T) {
	s := newTestServer(t, nil)

	for _, query := range []string{"?type=transfer", "?from=yesterday", "?from=2026-02-10&to=2026-02-01"} {
		t.Run(query, func(t *testing.T) {
			rec := doRequest(s.Handler(), http.MethodGet, "/api/v1/transactions"+query, "")
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, CodeInvalidInput, decode[errorEnvelope](t, rec).Error.Code)
		})
	}
}

func TestCreateTransaction(t *testing.T) {
	s := newTestServer(t, nil)

	rec := doRequest(s.Handler(), http.MethodPost, "/api/v1/transactions",
		`{"amount":1500,"type":"expense","description":" Supermercado ","category":"Comida","date":"2026-02-05"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	created := decode[transactionEnvelope](t, rec).Transaction
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 1500.0, created.Amount)
	assert.Equal(t, "Supermercado", created.Description)
	assert.Equal(t, time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC), created.Date)

	stored := s.db.MustGet(created.ID)
	assert.Equal(t, model.CategoryFood, stored.Category)
}

func TestCreateTransaction_DefaultsDateToNow(t *testing.T) {
	s := newTestServer(t, nil)

	rec := doRequest(s.Handler(), http.MethodPost, "/api/v1/transactions",
		`{"amount":5000,"type":"income","description":"Freelance","category":"freelance"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, s.now(), decode[transactionEnvelope](t, rec).Transaction.Date)
}

func TestCreateTransaction_Validation(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{name: "zero amount", body: `{"amount":0,"type":"expense","description":"x","category":"Comida"}`, wantField: "amount"},
		{name: "missing amount", body: `{"type":"expense","description":"x","category":"Comida"}`, wantField: "amount"},
		{name: "blank description", body: `{"amount":1,"type":"expense","description":"  ","category":"Comida"}`, wantField: "description"},
		{name: "mismatched category", body: `{"amount":1,"type":"income","description":"x","category":"Comida"}`, wantField: "category"},
		{name: "bad date", body: `{"amount":1,"type":"expense","description":"x","category":"Comida","date":"ayer"}`, wantField: "date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(s.Handler(), http.MethodPost, "/api/v1/transactions", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			body := decode[errorEnvelope](t, rec)
			assert.Equal(t, CodeInvalidInput, body.Error.Code)
			assert.Equal(t, tt.wantField, body.Error.Field)
			assert.NotEmpty(t, body.Error.Message)
		})
	}

	rec := doRequest(s.Handler(), http.MethodPost, "/api/v1/transactions", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, 0, s.db.Count(), "invalid input never reaches storage")
}

func TestGetTransaction(t *testing.T) {
	s := newTestServer(t, nil)
	txn := s.db.MustCreate(model.SampleTransactions()[0])

	rec := doRequest(s.Handler(), http.MethodGet, "/api/v1/transactions/"+txn.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, txn.ID, decode[transactionEnvelope](t, rec).Transaction.ID)

	rec = doRequest(s.Handler(), http.MethodGet, "/api/v1/transactions/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, CodeNotFound, decode[errorEnvelope](t, rec).Error.Code)
}

func TestUpdateTransaction(t *testing.T) {
	s := newTestServer(t, nil)
	txn := s.db.MustCreate(model.SampleTransactions()[1])

	rec := doRequest(s.Handler(), http.MethodPatch, "/api/v1/transactions/"+txn.ID,
		`{"amount":1750.5,"description":"Supermercado y verdulería"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	updated := decode[transactionEnvelope](t, rec).Transaction
	assert.Equal(t, 1750.5, updated.Amount)
	assert.Equal(t, "Supermercado y verdulería", updated.Description)
	assert.Equal(t, string(model.CategoryFood), updated.Category)

	rec = doRequest(s.Handler(), http.MethodPatch, "/api/v1/transactions/"+txn.ID, `{"type":"income"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "switching type needs a matching category")

	rec = doRequest(s.Handler(), http.MethodPatch, "/api/v1/transactions/"+txn.ID,
		`{"type":"income","category":"Regalo"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "income", decode[transactionEnvelope](t, rec).Transaction.Type)

	rec = doRequest(s.Handler(), http.MethodPatch, "/api/v1/transactions/missing", `{"amount":1}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteTransaction(t *testing.T) {
	s := newTestServer(t, nil)
	txn := s.db.MustCreate(model.SampleTransactions()[2])

	rec := doRequest(s.Handler(), http.MethodDelete, "/api/v1/transactions/"+txn.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, s.db.Count())

	rec = doRequest(s.Handler(), http.MethodDelete, "/api/v1/transactions/"+txn.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code, "deleting twice is fine")
}

func TestDashboard(t *testing.T) {
	s := newTestServer(t, model.SampleTransactions())

	rec := doRequest(s.Handler(), http.MethodGet, "/api/v1/dashboard", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[struct {
		Summary    SummaryResponse         `json:"summary"`
		ByCategory []CategoryTotalResponse `json:"byCategory"`
		Recent     []TransactionResponse   `json:"recent"`
	}](t, rec)

	assert.Equal(t, SummaryResponse{Income: 55000, Expenses: 2300, Balance: 52700, Count: 4}, body.Summary)
	assert.Len(t, body.ByCategory, 4)
	assert.Equal(t, "Freelance", body.Recent[0].Description)
}

func TestCategories(t *testing.T) {
	s := newTestServer(t, nil)

	rec := doRequest(s.Handler(), http.MethodGet, "/api/v1/categories?type=income", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[struct {
		Categories []string `json:"categories"`
		Default    string   `json:"default"`
	}](t, rec)
	assert.Equal(t, []string{"Salario", "Freelance", "Inversiones", "Regalo", "Otro ingreso"}, body.Categories)
	assert.Equal(t, "Otro ingreso", body.Default)

	rec = doRequest(s.Handler(), http.MethodGet, "/api/v1/categories", "")
	require.Equal(t, http.StatusOK, rec.Code)
	all := decode[map[string][]string](t, rec)
	assert.Len(t, all["expense"], 9)

	rec = doRequest(s.Handler(), http.MethodGet, "/api/v1/categories?type=transfer", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTheme(t *testing.T) {
	s := newTestServer(t, nil)

	rec := doRequest(s.Handler(), http.MethodGet, "/api/v1/theme", "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[ThemeResponse](t, rec)
	assert.Equal(t, "auto", got.Mode)
	assert.True(t, got.IsDark, "auto follows the dark system appearance")
	assert.Equal(t, theme.DarkPalette(), got.Palette)

	rec = doRequest(s.Handler(), http.MethodPut, "/api/v1/theme", `{"themeMode":"light"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	got = decode[ThemeResponse](t, rec)
	assert.Equal(t, "light", got.Mode)
	assert.False(t, got.IsDark)
	assert.Equal(t, theme.LightPalette(), got.Palette)

	var visited []string
	for i := 0; i < 3; i++ {
		rec = doRequest(s.Handler(), http.MethodPost, "/api/v1/theme/toggle", "")
		require.Equal(t, http.StatusOK, rec.Code)
		visited = append(visited, decode[ThemeResponse](t, rec).Mode)
	}
	assert.Equal(t, []string{"dark", "auto", "light"}, visited)

	saved, ok := s.db.Preferences.Get(context.Background(), theme.PreferenceKey)
	require.True(t, ok)
	assert.Equal(t, "light", saved)

	rec = doRequest(s.Handler(), http.MethodPut, "/api/v1/theme", `{"themeMode":"sepia"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = doRequest(s.Handler(), http.MethodPut, "/api/v1/theme", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// failingRepository fails every call with err.
type failingRepository struct {
	service.TransactionRepository
	err error
}

func (f failingRepository) GetAll(context.Context) ([]model.Transaction, error) {
	return nil, f.err
}

func (f failingRepository) GetByID(context.Context, string) (*model.Transaction, error) {
	return nil, f.err
}

func TestStorageErrorsAreNotLeaked(t *testing.T) {
	resolver := theme.NewResolver(storage.NewMemoryPreferenceStore(), theme.Static(theme.AppearanceLight))
	s := NewServer(failingRepository{err: errors.New("disk I/O error at /secret/path")}, resolver)

	for _, path := range []string{"/api/v1/transactions", "/api/v1/dashboard", "/api/v1/transactions/x"} {
		rec := doRequest(s.Handler(), http.MethodGet, path, "")
		assert.Equal(t, http.StatusInternalServerError, rec.Code, path)
		assert.NotContains(t, rec.Body.String(), "/secret/path")
		assert.Equal(t, CodeInternal, decode[errorEnvelope](t, rec).Error.Code)
	}
}

func TestRun(t *testing.T) {
	s := newTestServer(t, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(shutdownTimeout + time.Second):
		t.Fatal("server did not shut down")
	}
}

type brokenCertificates struct{}

func (brokenCertificates) GetOrCreateCertificate() (tls.Certificate, error) {
	return tls.Certificate{}, errors.New("key unreadable")
}

func TestRunTLS(t *testing.T) {
	s := newTestServer(t, nil)

	t.Run("certificate failure", func(t *testing.T) {
		err := s.RunTLS(context.Background(), "127.0.0.1:0", brokenCertificates{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "key unreadable")
	})

	t.Run("starts and shuts down", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- s.RunTLS(ctx, "127.0.0.1:0", certs.NewFileManager(t.TempDir())) }()

		time.Sleep(100 * time.Millisecond)
		cancel()

		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(shutdownTimeout + time.Second):
			t.Fatal("server did not shut down")
		}
	})
}
