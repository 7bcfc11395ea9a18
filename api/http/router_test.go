package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/artem13815/finance/api/http/handlers"
	"github.com/artem13815/finance/pkg/auth"
	"github.com/artem13815/finance/pkg/events"
	"github.com/artem13815/finance/pkg/health"
	"github.com/artem13815/finance/pkg/health/checkers"
	"github.com/artem13815/finance/pkg/ledger"
	"github.com/artem13815/finance/pkg/logging"
	"github.com/artem13815/finance/pkg/repository/memory"
	"github.com/artem13815/finance/pkg/security/jwt"
	"github.com/artem13815/finance/pkg/security/password"
)

type testServer struct {
	app    *fiber.App
	events *events.Recorder
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	issuer, err := jwt.NewIssuer(jwt.Config{
		Secret:   strings.Repeat("x", jwt.MinSecretLength),
		Issuer:   "finance-test",
		Audience: "finance-clients",
	})
	require.NoError(t, err)

	log := logging.Nop()
	store := memory.NewStore()
	refresh := memory.NewRefreshStore()
	rec := &events.Recorder{}

	authUC := auth.NewAuthService(store.Accounts(), refresh, issuer, password.NewHasher(bcrypt.MinCost), time.Hour, log)
	profileUC := auth.NewProfileService(store.Accounts(), refresh, log)
	ledgerUC := ledger.NewService(store.Entries(), rec, log)

	app := fiber.New()
	Register(app, Routes{
		Auth:         handlers.NewAuthHandler(authUC),
		Users:        handlers.NewUserHandler(profileUC),
		Transactions: handlers.NewTransactionHandler(ledgerUC),
		Health:       handlers.NewHealthHandler(health.NewService()),
		AuthMW:       jwt.NewAuthMiddleware(issuer),
	})
	return &testServer{app: app, events: rec}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

// jsonField returns a top-level string field of a JSON object body.
func jsonField(t *testing.T, body []byte, key string) string {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(body, &m))
	v, ok := m[key].(string)
	require.True(t, ok, "field %q is not a string in %s", key, body)
	return v
}

type tokens struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	User         auth.Account `json:"user"`
}

func (s *testServer) register(t *testing.T, email string) tokens {
	t.Helper()
	status, body := s.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"firstName":       "Ana",
		"lastName":        "Souza",
		"email":           email,
		"password":        "s3cret-pass",
		"confirmPassword": "s3cret-pass",
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	var tk tokens
	require.NoError(t, json.Unmarshal(body, &tk))
	return tk
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)
	reg := s.register(t, "ana@example.com")
	assert.Equal(t, "ana@example.com", reg.User.Email)
	assert.NotContains(t, reg.AccessToken, " ")

	status, _ := s.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"firstName": "A", "lastName": "B", "email": "ANA@example.com",
		"password": "x", "confirmPassword": "x",
	})
	assert.Equal(t, http.StatusConflict, status)

	status, body := s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "ana@example.com", "password": "nope",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Contains(t, string(body), "invalid credentials")

	status, body = s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "Ana@Example.com", "password": "s3cret-pass",
	})
	require.Equal(t, http.StatusOK, status)
	var login tokens
	require.NoError(t, json.Unmarshal(body, &login))

	status, body = s.do(t, http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{"refreshToken": login.RefreshToken})
	require.Equal(t, http.StatusOK, status)
	var refreshed tokens
	require.NoError(t, json.Unmarshal(body, &refreshed))
	assert.Equal(t, reg.User.ID, refreshed.User.ID)

	status, _ = s.do(t, http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{"refreshToken": login.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = s.do(t, http.MethodPost, "/api/v1/auth/logout", "", map[string]string{"refreshToken": refreshed.RefreshToken})
	assert.Equal(t, http.StatusNoContent, status)
	status, _ = s.do(t, http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{"refreshToken": refreshed.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestRegisterValidationErrors(t *testing.T) {
	s := newTestServer(t)
	status, body := s.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"firstName": "Ana", "lastName": "Souza", "email": "ana@example.com",
		"password": "one", "confirmPassword": "two",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(body), "confirmPassword")
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/api/v1/users/me", "/api/v1/transactions", "/api/v1/transactions/summary"} {
		status, _ := s.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, status, path)
	}
	status, _ := s.do(t, http.MethodGet, "/api/v1/users/me", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestTransactionsFlow(t *testing.T) {
	s := newTestServer(t)
	tk := s.register(t, "ana@example.com").AccessToken

	create := func(typ, amount, category, date string) (ledger.Entry, []byte) {
		status, body := s.do(t, http.MethodPost, "/api/v1/transactions", tk, map[string]any{
			"type": typ, "title": "t " + category, "amount": json.Number(amount),
			"category": category, "date": date,
		})
		require.Equal(t, http.StatusCreated, status, string(body))
		var e ledger.Entry
		require.NoError(t, json.Unmarshal(body, &e))
		return e, body
	}
	salary, salaryBody := create("receita", "100", "salary", "2024-01-05")
	food, foodBody := create("despesa", "40.00", "food", "2024-01-10")
	create("despesa", "10", "fun", "2024-02-01")
	assert.Equal(t, "-40.00", jsonField(t, foodBody, "amount"))
	assert.Equal(t, "100.00", jsonField(t, salaryBody, "amount"))

	status, body := s.do(t, http.MethodGet, "/api/v1/transactions?startDate=2024-01-01&endDate=2024-01-31", tk, nil)
	require.Equal(t, http.StatusOK, status)
	var jan []ledger.Entry
	require.NoError(t, json.Unmarshal(body, &jan))
	require.Len(t, jan, 2)
	assert.Equal(t, food.ID, jan[0].ID)
	assert.Equal(t, salary.ID, jan[1].ID)

	status, body = s.do(t, http.MethodGet, "/api/v1/transactions/summary", tk, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"totalIncome":"100.00","totalExpense":"50.00","balance":"50.00","count":3}`, string(body))

	status, body = s.do(t, http.MethodGet, "/api/v1/transactions/categories", tk, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `["food","fun","salary"]`, string(body))

	status, body = s.do(t, http.MethodPut, "/api/v1/transactions/"+food.ID.String(), tk, map[string]any{
		"type": "despesa", "title": "market", "amount": "45.5", "category": "food", "date": "2024-01-11",
	})
	require.Equal(t, http.StatusOK, status, string(body))
	var upd ledger.Entry
	require.NoError(t, json.Unmarshal(body, &upd))
	assert.True(t, upd.Amount.Equal(decimal.RequireFromString("-45.5")))
	assert.Equal(t, "-45.50", jsonField(t, body, "amount"))
	assert.Equal(t, "2024-01-11", upd.Date.String())

	status, _ = s.do(t, http.MethodDelete, "/api/v1/transactions/"+food.ID.String(), tk, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = s.do(t, http.MethodGet, "/api/v1/transactions/"+food.ID.String(), tk, nil)
	assert.Equal(t, http.StatusNotFound, status)

	assert.Equal(t, []string{
		events.EntryCreated, events.EntryCreated, events.EntryCreated,
		events.EntryUpdated, events.EntryDeleted,
	}, s.events.Names())
}

func TestTransactionsBadInput(t *testing.T) {
	s := newTestServer(t)
	tk := s.register(t, "ana@example.com").AccessToken

	status, body := s.do(t, http.MethodPost, "/api/v1/transactions", tk, map[string]any{
		"type": "transfer", "title": "x", "amount": "1", "category": "c", "date": "2024-01-01",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(body), `"type"`)

	status, _ = s.do(t, http.MethodGet, "/api/v1/transactions?startDate=yesterday", tk, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.do(t, http.MethodGet, "/api/v1/transactions?startDate=2024-02-01&endDate=2024-01-01", tk, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.do(t, http.MethodGet, "/api/v1/transactions/not-a-uuid", tk, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestTransactionsAreIsolated(t *testing.T) {
	s := newTestServer(t)
	ana := s.register(t, "ana@example.com").AccessToken
	bob := s.register(t, "bob@example.com").AccessToken

	status, body := s.do(t, http.MethodPost, "/api/v1/transactions", ana, map[string]any{
		"type": "receita", "title": "salary", "amount": "10", "category": "salary", "date": "2024-01-01",
	})
	require.Equal(t, http.StatusCreated, status)
	var e ledger.Entry
	require.NoError(t, json.Unmarshal(body, &e))

	status, _ = s.do(t, http.MethodGet, "/api/v1/transactions/"+e.ID.String(), bob, nil)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = s.do(t, http.MethodDelete, "/api/v1/transactions/"+e.ID.String(), bob, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, body = s.do(t, http.MethodGet, "/api/v1/transactions", bob, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, string(body))
}

func TestProfileEndpoints(t *testing.T) {
	s := newTestServer(t)
	reg := s.register(t, "ana@example.com")
	tk := reg.AccessToken

	status, body := s.do(t, http.MethodGet, "/api/v1/users/me", tk, nil)
	require.Equal(t, http.StatusOK, status)
	assert.NotContains(t, string(body), "password")

	status, body = s.do(t, http.MethodPut, "/api/v1/users/me", tk, map[string]any{
		"firstName": "Ana Maria", "lastName": "Souza", "bio": "hi",
	})
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "Ana Maria")

	status, _ = s.do(t, http.MethodPost, "/api/v1/transactions", tk, map[string]any{
		"type": "despesa", "title": "x", "amount": "1", "category": "c", "date": "2024-01-01",
	})
	require.Equal(t, http.StatusCreated, status)

	status, _ = s.do(t, http.MethodDelete, "/api/v1/users/me", tk, nil)
	assert.Equal(t, http.StatusOK, status)

	// The access token is still well-formed but the account is gone.
	status, _ = s.do(t, http.MethodGet, "/api/v1/users/me", tk, nil)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = s.do(t, http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{"refreshToken": reg.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)
	status, _ := s.do(t, http.MethodGet, "/api/v1/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	status, body := s.do(t, http.MethodGet, "/api/v1/ready", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "ready")
}

func TestReadyReportsDownDependency(t *testing.T) {
	app := fiber.New()
	down := checkers.Broker("amqp", func() bool { return true })
	up := checkers.New("postgres", time.Second, func(context.Context) error { return nil })
	app.Get("/ready", handlers.NewHealthHandler(health.NewService(up, down)).Ready)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ready", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "not_ready", body.Status)
	assert.Equal(t, map[string]string{"postgres": health.StatusUp, "amqp": health.StatusDown}, body.Checks)
}

func TestDeletedAccountCannotCreateEntries(t *testing.T) {
	s := newTestServer(t)
	tk := s.register(t, "ana@example.com").AccessToken

	status, _ := s.do(t, http.MethodDelete, "/api/v1/users/me", tk, nil)
	require.Equal(t, http.StatusOK, status)

	status, body := s.do(t, http.MethodPost, "/api/v1/transactions", tk, map[string]any{
		"type": "despesa", "title": "late", "amount": "5.00", "category": "food", "date": "2024-01-01",
	})
	assert.Equal(t, http.StatusNotFound, status, string(body))
	assert.Empty(t, s.events.Events)

	status, body = s.do(t, http.MethodGet, "/api/v1/transactions", tk, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, string(body))
}
