package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olchaban/receipts/internal/auth"
	"github.com/olchaban/receipts/internal/calculator"
	"github.com/olchaban/receipts/internal/render"
	"github.com/olchaban/receipts/internal/storage/sqlite"
)

func setupServer(t *testing.T) *httptest.Server {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "receipts-api-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens := auth.NewJWTManager("test-secret", time.Minute, time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store)

	authSvc := NewAuthService(authenticator, store, tokens, logger)
	receiptSvc := NewReceiptService(store, calculator.Policy{}, render.English, logger)

	server := httptest.NewServer(Routes(authSvc, receiptSvc, tokens))
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, url, token string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func getWithToken(t *testing.T, url, token string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func registerAndLogin(t *testing.T, server *httptest.Server, username string) string {
	t.Helper()
	creds := map[string]string{"username": username, "password": "testpass"}

	resp := postJSON(t, server.URL+"/users/register", "", creds)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, server.URL+"/users/login", "", creds)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var tokens tokenOut
	decodeBody(t, resp, &tokens)
	require.NotEmpty(t, tokens.AccessToken)
	return tokens.AccessToken
}

func TestRegister(t *testing.T) {
	server := setupServer(t)
	creds := map[string]string{"username": "taras", "password": "testpass"}

	resp := postJSON(t, server.URL+"/users/register", "", creds)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var user userOut
	decodeBody(t, resp, &user)
	assert.Equal(t, "taras", user.Username)
	assert.NotZero(t, user.ID)

	t.Run("duplicate username is rejected", func(t *testing.T) {
		resp := postJSON(t, server.URL+"/users/register", "", creds)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var out errorOut
		decodeBody(t, resp, &out)
		assert.Equal(t, "Username already registered", out.Detail)
	})
}

func TestLogin(t *testing.T) {
	server := setupServer(t)
	resp := postJSON(t, server.URL+"/users/register", "", map[string]string{"username": "taras", "password": "testpass"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	t.Run("valid credentials return token pair", func(t *testing.T) {
		resp := postJSON(t, server.URL+"/users/login", "", map[string]string{"username": "taras", "password": "testpass"})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var tokens tokenOut
		decodeBody(t, resp, &tokens)
		assert.NotEmpty(t, tokens.AccessToken)
		assert.NotEmpty(t, tokens.RefreshToken)
		assert.Equal(t, "bearer", tokens.TokenType)
	})

	t.Run("wrong password and unknown user fail the same way", func(t *testing.T) {
		for _, creds := range []map[string]string{
			{"username": "taras", "password": "wrong"},
			{"username": "nobody", "password": "testpass"},
		} {
			resp := postJSON(t, server.URL+"/users/login", "", creds)
			require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

			var out errorOut
			decodeBody(t, resp, &out)
			assert.Equal(t, "incorrect username or password", out.Detail)
		}
	})
}

func TestRefresh(t *testing.T) {
	server := setupServer(t)
	resp := postJSON(t, server.URL+"/users/register", "", map[string]string{"username": "taras", "password": "testpass"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, server.URL+"/users/login", "", map[string]string{"username": "taras", "password": "testpass"})
	var tokens tokenOut
	decodeBody(t, resp, &tokens)

	t.Run("valid refresh token yields new access token", func(t *testing.T) {
		resp := postJSON(t, server.URL+"/users/refresh", "", map[string]string{"refresh_token": tokens.RefreshToken})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var refreshed tokenOut
		decodeBody(t, resp, &refreshed)
		assert.NotEmpty(t, refreshed.AccessToken)
		assert.Equal(t, tokens.RefreshToken, refreshed.RefreshToken)
	})

	t.Run("garbage refresh token is rejected", func(t *testing.T) {
		resp := postJSON(t, server.URL+"/users/refresh", "", map[string]string{"refresh_token": "not-a-token"})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		resp.Body.Close()
	})
}

func TestCreateReceipt(t *testing.T) {
	server := setupServer(t)
	token := registerAndLogin(t, server, "taras")

	t.Run("cash purchase with change", func(t *testing.T) {
		resp := postJSON(t, server.URL+"/receipts/", token, map[string]any{
			"products": []map[string]any{
				{"name": "soap", "price": 1.5, "quantity": 2},
				{"name": "apples", "price": 3, "quantity": 3},
			},
			"payment": map[string]any{"type": "cash", "amount": 20},
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var out receiptOut
		decodeBody(t, resp, &out)
		assert.NotZero(t, out.ID)
		assert.Equal(t, 12.0, out.Total)
		assert.Equal(t, 8.0, out.Rest)
		assert.Equal(t, 20.0, out.Payment.Amount)
		require.Len(t, out.Products, 2)
		assert.Equal(t, 3.0, out.Products[0].Total)
		assert.Equal(t, 9.0, out.Products[1].Total)
	})

	t.Run("cashless records the total as the payment amount", func(t *testing.T) {
		resp := postJSON(t, server.URL+"/receipts/", token, map[string]any{
			"products": []map[string]any{
				{"name": "apples", "price": 3, "quantity": 3},
			},
			"payment": map[string]any{"type": "cashless", "amount": 999},
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var out receiptOut
		decodeBody(t, resp, &out)
		assert.Equal(t, 9.0, out.Total)
		assert.Equal(t, 9.0, out.Payment.Amount)
		assert.Equal(t, 0.0, out.Rest)
	})

	t.Run("insufficient cash payment", func(t *testing.T) {
		resp := postJSON(t, server.URL+"/receipts/", token, map[string]any{
			"products": []map[string]any{
				{"name": "apples", "price": 3, "quantity": 3},
			},
			"payment": map[string]any{"type": "cash", "amount": 5},
		})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var out errorOut
		decodeBody(t, resp, &out)
		assert.Equal(t, "Insufficient payment", out.Detail)
	})

	t.Run("only non-positive quantities", func(t *testing.T) {
		resp := postJSON(t, server.URL+"/receipts/", token, map[string]any{
			"products": []map[string]any{
				{"name": "apples", "price": 3, "quantity": 0},
				{"name": "soap", "price": 1.5, "quantity": -2},
			},
			"payment": map[string]any{"type": "cash", "amount": 100},
		})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var out errorOut
		decodeBody(t, resp, &out)
		assert.Equal(t, "No products were bought.", out.Detail)
	})

	t.Run("unknown payment type", func(t *testing.T) {
		resp := postJSON(t, server.URL+"/receipts/", token, map[string]any{
			"products": []map[string]any{{"name": "apples", "price": 3, "quantity": 1}},
			"payment":  map[string]any{"type": "barter", "amount": 100},
		})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("requires authentication", func(t *testing.T) {
		resp := postJSON(t, server.URL+"/receipts/", "", map[string]any{
			"products": []map[string]any{{"name": "apples", "price": 3, "quantity": 1}},
			"payment":  map[string]any{"type": "cash", "amount": 100},
		})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		resp.Body.Close()
	})
}

func TestListReceipts(t *testing.T) {
	server := setupServer(t)
	taras := registerAndLogin(t, server, "taras")
	olena := registerAndLogin(t, server, "olena")

	create := func(token string, amount float64, paymentType string) {
		resp := postJSON(t, server.URL+"/receipts/", token, map[string]any{
			"products": []map[string]any{{"name": "soap", "price": amount, "quantity": 1}},
			"payment":  map[string]any{"type": paymentType, "amount": amount},
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	}
	create(taras, 10, "cash")
	create(taras, 20, "cashless")
	create(olena, 99, "cash")

	t.Run("scoped to the authenticated owner", func(t *testing.T) {
		resp := getWithToken(t, server.URL+"/receipts/", taras)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var out []receiptOut
		decodeBody(t, resp, &out)
		require.Len(t, out, 2)
		for _, r := range out {
			assert.NotEqual(t, 99.0, r.Total)
		}
	})

	t.Run("filter by payment type", func(t *testing.T) {
		resp := getWithToken(t, server.URL+"/receipts/?payment_type=cashless", taras)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var out []receiptOut
		decodeBody(t, resp, &out)
		require.Len(t, out, 1)
		assert.Equal(t, 20.0, out[0].Total)
	})

	t.Run("filter by min total", func(t *testing.T) {
		resp := getWithToken(t, server.URL+"/receipts/?min_total=15", taras)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var out []receiptOut
		decodeBody(t, resp, &out)
		require.Len(t, out, 1)
		assert.Equal(t, 20.0, out[0].Total)
	})

	t.Run("pagination", func(t *testing.T) {
		resp := getWithToken(t, server.URL+"/receipts/?skip=1&limit=1", taras)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var out []receiptOut
		decodeBody(t, resp, &out)
		require.Len(t, out, 1)
		assert.Equal(t, 20.0, out[0].Total)
	})

	t.Run("requires authentication", func(t *testing.T) {
		resp := getWithToken(t, server.URL+"/receipts/", "")
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("bad filter value", func(t *testing.T) {
		resp := getWithToken(t, server.URL+"/receipts/?min_total=lots", taras)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		resp.Body.Close()
	})
}

func TestPublicReceiptText(t *testing.T) {
	server := setupServer(t)
	token := registerAndLogin(t, server, "taras")

	resp := postJSON(t, server.URL+"/receipts/", token, map[string]any{
		"products": []map[string]any{
			{"name": "soap", "price": 1.5, "quantity": 2},
			{"name": "apples", "price": 3, "quantity": 3},
		},
		"payment": map[string]any{"type": "cash", "amount": 20},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var created receiptOut
	decodeBody(t, resp, &created)

	t.Run("no authentication required", func(t *testing.T) {
		resp := getWithToken(t, fmt.Sprintf("%s/receipts/%d?line_width=40", server.URL, created.ID), "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		defer resp.Body.Close()

		assert.Contains(t, resp.Header.Get("Content-Type"), "text/plain")
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)

		text := string(body)
		assert.Contains(t, text, "taras")
		assert.Contains(t, text, "Thank you for your purchase!")
		assert.Contains(t, text, strings.Repeat("=", 40))
		assert.Contains(t, text, "2.00 x 1.50")
	})

	t.Run("missing receipt returns 404", func(t *testing.T) {
		resp := getWithToken(t, server.URL+"/receipts/999", "")
		require.Equal(t, http.StatusNotFound, resp.StatusCode)

		var out errorOut
		decodeBody(t, resp, &out)
		assert.Equal(t, "Receipt not found", out.Detail)
	})

	t.Run("invalid line width", func(t *testing.T) {
		resp := getWithToken(t, fmt.Sprintf("%s/receipts/%d?line_width=0", server.URL, created.ID), "")
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		resp.Body.Close()
	})
}
