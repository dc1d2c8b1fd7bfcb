package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(handler http.Handler) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	client := New(server.URL, zerolog.Nop())
	return client, server
}

func TestClient_Login(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/accounts/login", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)

		var req LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		if req.Email != "jan@example.com" || req.Password != "haslo1234" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(LoginResponse{AccessToken: "tok-1", TokenType: "bearer"})
	}))
	defer server.Close()

	resp, err := client.Login(context.Background(), "jan@example.com", "haslo1234")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", resp.AccessToken)

	_, err = client.Login(context.Background(), "jan@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestClient_LoginUnreachableServerIsNotCredentialsError(t *testing.T) {
	// Grab a port that is guaranteed to refuse connections
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := New(url, zerolog.Nop())

	_, err := client.Login(context.Background(), "jan@example.com", "haslo1234")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials,
		"transport failures must not read as wrong credentials")
}

func TestClient_MeSendsBearerToken(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/accounts/me", r.URL.Path)

		if r.Header.Get("Authorization") != "Bearer tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(Account{Email: "jan@example.com", FullName: "Jan Kowalski"})
	}))
	defer server.Close()

	account, err := client.Me(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "Jan Kowalski", account.FullName)

	_, err = client.Me(context.Background(), "expired")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestClient_RegisterValidationErrors(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"detail":[{"loc":["body","phone"],"msg":"Phone number must be 9 digits"},{"loc":["body","password"],"msg":"Password must contain at least one digit"}]}`))
	}))
	defer server.Close()

	_, err := client.Register(context.Background(), RegisterRequest{Email: "x@example.com"})
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	fields := verr.ByField()
	assert.Equal(t, "Phone number must be 9 digits", fields["phone"])
	assert.Equal(t, "Password must contain at least one digit", fields["password"])
}

func TestClient_AcceptReportConflict(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/reports/42/accept", r.URL.Path)
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"detail":"volunteer already has an active report"}`))
	}))
	defer server.Close()

	_, err := client.AcceptReport(context.Background(), "tok", 42)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestClient_ListReportsFilter(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Lublin", r.URL.Query().Get("city"))
		assert.Equal(t, "3", r.URL.Query().Get("report_type_id"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		json.NewEncoder(w).Encode([]Report{{ID: 1, City: "Lublin"}})
	}))
	defer server.Close()

	reports, err := client.ListReports(context.Background(), "tok", ReportFilter{
		City:         "Lublin",
		ReportTypeID: 3,
		Limit:        10,
	})
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "Lublin", reports[0].City)
}

func TestClient_MyAcceptedReportNotFound(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := client.MyAcceptedReport(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClient_ContextCancellation(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Me(ctx, "tok")
	assert.Error(t, err)
}
