package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/sayalijadhao19/email-assist/internal/config"
	"github.com/sayalijadhao19/email-assist/internal/middleware"
	"github.com/sayalijadhao19/email-assist/pkg/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Assist.Server.Addr = ":0"
	cfg.Assist.Auth.Token = "test-secret"
	cfg.Assist.Matcher.TopK = 2
	cfg.Assist.Matcher.MinScore = 1
	return cfg
}

func initTestHandler(t *testing.T) {
	t.Helper()
	handler = mcp.NewHandler(testConfig())
	t.Cleanup(func() {
		handler.Close()
		handler = nil
	})
}

func TestHealthHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	healthHandler(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.Equal(t, "ok", resp["status"])
}

func TestListToolsHandler(t *testing.T) {
	initTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/tools", nil)
	w := httptest.NewRecorder()

	listToolsHandler(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var tools []map[string]string
	err := json.Unmarshal(w.Body.Bytes(), &tools)
	require.NoError(t, err)

	var names []string
	for _, tool := range tools {
		names = append(names, tool["name"])
	}
	assert.Contains(t, names, "legal_analyze_email")
	assert.Contains(t, names, "legal_draft_reply")
	assert.Contains(t, names, "legal_process_email")
	assert.Contains(t, names, "legal_clause_extract")
}

func TestLegalToolHandler_ProcessEmail(t *testing.T) {
	initTestHandler(t)

	router := mux.NewRouter()
	router.HandleFunc("/tools/legal/{tool}", legalToolHandler).Methods("POST")

	body := `{"email_text": "Dear Counsel, can we terminate for cause? Regards, Ops Team"}`
	req := httptest.NewRequest(http.MethodPost, "/tools/legal/process_email", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]json.RawMessage
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Contains(t, resp, "analysis")
	assert.Equal(t, "null", string(resp["draft_reply"]))
}

func TestLegalToolHandler_UnknownTool(t *testing.T) {
	initTestHandler(t)

	router := mux.NewRouter()
	router.HandleFunc("/tools/legal/{tool}", legalToolHandler).Methods("POST")

	req := httptest.NewRequest(http.MethodPost, "/tools/legal/no_such_tool", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestLegalToolHandler_MalformedBody(t *testing.T) {
	initTestHandler(t)

	router := mux.NewRouter()
	router.HandleFunc("/tools/legal/{tool}", legalToolHandler).Methods("POST")

	req := httptest.NewRequest(http.MethodPost, "/tools/legal/analyze_email", strings.NewReader(`{not json`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthMiddleware_NoToken(t *testing.T) {
	authMW := middleware.AuthMiddleware(testConfig())

	router := mux.NewRouter()
	router.Use(authMW)
	router.HandleFunc("/configure", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/configure", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	authMW := middleware.AuthMiddleware(testConfig())

	router := mux.NewRouter()
	router.Use(authMW)
	router.HandleFunc("/configure", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/configure?token=wrong", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_WithToken(t *testing.T) {
	authMW := middleware.AuthMiddleware(testConfig())

	router := mux.NewRouter()
	router.Use(authMW)
	router.HandleFunc("/configure", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/configure", nil)
	req.Header.Set("Authorization", "Bearer test-secret")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddleware_HealthExempt(t *testing.T) {
	authMW := middleware.AuthMiddleware(testConfig())

	router := mux.NewRouter()
	router.Use(authMW)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLoggerMiddleware(t *testing.T) {
	nextCalled := false
	h := middleware.Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.True(t, nextCalled)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRecovererMiddleware_Panic(t *testing.T) {
	h := middleware.Recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("test panic")
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
