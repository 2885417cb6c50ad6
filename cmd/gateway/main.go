package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/sayalijadhao19/email-assist/internal/audit"
	"github.com/sayalijadhao19/email-assist/internal/config"
	"github.com/sayalijadhao19/email-assist/internal/middleware"
	"github.com/sayalijadhao19/email-assist/pkg/mcp"
)

var handler *mcp.Handler

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	// Create MCP handler
	handler = mcp.NewHandler(cfg)
	defer handler.Close()

	// Set up router
	router := mux.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.AuthMiddleware(cfg))

	// MCP endpoint
	router.PathPrefix("/mcp").Handler(handler)

	// Health endpoint
	router.HandleFunc("/health", healthHandler).Methods("GET")

	// Tools endpoints
	router.HandleFunc("/tools", listToolsHandler).Methods("GET")
	router.HandleFunc("/tools/legal/{tool}", legalToolHandler).Methods("POST")

	// Audit trail
	router.HandleFunc("/audit", auditHandler).Methods("GET")

	// Configuration API
	router.PathPrefix("/configure").Handler(config.NewConfigAPI(cfg).Router())

	// Start server
	srv := &http.Server{
		Addr:         cfg.Assist.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting Legal Email Assistant gateway on %s", cfg.Assist.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func listToolsHandler(w http.ResponseWriter, r *http.Request) {
	if handler == nil {
		http.Error(w, "handler not initialized", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(handler.ListTools())
}

func legalToolHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	toolName := vars["tool"]
	executeToolHandler(w, r, "legal", toolName)
}

func auditHandler(w http.ResponseWriter, r *http.Request) {
	if handler == nil {
		http.Error(w, "handler not initialized", http.StatusInternalServerError)
		return
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	entries, err := handler.AuditLogs(limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []audit.Entry{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}

func executeToolHandler(w http.ResponseWriter, r *http.Request, workerName, toolName string) {
	if handler == nil {
		http.Error(w, "handler not initialized", http.StatusInternalServerError)
		return
	}

	var args map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&args); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	argsJSON, _ := json.Marshal(args)
	fullToolName := workerName + "_" + toolName

	result, err := handler.ExecuteTool(r.Context(), fullToolName, argsJSON)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(result)
}
