package config

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/spf13/viper"
)

// ConfigAPI exposes runtime configuration over HTTP
type ConfigAPI struct {
	mu  sync.RWMutex
	cfg *Config
}

// NewConfigAPI creates a configuration API backed by the given config
func NewConfigAPI(cfg *Config) *ConfigAPI {
	return &ConfigAPI{cfg: cfg}
}

// Current returns the active configuration
func (a *ConfigAPI) Current() *Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cfg
}

// Router returns a router serving the config endpoints
func (a *ConfigAPI) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/configure", a.getConfig).Methods("GET")
	r.HandleFunc("/configure", a.updateConfig).Methods("POST")
	r.HandleFunc("/configure/reload", a.reloadConfig).Methods("POST")
	r.HandleFunc("/configure/validate", a.validateConfig).Methods("GET")
	return r
}

func (a *ConfigAPI) getConfig(w http.ResponseWriter, r *http.Request) {
	a.mu.RLock()
	safe := safeConfigCopy(a.cfg)
	a.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(safe)
}

func (a *ConfigAPI) updateConfig(w http.ResponseWriter, r *http.Request) {
	var updated Config
	if err := json.NewDecoder(r.Body).Decode(&updated); err != nil {
		http.Error(w, "invalid config payload: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := updated.Validate(); err != nil {
		http.Error(w, "config rejected: "+err.Error(), http.StatusBadRequest)
		return
	}

	a.mu.Lock()
	*a.cfg = updated
	a.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "updated"})
}

func (a *ConfigAPI) reloadConfig(w http.ResponseWriter, r *http.Request) {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			http.Error(w, "reload failed: "+err.Error(), http.StatusInternalServerError)
			return
		}
	}

	var fresh Config
	if err := viper.Unmarshal(&fresh); err != nil {
		http.Error(w, "reload failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	a.mu.Lock()
	*a.cfg = fresh
	a.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "reloaded"})
}

func (a *ConfigAPI) validateConfig(w http.ResponseWriter, r *http.Request) {
	a.mu.RLock()
	err := a.cfg.Validate()
	a.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]string{"status": "invalid", "error": err.Error()})
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"status": "valid"})
}

// safeConfigCopy returns a copy with secrets redacted
func safeConfigCopy(cfg *Config) *Config {
	safe := *cfg
	if safe.Assist.Auth.Token != "" {
		safe.Assist.Auth.Token = "***"
	}
	return &safe
}
