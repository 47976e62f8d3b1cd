// This is a **mock authentication service**, designed to provide JWT tokens
// for the fleet service, simulating user authentication.
package main

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/gartstein/fleet/internal/fleet/auth"
	"go.uber.org/zap"
)

const (
	defaultPort   = "8081"       // Default port for the authentication service
	defaultSecret = "jwt_secret" // Secret for signing JWT
)

// TokenResponse represents the response structure
type TokenResponse struct {
	Token     string    `json:"token"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

type tokenIssuer struct {
	secret string
	logger *zap.Logger
}

// tokenHandler issues an operator token, or an admin token for ?role=admin.
func (ti *tokenIssuer) tokenHandler(w http.ResponseWriter, r *http.Request) {
	role := r.URL.Query().Get("role")
	switch role {
	case "":
		role = auth.RoleOperator
	case auth.RoleOperator, auth.RoleAdmin:
	default:
		http.Error(w, "unknown role", http.StatusBadRequest)
		return
	}

	userID := r.URL.Query().Get("user")
	if userID == "" {
		userID = "12345"
	}

	token, err := auth.GenerateToken(userID, role, ti.secret, auth.DefaultTokenTTL)
	if err != nil {
		ti.logger.Error("Failed to generate token", zap.Error(err))
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	resp := TokenResponse{
		Token:     token,
		Role:      role,
		ExpiresAt: time.Now().Add(auth.DefaultTokenTTL).UTC(),
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		ti.logger.Error("Failed to encode token", zap.Error(err))
	}
}

func main() {
	logger, _ := zap.NewProduction()
	defer func(logger *zap.Logger) {
		_ = logger.Sync()
	}(logger)

	port := os.Getenv("AUTH_PORT")
	if port == "" {
		port = defaultPort
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = defaultSecret
	}

	issuer := &tokenIssuer{secret: secret, logger: logger.Named("auth_service")}
	mux := http.NewServeMux()
	mux.HandleFunc("/token", issuer.tokenHandler)

	logger.Info("Authentication service running", zap.String("port", port))
	server := &http.Server{Addr: ":" + port, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	if err := server.ListenAndServe(); err != nil {
		logger.Fatal("Authentication service stopped", zap.Error(err))
	}
}
