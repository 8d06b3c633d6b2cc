package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/spartan077/Taxi-Share/internal/shared/auth"
	"github.com/spartan077/Taxi-Share/internal/shared/config"
)

func main() {
	token := flag.String("token", "", "JWT token to verify")
	flag.Parse()

	if *token == "" {
		fmt.Fprintln(os.Stderr, "Error: -token flag is required")
		fmt.Fprintln(os.Stderr, "Usage: go run ./cmd/verify-jwt -token=<JWT_TOKEN>")
		os.Exit(1)
	}

	// Загружаем конфигурацию (тот же способ, что и в сервисе)
	cfg := config.MustLoad()
	fmt.Printf("Config dir: %s\n", os.Getenv("CONFIG_DIR"))
	fmt.Printf("JWT expiry: %d minutes\n\n", cfg.JWT.ExpiryMinutes)

	claims, err := auth.NewJWTService(cfg.JWT).ValidateToken(*token)
	if err != nil {
		fmt.Printf("Token validation FAILED: %v\n", err)
		os.Exit(1)
	}

	viewer := claims.Viewer()
	fmt.Printf("Token is VALID\n\n")
	fmt.Printf("Claims:\n")
	fmt.Printf("  User ID:    %s\n", viewer.UserID)
	fmt.Printf("  Email:      %s\n", claims.Email)
	fmt.Printf("  Role:       %s (admin: %t)\n", viewer.Role, viewer.IsAdmin())
	fmt.Printf("  Gender:     %s\n", viewer.Gender)
	fmt.Printf("  Issuer:     %s\n", claims.Issuer)
	fmt.Printf("  Issued At:  %s\n", claims.IssuedAt.Time)
	fmt.Printf("  Expires At: %s\n", claims.ExpiresAt.Time)
}
