package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/spartan077/Taxi-Share/internal/model"
	"github.com/spartan077/Taxi-Share/internal/shared/auth"
	"github.com/spartan077/Taxi-Share/internal/shared/config"

	"github.com/google/uuid"
)

func main() {
	userID := flag.String("user", "", "User ID (default: random UUID)")
	email := flag.String("email", "test@example.com", "Email address")
	role := flag.String("role", model.RoleUser, "Role (USER|ADMIN)")
	gender := flag.String("gender", model.GenderFemale, "Gender (male|female)")
	flag.Parse()

	if *userID == "" {
		*userID = uuid.NewString()
	}

	// Загружаем конфигурацию (тот же способ, что и в сервисе)
	cfg := config.MustLoad()
	jwtService := auth.NewJWTService(cfg.JWT)

	token, err := jwtService.GenerateToken(*userID, *email, *role, *gender)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating JWT token: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nJWT token generated\n\n")
	fmt.Printf("User ID: %s\n", *userID)
	fmt.Printf("Email:   %s\n", *email)
	fmt.Printf("Role:    %s\n", *role)
	fmt.Printf("Gender:  %s\n", *gender)
	fmt.Printf("\nToken:\n%s\n", token)
	fmt.Printf("\nExample:\n")
	fmt.Printf("curl -X POST http://localhost:%d/rides \\\n", cfg.Services.GroupServicePort)
	fmt.Printf("  -H 'Authorization: Bearer %s' \\\n", token)
	fmt.Printf("  -H 'Content-Type: application/json' \\\n")
	fmt.Printf("  -d '{\"source\":\"Pune\",\"destination\":\"Mumbai\",\"time_slot\":\"2025-03-14T06:00:00Z\",\"seats_required\":1,\"pricing_id\":\"pune-mumbai-sedan\"}'\n\n")
}
