package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/pkg/config"
	"go-inventory-ledger/pkg/jwt"

	"github.com/joho/godotenv"
)

// issue-token mints a bearer token for an operator, signed with JWT_SECRET.
func main() {
	userID := flag.String("user", "admin", "operator id recorded as created_by")
	name := flag.String("name", "Administrator", "operator display name")
	email := flag.String("email", "admin@example.com", "operator email")
	privileges := flag.String("privileges", "", "comma separated privilege codes (default: all)")
	flag.Parse()

	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, relying on system env")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Resolve privileges
	privs := model.AllPrivileges
	if *privileges != "" {
		privs = nil
		for _, p := range strings.Split(*privileges, ",") {
			if p = strings.TrimSpace(p); p != "" {
				privs = append(privs, p)
			}
		}
	}

	// 3. Sign
	token, err := jwt.NewManager(cfg.JWTSecret, cfg.JWTTTL).GenerateToken(*userID, *email, *name, privs)
	if err != nil {
		log.Fatalf("Failed to sign token: %v", err)
	}

	log.Printf("Token for %s valid for %s", *userID, cfg.JWTTTL)
	fmt.Println(token)
}
