// Command admintoken prints a signed admin access token for the storefront
// admin endpoints.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/Skotchmaster/storefront/pkg/config"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

func main() {
	ttl := flag.Duration("ttl", 12*time.Hour, "token lifetime")
	subject := flag.String("sub", "", "token subject (random when empty)")
	flag.Parse()

	_ = godotenv.Load(".env")

	cfg := config.Load()
	config.MustNonEmptyBytes(cfg.JWTAccessSecret, "JWT_SECRET")

	sub := *subject
	if sub == "" {
		sub = uuid.NewString()
	}

	tok, err := tokens.IssueAccessToken(cfg.JWTAccessSecret, sub, tokens.RoleAdmin, time.Now().Add(*ttl))
	if err != nil {
		log.Fatalf("sign token: %v", err)
	}
	fmt.Println(tok)
}
