// Command devtoken prints a signed bearer token for local testing.
//
//	go run ./cmd/devtoken -user alice -email alice@example.com
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"conferencecentral/config"
	"conferencecentral/internal/adapters/auth"
	"conferencecentral/internal/domain"
)

func main() {
	userID := flag.String("user", "", "user id placed in the sub claim")
	email := flag.String("email", "", "email placed in the email claim")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	if *userID == "" {
		log.Fatal("-user is required")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	token, err := auth.NewJWTIssuer(cfg.JWTSecret).Issue(domain.Identity{UserID: *userID, Email: *email}, *ttl)
	if err != nil {
		log.Fatalf("issue token: %v", err)
	}
	fmt.Println(token)
}
