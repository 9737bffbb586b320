// Command organizer-token prints a bearer token that unlocks the organizer endpoints.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Dosada05/party-tournament/middleware"
	"github.com/joho/godotenv"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	subject := flag.String("sub", "organizer", "token subject")
	ttl := flag.Duration("ttl", 12*time.Hour, "token lifetime")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn("could not read .env", slog.Any("error", err))
	}

	secret := os.Getenv("JWT_SECRET_KEY")
	if secret == "" {
		logger.Error("JWT_SECRET_KEY is not set")
		os.Exit(1)
	}

	token, err := middleware.IssueToken([]byte(secret), *subject, middleware.RoleOrganizer, *ttl)
	if err != nil {
		logger.Error("failed to sign token", slog.Any("error", err))
		os.Exit(1)
	}
	fmt.Println(token)
}
