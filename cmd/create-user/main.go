// CLI tool to create a coach account with a bcrypt-hashed password and an
// API token, optionally with a first client.
// Usage: go run ./cmd/create-user
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, os.Getenv("DB_URL"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close(ctx)

	reader := bufio.NewReader(os.Stdin)
	prompt := func(label string) string {
		fmt.Print(label)
		s, _ := reader.ReadString('\n')
		return strings.TrimSpace(s)
	}

	username := prompt("Username: ")
	email := prompt("Email: ")
	password := prompt("Password: ")
	clientName := prompt("First client name (blank to skip): ")

	if username == "" || password == "" {
		fmt.Fprintln(os.Stderr, "Username and password are required")
		os.Exit(1)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error hashing password: %v\n", err)
		os.Exit(1)
	}

	authToken := uuid.New().String()

	var coachID, clientID int
	err = pgx.BeginFunc(ctx, conn, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO coaches (username, email, password, auth_token)
			 VALUES ($1, $2, $3, $4) RETURNING id`,
			username, email, string(hash), authToken,
		).Scan(&coachID)
		if err != nil {
			return fmt.Errorf("creating coach: %w", err)
		}
		if clientName == "" {
			return nil
		}
		if err := tx.QueryRow(ctx,
			`INSERT INTO clients (coach_id, name) VALUES ($1, $2) RETURNING id`,
			coachID, clientName,
		).Scan(&clientID); err != nil {
			return fmt.Errorf("creating client: %w", err)
		}
		return nil
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nCoach created successfully!\n")
	fmt.Printf("  ID:         %d\n", coachID)
	fmt.Printf("  Username:   %s\n", username)
	fmt.Printf("  Auth Token: %s\n", authToken)
	if clientID != 0 {
		fmt.Printf("  Client ID:  %d (%s)\n", clientID, clientName)
	}
}
