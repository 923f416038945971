// seed inserts demo users with referral codes into the local dev database.
// Run: go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/carton-caps/referrals/internal/infrastructure/postgres"
	"github.com/google/uuid"
)

type userSpec struct {
	referralCode string
	firstName    string
	lastName     string
	email        string
}

var users = []userSpec{
	{"ABC123", "Alice", "Anderson", "alice@test.local"},
	{"DEF456", "Ben", "Brooks", "ben@test.local"},
	{"GHI789", "Carla", "Chen", "carla@test.local"},
	{"JKL012", "Dmitri", "Dorn", "dmitri@test.local"},
	{"MNO345", "Esther", "Eze", "esther@test.local"},
}

func main() {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	for _, u := range users {
		id := uuid.NewString()
		_, err := pool.Exec(ctx, `
			INSERT INTO users (id, referral_code, first_name, last_name, email)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (referral_code) DO NOTHING`,
			id, u.referralCode, u.firstName, u.lastName, u.email,
		)
		if err != nil {
			log.Fatalf("insert user %s: %v", u.email, err)
		}
		fmt.Printf("user %s %s (%s) code=%s\n", u.firstName, u.lastName, u.email, u.referralCode)
	}

	fmt.Println("seed complete")
}
