package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mcdev12/gooseclicker/go/internal/dbconfig"
	"github.com/mcdev12/gooseclicker/go/internal/users"
)

// The reserved accounts are always seeded so a fresh database can create
// rounds and exercise the zero-score role.
var reservedUsernames = []string{"admin", "Никита"}

func main() {
	count := 20
	if v := os.Getenv("SEED_USERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			fmt.Fprintf(os.Stderr, "invalid SEED_USERS %q\n", v)
			os.Exit(1)
		}
		count = n
	}

	// 1) Build the username list
	faker := gofakeit.New(0)
	usernames := append([]string(nil), reservedUsernames...)
	for range count {
		usernames = append(usernames, faker.Username())
	}

	// 2) Connect using shared dbconfig
	cfg := dbconfig.NewConfigFromEnv()
	pool, err := pgxpool.New(context.Background(), cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	// 3) Insert and count
	var (
		total    = len(usernames)
		inserted int
		skipped  int
		errs     int
	)

	for _, name := range usernames {
		cmdTag, err := pool.Exec(context.Background(), `
            INSERT INTO users (username, role)
            VALUES ($1, $2)
            ON CONFLICT ((lower(username))) DO NOTHING
        `,
			name, string(users.DeriveRole(name)),
		)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error inserting user %s: %v\n", name, err)
			errs++
			continue
		}
		if cmdTag.RowsAffected() == 1 {
			inserted++
		} else {
			skipped++
		}
	}

	// 4) Print summary
	fmt.Printf(
		"Users seed complete: %d total, %d inserted, %d skipped, %d errors\n",
		total, inserted, skipped, errs,
	)
}
