// Package repo contains PostgreSQL implementations of repository interfaces.
//
// This package implements the ports defined in src/core/ports:
//   - UserRepository (user_repo.go)
//   - JokeRepository (joke_repo.go)
//
// Not-found rows map to domain not-found errors and unique violations
// (username, slug) map to domain conflict errors.
//
// An in-memory implementation of the same ports lives in repo/memory.
package repo

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return false
}
