// Package db owns the Postgres connection and the schema.
//
// New opens a pgx pool and pings it; Migrate applies the goose migrations
// embedded under migrations/. Repositories only ever see the Pool
// interface, which pgxmock also satisfies.
package db
