// Package usecase holds the application services.
//
// Services depend only on ports and domain types. HTTP concerns (cookies,
// redirects, rendering) stay in src/app.
package usecase
