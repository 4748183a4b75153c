// Package domain contains the core domain model for the application.
//
// This package defines:
//   - Entities: User and Joke
//   - Slug generation for joke titles
//   - Input validation rules for credentials and jokes
//   - Domain Errors: Business rule violation errors
//
// Rules for this package:
//   - No external dependencies except the standard library and google/uuid
//   - No infrastructure concerns (database, HTTP, etc.)
//
// Example:
//
//	errs := domain.ValidateJoke(name, content)
//	if errs.Any() {
//	    return errs
//	}
//	slug := domain.JokeSlug(name)
package domain
