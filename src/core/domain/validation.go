package domain

import (
	"fmt"
	"regexp"
	"unicode/utf8"
)

const (
	MinUsernameLength    = 3
	MinPasswordLength    = 6
	MinJokeNameLength    = 3
	MinJokeContentLength = 10
)

var invalidUsernameChars = regexp.MustCompile(`[^a-zA-Z0-9_]+`)

// ValidateUsername returns the user-facing message for an invalid username, or "".
func ValidateUsername(username string) string {
	if utf8.RuneCountInString(username) < MinUsernameLength {
		return fmt.Sprintf("Username must be at least %d characters long", MinUsernameLength)
	}
	if invalidUsernameChars.MatchString(username) {
		return "You only could use alphanumeric and underscore as your username"
	}
	return ""
}

// ValidatePassword returns the user-facing message for an invalid password, or "".
func ValidatePassword(password string) string {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return fmt.Sprintf("Passwords must be at least %d characters long", MinPasswordLength)
	}
	return ""
}

// ValidateCredentials checks a login or registration form.
func ValidateCredentials(username, password string) FieldErrors {
	errs := FieldErrors{}
	errs.Add("username", ValidateUsername(username))
	errs.Add("password", ValidatePassword(password))
	return errs
}

// ValidateJoke checks a new joke form.
func ValidateJoke(name, content string) FieldErrors {
	errs := FieldErrors{}
	if utf8.RuneCountInString(name) < MinJokeNameLength {
		errs.Add("name", fmt.Sprintf("The joke's name should be %d characters or more", MinJokeNameLength))
	}
	if utf8.RuneCountInString(content) < MinJokeContentLength {
		errs.Add("content", fmt.Sprintf("Joke should be %d characters or more", MinJokeContentLength))
	}
	return errs
}
