// Package auth validates demo credentials locally and synthesizes the demo
// user record. There is no backend: any well-formed credential pair logs in.
package auth

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/matthieukhl/storefront/internal/models"
)

// MinPasswordLength is the shortest password accepted, in characters
const MinPasswordLength = 8

// PasswordSymbols is the punctuation set that satisfies the symbol rule
const PasswordSymbols = `!@#$%^&*(),.?":{}|<>`

// emailPart excludes '@' and whitespace, including Unicode spaces, line
// separators and the byte order mark.
const emailPart = `[^@\s\v\p{Z}\x{FEFF}]+`

var (
	emailPattern  = regexp.MustCompile(`^` + emailPart + `@` + emailPart + `\.` + emailPart + `$`)
	upperPattern  = regexp.MustCompile(`[A-Z]`)
	lowerPattern  = regexp.MustCompile(`[a-z]`)
	digitPattern  = regexp.MustCompile(`\d`)
	symbolPattern = regexp.MustCompile(`[` + regexp.QuoteMeta(PasswordSymbols) + `]`)
)

// ValidateEmail reports whether email has the local@domain.tld shape.
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidatePassword reports whether password satisfies every rule of the
// password policy.
func ValidatePassword(password string) bool {
	return len(PasswordProblems(password)) == 0
}

// PasswordProblems lists the rules the password violates, in a stable order.
func PasswordProblems(password string) []string {
	var problems []string
	if utf8.RuneCountInString(password) < MinPasswordLength {
		problems = append(problems, "must be at least 8 characters")
	}
	if !upperPattern.MatchString(password) {
		problems = append(problems, "must contain an uppercase letter")
	}
	if !lowerPattern.MatchString(password) {
		problems = append(problems, "must contain a lowercase letter")
	}
	if !digitPattern.MatchString(password) {
		problems = append(problems, "must contain a digit")
	}
	if !symbolPattern.MatchString(password) {
		problems = append(problems, "must contain one of "+PasswordSymbols)
	}
	return problems
}

// DemoUser builds the mock user returned for a successful login. Only the
// email, username and password come from the caller.
func DemoUser(email, password string) models.User {
	username, _, _ := strings.Cut(email, "@")
	return models.User{
		ID:       1,
		Email:    email,
		Username: username,
		Password: password,
		Name: models.Name{
			Firstname: "Demo",
			Lastname:  "User",
		},
		Address: models.Address{
			City:    "Demo City",
			Street:  "Demo Street",
			Number:  123,
			Zipcode: "12345",
			Geolocation: models.Geolocation{
				Lat:  "40.7128",
				Long: "-74.0060",
			},
		},
		Phone: "+1-555-123-4567",
	}
}
