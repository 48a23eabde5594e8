// Package validation checks raw user input before it reaches the library
// service. Every validator returns "" for valid input and a message otherwise.
package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// EarliestYear is the lower bound for a publication year.
const EarliestYear = -4000

var (
	validate = validator.New()
	digits   = regexp.MustCompile(`^\d+$`)
)

// now is replaced in tests.
var now = time.Now

func ValidateTitle(title string) string {
	if strings.TrimSpace(title) == "" {
		return "Enter the book title"
	}
	return ""
}

func ValidateAuthor(author string) string {
	if strings.TrimSpace(author) == "" {
		return "Enter the author's name"
	}
	return ""
}

// ParseYear validates year and returns it as an integer.
func ParseYear(year string) (int, string) {
	year = strings.TrimSpace(year)
	if year == "" {
		return 0, "Enter the publication year"
	}
	n, err := strconv.Atoi(year)
	if err != nil {
		return 0, "The year must be a whole number"
	}
	if current := now().Year(); n < EarliestYear || n > current {
		return 0, fmt.Sprintf("The year must be between %d and %d", EarliestYear, current)
	}
	return n, ""
}

func ValidateYear(year string) string {
	_, msg := ParseYear(year)
	return msg
}

func ValidateName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "Enter the user's name"
	}
	return ""
}

func ValidateEmail(email string) string {
	email = strings.TrimSpace(email)
	if email == "" {
		return "Enter the user's email address"
	}
	if err := validate.Var(email, "email"); err != nil {
		return "The email address is not valid"
	}
	return ""
}

// ValidateID accepts the decimal IDs the service hands out.
func ValidateID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return "Enter an ID"
	}
	if !digits.MatchString(id) {
		return "An ID may contain digits only"
	}
	return ""
}

// First returns the first non-empty message.
func First(msgs ...string) string {
	for _, m := range msgs {
		if m != "" {
			return m
		}
	}
	return ""
}
