package user

import (
	"strings"
	"time"
)

// User is keyed by Email. Name is overwritten whenever a sign-in supplies a
// different one; users are never deleted.
type User struct {
	Email     string    `yaml:"email" json:"email"`
	Name      string    `yaml:"name" json:"name"`
	CreatedAt time.Time `yaml:"created_at" json:"created_at"`
}

// NormalizeEmail is the single identity policy: surrounding whitespace is
// dropped and the address is compared lower-cased.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func NormalizeName(name string) string {
	return strings.TrimSpace(name)
}
