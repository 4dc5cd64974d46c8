package services

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/dmitrijs2005/codepulse/internal/server/config"
)

// CheckPassword returns one message per policy rule the password breaks.
// Lengths count characters, not bytes.
func CheckPassword(p config.PasswordPolicy, password string) []string {
	var problems []string

	if utf8.RuneCountInString(password) < p.RequiredLength {
		problems = append(problems, fmt.Sprintf("Passwords must be at least %d characters.", p.RequiredLength))
	}

	var digit, lower, upper, other bool
	unique := make(map[rune]struct{})
	for _, r := range password {
		unique[r] = struct{}{}
		switch {
		case r >= '0' && r <= '9':
			digit = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			other = true
		}
	}

	if p.RequireNonAlphanumeric && !other {
		problems = append(problems, "Passwords must have at least one non alphanumeric character.")
	}
	if p.RequireDigit && !digit {
		problems = append(problems, "Passwords must have at least one digit ('0'-'9').")
	}
	if p.RequireLowercase && !lower {
		problems = append(problems, "Passwords must have at least one lowercase ('a'-'z').")
	}
	if p.RequireUppercase && !upper {
		problems = append(problems, "Passwords must have at least one uppercase ('A'-'Z').")
	}
	if len(unique) < p.RequiredUniqueChars {
		problems = append(problems, fmt.Sprintf("Passwords must use at least %d different characters.", p.RequiredUniqueChars))
	}

	return problems
}
