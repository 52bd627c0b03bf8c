// Package validation provides input validation for registration and content.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"
)

// MinimumAge is the youngest age allowed to register, in years.
const MinimumAge = 13

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_\-]+$`)
	nonDigitRegex = regexp.MustCompile(`\D`)
)

// ValidateEmail checks basic email format.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("informe um e-mail")
	}
	if len(email) > 254 {
		return fmt.Errorf("e-mail muito longo")
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("informe um e-mail válido")
	}
	return nil
}

// ValidateUsername checks username length and allowed characters.
func ValidateUsername(username string) error {
	if len(username) < 3 {
		return fmt.Errorf("o nome de usuário deve ter pelo menos 3 caracteres")
	}
	if len(username) > 30 {
		return fmt.Errorf("o nome de usuário deve ter no máximo 30 caracteres")
	}
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("use apenas letras, números, sublinhado e hífen")
	}
	return nil
}

// NormalizePhone strips every non-digit character from a phone number.
func NormalizePhone(phone string) string {
	return nonDigitRegex.ReplaceAllString(phone, "")
}

// ValidatePhone checks a normalized Brazilian phone number. Accepts landline
// (10 digits) and mobile (11 digits) formats.
func ValidatePhone(digits string) error {
	if digits == "" {
		return fmt.Errorf("informe um telefone")
	}
	if len(digits) < 10 || len(digits) > 11 {
		return fmt.Errorf("o telefone deve ter 10 ou 11 dígitos com DDD")
	}
	return nil
}

// ValidateBirthDate rejects future dates and applicants below the minimum age.
func ValidateBirthDate(birth time.Time, now time.Time) error {
	if birth.After(now) {
		return fmt.Errorf("a data de nascimento não pode estar no futuro")
	}
	years := int(now.Sub(birth).Hours() / 24 / 365)
	if years < MinimumAge {
		return fmt.Errorf("você precisa ter pelo menos %d anos para se cadastrar", MinimumAge)
	}
	return nil
}

// ValidateName checks a first or last name field.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("este campo é obrigatório")
	}
	if len(name) > 150 {
		return fmt.Errorf("nome muito longo")
	}
	return nil
}

// entirelyNumeric reports whether the string contains only digits.
func entirelyNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
