package utils

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns the bcrypt hash of the password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares the bcrypt hashed password with its possible plaintext equivalent.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// PasswordValidator checks one strength rule. The email and name of the
// account give validators access to attributes the password must not resemble.
type PasswordValidator func(password, email, name string) error

// PasswordPolicy is an ordered validator chain; the first failing rule wins.
type PasswordPolicy []PasswordValidator

// DefaultPasswordPolicy assembles the standard chain with a configurable
// minimum length.
func DefaultPasswordPolicy(minLength int) PasswordPolicy {
	if minLength <= 0 {
		minLength = 8
	}
	return PasswordPolicy{
		MinLengthValidator(minLength),
		NumericValidator(),
		SimilarityValidator(),
	}
}

// Validate runs the chain against a candidate password.
func (p PasswordPolicy) Validate(password, email, name string) error {
	for _, validate := range p {
		if err := validate(password, email, name); err != nil {
			return err
		}
	}
	return nil
}

// MinLengthValidator rejects passwords shorter than min characters.
func MinLengthValidator(min int) PasswordValidator {
	return func(password, _, _ string) error {
		if len([]rune(password)) < min {
			return fmt.Errorf("must be at least %d characters", min)
		}
		return nil
	}
}

// NumericValidator rejects passwords made entirely of digits.
func NumericValidator() PasswordValidator {
	return func(password, _, _ string) error {
		if password == "" {
			return errors.New("must not be empty")
		}
		for _, r := range password {
			if !unicode.IsDigit(r) {
				return nil
			}
		}
		return errors.New("must not be entirely numeric")
	}
}

// SimilarityValidator rejects passwords that contain or equal the account
// name or the local part of the email. Attributes shorter than four
// characters are skipped to avoid rejecting on trivial overlaps.
func SimilarityValidator() PasswordValidator {
	return func(password, email, name string) error {
		lowered := strings.ToLower(password)
		local := email
		if at := strings.IndexByte(email, '@'); at >= 0 {
			local = email[:at]
		}
		for _, attr := range []string{local, name} {
			attr = strings.ToLower(strings.TrimSpace(attr))
			if len(attr) < 4 {
				continue
			}
			if strings.Contains(lowered, attr) || strings.Contains(attr, lowered) {
				return errors.New("must not be similar to email or name")
			}
		}
		return nil
	}
}
