// Package cpf normalizes and validates Brazilian CPF identifiers.
package cpf

import "strings"

// Length is the number of digits in a CPF.
const Length = 11

// InvalidError indicates a malformed identifier. It never echoes the
// raw input, since the identifier is treated as sensitive.
type InvalidError struct {
	Reason string
}

func (e *InvalidError) Error() string {
	return "invalid CPF: " + e.Reason
}

// Normalize strips standard formatting punctuation and validates the
// result. It returns the bare 11-digit string or an *InvalidError.
func Normalize(raw string) (string, error) {
	var b strings.Builder
	b.Grow(Length)
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == ' ':
			// formatting punctuation, dropped
		default:
			return "", &InvalidError{Reason: "unexpected character"}
		}
	}

	digits := b.String()
	if len(digits) != Length {
		return "", &InvalidError{Reason: "must contain 11 digits"}
	}
	if !checkDigitsValid(digits) {
		return "", &InvalidError{Reason: "check digits do not match"}
	}
	return digits, nil
}

// checkDigitsValid verifies the two CPF verification digits. CPFs made
// of a single repeated digit pass the arithmetic but are reserved as
// invalid by the registry, so they are rejected up front.
func checkDigitsValid(digits string) bool {
	repeated := true
	for i := 1; i < Length; i++ {
		if digits[i] != digits[0] {
			repeated = false
			break
		}
	}
	if repeated {
		return false
	}

	for i := 0; i < 2; i++ {
		sum := 0
		for j := 0; j < 9+i; j++ {
			sum += int(digits[j]-'0') * (10 + i - j)
		}
		want := sum * 10 % 11 % 10
		if want != int(digits[9+i]-'0') {
			return false
		}
	}
	return true
}
