// Package cnpj handles loading and normalizing CNPJ identifiers.
//
// A CNPJ (Cadastro Nacional da Pessoa Jurídica) is the Brazilian national
// registry identifier for legal entities. Input files carry them in arbitrary
// formats ("11.222.333/0001-81", "11222333000181", with or without leading
// zeros); this package normalizes every candidate to a fixed 14-digit string.
package cnpj

import (
	"strings"
)

// Length is the fixed width of a normalized CNPJ.
const Length = 14

// Normalize strips all non-digit characters from raw and left-pads the result
// with '0' to 14 characters. An input with no digits yields a string of 14
// zeros; an input with more than 14 digits is returned unpadded.
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(Length)
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}

	digits := b.String()
	if len(digits) >= Length {
		return digits
	}
	return strings.Repeat("0", Length-len(digits)) + digits
}

// Valid reports whether id is a normalized CNPJ: exactly 14 characters, all digits.
func Valid(id string) bool {
	if len(id) != Length {
		return false
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
