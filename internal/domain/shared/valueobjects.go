package shared

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ═══════════════════════════════════════════════════════════════════════════
// Name Value Object
// ═══════════════════════════════════════════════════════════════════════════

// ErrEmptyName is returned when a display name is empty or all whitespace.
var ErrEmptyName = WrapError("name", "Normalize", ErrValidation, "name cannot be empty", ErrEmptyValue)

// NormalizeName trims raw and converts it to title case. Normalized names are
// the stored form and the comparison form: "math" and " MATH " are the same name.
//
// Every run of cased letters is a word, so "o'neil" becomes "O'Neil" and
// "it-21b" becomes "It-21B".
func NormalizeName(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrEmptyName
	}

	// A Caser keeps state between calls, so each normalization gets its own.
	caser := cases.Title(language.Und)

	var b strings.Builder
	b.Grow(len(trimmed))
	word := -1
	for i, r := range trimmed {
		switch {
		case isCased(r):
			if word < 0 {
				word = i
			}
		case word >= 0:
			b.WriteString(caser.String(trimmed[word:i]))
			word = -1
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	if word >= 0 {
		b.WriteString(caser.String(trimmed[word:]))
	}
	return b.String(), nil
}

func isCased(r rune) bool {
	return unicode.IsUpper(r) || unicode.IsLower(r) || unicode.IsTitle(r)
}

// Named is the display-name capability shared by every container level.
// The zero value has an empty name; use NewNamed to get a valid one.
type Named struct {
	name string
}

// NewNamed validates and normalizes raw into a Named.
func NewNamed(raw string) (Named, error) {
	name, err := NormalizeName(raw)
	if err != nil {
		return Named{}, err
	}
	return Named{name: name}, nil
}

// Name returns the normalized name.
func (n *Named) Name() string {
	return n.name
}

// Rename replaces the name. On error the previous name is kept.
func (n *Named) Rename(raw string) error {
	name, err := NormalizeName(raw)
	if err != nil {
		return err
	}
	n.name = name
	return nil
}
