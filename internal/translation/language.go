package translation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/galsenai/french-wolof-translator/internal/config"
)

// ErrInvalidLanguage is returned for source tags other than fr and wo.
var ErrInvalidLanguage = errors.New("invalid source language")

// Language is a supported source language.
type Language string

// Supported languages.
const (
	French Language = "fr"
	Wolof  Language = "wo"
)

// ParseLanguage accepts exactly "fr" or "wo" in any letter case. Longer
// codes such as "fra" or "wol" and region subtags are rejected.
func ParseLanguage(tag string) (Language, error) {
	switch strings.ToLower(tag) {
	case "fr":
		return French, nil
	case "wo":
		return Wolof, nil
	}
	return "", fmt.Errorf("%w: %q (use 'fr' or 'wo')", ErrInvalidLanguage, tag)
}

// Target returns the language translated into.
func (l Language) Target() Language {
	if l == French {
		return Wolof
	}
	return French
}

// Prefix returns the task prompt for translating out of l.
func (l Language) Prefix(cfg config.DatasetConfig) string {
	if l == French {
		return cfg.PrefixFrToWo
	}
	return cfg.PrefixWoToFr
}

// Name returns the English name of the language.
func (l Language) Name() string {
	if l == French {
		return "French"
	}
	return "Wolof"
}
