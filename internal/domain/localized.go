package domain

import "fmt"

const DefaultLanguage = "en"

// SupportedLanguages is the fixed set of display languages. Callers validate
// against it before resolving.
var SupportedLanguages = []string{"en", "ru", "de"}

func IsSupportedLanguage(lang string) bool {
	for _, l := range SupportedLanguages {
		if l == lang {
			return true
		}
	}
	return false
}

type LocalizedString struct {
	Lang  string `json:"lang"`
	Value string `json:"value"`
}

// Localized is a multi-language field; at most one entry per language is expected.
type Localized []LocalizedString

// Resolve returns the value of the first entry for lang. A missing entry means
// the stored document is incomplete, so it is reported as ErrMissingLocalization
// instead of falling back to another language.
func (l Localized) Resolve(lang string) (string, error) {
	for _, ls := range l {
		if ls.Lang == lang {
			return ls.Value, nil
		}
	}
	return "", fmt.Errorf("%w: no %q value", ErrMissingLocalization, lang)
}

func (l Localized) Has(lang string) bool {
	for _, ls := range l {
		if ls.Lang == lang {
			return true
		}
	}
	return false
}
