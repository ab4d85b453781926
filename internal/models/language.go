package models

import "strings"

// Language is one of the languages customer and supplier mails are written in.
type Language string

const (
	LanguageEN Language = "EN"
	LanguageDE Language = "DE"
)

// DefaultLanguage is used for internal staff mails and whenever a contact has none.
const DefaultLanguage = LanguageEN

// SupportedLanguages lists every language the template catalog must cover.
var SupportedLanguages = []Language{LanguageEN, LanguageDE}

// ParseLanguage normalizes a language code, falling back to DefaultLanguage.
func ParseLanguage(s string) Language {
	l := Language(strings.ToUpper(strings.TrimSpace(s)))
	for _, supported := range SupportedLanguages {
		if l == supported {
			return l
		}
	}
	return DefaultLanguage
}
