package translation

import (
	"github.com/go-playground/validator/v10"
	"github.com/richxcame/pairchat/pkg/validation"
)

// LanguageCode is one of the languages the chat can translate between.
type LanguageCode string

const (
	English            LanguageCode = "en"
	SimplifiedChinese  LanguageCode = "zh-CN"
	TraditionalChinese LanguageCode = "zh-TW"
)

// SourceAuto asks the service to detect the source language. It is only
// accepted on requests and is resolved before the cache or provider see it.
const SourceAuto = "auto"

var supportedLanguages = []LanguageCode{English, SimplifiedChinese, TraditionalChinese}

// SupportedLanguages returns the closed set of language codes.
func SupportedLanguages() []LanguageCode {
	out := make([]LanguageCode, len(supportedLanguages))
	copy(out, supportedLanguages)
	return out
}

// IsValid reports whether l is in the supported set.
func (l LanguageCode) IsValid() bool {
	for _, s := range supportedLanguages {
		if l == s {
			return true
		}
	}
	return false
}

// ParseLanguage converts s into a LanguageCode. "auto" is not a language.
func ParseLanguage(s string) (LanguageCode, bool) {
	l := LanguageCode(s)
	return l, l.IsValid()
}

func init() {
	_ = validation.RegisterValidation("language_code", func(fl validator.FieldLevel) bool {
		_, ok := ParseLanguage(fl.Field().String())
		return ok
	}, "%s must be one of en, zh-CN, zh-TW")

	_ = validation.RegisterValidation("source_language", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == SourceAuto {
			return true
		}
		_, ok := ParseLanguage(s)
		return ok
	}, "%s must be auto or one of en, zh-CN, zh-TW")
}
