// Package i18n localizes user-facing API error messages.
// Language resolution order: Accept-Language match → "en".
// Strings are compiled into the binary.
package i18n

import (
	"fmt"

	"golang.org/x/text/language"
)

// Fallback language used when a key or language is not found.
const DefaultLang = "en"

// supported is ordered by preference; the first entry is the matcher fallback.
var supported = []language.Tag{
	language.English,
	language.MustParse("zh-CN"),
	language.MustParse("zh-TW"),
}

var supportedCodes = []string{"en", "zh-CN", "zh-TW"}

var matcher = language.NewMatcher(supported)

// Translate returns a localized string for key in lang.
// Extra args are passed to fmt.Sprintf if the translation contains format verbs.
// Falls back to English if lang is unsupported or key is missing.
func Translate(key, lang string, args ...interface{}) string {
	if lang == "" {
		lang = DefaultLang
	}

	langMap, ok := translations[key]
	if !ok {
		return key
	}

	tmpl, ok := langMap[lang]
	if !ok {
		tmpl, ok = langMap[DefaultLang]
		if !ok {
			return key
		}
	}

	if len(args) == 0 {
		return tmpl
	}
	return fmt.Sprintf(tmpl, args...)
}

// ErrorMessage returns the localized message for an API error code. English
// callers keep fallback, which usually carries more detail than the catalog.
func ErrorMessage(code, lang, fallback string) string {
	if lang == "" || lang == DefaultLang {
		if fallback != "" {
			return fallback
		}
	}
	key := "error." + code
	if _, ok := translations[key]; !ok {
		return fallback
	}
	return Translate(key, lang)
}

// MatchAcceptLanguage picks the best supported language for an
// Accept-Language header value. Bare "zh" and "zh-Hans" resolve to zh-CN,
// "zh-Hant" and "zh-HK" to zh-TW.
func MatchAcceptLanguage(header string) string {
	if header == "" {
		return DefaultLang
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return DefaultLang
	}
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return DefaultLang
	}
	return supportedCodes[index]
}
