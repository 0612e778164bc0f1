package translation

import "strings"

// CJK Unified Ideographs block
const (
	cjkStart = 0x4E00
	cjkEnd   = 0x9FFF
)

// Detect guesses the language of text. Any CJK ideograph makes it Chinese,
// everything else (including blank text) is English. Simplified and
// traditional Chinese share the block, so Chinese always resolves to zh-CN.
func Detect(text string) LanguageCode {
	if strings.TrimSpace(text) == "" {
		return English
	}
	for _, r := range text {
		if r >= cjkStart && r <= cjkEnd {
			return SimplifiedChinese
		}
	}
	return English
}

// DetectPtr is Detect for optional text; nil is treated as blank.
func DetectPtr(text *string) LanguageCode {
	if text == nil {
		return English
	}
	return Detect(*text)
}
