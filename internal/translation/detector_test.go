package translation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		text string
		want LanguageCode
	}{
		{"empty", "", English},
		{"whitespace", " \t\n ", English},
		{"english", "Hello world", English},
		{"mixed chinese first", "你好 Hello", SimplifiedChinese},
		{"mixed chinese last", "Hello 世界", SimplifiedChinese},
		{"single ideograph", "x中", SimplifiedChinese},
		{"traditional still zh-CN", "這是繁體中文", SimplifiedChinese},
		{"lower bound", string(rune(0x4E00)), SimplifiedChinese},
		{"upper bound", string(rune(0x9FFF)), SimplifiedChinese},
		{"below range", string(rune(0x4DFF)), English},
		{"above range", string(rune(0xA000)), English},
		{"japanese kana", "こんにちは", English},
		{"korean", "안녕하세요", English},
		{"cjk punctuation only", "。，！", English},
		{"digits and emoji", "123 😀", English},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.text))
		})
	}
}

func TestDetectPtr(t *testing.T) {
	assert.Equal(t, English, DetectPtr(nil))

	text := "你好"
	assert.Equal(t, SimplifiedChinese, DetectPtr(&text))
}

func TestDetect_AnyIdeographMakesChinese(t *testing.T) {
	for r := rune(cjkStart); r <= cjkEnd; r += 97 {
		text := "prefix " + string(r) + " suffix"
		if got := Detect(text); got != SimplifiedChinese {
			t.Fatalf("Detect(%q) = %s, want zh-CN", text, got)
		}
	}
}
