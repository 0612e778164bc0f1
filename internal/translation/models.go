package translation

import (
	"time"

	"github.com/google/uuid"
)

// Translation is a cached translation of one message into one language
type Translation struct {
	ID             uuid.UUID    `json:"id" db:"id"`
	MessageID      string       `json:"messageId" db:"message_id"`
	SourceLanguage LanguageCode `json:"sourceLanguage" db:"source_language"`
	TargetLanguage LanguageCode `json:"targetLanguage" db:"target_language"`
	TranslatedText string       `json:"translatedText" db:"translated_text"`
	CreatedAt      time.Time    `json:"createdAt" db:"created_at"`
}

// Preference is how one chat participant wants a message displayed
type Preference struct {
	UserRole       string        `json:"-" db:"user_role"`
	MessageID      string        `json:"messageId" db:"message_id"`
	ShowOriginal   bool          `json:"showOriginal" db:"show_original"`
	TargetLanguage *LanguageCode `json:"targetLanguage" db:"target_language"`
	UpdatedAt      time.Time     `json:"updatedAt,omitzero" db:"updated_at"`
}

// TranslateRequest is the body of POST /translations
type TranslateRequest struct {
	MessageID      string `json:"messageId" validate:"required"`
	TargetLanguage string `json:"targetLanguage" validate:"required,language_code"`
	SourceLanguage string `json:"sourceLanguage,omitempty" validate:"omitempty,source_language"`
}

// TranslateResult is the translation returned to the client
type TranslateResult struct {
	MessageID      string       `json:"messageId"`
	SourceLanguage LanguageCode `json:"sourceLanguage"`
	TargetLanguage LanguageCode `json:"targetLanguage"`
	TranslatedText string       `json:"translatedText"`
	OriginalText   string       `json:"originalText"`
	Cached         bool         `json:"cached"`
}

// ListRequest is the query of GET /translations/:messageId
type ListRequest struct {
	TargetLanguage string `form:"targetLanguage" validate:"omitempty,language_code"`
}

// PreferenceRequest is the body of POST /translations/preferences
type PreferenceRequest struct {
	MessageID      string `json:"messageId" validate:"required"`
	ShowOriginal   *bool  `json:"showOriginal" validate:"required"`
	TargetLanguage string `json:"targetLanguage,omitempty" validate:"omitempty,language_code"`
}
