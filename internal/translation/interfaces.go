package translation

import "context"

// RepositoryInterface is the translation cache plus preference storage
type RepositoryInterface interface {
	Lookup(ctx context.Context, messageID string, source, target LanguageCode) (*Translation, error)
	Store(ctx context.Context, messageID string, source, target LanguageCode, translatedText string) (*Translation, error)
	ListByMessage(ctx context.Context, messageID string, target *LanguageCode) ([]*Translation, error)
	GetPreference(ctx context.Context, userRole, messageID string) (*Preference, error)
	UpsertPreference(ctx context.Context, pref *Preference) (*Preference, error)
}

// ProviderInterface translates text with an external MT service
type ProviderInterface interface {
	Translate(ctx context.Context, text string, source, target LanguageCode) (string, error)
}

// MessageStore reads the text of chat messages
type MessageStore interface {
	GetMessageText(ctx context.Context, messageID string) (string, error)
}
