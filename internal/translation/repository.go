package translation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/richxcame/pairchat/pkg/database"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var translationColumns = []string{
	"id", "message_id", "source_language", "target_language", "translated_text", "created_at",
}

// Repository handles database operations for translations and preferences
type Repository struct {
	db database.DBTX
}

// NewRepository creates a new translation repository
func NewRepository(db database.DBTX) *Repository {
	return &Repository{db: db}
}

// Lookup returns the cached translation for the key, or nil on a miss
func (r *Repository) Lookup(ctx context.Context, messageID string, source, target LanguageCode) (*Translation, error) {
	query, args, err := psql.Select(translationColumns...).
		From("translations").
		Where(sq.Eq{
			"message_id":      messageID,
			"source_language": string(source),
			"target_language": string(target),
		}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, &CacheError{Kind: CacheDatabase, Message: "failed to build lookup query", Err: err}
	}

	t, err := scanTranslation(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, &CacheError{Kind: CacheDatabase, Message: "failed to look up translation", Err: err}
	}
	return t, nil
}

// Store inserts a translation. A concurrent insert of the same key fails
// with DUPLICATE_TRANSLATION from the unique constraint.
func (r *Repository) Store(ctx context.Context, messageID string, source, target LanguageCode, translatedText string) (*Translation, error) {
	if strings.TrimSpace(messageID) == "" || !source.IsValid() || !target.IsValid() || strings.TrimSpace(translatedText) == "" {
		return nil, &CacheError{Kind: CacheInvalidInput, Message: "message id, languages and translated text are required"}
	}

	query, args, err := psql.Insert("translations").
		Columns("message_id", "source_language", "target_language", "translated_text").
		Values(messageID, string(source), string(target), translatedText).
		Suffix("RETURNING " + strings.Join(translationColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, &CacheError{Kind: CacheDatabase, Message: "failed to build insert query", Err: err}
	}

	t, err := scanTranslation(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, &CacheError{Kind: CacheDuplicate, Message: "translation already cached", Err: err}
		}
		return nil, &CacheError{Kind: CacheDatabase, Message: "failed to store translation", Err: err}
	}
	return t, nil
}

// ListByMessage returns translations of a message, newest first
func (r *Repository) ListByMessage(ctx context.Context, messageID string, target *LanguageCode) ([]*Translation, error) {
	builder := psql.Select(translationColumns...).
		From("translations").
		Where(sq.Eq{"message_id": messageID}).
		OrderBy("created_at DESC")
	if target != nil {
		builder = builder.Where(sq.Eq{"target_language": string(*target)})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list translations: %w", err)
	}
	defer rows.Close()

	translations := make([]*Translation, 0)
	for rows.Next() {
		t, err := scanTranslation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan translation: %w", err)
		}
		translations = append(translations, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate translations: %w", err)
	}

	return translations, nil
}

// GetPreference returns the stored preference, or nil when none exists
func (r *Repository) GetPreference(ctx context.Context, userRole, messageID string) (*Preference, error) {
	query, args, err := psql.Select("user_role", "message_id", "show_original", "target_language", "updated_at").
		From("translation_preferences").
		Where(sq.Eq{"user_role": userRole, "message_id": messageID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build preference query: %w", err)
	}

	p, err := scanPreference(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get preference: %w", err)
	}
	return p, nil
}

// UpsertPreference creates or replaces the preference for (user_role, message_id)
func (r *Repository) UpsertPreference(ctx context.Context, pref *Preference) (*Preference, error) {
	var target *string
	if pref.TargetLanguage != nil {
		s := string(*pref.TargetLanguage)
		target = &s
	}

	query, args, err := psql.Insert("translation_preferences").
		Columns("user_role", "message_id", "show_original", "target_language", "updated_at").
		Values(pref.UserRole, pref.MessageID, pref.ShowOriginal, target, sq.Expr("NOW()")).
		Suffix(`ON CONFLICT (user_role, message_id) DO UPDATE SET
			show_original = EXCLUDED.show_original,
			target_language = EXCLUDED.target_language,
			updated_at = NOW()
		RETURNING user_role, message_id, show_original, target_language, updated_at`).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build preference upsert: %w", err)
	}

	saved, err := scanPreference(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("failed to save preference: %w", err)
	}
	return saved, nil
}

func scanTranslation(row pgx.Row) (*Translation, error) {
	t := &Translation{}
	var source, target string
	if err := row.Scan(&t.ID, &t.MessageID, &source, &target, &t.TranslatedText, &t.CreatedAt); err != nil {
		return nil, err
	}
	t.SourceLanguage = LanguageCode(source)
	t.TargetLanguage = LanguageCode(target)
	return t, nil
}

func scanPreference(row pgx.Row) (*Preference, error) {
	p := &Preference{}
	var target *string
	if err := row.Scan(&p.UserRole, &p.MessageID, &p.ShowOriginal, &target, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if target != nil {
		l := LanguageCode(*target)
		p.TargetLanguage = &l
	}
	return p, nil
}
