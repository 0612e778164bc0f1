package messages

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/richxcame/pairchat/pkg/database"
)

// ErrNotFound is returned when a message does not exist or was deleted
var ErrNotFound = errors.New("message not found")

// Repository reads chat messages. The messages table is owned by the chat
// service; this package only reads from it.
type Repository struct {
	db database.DBTX
}

// NewRepository creates a new message repository
func NewRepository(db database.DBTX) *Repository {
	return &Repository{db: db}
}

// GetMessageText returns the text body of a message
func (r *Repository) GetMessageText(ctx context.Context, messageID string) (string, error) {
	query := `
		SELECT COALESCE(text, '')
		FROM messages
		WHERE id::text = $1
	`

	var text string
	err := r.db.QueryRow(ctx, query, messageID).Scan(&text)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to get message: %w", err)
	}

	return text, nil
}
