package storage

import (
	"context"
	"fmt"
	"time"
)

func (s *Store) EnsureChat(ctx context.Context, chatID int64, chatType, title string) error {
	if chatType == "" {
		chatType = "unknown"
	}
	q := s.sql.Insert("chats").
		Columns("id", "type", "title").
		Values(chatID, chatType, title).
		Suffix("ON CONFLICT(id) DO UPDATE SET type=excluded.type, title=excluded.title")

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build ensure chat query: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("ensure chat: %w", err)
	}
	return nil
}

func (s *Store) InsertTranscript(ctx context.Context, t Transcript) error {
	text := t.Text
	encrypted := false
	if s.keyring != nil {
		enc, err := s.keyring.EncryptString(text)
		if err != nil {
			return fmt.Errorf("encrypt transcript: %w", err)
		}
		text = enc
		encrypted = true
	}

	q := s.sql.Insert("transcripts").
		Columns("chat_id", "user_id", "role", "text", "encrypted").
		Values(t.ChatID, t.UserID, t.Role, text, encrypted)

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build transcript insert query: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("insert transcript: %w", err)
	}
	return nil
}

// PurgeTranscripts deletes transcript rows older than the cutoff and
// returns how many were removed.
func (s *Store) PurgeTranscripts(ctx context.Context, before time.Time) (int64, error) {
	q := s.sql.Delete("transcripts").Where("created_at < ?", before.UTC())
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build transcript purge query: %w", err)
	}
	res, err := s.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, fmt.Errorf("purge transcripts: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return n, nil
}
