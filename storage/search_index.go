package storage

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"parley/model"
)

// SearchIndex is a sqlite index over message content, rebuilt from the
// document on demand. It exists so message search stays fast once the
// JSON document grows past what a linear scan handles comfortably.
type SearchIndex struct {
	db *sql.DB
}

// NewSearchIndex opens or creates index.db in the data directory.
func NewSearchIndex(dataDir string) (*SearchIndex, error) {
	dbPath := filepath.Join(dataDir, "index.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	si := &SearchIndex{db: db}
	if err := si.initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return si, nil
}

func (si *SearchIndex) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS messages (
		chat_id INTEGER NOT NULL,
		idx INTEGER NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		ts DATETIME NOT NULL,
		PRIMARY KEY (chat_id, idx)
	);
	CREATE INDEX IF NOT EXISTS idx_messages_content ON messages(content);
	`

	_, err := si.db.Exec(schema)
	return err
}

// Close releases the database handle.
func (si *SearchIndex) Close() error {
	return si.db.Close()
}

// Rebuild replaces the index with the current contents of the store.
func (si *SearchIndex) Rebuild(chats []*model.Chat) error {
	tx, err := si.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM messages`); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO messages (chat_id, idx, role, content, ts) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, chat := range chats {
		for i, msg := range chat.Content {
			ts := msg.Time
			if ts.IsZero() {
				ts = time.Now()
			}
			if _, err := stmt.Exec(chat.ID, i, msg.Role, msg.Content, ts); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// IndexChat refreshes the index entries for a single chat.
func (si *SearchIndex) IndexChat(chat *model.Chat) error {
	tx, err := si.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM messages WHERE chat_id = ?`, chat.ID); err != nil {
		return err
	}

	for i, msg := range chat.Content {
		ts := msg.Time
		if ts.IsZero() {
			ts = time.Now()
		}
		if _, err := tx.Exec(`INSERT INTO messages (chat_id, idx, role, content, ts) VALUES (?, ?, ?, ?, ?)`,
			chat.ID, i, msg.Role, msg.Content, ts); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// RemoveChat drops a deleted chat from the index.
func (si *SearchIndex) RemoveChat(chatID int) error {
	_, err := si.db.Exec(`DELETE FROM messages WHERE chat_id = ?`, chatID)
	return err
}

// Search returns message matches for a substring query, newest first,
// with a content preview capped at 100 characters.
func (si *SearchIndex) Search(query string) ([]model.SearchHit, error) {
	if query == "" {
		return []model.SearchHit{}, nil
	}

	rows, err := si.db.Query(
		`SELECT chat_id, idx, role, content FROM messages WHERE content LIKE ? ORDER BY ts DESC LIMIT 200`,
		"%"+query+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hits []model.SearchHit
	for rows.Next() {
		var hit model.SearchHit
		var content string
		if err := rows.Scan(&hit.ChatID, &hit.Index, &hit.Role, &content); err != nil {
			return nil, err
		}
		hit.Preview = preview(content)
		hits = append(hits, hit)
	}
	return hits, rows.Err()
}

func preview(content string) string {
	const max = 100
	runes := []rune(content)
	if len(runes) <= max {
		return content
	}
	return string(runes[:max]) + "..."
}
