// Package sqlite is the record store for threads and summaries, keyed by
// thread id. Each summary write is a single statement so concurrent calls
// on the same thread cannot corrupt the row.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"casedesk/internal/domain"
)

func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS threads (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		thread_id    TEXT NOT NULL UNIQUE,
		subject      TEXT DEFAULT '',
		topic        TEXT DEFAULT '',
		initiated_by TEXT DEFAULT '',
		order_id     TEXT DEFAULT '',
		product      TEXT DEFAULT '',
		messages     TEXT DEFAULT '[]',
		created_at   DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_threads_thread_id ON threads(thread_id);

	CREATE TABLE IF NOT EXISTS summaries (
		id               INTEGER PRIMARY KEY AUTOINCREMENT,
		thread_id        TEXT NOT NULL UNIQUE,
		draft_summary    TEXT DEFAULT '',
		draft_fields     TEXT DEFAULT '',
		edited_summary   TEXT DEFAULT '',
		edited_fields    TEXT DEFAULT '',
		approved_summary TEXT DEFAULT '',
		approved_fields  TEXT DEFAULT '',
		state            TEXT DEFAULT 'DRAFTED',
		approver         TEXT DEFAULT '',
		approved_at      DATETIME,
		created_at       DATETIME NOT NULL,
		updated_at       DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_summaries_thread_id ON summaries(thread_id);
	`
	if _, err := db.Exec(schema); err != nil {
		return nil, err
	}
	return db, nil
}

// UpsertThread inserts or replaces a thread record. Returns true when a new
// row was created.
func UpsertThread(db *sql.DB, thread domain.Thread) (bool, error) {
	messages, err := json.Marshal(thread.Messages)
	if err != nil {
		return false, fmt.Errorf("marshaling messages: %w", err)
	}

	var exists int
	if err := db.QueryRow(`SELECT COUNT(*) FROM threads WHERE thread_id = ?`, thread.ThreadID).Scan(&exists); err != nil {
		return false, err
	}

	_, err = db.Exec(
		`INSERT INTO threads (thread_id, subject, topic, initiated_by, order_id, product, messages)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(thread_id) DO UPDATE SET
			subject = excluded.subject,
			topic = excluded.topic,
			initiated_by = excluded.initiated_by,
			order_id = excluded.order_id,
			product = excluded.product,
			messages = excluded.messages`,
		thread.ThreadID, thread.Subject, thread.Topic, thread.InitiatedBy,
		thread.OrderID, thread.Product, string(messages),
	)
	if err != nil {
		return false, err
	}
	return exists == 0, nil
}

// GetThread looks up a thread by id. Returns domain.ErrNotFound when absent.
func GetThread(db *sql.DB, threadID string) (domain.Thread, error) {
	var t domain.Thread
	var messages string
	err := db.QueryRow(
		`SELECT thread_id, subject, topic, initiated_by, order_id, product, messages
		 FROM threads WHERE thread_id = ?`, threadID,
	).Scan(&t.ThreadID, &t.Subject, &t.Topic, &t.InitiatedBy, &t.OrderID, &t.Product, &messages)
	if err == sql.ErrNoRows {
		return domain.Thread{}, fmt.Errorf("thread %s: %w", threadID, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Thread{}, err
	}
	if err := json.Unmarshal([]byte(messages), &t.Messages); err != nil {
		return domain.Thread{}, fmt.Errorf("unmarshaling messages for %s: %w", threadID, err)
	}
	return t, nil
}

// ListThreadIDsWithoutSummary returns ids of threads that have no summary
// yet, in thread id order.
func ListThreadIDsWithoutSummary(db *sql.DB) ([]string, error) {
	rows, err := db.Query(
		`SELECT t.thread_id FROM threads t
		 LEFT JOIN summaries s ON s.thread_id = t.thread_id
		 WHERE s.id IS NULL ORDER BY t.thread_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// GetSummary looks up the summary for a thread. Returns domain.ErrNotFound
// when no summary exists.
func GetSummary(db *sql.DB, threadID string) (domain.Summary, error) {
	var s domain.Summary
	var draftFields, editedFields, approvedFields string
	var approvedAt sql.NullTime
	err := db.QueryRow(
		`SELECT thread_id, draft_summary, draft_fields, edited_summary, edited_fields,
			approved_summary, approved_fields, state, approver, approved_at, created_at, updated_at
		 FROM summaries WHERE thread_id = ?`, threadID,
	).Scan(&s.ThreadID, &s.DraftSummary, &draftFields, &s.EditedSummary, &editedFields,
		&s.ApprovedSummary, &approvedFields, &s.State, &s.Approver, &approvedAt, &s.CreatedAt, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return domain.Summary{}, fmt.Errorf("summary for thread %s: %w", threadID, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Summary{}, err
	}

	if approvedAt.Valid {
		t := approvedAt.Time
		s.ApprovedAt = &t
	}
	if s.DraftFields, err = unmarshalFields(draftFields); err != nil {
		return domain.Summary{}, err
	}
	if s.EditedFields, err = unmarshalFields(editedFields); err != nil {
		return domain.Summary{}, err
	}
	if s.ApprovedFields, err = unmarshalFields(approvedFields); err != nil {
		return domain.Summary{}, err
	}
	return s, nil
}

// SaveSummary upserts the whole summary row in one statement.
func SaveSummary(db *sql.DB, s domain.Summary) error {
	draftFields, err := marshalFields(s.DraftFields)
	if err != nil {
		return err
	}
	editedFields, err := marshalFields(s.EditedFields)
	if err != nil {
		return err
	}
	approvedFields, err := marshalFields(s.ApprovedFields)
	if err != nil {
		return err
	}

	var approvedAt any
	if s.ApprovedAt != nil {
		approvedAt = s.ApprovedAt.UTC()
	}

	now := time.Now().UTC()
	createdAt := s.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	_, err = db.Exec(
		`INSERT INTO summaries (thread_id, draft_summary, draft_fields, edited_summary, edited_fields,
			approved_summary, approved_fields, state, approver, approved_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(thread_id) DO UPDATE SET
			draft_summary = excluded.draft_summary,
			draft_fields = excluded.draft_fields,
			edited_summary = excluded.edited_summary,
			edited_fields = excluded.edited_fields,
			approved_summary = excluded.approved_summary,
			approved_fields = excluded.approved_fields,
			state = excluded.state,
			approver = excluded.approver,
			approved_at = excluded.approved_at,
			updated_at = excluded.updated_at`,
		s.ThreadID, s.DraftSummary, draftFields, s.EditedSummary, editedFields,
		s.ApprovedSummary, approvedFields, s.State, s.Approver, approvedAt, createdAt, now,
	)
	return err
}

// DeleteSummary removes the summary for one thread. Returns true when a row
// was deleted.
func DeleteSummary(db *sql.DB, threadID string) (bool, error) {
	res, err := db.Exec(`DELETE FROM summaries WHERE thread_id = ?`, threadID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// DeleteAllSummaries removes every summary inside one transaction and
// returns the number of rows deleted.
func DeleteAllSummaries(db *sql.DB) (int64, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`DELETE FROM summaries`)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, tx.Commit()
}

func marshalFields(fields *domain.DraftFields) (string, error) {
	if fields == nil {
		return "", nil
	}
	b, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("marshaling fields: %w", err)
	}
	return string(b), nil
}

func unmarshalFields(raw string) (*domain.DraftFields, error) {
	if raw == "" {
		return nil, nil
	}
	var fields domain.DraftFields
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, fmt.Errorf("unmarshaling fields: %w", err)
	}
	return &fields, nil
}
