// Package review owns the summary lifecycle: DRAFTED on summarize, EDITED
// on save-edit, APPROVED on approve with an exactly-once export record, and
// the administrative reset.
package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"casedesk/internal/domain"
	"casedesk/internal/export"
	"casedesk/internal/storage/sqlite"
	"casedesk/internal/summarize"
)

// ErrInvalidInput marks a client-side validation failure; no state mutated.
var ErrInvalidInput = errors.New("invalid input")

// ExportRecord is the shape appended to approved_summaries.jsonl.
type ExportRecord struct {
	ThreadID        string              `json:"thread_id"`
	Subject         string              `json:"subject"`
	Topic           string              `json:"topic"`
	OrderID         string              `json:"order_id"`
	Product         string              `json:"product"`
	ApprovedSummary string              `json:"approved_summary"`
	ApprovedFields  *domain.DraftFields `json:"approved_fields"`
	Approver        string              `json:"approver"`
	ApprovedAt      string              `json:"approved_at"`
}

// NoteRecord is the shape appended to crm_notes.jsonl.
type NoteRecord struct {
	ThreadID string         `json:"thread_id"`
	Note     string         `json:"note"`
	Metadata map[string]any `json:"metadata"`
}

// Notifier is told about approvals. Implementations must not fail the
// approval; errors stay inside the notifier.
type Notifier interface {
	ApprovalPosted(rec ExportRecord)
}

// Service wires the record store, orchestrator and export sink behind the
// review operations.
type Service struct {
	db       *sql.DB
	orch     *summarize.Orchestrator
	sink     *export.Sink
	notifier Notifier
}

// NewService builds a review service. notifier may be nil.
func NewService(db *sql.DB, orch *summarize.Orchestrator, sink *export.Sink, notifier Notifier) *Service {
	return &Service{db: db, orch: orch, sink: sink, notifier: notifier}
}

// Summarize creates or refreshes the draft for a thread and reopens the
// review: state goes to DRAFTED unconditionally, edited and approved pairs
// are left untouched. The llmKey is optional; external failures fall back
// silently inside the orchestrator.
func (s *Service) Summarize(ctx context.Context, threadID, llmKey string) (domain.Summary, error) {
	if threadID == "" {
		return domain.Summary{}, fmt.Errorf("thread_id is required: %w", ErrInvalidInput)
	}
	thread, err := sqlite.GetThread(s.db, threadID)
	if err != nil {
		return domain.Summary{}, err
	}

	result := s.orch.Summarize(ctx, thread, llmKey)

	summary, err := sqlite.GetSummary(s.db, threadID)
	if errors.Is(err, domain.ErrNotFound) {
		summary = domain.Summary{ThreadID: threadID}
	} else if err != nil {
		return domain.Summary{}, err
	}

	summary.DraftSummary = result.DraftSummary
	fields := result.DraftFields
	summary.DraftFields = &fields
	summary.State = domain.StateDrafted

	if err := sqlite.SaveSummary(s.db, summary); err != nil {
		return domain.Summary{}, err
	}
	log.Printf("review summarize thread=%s state=%s", threadID, summary.State)
	return sqlite.GetSummary(s.db, threadID)
}

// SaveEdit stores the reviewer's edited pair and moves the summary to
// EDITED. The summary must already exist.
func (s *Service) SaveEdit(threadID, editedSummary string, editedFields *domain.DraftFields) (domain.Summary, error) {
	if threadID == "" {
		return domain.Summary{}, fmt.Errorf("thread_id is required: %w", ErrInvalidInput)
	}
	summary, err := sqlite.GetSummary(s.db, threadID)
	if err != nil {
		return domain.Summary{}, err
	}

	summary.EditedSummary = editedSummary
	summary.EditedFields = editedFields
	summary.State = domain.StateEdited

	if err := sqlite.SaveSummary(s.db, summary); err != nil {
		return domain.Summary{}, err
	}
	log.Printf("review save-edit thread=%s state=%s", threadID, summary.State)
	return sqlite.GetSummary(s.db, threadID)
}

// Approve promotes the edited pair (or the draft pair when never edited) to
// approved, stamps approver and time, and appends exactly one export record.
func (s *Service) Approve(threadID, approver string) (domain.Summary, error) {
	if threadID == "" {
		return domain.Summary{}, fmt.Errorf("thread_id is required: %w", ErrInvalidInput)
	}
	thread, err := sqlite.GetThread(s.db, threadID)
	if err != nil {
		return domain.Summary{}, err
	}
	summary, err := sqlite.GetSummary(s.db, threadID)
	if err != nil {
		return domain.Summary{}, err
	}

	summary.ApprovedSummary = summary.EditedSummary
	if summary.ApprovedSummary == "" {
		summary.ApprovedSummary = summary.DraftSummary
	}
	summary.ApprovedFields = summary.EditedFields
	if summary.ApprovedFields == nil {
		summary.ApprovedFields = summary.DraftFields
	}

	now := time.Now().UTC()
	summary.State = domain.StateApproved
	summary.Approver = approver
	summary.ApprovedAt = &now

	if err := sqlite.SaveSummary(s.db, summary); err != nil {
		return domain.Summary{}, err
	}

	rec := ExportRecord{
		ThreadID:        thread.ThreadID,
		Subject:         thread.Subject,
		Topic:           thread.Topic,
		OrderID:         thread.OrderID,
		Product:         thread.Product,
		ApprovedSummary: summary.ApprovedSummary,
		ApprovedFields:  summary.ApprovedFields,
		Approver:        approver,
		ApprovedAt:      now.Format(time.RFC3339),
	}
	if err := s.sink.Append(export.ApprovedSummariesLog, rec); err != nil {
		return domain.Summary{}, err
	}
	log.Printf("review approve thread=%s approver=%s", threadID, approver)

	if s.notifier != nil {
		s.notifier.ApprovalPosted(rec)
	}
	return sqlite.GetSummary(s.db, threadID)
}

// GetSummary returns the current review state for a thread.
func (s *Service) GetSummary(threadID string) (domain.Summary, error) {
	if threadID == "" {
		return domain.Summary{}, fmt.Errorf("thread_id is required: %w", ErrInvalidInput)
	}
	return sqlite.GetSummary(s.db, threadID)
}

// PostNote appends a freeform agent note to crm_notes.jsonl.
func (s *Service) PostNote(threadID, note string, metadata map[string]any) error {
	if threadID == "" || note == "" {
		return fmt.Errorf("thread_id and note are required: %w", ErrInvalidInput)
	}
	if metadata == nil {
		metadata = map[string]any{}
	}
	return s.sink.Append(export.CRMNotesLog, NoteRecord{ThreadID: threadID, Note: note, Metadata: metadata})
}

// AdminReset deletes the summary for one thread, or, with an empty id,
// deletes every summary and empties both export logs. Threads are never
// touched.
func (s *Service) AdminReset(threadID string) error {
	if threadID != "" {
		if _, err := sqlite.GetThread(s.db, threadID); err != nil {
			return err
		}
		deleted, err := sqlite.DeleteSummary(s.db, threadID)
		if err != nil {
			return err
		}
		log.Printf("review admin-reset scope=single thread=%s deleted=%t", threadID, deleted)
		return nil
	}

	n, err := sqlite.DeleteAllSummaries(s.db)
	if err != nil {
		return err
	}
	if err := s.sink.Truncate(export.ApprovedSummariesLog, export.CRMNotesLog); err != nil {
		return err
	}
	log.Printf("review admin-reset scope=all deleted=%d", n)
	return nil
}
