package domain

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a thread or summary does not exist.
// Callers check it with errors.Is and translate it to a not-found response.
var ErrNotFound = errors.New("not found")

// Message is one entry in a support conversation, ordered by position.
type Message struct {
	ID        string `json:"id"`
	Sender    string `json:"sender"`
	Timestamp string `json:"timestamp"`
	Body      string `json:"body"`
}

// Thread is an ingested support conversation. It is immutable once stored;
// summarization only reads it.
type Thread struct {
	ThreadID    string    `json:"thread_id"`
	Subject     string    `json:"subject"`
	Topic       string    `json:"topic"`
	InitiatedBy string    `json:"initiated_by"`
	OrderID     string    `json:"order_id"`
	Product     string    `json:"product"`
	Messages    []Message `json:"messages"`
}

// IssueType is the classified category of a thread.
type IssueType string

const (
	IssueDamaged      IssueType = "Damaged item on arrival"
	IssueLateDelivery IssueType = "Late delivery"
	IssueWrongVariant IssueType = "Wrong variant received"
	IssueReturn       IssueType = "Return request"
	IssueRefund       IssueType = "Refund request"
	IssueGeneral      IssueType = "General inquiry"
)

// IssueTypes lists every valid issue type.
var IssueTypes = []IssueType{
	IssueDamaged,
	IssueLateDelivery,
	IssueWrongVariant,
	IssueReturn,
	IssueRefund,
	IssueGeneral,
}

// Ask is a customer request signal detected in the conversation text.
type Ask string

const (
	AskRefund      Ask = "refund"
	AskReplacement Ask = "replacement"
	AskReturn      Ask = "return"
	AskPhotos      Ask = "photos"
	AskAddress     Ask = "address"
	AskTracking    Ask = "tracking"
)

// Disposition is the recommended resolution category.
type Disposition string

const (
	DispositionRefund       Disposition = "Refund"
	DispositionReplacement  Disposition = "Replacement"
	DispositionRMARefund    Disposition = "RMA + Refund"
	DispositionAgentConfirm Disposition = "Agent to confirm with customer"
)

// Dispositions lists every valid disposition.
var Dispositions = []Disposition{
	DispositionRefund,
	DispositionReplacement,
	DispositionRMARefund,
	DispositionAgentConfirm,
}

// CustomerSnapshot is the customer portion of a CRM snapshot.
type CustomerSnapshot struct {
	CustomerID string `json:"customer_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
}

// CRMSnapshot carries reference data pulled at summarization time. All fields
// are absent when the order or customer is unknown.
type CRMSnapshot struct {
	Policy         string            `json:"policy,omitempty"`
	OrderStatus    string            `json:"order_status,omitempty"`
	StockAvailable *bool             `json:"stock_available,omitempty"`
	Customer       *CustomerSnapshot `json:"customer,omitempty"`
}

// DraftFields is the structured field set produced by summarization.
type DraftFields struct {
	ThreadID               string      `json:"thread_id"`
	OrderID                string      `json:"order_id"`
	Product                string      `json:"product"`
	InitiatedBy            string      `json:"initiated_by"`
	IssueType              IssueType   `json:"issue_type"`
	CustomerAsk            []Ask       `json:"customer_ask"`
	AttachmentsNeeded      []string    `json:"attachments_needed"`
	CurrentStatus          string      `json:"current_status"`
	RecommendedDisposition Disposition `json:"recommended_disposition"`
	NextActions            []string    `json:"next_actions"`
	SLARisk                bool        `json:"sla_risk"`
	CRMSnapshot            CRMSnapshot `json:"crm_snapshot"`
}

// SummaryResult is the summarizer output before persistence.
type SummaryResult struct {
	DraftSummary string      `json:"draft_summary"`
	DraftFields  DraftFields `json:"draft_fields"`
}

// Review states of a persisted summary.
const (
	StateDrafted  = "DRAFTED"
	StateEdited   = "EDITED"
	StateApproved = "APPROVED"
)

// Summary is the persisted review artifact, one per thread.
type Summary struct {
	ThreadID string `json:"thread_id"`

	DraftSummary string       `json:"draft_summary"`
	DraftFields  *DraftFields `json:"draft_fields"`

	EditedSummary string       `json:"edited_summary"`
	EditedFields  *DraftFields `json:"edited_fields"`

	ApprovedSummary string       `json:"approved_summary"`
	ApprovedFields  *DraftFields `json:"approved_fields"`

	State      string     `json:"state"`
	Approver   string     `json:"approver"`
	ApprovedAt *time.Time `json:"approved_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NormalizeIssueType maps free text from an external source onto a valid
// issue type. Unknown values fall back to General inquiry.
func NormalizeIssueType(s string) IssueType {
	for _, it := range IssueTypes {
		if string(it) == s {
			return it
		}
	}
	return IssueGeneral
}

// NormalizeDisposition maps free text onto a valid disposition. Unknown
// values fall back to agent confirmation.
func NormalizeDisposition(s string) Disposition {
	for _, d := range Dispositions {
		if string(d) == s {
			return d
		}
	}
	return DispositionAgentConfirm
}
