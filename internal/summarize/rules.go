// Package summarize turns a support thread into a draft case summary. The
// rule engine is fully deterministic; the orchestrator layers an optional
// LLM path on top with silent fallback to the rules.
package summarize

import (
	"fmt"
	"strings"

	"casedesk/internal/crm"
	"casedesk/internal/domain"
	"casedesk/internal/signal"
)

// Engine is the deterministic rule-based summarizer. It never fails and
// never touches the network; missing thread fields are treated as empty.
type Engine struct {
	crm *crm.Store
}

// NewEngine returns an Engine enriching summaries from the given CRM store.
func NewEngine(store *crm.Store) *Engine {
	return &Engine{crm: store}
}

// Summarize runs the rule pipeline: classify, detect asks, derive actions
// and disposition, enrich from CRM, refine the replacement action on stock,
// then render text and assemble structured fields.
func (e *Engine) Summarize(thread domain.Thread) domain.SummaryResult {
	text := signal.JoinBodies(thread.Messages)
	issue := signal.ClassifyIssue(text)
	asks := signal.DetectAsks(text)

	actions := deriveActions(issue, asks)
	disposition := deriveDisposition(asks)

	snap := e.crm.Lookup(thread.OrderID)
	actions = refineStock(actions, snap.StockAvailable)
	nextActions := renderActions(actions)

	var attachments []string
	if hasActionKind(actions, actionRequestPhotos) {
		attachments = []string{"Photos"}
	}

	draft := renderDraft(thread, issue, asks, disposition, nextActions, snap)

	return domain.SummaryResult{
		DraftSummary: draft,
		DraftFields: domain.DraftFields{
			ThreadID:               thread.ThreadID,
			OrderID:                thread.OrderID,
			Product:                thread.Product,
			InitiatedBy:            thread.InitiatedBy,
			IssueType:              issue,
			CustomerAsk:            asks,
			AttachmentsNeeded:      attachments,
			CurrentStatus:          "Unresolved",
			RecommendedDisposition: disposition,
			NextActions:            nextActions,
			SLARisk:                false,
			CRMSnapshot:            snap,
		},
	}
}

func hasActionKind(actions []action, kind actionKind) bool {
	for _, a := range actions {
		if a.kind == kind {
			return true
		}
	}
	return false
}

// renderDraft produces the fixed-template markdown summary: header,
// narrative sentence, disposition line, bulleted actions, and trailing CRM
// facts when present.
func renderDraft(
	thread domain.Thread,
	issue domain.IssueType,
	asks []domain.Ask,
	disposition domain.Disposition,
	nextActions []string,
	snap domain.CRMSnapshot,
) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Issue appears to be **%s** for order **%s** (%s).\n\n", issue, thread.OrderID, thread.Product)

	mentions := "N/A"
	if len(asks) > 0 {
		parts := make([]string, 0, len(asks))
		for _, a := range asks {
			parts = append(parts, string(a))
		}
		mentions = strings.Join(parts, ", ")
	}
	fmt.Fprintf(&b, "Initiated by **%s**. Customer mentions: %s.\n\n", thread.InitiatedBy, mentions)

	fmt.Fprintf(&b, "Recommend: %s.\n\nNext actions:\n", disposition)
	for _, a := range nextActions {
		fmt.Fprintf(&b, "- %s\n", a)
	}

	if facts := crmFacts(snap); facts != "" {
		b.WriteString("\n" + facts)
	}
	return b.String()
}

// crmFacts renders the trailing reference-data sentences, order status
// first, appended only when present.
func crmFacts(snap domain.CRMSnapshot) string {
	var bits []string
	if snap.OrderStatus != "" {
		bits = append(bits, fmt.Sprintf("Order status: %s.", snap.OrderStatus))
	}
	if snap.Policy != "" {
		bits = append(bits, fmt.Sprintf("Policy: %s.", snap.Policy))
	}
	return strings.Join(bits, " ")
}
