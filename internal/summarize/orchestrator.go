package summarize

import (
	"context"
	"log"
	"strings"

	"casedesk/internal/crm"
	"casedesk/internal/domain"
)

// Provenance footers appended to every draft.
const (
	FooterLLM   = "\n\n---\n_Draft generated with LLM assistance._"
	FooterRules = "\n\n---\n_Draft generated by rule-based summarizer._"
)

// Generator is the LLM path. A nil Generate result means the call failed
// and the orchestrator must fall back.
type Generator interface {
	ValidateCredential(ctx context.Context, key string) bool
	Generate(ctx context.Context, thread domain.Thread, key string) *domain.SummaryResult
}

// Orchestrator decides LLM vs. rule-based per request. External failures
// never surface to the caller; the rule path is the guaranteed fallback.
type Orchestrator struct {
	rules *Engine
	llm   Generator
	crm   *crm.Store
}

// NewOrchestrator wires the rule engine, LLM generator and CRM store.
func NewOrchestrator(rules *Engine, llm Generator, store *crm.Store) *Orchestrator {
	return &Orchestrator{rules: rules, llm: llm, crm: store}
}

// Summarize produces a draft for the thread. With a valid credential the
// LLM path is attempted once; any validation or generation failure falls
// through silently to the deterministic rules. Both branches return the
// identical result shape, differing only in prose style and footer.
func (o *Orchestrator) Summarize(ctx context.Context, thread domain.Thread, llmKey string) domain.SummaryResult {
	if strings.TrimSpace(llmKey) != "" && o.llm != nil {
		if o.llm.ValidateCredential(ctx, llmKey) {
			if result := o.llm.Generate(ctx, thread, llmKey); result != nil {
				return o.finishLLM(thread, *result)
			}
			log.Printf("summarize llm generation absent thread=%s, falling back to rules", thread.ThreadID)
		} else {
			log.Printf("summarize llm credential invalid thread=%s, falling back to rules", thread.ThreadID)
		}
	}

	result := o.rules.Summarize(thread)
	result.DraftSummary += FooterRules
	return result
}

// finishLLM merges the model's classification fields with the
// orchestrator's own enrichment. The CRM snapshot always comes from the
// reference store, never from the model, and identifiers are echoed from
// the thread.
func (o *Orchestrator) finishLLM(thread domain.Thread, result domain.SummaryResult) domain.SummaryResult {
	snap := o.crm.Lookup(thread.OrderID)

	fields := result.DraftFields
	fields.ThreadID = thread.ThreadID
	fields.OrderID = thread.OrderID
	fields.Product = thread.Product
	fields.InitiatedBy = thread.InitiatedBy
	fields.CurrentStatus = "Unresolved"
	fields.SLARisk = false
	fields.CRMSnapshot = snap

	if len(fields.AttachmentsNeeded) == 0 {
		if fields.IssueType == domain.IssueDamaged || hasAsk(fields.CustomerAsk, domain.AskPhotos) {
			fields.AttachmentsNeeded = []string{"Photos"}
		}
	}
	if len(fields.NextActions) == 0 {
		fields.NextActions = []string{action{kind: actionConfirmDetails}.render()}
	}

	draft := strings.TrimSpace(result.DraftSummary)
	if facts := crmFacts(snap); facts != "" {
		draft += "\n\n" + facts
	}
	draft += FooterLLM

	return domain.SummaryResult{DraftSummary: draft, DraftFields: fields}
}

func hasAsk(asks []domain.Ask, want domain.Ask) bool {
	for _, a := range asks {
		if a == want {
			return true
		}
	}
	return false
}
