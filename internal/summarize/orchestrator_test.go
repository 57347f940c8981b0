package summarize

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"casedesk/internal/domain"
	"casedesk/internal/llm"
)

// fakeGenerator scripts the LLM path without a network.
type fakeGenerator struct {
	valid     bool
	result    *domain.SummaryResult
	generated int
}

func (f *fakeGenerator) ValidateCredential(ctx context.Context, key string) bool {
	return f.valid
}

func (f *fakeGenerator) Generate(ctx context.Context, thread domain.Thread, key string) *domain.SummaryResult {
	f.generated++
	return f.result
}

func TestNoCredentialUsesRules(t *testing.T) {
	store := testCRMStore(t)
	gen := &fakeGenerator{valid: true}
	o := NewOrchestrator(NewEngine(store), gen, store)

	result := o.Summarize(context.Background(), threadWithBody("refund please", ""), "")

	if gen.generated != 0 {
		t.Fatal("LLM must not be called without a credential")
	}
	if !strings.HasSuffix(result.DraftSummary, FooterRules) {
		t.Fatalf("missing rule-based footer:\n%s", result.DraftSummary)
	}
}

func TestInvalidCredentialFallsBack(t *testing.T) {
	store := testCRMStore(t)
	gen := &fakeGenerator{valid: false}
	o := NewOrchestrator(NewEngine(store), gen, store)

	result := o.Summarize(context.Background(), threadWithBody("refund please", ""), "bad-key")

	if gen.generated != 0 {
		t.Fatal("generation must not run with an invalid credential")
	}
	if !strings.HasSuffix(result.DraftSummary, FooterRules) {
		t.Fatalf("missing rule-based footer:\n%s", result.DraftSummary)
	}
}

func TestGenerationFailureMatchesRuleOutput(t *testing.T) {
	store := testCRMStore(t)
	thread := threadWithBody("Item damaged, refund please", "ORD-IN")

	gen := &fakeGenerator{valid: true, result: nil}
	o := NewOrchestrator(NewEngine(store), gen, store)
	viaOrchestrator := o.Summarize(context.Background(), thread, "key")

	direct := NewEngine(store).Summarize(thread)

	if viaOrchestrator.DraftSummary != direct.DraftSummary+FooterRules {
		t.Fatalf("fallback text diverges from rule output:\n%s", viaOrchestrator.DraftSummary)
	}
	if !reflect.DeepEqual(viaOrchestrator.DraftFields, direct.DraftFields) {
		t.Fatalf("fallback fields diverge:\n%+v\n%+v", viaOrchestrator.DraftFields, direct.DraftFields)
	}
}

// HTTP 500 from the real client must behave exactly like the rule path.
func TestServerErrorFallsBackToRules(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	store := testCRMStore(t)
	thread := threadWithBody("Item damaged, refund please", "ORD-IN")
	o := NewOrchestrator(NewEngine(store), llm.NewClient("", "", srv.URL), store)

	viaOrchestrator := o.Summarize(context.Background(), thread, "key")
	direct := NewEngine(store).Summarize(thread)

	if !reflect.DeepEqual(viaOrchestrator.DraftFields, direct.DraftFields) {
		t.Fatalf("fields diverge after 500 fallback:\n%+v\n%+v", viaOrchestrator.DraftFields, direct.DraftFields)
	}
}

func TestLLMBranchMergesAuthoritativeEnrichment(t *testing.T) {
	store := testCRMStore(t)
	gen := &fakeGenerator{
		valid: true,
		result: &domain.SummaryResult{
			DraftSummary: "Customer reports a damaged item and wants a refund.",
			DraftFields: domain.DraftFields{
				// The model guessed identifiers; they must be overwritten.
				ThreadID:               "model-guess",
				OrderID:                "model-guess",
				IssueType:              domain.IssueDamaged,
				CustomerAsk:            []domain.Ask{domain.AskRefund},
				RecommendedDisposition: domain.DispositionRefund,
				NextActions:            []string{"Process refund on carrier scan"},
			},
		},
	}
	o := NewOrchestrator(NewEngine(store), gen, store)

	thread := threadWithBody("Item damaged, refund please", "ORD-IN")
	result := o.Summarize(context.Background(), thread, "key")

	f := result.DraftFields
	if f.ThreadID != "CE-1" || f.OrderID != "ORD-IN" {
		t.Fatalf("identifiers not echoed from thread: %+v", f)
	}
	if f.CRMSnapshot.Policy != "30-day returns" {
		t.Fatalf("crm_snapshot must come from the reference store, got %+v", f.CRMSnapshot)
	}
	if f.CRMSnapshot.Customer == nil || f.CRMSnapshot.Customer.Name != "Dana Smith" {
		t.Fatalf("customer snapshot missing: %+v", f.CRMSnapshot)
	}
	if len(f.AttachmentsNeeded) != 1 || f.AttachmentsNeeded[0] != "Photos" {
		t.Fatalf("attachments_needed = %v", f.AttachmentsNeeded)
	}
	if !strings.Contains(result.DraftSummary, "Order status: delivered.") {
		t.Fatalf("CRM facts not appended to LLM draft:\n%s", result.DraftSummary)
	}
	if !strings.HasSuffix(result.DraftSummary, FooterLLM) {
		t.Fatalf("missing LLM footer:\n%s", result.DraftSummary)
	}
}

func TestLLMBranchEnsuresNonEmptyActions(t *testing.T) {
	store := testCRMStore(t)
	gen := &fakeGenerator{
		valid: true,
		result: &domain.SummaryResult{
			DraftSummary: "Short note.",
			DraftFields: domain.DraftFields{
				IssueType:              domain.IssueGeneral,
				RecommendedDisposition: domain.DispositionAgentConfirm,
			},
		},
	}
	o := NewOrchestrator(NewEngine(store), gen, store)

	result := o.Summarize(context.Background(), threadWithBody("hello", ""), "key")
	if len(result.DraftFields.NextActions) != 1 ||
		result.DraftFields.NextActions[0] != "Confirm details with customer" {
		t.Fatalf("next_actions = %v, want default action", result.DraftFields.NextActions)
	}
}
