package signal

import (
	"reflect"
	"testing"

	"casedesk/internal/domain"
)

func TestClassifyIssuePriorityOrder(t *testing.T) {
	tests := []struct {
		name string
		text string
		want domain.IssueType
	}{
		{"damaged", "the item arrived broken", domain.IssueDamaged},
		{"delay", "my package is late again", domain.IssueLateDelivery},
		{"wrong variant", "you sent the wrong color", domain.IssueWrongVariant},
		{"return", "I want to return this", domain.IssueReturn},
		{"refund", "please issue a refund", domain.IssueRefund},
		{"general", "just a quick question", domain.IssueGeneral},
		{"damaged beats refund", "damaged item, want a refund", domain.IssueDamaged},
		{"delay beats wrong", "late delivery and wrong size", domain.IssueLateDelivery},
		{"case insensitive", "ITEM WAS DEFECTIVE", domain.IssueDamaged},
		{"empty", "", domain.IssueGeneral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyIssue(tt.text); got != tt.want {
				t.Fatalf("ClassifyIssue(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestDetectAsksFixedOrder(t *testing.T) {
	text := "Send tracking info and photos, then refund me"
	got := DetectAsks(text)
	want := []domain.Ask{domain.AskRefund, domain.AskPhotos, domain.AskTracking}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("DetectAsks = %v, want %v", got, want)
	}
}

func TestDetectAsksNoDuplicates(t *testing.T) {
	got := DetectAsks("refund refund refund, credit please")
	if len(got) != 1 || got[0] != domain.AskRefund {
		t.Fatalf("expected single refund ask, got %v", got)
	}
}

func TestDetectAsksEmptyText(t *testing.T) {
	if got := DetectAsks(""); got != nil {
		t.Fatalf("expected no asks for empty text, got %v", got)
	}
}

func TestJoinBodies(t *testing.T) {
	msgs := []domain.Message{
		{ID: "m1", Body: "Item arrived damaged"},
		{ID: "m2", Body: "please send photos"},
	}
	got := JoinBodies(msgs)
	want := "Item arrived damaged please send photos"
	if got != want {
		t.Fatalf("JoinBodies = %q, want %q", got, want)
	}
}
