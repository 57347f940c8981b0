package notify

import (
	"errors"
	"strings"
	"testing"

	"github.com/slack-go/slack"

	"casedesk/internal/review"
)

type fakeSlack struct {
	channelID string
	calls     int
	err       error
}

func (f *fakeSlack) PostMessage(channelID string, options ...slack.MsgOption) (string, string, error) {
	f.channelID = channelID
	f.calls++
	return channelID, "123.456", f.err
}

func TestApprovalPostedSendsMessage(t *testing.T) {
	fake := &fakeSlack{}
	n := &SlackNotifier{api: fake, channelID: "C123"}

	n.ApprovalPosted(review.ExportRecord{
		ThreadID: "T-1",
		Subject:  "Broken mug",
		OrderID:  "ORD-1",
		Approver: "dana",
	})

	if fake.calls != 1 {
		t.Fatalf("calls = %d", fake.calls)
	}
	if fake.channelID != "C123" {
		t.Fatalf("channel = %q", fake.channelID)
	}
}

func TestApprovalPostedSwallowsErrors(t *testing.T) {
	fake := &fakeSlack{err: errors.New("channel_not_found")}
	n := &SlackNotifier{api: fake, channelID: "C404"}

	// Must not panic or surface the error.
	n.ApprovalPosted(review.ExportRecord{ThreadID: "T-1", Subject: "x", Approver: "dana"})

	if fake.calls != 1 {
		t.Fatalf("calls = %d", fake.calls)
	}
}

func TestMessageTextMentionsOrder(t *testing.T) {
	rec := review.ExportRecord{ThreadID: "T-1", Subject: "Broken mug", OrderID: "ORD-9", Approver: "dana"}
	text := messageText(rec)
	if !strings.Contains(text, "ORD-9") || !strings.Contains(text, "Broken mug") {
		t.Fatalf("text = %q", text)
	}
}
