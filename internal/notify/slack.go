// Package notify posts approval notifications to Slack.
package notify

import (
	"fmt"
	"log"

	"github.com/slack-go/slack"

	"casedesk/internal/review"
)

// slackClient is the subset of the Slack API used here, split out for tests.
type slackClient interface {
	PostMessage(channelID string, options ...slack.MsgOption) (string, string, error)
}

// SlackNotifier announces approved summaries in a channel. Failures are
// logged and never propagate to the approval.
type SlackNotifier struct {
	api       slackClient
	channelID string
}

// NewSlackNotifier builds a notifier from a bot token and target channel.
func NewSlackNotifier(botToken, channelID string) *SlackNotifier {
	return &SlackNotifier{api: slack.New(botToken), channelID: channelID}
}

func messageText(rec review.ExportRecord) string {
	text := fmt.Sprintf(":white_check_mark: Summary approved for *%s* (%s) by %s",
		rec.Subject, rec.ThreadID, rec.Approver)
	if rec.OrderID != "" {
		text += fmt.Sprintf("\nOrder: `%s`", rec.OrderID)
	}
	return text
}

// ApprovalPosted implements review.Notifier.
func (n *SlackNotifier) ApprovalPosted(rec review.ExportRecord) {
	_, _, err := n.api.PostMessage(n.channelID, slack.MsgOptionText(messageText(rec), false))
	if err != nil {
		log.Printf("slack notify error channel=%s thread=%s err=%v", n.channelID, rec.ThreadID, err)
		return
	}
	log.Printf("slack notify posted channel=%s thread=%s", n.channelID, rec.ThreadID)
}
