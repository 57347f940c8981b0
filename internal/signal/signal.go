// Package signal extracts intent signals from conversation text with
// keyword matching. Everything here is a pure function of the input text.
package signal

import (
	"strings"

	"casedesk/internal/domain"
)

// Keyword variants per signal. Matching is case-insensitive substring search.
var keywords = map[string][]string{
	"refund":        {"refund", "credit"},
	"replacement":   {"replace", "replacement"},
	"return":        {"return", "rma"},
	"photos":        {"photo", "photos", "picture", "pictures", "image"},
	"address":       {"address"},
	"tracking":      {"tracking", "carrier"},
	"damaged":       {"damage", "damaged", "broken", "defective"},
	"delay":         {"late", "delayed", "delay"},
	"wrong_variant": {"wrong", "size", "color", "variant"},
}

// askOrder fixes both the candidate iteration order and the insertion order
// of detected asks.
var askOrder = []domain.Ask{
	domain.AskRefund,
	domain.AskReplacement,
	domain.AskReturn,
	domain.AskPhotos,
	domain.AskAddress,
	domain.AskTracking,
}

func containsAny(lower string, tokens []string) bool {
	for _, tok := range tokens {
		if strings.Contains(lower, tok) {
			return true
		}
	}
	return false
}

// JoinBodies concatenates all message bodies into the single text the
// extractor operates on.
func JoinBodies(messages []domain.Message) string {
	parts := make([]string, 0, len(messages))
	for _, m := range messages {
		parts = append(parts, m.Body)
	}
	return strings.Join(parts, " ")
}

// ClassifyIssue picks the issue type by evaluating the keyword groups in
// fixed priority order: damaged > delay > wrong variant > return > refund.
// First match wins; no match means General inquiry.
func ClassifyIssue(text string) domain.IssueType {
	lower := strings.ToLower(text)
	switch {
	case containsAny(lower, keywords["damaged"]):
		return domain.IssueDamaged
	case containsAny(lower, keywords["delay"]):
		return domain.IssueLateDelivery
	case containsAny(lower, keywords["wrong_variant"]):
		return domain.IssueWrongVariant
	case containsAny(lower, keywords["return"]):
		return domain.IssueReturn
	case containsAny(lower, keywords["refund"]):
		return domain.IssueRefund
	default:
		return domain.IssueGeneral
	}
}

// DetectAsks returns the customer asks found in the text, in the fixed
// candidate order. Each ask appears at most once.
func DetectAsks(text string) []domain.Ask {
	lower := strings.ToLower(text)
	var asks []domain.Ask
	for _, ask := range askOrder {
		if containsAny(lower, keywords[string(ask)]) {
			asks = append(asks, ask)
		}
	}
	return asks
}
