package summarize

import "casedesk/internal/domain"

// Next actions are tagged values until the final formatting step. The
// stock-availability refinement switches the replacement action's variant on
// the tag instead of rewriting rendered strings, so phrasing changes cannot
// silently break the refinement.
type actionKind int

const (
	actionRequestPhotos actionKind = iota
	actionGenerateRMA
	actionProcessRefund
	actionOfferReplacement
	actionConfirmAddress
	actionShareTracking
	actionConfirmDetails
)

type stockState int

const (
	stockUnknown stockState = iota
	stockInStock
	stockOut
)

type action struct {
	kind  actionKind
	stock stockState // meaningful only for actionOfferReplacement
}

func (a action) render() string {
	switch a.kind {
	case actionRequestPhotos:
		return "Request photos of the issue"
	case actionGenerateRMA:
		return "Generate RMA & return label"
	case actionProcessRefund:
		return "Process refund on carrier scan"
	case actionOfferReplacement:
		switch a.stock {
		case stockInStock:
			return "Offer replacement (stock available)"
		case stockOut:
			return "Offer replacement (backorder or OOS)"
		default:
			return "Offer replacement if stock available"
		}
	case actionConfirmAddress:
		return "Confirm shipping address with customer"
	case actionShareTracking:
		return "Share latest tracking status with customer"
	default:
		return "Confirm details with customer"
	}
}

// deriveActions evaluates the six trigger rules in fixed order. Each rule
// combines ask detection with issue-type overrides. When none fire, the
// single default action is appended.
func deriveActions(issue domain.IssueType, asks []domain.Ask) []action {
	has := make(map[domain.Ask]bool, len(asks))
	for _, a := range asks {
		has[a] = true
	}

	var actions []action
	if has[domain.AskPhotos] || issue == domain.IssueDamaged {
		actions = append(actions, action{kind: actionRequestPhotos})
	}
	if has[domain.AskReturn] || issue == domain.IssueDamaged ||
		issue == domain.IssueWrongVariant || issue == domain.IssueReturn {
		actions = append(actions, action{kind: actionGenerateRMA})
	}
	if has[domain.AskRefund] || issue == domain.IssueRefund {
		actions = append(actions, action{kind: actionProcessRefund})
	}
	if has[domain.AskReplacement] {
		actions = append(actions, action{kind: actionOfferReplacement})
	}
	if has[domain.AskAddress] {
		actions = append(actions, action{kind: actionConfirmAddress})
	}
	if has[domain.AskTracking] || issue == domain.IssueLateDelivery {
		actions = append(actions, action{kind: actionShareTracking})
	}
	if len(actions) == 0 {
		actions = append(actions, action{kind: actionConfirmDetails})
	}
	return actions
}

// refineStock updates the replacement action variant once stock availability
// is known. Other actions are untouched.
func refineStock(actions []action, stockAvailable *bool) []action {
	if stockAvailable == nil {
		return actions
	}
	state := stockOut
	if *stockAvailable {
		state = stockInStock
	}
	for i := range actions {
		if actions[i].kind == actionOfferReplacement {
			actions[i].stock = state
		}
	}
	return actions
}

func renderActions(actions []action) []string {
	out := make([]string, 0, len(actions))
	for _, a := range actions {
		out = append(out, a.render())
	}
	return out
}

// deriveDisposition applies the fixed precedence refund > replacement >
// return > agent confirmation.
func deriveDisposition(asks []domain.Ask) domain.Disposition {
	has := make(map[domain.Ask]bool, len(asks))
	for _, a := range asks {
		has[a] = true
	}
	switch {
	case has[domain.AskRefund]:
		return domain.DispositionRefund
	case has[domain.AskReplacement]:
		return domain.DispositionReplacement
	case has[domain.AskReturn]:
		return domain.DispositionRMARefund
	default:
		return domain.DispositionAgentConfirm
	}
}
