package sync

import "github.com/xampe11/nft-marketplace-project/internal/domain"

// Step is a data API mutation of a plan
type Step string

const (
	StepCreate Step = "create"
	StepUpdate Step = "update"
	StepRecord Step = "record"
)

// Plan is the ordered list of mutations applied for an event
type Plan struct {
	Name  string
	Steps []Step
}

var (
	planMintCreate   = Plan{Name: "mint_create", Steps: []Step{StepCreate, StepRecord}}
	planMintUpdate   = Plan{Name: "mint_update", Steps: []Step{StepUpdate, StepRecord}}
	planTransfer     = Plan{Name: "transfer", Steps: []Step{StepUpdate, StepRecord}}
	planListExisting = Plan{Name: "list_existing", Steps: []Step{StepUpdate, StepRecord}}
	planListCreate   = Plan{Name: "list_create", Steps: []Step{StepCreate, StepUpdate, StepRecord}}
	planSale         = Plan{Name: "sale", Steps: []Step{StepUpdate, StepRecord}}
	planCancel       = Plan{Name: "cancel", Steps: []Step{StepUpdate, StepRecord}}
)

var plansByName = map[string]Plan{}

func init() {
	for _, p := range []Plan{planMintCreate, planMintUpdate, planTransfer, planListExisting, planListCreate, planSale, planCancel} {
		plansByName[p.Name] = p
	}
}

// PlanByName returns a plan by its journaled name
func PlanByName(name string) (Plan, bool) {
	p, ok := plansByName[name]
	return p, ok
}

// SelectPlan returns the plan of an event kind given whether the token has a record
// It returns false when the event must be dropped
func SelectPlan(kind domain.EventKind, recordPresent bool) (Plan, bool) {
	switch kind {
	case domain.EventKindMint:
		if recordPresent {
			return planMintUpdate, true
		}
		return planMintCreate, true
	case domain.EventKindListed:
		if recordPresent {
			return planListExisting, true
		}
		return planListCreate, true
	case domain.EventKindTransfer:
		return planTransfer, recordPresent
	case domain.EventKindSold:
		return planSale, recordPresent
	case domain.EventKindCanceled:
		return planCancel, recordPresent
	default:
		return Plan{}, false
	}
}
