package agent

import "strings"

// Verdict is the Critic's classification of an execution result.
type Verdict string

const (
	VerdictNone         Verdict = ""
	VerdictSatisfactory Verdict = "satisfactory" // done
	VerdictReplan       Verdict = "replan"       // the plan was wrong
	VerdictRevise       Verdict = "revise"       // run the executor again
)

// Verdict tokens the Critic is asked to answer with.
const (
	TokenSatisfactory = "SATISFACTORIO"
	TokenRevise       = "REVISAR"
	TokenReplan       = "REPLANTEAR"
)

// ClassifyVerdict maps free-form critic output to a Verdict by
// case-insensitive substring match. SATISFACTORIO wins over REPLANTEAR; any
// other text, REVISAR included, asks for another execution.
func ClassifyVerdict(evaluation string) Verdict {
	upper := strings.ToUpper(evaluation)
	switch {
	case strings.Contains(upper, TokenSatisfactory):
		return VerdictSatisfactory
	case strings.Contains(upper, TokenReplan):
		return VerdictReplan
	default:
		return VerdictRevise
	}
}

// Action returns the routing request that follows the verdict.
func (v Verdict) Action() Action {
	switch v {
	case VerdictSatisfactory:
		return ActionComplete
	case VerdictReplan:
		return ActionPlan
	default:
		return ActionExecute
	}
}
