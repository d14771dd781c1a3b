package agent

// Stage names a node in the agent graph.
type Stage string

const (
	StagePlanner  Stage = "planner"
	StageExecutor Stage = "executor"
	StageCritic   Stage = "critic"
	StageEnd      Stage = "end"
)

// Stages lists the runnable stages in loop order.
var Stages = []Stage{StagePlanner, StageExecutor, StageCritic}

func (s Stage) String() string { return string(s) }

// Action is the routing request left in the state by the stage that just ran.
type Action string

const (
	ActionPlan     Action = "plan"
	ActionExecute  Action = "execute"
	ActionCritique Action = "critique"
	ActionComplete Action = "complete"
)

func (a Action) String() string { return string(a) }
