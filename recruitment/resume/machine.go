package resume

// Trigger is an event that moves a resume between statuses.
type Trigger string

const (
	TriggerUploaded  Trigger = "upload_succeeded"
	TriggerAdvanced  Trigger = "backend_advanced"
	TriggerCompleted Trigger = "backend_completed"
	TriggerErrored   Trigger = "backend_errored"
	TriggerReanalyze Trigger = "reanalyze_requested"
)

// Effect is the follow-up work a transition asks the controller to do.
type Effect string

const (
	EffectNone                 Effect = "none"
	EffectScheduleRefresh      Effect = "schedule_metadata_refresh"
	EffectFetchResults         Effect = "fetch_analysis_and_jobs"
	EffectSurfaceFailure       Effect = "surface_failure_reason"
	EffectInvalidateAndRefresh Effect = "invalidate_analysis_and_refresh"
)

type Transition struct {
	From    Status  `json:"from"`
	Trigger Trigger `json:"trigger"`
	To      Status  `json:"to"`
	Effect  Effect  `json:"effect"`
}

var transitions = []Transition{
	{From: StatusNone, Trigger: TriggerUploaded, To: StatusPending, Effect: EffectScheduleRefresh},
	{From: StatusPending, Trigger: TriggerAdvanced, To: StatusProcessing, Effect: EffectNone},
	{From: StatusProcessing, Trigger: TriggerCompleted, To: StatusCompleted, Effect: EffectFetchResults},
	{From: StatusProcessing, Trigger: TriggerErrored, To: StatusFailed, Effect: EffectSurfaceFailure},
	{From: StatusCompleted, Trigger: TriggerReanalyze, To: StatusPending, Effect: EffectInvalidateAndRefresh},
	{From: StatusFailed, Trigger: TriggerReanalyze, To: StatusPending, Effect: EffectInvalidateAndRefresh},
}

// Transitions returns a copy of the transition table.
func Transitions() []Transition {
	out := make([]Transition, len(transitions))
	copy(out, transitions)
	return out
}

// Next applies trig to from. Re-analysis of an in-progress resume is
// reported as ErrReanalyzeNotAllowed, any other missing edge as
// ErrInvalidTransition.
func Next(from Status, trig Trigger) (Transition, error) {
	for _, t := range transitions {
		if t.From == from && t.Trigger == trig {
			return t, nil
		}
	}

	if trig == TriggerReanalyze && from.InProgress() {
		return Transition{}, ErrReanalyzeNotAllowed().WithDetail("status", from)
	}
	return Transition{}, ErrInvalidTransition().WithDetails(map[string]any{
		"from":    from.String(),
		"trigger": trig,
	})
}

// Initial is the transition that creates a resume.
func Initial(trig Trigger) (Transition, error) {
	return Next(StatusNone, trig)
}

// Observe explains a status change seen on refetch as the shortest chain of
// transitions leading from prev to next. The backend may move through several
// states between two refetches. ok is false when no chain exists.
func Observe(prev, next Status) (path []Transition, ok bool) {
	if prev == next {
		return nil, true
	}

	type step struct {
		status Status
		path   []Transition
	}

	seen := map[Status]bool{prev: true}
	queue := []step{{status: prev}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, t := range transitions {
			if t.From != cur.status || seen[t.To] {
				continue
			}
			p := append(append([]Transition{}, cur.path...), t)
			if t.To == next {
				return p, true
			}
			seen[t.To] = true
			queue = append(queue, step{status: t.To, path: p})
		}
	}
	return nil, false
}
