package resume

import "strings"

// Status is the backend processing state of a resume.
type Status string

const (
	// StatusNone is the state before a resume exists.
	StatusNone       Status = ""
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// ParseStatus accepts the backend spelling "analyzing" for processing.
func ParseStatus(s string) (Status, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending":
		return StatusPending, true
	case "processing", "analyzing":
		return StatusProcessing, true
	case "completed":
		return StatusCompleted, true
	case "failed":
		return StatusFailed, true
	default:
		return StatusNone, false
	}
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

func (s Status) String() string {
	if s == StatusNone {
		return "none"
	}
	return string(s)
}

// IsTerminal reports a display-terminal state: no further implicit refreshes.
func (s Status) IsTerminal() bool { return s == StatusCompleted || s == StatusFailed }

func (s Status) InProgress() bool { return s == StatusPending || s == StatusProcessing }

func (s Status) CanReanalyze() bool { return s.IsTerminal() }

// ResultsAvailable gates analysis and matching-job fetches.
func (s Status) ResultsAvailable() bool { return s == StatusCompleted }

type Tone string

const (
	ToneDefault Tone = "default"
	ToneInfo    Tone = "info"
	ToneSuccess Tone = "success"
	ToneWarning Tone = "warning"
	ToneError   Tone = "error"
)

// StatusInfo is the presentation of a status. Progress is set only for
// in-progress states.
type StatusInfo struct {
	Status     Status `json:"status"`
	Label      string `json:"label"`
	Tone       Tone   `json:"tone"`
	InProgress bool   `json:"in_progress"`
	Progress   *int   `json:"progress,omitempty"`
}

func (s Status) Info() StatusInfo {
	progress := func(v int) *int { return &v }

	switch s {
	case StatusPending:
		return StatusInfo{Status: s, Label: "Queued for processing", Tone: ToneWarning, InProgress: true, Progress: progress(10)}
	case StatusProcessing:
		return StatusInfo{Status: s, Label: "Analyzing...", Tone: ToneInfo, InProgress: true, Progress: progress(50)}
	case StatusCompleted:
		return StatusInfo{Status: s, Label: "Analysis completed", Tone: ToneSuccess}
	case StatusFailed:
		return StatusInfo{Status: s, Label: "Analysis failed", Tone: ToneError}
	default:
		return StatusInfo{Status: s, Label: "Unknown status", Tone: ToneDefault}
	}
}
