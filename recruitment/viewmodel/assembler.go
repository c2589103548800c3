// Package viewmodel merges the independently loaded parts of a resume page
// into one render-ready structure.
package viewmodel

import (
	"time"

	"github.com/Abraxas-365/resumelens/pkg/kernel"
	"github.com/Abraxas-365/resumelens/recruitment/analysis"
	"github.com/Abraxas-365/resumelens/recruitment/matching"
	"github.com/Abraxas-365/resumelens/recruitment/resume"
	"github.com/Abraxas-365/resumelens/recruitment/skill"
)

const (
	NoticeAwaitingStatus = "Waiting for the resume status"
	NoticeInProgress     = "Analysis is in progress; results appear once it completes"
	NoticeFailed         = "Analysis failed; run it again to get results"
	NoticeUnknownStatus  = "Resume status is unknown"
	NoticeNotReady       = "Analysis results are not available yet"
	NoticeUnreadable     = "Analysis results could not be read"
	NoticeReanalyzing    = "Re-analysis started"
)

// Action is the state of a user-triggered action.
type Action struct {
	InFlight bool
	Error    *Problem
	Notice   string
}

// Input holds the raw per-source states kept by the controller.
type Input struct {
	ResumeID       kernel.ResumeID
	Resume         Source[resume.Resume]
	Analysis       Source[analysis.Payload]
	Jobs           Source[matching.Result]
	Reanalyze      Action
	LastReanalysis *resume.ReanalysisRecord
	DownloadURL    string
}

type ReanalyzeAction struct {
	Enabled         bool                     `json:"enabled"`
	InFlight        bool                     `json:"in_flight"`
	DisabledReason  string                   `json:"disabled_reason,omitempty"`
	Error           *Problem                 `json:"error,omitempty"`
	Notice          string                   `json:"notice,omitempty"`
	LastRequestedAt *time.Time               `json:"last_requested_at,omitempty"`
	LastOutcome     resume.ReanalysisOutcome `json:"last_outcome,omitempty"`
}

type Actions struct {
	Reanalyze   ReanalyzeAction `json:"reanalyze"`
	DownloadURL string          `json:"download_url,omitempty"`
}

type ViewModel struct {
	ResumeID      kernel.ResumeID       `json:"resume_id"`
	Resume        Source[resume.Resume] `json:"resume"`
	Status        *resume.StatusInfo    `json:"status,omitempty"`
	FailureReason string                `json:"failure_reason,omitempty"`
	Analysis      Source[AnalysisView]  `json:"analysis"`
	Skills        []skill.Group         `json:"skills"`
	Jobs          Source[[]JobView]     `json:"jobs"`
	Actions       Actions               `json:"actions"`
}

// Assemble builds the view model. Analysis and jobs are reported
// unavailable unless the resume is known to be completed; their previous
// data, if any, is kept and flagged stale.
func Assemble(in Input) ViewModel {
	vm := ViewModel{
		ResumeID: in.ResumeID,
		Resume:   in.Resume,
		Analysis: analysisSource(in.Analysis),
		Jobs:     Map(in.Jobs, NewJobViews),
	}

	status := resume.StatusNone
	if r := in.Resume.Data; r != nil {
		status = r.Status
		info := status.Info()
		vm.Status = &info
		if status == resume.StatusFailed {
			vm.FailureReason = r.FailureReason
		}
	}

	if notice, gated := gate(in.Resume); gated {
		vm.Analysis = vm.Analysis.MarkUnavailable(notice)
		vm.Jobs = vm.Jobs.MarkUnavailable(notice)
	}

	vm.Skills = skill.Categorize(skillNames(in.Resume, vm.Analysis)).Groups()
	vm.Actions = Actions{
		Reanalyze:   reanalyzeAction(in, status),
		DownloadURL: in.DownloadURL,
	}
	return vm
}

func gate(r Source[resume.Resume]) (string, bool) {
	if r.Data == nil {
		return NoticeAwaitingStatus, true
	}
	switch s := r.Data.Status; {
	case s.ResultsAvailable():
		return "", false
	case s.InProgress():
		return NoticeInProgress, true
	case s == resume.StatusFailed:
		return NoticeFailed, true
	default:
		return NoticeUnknownStatus, true
	}
}

func analysisSource(s Source[analysis.Payload]) Source[AnalysisView] {
	out := Source[AnalysisView]{State: s.State, Error: s.Error, Notice: s.Notice, Stale: s.Stale}
	if s.Data == nil {
		return out
	}

	p := *s.Data
	if p.Kind == analysis.KindReady && p.Result != nil {
		v := NewAnalysisView(*p.Result)
		out.Data = &v
		return out
	}

	if out.State == StateReady {
		notice := NoticeUnreadable
		if p.Kind == analysis.KindNotReady {
			notice = NoticeNotReady
		}
		out = out.MarkUnavailable(notice)
	}
	return out
}

// skillNames prefers the analysis skills and falls back to the skills
// referenced by the resume itself.
func skillNames(r Source[resume.Resume], a Source[AnalysisView]) []string {
	if a.Data != nil && len(a.Data.Skills) > 0 {
		names := make([]string, 0, len(a.Data.Skills))
		for _, s := range a.Data.Skills {
			names = append(names, s.Name)
		}
		return names
	}
	if r.Data != nil {
		return r.Data.SkillNames()
	}
	return nil
}

func reanalyzeAction(in Input, status resume.Status) ReanalyzeAction {
	a := ReanalyzeAction{
		InFlight: in.Reanalyze.InFlight,
		Error:    in.Reanalyze.Error,
		Notice:   in.Reanalyze.Notice,
	}

	switch {
	case in.Resume.Data == nil:
		a.DisabledReason = NoticeUnknownStatus
	case in.Reanalyze.InFlight:
		a.DisabledReason = "Re-analysis request is being sent"
	case !status.CanReanalyze():
		a.DisabledReason = "Analysis is already in progress"
	default:
		a.Enabled = true
	}

	if rec := in.LastReanalysis; rec != nil {
		at := rec.RequestedAt
		a.LastRequestedAt = &at
		a.LastOutcome = rec.Outcome
	}
	return a
}
