package viewmodel

import (
	"errors"
	"testing"
	"time"

	"github.com/Abraxas-365/resumelens/recruitment/analysis"
	"github.com/Abraxas-365/resumelens/recruitment/matching"
	"github.com/Abraxas-365/resumelens/recruitment/resume"
	"github.com/Abraxas-365/resumelens/recruitment/skill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resumeWith(status resume.Status) Source[resume.Resume] {
	r := resume.Resume{
		ID:       "1",
		Title:    "CV",
		Status:   status,
		Skills:   []resume.SkillRef{{ID: "s1", Name: "Docker"}},
		FileType: resume.FileTypePDF,
	}
	return Source[resume.Resume]{}.Succeed(r.WithStatus(status, time.Now()))
}

func readyAnalysis() Source[analysis.Payload] {
	return Source[analysis.Payload]{}.Succeed(analysis.Payload{
		Kind: analysis.KindReady,
		Result: &analysis.Result{
			OverallScore: f64(72),
			Skills:       []analysis.DetectedSkill{{Name: "Python"}, {Name: "Английский язык"}},
		},
	})
}

func readyJobs() Source[matching.Result] {
	return Source[matching.Result]{}.Succeed(matching.Result{
		Jobs:  []matching.Job{{ID: "7", Title: "Dev"}},
		Shape: matching.ShapeJobs,
	})
}

func TestAssemble_Completed(t *testing.T) {
	vm := Assemble(Input{
		ResumeID:    "1",
		Resume:      resumeWith(resume.StatusCompleted),
		Analysis:    readyAnalysis(),
		Jobs:        readyJobs(),
		DownloadURL: "http://backend/resumes/resumes/1/download/",
	})

	require.NotNil(t, vm.Status)
	assert.Equal(t, "Analysis completed", vm.Status.Label)
	assert.Equal(t, StateReady, vm.Analysis.State)
	require.NotNil(t, vm.Analysis.Data)
	assert.Equal(t, "72", vm.Analysis.Data.Overall.Text)
	require.NotNil(t, vm.Jobs.Data)
	assert.Len(t, *vm.Jobs.Data, 1)

	require.Len(t, vm.Skills, 2)
	assert.Equal(t, skill.CategoryTechnical, vm.Skills[0].Category)
	assert.Equal(t, []string{"Python"}, vm.Skills[0].Skills)
	assert.Equal(t, skill.CategoryLanguage, vm.Skills[1].Category)

	assert.True(t, vm.Actions.Reanalyze.Enabled)
	assert.Equal(t, "http://backend/resumes/resumes/1/download/", vm.Actions.DownloadURL)
}

func TestAssemble_InProgressGatesResults(t *testing.T) {
	for _, status := range []resume.Status{resume.StatusPending, resume.StatusProcessing} {
		vm := Assemble(Input{ResumeID: "1", Resume: resumeWith(status)})

		assert.Equal(t, StateUnavailable, vm.Analysis.State, status)
		assert.Equal(t, NoticeInProgress, vm.Analysis.Notice)
		assert.Equal(t, StateUnavailable, vm.Jobs.State)
		assert.False(t, vm.Actions.Reanalyze.Enabled)
		require.NotNil(t, vm.Status.Progress)
		assert.True(t, vm.Status.InProgress)
	}
}

func TestAssemble_KeepsStaleResultsWhileReanalyzing(t *testing.T) {
	vm := Assemble(Input{
		ResumeID: "1",
		Resume:   resumeWith(resume.StatusPending),
		Analysis: readyAnalysis(),
		Jobs:     readyJobs(),
	})

	assert.Equal(t, StateUnavailable, vm.Analysis.State)
	require.NotNil(t, vm.Analysis.Data)
	assert.True(t, vm.Analysis.Stale)
	assert.True(t, vm.Jobs.Stale)
}

func TestAssemble_FailedShowsReason(t *testing.T) {
	src := resumeWith(resume.StatusFailed)
	src.Data.FailureReason = "unreadable file"

	vm := Assemble(Input{ResumeID: "1", Resume: src})
	assert.Equal(t, "unreadable file", vm.FailureReason)
	assert.Equal(t, NoticeFailed, vm.Analysis.Notice)
	assert.True(t, vm.Actions.Reanalyze.Enabled)
}

func TestAssemble_UnknownResume(t *testing.T) {
	vm := Assemble(Input{ResumeID: "1", Resume: Source[resume.Resume]{}.Loading()})

	assert.Nil(t, vm.Status)
	assert.Equal(t, NoticeAwaitingStatus, vm.Analysis.Notice)
	assert.False(t, vm.Actions.Reanalyze.Enabled)
	assert.Empty(t, vm.Skills)
}

func TestAssemble_JobsFailureIsIsolated(t *testing.T) {
	vm := Assemble(Input{
		ResumeID: "1",
		Resume:   resumeWith(resume.StatusCompleted),
		Analysis: readyAnalysis(),
		Jobs:     Source[matching.Result]{}.Fail(errors.New("down")),
	})

	assert.Equal(t, StateReady, vm.Analysis.State)
	assert.Equal(t, StateError, vm.Jobs.State)
	assert.Equal(t, "down", vm.Jobs.Error.Message)
}

func TestAssemble_NotReadyPayload(t *testing.T) {
	vm := Assemble(Input{
		ResumeID: "1",
		Resume:   resumeWith(resume.StatusCompleted),
		Analysis: Source[analysis.Payload]{}.Succeed(analysis.Payload{Kind: analysis.KindNotReady, Status: "processing"}),
	})

	assert.Equal(t, StateUnavailable, vm.Analysis.State)
	assert.Equal(t, NoticeNotReady, vm.Analysis.Notice)
	assert.Nil(t, vm.Analysis.Data)

	// skills fall back to the resume's own references
	require.Len(t, vm.Skills, 1)
	assert.Equal(t, []string{"Docker"}, vm.Skills[0].Skills)
}

func TestAssemble_ReanalyzeAction(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	vm := Assemble(Input{
		ResumeID:       "1",
		Resume:         resumeWith(resume.StatusCompleted),
		Reanalyze:      Action{InFlight: true},
		LastReanalysis: &resume.ReanalysisRecord{Outcome: resume.OutcomeAccepted, RequestedAt: at},
	})

	a := vm.Actions.Reanalyze
	assert.False(t, a.Enabled)
	assert.True(t, a.InFlight)
	assert.NotEmpty(t, a.DisabledReason)
	require.NotNil(t, a.LastRequestedAt)
	assert.Equal(t, at, *a.LastRequestedAt)
	assert.Equal(t, resume.OutcomeAccepted, a.LastOutcome)
}
