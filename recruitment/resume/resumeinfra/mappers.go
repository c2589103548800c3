package resumeinfra

import (
	"time"

	"github.com/Abraxas-365/resumelens/pkg/fsx"
	"github.com/Abraxas-365/resumelens/pkg/kernel"
	"github.com/Abraxas-365/resumelens/recruitment/resume"
)

// resumeWire is a resume as serialized by the backend. List and detail
// responses carry different subsets of these fields.
type resumeWire struct {
	ID           kernel.FlexID `json:"id"`
	Title        string        `json:"title"`
	File         string        `json:"file"`
	FileName     string        `json:"file_name"`
	FileType     string        `json:"file_type"`
	Status       string        `json:"status"`
	MongoDBID    *string       `json:"mongodb_id"`
	IsAnalyzed   *bool         `json:"is_analyzed"`
	Skills       []skillWire   `json:"skills"`
	SkillsList   []string      `json:"skills_list"`
	CreatedAt    *time.Time    `json:"created_at"`
	UpdatedAt    *time.Time    `json:"updated_at"`
	AnalyzedAt   *time.Time    `json:"analyzed_at"`
	ErrorMessage string        `json:"error_message"`
}

type skillWire struct {
	ID   kernel.FlexID `json:"id"`
	Name string        `json:"name"`
}

func (w *resumeWire) toDomain() (*resume.Resume, error) {
	if w.ID.IsEmpty() {
		return nil, resume.ErrInvalidPayload(nil).WithDetail("field", "id")
	}

	status, ok := resume.ParseStatus(w.Status)
	if !ok {
		return nil, resume.ErrInvalidPayload(nil).
			WithDetail("field", "status").
			WithDetail("value", w.Status)
	}

	r := &resume.Resume{
		ID:            kernel.NewResumeID(w.ID.String()),
		Title:         w.Title,
		FileName:      w.FileName,
		Status:        status,
		FailureReason: w.ErrorMessage,
	}

	if r.FileName == "" && w.File != "" {
		r.FileName = fsx.BaseName(w.File)
	}
	r.FileType = resume.FileType(w.FileType)
	if r.FileType == "" || r.FileType == resume.FileTypeUnknown {
		r.FileType = resume.ClassifyFile(r.FileName)
	}

	if w.CreatedAt != nil {
		r.UploadedAt = *w.CreatedAt
	}

	// the backend only reports analyzed_at on newer versions; fall back
	// to the last update for terminal statuses
	switch {
	case w.AnalyzedAt != nil:
		r.AnalyzedAt = w.AnalyzedAt
	case status.IsTerminal() && w.UpdatedAt != nil:
		r.AnalyzedAt = w.UpdatedAt
	case status.IsTerminal():
		at := r.UploadedAt
		r.AnalyzedAt = &at
	}
	if !status.IsTerminal() {
		r.AnalyzedAt = nil
	}

	r.HasAnalysis = w.MongoDBID != nil && *w.MongoDBID != ""
	if w.IsAnalyzed != nil && *w.IsAnalyzed {
		r.HasAnalysis = true
	}

	for _, s := range w.Skills {
		id := kernel.NewSkillID(s.ID.String())
		r.SkillIDs = append(r.SkillIDs, id)
		r.Skills = append(r.Skills, resume.SkillRef{ID: id, Name: s.Name})
	}
	if len(r.Skills) == 0 {
		for _, name := range w.SkillsList {
			r.Skills = append(r.Skills, resume.SkillRef{Name: name})
		}
	}

	return r, nil
}
