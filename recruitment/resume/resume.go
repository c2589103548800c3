package resume

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/Abraxas-365/resumelens/pkg/kernel"
)

type FileType string

const (
	FileTypePDF     FileType = "pdf"
	FileTypeDOC     FileType = "doc"
	FileTypeDOCX    FileType = "docx"
	FileTypeUnknown FileType = "unknown"
)

// ClassifyFile derives the file type from the file name extension.
func ClassifyFile(name string) FileType {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(name), ".")) {
	case "pdf":
		return FileTypePDF
	case "doc":
		return FileTypeDOC
	case "docx":
		return FileTypeDOCX
	default:
		return FileTypeUnknown
	}
}

type SkillRef struct {
	ID   kernel.SkillID `json:"id"`
	Name string         `json:"name"`
}

// Resume is the uploaded document and its processing status as last
// reported by the backend.
type Resume struct {
	ID         kernel.ResumeID `json:"id"`
	Title      string          `json:"title"`
	FileName   string          `json:"file_name"`
	FileType   FileType        `json:"file_type"`
	UploadedAt time.Time       `json:"uploaded_at"`
	AnalyzedAt *time.Time      `json:"analyzed_at,omitempty"`
	Status     Status          `json:"status"`

	// Skill references are a set; order carries no meaning.
	SkillIDs []kernel.SkillID `json:"skill_ids,omitempty"`
	Skills   []SkillRef       `json:"skills,omitempty"`

	// HasAnalysis is set when the backend holds an analysis record.
	HasAnalysis   bool   `json:"has_analysis"`
	FailureReason string `json:"failure_reason,omitempty"`
}

// CheckInvariants verifies that analyzed_at is set exactly for terminal statuses.
func (r *Resume) CheckInvariants() error {
	if !r.Status.IsValid() {
		return ErrInconsistentState().WithDetail("status", string(r.Status))
	}
	if r.Status.IsTerminal() != (r.AnalyzedAt != nil) {
		return ErrInconsistentState().WithDetails(map[string]any{
			"status":      r.Status,
			"analyzed_at": r.AnalyzedAt,
			"resume_id":   r.ID,
		})
	}
	return nil
}

func (r *Resume) HasSkill(id kernel.SkillID) bool {
	for _, s := range r.SkillIDs {
		if s == id {
			return true
		}
	}
	return false
}

func (r *Resume) SkillNames() []string {
	names := make([]string, 0, len(r.Skills))
	for _, s := range r.Skills {
		if s.Name != "" {
			names = append(names, s.Name)
		}
	}
	return names
}

// WithStatus returns a copy moved to status, keeping analyzed_at consistent.
func (r Resume) WithStatus(status Status, at time.Time) Resume {
	r.Status = status
	if status.IsTerminal() {
		if r.AnalyzedAt == nil {
			r.AnalyzedAt = &at
		}
	} else {
		r.AnalyzedAt = nil
		r.FailureReason = ""
	}
	return r
}
