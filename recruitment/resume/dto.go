package resume

import (
	"io"
	"sort"
	"strings"
	"time"

	"github.com/Abraxas-365/resumelens/pkg/kernel"
)

// MaxUploadBytes is the largest document the backend accepts.
const MaxUploadBytes = 5 << 20

// UploadRequest - create a resume from a document. Size is -1 when unknown.
type UploadRequest struct {
	Title    string
	FileName string
	Size     int64
	Content  io.Reader
}

// Validate fills the title from the file name and classifies the file.
func (r *UploadRequest) Validate() (FileType, error) {
	if r.Content == nil || strings.TrimSpace(r.FileName) == "" {
		return FileTypeUnknown, ErrInvalidUpload().WithDetail("reason", "file is required")
	}

	fileType := ClassifyFile(r.FileName)
	if fileType == FileTypeUnknown {
		return fileType, ErrUnsupportedFileType().WithDetails(map[string]any{
			"file_name":       r.FileName,
			"supported_types": []FileType{FileTypePDF, FileTypeDOC, FileTypeDOCX},
		})
	}

	if r.Size > MaxUploadBytes {
		return fileType, ErrFileTooLarge().WithDetails(map[string]any{
			"size":     r.Size,
			"max_size": MaxUploadBytes,
		})
	}

	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		r.Title = r.FileName
	}
	return fileType, nil
}

// Summary is one dashboard row.
type Summary struct {
	ID           kernel.ResumeID `json:"id"`
	Title        string          `json:"title"`
	FileName     string          `json:"file_name"`
	FileType     FileType        `json:"file_type"`
	UploadedAt   time.Time       `json:"uploaded_at"`
	AnalyzedAt   *time.Time      `json:"analyzed_at,omitempty"`
	Status       StatusInfo      `json:"status"`
	CanReanalyze bool            `json:"can_reanalyze"`
}

func ToSummary(r Resume) Summary {
	return Summary{
		ID:           r.ID,
		Title:        r.Title,
		FileName:     r.FileName,
		FileType:     r.FileType,
		UploadedAt:   r.UploadedAt,
		AnalyzedAt:   r.AnalyzedAt,
		Status:       r.Status.Info(),
		CanReanalyze: r.Status.CanReanalyze(),
	}
}

// ToSummaries orders resumes newest first.
func ToSummaries(resumes []Resume) []Summary {
	out := make([]Summary, 0, len(resumes))
	for _, r := range resumes {
		out = append(out, ToSummary(r))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UploadedAt.After(out[j].UploadedAt)
	})
	return out
}

type ReanalysisOutcome string

const (
	OutcomeAccepted ReanalysisOutcome = "accepted"
	OutcomeRejected ReanalysisOutcome = "rejected"
	OutcomeFailed   ReanalysisOutcome = "failed"
)

// ReanalysisRecord is one user-triggered re-analysis attempt.
type ReanalysisRecord struct {
	ID          string            `db:"id" json:"id"`
	ResumeID    kernel.ResumeID   `db:"resume_id" json:"resume_id"`
	UserID      kernel.UserID     `db:"user_id" json:"user_id,omitempty"`
	Outcome     ReanalysisOutcome `db:"outcome" json:"outcome"`
	Error       string            `db:"error_message" json:"error,omitempty"`
	RequestedAt time.Time         `db:"requested_at" json:"requested_at"`
}
