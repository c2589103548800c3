package resume

import (
	"context"

	"github.com/Abraxas-365/resumelens/pkg/kernel"
)

// Gateway is the backend resume service. Analysis and matching-job payloads
// are returned raw; their shape is resolved by the analysis and matching
// normalizers.
type Gateway interface {
	// ListResumes returns the resumes of the authenticated user
	ListResumes(ctx context.Context) ([]Resume, error)

	// GetResume returns resume metadata, ErrResumeNotFound when absent
	GetResume(ctx context.Context, id kernel.ResumeID) (*Resume, error)

	// CreateResume uploads a document as multipart form data
	CreateResume(ctx context.Context, req UploadRequest, fileType FileType) (*Resume, error)

	DeleteResume(ctx context.Context, id kernel.ResumeID) error

	// Reanalyze triggers a new analysis run; it does not wait for it
	Reanalyze(ctx context.Context, id kernel.ResumeID) error

	GetAnalysis(ctx context.Context, id kernel.ResumeID) ([]byte, error)
	GetMatchingJobs(ctx context.Context, id kernel.ResumeID) ([]byte, error)

	// DownloadURL is opened by direct navigation, never fetched by the controller
	DownloadURL(id kernel.ResumeID) string
}

// ReanalysisLedger records re-analysis attempts.
type ReanalysisLedger interface {
	Record(ctx context.Context, rec *ReanalysisRecord) error

	// Last returns the most recent attempt, nil when there is none
	Last(ctx context.Context, id kernel.ResumeID) (*ReanalysisRecord, error)
}

type PayloadKind string

const (
	PayloadAnalysis     PayloadKind = "analysis"
	PayloadMatchingJobs PayloadKind = "matching_jobs"
)

// PayloadArchive keeps raw backend payloads that did not normalize cleanly.
type PayloadArchive interface {
	Keep(ctx context.Context, id kernel.ResumeID, kind PayloadKind, raw []byte, reasons []string) error
}
