package resumesrv

import (
	"context"
	"sync"
	"time"

	"github.com/Abraxas-365/resumelens/pkg/kernel"
	"github.com/Abraxas-365/resumelens/recruitment/resume"
)

// fakeGateway serves canned resumes and payloads and counts calls.
type fakeGateway struct {
	mu sync.Mutex

	resumes  map[kernel.ResumeID]resume.Resume
	analysis map[kernel.ResumeID][]byte
	jobs     map[kernel.ResumeID][]byte

	resumeErr    error
	analysisErr  error
	jobsErr      error
	reanalyzeErr error

	// block, blockAnalysis and blockJobs hold the matching call for an id
	// until its channel is closed
	block         map[kernel.ResumeID]chan struct{}
	blockAnalysis map[kernel.ResumeID]chan struct{}
	blockJobs     map[kernel.ResumeID]chan struct{}

	calls map[string]int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		resumes:  make(map[kernel.ResumeID]resume.Resume),
		analysis: make(map[kernel.ResumeID][]byte),
		jobs:     make(map[kernel.ResumeID][]byte),
		block:    make(map[kernel.ResumeID]chan struct{}),
		calls:    make(map[string]int),

		blockAnalysis: make(map[kernel.ResumeID]chan struct{}),
		blockJobs:     make(map[kernel.ResumeID]chan struct{}),
	}
}

func (g *fakeGateway) wait(ctx context.Context, blocks map[kernel.ResumeID]chan struct{}, id kernel.ResumeID) error {
	g.mu.Lock()
	ch := blocks[id]
	g.mu.Unlock()
	if ch == nil {
		return nil
	}
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *fakeGateway) put(id kernel.ResumeID, status resume.Status) {
	g.mu.Lock()
	defer g.mu.Unlock()
	r := resume.Resume{
		ID:         id,
		Title:      "CV " + id.String(),
		FileName:   "cv.pdf",
		FileType:   resume.FileTypePDF,
		UploadedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Skills:     []resume.SkillRef{{ID: "1", Name: "Python"}},
	}
	g.resumes[id] = r.WithStatus(status, time.Date(2025, 1, 1, 1, 0, 0, 0, time.UTC))
}

func (g *fakeGateway) count(name string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[name]
}

func (g *fakeGateway) hit(name string) {
	g.mu.Lock()
	g.calls[name]++
	g.mu.Unlock()
}

func (g *fakeGateway) ListResumes(context.Context) ([]resume.Resume, error) {
	g.hit("list")
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]resume.Resume, 0, len(g.resumes))
	for _, r := range g.resumes {
		out = append(out, r)
	}
	return out, nil
}

func (g *fakeGateway) GetResume(ctx context.Context, id kernel.ResumeID) (*resume.Resume, error) {
	g.hit("resume")
	if err := g.wait(ctx, g.block, id); err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.resumeErr != nil {
		return nil, g.resumeErr
	}
	r, ok := g.resumes[id]
	if !ok {
		return nil, resume.ErrResumeNotFound()
	}
	return &r, nil
}

func (g *fakeGateway) CreateResume(_ context.Context, req resume.UploadRequest, fileType resume.FileType) (*resume.Resume, error) {
	g.hit("create")
	id := kernel.ResumeID("new")
	g.put(id, resume.StatusPending)
	g.mu.Lock()
	defer g.mu.Unlock()
	r := g.resumes[id]
	r.Title = req.Title
	r.FileType = fileType
	g.resumes[id] = r
	return &r, nil
}

func (g *fakeGateway) DeleteResume(_ context.Context, id kernel.ResumeID) error {
	g.hit("delete")
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.resumes[id]; !ok {
		return resume.ErrResumeNotFound()
	}
	delete(g.resumes, id)
	return nil
}

func (g *fakeGateway) Reanalyze(_ context.Context, id kernel.ResumeID) error {
	g.hit("reanalyze")
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.reanalyzeErr != nil {
		return g.reanalyzeErr
	}
	r := g.resumes[id]
	g.resumes[id] = r.WithStatus(resume.StatusPending, time.Now())
	return nil
}

func (g *fakeGateway) GetAnalysis(ctx context.Context, id kernel.ResumeID) ([]byte, error) {
	g.hit("analysis")
	if err := g.wait(ctx, g.blockAnalysis, id); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.analysisErr != nil {
		return nil, g.analysisErr
	}
	return g.analysis[id], nil
}

func (g *fakeGateway) GetMatchingJobs(ctx context.Context, id kernel.ResumeID) ([]byte, error) {
	g.hit("jobs")
	if err := g.wait(ctx, g.blockJobs, id); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.jobsErr != nil {
		return nil, g.jobsErr
	}
	return g.jobs[id], nil
}

func (g *fakeGateway) DownloadURL(id kernel.ResumeID) string {
	return "http://backend/resumes/resumes/" + id.String() + "/download/"
}
