// Package resumesrv drives the resume analysis workflow: it loads resume
// metadata, gates the analysis and matching-job fetches on its status and
// keeps per-source state for the view model.
package resumesrv

import (
	"context"
	"sync"
	"time"

	"github.com/Abraxas-365/resumelens/pkg/errx"
	"github.com/Abraxas-365/resumelens/pkg/kernel"
	"github.com/Abraxas-365/resumelens/pkg/logx"
	"github.com/Abraxas-365/resumelens/recruitment/analysis"
	"github.com/Abraxas-365/resumelens/recruitment/matching"
	"github.com/Abraxas-365/resumelens/recruitment/resume"
	"github.com/Abraxas-365/resumelens/recruitment/viewmodel"
	"golang.org/x/sync/errgroup"
)

const (
	NoticeResumeNotFound = "Resume not found"
	NoticeJobsNotReady   = "Matching jobs are not available yet"
)

// ticket tags a load with the resume it was issued for. Results are
// committed only while the ticket is still current.
type ticket struct {
	id  kernel.ResumeID
	gen uint64
}

type Controller struct {
	gateway resume.Gateway
	ledger  resume.ReanalysisLedger
	archive resume.PayloadArchive
	user    kernel.UserID
	now     func() time.Time

	mu        sync.Mutex
	gen       uint64
	state     viewmodel.Input
	nextSub   int
	listeners map[int]func(viewmodel.ViewModel)
}

type Option func(*Controller)

func WithLedger(l resume.ReanalysisLedger) Option {
	return func(c *Controller) { c.ledger = l }
}

func WithArchive(a resume.PayloadArchive) Option {
	return func(c *Controller) { c.archive = a }
}

// WithUser attributes re-analysis records to a user.
func WithUser(id kernel.UserID) Option {
	return func(c *Controller) { c.user = id }
}

func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

func NewController(gateway resume.Gateway, opts ...Option) *Controller {
	c := &Controller{
		gateway:   gateway,
		now:       time.Now,
		listeners: make(map[int]func(viewmodel.ViewModel)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ============================================================================
// Loading
// ============================================================================

// Open selects a resume and loads it. Loads still running for a previously
// selected resume are discarded when they complete. The returned error is
// the metadata fetch error; it is also recorded on the resume source.
func (c *Controller) Open(ctx context.Context, id kernel.ResumeID) (viewmodel.ViewModel, error) {
	if id.IsEmpty() {
		return c.View(), resume.ErrNoResumeSelected()
	}

	c.mu.Lock()
	c.gen++
	t := ticket{id: id, gen: c.gen}
	c.state = viewmodel.Input{
		ResumeID:    id,
		Resume:      viewmodel.Source[resume.Resume]{}.Loading(),
		DownloadURL: c.gateway.DownloadURL(id),
	}
	c.mu.Unlock()
	c.notify()

	if c.ledger != nil {
		rec, err := c.ledger.Last(ctx, id)
		if err != nil {
			logx.Warn("reanalysis ledger lookup failed", "resume_id", id, "error", err)
		} else {
			c.commit(t, func(in *viewmodel.Input) { in.LastReanalysis = rec })
		}
	}

	err := c.load(ctx, t)
	return c.View(), err
}

// Refresh re-queries the selected resume. Analysis and matching jobs are
// fetched again only when the refreshed status is completed.
func (c *Controller) Refresh(ctx context.Context) (viewmodel.ViewModel, error) {
	c.mu.Lock()
	if c.state.ResumeID.IsEmpty() {
		c.mu.Unlock()
		return c.View(), resume.ErrNoResumeSelected()
	}
	c.gen++
	t := ticket{id: c.state.ResumeID, gen: c.gen}
	c.state.Resume = c.state.Resume.Loading()
	c.mu.Unlock()
	c.notify()

	err := c.load(ctx, t)
	return c.View(), err
}

func (c *Controller) load(ctx context.Context, t ticket) error {
	r, err := c.gateway.GetResume(ctx, t.id)

	var status resume.Status
	committed := c.commit(t, func(in *viewmodel.Input) {
		switch {
		case err == nil:
			c.observe(in.Resume.Data, r)
			in.Resume = in.Resume.Succeed(*r)
			status = r.Status
		case resume.IsNotYetAvailable(err):
			in.Resume = in.Resume.MarkUnavailable(NoticeResumeNotFound)
		default:
			in.Resume = in.Resume.Fail(err)
		}
		if err != nil || !status.ResultsAvailable() {
			settleLoading(in)
		}
	})
	if !committed {
		logx.Debug("discarding stale resume metadata", "resume_id", t.id)
		return nil
	}
	if err != nil {
		if resume.IsNotYetAvailable(err) {
			return nil
		}
		return err
	}

	if !status.ResultsAvailable() {
		logx.Debug("skipping result fetches", "resume_id", t.id, "status", status.String())
		return nil
	}
	c.loadResults(ctx, t)
	return nil
}

// loadResults fetches analysis and matching jobs concurrently. A failure of
// one never touches the other.
func (c *Controller) loadResults(ctx context.Context, t ticket) {
	if !c.commit(t, func(in *viewmodel.Input) {
		in.Analysis = in.Analysis.Loading()
		in.Jobs = in.Jobs.Loading()
	}) {
		return
	}

	var g errgroup.Group
	g.Go(func() error {
		raw, err := c.gateway.GetAnalysis(ctx, t.id)
		c.applyAnalysis(ctx, t, raw, err)
		return nil
	})
	g.Go(func() error {
		raw, err := c.gateway.GetMatchingJobs(ctx, t.id)
		c.applyJobs(ctx, t, raw, err)
		return nil
	})
	_ = g.Wait()
}

func (c *Controller) applyAnalysis(ctx context.Context, t ticket, raw []byte, err error) {
	if err != nil {
		c.commitOrDiscard(t, "analysis", func(in *viewmodel.Input) {
			if resume.IsNotYetAvailable(err) {
				in.Analysis = in.Analysis.MarkUnavailable(viewmodel.NoticeNotReady)
				return
			}
			in.Analysis = in.Analysis.Fail(err)
		})
		return
	}

	p := analysis.Decode(raw)
	c.commitOrDiscard(t, "analysis", func(in *viewmodel.Input) {
		switch p.Kind {
		case analysis.KindReady:
			in.Analysis = in.Analysis.Succeed(p)
		case analysis.KindNotReady:
			in.Analysis = in.Analysis.MarkUnavailable(viewmodel.NoticeNotReady)
		default:
			in.Analysis = in.Analysis.MarkUnavailable(viewmodel.NoticeUnreadable)
		}
	})

	reasons := append([]string{}, p.Problems...)
	if p.Kind == analysis.KindMalformed || len(reasons) > 0 {
		reasons = append(reasons, analysis.Diagnose(raw)...)
		if p.Kind == analysis.KindMalformed {
			reasons = append([]string{"malformed analysis payload"}, reasons...)
		}
		c.keep(ctx, t.id, resume.PayloadAnalysis, raw, reasons)
	}
}

func (c *Controller) applyJobs(ctx context.Context, t ticket, raw []byte, err error) {
	if err != nil {
		c.commitOrDiscard(t, "matching jobs", func(in *viewmodel.Input) {
			if resume.IsNotYetAvailable(err) {
				in.Jobs = in.Jobs.MarkUnavailable(NoticeJobsNotReady)
				return
			}
			in.Jobs = in.Jobs.Fail(err)
		})
		return
	}

	res := matching.Normalize(raw)
	c.commitOrDiscard(t, "matching jobs", func(in *viewmodel.Input) {
		in.Jobs = in.Jobs.Succeed(res)
	})

	if anomalies := res.Anomalies(); len(anomalies) > 0 {
		c.keep(ctx, t.id, resume.PayloadMatchingJobs, raw, anomalies)
	}
}

// settleLoading ends result loads superseded by a load that will not
// fetch results.
func settleLoading(in *viewmodel.Input) {
	if in.Analysis.IsLoading() {
		in.Analysis = in.Analysis.MarkUnavailable(viewmodel.NoticeNotReady)
	}
	if in.Jobs.IsLoading() {
		in.Jobs = in.Jobs.MarkUnavailable(NoticeJobsNotReady)
	}
}

// observe logs how the status moved between two metadata loads.
func (c *Controller) observe(prev, next *resume.Resume) {
	if err := next.CheckInvariants(); err != nil {
		logx.Warn("resume metadata is inconsistent", "resume_id", next.ID, "error", err)
	}
	if prev == nil || prev.ID != next.ID || prev.Status == next.Status {
		return
	}

	path, ok := resume.Observe(prev.Status, next.Status)
	if !ok {
		logx.Warn("unexpected status change",
			"resume_id", next.ID,
			"from", prev.Status.String(),
			"to", next.Status.String(),
		)
		return
	}
	for _, tr := range path {
		logx.Info("status changed",
			"resume_id", next.ID,
			"from", tr.From.String(),
			"to", tr.To.String(),
			"effect", tr.Effect,
		)
		if tr.Effect == resume.EffectSurfaceFailure && next.FailureReason != "" {
			logx.Warn("analysis failed", "resume_id", next.ID, "reason", next.FailureReason)
		}
	}
}

func (c *Controller) keep(ctx context.Context, id kernel.ResumeID, kind resume.PayloadKind, raw []byte, reasons []string) {
	logx.Warn("unexpected backend payload", "resume_id", id, "kind", kind, "reasons", reasons)
	if c.archive == nil {
		return
	}
	if err := c.archive.Keep(ctx, id, kind, raw, reasons); err != nil {
		logx.Warn("payload archive failed", "resume_id", id, "kind", kind, "error", err)
	}
}

// ============================================================================
// Actions
// ============================================================================

// Reanalyze asks the backend to analyze the selected resume again. It is
// rejected without a request while the resume is pending or processing or
// while a previous trigger is still in flight. On acceptance the status
// moves to pending optimistically, previous results stay visible as stale
// and the metadata is refetched.
func (c *Controller) Reanalyze(ctx context.Context) (viewmodel.ViewModel, error) {
	c.mu.Lock()
	id := c.state.ResumeID
	if id.IsEmpty() {
		c.mu.Unlock()
		return c.View(), resume.ErrNoResumeSelected()
	}

	var tr resume.Transition
	var err error
	switch cur := c.state.Resume.Data; {
	case cur == nil:
		err = resume.ErrReanalyzeNotAllowed().WithDetail("reason", "status unknown")
	case c.state.Reanalyze.InFlight:
		err = resume.ErrReanalyzeNotAllowed().WithDetail("reason", "request in flight")
	default:
		tr, err = resume.Next(cur.Status, resume.TriggerReanalyze)
	}
	if err != nil {
		c.state.Reanalyze = viewmodel.Action{Error: viewmodel.ProblemFrom(err)}
		c.mu.Unlock()
		c.notify()
		logx.Debug("reanalyze rejected", "resume_id", id, "error", err)
		return c.View(), err
	}

	c.state.Reanalyze = viewmodel.Action{InFlight: true}
	c.mu.Unlock()
	c.notify()

	sendErr := c.gateway.Reanalyze(ctx, id)
	rec := c.record(ctx, id, sendErr)

	// a refresh may have started meanwhile; only the selection matters here
	committed := c.commitSelected(id, func(in *viewmodel.Input) {
		in.LastReanalysis = rec
		if sendErr != nil {
			in.Reanalyze = viewmodel.Action{Error: viewmodel.ProblemFrom(sendErr)}
			return
		}

		in.Reanalyze = viewmodel.Action{Notice: viewmodel.NoticeReanalyzing}
		if in.Resume.Data != nil {
			in.Resume = in.Resume.Succeed(in.Resume.Data.WithStatus(tr.To, c.now()))
		}
		in.Analysis = in.Analysis.Invalidate()
		in.Jobs = in.Jobs.Invalidate()
	})
	if sendErr != nil {
		return c.View(), sendErr
	}
	if !committed {
		return c.View(), nil
	}

	logx.Info("reanalysis requested", "resume_id", id, "from", tr.From.String(), "to", tr.To.String())
	if tr.Effect == resume.EffectInvalidateAndRefresh {
		return c.Refresh(ctx)
	}
	return c.View(), nil
}

func (c *Controller) record(ctx context.Context, id kernel.ResumeID, sendErr error) *resume.ReanalysisRecord {
	rec := &resume.ReanalysisRecord{
		ResumeID:    id,
		UserID:      c.user,
		Outcome:     resume.OutcomeAccepted,
		RequestedAt: c.now(),
	}
	if sendErr != nil {
		rec.Error = sendErr.Error()
		rec.Outcome = resume.OutcomeRejected
		if errx.Is(sendErr, resume.CodeGatewayUnavailable) {
			rec.Outcome = resume.OutcomeFailed
		}
	}

	if c.ledger != nil {
		if err := c.ledger.Record(ctx, rec); err != nil {
			logx.Warn("reanalysis ledger write failed", "resume_id", id, "error", err)
		}
	}
	return rec
}

// Upload validates and creates a resume, then selects it.
func (c *Controller) Upload(ctx context.Context, req resume.UploadRequest) (*resume.Resume, error) {
	fileType, err := req.Validate()
	if err != nil {
		return nil, err
	}

	created, err := c.gateway.CreateResume(ctx, req, fileType)
	if err != nil {
		return nil, err
	}

	tr, err := resume.Initial(resume.TriggerUploaded)
	if err != nil {
		return nil, err
	}
	logx.Info("resume uploaded", "resume_id", created.ID, "file_type", fileType, "status", tr.To.String())

	if tr.Effect == resume.EffectScheduleRefresh {
		if _, err := c.Open(ctx, created.ID); err != nil {
			logx.Warn("refresh after upload failed", "resume_id", created.ID, "error", err)
		}
	}
	return created, nil
}

// Delete removes a resume. Deleting the selected resume clears the view.
func (c *Controller) Delete(ctx context.Context, id kernel.ResumeID) error {
	if err := c.gateway.DeleteResume(ctx, id); err != nil {
		return err
	}

	c.mu.Lock()
	cleared := c.state.ResumeID == id
	if cleared {
		c.gen++
		c.state = viewmodel.Input{}
	}
	c.mu.Unlock()

	if cleared {
		c.notify()
	}
	logx.Info("resume deleted", "resume_id", id)
	return nil
}

func (c *Controller) List(ctx context.Context) ([]resume.Summary, error) {
	resumes, err := c.gateway.ListResumes(ctx)
	if err != nil {
		return nil, err
	}
	return resume.ToSummaries(resumes), nil
}

func (c *Controller) DownloadURL(id kernel.ResumeID) string {
	return c.gateway.DownloadURL(id)
}

// ============================================================================
// State
// ============================================================================

func (c *Controller) View() viewmodel.ViewModel {
	c.mu.Lock()
	defer c.mu.Unlock()
	return viewmodel.Assemble(c.state)
}

// Subscribe registers fn to receive the view model after every change. The
// returned func removes it.
func (c *Controller) Subscribe(fn func(viewmodel.ViewModel)) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.listeners[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

// commit applies fn if t is still current.
func (c *Controller) commit(t ticket, fn func(*viewmodel.Input)) bool {
	return c.commitIf(func() bool { return c.gen == t.gen && c.state.ResumeID == t.id }, fn)
}

// commitSelected applies fn if id is still the selected resume.
func (c *Controller) commitSelected(id kernel.ResumeID, fn func(*viewmodel.Input)) bool {
	return c.commitIf(func() bool { return c.state.ResumeID == id }, fn)
}

func (c *Controller) commitIf(current func() bool, fn func(*viewmodel.Input)) bool {
	c.mu.Lock()
	if !current() {
		c.mu.Unlock()
		return false
	}
	fn(&c.state)
	c.mu.Unlock()

	c.notify()
	return true
}

func (c *Controller) commitOrDiscard(t ticket, what string, fn func(*viewmodel.Input)) {
	if !c.commit(t, fn) {
		logx.Debug("discarding stale result", "resume_id", t.id, "source", what)
	}
}

func (c *Controller) notify() {
	c.mu.Lock()
	if len(c.listeners) == 0 {
		c.mu.Unlock()
		return
	}
	vm := viewmodel.Assemble(c.state)
	fns := make([]func(viewmodel.ViewModel), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(vm)
	}
}
