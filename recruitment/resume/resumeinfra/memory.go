package resumeinfra

import (
	"context"
	"sync"
	"time"

	"github.com/Abraxas-365/resumelens/pkg/kernel"
	"github.com/Abraxas-365/resumelens/pkg/logx"
	"github.com/Abraxas-365/resumelens/recruitment/resume"
	"github.com/google/uuid"
)

// MemoryLedger keeps re-analysis records in process memory.
type MemoryLedger struct {
	mu      sync.RWMutex
	records map[kernel.ResumeID][]resume.ReanalysisRecord
}

var _ resume.ReanalysisLedger = (*MemoryLedger)(nil)

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{records: make(map[kernel.ResumeID][]resume.ReanalysisRecord)}
}

func (l *MemoryLedger) Record(_ context.Context, rec *resume.ReanalysisRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	l.mu.Lock()
	l.records[rec.ResumeID] = append(l.records[rec.ResumeID], *rec)
	l.mu.Unlock()
	return nil
}

func (l *MemoryLedger) Last(_ context.Context, id kernel.ResumeID) (*resume.ReanalysisRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	recs := l.records[id]
	if len(recs) == 0 {
		return nil, nil
	}
	last := recs[len(recs)-1]
	return &last, nil
}

// MemoryPayloadArchive keeps anomalous payloads in memory.
type MemoryPayloadArchive struct {
	mu    sync.Mutex
	items []ArchivedPayload
}

var _ resume.PayloadArchive = (*MemoryPayloadArchive)(nil)

func NewMemoryPayloadArchive() *MemoryPayloadArchive {
	return &MemoryPayloadArchive{}
}

func (a *MemoryPayloadArchive) Keep(_ context.Context, id kernel.ResumeID, kind resume.PayloadKind, raw []byte, reasons []string) error {
	a.mu.Lock()
	a.items = append(a.items, newArchivedPayload(id, kind, raw, reasons, time.Now()))
	if len(a.items) > archiveMaxEntries {
		a.items = a.items[len(a.items)-archiveMaxEntries:]
	}
	a.mu.Unlock()
	return nil
}

func (a *MemoryPayloadArchive) Items() []ArchivedPayload {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]ArchivedPayload(nil), a.items...)
}

// LogPayloadArchive only logs anomalies; used when no store is configured.
type LogPayloadArchive struct{}

func (LogPayloadArchive) Keep(_ context.Context, id kernel.ResumeID, kind resume.PayloadKind, raw []byte, reasons []string) error {
	logx.Warn("unexpected backend payload",
		"resume_id", id,
		"kind", kind,
		"reasons", reasons,
		"bytes", len(raw),
	)
	return nil
}
