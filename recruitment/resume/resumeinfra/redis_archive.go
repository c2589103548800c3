package resumeinfra

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Abraxas-365/resumelens/pkg/kernel"
	"github.com/Abraxas-365/resumelens/recruitment/resume"
	"github.com/redis/go-redis/v9"
)

const (
	archivePrefix     = "resumelens:payloads:"
	archiveMaxEntries = 20
	archiveTTL        = 7 * 24 * time.Hour
)

// ArchivedPayload is one kept backend response.
type ArchivedPayload struct {
	ResumeID kernel.ResumeID    `json:"resume_id"`
	Kind     resume.PayloadKind `json:"kind"`
	Reasons  []string           `json:"reasons"`
	Raw      json.RawMessage    `json:"raw,omitempty"`
	Text     string             `json:"text,omitempty"`
	KeptAt   time.Time          `json:"kept_at"`
}

func newArchivedPayload(id kernel.ResumeID, kind resume.PayloadKind, raw []byte, reasons []string, at time.Time) ArchivedPayload {
	p := ArchivedPayload{ResumeID: id, Kind: kind, Reasons: reasons, KeptAt: at}
	if json.Valid(raw) {
		p.Raw = append(json.RawMessage(nil), raw...)
	} else {
		p.Text = string(raw)
	}
	return p
}

// RedisPayloadArchive keeps the most recent anomalous payloads per resume
// in a capped Redis list.
type RedisPayloadArchive struct {
	client redis.Cmdable
	now    func() time.Time
}

var _ resume.PayloadArchive = (*RedisPayloadArchive)(nil)

func NewRedisPayloadArchive(client redis.Cmdable) *RedisPayloadArchive {
	return &RedisPayloadArchive{client: client, now: time.Now}
}

func archiveKey(id kernel.ResumeID, kind resume.PayloadKind) string {
	return archivePrefix + string(kind) + ":" + id.String()
}

func (a *RedisPayloadArchive) Keep(ctx context.Context, id kernel.ResumeID, kind resume.PayloadKind, raw []byte, reasons []string) error {
	data, err := json.Marshal(newArchivedPayload(id, kind, raw, reasons, a.now()))
	if err != nil {
		return fmt.Errorf("marshal archived payload for resume %s: %w", id, err)
	}

	key := archiveKey(id, kind)
	pipe := a.client.TxPipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, archiveMaxEntries-1)
	pipe.Expire(ctx, key, archiveTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("archive payload for resume %s: %w", id, err)
	}
	return nil
}

// Recent returns up to limit kept payloads, newest first.
func (a *RedisPayloadArchive) Recent(ctx context.Context, id kernel.ResumeID, kind resume.PayloadKind, limit int64) ([]ArchivedPayload, error) {
	if limit <= 0 {
		limit = archiveMaxEntries
	}
	items, err := a.client.LRange(ctx, archiveKey(id, kind), 0, limit-1).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("read archived payloads for resume %s: %w", id, err)
	}

	out := make([]ArchivedPayload, 0, len(items))
	for _, item := range items {
		var p ArchivedPayload
		if err := json.Unmarshal([]byte(item), &p); err != nil {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}
