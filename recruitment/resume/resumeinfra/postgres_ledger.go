package resumeinfra

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Abraxas-365/resumelens/pkg/errx"
	"github.com/Abraxas-365/resumelens/pkg/kernel"
	"github.com/Abraxas-365/resumelens/recruitment/resume"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const ledgerSchema = `
CREATE TABLE IF NOT EXISTS resume_reanalysis_requests (
	id            TEXT PRIMARY KEY,
	resume_id     TEXT NOT NULL,
	user_id       TEXT NOT NULL DEFAULT '',
	outcome       TEXT NOT NULL,
	error_message TEXT NOT NULL DEFAULT '',
	requested_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_reanalysis_resume_requested
	ON resume_reanalysis_requests (resume_id, requested_at DESC);
`

// PostgresLedger stores re-analysis attempts in Postgres.
type PostgresLedger struct {
	db *sqlx.DB
}

var _ resume.ReanalysisLedger = (*PostgresLedger)(nil)

func NewPostgresLedger(db *sqlx.DB) *PostgresLedger {
	return &PostgresLedger{db: db}
}

func (l *PostgresLedger) EnsureSchema(ctx context.Context) error {
	if _, err := l.db.ExecContext(ctx, ledgerSchema); err != nil {
		return fmt.Errorf("create reanalysis ledger schema: %w", err)
	}
	return nil
}

func (l *PostgresLedger) Record(ctx context.Context, rec *resume.ReanalysisRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	query := `
		INSERT INTO resume_reanalysis_requests (
			id, resume_id, user_id, outcome, error_message, requested_at
		) VALUES (
			:id, :resume_id, :user_id, :outcome, :error_message, :requested_at
		)`

	if _, err := l.db.NamedExecContext(ctx, query, rec); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return errx.Wrap(err, "reanalysis request already recorded", errx.TypeConflict).
				WithDetail("reanalysis_id", rec.ID)
		}
		return fmt.Errorf("record reanalysis for resume %s: %w", rec.ResumeID, err)
	}
	return nil
}

func (l *PostgresLedger) Last(ctx context.Context, id kernel.ResumeID) (*resume.ReanalysisRecord, error) {
	query := `
		SELECT id, resume_id, user_id, outcome, error_message, requested_at
		FROM resume_reanalysis_requests
		WHERE resume_id = $1
		ORDER BY requested_at DESC
		LIMIT 1`

	var rec resume.ReanalysisRecord
	if err := l.db.GetContext(ctx, &rec, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("load last reanalysis for resume %s: %w", id, err)
	}
	return &rec, nil
}
