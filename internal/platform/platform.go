// Package platform opens the shared infrastructure used by the server and
// the CLI: backend gateway, Redis, Postgres and S3.
package platform

import (
	"context"
	"time"

	"github.com/Abraxas-365/resumelens/internal/config"
	"github.com/Abraxas-365/resumelens/pkg/fsx"
	"github.com/Abraxas-365/resumelens/pkg/fsx/fsxlocal"
	"github.com/Abraxas-365/resumelens/pkg/fsx/fsxs3"
	"github.com/Abraxas-365/resumelens/pkg/iam/session"
	"github.com/Abraxas-365/resumelens/pkg/iam/session/sessioninfra"
	"github.com/Abraxas-365/resumelens/pkg/logx"
	"github.com/Abraxas-365/resumelens/recruitment/resume"
	"github.com/Abraxas-365/resumelens/recruitment/resume/resumeinfra"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

// Infra holds the process-wide dependencies. Redis and DB are nil when not
// configured; the ports then fall back to in-process implementations.
type Infra struct {
	Config *config.Config

	DB    *sqlx.DB
	Redis *redis.Client

	Gateway *resumeinfra.HTTPGateway
	Ledger  resume.ReanalysisLedger
	Archive resume.PayloadArchive
	Revoker session.Revoker
	Files   fsx.FileReader
}

func New(ctx context.Context, cfg *config.Config) (*Infra, error) {
	logx.SetMode(cfg.Log.Mode)
	logx.SetLevel(logx.ParseLevel(cfg.Log.Level))

	in := &Infra{Config: cfg}

	gw, err := resumeinfra.NewHTTPGateway(resumeinfra.GatewayConfig{
		BaseURL:      cfg.API.BaseURL,
		Timeout:      cfg.API.Timeout,
		TokenScheme:  cfg.API.TokenScheme,
		MaxBodyBytes: cfg.API.MaxBodyBytes,
	}, nil)
	if err != nil {
		return nil, err
	}
	in.Gateway = gw

	in.initRedis(ctx)
	in.initPostgres(ctx)
	in.initFiles(ctx)
	return in, nil
}

func (in *Infra) initRedis(ctx context.Context) {
	in.Archive = resumeinfra.LogPayloadArchive{}
	in.Revoker = session.NewMemoryRevoker()

	rc := in.Config.Redis
	if !rc.Enabled() {
		logx.Info("redis not configured, using in-process revocation and payload log")
		return
	}

	client := redis.NewClient(&redis.Options{
		Addr:     rc.Addr,
		Password: rc.Password,
		DB:       rc.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		logx.Warnf("Failed to connect to Redis: %v", err)
	}

	in.Redis = client
	in.Archive = resumeinfra.NewRedisPayloadArchive(client)
	in.Revoker = sessioninfra.NewRedisRevoker(client)
}

func (in *Infra) initPostgres(ctx context.Context) {
	in.Ledger = resumeinfra.NewMemoryLedger()

	pc := in.Config.Postgres
	if !pc.Enabled() {
		logx.Info("postgres not configured, reanalysis ledger kept in memory")
		return
	}

	db, err := sqlx.ConnectContext(ctx, "postgres", pc.DSN())
	if err != nil {
		logx.Warnf("Failed to connect to database: %v", err)
		return
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	ledger := resumeinfra.NewPostgresLedger(db)
	if err := ledger.EnsureSchema(ctx); err != nil {
		logx.Warnf("reanalysis ledger unavailable: %v", err)
		_ = db.Close()
		return
	}

	in.DB = db
	in.Ledger = ledger
}

func (in *Infra) initFiles(ctx context.Context) {
	var s3 fsx.FileReader
	if in.Config.AWS.Region != "" {
		r, err := fsxs3.NewFromRegion(ctx, in.Config.AWS.Region)
		if err != nil {
			logx.Warnf("S3 uploads disabled: %v", err)
		} else {
			s3 = r
		}
	}
	in.Files = fsx.NewRouter(fsxlocal.NewReader(), s3)
}

// Close releases the connections opened by New.
func (in *Infra) Close() {
	if in.DB != nil {
		_ = in.DB.Close()
	}
	if in.Redis != nil {
		_ = in.Redis.Close()
	}
	logx.Sync()
}
