package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"github.com/Abraxas-365/resumelens/internal/config"
	"github.com/Abraxas-365/resumelens/internal/platform"
	"github.com/Abraxas-365/resumelens/pkg/iam/session"
	"github.com/Abraxas-365/resumelens/pkg/logx"
	"github.com/Abraxas-365/resumelens/recruitment/resume/resumesrv"
	"github.com/spf13/cobra"
)

type cli struct {
	configPath string

	cfg   *config.Config
	infra *platform.Infra
	ctrl  *resumesrv.Controller
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "resumectl",
		Short: "Inspect and re-analyze resumes",
		Long: `resumectl talks to the resume service with the token in API_TOKEN.

Example:
  resumectl list
  resumectl upload ./cv.pdf --title "Backend engineer"
  resumectl upload s3://bucket/cvs/cv.docx
  resumectl reanalyze 42 --watch`,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
		PersistentPostRun: func(*cobra.Command, []string) { c.close() },
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "YAML config file (default $RESUMELENS_CONFIG)")

	root.AddCommand(
		c.listCmd(),
		c.viewCmd(),
		c.reanalyzeCmd(),
		c.uploadCmd(),
		c.deleteCmd(),
		c.watchCmd(),
		c.downloadCmd(),
	)
	return root
}

func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if cfg.API.Token == "" {
		return errors.New("API_TOKEN is required")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	infra, err := platform.New(ctx, cfg)
	if err != nil {
		return err
	}

	manager := session.NewManager(session.WithRevoker(infra.Revoker))
	s, err := manager.Login(ctx, cfg.API.Token)
	if err != nil {
		infra.Close()
		return err
	}
	manager.OnInvalidate(func(session.Session) {
		logx.Warn("backend rejected API_TOKEN; it has been revoked locally")
	})

	c.cfg = cfg
	c.infra = infra
	c.ctrl = resumesrv.NewController(infra.Gateway.WithCredentials(manager),
		resumesrv.WithLedger(infra.Ledger),
		resumesrv.WithArchive(infra.Archive),
		resumesrv.WithUser(s.Identity.UserID),
	)
	return nil
}

func (c *cli) close() {
	if c.infra != nil {
		c.infra.Close()
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
