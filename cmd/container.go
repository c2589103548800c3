package main

import (
	"context"

	"github.com/Abraxas-365/resumelens/internal/config"
	"github.com/Abraxas-365/resumelens/internal/platform"
	"github.com/Abraxas-365/resumelens/pkg/kernel"
	"github.com/Abraxas-365/resumelens/recruitment/resume/resumeapi"
	"github.com/Abraxas-365/resumelens/recruitment/resume/resumesrv"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config

	// Infrastructure
	Infra *platform.Infra

	// API Handlers
	ResumeHandlers *resumeapi.ResumeHandlers
}

// NewContainer initializes the dependency injection container
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	infra, err := platform.New(ctx, cfg)
	if err != nil {
		return nil, err
	}

	c := &Container{Config: cfg, Infra: infra}
	c.initHandlers()
	return c, nil
}

func (c *Container) initHandlers() {
	gw := c.Infra.Gateway
	ledger := c.Infra.Ledger
	archive := c.Infra.Archive

	// Each request gets its own controller so that page state never leaks
	// between sessions; the backend credential is the request's session.
	controllers := func(creds resumeapi.Credentials, user kernel.UserID) *resumesrv.Controller {
		return resumesrv.NewController(gw.WithCredentials(creds),
			resumesrv.WithLedger(ledger),
			resumesrv.WithArchive(archive),
			resumesrv.WithUser(user),
		)
	}

	c.ResumeHandlers = resumeapi.NewResumeHandlers(controllers, c.Infra.Revoker)
}

func (c *Container) Close() {
	c.Infra.Close()
}
