package resumeapi

import (
	"context"

	"github.com/Abraxas-365/resumelens/pkg/errx"
	"github.com/Abraxas-365/resumelens/pkg/iam/session"
	"github.com/Abraxas-365/resumelens/pkg/iam/session/sessionapi"
	"github.com/Abraxas-365/resumelens/pkg/kernel"
	"github.com/Abraxas-365/resumelens/recruitment/resume"
	"github.com/Abraxas-365/resumelens/recruitment/resume/resumesrv"
	"github.com/gofiber/fiber/v2"
)

// Credentials is the per-request bearer credential handed to the backend.
type Credentials interface {
	Token() (string, error)
	Invalidate(ctx context.Context) error
}

// ControllerFactory builds a controller acting on behalf of one request.
type ControllerFactory func(creds Credentials, user kernel.UserID) *resumesrv.Controller

type ResumeHandlers struct {
	controllers ControllerFactory
	revoker     session.Revoker
}

func NewResumeHandlers(controllers ControllerFactory, revoker session.Revoker) *ResumeHandlers {
	return &ResumeHandlers{controllers: controllers, revoker: revoker}
}

func (h *ResumeHandlers) RegisterRoutes(app *fiber.App) {
	resumes := app.Group("/api/v1/resumes",
		sessionapi.Middleware(h.revoker, session.RoleJobseeker, session.RoleAdmin),
	)

	resumes.Get("/", h.ListResumes)
	resumes.Post("/", h.UploadResume)
	resumes.Get("/:id/view", h.GetView)
	resumes.Post("/:id/reanalyze", h.Reanalyze)
	resumes.Get("/:id/download", h.Download)
	resumes.Delete("/:id", h.DeleteResume)
}

func (h *ResumeHandlers) controller(c *fiber.Ctx) (*resumesrv.Controller, error) {
	manager, ok := sessionapi.GetManager(c)
	if !ok {
		return nil, session.ErrNoSession()
	}
	var user kernel.UserID
	if s, ok := sessionapi.GetSession(c); ok {
		user = s.Identity.UserID
	}
	return h.controllers(manager, user), nil
}

func resumeID(c *fiber.Ctx) (kernel.ResumeID, error) {
	id := kernel.NewResumeID(c.Params("id"))
	if id.IsEmpty() {
		return "", resume.ErrNoResumeSelected()
	}
	return id, nil
}

// ListResumes returns the dashboard rows, newest first
// GET /api/v1/resumes
func (h *ResumeHandlers) ListResumes(c *fiber.Ctx) error {
	ctrl, err := h.controller(c)
	if err != nil {
		return err
	}

	summaries, err := ctrl.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"resumes": summaries,
		"count":   len(summaries),
	})
}

// UploadResume forwards a multipart upload to the backend
// POST /api/v1/resumes
func (h *ResumeHandlers) UploadResume(c *fiber.Ctx) error {
	ctrl, err := h.controller(c)
	if err != nil {
		return err
	}

	file, err := c.FormFile("file")
	if err != nil {
		return resume.ErrInvalidUpload().WithDetail("reason", "file is required")
	}
	if file.Size > resume.MaxUploadBytes {
		return resume.ErrFileTooLarge().WithDetails(map[string]any{
			"size":     file.Size,
			"max_size": resume.MaxUploadBytes,
		})
	}

	f, err := file.Open()
	if err != nil {
		return resume.ErrInvalidUpload().WithCause(err)
	}
	defer f.Close()

	created, err := ctrl.Upload(c.UserContext(), resume.UploadRequest{
		Title:    c.FormValue("title"),
		FileName: file.Filename,
		Size:     file.Size,
		Content:  f,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(resume.ToSummary(*created))
}

// GetView returns the assembled view model of one resume. Per-source
// failures are part of the body; only authentication failures fail the
// request.
// GET /api/v1/resumes/:id/view
func (h *ResumeHandlers) GetView(c *fiber.Ctx) error {
	ctrl, err := h.controller(c)
	if err != nil {
		return err
	}
	id, err := resumeID(c)
	if err != nil {
		return err
	}

	vm, err := ctrl.Open(c.UserContext(), id)
	if err != nil && isAuthFailure(err) {
		return err
	}
	return c.JSON(vm)
}

// Reanalyze triggers a new analysis and returns the refreshed view
// POST /api/v1/resumes/:id/reanalyze
func (h *ResumeHandlers) Reanalyze(c *fiber.Ctx) error {
	ctrl, err := h.controller(c)
	if err != nil {
		return err
	}
	id, err := resumeID(c)
	if err != nil {
		return err
	}

	if _, err := ctrl.Open(c.UserContext(), id); err != nil {
		return err
	}

	vm, err := ctrl.Reanalyze(c.UserContext())
	if err != nil {
		if isAuthFailure(err) {
			return err
		}
		return c.Status(errx.StatusOf(err)).JSON(vm)
	}
	return c.Status(fiber.StatusAccepted).JSON(vm)
}

// Download redirects to the backend file URL
// GET /api/v1/resumes/:id/download
func (h *ResumeHandlers) Download(c *fiber.Ctx) error {
	ctrl, err := h.controller(c)
	if err != nil {
		return err
	}
	id, err := resumeID(c)
	if err != nil {
		return err
	}
	return c.Redirect(ctrl.DownloadURL(id), fiber.StatusFound)
}

// DeleteResume removes a resume
// DELETE /api/v1/resumes/:id
func (h *ResumeHandlers) DeleteResume(c *fiber.Ctx) error {
	ctrl, err := h.controller(c)
	if err != nil {
		return err
	}
	id, err := resumeID(c)
	if err != nil {
		return err
	}

	if err := ctrl.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func isAuthFailure(err error) bool {
	return errx.IsType(err, errx.TypeAuthentication) || errx.IsType(err, errx.TypeAuthorization)
}
