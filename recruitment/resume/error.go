package resume

import (
	"net/http"

	"github.com/Abraxas-365/resumelens/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("RESUME")

// Error codes - Resume workflow
var (
	CodeResumeNotFound      = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Resume not found")
	CodeInvalidTransition   = ErrRegistry.Register("INVALID_TRANSITION", errx.TypeConflict, http.StatusConflict, "Status transition is not allowed")
	CodeReanalyzeNotAllowed = ErrRegistry.Register("REANALYZE_NOT_ALLOWED", errx.TypeBusiness, http.StatusConflict, "Resume is already being analyzed")
	CodeNoResumeSelected    = ErrRegistry.Register("NO_RESUME_SELECTED", errx.TypeValidation, http.StatusBadRequest, "No resume is open")
	CodeInconsistentState   = ErrRegistry.Register("INCONSISTENT_STATE", errx.TypeInternal, http.StatusInternalServerError, "Resume status and analysis timestamp disagree")
)

// Error codes - Upload
var (
	CodeInvalidUpload       = ErrRegistry.Register("INVALID_UPLOAD", errx.TypeValidation, http.StatusBadRequest, "Invalid upload")
	CodeUnsupportedFileType = ErrRegistry.Register("UNSUPPORTED_FILE_TYPE", errx.TypeValidation, http.StatusBadRequest, "Unsupported file type")
	CodeFileTooLarge        = ErrRegistry.Register("FILE_TOO_LARGE", errx.TypeValidation, http.StatusRequestEntityTooLarge, "File is too large")
)

// Error codes - Backend gateway
var (
	CodeGatewayUnavailable = ErrRegistry.Register("GATEWAY_UNAVAILABLE", errx.TypeExternal, http.StatusBadGateway, "Resume service is unreachable")
	CodeUpstreamStatus     = ErrRegistry.Register("UPSTREAM_STATUS", errx.TypeExternal, http.StatusBadGateway, "Resume service returned an error")
	CodeInvalidPayload     = ErrRegistry.Register("INVALID_PAYLOAD", errx.TypeExternal, http.StatusBadGateway, "Resume service returned an unreadable response")
	CodeUnauthenticated    = ErrRegistry.Register("UNAUTHENTICATED", errx.TypeAuthentication, http.StatusUnauthorized, "Session is no longer valid")
	CodeForbidden          = ErrRegistry.Register("FORBIDDEN", errx.TypeAuthorization, http.StatusForbidden, "Access to the resume is forbidden")
)

func ErrResumeNotFound() *errx.Error {
	return ErrRegistry.New(CodeResumeNotFound)
}

func ErrInvalidTransition() *errx.Error {
	return ErrRegistry.New(CodeInvalidTransition)
}

func ErrReanalyzeNotAllowed() *errx.Error {
	return ErrRegistry.New(CodeReanalyzeNotAllowed)
}

func ErrNoResumeSelected() *errx.Error {
	return ErrRegistry.New(CodeNoResumeSelected)
}

func ErrInconsistentState() *errx.Error {
	return ErrRegistry.New(CodeInconsistentState)
}

func ErrInvalidUpload() *errx.Error {
	return ErrRegistry.New(CodeInvalidUpload)
}

func ErrUnsupportedFileType() *errx.Error {
	return ErrRegistry.New(CodeUnsupportedFileType)
}

func ErrFileTooLarge() *errx.Error {
	return ErrRegistry.New(CodeFileTooLarge)
}

func ErrGatewayUnavailable(cause error) *errx.Error {
	return ErrRegistry.NewWithCause(CodeGatewayUnavailable, cause)
}

func ErrUpstreamStatus(status int) *errx.Error {
	return ErrRegistry.New(CodeUpstreamStatus).WithDetail("status", status)
}

func ErrInvalidPayload(cause error) *errx.Error {
	return ErrRegistry.NewWithCause(CodeInvalidPayload, cause)
}

func ErrUnauthenticated() *errx.Error {
	return ErrRegistry.New(CodeUnauthenticated)
}

func ErrForbidden() *errx.Error {
	return ErrRegistry.New(CodeForbidden)
}

// IsNotYetAvailable reports errors that render as an informational state
// rather than an error banner.
func IsNotYetAvailable(err error) bool {
	return errx.Is(err, CodeResumeNotFound)
}
