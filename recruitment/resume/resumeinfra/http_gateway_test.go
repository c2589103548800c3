package resumeinfra

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Abraxas-365/resumelens/pkg/errx"
	"github.com/Abraxas-365/resumelens/recruitment/resume"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCreds struct {
	token       string
	invalidated atomic.Int32
}

func (c *fakeCreds) Token() (string, error) { return c.token, nil }

func (c *fakeCreds) Invalidate(context.Context) error {
	c.invalidated.Add(1)
	return nil
}

func newTestGateway(t *testing.T, h http.HandlerFunc) (*HTTPGateway, *fakeCreds) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	creds := &fakeCreds{token: "tok"}
	g, err := NewHTTPGatewayWithClient(GatewayConfig{BaseURL: srv.URL + "/", Timeout: 2 * time.Second}, creds, srv.Client())
	require.NoError(t, err)
	return g, creds
}

const detailJSON = `{
	"id": 42,
	"title": "Backend CV",
	"file": "/media/resumes/cv.pdf",
	"file_type": "pdf",
	"status": "completed",
	"mongodb_id": "abc",
	"skills": [{"id": 1, "name": "Python"}, {"id": "2", "name": "Docker"}],
	"created_at": "2025-03-01T10:00:00Z",
	"updated_at": "2025-03-01T10:05:00.123456Z"
}`

func TestHTTPGateway_GetResume(t *testing.T) {
	g, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/resumes/resumes/42/", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		_, _ = io.WriteString(w, detailJSON)
	})

	r, err := g.GetResume(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, "42", r.ID.String())
	assert.Equal(t, "cv.pdf", r.FileName)
	assert.Equal(t, resume.FileTypePDF, r.FileType)
	assert.Equal(t, resume.StatusCompleted, r.Status)
	assert.True(t, r.HasAnalysis)
	require.NotNil(t, r.AnalyzedAt)
	assert.Equal(t, []string{"Python", "Docker"}, r.SkillNames())
	assert.NoError(t, r.CheckInvariants())
}

func TestHTTPGateway_ListResumes(t *testing.T) {
	g, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/resumes/resumes/", r.URL.Path)
		_, _ = io.WriteString(w, `[
			{"id": 1, "title": "a", "file_name": "a.docx", "status": "pending", "created_at": "2025-01-01T00:00:00Z"},
			{"id": 2, "title": "b", "status": "bogus"},
			{"id": 3, "title": "c", "file_name": "c.pdf", "status": "analyzing"}
		]`)
	})

	list, err := g.ListResumes(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, resume.FileTypeDOCX, list[0].FileType)
	assert.Nil(t, list[0].AnalyzedAt)
	assert.Equal(t, resume.StatusProcessing, list[1].Status)
}

func TestHTTPGateway_ListResumesPaginated(t *testing.T) {
	g, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"count": 1, "results": [{"id": 9, "title": "x", "status": "failed", "error_message": "bad file"}]}`)
	})

	list, err := g.ListResumes(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "bad file", list[0].FailureReason)
	assert.NotNil(t, list[0].AnalyzedAt)
}

func TestHTTPGateway_StatusMapping(t *testing.T) {
	cases := []struct {
		status int
		code   errx.Code
	}{
		{http.StatusNotFound, resume.CodeResumeNotFound},
		{http.StatusForbidden, resume.CodeForbidden},
		{http.StatusUnauthorized, resume.CodeUnauthenticated},
		{http.StatusBadGateway, resume.CodeUpstreamStatus},
	}

	for _, tc := range cases {
		g, creds := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			_, _ = io.WriteString(w, `{"error": "nope"}`)
		})

		_, err := g.GetAnalysis(context.Background(), "1")
		require.Error(t, err)
		assert.True(t, errx.Is(err, tc.code), "status %d gave %v", tc.status, err)

		wantInvalidations := int32(0)
		if tc.status == http.StatusUnauthorized {
			wantInvalidations = 1
		}
		assert.Equal(t, wantInvalidations, creds.invalidated.Load())
	}
}

func TestHTTPGateway_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	g, err := NewHTTPGateway(GatewayConfig{BaseURL: url, Timeout: time.Second}, nil)
	require.NoError(t, err)

	_, err = g.GetMatchingJobs(context.Background(), "1")
	assert.True(t, errx.Is(err, resume.CodeGatewayUnavailable))
}

func TestHTTPGateway_OversizedBodyIsRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/analysis/") {
			_, _ = io.WriteString(w, `{"overall_score": 64, "skills_found": ["Python", "Go"]}`)
			return
		}
		_, _ = io.WriteString(w, `{"jobs": []}`)
	}))
	t.Cleanup(srv.Close)

	g, err := NewHTTPGatewayWithClient(GatewayConfig{BaseURL: srv.URL, MaxBodyBytes: 12}, nil, srv.Client())
	require.NoError(t, err)

	_, err = g.GetAnalysis(context.Background(), "1")
	require.Error(t, err)
	assert.True(t, errx.Is(err, resume.CodeInvalidPayload))

	raw, err := g.GetMatchingJobs(context.Background(), "1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"jobs": []}`, string(raw))
}

func TestHTTPGateway_Reanalyze(t *testing.T) {
	var calls atomic.Int32
	g, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/resumes/resumes/5/reanalyze/", r.URL.Path)
		_, _ = io.WriteString(w, `{"status": "started"}`)
	})

	require.NoError(t, g.Reanalyze(context.Background(), "5"))
	assert.Equal(t, int32(1), calls.Load())
}

func TestHTTPGateway_CreateResume(t *testing.T) {
	g, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "My CV", r.FormValue("title"))
		assert.Equal(t, "pdf", r.FormValue("file_type"))

		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		body, _ := io.ReadAll(f)
		assert.Equal(t, "cv.pdf", hdr.Filename)
		assert.Equal(t, "%PDF-1.4", string(body))

		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id": 77, "title": "My CV", "file_name": "cv.pdf", "status": "pending"}`)
	})

	req := resume.UploadRequest{Title: "My CV", FileName: "cv.pdf", Content: strings.NewReader("%PDF-1.4")}
	r, err := g.CreateResume(context.Background(), req, resume.FileTypePDF)
	require.NoError(t, err)
	assert.Equal(t, "77", r.ID.String())
	assert.Equal(t, resume.StatusPending, r.Status)
}

func TestHTTPGateway_DownloadURL(t *testing.T) {
	g, err := NewHTTPGateway(GatewayConfig{BaseURL: "https://api.example.com/api/"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/api/resumes/resumes/3/download/", g.DownloadURL("3"))
}

func TestNewHTTPGateway_RequiresBaseURL(t *testing.T) {
	_, err := NewHTTPGateway(GatewayConfig{}, nil)
	assert.Error(t, err)
}
