package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/Abraxas-365/resumelens/recruitment/resume"
	"github.com/Abraxas-365/resumelens/recruitment/viewmodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type backend struct {
	mu     sync.Mutex
	auth   []string
	posted []string
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.auth = append(b.auth, r.Header.Get("Authorization"))
	if r.Method == http.MethodPost {
		b.posted = append(b.posted, r.URL.Path)
	}
	b.mu.Unlock()

	switch r.Method + " " + r.URL.Path {
	case "GET /resumes/resumes/":
		_, _ = io.WriteString(w, `[
			{"id": 1, "title": "Old", "file_name": "old.pdf", "status": "completed", "created_at": "2025-01-01T00:00:00Z"},
			{"id": 2, "title": "New", "file_name": "new.docx", "status": "processing", "created_at": "2025-02-01T00:00:00Z"}
		]`)
	case "GET /resumes/resumes/2/":
		_, _ = io.WriteString(w, `{"id": 2, "title": "New", "file_name": "new.docx", "status": "processing", "created_at": "2025-02-01T00:00:00Z"}`)
	case "POST /resumes/resumes/":
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id": 9, "title": "cv", "file_name": "cv.pdf", "status": "pending"}`)
	case "DELETE /resumes/resumes/1/":
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func setupEnv(t *testing.T, token string) *backend {
	t.Helper()

	b := &backend{}
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)

	t.Setenv("RESUMELENS_CONFIG", "")
	t.Setenv("API_BASE_URL", srv.URL)
	t.Setenv("API_TOKEN", token)
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("DB_HOST", "")
	t.Setenv("AWS_REGION", "")
	return b
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(io.Discard)
	err := root.Execute()
	return out.String(), err
}

func TestListPrintsNewestFirst(t *testing.T) {
	b := setupEnv(t, "abc")

	out, err := run(t, "list")
	require.NoError(t, err)

	var summaries []resume.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &summaries))
	require.Len(t, summaries, 2)
	assert.Equal(t, "New", summaries[0].Title)
	assert.True(t, summaries[1].CanReanalyze)
	assert.Equal(t, []string{"Bearer abc"}, b.auth)
}

func TestViewSkipsResultsWhileProcessing(t *testing.T) {
	setupEnv(t, "abc")

	out, err := run(t, "view", "2")
	require.NoError(t, err)

	var vm viewmodel.ViewModel
	require.NoError(t, json.Unmarshal([]byte(out), &vm))
	require.NotNil(t, vm.Status)
	assert.Equal(t, resume.StatusProcessing, vm.Status.Status)
	assert.Equal(t, viewmodel.NoticeInProgress, vm.Analysis.Notice)
}

func TestReanalyzeRejectedWhileProcessing(t *testing.T) {
	b := setupEnv(t, "abc")

	_, err := run(t, "reanalyze", "2")
	require.Error(t, err)
	assert.Empty(t, b.posted)
}

func TestUploadLocalFile(t *testing.T) {
	b := setupEnv(t, "abc")

	path := filepath.Join(t.TempDir(), "cv.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o600))

	out, err := run(t, "upload", path)
	require.NoError(t, err)

	var s resume.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	assert.Equal(t, "9", s.ID.String())
	assert.Equal(t, []string{"/resumes/resumes/"}, b.posted)
}

func TestUploadRejectsUnsupportedType(t *testing.T) {
	b := setupEnv(t, "abc")

	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hi"), 0o600))

	_, err := run(t, "upload", path)
	require.Error(t, err)
	assert.Empty(t, b.posted)
}

func TestDeleteAndDownload(t *testing.T) {
	setupEnv(t, "abc")

	out, err := run(t, "delete", "1")
	require.NoError(t, err)
	assert.Equal(t, "deleted 1\n", out)

	out, err = run(t, "download", "1")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "/resumes/resumes/1/download/"))
}

func TestTokenRequired(t *testing.T) {
	b := setupEnv(t, "")

	_, err := run(t, "list")
	require.Error(t, err)
	assert.Empty(t, b.auth)
}
