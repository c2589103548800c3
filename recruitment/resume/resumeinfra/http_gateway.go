package resumeinfra

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Abraxas-365/resumelens/pkg/kernel"
	"github.com/Abraxas-365/resumelens/pkg/logx"
	"github.com/Abraxas-365/resumelens/recruitment/resume"
	"github.com/google/uuid"
)

const resumesPath = "/resumes/resumes/"

// Credentials supplies the bearer token for outgoing requests and is told
// when the backend rejects it.
type Credentials interface {
	Token() (string, error)
	Invalidate(ctx context.Context) error
}

type GatewayConfig struct {
	BaseURL      string
	Timeout      time.Duration
	TokenScheme  string
	MaxBodyBytes int64
}

// HTTPGateway talks to the backend resume service over its REST API.
type HTTPGateway struct {
	baseURL      string
	timeout      time.Duration
	scheme       string
	maxBodyBytes int64

	creds      Credentials
	httpClient *http.Client
}

var _ resume.Gateway = (*HTTPGateway)(nil)

func NewHTTPGateway(cfg GatewayConfig, creds Credentials) (*HTTPGateway, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("resume gateway: base url required")
	}

	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	g := &HTTPGateway{
		baseURL:      baseURL,
		timeout:      cfg.Timeout,
		scheme:       strings.TrimSpace(cfg.TokenScheme),
		maxBodyBytes: cfg.MaxBodyBytes,
		creds:        creds,
		httpClient:   &http.Client{Transport: tr},
	}
	if g.timeout <= 0 {
		g.timeout = 20 * time.Second
	}
	if g.scheme == "" {
		g.scheme = "Bearer"
	}
	if g.maxBodyBytes <= 0 {
		g.maxBodyBytes = 4 << 20
	}
	return g, nil
}

// NewHTTPGatewayWithClient is intended for tests.
func NewHTTPGatewayWithClient(cfg GatewayConfig, creds Credentials, httpClient *http.Client) (*HTTPGateway, error) {
	g, err := NewHTTPGateway(cfg, creds)
	if err != nil {
		return nil, err
	}
	if httpClient != nil {
		g.httpClient = httpClient
	}
	return g, nil
}

// WithCredentials returns a gateway sharing g's connection pool that
// authenticates with creds.
func (g *HTTPGateway) WithCredentials(creds Credentials) *HTTPGateway {
	cp := *g
	cp.creds = creds
	return &cp
}

func (g *HTTPGateway) ListResumes(ctx context.Context) ([]resume.Resume, error) {
	raw, err := g.do(ctx, http.MethodGet, resumesPath, nil, "")
	if err != nil {
		return nil, err
	}

	var wires []resumeWire
	if err := json.Unmarshal(raw, &wires); err != nil {
		// paginated form
		var page struct {
			Results []resumeWire `json:"results"`
		}
		if perr := json.Unmarshal(raw, &page); perr != nil {
			return nil, resume.ErrInvalidPayload(err).WithDetail("operation", "list")
		}
		wires = page.Results
	}

	out := make([]resume.Resume, 0, len(wires))
	for i := range wires {
		r, err := wires[i].toDomain()
		if err != nil {
			logx.Warn("skipping unreadable resume", "id", wires[i].ID, "error", err)
			continue
		}
		out = append(out, *r)
	}
	return out, nil
}

func (g *HTTPGateway) GetResume(ctx context.Context, id kernel.ResumeID) (*resume.Resume, error) {
	raw, err := g.do(ctx, http.MethodGet, g.resumePath(id, ""), nil, "")
	if err != nil {
		return nil, err
	}
	return decodeResume(raw)
}

func (g *HTTPGateway) CreateResume(ctx context.Context, req resume.UploadRequest, fileType resume.FileType) (*resume.Resume, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	part, err := w.CreateFormFile("file", req.FileName)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, req.Content); err != nil {
		return nil, resume.ErrInvalidUpload().WithCause(err)
	}
	if err := w.WriteField("title", req.Title); err != nil {
		return nil, fmt.Errorf("write title: %w", err)
	}
	if err := w.WriteField("file_type", string(fileType)); err != nil {
		return nil, fmt.Errorf("write file type: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart body: %w", err)
	}

	raw, err := g.do(ctx, http.MethodPost, resumesPath, &body, w.FormDataContentType())
	if err != nil {
		return nil, err
	}
	return decodeResume(raw)
}

func (g *HTTPGateway) DeleteResume(ctx context.Context, id kernel.ResumeID) error {
	_, err := g.do(ctx, http.MethodDelete, g.resumePath(id, ""), nil, "")
	return err
}

func (g *HTTPGateway) Reanalyze(ctx context.Context, id kernel.ResumeID) error {
	_, err := g.do(ctx, http.MethodPost, g.resumePath(id, "reanalyze/"), nil, "")
	return err
}

func (g *HTTPGateway) GetAnalysis(ctx context.Context, id kernel.ResumeID) ([]byte, error) {
	return g.do(ctx, http.MethodGet, g.resumePath(id, "analysis/"), nil, "")
}

func (g *HTTPGateway) GetMatchingJobs(ctx context.Context, id kernel.ResumeID) ([]byte, error) {
	return g.do(ctx, http.MethodGet, g.resumePath(id, "matching_jobs/"), nil, "")
}

func (g *HTTPGateway) DownloadURL(id kernel.ResumeID) string {
	return g.baseURL + g.resumePath(id, "download/")
}

func (g *HTTPGateway) resumePath(id kernel.ResumeID, action string) string {
	return resumesPath + url.PathEscape(id.String()) + "/" + action
}

func decodeResume(raw []byte) (*resume.Resume, error) {
	var w resumeWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, resume.ErrInvalidPayload(err)
	}
	return w.toDomain()
}

// do sends one request and returns the response body of a 2xx reply.
func (g *HTTPGateway) do(ctx context.Context, method, path string, body io.Reader, contentType string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	if g.creds != nil {
		token, err := g.creds.Token()
		if err != nil {
			return nil, resume.ErrUnauthenticated().WithCause(err)
		}
		req.Header.Set("Authorization", g.scheme+" "+token)
	}

	start := time.Now()
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, resume.ErrGatewayUnavailable(err).
			WithDetail("method", method).
			WithDetail("path", path)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, g.maxBodyBytes+1))
	if err != nil {
		return nil, resume.ErrGatewayUnavailable(err).WithDetail("path", path)
	}
	oversized := int64(len(raw)) > g.maxBodyBytes
	if oversized {
		raw = raw[:g.maxBodyBytes]
	}

	logx.Debug("backend request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if oversized {
			return nil, resume.ErrInvalidPayload(errors.New("response body exceeds limit")).
				WithDetail("path", path).
				WithDetail("max_bytes", g.maxBodyBytes)
		}
		return raw, nil
	}
	return nil, g.statusError(ctx, resp.StatusCode, path, raw)
}

func (g *HTTPGateway) statusError(ctx context.Context, status int, path string, body []byte) error {
	switch status {
	case http.StatusUnauthorized:
		if g.creds != nil {
			if err := g.creds.Invalidate(context.WithoutCancel(ctx)); err != nil {
				logx.Warnf("invalidate session after 401: %v", err)
			}
		}
		return resume.ErrUnauthenticated().WithDetail("path", path)
	case http.StatusForbidden:
		return resume.ErrForbidden().WithDetail("path", path)
	case http.StatusNotFound:
		return resume.ErrResumeNotFound().WithDetail("path", path)
	}

	e := resume.ErrUpstreamStatus(status).WithDetail("path", path)
	if msg := upstreamMessage(body); msg != "" {
		e = e.WithDetail("upstream_message", msg)
	}
	return e
}

// upstreamMessage extracts {"error"|"detail"|"message": "..."} from an error body.
func upstreamMessage(body []byte) string {
	var m map[string]any
	if json.Unmarshal(body, &m) != nil {
		return ""
	}
	for _, k := range []string{"error", "detail", "message"} {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
