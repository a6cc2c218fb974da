package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/course-enrollment-portal/pkg/errors"
	"github.com/noah-isme/course-enrollment-portal/pkg/middleware/requestid"
)

const maxBodyBytes = 1 << 20

// Observer receives one callback per remote call.
type Observer interface {
	ObserveRemoteCall(operation string, status int, duration time.Duration, err error)
}

// Config configures a Client.
type Config struct {
	BaseURL string
	// Timeout of zero applies no client-side deadline.
	Timeout    time.Duration
	HTTPClient *http.Client
	Observer   Observer
	Logger     *zap.Logger
}

// Client issues single-shot JSON requests against the course API. It never
// retries; every failure is returned as a REMOTE_ERROR.
type Client struct {
	base     *url.URL
	http     *http.Client
	observer Observer
	logger   *zap.Logger
}

// New validates the base URL and builds a Client.
func New(cfg Config) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		return nil, errors.New("apiclient: base url is required")
	}
	base, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return nil, fmt.Errorf("apiclient: parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("apiclient: unsupported scheme %q", base.Scheme)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{base: base, http: httpClient, observer: cfg.Observer, logger: logger}, nil
}

// Request describes one call.
type Request struct {
	// Operation labels the call in logs and metrics, e.g. "list_courses".
	Operation string
	Method    string
	Path      string
	Body      interface{}
}

// Do performs the request and decodes a JSON response into out when out is non-nil.
func (c *Client) Do(ctx context.Context, req Request, out interface{}) error {
	start := time.Now()
	status, err := c.do(ctx, req, out)
	if c.observer != nil {
		c.observer.ObserveRemoteCall(req.Operation, status, time.Since(start), err)
	}
	if err != nil {
		c.logger.Warn("remote call failed",
			zap.String("operation", req.Operation),
			zap.String("method", req.Method),
			zap.String("path", req.Path),
			zap.Int("status", status),
			zap.Error(err),
		)
	}
	return err
}

func (c *Client) do(ctx context.Context, req Request, out interface{}) (int, error) {
	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode request")
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.endpoint(req.Path), body)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build request")
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if id := requestid.FromContext(ctx); id != "" {
		httpReq.Header.Set(requestid.HeaderKey, id)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return 0, appErrors.Remote("", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, appErrors.Remote("", fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode >= http.StatusBadRequest {
		cause := fmt.Errorf("%s %s: status %d", req.Method, req.Path, resp.StatusCode)
		return resp.StatusCode, appErrors.Remote(ExtractDetail(raw), cause)
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return resp.StatusCode, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return resp.StatusCode, appErrors.Remote("", fmt.Errorf("decode response: %w", err))
	}
	return resp.StatusCode, nil
}

func (c *Client) endpoint(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.base.String() + path
}

type errorBody struct {
	Detail json.RawMessage `json:"detail"`
	Error  *struct {
		Message string `json:"message"`
	} `json:"error"`
}

type detailItem struct {
	Msg string `json:"msg"`
}

// ExtractDetail pulls the human-readable message out of an error response.
// It understands {"detail": "..."}, {"detail": [{"msg": "..."}]} and
// {"error": {"message": "..."}}; anything else yields "".
func ExtractDetail(raw []byte) string {
	var parsed errorBody
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return ""
	}

	if len(parsed.Detail) > 0 {
		var text string
		if err := json.Unmarshal(parsed.Detail, &text); err == nil {
			return strings.TrimSpace(text)
		}
		var items []detailItem
		if err := json.Unmarshal(parsed.Detail, &items); err == nil {
			msgs := make([]string, 0, len(items))
			for _, item := range items {
				if msg := strings.TrimSpace(item.Msg); msg != "" {
					msgs = append(msgs, msg)
				}
			}
			return strings.Join(msgs, "; ")
		}
	}

	if parsed.Error != nil {
		return strings.TrimSpace(parsed.Error.Message)
	}
	return ""
}
