package envelope

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

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	clerrors "github.com/stockroom/stockroom-client/internal/errors"
)

// File is one part of a multipart upload.
type File struct {
	Param  string
	Name   string
	Reader io.Reader
}

// Request describes one backend call relative to the Caller's base URL.
type Request struct {
	Method string
	Path   string
	Query  map[string]string
	Body   any

	// Files switches the request to multipart/form-data; Form carries the
	// accompanying plain fields.
	Files []File
	Form  map[string]string

	// Op names the call in logs and errors, e.g. "list products".
	Op string
}

// Caller dispatches Requests over a resty client.
type Caller struct {
	rc             *resty.Client
	baseURL        string
	onUnauthorized func(context.Context)
	log            zerolog.Logger
}

// CallerOption configures a Caller.
type CallerOption func(*Caller)

// WithUnauthorizedHook registers fn to run on every 401 response.
func WithUnauthorizedHook(fn func(context.Context)) CallerOption {
	return func(c *Caller) { c.onUnauthorized = fn }
}

// WithLogger sets the logger used for failed calls.
func WithLogger(l zerolog.Logger) CallerOption {
	return func(c *Caller) { c.log = l }
}

// NewCaller builds a Caller whose requests go through hc's transport.
func NewCaller(hc *http.Client, baseURL string, opts ...CallerOption) *Caller {
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	c := &Caller{
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.rc = resty.NewWithClient(hc).
		SetBaseURL(c.baseURL).
		SetHeader("Accept", "application/json").
		SetLogger(restyLogger{l: c.log})
	return c
}

// BaseURL returns the normalized base URL.
func (c *Caller) BaseURL() string { return c.baseURL }

// Do performs req and decodes a 2xx body into T.
func Do[T any](ctx context.Context, c *Caller, req Request) Result[T] {
	start := time.Now()
	res := do[T](ctx, c, req)
	observe(req.Method, res.Success, res.Err, time.Since(start))
	if !res.Success {
		ev := c.log.Debug()
		if res.Status != 0 && res.Status != http.StatusUnauthorized {
			ev = c.log.Warn()
		}
		ev.Str("op", req.Op).
			Str("method", req.Method).
			Str("path", req.Path).
			Int("status", res.Status).
			Str("error_code", res.Err.ErrorCode).
			Strs("message", res.Err.Message).
			Msg("request failed")
	}
	return res
}

func do[T any](ctx context.Context, c *Caller, req Request) Result[T] {
	op := req.Op
	if op == "" {
		op = strings.ToLower(req.Method) + " " + req.Path
	}
	if ctx == nil {
		err := errors.New("nil context")
		return fail[T](StatusClientError, CodeClient, clerrors.NewClientError(op, err), err.Error())
	}
	if req.Method == "" {
		err := errors.New("missing method")
		return fail[T](StatusClientError, CodeClient, clerrors.NewClientError(op, err), err.Error())
	}
	if _, err := url.Parse(c.baseURL + req.Path); err != nil {
		return fail[T](StatusClientError, CodeClient, clerrors.NewClientError(op, err), err.Error())
	}

	r := c.rc.R().SetContext(ctx)
	if len(req.Query) > 0 {
		r.SetQueryParams(req.Query)
	}
	switch {
	case len(req.Files) > 0:
		for _, f := range req.Files {
			if f.Reader == nil {
				err := fmt.Errorf("file %q has no content", f.Name)
				return fail[T](StatusClientError, CodeClient, clerrors.NewClientError(op, err), err.Error())
			}
			r.SetFileReader(f.Param, f.Name, f.Reader)
		}
		if len(req.Form) > 0 {
			r.SetFormData(req.Form)
		}
	case req.Body != nil:
		body, err := json.Marshal(req.Body)
		if err != nil {
			return fail[T](StatusClientError, CodeClient, clerrors.NewClientError(op, err), err.Error())
		}
		r.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	resp, err := r.Execute(req.Method, req.Path)
	if err != nil {
		code := CodeNetwork
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			code = CodeCancelled
		}
		return fail[T](0, code, clerrors.NewNetworkError(op, err), "Network error: "+err.Error())
	}

	status := resp.StatusCode()
	body := resp.Body()
	if status < 200 || status >= 300 {
		msgs, code := parseServerError(body, status)
		cause := clerrors.ClassifyHTTPError(status, string(body), fmt.Errorf("%s failed: HTTP %d", op, status))
		if status == http.StatusUnauthorized {
			code = CodeUnauthorized
			if c.onUnauthorized != nil {
				c.onUnauthorized(ctx)
			}
		}
		return fail[T](status, code, cause, msgs...)
	}

	var data T
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &data); err != nil {
			cause := &clerrors.ClassifiedError{Kind: clerrors.KindDecode, StatusCode: status, Body: string(body), Underlying: err}
			return fail[T](status, CodeInvalidResponse, cause, "Invalid response: "+err.Error())
		}
	}
	return ok(status, data)
}

// parseServerError extracts a human message and an error code from a
// non-2xx body. It understands {message: string|[]string}, {error} and
// {errors: []string}; anything else falls back to the status text.
func parseServerError(body []byte, status int) ([]string, string) {
	var raw struct {
		Message   json.RawMessage `json:"message"`
		Error     string          `json:"error"`
		Errors    []string        `json:"errors"`
		ErrorCode string          `json:"errorCode"`
	}
	code := CodeHTTP
	if err := json.Unmarshal(body, &raw); err != nil {
		if s := strings.TrimSpace(string(body)); s != "" && len(s) < 512 && !strings.HasPrefix(s, "<") {
			return []string{s}, code
		}
		return []string{http.StatusText(status)}, code
	}
	if raw.ErrorCode != "" {
		code = raw.ErrorCode
	}
	var msgs []string
	if len(raw.Message) > 0 {
		var one string
		var many []string
		if json.Unmarshal(raw.Message, &one) == nil && one != "" {
			msgs = append(msgs, one)
		} else if json.Unmarshal(raw.Message, &many) == nil {
			msgs = append(msgs, many...)
		}
	}
	if len(msgs) == 0 && raw.Error != "" {
		msgs = append(msgs, raw.Error)
	}
	if len(msgs) == 0 {
		msgs = append(msgs, raw.Errors...)
	}
	if len(msgs) == 0 {
		msgs = []string{http.StatusText(status)}
	}
	return msgs, code
}

// restyLogger routes resty's internal warnings into zerolog.
type restyLogger struct{ l zerolog.Logger }

func (r restyLogger) Errorf(format string, v ...interface{}) { r.l.Error().Msgf(format, v...) }
func (r restyLogger) Warnf(format string, v ...interface{})  { r.l.Warn().Msgf(format, v...) }
func (r restyLogger) Debugf(format string, v ...interface{}) { r.l.Debug().Msgf(format, v...) }
