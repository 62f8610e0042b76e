// Package formapi implements the request/response primitive of the service
// info endpoint: a url-encoded form is POSTed and a JSON object comes back
// whose "status" field equals "1" on success.
package formapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mdotservice/serviceinfo/pkg/logging"
)

const StatusOK = "1"

// maxResponseBytes caps how much of a reply is read.
var maxResponseBytes = 32 << 20

var tracer = otel.Tracer("serviceinfo-formapi")

// Sender is the single remote primitive every higher level operation is
// built on.
type Sender interface {
	Send(ctx context.Context, req Request) (*Response, error)
}

// Request is one form submission. Op is the action key, which the endpoint
// uses to dispatch; Value is sent as its value (often empty).
type Request struct {
	Op     string
	Value  string
	Params url.Values
}

// Encode renders the form body with the action key first.
func (r Request) Encode() string {
	var sb strings.Builder
	sb.WriteString(url.QueryEscape(r.Op))
	sb.WriteByte('=')
	sb.WriteString(url.QueryEscape(r.Value))
	if len(r.Params) > 0 {
		sb.WriteByte('&')
		sb.WriteString(r.Params.Encode())
	}
	return sb.String()
}

type Options struct {
	URL             string
	Timeout         time.Duration
	RequestIDHeader string
	HTTPClient      *http.Client
	Logger          *logrus.Entry
}

type Client struct {
	endpoint        string
	timeout         time.Duration
	requestIDHeader string
	httpClient      *http.Client
	log             *logrus.Entry
}

func NewClient(opts Options) (*Client, error) {
	raw := strings.TrimSpace(opts.URL)
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("formapi: invalid endpoint url %q", opts.URL)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = newHTTPClient(opts.Timeout)
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	return &Client{
		endpoint:        u.String(),
		timeout:         opts.Timeout,
		requestIDHeader: strings.TrimSpace(opts.RequestIDHeader),
		httpClient:      opts.HTTPClient,
		log:             opts.Logger,
	}, nil
}

func (c *Client) Send(ctx context.Context, req Request) (*Response, error) {
	ctx, span := tracer.Start(ctx, "formapi.send", trace.WithAttributes(attribute.String("op", req.Op)))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	startedAt := time.Now()
	resp, err := c.send(ctx, req)
	elapsed := time.Since(startedAt).Seconds()

	switch {
	case err != nil:
		getMetrics().record(req.Op, resultTransport, elapsed)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.log.WithFields(logrus.Fields{"op": req.Op, "error": err.Error()}).Debug("remote request failed")
	case !resp.OK():
		getMetrics().record(req.Op, resultRejected, elapsed)
		span.SetAttributes(attribute.String("status", resp.Status))
		c.log.WithFields(logrus.Fields{"op": req.Op, "status": resp.Status}).Debug("remote request rejected")
	default:
		getMetrics().record(req.Op, resultOK, elapsed)
	}
	return resp, err
}

func (c *Client) send(ctx context.Context, req Request) (*Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(req.Encode()))
	if err != nil {
		return nil, transportError(req.Op, 0, fmt.Errorf("http request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Accept", "application/json")
	if c.requestIDHeader != "" {
		httpReq.Header.Set(c.requestIDHeader, uuid.NewString())
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, transportError(req.Op, 0, fmt.Errorf("http do: %w", err))
	}
	defer func() { _ = httpResp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, int64(maxResponseBytes)+1))
	if err != nil {
		return nil, transportError(req.Op, httpResp.StatusCode, fmt.Errorf("http read: %w", err))
	}
	if len(body) > maxResponseBytes {
		return nil, transportError(req.Op, httpResp.StatusCode, fmt.Errorf("response larger than %d bytes", maxResponseBytes))
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, transportError(req.Op, httpResp.StatusCode, fmt.Errorf("body=%s", truncateBody(string(body), maxErrorBodyBytes)))
	}

	resp, err := ParseResponse(body)
	if err != nil {
		return nil, transportError(req.Op, httpResp.StatusCode, err)
	}
	return resp, nil
}

// Response is a decoded reply. Fields other than status stay raw until a
// caller asks for them.
type Response struct {
	// Status is the status field as text. Non-string statuses keep their
	// literal JSON form.
	Status string
	// StatusIsString is false when status was a number, bool or object.
	StatusIsString bool
	fields         map[string]json.RawMessage
}

// OK requires the JSON string "1"; a numeric 1 is not success.
func (r *Response) OK() bool {
	return r != nil && r.StatusIsString && r.Status == StatusOK
}

func ParseResponse(body []byte) (*Response, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("json unmarshal response: %w", err)
	}
	if fields == nil {
		return nil, fmt.Errorf("json unmarshal response: not an object")
	}
	resp := &Response{fields: fields}
	if raw, ok := fields["status"]; ok {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			resp.Status = s
			resp.StatusIsString = true
		} else {
			resp.Status = string(raw)
		}
	}
	return resp, nil
}

// Has reports whether key is present and not JSON null.
func (r *Response) Has(key string) bool {
	raw, ok := r.fields[key]
	return ok && !isNull(raw)
}

// Truthy reports whether key is present and not null, false, "" or 0.
// The endpoint signals "nothing" with any of these.
func (r *Response) Truthy(key string) bool {
	raw, ok := r.fields[key]
	if !ok || isNull(raw) {
		return false
	}
	switch v := strings.TrimSpace(string(raw)); v {
	case "false", `""`:
		return false
	default:
		if f, err := strconv.ParseFloat(v, 64); err == nil && f == 0 {
			return false
		}
	}
	return true
}

// Decode unmarshals a single payload field into out.
func (r *Response) Decode(key string, out any) error {
	raw, ok := r.fields[key]
	if !ok || isNull(raw) {
		return fmt.Errorf("response field %q is missing", key)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode field %q: %w", key, err)
	}
	return nil
}

// DecodeList reads a field that the endpoint sends either as one object or
// as an array of objects. A missing or null field yields an empty slice.
func DecodeList[T any](r *Response, key string) ([]T, error) {
	raw, ok := r.fields[key]
	if !ok || isNull(raw) {
		return nil, nil
	}
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		var list []T
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("decode list %q: %w", key, err)
		}
		return list, nil
	}
	var one T
	if err := json.Unmarshal(raw, &one); err != nil {
		return nil, fmt.Errorf("decode list %q: %w", key, err)
	}
	return []T{one}, nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || strings.TrimSpace(string(raw)) == "null"
}
