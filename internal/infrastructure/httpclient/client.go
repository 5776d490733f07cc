package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	stdmultipart "mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"anvil-esign/internal/config"
	"anvil-esign/internal/domain/entity"
	"anvil-esign/internal/multipart"
)

const (
	maxBodyLogLength  = 500   // Maximum characters to log for body
	maxStoredBodySize = 10000 // Maximum characters stored per API log body
	defaultRetryAfter = time.Second
)

// ErrRateLimited is returned when the API keeps answering 429, or answers
// 429 to a call made with NoRetry.
var ErrRateLimited = errors.New("rate limit exceeded")

// ErrMissingAPIKey is returned when no API key is configured
var ErrMissingAPIKey = errors.New("an Anvil API key is required")

var base64Pattern = regexp.MustCompile(`"([A-Za-z0-9+/=]{100,})"`)

// Response is a raw API response. Status codes are not interpreted.
type Response struct {
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte
}

// OK reports whether the status code is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsJSON reports whether the response declares a JSON body.
func (r *Response) IsJSON() bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

type HTTPClient interface {
	// Get performs a GET request with the query params appended to rawURL
	Get(ctx context.Context, rawURL string, params url.Values, opts ...CallOption) (*Response, error)
	// PostJSON performs a POST request with body encoded as JSON
	PostJSON(ctx context.Context, rawURL string, body any, opts ...CallOption) (*Response, error)
	// PostMultipart performs a multipart/form-data POST request with the fields in order
	PostMultipart(ctx context.Context, rawURL string, fields []multipart.Field, opts ...CallOption) (*Response, error)
}

// APILogSaver interface for saving API logs
type APILogSaver interface {
	Save(ctx context.Context, log *entity.APILog) error
}

type callOptions struct {
	retry     bool
	operation string
}

// CallOption adjusts a single call.
type CallOption func(*callOptions)

// NoRetry makes a 429 response fail with ErrRateLimited instead of waiting.
func NoRetry() CallOption {
	return func(o *callOptions) { o.retry = false }
}

// WithOperation names the call in logs and stored API logs.
func WithOperation(name string) CallOption {
	return func(o *callOptions) { o.operation = name }
}

type httpClient struct {
	client       *http.Client
	config       *config.Config
	limiter      *rate.Limiter
	retriesLimit int
	apiLogSaver  APILogSaver
	logger       *zap.Logger
	sleep        func(ctx context.Context, d time.Duration) error
}

func NewHTTPClient(cfg *config.Config, apiLogSaver APILogSaver, logger *zap.Logger) HTTPClient {
	limit := cfg.RateLimit.For(cfg.Anvil.Environment)

	c := &httpClient{
		client: &http.Client{
			Timeout: cfg.Anvil.Timeout,
		},
		config:       cfg,
		limiter:      newLimiter(limit),
		retriesLimit: cfg.Anvil.RetriesLimit,
		apiLogSaver:  apiLogSaver,
		logger:       logger,
		sleep:        sleepContext,
	}
	if c.retriesLimit < 1 {
		c.retriesLimit = 1
	}

	logger.Info("HTTP Client initialized",
		zap.String("environment", cfg.Anvil.Environment),
		zap.Int("rate_limit_calls", limit.Calls),
		zap.Int("rate_limit_seconds", limit.Seconds),
		zap.Int("retries_limit", c.retriesLimit),
	)

	return c
}

func newLimiter(limit config.RateLimit) *rate.Limiter {
	if limit.Calls <= 0 || limit.Seconds <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	every := time.Duration(limit.Seconds) * time.Second / time.Duration(limit.Calls)
	return rate.NewLimiter(rate.Every(every), limit.Calls)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// truncateString truncates a string if it exceeds maxLength
func truncateString(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	return s[:maxLength] + fmt.Sprintf("... [truncated, total %d chars]", len(s))
}

// truncateBase64InJSON truncates base64-like values in JSON string
func truncateBase64InJSON(jsonStr string, maxLength int) string {
	return base64Pattern.ReplaceAllStringFunc(jsonStr, func(match string) string {
		content := match[1 : len(match)-1]
		if len(content) > maxLength {
			return fmt.Sprintf(`"%s... [base64 truncated, total %d chars]"`, content[:maxLength], len(content))
		}
		return match
	})
}

// formatHeadersForLog formats HTTP headers for logging in "Header Key=Value"
// format. Credentials are redacted.
func formatHeadersForLog(headers http.Header) string {
	keys := make([]string, 0, len(headers))
	for key := range headers {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, key := range keys {
		for _, value := range headers[key] {
			if key == "Authorization" {
				value = "[redacted]"
			} else if len(value) > 100 {
				value = value[:100] + "..."
			}
			sb.WriteString(fmt.Sprintf("Header %s=%s\n", key, value))
		}
	}
	return sb.String()
}

// logRequest logs the HTTP request details
func (c *httpClient) logRequest(method, url, operation string, attempt int, headers http.Header, body []byte) {
	var logBuilder strings.Builder

	logBuilder.WriteString("\n>>> [WEBCLIENT-REQ]\n")
	logBuilder.WriteString(fmt.Sprintf("Method: %s\n", method))
	logBuilder.WriteString(fmt.Sprintf("URL: %s\n", url))
	if operation != "" {
		logBuilder.WriteString(fmt.Sprintf("Operation: %s\n", operation))
	}
	if attempt > 1 {
		logBuilder.WriteString(fmt.Sprintf("Attempt: %d\n", attempt))
	}
	logBuilder.WriteString(formatHeadersForLog(headers))

	if len(body) > 0 {
		bodyStr := truncateBase64InJSON(string(body), 100)
		bodyStr = truncateString(bodyStr, maxBodyLogLength)
		logBuilder.WriteString(fmt.Sprintf("REQUEST BODY: %s\n", bodyStr))
	}

	c.logger.Debug(logBuilder.String())
}

// logResponse logs the HTTP response details
func (c *httpClient) logResponse(statusCode int, statusText string, duration time.Duration, headers http.Header, body []byte) {
	var logBuilder strings.Builder

	logBuilder.WriteString("\n>>> [WEBCLIENT-RESPONSE]\n")
	logBuilder.WriteString(fmt.Sprintf("Status: %d %s\n", statusCode, statusText))
	logBuilder.WriteString(fmt.Sprintf("Duration: %s\n", duration))
	logBuilder.WriteString(formatHeadersForLog(headers))

	if strings.HasPrefix(headers.Get("Content-Type"), "application/json") || len(body) < maxBodyLogLength {
		logBuilder.WriteString(fmt.Sprintf("Body: %s\n", truncateString(string(body), maxBodyLogLength)))
	} else {
		logBuilder.WriteString(fmt.Sprintf("Body: [%d bytes of %s]\n", len(body), headers.Get("Content-Type")))
	}

	c.logger.Debug(logBuilder.String())
}

// saveAPILog saves the API request/response log without blocking the call
func (c *httpClient) saveAPILog(method, endpoint, operation string, requestBody, responseBody []byte, contentType string, statusCode, attempts int, duration time.Duration) {
	if c.apiLogSaver == nil {
		return
	}

	reqBodyStr := ""
	if len(requestBody) > 0 {
		reqBodyStr = truncateBase64InJSON(string(requestBody), 100)
		if len(reqBodyStr) > maxStoredBodySize {
			reqBodyStr = reqBodyStr[:maxStoredBodySize] + "... [truncated]"
		}
	}

	// binary downloads are not stored
	respBodyStr := string(responseBody)
	if contentType != "" && !strings.HasPrefix(contentType, "application/json") && !strings.HasPrefix(contentType, "text/") {
		respBodyStr = fmt.Sprintf("[%d bytes of %s]", len(responseBody), contentType)
	}
	if len(respBodyStr) > maxStoredBodySize {
		respBodyStr = respBodyStr[:maxStoredBodySize] + "... [truncated]"
	}

	apiLog := &entity.APILog{
		Endpoint:     endpoint,
		Method:       method,
		Operation:    operation,
		RequestBody:  reqBodyStr,
		ResponseBody: respBodyStr,
		StatusCode:   statusCode,
		Duration:     duration.Milliseconds(),
		Attempts:     attempts,
		CreatedAt:    time.Now(),
	}

	go func() {
		if err := c.apiLogSaver.Save(context.Background(), apiLog); err != nil {
			c.logger.Warn("Failed to save API log to database",
				zap.String("endpoint", endpoint),
				zap.Error(err),
			)
		}
	}()
}

// retryAfter reads the Retry-After header in seconds, falling back to one
// second.
func retryAfter(h http.Header) time.Duration {
	v := h.Get("Retry-After")
	if v == "" {
		return defaultRetryAfter
	}
	if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return defaultRetryAfter
}

type request struct {
	method      string
	url         string
	body        []byte
	contentType string
	logBody     []byte
}

func (c *httpClient) doRequest(ctx context.Context, r request, opts []CallOption) (*Response, error) {
	o := callOptions{retry: true}
	for _, opt := range opts {
		opt(&o)
	}

	if c.config.Anvil.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	for attempt := 1; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("failed to wait for rate limiter: %w", err)
		}

		var bodyReader io.Reader
		if r.body != nil {
			bodyReader = bytes.NewReader(r.body)
		}
		req, err := http.NewRequestWithContext(ctx, r.method, r.url, bodyReader)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		if r.contentType != "" {
			req.Header.Set("Content-Type", r.contentType)
		}
		req.Header.Set("Accept", "application/json")
		req.SetBasicAuth(c.config.Anvil.APIKey, "")

		c.logRequest(r.method, r.url, o.operation, attempt, req.Header, r.logBody)

		startTime := time.Now()
		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to execute request: %w", err)
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read response body: %w", err)
		}
		duration := time.Since(startTime)

		c.logResponse(resp.StatusCode, resp.Status, duration, resp.Header, respBody)
		c.saveAPILog(r.method, r.url, o.operation, r.logBody, respBody, resp.Header.Get("Content-Type"), resp.StatusCode, attempt, duration)

		if resp.StatusCode == http.StatusTooManyRequests {
			wait := retryAfter(resp.Header)
			if !o.retry || attempt >= c.retriesLimit {
				return nil, fmt.Errorf("%w: retry after %s", ErrRateLimited, wait)
			}

			c.logger.Warn("Rate-limited: request not accepted, retrying",
				zap.String("url", r.url),
				zap.Duration("retry_after", wait),
				zap.Int("attempt", attempt),
			)
			if err := c.sleep(ctx, wait); err != nil {
				return nil, err
			}
			continue
		}

		return &Response{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Header:     resp.Header,
			Body:       respBody,
		}, nil
	}
}

func (c *httpClient) Get(ctx context.Context, rawURL string, params url.Values, opts ...CallOption) (*Response, error) {
	if len(params) > 0 {
		sep := "?"
		if strings.Contains(rawURL, "?") {
			sep = "&"
		}
		rawURL += sep + params.Encode()
	}
	return c.doRequest(ctx, request{method: http.MethodGet, url: rawURL}, opts)
}

func (c *httpClient) PostJSON(ctx context.Context, rawURL string, body any, opts ...CallOption) (*Response, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	return c.doRequest(ctx, request{
		method:      http.MethodPost,
		url:         rawURL,
		body:        jsonBody,
		contentType: "application/json",
		logBody:     jsonBody,
	}, opts)
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// PostMultipart sends the fields in order. The body is built in memory so
// that it can be sent again after a 429.
func (c *httpClient) PostMultipart(ctx context.Context, rawURL string, fields []multipart.Field, opts ...CallOption) (*Response, error) {
	var buf bytes.Buffer
	writer := stdmultipart.NewWriter(&buf)

	var bodySummary strings.Builder
	bodySummary.WriteString("{")

	for i, field := range fields {
		isFile := field.IsFile()
		filename := field.Filename
		if isFile && filename == "" {
			filename = field.Name
		}

		header := make(textproto.MIMEHeader)
		disposition := fmt.Sprintf(`form-data; name="%s"`, quoteEscaper.Replace(field.Name))
		if isFile {
			disposition += fmt.Sprintf(`; filename="%s"`, quoteEscaper.Replace(filename))
		}
		header.Set("Content-Disposition", disposition)
		if field.ContentType != "" {
			header.Set("Content-Type", field.ContentType)
		}

		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, fmt.Errorf("failed to create part %s: %w", field.Name, err)
		}

		if i > 0 {
			bodySummary.WriteString(", ")
		}
		if !isFile {
			var value bytes.Buffer
			if _, err := io.Copy(io.MultiWriter(part, &value), field.Content); err != nil {
				return nil, fmt.Errorf("failed to write field %s: %w", field.Name, err)
			}
			bodySummary.WriteString(fmt.Sprintf("%q: %s", field.Name, value.String()))
			continue
		}

		n, err := io.Copy(part, field.Content)
		if err != nil {
			return nil, fmt.Errorf("failed to write file content %s: %w", field.Name, err)
		}
		bodySummary.WriteString(fmt.Sprintf("%q: \"%s(%s, %d bytes)\"", field.Name, filename, field.ContentType, n))
	}
	bodySummary.WriteString("}")

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	return c.doRequest(ctx, request{
		method:      http.MethodPost,
		url:         rawURL,
		body:        buf.Bytes(),
		contentType: writer.FormDataContentType(),
		logBody:     []byte(bodySummary.String()),
	}, opts)
}
