package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"codefusion/internal/workbench"
	"codefusion/pkg/types"
)

const (
	convertPath = "/convert"
	reviewPath  = "/"
	historyPath = "/history"

	// upper bound on any response body we are willing to buffer
	maxBodySize = 8 << 20
)

// ErrResponseTooLarge is returned when a response body exceeds the buffer limit
var ErrResponseTooLarge = errors.New("response body too large")

// Client talks to the conversion and review endpoints
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a Client for the server at cfg.ServerURL
func NewClient(cfg types.ClientConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.ServerURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// Convert posts a form-encoded submission to /convert. The JSON body is decoded
// whatever the status code; an error field in it is a logical failure and is
// returned in the result, not as an error.
func (c *Client) Convert(ctx context.Context, sub workbench.CodeSubmission) (types.ConversionResult, error) {
	form := url.Values{}
	form.Set("source_lang", sub.SourceLanguage)
	form.Set("target_lang", sub.TargetLanguage)
	form.Set("code", sub.RawText)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+convertPath, strings.NewReader(form.Encode()))
	if err != nil {
		return types.ConversionResult{}, fmt.Errorf("build convert request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	body, status, err := c.do(req)
	if err != nil {
		return types.ConversionResult{}, err
	}

	var result types.ConversionResult
	if err := json.Unmarshal(body, &result); err != nil {
		return types.ConversionResult{}, fmt.Errorf("decode convert response (status %d): %w", status, err)
	}
	if result.Error == "" && status >= http.StatusBadRequest {
		result.Error = http.StatusText(status)
	}

	c.logger.Debug("conversion response",
		zap.Int("status", status),
		zap.Bool("logical_error", result.Error != ""),
		zap.Int("code_length", len(result.ConvertedCode)),
	)
	return result, nil
}

// Review posts {code} as JSON to / and returns the markdown body. Any non-2xx
// answer is treated as a failed exchange.
func (c *Client) Review(ctx context.Context, code string) (string, error) {
	payload, err := json.Marshal(types.ReviewRequest{Code: code})
	if err != nil {
		return "", fmt.Errorf("encode review request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+reviewPath, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build review request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	body, status, err := c.do(req)
	if err != nil {
		return "", err
	}
	if status < 200 || status > 299 {
		return "", fmt.Errorf("review endpoint returned %d: %s", status, snippet(body))
	}

	c.logger.Debug("review response", zap.Int("status", status), zap.Int("length", len(body)))
	return string(body), nil
}

// History fetches the most recent dispatch records
func (c *Client) History(ctx context.Context, limit int) ([]types.HistoryEntry, error) {
	u := c.baseURL + historyPath
	if limit > 0 {
		u += "?limit=" + strconv.Itoa(limit)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build history request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	body, status, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		var e types.ErrorResponse
		if json.Unmarshal(body, &e) == nil && e.Error != "" {
			return nil, fmt.Errorf("history: %s", e.Error)
		}
		return nil, fmt.Errorf("history endpoint returned %d", status)
	}

	var resp types.HistoryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode history response: %w", err)
	}
	return resp.Entries, nil
}

func (c *Client) do(req *http.Request) ([]byte, int, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read %s response: %w", req.URL.Path, err)
	}
	if len(body) > maxBodySize {
		return nil, resp.StatusCode, fmt.Errorf("read %s response: %w (limit %d bytes)", req.URL.Path, ErrResponseTooLarge, maxBodySize)
	}
	return body, resp.StatusCode, nil
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
