package jamai

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
	"time"

	"github.com/zatekoja/clinicassistant/internal/domain/providers"
	"github.com/zatekoja/clinicassistant/internal/infrastructure/observability"
	"github.com/zatekoja/clinicassistant/pkg/config"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	listPageSize         = 100
	fallbackListPageSize = 200
	maxErrorBodyBytes    = 1 << 20
)

// Client talks to the hosted gen_tables API.
type Client struct {
	apiKey     string
	projectID  string
	baseURL    string
	httpClient *http.Client
	limiter    *tokenBucket
}

// NewClient creates a new gen_tables client. An empty API key is accepted so the
// service can still start and report the misconfiguration per request.
func NewClient(cfg *config.JamAIConfig) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("jamai config is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil || cfg.BaseURL == "" {
		return nil, fmt.Errorf("invalid jamai base url %q", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		apiKey:    cfg.APIKey,
		projectID: cfg.ProjectID,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: newTokenBucket(cfg.RateLimitRPM, cfg.RateLimitBurst),
	}, nil
}

// Close releases the rate limiter
func (c *Client) Close() {
	if c.limiter != nil {
		c.limiter.Stop()
	}
}

var _ providers.GenTablesProvider = (*Client)(nil)

// AddRow appends one row with stream disabled and returns the generated columns
// of the first row in the response.
func (c *Client) AddRow(ctx context.Context, kind providers.TableKind, tableID string, data map[string]interface{}) (*providers.GeneratedRow, error) {
	payload := addRowsRequest{
		TableID: tableID,
		Data:    []map[string]interface{}{data},
		Stream:  false,
	}

	var envelope addRowsResponse
	endpoint := fmt.Sprintf("%s/api/v1/gen_tables/%s/rows/add", c.baseURL, kind)
	if err := c.doJSON(ctx, "add_rows", kind, http.MethodPost, endpoint, payload, &envelope); err != nil {
		return nil, err
	}

	return envelope.firstRow(), nil
}

// ListRows lists a table's rows through the v2 endpoint, retrying once against
// the v1 path when v2 answers with a non-2xx status.
func (c *Client) ListRows(ctx context.Context, kind providers.TableKind, tableID string) ([]map[string]interface{}, error) {
	primary := c.listRowsURL("/api/v2/gen_tables/%s/rows/list", kind, tableID, listPageSize, false)

	var body interface{}
	err := c.doJSON(ctx, "list_rows", kind, http.MethodGet, primary, nil, &body)
	if err != nil {
		var upstream *providers.UpstreamError
		if !errors.As(err, &upstream) {
			return nil, err
		}

		observability.LoggerFromContext(ctx).Warn().
			Int("status", upstream.StatusCode).
			Str("table_id", tableID).
			Msg("v2 list rows failed, trying v1 path")

		fallback := c.listRowsURL("/api/v1/gen_tables/%s/rows", kind, tableID, fallbackListPageSize, true)
		body = nil
		if err := c.doJSON(ctx, "list_rows_v1", kind, http.MethodGet, fallback, nil, &body); err != nil {
			return nil, err
		}
	}

	return extractRows(body)
}

// UpdateRow writes cells of one row and returns the decoded response body
func (c *Client) UpdateRow(ctx context.Context, kind providers.TableKind, tableID, rowID string, data map[string]interface{}) (interface{}, error) {
	payload := updateRowRequest{
		TableID:   tableID,
		RowID:     rowID,
		ProjectID: c.projectID,
		Data:      data,
	}

	var body interface{}
	endpoint := fmt.Sprintf("%s/api/v1/gen_tables/%s/rows/update", c.baseURL, kind)
	if err := c.doJSON(ctx, "update_row", kind, http.MethodPost, endpoint, payload, &body); err != nil {
		return nil, err
	}
	return body, nil
}

// ListTables lists the tables of a family with row counts. The body is decoded
// leniently: an unreadable success body becomes an empty object.
func (c *Client) ListTables(ctx context.Context, kind providers.TableKind) (interface{}, error) {
	parsed, err := url.Parse(fmt.Sprintf("%s/api/v1/gen_tables/%s/tables", c.baseURL, kind))
	if err != nil {
		return nil, err
	}
	query := parsed.Query()
	query.Set("count_rows", "true")
	if c.projectID != "" {
		query.Set("project_id", c.projectID)
	}
	parsed.RawQuery = query.Encode()

	var body interface{}
	if err := c.doJSON(ctx, "list_tables", kind, http.MethodGet, parsed.String(), nil, &body); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) || errors.Is(err, io.EOF) {
			return map[string]interface{}{}, nil
		}
		return nil, err
	}
	return body, nil
}

func (c *Client) listRowsURL(pathFormat string, kind providers.TableKind, tableID string, limit int, projectInQuery bool) string {
	query := url.Values{}
	query.Set("table_id", tableID)
	query.Set("limit", strconv.Itoa(limit))
	query.Set("offset", "0")
	if projectInQuery && c.projectID != "" {
		query.Set("project_id", c.projectID)
	}
	return fmt.Sprintf("%s"+pathFormat, c.baseURL, kind) + "?" + query.Encode()
}

func (c *Client) doJSON(ctx context.Context, operation string, kind providers.TableKind, method, endpoint string, payload interface{}, out interface{}) error {
	ctx, span := observability.StartSpan(ctx, "jamai."+operation)
	defer span.End()
	span.SetAttributes(
		attribute.String("jamai.operation", operation),
		attribute.String("jamai.table_kind", string(kind)),
	)

	if c.limiter != nil {
		waitStart := time.Now()
		if err := c.limiter.Wait(ctx); err != nil {
			recordJamAIMetric(ctx, operation, kind, 0, 0, err)
			return err
		}
		recordJamAIRateLimitWait(ctx, operation, time.Since(waitStart))
	}

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal %s payload: %w", operation, err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", operation, err)
	}
	c.addHeaders(req, payload != nil)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		recordJamAIMetric(ctx, operation, kind, 0, time.Since(start), err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport error")
		return fmt.Errorf("%s request failed: %w", operation, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		upstream := newUpstreamError(resp)
		recordJamAIMetric(ctx, operation, kind, resp.StatusCode, time.Since(start), upstream)
		span.SetStatus(codes.Error, upstream.Error())
		return upstream
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		recordJamAIMetric(ctx, operation, kind, resp.StatusCode, time.Since(start), err)
		return fmt.Errorf("failed to decode %s response: %w", operation, err)
	}

	recordJamAIMetric(ctx, operation, kind, resp.StatusCode, time.Since(start), nil)
	return nil
}

func (c *Client) addHeaders(req *http.Request, hasBody bool) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.projectID != "" {
		req.Header.Set("X-PROJECT-ID", c.projectID)
	}
}

// newUpstreamError reads the error body, keeping its "message" when present
func newUpstreamError(resp *http.Response) *providers.UpstreamError {
	upstream := &providers.UpstreamError{StatusCode: resp.StatusCode}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	if err != nil || len(raw) == 0 {
		upstream.Body = map[string]interface{}{}
		return upstream
	}

	var decoded interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		upstream.Body = map[string]interface{}{}
		return upstream
	}
	upstream.Body = decoded

	if obj, ok := decoded.(map[string]interface{}); ok {
		if msg, ok := obj["message"].(string); ok {
			upstream.Message = msg
		}
	}
	return upstream
}
