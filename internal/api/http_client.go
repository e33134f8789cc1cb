package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ngmaloney/divevis/internal/models"
)

const (
	// DefaultBaseURL is where the backend listens when run locally
	DefaultBaseURL   = "http://127.0.0.1:5000"
	defaultUserAgent = "divevis/1.0 (github.com/ngmaloney/divevis)"
)

// Config holds connection settings for HTTPClient
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// HTTPClient implements Client against the backend's REST endpoints
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	logger     *zap.Logger
}

// NewHTTPClient creates a new backend client
func NewHTTPClient(cfg Config, logger *zap.Logger) *HTTPClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &HTTPClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		userAgent: cfg.UserAgent,
		logger:    logger.Named("api"),
	}
}

// SetBaseURL points the client at another backend (useful for testing)
func (c *HTTPClient) SetBaseURL(baseURL string) {
	c.baseURL = strings.TrimRight(baseURL, "/")
}

// BaseURL returns the backend root the client talks to
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// Predict posts a prediction request to /predict
func (c *HTTPClient) Predict(ctx context.Context, req models.PredictionRequest) (*models.PredictionResponse, error) {
	resp, err := c.send(ctx, http.MethodPost, "/predict", req)
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, newAPIError(resp.op, resp.status, resp.body)
	}

	var out models.PredictionResponse
	if err := resp.decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CurrentWeather posts a coordinate to /weather
func (c *HTTPClient) CurrentWeather(ctx context.Context, req models.WeatherRequest) (*models.WeatherResponse, error) {
	resp, err := c.send(ctx, http.MethodPost, "/weather", req)
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, newAPIError(resp.op, resp.status, resp.body)
	}

	var out models.WeatherResponse
	if err := resp.decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListDives fetches every dive. The status code is not checked: whatever JSON
// comes back must be an array, anything else is a *ShapeError.
func (c *HTTPClient) ListDives(ctx context.Context) ([]models.DiveRecord, error) {
	resp, err := c.send(ctx, http.MethodGet, "/dives", nil)
	if err != nil {
		return nil, err
	}

	var raw json.RawMessage
	if err := resp.decode(&raw); err != nil {
		return nil, err
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		c.logger.Warn("Dive list is not an array",
			zap.Int("status", resp.status),
			zap.Int("bytes", len(resp.body)))
		return nil, &ShapeError{Endpoint: "/dives", Reason: "expected a JSON array"}
	}

	dives := make([]models.DiveRecord, 0)
	if err := json.Unmarshal(trimmed, &dives); err != nil {
		return nil, &TransportError{Op: resp.op, Err: errors.Wrap(err, "decoding dives")}
	}
	return dives, nil
}

// CreateDive posts a new dive. The backend answers 201 with the stored record;
// an unreadable success body yields an empty record rather than an error.
func (c *HTTPClient) CreateDive(ctx context.Context, in models.DiveInput) (*models.DiveRecord, error) {
	resp, err := c.send(ctx, http.MethodPost, "/dives", in)
	if err != nil {
		return nil, err
	}
	if resp.status != http.StatusCreated {
		return nil, newAPIError(resp.op, resp.status, resp.body)
	}

	// 201 alone means the dive was stored.
	var out models.DiveRecord
	if err := resp.decode(&out); err != nil {
		c.logger.Debug("Ignoring undecodable create response", zap.Error(err))
		return &models.DiveRecord{}, nil
	}
	return &out, nil
}

// UpdateDive puts a partial dive onto /dives/{id}
func (c *HTTPClient) UpdateDive(ctx context.Context, id string, in models.DiveInput) (*models.DiveRecord, error) {
	resp, err := c.send(ctx, http.MethodPut, "/dives/"+url.PathEscape(id), in)
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, newAPIError(resp.op, resp.status, resp.body)
	}

	// The body is informational; a success status is what matters.
	var out models.DiveRecord
	if err := resp.decode(&out); err != nil {
		c.logger.Debug("Ignoring undecodable update response", zap.String("id", id), zap.Error(err))
		return nil, nil
	}
	return &out, nil
}

// Logbook fetches the flat dive summary from /dives_data
func (c *HTTPClient) Logbook(ctx context.Context) (*models.Logbook, error) {
	resp, err := c.send(ctx, http.MethodGet, "/dives_data", nil)
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, newAPIError(resp.op, resp.status, resp.body)
	}

	var out models.Logbook
	if err := resp.decode(&out); err != nil {
		return nil, err
	}
	if out.Dives == nil {
		return nil, &ShapeError{Endpoint: "/dives_data", Reason: "missing dives list"}
	}
	return &out, nil
}

// response is a fully read HTTP response
type response struct {
	op     string
	status int
	body   []byte
}

func (r *response) ok() bool {
	return r.status >= 200 && r.status < 300
}

func (r *response) decode(target any) error {
	if err := json.Unmarshal(r.body, target); err != nil {
		return &TransportError{Op: r.op, Err: errors.Wrap(err, "decoding response")}
	}
	return nil
}

// send performs one request and reads the whole body. Only network and read
// failures are errors here; status handling is up to the caller.
func (c *HTTPClient) send(ctx context.Context, method, path string, payload any) (*response, error) {
	op := method + " " + path

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, errors.Wrapf(err, "encoding %s body", op)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, errors.Wrapf(err, "creating %s request", op)
	}

	requestID := uuid.NewString()
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Backend request failed",
			zap.String("op", op),
			zap.String("request_id", requestID),
			zap.Error(err))
		return nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: op, Err: errors.Wrap(err, "reading response body")}
	}

	c.logger.Debug("Backend request completed",
		zap.String("op", op),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	return &response{op: op, status: resp.StatusCode, body: data}, nil
}
