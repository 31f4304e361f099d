package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"wellbeing/internal/domain"
	"wellbeing/internal/scoring"
)

var (
	ErrInvalidResponse = errors.New("invalid generator response")
)

type Config struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

// Client calls the serverless recommendation function over HTTP.
type Client struct {
	url        string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
}

func NewClient(cfg Config) (*Client, error) {
	url := strings.TrimSpace(cfg.URL)
	if url == "" {
		return nil, errors.New("generator url is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		url:        url,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		timeout:    cfg.Timeout,
		httpClient: &http.Client{},
	}, nil
}

type generateRequest struct {
	Scores      scoring.Breakdown  `json:"scores"`
	UserProfile domain.UserProfile `json:"userProfile"`
	Responses   []domain.Response  `json:"responses"`
}

type generateResponse struct {
	Recommendations json.RawMessage `json:"recommendations"`
	Error           any             `json:"error"`
}

// Generate posts the scores and returns the function's recommendations.
func (c *Client) Generate(ctx context.Context, scores scoring.Breakdown, profile domain.UserProfile, responses []domain.Response) ([]domain.Recommendation, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if responses == nil {
		responses = []domain.Response{}
	}
	payload, err := json.Marshal(generateRequest{Scores: scores, UserProfile: profile, Responses: responses})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("generator status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return parseRecommendations(body)
}

// parseRecommendations accepts either a bare list or {"recommendations": [...]}.
// An "error" field or anything that is not a list is a failure.
func parseRecommendations(body []byte) ([]domain.Recommendation, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrInvalidResponse)
	}
	if trimmed[0] == '[' {
		return decodeList(trimmed)
	}
	var envelope generateResponse
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if envelope.Error != nil && envelope.Error != false && envelope.Error != "" {
		return nil, fmt.Errorf("generator error: %v", envelope.Error)
	}
	list := bytes.TrimSpace(envelope.Recommendations)
	if len(list) == 0 || list[0] != '[' {
		return nil, fmt.Errorf("%w: recommendations is not a list", ErrInvalidResponse)
	}
	return decodeList(list)
}

func decodeList(raw []byte) ([]domain.Recommendation, error) {
	var out []domain.Recommendation
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if out == nil {
		out = []domain.Recommendation{}
	}
	return out, nil
}
