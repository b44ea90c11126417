package perspective

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ToneGuard/ToneGuard/pkg/domain"
	"github.com/ToneGuard/ToneGuard/pkg/domain/analysis"
	"github.com/ToneGuard/ToneGuard/pkg/infra/httpx"
	"github.com/ToneGuard/ToneGuard/pkg/infra/moderation"
)

const (
	AnalyzeURL     = "https://commentanalyzer.googleapis.com/v1alpha1/comments:analyze"
	DefaultTimeout = 10 * time.Second

	target = "moderation API"
)

type AnalyzeRequest struct {
	Comment             Comment                  `json:"comment"`
	RequestedAttributes map[string]AttributeSpec `json:"requestedAttributes"`
}

type Comment struct {
	Text string `json:"text"`
}

type AttributeSpec struct{}

type AnalyzeResponse struct {
	AttributeScores map[string]AttributeScore `json:"attributeScores"`
}

type AttributeScore struct {
	SummaryScore SummaryScore `json:"summaryScore"`
}

type SummaryScore struct {
	Value float64 `json:"value"`
}

type client struct {
	httpClient httpx.Client
	logger     *logrus.Logger
	endpoint   string
	timeout    time.Duration
	threshold  float64
}

type Option func(*client)

func WithEndpoint(endpoint string) Option {
	return func(c *client) {
		if endpoint != "" {
			c.endpoint = endpoint
		}
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithThreshold overrides the score above which content is judged toxic.
func WithThreshold(threshold float64) Option {
	return func(c *client) {
		if threshold > 0 {
			c.threshold = threshold
		}
	}
}

func NewClient(logger *logrus.Logger, httpClient httpx.Client, opts ...Option) moderation.Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	c := &client{
		httpClient: httpClient,
		logger:     logger,
		endpoint:   AnalyzeURL,
		timeout:    DefaultTimeout,
		threshold:  analysis.ToxicityThreshold,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *client) Analyze(ctx context.Context, text, apiKey string) (*analysis.ModerationResult, error) {
	if apiKey == "" {
		return nil, domain.NewMissingCredentialError(target + " key")
	}

	body := AnalyzeRequest{
		Comment:             Comment{Text: text},
		RequestedAttributes: map[string]AttributeSpec{"TOXICITY": {}},
	}
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal analyze request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := c.endpoint + "?key=" + url.QueryEscape(apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if httpx.IsTimeout(err) {
			return nil, domain.NewTimeoutError(target, err)
		}
		return nil, fmt.Errorf("failed to send analyze request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		c.logger.WithFields(logrus.Fields{
			"status_code": httpResp.StatusCode,
			"response":    string(respBody),
		}).Error("moderation API returned error")
		return nil, domain.NewAPIStatusError(target, httpResp.StatusCode, fmt.Errorf("%s", respBody))
	}

	var analyzeResp AnalyzeResponse
	if err := json.Unmarshal(respBody, &analyzeResp); err != nil {
		return nil, domain.NewInvalidResponseError(target, err)
	}

	toxicity, ok := analyzeResp.AttributeScores["TOXICITY"]
	if !ok {
		return nil, domain.NewInvalidResponseError(target, fmt.Errorf("missing TOXICITY attribute score"))
	}

	result := analysis.NewModerationResultWithThreshold(toxicity.SummaryScore.Value, c.threshold)
	c.logger.WithFields(logrus.Fields{
		"score": result.Score,
		"toxic": result.Toxic,
	}).Debug("toxicity analysis completed")

	return result, nil
}
