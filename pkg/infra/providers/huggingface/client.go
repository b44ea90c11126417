package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/valyala/fastjson"

	"github.com/ToneGuard/ToneGuard/pkg/domain"
	"github.com/ToneGuard/ToneGuard/pkg/infra/httpx"
	"github.com/ToneGuard/ToneGuard/pkg/infra/providers"
)

const (
	InferenceBaseURL = "https://api-inference.huggingface.co/models/"
	WhoamiURL        = "https://huggingface.co/api/whoami-v2"
	DefaultModel     = "mistralai/Mistral-7B-Instruct-v0.2"

	target = "inference API"
)

type inferenceRequest struct {
	Inputs     string              `json:"inputs"`
	Parameters inferenceParameters `json:"parameters"`
}

type inferenceParameters struct {
	MaxNewTokens int     `json:"max_new_tokens"`
	Temperature  float64 `json:"temperature"`
	TopP         float64 `json:"top_p"`
}

type client struct {
	httpClient httpx.Client
	breaker    httpx.CircuitBreaker
	logger     *logrus.Logger
}

func NewClient(logger *logrus.Logger, httpClient httpx.Client, breaker httpx.CircuitBreaker) providers.Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &client{
		httpClient: httpClient,
		breaker:    breaker,
		logger:     logger,
	}
}

func (c *client) Rephrase(
	ctx context.Context,
	config *providers.Config,
	prompt string,
) (*providers.CompletionResponse, error) {
	if config.Credentials.ApiKey == "" {
		return nil, domain.NewMissingCredentialError(target + " token")
	}

	model := config.Model
	if model == "" {
		model = DefaultModel
	}
	endpoint := config.Endpoint
	if endpoint == "" {
		endpoint = InferenceBaseURL + model
	}

	payload := inferenceRequest{
		Inputs: prompt,
		Parameters: inferenceParameters{
			MaxNewTokens: config.MaxNewTokens,
			Temperature:  config.Temperature,
			TopP:         config.TopP,
		},
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal inference request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+config.Credentials.ApiKey)

	var httpResp *http.Response
	call := func() error {
		var doErr error
		httpResp, doErr = c.httpClient.Do(httpReq)
		return doErr
	}
	if c.breaker != nil {
		err = c.breaker.Execute(call)
	} else {
		err = call()
	}
	if err != nil {
		if httpx.IsTimeout(err) {
			return nil, domain.NewTimeoutError(target, err)
		}
		return nil, fmt.Errorf("failed to send inference request: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if httpResp.StatusCode == http.StatusServiceUnavailable {
		// Hosted models are spun down when idle; 503 means "warming up".
		return nil, domain.NewModelLoadingError()
	}
	if httpResp.StatusCode != http.StatusOK {
		c.logger.WithFields(logrus.Fields{
			"status_code": httpResp.StatusCode,
			"response":    string(body),
		}).Error("inference API returned error")
		return nil, domain.NewAPIStatusError(target, httpResp.StatusCode, fmt.Errorf("%s", body))
	}

	text, err := extractGeneratedText(body)
	if err != nil {
		return nil, domain.NewInvalidResponseError(target, err)
	}

	return &providers.CompletionResponse{
		ID:       model,
		Model:    model,
		Response: text,
	}, nil
}

// extractGeneratedText handles the variable response shapes of the hosted
// inference endpoint: normally a list whose first element has a
// generated_text field, otherwise the first element (or the whole payload)
// stringified.
func extractGeneratedText(body []byte) (string, error) {
	v, err := fastjson.ParseBytes(body)
	if err != nil {
		return "", fmt.Errorf("response is not valid JSON: %w", err)
	}

	if v.Type() == fastjson.TypeArray {
		arr := v.GetArray()
		if len(arr) == 0 {
			return strings.TrimSpace(v.String()), nil
		}
		first := arr[0]
		if gt := first.GetStringBytes("generated_text"); gt != nil {
			return strings.TrimSpace(string(gt)), nil
		}
		return strings.TrimSpace(first.String()), nil
	}

	return strings.TrimSpace(v.String()), nil
}
