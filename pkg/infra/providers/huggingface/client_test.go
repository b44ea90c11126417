package huggingface_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ToneGuard/ToneGuard/pkg/domain"
	"github.com/ToneGuard/ToneGuard/pkg/infra/httpx"
	httpxmocks "github.com/ToneGuard/ToneGuard/pkg/infra/httpx/mocks"
	"github.com/ToneGuard/ToneGuard/pkg/infra/providers"
	"github.com/ToneGuard/ToneGuard/pkg/infra/providers/huggingface"
)

func hfConfig(endpoint string) *providers.Config {
	return &providers.Config{
		Credentials:  providers.Credentials{ApiKey: "hf-token"},
		Endpoint:     endpoint,
		MaxNewTokens: 150,
		Temperature:  0.7,
		TopP:         0.9,
	}
}

func TestClient_Rephrase_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer hf-token", r.Header.Get("Authorization"))

		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Contains(t, payload["inputs"], "you are horrible")
		params, ok := payload["parameters"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, float64(150), params["max_new_tokens"])
		assert.Equal(t, 0.7, params["temperature"])
		assert.Equal(t, 0.9, params["top_p"])

		_, _ = w.Write([]byte(`[{"generated_text":"  You are rather unpleasant.  "}]`))
	}))
	defer server.Close()

	client := huggingface.NewClient(logrus.New(), &http.Client{}, nil)

	resp, err := client.Rephrase(context.Background(), hfConfig(server.URL), `Rephrase: "you are horrible"`)
	require.NoError(t, err)
	assert.Equal(t, "You are rather unpleasant.", resp.Response)
}

func TestClient_Rephrase_MissingTokenSkipsRequest(t *testing.T) {
	mockClient := new(httpxmocks.MockHTTPClient)
	client := huggingface.NewClient(logrus.New(), mockClient, nil)

	cfg := hfConfig("")
	cfg.Credentials.ApiKey = ""

	_, err := client.Rephrase(context.Background(), cfg, "prompt")
	require.Error(t, err)

	reqErr, ok := domain.AsRequestError(err)
	require.True(t, ok)
	assert.Equal(t, domain.KindMissingCredential, reqErr.Kind)
	mockClient.AssertNotCalled(t, "Do")
}

func TestClient_Rephrase_ModelLoading(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"Model mistralai/Mistral-7B-Instruct-v0.2 is currently loading"}`))
	}))
	defer server.Close()

	client := huggingface.NewClient(logrus.New(), &http.Client{}, nil)

	_, err := client.Rephrase(context.Background(), hfConfig(server.URL), "prompt")
	require.Error(t, err)

	reqErr, ok := domain.AsRequestError(err)
	require.True(t, ok)
	assert.Equal(t, domain.KindModelLoading, reqErr.Kind)
	assert.Equal(t, domain.ModelLoadingMessage, reqErr.Message)
}

func TestClient_Rephrase_StatusClassification(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"invalid token"}`))
	}))
	defer server.Close()

	client := huggingface.NewClient(logrus.New(), &http.Client{}, nil)

	_, err := client.Rephrase(context.Background(), hfConfig(server.URL), "prompt")
	require.Error(t, err)

	reqErr, ok := domain.AsRequestError(err)
	require.True(t, ok)
	assert.Equal(t, domain.KindAPIStatus, reqErr.Kind)
	assert.Equal(t, http.StatusForbidden, reqErr.StatusCode)
	assert.Contains(t, reqErr.Message, "check API enabled/permissions?")
}

func TestClient_Rephrase_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := huggingface.NewClient(logrus.New(), &http.Client{}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.Rephrase(ctx, hfConfig(server.URL), "prompt")
	require.Error(t, err)

	reqErr, ok := domain.AsRequestError(err)
	require.True(t, ok)
	assert.Equal(t, domain.KindTimeout, reqErr.Kind)
}

func TestClient_Rephrase_FallbackResponseShapes(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected string
	}{
		{
			name:     "first element without generated_text is stringified",
			body:     `[{"summary_text":"something else"}]`,
			expected: `{"summary_text":"something else"}`,
		},
		{
			name:     "non-array payload is stringified",
			body:     `{"error_free":"unexpected object"}`,
			expected: `{"error_free":"unexpected object"}`,
		},
		{
			name:     "empty array is stringified",
			body:     `[]`,
			expected: `[]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := huggingface.NewClient(logrus.New(), &http.Client{}, nil)

			resp, err := client.Rephrase(context.Background(), hfConfig(server.URL), "prompt")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, resp.Response)
		})
	}
}

func TestClient_Rephrase_WithBreaker(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"generated_text":"ok"}]`))
	}))
	defer server.Close()

	breaker := httpx.NewCircuitBreaker("hf-test", 30*time.Second, 3)
	client := huggingface.NewClient(logrus.New(), &http.Client{}, breaker)

	resp, err := client.Rephrase(context.Background(), hfConfig(server.URL), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Response)
}

func TestTokenVerifier_Verify(t *testing.T) {
	t.Run("valid token", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer hf-token", r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(`{"name":"someone"}`))
		}))
		defer server.Close()

		verifier := huggingface.NewTokenVerifierWithEndpoint(&http.Client{}, server.URL)
		assert.NoError(t, verifier.Verify(context.Background(), "hf-token"))
	})

	t.Run("rejected token", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		verifier := huggingface.NewTokenVerifierWithEndpoint(&http.Client{}, server.URL)
		err := verifier.Verify(context.Background(), "bad-token")
		require.Error(t, err)

		reqErr, ok := domain.AsRequestError(err)
		require.True(t, ok)
		assert.Equal(t, domain.KindAPIStatus, reqErr.Kind)
	})

	t.Run("empty token fails without a request", func(t *testing.T) {
		mockClient := new(httpxmocks.MockHTTPClient)
		verifier := huggingface.NewTokenVerifier(mockClient)

		err := verifier.Verify(context.Background(), "")
		require.Error(t, err)

		reqErr, ok := domain.AsRequestError(err)
		require.True(t, ok)
		assert.Equal(t, domain.KindMissingCredential, reqErr.Kind)
		mockClient.AssertNotCalled(t, "Do")
	})
}
