package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ToneGuard/ToneGuard/pkg/app/analyzer"
	analyzerMocks "github.com/ToneGuard/ToneGuard/pkg/app/analyzer/mocks"
	"github.com/ToneGuard/ToneGuard/pkg/app/rephraser"
	rephraserMocks "github.com/ToneGuard/ToneGuard/pkg/app/rephraser/mocks"
	"github.com/ToneGuard/ToneGuard/pkg/domain"
	"github.com/ToneGuard/ToneGuard/pkg/domain/analysis"
)

func setupAnalyzeApp(
	analyzeText analyzer.AnalyzeText,
	rephraseText rephraser.RephraseText,
	rephraseEnabled bool,
) *fiber.App {
	handler := NewAnalyzeTextHandler(logrus.New(), analyzeText, rephraseText, rephraseEnabled)
	app := fiber.New()
	app.Post("/api/v1/analyze", handler.Handle)
	return app
}

func postAnalyze(t *testing.T, app *fiber.App, body interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func decodeAnalyzeResponse(t *testing.T, resp *http.Response) AnalyzeTextResponse {
	t.Helper()
	var out AnalyzeTextResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestAnalyzeTextHandler_NonToxic(t *testing.T) {
	analyzeText := new(analyzerMocks.AnalyzeText)
	analyzeText.On("Analyze", mock.Anything, analyzer.Request{Text: "have a nice day"}).
		Return(analysis.NewModerationResult(0.05), nil)
	rephraseText := new(rephraserMocks.RephraseText)

	app := setupAnalyzeApp(analyzeText, rephraseText, true)
	resp := postAnalyze(t, app, AnalyzeTextRequest{Text: "have a nice day"})

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	out := decodeAnalyzeResponse(t, resp)
	assert.NotEmpty(t, out.ID)
	assert.False(t, out.Moderation.Toxic)
	assert.Equal(t, "Content appears non-toxic.", out.Insight)
	assert.Nil(t, out.Rephrase)
	rephraseText.AssertNotCalled(t, "Rephrase")
}

func TestAnalyzeTextHandler_ToxicWithRephrase(t *testing.T) {
	analyzeText := new(analyzerMocks.AnalyzeText)
	analyzeText.On("Analyze", mock.Anything, analyzer.Request{Text: "you are horrible"}).
		Return(analysis.NewModerationResult(0.92), nil)

	rephraseText := new(rephraserMocks.RephraseText)
	rephraseText.On("Rephrase", mock.Anything, rephraser.Request{Text: "you are horrible"}).
		Return(&analysis.RephraseResult{
			Text:     "You are rather unpleasant.",
			Provider: "huggingface",
		}, nil)

	app := setupAnalyzeApp(analyzeText, rephraseText, true)
	resp := postAnalyze(t, app, AnalyzeTextRequest{Text: "you are horrible"})

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	out := decodeAnalyzeResponse(t, resp)
	assert.True(t, out.Moderation.Toxic)
	assert.Equal(t, "Toxic content detected.", out.Insight)
	require.NotNil(t, out.Rephrase)
	assert.Equal(t, "You are rather unpleasant.", out.Rephrase.Text)
	assert.Nil(t, out.RephraseError)
}

func TestAnalyzeTextHandler_RephraseFailureDoesNotMaskVerdict(t *testing.T) {
	analyzeText := new(analyzerMocks.AnalyzeText)
	analyzeText.On("Analyze", mock.Anything, mock.Anything).
		Return(analysis.NewModerationResult(0.92), nil)

	rephraseText := new(rephraserMocks.RephraseText)
	rephraseText.On("Rephrase", mock.Anything, mock.Anything).
		Return(nil, domain.NewModelLoadingError())

	app := setupAnalyzeApp(analyzeText, rephraseText, true)
	resp := postAnalyze(t, app, AnalyzeTextRequest{Text: "you are horrible"})

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	out := decodeAnalyzeResponse(t, resp)
	assert.True(t, out.Moderation.Toxic)
	assert.Nil(t, out.Rephrase)
	require.NotNil(t, out.RephraseError)
	assert.Equal(t, string(domain.KindModelLoading), out.RephraseError.Kind)
	assert.Equal(t, domain.ModelLoadingMessage, out.RephraseError.Message)
}

func TestAnalyzeTextHandler_MissingTokenSurfacesRephraseError(t *testing.T) {
	analyzeText := new(analyzerMocks.AnalyzeText)
	analyzeText.On("Analyze", mock.Anything, mock.Anything).
		Return(analysis.NewModerationResult(0.92), nil)

	rephraseText := new(rephraserMocks.RephraseText)
	rephraseText.On("Rephrase", mock.Anything, mock.Anything).
		Return(nil, domain.NewMissingCredentialError("HUGGINGFACE_TOKEN"))

	app := setupAnalyzeApp(analyzeText, rephraseText, true)
	resp := postAnalyze(t, app, AnalyzeTextRequest{Text: "you are horrible"})

	// The verdict must arrive with a classified error, never silently
	// without a rephrase attempt.
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	out := decodeAnalyzeResponse(t, resp)
	assert.True(t, out.Moderation.Toxic)
	assert.Nil(t, out.Rephrase)
	require.NotNil(t, out.RephraseError)
	assert.Equal(t, string(domain.KindMissingCredential), out.RephraseError.Kind)
	rephraseText.AssertCalled(t, "Rephrase", mock.Anything, mock.Anything)
}

func TestAnalyzeTextHandler_RephraseDisabled(t *testing.T) {
	analyzeText := new(analyzerMocks.AnalyzeText)
	analyzeText.On("Analyze", mock.Anything, mock.Anything).
		Return(analysis.NewModerationResult(0.92), nil)
	rephraseText := new(rephraserMocks.RephraseText)

	app := setupAnalyzeApp(analyzeText, rephraseText, false)
	resp := postAnalyze(t, app, AnalyzeTextRequest{Text: "you are horrible"})

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	out := decodeAnalyzeResponse(t, resp)
	assert.True(t, out.Moderation.Toxic)
	assert.Nil(t, out.Rephrase)
	rephraseText.AssertNotCalled(t, "Rephrase")
}

func TestAnalyzeTextHandler_RephraseOptOut(t *testing.T) {
	analyzeText := new(analyzerMocks.AnalyzeText)
	analyzeText.On("Analyze", mock.Anything, mock.Anything).
		Return(analysis.NewModerationResult(0.92), nil)
	rephraseText := new(rephraserMocks.RephraseText)

	optOut := false
	app := setupAnalyzeApp(analyzeText, rephraseText, true)
	resp := postAnalyze(t, app, AnalyzeTextRequest{Text: "you are horrible", Rephrase: &optOut})

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	rephraseText.AssertNotCalled(t, "Rephrase")
}

func TestAnalyzeTextHandler_EmptyText(t *testing.T) {
	analyzeText := new(analyzerMocks.AnalyzeText)
	rephraseText := new(rephraserMocks.RephraseText)

	app := setupAnalyzeApp(analyzeText, rephraseText, true)
	resp := postAnalyze(t, app, AnalyzeTextRequest{Text: ""})

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	analyzeText.AssertNotCalled(t, "Analyze")
}

func TestAnalyzeTextHandler_ErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{"missing credential", domain.NewMissingCredentialError("Perspective API key"), fiber.StatusBadRequest},
		{"timeout", domain.NewTimeoutError("moderation API", nil), fiber.StatusGatewayTimeout},
		{"api status", domain.NewAPIStatusError("moderation API", 403, nil), fiber.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analyzeText := new(analyzerMocks.AnalyzeText)
			analyzeText.On("Analyze", mock.Anything, mock.Anything).Return(nil, tt.err)
			rephraseText := new(rephraserMocks.RephraseText)

			app := setupAnalyzeApp(analyzeText, rephraseText, true)
			resp := postAnalyze(t, app, AnalyzeTextRequest{Text: "text"})

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestAnalyzeTextHandler_OverridesAreForwarded(t *testing.T) {
	analyzeText := new(analyzerMocks.AnalyzeText)
	analyzeText.On("Analyze", mock.Anything, analyzer.Request{
		Text:        "you are horrible",
		KeyOverride: "request-key",
	}).Return(analysis.NewModerationResult(0.92), nil)

	rephraseText := new(rephraserMocks.RephraseText)
	rephraseText.On("Rephrase", mock.Anything, rephraser.Request{
		Text:          "you are horrible",
		TokenOverride: "request-token",
	}).Return(&analysis.RephraseResult{Text: "ok"}, nil)

	app := setupAnalyzeApp(analyzeText, rephraseText, true)
	resp := postAnalyze(t, app, AnalyzeTextRequest{
		Text:              "you are horrible",
		PerspectiveAPIKey: "request-key",
		HuggingFaceToken:  "request-token",
	})

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	analyzeText.AssertExpectations(t)
	rephraseText.AssertExpectations(t)
}
