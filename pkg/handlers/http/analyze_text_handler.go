package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ToneGuard/ToneGuard/pkg/app/analyzer"
	"github.com/ToneGuard/ToneGuard/pkg/app/rephraser"
	"github.com/ToneGuard/ToneGuard/pkg/domain"
)

const (
	insightToxic    = "Toxic content detected."
	insightNonToxic = "Content appears non-toxic."
)

type analyzeTextHandler struct {
	logger          *logrus.Logger
	analyzeText     analyzer.AnalyzeText
	rephraseText    rephraser.RephraseText
	rephraseEnabled bool
}

func NewAnalyzeTextHandler(
	logger *logrus.Logger,
	analyzeText analyzer.AnalyzeText,
	rephraseText rephraser.RephraseText,
	rephraseEnabled bool,
) Handler {
	return &analyzeTextHandler{
		logger:          logger,
		analyzeText:     analyzeText,
		rephraseText:    rephraseText,
		rephraseEnabled: rephraseEnabled,
	}
}

// Handle scores the submitted text and, when the verdict is toxic and
// rephrasing is available, attaches a rephrased rendition. A rephrase
// failure never masks a successful moderation verdict.
func (h *analyzeTextHandler) Handle(c *fiber.Ctx) error {
	var req AnalyzeTextRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.WithError(err).Error("Failed to bind request")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if req.Text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "text is required"})
	}

	moderation, err := h.analyzeText.Analyze(c.Context(), analyzer.Request{
		Text:        req.Text,
		KeyOverride: req.PerspectiveAPIKey,
	})
	if err != nil {
		h.logger.WithError(err).Error("toxicity analysis failed")
		return c.Status(domain.HTTPStatus(err)).JSON(fiber.Map{"error": toErrorDTO(err)})
	}

	resp := AnalyzeTextResponse{
		ID:         uuid.NewString(),
		Moderation: moderation,
		Insight:    insightNonToxic,
	}

	if moderation.Toxic {
		resp.Insight = insightToxic

		wantRephrase := h.rephraseEnabled
		if req.Rephrase != nil {
			wantRephrase = wantRephrase && *req.Rephrase
		}

		if wantRephrase {
			rephrase, err := h.rephraseText.Rephrase(c.Context(), rephraser.Request{
				Text:          req.Text,
				TokenOverride: req.HuggingFaceToken,
			})
			if err != nil {
				h.logger.WithError(err).Warn("rephrasing failed")
				resp.RephraseError = toErrorDTO(err)
			} else {
				resp.Rephrase = rephrase
			}
		}
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

func toErrorDTO(err error) *ErrorDTO {
	if reqErr, ok := domain.AsRequestError(err); ok {
		return &ErrorDTO{
			Kind:    string(reqErr.Kind),
			Message: reqErr.Message,
		}
	}
	return &ErrorDTO{
		Kind:    "internal",
		Message: err.Error(),
	}
}
