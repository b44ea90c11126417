package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ToneGuard/ToneGuard/pkg/app/rephraser"
	"github.com/ToneGuard/ToneGuard/pkg/domain"
)

type rephraseTextHandler struct {
	logger       *logrus.Logger
	rephraseText rephraser.RephraseText
}

func NewRephraseTextHandler(
	logger *logrus.Logger,
	rephraseText rephraser.RephraseText,
) Handler {
	return &rephraseTextHandler{
		logger:       logger,
		rephraseText: rephraseText,
	}
}

func (h *rephraseTextHandler) Handle(c *fiber.Ctx) error {
	var req RephraseTextRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.WithError(err).Error("Failed to bind request")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if req.Text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "text is required"})
	}

	rephrase, err := h.rephraseText.Rephrase(c.Context(), rephraser.Request{
		Text:          req.Text,
		TokenOverride: req.HuggingFaceToken,
	})
	if err != nil {
		h.logger.WithError(err).Error("rephrasing failed")
		return c.Status(domain.HTTPStatus(err)).JSON(fiber.Map{"error": toErrorDTO(err)})
	}

	return c.Status(fiber.StatusOK).JSON(RephraseTextResponse{
		ID:       uuid.NewString(),
		Rephrase: rephrase,
	})
}
