package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jcdigital/lms-grading-api/internal/dto"
	"github.com/jcdigital/lms-grading-api/internal/service"
	"github.com/jcdigital/lms-grading-api/internal/utils"
)

// GradingHandler wires the attempt grading and course weight endpoints.
type GradingHandler struct {
	service service.GradingService
	logger  zerolog.Logger
}

// NewGradingHandler constructs the handler.
func NewGradingHandler(service service.GradingService, logger zerolog.Logger) *GradingHandler {
	return &GradingHandler{
		service: service,
		logger:  logger.With().Str("component", "grading_handler").Logger(),
	}
}

// Register attaches grading endpoints to the router group, with the given
// guards (typically role enforcement) in front of every route.
func (h *GradingHandler) Register(router fiber.Router, guards ...fiber.Handler) {
	gradeChain := append(append([]fiber.Handler{}, guards...), h.gradeAttempt)
	weightsChain := append(append([]fiber.Handler{}, guards...), h.validateWeights)
	router.Post("/attempts/:id/grade", gradeChain...)
	router.Get("/courses/:id/evaluation-weights", weightsChain...)
}

func (h *GradingHandler) gradeAttempt(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	payload := dto.GradeAttemptRequest{}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&payload); err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
		}
	}

	result, err := h.service.GradeAttempt(c.Context(), id, payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAttemptNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "attempt not found")
		case errors.Is(err, service.ErrAttemptNotCompleted), errors.Is(err, service.ErrScoreMissing):
			return utils.SendError(c, fiber.StatusConflict, err.Error())
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Uint("attempt_id", id).Msg("failed to grade attempt")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to grade attempt")
		}
	}

	return utils.SendSuccess(c, "attempt graded", result)
}

func (h *GradingHandler) validateWeights(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	result, err := h.service.ValidateCourseWeights(c.Context(), id)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Uint("course_id", id).Msg("failed to validate course weights")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to validate course weights")
	}

	return utils.SendSuccess(c, "weight configuration checked", result)
}
