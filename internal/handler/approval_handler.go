package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jcdigital/lms-grading-api/internal/dto"
	"github.com/jcdigital/lms-grading-api/internal/grading"
	"github.com/jcdigital/lms-grading-api/internal/observability"
	"github.com/jcdigital/lms-grading-api/internal/service"
	"github.com/jcdigital/lms-grading-api/internal/utils"
)

// ApprovalHandler wires the enrollment approval workflow endpoints.
type ApprovalHandler struct {
	approvals   service.ApprovalService
	transcripts service.TranscriptService
	reviews     service.ReviewService
	logger      zerolog.Logger
}

// NewApprovalHandler constructs the handler.
func NewApprovalHandler(
	approvals service.ApprovalService,
	transcripts service.TranscriptService,
	reviews service.ReviewService,
	logger zerolog.Logger,
) *ApprovalHandler {
	return &ApprovalHandler{
		approvals:   approvals,
		transcripts: transcripts,
		reviews:     reviews,
		logger:      logger.With().Str("component", "approval_handler").Logger(),
	}
}

// ApprovalRouteGuards carries the extra middleware applied per route class:
// Staff in front of recalculation and the review log, Decision in front of
// approve/reject, typically role enforcement plus rate limiting.
type ApprovalRouteGuards struct {
	Staff    []fiber.Handler
	Decision []fiber.Handler
}

// Register attaches enrollment endpoints to the router group. The
// transcript stays readable by any authenticated role.
func (h *ApprovalHandler) Register(router fiber.Router, guards ApprovalRouteGuards) {
	router.Get("/:id/transcript", h.transcript)

	recalcChain := append(append([]fiber.Handler{}, guards.Staff...), h.recalculate)
	requirementsChain := append(append([]fiber.Handler{}, guards.Staff...), h.requirements)
	reviewsChain := append(append([]fiber.Handler{}, guards.Staff...), h.listReviews)
	router.Post("/:id/recalculate", recalcChain...)
	router.Get("/:id/requirements", requirementsChain...)
	router.Get("/:id/reviews", reviewsChain...)

	approveChain := append(append([]fiber.Handler{}, guards.Decision...), h.approve)
	rejectChain := append(append([]fiber.Handler{}, guards.Decision...), h.reject)
	router.Post("/:id/approve", approveChain...)
	router.Post("/:id/reject", rejectChain...)
}

func (h *ApprovalHandler) recalculate(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	result, err := h.approvals.AutoAdvance(c.Context(), id)
	if err != nil {
		return h.mapApprovalError(c, id, err, "failed to recalculate enrollment")
	}

	h.transcripts.Invalidate(c.Context(), id)

	return utils.SendSuccess(c, "enrollment recalculated", result)
}

func (h *ApprovalHandler) requirements(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	verdict, err := h.approvals.CheckRequirements(c.Context(), id)
	if err != nil {
		return h.mapApprovalError(c, id, err, "failed to check enrollment requirements")
	}

	return utils.SendSuccess(c, "requirements checked", verdict)
}

func (h *ApprovalHandler) approve(c *fiber.Ctx) error {
	return h.decide(c, true)
}

func (h *ApprovalHandler) reject(c *fiber.Ctx) error {
	return h.decide(c, false)
}

func (h *ApprovalHandler) decide(c *fiber.Ctx, approve bool) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	payload := dto.ReviewDecisionRequest{}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&payload); err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
		}
	}

	actor := reviewActorFromContext(c)

	var (
		decision   dto.ReviewDecisionResponse
		serviceErr error
	)
	if approve {
		decision, serviceErr = h.approvals.Approve(c.Context(), id, actor, payload)
	} else {
		decision, serviceErr = h.approvals.Reject(c.Context(), id, actor, payload)
	}
	if serviceErr != nil {
		action := "reject"
		if approve {
			action = "approve"
		}
		return h.mapApprovalError(c, id, serviceErr, "failed to "+action+" enrollment")
	}

	h.transcripts.Invalidate(c.Context(), id)

	decisionLabel := "rejected"
	if decision.Approved {
		decisionLabel = "approved"
	}
	observability.GradingDecisions().WithLabelValues(decisionLabel, strconv.FormatBool(decision.ManualOverride)).Inc()

	return utils.SendSuccess(c, "enrollment "+decisionLabel, decision)
}

func (h *ApprovalHandler) transcript(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	transcript, err := h.transcripts.GetTranscript(c.Context(), id)
	if err != nil {
		return h.mapApprovalError(c, id, err, "failed to build transcript")
	}

	return utils.SendSuccess(c, "transcript built", transcript)
}

func (h *ApprovalHandler) listReviews(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	limit := c.QueryInt("limit", 50)
	entries, err := h.reviews.ListByEnrollment(c.Context(), id, limit)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Uint("enrollment_id", id).Msg("failed to list review log")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list review log")
	}

	return utils.SendSuccess(c, "review log listed", entries)
}

func (h *ApprovalHandler) mapApprovalError(c *fiber.Ctx, id uint, err error, message string) error {
	switch {
	case errors.Is(err, service.ErrEnrollmentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "enrollment not found")
	case errors.Is(err, service.ErrJustificationRequired):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case grading.IsConfigurationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Uint("enrollment_id", id).Msg(message)
		return utils.SendError(c, fiber.StatusInternalServerError, message)
	}
}
