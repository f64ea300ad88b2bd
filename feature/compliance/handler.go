package compliance

import (
	"errors"
	"strconv"

	"compliance-engine/core/compliance"
	"compliance-engine/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	defaultRecordLimit = 100
	maxRecordLimit     = 1000
)

// Handler handles HTTP requests for the compliance engine.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the compliance routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/compliance")
	group.Get("/records", h.HandleListRecords)
	group.Get("/rules", h.HandleListRules)
	group.Post("/rules/sync", h.HandleSyncRules)
	group.Post("/jobs/reconcile", h.HandleReconcile)
	group.Post("/jobs/reclaim", h.HandleReclaim)
	group.Get("/validate/:kind", h.HandleValidateKind)
	group.Get("/validate/:kind/:id", h.HandleValidate)
}

// HandleListRecords lists ledger records.
// @Summary List Compliance Records
// @Description Lists ledger records, filterable by validity, rule and object.
// @Tags compliance
// @Produce json
// @Param valid query bool false "Only valid (true) or invalid (false) records"
// @Param rule query string false "Rule id"
// @Param kind query string false "Object kind"
// @Param object_id query string false "Object id"
// @Param attribute query string false "Attribute name"
// @Param limit query int false "Page size (default 100, max 1000)"
// @Param offset query int false "Offset"
// @Success 200 {array} compliance.Record "Records"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /compliance/records [get]
func (h *Handler) HandleListRecords(c *fiber.Ctx) error {
	filter := compliance.Filter{
		RuleID:    c.Query("rule"),
		Kind:      c.Query("kind"),
		ObjectID:  c.Query("object_id"),
		Attribute: c.Query("attribute"),
		Limit:     c.QueryInt("limit", defaultRecordLimit),
		Offset:    c.QueryInt("offset", 0),
	}
	if v := c.Query("valid"); v != "" {
		valid, err := strconv.ParseBool(v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "valid must be true or false"})
		}
		filter.Valid = &valid
	}
	if filter.Limit <= 0 || filter.Limit > maxRecordLimit {
		filter.Limit = maxRecordLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	records, err := h.service.ListRecords(c.Context(), filter)
	if err != nil {
		logger.WithRayID(h.service.logger, c).Error("Failed to list records", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(records)
}

// HandleListRules lists the rule catalog.
// @Summary List Rules
// @Tags compliance
// @Produce json
// @Success 200 {array} RuleInfo "Rules"
// @Router /compliance/rules [get]
func (h *Handler) HandleListRules(c *fiber.Ctx) error {
	return c.JSON(h.service.Rules())
}

// HandleSyncRules reloads the rule catalog.
// @Summary Sync Rules
// @Description Reloads bundled and remote rule sets. A failing source keeps its previous rules.
// @Tags compliance
// @Produce json
// @Success 200 {object} map[string]interface{} "Synced"
// @Failure 502 {object} map[string]interface{} "A rule source failed"
// @Router /compliance/rules/sync [post]
func (h *Handler) HandleSyncRules(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	if err := h.service.SyncRules(c.Context()); err != nil {
		l.Warn("Rule sync incomplete", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": err.Error(),
			"rules": len(h.service.Rules()),
		})
	}
	return c.JSON(fiber.Map{"status": "ok", "rules": len(h.service.Rules())})
}

// ReconcileRequest selects the rules of a reconciliation run.
type ReconcileRequest struct {
	Rules []string `json:"rules"`
}

// HandleReconcile runs a reconciliation job.
// @Summary Run Reconciliation
// @Description Audits every object of each selected rule's kind and reconciles the ledger. An empty selection runs every rule.
// @Tags compliance
// @Accept json
// @Produce json
// @Param request body ReconcileRequest false "Rule selection"
// @Success 200 {object} compliance.RunReport "Run report"
// @Failure 400 {object} map[string]string "Bad Request"
// @Router /compliance/jobs/reconcile [post]
func (h *Handler) HandleReconcile(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	var req ReconcileRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
	}

	report, err := h.service.Reconcile(c.Context(), req.Rules)
	if errors.Is(err, compliance.ErrUnknownRule) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		l.Error("Reconciliation failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(report)
}

// HandleReclaim deletes orphaned records.
// @Summary Reclaim Orphans
// @Description Deletes ledger records whose object no longer exists.
// @Tags compliance
// @Produce json
// @Success 200 {object} map[string]int "Deleted count"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /compliance/jobs/reclaim [post]
func (h *Handler) HandleReclaim(c *fiber.Ctx) error {
	deleted, err := h.service.Reclaim(c.Context())
	if err != nil {
		logger.WithRayID(h.service.logger, c).Error("Reclaim failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"deleted": deleted})
}

// HandleValidate audits one object live.
// @Summary Validate Object
// @Description Audits a stored object against every rule for its kind without writing the ledger.
// @Tags compliance
// @Produce json
// @Param kind path string true "Object kind"
// @Param id path string true "Object id"
// @Success 200 {object} ValidationReport "Verdict"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /compliance/validate/{kind}/{id} [get]
func (h *Handler) HandleValidate(c *fiber.Ctx) error {
	ref := compliance.ObjectRef{Kind: c.Params("kind"), ID: c.Params("id")}
	report, err := h.service.Validate(c.Context(), ref)
	if errors.Is(err, compliance.ErrObjectNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "object not found"})
	}
	if err != nil {
		logger.WithRayID(h.service.logger, c).Error("Validation failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(report)
}

// HandleValidateKind audits every object of a kind live.
// @Summary Validate Kind
// @Description Audits every stored object of a kind against its rules without writing the ledger.
// @Tags compliance
// @Produce json
// @Param kind path string true "Object kind"
// @Success 200 {array} ValidationReport "Verdicts"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /compliance/validate/{kind} [get]
func (h *Handler) HandleValidateKind(c *fiber.Ctx) error {
	reports, err := h.service.ValidateKind(c.Context(), c.Params("kind"))
	if err != nil {
		logger.WithRayID(h.service.logger, c).Error("Validation failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(reports)
}
