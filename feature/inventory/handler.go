package inventory

import (
	"errors"

	"compliance-engine/core/compliance"
	"compliance-engine/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for inventory objects.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

// RegisterRoutes registers the inventory routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/objects")
	group.Get("/:kind", h.HandleList)
	group.Get("/:kind/:id", h.HandleGet)
	group.Put("/:kind/:id", h.HandlePut)
	group.Delete("/:kind/:id", h.HandleDelete)
}

// HandleList returns every object of a kind.
// @Summary List Objects
// @Description List every stored object of a kind.
// @Tags inventory
// @Produce json
// @Param kind path string true "Object kind (e.g. 'device')"
// @Success 200 {array} Item "Objects"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /objects/{kind} [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	items, err := h.repo.List(c.Context(), c.Params("kind"))
	if err != nil {
		logger.WithRayID(h.logger, c).Error("Failed to list objects", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(items)
}

// HandleGet returns one object.
// @Summary Get Object
// @Tags inventory
// @Produce json
// @Param kind path string true "Object kind"
// @Param id path string true "Object id"
// @Success 200 {object} Item "Object"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /objects/{kind}/{id} [get]
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	ref := compliance.ObjectRef{Kind: c.Params("kind"), ID: c.Params("id")}
	item, err := h.repo.Get(c.Context(), ref)
	if errors.Is(err, compliance.ErrObjectNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "object not found"})
	}
	if err != nil {
		logger.WithRayID(h.logger, c).Error("Failed to load object", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(item)
}

// HandlePut creates or replaces an object after the pre-commit hooks pass.
// @Summary Save Object
// @Description Stores an object's attributes. Every rule for the kind is audited and recorded; a failing enforcing rule rejects the write with the full attribute map.
// @Tags inventory
// @Accept json
// @Produce json
// @Param kind path string true "Object kind"
// @Param id path string true "Object id"
// @Param attributes body map[string]interface{} true "Attributes"
// @Success 200 {object} Item "Saved object"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 422 {object} compliance.ValidationError "Blocked by enforcing rules"
// @Router /objects/{kind}/{id} [put]
func (h *Handler) HandlePut(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)
	attrs, err := DecodeAttributes(c.Body())
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	item, err := h.repo.Save(c.Context(), c.Params("kind"), c.Params("id"), attrs)
	if err != nil {
		var ve *compliance.ValidationError
		if errors.As(err, &ve) {
			l.Info("Write blocked by enforcing rules", zap.String("object", ve.Object.String()), zap.Int("rules", len(ve.Rules)))
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error":  ve.Error(),
				"object": ve.Object,
				"rules":  ve.Rules,
			})
		}
		l.Error("Failed to save object", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(item)
}

// HandleDelete removes an object.
// @Summary Delete Object
// @Description Deletes an object. Its compliance records are removed by the next reclaim.
// @Tags inventory
// @Param kind path string true "Object kind"
// @Param id path string true "Object id"
// @Success 204 "Deleted"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /objects/{kind}/{id} [delete]
func (h *Handler) HandleDelete(c *fiber.Ctx) error {
	ref := compliance.ObjectRef{Kind: c.Params("kind"), ID: c.Params("id")}
	found, err := h.repo.Delete(c.Context(), ref)
	if err != nil {
		logger.WithRayID(h.logger, c).Error("Failed to delete object", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if !found {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "object not found"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
