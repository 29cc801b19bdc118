package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/recipebox/recipebox/internal/recipe"
	"github.com/recipebox/recipebox/internal/recipe/service"
	"github.com/recipebox/recipebox/pkg/logger"
	"github.com/recipebox/recipebox/pkg/middleware"
)

// AttrHandler serves /api/recipe/tags and /api/recipe/ingredients. The
// two collections share behaviour; only the attribute kind differs.
type AttrHandler struct {
	svc      service.Service
	verifier middleware.Verifier
}

func NewAttrHandler(svc service.Service, v middleware.Verifier) *AttrHandler {
	return &AttrHandler{svc: svc, verifier: v}
}

func (h *AttrHandler) Register(rg *gin.RouterGroup) {
	for path, kind := range map[string]recipe.AttrKind{
		"/recipe/tags":        recipe.KindTag,
		"/recipe/ingredients": recipe.KindIngredient,
	} {
		g := rg.Group(path, middleware.AuthMiddleware(h.verifier))
		g.GET("", h.list(kind))
		g.PATCH("/:id", h.patch)
		g.DELETE("/:id", h.delete)
	}
}

// list returns the caller's attributes of one kind, name-descending.
// ?assigned_only=1 restricts the listing to attributes used by at least
// one recipe.
func (h *AttrHandler) list(kind recipe.AttrKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		assignedOnly := false
		if v := c.Query("assigned_only"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n != 0 {
				assignedOnly = true
			}
		}
		attrs, err := h.svc.ListAttrs(middleware.Subject(c), kind, assignedOnly)
		if err != nil {
			logger.Errorf("attr list failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
			return
		}
		c.JSON(http.StatusOK, attrResponses(attrs))
	}
}

func (h *AttrHandler) patch(c *gin.Context) {
	var req attrNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id := c.Param("id")
	if err := h.svc.UpdateAttr(middleware.Subject(c), id, req.Name); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "name": req.Name})
}

func (h *AttrHandler) delete(c *gin.Context) {
	if err := h.svc.DeleteAttr(middleware.Subject(c), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AttrHandler) writeError(c *gin.Context, err error) {
	switch err {
	case service.ErrNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case service.ErrNameEmpty:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Errorf("attr operation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
