package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/recipebox/recipebox/internal/recipe"
	"github.com/recipebox/recipebox/internal/recipe/service"
	"github.com/recipebox/recipebox/pkg/logger"
	"github.com/recipebox/recipebox/pkg/metrics"
	"github.com/recipebox/recipebox/pkg/middleware"
)

// presignTTL is how long recipe image links stay valid.
const presignTTL = 15 * time.Minute

// ImageStore is the object-storage surface the recipe handler needs.
// *storage.MinIOStorage satisfies it.
type ImageStore interface {
	UploadFile(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	GetPresignedURL(ctx context.Context, key string, expires time.Duration) (string, error)
}

// RecipeHandler serves the /api/recipe/recipes routes.
type RecipeHandler struct {
	svc      service.Service
	images   ImageStore
	verifier middleware.Verifier
}

func NewRecipeHandler(svc service.Service, images ImageStore, v middleware.Verifier) *RecipeHandler {
	return &RecipeHandler{svc: svc, images: images, verifier: v}
}

// Register routes under /api/recipe/recipes. All routes require auth.
func (h *RecipeHandler) Register(rg *gin.RouterGroup) {
	r := rg.Group("/recipe/recipes", middleware.AuthMiddleware(h.verifier))
	r.GET("", h.List)
	r.POST("", h.Create)
	r.GET("/:id", h.Get)
	r.PUT("/:id", h.Put)
	r.PATCH("/:id", h.Patch)
	r.DELETE("/:id", h.Delete)
	r.POST("/:id/upload-image", h.UploadImage)
}

type attrNameRequest struct {
	Name string `json:"name" binding:"required"`
}

type recipeRequest struct {
	Title       *string            `json:"title"`
	Description *string            `json:"description"`
	TimeMinutes *int               `json:"time_minutes"`
	Price       *string            `json:"price"`
	Link        *string            `json:"link"`
	Tags        *[]attrNameRequest `json:"tags"`
	Ingredients *[]attrNameRequest `json:"ingredients"`
}

func (r *recipeRequest) toInput() service.RecipeInput {
	in := service.RecipeInput{
		Title:       r.Title,
		Description: r.Description,
		TimeMinutes: r.TimeMinutes,
		Price:       r.Price,
		Link:        r.Link,
	}
	if r.Tags != nil {
		names := attrNames(*r.Tags)
		in.Tags = &names
	}
	if r.Ingredients != nil {
		names := attrNames(*r.Ingredients)
		in.Ingredients = &names
	}
	return in
}

func attrNames(reqs []attrNameRequest) []string {
	out := make([]string, 0, len(reqs))
	for _, a := range reqs {
		out = append(out, a.Name)
	}
	return out
}

// List returns the caller's recipes, newest first. Supports ?tags= and
// ?ingredients= as comma-separated attribute ID filters.
func (h *RecipeHandler) List(c *gin.Context) {
	f := recipe.Filter{
		TagIDs:        splitIDs(c.Query("tags")),
		IngredientIDs: splitIDs(c.Query("ingredients")),
	}
	list, err := h.svc.ListRecipes(middleware.Subject(c), f)
	if err != nil {
		logger.Errorf("recipe list failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	out := make([]gin.H, 0, len(list))
	for _, r := range list {
		out = append(out, gin.H{
			"id":           r.ID,
			"title":        r.Title,
			"time_minutes": r.TimeMinutes,
			"price":        r.Price,
			"link":         r.Link,
			"tags":         idsOrEmpty(r.TagIDs),
			"ingredients":  idsOrEmpty(r.IngredientIDs),
		})
	}
	c.JSON(http.StatusOK, out)
}

func (h *RecipeHandler) Create(c *gin.Context) {
	var req recipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Title == nil || req.TimeMinutes == nil || req.Price == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title, time_minutes and price are required"})
		return
	}
	d, err := h.svc.CreateRecipe(middleware.Subject(c), req.toInput())
	if err != nil {
		h.writeError(c, err)
		return
	}
	metrics.RecipesCreated.Inc()
	c.JSON(http.StatusCreated, h.detailResponse(c, d))
}

func (h *RecipeHandler) Get(c *gin.Context) {
	d, err := h.svc.GetRecipe(middleware.Subject(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.detailResponse(c, d))
}

// Put replaces the recipe; the required fields must all be present.
func (h *RecipeHandler) Put(c *gin.Context) {
	var req recipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Title == nil || req.TimeMinutes == nil || req.Price == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title, time_minutes and price are required"})
		return
	}
	// a full update clears fields the request omits
	if req.Description == nil {
		req.Description = strPtr("")
	}
	if req.Link == nil {
		req.Link = strPtr("")
	}
	if req.Tags == nil {
		req.Tags = &[]attrNameRequest{}
	}
	if req.Ingredients == nil {
		req.Ingredients = &[]attrNameRequest{}
	}
	h.update(c, req)
}

func (h *RecipeHandler) Patch(c *gin.Context) {
	var req recipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.update(c, req)
}

func (h *RecipeHandler) update(c *gin.Context, req recipeRequest) {
	d, err := h.svc.UpdateRecipe(middleware.Subject(c), c.Param("id"), req.toInput())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.detailResponse(c, d))
}

func (h *RecipeHandler) Delete(c *gin.Context) {
	if err := h.svc.DeleteRecipe(middleware.Subject(c), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadImage stores a multipart "image" file in object storage and
// attaches it to the recipe.
func (h *RecipeHandler) UploadImage(c *gin.Context) {
	if h.images == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "image storage not configured"})
		return
	}
	fh, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	sub := middleware.Subject(c)
	id := c.Param("id")
	// confirm ownership before touching storage
	if _, err := h.svc.GetRecipe(sub, id); err != nil {
		h.writeError(c, err)
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read image file"})
		return
	}
	defer f.Close()

	key := fmt.Sprintf("recipes/%s/%s", id, filepath.Base(fh.Filename))
	contentType := fh.Header.Get("Content-Type")
	if err := h.images.UploadFile(c.Request.Context(), key, f, fh.Size, contentType); err != nil {
		logger.Errorf("image upload failed for recipe %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "image upload failed"})
		return
	}
	r, err := h.svc.SetRecipeImage(sub, id, key)
	if err != nil {
		h.writeError(c, err)
		return
	}
	metrics.ImagesUploaded.Inc()
	c.JSON(http.StatusOK, gin.H{"id": r.ID, "image_url": h.imageURL(c, r.ImageKey)})
}

func (h *RecipeHandler) detailResponse(c *gin.Context, d *recipe.Detail) gin.H {
	r := d.Recipe
	resp := gin.H{
		"id":           r.ID,
		"title":        r.Title,
		"description":  r.Description,
		"time_minutes": r.TimeMinutes,
		"price":        r.Price,
		"link":         r.Link,
		"tags":         attrResponses(d.Tags),
		"ingredients":  attrResponses(d.Ingredients),
		"created_at":   r.CreatedAt,
		"updated_at":   r.UpdatedAt,
	}
	if url := h.imageURL(c, r.ImageKey); url != "" {
		resp["image_url"] = url
	}
	return resp
}

func (h *RecipeHandler) imageURL(c *gin.Context, key string) string {
	if key == "" || h.images == nil {
		return ""
	}
	url, err := h.images.GetPresignedURL(c.Request.Context(), key, presignTTL)
	if err != nil {
		logger.Warnf("presign failed for %s: %v", key, err)
		return ""
	}
	return url
}

func (h *RecipeHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrTitleEmpty),
		errors.Is(err, service.ErrTitleTooLong),
		errors.Is(err, service.ErrInvalidPrice),
		errors.Is(err, service.ErrInvalidTime),
		errors.Is(err, service.ErrNameEmpty):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Errorf("recipe operation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func attrResponses(attrs []*recipe.Attr) []gin.H {
	out := make([]gin.H, 0, len(attrs))
	for _, a := range attrs {
		out = append(out, gin.H{"id": a.ID, "name": a.Name})
	}
	return out
}

func splitIDs(s string) []string {
	if s == "" {
		return nil
	}
	out := []string{}
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func idsOrEmpty(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

func strPtr(s string) *string { return &s }
