package service

import (
	"errors"
	"regexp"
	"strings"

	"github.com/recipebox/recipebox/internal/recipe"
	"github.com/recipebox/recipebox/internal/recipe/repository"
	"go.mongodb.org/mongo-driver/mongo"
)

const maxTitleLength = 255

var (
	ErrNotFound     = errors.New("not found")
	ErrTitleEmpty   = errors.New("title must not be empty")
	ErrTitleTooLong = errors.New("title must be at most 255 characters")
	ErrInvalidPrice = errors.New("price must be a decimal with up to 3 digits and 2 decimal places")
	ErrInvalidTime  = errors.New("time_minutes must not be negative")
	ErrNameEmpty    = errors.New("name must not be empty")
)

// priceRe matches a non-negative decimal with at most 3 integer digits
// and at most 2 decimal places (e.g. "5", "12.50", "999.99").
var priceRe = regexp.MustCompile(`^\d{1,3}(\.\d{1,2})?$`)

// RecipeInput carries the mutable recipe fields. Nil pointers mean
// "leave unchanged" on updates; Tags and Ingredients are attribute
// names resolved to per-user attributes (created on first use).
type RecipeInput struct {
	Title       *string
	Description *string
	TimeMinutes *int
	Price       *string
	Link        *string
	Tags        *[]string
	Ingredients *[]string
}

// Service defines the recipe business operations used by the handler layer.
type Service interface {
	CreateRecipe(userID string, in RecipeInput) (*recipe.Detail, error)
	GetRecipe(userID, id string) (*recipe.Detail, error)
	ListRecipes(userID string, f recipe.Filter) ([]*recipe.Recipe, error)
	UpdateRecipe(userID, id string, in RecipeInput) (*recipe.Detail, error)
	DeleteRecipe(userID, id string) error
	SetRecipeImage(userID, id, key string) (*recipe.Recipe, error)

	ListAttrs(userID string, kind recipe.AttrKind, assignedOnly bool) ([]*recipe.Attr, error)
	UpdateAttr(userID, id, name string) error
	DeleteAttr(userID, id string) error
}

// NewService returns a Service on top of any repository implementation.
func NewService(repo repository.Repository) Service {
	return &svc{repo: repo}
}

// NewMemoryService returns a Service backed by the in-memory repository.
func NewMemoryService() Service {
	return NewService(repository.NewMemoryRepo())
}

// NewMongoService returns a Service backed by MongoDB collections in db.
func NewMongoService(db *mongo.Database) Service {
	return NewService(repository.NewMongoRepo(db))
}

type svc struct {
	repo repository.Repository
}

func (s *svc) CreateRecipe(userID string, in RecipeInput) (*recipe.Detail, error) {
	r := &recipe.Recipe{UserID: userID}
	if err := s.apply(r, in); err != nil {
		return nil, err
	}
	if r.Title == "" {
		return nil, ErrTitleEmpty
	}
	if r.Price == "" {
		return nil, ErrInvalidPrice
	}
	if _, err := s.repo.CreateRecipe(r); err != nil {
		return nil, err
	}
	return s.expand(r)
}

func (s *svc) GetRecipe(userID, id string) (*recipe.Detail, error) {
	r, err := s.repo.GetRecipe(userID, id)
	if err != nil {
		return nil, mapErr(err)
	}
	return s.expand(r)
}

func (s *svc) ListRecipes(userID string, f recipe.Filter) ([]*recipe.Recipe, error) {
	return s.repo.ListRecipes(userID, f)
}

func (s *svc) UpdateRecipe(userID, id string, in RecipeInput) (*recipe.Detail, error) {
	r, err := s.repo.GetRecipe(userID, id)
	if err != nil {
		return nil, mapErr(err)
	}
	if err := s.apply(r, in); err != nil {
		return nil, err
	}
	if r.Title == "" {
		return nil, ErrTitleEmpty
	}
	if err := s.repo.UpdateRecipe(r); err != nil {
		return nil, mapErr(err)
	}
	return s.expand(r)
}

func (s *svc) DeleteRecipe(userID, id string) error {
	return mapErr(s.repo.DeleteRecipe(userID, id))
}

func (s *svc) SetRecipeImage(userID, id, key string) (*recipe.Recipe, error) {
	r, err := s.repo.GetRecipe(userID, id)
	if err != nil {
		return nil, mapErr(err)
	}
	r.ImageKey = key
	if err := s.repo.UpdateRecipe(r); err != nil {
		return nil, mapErr(err)
	}
	return r, nil
}

func (s *svc) ListAttrs(userID string, kind recipe.AttrKind, assignedOnly bool) ([]*recipe.Attr, error) {
	return s.repo.ListAttrs(userID, kind, assignedOnly)
}

func (s *svc) UpdateAttr(userID, id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNameEmpty
	}
	return mapErr(s.repo.UpdateAttr(userID, id, name))
}

func (s *svc) DeleteAttr(userID, id string) error {
	return mapErr(s.repo.DeleteAttr(userID, id))
}

// apply copies the set fields of in onto r, resolving attribute names.
func (s *svc) apply(r *recipe.Recipe, in RecipeInput) error {
	if in.Title != nil {
		r.Title = strings.TrimSpace(*in.Title)
		if len(r.Title) > maxTitleLength {
			return ErrTitleTooLong
		}
	}
	if in.Description != nil {
		r.Description = *in.Description
	}
	if in.TimeMinutes != nil {
		if *in.TimeMinutes < 0 {
			return ErrInvalidTime
		}
		r.TimeMinutes = *in.TimeMinutes
	}
	if in.Price != nil {
		if !priceRe.MatchString(*in.Price) {
			return ErrInvalidPrice
		}
		r.Price = *in.Price
	}
	if in.Link != nil {
		r.Link = *in.Link
	}
	if in.Tags != nil {
		ids, err := s.resolveAttrs(r.UserID, recipe.KindTag, *in.Tags)
		if err != nil {
			return err
		}
		r.TagIDs = ids
	}
	if in.Ingredients != nil {
		ids, err := s.resolveAttrs(r.UserID, recipe.KindIngredient, *in.Ingredients)
		if err != nil {
			return err
		}
		r.IngredientIDs = ids
	}
	return nil
}

// resolveAttrs maps names to attribute IDs, creating missing attributes.
func (s *svc) resolveAttrs(userID string, kind recipe.AttrKind, names []string) ([]string, error) {
	ids := []string{}
	seen := map[string]bool{}
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, ErrNameEmpty
		}
		a, err := s.repo.GetOrCreateAttr(userID, kind, name)
		if err != nil {
			return nil, err
		}
		if !seen[a.ID] {
			seen[a.ID] = true
			ids = append(ids, a.ID)
		}
	}
	return ids, nil
}

func (s *svc) expand(r *recipe.Recipe) (*recipe.Detail, error) {
	tags, err := s.repo.GetAttrsByIDs(r.UserID, r.TagIDs)
	if err != nil {
		return nil, err
	}
	ingredients, err := s.repo.GetAttrsByIDs(r.UserID, r.IngredientIDs)
	if err != nil {
		return nil, err
	}
	return &recipe.Detail{Recipe: r, Tags: tags, Ingredients: ingredients}, nil
}

func mapErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
