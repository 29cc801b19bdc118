package repository

import (
	"errors"

	"github.com/recipebox/recipebox/internal/recipe"
)

var (
	ErrNotFound = errors.New("not found")
)

// Repository is the persistence contract for recipes and their attributes.
// Every operation is scoped to a single owner: a recipe or attribute that
// exists but belongs to another user behaves exactly like a missing one.
type Repository interface {
	CreateRecipe(r *recipe.Recipe) (string, error)
	GetRecipe(userID, id string) (*recipe.Recipe, error)
	ListRecipes(userID string, f recipe.Filter) ([]*recipe.Recipe, error)
	UpdateRecipe(r *recipe.Recipe) error
	DeleteRecipe(userID, id string) error

	GetOrCreateAttr(userID string, kind recipe.AttrKind, name string) (*recipe.Attr, error)
	GetAttrsByIDs(userID string, ids []string) ([]*recipe.Attr, error)
	ListAttrs(userID string, kind recipe.AttrKind, assignedOnly bool) ([]*recipe.Attr, error)
	UpdateAttr(userID, id, name string) error
	DeleteAttr(userID, id string) error
}
