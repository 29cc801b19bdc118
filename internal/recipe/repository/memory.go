package repository

import (
	"sort"
	"sync"
	"time"

	"github.com/recipebox/recipebox/internal/models"
	"github.com/recipebox/recipebox/internal/recipe"
)

// MemoryRepo is an in-memory repository used for unit tests and for the
// standalone recipes binary when no MongoDB is configured.
type MemoryRepo struct {
	mu      sync.RWMutex
	recipes map[string]*recipe.Recipe
	attrs   map[string]*recipe.Attr
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		recipes: make(map[string]*recipe.Recipe),
		attrs:   make(map[string]*recipe.Attr),
	}
}

func (m *MemoryRepo) CreateRecipe(r *recipe.Recipe) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.ID == "" {
		r.ID = models.NewID("rcp")
	}
	now := time.Now()
	r.CreatedAt = now
	r.UpdatedAt = now
	cp := *r
	m.recipes[r.ID] = &cp
	return r.ID, nil
}

func (m *MemoryRepo) GetRecipe(userID, id string) (*recipe.Recipe, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.recipes[id]
	if !ok || r.UserID != userID {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *MemoryRepo) ListRecipes(userID string, f recipe.Filter) ([]*recipe.Recipe, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*recipe.Recipe{}
	for _, r := range m.recipes {
		if r.UserID != userID {
			continue
		}
		if len(f.TagIDs) > 0 && !containsAny(r.TagIDs, f.TagIDs) {
			continue
		}
		if len(f.IngredientIDs) > 0 && !containsAny(r.IngredientIDs, f.IngredientIDs) {
			continue
		}
		cp := *r
		out = append(out, &cp)
	}
	// newest first
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *MemoryRepo) UpdateRecipe(r *recipe.Recipe) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.recipes[r.ID]
	if !ok || cur.UserID != r.UserID {
		return ErrNotFound
	}
	r.CreatedAt = cur.CreatedAt
	r.UpdatedAt = time.Now()
	cp := *r
	m.recipes[r.ID] = &cp
	return nil
}

func (m *MemoryRepo) DeleteRecipe(userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.recipes[id]
	if !ok || r.UserID != userID {
		return ErrNotFound
	}
	delete(m.recipes, id)
	return nil
}

func (m *MemoryRepo) GetOrCreateAttr(userID string, kind recipe.AttrKind, name string) (*recipe.Attr, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.attrs {
		if a.UserID == userID && a.Kind == kind && a.Name == name {
			cp := *a
			return &cp, nil
		}
	}
	now := time.Now()
	a := &recipe.Attr{
		ID:        models.NewID(kind.IDPrefix()),
		UserID:    userID,
		Kind:      kind,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.attrs[a.ID] = a
	cp := *a
	return &cp, nil
}

func (m *MemoryRepo) GetAttrsByIDs(userID string, ids []string) ([]*recipe.Attr, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*recipe.Attr{}
	for _, id := range ids {
		if a, ok := m.attrs[id]; ok && a.UserID == userID {
			cp := *a
			out = append(out, &cp)
		}
	}
	sortAttrs(out)
	return out, nil
}

func (m *MemoryRepo) ListAttrs(userID string, kind recipe.AttrKind, assignedOnly bool) ([]*recipe.Attr, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var assigned map[string]bool
	if assignedOnly {
		assigned = make(map[string]bool)
		for _, r := range m.recipes {
			if r.UserID != userID {
				continue
			}
			for _, id := range r.TagIDs {
				assigned[id] = true
			}
			for _, id := range r.IngredientIDs {
				assigned[id] = true
			}
		}
	}
	out := []*recipe.Attr{}
	for _, a := range m.attrs {
		if a.UserID != userID || a.Kind != kind {
			continue
		}
		if assignedOnly && !assigned[a.ID] {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	sortAttrs(out)
	return out, nil
}

func (m *MemoryRepo) UpdateAttr(userID, id, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attrs[id]
	if !ok || a.UserID != userID {
		return ErrNotFound
	}
	a.Name = name
	a.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryRepo) DeleteAttr(userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attrs[id]
	if !ok || a.UserID != userID {
		return ErrNotFound
	}
	delete(m.attrs, id)
	// detach from recipes still referencing it
	for _, r := range m.recipes {
		if r.UserID != userID {
			continue
		}
		r.TagIDs = removeID(r.TagIDs, id)
		r.IngredientIDs = removeID(r.IngredientIDs, id)
	}
	return nil
}

// sortAttrs orders by name descending, matching the listing contract.
func sortAttrs(attrs []*recipe.Attr) {
	sort.Slice(attrs, func(i, j int) bool { return attrs[i].Name > attrs[j].Name })
}

func containsAny(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
