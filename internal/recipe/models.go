package recipe

import "time"

// AttrKind distinguishes the two user-owned recipe attribute collections.
// Tags and ingredients share storage and behaviour; only the kind differs.
type AttrKind string

const (
	KindTag        AttrKind = "tag"
	KindIngredient AttrKind = "ingredient"
)

// IDPrefix returns the identifier prefix used for new attributes of this kind.
func (k AttrKind) IDPrefix() string {
	if k == KindIngredient {
		return "ing"
	}
	return "tag"
}

// Recipe is the persistent recipe model. Price is carried as a decimal
// string (max 5 digits, 2 decimal places) to avoid float rounding.
type Recipe struct {
	ID            string    `json:"id" bson:"id"`
	UserID        string    `json:"-" bson:"user_id"`
	Title         string    `json:"title" bson:"title"`
	Description   string    `json:"description,omitempty" bson:"description,omitempty"`
	TimeMinutes   int       `json:"time_minutes" bson:"time_minutes"`
	Price         string    `json:"price" bson:"price"`
	Link          string    `json:"link,omitempty" bson:"link,omitempty"`
	TagIDs        []string  `json:"-" bson:"tag_ids,omitempty"`
	IngredientIDs []string  `json:"-" bson:"ingredient_ids,omitempty"`
	ImageKey      string    `json:"-" bson:"image_key,omitempty"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" bson:"updated_at"`
}

// Attr is a tag or an ingredient, owned by a single user.
type Attr struct {
	ID        string    `json:"id" bson:"id"`
	UserID    string    `json:"-" bson:"user_id"`
	Kind      AttrKind  `json:"-" bson:"kind"`
	Name      string    `json:"name" bson:"name"`
	CreatedAt time.Time `json:"-" bson:"created_at"`
	UpdatedAt time.Time `json:"-" bson:"updated_at"`
}

// Filter narrows recipe listings to recipes carrying any of the given
// tag or ingredient IDs. Empty slices mean "no constraint".
type Filter struct {
	TagIDs        []string
	IngredientIDs []string
}

// Detail is a recipe with its attribute references expanded.
type Detail struct {
	Recipe      *Recipe
	Tags        []*Attr
	Ingredients []*Attr
}
