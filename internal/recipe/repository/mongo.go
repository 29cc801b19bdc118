package repository

import (
	"context"
	"time"

	"github.com/recipebox/recipebox/internal/models"
	"github.com/recipebox/recipebox/internal/recipe"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepo implements the repository on two MongoDB collections:
// "recipes" and "recipe_attrs". Documents carry an "id" string field
// (same pattern as the users collection) rather than ObjectIDs.
type MongoRepo struct {
	recipes *mongo.Collection
	attrs   *mongo.Collection
}

func NewMongoRepo(db *mongo.Database) *MongoRepo {
	recipes := db.Collection("recipes")
	attrs := db.Collection("recipe_attrs")

	ctx := context.Background()
	recipes.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	recipes.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}},
	})
	attrs.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	// one attribute per (user, kind, name)
	attrs.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "kind", Value: 1}, {Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})

	return &MongoRepo{recipes: recipes, attrs: attrs}
}

func (m *MongoRepo) CreateRecipe(r *recipe.Recipe) (string, error) {
	if r.ID == "" {
		r.ID = models.NewID("rcp")
	}
	now := time.Now()
	r.CreatedAt = now
	r.UpdatedAt = now
	if _, err := m.recipes.InsertOne(context.Background(), r); err != nil {
		return "", err
	}
	return r.ID, nil
}

func (m *MongoRepo) GetRecipe(userID, id string) (*recipe.Recipe, error) {
	var r recipe.Recipe
	err := m.recipes.FindOne(context.Background(), bson.M{"id": id, "user_id": userID}).Decode(&r)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}

func (m *MongoRepo) ListRecipes(userID string, f recipe.Filter) ([]*recipe.Recipe, error) {
	filter := bson.M{"user_id": userID}
	if len(f.TagIDs) > 0 {
		filter["tag_ids"] = bson.M{"$in": f.TagIDs}
	}
	if len(f.IngredientIDs) > 0 {
		filter["ingredient_ids"] = bson.M{"$in": f.IngredientIDs}
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "id", Value: -1}})
	cur, err := m.recipes.Find(context.Background(), filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(context.Background())
	out := []*recipe.Recipe{}
	for cur.Next(context.Background()) {
		var r recipe.Recipe
		if err := cur.Decode(&r); err != nil {
			return nil, err
		}
		out = append(out, &r)
	}
	return out, cur.Err()
}

func (m *MongoRepo) UpdateRecipe(r *recipe.Recipe) error {
	set := bson.M{
		"title":          r.Title,
		"description":    r.Description,
		"time_minutes":   r.TimeMinutes,
		"price":          r.Price,
		"link":           r.Link,
		"tag_ids":        r.TagIDs,
		"ingredient_ids": r.IngredientIDs,
		"image_key":      r.ImageKey,
		"updated_at":     time.Now(),
	}
	res, err := m.recipes.UpdateOne(context.Background(),
		bson.M{"id": r.ID, "user_id": r.UserID}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoRepo) DeleteRecipe(userID, id string) error {
	res, err := m.recipes.DeleteOne(context.Background(), bson.M{"id": id, "user_id": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoRepo) GetOrCreateAttr(userID string, kind recipe.AttrKind, name string) (*recipe.Attr, error) {
	ctx := context.Background()
	filter := bson.M{"user_id": userID, "kind": kind, "name": name}

	var a recipe.Attr
	err := m.attrs.FindOne(ctx, filter).Decode(&a)
	if err == nil {
		return &a, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	now := time.Now()
	a = recipe.Attr{
		ID:        models.NewID(kind.IDPrefix()),
		UserID:    userID,
		Kind:      kind,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := m.attrs.InsertOne(ctx, &a); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// lost a create race; the winner's document is the one we want
			var existing recipe.Attr
			if ferr := m.attrs.FindOne(ctx, filter).Decode(&existing); ferr == nil {
				return &existing, nil
			}
		}
		return nil, err
	}
	return &a, nil
}

func (m *MongoRepo) GetAttrsByIDs(userID string, ids []string) ([]*recipe.Attr, error) {
	if len(ids) == 0 {
		return []*recipe.Attr{}, nil
	}
	return m.findAttrs(bson.M{"user_id": userID, "id": bson.M{"$in": ids}})
}

func (m *MongoRepo) ListAttrs(userID string, kind recipe.AttrKind, assignedOnly bool) ([]*recipe.Attr, error) {
	filter := bson.M{"user_id": userID, "kind": kind}
	if assignedOnly {
		assigned, err := m.assignedAttrIDs(userID)
		if err != nil {
			return nil, err
		}
		filter["id"] = bson.M{"$in": assigned}
	}
	return m.findAttrs(filter)
}

func (m *MongoRepo) UpdateAttr(userID, id, name string) error {
	res, err := m.attrs.UpdateOne(context.Background(),
		bson.M{"id": id, "user_id": userID},
		bson.M{"$set": bson.M{"name": name, "updated_at": time.Now()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoRepo) DeleteAttr(userID, id string) error {
	ctx := context.Background()
	res, err := m.attrs.DeleteOne(ctx, bson.M{"id": id, "user_id": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	// detach from any recipes still referencing it
	_, err = m.recipes.UpdateMany(ctx, bson.M{"user_id": userID},
		bson.M{"$pull": bson.M{"tag_ids": id, "ingredient_ids": id}})
	return err
}

func (m *MongoRepo) findAttrs(filter bson.M) ([]*recipe.Attr, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: -1}})
	cur, err := m.attrs.Find(context.Background(), filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(context.Background())
	out := []*recipe.Attr{}
	for cur.Next(context.Background()) {
		var a recipe.Attr
		if err := cur.Decode(&a); err != nil {
			return nil, err
		}
		out = append(out, &a)
	}
	return out, cur.Err()
}

// assignedAttrIDs collects the attribute IDs referenced by any of the
// user's recipes.
func (m *MongoRepo) assignedAttrIDs(userID string) ([]string, error) {
	ctx := context.Background()
	ids := []string{}
	for _, field := range []string{"tag_ids", "ingredient_ids"} {
		vals, err := m.recipes.Distinct(ctx, field, bson.M{"user_id": userID})
		if err != nil {
			return nil, err
		}
		for _, v := range vals {
			if s, ok := v.(string); ok {
				ids = append(ids, s)
			}
		}
	}
	return ids, nil
}
