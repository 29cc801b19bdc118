package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAttrsRequireAuth(t *testing.T) {
	g := newRecipeTestServer(t, nil)
	for _, path := range []string{"/api/recipe/tags", "/api/recipe/ingredients"} {
		w := doJSON(t, g, http.MethodGet, path, "", "")
		require.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestListTagsOrderedAndScoped(t *testing.T) {
	g := newRecipeTestServer(t, nil)
	alice := bearerFor(t, "usr_alice")
	bob := bearerFor(t, "usr_bob")

	w := doJSON(t, g, http.MethodPost, "/api/recipe/recipes",
		`{"title":"Bowl","time_minutes":10,"price":"5.00","tags":[{"name":"Comfort"},{"name":"Vegan"}]}`, alice)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, g, http.MethodGet, "/api/recipe/tags", "", alice)
	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 2)
	// name descending
	require.Equal(t, "Vegan", list[0]["name"])
	require.Equal(t, "Comfort", list[1]["name"])

	// bob has no tags
	w = doJSON(t, g, http.MethodGet, "/api/recipe/tags", "", bob)
	require.Equal(t, "[]", w.Body.String())
}

func TestListIngredientsAssignedOnly(t *testing.T) {
	g := newRecipeTestServer(t, nil)
	tok := bearerFor(t, "usr_1")

	// one assigned ingredient, then detach-free creation of an unassigned one
	w := doJSON(t, g, http.MethodPost, "/api/recipe/recipes",
		`{"title":"Soup","time_minutes":20,"price":"4.00","ingredients":[{"name":"Leek"}]}`, tok)
	require.Equal(t, http.StatusCreated, w.Code)
	var created map[string]interface{}

	w = doJSON(t, g, http.MethodPost, "/api/recipe/recipes",
		`{"title":"Scratch","time_minutes":1,"price":"1.00","ingredients":[{"name":"Salt"}]}`, tok)
	require.Equal(t, http.StatusCreated, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	scratchID := created["id"].(string)

	// detach Salt by clearing the second recipe's ingredients
	w = doJSON(t, g, http.MethodPatch, "/api/recipe/recipes/"+scratchID, `{"ingredients":[]}`, tok)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, g, http.MethodGet, "/api/recipe/ingredients", "", tok)
	var list []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 2)

	w = doJSON(t, g, http.MethodGet, "/api/recipe/ingredients?assigned_only=1", "", tok)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	require.Equal(t, "Leek", list[0]["name"])
}

func TestAttrPatchAndDelete(t *testing.T) {
	g := newRecipeTestServer(t, nil)
	alice := bearerFor(t, "usr_alice")
	bob := bearerFor(t, "usr_bob")

	w := doJSON(t, g, http.MethodPost, "/api/recipe/recipes",
		`{"title":"Stew","time_minutes":90,"price":"8.00","tags":[{"name":"Slow"}]}`, alice)
	require.Equal(t, http.StatusCreated, w.Code)
	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	recipeID := created["id"].(string)
	tagID := created["tags"].([]interface{})[0].(map[string]interface{})["id"].(string)

	// rename
	w = doJSON(t, g, http.MethodPatch, "/api/recipe/tags/"+tagID, `{"name":"Slow Cooked"}`, alice)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Slow Cooked")

	// empty name rejected
	w = doJSON(t, g, http.MethodPatch, "/api/recipe/tags/"+tagID, `{"name":""}`, alice)
	require.Equal(t, http.StatusBadRequest, w.Code)

	// bob cannot touch alice's tag
	w = doJSON(t, g, http.MethodPatch, "/api/recipe/tags/"+tagID, `{"name":"Hijack"}`, bob)
	require.Equal(t, http.StatusNotFound, w.Code)
	w = doJSON(t, g, http.MethodDelete, "/api/recipe/tags/"+tagID, "", bob)
	require.Equal(t, http.StatusNotFound, w.Code)

	// delete detaches from the recipe
	w = doJSON(t, g, http.MethodDelete, "/api/recipe/tags/"+tagID, "", alice)
	require.Equal(t, http.StatusNoContent, w.Code)
	w = doJSON(t, g, http.MethodGet, "/api/recipe/recipes/"+recipeID, "", alice)
	require.Equal(t, http.StatusOK, w.Code)
	var detail map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	require.Empty(t, detail["tags"])
}
