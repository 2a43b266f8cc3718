package models

// Interaction types.
const (
	InteractionView    = "view"
	InteractionLike    = "like"
	InteractionAttempt = "attempt"
	InteractionRating  = "rating"
)

// Rating bounds.
const (
	MinRating = 1
	MaxRating = 5
)

// Interaction is a row of the normalized interaction relation.
// Timestamp holds a canonical RFC 3339 value, or "" when the source was unparsable.
type Interaction struct {
	UserID        *string `json:"user_id"`
	Value         *int    `json:"value"`
	InteractionID string  `json:"interaction_id"`
	RecipeID      string  `json:"recipe_id"`
	Type          string  `json:"type"`
	Timestamp     string  `json:"timestamp"`
}

// User is used only for validation.
type User struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// IsValidInteractionType reports whether t is one of view, like, attempt or rating.
func IsValidInteractionType(t string) bool {
	switch t {
	case InteractionView, InteractionLike, InteractionAttempt, InteractionRating:
		return true
	}

	return false
}

// Dataset bundles the four normalized relations. Stages return new datasets
// instead of mutating a shared one.
type Dataset struct {
	Recipes      []Recipe      `json:"recipes"`
	Ingredients  []Ingredient  `json:"ingredients"`
	Steps        []Step        `json:"steps"`
	Interactions []Interaction `json:"interactions"`
}

// RecipeIDs returns the set of recipe identifiers in the recipe relation.
func (d *Dataset) RecipeIDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(d.Recipes))
	for _, r := range d.Recipes {
		ids[r.RecipeID] = struct{}{}
	}

	return ids
}
