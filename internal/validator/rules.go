// Package validator checks raw documents and normalized rows against the
// recipe, interaction and user business rules.
package validator

import (
	"fmt"
	"regexp"
	"strings"

	"recipepipe/internal/models"
	"recipepipe/internal/normalizer"
	"recipepipe/pkg/utils"
)

var emailPattern = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+$`)

// Verdict is the outcome of checking one record. Every violated rule is listed.
type Verdict struct {
	ID         string
	Violations []models.Violation
	Valid      bool
}

type checklist struct {
	violations []models.Violation
}

func (c *checklist) add(field string, kind models.ViolationKind, detail string) {
	c.violations = append(c.violations, models.Violation{Field: field, Kind: kind, Detail: detail})
}

func (c *checklist) verdict(id string) Verdict {
	return Verdict{ID: id, Violations: c.violations, Valid: len(c.violations) == 0}
}

// ValidateRecipe checks a recipe document.
func ValidateRecipe(doc *models.Document) Verdict {
	var c checklist

	id := doc.First(models.FieldRecipeID, models.FieldDocID)
	if !id.Truthy() {
		c.add(models.FieldRecipeID, models.MissingIdentifier, "missing recipe_id/_doc_id")
	}

	if !doc.Get("title").Truthy() {
		c.add("title", models.MissingField, "missing title")
	}

	checkMinutes(&c, doc, "prep_time_minutes")
	checkMinutes(&c, doc, "cook_time_minutes")

	difficulty := ""
	if v := doc.Get("difficulty"); v.Truthy() {
		difficulty = utils.NormalizeKey(v.Display())
	}

	switch {
	case difficulty == "":
		c.add("difficulty", models.MissingField, "missing difficulty")
	case !models.IsValidDifficulty(difficulty):
		c.add("difficulty", models.InvalidEnum, "invalid difficulty")
	}

	checkEntries(&c, doc.Get(models.FieldIngredients), "ingredient", "name", "missing name", "empty entry")
	checkEntries(&c, doc.Get(models.FieldSteps), "step", "description", "missing description", "empty description")

	return c.verdict(id.Display())
}

func checkMinutes(c *checklist, doc *models.Document, field string) {
	v := doc.Get(field)
	if v.IsAbsent() {
		c.add(field, models.MissingField, "missing "+field)
		return
	}

	n, ok := normalizer.AsInt(v)

	switch {
	case !ok:
		c.add(field, models.InvalidType, field+" not integer")
	case n < 0:
		c.add(field, models.OutOfRangeValue, field+" negative")
	}
}

// checkEntries validates an ingredients or steps collection. Structured entries
// need a non-blank key field; bare entries must not be blank.
func checkEntries(c *checklist, v models.Value, label, key, missing, empty string) {
	collection := label + "s"

	entries, _ := normalizer.AsEntries(v)
	if len(entries) == 0 {
		c.add(collection, models.EmptyCollection, "empty "+collection)
		return
	}

	for i, entry := range entries {
		n := i + 1
		prefix := fmt.Sprintf("%s_%d: ", label, n)
		field := fmt.Sprintf("%s[%d]", collection, n)

		if fields := entry.Doc(); fields != nil {
			if val := fields.Get(key); !val.Truthy() || strings.TrimSpace(val.Display()) == "" {
				c.add(field+"."+key, models.MissingField, prefix+missing)
			}

			continue
		}

		if strings.TrimSpace(entry.Display()) == "" {
			c.add(field, models.MissingField, prefix+empty)
		}
	}
}

// ValidateInteraction checks an interaction document. known is the set of
// resolvable recipe ids; nil skips the reference check.
func ValidateInteraction(doc *models.Document, known map[string]struct{}) Verdict {
	var c checklist

	id := doc.First("interaction_id", models.FieldDocID)
	if !id.Truthy() {
		c.add("interaction_id", models.MissingIdentifier, "missing interaction_id/_doc_id")
	}

	recipe := doc.Get(models.FieldRecipeID)
	if !recipe.Truthy() {
		c.add(models.FieldRecipeID, models.MissingField, "missing recipe_id")
	} else if known != nil {
		if _, ok := known[recipe.Display()]; !ok {
			c.add(models.FieldRecipeID, models.UnresolvedReference, "recipe_id not found in recipes")
		}
	}

	typ := ""
	if v := doc.Get("type"); v.Truthy() {
		typ = utils.NormalizeKey(v.Display())
	}

	switch {
	case typ == "":
		c.add("type", models.MissingField, "missing type")
	case !models.IsValidInteractionType(typ):
		c.add("type", models.InvalidEnum, "invalid type")
	}

	if _, _, ok := normalizer.ParseTimestamp(doc.First("timestamp", "created_at")); !ok {
		c.add("timestamp", models.UnparsableTimestamp, "invalid/missing timestamp")
	}

	if typ == models.InteractionRating {
		checkRating(&c, doc.Get("value"))
	}

	return c.verdict(id.Display())
}

func checkRating(c *checklist, v models.Value) {
	if v.IsAbsent() {
		c.add("value", models.MissingField, "missing rating value")
		return
	}

	n, ok := normalizer.AsInt(v)

	switch {
	case !ok:
		c.add("value", models.InvalidType, "rating value not int")
	case n < models.MinRating || n > models.MaxRating:
		c.add("value", models.OutOfRangeValue, "rating value out of range")
	}
}

// ValidateUser checks a user document.
func ValidateUser(doc *models.Document) Verdict {
	var c checklist

	id := doc.First("user_id", models.FieldDocID)
	if !id.Truthy() {
		c.add("user_id", models.MissingIdentifier, "missing user_id/_doc_id")
	}

	if email := doc.Get("email"); email.Truthy() && !emailPattern.MatchString(email.Display()) {
		c.add("email", models.InvalidType, "invalid email format")
	}

	return c.verdict(id.Display())
}

// KnownRecipeIDs collects the identifiers of every recipe document that has one.
func KnownRecipeIDs(docs []*models.Document) map[string]struct{} {
	known := make(map[string]struct{}, len(docs))

	for _, doc := range docs {
		if id := doc.First(models.FieldRecipeID, models.FieldDocID); id.Truthy() {
			known[id.Display()] = struct{}{}
		}
	}

	return known
}
