package normalizer

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	"recipepipe/internal/models"
	"recipepipe/pkg/utils"
)

// InteractionResult holds the interaction relation before referential filtering.
type InteractionResult struct {
	Interactions []models.Interaction
	Repairs      []Repair
}

// FilterStats reports the effect of referential filtering.
type FilterStats struct {
	Before  int `json:"before"`
	After   int `json:"after"`
	Dropped int `json:"dropped"`
}

// NormalizeInteractions converts raw interaction documents. No document is ever
// dropped here; unresolved recipe references are removed by FilterInteractions.
func NormalizeInteractions(docs []*models.Document) InteractionResult {
	res := InteractionResult{Interactions: make([]models.Interaction, 0, len(docs))}

	for i, doc := range docs {
		it, repairs := normalizeInteraction(i, doc)
		res.Interactions = append(res.Interactions, it)
		res.Repairs = append(res.Repairs, repairs...)
	}

	return res
}

func normalizeInteraction(pos int, doc *models.Document) (models.Interaction, []Repair) {
	var repairs []Repair

	it := models.Interaction{
		InteractionID: InteractionID(doc),
		RecipeID:      InteractionRecipeID(doc),
	}

	note := func(field, reason string) {
		repairs = append(repairs, Repair{RecordID: it.InteractionID, Field: field, Reason: reason})
	}

	if it.InteractionID == "" {
		it.InteractionID = GeneratedInteractionID(pos, doc)
		note("interaction_id", ReasonGenerated)
	}

	if user := strings.TrimSpace(AsString(doc.Get("user_id"))); user != "" {
		it.UserID = &user
	}

	it.Type = utils.NormalizeKey(AsString(doc.Get("type")))
	if !models.IsValidInteractionType(it.Type) {
		if it.Type == "" {
			note("type", ReasonDefaulted)
		} else {
			note("type", ReasonInvalidEnum)
		}

		it.Type = models.InteractionView
	}

	if v := doc.Get("value"); !v.IsAbsent() {
		if n, ok := AsInt(v); ok {
			it.Value = &n
		} else {
			note("value", ReasonUnparsable)
		}
	}

	ts, lenient, ok := ParseTimestamp(doc.First("timestamp", "created_at"))

	switch {
	case !ok:
		it.Timestamp = UnknownTimestamp
		note("timestamp", ReasonUnparsable)
	case lenient:
		it.Timestamp = FormatTimestamp(ts)
		note("timestamp", ReasonLenient)
	default:
		it.Timestamp = FormatTimestamp(ts)
	}

	return it, repairs
}

// InteractionID resolves an interaction's identity: interaction_id, else the
// document-store id. It returns "" when neither is present.
func InteractionID(doc *models.Document) string {
	return doc.First("interaction_id", models.FieldDocID).Display()
}

// InteractionRecipeID resolves the recipe reference of an interaction.
func InteractionRecipeID(doc *models.Document) string {
	return doc.First(models.FieldRecipeID, "recipe", "recipe_id_from_doc").Display()
}

// GeneratedInteractionID derives an identifier from a document's position and content.
func GeneratedInteractionID(pos int, doc *models.Document) string {
	data, err := doc.MarshalJSON()
	if err != nil {
		data = []byte(doc.String())
	}

	name := append([]byte("interaction/"+strconv.Itoa(pos)+"/"), data...)

	return uuid.NewSHA1(idNamespace, name).String()
}

// FilterInteractions removes interactions whose recipe_id is not in the recipe
// relation, keeping the order of the rest.
func FilterInteractions(recipes []models.Recipe, interactions []models.Interaction) ([]models.Interaction, FilterStats) {
	known := make(map[string]struct{}, len(recipes))
	for _, r := range recipes {
		known[r.RecipeID] = struct{}{}
	}

	kept := make([]models.Interaction, 0, len(interactions))

	for _, it := range interactions {
		if _, ok := known[it.RecipeID]; ok {
			kept = append(kept, it)
		}
	}

	return kept, FilterStats{
		Before:  len(interactions),
		After:   len(kept),
		Dropped: len(interactions) - len(kept),
	}
}
