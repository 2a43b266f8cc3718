package report

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"recipepipe/internal/aggregator"
	"recipepipe/internal/formatter"
	"recipepipe/internal/models"
	"recipepipe/internal/normalizer"
	"recipepipe/internal/validator"
	"recipepipe/pkg/metadata"
	"recipepipe/pkg/utils"
)

const maxReasonWidth = 120

// Summary is everything a run produced. Nil parts are left out of the markdown.
type Summary struct {
	Dataset    *models.Dataset
	Normalize  *normalizer.Result
	Checks     *normalizer.Checks
	Validation *validator.Report
	Insights   *aggregator.Insights
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func optNum(f *float64) string {
	if f == nil {
		return "n/a"
	}

	return strconv.FormatFloat(*f, 'f', 4, 64)
}

func seriesTable(keyHeader, valueHeader string, s aggregator.Series) string {
	rows := make([][]string, 0, len(s))
	for _, e := range s {
		rows = append(rows, []string{e.Key, num(e.Value)})
	}

	return formatter.Table([]string{keyHeader, valueHeader}, rows)
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

// RenderMarkdown renders the run summary as markdown, without the metadata block.
func RenderMarkdown(s Summary) string {
	var b strings.Builder

	b.WriteString("# Recipe pipeline report\n")

	if s.Normalize != nil {
		st := s.Normalize.Stats

		b.WriteString("\n## Normalization\n\n")
		b.WriteString(formatter.Table([]string{"Metric", "Count"}, [][]string{
			{"recipes in", strconv.Itoa(st.RecipesIn)},
			{"recipes out", strconv.Itoa(st.RecipesOut)},
			{"interactions in", strconv.Itoa(st.InteractionsIn)},
			{"interactions kept", strconv.Itoa(st.Filter.After)},
		}))
		b.WriteString("\n\n")

		drops := make([][]string, 0, len(st.Dropped))
		for _, reason := range sortedKeys(st.Dropped) {
			drops = append(drops, []string{reason, strconv.Itoa(st.Dropped[reason])})
		}

		b.WriteString(formatter.Table([]string{"Dropped", "Rows"}, drops))
		b.WriteString("\n")

		if len(s.Normalize.Repairs) > 0 {
			repairs := make([][]string, 0, len(s.Normalize.Repairs))
			for _, key := range sortedKeys(s.Normalize.Repairs) {
				repairs = append(repairs, []string{key, strconv.Itoa(s.Normalize.Repairs[key])})
			}

			b.WriteString("\n")
			b.WriteString(formatter.Table([]string{"Repair", "Fields"}, repairs))
			b.WriteString("\n")
		}
	}

	if s.Checks != nil {
		b.WriteString("\n## Post-transform checks\n\n")
		b.WriteString(formatter.Table([]string{"Check", "Count", "Sample"}, [][]string{
			{"recipes without ingredients", strconv.Itoa(len(s.Checks.RecipesWithoutIngredients)),
				strings.Join(normalizer.Sample(s.Checks.RecipesWithoutIngredients), ", ")},
			{"recipes without steps", strconv.Itoa(len(s.Checks.RecipesWithoutSteps)),
				strings.Join(normalizer.Sample(s.Checks.RecipesWithoutSteps), ", ")},
			{"interactions with blank timestamp", strconv.Itoa(s.Checks.BlankTimestamps), ""},
		}))
		b.WriteString("\n")
	}

	if s.Validation != nil {
		writeValidation(&b, s.Validation)
	}

	if s.Insights != nil {
		writeInsights(&b, s.Insights)
	}

	return b.String()
}

func writeValidation(b *strings.Builder, rep *validator.Report) {
	b.WriteString("\n## Validation\n\n")

	relations := []struct {
		name string
		r    validator.RelationReport
	}{
		{"recipes", rep.Recipes},
		{"interactions", rep.Interactions},
		{"users", rep.Users},
	}

	rows := make([][]string, 0, len(relations))
	for _, rel := range relations {
		rows = append(rows, []string{
			rel.name, strconv.Itoa(rel.r.Total), strconv.Itoa(rel.r.Valid), strconv.Itoa(rel.r.Invalid),
		})
	}

	b.WriteString(formatter.Table([]string{"Relation", "Total", "Valid", "Invalid"}, rows))
	b.WriteString("\n")

	for _, rel := range relations {
		if len(rel.r.InvalidExamples) == 0 {
			continue
		}

		examples := make([][]string, 0, len(rel.r.InvalidExamples))
		for _, ex := range rel.r.InvalidExamples {
			reasons := utils.TruncateString(strings.Join(ex.Reasons, reasonSeparator), maxReasonWidth)
			examples = append(examples, []string{ex.ID, reasons})
		}

		fmt.Fprintf(b, "\n### Invalid %s\n\n", rel.name)
		b.WriteString(formatter.Table([]string{"ID", "Reasons"}, examples))
		b.WriteString("\n")
	}
}

func writeInsights(b *strings.Builder, ins *aggregator.Insights) {
	b.WriteString("\n## Insights\n\n")

	b.WriteString(formatter.Table([]string{"Prep time", "Minutes"}, [][]string{
		{"mean", optNum(ins.AvgPrepTime.Mean)},
		{"median", optNum(ins.AvgPrepTime.Median)},
		{"std", optNum(ins.AvgPrepTime.Std)},
	}))
	fmt.Fprintf(b, "\n\nPrep time vs likes (Pearson r): %s\n", optNum(ins.PrepLikesCorrelation))

	sections := []struct {
		title, key, value string
		s                 aggregator.Series
	}{
		{"Most common ingredients", "Ingredient", "Recipes", ins.MostCommonIngredients},
		{"Difficulty distribution", "Difficulty", "Recipes", ins.DifficultyDistribution},
		{"Top viewed recipes", "Recipe", "Views", ins.TopViewedRecipes},
		{"Ingredients associated with high engagement", "Ingredient", "Engagement", ins.IngredientsHighEngagement},
		{"Top rated recipes", "Recipe", "Avg rating", ins.TopRatedRecipesAvgRating},
		{"Engagement by difficulty", "Difficulty", "Avg score", ins.EngagementByDifficulty},
		{"Avg likes by prep time bucket", "Bucket", "Avg likes", ins.AvgLikesByTimeBucket},
	}

	for _, sec := range sections {
		fmt.Fprintf(b, "\n### %s\n\n", sec.title)
		b.WriteString(seriesTable(sec.key, sec.value, sec.s))
		b.WriteString("\n")
	}

	conv := make([][]string, 0, len(ins.TopConversionLikeRate))
	for _, c := range ins.TopConversionLikeRate {
		conv = append(conv, []string{c.RecipeID, num(c.LikeRate), num(c.AttemptRate)})
	}

	b.WriteString("\n### Top conversion\n\n")
	b.WriteString(formatter.Table([]string{"Recipe", "Like rate", "Attempt rate"}, conv))
	b.WriteString("\n")
}

// WriteMarkdown renders and signs report.md. The metadata block records whether
// validation passed and the fingerprint of the normalized relations.
func (e *Emitter) WriteMarkdown(s Summary) error {
	if !e.writeMarkdown {
		return nil
	}

	dataset := ""

	if s.Dataset != nil {
		fp, err := metadata.Fingerprint(s.Dataset)
		if err != nil {
			return err
		}

		dataset = fp
	}

	validated := s.Validation != nil && s.Validation.IsValid()
	content := metadata.Sign(RenderMarkdown(s), validated, dataset)

	return e.writeFile([]byte(content), SummaryMarkdown)
}

