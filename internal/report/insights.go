package report

import (
	"encoding/json"
	"strconv"

	"recipepipe/internal/aggregator"
)

// InsightColumns is the layout of insights_table.csv.
var InsightColumns = []string{"insight", "value"}

// InsightRows lists each insight with a human label and its compact JSON value.
// The correlation is written as a plain number, or empty when undefined.
func InsightRows(ins *aggregator.Insights) ([][]string, error) {
	labelled := []struct {
		label string
		cell  cell
	}{
		{"Most common ingredients", jsonCell(ins.MostCommonIngredients)},
		{"Average prep time (mean/median/std)", jsonCell(ins.AvgPrepTime)},
		{"Difficulty distribution", jsonCell(ins.DifficultyDistribution)},
		{"Prep-Likes correlation (Pearson r)", textCell(correlationCell(ins.PrepLikesCorrelation))},
		{"Top viewed recipes", jsonCell(ins.TopViewedRecipes)},
		{"Ingredients associated with high engagement", jsonCell(ins.IngredientsHighEngagement)},
		{"Top rated recipes (avg rating)", jsonCell(ins.TopRatedRecipesAvgRating)},
		{"Top conversion like-rate (recipes)", jsonCell(ins.TopConversionLikeRate)},
		{"Engagement by difficulty", jsonCell(ins.EngagementByDifficulty)},
		{"Avg likes by prep time bucket", jsonCell(ins.AvgLikesByTimeBucket)},
	}

	rows := make([][]string, 0, len(labelled))

	for _, l := range labelled {
		value, err := l.cell()
		if err != nil {
			return nil, err
		}

		rows = append(rows, []string{l.label, value})
	}

	return rows, nil
}

// cell renders the value column of one insight row.
type cell func() (string, error)

func jsonCell(v any) cell {
	return func() (string, error) {
		data, err := json.Marshal(v)
		if err != nil {
			return "", err
		}

		return string(data), nil
	}
}

func textCell(s string) cell {
	return func() (string, error) { return s, nil }
}

func correlationCell(r *float64) string {
	if r == nil {
		return ""
	}

	return strconv.FormatFloat(*r, 'g', -1, 64)
}

// WriteInsights writes insights_summary.json and, when CSV output is enabled,
// insights_table.csv.
func (e *Emitter) WriteInsights(ins *aggregator.Insights) error {
	if err := e.writeJSON(ins, InsightsJSON); err != nil {
		return err
	}

	if !e.writeCSV {
		return nil
	}

	rows, err := InsightRows(ins)
	if err != nil {
		return err
	}

	if err := e.writeTable(InsightColumns, rows, InsightsCSV); err != nil {
		return err
	}

	e.log.Info("wrote insights", "path", e.Path(InsightsJSON))

	return nil
}
