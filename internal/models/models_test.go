package models

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) Value {
	t.Helper()

	v, err := DecodeValue(strings.NewReader(raw))
	require.NoError(t, err)

	return v
}

func TestDecodeValue_PreservesOrder(t *testing.T) {
	v := decode(t, `{"zeta": 1, "alpha": "x", "mid": null, "list": [true, 2.5, {"b": 1, "a": 2}]}`)
	require.Equal(t, KindMap, v.Kind())

	doc := v.Doc()

	keys := make([]string, 0, doc.Len())
	for _, f := range doc.Fields() {
		keys = append(keys, f.Key)
	}

	assert.Equal(t, []string{"zeta", "alpha", "mid", "list"}, keys)
	assert.True(t, doc.Get("mid").IsAbsent())
	assert.Equal(t, ScalarNumber, doc.Get("zeta").ScalarType())
	assert.Equal(t, "2.5", doc.Get("list").Items()[1].Text())

	data, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.Equal(t, `{"zeta":1,"alpha":"x","mid":null,"list":[true,2.5,{"b":1,"a":2}]}`, string(data))
}

func TestDecodeValue_Invalid(t *testing.T) {
	_, err := DecodeValue(strings.NewReader(`{"a": `))
	assert.Error(t, err)

	var doc Document
	assert.ErrorIs(t, json.Unmarshal([]byte(`[1, 2]`), &doc), ErrUnexpectedToken)
}

func TestValue_Truthy(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		want  bool
	}{
		{"absent", Absent(), false},
		{"empty string", String(""), false},
		{"string", String("x"), true},
		{"zero", Int(0), false},
		{"zero float", Number("0.0"), false},
		{"number", Number("1.5"), true},
		{"false", Bool(false), false},
		{"true", Bool(true), true},
		{"empty list", List(), false},
		{"list", List(Int(1)), true},
		{"empty map", Map(nil), false},
		{"map", Map(NewDocument(F("a", Int(1)))), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.value.Truthy())
		})
	}
}

func TestValue_Display(t *testing.T) {
	assert.Equal(t, "", Absent().Display())
	assert.Equal(t, "42", Int(42).Display())
	assert.Equal(t, "r1", String("r1").Display())
	assert.Equal(t, `["a",1]`, List(String("a"), Int(1)).Display())
	assert.Equal(t, `{"k":true}`, Map(NewDocument(F("k", Bool(true)))).Display())
}

func TestDocument_SetAndFirst(t *testing.T) {
	doc := NewDocument(
		F("recipe_id", String("")),
		F("recipe", String("r1")),
		F("recipe_id", String("")),
	)

	assert.Equal(t, 2, doc.Len())
	assert.Equal(t, "r1", doc.First("recipe_id", "recipe").Text())
	assert.True(t, doc.First("missing").IsAbsent())

	doc.Set("recipe_id", String("r2"))
	assert.Equal(t, "r2", doc.First("recipe_id", "recipe").Text())
	assert.Equal(t, "recipe_id", doc.Fields()[0].Key)

	var nilDoc *Document
	assert.True(t, nilDoc.Get("x").IsAbsent())
	assert.Equal(t, 0, nilDoc.Len())
	assert.Empty(t, nilDoc.Values())
}

func TestTags(t *testing.T) {
	tags := []string{"quick", "vegan"}
	assert.Equal(t, tags, SplitTags(JoinTags(tags)))
	assert.Equal(t, []string{}, SplitTags(""))
	assert.Equal(t, "ab", CleanTag("a"+TagSeparator+"b"))
}

func TestEnums(t *testing.T) {
	assert.True(t, IsValidDifficulty(DifficultyHard))
	assert.False(t, IsValidDifficulty("Hard"))
	assert.True(t, IsValidInteractionType(InteractionRating))
	assert.False(t, IsValidInteractionType("share"))
}

func TestDataset(t *testing.T) {
	ds := &Dataset{Recipes: []Recipe{{RecipeID: "r1"}, {RecipeID: "r2"}}}
	assert.Len(t, ds.RecipeIDs(), 2)

	_, ok := ds.RecipeIDs()["r2"]
	assert.True(t, ok)
}

func TestReasons(t *testing.T) {
	violations := []Violation{
		{Field: "title", Kind: MissingField, Detail: "missing title"},
		{Field: "difficulty", Kind: InvalidEnum, Detail: "invalid difficulty"},
	}

	assert.Equal(t, []string{"missing title", "invalid difficulty"}, Reasons(violations))
}
