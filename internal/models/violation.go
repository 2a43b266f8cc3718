package models

// ViolationKind classifies a rule failure.
type ViolationKind string

// Violation kinds. Only MissingIdentifier ever removes a row during normalization;
// every other kind is repaired by the normalizer and reported by the validator.
const (
	MissingIdentifier   ViolationKind = "missing_identifier"
	MissingField        ViolationKind = "missing_field"
	InvalidType         ViolationKind = "invalid_type"
	InvalidEnum         ViolationKind = "invalid_enum"
	EmptyCollection     ViolationKind = "empty_collection"
	UnresolvedReference ViolationKind = "unresolved_reference"
	UnparsableTimestamp ViolationKind = "unparsable_timestamp"
	OutOfRangeValue     ViolationKind = "out_of_range_value"
)

// Violation is one failed rule on one record.
type Violation struct {
	Field  string        `json:"field"`
	Kind   ViolationKind `json:"kind"`
	Detail string        `json:"detail"`
}

// Reason returns the human-readable reason.
func (v Violation) Reason() string {
	return v.Detail
}

// Reasons flattens violations into their reason strings, keeping order.
func Reasons(violations []Violation) []string {
	out := make([]string, 0, len(violations))
	for _, v := range violations {
		out = append(out, v.Reason())
	}

	return out
}
