package grader

// Grade is the structured verdict shared by both graders: a binary
// decision plus the model's short rationale.
type Grade struct {
	BinaryScore bool   `json:"binary_score"`
	Reasoning   string `json:"reasoning"`
}
