package chessdto

// AnalysisResponse keeps the field names of the original analyze endpoint
// and adds the opening and source.
type AnalysisResponse struct {
	Evaluation  string   `json:"evaluation"`
	BestMove    string   `json:"bestMove"`
	Analysis    string   `json:"analysis"`
	Suggestions []string `json:"suggestions"`
	Opening     string   `json:"opening,omitempty"`
	OpeningCode string   `json:"openingCode,omitempty"`
	Source      string   `json:"source"`
}

type HintResponse struct {
	Move        string `json:"move"`
	Explanation string `json:"explanation"`
	Evaluation  string `json:"evaluation,omitempty"`
}
