package entity

// Suggestion считается на каждый запрос и нигде не хранится.
type Suggestion struct {
	SuggestedTitle       string  `json:"suggested_title"`
	SuggestedDescription string  `json:"suggested_description"`
	ConfidenceScore      float64 `json:"confidence_score"`
	Reasoning            string  `json:"reasoning"`
}
