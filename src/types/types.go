package types

// Record is one user record as read from an input source. Only the score is consumed;
// Source and Index locate the record for error messages.
type Record struct {
	Source string  `json:"source"`
	Index  int     `json:"index"`
	Score  float64 `json:"score"`
}

// Scores extracts the score sequence in record order.
func Scores(recs []Record) []float64 {
	out := make([]float64, len(recs))
	for i, r := range recs {
		out[i] = r.Score
	}
	return out
}
