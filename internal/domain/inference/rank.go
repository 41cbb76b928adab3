package inference

import "sort"

// Rank returns the k most probable predictions, highest first. Equal probabilities keep
// their original order. The input slice is not modified.
func Rank(preds []Prediction, k int) []Prediction {
	sorted := make([]Prediction, len(preds))
	copy(sorted, preds)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Probability > sorted[j].Probability
	})
	if k >= 0 && len(sorted) > k {
		sorted = sorted[:k]
	}
	return sorted
}
