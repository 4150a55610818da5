package behavior

import "sort"

// Category is one of the fixed behavioral labels.
type Category struct {
	Index       int    `json:"index"`
	Name        string `json:"name"`
	Emoji       string `json:"emoji"`
	Explanation string `json:"explanation"`
}

// Label is the name with its marker, e.g. "🔥 High Procrastinator".
func (c Category) Label() string { return c.Emoji + " " + c.Name }

// categories is ordered by index: 0 High, 1 Moderate, 2 Low.
var categories = [...]Category{
	{
		Index:       0,
		Name:        "High Procrastinator",
		Emoji:       "🔥",
		Explanation: "You frequently postpone important tasks and struggle to start on time. Try using small goals, deadlines, and distraction-free environments to improve productivity.",
	},
	{
		Index:       1,
		Name:        "Moderate Procrastinator",
		Emoji:       "⚖️",
		Explanation: "You occasionally delay tasks, especially when motivation is low. Building better routines and time management habits can help you stay consistent.",
	},
	{
		Index:       2,
		Name:        "Low Procrastinator",
		Emoji:       "🚀",
		Explanation: "You usually manage tasks efficiently and avoid unnecessary delays. Maintaining your current planning and focus strategies will help sustain this productivity.",
	},
}

// Categories returns a copy of the category table.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories[:])
	return out
}

// rankByDelay maps cluster ids to category indices: the centroid with the
// largest delay component becomes High, the smallest Low. Ties keep id order.
// With more than three clusters the surplus falls into Low.
func rankByDelay(centroids [][]float64, delayDim int) []int {
	ids := make([]int, len(centroids))
	for i := range ids {
		ids[i] = i
	}
	sort.SliceStable(ids, func(a, b int) bool {
		return centroids[ids[a]][delayDim] > centroids[ids[b]][delayDim]
	})
	out := make([]int, len(centroids))
	last := len(categories) - 1
	for rank, id := range ids {
		if rank > last {
			rank = last
		}
		out[id] = rank
	}
	return out
}
