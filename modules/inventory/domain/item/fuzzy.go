package item

import (
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// FuzzyFilter ranks items by how closely their name matches query, falling
// back to item_id. Closest matches come first.
func FuzzyFilter(items []*Item, query string) []*Item {
	if query == "" || items == nil {
		return items
	}
	type scored struct {
		item *Item
		rank int
	}
	var hits []scored
	for _, it := range items {
		rank := fuzzy.RankMatchNormalizedFold(query, it.Name.String())
		if idRank := fuzzy.RankMatchNormalizedFold(query, it.ItemID.String()); idRank >= 0 && (rank < 0 || idRank < rank) {
			rank = idRank
		}
		if rank < 0 {
			continue
		}
		hits = append(hits, scored{item: it, rank: rank})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].rank < hits[j].rank })

	out := make([]*Item, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.item)
	}
	return out
}
