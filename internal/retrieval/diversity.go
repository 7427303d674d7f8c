package retrieval

import (
	"github.com/storybutton/sound-engine/internal/catalog"
	"github.com/storybutton/sound-engine/internal/token"
)

// MMR trade-off between a candidate's own score and its similarity to what
// is already selected.
const (
	mmrRelevanceWeight = 0.8
	mmrDiversityWeight = 0.2
)

// Pairwise similarity blend between shared tag/filename tokens and category
// equality.
const (
	pairTokenWeight    = 0.6
	pairCategoryWeight = 0.4
)

// SelectDiverse picks up to targetMusic music entries and targetSfx effect
// entries by greedy maximal-marginal-relevance within each bucket, then
// backfills any remaining room from the overall ranking. The result is
// truncated to limit.
func SelectDiverse(ranked []Ranked, targetMusic, targetSfx, limit int) []*catalog.Entry {
	var music, sfx []Ranked
	for _, r := range ranked {
		if r.Entry.ItemType == catalog.ItemTypeMusic {
			music = append(music, r)
		} else {
			sfx = append(sfx, r)
		}
	}

	picked := make(map[*catalog.Entry]bool)
	out := make([]*catalog.Entry, 0, limit)
	for _, e := range mmrPick(music, targetMusic) {
		picked[e] = true
		out = append(out, e)
	}
	for _, e := range mmrPick(sfx, targetSfx) {
		picked[e] = true
		out = append(out, e)
	}

	// Backfill keeps the overall ranking order for whatever the buckets
	// did not cover.
	for _, r := range ranked {
		if len(out) >= limit {
			break
		}
		if picked[r.Entry] {
			continue
		}
		picked[r.Entry] = true
		out = append(out, r.Entry)
	}

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// mmrPick greedily selects up to target entries from one bucket. Each round
// takes the candidate maximizing relevance minus redundancy; on ties the
// earlier (higher-ranked) candidate wins.
func mmrPick(bucket []Ranked, target int) []*catalog.Entry {
	if target <= 0 || len(bucket) == 0 {
		return nil
	}

	selected := make([]*catalog.Entry, 0, target)
	used := make([]bool, len(bucket))
	for len(selected) < target {
		bestIdx := -1
		bestScore := 0.0
		for i, r := range bucket {
			if used[i] {
				continue
			}
			maxSim := 0.0
			for _, s := range selected {
				if sim := pairSim(r.Entry, s); sim > maxSim {
					maxSim = sim
				}
			}
			mmr := mmrRelevanceWeight*r.Score - mmrDiversityWeight*maxSim
			if bestIdx == -1 || mmr > bestScore {
				bestIdx = i
				bestScore = mmr
			}
		}
		if bestIdx == -1 {
			break
		}
		used[bestIdx] = true
		selected = append(selected, bucket[bestIdx].Entry)
	}
	return selected
}

// pairSim measures how interchangeable two entries are: shared tag and
// filename tokens plus matching category. Two entries with no category both
// count as matching.
func pairSim(a, b *catalog.Entry) float64 {
	tokenSim := token.Jaccard(a.SimTokens(), b.SimTokens())
	categorySim := 0.0
	if a.CategoryLower() == b.CategoryLower() {
		categorySim = 1.0
	}
	return pairTokenWeight*tokenSim + pairCategoryWeight*categorySim
}
