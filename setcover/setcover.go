// Package setcover approximates solutions to weighted partial set-cover
// problems with the classic greedy algorithm: repeatedly choose the set
// minimizing the ratio of its cost to the number of still-needed elements
// it covers.  The solution is a ceil(ln(D))-approximation of the optimum,
// where D is the cardinality of the largest set.
//
// Element values are int64; callers encode richer element identities (e.g.
// genome, strand, and base position) into that space.
package setcover

import (
	"math"
	"sort"

	"github.com/grailbio/base/log"
	"github.com/pkg/errors"
)

// slack returns the number of universe elements that may be left uncovered
// for a coverage fraction p.  The floor must be taken on |U| - p*|U|, not on
// (1-p)*|U|: the latter rounds the wrong way when (1-p)*|U| is representably
// just below an integer (e.g. (1-0.8)*5).
func slack(universeSize int, p float64) int {
	return int(math.Floor(float64(universeSize) - p*float64(universeSize)))
}

func defaultCosts(ids []int) map[int]float64 {
	costs := make(map[int]float64, len(ids))
	for _, id := range ids {
		costs[id] = 1
	}
	return costs
}

func validateCosts(sets map[int]bool, costs map[int]float64) error {
	for id, c := range costs {
		if c < 0 {
			return errors.Errorf("cost of set %d is negative (%v); all costs must be nonnegative", id, c)
		}
	}
	for id := range sets {
		if _, ok := costs[id]; !ok {
			return errors.Errorf("costs is missing a value for set %d", id)
		}
	}
	return nil
}

func sortedIDs(n map[int]bool) []int {
	ids := make([]int, 0, len(n))
	for id := range n {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Approx approximates a minimum-cost collection of the given sets covering
// at least a fraction p of their union.  costs may be nil, in which case
// every set costs 1.  The chosen set identifiers are returned in ascending
// order.  Ties in the cost/coverage ratio are broken toward the smallest
// identifier, so the result is deterministic.
func Approx(sets map[int][]int64, costs map[int]float64, p float64) ([]int, error) {
	if p < 0 || p > 1 {
		return nil, errors.Errorf("p must be in [0,1], got %v", p)
	}
	idSet := make(map[int]bool, len(sets))
	for id := range sets {
		idSet[id] = true
	}
	if costs == nil {
		costs = defaultCosts(sortedIDs(idSet))
	} else if err := validateCosts(idSet, costs); err != nil {
		return nil, err
	}

	universe := make(map[int64]bool)
	for _, s := range sets {
		for _, v := range s {
			universe[v] = true
		}
	}
	maxUncovered := slack(len(universe), p)
	remaining := len(universe) - maxUncovered

	notInCover := sortedIDs(idSet)
	var cover []int
	for remaining > 0 {
		bestIdx, bestRatio := -1, math.Inf(1)
		for i, id := range notInCover {
			covered := 0
			for _, v := range sets[id] {
				if universe[v] {
					covered++
				}
			}
			needed := covered
			if needed > remaining {
				needed = remaining
			}
			if needed == 0 {
				continue
			}
			ratio := costs[id] / float64(needed)
			if ratio < bestRatio {
				bestIdx, bestRatio = i, ratio
			}
		}
		if bestIdx < 0 {
			// The universe is the union of the sets, so a cover always exists.
			log.Panicf("no set can cover %d remaining elements", remaining)
		}
		id := notInCover[bestIdx]
		cover = append(cover, id)
		notInCover = append(notInCover[:bestIdx], notInCover[bestIdx+1:]...)
		for _, v := range sets[id] {
			delete(universe, v)
		}
		remaining = len(universe) - maxUncovered
		if remaining < 0 {
			remaining = 0
		}
	}
	sort.Ints(cover)
	return cover, nil
}
