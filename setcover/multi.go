package setcover

import (
	"fmt"
	"math"
	"sort"

	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	"github.com/pkg/errors"
)

// InfeasibleError reports that a universe's coverage target cannot be met by
// the union of the available sets.
type InfeasibleError struct {
	// Universe is the identifier of the (lowest-numbered) universe whose
	// deficit could not be reduced to zero.
	Universe int
	// Deficit is the number of elements still needed when the ranks were
	// exhausted.
	Deficit int
}

func (e *InfeasibleError) Error() string {
	return fmt.Sprintf("cannot meet coverage target for universe %d: %d elements short", e.Universe, e.Deficit)
}

// ApproxMultiuniverse generalizes Approx to multiple universes: each set may
// cover elements in several universes, and each universe independently
// carries a coverage-fraction target.  Elements with the same value in
// different universes are distinct.
//
// sets maps a set identifier to the elements it covers, split by universe.
// costs defaults to 1 per set; universeP defaults to full coverage of every
// universe; ranks defaults to one rank for all sets.  Ranks partition the
// sets into hard priority classes: all possible coverage is extracted from
// sets of the smallest rank before any higher-rank set is considered,
// regardless of cost.  (A rank is equivalent to scaling the cost by a
// constant larger than the total element count; ranks avoid that unbounded
// arithmetic.)
//
// The chosen identifiers are returned in ascending order.  Ratio ties are
// broken toward the smallest identifier.  If some universe's target cannot
// be met, an *InfeasibleError is returned.
func ApproxMultiuniverse(
	sets map[int]map[int][]int64,
	costs map[int]float64,
	universeP map[int]float64,
	ranks map[int]int,
) ([]int, error) {
	idSet := make(map[int]bool, len(sets))
	for id := range sets {
		idSet[id] = true
	}
	allIDs := sortedIDs(idSet)
	if costs == nil {
		costs = defaultCosts(allIDs)
	} else if err := validateCosts(idSet, costs); err != nil {
		return nil, err
	}

	// Derive the universes from the given sets.
	universes := make(map[int]map[int64]bool)
	for _, byUniverse := range sets {
		for universeID, s := range byUniverse {
			u := universes[universeID]
			if u == nil {
				u = make(map[int64]bool)
				universes[universeID] = u
			}
			for _, v := range s {
				u[v] = true
			}
		}
	}

	if universeP == nil {
		universeP = make(map[int]float64, len(universes))
		for universeID := range universes {
			universeP[universeID] = 1
		}
	} else {
		for universeID, p := range universeP {
			if p < 0 || p > 1 {
				return nil, errors.Errorf("coverage fraction of universe %d must be in [0,1], got %v", universeID, p)
			}
		}
		for universeID := range universes {
			if _, ok := universeP[universeID]; !ok {
				return nil, errors.Errorf("universeP is missing a value for universe %d", universeID)
			}
		}
	}

	if ranks == nil {
		ranks = make(map[int]int, len(sets))
		for id := range sets {
			ranks[id] = 1
		}
	} else {
		for id := range sets {
			if _, ok := ranks[id]; !ok {
				return nil, errors.Errorf("ranks is missing a value for set %d", id)
			}
		}
	}
	rankSet := make(map[int]bool)
	for _, r := range ranks {
		rankSet[r] = true
	}
	rankVals := sortedIDs(rankSet)
	currRankIndex := 0

	maxUncovered := make(map[int]int, len(universes))
	deficit := make(map[int]int, len(universes))
	for universeID, u := range universes {
		maxUncovered[universeID] = slack(len(u), universeP[universeID])
		deficit[universeID] = len(u) - maxUncovered[universeID]
	}
	anyDeficit := func() bool {
		for _, d := range deficit {
			if d > 0 {
				return true
			}
		}
		return false
	}
	totalDeficit := func() int {
		n := 0
		for _, d := range deficit {
			n += d
		}
		return n
	}

	// Intersection sizes between a set and a universe are the bottleneck,
	// and most universes are untouched in any given iteration.  Memoize the
	// sizes per universe and drop a universe's entries wholesale whenever
	// that universe shrinks.
	memo := make(map[int]map[int]int, len(universes))
	for universeID := range universes {
		memo[universeID] = make(map[int]int)
	}

	chosen := make(map[int]bool)
	var cover []int
	for anyDeficit() {
		if len(cover)%10 == 0 {
			log.Printf("selected %d sets with a total of %d elements remaining to be covered",
				len(cover), totalDeficit())
		}

		var candidates []int
		for _, id := range allIDs {
			// Sets of ranks below the current one were already unable to
			// reduce any deficit when their rank was current; universes only
			// shrink, so they still can't.
			if !chosen[id] && ranks[id] == rankVals[currRankIndex] {
				candidates = append(candidates, id)
			}
		}

		// Score candidates in parallel.  The scan only reads shared state;
		// freshly computed intersection sizes are merged into the memo
		// sequentially afterwards.
		needed := make([]int, len(candidates))
		fresh := make([]map[int]int, len(candidates))
		err := traverse.Each(len(candidates), func(i int) error {
			id := candidates[i]
			for universeID, s := range sets[id] {
				numCovered, ok := memo[universeID][id]
				if !ok {
					u := universes[universeID]
					for _, v := range s {
						if u[v] {
							numCovered++
						}
					}
					if fresh[i] == nil {
						fresh[i] = make(map[int]int)
					}
					fresh[i][universeID] = numCovered
				}
				n := numCovered
				if d := deficit[universeID]; n > d {
					n = d
				}
				needed[i] += n
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		for i, counts := range fresh {
			for universeID, n := range counts {
				memo[universeID][candidates[i]] = n
			}
		}

		bestIdx, bestRatio := -1, math.Inf(1)
		for i := range candidates {
			if needed[i] == 0 {
				continue
			}
			ratio := costs[candidates[i]] / float64(needed[i])
			if ratio < bestRatio {
				bestIdx, bestRatio = i, ratio
			}
		}
		if bestIdx < 0 {
			// No set of the current rank reduces any deficit; move on to the
			// next rank.  Running out of ranks means the targets are
			// unreachable.
			currRankIndex++
			if currRankIndex < len(rankVals) {
				continue
			}
			for _, universeID := range sortedIDs(boolKeys(deficit)) {
				if deficit[universeID] > 0 {
					return nil, &InfeasibleError{Universe: universeID, Deficit: deficit[universeID]}
				}
			}
			log.Panicf("rank exhaustion with no deficit")
		}

		id := candidates[bestIdx]
		chosen[id] = true
		cover = append(cover, id)
		for universeID, s := range sets[id] {
			u := universes[universeID]
			before := len(u)
			for _, v := range s {
				delete(u, v)
			}
			if len(u) != before {
				// The universe shrank; every memoized intersection size
				// involving it is stale.
				memo[universeID] = make(map[int]int)
				d := len(u) - maxUncovered[universeID]
				if d < 0 {
					d = 0
				}
				deficit[universeID] = d
			}
		}
	}
	sort.Ints(cover)
	return cover, nil
}

func boolKeys(m map[int]int) map[int]bool {
	keys := make(map[int]bool, len(m))
	for k := range m {
		keys[k] = true
	}
	return keys
}
