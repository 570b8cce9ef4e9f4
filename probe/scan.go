package probe

import (
	"github.com/grailbio/hybsel/interval"
	"github.com/pkg/errors"
)

// FindCoversInSequence walks the target sequence, uses the kmer map as a
// candidate filter, and applies coverFn to each implied probe alignment.
// It returns, for every probe with at least one cover, the covered ranges
// in sequence coordinates.
//
// Each kmer hit at position i against an entry (probe, offset) implies an
// alignment of the probe starting at a = i - offset.  The aligned window is
// clipped to [max(0,a), min(len(sequence), a+len(probe))) and each distinct
// alignment is evaluated exactly once per probe, no matter how many sampled
// kmers point at it.  A probe aligning at several positions contributes one
// range per covering alignment, in scan order.  With mergeOverlapping set,
// each probe's ranges are canonicalized; otherwise duplicates and overlaps
// are preserved, which depth computations rely on.
//
// The map must have been built for the same k the caller scans with.
func FindCoversInSequence(sequence string, m *KmerMap, k int, coverFn CoverFn, mergeOverlapping bool) (map[Probe][]interval.Interval, error) {
	if m.K != k {
		return nil, errors.Errorf("kmer map was built for k=%d, scan requested k=%d", m.K, k)
	}
	covers := make(map[Probe][]interval.Interval)
	checked := make(map[Probe]map[int]bool)
	for i := 0; i+k <= len(sequence); i++ {
		entries := m.Get(sequence[i : i+k])
		if len(entries) == 0 {
			continue
		}
		for _, e := range entries {
			alignStart := i - e.Offset
			if done := checked[e.Probe]; done[alignStart] {
				continue
			}
			if checked[e.Probe] == nil {
				checked[e.Probe] = make(map[int]bool)
			}
			checked[e.Probe][alignStart] = true

			ws := alignStart
			if ws < 0 {
				ws = 0
			}
			we := alignStart + e.Probe.Len()
			if we > len(sequence) {
				we = len(sequence)
			}
			if we <= ws {
				continue
			}
			window := sequence[ws:we]
			probeWindow := e.Probe.Seq[ws-alignStart : we-alignStart]
			start, end, ok := coverFn(window, probeWindow)
			if !ok {
				continue
			}
			covers[e.Probe] = append(covers[e.Probe], interval.Interval{
				Start: int64(ws + start),
				End:   int64(ws + end),
			})
		}
	}
	if mergeOverlapping {
		for p, ivs := range covers {
			covers[p] = interval.Merge(ivs)
		}
	}
	return covers, nil
}
