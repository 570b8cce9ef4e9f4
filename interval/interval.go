// Package interval implements half-open integer intervals and interval-union
// operations over genomic coordinates.  Overlapping and abutting intervals
// are merged; use the raw []Interval form when overlaps must be tracked
// separately (e.g. for depth computations).
package interval

import (
	"sort"

	"github.com/grailbio/base/log"
)

// PosType is the type used to represent interval coordinates.  Positions are
// concatenated-genome offsets, so they are 64-bit even though any single
// chromosome fits comfortably in 32 bits.
type PosType = int64

// Interval is a half-open range [Start, End), with Start < End.
type Interval struct {
	// Start is included.
	Start PosType
	// End is excluded.
	End PosType
}

// Length returns End - Start.
func (i Interval) Length() PosType { return i.End - i.Start }

// Merge sorts the given intervals and coalesces every overlapping or
// abutting pair, returning the canonical disjoint form.  [0,5) and [5,10)
// fuse into [0,10).  The input slice is not modified.  An empty or nil input
// yields nil.
func Merge(ivs []Interval) []Interval {
	if len(ivs) == 0 {
		return nil
	}
	sorted := make([]Interval, len(ivs))
	copy(sorted, ivs)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End < sorted[j].End
	})
	merged := sorted[:1]
	if sorted[0].Start >= sorted[0].End {
		log.Panicf("inverted range %+v", sorted[0])
	}
	for _, iv := range sorted[1:] {
		if iv.Start >= iv.End {
			log.Panicf("inverted range %+v", iv)
		}
		last := &merged[len(merged)-1]
		if iv.Start <= last.End {
			if iv.End > last.End {
				last.End = iv.End
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}

// TotalLength returns the sum of lengths of the given canonical (disjoint)
// intervals.
func TotalLength(ivs []Interval) PosType {
	var n PosType
	for _, iv := range ivs {
		n += iv.Length()
	}
	return n
}

// Set is an interval-union in canonical form.  It is stored as a sorted
// sequence of interval endpoints: the (0-based) start position of interval
// #k is element [2k] and its end position is element [2k+1].  This
// representation keeps inversion and binary-search code simple.
type Set struct {
	endpoints []PosType
}

// NewSet canonicalizes any collection of intervals into a Set.
func NewSet(ivs []Interval) Set {
	merged := Merge(ivs)
	endpoints := make([]PosType, 0, 2*len(merged))
	for _, iv := range merged {
		endpoints = append(endpoints, iv.Start, iv.End)
	}
	return Set{endpoints: endpoints}
}

// Length returns the number of positions contained in the set.
func (s Set) Length() PosType {
	var n PosType
	for i := 0; i < len(s.endpoints); i += 2 {
		n += s.endpoints[i+1] - s.endpoints[i]
	}
	return n
}

// NumIntervals returns the number of disjoint intervals in the set.
func (s Set) NumIntervals() int { return len(s.endpoints) / 2 }

// Intervals returns the canonical disjoint intervals in ascending order.
func (s Set) Intervals() []Interval {
	ivs := make([]Interval, 0, len(s.endpoints)/2)
	for i := 0; i < len(s.endpoints); i += 2 {
		ivs = append(ivs, Interval{s.endpoints[i], s.endpoints[i+1]})
	}
	return ivs
}

// Contains reports whether pos falls inside the set.  The endpoint index of
// pos+1 is odd exactly when pos is interior to an interval.
func (s Set) Contains(pos PosType) bool {
	idx := sort.Search(len(s.endpoints), func(i int) bool { return s.endpoints[i] >= pos+1 })
	return idx&1 != 0
}
