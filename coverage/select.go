package coverage

import (
	"sync"

	"blainsmith.com/go/seahash"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	"github.com/grailbio/hybsel/genome"
	"github.com/grailbio/hybsel/probe"
	"github.com/grailbio/hybsel/setcover"
	"github.com/pkg/errors"
)

// SelectOpts parameterizes probe selection.
type SelectOpts struct {
	Opts
	// CoverageFrac is the fraction of each genome's coverable bases, forward
	// and reverse-complement positions counted together, that the chosen
	// probes must cover.
	CoverageFrac float64
	// Ranks optionally assigns a priority class to each input probe
	// (parallel to the probe slice, after duplicate removal).  Probes of a
	// smaller rank are exhausted before probes of a larger rank are
	// considered.
	Ranks []int
}

// DefaultSelectOpts selects a full cover with the default coverage
// parameters.
var DefaultSelectOpts = SelectOpts{Opts: DefaultOpts, CoverageFrac: 1.0}

const nCoverMapShards = 256

type coverMapShard struct {
	mu    sync.Mutex
	elems map[probe.Probe]map[int][]int64
}

// concurrentCoverMap is a sharded map from probe to the elements it covers
// in each universe.  Scans of independent (group, genome, strand) targets
// append to it concurrently; add locks its shard, get does not and must not
// run concurrently with add.
type concurrentCoverMap struct {
	shards [nCoverMapShards]coverMapShard
}

func newConcurrentCoverMap() *concurrentCoverMap {
	m := &concurrentCoverMap{}
	for i := range m.shards {
		m.shards[i].elems = make(map[probe.Probe]map[int][]int64)
	}
	return m
}

func (m *concurrentCoverMap) add(p probe.Probe, universeID int, elems []int64) {
	h := seahash.Sum64([]byte(p.Seq))
	shard := &m.shards[int(h%uint64(nCoverMapShards))]

	shard.mu.Lock()
	byUniverse := shard.elems[p]
	if byUniverse == nil {
		byUniverse = make(map[int][]int64)
		shard.elems[p] = byUniverse
	}
	byUniverse[universeID] = append(byUniverse[universeID], elems...)
	shard.mu.Unlock()
}

func (m *concurrentCoverMap) get(p probe.Probe) map[int][]int64 {
	h := seahash.Sum64([]byte(p.Seq))
	shard := &m.shards[int(h%uint64(nCoverMapShards))]
	return shard.elems[p]
}

// SelectProbes chooses a subset of the candidate probes whose covers span
// at least CoverageFrac of each target genome's coverable bases, both
// strands taken together.  Base positions covered on the forward strand and on the reverse
// complement are distinct elements of the same per-genome universe.  The
// chosen probes are returned in candidate order.
func SelectProbes(candidates []probe.Probe, targets [][]genome.Genome, opts SelectOpts) ([]probe.Probe, error) {
	if opts.CoverageFrac < 0 || opts.CoverageFrac > 1 {
		return nil, errors.Errorf("coverage fraction must be in [0,1], got %v", opts.CoverageFrac)
	}
	candidates = probe.FilterDuplicates(candidates)
	if opts.Ranks != nil && len(opts.Ranks) != len(candidates) {
		return nil, errors.Errorf("ranks has %d entries for %d distinct probes", len(opts.Ranks), len(candidates))
	}

	log.Printf("building map from %d-mers to %d candidate probes", opts.KmerSize, len(candidates))
	m := probe.BuildKmerMap(candidates, opts.KmerSize, opts.NumKmersPerProbe, opts.Seed)

	// One universe per (grouping, genome) pair.
	universeID := make(map[target]int)
	numUniverses := 0
	for i, group := range targets {
		for j := range group {
			universeID[target{group: i, genome: j}] = numUniverses
			numUniverses++
		}
	}

	coverFn := probe.CoverByLongestCommonSubstring(opts.Mismatches, opts.LCFThres)
	covers := newConcurrentCoverMap()
	scans := enumerateTargets(targets)
	err := traverse.Each(len(scans), func(n int) error {
		tgt := scans[n]
		gnm := targets[tgt.group][tgt.genome]
		uid := universeID[target{group: tgt.group, genome: tgt.genome}]
		strandBit := int64(0)
		if tgt.strand == Reverse {
			strandBit = 1
		}
		var lengthSoFar int64
		for _, chrom := range gnm.Chroms {
			seq := chrom.Seq
			if tgt.strand == Reverse {
				seq = probe.ReverseComplement(seq)
			}
			perProbe, err := probe.FindCoversInSequence(seq, m, opts.KmerSize, coverFn, true)
			if err != nil {
				return err
			}
			for p, ivs := range perProbe {
				var elems []int64
				for _, iv := range ivs {
					for pos := iv.Start; pos < iv.End; pos++ {
						elems = append(elems, (lengthSoFar+pos)<<1|strandBit)
					}
				}
				covers.add(p, uid, elems)
			}
			lengthSoFar += int64(len(chrom.Seq))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sets := make(map[int]map[int][]int64)
	var ranks map[int]int
	if opts.Ranks != nil {
		ranks = make(map[int]int, len(candidates))
	}
	for idx, p := range candidates {
		if byUniverse := covers.get(p); byUniverse != nil {
			sets[idx] = byUniverse
			if ranks != nil {
				ranks[idx] = opts.Ranks[idx]
			}
		}
	}
	universeP := make(map[int]float64, numUniverses)
	for _, uid := range universeID {
		universeP[uid] = opts.CoverageFrac
	}

	chosenIDs, err := setcover.ApproxMultiuniverse(sets, nil, universeP, ranks)
	if err != nil {
		return nil, err
	}
	chosen := make([]probe.Probe, 0, len(chosenIDs))
	for _, id := range chosenIDs {
		chosen = append(chosen, candidates[id])
	}
	log.Printf("selected %d of %d candidate probes", len(chosen), len(candidates))
	return chosen, nil
}
