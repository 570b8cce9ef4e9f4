package probe

import (
	"math/rand"

	farm "github.com/dgryski/go-farm"
)

// This file implements the kmer -> (probe, offset) map used to find
// candidate probe alignments in a target sequence.  The map is physically
// sharded 256 ways using the low 8 bits of farmhash(kmer) to pick the shard;
// kmers are kept as strings (rather than 2-bit packed words) so that probes
// carrying ambiguity codes index correctly.

const nKmerMapShard = 256

// Entry records that Probe contains the indexed kmer at Offset, i.e.
// Probe.Seq[Offset:Offset+k] is the kmer.
type Entry struct {
	Probe  Probe
	Offset int
}

// KmerMap maps kmers to the probes that contain them, with the offsets
// needed to localize a candidate alignment.
type KmerMap struct {
	// K is the kmer length the map was built for.
	K int
	shards [nKmerMapShard]map[string][]Entry
}

func kmerShard(km string) int {
	return int(farm.Hash64([]byte(km)) & (nKmerMapShard - 1))
}

// BuildKmerMap indexes numKmersPerProbe kmers of length k from each probe.
// Offsets are drawn uniformly at random with replacement from [0, L-k]; a
// probe no longer than k is indexed whole at offset 0.  The same (probe,
// offset) pair is recorded at most once.  Sampling is driven by the given
// seed, so the map (and everything derived from it) is reproducible.
func BuildKmerMap(probes []Probe, k, numKmersPerProbe int, seed int64) *KmerMap {
	m := &KmerMap{K: k}
	for i := range m.shards {
		m.shards[i] = make(map[string][]Entry)
	}
	rng := rand.New(rand.NewSource(seed))
	for _, p := range probes {
		if p.Len() <= k {
			m.add(p.Seq, Entry{Probe: p, Offset: 0})
			continue
		}
		seen := make(map[int]bool, numKmersPerProbe)
		for n := 0; n < numKmersPerProbe; n++ {
			offset := rng.Intn(p.Len() - k + 1)
			if seen[offset] {
				continue
			}
			seen[offset] = true
			m.add(p.Kmer(offset, k), Entry{Probe: p, Offset: offset})
		}
	}
	return m
}

func (m *KmerMap) add(km string, e Entry) {
	shard := m.shards[kmerShard(km)]
	for _, have := range shard[km] {
		if have == e {
			return
		}
	}
	shard[km] = append(shard[km], e)
}

// Get returns the entries for the given kmer, or nil if the kmer is not
// indexed.  The returned slice must not be modified.
func (m *KmerMap) Get(km string) []Entry {
	return m.shards[kmerShard(km)][km]
}

// NumKmers returns the number of distinct kmers in the map.
func (m *KmerMap) NumKmers() int {
	n := 0
	for _, shard := range m.shards {
		n += len(shard)
	}
	return n
}

// Entries returns every (kmer, entry) pair in the map, in unspecified
// order.  It is intended for consistency checks and tests.
func (m *KmerMap) Entries() map[string][]Entry {
	all := make(map[string][]Entry)
	for _, shard := range m.shards {
		for km, entries := range shard {
			all[km] = append(all[km], entries...)
		}
	}
	return all
}
