// Package probe implements the probe model for hybrid-selection designs: a
// short nucleotide sequence, a randomized kmer index over a probe set, and a
// scanner that determines which stretches of a target sequence the probes
// cover under an approximate-matching rule.
package probe

import (
	"github.com/minio/highwayhash"
)

// Probe is an immutable oligonucleotide sequence over {A,C,G,T} plus IUPAC
// ambiguity codes.  Equality and map-key hashing are bit-exact on Seq.
type Probe struct {
	Seq string
}

// New returns a probe wrapping the given sequence.
func New(seq string) Probe { return Probe{Seq: seq} }

// Len returns the number of bases in the probe.
func (p Probe) Len() int { return len(p.Seq) }

// Kmer returns the k-length substring of the probe starting at offset.
func (p Probe) Kmer(offset, k int) string { return p.Seq[offset : offset+k] }

// ReverseComplement returns the probe read on the opposite strand.
func (p Probe) ReverseComplement() Probe { return Probe{Seq: ReverseComplement(p.Seq)} }

func (p Probe) String() string { return p.Seq }

// complement maps A<->T and C<->G in both cases; every other byte is passed
// through unchanged, so ambiguity codes survive a round trip.
var complement [256]byte

func init() {
	for i := range complement {
		complement[i] = byte(i)
	}
	complement['A'] = 'T'
	complement['a'] = 't'
	complement['T'] = 'A'
	complement['t'] = 'a'
	complement['C'] = 'G'
	complement['c'] = 'g'
	complement['G'] = 'C'
	complement['g'] = 'c'
}

// ReverseComplement computes the reverse complement of a DNA string.
func ReverseComplement(seq string) string {
	buf := make([]byte, len(seq))
	for i := 0; i < len(seq); i++ {
		buf[i] = complement[seq[len(seq)-1-i]]
	}
	return string(buf)
}

type hashKey = [highwayhash.Size]uint8

// FilterDuplicates removes probes whose sequence has already been seen,
// preserving first-seen order.  Probes are grouped by a highwayhash of the
// sequence; colliding groups fall back to string comparison.
func FilterDuplicates(probes []Probe) []Probe {
	var zeroSeed hashKey
	groups := make(map[hashKey][]int, len(probes))
	out := make([]Probe, 0, len(probes))
	for _, p := range probes {
		h := highwayhash.Sum([]byte(p.Seq), zeroSeed[:])
		dup := false
		for _, j := range groups[h] {
			if out[j].Seq == p.Seq {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		groups[h] = append(groups[h], len(out))
		out = append(out, p)
	}
	return out
}
