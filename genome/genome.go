// Package genome models a target genome as a named, ordered collection of
// chromosome sequences.  Positions in a genome are addressed by a single
// integer offset into the concatenation of its chromosomes in declared
// order.
package genome

import (
	"github.com/grailbio/hybsel/encoding/fasta"
)

// Chrom is one chromosome (or segment) of a genome.
type Chrom struct {
	Name string
	Seq  string
}

// Genome is an ordered set of chromosomes.
type Genome struct {
	Name   string
	Chroms []Chrom
}

// New returns a genome with the given chromosomes, in the given order.
func New(name string, chroms []Chrom) Genome {
	return Genome{Name: name, Chroms: chroms}
}

// FromSeqs returns a single- or multi-chromosome genome over unnamed
// sequences.  Intended for tests and contrived inputs.
func FromSeqs(name string, seqs ...string) Genome {
	g := Genome{Name: name}
	for _, s := range seqs {
		g.Chroms = append(g.Chroms, Chrom{Seq: s})
	}
	return g
}

// FromFasta builds a genome whose chromosomes are the FASTA's sequences in
// order of appearance.
func FromFasta(name string, f fasta.Fasta) (Genome, error) {
	g := Genome{Name: name}
	for _, seqName := range f.SeqNames() {
		n, err := f.Len(seqName)
		if err != nil {
			return Genome{}, err
		}
		var seq string
		if n > 0 {
			if seq, err = f.Get(seqName, 0, n); err != nil {
				return Genome{}, err
			}
		}
		g.Chroms = append(g.Chroms, Chrom{Name: seqName, Seq: seq})
	}
	return g, nil
}

// Size returns the total number of bases across all chromosomes.
func (g Genome) Size() int64 {
	var n int64
	for _, c := range g.Chroms {
		n += int64(len(c.Seq))
	}
	return n
}
