package probe

import (
	"testing"

	"github.com/grailbio/testutil/expect"
)

func TestReverseComplement(t *testing.T) {
	expect.EQ(t, ReverseComplement("ATCG"), "CGAT")
	expect.EQ(t, ReverseComplement("AAAA"), "TTTT")
	// Ambiguity codes pass through unchanged.
	expect.EQ(t, ReverseComplement("ANGT"), "ACNT")
	expect.EQ(t, ReverseComplement(""), "")
}

func TestReverseComplementInvolutive(t *testing.T) {
	for _, seq := range []string{"A", "ATCGTCGCGG", "GGGTTTAACC", "ACGTN"} {
		p := New(seq)
		expect.EQ(t, p.ReverseComplement().ReverseComplement(), p)
	}
}

func TestKmerExtraction(t *testing.T) {
	p := New("ATCGTCGCGG")
	expect.EQ(t, p.Len(), 10)
	expect.EQ(t, p.Kmer(0, 4), "ATCG")
	expect.EQ(t, p.Kmer(6, 4), "GCGG")
}

func TestProbeEquality(t *testing.T) {
	expect.True(t, New("ATCG") == New("ATCG"))
	expect.False(t, New("ATCG") == New("ATCC"))
	// Probes are usable as map keys with bit-exact semantics.
	m := map[Probe]int{New("ATCG"): 1}
	expect.EQ(t, m[New("ATCG")], 1)
}

func TestFilterDuplicates(t *testing.T) {
	input := []string{"ATCGTCGCGG", "ATCGTAGCGG", "ATCGTCACGG", "ATCGTAGCGG",
		"ATTGTCGCGG", "ATCGTCGCGG"}
	want := []string{"ATCGTCGCGG", "ATCGTAGCGG", "ATCGTCACGG", "ATTGTCGCGG"}
	probes := make([]Probe, len(input))
	for i, s := range input {
		probes[i] = New(s)
	}
	got := FilterDuplicates(probes)
	expect.EQ(t, len(got), len(want))
	for i, s := range want {
		expect.EQ(t, got[i].Seq, s)
	}
}

func TestFilterDuplicatesEmpty(t *testing.T) {
	expect.EQ(t, len(FilterDuplicates(nil)), 0)
}
