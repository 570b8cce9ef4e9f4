package coverage

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/grailbio/hybsel/genome"
	"github.com/grailbio/hybsel/interval"
	"github.com/grailbio/hybsel/probe"
	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/require"
)

var testOpts = Opts{
	Mismatches:       0,
	LCFThres:         6,
	KmerSize:         3,
	NumKmersPerProbe: 10,
	Seed:             1,
}

func TestAnalyzerSingleGenome(t *testing.T) {
	targets := [][]genome.Genome{{genome.FromSeqs("g", "AAATTTCCCGGG")}}
	probes := []probe.Probe{probe.New("TTTCCC"), probe.New("TTCCCG")}
	result, err := NewAnalyzer(probes, targets, testOpts).Run()
	require.NoError(t, err)

	fwd := result.Groups[0][0].Forward
	expect.EQ(t, fwd.Covers, []interval.Interval{{Start: 3, End: 9}, {Start: 4, End: 10}})
	expect.EQ(t, fwd.BpCovered, int64(7))
	expect.EQ(t, fwd.AvgDepth, 1.0)

	// Neither probe hybridizes to the reverse complement.
	rev := result.Groups[0][0].Reverse
	expect.EQ(t, len(rev.Covers), 0)
	expect.EQ(t, rev.BpCovered, int64(0))
	expect.EQ(t, rev.AvgDepth, 0.0)
}

func TestAnalyzerChromosomeOffsets(t *testing.T) {
	// The second chromosome's covers are offset by the first's length.
	targets := [][]genome.Genome{{genome.FromSeqs("g", "AAATTTCCC", "GGGTTTCCCAAA")}}
	probes := []probe.Probe{probe.New("TTTCCC")}
	result, err := NewAnalyzer(probes, targets, testOpts).Run()
	require.NoError(t, err)

	fwd := result.Groups[0][0].Forward
	expect.EQ(t, fwd.Covers, []interval.Interval{{Start: 3, End: 9}, {Start: 12, End: 18}})
	expect.EQ(t, fwd.BpCovered, int64(12))
	expect.EQ(t, result.Groups[0][0].Forward.AvgDepth, 12.0/21.0)
}

func TestAnalyzerReverseStrand(t *testing.T) {
	// The probe is the reverse complement of the genome's middle: it covers
	// only the rc strand.
	targets := [][]genome.Genome{{genome.FromSeqs("g", "AAATTTCCCGGG")}}
	// rc("AAATTTCCCGGG") == "CCCGGGAAATTT"
	probes := []probe.Probe{probe.New("GGGAAA")}
	result, err := NewAnalyzer(probes, targets, testOpts).Run()
	require.NoError(t, err)

	expect.EQ(t, len(result.Groups[0][0].Forward.Covers), 0)
	rev := result.Groups[0][0].Reverse
	expect.EQ(t, rev.Covers, []interval.Interval{{Start: 3, End: 9}})
	expect.EQ(t, rev.BpCovered, int64(6))
}

func TestAnalyzerDepthAtLeastBreadth(t *testing.T) {
	targets := [][]genome.Genome{{genome.FromSeqs("g", strings.Repeat("ACGT", 8))}}
	var probes []probe.Probe
	seq := strings.Repeat("ACGT", 8)
	for i := 0; i+6 <= len(seq); i += 2 {
		probes = append(probes, probe.New(seq[i:i+6]))
	}
	result, err := NewAnalyzer(probes, targets, testOpts).Run()
	require.NoError(t, err)
	for _, sc := range result.Groups[0] {
		for _, cov := range []GenomeCoverage{sc.Forward, sc.Reverse} {
			size := targets[0][0].Size()
			expect.True(t, cov.BpCovered <= size)
			expect.True(t, cov.AvgDepth >= float64(cov.BpCovered)/float64(size),
				"depth %v < breadth fraction %v", cov.AvgDepth, float64(cov.BpCovered)/float64(size))
		}
	}
}

func TestAnalyzerDeterministic(t *testing.T) {
	targets := [][]genome.Genome{
		{genome.FromSeqs("a", "ACGTACGTGGATCCTTAACCGG")},
		{genome.FromSeqs("b", "TTGGCCAATCGATCGATTTT"), genome.FromSeqs("c", "ACACACGTGTGT")},
	}
	var probes []probe.Probe
	for _, s := range []string{"ACGTACGT", "GGATCCTT", "TCGATCGA", "ACACACGT"} {
		probes = append(probes, probe.New(s))
	}
	opts := testOpts
	opts.LCFThres = 8
	first, err := NewAnalyzer(probes, targets, opts).Run()
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := NewAnalyzer(probes, targets, opts).Run()
		require.NoError(t, err)
		if !reflect.DeepEqual(first.Groups, again.Groups) {
			t.Fatalf("analyzer results differ across runs with a fixed seed")
		}
	}
}

func TestWriteTable(t *testing.T) {
	targets := [][]genome.Genome{{genome.FromSeqs("g", "AAATTTCCCGGG")}}
	probes := []probe.Probe{probe.New("TTTCCC"), probe.New("TTCCCG")}
	result, err := NewAnalyzer(probes, targets, testOpts).Run()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, result.WriteTable(&buf))
	out := buf.String()
	expect.True(t, strings.Contains(out, "Grouping 0, genome 0"), "table:\n%s", out)
	expect.True(t, strings.Contains(out, "(rc)"), "table:\n%s", out)
	// 7 of 12 bases covered forward; nothing covered on the rc strand.
	expect.True(t, strings.Contains(out, "7 (58.33%)"), "table:\n%s", out)
	expect.True(t, strings.Contains(out, "0 (<0.01%)"), "table:\n%s", out)
	expect.True(t, strings.Contains(out, "<0.01"), "table:\n%s", out)
	expect.True(t, strings.Contains(out, "1.00"), "table:\n%s", out)
}
