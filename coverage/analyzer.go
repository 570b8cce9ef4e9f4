// Package coverage analyzes and selects hybrid-selection probe sets against
// target genomes.  The Analyzer reports, for every genome and strand, the
// stretches covered by a probe set under the longest-common-substring
// hybridization model; SelectProbes chooses a minimum-cost subset of probes
// meeting a per-genome coverage target.
package coverage

import (
	"fmt"
	"io"

	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	"github.com/grailbio/hybsel/genome"
	"github.com/grailbio/hybsel/interval"
	"github.com/grailbio/hybsel/probe"
	"github.com/shenwei356/stable"
)

// Opts parameterizes coverage determination.
type Opts struct {
	// Mismatches and LCFThres define hybridization: a probe covers a
	// stretch if lcf_thres or more aligned bases carry at most Mismatches
	// mismatches.
	Mismatches int
	LCFThres   int
	// KmerSize and NumKmersPerProbe parameterize the candidate-filter kmer
	// map.
	KmerSize         int
	NumKmersPerProbe int
	// Seed drives the kmer offset sampling; runs with equal seeds and
	// inputs produce identical results.
	Seed int64
}

// DefaultOpts mirrors the defaults used by the probe-design pipeline.
var DefaultOpts = Opts{
	Mismatches:       0,
	LCFThres:         100,
	KmerSize:         10,
	NumKmersPerProbe: 20,
	Seed:             1,
}

// Strand selects the provided sequence or its reverse complement.
type Strand int

const (
	// Forward scans the sequence as provided.
	Forward Strand = iota
	// Reverse scans the reverse complement, taken per chromosome.
	Reverse
)

func (s Strand) String() string {
	if s == Reverse {
		return "rc"
	}
	return "fwd"
}

// GenomeCoverage is the coverage of one genome on one strand.
type GenomeCoverage struct {
	// Covers lists the covered stretches in concatenated genome
	// coordinates, chromosome by chromosome; within a chromosome they are
	// grouped by probe in probe-set order, and each probe's stretches are in
	// scan order.  Duplicates and overlaps are preserved:
	// two probes hybridizing to the same region contribute two entries.
	Covers []interval.Interval
	// BpCovered is the length of the union of Covers.
	BpCovered int64
	// AvgDepth is the mean, over all bases of the genome, of the number of
	// probes hybridizing to a region including that base.
	AvgDepth float64
}

// StrandCoverage holds both strands of one genome.
type StrandCoverage struct {
	Forward GenomeCoverage
	Reverse GenomeCoverage
}

// Result is the analyzer output, indexed by grouping and genome in the
// input order.
type Result struct {
	Groups [][]StrandCoverage

	targets [][]genome.Genome
}

// Analyzer determines what portions of target genomes a probe set covers.
type Analyzer struct {
	probes  []probe.Probe
	targets [][]genome.Genome
	opts    Opts
}

// NewAnalyzer returns an analyzer for the given probe set and target genome
// groupings (e.g. one grouping per species).  Duplicate probes are dropped
// up front.
func NewAnalyzer(probes []probe.Probe, targets [][]genome.Genome, opts Opts) *Analyzer {
	return &Analyzer{
		probes:  probe.FilterDuplicates(probes),
		targets: targets,
		opts:    opts,
	}
}

// target identifies one (grouping, genome, strand) scan.
type target struct {
	group, genome int
	strand        Strand
}

func enumerateTargets(targets [][]genome.Genome) []target {
	var out []target
	for i, group := range targets {
		for j := range group {
			out = append(out, target{i, j, Forward}, target{i, j, Reverse})
		}
	}
	return out
}

// scanGenome finds the covers of every probe across the genome's
// chromosomes on the given strand, in concatenated genome coordinates.
// Probes are iterated in probe-set order, so the emitted list is
// deterministic.
func scanGenome(gnm genome.Genome, strand Strand, probes []probe.Probe, m *probe.KmerMap, opts Opts) ([]interval.Interval, error) {
	coverFn := probe.CoverByLongestCommonSubstring(opts.Mismatches, opts.LCFThres)
	var covers []interval.Interval
	var lengthSoFar int64
	for _, chrom := range gnm.Chroms {
		seq := chrom.Seq
		if strand == Reverse {
			seq = probe.ReverseComplement(seq)
		}
		perProbe, err := probe.FindCoversInSequence(seq, m, opts.KmerSize, coverFn, false)
		if err != nil {
			return nil, err
		}
		for _, p := range probes {
			for _, iv := range perProbe[p] {
				covers = append(covers, interval.Interval{
					Start: iv.Start + lengthSoFar,
					End:   iv.End + lengthSoFar,
				})
			}
		}
		lengthSoFar += int64(len(chrom.Seq))
	}
	return covers, nil
}

// Run scans every genome of every grouping, on both strands, and computes
// per-genome covered stretches, bp covered, and average depth.
func (a *Analyzer) Run() (*Result, error) {
	log.Printf("building map from %d-mers to %d probes", a.opts.KmerSize, len(a.probes))
	m := probe.BuildKmerMap(a.probes, a.opts.KmerSize, a.opts.NumKmersPerProbe, a.opts.Seed)

	result := &Result{targets: a.targets}
	result.Groups = make([][]StrandCoverage, len(a.targets))
	for i, group := range a.targets {
		result.Groups[i] = make([]StrandCoverage, len(group))
	}

	scans := enumerateTargets(a.targets)
	err := traverse.Each(len(scans), func(n int) error {
		tgt := scans[n]
		gnm := a.targets[tgt.group][tgt.genome]
		if tgt.strand == Forward {
			log.Printf("computing coverage in grouping %d (of %d), with target genome %d (of %d)",
				tgt.group, len(a.targets), tgt.genome, len(a.targets[tgt.group]))
		}
		covers, err := scanGenome(gnm, tgt.strand, a.probes, m, a.opts)
		if err != nil {
			return err
		}
		cov := GenomeCoverage{
			Covers:    covers,
			BpCovered: interval.NewSet(covers).Length(),
		}
		if size := gnm.Size(); size > 0 {
			var total int64
			for _, iv := range covers {
				total += iv.Length()
			}
			cov.AvgDepth = float64(total) / float64(size)
		}
		sc := &result.Groups[tgt.group][tgt.genome]
		if tgt.strand == Forward {
			sc.Forward = cov
		} else {
			sc.Reverse = cov
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// formatBpCovered renders "12345 (45.67%)", clamping tiny fractions.
func formatBpCovered(bp, size int64) string {
	frac := 0.0
	if size > 0 {
		frac = float64(bp) / float64(size)
	}
	if frac < 0.0001 {
		return fmt.Sprintf("%d (<0.01%%)", bp)
	}
	return fmt.Sprintf("%d (%.2f%%)", bp, frac*100)
}

func formatDepth(depth float64) string {
	if depth < 0.01 {
		return "<0.01"
	}
	return fmt.Sprintf("%.2f", depth)
}

// WriteTable prints one row per (grouping, genome, strand) with the number
// of covered bases and the average coverage depth.
func (r *Result) WriteTable(w io.Writer) error {
	style := &stable.TableStyle{
		Name: "plain",

		HeaderRow: stable.RowStyle{Begin: "", Sep: "  ", End: ""},
		DataRow:   stable.RowStyle{Begin: "", Sep: "  ", End: ""},
		Padding:   "",
	}
	tbl := stable.New()
	tbl.HeaderWithFormat([]stable.Column{
		{Header: "Genome"},
		{Header: "Num bases covered", Align: stable.AlignRight},
		{Header: "Average coverage/depth", Align: stable.AlignRight},
	})
	for i, group := range r.Groups {
		for j, sc := range group {
			size := r.targets[i][j].Size()
			for _, strand := range []Strand{Forward, Reverse} {
				cov := sc.Forward
				label := fmt.Sprintf("Grouping %d, genome %d", i, j)
				if strand == Reverse {
					cov = sc.Reverse
					label += " (rc)"
				}
				tbl.AddRow([]interface{}{
					label,
					formatBpCovered(cov.BpCovered, size),
					formatDepth(cov.AvgDepth),
				})
			}
		}
	}
	_, err := w.Write(tbl.Render(style))
	return err
}
