package main

// hybsel-select chooses a subset of candidate probes that covers a desired
// fraction of each target genome, and writes the chosen probes as FASTA.
//
// Example:
//
//    hybsel-select -probes candidates.fa -targets zika.fa,dengue.fa \
//        -coverage-frac 1.0 -output selected.fa.gz
//
// Each -targets entry is a FASTA file holding one genome grouping; each
// sequence in the file is treated as one single-chromosome genome.  The
// output path is written gzip-compressed when it ends in .gz.

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/grailbio/base/compress"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/hybsel/coverage"
	"github.com/grailbio/hybsel/encoding/fasta"
	"github.com/grailbio/hybsel/genome"
	"github.com/grailbio/hybsel/probe"
	"github.com/klauspost/compress/gzip"
)

const fastaLineWidth = 80

type selectFlags struct {
	probesPath  string
	targetPaths string
	outputPath  string
}

func openFasta(ctx context.Context, path string) fasta.Fasta {
	in, err := file.Open(ctx, path)
	if err != nil {
		log.Panicf("open %v: %v", path, err)
	}
	defer in.Close(ctx) // nolint: errcheck
	var r io.Reader = in.Reader(ctx)
	if u := compress.NewReaderPath(r, in.Name()); u != nil {
		r = u
	}
	f, err := fasta.New(r, fasta.OptClean)
	if err != nil {
		log.Panicf("read %v: %v", path, err)
	}
	return f
}

func readProbes(ctx context.Context, path string) []probe.Probe {
	f := openFasta(ctx, path)
	var probes []probe.Probe
	for _, name := range f.SeqNames() {
		n, err := f.Len(name)
		if err != nil {
			log.Panicf("%v: %v", path, err)
		}
		seq, err := f.Get(name, 0, n)
		if err != nil {
			log.Panicf("%v: %v", path, err)
		}
		probes = append(probes, probe.New(seq))
	}
	return probe.FilterDuplicates(probes)
}

func readTargets(ctx context.Context, paths []string) [][]genome.Genome {
	var groups [][]genome.Genome
	for _, path := range paths {
		f := openFasta(ctx, path)
		var group []genome.Genome
		for _, name := range f.SeqNames() {
			n, err := f.Len(name)
			if err != nil {
				log.Panicf("%v: %v", path, err)
			}
			seq := ""
			if n > 0 {
				if seq, err = f.Get(name, 0, n); err != nil {
					log.Panicf("%v: %v", path, err)
				}
			}
			group = append(group, genome.New(name, []genome.Chrom{{Name: name, Seq: seq}}))
		}
		groups = append(groups, group)
	}
	return groups
}

func writeProbes(ctx context.Context, path string, probes []probe.Probe) {
	out, err := file.Create(ctx, path)
	if err != nil {
		log.Panicf("create %v: %v", path, err)
	}
	var w io.Writer = out.Writer(ctx)
	var gz *gzip.Writer
	if strings.HasSuffix(path, ".gz") {
		gz = gzip.NewWriter(w)
		w = gz
	}
	names := make([]string, len(probes))
	seqs := make([]string, len(probes))
	for i, p := range probes {
		names[i] = fmt.Sprintf("probe_%d", i)
		seqs[i] = p.Seq
	}
	if err := fasta.Write(w, names, seqs, fastaLineWidth); err != nil {
		log.Panicf("write %v: %v", path, err)
	}
	if gz != nil {
		if err := gz.Close(); err != nil {
			log.Panicf("close gzip %v: %v", path, err)
		}
	}
	if err := out.Close(ctx); err != nil {
		log.Panicf("close %v: %v", path, err)
	}
}

func main() {
	opts := coverage.DefaultSelectOpts
	flags := selectFlags{}
	flag.StringVar(&flags.probesPath, "probes", "", "FASTA file containing candidate probes.")
	flag.StringVar(&flags.targetPaths, "targets", "", "Comma-separated list of FASTA files, one genome grouping per file.")
	flag.StringVar(&flags.outputPath, "output", "selected.fa", "FASTA file to store the chosen probes.")
	flag.Float64Var(&opts.CoverageFrac, "coverage-frac", coverage.DefaultSelectOpts.CoverageFrac,
		"Fraction of each genome's coverable bases that the chosen probes must cover.")
	flag.IntVar(&opts.Mismatches, "mismatches", coverage.DefaultOpts.Mismatches,
		"Max mismatches allowed in a hybridizing stretch.")
	flag.IntVar(&opts.LCFThres, "lcf-thres", coverage.DefaultOpts.LCFThres,
		"Min length of a hybridizing stretch.")
	flag.IntVar(&opts.KmerSize, "kmer-size", coverage.DefaultOpts.KmerSize,
		"Kmer length used to find candidate probe alignments.")
	flag.IntVar(&opts.NumKmersPerProbe, "num-kmers-per-probe", coverage.DefaultOpts.NumKmersPerProbe,
		"Number of kmers sampled from each probe.")
	flag.Int64Var(&opts.Seed, "seed", coverage.DefaultOpts.Seed,
		"Seed for kmer sampling; fixed seeds give reproducible results.")
	cleanup := grail.Init()
	defer cleanup()
	ctx := vcontext.Background()

	if flags.probesPath == "" || flags.targetPaths == "" {
		log.Panicf("both -probes and -targets must be set")
	}
	candidates := readProbes(ctx, flags.probesPath)
	targets := readTargets(ctx, strings.Split(flags.targetPaths, ","))

	chosen, err := coverage.SelectProbes(candidates, targets, opts)
	if err != nil {
		log.Panicf("select: %v", err)
	}
	writeProbes(ctx, flags.outputPath, chosen)
	log.Printf("wrote %d probes to %s", len(chosen), flags.outputPath)
}
