package main

// hybsel-analyze reports how much of a set of target genomes a probe set
// covers.
//
// Example:
//
//    hybsel-analyze -probes probes.fa -targets zika.fa,dengue.fa -lcf-thres 100
//
// Each -targets entry is a FASTA file holding one genome grouping; each
// sequence in the file is treated as one single-chromosome genome.  The
// output is a table with one row per genome and strand, listing the number
// of bases covered and the average coverage depth.

import (
	"context"
	"flag"
	"io"
	"os"
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
)

type analyzeFlags struct {
	probesPath  string
	targetPaths string
}

// openFasta reads a (possibly compressed) FASTA file.
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

// readTargets loads one genome grouping per path.  Every sequence becomes a
// single-chromosome genome, which matches the one-record-per-genome layout
// of viral reference FASTAs.
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

func main() {
	opts := coverage.DefaultOpts
	flags := analyzeFlags{}
	flag.StringVar(&flags.probesPath, "probes", "", "FASTA file containing the probe set.")
	flag.StringVar(&flags.targetPaths, "targets", "", "Comma-separated list of FASTA files, one genome grouping per file.")
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
	probes := readProbes(ctx, flags.probesPath)
	targets := readTargets(ctx, strings.Split(flags.targetPaths, ","))

	result, err := coverage.NewAnalyzer(probes, targets, opts).Run()
	if err != nil {
		log.Panicf("analyze: %v", err)
	}
	if err := result.WriteTable(os.Stdout); err != nil {
		log.Panicf("write table: %v", err)
	}
}
