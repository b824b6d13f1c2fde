// allele-assemble reconstructs one or two haplotype sequences for a single
// locus from a backbone reference, a variant/haplotype catalog and a set
// of already-aligned reads: it wires the load package's parsers, the
// assembly package's interval-graph/contraction/De-Bruijn pipeline, and
// the render package's writers into one pass.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"

	"github.com/biograph/allelegraph/assembly"
	"github.com/biograph/allelegraph/load"
	"github.com/biograph/allelegraph/render"
)

type flags struct {
	backbonePath   string
	variantsPath   string
	haplotypesPath string
	readsPath      string
	outFastaPath   string
	outVariantPath string
	outComparePath string
	mode           string
	overlapPct     float64

	// loci, if set, overrides the single-locus flags above: it is a
	// comma-separated list of directories, each holding backbone.fa,
	// variants.tsv, reads.tsv and (optionally) haplotypes.tsv for one
	// locus; that locus's output files are written into the same
	// directory (see locusFlags). Loci
	// share no state, so they are assembled concurrently through a
	// worker pool bounded by runtime.NumCPU() -- this is the only
	// concurrency in the pipeline; a single assembly run stays
	// single-threaded and deterministic.
	loci string
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: allele-assemble [flags]

Assembles a single locus's aligned reads into one or two haplotype
sequences, guided by a mate-pair or allele-catalog contraction pass. Given
-loci instead, assembles every listed locus directory concurrently.

Flags:
`)
	flag.PrintDefaults()
}

// locusFlags builds the single-locus flags for one entry of -loci: dir
// must contain backbone.fa, variants.tsv and reads.tsv, and may contain
// haplotypes.tsv; output is written to dir/out.fa and dir/out.variants.tsv.
func locusFlags(dir string, base flags) flags {
	fl := base
	fl.backbonePath = filepath.Join(dir, "backbone.fa")
	fl.variantsPath = filepath.Join(dir, "variants.tsv")
	fl.readsPath = filepath.Join(dir, "reads.tsv")
	fl.haplotypesPath = ""
	hp := filepath.Join(dir, "haplotypes.tsv")
	if _, err := os.Stat(hp); err == nil {
		fl.haplotypesPath = hp
	}
	fl.outFastaPath = filepath.Join(dir, "out.fa")
	fl.outVariantPath = filepath.Join(dir, "out.variants.tsv")
	fl.outComparePath = filepath.Join(dir, "out.allele_compare.tsv")
	return fl
}

// runLoci assembles every directory in dirs concurrently, bounded by a
// worker pool of runtime.NumCPU() goroutines, and returns the first error
// encountered (if any); every locus still runs to completion regardless of
// earlier failures, matching the teacher's per-input-file goroutine
// fan-out idiom capped to available cores.
func runLoci(ctx context.Context, dirs []string, base flags, opts assembly.Opts) error {
	sem := make(chan struct{}, runtime.NumCPU())
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for _, dir := range dirs {
		dir := strings.TrimSpace(dir)
		if dir == "" {
			continue
		}
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			if err := run(ctx, locusFlags(dir, base), opts); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("%s: %w", dir, err)
				}
				mu.Unlock()
				log.Printf("allele-assemble: locus %s failed: %v", dir, err)
				return
			}
			log.Printf("allele-assemble: locus %s done", dir)
		}()
	}
	wg.Wait()
	return firstErr
}

func run(ctx context.Context, fl flags, opts assembly.Opts) error {
	backbone, err := load.LoadBackbone(ctx, fl.backbonePath)
	if err != nil {
		return err
	}
	variants, err := load.LoadVariants(ctx, fl.variantsPath)
	if err != nil {
		return err
	}
	backbone.Variants = variants
	if fl.haplotypesPath != "" {
		haplotypes, err := load.LoadHaplotypes(ctx, fl.haplotypesPath)
		if err != nil {
			return err
		}
		backbone.Haplotypes = haplotypes
	}
	if err := backbone.Validate(); err != nil {
		return err
	}

	nodes, err := load.LoadReads(ctx, fl.readsPath, backbone, &backbone.Variants)
	if err != nil {
		return err
	}

	g := assembly.NewGraph(backbone)
	for _, n := range nodes {
		if !g.AddNode(n) {
			return fmt.Errorf("allele-assemble: duplicate read id %q", n.ID)
		}
	}

	// The haplotype catalog, when present, is turned into one synthetic
	// Node per known haplotype: PredictedAlleleNodes feeds the allele-
	// guided contractor's max_alleles scoring, TrueAlleleNodes licenses
	// informedAssemble's single-allele pin (exactly one known haplotype
	// means any lone junction match is unambiguous), and DisplayAlleleNodes
	// is what the post-assembly comparison report is laid out against.
	if len(backbone.Haplotypes) > 0 {
		alleleNodes := assembly.BuildAlleleNodes(backbone)
		g.PredictedAlleleNodes = alleleNodes
		g.TrueAlleleNodes = alleleNodes
		g.DisplayAlleleNodes = alleleNodes
	}

	g.Reduce(opts, fl.overlapPct)
	switch fl.mode {
	case "mate":
		g.AssembleWithMates(opts)
	case "allele":
		g.AssembleWithAlleles(opts)
	default:
		return fmt.Errorf("allele-assemble: unknown -mode %q (want mate or allele)", fl.mode)
	}
	g.RefineWithDeBruijn(opts)

	if err := render.WriteFASTA(ctx, fl.outFastaPath, g.Nodes); err != nil {
		return err
	}
	if err := render.WriteVariantTable(ctx, fl.outVariantPath, g.Nodes); err != nil {
		return err
	}
	if fl.outComparePath != "" && len(backbone.Haplotypes) > 0 {
		if err := render.WriteAlleleComparison(ctx, fl.outComparePath, backbone, g.Nodes, g.DisplayAlleleNodes); err != nil {
			return err
		}
	}
	log.Printf("allele-assemble: wrote %d haplotype node(s) to %s", len(g.Nodes), fl.outFastaPath)
	return nil
}

func main() {
	flag.Usage = usage

	var fl flags
	flag.StringVar(&fl.backbonePath, "backbone", "", "Backbone FASTA file (optionally .gz).")
	flag.StringVar(&fl.variantsPath, "variants", "", "Variant catalog TSV file (optionally .gz).")
	flag.StringVar(&fl.haplotypesPath, "haplotypes", "", "Haplotype catalog TSV file (optionally .gz); optional.")
	flag.StringVar(&fl.readsPath, "reads", "", "Aligned read table TSV file (optionally .gz).")
	flag.StringVar(&fl.outFastaPath, "out-fasta", "", "Output FASTA path for assembled haplotypes.")
	flag.StringVar(&fl.outVariantPath, "out-variants", "", "Output variant table path.")
	flag.StringVar(&fl.outComparePath, "out-allele-compare", "",
		"Output path for the assembled-vs-catalog allele comparison report; written only when -haplotypes is also given.")
	flag.StringVar(&fl.mode, "mode", "mate", "Guided contraction mode: mate or allele.")
	flag.Float64Var(&fl.overlapPct, "overlap-pct", 0.02, "Minimum overlap fraction used while reducing the interval graph.")
	flag.StringVar(&fl.loci, "loci", "", "Comma-separated locus directories to assemble concurrently, instead of the single-locus flags above.")

	opts := assembly.DefaultOpts
	flag.IntVar(&opts.KmerLength, "kmer", assembly.DefaultOpts.KmerLength, "De Bruijn refiner k-mer length.")
	flag.IntVar(&opts.ContractorMaxIterations, "contractor-max-iterations", assembly.DefaultOpts.ContractorMaxIterations,
		"Maximum number of guided-contraction rounds.")

	cleanup := grail.Init()
	defer cleanup()
	ctx := vcontext.Background()

	defer func() {
		if r := recover(); r != nil {
			log.Printf("allele-assemble: fatal: %v", r)
			panic(r)
		}
	}()

	if fl.loci != "" {
		if err := runLoci(ctx, strings.Split(fl.loci, ","), fl, opts); err != nil {
			log.Fatal(err)
		}
		return
	}

	if fl.backbonePath == "" || fl.variantsPath == "" || fl.readsPath == "" || fl.outFastaPath == "" || fl.outVariantPath == "" {
		usage()
		os.Exit(2)
	}
	if err := run(ctx, fl, opts); err != nil {
		log.Fatal(err)
	}
}
