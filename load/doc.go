// Package load reads the flat text formats upstream tooling uses to
// describe a locus -- a backbone FASTA, a variant catalog, a haplotype
// catalog, and aligned reads -- and turns them into the in-memory
// structures the assembly package consumes (*assembly.Backbone,
// assembly.Variants, []assembly.Haplotype, *assembly.Node).
//
// Every loader here accepts an optionally gzip-compressed input, sniffed
// by extension, and reports malformed input as a wrapped error rather than
// a panic: these are problems with the world outside the process, not
// invariant violations inside it.
package load
