// Package assembly implements haplotype-resolved allele assembly for highly
// polymorphic genes (HLA/CYP-like loci) from already-aligned short reads.
//
// A Backbone plus a catalog of known Variants and Haplotypes describes a
// locus. Reads are positioned against the backbone one at a time via
// Graph.AddNode, producing a Node per read. Graph merges, phases and
// contracts those nodes (first through overlap/containment, then through
// mate-pair or allele-guided contraction, then through a k-mer guided De
// Bruijn refinement pass) until at most two Nodes remain, each representing
// one assembled haplotype.
//
// The package does not align reads to the backbone, call bases, or score
// alleles against a population prior -- it only resolves already-aligned,
// already-annotated reads into haplotype sequences and their variant sets.
package assembly
