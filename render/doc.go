// Package render writes the assembly engine's final node map out as plain
// text: a FASTA file of assembled haplotype sequences and a variant table
// listing each node's catalog calls. Both write through
// github.com/grailbio/base/file, so destinations may be local paths or
// s3:// URIs exactly like the rest of this repository's output paths.
package render
