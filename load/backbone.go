package load

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/klauspost/compress/gzip"

	"github.com/biograph/allelegraph/assembly"
)

const maxBackboneLine = 64 * 1024 * 1024

// openMaybeGzip opens path and, if its extension marks it as gzip
// (fileio.DetermineType), transparently wraps the reader.
func openMaybeGzip(ctx context.Context, path string) (file.File, io.Reader, error) {
	f, err := file.Open(ctx, path)
	if err != nil {
		return nil, nil, errors.E(err, "open", path)
	}
	var r io.Reader = f.Reader(ctx)
	if fileio.DetermineType(path) == fileio.Gzip {
		gz, err := gzip.NewReader(r)
		if err != nil {
			_ = f.Close(ctx)
			return nil, nil, errors.E(err, "gzip", path)
		}
		r = gz
	}
	return f, r, nil
}

// LoadBackbone parses a single-record FASTA file into a Backbone. The
// variant catalog and the haplotype catalog are loaded separately by
// LoadVariants/LoadHaplotypes for the caller to attach; Exons is left empty
// -- the FASTA only carries the name and the reference sequence.
func LoadBackbone(ctx context.Context, path string) (*assembly.Backbone, error) {
	f, r, err := openMaybeGzip(ctx, path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close(ctx) }()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxBackboneLine)

	var name string
	var seq strings.Builder
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if line[0] == '>' {
			if name != "" {
				return nil, errors.E("load: backbone FASTA", path, "has more than one record")
			}
			name = strings.SplitN(line[1:], " ", 2)[0]
			continue
		}
		seq.WriteString(strings.ToUpper(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.E(err, "read", path)
	}
	if name == "" {
		return nil, errors.E("load: backbone FASTA", path, "is empty")
	}

	b := &assembly.Backbone{
		Name:          name,
		Seq:           seq.String(),
		Strand:        '+',
		PartialAllele: map[string]bool{},
	}
	return b, nil
}
