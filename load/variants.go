package load

import (
	"bufio"
	"context"
	"strconv"
	"strings"

	"github.com/grailbio/base/errors"

	"github.com/biograph/allelegraph/assembly"
)

// LoadVariants parses a tab-separated variant catalog:
//
//	id  kind  pos  data  frequency  allele...
//
// kind is one of "single", "insertion", "deletion"; data is the
// substituted/inserted base(s) for single/insertion or the deletion length
// (as digits) for deletion; any columns past frequency are allele names the
// variant was observed in.
func LoadVariants(ctx context.Context, path string) (assembly.Variants, error) {
	f, r, err := openMaybeGzip(ctx, path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close(ctx) }()

	out := assembly.Variants{}
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		cols := strings.Split(line, "\t")
		if len(cols) < 5 {
			return nil, errors.E("load: variants", path, "line", lineNo, "has fewer than 5 columns")
		}
		id, kindStr, posStr, data, freqStr := cols[0], cols[1], cols[2], cols[3], cols[4]
		if _, exists := out[id]; exists {
			return nil, errors.E("load: variants", path, "line", lineNo, "duplicate variant id", id)
		}

		var kind assembly.VariantKind
		switch kindStr {
		case "single":
			kind = assembly.Single
		case "insertion":
			kind = assembly.Insertion
		case "deletion":
			kind = assembly.Deletion
		default:
			return nil, errors.E("load: variants", path, "line", lineNo, "unknown variant kind", kindStr)
		}

		pos, err := strconv.Atoi(posStr)
		if err != nil {
			return nil, errors.E(err, "load: variants", path, "line", lineNo, "bad position")
		}
		freq := 0.0
		if freqStr != "" {
			if freq, err = strconv.ParseFloat(freqStr, 64); err != nil {
				return nil, errors.E(err, "load: variants", path, "line", lineNo, "bad frequency")
			}
		}

		var alleles []string
		if len(cols) > 5 {
			alleles = cols[5:]
		}

		out[id] = assembly.Variant{
			ID:        id,
			Kind:      kind,
			Pos:       pos,
			Data:      data,
			Frequency: freq,
			Alleles:   alleles,
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.E(err, "read", path)
	}
	return out, nil
}
