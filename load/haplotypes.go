package load

import (
	"bufio"
	"context"
	"strconv"
	"strings"

	"github.com/grailbio/base/errors"

	"github.com/biograph/allelegraph/assembly"
)

// LoadHaplotypes parses a tab-separated haplotype catalog:
//
//	ht_id  backbone_id  left  right  var_id...
func LoadHaplotypes(ctx context.Context, path string) ([]assembly.Haplotype, error) {
	f, r, err := openMaybeGzip(ctx, path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close(ctx) }()

	var out []assembly.Haplotype
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		cols := strings.Split(line, "\t")
		if len(cols) < 4 {
			return nil, errors.E("load: haplotypes", path, "line", lineNo, "has fewer than 4 columns")
		}
		left, err := strconv.Atoi(cols[2])
		if err != nil {
			return nil, errors.E(err, "load: haplotypes", path, "line", lineNo, "bad left")
		}
		right, err := strconv.Atoi(cols[3])
		if err != nil {
			return nil, errors.E(err, "load: haplotypes", path, "line", lineNo, "bad right")
		}
		var varIDs []string
		if len(cols) > 4 {
			varIDs = cols[4:]
		}
		out = append(out, assembly.Haplotype{
			ID:         cols[0],
			BackboneID: cols[1],
			Left:       left,
			Right:      right,
			VarIDs:     varIDs,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.E(err, "read", path)
	}
	return out, nil
}
