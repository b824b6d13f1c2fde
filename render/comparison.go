package render

import (
	"context"
	"fmt"
	"sort"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"

	"github.com/biograph/allelegraph/assembly"
)

// WriteAlleleComparison lays the assembled nodes out against backbone
// alongside the known catalog alleles (displayNodes, typically a Graph's
// DisplayAlleleNodes) and writes one row per node's trimmed major-base
// sequence, column-annotated with GetNodeComparisonInfo's N/B/R marks --
// a by-eye check of how the assembled haplotypes line up against the
// catalog's known alleles at every variant column. It writes nothing (and
// returns nil) when displayNodes is empty, since there is then no catalog
// to compare against.
func WriteAlleleComparison(ctx context.Context, path string, backbone *assembly.Backbone, assembled, displayNodes map[string]*assembly.Node) error {
	if len(displayNodes) == 0 {
		return nil
	}

	combined := make(map[string]*assembly.Node, len(assembled)+len(displayNodes))
	for id, n := range assembled {
		combined[id] = n
	}
	for id, n := range displayNodes {
		combined[id] = n
	}

	rows := assembly.GetNodeComparisonInfo(backbone, combined)
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Left != rows[j].Left {
			return rows[i].Left < rows[j].Left
		}
		return rows[i].ID < rows[j].ID
	})

	out, err := file.Create(ctx, path)
	if err != nil {
		return errors.E(err, "render: create", path)
	}
	w := out.Writer(ctx)

	if _, err := fmt.Fprintln(w, "node_id\tleft\tright\tseq\tmarks"); err != nil {
		return errors.E(err, "render: write", path)
	}
	for _, row := range rows {
		seq := make([]byte, len(row.Seq))
		for i, b := range row.Seq {
			seq[i] = b.String()[0]
		}
		marks := make([]byte, len(row.Marks))
		for i, m := range row.Marks {
			marks[i] = byte(m)
		}
		if _, err := fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\n", row.ID, row.Left, row.Right, seq, marks); err != nil {
			return errors.E(err, "render: write", path)
		}
	}

	if err := out.Close(ctx); err != nil {
		return errors.E(err, "render: close", path)
	}
	return nil
}
