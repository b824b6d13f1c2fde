package render

import (
	"context"
	"fmt"
	"sort"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"

	"github.com/biograph/allelegraph/assembly"
)

// WriteVariantTable writes one tab-separated row per (node id, var_id, pos)
// tuple emitted by Node.GetVars, across every node in nodes. Rows are
// sorted by (node id, pos) so output is deterministic.
func WriteVariantTable(ctx context.Context, path string, nodes map[string]*assembly.Node) error {
	out, err := file.Create(ctx, path)
	if err != nil {
		return errors.E(err, "render: create", path)
	}
	w := out.Writer(ctx)

	if _, err := fmt.Fprintln(w, "node_id\tpos\tvar_id"); err != nil {
		return errors.E(err, "render: write", path)
	}

	ids := make([]string, 0, len(nodes))
	for id := range nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		n := nodes[id]
		calls := n.GetVars(n.Left, n.Right)
		sort.Slice(calls, func(i, j int) bool { return calls[i].Pos < calls[j].Pos })
		for _, c := range calls {
			if _, err := fmt.Fprintf(w, "%s\t%d\t%s\n", id, c.Pos, c.ID); err != nil {
				return errors.E(err, "render: write", path)
			}
		}
	}

	if err := out.Close(ctx); err != nil {
		return errors.E(err, "render: close", path)
	}
	return nil
}
