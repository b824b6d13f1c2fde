package render

import (
	"context"
	"fmt"
	"sort"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"

	"github.com/biograph/allelegraph/assembly"
)

const fastaLineWidth = 70

// decodeMajorSeq renders a node's major-base call per column, dropping
// deletions (which consume a backbone position but contribute no output
// base) and emitting the plain base an insertion symbol carries.
func decodeMajorSeq(n *assembly.Node) string {
	out := make([]byte, 0, len(n.Seq))
	for _, c := range n.Seq {
		nt := c.Major()
		if nt == assembly.BaseD {
			continue
		}
		if nt.IsInsertion() {
			nt = nt.InsertedBase()
		}
		out = append(out, nt.String()[0])
	}
	return string(out)
}

// WriteFASTA writes one FASTA record per node in nodes, named by node id,
// sorted by (Left, ID) so output order is deterministic across runs.
func WriteFASTA(ctx context.Context, path string, nodes map[string]*assembly.Node) error {
	out, err := file.Create(ctx, path)
	if err != nil {
		return errors.E(err, "render: create", path)
	}
	w := out.Writer(ctx)

	ids := make([]string, 0, len(nodes))
	for id := range nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		ni, nj := nodes[ids[i]], nodes[ids[j]]
		if ni.Left != nj.Left {
			return ni.Left < nj.Left
		}
		return ids[i] < ids[j]
	})

	for _, id := range ids {
		seq := decodeMajorSeq(nodes[id])
		if _, err := fmt.Fprintf(w, ">%s\n", id); err != nil {
			return errors.E(err, "render: write", path)
		}
		for i := 0; i < len(seq); i += fastaLineWidth {
			end := i + fastaLineWidth
			if end > len(seq) {
				end = len(seq)
			}
			if _, err := fmt.Fprintln(w, seq[i:end]); err != nil {
				return errors.E(err, "render: write", path)
			}
		}
	}

	if err := out.Close(ctx); err != nil {
		return errors.E(err, "render: close", path)
	}
	return nil
}
