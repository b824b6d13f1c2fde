package assembly

import "sort"

// ColumnMark classifies one base of a node's trimmed sequence in a
// multi-node comparison: whether it agrees with the backbone, disagrees
// with every spanning node reporting that same base, or disagrees at a
// column where the spanning nodes report two or more distinct bases (see
// the individual constants).
type ColumnMark byte

const (
	// MarkSame means this node's major base at this column equals the
	// backbone base.
	MarkSame ColumnMark = 'N'
	// MarkDiffAlone means this node's major base differs from the
	// backbone, and every node spanning this column (including this one)
	// reports that same single major base -- the whole cohort carries
	// this variant together, so there is only one distinct value to see.
	MarkDiffAlone ColumnMark = 'B'
	// MarkDiffShared means this node's major base differs from the
	// backbone and at least two distinct major bases are observed across
	// the nodes spanning this column -- a true split, whether or not the
	// other nodes' bases match the backbone.
	MarkDiffShared ColumnMark = 'R'
)

// NodeComparison is one row of a GetNodeComparisonInfo report: a node's
// trimmed major-base sequence and, column for column, how it compares to
// the backbone and to the other nodes in the same report.
type NodeComparison struct {
	ID    string
	Left  int
	Right int
	Seq   []Base
	Marks []ColumnMark
}

// GetNodeComparisonInfo lays the given nodes out against the backbone and,
// for every backbone column each node spans, records its major base and
// classifies it as MarkSame, MarkDiffAlone or MarkDiffShared (see their
// doc comments -- the distinction turns on how many distinct major bases
// the full node set reports at that column, not just on how many nodes
// individually disagree with the backbone). Every row starts out covering
// the whole backbone, holding BaseN and a blank mark at columns the node
// does not span; only leading and trailing deletion (D) columns are then
// trimmed from the row, and the row's Left/Right are the surviving range
// as row indices (which equal backbone positions).
//
// Like the source this is derived from, GetNodeComparisonInfo indexes a
// node's sequence by raw backbone offset (p - node.Left) without adjusting
// for insertions -- it is a display aid over assembled nodes, not a
// position-exact variant report, so the occasional insertion-induced skew
// in a far-right column is accepted here in exchange for staying simple.
func GetNodeComparisonInfo(backbone *Backbone, nodes map[string]*Node) []NodeComparison {
	if len(nodes) == 0 {
		panic("assembly: GetNodeComparisonInfo requires at least one node")
	}

	order := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		order = append(order, n)
	}
	sort.Slice(order, func(i, j int) bool {
		if order[i].Left != order[j].Left {
			return order[i].Left < order[j].Left
		}
		return order[i].Right < order[j].Right
	})

	rows := make([]NodeComparison, len(order))
	for i, n := range order {
		rows[i] = NodeComparison{ID: n.ID, Left: n.Left, Right: n.Right}
	}

	for p := 0; p < backbone.Len(); p++ {
		distinct := map[Base]bool{}
		for _, n := range order {
			if p < n.Left || p > n.Right {
				continue
			}
			distinct[n.Seq[p-n.Left].Major()] = true
		}

		for i, n := range order {
			if p < n.Left || p > n.Right {
				rows[i].Seq = append(rows[i].Seq, BaseN)
				rows[i].Marks = append(rows[i].Marks, ' ')
				continue
			}
			major := n.Seq[p-n.Left].Major()
			rows[i].Seq = append(rows[i].Seq, major)
			if major.String() == string(backbone.At(p)) {
				rows[i].Marks = append(rows[i].Marks, MarkSame)
			} else if len(distinct) > 1 {
				rows[i].Marks = append(rows[i].Marks, MarkDiffShared)
			} else {
				rows[i].Marks = append(rows[i].Marks, MarkDiffAlone)
			}
		}
	}

	for i := range rows {
		seq := rows[i].Seq
		left, right := 0, len(seq)-1
		for left <= right && seq[left] == BaseD {
			left++
		}
		for right >= left && seq[right] == BaseD {
			right--
		}
		rows[i].Left = left
		rows[i].Right = right
		if left > right {
			rows[i].Seq = nil
			rows[i].Marks = nil
			continue
		}
		rows[i].Seq = rows[i].Seq[left : right+1]
		rows[i].Marks = rows[i].Marks[left : right+1]
	}

	return rows
}
