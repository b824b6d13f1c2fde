package assembly

import (
	"testing"

	"github.com/grailbio/testutil/expect"
)

func TestGetNodeComparisonInfoPanicsOnEmpty(t *testing.T) {
	backbone := &Backbone{Name: "L", Seq: "AAAA"}
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic on empty node set")
		}
	}()
	GetNodeComparisonInfo(backbone, map[string]*Node{})
}

func TestGetNodeComparisonInfoMarksAgreementAndSharedDiff(t *testing.T) {
	backbone := &Backbone{Name: "L", Seq: "AAAA"}
	// At column 1, only n1 differs (C vs A) while n2/n3 match the
	// backbone -- two distinct majors are observed there (C and A), so
	// n1's diff counts as shared, not alone. At column 2, n2 and n3 both
	// differ to the same base (G) while n1 matches -- again two distinct
	// majors (A and G), so both n2 and n3 are marked shared too.
	n1 := NewNode("n1", 0, []Base{BaseA, BaseC, BaseA, BaseA}, zeros(4), emptyStrings(4), backbone, &backbone.Variants)
	n2 := NewNode("n2", 0, []Base{BaseA, BaseA, BaseG, BaseA}, zeros(4), emptyStrings(4), backbone, &backbone.Variants)
	n3 := NewNode("n3", 0, []Base{BaseA, BaseA, BaseG, BaseA}, zeros(4), emptyStrings(4), backbone, &backbone.Variants)

	rows := GetNodeComparisonInfo(backbone, map[string]*Node{"n1": n1, "n2": n2, "n3": n3})
	expect.EQ(t, len(rows), 3)

	byID := map[string]NodeComparison{}
	for _, r := range rows {
		byID[r.ID] = r
	}

	expect.EQ(t, byID["n1"].Marks, []ColumnMark{MarkSame, MarkDiffShared, MarkSame, MarkSame})
	expect.EQ(t, byID["n2"].Marks, []ColumnMark{MarkSame, MarkSame, MarkDiffShared, MarkSame})
	expect.EQ(t, byID["n3"].Marks, []ColumnMark{MarkSame, MarkSame, MarkDiffShared, MarkSame})
}

func TestGetNodeComparisonInfoMarksUnanimousDiffAsAlone(t *testing.T) {
	backbone := &Backbone{Name: "L", Seq: "AAAA"}
	// Both nodes carry the same non-reference base at column 1 -- only
	// one distinct major is observed there, so it is marked alone even
	// though two nodes share it.
	n1 := NewNode("n1", 0, []Base{BaseA, BaseC, BaseA, BaseA}, zeros(4), emptyStrings(4), backbone, &backbone.Variants)
	n2 := NewNode("n2", 0, []Base{BaseA, BaseC, BaseA, BaseA}, zeros(4), emptyStrings(4), backbone, &backbone.Variants)

	rows := GetNodeComparisonInfo(backbone, map[string]*Node{"n1": n1, "n2": n2})
	for _, r := range rows {
		expect.EQ(t, r.Marks, []ColumnMark{MarkSame, MarkDiffAlone, MarkSame, MarkSame})
	}
}

func TestGetNodeComparisonInfoTrimsLeadingAndTrailingDeletions(t *testing.T) {
	backbone := &Backbone{Name: "L", Seq: "AAAAAA"}
	// Node spans the whole backbone but only has real bases at columns
	// 1..4 -- the leading and trailing columns are deletion placeholders
	// and should be trimmed from the reported span.
	n := NewNode("n", 0, []Base{BaseD, BaseA, BaseA, BaseA, BaseA, BaseD}, zeros(6), emptyStrings(6), backbone, &backbone.Variants)

	rows := GetNodeComparisonInfo(backbone, map[string]*Node{"n": n})
	expect.EQ(t, len(rows), 1)
	expect.EQ(t, rows[0].Left, 1)
	expect.EQ(t, rows[0].Right, 4)
	expect.EQ(t, len(rows[0].Seq), 4)
}
