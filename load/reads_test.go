package load_test

import (
	"testing"

	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/hts/sam"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"

	"github.com/biograph/allelegraph/assembly"
	"github.com/biograph/allelegraph/load"
)

func TestLoadReads(t *testing.T) {
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)

	contents := "r1\t0\tA,C,G,T\t33,33,33,33\t-,v1,-,-\n"
	path := writeFile(t, tmpdir, "reads.tsv", contents)

	backbone := &assembly.Backbone{
		Name: "L",
		Seq:  "ACGT",
		Variants: assembly.Variants{
			"v1": {ID: "v1", Kind: assembly.Single, Pos: 1, Data: "C"},
		},
	}
	ctx := vcontext.Background()
	nodes, err := load.LoadReads(ctx, path, backbone, &backbone.Variants)
	assert.NoError(t, err)
	expect.EQ(t, len(nodes), 1)
	n := nodes[0]
	expect.EQ(t, n.ID, "r1")
	expect.EQ(t, n.Left, 0)
	expect.EQ(t, n.Right, 3)
	expect.EQ(t, n.GetVarIDs(0, 3), []string{"v1"})
}

func TestLoadReadsRejectsArityMismatch(t *testing.T) {
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)

	path := writeFile(t, tmpdir, "reads.tsv", "r1\t0\tA,C\t33\t-,-\n")
	backbone := &assembly.Backbone{Name: "L", Seq: "ACGT"}
	ctx := vcontext.Background()
	_, err := load.LoadReads(ctx, path, backbone, &backbone.Variants)
	expect.NotNil(t, err)
}

func TestNodeFromSAMRecordPlainMatch(t *testing.T) {
	backbone := &assembly.Backbone{Name: "L", Seq: "ACGTACGT"}
	ref, _ := sam.NewReference("L", "", "", backbone.Len(), nil, nil)

	rec := &sam.Record{
		Name:  "read1",
		Ref:   ref,
		Pos:   0,
		Cigar: []sam.CigarOp{sam.NewCigarOp(sam.CigarMatch, 4)},
		Seq:   sam.NewSeq([]byte("ACGT")),
		Qual:  []byte{30, 30, 30, 30},
	}
	n, err := load.NodeFromSAMRecord(rec, backbone, &backbone.Variants)
	assert.NoError(t, err)
	expect.EQ(t, n.ID, "read1")
	expect.EQ(t, n.Left, 0)
	expect.EQ(t, n.Right, 3)
	expect.EQ(t, n.GetVarIDs(0, 3), []string(nil))
}

func TestNodeFromSAMRecordMismatchIsTaggedUnknown(t *testing.T) {
	backbone := &assembly.Backbone{Name: "L", Seq: "ACGTACGT"}
	ref, _ := sam.NewReference("L", "", "", backbone.Len(), nil, nil)

	rec := &sam.Record{
		Name:  "read1",
		Ref:   ref,
		Pos:   0,
		Cigar: []sam.CigarOp{sam.NewCigarOp(sam.CigarMatch, 4)},
		Seq:   sam.NewSeq([]byte("ACGG")),
		Qual:  []byte{30, 30, 30, 30},
	}
	n, err := load.NodeFromSAMRecord(rec, backbone, &backbone.Variants)
	assert.NoError(t, err)
	expect.EQ(t, n.GetVars(0, 3), []assembly.VarCall{{ID: "unknown", Pos: 3}})
}

func TestNodeFromSAMRecordMismatchMatchesCatalogVariant(t *testing.T) {
	backbone := &assembly.Backbone{
		Name: "L",
		Seq:  "ACGTACGT",
		Variants: assembly.Variants{
			"v1": {ID: "v1", Kind: assembly.Single, Pos: 3, Data: "G"},
		},
	}
	ref, _ := sam.NewReference("L", "", "", backbone.Len(), nil, nil)

	rec := &sam.Record{
		Name:  "read1",
		Ref:   ref,
		Pos:   0,
		Cigar: []sam.CigarOp{sam.NewCigarOp(sam.CigarMatch, 4)},
		Seq:   sam.NewSeq([]byte("ACGG")),
		Qual:  []byte{30, 30, 30, 30},
	}
	n, err := load.NodeFromSAMRecord(rec, backbone, &backbone.Variants)
	assert.NoError(t, err)
	expect.EQ(t, n.GetVarIDs(0, 3), []string{"v1"})
}

func TestNodeFromSAMRecordDeletionAndInsertion(t *testing.T) {
	backbone := &assembly.Backbone{Name: "L", Seq: "ACGTACGTAC"}
	ref, _ := sam.NewReference("L", "", "", backbone.Len(), nil, nil)

	// 2 matched, 2 deleted (from ref), 1 inserted (from read), 2 matched.
	rec := &sam.Record{
		Name: "read1",
		Ref:  ref,
		Pos:  0,
		Cigar: []sam.CigarOp{
			sam.NewCigarOp(sam.CigarMatch, 2),
			sam.NewCigarOp(sam.CigarDeletion, 2),
			sam.NewCigarOp(sam.CigarInsertion, 1),
			sam.NewCigarOp(sam.CigarMatch, 2),
		},
		Seq:  sam.NewSeq([]byte("ACGAC")),
		Qual: []byte{30, 30, 30, 30, 30},
	}
	n, err := load.NodeFromSAMRecord(rec, backbone, &backbone.Variants)
	assert.NoError(t, err)
	expect.EQ(t, n.Left, 0)
	expect.True(t, n.ContainsN() == false)
	// 2 matched + 2 deleted + 1 inserted + 2 matched = 7 cells, one of
	// which is the insertion -- right = left + 7 - 1 - 1.
	expect.EQ(t, n.Right, 5)
}

func TestNodeFromSAMRecordRejectsUnmapped(t *testing.T) {
	backbone := &assembly.Backbone{Name: "L", Seq: "ACGT"}
	rec := &sam.Record{Name: "read1", Pos: -1}
	_, err := load.NodeFromSAMRecord(rec, backbone, &backbone.Variants)
	expect.NotNil(t, err)
}
