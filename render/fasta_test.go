package render_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"

	"github.com/biograph/allelegraph/assembly"
	"github.com/biograph/allelegraph/render"
)

func zeros(n int) []byte          { return make([]byte, n) }
func emptyStrings(n int) []string { return make([]string, n) }

func TestWriteFASTADropsDeletionsAndUnwrapsInsertions(t *testing.T) {
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)

	backbone := &assembly.Backbone{Name: "L", Seq: "AAAAAAA"}
	seq := []assembly.Base{assembly.BaseA, assembly.BaseC, assembly.BaseD, assembly.BaseFromInserted(assembly.BaseG), assembly.BaseT}
	n := assembly.NewNode("n1", 0, seq, zeros(5), emptyStrings(5), backbone, &backbone.Variants)

	path := filepath.Join(tmpdir, "out.fa")
	ctx := vcontext.Background()
	assert.NoError(t, render.WriteFASTA(ctx, path, map[string]*assembly.Node{"n1": n}))

	data, err := os.ReadFile(path)
	assert.NoError(t, err)
	expect.EQ(t, string(data), ">n1\nACGT\n")
}

func TestWriteFASTAOrdersByLeftThenID(t *testing.T) {
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)

	backbone := &assembly.Backbone{Name: "L", Seq: "AAAAAAAAAA"}
	n1 := assembly.NewNode("b", 5, []assembly.Base{assembly.BaseA}, zeros(1), emptyStrings(1), backbone, &backbone.Variants)
	n2 := assembly.NewNode("a", 0, []assembly.Base{assembly.BaseC}, zeros(1), emptyStrings(1), backbone, &backbone.Variants)

	path := filepath.Join(tmpdir, "out.fa")
	ctx := vcontext.Background()
	assert.NoError(t, render.WriteFASTA(ctx, path, map[string]*assembly.Node{"b": n1, "a": n2}))

	data, err := os.ReadFile(path)
	assert.NoError(t, err)
	expect.EQ(t, string(data), ">a\nC\n>b\nA\n")
}
