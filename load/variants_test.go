package load_test

import (
	"testing"

	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"

	"github.com/biograph/allelegraph/assembly"
	"github.com/biograph/allelegraph/load"
)

func TestLoadVariants(t *testing.T) {
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)

	contents := "# comment\n" +
		"v1\tsingle\t10\tC\t0.2\tA*01:01\tA*01:02\n" +
		"v2\tinsertion\t20\tGG\t0.1\n" +
		"v3\tdeletion\t30\t2\t\n"
	path := writeFile(t, tmpdir, "variants.tsv", contents)

	ctx := vcontext.Background()
	variants, err := load.LoadVariants(ctx, path)
	assert.NoError(t, err)
	expect.EQ(t, len(variants), 3)

	v1 := variants["v1"]
	expect.EQ(t, v1.Kind, assembly.Single)
	expect.EQ(t, v1.Pos, 10)
	expect.EQ(t, v1.Data, "C")
	expect.EQ(t, v1.Frequency, 0.2)
	expect.EQ(t, v1.Alleles, []string{"A*01:01", "A*01:02"})

	v2 := variants["v2"]
	expect.EQ(t, v2.Kind, assembly.Insertion)
	expect.True(t, len(v2.Alleles) == 0)

	v3 := variants["v3"]
	expect.EQ(t, v3.Kind, assembly.Deletion)
	expect.EQ(t, v3.DeletionLen(), 2)
	expect.EQ(t, v3.Frequency, 0.0)
}

func TestLoadVariantsRejectsDuplicateID(t *testing.T) {
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)

	path := writeFile(t, tmpdir, "variants.tsv", "v1\tsingle\t10\tC\t0.2\nv1\tsingle\t11\tG\t0.1\n")
	ctx := vcontext.Background()
	_, err := load.LoadVariants(ctx, path)
	expect.NotNil(t, err)
}

func TestLoadVariantsRejectsUnknownKind(t *testing.T) {
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)

	path := writeFile(t, tmpdir, "variants.tsv", "v1\tweird\t10\tC\t0.2\n")
	ctx := vcontext.Background()
	_, err := load.LoadVariants(ctx, path)
	expect.NotNil(t, err)
}
