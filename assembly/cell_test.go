package assembly

import (
	"testing"

	"github.com/grailbio/testutil/expect"
)

func TestCellNewAndMajor(t *testing.T) {
	c := NewCell(BaseA, "")
	expect.EQ(t, c.Count(BaseA), int32(1))
	expect.EQ(t, c.Major(), BaseA)
	expect.EQ(t, c.Total(), int32(1))
}

func TestCellAddAccumulatesCount(t *testing.T) {
	c := NewCell(BaseA, "var1")
	c.Add(BaseA, 3, "")
	expect.EQ(t, c.Count(BaseA), int32(4))
	// var_id set on first observation is never overwritten by a later
	// merge, even when the later add carries no var_id of its own.
	expect.EQ(t, c.VarID(BaseA), "var1")
}

func TestCellAddNewEntryRecordsVarID(t *testing.T) {
	var c Cell
	c.Add(BaseC, 2, "var2")
	expect.EQ(t, c.Count(BaseC), int32(2))
	expect.EQ(t, c.VarID(BaseC), "var2")

	// A second, distinct base in the same cell gets its own independent
	// slot; adding it doesn't disturb the first base's entry.
	c.Add(BaseA, 1, "")
	expect.EQ(t, c.Count(BaseA), int32(1))
	expect.EQ(t, c.VarID(BaseC), "var2")
}

func TestCellMajorTieBreak(t *testing.T) {
	var c Cell
	c.Add(BaseG, 2, "")
	c.Add(BaseA, 2, "")
	// A, C, G, T, D, N, then insertions -- A wins a tie with G.
	expect.EQ(t, c.Major(), BaseA)
}

func TestCellEachSkipsAbsentBases(t *testing.T) {
	var c Cell
	c.Add(BaseT, 5, "vT")
	c.Add(BaseD, 1, "")
	var seen []Base
	c.Each(func(nt Base, count int32, varID string) {
		seen = append(seen, nt)
	})
	expect.EQ(t, seen, []Base{BaseT, BaseD})
}

func TestCellVarIDs(t *testing.T) {
	var c Cell
	c.Add(BaseA, 1, "")
	c.Add(BaseC, 1, "vC")
	c.Add(BaseG, 1, "gap")
	expect.EQ(t, c.VarIDs(), []string{"vC", "gap"})
}

func TestBaseInsertionRoundTrip(t *testing.T) {
	for _, nt := range acgt {
		ins := BaseFromInserted(nt)
		expect.True(t, ins.IsInsertion())
		expect.EQ(t, ins.InsertedBase(), nt)
	}
}

func TestParseBaseRoundTrip(t *testing.T) {
	for _, nt := range baseOrder {
		expect.EQ(t, ParseBase(nt.String()), nt)
	}
}

func TestParseBaseInvalid(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected ParseBase to panic on an invalid symbol")
		}
	}()
	ParseBase("Q")
}
