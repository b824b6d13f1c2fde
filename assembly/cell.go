package assembly

// Base is the closed alphabet a column cell can hold: the four nucleotides,
// a deletion placeholder, a gap/unknown placeholder, and the four possible
// inserted bases. Keeping this as a dense enum (rather than a string key,
// as the read-pileup tooling this package descends from used) lets Cell be
// a fixed-size value instead of a map, which matters in the overlap
// scoring loop: Node.OverlapWith is called O(nodes^2) times during
// interval-graph construction.
type Base uint8

const (
	BaseA Base = iota
	BaseC
	BaseG
	BaseT
	BaseD // deletion: consumes a backbone position, contributes no read base.
	BaseN // gap/unknown: used to bridge uncovered intervals.
	BaseInsA
	BaseInsC
	BaseInsG
	BaseInsT
	numBases
)

// acgt lists the four plain bases in the tie-break order major() uses.
var acgt = [4]Base{BaseA, BaseC, BaseG, BaseT}

// baseOrder is the full tie-break order: ACGTDN, then the insertion bases.
var baseOrder = [numBases]Base{BaseA, BaseC, BaseG, BaseT, BaseD, BaseN, BaseInsA, BaseInsC, BaseInsG, BaseInsT}

// IsInsertion reports whether b is one of the I<base> insertion symbols.
func (b Base) IsInsertion() bool { return b >= BaseInsA && b <= BaseInsT }

// InsertedBase returns the plain base an insertion symbol carries; only
// valid when b.IsInsertion().
func (b Base) InsertedBase() Base { return acgt[b-BaseInsA] }

// BaseFromInserted returns the I<nt> insertion symbol for a plain base.
func BaseFromInserted(nt Base) Base { return BaseInsA + (nt - BaseA) }

func (b Base) String() string {
	switch b {
	case BaseA:
		return "A"
	case BaseC:
		return "C"
	case BaseG:
		return "G"
	case BaseT:
		return "T"
	case BaseD:
		return "D"
	case BaseN:
		return "N"
	case BaseInsA:
		return "IA"
	case BaseInsC:
		return "IC"
	case BaseInsG:
		return "IG"
	case BaseInsT:
		return "IT"
	default:
		return "?"
	}
}

// ParseBase maps a read-record symbol ("A".."T", "D", "N", "IA".."IT") to a
// Base. It panics on an unrecognized symbol: malformed read records are a
// caller bug, not a runtime condition this package recovers from.
func ParseBase(s string) Base {
	switch s {
	case "A":
		return BaseA
	case "C":
		return BaseC
	case "G":
		return BaseG
	case "T":
		return BaseT
	case "D":
		return BaseD
	case "N":
		return BaseN
	case "IA":
		return BaseInsA
	case "IC":
		return BaseInsC
	case "IG":
		return BaseInsG
	case "IT":
		return BaseInsT
	default:
		panic("assembly: invalid base symbol " + s)
	}
}

// cellEntry is one (count, var_id) observation for a single Base within a
// Cell. A zero-value entry (Count == 0) is "absent" -- Cell never needs to
// distinguish "present with zero count" from "absent".
type cellEntry struct {
	Count int32
	VarID string
}

// Cell is the per-column observation record of a Node: how many reads
// support each possible base at this backbone column, and which (if any)
// catalog variant each base corresponds to.
//
// Two distinct bases at the same column can each carry their own var_id
// (e.g. the reference base with no var_id, and a SNV base with one) --
// that is the ordinary case, not an overflow case, so a fixed per-base
// slot is all Cell needs.
type Cell struct {
	entries [numBases]cellEntry
}

// NewCell builds a single-observation cell, as produced when a read is
// first turned into a Node.
func NewCell(nt Base, varID string) Cell {
	var c Cell
	c.entries[nt] = cellEntry{Count: 1, VarID: varID}
	return c
}

// Add records an additional observation of nt in the cell. The var_id is
// only recorded when this is the first observation of nt (Count == 0);
// once an entry exists, later merges accumulate its count but never touch
// its var_id, matching combine_with's nt_dic merge.
func (c *Cell) Add(nt Base, count int32, varID string) {
	e := &c.entries[nt]
	if e.Count == 0 {
		e.VarID = varID
	}
	e.Count += count
}

// Count returns the observation count for nt (0 if absent).
func (c Cell) Count(nt Base) int32 { return c.entries[nt].Count }

// VarID returns the var_id recorded for nt ("" if absent or untagged).
func (c Cell) VarID(nt Base) string { return c.entries[nt].VarID }

// Total returns the sum of counts across every base in the cell.
func (c Cell) Total() int32 {
	var total int32
	for _, e := range c.entries {
		total += e.Count
	}
	return total
}

// Major returns the base with the highest count, breaking ties by
// baseOrder (A,C,G,T,D,N, then insertions), matching get_major_nt.
func (c Cell) Major() Base {
	best := Base(0)
	bestCount := int32(-1)
	for _, nt := range baseOrder {
		if cnt := c.entries[nt].Count; cnt > bestCount {
			bestCount = cnt
			best = nt
		}
	}
	return best
}

// Each calls fn for every base present in the cell (Count > 0), in
// baseOrder. Callers that need every (var_id, pos) pair a cell can explain
// should use this rather than indexing entries directly, since it skips
// absent bases for free.
func (c Cell) Each(fn func(nt Base, count int32, varID string)) {
	for _, nt := range baseOrder {
		if e := c.entries[nt]; e.Count > 0 {
			fn(nt, e.Count, e.VarID)
		}
	}
}

// VarIDs returns the non-empty var_id of every base present in the cell, in
// baseOrder. Ids are not deduplicated (two bases carrying the same id yield
// it twice), and "unknown"/"gap" sentinels are returned alongside catalog
// ids -- callers that care about the difference check the value.
func (c Cell) VarIDs() []string {
	var ids []string
	c.Each(func(_ Base, _ int32, varID string) {
		if varID != "" {
			ids = append(ids, varID)
		}
	})
	return ids
}
