package load

import (
	"bufio"
	"context"
	"strconv"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/hts/sam"

	"github.com/biograph/allelegraph/assembly"
)

// LoadReads parses a flat per-read record table, one row per read:
//
//	id  left  bases  qual  var_ids
//
// bases, qual and var_ids are comma-separated and must have equal arity;
// bases uses the Cell symbol alphabet (A,C,G,T,D,N,IA,IC,IG,IT); qual
// entries are Phred+33 ASCII byte values as a decimal integer, or "0" for
// unknown; var_ids entries are catalog ids or "-" for none. This is the
// direct realization of the read record contract, for simulation/testing
// and for upstream pipelines that already did their own pileup-to-node
// translation.
func LoadReads(ctx context.Context, path string, backbone *assembly.Backbone, variants *assembly.Variants) ([]*assembly.Node, error) {
	f, r, err := openMaybeGzip(ctx, path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close(ctx) }()

	var nodes []*assembly.Node
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		cols := strings.Split(line, "\t")
		if len(cols) != 5 {
			return nil, errors.E("load: reads", path, "line", lineNo, "expected 5 columns")
		}
		id := cols[0]
		left, err := strconv.Atoi(cols[1])
		if err != nil {
			return nil, errors.E(err, "load: reads", path, "line", lineNo, "bad left")
		}
		baseToks := strings.Split(cols[2], ",")
		qualToks := strings.Split(cols[3], ",")
		varToks := strings.Split(cols[4], ",")
		if len(baseToks) != len(qualToks) || len(baseToks) != len(varToks) {
			return nil, errors.E("load: reads", path, "line", lineNo, "bases/qual/var_ids arity mismatch")
		}

		seq := make([]assembly.Base, len(baseToks))
		qual := make([]byte, len(baseToks))
		varIDs := make([]string, len(baseToks))
		for i, tok := range baseToks {
			switch tok {
			case "A", "C", "G", "T", "D", "N", "IA", "IC", "IG", "IT":
			default:
				return nil, errors.E("load: reads", path, "line", lineNo, "bad base symbol", tok)
			}
			seq[i] = assembly.ParseBase(tok)
			q, err := strconv.Atoi(qualToks[i])
			if err != nil {
				return nil, errors.E(err, "load: reads", path, "line", lineNo, "bad qual")
			}
			qual[i] = byte(q)
			if varToks[i] != "-" {
				varIDs[i] = varToks[i]
			}
		}

		nodes = append(nodes, assembly.NewNode(id, left, seq, qual, varIDs, backbone, variants))
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.E(err, "read", path)
	}
	return nodes, nil
}

// variantIndex resolves backbone positions to the catalog variant (if any)
// that explains an observed base there, so the SAM adapter can tag cells
// the same way the flat loader's input is expected to already be tagged.
type variantIndex struct {
	single    map[int][]assembly.Variant
	insertion map[int][]assembly.Variant
	deletion  map[int][]assembly.Variant
}

func buildVariantIndex(variants *assembly.Variants) *variantIndex {
	idx := &variantIndex{
		single:    map[int][]assembly.Variant{},
		insertion: map[int][]assembly.Variant{},
		deletion:  map[int][]assembly.Variant{},
	}
	if variants == nil {
		return idx
	}
	for _, v := range *variants {
		switch v.Kind {
		case assembly.Single:
			idx.single[v.Pos] = append(idx.single[v.Pos], v)
		case assembly.Insertion:
			idx.insertion[v.Pos] = append(idx.insertion[v.Pos], v)
		case assembly.Deletion:
			idx.deletion[v.Pos] = append(idx.deletion[v.Pos], v)
		}
	}
	return idx
}

func (idx *variantIndex) lookupSingle(pos int, nt byte) string {
	for _, v := range idx.single[pos] {
		if len(v.Data) == 1 && v.Data[0] == nt {
			return v.ID
		}
	}
	return ""
}

func (idx *variantIndex) lookupInsertion(pos int, seq string) string {
	for _, v := range idx.insertion[pos] {
		if v.Data == seq {
			return v.ID
		}
	}
	return ""
}

func (idx *variantIndex) lookupDeletion(pos, length int) string {
	for _, v := range idx.deletion[pos] {
		if v.DeletionLen() == length {
			return v.ID
		}
	}
	return ""
}

// baseFromByte maps an ASCII nucleotide byte to its Base.
func baseFromByte(c byte) assembly.Base {
	switch c {
	case 'A', 'a':
		return assembly.BaseA
	case 'C', 'c':
		return assembly.BaseC
	case 'G', 'g':
		return assembly.BaseG
	case 'T', 't':
		return assembly.BaseT
	default:
		return assembly.BaseN
	}
}

// NodeFromSAMRecord converts a CIGAR-aligned, coordinate-sorted alignment
// record into the same positioned cell sequence the flat loader produces.
// It consumes M/X/=, I, D and S/H CIGAR operations; since the backbone
// sequence is already known to the caller, a mismatch is detected by
// direct comparison against the backbone rather than by parsing an MD tag
// -- this adapter performs no realignment, it only re-expresses an
// upstream aligner's verdict as a Node.
func NodeFromSAMRecord(rec *sam.Record, backbone *assembly.Backbone, variants *assembly.Variants) (*assembly.Node, error) {
	if rec.Ref == nil || rec.Pos < 0 {
		return nil, errors.E("load: sam record", rec.Name, "is unmapped")
	}
	idx := buildVariantIndex(variants)

	readSeq := rec.Seq.Expand()
	readQual := rec.Qual

	var bases []assembly.Base
	var quals []byte
	var varIDs []string

	left := rec.Pos
	refPos := rec.Pos
	readPos := 0

	appendBase := func(nt assembly.Base, q byte, varID string) {
		bases = append(bases, nt)
		quals = append(quals, q)
		varIDs = append(varIDs, varID)
	}

	for _, op := range rec.Cigar {
		n := op.Len()
		switch op.Type() {
		case sam.CigarMatch, sam.CigarEqual, sam.CigarMismatch:
			for i := 0; i < n; i++ {
				if refPos >= backbone.Len() || readPos >= len(readSeq) {
					return nil, errors.E("load: sam record", rec.Name, "aligns past the end of the backbone or read")
				}
				refBase := backbone.At(refPos)
				readBase := readSeq[readPos]
				nt := baseFromByte(readBase)
				var varID string
				if readBase != refBase {
					varID = idx.lookupSingle(refPos, readBase)
					if varID == "" {
						varID = "unknown"
					}
				}
				q := byte(0)
				if readPos < len(readQual) {
					q = readQual[readPos] + 33
				}
				appendBase(nt, q, varID)
				refPos++
				readPos++
			}
		case sam.CigarInsertion:
			if readPos+n > len(readSeq) {
				return nil, errors.E("load: sam record", rec.Name, "insertion runs past the end of the read")
			}
			ins := string(readSeq[readPos : readPos+n])
			varID := idx.lookupInsertion(refPos, ins)
			for i := 0; i < n; i++ {
				nt := assembly.BaseFromInserted(baseFromByte(readSeq[readPos+i]))
				q := byte(0)
				if readPos+i < len(readQual) {
					q = readQual[readPos+i] + 33
				}
				id := ""
				if i == 0 {
					id = varID
				}
				appendBase(nt, q, id)
			}
			readPos += n
		case sam.CigarDeletion:
			varID := idx.lookupDeletion(refPos, n)
			for i := 0; i < n; i++ {
				id := ""
				if i == 0 {
					id = varID
				}
				appendBase(assembly.BaseD, 0, id)
				refPos++
			}
		case sam.CigarSoftClipped:
			readPos += n
		case sam.CigarHardClipped, sam.CigarPadded, sam.CigarSkipped:
			// Hard clips/padding consume neither axis the way this adapter
			// tracks it; skipped regions (introns) aren't expected for a
			// single-locus backbone alignment and are dropped rather than
			// bridged, since no read evidence exists for them.
		}
	}

	if len(bases) == 0 {
		return nil, errors.E("load: sam record", rec.Name, "produced no alignable bases")
	}
	return assembly.NewNode(rec.Name, left, bases, quals, varIDs, backbone, variants), nil
}
