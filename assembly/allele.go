package assembly

// alleleNodeFromHaplotype synthesizes a Node spanning [h.Left, h.Right] that
// carries the backbone's reference base at every position except where one
// of h.VarIDs substitutes, inserts or deletes against it -- the allele-
// guided contractor's candidate/ground-truth counterpart to a Node built
// from an aligned read, following the same single-tagged-base-per-run
// convention load.NodeFromSAMRecord uses when it turns a CIGAR string's insertion
// and deletion runs into cells.
func alleleNodeFromHaplotype(h Haplotype, backbone *Backbone) *Node {
	byPos := make(map[int]Variant, len(h.VarIDs))
	for _, id := range h.VarIDs {
		if v, ok := backbone.Variants[id]; ok {
			byPos[v.Pos] = v
		}
	}

	var seq []Base
	var varIDs []string
	for pos := h.Left; pos <= h.Right; pos++ {
		v, has := byPos[pos]
		if has && v.Kind == Insertion {
			start := len(seq)
			for i := 0; i < len(v.Data); i++ {
				seq = append(seq, BaseFromInserted(ParseBase(string(v.Data[i]))))
				varIDs = append(varIDs, "")
			}
			if len(v.Data) > 0 {
				varIDs[start] = v.ID
			}
			has = false // insertion consumes no backbone position; fall through to pos's own base
		}
		switch {
		case has && v.Kind == Deletion:
			n := v.DeletionLen()
			for i := 0; i < n; i++ {
				id := ""
				if i == 0 {
					id = v.ID
				}
				seq = append(seq, BaseD)
				varIDs = append(varIDs, id)
			}
			pos += n - 1
		case has && v.Kind == Single:
			seq = append(seq, ParseBase(v.Data))
			varIDs = append(varIDs, v.ID)
		default:
			seq = append(seq, ParseBase(string(backbone.At(pos))))
			varIDs = append(varIDs, "")
		}
	}

	qual := make([]byte, len(seq))
	return NewNode(h.ID, h.Left, seq, qual, varIDs, backbone, &backbone.Variants)
}

// BuildAlleleNodes synthesizes one Node per entry of backbone.Haplotypes and
// returns them keyed by haplotype id, for a caller to assign to a Graph's
// TrueAlleleNodes/PredictedAlleleNodes/DisplayAlleleNodes. It returns an
// empty map if no haplotype catalog was loaded.
func BuildAlleleNodes(backbone *Backbone) map[string]*Node {
	nodes := make(map[string]*Node, len(backbone.Haplotypes))
	for _, h := range backbone.Haplotypes {
		nodes[h.ID] = alleleNodeFromHaplotype(h, backbone)
	}
	return nodes
}
