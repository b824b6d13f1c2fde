package assembly

import (
	"math"
	"strings"
)

func idsOf(edges []Edge) []string {
	out := make([]string, len(edges))
	for i, e := range edges {
		out[i] = e.ID
	}
	return out
}

func setOf(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func intersectCount(a, b map[string]bool) int {
	count := 0
	for k := range a {
		if b[k] {
			count++
		}
	}
	return count
}

func intersectUnionCounts(a, b []string) (intersection, union int) {
	as, bs := setOf(a), setOf(b)
	u := map[string]bool{}
	for k := range as {
		u[k] = true
		if bs[k] {
			intersection++
		}
	}
	for k := range bs {
		u[k] = true
	}
	return intersection, len(u)
}

// cloneNode makes an independent copy of n, including its Seq, quality
// and id-set fields. The contractor needs this because a single origin
// node can appear as the "from" side of more than one match in the same
// round (a 1-to-2 junction not yet resolved one way or the other), and
// each resulting merge must start from the same unmerged state.
func cloneNode(n *Node) *Node {
	seq := make([]Cell, len(n.Seq))
	copy(seq, n.Seq)
	qual := make([]uint8, len(n.Qual))
	copy(qual, n.Qual)
	readIDs := make(map[string]bool, len(n.ReadIDs))
	for k := range n.ReadIDs {
		readIDs[k] = true
	}
	mateIDs := make(map[string]bool, len(n.MateIDs))
	for k := range n.MateIDs {
		mateIDs[k] = true
	}
	var maxAlleles map[string]bool
	if n.MaxAlleles != nil {
		maxAlleles = make(map[string]bool, len(n.MaxAlleles))
		for k := range n.MaxAlleles {
			maxAlleles[k] = true
		}
	}
	return &Node{
		ID:         n.ID,
		Left:       n.Left,
		Right:      n.Right,
		Seq:        seq,
		Qual:       qual,
		ReadIDs:    readIDs,
		MateIDs:    mateIDs,
		AvgCov:     n.AvgCov,
		MaxAlleles: maxAlleles,
		backbone:   n.backbone,
		variants:   n.variants,
		insLen:     n.insLen,
	}
}

type contractMatch struct {
	from, to string
	score    int
}

// AssembleWithMates runs guided contraction scored by shared mate-pair
// membership: two nodes are pulled together across an ambiguous junction
// when enough of their reads are mates of each other's reads.
func (g *Graph) AssembleWithMates(opts Opts) {
	g.informedAssemble(opts, true, nil)
}

// AssembleWithAlleles runs guided contraction scored by agreement with a
// set of candidate allele nodes instead of mate pairing -- used once a
// shortlist of plausible alleles narrows down which variant combinations
// are even possible.
func (g *Graph) AssembleWithAlleles(opts Opts) {
	g.informedAssemble(opts, false, g.PredictedAlleleNodes)
}

// informedAssemble is the guided contractor shared by mate-pair and
// allele-guided mode: it repeatedly looks for nodes with one or two
// successors whose successors have one or two predecessors between them
// (a resolvable 1-2/2-1/2-2 junction), decides which side(s) dominate via
// the mate/allele overlap score, merges accordingly, and rebuilds the
// graph -- stopping once a round produces no merges or the iteration cap
// is hit.
func (g *Graph) informedAssemble(opts Opts, mate bool, alleleNodes map[string]*Node) {
	for iter := 1; iter <= opts.ContractorMaxIterations; iter++ {
		if !mate {
			for _, node := range g.Nodes {
				nodeVars := node.GetVarIDs(node.Left, node.Right)
				maxAlleles := map[string]bool{}
				maxCommon := math.MinInt32
				for aid, anode := range alleleNodes {
					alleleVars := anode.GetVarIDs(node.Left, node.Right)
					inter, union := intersectUnionCounts(nodeVars, alleleVars)
					tmp := inter - union
					if tmp > maxCommon {
						maxCommon = tmp
						maxAlleles = map[string]bool{aid: true}
					} else if tmp == maxCommon {
						maxAlleles[aid] = true
					}
				}
				node.MaxAlleles = maxAlleles
			}
		}

		sorted := g.nodesByLeft()
		var matchesList [][]contractMatch

		for _, sn := range sorted {
			id := sn.id
			toEdges, ok := g.To[id]
			if !ok {
				continue
			}
			toIDs := idsOf(toEdges)
			if len(toIDs) > 2 {
				continue
			}

			var fromIDs []string
			seenFrom := map[string]bool{}
			for _, toID := range toIDs {
				for _, e := range g.From[toID] {
					if !seenFrom[e.ID] {
						seenFrom[e.ID] = true
						fromIDs = append(fromIDs, e.ID)
					}
				}
			}
			if len(fromIDs) == 0 || len(fromIDs) > 2 {
				continue
			}

			var matches []contractMatch

			if len(g.TrueAlleleNodes) == 1 && len(fromIDs) == 1 && len(toIDs) == 1 {
				matchesList = append(matchesList, []contractMatch{{fromIDs[0], toIDs[0], 0}})
				continue
			}
			if len(fromIDs) == 1 && len(toIDs) == 1 {
				continue
			}

			precede := true
			for _, fid := range fromIDs {
				for _, tid := range toIDs {
					if g.Nodes[fid].Left >= g.Nodes[tid].Left {
						precede = false
						break
					}
				}
				if !precede {
					break
				}
			}
			if !precede {
				continue
			}

			mates := make([][]int, len(fromIDs))
			for i, fid := range fromIDs {
				mates[i] = make([]int, len(toIDs))
				toSet := setOf(idsOf(g.To[fid]))
				for j, tid := range toIDs {
					if !toSet[tid] {
						continue
					}
					node1, node2 := g.Nodes[fid], g.Nodes[tid]
					if mate {
						mates[i][j] = intersectCount(node1.MateIDs, node2.MateIDs)
					} else {
						mates[i][j] = intersectCount(node1.MaxAlleles, node2.MaxAlleles)
					}
				}
			}

			mult := opts.AlleleMultiplier
			if mate {
				mult = opts.MateMultiplier
			}

			switch {
			case len(fromIDs) == 1 && len(toIDs) == 2:
				if fromIDs[0] == sorted[0].id {
					m0, m1 := float64(mates[0][0]), float64(mates[0][1])
					switch {
					case m0 > m1*mult:
						matches = append(matches, contractMatch{fromIDs[0], toIDs[0], mates[0][0]})
					case m0*mult < m1:
						matches = append(matches, contractMatch{fromIDs[0], toIDs[1], mates[0][1]})
					default:
						matches = append(matches,
							contractMatch{fromIDs[0], toIDs[0], mates[0][0]},
							contractMatch{fromIDs[0], toIDs[1], mates[0][1]})
					}
				} else {
					for _, tid := range toIDs {
						matches = append(matches, contractMatch{fromIDs[0], tid, 0})
					}
				}
			case len(fromIDs) == 2 && len(toIDs) == 1:
				if toIDs[0] == sorted[len(sorted)-1].id {
					m0, m1 := float64(mates[0][0]), float64(mates[1][0])
					switch {
					case m0 > m1*mult:
						matches = append(matches, contractMatch{fromIDs[0], toIDs[0], mates[0][0]})
					case m0*mult < m1:
						matches = append(matches, contractMatch{fromIDs[1], toIDs[0], mates[1][0]})
					case mates[0][0] > 0:
						matches = append(matches,
							contractMatch{fromIDs[0], toIDs[0], mates[0][0]},
							contractMatch{fromIDs[1], toIDs[0], mates[1][0]})
					}
				}
			default:
				score00 := mates[0][0] + mates[1][1]
				score01 := mates[0][1] + mates[1][0]
				var take00, take01 bool
				if mate {
					take00 = float64(score00) > math.Max(opts.MateScoreFloor, float64(score01)*mult)
					take01 = float64(score01) > math.Max(opts.MateScoreFloor, float64(score00)*mult)
				} else {
					take00 = score00 > score01
					take01 = score01 > score00
				}
				switch {
				case take00:
					matches = append(matches,
						contractMatch{fromIDs[0], toIDs[0], mates[0][0]},
						contractMatch{fromIDs[1], toIDs[1], mates[1][1]})
				case take01:
					matches = append(matches,
						contractMatch{fromIDs[0], toIDs[1], mates[0][1]},
						contractMatch{fromIDs[1], toIDs[0], mates[1][0]})
				}
				if len(matches) != 2 {
					continue
				}
			}

			if len(matches) == 0 {
				continue
			}
			matchesList = append(matchesList, matches)
		}

		sep := "+"
		if mate {
			sep = "-"
		}
		sepStr := strings.Repeat(sep, iter)

		deleted := map[string]bool{}
		newNodes := map[string]*Node{}
		for _, matches := range matchesList {
			for _, m := range matches {
				newID := m.from + sepStr + m.to
				if _, exists := newNodes[newID]; exists {
					continue
				}
				fromNode := cloneNode(g.Nodes[m.from])
				fromNode.ID = newID
				deleted[m.from] = true
				fromNode.CombineWith(g.Nodes[m.to])
				deleted[m.to] = true
				newNodes[newID] = fromNode
			}
		}
		for id, node := range g.Nodes {
			if deleted[id] {
				continue
			}
			if _, exists := newNodes[id]; exists {
				continue
			}
			newNodes[id] = node
		}

		g.Nodes = newNodes
		g.RemoveLowCovNodes(opts)
		g.GenerateEdges(opts, opts.RawEdgeOverlapFraction, true, true)
		g.Reduce(opts, opts.ReduceOverlapFraction)

		if len(matchesList) == 0 {
			break
		}
	}
}
