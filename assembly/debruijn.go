package assembly

import (
	"fmt"
	"math"
	"sort"
	"strings"

	farm "github.com/dgryski/go-farm"
	"github.com/minio/highwayhash"
)

// dbVertex is one node of the column-indexed k-mer graph: the final base
// of the k-mer, the (k-1)-mer that precedes it, the indices (within the
// previous column) of vertices whose k-mer suffix matches this one's
// prefix, and the numeric read ids currently following this k-mer. sig is
// a FarmHash digest of the full k-mer, checked before the exact string
// comparison in buildDeBruijn's per-column vertex scan -- the same
// hash-before-compare shape fusion/kmer_index.go uses to bucket k-mers,
// adapted here as a cheap short-circuit rather than a bucketing index.
type dbVertex struct {
	lastSym      byte
	kMinus1      string
	sig          uint64
	predecessors []int
	numIDs       []int
}

// majorSeqDroppingInsertions is a node's major-base sequence with
// insertion cells dropped entirely (not even a placeholder survives) and
// D/N literals kept -- the form the De Bruijn refiner builds its k-mers
// from. Runs of D are left-shifted against the backbone first, so two
// reads expressing the same deletion at different (but reference-
// equivalent) alignments collapse onto one k-mer path instead of two.
func majorSeqDroppingInsertions(n *Node) string {
	b := make([]byte, 0, len(n.Seq))
	for _, c := range n.Seq {
		m := c.Major()
		if m.IsInsertion() {
			continue
		}
		b = append(b, m.String()[0])
	}
	leftShiftDeletions(b, n.Left, n.backbone)
	return string(b)
}

// leftShiftDeletions canonicalizes each run of 'D' in seq (seq[i] is
// backbone position left+i) by sliding it leftward while the backbone
// base immediately before the run equals the backbone base at the run's
// current last position -- at that point deleting either copy yields the
// same consensus, so the leftmost placement is taken as canonical.
func leftShiftDeletions(seq []byte, left int, backbone *Backbone) {
	if backbone == nil {
		return
	}
	for i := 0; i < len(seq); {
		if seq[i] != 'D' {
			i++
			continue
		}
		j := i
		for j < len(seq) && seq[j] == 'D' {
			j++
		}
		s, e := i, j-1
		for s > 0 && backbone.At(left+s-1) == backbone.At(left+e) {
			seq[e] = backbone.At(left + e)
			s--
			e--
			seq[s] = 'D'
		}
		i = j
	}
}

type dbRow struct {
	id    string
	pos   int
	seq   string
	start int
}

// buildDeBruijn constructs the column-indexed k-mer graph for the nodes
// currently in g.Nodes whose major-base sequence (insertions dropped) is
// at least k long. It returns the graph alongside the numeric id <-> read
// id mapping used to reference reads from within it.
func (g *Graph) buildDeBruijn(nodeSeq map[string]string, opts Opts) (debruijn [][]dbVertex, numToID []string, idToNum map[string]int) {
	var rows []*dbRow
	for id, n := range g.Nodes {
		seq, ok := nodeSeq[id]
		if !ok || len(seq) < opts.KmerLength {
			continue
		}
		rows = append(rows, &dbRow{id: id, pos: n.Left, seq: seq})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].pos != rows[j].pos {
			return rows[i].pos < rows[j].pos
		}
		return g.Nodes[rows[i].id].Right < g.Nodes[rows[j].id].Right
	})

	idToNum = make(map[string]int, len(rows))
	numToID = make([]string, len(rows))
	for i, r := range rows {
		idToNum[r.id] = i
		numToID[i] = r.id
	}

	k := opts.KmerLength
	debruijn = make([][]dbVertex, g.Backbone.Len()-k+1)
	minN := 0
	for pos := range debruijn {
		for n := minN; n < len(rows); n++ {
			r := rows[n]
			if r.pos < pos {
				minN = n + 1
				continue
			}
			if r.pos > pos {
				break
			}
			kmerSeq := r.seq[r.start : r.start+k]
			kmerSig := farm.Hash64([]byte(kmerSeq))

			curr := debruijn[pos]
			found := false
			for v := range curr {
				if kmerSig == curr[v].sig && kmerSeq == curr[v].kMinus1+string(curr[v].lastSym) {
					curr[v].numIDs = append(curr[v].numIDs, n)
					debruijn[pos][v] = curr[v]
					found = true
					break
				}
			}
			if !found {
				var preds []int
				if pos > 0 {
					prev := debruijn[pos-1]
					prefixSig := farm.Hash64([]byte(kmerSeq[:k-1]))
					for v2 := range prev {
						suffix := prev[v2].kMinus1[1:] + string(prev[v2].lastSym)
						if prefixSig == farm.Hash64([]byte(suffix)) && kmerSeq[:k-1] == suffix {
							preds = append(preds, v2)
						}
					}
				}
				debruijn[pos] = append(debruijn[pos], dbVertex{
					lastSym:      kmerSeq[k-1],
					kMinus1:      kmerSeq[:k-1],
					sig:          kmerSig,
					predecessors: preds,
					numIDs:       []int{n},
				})
			}

			if r.start+k < len(r.seq) {
				r.start++
				r.pos++
			}
		}
	}
	return debruijn, numToID, idToNum
}

func allDeleted(ids []int, deleted map[int]bool) bool {
	for _, id := range ids {
		if !deleted[id] {
			return false
		}
	}
	return true
}

// pruneDeBruijn runs one pass of the refiner's pruning loop (standard
// mode if tryHard is false, try-hard mode otherwise) and returns the set
// of numeric ids it decided to delete.
func (g *Graph) pruneDeBruijn(debruijn [][]dbVertex, numToID []string, opts Opts, tryHard bool) map[int]bool {
	deleted := map[int]bool{}

	totalKmers := 0
	for _, vertices := range debruijn {
		for _, v := range vertices {
			totalKmers += len(v.numIDs)
		}
	}
	avgKmers := float64(totalKmers) / float64(len(debruijn))

	for pos := range debruijn {
		vertices := debruijn[pos]
		numVertices := 0
		for _, v := range vertices {
			if !allDeleted(v.numIDs, deleted) {
				numVertices++
			}
		}
		if numVertices <= 1 {
			continue
		}

		vertexCount := make([]int, len(vertices))
		for v, vx := range vertices {
			for _, nid := range vx.numIDs {
				if deleted[nid] {
					continue
				}
				readID := numToID[nid]
				mateID := mateNodeID(readID)
				if _, ok := g.Nodes[mateID]; ok {
					vertexCount[v]++
				}
			}
		}

		if tryHard {
			type scored struct{ count, v int }
			arr := make([]scored, len(vertexCount))
			for v, c := range vertexCount {
				arr[v] = scored{c, v}
			}
			sort.Slice(arr, func(i, j int) bool { return arr[i].count < arr[j].count })
			for i := 0; i < len(arr)-2; i++ {
				for _, nid := range vertices[arr[i].v].numIDs {
					deleted[nid] = true
				}
			}
			continue
		}

		sum := 0
		for _, c := range vertexCount {
			sum += c
		}
		for v := range vertices {
			rel := float64(sum-vertexCount[v]) / float64(len(vertexCount)-1)
			if len(vertices) != 2 {
				if float64(vertexCount[v])*opts.PruneVertexRatio < rel {
					for _, nid := range vertices[v].numIDs {
						deleted[nid] = true
					}
				}
				continue
			}

			// Two-vertex column.
			if float64(vertexCount[v])*opts.PruneTwoVertexRatio < rel {
				for _, nid := range vertices[v].numIDs {
					deleted[nid] = true
				}
			} else if float64(vertexCount[v])*opts.PruneTwoVertexRatio < avgKmers {
				for _, nid := range vertices[v].numIDs {
					deleted[nid] = true
				}
			} else if float64(vertexCount[v])*2 < rel {
				other := vertices[1-v]
				if other.lastSym == 'D' && len(other.numIDs) > 0 {
					numID := other.numIDs[0]
					readID := numToID[numID]
					nodeSeq := majorSeqDroppingInsertions(g.Nodes[readID])
					left := pos - g.Nodes[readID].Left
					if left >= 0 && left+opts.KmerLength <= len(nodeSeq) {
						seqRight := strings.ReplaceAll(nodeSeq[left+opts.KmerLength:], "D", "")
						success := true
						for _, nid2 := range vertices[v].numIDs {
							readID2 := numToID[nid2]
							nodeSeq2 := majorSeqDroppingInsertions(g.Nodes[readID2])
							left2 := pos - g.Nodes[readID2].Left
							if left2 < 0 || left2+opts.KmerLength > len(nodeSeq2) {
								success = false
								break
							}
							seq2Right := nodeSeq2[left2+opts.KmerLength:]
							if !strings.HasPrefix(seqRight, seq2Right) {
								success = false
								break
							}
						}
						if success {
							for _, nid2 := range vertices[v].numIDs {
								deleted[nid2] = true
							}
						}
					}
				}
			}
		}
	}
	return deleted
}

// RefineWithDeBruijn runs the De Bruijn-guided refinement pass: it builds
// a column-indexed k-mer graph from the current node set, alternately
// prunes reads in standard mode (ratio-based) and try-hard mode (keep top
// two per column) until a try-hard pass also produces no deletions, then
// compresses the surviving graph into paths, pairs those paths into at
// most two phased equivalence classes per cohort, and emits one merged
// Node per surviving class.
func (g *Graph) RefineWithDeBruijn(opts Opts) {
	if len(g.Nodes) == 0 || g.Backbone.Len() < opts.KmerLength {
		return
	}

	nodeSeq := make(map[string]string, len(g.Nodes))
	for id, n := range g.Nodes {
		seq := majorSeqDroppingInsertions(n)
		if len(seq) < opts.KmerLength {
			continue
		}
		nodeSeq[id] = seq
	}

	var debruijn [][]dbVertex
	var numToID []string
	var idToNum map[string]int
	tryHard := false
	for {
		debruijn, numToID, idToNum = g.buildDeBruijn(nodeSeq, opts)
		deleted := g.pruneDeBruijn(debruijn, numToID, opts, tryHard)
		if len(deleted) == 0 {
			if tryHard {
				break
			}
			tryHard = true
			continue
		}
		for nid := range deleted {
			delete(g.Nodes, numToID[nid])
		}
	}

	paths := g.compressPaths(debruijn)
	equivList, excl := pairEquivalenceClasses(paths, numToID, idToNum)
	g.resolvePhasesAndEmit(equivList, excl, numToID, opts)
	g.Nodes = dedupeIdenticalHaplotypes(g.Nodes)
}

// haplotypeKey is a content digest of a final haplotype's backbone span and
// decoded major sequence, grouped the same way
// fusion/postprocess.go's groupCandidatesByGenePair buckets candidates by a
// derived key before filtering.
type haplotypeKey = [highwayhash.Size]uint8

// dedupeIdenticalHaplotypes collapses haplotype nodes that decode to the
// exact same span and sequence -- which can happen when two independent
// equivalence classes resolve to the same phase -- keeping the
// higher-coverage node and folding the others' read ids into it.
func dedupeIdenticalHaplotypes(nodes map[string]*Node) map[string]*Node {
	var zeroSeed haplotypeKey
	groups := make(map[haplotypeKey][]string, len(nodes))
	for id, n := range nodes {
		var b strings.Builder
		b.Grow(len(n.Seq) + 16)
		fmt.Fprintf(&b, "%d:%d:", n.Left, n.Right)
		for _, c := range n.Seq {
			b.WriteString(c.Major().String())
		}
		h := highwayhash.Sum([]byte(b.String()), zeroSeed[:])
		groups[h] = append(groups[h], id)
	}

	deduped := make(map[string]*Node, len(groups))
	for _, ids := range groups {
		sort.Strings(ids)
		keep := ids[0]
		for _, id := range ids[1:] {
			if nodes[id].AvgCov > nodes[keep].AvgCov {
				keep = id
			}
		}
		kept := nodes[keep]
		for _, id := range ids {
			if id == keep {
				continue
			}
			for rid := range nodes[id].ReadIDs {
				kept.ReadIDs[rid] = true
			}
		}
		deduped[keep] = kept
	}
	return deduped
}

type dbPath struct {
	left, right int
	numIDs      map[int]bool
}

func containsInt(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

// compressPaths walks the pruned k-mer graph breadth-first starting from
// the first non-empty column, extending a path through columns with
// exactly one vertex whose sole predecessor is the path's current vertex,
// and splitting (re-enqueuing every downstream vertex) at a merge,
// branch, or gap of empty columns.
func (g *Graph) compressPaths(debruijn [][]dbVertex) []dbPath {
	var queue []string
	done := map[string]bool{}
	for i := range debruijn {
		if len(debruijn[i]) == 0 {
			continue
		}
		for i2 := range debruijn[i] {
			queue = append(queue, fmt.Sprintf("%d-%d", i, i2))
		}
		break
	}

	var paths []dbPath
	for len(queue) > 0 {
		key := queue[0]
		queue = queue[1:]
		if done[key] {
			continue
		}
		var i, i2 int
		fmt.Sscanf(key, "%d-%d", &i, &i2)

		numIDs := append([]int{}, debruijn[i][i2].numIDs...)
		j := i + 1
		for j < len(debruijn) {
			merge := len(debruijn[j-1]) > len(debruijn[j])
			branch := len(debruijn[j-1]) < len(debruijn[j])
			newI2 := -1
			var tmpIDs []int
			found := false
			for j2 := range debruijn[j] {
				preds := debruijn[j][j2].predecessors
				switch {
				case len(preds) == 0:
					queue = append(queue, fmt.Sprintf("%d-%d", j, j2))
				case containsInt(preds, i2):
					found = true
					if len(preds) > 1 {
						merge = true
					}
					if newI2 >= 0 {
						branch = true
					}
					newI2 = j2
					tmpIDs = append(tmpIDs, debruijn[j][j2].numIDs...)
				}
			}
			if merge || branch {
				for j2 := range debruijn[j] {
					if containsInt(debruijn[j][j2].predecessors, i2) {
						queue = append(queue, fmt.Sprintf("%d-%d", j, j2))
					}
				}
				break
			}
			if !found {
				break
			}
			numIDs = append(numIDs, tmpIDs...)
			i2 = newI2
			j++
		}
		done[key] = true

		idSet := make(map[int]bool, len(numIDs))
		for _, id := range numIDs {
			idSet[id] = true
		}
		paths = append(paths, dbPath{i, j, idSet})

		if j < len(debruijn) && len(debruijn[j]) == 0 {
			j++
			for j < len(debruijn) && len(debruijn[j]) == 0 {
				j++
			}
			if j < len(debruijn) {
				for j2 := range debruijn[j] {
					queue = append(queue, fmt.Sprintf("%d-%d", j, j2))
				}
			}
		}
	}
	return paths
}

type eqClass struct {
	pathIdx []int
	numIDs  map[int]bool
	allIDs  map[int]bool
	sig     haplotypeKey
}

// idSetSig digests a sorted id set with HighwayHash, the same
// build-a-buffer-then-Sum shape fusion/postprocess.go's hashGeneIDs uses
// for its candidate grouping key. Two classes sharing a sig are trusted to
// share the same allIDs set outright -- the same hash-as-identity
// convention groupCandidatesByGenePair itself relies on -- so
// resolvePhasesAndEmit's O(n^2) cohort scan can skip the full intersection
// walk once two classes' sigs already match.
func idSetSig(ids map[int]bool) haplotypeKey {
	sorted := make([]int, 0, len(ids))
	for id := range ids {
		sorted = append(sorted, id)
	}
	sort.Ints(sorted)
	buf := make([]uint8, 0, len(sorted)*4)
	for _, id := range sorted {
		buf = append(buf, uint8(id), uint8(id>>8), uint8(id>>16), uint8(id>>24))
	}
	var zeroSeed haplotypeKey
	return highwayhash.Sum(buf, zeroSeed[:])
}

func mateNumIDsOf(ids map[int]bool, numToID []string, idToNum map[string]int) map[int]bool {
	out := map[int]bool{}
	for id := range ids {
		mate := mateNodeID(numToID[id])
		if mn, ok := idToNum[mate]; ok {
			out[mn] = true
		}
	}
	return out
}

func unionInts(a, b map[int]bool) map[int]bool {
	out := make(map[int]bool, len(a)+len(b))
	for k := range a {
		out[k] = true
	}
	for k := range b {
		out[k] = true
	}
	return out
}

func intersectSize(a, b map[int]bool) int {
	n := 0
	for k := range a {
		if b[k] {
			n++
		}
	}
	return n
}

func cloneEqClass(c *eqClass) *eqClass {
	idx := append([]int{}, c.pathIdx...)
	ids := make(map[int]bool, len(c.numIDs))
	for k := range c.numIDs {
		ids[k] = true
	}
	all := make(map[int]bool, len(c.allIDs))
	for k := range c.allIDs {
		all[k] = true
	}
	return &eqClass{idx, ids, all, c.sig}
}

func mergeEqClass(dst, src *eqClass) {
	dst.pathIdx = append(dst.pathIdx, src.pathIdx...)
	sort.Ints(dst.pathIdx)
	for k := range src.numIDs {
		dst.numIDs[k] = true
	}
}

// pairEquivalenceClasses groups compressed paths into column-overlap
// cohorts (a cohort starts at a path and extends while the next path's
// left edge still falls before it), yielding one or two classes per
// cohort. A cohort with a single class has the read ids already claimed
// exclusively by a sibling cohort subtracted from it; if that leaves it
// empty, the cohort is dropped entirely.
func pairEquivalenceClasses(paths []dbPath, numToID []string, idToNum map[string]int) ([][]*eqClass, map[int]bool) {
	sort.Slice(paths, func(i, j int) bool {
		if paths[i].left != paths[j].left {
			return paths[i].left < paths[j].left
		}
		return paths[i].right < paths[j].right
	})

	excl := map[int]bool{}
	var equivList [][]*eqClass
	p := 0
	for p < len(paths) {
		right := paths[p].right
		p2 := p + 1
		for p2 < len(paths) && paths[p2].left < right {
			p2++
		}
		var classes []*eqClass
		for i := p; i < p2; i++ {
			numIDs := make(map[int]bool, len(paths[i].numIDs))
			for k := range paths[i].numIDs {
				numIDs[k] = true
			}
			all := unionInts(numIDs, mateNumIDsOf(numIDs, numToID, idToNum))
			classes = append(classes, &eqClass{[]int{i}, numIDs, all, idSetSig(all)})
			if p+1 < p2 {
				if p+2 != p2 {
					panic("assembly: De Bruijn cohort spans more than two paths")
				}
				for k := range numIDs {
					excl[k] = true
				}
			}
		}
		equivList = append(equivList, classes)
		p = p2
	}

	var filtered [][]*eqClass
	for _, classes := range equivList {
		if len(classes) > 1 {
			filtered = append(filtered, classes)
			continue
		}
		c := classes[0]
		remaining := map[int]bool{}
		for k := range c.numIDs {
			if !excl[k] {
				remaining[k] = true
			}
		}
		if len(remaining) == 0 {
			continue
		}
		c.numIDs = remaining
		c.allIDs = unionInts(remaining, mateNumIDsOf(remaining, numToID, idToNum))
		c.sig = idSetSig(c.allIDs)
		filtered = append(filtered, classes)
	}
	return filtered, excl
}

func maxOf(a, b float64) float64 { return math.Max(a, b) }

// resolvePhasesAndEmit repeatedly picks the pair of cohorts with the
// strongest shared-read signal, trims a dominated row/column where one
// side has at least 6x more reads than the other, merges the pair, and
// removes the consumed cohort -- until no pair scores >= 0. It then emits
// one Node per surviving class by combining its member read nodes in
// numeric-id order.
func (g *Graph) resolvePhasesAndEmit(equivList [][]*eqClass, excl map[int]bool, numToID []string, opts Opts) {
	idToNum := make(map[string]int, len(numToID))
	for i, id := range numToID {
		idToNum[id] = i
	}

	for {
		bestStat := math.MinInt32
		bestI, bestI2 := -1, -1
		var bestMat [][]int
		for i := 0; i < len(equivList)-1; i++ {
			classesI := equivList[i]
			for i2 := i + 1; i2 < len(equivList); i2++ {
				classesI2 := equivList[i2]
				mat := make([][]int, len(classesI))
				for j := range classesI {
					row := make([]int, len(classesI2))
					for j2 := range classesI2 {
						switch {
						case classesI[j].sig == classesI2[j2].sig:
							row[j2] = len(classesI[j].allIDs)
						default:
							row[j2] = intersectSize(classesI[j].allIDs, classesI2[j2].allIDs)
						}
					}
					mat[j] = row
				}
				stat := 0
				if len(classesI) == 1 || len(classesI2) == 1 {
					for _, row := range mat {
						for _, v := range row {
							stat += v
						}
					}
				} else {
					for _, row := range mat {
						a, b := row[0], row[1]
						if b > a {
							a, b = b, a
						}
						stat += a - b
					}
					if mat[0][0]+mat[1][1] == mat[1][0]+mat[0][1] {
						stat = -1
					}
				}
				if stat > bestStat {
					bestStat, bestMat, bestI, bestI2 = stat, mat, i, i2
				}
			}
		}
		if bestStat < 0 {
			break
		}

		mat := bestMat
		classes, classes2 := equivList[bestI], equivList[bestI2]

		if len(classes) == 2 && len(classes2) == 2 {
			n1, n2 := len(classes[0].numIDs), len(classes[1].numIDs)
			if float64(n1)*opts.CohortDominanceRatio < float64(n2) || float64(n2)*opts.CohortDominanceRatio < float64(n1) {
				rs1, rs2 := mat[0][0]+mat[0][1], mat[1][0]+mat[1][1]
				if float64(rs1) > maxOf(2, float64(rs2)*opts.CohortDominanceRatio) {
					classes, mat = []*eqClass{classes[0]}, [][]int{mat[0]}
					for k := range excl {
						delete(classes[0].numIDs, k)
					}
				} else if float64(rs2) > maxOf(2, float64(rs1)*opts.CohortDominanceRatio) {
					classes, mat = []*eqClass{classes[1]}, [][]int{mat[1]}
					for k := range excl {
						delete(classes[0].numIDs, k)
					}
				}
			}
			if len(classes) == 2 {
				m1, m2 := len(classes2[0].numIDs), len(classes2[1].numIDs)
				if float64(m1)*opts.CohortDominanceRatio < float64(m2) || float64(m2)*opts.CohortDominanceRatio < float64(m1) {
					cs1, cs2 := mat[0][0]+mat[1][0], mat[0][1]+mat[1][1]
					if float64(cs1) > maxOf(2, float64(cs2)*opts.CohortDominanceRatio) {
						classes2 = []*eqClass{classes2[0]}
						mat = [][]int{{mat[0][0]}, {mat[1][0]}}
						for k := range excl {
							delete(classes2[0].numIDs, k)
						}
					} else if float64(cs2) > maxOf(2, float64(cs1)*opts.CohortDominanceRatio) {
						classes2 = []*eqClass{classes2[1]}
						mat = [][]int{{mat[0][1]}, {mat[1][1]}}
						for k := range excl {
							delete(classes2[0].numIDs, k)
						}
					}
				}
			}
		}

		stop := false
		switch {
		case len(classes) == 1 && len(classes2) == 1:
			mergeEqClass(classes[0], classes2[0])
		case len(classes) == 1:
			c := classes[0]
			atStart := containsInt(c.pathIdx, 0)
			switch {
			case !atStart && float64(mat[0][0]) > maxOf(2, float64(mat[0][1])*opts.CohortDominanceRatio):
				mergeEqClass(c, classes2[0])
			case !atStart && float64(mat[0][1]) > maxOf(2, float64(mat[0][0])*opts.CohortDominanceRatio):
				mergeEqClass(c, classes2[1])
			default:
				classes = append(classes, cloneEqClass(c))
				if atStart && len(c.pathIdx) == 1 && mat[0][0] != mat[0][1] {
					if mat[0][0] > mat[0][1] {
						mergeEqClass(classes[0], classes2[0])
						classes[1] = classes2[1]
					} else {
						classes[0] = classes2[0]
						mergeEqClass(classes[1], classes2[1])
					}
				} else {
					mergeEqClass(classes[0], classes2[0])
					mergeEqClass(classes[1], classes2[1])
				}
			}
		case len(classes2) == 1:
			c2 := classes2[0]
			switch {
			case float64(mat[0][0]) > maxOf(2, float64(mat[1][0])*opts.CohortDominanceRatio):
				mergeEqClass(classes[0], c2)
				if float64(len(classes[0].numIDs)) > float64(len(classes[1].numIDs))*opts.CohortDominanceRatio {
					classes = []*eqClass{classes[0]}
				}
			case float64(mat[1][0]) > maxOf(2, float64(mat[0][0])*opts.CohortDominanceRatio):
				mergeEqClass(classes[1], c2)
				if float64(len(classes[1].numIDs)) > float64(len(classes[0].numIDs))*opts.CohortDominanceRatio {
					classes = []*eqClass{classes[1]}
				}
			default:
				mergeEqClass(classes[0], c2)
				mergeEqClass(classes[1], c2)
			}
		default:
			score00 := mat[0][0] + mat[1][1]
			score01 := mat[0][1] + mat[1][0]
			switch {
			case score00 > score01:
				mergeEqClass(classes[0], classes2[0])
				mergeEqClass(classes[1], classes2[1])
			case score01 > score00:
				mergeEqClass(classes[0], classes2[1])
				mergeEqClass(classes[1], classes2[0])
			default:
				stop = true
			}
		}
		if stop {
			break
		}

		for _, c := range classes {
			c.allIDs = unionInts(c.numIDs, mateNumIDsOf(c.numIDs, numToID, idToNum))
			c.sig = idSetSig(c.allIDs)
		}
		equivList[bestI] = classes
		equivList = append(equivList[:bestI2], equivList[bestI2+1:]...)
	}

	newNodes := map[string]*Node{}
	for i, classes := range equivList {
		for j, c := range classes {
			ids := make([]int, 0, len(c.numIDs))
			for id := range c.numIDs {
				ids = append(ids, id)
			}
			if len(ids) == 0 {
				continue
			}
			sort.Ints(ids)
			readID := numToID[ids[0]]
			node := cloneNode(g.Nodes[readID])
			for _, id2 := range ids[1:] {
				node.CombineWith(g.Nodes[numToID[id2]])
			}
			newID := fmt.Sprintf("(%d-%d)%s", i, j, readID)
			node.ID = newID
			newNodes[newID] = node
		}
	}
	g.Nodes = newNodes
}
