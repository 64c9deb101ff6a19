package polygon

import (
	"fmt"
	"math"

	"github.com/bloodmagesoftware/mapgeo/geometry"
	"go.uber.org/zap"
)

// concaveTolerance keeps nearly straight corners from being split.
const concaveTolerance = 1e-6

type splitVertex struct {
	pos geometry.Point
	out []int
	in  []int
}

type splitEdge struct {
	v1, v2 int
	split  bool
}

// splitter holds the directed edge graph of one polygon while it is being
// cut into convex pieces.
type splitter struct {
	verts  []splitVertex
	edges  []splitEdge
	lookup map[geometry.Point]int
	pairs  map[[2]int]int
	log    *zap.Logger
}

func newSplitter(log *zap.Logger) *splitter {
	return &splitter{
		lookup: make(map[geometry.Point]int),
		pairs:  make(map[[2]int]int),
		log:    log,
	}
}

func (s *splitter) vertex(p geometry.Point) int {
	if idx, ok := s.lookup[p]; ok {
		return idx
	}
	s.verts = append(s.verts, splitVertex{pos: p})
	idx := len(s.verts) - 1
	s.lookup[p] = idx
	return idx
}

func (s *splitter) addEdge(a, b geometry.Point, split bool) int {
	v1 := s.vertex(a)
	v2 := s.vertex(b)
	if v1 == v2 {
		return -1
	}
	if idx, ok := s.pairs[[2]int{v1, v2}]; ok {
		return idx
	}
	return s.link(v1, v2, split)
}

func (s *splitter) link(v1, v2 int, split bool) int {
	s.edges = append(s.edges, splitEdge{v1: v1, v2: v2, split: split})
	idx := len(s.edges) - 1
	s.pairs[[2]int{v1, v2}] = idx
	s.verts[v1].out = append(s.verts[v1].out, idx)
	s.verts[v2].in = append(s.verts[v2].in, idx)
	return idx
}

// removeSisterPairs drops edges that appear in both directions. They come
// from two-sided lines with this sector on both sides and enclose no area.
func (s *splitter) removeSisterPairs() {
	keep := make([]splitEdge, 0, len(s.edges))
	for _, e := range s.edges {
		if _, ok := s.pairs[[2]int{e.v2, e.v1}]; ok {
			continue
		}
		keep = append(keep, e)
	}
	if len(keep) == len(s.edges) {
		return
	}

	s.edges = nil
	s.pairs = make(map[[2]int]int)
	for i := range s.verts {
		s.verts[i].in = nil
		s.verts[i].out = nil
	}
	for _, e := range keep {
		s.link(e.v1, e.v2, e.split)
	}
}

// closeOpenEnds joins each vertex where the boundary stops to the nearest
// vertex where a boundary starts, so a slightly broken sector still closes.
func (s *splitter) closeOpenEnds() {
	var ends, starts []int
	for i, v := range s.verts {
		switch {
		case len(v.in) > len(v.out):
			ends = append(ends, i)
		case len(v.out) > len(v.in):
			starts = append(starts, i)
		}
	}
	if len(ends) == 0 {
		return
	}

	used := make([]bool, len(starts))
	for _, end := range ends {
		best := -1
		bestDist := math.Inf(1)
		for i, start := range starts {
			if used[i] {
				continue
			}
			if d := geometry.Distance(s.verts[end].pos, s.verts[start].pos); d < bestDist {
				best, bestDist = i, d
			}
		}
		if best < 0 {
			s.log.Warn("unclosed polygon end has no partner",
				zap.Float64("x", s.verts[end].pos.X),
				zap.Float64("y", s.verts[end].pos.Y))
			continue
		}
		used[best] = true
		s.log.Debug("closing open polygon end",
			zap.Float64("x", s.verts[end].pos.X),
			zap.Float64("y", s.verts[end].pos.Y),
			zap.Float64("gap", bestDist))
		s.link(end, starts[best], false)
	}
}

// next returns the edge that continues the outline after edge ei: the
// outgoing edge at its end vertex making the tightest right turn. Going back
// along the sister edge is only chosen at dead ends.
func (s *splitter) next(ei int) int {
	e := s.edges[ei]
	v := &s.verts[e.v2]
	prev := s.verts[e.v1].pos

	best := -1
	back := -1
	bestAngle := math.Inf(1)
	for _, oi := range v.out {
		o := s.edges[oi]
		if o.v2 == e.v1 {
			back = oi
			continue
		}
		a := geometry.AngleBetween(prev, v.pos, s.verts[o.v2].pos)
		if a < bestAngle {
			best, bestAngle = oi, a
		}
	}
	if best < 0 {
		return back
	}
	return best
}

// corner returns the interior angle between edge ei and its successor.
func (s *splitter) corner(ei int) (int, float64) {
	n := s.next(ei)
	if n < 0 {
		return -1, 0
	}
	e := s.edges[ei]
	o := s.edges[n]
	if o.v2 == e.v1 {
		return n, 2 * math.Pi
	}
	return n, geometry.AngleBetween(s.verts[e.v1].pos, s.verts[e.v2].pos, s.verts[o.v2].pos)
}

// splitConcave adds pairs of split edges from every reflex corner until all
// corners are convex. Holes get bridged to the outer outline this way, since
// their corners are all reflex as seen from the surrounding area.
func (s *splitter) splitConcave() error {
	stuck := make(map[int]bool)
	limit := 4*len(s.verts) + 16
	for iter := 0; ; iter++ {
		if iter > limit {
			return fmt.Errorf("%w: split limit of %d reached", ErrDegenerate, limit)
		}
		ei := s.findConcave(stuck)
		if ei < 0 {
			break
		}
		if !s.splitAt(ei) {
			stuck[ei] = true
		}
	}
	if len(stuck) > 0 {
		return fmt.Errorf("%w: %d reflex corners could not be split", ErrDegenerate, len(stuck))
	}
	return nil
}

func (s *splitter) findConcave(stuck map[int]bool) int {
	for ei := range s.edges {
		if stuck[ei] {
			continue
		}
		if n, angle := s.corner(ei); n >= 0 && angle > math.Pi+concaveTolerance {
			return ei
		}
	}
	return -1
}

// splitAt connects the end vertex of edge ei to the nearest vertex that is
// visible from inside the reflex corner.
func (s *splitter) splitAt(ei int) bool {
	_, wedge := s.corner(ei)
	e := s.edges[ei]
	v := e.v2
	prev := s.verts[e.v1].pos
	pivot := s.verts[v].pos

	best := -1
	bestDist := math.Inf(1)
	for w := range s.verts {
		if w == v || len(s.verts[w].in)+len(s.verts[w].out) == 0 {
			continue
		}
		if _, ok := s.pairs[[2]int{v, w}]; ok {
			continue
		}
		a := geometry.AngleBetween(prev, pivot, s.verts[w].pos)
		if a <= concaveTolerance || a >= wedge-concaveTolerance {
			continue
		}
		d := geometry.Distance(pivot, s.verts[w].pos)
		if d >= bestDist || !s.visible(v, w) {
			continue
		}
		best, bestDist = w, d
	}
	if best < 0 {
		s.log.Debug("no split candidate for reflex corner",
			zap.Float64("x", pivot.X), zap.Float64("y", pivot.Y))
		return false
	}

	s.link(v, best, true)
	s.link(best, v, true)
	return true
}

// visible reports whether the segment between vertices a and b crosses no
// edge and passes through no other vertex.
func (s *splitter) visible(a, b int) bool {
	seg := geometry.Seg{Start: s.verts[a].pos, End: s.verts[b].pos}
	for _, e := range s.edges {
		if e.v1 == a || e.v1 == b || e.v2 == a || e.v2 == b {
			continue
		}
		other := geometry.Seg{Start: s.verts[e.v1].pos, End: s.verts[e.v2].pos}
		if _, hit := geometry.SegmentsIntersect(seg, other); hit {
			return false
		}
	}
	for i, v := range s.verts {
		if i == a || i == b || len(v.in)+len(v.out) == 0 {
			continue
		}
		if geometry.DistanceToSegment(v.pos, seg) < concaveTolerance {
			return false
		}
	}
	return true
}

// convexOutlines traces every cycle of the edge graph and returns the
// clockwise ones as point loops.
func (s *splitter) convexOutlines() ([][]geometry.Point, error) {
	done := make([]bool, len(s.edges))
	var outlines [][]geometry.Point
	failed := 0

	for start := range s.edges {
		if done[start] {
			continue
		}

		var pts []geometry.Point
		closed := false
		cur := start
		for steps := 0; steps <= len(s.edges); steps++ {
			done[cur] = true
			pts = append(pts, s.verts[s.edges[cur].v1].pos)
			cur = s.next(cur)
			if cur == start {
				closed = true
				break
			}
			if cur < 0 || done[cur] {
				break
			}
		}

		if !closed {
			failed++
			continue
		}
		if len(pts) < 3 || geometry.SignedArea(pts) >= 0 {
			// Counter-clockwise leftovers are unbridged islands; skip them.
			continue
		}
		outlines = append(outlines, pts)
	}

	if failed > 0 {
		return outlines, fmt.Errorf("%w: %d outlines did not close", ErrDegenerate, failed)
	}
	return outlines, nil
}
