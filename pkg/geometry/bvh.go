package geometry

import (
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/tessen-dev/goray/pkg/core"
	"github.com/tessen-dev/goray/pkg/log"
	"github.com/tessen-dev/goray/pkg/stats"
)

var bvhLog = log.New("bvh")

// SplitMethod selects how a BVH node partitions its primitives
type SplitMethod int

const (
	// SplitEqual partitions so each half holds the same number of
	// primitives (median split by centroid along the axis)
	SplitEqual SplitMethod = iota
	// SplitMiddle splits at the numeric midpoint of the node's bounding box
	// along the axis
	SplitMiddle
	// SplitSAH picks the candidate split minimizing the surface-area
	// heuristic cost
	SplitSAH
)

// ParseSplitMethod resolves a configuration string to a SplitMethod
func ParseSplitMethod(name string) (SplitMethod, error) {
	switch name {
	case "equal":
		return SplitEqual, nil
	case "middle":
		return SplitMiddle, nil
	case "sah":
		return SplitSAH, nil
	default:
		return 0, fmt.Errorf("unrecognized split_method %q (want \"equal\", \"middle\", or \"sah\")", name)
	}
}

// String returns the configuration name of the split method
func (m SplitMethod) String() string {
	switch m {
	case SplitMiddle:
		return "middle"
	case SplitSAH:
		return "sah"
	default:
		return "equal"
	}
}

// Nodes holding at least this many primitives build their two subtrees
// concurrently. Below it, goroutine overhead outweighs the win.
const bvhParallelThreshold = 4096

// Number of candidate buckets evaluated by the SAH split
const sahBuckets = 12

// BVH is a SurfaceGroup that recursively partitions its children into a
// binary tree of bounding boxes, pruning intersection queries in
// logarithmic time. Build must be called after the last child is added and
// before the first Intersect.
type BVH struct {
	SurfaceGroup
	SplitMethod SplitMethod
	MaxLeafSize int

	root  Surface
	stats *stats.Collector
}

// NewBVH creates an empty BVH. maxLeafSize must be at least 1; values below
// are clamped.
func NewBVH(method SplitMethod, maxLeafSize int, xform core.Transform, collector *stats.Collector) *BVH {
	if maxLeafSize < 1 {
		maxLeafSize = 1
	}
	b := &BVH{SplitMethod: method, MaxLeafSize: maxLeafSize, stats: collector}
	b.Xform = xform
	b.bounds = core.EmptyAABB()
	return b
}

// Build constructs the tree from the children added so far. Zero children
// yield a nil root whose Intersect always misses.
func (b *BVH) Build() error {
	if len(b.surfaces) == 0 {
		b.root = nil
		return nil
	}

	// copy so the recursive partitioning never reorders the group's own
	// child list
	prims := make([]Surface, len(b.surfaces))
	copy(prims, b.surfaces)

	root, err := b.buildNode(prims, 0)
	if err != nil {
		return err
	}
	b.root = root
	b.collectTreeStats(root, 0)

	bvhLog.Infof("built %s BVH over %d surfaces (max leaf size %d)", b.SplitMethod, len(b.surfaces), b.MaxLeafSize)
	return nil
}

// Intersect transforms the ray into the BVH's local space, descends the
// tree, and maps the closest hit back out.
func (b *BVH) Intersect(ray *core.Ray, hit *core.HitRecord) bool {
	b.stats.Ray()
	if b.root == nil {
		return false
	}

	tray := b.Xform.Inverse().Ray(*ray)
	if !b.root.Intersect(&tray, hit) {
		return false
	}

	hit.Point = b.Xform.Point(hit.Point)
	hit.GeoNormal = b.Xform.Normal(hit.GeoNormal)
	hit.ShadeNormal = b.Xform.Normal(hit.ShadeNormal)
	ray.TMax = hit.T
	return true
}

// Root returns the root of the built tree, or nil before Build or for an
// empty BVH. Exposed for structural tests and diagnostics.
func (b *BVH) Root() Surface {
	return b.root
}

// buildNode recursively partitions prims into a subtree. prims is owned by
// this call and may be reordered in place; once split, the two halves are
// disjoint, which is what makes the parallel fan-out safe.
func (b *BVH) buildNode(prims []Surface, depth int) (Surface, error) {
	bbox := core.EmptyAABB()
	for _, p := range prims {
		bbox.Enclose(p.Bounds())
	}

	if len(prims) <= b.MaxLeafSize {
		return &bvhLeaf{bbox: bbox, surfaces: prims, stats: b.stats}, nil
	}

	axis := bbox.LongestAxis()

	var mid int
	switch b.SplitMethod {
	case SplitMiddle:
		mid = middleSplit(prims, axis, bbox)
	case SplitSAH:
		mid = sahSplit(prims, axis, bbox)
	default:
		mid = equalSplit(prims, axis)
	}
	// degenerate partitions (all centroids on one side) fall back to a
	// median split, which always makes progress
	if mid <= 0 || mid >= len(prims) {
		mid = equalSplit(prims, axis)
	}

	var left, right Surface
	var err error
	if len(prims) >= bvhParallelThreshold {
		var g errgroup.Group
		leftPrims := prims[:mid]
		g.Go(func() error {
			var gerr error
			left, gerr = b.buildNode(leftPrims, depth+1)
			return gerr
		})
		right, err = b.buildNode(prims[mid:], depth+1)
		if werr := g.Wait(); werr != nil {
			return nil, werr
		}
	} else {
		left, err = b.buildNode(prims[:mid], depth+1)
		if err == nil {
			right, err = b.buildNode(prims[mid:], depth+1)
		}
	}
	if err != nil {
		return nil, err
	}

	// the node's box is the union of its children's boxes, computed only
	// after both subtrees exist
	nodeBox := left.Bounds().Union(right.Bounds())
	return &bvhNode{bbox: nodeBox, left: left, right: right, stats: b.stats}, nil
}

// equalSplit sorts prims by centroid along axis and splits at the median
func equalSplit(prims []Surface, axis int) int {
	sort.Slice(prims, func(i, j int) bool {
		return prims[i].Bounds().Center().Axis(axis) < prims[j].Bounds().Center().Axis(axis)
	})
	return len(prims) / 2
}

// middleSplit partitions prims by which side of the box's midpoint their
// centroid falls on, returning the index of the first primitive on the far
// side. Returns a degenerate index when every centroid lands on one side.
func middleSplit(prims []Surface, axis int, bbox core.AABB) int {
	pivot := bbox.Center().Axis(axis)
	mid := 0
	for i, p := range prims {
		if p.Bounds().Center().Axis(axis) < pivot {
			prims[i], prims[mid] = prims[mid], prims[i]
			mid++
		}
	}
	return mid
}

// sahSplit bins centroids into buckets along axis and picks the bucket
// boundary minimizing the expected traversal cost: the sum of each side's
// surface area weighted by its primitive count.
func sahSplit(prims []Surface, axis int, bbox core.AABB) int {
	centroids := core.EmptyAABB()
	for _, p := range prims {
		centroids.EnclosePoint(p.Bounds().Center())
	}
	lo := centroids.Min.Axis(axis)
	extent := centroids.Max.Axis(axis) - lo
	if extent <= 0 {
		return -1 // all centroids coincide along this axis
	}

	bucketOf := func(p Surface) int {
		bkt := int(float64(sahBuckets) * (p.Bounds().Center().Axis(axis) - lo) / extent)
		if bkt > sahBuckets-1 {
			bkt = sahBuckets - 1
		}
		return bkt
	}

	var counts [sahBuckets]int
	var boxes [sahBuckets]core.AABB
	for i := range boxes {
		boxes[i] = core.EmptyAABB()
	}
	for _, p := range prims {
		bkt := bucketOf(p)
		counts[bkt]++
		boxes[bkt].Enclose(p.Bounds())
	}

	bestSplit, bestCost := -1, 0.0
	for split := 1; split < sahBuckets; split++ {
		leftBox, rightBox := core.EmptyAABB(), core.EmptyAABB()
		leftCount, rightCount := 0, 0
		for i := 0; i < split; i++ {
			leftBox.Enclose(boxes[i])
			leftCount += counts[i]
		}
		for i := split; i < sahBuckets; i++ {
			rightBox.Enclose(boxes[i])
			rightCount += counts[i]
		}
		if leftCount == 0 || rightCount == 0 {
			continue
		}

		cost := float64(leftCount)*leftBox.SurfaceArea() + float64(rightCount)*rightBox.SurfaceArea()
		if bestSplit < 0 || cost < bestCost {
			bestSplit, bestCost = split, cost
		}
	}
	if bestSplit < 0 {
		return -1
	}

	mid := 0
	for i, p := range prims {
		if bucketOf(p) < bestSplit {
			prims[i], prims[mid] = prims[mid], prims[i]
			mid++
		}
	}
	return mid
}

// collectTreeStats walks the built tree and records its shape in the
// collector
func (b *BVH) collectTreeStats(node Surface, depth int) {
	if b.stats == nil || node == nil {
		return
	}
	if int64(depth) > b.stats.MaxDepth {
		b.stats.MaxDepth = int64(depth)
	}
	switch n := node.(type) {
	case *bvhNode:
		b.stats.InteriorNodes++
		b.collectTreeStats(n.left, depth+1)
		b.collectTreeStats(n.right, depth+1)
	case *bvhLeaf:
		b.stats.LeafNodes++
		b.stats.LeafSurfaces += int64(len(n.surfaces))
	}
}

// bvhNode is an interior node: a bounding box and two children
type bvhNode struct {
	baseSurface
	bbox        core.AABB
	left, right Surface
	stats       *stats.Collector
}

func (n *bvhNode) Bounds() core.AABB { return n.bbox }

// Intersect prunes the subtree on a box miss, otherwise recurses into both
// children, nearer first. Visiting the nearer child first matters: a hit
// there shrinks ray.TMax, letting the farther child's box test prune a
// subtree that would otherwise be descended for nothing.
func (n *bvhNode) Intersect(ray *core.Ray, hit *core.HitRecord) bool {
	n.stats.NodeVisited()
	if !n.bbox.Hit(ray) {
		return false
	}

	first, second := n.left, n.right
	tLeft, okLeft := n.left.Bounds().HitDistance(ray)
	tRight, okRight := n.right.Bounds().HitDistance(ray)
	switch {
	case !okLeft && !okRight:
		return false
	case !okLeft:
		return second.Intersect(ray, hit)
	case !okRight:
		return first.Intersect(ray, hit)
	case tRight < tLeft:
		// ties keep construction order
		first, second = second, first
	}

	hitFirst := first.Intersect(ray, hit)
	// ray.TMax has shrunk if the first child hit; the second child's own
	// box test uses the updated interval and prunes automatically
	hitSecond := second.Intersect(ray, hit)
	return hitFirst || hitSecond
}

// bvhLeaf is a leaf bucket: a small list of primitives scanned linearly.
// Lighter weight than a SurfaceGroup: no transform, no incremental bounds.
type bvhLeaf struct {
	baseSurface
	bbox     core.AABB
	surfaces []Surface
	stats    *stats.Collector
}

func (l *bvhLeaf) Bounds() core.AABB { return l.bbox }

func (l *bvhLeaf) Intersect(ray *core.Ray, hit *core.HitRecord) bool {
	l.stats.NodeVisited()
	if !l.bbox.Hit(ray) {
		return false
	}

	hitAnything := false
	for _, surface := range l.surfaces {
		if surface.Intersect(ray, hit) {
			hitAnything = true
		}
	}
	return hitAnything
}
