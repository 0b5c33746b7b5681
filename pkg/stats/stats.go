// Package stats provides an injectable sink for intersection and traversal
// counters. Shapes hold an optional *Collector; a nil collector disables all
// accounting, so intersection code stays free of hidden global state and
// tests can construct isolated collectors.
package stats

import (
	"bytes"
	"fmt"
	"sync/atomic"

	"github.com/olekukonko/tablewriter"
)

// Collector aggregates counters across arbitrarily many goroutines. All
// increments are atomic; all methods are safe on a nil receiver.
type Collector struct {
	sphereTests atomic.Int64
	sphereHits  atomic.Int64
	quadTests   atomic.Int64
	quadHits    atomic.Int64
	triTests    atomic.Int64
	triHits     atomic.Int64

	nodesVisited atomic.Int64
	rays         atomic.Int64

	// Build-time tree accounting, written single-threaded during Build
	InteriorNodes int64
	LeafNodes     int64
	LeafSurfaces  int64
	MaxDepth      int64
}

// SphereTest records one ray-sphere intersection test
func (c *Collector) SphereTest() {
	if c != nil {
		c.sphereTests.Add(1)
	}
}

// SphereHit records one successful ray-sphere intersection
func (c *Collector) SphereHit() {
	if c != nil {
		c.sphereHits.Add(1)
	}
}

// QuadTest records one ray-quad intersection test
func (c *Collector) QuadTest() {
	if c != nil {
		c.quadTests.Add(1)
	}
}

// QuadHit records one successful ray-quad intersection
func (c *Collector) QuadHit() {
	if c != nil {
		c.quadHits.Add(1)
	}
}

// TriangleTest records one ray-triangle intersection test
func (c *Collector) TriangleTest() {
	if c != nil {
		c.triTests.Add(1)
	}
}

// TriangleHit records one successful ray-triangle intersection
func (c *Collector) TriangleHit() {
	if c != nil {
		c.triHits.Add(1)
	}
}

// NodeVisited records one BVH node visited during traversal
func (c *Collector) NodeVisited() {
	if c != nil {
		c.nodesVisited.Add(1)
	}
}

// Ray records one top-level ray query
func (c *Collector) Ray() {
	if c != nil {
		c.rays.Add(1)
	}
}

// Rays returns the number of top-level ray queries recorded so far
func (c *Collector) Rays() int64 {
	if c == nil {
		return 0
	}
	return c.rays.Load()
}

func ratio(num, den int64) string {
	if den == 0 {
		return fmt.Sprintf("%d / %d", num, den)
	}
	return fmt.Sprintf("%.2f (%d / %d)", float64(num)/float64(den), num, den)
}

// Table renders the collected counters as an aligned text table
func (c *Collector) Table() string {
	if c == nil {
		return ""
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Statistic", "Value"})
	table.Append([]string{"Sphere tests per hit", ratio(c.sphereTests.Load(), c.sphereHits.Load())})
	table.Append([]string{"Quad tests per hit", ratio(c.quadTests.Load(), c.quadHits.Load())})
	table.Append([]string{"Triangle tests per hit", ratio(c.triTests.Load(), c.triHits.Load())})
	table.Append([]string{"BVH nodes visited per ray", ratio(c.nodesVisited.Load(), c.rays.Load())})
	table.Append([]string{"BVH interior nodes", fmt.Sprintf("%d", c.InteriorNodes)})
	table.Append([]string{"BVH leaf nodes", fmt.Sprintf("%d", c.LeafNodes)})
	table.Append([]string{"BVH surfaces per leaf", ratio(c.LeafSurfaces, c.LeafNodes)})
	table.Append([]string{"BVH max depth", fmt.Sprintf("%d", c.MaxDepth)})
	table.Render()
	return buf.String()
}
