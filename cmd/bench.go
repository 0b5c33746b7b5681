package cmd

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"time"

	"github.com/urfave/cli"
	"golang.org/x/sync/errgroup"

	"github.com/tessen-dev/goray/pkg/core"
	"github.com/tessen-dev/goray/pkg/geometry"
	"github.com/tessen-dev/goray/pkg/scene"
	"github.com/tessen-dev/goray/pkg/stats"
)

// BenchScene traces random rays against a parsed scene and reports
// throughput plus the intersection counters. With --check, every ray is also
// traced against a naive linear scan of the same scene and the results are
// compared.
func BenchScene(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return errors.New("missing scene file argument")
	}
	filename := ctx.Args().First()
	numRays := ctx.Int("rays")
	seed := ctx.Int64("seed")

	collector := &stats.Collector{}
	builder := scene.NewBuilder(scene.DefaultRegistry(), collector)
	sc, err := scene.ParseFile(filename, builder)
	if err != nil {
		logger.Error(err)
		return err
	}

	bounds := sc.Root.Bounds()
	if bounds.IsEmpty() {
		return errors.New("scene has no finite geometry to trace against")
	}

	var elapsed time.Duration
	if ctx.Bool("check") {
		naive, err := parseNaive(filename)
		if err != nil {
			logger.Error(err)
			return err
		}
		elapsed, err = benchChecked(sc.Root, naive, bounds, numRays, seed)
		if err != nil {
			logger.Error(err)
			return err
		}
	} else {
		elapsed = benchParallel(sc.Root, bounds, numRays, seed)
	}

	logger.Noticef("traced %d rays in %s (%.0f rays/sec)",
		numRays, elapsed, float64(numRays)/elapsed.Seconds())
	fmt.Println(collector.Table())

	return nil
}

// parseNaive re-parses the scene with the accelerator swapped for a plain
// linear-scan group, giving an independent reference intersector.
func parseNaive(filename string) (geometry.Surface, error) {
	registry := scene.DefaultRegistry()
	registry.ReplaceSurface("bbh", func(b *scene.Builder, params scene.Params) (geometry.Surface, error) {
		xform := core.IdentityTransform()
		if raw, ok := params["transform"]; ok {
			var err error
			if xform, err = scene.ParseTransform(raw); err != nil {
				return nil, err
			}
		}
		return geometry.NewSurfaceGroup(xform), nil
	})

	sc, err := scene.ParseFile(filename, scene.NewBuilder(registry, nil))
	if err != nil {
		return nil, err
	}
	return sc.Root, nil
}

func benchParallel(root geometry.Surface, bounds core.AABB, numRays int, seed int64) time.Duration {
	workers := runtime.NumCPU()
	if workers > numRays {
		workers = 1
	}

	start := time.Now()
	var g errgroup.Group
	for w := 0; w < workers; w++ {
		rng := rand.New(rand.NewSource(seed + int64(w)))
		count := numRays / workers
		if w == 0 {
			count += numRays % workers
		}
		g.Go(func() error {
			var hit core.HitRecord
			for i := 0; i < count; i++ {
				ray := randomRay(rng, bounds)
				root.Intersect(&ray, &hit)
			}
			return nil
		})
	}
	g.Wait() // workers never return errors
	return time.Since(start)
}

func benchChecked(root, naive geometry.Surface, bounds core.AABB, numRays int, seed int64) (time.Duration, error) {
	const tolerance = 1e-5

	rng := rand.New(rand.NewSource(seed))
	start := time.Now()
	for i := 0; i < numRays; i++ {
		ray := randomRay(rng, bounds)
		refRay := ray

		var hit, refHit core.HitRecord
		found := root.Intersect(&ray, &hit)
		refFound := naive.Intersect(&refRay, &refHit)

		if found != refFound {
			return 0, fmt.Errorf("ray %d: accelerated hit=%t but naive hit=%t", i, found, refFound)
		}
		if found && math.Abs(hit.T-refHit.T) > tolerance {
			return 0, fmt.Errorf("ray %d: accelerated t=%g but naive t=%g", i, hit.T, refHit.T)
		}
	}
	elapsed := time.Since(start)

	logger.Noticef("all %d rays matched the naive scan", numRays)
	return elapsed, nil
}

// randomRay returns a ray with its origin inside a slightly inflated copy of
// bounds and a uniformly random direction, so a healthy share of rays miss.
func randomRay(rng *rand.Rand, bounds core.AABB) core.Ray {
	diag := bounds.Diagonal()
	lo := bounds.Min.Subtract(diag.Multiply(0.25))
	span := diag.Multiply(1.5)

	origin := core.NewVec3(
		lo.X+rng.Float64()*span.X,
		lo.Y+rng.Float64()*span.Y,
		lo.Z+rng.Float64()*span.Z,
	)

	z := 2*rng.Float64() - 1
	phi := 2 * math.Pi * rng.Float64()
	r := math.Sqrt(1 - z*z)
	dir := core.NewVec3(r*math.Cos(phi), r*math.Sin(phi), z)

	return core.NewRay(origin, dir)
}
