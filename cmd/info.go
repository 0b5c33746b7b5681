package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli"

	"github.com/tessen-dev/goray/pkg/scene"
	"github.com/tessen-dev/goray/pkg/stats"
)

// SceneInfo parses a scene, builds its acceleration structure and reports
// the world bounds plus tree statistics.
func SceneInfo(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return errors.New("missing scene file argument")
	}

	collector := &stats.Collector{}
	builder := scene.NewBuilder(scene.DefaultRegistry(), collector)

	start := time.Now()
	sc, err := scene.ParseFile(ctx.Args().First(), builder)
	if err != nil {
		logger.Error(err)
		return err
	}
	logger.Noticef("scene built in %s", time.Since(start))

	bounds := sc.Root.Bounds()
	fmt.Printf("world bounds: min (%g, %g, %g), max (%g, %g, %g)\n",
		bounds.Min.X, bounds.Min.Y, bounds.Min.Z,
		bounds.Max.X, bounds.Max.Y, bounds.Max.Z)
	fmt.Println(collector.Table())

	return nil
}
