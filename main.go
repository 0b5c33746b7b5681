package main

import (
	"os"

	"github.com/urfave/cli"

	"github.com/tessen-dev/goray/cmd"
)

func main() {
	// free up -v for verbose output
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print the version",
	}

	app := cli.NewApp()
	app.Name = "goray"
	app.Usage = "build and query ray-traced scene geometry"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "info",
			Usage: "parse a scene and report its bounds and acceleration structure",
			Description: `
Parse a JSON scene description, build the scene-wide acceleration structure
and print the world bounds along with node and depth statistics.`,
			ArgsUsage: "scene.json",
			Action:    cmd.SceneInfo,
		},
		{
			Name:  "bench",
			Usage: "benchmark scene intersection with random rays",
			Description: `
Parse a JSON scene description, fire random rays at it and report
intersection throughput and per-shape test/hit counters. With --check each
accelerated result is cross-checked against a naive linear scan.`,
			ArgsUsage: "scene.json",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "rays",
					Value: 1000000,
					Usage: "number of random rays to trace",
				},
				cli.Int64Flag{
					Name:  "seed",
					Value: 1,
					Usage: "seed for the ray generator",
				},
				cli.BoolFlag{
					Name:  "check",
					Usage: "cross-check every hit against a naive linear scan",
				},
			},
			Action: cmd.BenchScene,
		},
	}

	if err := app.Run(os.Args); err != nil {
		os.Exit(1)
	}
}
