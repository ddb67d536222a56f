package main

import (
	"os"

	"github.com/arpelle/glint/cmd"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "glint"
	app.Usage = "render scenes with physically-based path tracing"
	app.ArgsUsage = "SCENE"
	app.Version = "0.1.0"
	app.Flags = append([]cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}, cmd.RenderFlags...)
	app.Action = cmd.Render

	app.Run(os.Args)
}
