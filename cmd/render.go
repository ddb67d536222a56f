package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/urfave/cli"

	"github.com/arpelle/glint/pkg/core"
	"github.com/arpelle/glint/pkg/integrator"
	"github.com/arpelle/glint/pkg/renderer"
	"github.com/arpelle/glint/pkg/scene"
)

// Exit codes
const (
	exitUsage     = 1
	exitIO        = 2
	exitSceneLoad = 3
)

// RenderFlags are the flags understood by the render action
var RenderFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "size",
		Value: "512x512",
		Usage: "output size as WxH",
	},
	cli.StringFlag{
		Name:  "output, o",
		Value: "render.png",
		Usage: "output image path (.png or .jpg)",
	},
	cli.IntFlag{
		Name:  "samples, s",
		Value: 16,
		Usage: "samples per pixel",
	},
	cli.StringFlag{
		Name:  "filter",
		Value: "mitchell",
		Usage: "reconstruction filter NAME[.K=V,...] (box, triangle, gauss, mitchell)",
	},
	cli.StringFlag{
		Name:  "integrator",
		Value: "path",
		Usage: "surface integrator {direct,path}[,k=v...]",
	},
	cli.IntFlag{
		Name:  "threads, t",
		Usage: "worker threads, 0 for all CPUs, 1 renders row by row",
	},
	cli.StringFlag{
		Name:  "render-options",
		Usage: "extra options K=V[,...]: seed, tile-size",
	},
	cli.StringFlag{
		Name:  "background",
		Usage: "background color as R,G,B or a single gray value",
	},
	cli.StringFlag{
		Name:  "camera",
		Usage: "camera command list (g/t/z/m/r/o)",
	},
	cli.Float64Flag{
		Name:  "gamma",
		Usage: "output gamma, 0 for the format default",
	},
	cli.IntFlag{
		Name:  "quality",
		Usage: "JPEG quality 0-100",
	},
	cli.BoolFlag{
		Name:  "alpha",
		Usage: "write the alpha channel",
	},
	cli.BoolFlag{
		Name:  "write-params",
		Usage: "write a text params sidecar next to the image",
	},
}

// Render is the main CLI action: load a scene, render it and write the
// image
func Render(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return cli.NewExitError("usage: glint [options] SCENE", exitUsage)
	}

	width, height, err := parseSize(ctx.String("size"))
	if err != nil {
		return cli.NewExitError(err.Error(), exitUsage)
	}

	filter, err := renderer.ParseFilter(ctx.String("filter"))
	if err != nil {
		return cli.NewExitError(err.Error(), exitUsage)
	}

	sceneSpec := ctx.Args().First()
	sc, err := scene.Load(sceneSpec)
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("loading scene %q: %v", sceneSpec, err), exitSceneLoad)
	}

	if bg := ctx.String("background"); bg != "" {
		color, err := parseColor(bg)
		if err != nil {
			return cli.NewExitError(err.Error(), exitUsage)
		}
		sc.SetBackground(color)
	}
	if ctx.Bool("alpha") {
		sc.SetBackgroundAlpha(0)
	}
	if cmds := ctx.String("camera"); cmds != "" {
		if err := sc.Camera.ApplyCommands(cmds); err != nil {
			return cli.NewExitError(err.Error(), exitUsage)
		}
	}

	if err := sc.BuildAcceleration(); err != nil {
		return cli.NewExitError(fmt.Sprintf("building scene %q: %v", sceneSpec, err), exitSceneLoad)
	}

	newIntegrator, err := parseIntegrator(ctx.String("integrator"), sc)
	if err != nil {
		return cli.NewExitError(err.Error(), exitUsage)
	}

	opts := renderer.Options{
		Width:         width,
		Height:        height,
		Samples:       ctx.Int("samples"),
		Threads:       ctx.Int("threads"),
		Filter:        filter,
		NewIntegrator: newIntegrator,
	}
	if err := applyRenderOptions(&opts, ctx.String("render-options")); err != nil {
		return cli.NewExitError(err.Error(), exitUsage)
	}

	output := ctx.String("output")
	sink, err := renderer.OpenSink(output, width, height, renderer.SinkParams{
		Gamma:   ctx.Float64("gamma"),
		Quality: ctx.Int("quality"),
		Alpha:   ctx.Bool("alpha"),
	})
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("opening %s: %v", output, err), exitIO)
	}

	renderCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	stats, err := renderer.Render(renderCtx, sc, opts, sink)
	if err != nil && err != renderer.ErrCancelled {
		sink.Close()
		return cli.NewExitError(fmt.Sprintf("writing %s: %v", output, err), exitIO)
	}

	if closeErr := sink.Close(); closeErr != nil {
		return cli.NewExitError(fmt.Sprintf("writing %s: %v", output, closeErr), exitIO)
	}

	if ctx.Bool("write-params") {
		if err := writeParams(output, ctx, width, height); err != nil {
			return cli.NewExitError(fmt.Sprintf("writing params: %v", err), exitIO)
		}
	}

	fmt.Print(stats.Summary())
	return nil
}

// writeParams records the render parameters in a text sidecar
func writeParams(output string, ctx *cli.Context, width, height int) error {
	var b strings.Builder
	fmt.Fprintf(&b, "scene: %s\n", ctx.Args().First())
	fmt.Fprintf(&b, "size: %dx%d\n", width, height)
	fmt.Fprintf(&b, "samples: %d\n", ctx.Int("samples"))
	fmt.Fprintf(&b, "filter: %s\n", ctx.String("filter"))
	fmt.Fprintf(&b, "integrator: %s\n", ctx.String("integrator"))
	if opts := ctx.String("render-options"); opts != "" {
		fmt.Fprintf(&b, "render-options: %s\n", opts)
	}
	return os.WriteFile(output+".params", []byte(b.String()), 0o644)
}

// parseSize parses "WxH"
func parseSize(s string) (int, int, error) {
	parts := strings.SplitN(strings.ToLower(s), "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("bad size %q, expected WxH", s)
	}
	width, err1 := strconv.Atoi(parts[0])
	height, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || width < 1 || height < 1 {
		return 0, 0, fmt.Errorf("bad size %q, expected WxH", s)
	}
	return width, height, nil
}

// parseColor parses "R,G,B" or a single gray value
func parseColor(s string) (core.Color, error) {
	parts := strings.Split(s, ",")
	switch len(parts) {
	case 1:
		v, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return core.Color{}, fmt.Errorf("bad background %q", s)
		}
		return core.Gray(v), nil
	case 3:
		var vals [3]float64
		for i, part := range parts {
			v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
			if err != nil {
				return core.Color{}, fmt.Errorf("bad background %q", s)
			}
			vals[i] = v
		}
		return core.NewColor(vals[0], vals[1], vals[2]), nil
	}
	return core.Color{}, fmt.Errorf("bad background %q", s)
}

// parseIntegrator parses "{direct,path}[,k=v...]" into a per-worker
// integrator factory
func parseIntegrator(spec string, sc *scene.Scene) (func() integrator.Integrator, error) {
	parts := strings.Split(spec, ",")
	name := parts[0]
	opts := map[string]string{}
	for _, kv := range parts[1:] {
		eq := strings.IndexByte(kv, '=')
		if eq < 0 {
			return nil, fmt.Errorf("bad integrator option %q in %q", kv, spec)
		}
		opts[kv[:eq]] = kv[eq+1:]
	}

	intOpt := func(key string, def int) (int, error) {
		if v, ok := opts[key]; ok {
			return strconv.Atoi(v)
		}
		return def, nil
	}

	switch name {
	case "direct":
		samples, err := intOpt("samples", 4)
		if err != nil {
			return nil, fmt.Errorf("bad integrator option in %q", spec)
		}
		single := opts["single"] == "true"
		return func() integrator.Integrator {
			return integrator.NewDirect(sc, samples, single)
		}, nil

	case "path":
		minLen, err := intOpt("min-len", 5)
		if err != nil {
			return nil, fmt.Errorf("bad integrator option in %q", spec)
		}
		rr := 0.5
		if v, ok := opts["rr"]; ok {
			rr, err = strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("bad integrator option in %q", spec)
			}
		}
		return func() integrator.Integrator {
			return integrator.NewPath(sc, minLen, rr)
		}, nil
	}
	return nil, fmt.Errorf("unknown integrator %q", name)
}

// applyRenderOptions folds --render-options K=V pairs into the options
func applyRenderOptions(opts *renderer.Options, spec string) error {
	if spec == "" {
		return nil
	}
	for _, kv := range strings.Split(spec, ",") {
		eq := strings.IndexByte(kv, '=')
		if eq < 0 {
			return fmt.Errorf("bad render option %q", kv)
		}
		key, value := kv[:eq], kv[eq+1:]
		switch key {
		case "seed":
			seed, err := strconv.ParseUint(value, 10, 64)
			if err != nil {
				return fmt.Errorf("bad render option %q", kv)
			}
			opts.Seed = seed
		case "tile-size":
			size, err := strconv.Atoi(value)
			if err != nil || size < 1 {
				return fmt.Errorf("bad render option %q", kv)
			}
			opts.TileSize = size
		default:
			return fmt.Errorf("unknown render option %q", key)
		}
	}
	return nil
}
