// cmd/celplot/main.go
// Copyright(c) 2022-2025 celplot contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// celplot renders trajectories of bodies with camera-relative adaptive
// tessellation.
//
// Usage:
//
//	celplot [render] -scene scene.json [-png out.png] [-tty] [-dump] [-stats]
//	celplot gen -out orbit.msgpack.zst [-a AU] [-e ecc] [-i deg] [-period days] [-n N]
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mmp/celplot/curveplot"
	"github.com/mmp/celplot/log"
	"github.com/mmp/celplot/math"
	"github.com/mmp/celplot/renderer"
	"github.com/mmp/celplot/util"
	"github.com/mmp/celplot/viewport"

	"github.com/gdamore/tcell/v2"
	"github.com/goforj/godump"
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: celplot [render] -scene scene.json [flags]\n")
	fmt.Fprintf(os.Stderr, "       celplot gen -out file%s [flags]\n", curveplot.FileExtension)
	os.Exit(2)
}

func main() {
	args := os.Args[1:]
	cmd := "render"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "render":
		os.Exit(renderMain(args))
	case "gen":
		os.Exit(genMain(args))
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command\n", cmd)
		usage()
	}
}

func renderMain(args []string) int {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	sceneFile := fs.String("scene", "", "scene description (JSON)")
	pngFile := fs.String("png", "", "write the rendered image to this PNG file")
	tty := fs.Bool("tty", false, "draw the scene in the terminal")
	dump := fs.Bool("dump", false, "dump the vertex buffer draw calls")
	showStats := fs.Bool("stats", false, "print rendering statistics as JSON")
	logLevel := fs.String("loglevel", "info", "logging level: debug, info, warn, error")
	logDir := fs.String("logdir", "", "log file directory")
	_ = fs.Parse(args)

	lg := log.New(*logLevel, *logDir)
	defer lg.CatchAndReportCrash()
	renderer.SetLogger(lg)

	if *sceneFile == "" {
		fmt.Fprintln(os.Stderr, "must specify -scene")
		return 2
	}

	var e util.ErrorLogger
	scene := LoadScene(*sceneFile, &e)
	if e.HaveErrors() {
		e.PrintErrors(os.Stderr, lg)
		return 1
	}

	if err := loadTrajectories(scene, lg); err != nil {
		lg.Errorf("%v", err)
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	var effect viewport.Effect
	if scene.WarpMesh != "" {
		mesh, err := viewport.LoadWarpMesh(scene.WarpMesh)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		effect = viewport.NewWarpMeshEffect(mesh)
	}

	cb := renderer.GetCommandBuffer()
	defer renderer.ReturnCommandBuffer(cb)

	sr := NewSceneRenderer(scene, cb, *dump, lg)
	sr.Render(cb, effect)
	stats := sr.Stats()

	if *dump {
		godump.Dump(sr.Recorder().Draws)
	}

	if *pngFile != "" {
		pr := renderer.NewPlotRenderer()
		rs := execute(pr, cb, scene.Width, scene.Height)
		if err := pr.Save(*pngFile, scene.Width, scene.Height); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		lg.Info("wrote image", "file", *pngFile, "stats", rs)
		stats.Set("png", rs)
	}

	if *tty {
		rs, err := drawTerminal(cb)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		stats.Set("tty", rs)
	}

	if *showStats {
		b, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println(string(b))
	}
	return 0
}

// drawTerminal shows the scene in the terminal until a key is pressed.
func drawTerminal(scene *renderer.CommandBuffer) (renderer.RendererStats, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return renderer.RendererStats{}, fmt.Errorf("creating screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return renderer.RendererStats{}, fmt.Errorf("initializing screen: %w", err)
	}
	defer screen.Fini()

	var stats renderer.RendererStats
	redraw := func() {
		w, h := screen.Size()
		stats = execute(renderer.NewTerminalRenderer(screen), scene, w, h)
		screen.Show()
	}

	redraw()
	for {
		switch screen.PollEvent().(type) {
		case *tcell.EventResize:
			screen.Sync()
			redraw()
		case *tcell.EventKey:
			return stats, nil
		case nil:
			return stats, nil
		}
	}
}

func genMain(args []string) int {
	fs := flag.NewFlagSet("gen", flag.ExitOnError)
	out := fs.String("out", "", "output trajectory file")
	name := fs.String("name", "", "name stored in the trajectory file (default: from -out)")
	a := fs.Float64("a", 1, "semi-major axis (AU)")
	ecc := fs.Float64("e", 0.0167, "eccentricity")
	incl := fs.Float64("i", 0, "inclination (degrees)")
	node := fs.Float64("node", 0, "longitude of the ascending node (degrees)")
	peri := fs.Float64("peri", 0, "argument of periapsis (degrees)")
	period := fs.Float64("period", 365.25, "orbital period (days)")
	orbits := fs.Float64("orbits", 1, "number of orbits to sample")
	n := fs.Int("n", 100, "number of samples")
	_ = fs.Parse(args)

	if *out == "" {
		fmt.Fprintln(os.Stderr, "must specify -out")
		return 2
	}

	el := curveplot.OrbitalElements{
		SemiMajorAxis:  *a * curveplot.KmPerAU,
		Eccentricity:   *ecc,
		Inclination:    math.Radians(*incl),
		AscendingNode:  math.Radians(*node),
		ArgOfPeriapsis: math.Radians(*peri),
		Period:         *period,
	}
	span := *orbits * *period
	p, err := curveplot.GenerateKepler(el, 0, span, *n)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	p.Name = *name
	if p.Name == "" {
		p.Name = strings.TrimSuffix(filepath.Base(*out), curveplot.FileExtension)
	}
	if err := p.SaveFile(*out); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	fmt.Printf("%s: %d samples over %g days\n", *out, p.Len(), p.Duration())
	return 0
}
