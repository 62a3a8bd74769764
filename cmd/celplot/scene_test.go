// cmd/celplot/scene_test.go
// Copyright(c) 2022-2025 celplot contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mmp/celplot/curveplot"
	"github.com/mmp/celplot/renderer"
	"github.com/mmp/celplot/util"
)

func writeFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	fn := filepath.Join(dir, name)
	if err := os.WriteFile(fn, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return fn
}

func TestLoadSceneDefaults(t *testing.T) {
	dir := t.TempDir()
	fn := writeFile(t, dir, "scene.json", `{
  "camera": { "position": [0, 0, 3e8], "look_at": [0, 0, 0], "up": [0, 1, 0] },
  "trajectories": [ { "file": "earth.msgpack.zst", "color": "#3080ff", "start": 0, "end": 100 } ]
}`)

	var e util.ErrorLogger
	s := LoadScene(fn, &e)
	if e.HaveErrors() {
		t.Fatalf("unexpected errors: %s", e.String())
	}

	if s.Width != defaultWidth || s.Height != defaultHeight || s.Camera.FOV != defaultFOV {
		t.Errorf("defaults not applied: %dx%d fov %f", s.Width, s.Height, s.Camera.FOV)
	}
	if s.Camera.Aspect != float64(defaultWidth)/defaultHeight {
		t.Errorf("aspect %f", s.Camera.Aspect)
	}
	if s.SubdivisionThreshold != defaultThresholdPixels*s.PixelSize() {
		t.Errorf("threshold %g", s.SubdivisionThreshold)
	}
	if s.background != (renderer.RGBA{A: 1}) || s.LineWidth != 1 {
		t.Errorf("background %v line width %f", s.background, s.LineWidth)
	}

	tr := s.Trajectories[0]
	if tr.File != filepath.Join(dir, "earth.msgpack.zst") {
		t.Errorf("file %q not relative to scene", tr.File)
	}
	if tr.color != renderer.RGBAFromHex(0x3080ff) {
		t.Errorf("color %v", tr.color)
	}
	if !tr.Ranged() {
		t.Errorf("expected ranged trajectory")
	}
}

func TestLoadSceneErrors(t *testing.T) {
	dir := t.TempDir()
	fn := writeFile(t, dir, "bad.json", `{
  "camera": { "position": [1, 2, 3], "look_at": [1, 2, 3], "fov": 200, "fov": 190 },
  "trajectories": [ { "color": "red", "start": 10, "end": 5, "fade_start": 0 } ],
  "bodies": [ { "name": "earth", "semi_axes": [1, 0, 1] } ]
}`)

	var e util.ErrorLogger
	LoadScene(fn, &e)
	errs := e.String()
	for _, expected := range []string{
		`camera: "fov": repeated key`,
		"fov must be between 0 and 180",
		"position and look_at must differ",
		"trajectory 0: no file specified",
		`"red": expected color`,
		"start 10 must be before end 5",
		"fade_start and fade_end must be given together",
		"earth: [1 0 1]: semi_axes must be positive",
		"earth: target must differ",
	} {
		if !strings.Contains(errs, expected) {
			t.Errorf("expected error containing %q in:\n%s", expected, errs)
		}
	}
	if e.CurrentDepth() != 0 {
		t.Errorf("unbalanced Push/Pop")
	}

	var e2 util.ErrorLogger
	if s := LoadScene(writeFile(t, dir, "syntax.json", "{\n  \"width\": 10,\n}"), &e2); s != nil || !e2.HaveErrors() {
		t.Errorf("expected syntax error")
	}
}

func TestRenderScene(t *testing.T) {
	dir := t.TempDir()
	el := curveplot.OrbitalElements{SemiMajorAxis: curveplot.KmPerAU, Eccentricity: 0.0167, Period: 365.25}
	p, err := curveplot.GenerateKepler(el, 0, 365.25, 100)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.SaveFile(filepath.Join(dir, "earth"+curveplot.FileExtension)); err != nil {
		t.Fatal(err)
	}

	fn := writeFile(t, dir, "scene.json", `{
  "width": 200, "height": 200,
  "camera": { "position": [0, 0, 5e8], "look_at": [0, 0, 0], "up": [0, 1, 0] },
  "trajectories": [
    { "file": "earth.msgpack.zst" },
    { "file": "earth.msgpack.zst", "color": "#ff0000", "start": 10, "end": 100, "fade_start": 10, "fade_end": 100 }
  ],
  "bodies": [ { "name": "earth", "position": [1.496e8, 0, 0], "semi_axes": [6378, 6378, 6357],
                "target": [0, 0, 0] } ]
}`)
	var e util.ErrorLogger
	s := LoadScene(fn, &e)
	if e.HaveErrors() {
		t.Fatalf("unexpected errors: %s", e.String())
	}
	if err := loadTrajectories(s, nil); err != nil {
		t.Fatal(err)
	}

	cb := renderer.GetCommandBuffer()
	defer renderer.ReturnCommandBuffer(cb)
	sr := NewSceneRenderer(s, cb, true, nil)
	sr.Render(cb, nil)

	if n := len(sr.Recorder().Draws); n < 2 {
		t.Errorf("expected at least one draw per trajectory, got %d", n)
	}

	pr := renderer.NewPlotRenderer()
	rs := execute(pr, cb, s.Width, s.Height)
	if rs.Strips != len(sr.Recorder().Draws) || pr.Lines() == 0 {
		t.Errorf("executed %d strips for %d draws, %d lines", rs.Strips, len(sr.Recorder().Draws), pr.Lines())
	}

	ts, ok := sr.Stats().Get("trajectories")
	if !ok || len(ts.([]any)) != 2 {
		t.Errorf("missing trajectory statistics")
	}
	if _, ok := sr.Stats().Get("bodies"); !ok {
		t.Errorf("missing body statistics")
	}
}
