// curveplot/file.go
// Copyright(c) 2022-2025 celplot contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package curveplot

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

// FileExtension is the conventional suffix for saved plots.
const FileExtension = ".msgpack.zst"

const fileVersion = 1

var (
	ErrNoSamples       = errors.New("trajectory has no samples")
	ErrUnsortedSamples = errors.New("sample times are not strictly increasing")
)

// fileContents is the stored representation of a CurvePlot. Bounding
// radii are not stored; they are recomputed as the samples are added
// when a file is loaded.
type fileContents struct {
	Version  int      `msgpack:"version"`
	Name     string   `msgpack:"name"`
	Duration float64  `msgpack:"duration"`
	Samples  []Sample `msgpack:"samples"`
}

// Save writes the plot to an io.Writer as msgpack compressed with zstd.
func (p *CurvePlot) Save(w io.Writer) error {
	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return fmt.Errorf("failed to create zstd writer: %w", err)
	}
	defer zw.Close()

	fc := fileContents{
		Version:  fileVersion,
		Name:     p.Name,
		Duration: p.duration,
		Samples:  p.samples.Slice(),
	}
	if err := msgpack.NewEncoder(zw).Encode(fc); err != nil {
		return fmt.Errorf("failed to encode trajectory: %w", err)
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to close zstd writer: %w", err)
	}
	return nil
}

// Load reads a plot written by Save. It returns ErrNoSamples or
// ErrUnsortedSamples if the stored samples can't form a plot.
func Load(r io.Reader) (*CurvePlot, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd reader: %w", err)
	}
	defer zr.Close()

	var fc fileContents
	if err := msgpack.NewDecoder(zr).Decode(&fc); err != nil {
		return nil, fmt.Errorf("failed to decode trajectory: %w", err)
	}

	if fc.Version != fileVersion {
		return nil, fmt.Errorf("%d: unsupported trajectory file version", fc.Version)
	}
	if len(fc.Samples) == 0 {
		return nil, ErrNoSamples
	}

	p := &CurvePlot{Name: fc.Name, duration: fc.Duration}
	for i, s := range fc.Samples {
		if i > 0 && s.T <= fc.Samples[i-1].T {
			return nil, fmt.Errorf("sample %d: time %g follows %g: %w", i, s.T, fc.Samples[i-1].T, ErrUnsortedSamples)
		}
		p.AddSample(s)
	}
	return p, nil
}

func LoadFile(path string) (*CurvePlot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	p, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

func (p *CurvePlot) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := p.Save(f); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}
