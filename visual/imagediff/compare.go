// Copyright (c) 2026 TTBT Enterprises LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package imagediff compares screenshots pixel by pixel.
//
// Pixel distance comes from pixelmatch: colours are compared in YIQ space
// after blending onto white, and anti-aliased edges are not counted unless
// Options.IncludeAntiAlias is set.
package imagediff

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"github.com/orisano/pixelmatch"
)

// DefaultThreshold is the per-pixel colour distance (0..1) used when
// Options.Threshold is zero.
const DefaultThreshold = 0.1

var (
	diffColor   = color.RGBA{R: 255, A: 255}
	outOfBounds = color.RGBA{R: 255, G: 0, B: 255, A: 255}
)

// Options control the comparison.
type Options struct {
	// Threshold is the colour distance, between 0 and 1, above which two
	// pixels are considered different.
	Threshold float64
	// IncludeAntiAlias counts anti-aliased pixels as differences.
	IncludeAntiAlias bool
}

// Result describes the outcome of a comparison.
type Result struct {
	DiffPixels   int
	TotalPixels  int
	SizeMismatch bool
	// Diff highlights differing pixels in red over a faded copy of the
	// expected image. Regions covered by only one image are magenta. The
	// shared region is left blank when the images are identical.
	Diff *image.RGBA
}

// Ratio returns the fraction of pixels that differ.
func (r Result) Ratio() float64 {
	if r.TotalPixels == 0 {
		return 0
	}
	return float64(r.DiffPixels) / float64(r.TotalPixels)
}

// Match reports whether the images are the same size and the ratio of
// differing pixels does not exceed maxRatio.
func (r Result) Match(maxRatio float64) bool {
	if r.SizeMismatch {
		return false
	}
	return r.Ratio() <= maxRatio
}

// Verdict classifies a difference given as a percentage.
func Verdict(pct float64) string {
	switch {
	case pct <= 0:
		return "identical"
	case pct < 5:
		return "minor_changes"
	case pct < 25:
		return "major_changes"
	default:
		return "completely_different"
	}
}

// Compare compares two images. Images of different sizes are compared over
// the union of their extents; pixels outside either image count as
// different.
func Compare(expected, actual image.Image, opts Options) Result {
	threshold := opts.Threshold
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}

	eb, ab := expected.Bounds(), actual.Bounds()
	w, h := max(eb.Dx(), ab.Dx()), max(eb.Dy(), ab.Dy())
	shared := image.Rect(0, 0, min(eb.Dx(), ab.Dx()), min(eb.Dy(), ab.Dy()))

	res := Result{
		TotalPixels:  w * h,
		SizeMismatch: eb.Dx() != ab.Dx() || eb.Dy() != ab.Dy(),
		Diff:         image.NewRGBA(image.Rect(0, 0, w, h)),
	}
	draw.Draw(res.Diff, res.Diff.Bounds(), image.NewUniform(outOfBounds), image.Point{}, draw.Src)
	res.DiffPixels = res.TotalPixels - shared.Dx()*shared.Dy()
	if shared.Empty() {
		return res
	}

	var out image.Image
	matchOpts := []pixelmatch.MatchOption{
		pixelmatch.Threshold(threshold),
		pixelmatch.DiffColor(diffColor),
		pixelmatch.WriteTo(&out),
	}
	if opts.IncludeAntiAlias {
		matchOpts = append(matchOpts, pixelmatch.IncludeAntiAlias)
	}
	// pixelmatch wants equal bounds anchored at the origin.
	n, err := pixelmatch.MatchPixel(crop(expected, shared), crop(actual, shared), matchOpts...)
	if err != nil {
		res.DiffPixels += shared.Dx() * shared.Dy()
		draw.Draw(res.Diff, shared, image.NewUniform(diffColor), image.Point{}, draw.Src)
		return res
	}
	res.DiffPixels += n
	if out != nil {
		draw.Draw(res.Diff, shared, out, image.Point{}, draw.Src)
	} else {
		draw.Draw(res.Diff, shared, image.Transparent, image.Point{}, draw.Src)
	}
	return res
}

// crop copies the part of img covered by r, given relative to img's
// origin, into an RGBA image whose bounds start at zero.
func crop(img image.Image, r image.Rectangle) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min.Add(r.Min), draw.Src)
	return out
}

// Decode decodes a PNG screenshot.
func Decode(b []byte) (image.Image, error) {
	img, err := png.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("decode png: %w", err)
	}
	return img, nil
}

// Encode encodes an image as PNG.
func Encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
