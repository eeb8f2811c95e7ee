package imaging_test

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/tmr232/cfgbot/pkg/utils/imaging"
)

const sampleSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="100pt" height="50pt" viewBox="0 0 100 50">` +
	`<rect width="100" height="50" fill="#ffffff"/>` +
	`<circle cx="50" cy="25" r="20" fill="#336699"/>` +
	`</svg>`

func TestParseSVGSize(t *testing.T) {
	tests := []struct {
		name    string
		svg     string
		want    imaging.Size
		wantErr bool
	}{
		{
			name: "graphviz pt lengths",
			svg:  `<svg width="216pt" height="332pt"></svg>`,
			want: imaging.Size{Width: 216, Height: 332},
		},
		{
			name: "plain numbers",
			svg:  `<svg width="640" height="480"></svg>`,
			want: imaging.Size{Width: 640, Height: 480},
		},
		{
			name: "viewBox fallback",
			svg:  `<svg viewBox="0 0 120 90"></svg>`,
			want: imaging.Size{Width: 120, Height: 90},
		},
		{
			name:    "no size at all",
			svg:     `<svg></svg>`,
			wantErr: true,
		},
		{
			name:    "not svg",
			svg:     `<html></html>`,
			wantErr: true,
		},
		{
			name:    "garbage length",
			svg:     `<svg width="wide" height="10pt"></svg>`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			size, err := imaging.ParseSVGSize([]byte(tt.svg))
			if tt.wantErr {
				gt.Error(t, err)
				return
			}
			gt.NoError(t, err)
			gt.Value(t, size).Equal(tt.want)
		})
	}
}

func TestFitSize(t *testing.T) {
	tests := []struct {
		name string
		in   imaging.Size
		want imaging.Size
	}{
		{
			name: "wide scales to max width",
			in:   imaging.Size{Width: 100, Height: 50},
			want: imaging.Size{Width: 2000, Height: 1000},
		},
		{
			name: "tall scales to max height",
			in:   imaging.Size{Width: 50, Height: 100},
			want: imaging.Size{Width: 1000, Height: 2000},
		},
		{
			name: "square",
			in:   imaging.Size{Width: 333, Height: 333},
			want: imaging.Size{Width: 2000, Height: 2000},
		},
		{
			name: "large downscales",
			in:   imaging.Size{Width: 4000, Height: 1000},
			want: imaging.Size{Width: 2000, Height: 500},
		},
		{
			name: "extreme ratio keeps at least one pixel",
			in:   imaging.Size{Width: 100000, Height: 1},
			want: imaging.Size{Width: 2000, Height: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Value(t, imaging.FitSize(tt.in, 2000)).Equal(tt.want)
		})
	}
}

func TestRasterize(t *testing.T) {
	img := gt.R1(imaging.Rasterize([]byte(sampleSVG), "a test graph")).NoError(t)

	gt.Value(t, img.Width).Equal(2000)
	gt.Value(t, img.Height).Equal(1000)
	gt.Value(t, img.Alt).Equal("a test graph")

	decoded := gt.R1(png.Decode(bytes.NewReader(img.Data))).NoError(t)
	bounds := decoded.Bounds()
	gt.Value(t, bounds.Dx()).Equal(2000)
	gt.Value(t, bounds.Dy()).Equal(1000)
}

func TestRasterize_BadSVG(t *testing.T) {
	_, err := imaging.Rasterize([]byte("not an svg"), "alt")
	gt.Error(t, err)
}
