package imaging

import (
	"bytes"
	"encoding/xml"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/tmr232/cfgbot/pkg/domain/model"
)

// Size is a pixel size of an image.
type Size struct {
	Width  int
	Height int
}

// parseSVGLength parses an SVG length attribute. Graphviz emits
// lengths in points ("216pt").
func parseSVGLength(value string) (int, error) {
	trimmed := strings.TrimSuffix(strings.TrimSuffix(value, "pt"), "px")
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, goerr.Wrap(err, "invalid svg length", goerr.V("value", value))
	}
	return int(math.Round(f)), nil
}

// ParseSVGSize reads the declared size off the root svg element,
// falling back to the viewBox when width/height are absent.
func ParseSVGSize(svg []byte) (Size, error) {
	decoder := xml.NewDecoder(bytes.NewReader(svg))
	for {
		token, err := decoder.Token()
		if err != nil {
			return Size{}, goerr.Wrap(err, "no svg root element found")
		}
		start, ok := token.(xml.StartElement)
		if !ok || start.Name.Local != "svg" {
			continue
		}

		var width, height int
		var viewBox string
		for _, attr := range start.Attr {
			switch attr.Name.Local {
			case "width":
				if width, err = parseSVGLength(attr.Value); err != nil {
					return Size{}, err
				}
			case "height":
				if height, err = parseSVGLength(attr.Value); err != nil {
					return Size{}, err
				}
			case "viewBox":
				viewBox = attr.Value
			}
		}

		if width > 0 && height > 0 {
			return Size{Width: width, Height: height}, nil
		}
		if viewBox != "" {
			return parseViewBox(viewBox)
		}
		return Size{}, goerr.New("svg element has no width/height or viewBox")
	}
}

func parseViewBox(viewBox string) (Size, error) {
	fields := strings.Fields(strings.ReplaceAll(viewBox, ",", " "))
	if len(fields) != 4 {
		return Size{}, goerr.New("malformed viewBox", goerr.V("viewBox", viewBox))
	}
	w, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return Size{}, goerr.Wrap(err, "malformed viewBox width")
	}
	h, err := strconv.ParseFloat(fields[3], 64)
	if err != nil {
		return Size{}, goerr.Wrap(err, "malformed viewBox height")
	}
	return Size{Width: int(math.Round(w)), Height: int(math.Round(h))}, nil
}

// FitSize scales a size so its longer side equals maxDim, preserving
// aspect ratio. The shorter side never rounds below 1.
func FitSize(size Size, maxDim int) Size {
	if size.Width <= 0 || size.Height <= 0 {
		return Size{Width: maxDim, Height: maxDim}
	}

	longer := size.Width
	if size.Height > longer {
		longer = size.Height
	}

	scale := float64(maxDim) / float64(longer)
	scaled := Size{
		Width:  int(math.Round(float64(size.Width) * scale)),
		Height: int(math.Round(float64(size.Height) * scale)),
	}
	if scaled.Width < 1 {
		scaled.Width = 1
	}
	if scaled.Height < 1 {
		scaled.Height = 1
	}
	return scaled
}

// Rasterize converts an SVG into an upload-ready PNG, scaled so the
// longer side is model.MaxImageDim.
func Rasterize(svg []byte, alt string) (*model.Image, error) {
	size, err := ParseSVGSize(svg)
	if err != nil {
		return nil, err
	}
	target := FitSize(size, model.MaxImageDim)

	icon, err := oksvg.ReadIconStream(bytes.NewReader(svg))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse svg")
	}
	icon.SetTarget(0, 0, float64(target.Width), float64(target.Height))

	img := image.NewRGBA(image.Rect(0, 0, target.Width, target.Height))
	// Graph backgrounds are transparent; the platforms show dark UI
	// behind transparent PNGs, so flatten onto white first.
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(target.Width, target.Height, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(target.Width, target.Height, scanner), 1.0)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, goerr.Wrap(err, "failed to encode png")
	}

	return &model.Image{
		Data:   buf.Bytes(),
		Width:  target.Width,
		Height: target.Height,
		Alt:    alt,
	}, nil
}
