package drawing

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"sort"
	"strings"

	"golang.org/x/image/colornames"
)

const (
	maxImageBytes = 4 << 20
	// maxSide caps either image dimension before pixels are allocated.
	maxSide    = 4096
	maxSamples = 250_000
	// maxDistance bounds the RGB distance between a pixel and its swatch.
	maxDistance = 110
	// minShare is the fraction of painted pixels a color needs to count as used.
	minShare = 0.01
	// whiteFloor marks background: every channel at or above it.
	whiteFloor = 235
)

var (
	ErrNotDataURL    = errors.New("drawing: image must be a data:image/png or data:image/jpeg URL")
	ErrImageTooLarge = errors.New("drawing: image is too large")
)

type swatch struct {
	name string
	rgb  color.RGBA
}

// basePalette groups the CSS colors a child's crayon is likely to hit under
// the plain color word they belong to.
var basePalette = map[string][]string{
	"red":    {"red", "crimson", "firebrick", "tomato"},
	"orange": {"orange", "darkorange", "coral"},
	"yellow": {"yellow", "gold", "khaki"},
	"green":  {"green", "lime", "limegreen", "forestgreen", "seagreen"},
	"blue":   {"blue", "royalblue", "dodgerblue", "deepskyblue", "navy"},
	"purple": {"purple", "blueviolet", "darkviolet", "mediumpurple"},
	"pink":   {"pink", "hotpink", "deeppink", "violet"},
	"brown":  {"brown", "saddlebrown", "sienna", "chocolate"},
	"black":  {"black", "dimgray"},
	"gray":   {"gray", "silver", "darkgray"},
}

// Palette classifies pixels into color words.
type Palette struct {
	swatches []swatch
}

// NewPalette builds the base palette plus any extra CSS color names, which
// stand for themselves.
func NewPalette(extra ...string) *Palette {
	p := &Palette{}
	names := make([]string, 0, len(basePalette))
	for name := range basePalette {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, css := range basePalette[name] {
			p.swatches = append(p.swatches, swatch{name: name, rgb: colornames.Map[css]})
		}
	}
	for _, css := range extra {
		css = strings.ToLower(css)
		if _, ok := basePalette[css]; ok {
			continue
		}
		if rgb, ok := colornames.Map[css]; ok {
			p.swatches = append(p.swatches, swatch{name: css, rgb: rgb})
		}
	}
	return p
}

// Classify returns the color word nearest to c, or "" when nothing is close enough.
func (p *Palette) Classify(c color.RGBA) string {
	best, bestDist := "", maxDistance*maxDistance+1
	for _, s := range p.swatches {
		dr := int(c.R) - int(s.rgb.R)
		dg := int(c.G) - int(s.rgb.G)
		db := int(c.B) - int(s.rgb.B)
		if d := dr*dr + dg*dg + db*db; d < bestDist {
			best, bestDist = s.name, d
		}
	}
	return best
}

// Usage reports the share of painted pixels per color word, ignoring
// transparent and near-white background.
func (p *Palette) Usage(img image.Image) map[string]float64 {
	b := img.Bounds()
	step := 1
	for (b.Dx()/step)*(b.Dy()/step) > maxSamples {
		step++
	}

	counts := map[string]int{}
	painted := 0
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if c.A < 128 || (c.R >= whiteFloor && c.G >= whiteFloor && c.B >= whiteFloor) {
				continue
			}
			painted++
			if name := p.Classify(color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}); name != "" {
				counts[name]++
			}
		}
	}
	out := make(map[string]float64, len(counts))
	if painted == 0 {
		return out
	}
	for name, n := range counts {
		out[name] = float64(n) / float64(painted)
	}
	return out
}

// UsedColors returns the sorted color words covering at least 1% of the painting.
func (p *Palette) UsedColors(img image.Image) []string {
	var out []string
	for name, share := range p.Usage(img) {
		if share >= minShare {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// DecodeDataURL decodes a base64 PNG or JPEG data URL.
func DecodeDataURL(s string) (image.Image, error) {
	meta, payload, ok := strings.Cut(strings.TrimSpace(s), ",")
	if !ok {
		return nil, ErrNotDataURL
	}
	switch meta {
	case "data:image/png;base64", "data:image/jpeg;base64", "data:image/jpg;base64":
	default:
		return nil, ErrNotDataURL
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > maxImageBytes {
		return nil, ErrImageTooLarge
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("drawing: bad base64: %w", err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("drawing: decode image: %w", err)
	}
	if cfg.Width > maxSide || cfg.Height > maxSide {
		return nil, ErrImageTooLarge
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("drawing: decode image: %w", err)
	}
	return img, nil
}
