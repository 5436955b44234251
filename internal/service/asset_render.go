package service

import (
	"bytes"
	"encoding/base64"
	"hash/fnv"
	"image"
	"image/color"
	"image/png"
	"math"
	"math/rand/v2"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	borderWidth   = 5
	captionLimit  = 50
	curveSegments = 72
	skinSpots     = 20
)

var (
	white      = color.RGBA{255, 255, 255, 255}
	boltYellow = color.RGBA{255, 255, 200, 255}
	feverRed   = color.RGBA{255, 100, 100, 255}
	skinTone   = color.RGBA{255, 220, 200, 255}
	lungBlue   = color.RGBA{100, 150, 230, 255}
	gutGreen   = color.RGBA{100, 200, 150, 255}
	brainPurpl = color.RGBA{180, 150, 220, 255}
	staffBlue  = color.RGBA{100, 150, 200, 255}
)

// iconStyle is one row of the procedural category table: the first style
// whose keywords appear in the symptom key picks the palette and icon.
type iconStyle struct {
	category string
	keywords []string
	base     color.RGBA
	icon     func(c *canvas, cx, cy int, key string)
}

var iconStyles = []iconStyle{
	{category: "pain", keywords: []string{"pain"}, base: color.RGBA{230, 120, 120, 255}, icon: drawBolt},
	{category: "fever", keywords: []string{"fever", "temperature"}, base: color.RGBA{240, 150, 100, 255}, icon: drawThermometer},
	{category: "skin", keywords: []string{"skin", "rash"}, base: color.RGBA{240, 180, 180, 255}, icon: drawSkinPatch},
	{category: "respiratory", keywords: []string{"respiratory", "breath", "cough"}, base: color.RGBA{150, 200, 230, 255}, icon: drawLungs},
	{category: "digestive", keywords: []string{"digestive", "stomach", "nausea"}, base: color.RGBA{150, 220, 170, 255}, icon: drawStomach},
	{category: "neurological", keywords: []string{"neuro", "head", "dizz"}, base: color.RGBA{180, 150, 220, 255}, icon: drawBrain},
}

var defaultStyle = iconStyle{category: "default", base: color.RGBA{120, 180, 220, 255}, icon: drawCaduceus}

func styleFor(key string) iconStyle {
	for _, style := range iconStyles {
		if containsAnyFold(key, style.keywords) {
			return style
		}
	}
	return defaultStyle
}

func containsAnyFold(s string, terms []string) bool {
	s = strings.ToLower(s)
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}

// RenderCategory reports which procedural category a symptom key falls in.
func RenderCategory(symptomKey string) string {
	return styleFor(symptomKey).category
}

// DisplayName turns a symptom key into a title-cased label.
func DisplayName(symptomKey string) string {
	name := strings.TrimSpace(strings.ReplaceAll(symptomKey, "_", " "))
	return cases.Title(language.English).String(strings.ToLower(name))
}

// RenderProcedural draws the offline illustration card for a symptom and
// returns it as a PNG data URI. It cannot fail for a positive size.
func RenderProcedural(symptomKey, caption string, width, height int) (string, error) {
	key := displayKey(symptomKey)
	style := styleFor(key)

	c := newCanvas(width, height)
	c.gradient(style.base, 0.3)
	c.rectRing(borderWidth, borderWidth, width-borderWidth, height-borderWidth, borderWidth, white)
	c.centeredText(DisplayName(key), width/2, 30, white)

	style.icon(c, width/2, height/2, key)

	if len(caption) > captionLimit {
		caption = caption[:captionLimit] + "..."
	}
	c.centeredText(caption, width/2, height-30, white)

	var buf bytes.Buffer
	if err := png.Encode(&buf, c.img); err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

type canvas struct {
	img *image.RGBA
}

func newCanvas(width, height int) *canvas {
	return &canvas{img: image.NewRGBA(image.Rect(0, 0, width, height))}
}

// gradient fills rows from base at the top to base*(1-darken) at the bottom.
func (c *canvas) gradient(base color.RGBA, darken float64) {
	b := c.img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		ratio := float64(y) / float64(b.Dy())
		shade := func(v uint8) uint8 {
			return uint8(float64(v) - float64(v)*darken*ratio)
		}
		row := color.RGBA{shade(base.R), shade(base.G), shade(base.B), 255}
		draw.Draw(c.img, image.Rect(b.Min.X, y, b.Max.X, y+1), image.NewUniform(row), image.Point{}, draw.Src)
	}
}

type pt struct{ x, y float64 }

// fill rasterizes closed paths with the nonzero rule. Paths wound in
// opposite directions cut holes, which is how outlines are drawn.
func (c *canvas) fill(col color.RGBA, paths ...[]pt) {
	b := c.img.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	for _, path := range paths {
		if len(path) < 3 {
			continue
		}
		z.MoveTo(float32(path[0].x), float32(path[0].y))
		for _, p := range path[1:] {
			z.LineTo(float32(p.x), float32(p.y))
		}
		z.ClosePath()
	}
	z.Draw(c.img, b, image.NewUniform(col), image.Point{})
}

func rectPath(x0, y0, x1, y1 float64) []pt {
	return []pt{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}}
}

func reversed(path []pt) []pt {
	out := make([]pt, len(path))
	for i, p := range path {
		out[len(path)-1-i] = p
	}
	return out
}

func ellipsePath(cx, cy, rx, ry float64) []pt {
	path := make([]pt, curveSegments)
	for i := range path {
		theta := 2 * math.Pi * float64(i) / curveSegments
		path[i] = pt{cx + rx*math.Cos(theta), cy + ry*math.Sin(theta)}
	}
	return path
}

func (c *canvas) rect(x0, y0, x1, y1 int, col color.RGBA) {
	c.fill(col, rectPath(float64(x0), float64(y0), float64(x1+1), float64(y1+1)))
}

// rectRing outlines a box, growing the stroke inward.
func (c *canvas) rectRing(x0, y0, x1, y1, width int, col color.RGBA) {
	outer := rectPath(float64(x0), float64(y0), float64(x1+1), float64(y1+1))
	inner := rectPath(float64(x0+width), float64(y0+width), float64(x1+1-width), float64(y1+1-width))
	c.fill(col, outer, reversed(inner))
}

// ellipse fills the ellipse inscribed in the box.
func (c *canvas) ellipse(x0, y0, x1, y1 int, col color.RGBA) {
	cx, cy := float64(x0+x1+1)/2, float64(y0+y1+1)/2
	rx, ry := float64(x1+1-x0)/2, float64(y1+1-y0)/2
	c.fill(col, ellipsePath(cx, cy, rx, ry))
}

// ellipseRing outlines the ellipse inscribed in the box.
func (c *canvas) ellipseRing(x0, y0, x1, y1, width int, col color.RGBA) {
	cx, cy := float64(x0+x1+1)/2, float64(y0+y1+1)/2
	rx, ry := float64(x1+1-x0)/2, float64(y1+1-y0)/2
	w := float64(width)
	c.fill(col, ellipsePath(cx, cy, rx, ry), reversed(ellipsePath(cx, cy, rx-w, ry-w)))
}

// arc strokes part of the ellipse inscribed in the box. Angles are degrees
// clockwise from three o'clock; an end before the start wraps around.
func (c *canvas) arc(x0, y0, x1, y1 int, start, end float64, width int, col color.RGBA) {
	if end < start {
		end += 360
	}
	cx, cy := float64(x0+x1+1)/2, float64(y0+y1+1)/2
	rx, ry := float64(x1+1-x0)/2, float64(y1+1-y0)/2
	w := float64(width)

	steps := int(math.Ceil((end-start)/360*curveSegments)) + 1
	outer := make([]pt, 0, steps)
	inner := make([]pt, 0, steps)
	for i := 0; i < steps; i++ {
		theta := (start + (end-start)*float64(i)/float64(steps-1)) * math.Pi / 180
		cos, sin := math.Cos(theta), math.Sin(theta)
		outer = append(outer, pt{cx + rx*cos, cy + ry*sin})
		inner = append(inner, pt{cx + (rx-w)*cos, cy + (ry-w)*sin})
	}
	c.fill(col, append(outer, reversed(inner)...))
}

func (c *canvas) centeredText(text string, cx, cy int, col color.RGBA) {
	face := basicfont.Face7x13
	d := &font.Drawer{Dst: c.img, Src: image.NewUniform(col), Face: face}
	metrics := face.Metrics()
	baseline := fixed.I(cy) + (metrics.Ascent-metrics.Descent)/2
	d.Dot = fixed.Point26_6{X: fixed.I(cx) - d.MeasureString(text)/2, Y: baseline}
	d.DrawString(text)
}

func drawBolt(c *canvas, cx, cy int, _ string) {
	x, y := float64(cx), float64(cy)
	c.fill(boltYellow, []pt{{x - 30, y + 30}, {x, y - 30}, {x + 15, y}, {x - 15, y + 60}})
}

func drawThermometer(c *canvas, cx, cy int, _ string) {
	c.rect(cx-5, cy-40, cx+5, cy+20, feverRed)
	c.ellipse(cx-15, cy+15, cx+15, cy+45, feverRed)
	c.rect(cx-2, cy-30, cx+2, cy+20, white)
}

// drawSkinPatch scatters spots on a skin-toned card. Spot placement is seeded
// from the symptom key so the same key always renders the same card.
func drawSkinPatch(c *canvas, cx, cy int, key string) {
	x0, y0, x1, y1 := cx-50, cy-40, cx+50, cy+40
	c.rect(x0, y0, x1, y1, skinTone)

	h := fnv.New64a()
	h.Write([]byte(key))
	seed := h.Sum64()
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	between := func(lo, hi int) int { return lo + rng.IntN(hi-lo+1) }

	for i := 0; i < skinSpots; i++ {
		x := between(x0+5, x1-5)
		y := between(y0+5, y1-5)
		r := between(2, 6)
		c.ellipse(x-r, y-r, x+r, y+r, feverRed)
	}
}

func drawLungs(c *canvas, cx, cy int, _ string) {
	c.ellipseRing(cx-50, cy-30, cx-10, cy+30, 3, lungBlue)
	c.ellipseRing(cx+10, cy-30, cx+50, cy+30, 3, lungBlue)
	c.rectRing(cx-5, cy-50, cx+5, cy-30, 3, lungBlue)
}

func drawStomach(c *canvas, cx, cy int, _ string) {
	c.ellipseRing(cx-30, cy-20, cx+30, cy+20, 3, gutGreen)
	for i := 0; i < 3; i++ {
		offset := 25 + i*15
		start, end := 180.0, 360.0
		if i%2 == 1 {
			start, end = 0, 180
		}
		c.arc(cx-40, cy+offset-10, cx+40, cy+offset+10, start, end, 3, gutGreen)
	}
}

func drawBrain(c *canvas, cx, cy int, _ string) {
	c.ellipseRing(cx-40, cy-30, cx+40, cy+30, 3, brainPurpl)
	for i := 0; i < 5; i++ {
		base := float64(cy - 25 + i*10)
		for x := cx - 35; x <= cx+35; x += 2 {
			y := base + 5*math.Sin(float64(x-cx)/5)
			c.fill(brainPurpl, rectPath(float64(x), math.Floor(y), float64(x+1), math.Floor(y)+1))
		}
	}
}

func drawCaduceus(c *canvas, cx, cy int, _ string) {
	c.rect(cx-1, cy-40, cx+1, cy+40, staffBlue)
	for _, direction := range []int{-1, 1} {
		for i := 0; i < 4; i++ {
			y := cy - 30 + i*20
			left, right := cx, cx+direction*15
			if left > right {
				left, right = right, left
			}

			start, end := 0.0, 180.0
			if direction < 0 {
				start, end = 180, 0
			}
			if i%2 == 1 {
				start, end = end, start
			}
			c.arc(left-10, y-10, right+10, y+10, start, end, 2, staffBlue)
		}
	}
}
