// Package ogimage renders the social preview card for shared notes
// Package ogimage 渲染分享笔记的社交预览卡片
package ogimage

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"github.com/pkg/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Fixed card size expected by the social platforms
// 社交平台期望的固定卡片尺寸
const (
	Width  = 1200
	Height = 630
)

// Palette matching the product's stone color scheme
// 与产品石灰色配色一致的调色板
var (
	colorBackground = color.RGBA{R: 0xfa, G: 0xfa, B: 0xf9, A: 0xff}
	colorTitle      = color.RGBA{R: 0x1c, G: 0x19, B: 0x17, A: 0xff}
	colorPreview    = color.RGBA{R: 0x57, G: 0x53, B: 0x4e, A: 0xff}
	colorBrandText  = color.RGBA{R: 0x78, G: 0x71, B: 0x6c, A: 0xff}
	colorBrandMark  = color.RGBA{R: 0x44, G: 0x40, B: 0x3c, A: 0xff}
)

// Renderer rasterizes preview cards. Safe for concurrent use once created.
// Renderer 栅格化预览卡片，创建后可并发使用。
type Renderer struct {
	siteName  string
	tagline   string
	titleFace font.Face
	bodyFace  font.Face
	brandFace font.Face
	markFace  font.Face
	heroFace  font.Face
}

// NewRenderer parses the embedded Go fonts and prepares the type faces
// NewRenderer 解析内嵌的 Go 字体并准备字体
func NewRenderer(siteName, tagline string) (*Renderer, error) {
	bold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, errors.Wrap(err, "parse bold font failed")
	}
	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, errors.Wrap(err, "parse regular font failed")
	}

	newFace := func(f *opentype.Font, size float64) (font.Face, error) {
		return opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	}

	r := &Renderer{siteName: siteName, tagline: tagline}
	if r.titleFace, err = newFace(bold, 56); err != nil {
		return nil, errors.Wrap(err, "build title face failed")
	}
	if r.bodyFace, err = newFace(regular, 28); err != nil {
		return nil, errors.Wrap(err, "build body face failed")
	}
	if r.brandFace, err = newFace(regular, 24); err != nil {
		return nil, errors.Wrap(err, "build brand face failed")
	}
	if r.markFace, err = newFace(bold, 24); err != nil {
		return nil, errors.Wrap(err, "build mark face failed")
	}
	if r.heroFace, err = newFace(bold, 64); err != nil {
		return nil, errors.Wrap(err, "build hero face failed")
	}
	return r, nil
}

// Render draws the note card: brand row, title, preview text
// Render 绘制笔记卡片：品牌行、标题、摘要文本
func (r *Renderer) Render(title, preview string) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, Width, Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(colorBackground), image.Point{}, draw.Src)

	const marginX = 80

	// Brand row: circular mark plus site name
	// 品牌行：圆形标记加站点名
	r.drawBrandMark(img, marginX+24, 140, 24)
	r.drawText(img, r.brandFace, colorBrandText, marginX+64, 148, r.siteName)

	// Title, wrapped to at most two lines
	// 标题，最多折行两行
	y := 260
	for _, line := range wrapText(r.titleFace, title, Width-2*marginX, 2) {
		r.drawText(img, r.titleFace, colorTitle, marginX, y, line)
		y += 68
	}

	// Preview, wrapped to at most three lines with a trailing ellipsis
	// 摘要，最多折行三行，末尾加省略号
	if preview != "" {
		y += 20
		lines := wrapText(r.bodyFace, preview+"...", Width-2*marginX, 3)
		for _, line := range lines {
			r.drawText(img, r.bodyFace, colorPreview, marginX, y, line)
			y += 42
		}
	}

	return encodePNG(img)
}

// RenderDefault draws the generic branded fallback card
// RenderDefault 绘制通用的品牌回退卡片
func (r *Renderer) RenderDefault() ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, Width, Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(colorBackground), image.Point{}, draw.Src)

	r.drawBrandMark(img, Width/2, 220, 60)
	r.drawTextCentered(img, r.heroFace, colorTitle, Width/2, 360, r.siteName)
	r.drawTextCentered(img, r.bodyFace, colorBrandText, Width/2, 420, r.tagline)

	return encodePNG(img)
}

// drawBrandMark draws the filled circle with the first letter of the site name
// drawBrandMark 绘制带站点名首字母的实心圆
func (r *Renderer) drawBrandMark(img *image.RGBA, cx, cy, radius int) {
	rr := radius * radius
	for y := cy - radius; y <= cy+radius; y++ {
		for x := cx - radius; x <= cx+radius; x++ {
			dx := x - cx
			dy := y - cy
			if dx*dx+dy*dy <= rr {
				img.Set(x, y, colorBrandMark)
			}
		}
	}
	if r.siteName == "" {
		return
	}
	letter := string([]rune(r.siteName)[0])
	r.drawTextCentered(img, r.markFace, colorBackground, cx, cy+9, letter)
}

func (r *Renderer) drawText(img *image.RGBA, face font.Face, col color.Color, x, y int, text string) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

func (r *Renderer) drawTextCentered(img *image.RGBA, face font.Face, col color.Color, cx, y int, text string) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
	}
	w := d.MeasureString(text)
	d.Dot = fixed.Point26_6{X: fixed.I(cx) - w/2, Y: fixed.I(y)}
	d.DrawString(text)
}

// wrapText breaks text into at most maxLines lines fitting maxWidth pixels
// wrapText 将文本折行为最多 maxLines 行，每行不超过 maxWidth 像素
func wrapText(face font.Face, text string, maxWidth, maxLines int) []string {
	words := splitWords(text)
	if len(words) == 0 {
		return nil
	}

	d := &font.Drawer{Face: face}
	var lines []string
	current := ""

	for _, word := range words {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if d.MeasureString(candidate).Ceil() <= maxWidth {
			current = candidate
			continue
		}
		if current != "" {
			lines = append(lines, current)
			if len(lines) == maxLines {
				return lines
			}
		}
		// A single word longer than the line is cut rune by rune
		// 单词本身超过行宽时按字符截断
		current = cutToWidth(d, word, maxWidth)
	}
	if current != "" && len(lines) < maxLines {
		lines = append(lines, current)
	}
	return lines
}

func splitWords(text string) []string {
	var words []string
	current := ""
	for _, r := range text {
		if r == ' ' || r == '\n' || r == '\t' {
			if current != "" {
				words = append(words, current)
				current = ""
			}
			continue
		}
		current += string(r)
	}
	if current != "" {
		words = append(words, current)
	}
	return words
}

func cutToWidth(d *font.Drawer, word string, maxWidth int) string {
	runes := []rune(word)
	for len(runes) > 1 && d.MeasureString(string(runes)).Ceil() > maxWidth {
		runes = runes[:len(runes)-1]
	}
	return string(runes)
}

func encodePNG(img *image.RGBA) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, errors.Wrap(err, "encode png failed")
	}
	return buf.Bytes(), nil
}
