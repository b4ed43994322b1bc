package imagegen

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sync"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

var (
	fontLarge   font.Face
	fontRegular font.Face
	fontOnce    sync.Once
	fontErr     error
)

func loadFonts() {
	fontOnce.Do(func() {
		regular, err := opentype.Parse(goregular.TTF)
		if err != nil {
			fontErr = fmt.Errorf("parse goregular: %w", err)
			return
		}
		fontRegular, err = opentype.NewFace(regular, &opentype.FaceOptions{
			Size:    36,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			fontErr = fmt.Errorf("create regular face: %w", err)
			return
		}

		bold, err := opentype.Parse(gobold.TTF)
		if err != nil {
			fontErr = fmt.Errorf("parse gobold: %w", err)
			return
		}
		fontLarge, err = opentype.NewFace(bold, &opentype.FaceOptions{
			Size:    96,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			fontErr = fmt.Errorf("create large face: %w", err)
		}
	})
}

// Band is a PM2.5 air-quality category using the Chinese HJ 633-2012
// 24-hour breakpoints.
type Band struct {
	Label string
	Upper float64 // exclusive upper bound in µg/m³
	Color color.RGBA
}

var bands = []Band{
	{Label: "Excellent", Upper: 35, Color: color.RGBA{46, 125, 50, 255}},
	{Label: "Good", Upper: 75, Color: color.RGBA{158, 157, 36, 255}},
	{Label: "Lightly polluted", Upper: 115, Color: color.RGBA{239, 108, 0, 255}},
	{Label: "Moderately polluted", Upper: 150, Color: color.RGBA{198, 40, 40, 255}},
	{Label: "Heavily polluted", Upper: 250, Color: color.RGBA{106, 27, 154, 255}},
	{Label: "Severely polluted", Upper: 0, Color: color.RGBA{78, 52, 46, 255}},
}

var noDataBand = Band{Label: "No data", Color: color.RGBA{38, 50, 56, 255}}

// PM25Band returns the category for a PM2.5 concentration. A nil value
// yields the "No data" band.
func PM25Band(pm25 *float64) Band {
	if pm25 == nil {
		return noDataBand
	}
	for _, b := range bands[:len(bands)-1] {
		if *pm25 < b.Upper {
			return b
		}
	}
	return bands[len(bands)-1]
}

// CardData contains the dynamic data for a station card.
type CardData struct {
	Station  string
	PM25Mean *float64
	Rows     int
}

// OGWidth and OGHeight are the standard Open Graph image dimensions.
const (
	OGWidth  = 1200
	OGHeight = 630
)

// GenerateStationCard renders a 1200x630 PNG tinted by the PM2.5 band.
func GenerateStationCard(data CardData) ([]byte, error) {
	loadFonts()
	if fontErr != nil {
		return nil, fmt.Errorf("load fonts: %w", fontErr)
	}

	band := PM25Band(data.PM25Mean)
	img := image.NewRGBA(image.Rect(0, 0, OGWidth, OGHeight))

	// Darken towards the bottom so the footer stays readable.
	for y := 0; y < OGHeight; y++ {
		progress := float64(y) / float64(OGHeight)
		shade := 1 - progress*progress*0.6
		c := color.RGBA{
			R: uint8(float64(band.Color.R) * shade),
			G: uint8(float64(band.Color.G) * shade),
			B: uint8(float64(band.Color.B) * shade),
			A: 255,
		}
		for x := 0; x < OGWidth; x++ {
			img.SetRGBA(x, y, c)
		}
	}

	drawTextOverlay(img, data, band)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode station card: %w", err)
	}
	return buf.Bytes(), nil
}

func drawTextOverlay(img *image.RGBA, data CardData, band Band) {
	white := color.RGBA{255, 255, 255, 255}
	lightGray := color.RGBA{220, 220, 220, 255}

	drawText(img, data.Station, 60, 140, white, fontLarge)

	value := "n/a"
	if data.PM25Mean != nil {
		value = fmt.Sprintf("%.1f µg/m³", *data.PM25Mean)
	}
	drawText(img, "Mean PM2.5: "+value, 60, 300, white, fontRegular)
	drawText(img, band.Label, 60, 360, lightGray, fontRegular)
	drawText(img, fmt.Sprintf("%d hourly records, 2013-2017", data.Rows), 60, OGHeight-90, lightGray, fontRegular)
	drawText(img, "Beijing air quality", 60, OGHeight-40, lightGray, fontRegular)
}

func drawText(img *image.RGBA, text string, x, y int, col color.Color, face font.Face) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}

// CardCache keeps rendered station cards for a limited time.
type CardCache struct {
	mu      sync.RWMutex
	entries map[string]cardEntry
	ttl     time.Duration
}

type cardEntry struct {
	data      []byte
	expiresAt time.Time
}

func NewCardCache(ttl time.Duration) *CardCache {
	return &CardCache{
		entries: make(map[string]cardEntry),
		ttl:     ttl,
	}
}

// Get returns the cached card for station if still valid.
func (c *CardCache) Get(station string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[station]
	if !ok || time.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.data, true
}

func (c *CardCache) Set(station string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[station] = cardEntry{data: data, expiresAt: time.Now().Add(c.ttl)}
}
