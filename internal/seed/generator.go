// Package seed generates sample wallpaper images for local development and
// load testing.
package seed

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/syntrixbase/wallpaper/pkg/model"
)

// DefaultBaseURL is the host generated image URLs point at.
const DefaultBaseURL = "https://res.cloudinary.com/wallpaper/image/upload"

// Common wallpaper resolutions.
var resolutions = [][2]int{
	{1280, 720},
	{1920, 1080},
	{2560, 1440},
	{3440, 1440},
	{3840, 2160},
	{1080, 1920},
	{1170, 2532},
}

var formats = []string{"jpg", "png", "webp"}

// ImageGenerator generates random images.
type ImageGenerator struct {
	baseURL string
	// createdAt of generated images is spread over [now-spread, now]
	spread time.Duration
	now    func() time.Time
}

// NewImageGenerator creates a generator. spread must not be negative.
func NewImageGenerator(baseURL string, spread time.Duration) (*ImageGenerator, error) {
	if spread < 0 {
		return nil, fmt.Errorf("invalid spread: %s", spread)
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &ImageGenerator{baseURL: baseURL, spread: spread, now: time.Now}, nil
}

// Generate creates a random image. ID is left zero so the store assigns it.
func (g *ImageGenerator) Generate() *model.Image {
	res := resolutions[randomInt(len(resolutions))]
	format := formats[randomInt(len(formats))]
	publicID := "wallpaper/" + generateRandomString(20)

	created := g.now().UTC()
	if g.spread > 0 {
		created = created.Add(-time.Duration(randomInt64(int64(g.spread))))
	}
	created = created.Truncate(time.Millisecond)

	// Roughly 0.5 to 4 bytes per pixel depending on format.
	pixels := int64(res[0] * res[1])
	bytes := pixels/2 + randomInt64(pixels*3)

	return &model.Image{
		URL:       fmt.Sprintf("%s/%s.%s", g.baseURL, publicID, format),
		PublicID:  publicID,
		Width:     res[0],
		Height:    res[1],
		Format:    format,
		Bytes:     bytes,
		CreatedAt: created,
		UpdatedAt: created,
	}
}

// GenerateBatch generates count images.
func (g *ImageGenerator) GenerateBatch(count int) []*model.Image {
	images := make([]*model.Image, count)
	for i := range images {
		images[i] = g.Generate()
	}
	return images
}

func randomInt(n int) int {
	return int(randomInt64(int64(n)))
}

func randomInt64(n int64) int64 {
	if n <= 0 {
		return 0
	}
	v, _ := rand.Int(rand.Reader, big.NewInt(n))
	return v.Int64()
}

// generateRandomString generates a random lowercase alphanumeric string of the given length.
func generateRandomString(length int) string {
	if length <= 0 {
		return ""
	}

	const charset = "abcdefghijklmnopqrstuvwxyz0123456789"
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[randomInt(len(charset))]
	}
	return string(b)
}
