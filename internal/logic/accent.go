package logic

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"math/rand"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// DefaultAccentColor is used whenever the avatar cannot be sampled.
const DefaultAccentColor = 0x3498DB

var errEmptyImage = errors.New("image has no pixels")

var accentFallbacks = promauto.NewCounter(prometheus.CounterOpts{
	Name: "rankedbot_accent_fallbacks_total",
	Help: "Avatar color samples that fell back to the default color",
})

// accentPicker samples one random pixel of an avatar.
type accentPicker struct {
	images ImageFetcher
	intn   func(n int) int
	logger *zap.SugaredLogger
}

func newAccentPicker(images ImageFetcher, intn func(n int) int, logger *zap.SugaredLogger) *accentPicker {
	if intn == nil {
		intn = rand.Intn
	}
	return &accentPicker{images: images, intn: intn, logger: logger}
}

// pick returns the RGB of a uniformly random avatar pixel, or
// DefaultAccentColor on any failure.
func (p *accentPicker) pick(ctx context.Context, avatarURL string) int {
	c, err := p.sample(ctx, avatarURL)
	if err != nil {
		accentFallbacks.Inc()
		p.logger.Warnw("failed to sample avatar color", "avatar", avatarURL, "error", err)
		return DefaultAccentColor
	}
	return c
}

func (p *accentPicker) sample(ctx context.Context, avatarURL string) (int, error) {
	if avatarURL == "" {
		return 0, errors.New("no avatar url")
	}
	if p.images == nil {
		return 0, errors.New("no image fetcher configured")
	}

	data, err := p.images.FetchImage(ctx, avatarURL)
	if err != nil {
		return 0, fmt.Errorf("fetch avatar: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return 0, fmt.Errorf("decode avatar: %w", err)
	}
	return p.samplePixel(img)
}

func (p *accentPicker) samplePixel(img image.Image) (int, error) {
	b := img.Bounds()
	if b.Empty() {
		return 0, errEmptyImage
	}

	x := b.Min.X + p.intn(b.Dx())
	y := b.Min.Y + p.intn(b.Dy())

	c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
	return int(c.R)<<16 | int(c.G)<<8 | int(c.B), nil
}
