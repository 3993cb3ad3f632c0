// Package imaging turns uploaded pictures into stored avatars.
package imaging

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

const defaultSize = 250

// AvatarProcessor cover-resizes an image to a fixed square and re-encodes it as PNG.
type AvatarProcessor struct {
	size int
}

func NewAvatarProcessor(size int) *AvatarProcessor {
	if size <= 0 {
		size = defaultSize
	}
	return &AvatarProcessor{size: size}
}

func (p *AvatarProcessor) Process(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode avatar: %w", err)
	}

	resized := imaging.Fill(img, p.size, p.size, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode avatar: %w", err)
	}
	return buf.Bytes(), nil
}
