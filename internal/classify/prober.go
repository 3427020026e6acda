package classify

import (
	"bytes"
	"image"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// DimensionProber reports the pixel dimensions of an encoded image. The
// capability may be absent (nil) or fail for unsupported formats; callers
// must treat both as "dimensions unknown" rather than as a hard error.
type DimensionProber interface {
	Probe(data []byte) (width, height int, err error)
}

// ImageConfigProber decodes dimensions from the image header without
// decoding pixel data.
type ImageConfigProber struct{}

func (ImageConfigProber) Probe(data []byte) (int, int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}
