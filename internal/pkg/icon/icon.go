// Package icon validates, normalizes and stores the site favicon.
package icon

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "golang.org/x/image/webp"
)

// Size is the edge length of normalized icons.
const Size = 256

// Store persists processed icons and returns their public URL.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// Service turns uploads into stored icons.
type Service struct {
	store    Store
	maxBytes int64
	log      *zap.Logger
}

func NewService(store Store, maxBytes int64, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, maxBytes: maxBytes, log: log}
}

// Upload validates r, normalizes it and stores it under a random name.
// ICO files are stored unchanged, everything else becomes a Size×Size PNG.
func (s *Service) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read icon: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return "", ErrTooLarge
	}

	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	mime, err := Sniff(filename, head)
	if err != nil {
		return "", err
	}

	ext := ".png"
	contentType := MimePNG
	if mime == MimeICO {
		ext = ".ico"
		contentType = MimeICO
	} else {
		data, err = Normalize(data)
		if err != nil {
			return "", err
		}
	}

	key := "favicon-" + uuid.NewString() + ext
	url, err := s.store.Put(ctx, key, data, contentType)
	if err != nil {
		return "", fmt.Errorf("store icon: %w", err)
	}
	s.log.Info("Icon stored", zap.String("key", key), zap.Int("bytes", len(data)))
	return url, nil
}

// Normalize decodes an image and encodes it as a Size×Size PNG, centred on a
// transparent canvas.
func Normalize(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, ErrUnsupportedType
	}

	var fitted image.Image = img
	if b := img.Bounds(); b.Dx() != Size || b.Dy() != Size {
		fitted = imaging.Fit(img, Size, Size, imaging.Lanczos)
	}
	canvas := imaging.New(Size, Size, color.NRGBA{})
	canvas = imaging.PasteCenter(canvas, fitted)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, canvas, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode icon: %w", err)
	}
	return buf.Bytes(), nil
}
