package images

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"path"
	"slices"
	"strings"

	_ "golang.org/x/image/webp" // Register WebP decoder
)

// ErrInvalidImage is returned when a payload is not a supported raster image.
var ErrInvalidImage = errors.New("invalid image")

// MaxPixels caps width*height so a small compressed payload cannot force a
// multi-gigabyte decode.
const MaxPixels = 40_000_000

// extensions lists the filename extensions accepted for each format.
// The first entry is canonical.
var extensions = map[string][]string{
	"jpeg": {".jpg", ".jpeg"},
	"png":  {".png"},
	"gif":  {".gif"},
	"webp": {".webp"},
}

var contentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// ContentType returns the image MIME type for a stored reference, keyed
// by its extension. ok is false for anything that is not an image extension.
func ContentType(ref string) (ctype string, ok bool) {
	ctype, ok = contentTypes[strings.ToLower(path.Ext(ref))]
	return ctype, ok
}

// allowsExt reports whether ext is a valid extension for the format.
func (f Format) allowsExt(ext string) bool {
	return slices.Contains(extensions[f.Name], ext)
}

// Format describes a detected image payload.
type Format struct {
	Name   string // jpeg, png, gif, webp
	Ext    string // canonical extension including the dot
	Width  int
	Height int
}

type signature struct {
	name  string
	ext   string
	match func([]byte) bool
}

var signatures = []signature{
	{"jpeg", ".jpg", func(b []byte) bool { return bytes.HasPrefix(b, []byte{0xFF, 0xD8, 0xFF}) }},
	{"png", ".png", func(b []byte) bool { return bytes.HasPrefix(b, []byte("\x89PNG\r\n\x1a\n")) }},
	{"gif", ".gif", func(b []byte) bool {
		return bytes.HasPrefix(b, []byte("GIF87a")) || bytes.HasPrefix(b, []byte("GIF89a"))
	}},
	{"webp", ".webp", func(b []byte) bool {
		return len(b) >= 12 && bytes.Equal(b[0:4], []byte("RIFF")) && bytes.Equal(b[8:12], []byte("WEBP"))
	}},
}

// Detect checks that data is a JPEG, PNG, GIF or WebP image and returns
// the decoded image. Magic bytes are sniffed first, the header is checked
// against MaxPixels, then the whole payload is decoded so truncated or
// corrupt files are rejected. Failures wrap ErrInvalidImage.
func Detect(data []byte) (Format, image.Image, error) {
	if len(data) == 0 {
		return Format{}, nil, fmt.Errorf("%w: empty payload", ErrInvalidImage)
	}

	var sig *signature
	for i := range signatures {
		if signatures[i].match(data) {
			sig = &signatures[i]
			break
		}
	}
	if sig == nil {
		return Format{}, nil, fmt.Errorf("%w: unsupported format", ErrInvalidImage)
	}

	cfg, name, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Format{}, nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if name != sig.name {
		return Format{}, nil, fmt.Errorf("%w: header says %s, content decodes as %s", ErrInvalidImage, sig.name, name)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Format{}, nil, fmt.Errorf("%w: empty dimensions", ErrInvalidImage)
	}

	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return Format{}, nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrInvalidImage, cfg.Width, cfg.Height, MaxPixels)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Format{}, nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	return Format{Name: name, Ext: sig.ext, Width: cfg.Width, Height: cfg.Height}, img, nil
}
