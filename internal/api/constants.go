package api

import "strings"

// API limits and constants.
const (
	// MaxUploadSize is the default limit for image uploads (10 MiB).
	MaxUploadSize = 10 << 20

	// DefaultMediaURL is the default prefix under which images are served.
	DefaultMediaURL = "/media/"
)

// Cache-Control header values.
const (
	CacheOneWeek = "public, max-age=604800"
)

// mediaRoute returns the chi pattern serving stored images under the
// media URL. Absolute URLs (a CDN) are reduced to their path.
func mediaRoute(mediaURL string) string {
	p := mediaURL
	if i := strings.Index(p, "://"); i >= 0 {
		rest := p[i+3:]
		if j := strings.IndexByte(rest, '/'); j >= 0 {
			p = rest[j:]
		} else {
			p = "/"
		}
	}
	p = strings.Trim(p, "/")
	if p == "" {
		return "/*"
	}
	return "/" + p + "/*"
}
