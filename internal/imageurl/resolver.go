// Package imageurl resolves product image references into displayable URLs,
// applying CDN transformation parameters per display size. Resolution is
// deterministic and performs no I/O.
package imageurl

import (
	"fmt"
	"strings"
)

// Size tags the display context an image is resolved for. Each tag maps to
// a fixed width/height/quality/crop tuple.
type Size string

const (
	SizeThumbnail Size = "thumbnail"
	SizeCard      Size = "card"
	SizeDetail    Size = "detail"
	SizeGallery   Size = "gallery"
	SizeCart      Size = "cart"
	SizeLogo      Size = "logo"
)

// variant is the CDN transformation tuple for a size tag.
type variant struct {
	width   int
	height  int
	quality int
	crop    string
}

var variants = map[Size]variant{
	SizeThumbnail: {width: 150, height: 150, quality: 60, crop: "fill"},
	SizeCard:      {width: 400, height: 400, quality: 80, crop: "fill"},
	SizeDetail:    {width: 800, height: 800, quality: 85, crop: "limit"},
	SizeGallery:   {width: 1200, height: 1200, quality: 90, crop: "limit"},
	SizeCart:      {width: 100, height: 100, quality: 60, crop: "fill"},
	SizeLogo:      {width: 200, height: 200, quality: 90, crop: "fit"},
}

const (
	// Placeholder is served for missing images.
	Placeholder = "/placeholder.svg"

	cdnHost      = "res.cloudinary.com"
	uploadMarker = "/upload/"

	// uploadPrefix is the local upload path served directly by the
	// frontend static layer. Legacy records sometimes miss the leading
	// slash.
	uploadPrefix = "/uploads/"
)

// Resolver resolves image references against a backend base URL.
type Resolver struct {
	apiBase string
}

// NewResolver creates a resolver for the given backend base URL, typically
// config.Environment.ResolveAPIBase().
func NewResolver(apiBase string) *Resolver {
	return &Resolver{apiBase: apiBase}
}

// URL resolves an image reference for the given display size.
//
// CDN URLs get a transformation segment inserted after the /upload/ marker;
// absolute URLs on other hosts are opaque and returned unchanged, as are
// placeholders, SVGs, and local upload paths. Anything else is treated as a
// backend-relative path.
func (r *Resolver) URL(path string, size Size) string {
	if path == "" {
		return Placeholder
	}
	if path == Placeholder || strings.HasSuffix(path, ".svg") {
		return path
	}

	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		if strings.Contains(path, cdnHost) {
			return transformCDN(path, size)
		}
		return path
	}

	if strings.HasPrefix(path, uploadPrefix) {
		return path
	}
	if strings.HasPrefix(path, strings.TrimPrefix(uploadPrefix, "/")) {
		return "/" + path
	}

	return strings.TrimRight(r.apiBase, "/") + "/" + strings.TrimLeft(path, "/")
}

// transformCDN inserts the size's transformation segment after the /upload/
// marker. URLs without the marker are returned unchanged rather than
// guessing an insertion point.
func transformCDN(url string, size Size) string {
	v, ok := variants[size]
	if !ok {
		v = variants[SizeCard]
	}
	idx := strings.Index(url, uploadMarker)
	if idx < 0 {
		return url
	}

	params := fmt.Sprintf("w_%d,h_%d,q_%d,f_auto,c_%s", v.width, v.height, v.quality, v.crop)
	insert := idx + len(uploadMarker)
	return url[:insert] + params + "/" + url[insert:]
}
