// Package media resolves product and offer image URLs. Everything except the
// Cloudinary uploader is a pure function of its inputs.
package media

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
)

const unsplash = "https://images.unsplash.com/"

var fallbackPools = map[string][]string{
	"laptops": {
		"photo-1496181133206-80ce9b88a853",
		"photo-1517336714731-489689fd1ca8",
		"photo-1525547719571-a2d4ac8945e2",
		"photo-1593642702821-c8da6771f0c6",
	},
	"phones": {
		"photo-1511707171634-5f897ff02aa9",
		"photo-1592750475338-74b7b21085ab",
		"photo-1598327105666-5b89351aff97",
	},
	"audio": {
		"photo-1505740420928-5e560c06d30e",
		"photo-1546435770-a3e426bf472b",
		"photo-1590658268037-6bf12165a8df",
	},
	"tv": {
		"photo-1593359677879-a4bb92f829d1",
		"photo-1567690187548-f07b1d7bf5a9",
	},
	"gaming": {
		"photo-1606144042614-b2417e99c4e3",
		"photo-1486401899868-0e435ed85128",
		"photo-1612287230202-1ff1d85d1bdf",
	},
	"wearables": {
		"photo-1523275335684-37898b6baf30",
		"photo-1579586337278-3befd40fd17a",
	},
	"cameras": {
		"photo-1516035069371-29a1b244cc32",
		"photo-1502920917128-1aa500764cbd",
	},
	"accessories": {
		"photo-1583394838336-acd977736f90",
		"photo-1625842268584-8f3296236761",
	},
}

var defaultPool = []string{
	"photo-1498049794561-7780e7231661",
	"photo-1468495244123-6c6c332eeece",
	"photo-1550009158-9ebf69173e03",
}

// FallbackImage picks a placeholder for a product without images. The same
// category and seed always give the same URL.
func FallbackImage(category, seed string) string {
	pool, ok := fallbackPools[strings.ToLower(strings.TrimSpace(category))]
	if !ok {
		pool = defaultPool
	}
	idx := hashIndex(seed, len(pool))
	return fmt.Sprintf("%s%s?auto=format&fit=crop&w=800&q=80", unsplash, pool[idx])
}

// OfferImage returns a seeded banner image for a deal or promotion.
func OfferImage(offerID string, width, height int) string {
	if width <= 0 {
		width = 1200
	}
	if height <= 0 {
		height = 400
	}
	sum := sha256.Sum256([]byte(offerID))
	return fmt.Sprintf("https://picsum.photos/seed/%s/%d/%d", hex.EncodeToString(sum[:6]), width, height)
}

func hashIndex(seed string, n int) int {
	sum := sha256.Sum256([]byte(seed))
	return int(binary.BigEndian.Uint64(sum[:8]) % uint64(n))
}

// Resolve turns a stored image reference into an absolute URL. Relative paths
// are served by the media host at baseURL.
func Resolve(raw, baseURL string) string {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return ""
	case strings.HasPrefix(raw, "//"):
		return "https:" + raw
	case strings.HasPrefix(raw, "data:"):
		return raw
	}

	if u, err := url.Parse(raw); err == nil && u.IsAbs() {
		return raw
	}
	if baseURL == "" {
		return raw
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(raw, "/")
}

// Cascade returns the first usable candidate, or a fallback for the category.
func Cascade(candidates []string, baseURL, category, seed string) string {
	for _, c := range candidates {
		if resolved := Resolve(c, baseURL); resolved != "" {
			return resolved
		}
	}
	return FallbackImage(category, seed)
}
