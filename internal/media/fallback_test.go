package media

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFallbackImageDeterministic(t *testing.T) {
	a := FallbackImage("laptops", "64f000000000000000000001")
	b := FallbackImage("laptops", "64f000000000000000000001")
	assert.Equal(t, a, b)
	assert.True(t, strings.HasPrefix(a, unsplash))

	found := false
	for _, id := range fallbackPools["laptops"] {
		if strings.Contains(a, id) {
			found = true
		}
	}
	assert.True(t, found, "fallback should come from the category pool")
}

func TestFallbackImageCategoryIsCaseInsensitive(t *testing.T) {
	assert.Equal(t, FallbackImage("Phones", "x"), FallbackImage(" phones ", "x"))
}

func TestFallbackImageUnknownCategoryUsesDefaultPool(t *testing.T) {
	img := FallbackImage("kitchen", "seed")
	found := false
	for _, id := range defaultPool {
		if strings.Contains(img, id) {
			found = true
		}
	}
	assert.True(t, found)
}

func TestFallbackImageSpreadsSeeds(t *testing.T) {
	seen := map[string]bool{}
	for _, seed := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"} {
		seen[FallbackImage("laptops", seed)] = true
	}
	assert.Greater(t, len(seen), 1)
}

func TestOfferImage(t *testing.T) {
	img := OfferImage("summer-sale", 0, 0)
	assert.True(t, strings.HasPrefix(img, "https://picsum.photos/seed/"))
	assert.True(t, strings.HasSuffix(img, "/1200/400"))
	assert.Equal(t, img, OfferImage("summer-sale", 1200, 400))
	assert.NotEqual(t, img, OfferImage("winter-sale", 1200, 400))
}

func TestResolve(t *testing.T) {
	base := "https://cms.technova.test"
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"empty", "  ", ""},
		{"absolute", "https://cdn.test/a.jpg", "https://cdn.test/a.jpg"},
		{"protocol relative", "//cdn.test/a.jpg", "https://cdn.test/a.jpg"},
		{"rooted path", "/media/a.jpg", base + "/media/a.jpg"},
		{"bare path", "media/a.jpg", base + "/media/a.jpg"},
		{"data uri", "data:image/png;base64,AAA", "data:image/png;base64,AAA"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.raw, base))
		})
	}

	assert.Equal(t, "/media/a.jpg", Resolve("/media/a.jpg", ""))
	assert.Equal(t, base+"/a.jpg", Resolve("a.jpg", base+"/"))
}

func TestCascade(t *testing.T) {
	base := "https://cms.technova.test"
	assert.Equal(t, base+"/b.jpg", Cascade([]string{"", " ", "/b.jpg"}, base, "audio", "p1"))
	assert.Equal(t, FallbackImage("audio", "p1"), Cascade(nil, base, "audio", "p1"))
}
