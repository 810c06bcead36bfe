package langdetect

import (
	"hash/fnv"
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Default memo lifetimes for a Detector.
const (
	DefaultExpiration      = 10 * time.Minute
	DefaultCleanupInterval = 30 * time.Minute
)

// Detector memoizes Detect results so re-rendering unchanged cells after an
// edit does not re-run the classifier. It is safe for concurrent use.
type Detector struct {
	cache *gocache.Cache
}

// NewDetector creates a Detector whose entries expire after expiration.
func NewDetector(expiration, cleanupInterval time.Duration) *Detector {
	return &Detector{cache: gocache.New(expiration, cleanupInterval)}
}

// Detect returns the language of content, reusing earlier results.
func (d *Detector) Detect(content []byte) string {
	key := cacheKey(content)
	if value, found := d.cache.Get(key); found {
		if lang, ok := value.(string); ok {
			return lang
		}
	}

	lang := Detect(content)
	d.cache.SetDefault(key, lang)
	return lang
}

// Len returns the number of memoized results.
func (d *Detector) Len() int {
	return d.cache.ItemCount()
}

func cacheKey(content []byte) string {
	h := fnv.New64a()
	_, _ = h.Write(content)
	return strconv.FormatUint(h.Sum64(), 16) + ":" + strconv.Itoa(len(content))
}
