package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const responseMetaKey = "response_meta"

// responseMeta accumulates per-request facts that end up in the envelope
// meta block: when handling started and whether a cache answered.
type responseMeta struct {
	start    time.Time
	cacheHit *bool
}

// WithResponseMeta attaches a meta carrier to the request so cached
// endpoints can report hit state and timing alongside their payload.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(responseMetaKey, &responseMeta{start: time.Now()})
		c.Next()
	}
}

// SetCacheHit records whether the current response was served from cache.
func SetCacheHit(c *gin.Context, hit bool) {
	carrier(c).cacheHit = &hit
}

// ExtractMeta renders the carrier for the envelope meta block. Timing is
// measured at render time, so call it when writing the response.
func ExtractMeta(c *gin.Context) map[string]interface{} {
	if c == nil {
		return nil
	}
	stored, exists := c.Get(responseMetaKey)
	if !exists {
		return nil
	}
	meta, ok := stored.(*responseMeta)
	if !ok {
		return nil
	}
	out := map[string]interface{}{
		"processing_time_ms": time.Since(meta.start).Milliseconds(),
	}
	if meta.cacheHit != nil {
		out["cache_hit"] = *meta.cacheHit
	}
	return out
}

func carrier(c *gin.Context) *responseMeta {
	if c == nil {
		return &responseMeta{start: time.Now()}
	}
	if stored, exists := c.Get(responseMetaKey); exists {
		if meta, ok := stored.(*responseMeta); ok {
			return meta
		}
	}
	meta := &responseMeta{start: time.Now()}
	c.Set(responseMetaKey, meta)
	return meta
}
