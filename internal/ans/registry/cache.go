package registry

import (
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"ans/pkg/domain"
)

// resolveCache remembers bound lookups. Bindings are immutable once written,
// so a hit is never stale; misses are not stored because a name can still
// be assigned later.
type resolveCache struct {
	c *gocache.Cache
}

func newResolveCache(ttl time.Duration) *resolveCache {
	return &resolveCache{c: gocache.New(ttl, 2*ttl)}
}

func nameCacheKey(name string) string {
	return "name:" + name
}

func addressCacheKey(addr domain.Address) string {
	return "addr:" + strings.ToLower(addr.Hex())
}

func (c *resolveCache) address(name string) (domain.Address, bool) {
	if c == nil {
		return domain.Address{}, false
	}
	v, ok := c.c.Get(nameCacheKey(name))
	if !ok {
		return domain.Address{}, false
	}
	addr, ok := v.(domain.Address)
	return addr, ok
}

func (c *resolveCache) name(addr domain.Address) (string, bool) {
	if c == nil {
		return "", false
	}
	v, ok := c.c.Get(addressCacheKey(addr))
	if !ok {
		return "", false
	}
	name, ok := v.(string)
	return name, ok
}

// remember stores both directions of a binding.
func (c *resolveCache) remember(addr domain.Address, name string) {
	if c == nil || addr.IsZero() || name == "" {
		return
	}
	c.c.SetDefault(nameCacheKey(name), addr)
	c.c.SetDefault(addressCacheKey(addr), name)
}
