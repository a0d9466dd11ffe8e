package vectors

import (
	"encoding/hex"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/dcrodman/blowfish/pkg/blowfish"
)

// CipherCache holds scheduled ciphers keyed by their key so that vectors
// sharing a key only pay for the key schedule once. Entries expire after the
// TTL given to NewCipherCache; zero or a negative TTL keeps them forever.
type CipherCache struct {
	cacheInstance *gocache.Cache
}

func NewCipherCache(ttl time.Duration) *CipherCache {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	return &CipherCache{cacheInstance: gocache.New(ttl, 10*time.Second)}
}

// Get returns the cipher for key, scheduling and caching it on a miss. Two
// goroutines missing on the same key both schedule it; the results are
// identical so whichever is stored last wins.
func (c *CipherCache) Get(key []byte) (*blowfish.Cipher, error) {
	id := hex.EncodeToString(key)
	if v, ok := c.cacheInstance.Get(id); ok {
		return v.(*blowfish.Cipher), nil
	}

	bf, err := blowfish.NewCipher(key)
	if err != nil {
		return nil, err
	}
	c.cacheInstance.Set(id, bf, gocache.DefaultExpiration)
	return bf, nil
}

// Len returns the number of cached ciphers, including expired ones that
// haven't been cleaned up yet.
func (c *CipherCache) Len() int {
	return c.cacheInstance.ItemCount()
}
