package cache

import (
	"context"
	"crypto/sha256"
	"crypto/tls"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/ToneGuard/ToneGuard/pkg/common"
	"github.com/ToneGuard/ToneGuard/pkg/domain/analysis"
)

const (
	ModerationKeyPattern = "moderation:%s"
	RephraseKeyPattern   = "rephrase:%s"

	ModerationTTLName = "moderation"
	RephraseTTLName   = "rephrase"
)

// Cache memoizes upstream results. Lookups hit the local TTL maps first and
// fall through to Redis when one is configured; a nil Redis client degrades
// to local-only memoization.
type Cache struct {
	client  *redis.Client
	ttlMaps sync.Map
}

func NewCache(config common.CacheConfig) (*Cache, error) {
	var client *redis.Client
	if config.Host != "" {
		options := &redis.Options{
			Addr:     fmt.Sprintf("%s:%d", config.Host, config.Port),
			Password: config.Password,
			DB:       config.DB,
		}
		if config.TLS {
			options.TLSConfig = &tls.Config{
				InsecureSkipVerify: true, // #nosec G402
			}
		}
		client = redis.NewClient(options)
	}

	return &Cache{client: client}, nil
}

// NewCacheWithClient builds a Cache around an existing Redis client. Used in
// tests with redismock.
func NewCacheWithClient(client *redis.Client) *Cache {
	return &Cache{client: client}
}

func (c *Cache) CreateTTLMap(name string, ttl time.Duration) *common.TTLMap {
	ttlMap := common.NewTTLMap(ttl)
	c.ttlMaps.Store(name, ttlMap)
	return ttlMap
}

func (c *Cache) GetTTLMap(name string) *common.TTLMap {
	if value, ok := c.ttlMaps.Load(name); ok {
		ttlMap, ok := value.(*common.TTLMap)
		if !ok {
			return nil
		}
		return ttlMap
	}
	return nil
}

// ResultKey digests the input text together with a credential fingerprint so
// memoized entries are scoped to the key that produced them.
func ResultKey(text, credential string) string {
	sum := sha256.Sum256([]byte(credential + "\x00" + text))
	return hex.EncodeToString(sum[:])
}

func (c *Cache) GetModerationResult(ctx context.Context, key string) (*analysis.ModerationResult, bool) {
	if m := c.GetTTLMap(ModerationTTLName); m != nil {
		if v, ok := m.Get(key); ok {
			if result, ok := v.(*analysis.ModerationResult); ok {
				return result, true
			}
		}
	}
	if c.client == nil {
		return nil, false
	}
	res, err := c.client.Get(ctx, fmt.Sprintf(ModerationKeyPattern, key)).Result()
	if err != nil {
		return nil, false
	}
	result := new(analysis.ModerationResult)
	if err := json.Unmarshal([]byte(res), result); err != nil {
		return nil, false
	}
	if m := c.GetTTLMap(ModerationTTLName); m != nil {
		m.Set(key, result)
	}
	return result, true
}

func (c *Cache) SaveModerationResult(ctx context.Context, key string, result *analysis.ModerationResult) error {
	if m := c.GetTTLMap(ModerationTTLName); m != nil {
		m.Set(key, result)
	}
	if c.client == nil {
		return nil
	}
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, fmt.Sprintf(ModerationKeyPattern, key), string(data), common.ModerationCacheTTL).Err()
}

func (c *Cache) GetRephraseResult(ctx context.Context, key string) (*analysis.RephraseResult, bool) {
	if m := c.GetTTLMap(RephraseTTLName); m != nil {
		if v, ok := m.Get(key); ok {
			if result, ok := v.(*analysis.RephraseResult); ok {
				return result, true
			}
		}
	}
	if c.client == nil {
		return nil, false
	}
	res, err := c.client.Get(ctx, fmt.Sprintf(RephraseKeyPattern, key)).Result()
	if err != nil {
		return nil, false
	}
	result := new(analysis.RephraseResult)
	if err := json.Unmarshal([]byte(res), result); err != nil {
		return nil, false
	}
	if m := c.GetTTLMap(RephraseTTLName); m != nil {
		m.Set(key, result)
	}
	return result, true
}

func (c *Cache) SaveRephraseResult(ctx context.Context, key string, result *analysis.RephraseResult) error {
	if m := c.GetTTLMap(RephraseTTLName); m != nil {
		m.Set(key, result)
	}
	if c.client == nil {
		return nil
	}
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, fmt.Sprintf(RephraseKeyPattern, key), string(data), common.RephraseCacheTTL).Err()
}

func (c *Cache) Client() *redis.Client {
	return c.client
}
