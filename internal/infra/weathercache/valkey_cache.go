package weathercache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/moodfit/internal/domain/weather"
)

// ValkeyCache shares weather reports through a Valkey-compatible database.
type ValkeyCache struct {
	client valkey.Client
	prefix string
}

func NewValkeyCache(client valkey.Client, prefix string) *ValkeyCache {
	if prefix == "" {
		prefix = "weather"
	}
	return &ValkeyCache{client: client, prefix: prefix}
}

func (c *ValkeyCache) Get(ctx context.Context, key string) (weather.Report, bool, error) {
	cmd := c.client.B().Get().Key(c.entryKey(key)).Build()
	payload, err := c.client.Do(ctx, cmd).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return weather.Report{}, false, nil
		}
		return weather.Report{}, false, err
	}
	var report weather.Report
	if err := json.Unmarshal([]byte(payload), &report); err != nil {
		return weather.Report{}, false, err
	}
	return report, true, nil
}

func (c *ValkeyCache) Save(ctx context.Context, key string, report weather.Report, ttl time.Duration) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return err
	}
	builder := c.client.B().Set().Key(c.entryKey(key)).Value(string(payload))
	var cmd valkey.Completed
	if ttl > 0 {
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return c.client.Do(ctx, cmd).Error()
}

func (c *ValkeyCache) entryKey(key string) string {
	return c.prefix + ":report:" + key
}

var _ weather.Cache = (*ValkeyCache)(nil)
