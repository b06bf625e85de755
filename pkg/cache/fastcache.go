// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cache

import (
	"encoding/binary"
	"time"

	"github.com/VictoriaMetrics/fastcache"
	"github.com/pkg/errors"
)

// fastcache splits capacity over 512 buckets and stores a big value as 64KB
// chunks spread across them. Each bucket must hold several chunks or the
// chunks of one value evict each other. Memory is allocated as chunks are used.
const defaultMaxBytes = 512 * 1024 * 1024

// FastCacheConfig holds fastcache configuration
type FastCacheConfig struct {
	Dir      string        // entries survive restarts when set
	TTL      time.Duration // entries older than TTL are ignored, 0 keeps them forever
	MaxBytes int           // default 512MB
}

// FastCache is a local byte cache built on VictoriaMetrics fastcache.
// Values may be larger than 64KB. Every entry carries its write time so
// expiry also applies to entries loaded from disk.
type FastCache struct {
	cache *fastcache.Cache
	conf  FastCacheConfig
	now   func() time.Time
}

// NewFastCache creates a new FastCache instance, loading Dir when it holds
// a previously saved cache.
func NewFastCache(conf FastCacheConfig) *FastCache {
	maxBytes := conf.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}

	var c *fastcache.Cache
	if conf.Dir != "" {
		c = fastcache.LoadFromFileOrNew(conf.Dir, maxBytes)
	} else {
		c = fastcache.New(maxBytes)
	}
	return &FastCache{cache: c, conf: conf, now: time.Now}
}

const stampSize = 8

// Get returns the value for key unless it is missing or expired.
func (fc *FastCache) Get(key string) ([]byte, bool) {
	v := fc.cache.GetBig(nil, []byte(key))
	if len(v) < stampSize {
		return nil, false
	}
	written := time.Unix(0, int64(binary.BigEndian.Uint64(v[:stampSize])))
	if fc.conf.TTL > 0 && fc.now().Sub(written) > fc.conf.TTL {
		return nil, false
	}
	return v[stampSize:], true
}

// Set stores value under key, stamped with the current time.
func (fc *FastCache) Set(key string, value []byte) {
	buf := make([]byte, stampSize+len(value))
	binary.BigEndian.PutUint64(buf, uint64(fc.now().UnixNano()))
	copy(buf[stampSize:], value)
	fc.cache.SetBig([]byte(key), buf)
}

func (fc *FastCache) Del(key string) {
	fc.cache.Del([]byte(key))
}

// Save writes the cache to Dir. It is a no-op for memory-only caches.
func (fc *FastCache) Save() error {
	if fc.conf.Dir == "" {
		return nil
	}
	return errors.Wrapf(fc.cache.SaveToFile(fc.conf.Dir), "save cache to %s", fc.conf.Dir)
}

// Reset removes all entries.
func (fc *FastCache) Reset() {
	fc.cache.Reset()
}
