package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// PaxIndexKey returns the cache key for a serialized pax index
func (r *CacheKeyStruct) PaxIndexKey(year int, indexType string) string {
	return fmt.Sprintf("pax:index:%d:%s", year, indexType)
}

// LastUsedKey returns the cache key for a client's last calculator inputs
func (r *CacheKeyStruct) LastUsedKey(clientID string) string {
	return fmt.Sprintf("client:%s:last_used", clientID)
}

var CacheKey = NewCacheKeyStruct()
