package cache

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

// VectorStore stores embedding vectors in a byte cache
type VectorStore struct {
	cache Cache
	ttl   time.Duration
}

// NewVectorStore wraps c. A zero ttl defers to the cache's own default.
func NewVectorStore(c Cache, ttl time.Duration) *VectorStore {
	return &VectorStore{cache: c, ttl: ttl}
}

// Get returns the vector stored under key
func (s *VectorStore) Get(key string) ([]float64, bool) {
	data, ok := s.cache.Get(key)
	if !ok {
		return nil, false
	}
	vec, err := decodeVector(data)
	if err != nil {
		_ = s.cache.Delete(key)
		return nil, false
	}
	return vec, true
}

// Set stores vec under key
func (s *VectorStore) Set(key string, vec []float64) error {
	return s.cache.Set(key, encodeVector(vec), s.ttl)
}

// encodeVector writes vec as little-endian float64s
func encodeVector(vec []float64) []byte {
	buf := make([]byte, 8*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return buf
}

func decodeVector(data []byte) ([]float64, error) {
	if len(data) == 0 || len(data)%8 != 0 {
		return nil, fmt.Errorf("corrupt vector: %d bytes", len(data))
	}
	vec := make([]float64, len(data)/8)
	for i := range vec {
		vec[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*8:]))
	}
	return vec, nil
}
