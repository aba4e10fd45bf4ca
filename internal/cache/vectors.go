package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"time"
)

// Fingerprint returns the cache key for a piece of text.
func Fingerprint(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// GetVector retrieves a cached vector by fingerprint and model.
// The second return is false on a cache miss.
func (c *Cache) GetVector(fingerprint, model string) ([]float32, bool, error) {
	var dims int
	var blob []byte
	err := c.db.QueryRow(
		"SELECT dims, vector FROM vectors WHERE fingerprint = ? AND model = ?",
		fingerprint, model,
	).Scan(&dims, &blob)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get vector: %w", err)
	}

	vec, err := decodeVector(blob, dims)
	if err != nil {
		return nil, false, err
	}
	return vec, true, nil
}

// PutVector stores a vector, replacing any existing entry for the same key.
func (c *Cache) PutVector(fingerprint, model string, vec []float32) error {
	_, err := c.db.Exec(`
		INSERT OR REPLACE INTO vectors (fingerprint, model, dims, vector, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		fingerprint, model, len(vec), encodeVector(vec), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("put vector: %w", err)
	}
	return nil
}

func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return buf
}

func decodeVector(blob []byte, dims int) ([]float32, error) {
	if len(blob) != 4*dims {
		return nil, fmt.Errorf("vector blob is %d bytes, want %d", len(blob), 4*dims)
	}
	vec := make([]float32, dims)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[4*i:]))
	}
	return vec, nil
}
