package cache

import (
	"testing"
	"time"
)

func TestEmbeddingKey_ModelIsPartOfKey(t *testing.T) {
	a := EmbeddingKey("text-embedding-3-small", "Alice was born in Paris.")
	b := EmbeddingKey("text-embedding-3-large", "Alice was born in Paris.")
	if a == b {
		t.Error("keys for different embedding models must differ")
	}

	if a != EmbeddingKey("text-embedding-3-small", "Alice was born in Paris.") {
		t.Error("key must be deterministic")
	}
}

func TestVectorRoundTrip(t *testing.T) {
	vec := []float32{0.25, -1.5, 0, 3.14159}

	decoded, err := DecodeVector(EncodeVector(vec))
	if err != nil {
		t.Fatal(err)
	}
	if len(decoded) != len(vec) {
		t.Fatalf("expected %d components, got %d", len(vec), len(decoded))
	}
	for i := range vec {
		if decoded[i] != vec[i] {
			t.Errorf("component %d: got %v, want %v", i, decoded[i], vec[i])
		}
	}
}

func TestDecodeVector_Corrupt(t *testing.T) {
	if _, err := DecodeVector([]byte{1, 2, 3}); err == nil {
		t.Error("expected error for truncated vector data")
	}
}

func TestLayeredCache_PromotesFromDisk(t *testing.T) {
	dir := t.TempDir()
	c := NewLayeredCache(time.Hour, dir, time.Hour)

	key := EmbeddingKey("m", "some text")
	val := EncodeVector([]float32{1, 2, 3})

	if err := c.Set(key, val, time.Hour); err != nil {
		t.Fatal(err)
	}

	// Fresh layered cache over the same directory: memory is cold, disk hits.
	c2 := NewLayeredCache(time.Hour, dir, time.Hour)
	got, found := c2.Get(key)
	if !found {
		t.Fatal("expected disk cache hit")
	}
	if string(got) != string(val) {
		t.Error("cached value mismatch")
	}
}
