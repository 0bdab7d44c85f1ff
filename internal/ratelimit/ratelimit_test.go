package ratelimit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllow_BurstExhaustion(t *testing.T) {
	krl := New(1, 3)
	defer krl.Stop()

	for i := 0; i < 3; i++ {
		assert.True(t, krl.Allow("client-a"), "request %d within burst", i)
	}
	assert.False(t, krl.Allow("client-a"))
}

func TestAllow_IndependentKeys(t *testing.T) {
	krl := New(1, 1)
	defer krl.Stop()

	assert.True(t, krl.Allow("client-a"))
	assert.False(t, krl.Allow("client-a"))

	// A different key has its own bucket.
	assert.True(t, krl.Allow("client-b"))
}

func TestPerMinute(t *testing.T) {
	krl := PerMinute(5, 5)
	defer krl.Stop()

	for i := 0; i < 5; i++ {
		assert.True(t, krl.Allow("client-a"))
	}
	assert.False(t, krl.Allow("client-a"))
}

func TestStop_Idempotent(t *testing.T) {
	krl := New(1, 1)
	krl.Stop()
	krl.Stop()
}
