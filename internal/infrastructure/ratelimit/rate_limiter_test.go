package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(map[string]Policy{
		ActionSendMessage: {Every: time.Hour, Burst: 2},
		ActionGeneral:     {Every: time.Hour, Burst: 1},
	})

	ok, _ := rl.Allow("alice", ActionSendMessage)
	assert.True(t, ok)
	ok, _ = rl.Allow("alice", ActionSendMessage)
	assert.True(t, ok)

	ok, wait := rl.Allow("alice", ActionSendMessage)
	assert.False(t, ok)
	assert.Greater(t, wait, 59*time.Minute)

	ok, _ = rl.Allow("bob", ActionSendMessage)
	assert.True(t, ok, "buckets are per subject")

	ok, _ = rl.Allow("alice", "unknown_action")
	assert.True(t, ok)
	ok, _ = rl.Allow("alice", "unknown_action")
	assert.False(t, ok, "unknown actions fall back to the general policy")
}

func TestRateLimiter_Cleanup(t *testing.T) {
	rl := NewRateLimiter(nil)
	rl.Allow("alice", ActionAuth)

	rl.Cleanup(time.Hour)
	assert.Len(t, rl.buckets, 1)

	rl.Cleanup(-time.Second)
	assert.Empty(t, rl.buckets)
}
