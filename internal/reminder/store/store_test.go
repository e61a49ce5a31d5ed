package store

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestSyncLockKey(t *testing.T) {
	a := uuid.MustParse("6f1c2a9e-0d4b-4c1e-9f7a-3b2d1e0c9a8b")
	b := uuid.MustParse("0a3e5c7d-9b1f-4e2a-8c6d-4f5e6a7b8c9d")

	assert.Equal(t, syncLockKey(a), syncLockKey(a))
	assert.NotEqual(t, syncLockKey(a), syncLockKey(b))
}
