package store

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/PaulSz7/crossword-generator/internal/dict"
	"github.com/PaulSz7/crossword-generator/internal/gen"
)

func TestFingerprintDistinguishesConfigs(t *testing.T) {
	base := gen.Config{Height: 10, Width: 15, Difficulty: dict.Medium, Seed: 42}

	same := base
	assert.Equal(t, fingerprint(base), fingerprint(same))

	differentSeed := base
	differentSeed.Seed = 43
	assert.NotEqual(t, fingerprint(base), fingerprint(differentSeed))

	differentSize := base
	differentSize.Width = 12
	assert.NotEqual(t, fingerprint(base), fingerprint(differentSize))

	differentTier := base
	differentTier.Difficulty = dict.Hard
	assert.NotEqual(t, fingerprint(base), fingerprint(differentTier))
}
