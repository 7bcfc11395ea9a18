package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDigest(t *testing.T) {
	d := Digest("token")
	assert.Len(t, d, 64)
	assert.Equal(t, d, Digest("token"))
	assert.NotEqual(t, d, Digest("token2"))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "ana@example.com", NormalizeEmail("  Ana@Example.COM\t"))
}
