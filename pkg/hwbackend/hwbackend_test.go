package hwbackend

import (
	"testing"

	"github.com/UOS-By-Uteam/platform-system-keymaster/pkg/tag"
	"github.com/stretchr/testify/assert"
)

func TestNone_NeverSupports(t *testing.T) {
	var b Backend = None{}
	assert.False(t, b.Supports(Request{Algorithm: tag.AlgorithmRSA, KeySize: 2048}))
	assert.Equal(t, "none", b.Name())
}

func TestStatic_SupportsExactPairsOnly(t *testing.T) {
	b := NewStatic("legacy-se", [2]uint32{uint32(tag.AlgorithmRSA), 2048}, [2]uint32{uint32(tag.AlgorithmAES), 256})

	assert.True(t, b.Supports(Request{Algorithm: tag.AlgorithmRSA, KeySize: 2048}))
	assert.True(t, b.Supports(Request{Algorithm: tag.AlgorithmAES, KeySize: 256}))
	assert.False(t, b.Supports(Request{Algorithm: tag.AlgorithmRSA, KeySize: 1024}))
	assert.False(t, b.Supports(Request{Algorithm: tag.AlgorithmEC, KeySize: 256}))
	assert.Equal(t, "legacy-se", b.Name())
}
