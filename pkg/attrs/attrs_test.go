package attrs

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractString(t *testing.T) {
	list := []any{"owner", "abc", 7, "skipped", "amount", uint64(5), "dangling"}

	assert.Equal(t, "abc", ExtractString(list, "owner"))
	assert.Empty(t, ExtractString(list, "amount"), "non-string value")
	assert.Empty(t, ExtractString(list, "dangling"), "key without value")
	assert.Empty(t, ExtractString(nil, "owner"))
}

func TestExtractUint64(t *testing.T) {
	cases := map[string]struct {
		value any
		want  uint64
	}{
		"uint64 max":     {uint64(math.MaxUint64), math.MaxUint64},
		"uint":           {uint(9), 9},
		"positive int":   {42, 42},
		"negative int":   {-1, 0},
		"negative int64": {int64(-3), 0},
		"string":         {"10", 0},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExtractUint64([]any{"amount", tc.value}, "amount"))
		})
	}
}
