package rotation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseProfileSet(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want ProfileSet
	}{
		{"empty input yields default", "", ProfileSet{"default"}},
		{"single profile", "work", ProfileSet{"work"}},
		{"multiple profiles keep order", "work,personal", ProfileSet{"work", "personal"}},
		{"duplicates dropped, first wins", "a,b,a,c,b", ProfileSet{"a", "b", "c"}},
		{"empty elements dropped", ",a,,b,", ProfileSet{"a", "b"}},
		{"only commas yields default", ",,,", ProfileSet{"default"}},
		{"whitespace kept verbatim", "a, b", ProfileSet{"a", " b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseProfileSet(tt.raw))
		})
	}
}

func TestProfileSetString(t *testing.T) {
	assert.Equal(t, "a,b", ProfileSet{"a", "b"}.String())
	assert.Equal(t, "default", ProfileSet{"default"}.String())
}
