package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLineAt(t *testing.T) {
	src := []byte("first\r\nsecond line\nthird")

	assert.Equal(t, "first", LineAt(src, 0))
	assert.Equal(t, "first", LineAt(src, 3))
	assert.Equal(t, "second line", LineAt(src, 7))
	assert.Equal(t, "second line", LineAt(src, 14))
	assert.Equal(t, "third", LineAt(src, len(src)))
	assert.Equal(t, "first", LineAt(src, -4))
	assert.Equal(t, "", LineAt(nil, 0))
}

func TestHasAllowExternal(t *testing.T) {
	tests := []struct {
		line string
		host string
		want bool
	}{
		{`fetch("https://a.io"); // allow-external:a.io`, "a.io", true},
		{`fetch(x); /* allow-external:A.io */`, "a.io", true},
		{`// allow-external:b.io allow-external:a.io`, "a.io", true},
		{`// allow-external:a.io.evil`, "a.io", false},
		{`// allow-external:sub.a.io`, "a.io", false},
		{`// allow-external: a.io`, "a.io", false},
		{`// allow-external:`, "a.io", false},
		{`// nothing here`, "a.io", false},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, HasAllowExternal(tt.line, tt.host))
		})
	}
}

func TestHasAllowDynamic(t *testing.T) {
	assert.True(t, HasAllowDynamic([]byte("x\n// allow-dynamic-url\n")))
	assert.False(t, HasAllowDynamic([]byte("// allow-dynamic")))
}
