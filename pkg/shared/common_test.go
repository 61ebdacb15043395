package shared

import (
	"sync"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
)

func TestForEveryWithBoundedGoroutines(t *testing.T) {
	values := []string{"a", "b", "c", "d", "e"}
	seen := make([]string, len(values))
	var mu sync.Mutex
	active, peak := 0, 0

	ForEveryWithBoundedGoroutines(2, values, func(i int, value string) {
		mu.Lock()
		active++
		if active > peak {
			peak = active
		}
		mu.Unlock()

		seen[i] = value

		mu.Lock()
		active--
		mu.Unlock()
	})

	assert.Equal(t, values, seen)
	assert.LessOrEqual(t, peak, 2)
}

func TestHasFlags(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("format", "text", "")
	assert.False(t, HasFlags(flags))

	assert.NoError(t, flags.Parse([]string{"--format", "json"}))
	assert.True(t, HasFlags(flags))
}
