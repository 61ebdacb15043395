package whitelist

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "src/lib/net.ts", Normalize("./src/lib/net.ts"))
	assert.Equal(t, "src/lib/net.ts", Normalize(`src\lib\net.ts`))
	assert.Equal(t, "/abs/src/net.ts", Normalize("/abs/src/../src/net.ts"))
	assert.Equal(t, "", Normalize("  "))
}

func TestIsWhitelisted(t *testing.T) {
	r := New([]string{"src/integrations/supabase/client.ts", "./scripts/sync.ts", "/opt/app/tools/probe.ts"})

	tests := []struct {
		path string
		want bool
	}{
		{"src/integrations/supabase/client.ts", true},
		{"/home/ci/app/src/integrations/supabase/client.ts", true},
		{`C:\work\app\scripts\sync.ts`, true},
		{"/opt/app/tools/probe.ts", true},
		// absolute entries only match exactly
		{"/other/opt/app/tools/probe.ts", false},
		// suffix match is on whole path segments
		{"/home/ci/app/mysrc/integrations/supabase/client.ts", false},
		{"src/integrations/supabase/client.tsx", false},
		{"src/components/Form.tsx", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, r.IsWhitelisted(tt.path))
		})
	}
}

func TestEntriesDeduplicated(t *testing.T) {
	r := New([]string{"a.ts", "./a.ts", "", "b.ts"})
	assert.Equal(t, []string{"a.ts", "b.ts"}, r.Entries())
}
