package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodexNeedsSettle(t *testing.T) {
	cases := []struct {
		name string
		kind string
		out  string
		want bool
	}{
		{"not codex", "shell", `{"type":"thread.started"}{"type":"turn.started"}`, false},
		{"missing thread marker", codexKind, `{"type":"turn.started"}`, false},
		{"missing turn marker", codexKind, `{"type":"thread.started"}`, false},
		{"needs settle", codexKind, `{"type":"thread.started"}{"type":"turn.started"}`, true},
		{"already terminal", codexKind, `{"type":"thread.started"}{"type":"turn.started"}{"type":"turn.completed"}`, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, codexNeedsSettle(tc.kind, tc.out))
		})
	}
}

func TestCodexHasTerminalMarker(t *testing.T) {
	assert.True(t, codexHasTerminalMarker(`{"type":"turn.completed"}`))
	assert.True(t, codexHasTerminalMarker(`{"type":"error","message":"boom"}`))
	assert.False(t, codexHasTerminalMarker(`{"type":"turn.started"}`))
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", firstNonEmpty("", "b", "c"))
	assert.Equal(t, "", firstNonEmpty("", "", ""))
	assert.Equal(t, "a", firstNonEmpty("a"))
}
