package types

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidSessionName(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want bool
	}{
		{"simple", "drone-main", true},
		{"dots-and-underscores", "drone.main_1", true},
		{"empty", "", false},
		{"space", "bad name", false},
		{"too-long", strings.Repeat("a", 65), false},
		{"exactly-max", strings.Repeat("a", 64), true},
		{"shell-metachar", "sess;rm", false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, ValidSessionName(c.in))
		})
	}
}

func TestJobSessionName(t *testing.T) {
	cases := []struct {
		name string
		id   string
		want string
	}{
		{"simple id", "job-1", "drone-prompt-job-1"},
		{"collapses invalid runs", "job 1/two", "drone-prompt-job-1-two"},
		{"empty becomes job", "", "drone-prompt-job"},
		{"all invalid becomes job", "///", "drone-prompt-job"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, JobSessionName(c.id))
		})
	}
}

func TestJobSessionNameTruncatesLongIDs(t *testing.T) {
	id := strings.Repeat("a", 100)
	got := JobSessionName(id)
	assert.True(t, strings.HasPrefix(got, JobSessionPrefix))
	assert.LessOrEqual(t, len(got)-len(JobSessionPrefix), 48)
}

func TestValidJobID(t *testing.T) {
	assert.True(t, ValidJobID("job-1"))
	assert.True(t, ValidJobID("a"))
	assert.False(t, ValidJobID(""))
	assert.False(t, ValidJobID("job/1"))
	assert.False(t, ValidJobID("job 1"))
}

func TestSanitizeEnvKey(t *testing.T) {
	assert.Equal(t, "MY_VAR", SanitizeEnvKey("MY_VAR"))
	assert.Equal(t, "MYVAR", SanitizeEnvKey("MY-VAR!"))
	assert.Equal(t, "", SanitizeEnvKey("$$$"))
}

func TestJobStateValid(t *testing.T) {
	assert.True(t, JobQueued.Valid())
	assert.True(t, JobRunning.Valid())
	assert.True(t, JobDone.Valid())
	assert.True(t, JobFailed.Valid())
	assert.False(t, JobState("bogus").Valid())
}

func TestJobStateTerminal(t *testing.T) {
	assert.False(t, JobQueued.Terminal())
	assert.False(t, JobRunning.Terminal())
	assert.True(t, JobDone.Terminal())
	assert.True(t, JobFailed.Terminal())
}

func TestPromptJobSessionName(t *testing.T) {
	job := &PromptJob{ID: "job-1"}
	assert.Equal(t, JobSessionName("job-1"), job.SessionName())
}

func TestProcessRecordEmpty(t *testing.T) {
	var nilRec *ProcessRecord
	assert.True(t, nilRec.Empty())

	zero := &ProcessRecord{}
	assert.True(t, zero.Empty())

	set := &ProcessRecord{Session: "drone-main"}
	assert.False(t, set.Empty())
}

func TestJobIndexDedup(t *testing.T) {
	idx := JobIndex{Order: []string{"a", "b", "a", "", "c", "b"}}
	got := idx.Dedup()
	assert.Equal(t, []string{"a", "b", "c"}, got.Order)
}

func TestJobIndexDedupTruncatesToMaxEntries(t *testing.T) {
	order := make([]string, MaxIndexEntries+10)
	for i := range order {
		order[i] = strings.Repeat("x", 1) + string(rune('a'+i%26)) + string(rune(i))
	}
	idx := JobIndex{Order: order}
	got := idx.Dedup()
	assert.LessOrEqual(t, len(got.Order), MaxIndexEntries)
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Field: "session", Message: "must not be empty"}
	assert.Equal(t, "session: must not be empty", err.Error())
}
