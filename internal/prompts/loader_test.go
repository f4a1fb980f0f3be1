package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TGalioAutomation/chrome-profiles-undetect-bot/internal/generation/domain"
)

func TestLoader_LoadText(t *testing.T) {
	l := NewLoader("testdata", nil)

	jobs, err := l.LoadFile("basic.txt")
	require.NoError(t, err)
	require.Len(t, jobs, 3, "comments and blank lines are skipped")

	assert.Equal(t, "a misty mountain lake at dawn", jobs[0].Prompt)
	assert.Equal(t, "cyberpunk street market in the rain", jobs[1].Prompt)
	assert.Equal(t, "an elderly fisherman mending nets", jobs[2].Prompt)

	for _, j := range jobs {
		assert.NotEmpty(t, j.ID)
		assert.Equal(t, "default", j.Category)
		assert.Equal(t, 1, j.Attempt)
		assert.Equal(t, domain.JobStatusPending, j.Status)
	}
}

func TestLoader_LoadCSV(t *testing.T) {
	l := NewLoader("testdata", nil)

	jobs, err := l.LoadFile("basic.csv")
	require.NoError(t, err)
	require.Len(t, jobs, 3)

	assert.Equal(t, "img_001", jobs[0].ID)
	assert.Equal(t, "a misty mountain lake at dawn", jobs[0].Prompt)
	assert.Equal(t, "landscape", jobs[0].Category)
	assert.Equal(t, map[string]string{"style": "photorealistic", "aspect": "16:9"}, jobs[0].Parameters)

	assert.Equal(t, "img_002", jobs[1].ID)
	assert.Nil(t, jobs[1].Parameters)

	// Missing id and category fall back to a generated id and "default".
	assert.NotEmpty(t, jobs[2].ID)
	assert.Equal(t, "default", jobs[2].Category)
}

func TestLoader_LoadCSV_InvalidParameters(t *testing.T) {
	l := NewLoader("testdata", nil)

	_, err := l.LoadFile("bad_params.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid parameters JSON")
}

func TestLoader_LoadJSON(t *testing.T) {
	l := NewLoader("testdata", nil)

	jobs, err := l.LoadFile("basic.json")
	require.NoError(t, err)
	require.Len(t, jobs, 2, "entries with blank text are skipped")

	assert.Equal(t, "img_001", jobs[0].ID)
	assert.Equal(t, "landscape", jobs[0].Category)
	assert.Equal(t, map[string]string{"style": "photorealistic"}, jobs[0].Parameters)

	assert.NotEmpty(t, jobs[1].ID)
	assert.Equal(t, "default", jobs[1].Category)
}

func TestLoader_LoadFile_Errors(t *testing.T) {
	l := NewLoader("testdata", nil)

	tests := []struct {
		name      string
		file      string
		errString string
	}{
		{
			name:      "unsupported format",
			file:      "notes.yaml",
			errString: "unsupported prompt file format",
		},
		{
			name:      "missing file",
			file:      "nonexistent.txt",
			errString: "failed to read prompt file",
		},
		{
			name:      "malformed json",
			file:      "malformed.json",
			errString: "failed to parse json prompts",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.LoadFile(tt.file)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errString)
		})
	}
}

func TestLoader_ListFiles(t *testing.T) {
	l := NewLoader("testdata", nil)

	files, err := l.ListFiles()
	require.NoError(t, err)

	assert.Contains(t, files, "basic.txt")
	assert.Contains(t, files, "basic.csv")
	assert.Contains(t, files, "basic.json")
	assert.NotContains(t, files, "notes.yaml")
}

func TestPending(t *testing.T) {
	jobs := []*domain.Job{
		{ID: "a", Status: domain.JobStatusPending},
		{ID: "b", Status: domain.JobStatusCompleted},
		{ID: "c", Status: ""},
		{ID: "d", Status: domain.JobStatusFailed},
	}

	pending := Pending(jobs)
	require.Len(t, pending, 2)
	assert.Equal(t, "a", pending[0].ID)
	assert.Equal(t, "c", pending[1].ID)
}
