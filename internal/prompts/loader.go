package prompts

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/TGalioAutomation/chrome-profiles-undetect-bot/internal/generation/domain"
	"github.com/google/uuid"
)

// Loader reads ordered prompt lists from files. Supported formats:
// .txt (one prompt per line, # starts a comment), .csv (header row
// id,prompt,category,priority,parameters with JSON-encoded parameters)
// and .json ({"prompts": [...]}).
type Loader struct {
	dir    string
	logger *slog.Logger
}

// NewLoader creates a loader rooted at dir.
func NewLoader(dir string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{dir: dir, logger: logger}
}

// LoadFile parses one prompt file into jobs, dispatching on extension.
// File order is preserved; it becomes the batch submission order.
func (l *Loader) LoadFile(name string) ([]*domain.Job, error) {
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(l.dir, name)
	}

	var (
		jobs []*domain.Job
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt":
		jobs, err = l.loadText(path)
	case ".csv":
		jobs, err = l.loadCSV(path)
	case ".json":
		jobs, err = l.loadJSON(path)
	default:
		return nil, fmt.Errorf("unsupported prompt file format: %s", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}

	l.logger.Info("Loaded prompt file",
		slog.String("file", name),
		slog.Int("prompts", len(jobs)),
	)
	return jobs, nil
}

// Pending filters jobs down to the ones still waiting to run.
func Pending(jobs []*domain.Job) []*domain.Job {
	pending := make([]*domain.Job, 0, len(jobs))
	for _, j := range jobs {
		if j.Status == "" || j.Status == domain.JobStatusPending {
			pending = append(pending, j)
		}
	}
	return pending
}

// ListFiles returns the loadable prompt files under the loader's directory.
func (l *Loader) ListFiles() ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompts directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".txt", ".csv", ".json":
			files = append(files, e.Name())
		}
	}
	return files, nil
}

func (l *Loader) loadText(path string) ([]*domain.Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file: %w", err)
	}

	var jobs []*domain.Job
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		jobs = append(jobs, newJob("", line, "default", nil))
	}
	return jobs, nil
}

func (l *Loader) loadCSV(path string) ([]*domain.Job, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open prompt file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv prompts: %w", err)
	}
	if len(records) < 2 {
		return nil, nil
	}

	var jobs []*domain.Job
	// Skip the header row.
	for i, rec := range records[1:] {
		if len(rec) < 2 {
			return nil, fmt.Errorf("csv row %d: expected at least id and prompt columns", i+2)
		}
		id := strings.TrimSpace(rec[0])
		prompt := strings.TrimSpace(rec[1])
		category := "default"
		if len(rec) > 2 && rec[2] != "" {
			category = rec[2]
		}

		var params map[string]string
		if len(rec) > 4 && strings.TrimSpace(rec[4]) != "" {
			if err := json.Unmarshal([]byte(rec[4]), &params); err != nil {
				return nil, fmt.Errorf("csv row %d: invalid parameters JSON: %w", i+2, err)
			}
		}
		jobs = append(jobs, newJob(id, prompt, category, params))
	}
	return jobs, nil
}

type promptFile struct {
	Prompts []promptEntry `json:"prompts"`
}

type promptEntry struct {
	ID         string            `json:"id"`
	Text       string            `json:"text"`
	Category   string            `json:"category"`
	Parameters map[string]string `json:"parameters"`
}

func (l *Loader) loadJSON(path string) ([]*domain.Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file: %w", err)
	}

	var pf promptFile
	if err := json.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("failed to parse json prompts: %w", err)
	}

	jobs := make([]*domain.Job, 0, len(pf.Prompts))
	for _, p := range pf.Prompts {
		if strings.TrimSpace(p.Text) == "" {
			continue
		}
		category := p.Category
		if category == "" {
			category = "default"
		}
		jobs = append(jobs, newJob(p.ID, p.Text, category, p.Parameters))
	}
	return jobs, nil
}

func newJob(id, prompt, category string, params map[string]string) *domain.Job {
	if id == "" {
		id = uuid.NewString()
	}
	return &domain.Job{
		ID:         id,
		Prompt:     prompt,
		Category:   category,
		Parameters: params,
		Attempt:    1,
		Status:     domain.JobStatusPending,
		CreatedAt:  time.Now(),
	}
}
