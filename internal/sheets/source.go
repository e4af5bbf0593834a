package sheets

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"reelforge/internal/config"
	"reelforge/internal/logging"
	"reelforge/internal/queue"
	"reelforge/internal/services"
)

// Job is one pending row from the sheet.
type Job struct {
	Title     string
	Prompt    string
	SourceRef string
}

// Source reads jobs from the configured sheet.
type Source struct {
	cfg    *config.Config
	logger *slog.Logger
	client *http.Client
}

// NewSource constructs a sheet-backed job source.
func NewSource(cfg *config.Config, logger *slog.Logger) *Source {
	if logger != nil {
		logger = logger.With(logging.String(logging.FieldComponent, "sheets"))
	} else {
		logger = logging.NewNop()
	}
	timeout := time.Duration(cfg.Sheets.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Source{
		cfg:    cfg,
		logger: logger,
		client: &http.Client{Timeout: timeout},
	}
}

// Configured reports whether a sheet source is set.
func (s *Source) Configured() bool {
	return strings.TrimSpace(s.cfg.Sheets.Source) != ""
}

// Fetch returns every pending row in sheet order.
func (s *Source) Fetch(ctx context.Context) ([]Job, error) {
	source := strings.TrimSpace(s.cfg.Sheets.Source)
	if source == "" {
		return nil, services.Wrap(services.ErrConfiguration, "sheets", "fetch", "No sheet source configured; set sheets.source", nil)
	}

	reader, err := s.open(ctx, source)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	jobs, err := parseJobs(reader, source)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("sheet fetched", logging.Int("pending", len(jobs)))
	return jobs, nil
}

// NextPending returns the first pending row, or nil when the sheet has none.
func (s *Source) NextPending(ctx context.Context) (*Job, error) {
	jobs, err := s.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	if len(jobs) == 0 {
		return nil, nil
	}
	return &jobs[0], nil
}

// Sync enqueues every pending row not yet present in the queue and returns
// the number of new items.
func (s *Source) Sync(ctx context.Context, store *queue.Store) (int, error) {
	jobs, err := s.Fetch(ctx)
	if err != nil {
		return 0, err
	}

	added := 0
	for _, job := range jobs {
		existing, err := store.FindBySourceRef(ctx, job.SourceRef)
		if err != nil {
			return added, fmt.Errorf("check source ref: %w", err)
		}
		if existing != nil {
			continue
		}
		if _, err := store.NewJobFromSource(ctx, job.Title, job.Prompt, job.SourceRef); err != nil {
			return added, fmt.Errorf("enqueue %q: %w", job.Title, err)
		}
		s.logger.Info("job synced from sheet", logging.String("title", job.Title))
		added++
	}
	return added, nil
}

func (s *Source) open(ctx context.Context, source string) (io.ReadCloser, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, fmt.Errorf("build sheet request: %w", err)
		}
		resp, err := s.client.Do(req)
		if err != nil {
			return nil, services.Wrap(services.ErrTransient, "sheets", "fetch", "Sheet request failed; check network and sheets.source", err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, services.Wrap(
				services.ErrTransient,
				"sheets",
				"fetch",
				fmt.Sprintf("Sheet returned %d; is the sheet published to the web?", resp.StatusCode),
				nil,
			)
		}
		return resp.Body, nil
	}

	expanded, err := config.ExpandPath(source)
	if err != nil {
		return nil, fmt.Errorf("expand sheet path: %w", err)
	}
	file, err := os.Open(expanded)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "sheets", "fetch", fmt.Sprintf("Sheet file unreadable: %s", expanded), err)
	}
	return file, nil
}

// parseJobs reads the CSV and keeps rows whose status column is empty or
// "pending". The header row is matched case-insensitively; title and prompt
// columns are required.
func parseJobs(r io.Reader, sourceID string) ([]Job, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "sheets", "parse", "Sheet is empty or not CSV", err)
	}

	titleCol, promptCol, statusCol := -1, -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "title":
			titleCol = i
		case "prompt":
			promptCol = i
		case "status":
			statusCol = i
		}
	}
	if titleCol < 0 || promptCol < 0 {
		return nil, services.Wrap(services.ErrValidation, "sheets", "parse", "Sheet needs title and prompt columns", nil)
	}

	var jobs []Job
	for row := 2; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read sheet row %d: %w", row, err)
		}
		title := field(record, titleCol)
		prompt := field(record, promptCol)
		if title == "" && prompt == "" {
			continue
		}
		if statusCol >= 0 {
			status := strings.ToLower(field(record, statusCol))
			if status != "" && status != "pending" {
				continue
			}
		}
		jobs = append(jobs, Job{
			Title:     title,
			Prompt:    prompt,
			SourceRef: fmt.Sprintf("%s#row=%d", sourceID, row),
		})
	}
	return jobs, nil
}

func field(record []string, index int) string {
	if index < 0 || index >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[index])
}
