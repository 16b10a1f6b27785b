package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/distrust/internal/model"
)

// Scorer scores a single evidence file
type Scorer interface {
	ScoreFile(ctx context.Context, path string) (*model.Report, error)
}

// ScoreJob scores one evidence file
type ScoreJob struct {
	Index  int
	Path   string
	Scorer Scorer
}

// Execute runs the job
func (j *ScoreJob) Execute(ctx context.Context) Result {
	report, err := j.Scorer.ScoreFile(ctx, j.Path)
	return &ScoreResult{
		Index:  j.Index,
		Path:   j.Path,
		Report: report,
		Error:  err,
	}
}

// ScoreResult is the outcome of a ScoreJob
type ScoreResult struct {
	Index  int
	Path   string
	Report *model.Report
	Error  error
}

// GetError returns the job error
func (r *ScoreResult) GetError() error {
	return r.Error
}

// BatchProcessor scores many evidence files concurrently
type BatchProcessor struct {
	scorer  Scorer
	workers int
}

// NewBatchProcessor creates a batch processor
func NewBatchProcessor(scorer Scorer, workers int) *BatchProcessor {
	return &BatchProcessor{
		scorer:  scorer,
		workers: workers,
	}
}

// ProcessPaths scores every path and returns one result per path, in input
// order. Paths left unscored by cancellation carry the context error.
func (b *BatchProcessor) ProcessPaths(ctx context.Context, paths []string) []*ScoreResult {
	if len(paths) == 0 {
		return []*ScoreResult{}
	}

	pool := NewPool(ctx, b.workers)
	pool.Start()

	for i, path := range paths {
		if ctx.Err() != nil {
			break
		}
		pool.Submit(&ScoreJob{
			Index:  i,
			Path:   path,
			Scorer: b.scorer,
		})
	}

	results := pool.Wait()

	// A cancelled pool drops queued jobs; every path still gets a result
	scored := make([]*ScoreResult, len(paths))
	for _, result := range results {
		res := result.(*ScoreResult)
		scored[res.Index] = res
	}
	for i, res := range scored {
		if res != nil {
			continue
		}
		err := ctx.Err()
		if err == nil {
			err = context.Canceled
		}
		scored[i] = &ScoreResult{
			Index: i,
			Path:  paths[i],
			Error: fmt.Errorf("not scored: %w", err),
		}
	}

	return scored
}

// ProcessFile reads a list of evidence paths and scores them
func (b *BatchProcessor) ProcessFile(ctx context.Context, listPath string) ([]*ScoreResult, error) {
	paths, err := ReadPathsFromFile(listPath)
	if err != nil {
		return nil, fmt.Errorf("read paths: %w", err)
	}

	return b.ProcessPaths(ctx, paths), nil
}

// ReadPathsFromFile reads evidence file paths, one per line. Blank lines and
// '#' comments are skipped, duplicates dropped, and relative paths resolved
// against the list file's directory.
func ReadPathsFromFile(listPath string) ([]string, error) {
	file, err := os.Open(listPath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	base := filepath.Dir(listPath)

	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !filepath.IsAbs(line) {
			line = filepath.Join(base, line)
		}
		line = filepath.Clean(line)

		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return paths, nil
}
