package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ppiankov/distrust/internal/model"
)

type mockScorer struct {
	failOn string
}

func (m *mockScorer) ScoreFile(ctx context.Context, path string) (*model.Report, error) {
	time.Sleep(time.Millisecond)
	if path == m.failOn {
		return nil, errors.New("score error")
	}
	return &model.Report{Claim: "claim", Source: path}, nil
}

func writeList(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "list.txt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBatchProcessor_ProcessPaths_PreservesOrder(t *testing.T) {
	paths := []string{"a.yaml", "b.yaml", "c.yaml", "d.yaml", "e.yaml"}
	results := NewBatchProcessor(&mockScorer{}, 3).ProcessPaths(context.Background(), paths)

	if len(results) != len(paths) {
		t.Fatalf("Expected %d results, got %d", len(paths), len(results))
	}
	for i, res := range results {
		if res.Path != paths[i] {
			t.Errorf("Index %d: expected %s, got %s", i, paths[i], res.Path)
		}
		if res.Error != nil || res.Report == nil {
			t.Errorf("Unexpected failure for %s: %v", res.Path, res.Error)
		}
	}
}

func TestBatchProcessor_ProcessPaths_Error(t *testing.T) {
	results := NewBatchProcessor(&mockScorer{failOn: "bad.yaml"}, 2).
		ProcessPaths(context.Background(), []string{"good.yaml", "bad.yaml"})

	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if results[0].GetError() != nil {
		t.Errorf("Expected good.yaml to succeed, got %v", results[0].Error)
	}
	if results[1].GetError() == nil || results[1].Report != nil {
		t.Error("Expected bad.yaml to fail without a report")
	}
}

func TestBatchProcessor_ProcessPaths_Empty(t *testing.T) {
	results := NewBatchProcessor(&mockScorer{}, 2).ProcessPaths(context.Background(), nil)
	if len(results) != 0 {
		t.Errorf("Expected 0 results, got %d", len(results))
	}
}

func TestReadPathsFromFile(t *testing.T) {
	list := writeList(t, "a.yaml\n# comment\n\n  sub/b.json  \na.yaml\n/abs/c.yaml\n")
	dir := filepath.Dir(list)

	paths, err := ReadPathsFromFile(list)
	if err != nil {
		t.Fatalf("ReadPathsFromFile failed: %v", err)
	}

	expected := []string{
		filepath.Join(dir, "a.yaml"),
		filepath.Join(dir, "sub", "b.json"),
		"/abs/c.yaml",
	}
	if len(paths) != len(expected) {
		t.Fatalf("Expected %d paths, got %d: %v", len(expected), len(paths), paths)
	}
	for i := range expected {
		if paths[i] != expected[i] {
			t.Errorf("Index %d: expected %s, got %s", i, expected[i], paths[i])
		}
	}
}

func TestReadPathsFromFile_NonExistent(t *testing.T) {
	if _, err := ReadPathsFromFile("no_such_list.txt"); err == nil {
		t.Error("Expected error for missing list file")
	}
}

func TestBatchProcessor_ProcessFile(t *testing.T) {
	list := writeList(t, "one.yaml\ntwo.yaml\n")

	results, err := NewBatchProcessor(&mockScorer{}, 2).ProcessFile(context.Background(), list)
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("Expected 2 results, got %d", len(results))
	}
}

func TestBatchProcessor_ProcessPaths_CancelledReportsEveryPath(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	paths := []string{"1.yaml", "2.yaml", "3.yaml", "4.yaml", "5.yaml", "6.yaml", "7.yaml", "8.yaml"}
	results := NewBatchProcessor(&mockScorer{}, 2).ProcessPaths(ctx, paths)

	if len(results) != len(paths) {
		t.Fatalf("Expected %d results, got %d", len(paths), len(results))
	}

	for i, res := range results {
		if res.Path != paths[i] || res.Index != i {
			t.Errorf("Index %d: expected %s, got %s (index %d)", i, paths[i], res.Path, res.Index)
		}
		if !errors.Is(res.Error, context.Canceled) {
			t.Errorf("Expected context.Canceled for %s, got %v", res.Path, res.Error)
		}
		if res.Report != nil {
			t.Errorf("Expected no report for unscored %s", res.Path)
		}
	}
}
