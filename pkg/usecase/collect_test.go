package usecase_test

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/tmr232/cfgbot/pkg/domain/model"
	"github.com/tmr232/cfgbot/pkg/usecase"
)

func TestChunk(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e"}

	groups := usecase.Chunk(items, 2)
	gt.Array(t, groups).Length(3)
	gt.Value(t, groups[0]).Equal([]string{"a", "b"})
	gt.Value(t, groups[2]).Equal([]string{"e"})

	gt.Array(t, usecase.Chunk(items, 10)).Length(1)
	gt.Array(t, usecase.Chunk(nil, 2)).Length(0)

	// Non-positive sizes degrade to one item per group.
	gt.Array(t, usecase.Chunk(items, 0)).Length(5)
}

func TestMergeIndices(t *testing.T) {
	merged := gt.R1(usecase.MergeIndices([]*model.Index{
		githubIndex("a/a", 7, 8),
		githubIndex("a/a", 9),
	})).NoError(t)

	gt.Value(t, merged.Content.Type()).Equal(model.IndexTypeGithub)
	gt.Array(t, merged.Content.Github.Functions).Length(3)
	gt.Value(t, merged.Content.Github.Project).Equal("a/a")
}

func TestMergeIndices_Errors(t *testing.T) {
	_, err := usecase.MergeIndices(nil)
	gt.Error(t, err)

	_, err = usecase.MergeIndices([]*model.Index{ghidraIndex("doom", 9)})
	gt.Error(t, err)

	_, err = usecase.MergeIndices([]*model.Index{
		githubIndex("a/a", 7),
		ghidraIndex("doom", 9),
	})
	gt.Error(t, err)
}

func TestListFiles(t *testing.T) {
	root := t.TempDir()
	write := func(rel string) {
		path := filepath.Join(root, filepath.FromSlash(rel))
		gt.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		gt.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	}
	write("main.py")
	write("pkg/util.py")
	write("pkg/util_test.py")
	write("README.md")
	write(".git/config")

	all := gt.R1(usecase.ListFiles(root, nil)).NoError(t)
	sort.Strings(all)
	gt.Value(t, all).Equal([]string{"README.md", "main.py", "pkg/util.py", "pkg/util_test.py"})

	py := gt.R1(usecase.ListFiles(root, []string{"**/*.py"})).NoError(t)
	sort.Strings(py)
	gt.Value(t, py).Equal([]string{"main.py", "pkg/util.py", "pkg/util_test.py"})
}

type mockCloner struct {
	files []string
}

func (m *mockCloner) ShallowClone(ctx context.Context, repoURL, dir string) (string, error) {
	for _, rel := range m.files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return "", err
		}
		if err := os.WriteFile(path, []byte("content"), 0644); err != nil {
			return "", err
		}
	}
	return "abc123", nil
}

type mockScanner struct {
	mu    sync.Mutex
	calls [][]string
}

func (m *mockScanner) ScanFiles(ctx context.Context, root, project, ref string, files []string) ([]byte, error) {
	m.mu.Lock()
	m.calls = append(m.calls, files)
	m.mu.Unlock()

	idx := githubIndex(project)
	idx.Content.Github.Ref = ref
	for _, file := range files {
		idx.Content.Github.Functions = append(idx.Content.Github.Functions, model.GithubFunction{
			Funcdef:   fmt.Sprintf("def f_%d():", len(idx.Content.Github.Functions)),
			NodeCount: 8,
			Filename:  file,
		})
	}
	return json.Marshal(idx)
}

func TestCollect_Run(t *testing.T) {
	outDir := t.TempDir()
	cloner := &mockCloner{files: []string{"a.py", "b.py", "c.py", "docs/d.md"}}
	scanner := &mockScanner{}

	uc := usecase.NewCollect(usecase.CollectConfig{
		Projects:      []string{"tmr232/demo"},
		OutDir:        outDir,
		FilesPerGroup: 2,
		Workers:       2,
		Include:       []string{"**/*.py"},
	}, cloner, scanner)

	gt.NoError(t, uc.Run(context.Background()))

	// 3 matching files at 2 per group.
	gt.Array(t, scanner.calls).Length(2)

	data := gt.R1(os.ReadFile(filepath.Join(outDir, "tmr232_demo.json"))).NoError(t)
	idx := gt.R1(model.ParseIndex(data)).NoError(t)
	gt.Value(t, idx.Content.Github.Project).Equal("tmr232/demo")
	gt.Value(t, idx.Content.Github.Ref).Equal("abc123")
	gt.Array(t, idx.Content.Github.Functions).Length(3)
}

func TestCollect_Run_SkipsExistingIndex(t *testing.T) {
	outDir := t.TempDir()
	existing := filepath.Join(outDir, "tmr232_demo.json")
	gt.NoError(t, os.WriteFile(existing, []byte("keep"), 0644))

	scanner := &mockScanner{}
	uc := usecase.NewCollect(usecase.CollectConfig{
		Projects: []string{"tmr232/demo"},
		OutDir:   outDir,
	}, &mockCloner{files: []string{"a.py"}}, scanner)

	gt.NoError(t, uc.Run(context.Background()))

	gt.Array(t, scanner.calls).Length(0)
	data := gt.R1(os.ReadFile(existing)).NoError(t)
	gt.Value(t, string(data)).Equal("keep")
}
