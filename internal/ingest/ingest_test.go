package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/statement-parser/internal/async"
)

type recordingQueue struct {
	jobs []async.Job
	err  error
}

func (q *recordingQueue) Enqueue(_ context.Context, job async.Job) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func fixtureTree(t *testing.T) string {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "jan.pdf"), "%PDF-1.4")
	writeFile(t, filepath.Join(root, "feb.TXT"), "STATEMENT FEB")
	writeFile(t, filepath.Join(root, "notes.docx"), "x")
	writeFile(t, filepath.Join(root, ".hidden.pdf"), "%PDF")
	writeFile(t, filepath.Join(root, ".cache", "mar.pdf"), "%PDF")
	writeFile(t, filepath.Join(root, "2024", "apr.pdf"), "%PDF")
	return root
}

func TestScan(t *testing.T) {
	root := fixtureTree(t)

	files, stats, err := Scan(root, Options{SkipHidden: true})
	require.NoError(t, err)
	sort.Strings(files)
	assert.Equal(t, []string{
		filepath.Join(root, "2024", "apr.pdf"),
		filepath.Join(root, "feb.TXT"),
		filepath.Join(root, "jan.pdf"),
	}, files)
	assert.Equal(t, uint32(3), stats.Matched)

	files, _, err = Scan(root, Options{})
	require.NoError(t, err)
	assert.Len(t, files, 5)

	files, _, err = Scan(root, Options{IncludeExts: []string{".txt"}, SkipHidden: true})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "feb.TXT")}, files)
}

func TestScanRequiresRoot(t *testing.T) {
	_, _, err := Scan(" ", Options{})
	assert.Error(t, err)

	_, _, err = Scan(filepath.Join(t.TempDir(), "missing"), Options{})
	assert.Error(t, err)
}

func TestEnqueueDirectory(t *testing.T) {
	root := fixtureTree(t)
	q := &recordingQueue{}

	results, stats, err := EnqueueDirectory(context.Background(), q, root, Options{SkipHidden: true, ForceOCR: true, CustomerID: "c9"})
	require.NoError(t, err)
	assert.Len(t, results, 3)
	assert.Equal(t, uint32(3), stats.Enqueued)
	require.Len(t, q.jobs, 3)

	byName := map[string]async.Job{}
	for _, j := range q.jobs {
		byName[filepath.Base(j.Name)] = j
	}
	pdf := byName["jan.pdf"]
	assert.Equal(t, filepath.Join(root, "jan.pdf"), pdf.Document.Path)
	assert.True(t, pdf.Document.ForceOCR)
	assert.Equal(t, "c9", pdf.Document.CustomerID)

	txt := byName["feb.TXT"]
	assert.Equal(t, "STATEMENT FEB", txt.Document.RawText)
	assert.Empty(t, txt.Document.Path)
	assert.False(t, txt.Document.IsFile())
}

func TestEnqueueDirectory_StopsWhenQueueCloses(t *testing.T) {
	root := fixtureTree(t)
	q := &recordingQueue{err: async.ErrQueueClosed}

	_, _, err := EnqueueDirectory(context.Background(), q, root, Options{})
	assert.True(t, errors.Is(err, async.ErrQueueClosed))
}

func TestDocumentFor_TextTooLarge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.txt")
	writeFile(t, path, "0123456789")

	_, err := DocumentFor(path, Options{MaxFileSize: 5})
	assert.Error(t, err)

	_, err = DocumentFor(filepath.Join(t.TempDir(), "x.csv"), Options{})
	assert.Error(t, err)
}

func TestIsHidden(t *testing.T) {
	assert.True(t, IsHidden("/a/.b"))
	assert.False(t, IsHidden("/a/b.pdf"))
	assert.False(t, IsHidden("."))
	assert.True(t, AllowedExt(".PDF"))
	assert.False(t, AllowedExt("png"))
}

func TestWatcherEmitsNewStatements(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "existing.pdf"), "%PDF")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, _, err := StartWatcher(ctx, WatchConfig{Roots: []string{root}, InitialScan: true, Debounce: 20 * time.Millisecond}, nil)
	require.NoError(t, err)

	select {
	case p := <-events:
		assert.Equal(t, filepath.Join(root, "existing.pdf"), p)
	case <-time.After(2 * time.Second):
		t.Fatal("initial scan did not emit existing file")
	}

	writeFile(t, filepath.Join(root, "ignored.png"), "x")
	writeFile(t, filepath.Join(root, "new.pdf"), "%PDF")

	select {
	case p := <-events:
		assert.Equal(t, filepath.Join(root, "new.pdf"), p)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not emit new file")
	}

	cancel()
	for range events {
	}
}

func TestWatcherRequiresRoots(t *testing.T) {
	_, _, err := StartWatcher(context.Background(), WatchConfig{}, nil)
	assert.Error(t, err)
}
