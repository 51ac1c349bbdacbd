package ocr

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	name string
	args []string
}

type fakeRunner struct {
	mu    sync.Mutex
	calls []call
	run   func(name string, args []string) ([]byte, []byte, error)
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, call{name: name, args: args})
	f.mu.Unlock()
	return f.run(name, args)
}

// rasterize mimics pdftoppm by writing n page images next to the prefix argument.
func rasterize(t *testing.T, args []string, n int) string {
	t.Helper()
	prefix := args[len(args)-1]
	for i := 1; i <= n; i++ {
		name := prefix + "-" + string(rune('0'+i)) + ".png"
		require.NoError(t, os.WriteFile(name, []byte("png"), 0o600))
	}
	return prefix
}

func TestExtractPagesSplitsOnFormFeed(t *testing.T) {
	r := &fakeRunner{run: func(name string, args []string) ([]byte, []byte, error) {
		assert.Equal(t, "pdftotext", name)
		assert.Equal(t, []string{"-layout", "-enc", "UTF-8", "-eol", "unix", "/tmp/s.pdf", "-"}, args)
		return []byte("page one\fpage two\f"), nil, nil
	}}
	e := NewExtractor(Config{}, r, nil)

	pages, err := e.ExtractPages(context.Background(), "/tmp/s.pdf")
	require.NoError(t, err)
	assert.Equal(t, []string{"page one", "page two"}, pages)
}

func TestExtractPagesReportsStderr(t *testing.T) {
	r := &fakeRunner{run: func(string, []string) ([]byte, []byte, error) {
		return nil, []byte("Syntax Error: Couldn't find trailer dictionary"), errors.New("exit status 1")
	}}
	e := NewExtractor(Config{}, r, nil)

	_, err := e.ExtractPages(context.Background(), "/tmp/broken.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "trailer dictionary")
}

func TestOCRPagesRecognizesInPageOrderAndCleansUp(t *testing.T) {
	var rasterDir string
	r := &fakeRunner{}
	r.run = func(name string, args []string) ([]byte, []byte, error) {
		switch name {
		case "pdftoppm":
			assert.Equal(t, []string{"-r", "200", "-png"}, args[:3])
			rasterDir = filepath.Dir(rasterize(t, args, 3))
			return nil, nil, nil
		case "tesseract":
			base := filepath.Base(args[0])
			assert.Contains(t, args, "--psm")
			return []byte("text of " + strings.TrimSuffix(base, ".png")), nil, nil
		}
		return nil, nil, errors.New("unexpected binary " + name)
	}
	e := NewExtractor(Config{DPI: 200, PSM: 4}, r, nil)

	pages, err := e.OCRPages(context.Background(), "/tmp/scan.pdf")
	require.NoError(t, err)
	assert.Equal(t, []string{"text of page-1", "text of page-2", "text of page-3"}, pages)

	_, statErr := os.Stat(rasterDir)
	assert.True(t, os.IsNotExist(statErr), "raster dir should be removed")
}

func TestOCRPagesRastersUnderConfiguredTempDir(t *testing.T) {
	base := t.TempDir()
	var rasterDir string
	r := &fakeRunner{}
	r.run = func(name string, args []string) ([]byte, []byte, error) {
		if name == "pdftoppm" {
			rasterDir = filepath.Dir(rasterize(t, args, 1))
			return nil, nil, nil
		}
		return []byte("x"), nil, nil
	}
	e := NewExtractor(Config{TempDir: base}, r, nil)

	_, err := e.OCRPages(context.Background(), "/tmp/scan.pdf")
	require.NoError(t, err)
	assert.Equal(t, base, filepath.Dir(rasterDir))

	entries, err := os.ReadDir(base)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestOCRPagesHonoursMaxPages(t *testing.T) {
	r := &fakeRunner{}
	r.run = func(name string, args []string) ([]byte, []byte, error) {
		if name == "pdftoppm" {
			assert.Contains(t, args, "-l")
			rasterize(t, args, 3)
			return nil, nil, nil
		}
		return []byte("x"), nil, nil
	}
	e := NewExtractor(Config{MaxPages: 2}, r, nil)

	pages, err := e.OCRPages(context.Background(), "/tmp/scan.pdf")
	require.NoError(t, err)
	assert.Len(t, pages, 2)
}

func TestOCRPagesNoImages(t *testing.T) {
	var rasterDir string
	r := &fakeRunner{run: func(name string, args []string) ([]byte, []byte, error) {
		rasterDir = filepath.Dir(args[len(args)-1])
		return nil, nil, nil
	}}
	e := NewExtractor(Config{}, r, nil)

	_, err := e.OCRPages(context.Background(), "/tmp/empty.pdf")
	require.Error(t, err)
	_, statErr := os.Stat(rasterDir)
	assert.True(t, os.IsNotExist(statErr))
}

func TestOCRPagesKeepsGoingWhenOnePageFails(t *testing.T) {
	r := &fakeRunner{}
	r.run = func(name string, args []string) ([]byte, []byte, error) {
		if name == "pdftoppm" {
			rasterize(t, args, 2)
			return nil, nil, nil
		}
		if strings.HasSuffix(args[0], "page-1.png") {
			return nil, []byte("Error in pixReadStream"), errors.New("exit status 1")
		}
		return []byte("second"), nil, nil
	}
	e := NewExtractor(Config{}, r, nil)

	pages, err := e.OCRPages(context.Background(), "/tmp/scan.pdf")
	require.NoError(t, err)
	assert.Equal(t, []string{"", "second"}, pages)
}

func TestAvailability(t *testing.T) {
	e := NewExtractor(Config{}, &fakeRunner{}, nil)
	e.lookPath = func(bin string) (string, error) {
		if bin == "tesseract" {
			return "", errors.New("not found")
		}
		return "/usr/bin/" + bin, nil
	}
	assert.True(t, e.HasDirect())
	assert.False(t, e.HasOCR())
}

func TestTesseractVersion(t *testing.T) {
	r := &fakeRunner{run: func(string, []string) ([]byte, []byte, error) {
		return []byte("tesseract 5.3.0\n leptonica-1.82.0\n"), nil, nil
	}}
	assert.Equal(t, "tesseract 5.3.0", NewExtractor(Config{}, r, nil).TesseractVersion(context.Background()))

	failing := &fakeRunner{run: func(string, []string) ([]byte, []byte, error) {
		return nil, nil, errors.New("not installed")
	}}
	assert.Equal(t, "unknown", NewExtractor(Config{}, failing, nil).TesseractVersion(context.Background()))
}

func TestStatementSignals(t *testing.T) {
	assert.Empty(t, StatementSignals("Opening Balance 01/01/2024 1,250.00"))
	assert.Len(t, StatementSignals("lorem ipsum"), 3)
}

func TestNormalize(t *testing.T) {
	in := "Date    Description      Amount\r\n01/03\tCoffee\t4.50   \n-----------\n\n\n\n\fClosing balance  100.00\n"
	want := "Date    Description      Amount\n01/03    Coffee    4.50\n\nClosing balance  100.00"
	assert.Equal(t, want, Normalize(in))
	assert.Equal(t, "", Normalize(""))
}
