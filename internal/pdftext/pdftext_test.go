package pdftext

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuality(t *testing.T) {
	assert.Equal(t, 1.0, Quality(nil))
	assert.Equal(t, 1.0, Quality([]string{"   \n"}))
	assert.Equal(t, 1.0, Quality([]string{"Opening Balance: £1,250.00"}))
	assert.Less(t, Quality([]string{"\u0005\u0006\u0007\u0008 ab"}), DefaultMinQuality)
}

func TestQualityNonLatinScripts(t *testing.T) {
	assert.Equal(t, 1.0, Quality([]string{"Выписка по счету Остаток 1000.00"}))
	assert.Equal(t, 1.0, Quality([]string{"対象期間 2024年01月 残高 ¥120,000"}))
	assert.Equal(t, 1.0, Quality([]string{"खाता विवरण शेष ₹5,000.00"}))
	assert.Equal(t, 1.0, Quality([]string{"كشف حساب الرصيد 1000.00"}))
}

func TestQualityGlyphSoup(t *testing.T) {
	assert.Less(t, Quality([]string{"\ufffd\ufffd\ufffd\ufffd 10"}), DefaultMinQuality)
	assert.Less(t, Quality([]string{"\ue001\ue002\ue003\ue004\uf8ff ab"}), DefaultMinQuality)
}

func TestExtractPagesRejectsNonPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statement.pdf")
	require.NoError(t, os.WriteFile(path, []byte("this is not a pdf"), 0o600))

	_, err := NewExtractor(0, nil).ExtractPages(context.Background(), path)
	assert.Error(t, err)
}

func TestExtractPagesMissingFile(t *testing.T) {
	_, err := NewExtractor(0, nil).ExtractPages(context.Background(), filepath.Join(t.TempDir(), "nope.pdf"))
	assert.Error(t, err)
}
