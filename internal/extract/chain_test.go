package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChainFirstNonBlankWins(t *testing.T) {
	first := &fakeDirect{name: "native", pages: []string{" "}}
	second := &fakeDirect{name: "pdftotext", pages: []string{"ACME BANK"}}

	pages, err := NewChain(nil, first, second).ExtractPages(context.Background(), "x.pdf")
	require.NoError(t, err)
	assert.Equal(t, []string{"ACME BANK"}, pages)
	assert.Equal(t, 1, first.calls)
}

func TestChainSkipsFailingEngine(t *testing.T) {
	first := &fakeDirect{name: "native", err: errors.New("unsupported filter")}
	second := &fakeDirect{name: "pdftotext", pages: []string{"ACME"}}

	pages, err := NewChain(nil, first, second).ExtractPages(context.Background(), "x.pdf")
	require.NoError(t, err)
	assert.Equal(t, []string{"ACME"}, pages)
}

func TestChainAllBlankIsNotAnError(t *testing.T) {
	c := NewChain(nil,
		&fakeDirect{name: "native", err: errors.New("boom")},
		&fakeDirect{name: "pdftotext", pages: []string{"", "\n"}},
	)
	pages, err := c.ExtractPages(context.Background(), "x.pdf")
	require.NoError(t, err)
	assert.Equal(t, "", joinPages(pages))
	assert.Equal(t, "native,pdftotext", c.Name())
}

func TestChainAllFailing(t *testing.T) {
	c := NewChain(nil,
		&fakeDirect{name: "native", err: errors.New("boom")},
		&fakeDirect{name: "pdftotext", err: errors.New("bang")},
	)
	_, err := c.ExtractPages(context.Background(), "x.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Contains(t, err.Error(), "bang")
}
