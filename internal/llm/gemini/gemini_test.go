package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/joseph-ayodele/statement-parser/internal/llm"
)

type fakeModels struct {
	getErr   error
	genErr   error
	reply    string
	gotModel string
	gotCfg   *genai.GenerateContentConfig
	gotText  string
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.gotModel = model
	f.gotCfg = cfg
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.gotText = contents[0].Parts[0].Text
	}
	if f.genErr != nil {
		return nil, f.genErr
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: f.reply}}, Role: genai.RoleModel},
		}},
	}, nil
}

func (f *fakeModels) Get(_ context.Context, model string, _ *genai.GetModelConfig) (*genai.Model, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &genai.Model{Name: model}, nil
}

func TestNewRequiresKey(t *testing.T) {
	_, err := New(context.Background(), "", "", nil)
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	g := newGenerator(&fakeModels{}, "m", nil)
	assert.NoError(t, g.Load(context.Background()))

	g = newGenerator(&fakeModels{getErr: errors.New("404")}, "m", nil)
	assert.Error(t, g.Load(context.Background()))
}

func TestGenerate(t *testing.T) {
	f := &fakeModels{reply: `{"bank_name":"X"}`}
	g := newGenerator(f, "m", nil)

	out, err := g.Generate(context.Background(), "prompt", llm.GenerateOptions{MaxNewTokens: 100, Temperature: 0.2})
	require.NoError(t, err)
	assert.Equal(t, `{"bank_name":"X"}`, out)
	assert.Equal(t, "m", f.gotModel)
	assert.Equal(t, "prompt", f.gotText)
	assert.Equal(t, int32(100), f.gotCfg.MaxOutputTokens)
	require.NotNil(t, f.gotCfg.Temperature)
	assert.InDelta(t, 0.2, *f.gotCfg.Temperature, 1e-6)
}

func TestGenerateErrors(t *testing.T) {
	g := newGenerator(&fakeModels{genErr: errors.New("quota")}, "m", nil)
	_, err := g.Generate(context.Background(), "p", llm.GenerateOptions{})
	assert.Error(t, err)

	g = newGenerator(&fakeModels{reply: ""}, "m", nil)
	_, err = g.Generate(context.Background(), "p", llm.GenerateOptions{})
	assert.Error(t, err)
}
