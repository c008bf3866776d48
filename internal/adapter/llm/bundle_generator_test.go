package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"microlearn/internal/config"
	"microlearn/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

type fakeCompleter struct {
	response string
	err      error
	prompt   string
	opts     llms.CallOptions
}

func (f *fakeCompleter) Call(_ context.Context, prompt string, options ...llms.CallOption) (string, error) {
	f.prompt = prompt
	for _, o := range options {
		o(&f.opts)
	}
	return f.response, f.err
}

func testLLMConfig() config.LLMConfig {
	return config.LLMConfig{Temperature: 0.2, MaxTokens: 500, Timeout: time.Second}
}

func TestBundleGenerator_Generate(t *testing.T) {
	fake := &fakeCompleter{response: "<think>planning</think>\n```json\n" + `{
		"summary": "Cells divide.",
		"learning_objectives": ["Describe mitosis"],
		"questions": [{"question": "What divides?", "answer": "Cells", "options": ["Cells", "Rocks"], "bloom_level": "Remember"}],
		"flashcards": [{"front": "Mitosis", "back": "Cell division"}],
		"key_concepts": ["mitosis"],
		"difficulty_level": "beginner"
	}` + "\n```"}
	gen := NewBundleGenerator(fake, testLLMConfig())

	content, err := gen.Generate(context.Background(), "notes about mitosis")
	require.NoError(t, err)

	assert.Equal(t, "Cells divide.", content.Summary)
	require.Len(t, content.Questions, 1)
	assert.Equal(t, "Cells", content.Questions[0].Answer)
	assert.Equal(t, "beginner", content.DifficultyLevel)
	assert.Contains(t, fake.prompt, "notes about mitosis")
	assert.Equal(t, 0.2, fake.opts.Temperature)
	assert.Equal(t, 500, fake.opts.MaxTokens)
}

func TestBundleGenerator_UpstreamFailure(t *testing.T) {
	gen := NewBundleGenerator(&fakeCompleter{err: errors.New("quota exceeded")}, testLLMConfig())

	_, err := gen.Generate(context.Background(), "text")
	require.Error(t, err)
	assert.True(t, domain.IsUpstream(err))
}

func TestBundleGenerator_NonJSONResponse(t *testing.T) {
	gen := NewBundleGenerator(&fakeCompleter{response: "I cannot help with that."}, testLLMConfig())

	_, err := gen.Generate(context.Background(), "text")
	assert.True(t, domain.IsUpstream(err))
}

func TestBundleGenerator_MalformedJSON(t *testing.T) {
	gen := NewBundleGenerator(&fakeCompleter{response: `{"summary": 12}`}, testLLMConfig())

	_, err := gen.Generate(context.Background(), "text")
	assert.True(t, domain.IsUpstream(err))
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
		ok   bool
	}{
		{"plain", `{"a":1}`, `{"a":1}`, true},
		{"prose around", `Sure! {"a":1} Hope this helps`, `{"a":1}`, true},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`, true},
		{"think block", "<think>{nope}</think>{\"a\":2}", `{"a":2}`, true},
		{"none", "no json here", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractJSONObject(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMockBundleGenerator_ProducesConsistentBundle(t *testing.T) {
	content, err := MockBundleGenerator{}.Generate(context.Background(), "anything")
	require.NoError(t, err)

	b := domain.NormalizeBundle("id", content, nil)
	require.Len(t, b.Questions, 3)
	for i, q := range b.Questions {
		assert.Len(t, q.Options, 4)
		assert.Equal(t, content.Questions[i].Answer, q.Options[q.CorrectIndex])
	}
	assert.Len(t, b.Flashcards, 5)
}

func TestNewModel_UnknownProvider(t *testing.T) {
	_, err := NewModel(config.LLMConfig{Provider: "mock"})
	assert.Error(t, err)
}
