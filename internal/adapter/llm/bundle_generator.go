package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"microlearn/internal/config"
	"microlearn/internal/domain"
	"microlearn/internal/logger"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
)

// Completer is the subset of a langchaingo model used for bundle generation.
type Completer interface {
	Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error)
}

const systemPrompt = `You are an expert educational content creator specializing in microlearning and Bloom's Taxonomy.

Create comprehensive learning content from the provided text. Respond with ONLY a JSON object in the following format:
{
  "summary": "concise summary of the content",
  "learning_objectives": ["list of 3-4 clear learning objectives"],
  "questions": [
    {
      "question": "question text",
      "answer": "correct answer",
      "options": ["four answer options, one of them exactly equal to the answer"],
      "bloom_level": "Remember|Understand|Apply|Analyze",
      "explanation": "brief explanation of why this answer is correct"
    }
  ],
  "flashcards": [
    {
      "front": "question or concept",
      "back": "answer or explanation",
      "category": "key concept|definition|example|application"
    }
  ],
  "key_concepts": ["list of 5-7 key concepts from the content"],
  "difficulty_level": "beginner|intermediate|advanced"
}

Rules:
1. Produce exactly three questions, one each for Remember, Understand and Apply
2. Every question has four options and exactly one of them is the answer
3. Make flashcards diverse and useful for learning, at most ten`

var codeFence = regexp.MustCompile("(?i)^```(?:json)?\\s*|\\s*```$")

// BundleGenerator asks an LLM for a learning bundle as JSON.
type BundleGenerator struct {
	model       Completer
	temperature float64
	maxTokens   int
	timeout     time.Duration
}

// NewBundleGenerator wraps model. Zero options fall back to sane defaults.
func NewBundleGenerator(model Completer, cfg config.LLMConfig) *BundleGenerator {
	g := &BundleGenerator{
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		timeout:     cfg.Timeout,
	}
	if g.maxTokens <= 0 {
		g.maxTokens = 2000
	}
	if g.timeout <= 0 {
		g.timeout = 60 * time.Second
	}
	return g
}

// NewModel builds the langchaingo model selected by cfg.Provider.
func NewModel(cfg config.LLMConfig) (Completer, error) {
	switch cfg.Provider {
	case "openai":
		return openai.New(openai.WithToken(cfg.APIKey), openai.WithModel(cfg.Model))
	case "ollama":
		httpClient := &http.Client{Timeout: cfg.Timeout}
		return ollama.New(
			ollama.WithServerURL(cfg.ServerURL),
			ollama.WithModel(cfg.Model),
			ollama.WithHTTPClient(httpClient),
		)
	default:
		return nil, fmt.Errorf("no LLM model for provider %q", cfg.Provider)
	}
}

// Generate implements domain.BundleGenerator.
func (g *BundleGenerator) Generate(ctx context.Context, text string) (*domain.GeneratedContent, error) {
	l := logger.Get()
	prompt := fmt.Sprintf("%s\n\nHere is the educational content:\n\"\"\"\n%s\n\"\"\"\n", systemPrompt, text)

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	raw, err := g.model.Call(ctx, prompt,
		llms.WithTemperature(g.temperature),
		llms.WithMaxTokens(g.maxTokens),
	)
	if err != nil {
		l.Error("LLM call failed during bundle generation", zap.Error(err), zap.Int("input_length", len(text)))
		return nil, domain.NewUpstreamError("Failed to generate learning content", err)
	}
	l.Debug("Raw LLM response received", zap.String("raw_response", raw))

	jsonStr, ok := ExtractJSONObject(raw)
	if !ok {
		l.Error("No JSON object found in LLM response", zap.String("raw_response", raw))
		return nil, domain.NewUpstreamError("Learning content response was not JSON", fmt.Errorf("no JSON object in response"))
	}

	var content domain.GeneratedContent
	if err := json.Unmarshal([]byte(jsonStr), &content); err != nil {
		l.Error("Failed to unmarshal LLM response", zap.Error(err), zap.String("json", jsonStr))
		return nil, domain.NewUpstreamError("Learning content response was malformed", err)
	}

	l.Info("Generated learning content",
		zap.Int("questions", len(content.Questions)),
		zap.Int("flashcards", len(content.Flashcards)))
	return &content, nil
}

// ExtractJSONObject strips reasoning blocks and code fences, then returns the
// text between the first '{' and the last '}'.
func ExtractJSONObject(raw string) (string, bool) {
	s := strings.TrimSpace(raw)

	if thinkStart := strings.Index(s, "<think>"); thinkStart != -1 {
		if thinkEnd := strings.Index(s, "</think>"); thinkEnd > thinkStart {
			s = strings.TrimSpace(s[:thinkStart] + s[thinkEnd+len("</think>"):])
		}
	}
	if strings.HasPrefix(s, "```") {
		s = strings.TrimSpace(codeFence.ReplaceAllString(s, ""))
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

var _ domain.BundleGenerator = (*BundleGenerator)(nil)
