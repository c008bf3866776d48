package domain

import (
	"context"
	"fmt"
	"strings"
)

const (
	MaxBundleQuestions  = 3
	MaxBundleFlashcards = 10

	DefaultBloomLevel = "Remember"
	DefaultDifficulty = "intermediate"
)

// Bloom's taxonomy levels used by generated questions. The field stays an
// open string; these are the values the generator is asked for.
const (
	BloomRemember   = "Remember"
	BloomUnderstand = "Understand"
	BloomApply      = "Apply"
	BloomAnalyze    = "Analyze"
)

// Question is a multiple-choice question of a learning bundle.
type Question struct {
	Text         string   `json:"question" yaml:"question"`
	Options      []string `json:"options" yaml:"options"`
	CorrectIndex int      `json:"correct_option" yaml:"correct_option"`
	Explanation  string   `json:"explanation" yaml:"explanation"`
	BloomLevel   string   `json:"bloom_level" yaml:"bloom_level"`
}

// Flashcard is a front/back study card.
type Flashcard struct {
	Front    string `json:"front" yaml:"front"`
	Back     string `json:"back" yaml:"back"`
	Category string `json:"category,omitempty" yaml:"category,omitempty"`
}

// LearningBundle is the structured content produced from uploaded material.
type LearningBundle struct {
	ID                 string      `json:"id" yaml:"id"`
	Summary            string      `json:"summary" yaml:"summary"`
	LearningObjectives []string    `json:"learning_objectives" yaml:"learning_objectives"`
	KeyConcepts        []string    `json:"key_concepts" yaml:"key_concepts"`
	Questions          []Question  `json:"questions" yaml:"questions"`
	Flashcards         []Flashcard `json:"flashcards" yaml:"flashcards"`
	DifficultyLevel    string      `json:"difficulty_level" yaml:"difficulty_level"`
}

// GeneratedQuestion is a question as returned by a generator, before option
// shuffling and index assignment.
type GeneratedQuestion struct {
	Question    string   `json:"question"`
	Answer      string   `json:"answer"`
	BloomLevel  string   `json:"bloom_level"`
	Explanation string   `json:"explanation"`
	Options     []string `json:"options"`
}

// GeneratedContent is the raw payload of a BundleGenerator.
type GeneratedContent struct {
	Summary            string              `json:"summary"`
	LearningObjectives []string            `json:"learning_objectives"`
	KeyConcepts        []string            `json:"key_concepts"`
	Questions          []GeneratedQuestion `json:"questions"`
	Flashcards         []Flashcard         `json:"flashcards"`
	DifficultyLevel    string              `json:"difficulty_level"`
}

// BundleGenerator turns study text into raw learning content.
type BundleGenerator interface {
	Generate(ctx context.Context, text string) (*GeneratedContent, error)
}

// Transcriber converts recorded speech to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
}

// Captioner describes the content of an image in text.
type Captioner interface {
	Caption(ctx context.Context, image []byte, mimeType string) (string, error)
}

// ShuffleFunc matches rand.Shuffle.
type ShuffleFunc func(n int, swap func(i, j int))

// NormalizeBundle converts generator output into a LearningBundle whose
// question/option/correct-index triples are self-consistent.
func NormalizeBundle(id string, content *GeneratedContent, shuffle ShuffleFunc) *LearningBundle {
	b := &LearningBundle{
		ID:                 id,
		LearningObjectives: []string{},
		KeyConcepts:        []string{},
		Questions:          []Question{},
		Flashcards:         []Flashcard{},
		DifficultyLevel:    DefaultDifficulty,
	}
	if content == nil {
		return b
	}

	b.Summary = strings.TrimSpace(content.Summary)
	if content.LearningObjectives != nil {
		b.LearningObjectives = content.LearningObjectives
	}
	if content.KeyConcepts != nil {
		b.KeyConcepts = content.KeyConcepts
	}
	if d := strings.TrimSpace(content.DifficultyLevel); d != "" {
		b.DifficultyLevel = d
	}

	for i, gq := range content.Questions {
		if len(b.Questions) == MaxBundleQuestions {
			break
		}
		b.Questions = append(b.Questions, normalizeQuestion(i+1, gq, shuffle))
	}

	for _, fc := range content.Flashcards {
		if len(b.Flashcards) == MaxBundleFlashcards {
			break
		}
		if strings.TrimSpace(fc.Front) == "" && strings.TrimSpace(fc.Back) == "" {
			continue
		}
		b.Flashcards = append(b.Flashcards, fc)
	}
	return b
}

func normalizeQuestion(ordinal int, gq GeneratedQuestion, shuffle ShuffleFunc) Question {
	q := Question{
		Text:        gq.Question,
		Explanation: gq.Explanation,
		BloomLevel:  gq.BloomLevel,
	}
	if q.BloomLevel == "" {
		q.BloomLevel = DefaultBloomLevel
	}

	options := make([]string, 0, len(gq.Options)+1)
	options = append(options, gq.Options...)
	if len(options) == 0 {
		options = append(options,
			gq.Answer,
			fmt.Sprintf("Option B for question %d", ordinal),
			fmt.Sprintf("Option C for question %d", ordinal),
			fmt.Sprintf("Option D for question %d", ordinal),
		)
	} else if indexOf(options, gq.Answer) < 0 && gq.Answer != "" {
		options = append([]string{gq.Answer}, options...)
	}

	if shuffle != nil {
		shuffle(len(options), func(i, j int) { options[i], options[j] = options[j], options[i] })
	}

	q.Options = options
	q.CorrectIndex = indexOf(options, gq.Answer)
	if q.CorrectIndex < 0 {
		// No answer was generated: the first option after shuffling is
		// marked correct, which is an arbitrary pick.
		q.CorrectIndex = 0
	}
	return q
}

func indexOf(options []string, value string) int {
	for i, o := range options {
		if o == value {
			return i
		}
	}
	return -1
}
