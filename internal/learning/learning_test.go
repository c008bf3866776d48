package learning

import (
	"context"
	"errors"
	"testing"

	"microlearn/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type quizReport struct {
	sessionID, quizKey string
	percent            float64
}

type cardReport struct {
	sessionID, cardKey string
	known              bool
}

type recordingReporter struct {
	quizzes []quizReport
	cards   []cardReport
	err     error
}

func (r *recordingReporter) ReportQuizResult(_ context.Context, sessionID, quizKey string, percent float64) error {
	r.quizzes = append(r.quizzes, quizReport{sessionID, quizKey, percent})
	return r.err
}

func (r *recordingReporter) ReportFlashcardReview(_ context.Context, sessionID, cardKey string, known bool) error {
	r.cards = append(r.cards, cardReport{sessionID, cardKey, known})
	return r.err
}

func threeQuestions() []domain.Question {
	return []domain.Question{
		{Text: "Q1", Options: []string{"a", "b", "c", "d"}, CorrectIndex: 0},
		{Text: "Q2", Options: []string{"a", "b", "c", "d"}, CorrectIndex: 2},
		{Text: "Q3", Options: []string{"a", "b", "c", "d"}, CorrectIndex: 3},
	}
}

func TestQuiz_CorrectWrongCorrect(t *testing.T) {
	ctx := context.Background()
	rep := &recordingReporter{}
	quiz := NewQuiz("s1", "bundle-1", threeQuestions(), rep)

	assert.Equal(t, QuizInProgress, quiz.Status())
	assert.Equal(t, 1, quiz.CurrentOrdinal())

	require.NoError(t, quiz.Answer(ctx, 1, 0))
	require.NoError(t, quiz.Answer(ctx, 2, 1))
	assert.Empty(t, rep.quizzes)
	require.NoError(t, quiz.Answer(ctx, 3, 3))

	assert.Equal(t, QuizCompleted, quiz.Status())
	assert.Equal(t, 2, quiz.Score())
	assert.Equal(t, 67, quiz.Percent())
	results := quiz.Results()
	assert.True(t, results[1].IsCorrect)
	assert.False(t, results[2].IsCorrect)
	assert.Equal(t, 2, results[2].Correct)
	assert.True(t, results[3].IsCorrect)

	require.Len(t, rep.quizzes, 1)
	assert.Equal(t, quizReport{"s1", "bundle-1", 67}, rep.quizzes[0])
}

func TestQuiz_AnswerMustTargetCurrentQuestion(t *testing.T) {
	ctx := context.Background()
	quiz := NewQuiz("s1", "q", threeQuestions(), nil)

	assert.True(t, domain.IsValidation(quiz.Answer(ctx, 2, 0)))
	assert.True(t, domain.IsOutOfRange(quiz.Answer(ctx, 1, 4)))
	assert.True(t, domain.IsOutOfRange(quiz.Answer(ctx, 1, -1)))
	assert.Equal(t, 1, quiz.CurrentOrdinal())
	assert.Empty(t, quiz.Answers())

	require.NoError(t, quiz.Answer(ctx, 1, 0))
	assert.True(t, domain.IsValidation(quiz.Answer(ctx, 1, 0)))
}

func TestQuiz_AnswerAfterCompletion(t *testing.T) {
	ctx := context.Background()
	quiz := NewQuiz("s1", "q", threeQuestions()[:1], nil)
	require.NoError(t, quiz.Answer(ctx, 1, 0))
	assert.True(t, domain.IsValidation(quiz.Answer(ctx, 1, 0)))
	_, ok := quiz.Current()
	assert.False(t, ok)
}

func TestQuiz_SkipsMalformedQuestions(t *testing.T) {
	questions := append(threeQuestions(),
		domain.Question{Text: "", Options: []string{"a"}},
		domain.Question{Text: "no options"},
		domain.Question{Text: "bad index", Options: []string{"a"}, CorrectIndex: 3},
	)
	quiz := NewQuiz("s1", "q", questions, nil)
	assert.Equal(t, 3, quiz.Total())
}

func TestQuiz_EmptyStartsCompletedAndNeverReports(t *testing.T) {
	rep := &recordingReporter{}
	quiz := NewQuiz("s1", "q", []domain.Question{{Text: "broken"}}, rep)

	assert.Equal(t, QuizCompleted, quiz.Status())
	assert.Equal(t, 0, quiz.Score())
	assert.Equal(t, 0, quiz.Percent())
	assert.True(t, domain.IsValidation(quiz.Answer(context.Background(), 1, 0)))

	quiz.Retake()
	assert.Equal(t, QuizCompleted, quiz.Status())
	assert.Empty(t, rep.quizzes)
}

func TestQuiz_ReporterFailureKeepsCompletion(t *testing.T) {
	ctx := context.Background()
	rep := &recordingReporter{err: errors.New("server down")}
	quiz := NewQuiz("s1", "q", threeQuestions(), rep)

	for i := 1; i <= 3; i++ {
		require.NoError(t, quiz.Answer(ctx, i, 0))
	}
	assert.Equal(t, QuizCompleted, quiz.Status())
	assert.Equal(t, 1, quiz.Score())
	assert.Len(t, rep.quizzes, 1)
}

func TestQuiz_Retake(t *testing.T) {
	ctx := context.Background()
	rep := &recordingReporter{}
	quiz := NewQuiz("s1", "q", threeQuestions(), rep)
	for i := 1; i <= 3; i++ {
		require.NoError(t, quiz.Answer(ctx, i, 1))
	}

	quiz.Retake()
	assert.Equal(t, QuizInProgress, quiz.Status())
	assert.Equal(t, 1, quiz.CurrentOrdinal())
	assert.Empty(t, quiz.Answers())
	assert.Empty(t, quiz.Results())

	require.NoError(t, quiz.Answer(ctx, 1, 0))
	require.NoError(t, quiz.Answer(ctx, 2, 2))
	require.NoError(t, quiz.Answer(ctx, 3, 3))
	assert.Equal(t, 100, quiz.Percent())
	require.Len(t, rep.quizzes, 2)
	assert.Equal(t, 0.0, rep.quizzes[0].percent)
	assert.Equal(t, 100.0, rep.quizzes[1].percent)
}

func deck(n int) []domain.Flashcard {
	cards := make([]domain.Flashcard, n)
	for i := range cards {
		cards[i] = domain.Flashcard{Front: string(rune('A' + i)), Back: "back"}
	}
	return cards
}

func TestNavigator_JumpToFreeNavigation(t *testing.T) {
	const n = 5
	for start := 0; start < n; start++ {
		for target := 0; target < n; target++ {
			nav := NewNavigator("s1", "deck", deck(n), nil)
			require.NoError(t, nav.JumpTo(start))
			nav.Reveal()
			require.NoError(t, nav.JumpTo(target))
			assert.Equal(t, target, nav.Index())
			assert.False(t, nav.Revealed())
		}
	}

	nav := NewNavigator("s1", "deck", deck(n), nil)
	assert.True(t, domain.IsOutOfRange(nav.JumpTo(n)))
	assert.True(t, domain.IsOutOfRange(nav.JumpTo(-1)))
	assert.Equal(t, 0, nav.Index())
}

func TestNavigator_NextPreviousClamp(t *testing.T) {
	nav := NewNavigator("s1", "deck", deck(3), nil)
	nav.Previous()
	assert.Equal(t, 0, nav.Index())

	nav.Next()
	nav.Next()
	nav.Next()
	assert.Equal(t, 2, nav.Index())

	nav.Reveal()
	nav.Next()
	assert.True(t, nav.Revealed(), "no-op move keeps the card revealed")

	nav.Previous()
	assert.Equal(t, 1, nav.Index())
	assert.False(t, nav.Revealed())
}

func TestNavigator_RevealHideToggle(t *testing.T) {
	nav := NewNavigator("s1", "deck", deck(2), nil)
	nav.Toggle()
	assert.True(t, nav.Revealed())
	nav.Toggle()
	assert.False(t, nav.Revealed())
	nav.Reveal()
	nav.Hide()
	assert.False(t, nav.Revealed())
}

func TestNavigator_Review(t *testing.T) {
	ctx := context.Background()
	rep := &recordingReporter{}
	nav := NewNavigator("s1", "01HBUNDLE", deck(2), rep)

	assert.True(t, domain.IsValidation(nav.Review(ctx, true)))
	assert.Empty(t, rep.cards)

	nav.Reveal()
	require.NoError(t, nav.Review(ctx, true))
	assert.Equal(t, 1, nav.Index())
	assert.False(t, nav.Revealed())

	nav.Reveal()
	require.NoError(t, nav.Review(ctx, false))
	assert.Equal(t, 1, nav.Index(), "review on the last card does not wrap")
	assert.False(t, nav.Revealed())

	assert.Equal(t, []cardReport{
		{"s1", "01HBUNDLE:0", true},
		{"s1", "01HBUNDLE:1", false},
	}, rep.cards)
}

func TestNavigator_ReviewReporterFailure(t *testing.T) {
	nav := NewNavigator("s1", "d", deck(2), &recordingReporter{err: errors.New("offline")})
	nav.Reveal()
	require.NoError(t, nav.Review(context.Background(), true))
	assert.Equal(t, 1, nav.Index())
}

func TestNavigator_Shuffle(t *testing.T) {
	nav := NewNavigator("s1", "d", deck(4), nil).WithRandom(func(n int) int { return n - 1 })
	nav.Reveal()
	nav.Shuffle()
	assert.Equal(t, 3, nav.Index())
	assert.False(t, nav.Revealed())

	seen := map[int]bool{}
	shuffled := NewNavigator("s1", "d", deck(4), nil)
	for i := 0; i < 200; i++ {
		shuffled.Shuffle()
		require.GreaterOrEqual(t, shuffled.Index(), 0)
		require.Less(t, shuffled.Index(), 4)
		seen[shuffled.Index()] = true
	}
	assert.Len(t, seen, 4)
}

func TestNavigator_EmptyDeck(t *testing.T) {
	nav := NewNavigator("s1", "d", nil, nil)
	nav.Next()
	nav.Previous()
	nav.Shuffle()
	nav.Toggle()
	_, ok := nav.Current()
	assert.False(t, ok)
	assert.Equal(t, 0, nav.Index())
	assert.True(t, domain.IsOutOfRange(nav.JumpTo(0)))
	assert.True(t, domain.IsValidation(nav.Review(context.Background(), true)))
}
