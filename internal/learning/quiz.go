package learning

import (
	"context"
	"fmt"
	"strings"

	"microlearn/internal/domain"
	"microlearn/internal/util"
)

// QuizStatus is the state of a Quiz.
type QuizStatus int

const (
	QuizInProgress QuizStatus = iota
	QuizCompleted
)

func (s QuizStatus) String() string {
	switch s {
	case QuizInProgress:
		return "in_progress"
	case QuizCompleted:
		return "completed"
	default:
		return fmt.Sprintf("QuizStatus(%d)", int(s))
	}
}

// QuestionResult is the outcome of one answered question.
type QuestionResult struct {
	Ordinal   int
	Chosen    int
	Correct   int
	IsCorrect bool
}

// Quiz walks a learner through the questions of a bundle in order.
// Ordinals are 1-based.
type Quiz struct {
	sessionID string
	quizKey   string
	questions []domain.Question
	reporter  ProgressReporter

	status  QuizStatus
	current int
	answers map[int]int
	results map[int]QuestionResult
	score   int
}

// NewQuiz keeps only usable questions: non-empty text, at least one option and
// a correct index inside the options. A quiz without usable questions starts
// completed with a score of 0/0.
func NewQuiz(sessionID, quizKey string, questions []domain.Question, reporter ProgressReporter) *Quiz {
	usable := make([]domain.Question, 0, len(questions))
	for _, q := range questions {
		if strings.TrimSpace(q.Text) == "" || len(q.Options) == 0 {
			continue
		}
		if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
			continue
		}
		usable = append(usable, q)
	}

	quiz := &Quiz{
		sessionID: sessionID,
		quizKey:   quizKey,
		questions: usable,
		reporter:  reporter,
	}
	quiz.reset()
	return quiz
}

func (q *Quiz) reset() {
	q.answers = make(map[int]int)
	q.results = make(map[int]QuestionResult)
	q.score = 0
	if len(q.questions) == 0 {
		q.status = QuizCompleted
		q.current = 0
		return
	}
	q.status = QuizInProgress
	q.current = 1
}

func (q *Quiz) Status() QuizStatus { return q.status }

// Total is the number of usable questions.
func (q *Quiz) Total() int { return len(q.questions) }

// CurrentOrdinal is 0 once the quiz is completed.
func (q *Quiz) CurrentOrdinal() int {
	if q.status == QuizCompleted {
		return 0
	}
	return q.current
}

// Current returns the question awaiting an answer.
func (q *Quiz) Current() (domain.Question, bool) {
	if q.status == QuizCompleted {
		return domain.Question{}, false
	}
	return q.questions[q.current-1], true
}

// Answer records option for the question at ordinal, which must be the current one.
func (q *Quiz) Answer(ctx context.Context, ordinal, option int) error {
	if q.status == QuizCompleted {
		return domain.NewValidationError("quiz is already completed")
	}
	if ordinal != q.current {
		return domain.NewValidationError(fmt.Sprintf("question %d is not the current question", ordinal)).
			WithContext("current", q.current)
	}
	question := q.questions[q.current-1]
	if option < 0 || option >= len(question.Options) {
		return domain.NewOutOfRangeError("option", option, 0, len(question.Options)-1)
	}

	q.answers[ordinal] = option
	if q.current < len(q.questions) {
		q.current++
		return nil
	}
	q.complete(ctx)
	return nil
}

func (q *Quiz) complete(ctx context.Context) {
	q.score = 0
	for i, question := range q.questions {
		ordinal := i + 1
		chosen := q.answers[ordinal]
		res := QuestionResult{
			Ordinal:   ordinal,
			Chosen:    chosen,
			Correct:   question.CorrectIndex,
			IsCorrect: chosen == question.CorrectIndex,
		}
		if res.IsCorrect {
			q.score++
		}
		q.results[ordinal] = res
	}
	q.status = QuizCompleted
	q.current = 0

	reportQuiz(ctx, q.reporter, q.sessionID, q.quizKey, float64(q.Percent()))
}

// Score is the number of correct answers. Meaningful once completed.
func (q *Quiz) Score() int { return q.score }

// Percent is round(100*score/total), 0 for an empty quiz.
func (q *Quiz) Percent() int { return util.RoundPercent(q.score, len(q.questions)) }

// Answers returns a copy of the choices made so far, keyed by ordinal.
func (q *Quiz) Answers() map[int]int {
	out := make(map[int]int, len(q.answers))
	for k, v := range q.answers {
		out[k] = v
	}
	return out
}

// Results returns a copy of the per-question outcome, keyed by ordinal.
func (q *Quiz) Results() map[int]QuestionResult {
	out := make(map[int]QuestionResult, len(q.results))
	for k, v := range q.results {
		out[k] = v
	}
	return out
}

// Retake discards all answers and starts again at the first question.
func (q *Quiz) Retake() {
	q.reset()
}
