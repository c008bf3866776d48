// Package tui is the terminal study session: a summary page, the quiz and the
// flashcard deck of one learning bundle.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"microlearn/internal/domain"
	"microlearn/internal/learning"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type tabID int

const (
	tabSummary tabID = iota
	tabQuiz
	tabCards
	tabCount
)

var tabLabels = [tabCount]string{"Summary", "Quiz", "Flashcards"}

// Model is the root Bubble Tea model of a study session.
type Model struct {
	ctx       context.Context
	sessionID string
	bundle    *domain.LearningBundle
	quiz      *learning.Quiz
	cards     *learning.Navigator
	now       func() time.Time

	started   time.Time
	activeTab tabID
	status    string
	width     int
}

// Option customises a Model.
type Option func(*Model)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Model) { m.now = now }
}

// WithRandom replaces the random source of the flashcard shuffle.
func WithRandom(intn func(n int) int) Option {
	return func(m *Model) { m.cards.WithRandom(intn) }
}

// NewModel builds a study session over bundle. Quiz completions and card
// reviews go to reporter.
func NewModel(ctx context.Context, sessionID string, bundle *domain.LearningBundle, reporter learning.ProgressReporter, opts ...Option) *Model {
	if reporter == nil {
		reporter = learning.NopReporter{}
	}
	m := &Model{
		ctx:       ctx,
		sessionID: sessionID,
		bundle:    bundle,
		quiz:      learning.NewQuiz(sessionID, bundle.ID, bundle.Questions, reporter),
		cards:     learning.NewNavigator(sessionID, bundle.ID, bundle.Flashcards, reporter),
		now:       time.Now,
		status:    "ready",
	}
	for _, opt := range opts {
		opt(m)
	}
	m.started = m.now()
	return m
}

// Elapsed is the wall time spent in the session so far.
func (m *Model) Elapsed() time.Duration {
	return m.now().Sub(m.started)
}

// Quiz exposes the quiz state, mainly for the final report.
func (m *Model) Quiz() *learning.Quiz { return m.quiz }

// Cards exposes the flashcard navigator.
func (m *Model) Cards() *learning.Navigator { return m.cards }

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab + tabCount - 1) % tabCount
			return m, nil
		}

		switch m.activeTab {
		case tabQuiz:
			m.updateQuiz(msg.String())
		case tabCards:
			m.updateCards(msg.String())
		}
	}
	return m, nil
}

func (m *Model) updateQuiz(key string) {
	if m.quiz.Status() == learning.QuizCompleted {
		if key == "r" {
			m.quiz.Retake()
			m.status = "quiz restarted"
		}
		return
	}

	option, ok := optionForKey(key)
	if !ok {
		return
	}
	if err := m.quiz.Answer(m.ctx, m.quiz.CurrentOrdinal(), option); err != nil {
		m.status = err.Error()
		return
	}
	if m.quiz.Status() == learning.QuizCompleted {
		m.status = fmt.Sprintf("quiz completed: %d/%d (%d%%)", m.quiz.Score(), m.quiz.Total(), m.quiz.Percent())
		return
	}
	m.status = fmt.Sprintf("answered, question %d of %d", m.quiz.CurrentOrdinal(), m.quiz.Total())
}

// optionForKey maps 1-9 and a-i to option indexes.
func optionForKey(key string) (int, bool) {
	if len(key) != 1 {
		return 0, false
	}
	switch c := key[0]; {
	case c >= '1' && c <= '9':
		return int(c - '1'), true
	case c >= 'a' && c <= 'i':
		return int(c - 'a'), true
	}
	return 0, false
}

func (m *Model) updateCards(key string) {
	if m.cards.Len() == 0 {
		return
	}
	switch key {
	case " ", "enter":
		m.cards.Toggle()
	case "right", "l":
		m.cards.Next()
	case "left", "h":
		m.cards.Previous()
	case "s":
		m.cards.Shuffle()
		m.status = "jumped to a random card"
	case "y", "n":
		if err := m.cards.Review(m.ctx, key == "y"); err != nil {
			m.status = err.Error()
			return
		}
		if key == "y" {
			m.status = "marked as known"
		} else {
			m.status = "marked for review"
		}
	}
}

func (m *Model) View() string {
	var body string
	switch m.activeTab {
	case tabSummary:
		body = m.viewSummary()
	case tabQuiz:
		body = m.viewQuiz()
	case tabCards:
		body = m.viewCards()
	}

	width := m.width - 6
	if width < 40 {
		width = 72
	}
	return appStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		m.renderTabBar(),
		paneStyle.Width(width).Render(body),
		m.renderStatusBar(),
	))
}

func (m *Model) renderTabBar() string {
	tabs := make([]string, 0, tabCount)
	for i, label := range tabLabels {
		if tabID(i) == m.activeTab {
			tabs = append(tabs, tabActiveStyle.Render(label))
		} else {
			tabs = append(tabs, tabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m *Model) renderStatusBar() string {
	elapsed := m.Elapsed().Truncate(time.Second)
	left := mutedStyle.Render(fmt.Sprintf("session %s  %s", m.sessionID, elapsed))
	return lipgloss.JoinVertical(lipgloss.Left,
		left+"  "+hotStyle.Render(m.status),
		mutedStyle.Render("tab switch · q quit"),
	)
}

func (m *Model) viewSummary() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Summary"))
	b.WriteString("\n")
	b.WriteString(m.bundle.Summary)
	b.WriteString("\n")
	writeList(&b, "Learning objectives", m.bundle.LearningObjectives)
	writeList(&b, "Key concepts", m.bundle.KeyConcepts)
	if m.bundle.DifficultyLevel != "" {
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render("Difficulty: " + m.bundle.DifficultyLevel))
	}
	return b.String()
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString("\n")
	b.WriteString(titleStyle.Render(title))
	for _, item := range items {
		b.WriteString("\n  • ")
		b.WriteString(item)
	}
	b.WriteString("\n")
}

func (m *Model) viewQuiz() string {
	if m.quiz.Total() == 0 {
		return mutedStyle.Render("This bundle has no quiz questions.")
	}
	if m.quiz.Status() == learning.QuizCompleted {
		return m.viewQuizResults()
	}

	question, _ := m.quiz.Current()
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Question %d of %d", m.quiz.CurrentOrdinal(), m.quiz.Total())))
	b.WriteString("\n")
	b.WriteString(question.Text)
	b.WriteString("\n\n")
	for i, opt := range question.Options {
		fmt.Fprintf(&b, "  %c) %s\n", 'a'+i, opt)
	}
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("a-d or 1-4 to answer"))
	return b.String()
}

func (m *Model) viewQuizResults() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Score %d/%d (%d%%)", m.quiz.Score(), m.quiz.Total(), m.quiz.Percent())))
	b.WriteString("\n")

	results := m.quiz.Results()
	for ordinal := 1; ordinal <= m.quiz.Total(); ordinal++ {
		res := results[ordinal]
		mark := correctStyle.Render("✓")
		if !res.IsCorrect {
			mark = wrongStyle.Render("✗")
		}
		fmt.Fprintf(&b, "\n%s Question %d: answered %c, correct %c", mark, ordinal, 'a'+res.Chosen, 'a'+res.Correct)
	}
	b.WriteString("\n\n")
	b.WriteString(mutedStyle.Render("r retake"))
	return b.String()
}

func (m *Model) viewCards() string {
	card, ok := m.cards.Current()
	if !ok {
		return mutedStyle.Render("This bundle has no flashcards.")
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Card %d of %d", m.cards.Index()+1, m.cards.Len())))
	if card.Category != "" {
		b.WriteString("  ")
		b.WriteString(mutedStyle.Render(card.Category))
	}
	b.WriteString("\n")

	face := card.Front
	if m.cards.Revealed() {
		face = card.Back
	}
	b.WriteString(cardStyle.Render(face))
	b.WriteString("\n")
	if m.cards.Revealed() {
		b.WriteString(mutedStyle.Render("y knew it · n review again · space flip"))
	} else {
		b.WriteString(mutedStyle.Render("space flip · ←/→ move · s random card"))
	}
	return b.String()
}
