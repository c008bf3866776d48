package learning

import (
	"context"
	"fmt"
	"math/rand/v2"

	"microlearn/internal/domain"
)

// Navigator is a cursor over a flashcard deck with a reveal flag.
type Navigator struct {
	sessionID string
	deckKey   string
	cards     []domain.Flashcard
	reporter  ProgressReporter
	intn      func(n int) int

	cursor   int
	revealed bool
}

// NewNavigator starts at the first card with its back hidden.
func NewNavigator(sessionID, deckKey string, cards []domain.Flashcard, reporter ProgressReporter) *Navigator {
	return &Navigator{
		sessionID: sessionID,
		deckKey:   deckKey,
		cards:     cards,
		reporter:  reporter,
		intn:      rand.IntN,
	}
}

// WithRandom replaces the random source used by Shuffle.
func (n *Navigator) WithRandom(intn func(n int) int) *Navigator {
	n.intn = intn
	return n
}

func (n *Navigator) Len() int       { return len(n.cards) }
func (n *Navigator) Index() int     { return n.cursor }
func (n *Navigator) Revealed() bool { return n.revealed }

// Current returns the card under the cursor. It reports false for an empty deck.
func (n *Navigator) Current() (domain.Flashcard, bool) {
	if len(n.cards) == 0 {
		return domain.Flashcard{}, false
	}
	return n.cards[n.cursor], true
}

// CardKey identifies the card at index within the session.
func (n *Navigator) CardKey(index int) string {
	return fmt.Sprintf("%s:%d", n.deckKey, index)
}

// Next stays on the last card.
func (n *Navigator) Next() {
	if n.cursor < len(n.cards)-1 {
		n.moveTo(n.cursor + 1)
	}
}

// Previous stays on the first card.
func (n *Navigator) Previous() {
	if n.cursor > 0 {
		n.moveTo(n.cursor - 1)
	}
}

func (n *Navigator) JumpTo(index int) error {
	if index < 0 || index >= len(n.cards) {
		return domain.NewOutOfRangeError("index", index, 0, len(n.cards)-1)
	}
	n.moveTo(index)
	return nil
}

// Shuffle jumps to a uniformly chosen card.
func (n *Navigator) Shuffle() {
	if len(n.cards) == 0 {
		return
	}
	n.moveTo(n.intn(len(n.cards)))
}

func (n *Navigator) Reveal() { n.revealed = true }
func (n *Navigator) Hide()   { n.revealed = false }
func (n *Navigator) Toggle() { n.revealed = !n.revealed }

// Review records whether the learner knew the revealed card, then advances.
func (n *Navigator) Review(ctx context.Context, known bool) error {
	if len(n.cards) == 0 {
		return domain.NewValidationError("deck has no cards")
	}
	if !n.revealed {
		return domain.NewValidationError("reveal the card before reviewing it")
	}

	reportFlashcard(ctx, n.reporter, n.sessionID, n.CardKey(n.cursor), known)
	n.Next()
	n.revealed = false
	return nil
}

func (n *Navigator) moveTo(index int) {
	n.cursor = index
	n.revealed = false
}
