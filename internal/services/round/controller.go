package round

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/rtowner/charguess/internal/model"
	"github.com/rtowner/charguess/internal/services/catalog"
	"github.com/rtowner/charguess/internal/services/ledger"
)

// Config holds round state machine settings
type Config struct {
	// MessageThreshold is the group message count that forces a rotation
	MessageThreshold int
}

// GuessOutcome is the result variant of a guess evaluation
type GuessOutcome string

const (
	OutcomeMatch   GuessOutcome = "match"
	OutcomeNoMatch GuessOutcome = "no_match"
	OutcomeNoRound GuessOutcome = "no_round"
)

// GuessResult describes the evaluation of one guess
type GuessResult struct {
	Outcome      GuessOutcome
	Character    *model.Character   // Matched character, on a match
	Award        *ledger.GuessAward // Credit applied, on a match
	Next         *model.Character   // Newly drawn character, nil when the pool is empty
	RedrawFailed bool               // Next is nil because the draw errored, not because the pool is empty
	Hint         string             // Partial name reveal, on a miss
}

// convRound is the mutable round state for a single conversation. All
// read-then-write sequences against it run under its mutex, so resolving a
// guess and replacing the active character is atomic per conversation.
type convRound struct {
	mu           sync.Mutex
	character    *model.Character
	revealCursor int
	messageCount int
}

// Controller owns the active round of every conversation: it selects and
// rotates the presented character, evaluates guesses, and credits winners
// through the ledger.
type Controller struct {
	catalog *catalog.Service
	ledger  *ledger.Service
	cfg     Config
	logger  *slog.Logger

	mu     sync.Mutex
	rounds map[model.ConversationID]*convRound
}

// NewController creates a new round Controller
func NewController(cat *catalog.Service, led *ledger.Service, cfg Config, logger *slog.Logger) *Controller {
	return &Controller{
		catalog: cat,
		ledger:  led,
		cfg:     cfg,
		logger:  logger,
		rounds:  make(map[model.ConversationID]*convRound),
	}
}

// round returns the state for a conversation, creating it on first use
func (c *Controller) round(convID model.ConversationID) *convRound {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.rounds[convID]
	if !ok {
		r = &convRound{}
		c.rounds[convID] = r
	}
	return r
}

// Snapshot returns a read-only view of a conversation's round state
func (c *Controller) Snapshot(convID model.ConversationID) model.RoundSnapshot {
	r := c.round(convID)
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := model.RoundSnapshot{
		State:        model.RoundStateIdle,
		RevealCursor: r.revealCursor,
		MessageCount: r.messageCount,
	}
	if r.character != nil {
		ch := *r.character
		snap.State = model.RoundStateActive
		snap.Character = &ch
	}
	return snap
}

// Tick records one inbound message for the conversation. The rolling counter
// increments only for group-scoped conversations; when it reaches the
// configured threshold a rotation is forced regardless of current state.
// Returns the newly drawn character when a rotation happened (nil character
// with rotated=true means the pool was empty and the round went idle).
func (c *Controller) Tick(ctx context.Context, convID model.ConversationID, isGroup bool) (*model.Character, bool, error) {
	if !isGroup {
		return nil, false, nil
	}

	r := c.round(convID)
	r.mu.Lock()
	defer r.mu.Unlock()

	r.messageCount++
	if r.messageCount < c.cfg.MessageThreshold {
		return nil, false, nil
	}
	r.messageCount = 0

	character, err := c.rotateLocked(ctx, convID, r)
	if err != nil {
		return nil, false, err
	}
	return character, true, nil
}

// StartRound forces a new draw for the conversation, replacing any active
// character. Exposed for operator tooling; the chat flow rotates rounds on
// the message counter instead.
func (c *Controller) StartRound(ctx context.Context, convID model.ConversationID) (*model.Character, error) {
	r := c.round(convID)
	r.mu.Lock()
	defer r.mu.Unlock()

	character, err := c.rotateLocked(ctx, convID, r)
	if err != nil {
		return nil, err
	}
	if character == nil {
		return nil, model.ErrEmptyPool
	}
	return character, nil
}

// rotateLocked draws a new character and resets the reveal cursor. The
// caller must hold the round's mutex. An empty pool clears the round.
func (c *Controller) rotateLocked(ctx context.Context, convID model.ConversationID, r *convRound) (*model.Character, error) {
	character, err := c.catalog.Draw(ctx)
	if err != nil {
		if errors.Is(err, model.ErrEmptyPool) {
			r.character = nil
			r.revealCursor = 0
			return nil, nil
		}
		return nil, err
	}

	r.character = character
	r.revealCursor = 0

	c.logger.Info("round started",
		slog.String("conversation_id", string(convID)),
		slog.Int64("character_id", character.ID),
		slog.String("rarity", character.Rarity),
	)

	ch := *character
	return &ch, nil
}

// EvaluateGuess scores a guess against the conversation's active character.
//
// Matching is substring containment: the trimmed, lowercased guess must
// appear inside the lowercased full name. On a match the winner is credited
// and the next character is drawn immediately, all under the conversation
// lock. Exactly one concurrent guess can win a round, and a guess
// addressed to an already-resolved round is scored against the replacement.
// On a miss one more character of the name is revealed; the reveal cursor
// never rewinds.
func (c *Controller) EvaluateGuess(ctx context.Context, convID model.ConversationID, userID model.UserID, rawText string) (*GuessResult, error) {
	guess := strings.ToLower(strings.TrimSpace(rawText))

	r := c.round(convID)
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.character == nil {
		return &GuessResult{Outcome: OutcomeNoRound}, nil
	}
	if guess == "" {
		return &GuessResult{Outcome: OutcomeNoMatch, Hint: hint(r.character.Name, r.revealCursor)}, nil
	}

	name := strings.ToLower(strings.TrimSpace(r.character.Name))
	if !strings.Contains(name, guess) {
		if r.revealCursor < len([]rune(r.character.Name))-1 {
			r.revealCursor++
		}
		return &GuessResult{Outcome: OutcomeNoMatch, Hint: hint(r.character.Name, r.revealCursor)}, nil
	}

	matched := r.character

	award, err := c.ledger.AwardGuess(ctx, userID)
	if err != nil {
		// Round stays active and unresolved; the guesser can retry
		return nil, err
	}

	c.logger.Info("guess matched",
		slog.String("conversation_id", string(convID)),
		slog.String("user_id", string(userID)),
		slog.Int64("character_id", matched.ID),
		slog.Int64("coins", award.Coins),
	)

	next, err := c.rotateLocked(ctx, convID, r)
	if err != nil {
		// Credit already applied; the round goes idle
		c.logger.Error("redraw after match failed",
			slog.String("conversation_id", string(convID)),
			slog.String("error", err.Error()),
		)
		r.character = nil
		r.revealCursor = 0
		return &GuessResult{Outcome: OutcomeMatch, Character: matched, Award: award, RedrawFailed: true}, nil
	}

	return &GuessResult{
		Outcome:   OutcomeMatch,
		Character: matched,
		Award:     award,
		Next:      next,
	}, nil
}

// hint renders a partial reveal of the name: the first cursor characters
// disclosed left-to-right, the rest padded with a placeholder. Spaces stay
// visible so the word shape is preserved.
func hint(name string, cursor int) string {
	runes := []rune(name)
	var b strings.Builder
	for i, r := range runes {
		switch {
		case i < cursor:
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune(' ')
		default:
			b.WriteRune('▫')
		}
	}
	return b.String()
}
