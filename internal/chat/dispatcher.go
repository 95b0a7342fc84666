package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/rtowner/charguess/internal/model"
	"github.com/rtowner/charguess/internal/services/access"
	"github.com/rtowner/charguess/internal/services/catalog"
	"github.com/rtowner/charguess/internal/services/leaderboard"
	"github.com/rtowner/charguess/internal/services/ledger"
	"github.com/rtowner/charguess/internal/services/round"
)

// Config holds dispatcher settings
type Config struct {
	LeaderboardSize int
	RarityLevels    []string
	RarityEmojis    []string
}

// Dispatcher routes normalized inbound events into the game core and renders
// the outcomes as outbound intents. It is the single entry point for the
// transport layer.
type Dispatcher struct {
	rounds      *round.Controller
	ledger      *ledger.Service
	catalog     *catalog.Service
	leaderboard *leaderboard.Service
	access      *access.Service
	cfg         Config
	emojis      map[string]string
	logger      *slog.Logger
}

// NewDispatcher creates a new Dispatcher
func NewDispatcher(
	rounds *round.Controller,
	led *ledger.Service,
	cat *catalog.Service,
	board *leaderboard.Service,
	acc *access.Service,
	cfg Config,
	logger *slog.Logger,
) *Dispatcher {
	emojis := make(map[string]string, len(cfg.RarityLevels))
	for i, level := range cfg.RarityLevels {
		if i < len(cfg.RarityEmojis) {
			emojis[level] = cfg.RarityEmojis[i]
		}
	}
	return &Dispatcher{
		rounds:      rounds,
		ledger:      led,
		catalog:     cat,
		leaderboard: board,
		access:      acc,
		cfg:         cfg,
		emojis:      emojis,
		logger:      logger,
	}
}

// Handle processes one inbound event. Backend failures are reported to the
// conversation as a retry hint and never propagate: the round state machine
// must survive a flaky persistence layer.
func (d *Dispatcher) Handle(ctx context.Context, ev Event, sender Sender) error {
	if verb, args, ok := parseCommand(ev.Text); ok {
		return d.handleCommand(ctx, ev, sender, verb, args)
	}
	return d.handleChatter(ctx, ev, sender)
}

// parseCommand splits "/verb arg arg" command text. A "@botname" suffix on
// the verb is tolerated, as group transports commonly add one.
func parseCommand(text string) (string, []string, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", nil, false
	}
	fields := strings.Fields(text)
	verb := strings.TrimPrefix(fields[0], "/")
	if i := strings.IndexByte(verb, '@'); i >= 0 {
		verb = verb[:i]
	}
	return strings.ToLower(verb), fields[1:], true
}

func (d *Dispatcher) handleCommand(ctx context.Context, ev Event, sender Sender, verb string, args []string) error {
	switch verb {
	case "start":
		return d.cmdStart(ctx, ev, sender)
	case "help":
		return sender.SendText(ctx, ev.ConversationID, helpMessage)
	case "bonus":
		return d.cmdBonus(ctx, ev, sender)
	case "profile":
		return d.cmdProfile(ctx, ev, sender)
	case "leaderboard":
		return d.cmdLeaderboard(ctx, ev, sender)
	case "upload":
		return d.privileged(ctx, ev, sender, func() error { return d.cmdUpload(ctx, ev, sender, args) })
	case "delete":
		return d.privileged(ctx, ev, sender, func() error { return d.cmdDelete(ctx, ev, sender, args) })
	case "addsudo":
		return d.cmdAddSudo(ctx, ev, sender, args)
	case "stats":
		return d.privileged(ctx, ev, sender, func() error { return d.cmdStats(ctx, ev, sender) })
	default:
		// Unknown commands are ignored; they are not guesses either
		return nil
	}
}

// privileged runs fn only for privileged users; refusal has no side effects
func (d *Dispatcher) privileged(ctx context.Context, ev Event, sender Sender, fn func() error) error {
	if !d.access.IsPrivileged(ev.UserID) {
		return sender.SendText(ctx, ev.ConversationID, unauthorizedMessage)
	}
	return fn()
}

func (d *Dispatcher) cmdStart(ctx context.Context, ev Event, sender Sender) error {
	if _, err := d.ledger.GetOrCreate(ctx, ev.UserID, ev.DisplayName); err != nil {
		return d.reportFailure(ctx, ev, sender, "start", err)
	}
	return sender.SendText(ctx, ev.ConversationID, welcomeMessage)
}

func (d *Dispatcher) cmdBonus(ctx context.Context, ev Event, sender Sender) error {
	if _, err := d.ledger.GetOrCreate(ctx, ev.UserID, ev.DisplayName); err != nil {
		return d.reportFailure(ctx, ev, sender, "bonus", err)
	}
	outcome, err := d.ledger.ClaimDailyBonus(ctx, ev.UserID)
	if err != nil {
		return d.reportFailure(ctx, ev, sender, "bonus", err)
	}
	return sender.SendText(ctx, ev.ConversationID, bonusMessage(outcome))
}

func (d *Dispatcher) cmdProfile(ctx context.Context, ev Event, sender Sender) error {
	if _, err := d.ledger.GetOrCreate(ctx, ev.UserID, ev.DisplayName); err != nil {
		return d.reportFailure(ctx, ev, sender, "profile", err)
	}
	profile, err := d.ledger.Profile(ctx, ev.UserID)
	if err != nil {
		return d.reportFailure(ctx, ev, sender, "profile", err)
	}
	return sender.SendText(ctx, ev.ConversationID, profileMessage(profile))
}

func (d *Dispatcher) cmdLeaderboard(ctx context.Context, ev Event, sender Sender) error {
	top, err := d.leaderboard.TopN(ctx, d.cfg.LeaderboardSize)
	if err != nil {
		return d.reportFailure(ctx, ev, sender, "leaderboard", err)
	}
	return sender.SendText(ctx, ev.ConversationID, leaderboardMessage(top))
}

func (d *Dispatcher) cmdUpload(ctx context.Context, ev Event, sender Sender, args []string) error {
	if len(args) < 2 {
		return sender.SendText(ctx, ev.ConversationID, "Usage: /upload <image_url> <character_name>")
	}
	imageRef := args[0]
	name := strings.Join(args[1:], " ")

	character, err := d.catalog.Insert(ctx, name, "", imageRef)
	if err != nil {
		if errors.Is(err, model.ErrValidation) {
			return sender.SendText(ctx, ev.ConversationID, "Usage: /upload <image_url> <character_name>")
		}
		return d.reportFailure(ctx, ev, sender, "upload", err)
	}

	text := fmt.Sprintf("✅ Added #%d %s — %s %s",
		character.ID, character.Name, d.rarityEmoji(character.Rarity), character.Rarity)
	return sender.SendText(ctx, ev.ConversationID, text)
}

func (d *Dispatcher) cmdDelete(ctx context.Context, ev Event, sender Sender, args []string) error {
	if len(args) != 1 {
		return sender.SendText(ctx, ev.ConversationID, "Usage: /delete <id>")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return sender.SendText(ctx, ev.ConversationID, "Usage: /delete <id>")
	}

	removed, err := d.catalog.DeleteByID(ctx, id)
	if err != nil {
		return d.reportFailure(ctx, ev, sender, "delete", err)
	}
	if !removed {
		return sender.SendText(ctx, ev.ConversationID, fmt.Sprintf("❓ No character with ID %d.", id))
	}
	return sender.SendText(ctx, ev.ConversationID, fmt.Sprintf("🗑 Character %d deleted, IDs renumbered.", id))
}

func (d *Dispatcher) cmdAddSudo(ctx context.Context, ev Event, sender Sender, args []string) error {
	if len(args) != 1 {
		return sender.SendText(ctx, ev.ConversationID, "Usage: /addsudo <user_id>")
	}
	if err := d.access.AddSudo(ev.UserID, model.UserID(args[0])); err != nil {
		return sender.SendText(ctx, ev.ConversationID, unauthorizedMessage)
	}
	return sender.SendText(ctx, ev.ConversationID, fmt.Sprintf("🔧 User %s now has sudo access.", args[0]))
}

func (d *Dispatcher) cmdStats(ctx context.Context, ev Event, sender Sender) error {
	players, characters, err := d.leaderboard.Stats(ctx)
	if err != nil {
		return d.reportFailure(ctx, ev, sender, "stats", err)
	}
	text := fmt.Sprintf("📊 Stats\n\n👥 Players: %d\n🎴 Characters: %d", players, characters)
	return sender.SendText(ctx, ev.ConversationID, text)
}

// handleChatter processes a plain message: count it toward rotation, then
// score it as a guess against the active round.
func (d *Dispatcher) handleChatter(ctx context.Context, ev Event, sender Sender) error {
	if _, err := d.ledger.GetOrCreate(ctx, ev.UserID, ev.DisplayName); err != nil {
		return d.reportFailure(ctx, ev, sender, "message", err)
	}

	character, rotated, err := d.rounds.Tick(ctx, ev.ConversationID, ev.IsGroup)
	if err != nil {
		return d.reportFailure(ctx, ev, sender, "rotate", err)
	}
	if rotated {
		if err := d.announce(ctx, ev.ConversationID, character, sender); err != nil {
			return err
		}
	}

	result, err := d.rounds.EvaluateGuess(ctx, ev.ConversationID, ev.UserID, ev.Text)
	if err != nil {
		return d.reportFailure(ctx, ev, sender, "guess", err)
	}

	switch result.Outcome {
	case round.OutcomeMatch:
		if err := sender.SendText(ctx, ev.ConversationID, matchMessage(result)); err != nil {
			return err
		}
		if result.RedrawFailed {
			// The pool may not be empty, so the empty-pool notice would mislead
			return sender.SendText(ctx, ev.ConversationID, errorMessage)
		}
		return d.announce(ctx, ev.ConversationID, result.Next, sender)
	case round.OutcomeNoMatch:
		// Hints only in direct conversations; wrong guesses in groups stay
		// unanswered so the chat is not flooded
		if !ev.IsGroup {
			return sender.SendText(ctx, ev.ConversationID, "💬 Not quite! Hint: "+result.Hint)
		}
		return nil
	default:
		return nil
	}
}

// announce presents a newly drawn character, or the empty-pool notice
func (d *Dispatcher) announce(ctx context.Context, convID model.ConversationID, character *model.Character, sender Sender) error {
	if character == nil {
		return sender.SendText(ctx, convID, emptyPoolMessage)
	}
	return sender.SendImage(ctx, convID, character.ImageRef, d.characterCaption(character))
}

// reportFailure logs a backend error and tells the conversation to retry
func (d *Dispatcher) reportFailure(ctx context.Context, ev Event, sender Sender, op string, err error) error {
	d.logger.Error("command failed",
		slog.String("op", op),
		slog.String("conversation_id", string(ev.ConversationID)),
		slog.String("user_id", string(ev.UserID)),
		slog.String("error", err.Error()),
	)
	return sender.SendText(ctx, ev.ConversationID, errorMessage)
}
