package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rtowner/charguess/internal/chat"
	"github.com/rtowner/charguess/internal/config"
	"github.com/rtowner/charguess/internal/factory"
	"github.com/rtowner/charguess/internal/model"
)

func newPlayCmd() *cobra.Command {
	var direct bool

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Run a local console game session",
		Long: `play runs a single-player console session against the in-memory
backend. Every line you type is one chat message; lines starting with /
are commands. You are the owner, so /upload and /delete work.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd.InOrStdin(), cmd.OutOrStdout(), direct)
		},
	}

	cmd.Flags().BoolVar(&direct, "direct", false, "Simulate a direct chat (hints on wrong guesses, no rotation)")

	return cmd
}

// consoleSender prints outbound intents to the console
type consoleSender struct {
	w io.Writer
}

func (c *consoleSender) SendText(ctx context.Context, convID model.ConversationID, text string) error {
	_, err := fmt.Fprintf(c.w, "%s\n\n", text)
	return err
}

func (c *consoleSender) SendImage(ctx context.Context, convID model.ConversationID, imageRef, caption string) error {
	_, err := fmt.Fprintf(c.w, "[image: %s]\n%s\n\n", imageRef, caption)
	return err
}

func runPlay(in io.Reader, out io.Writer, direct bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	cfg.StorageType = factory.StorageTypeMemory
	cfg.OwnerID = "console"

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	app, err := factory.New(cfg, logger)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Console session started. Characters rotate in every %d messages.\n", cfg.MessageThreshold)
	fmt.Fprintln(out, "Type /help for commands, Ctrl-D to quit.")
	fmt.Fprintln(out)

	sender := &consoleSender{w: out}
	ctx := context.Background()

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		err := app.Dispatcher.Handle(ctx, chat.Event{
			ConversationID: "console",
			UserID:         "console",
			DisplayName:    os.Getenv("USER"),
			Text:           text,
			IsGroup:        !direct,
		}, sender)
		if err != nil {
			fmt.Fprintf(out, "error: %s\n", err)
		}
	}

	fmt.Fprintln(out)
	return scanner.Err()
}
