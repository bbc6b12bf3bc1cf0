package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"dbchat/pkg/chat"
	"dbchat/pkg/history"
	"dbchat/pkg/logging"
	"dbchat/pkg/storage"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var errNotInteractive = errors.New("refusing to clear history without --yes on a non-interactive terminal")

// isTerminal reports whether stdin is a TTY. Replaced in tests.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func newHistoryCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect or clear the saved chat history",
	}
	cmd.AddCommand(newHistoryShowCmd(flags))
	cmd.AddCommand(newHistoryClearCmd(flags))
	return cmd
}

func newHistoryShowCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the saved conversation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(cmd, flags, func(h *history.Store) error {
				msgs, err := h.LoadAll()
				if err != nil {
					return err
				}
				printHistory(cmd.OutOrStdout(), msgs)
				return nil
			})
		},
	}
}

func newHistoryClearCmd(flags *rootFlags) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the saved conversation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				if !isTerminal() {
					return errNotInteractive
				}
				ok, err := confirm(cmd.InOrStdin(), cmd.OutOrStdout(), chat.ClearConfirmPrompt)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
					return nil
				}
			}
			return withHistory(cmd, flags, func(h *history.Store) error {
				if err := h.Clear(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Chat history cleared.")
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "clear without asking")
	return cmd
}

func withHistory(cmd *cobra.Command, flags *rootFlags, fn func(*history.Store) error) error {
	if flags.ephemeral {
		return errors.New("--ephemeral has no saved history")
	}
	cfg, err := loadConfig(cmd, flags)
	if err != nil {
		return err
	}
	store, err := storage.OpenPebble(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()

	h := history.NewStore(store)
	h.SetLogger(logging.Discard())
	return fn(h)
}

func printHistory(out io.Writer, msgs []chat.Message) {
	if len(msgs) == 0 {
		fmt.Fprintln(out, "No saved messages.")
		return
	}
	for _, m := range msgs {
		who := "Assistant"
		if m.IsUser {
			who = "You"
		}
		fmt.Fprintf(out, "[%s] %s: %s\n", m.Timestamp.Local().Format("2006-01-02 15:04"), who, m.Content)
	}
}

func confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	fmt.Fprintf(out, "%s [y/N] ", prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read confirmation: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
