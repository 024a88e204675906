package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/DevRickLin/wa-gemini-bridge/internal/data"
	"github.com/DevRickLin/wa-gemini-bridge/internal/infra/logger"
)

const defaultWrapWidth = 100

func newAskCmd(flags *flagValues) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "ask <prompt>",
		Short: "Send one prompt to the selected model and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			log := logger.New(cmd.ErrOrStderr(), cfg.LogLevel)

			repos, err := data.NewRepositories(ctx, cfg.ToDataOptions())
			if err != nil {
				return fmt.Errorf("create repositories: %w", err)
			}

			ucs, err := newUsecases(ctx, cfg, repos, log)
			if err != nil {
				return err
			}

			reply, err := ucs.Reply.Generate(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !raw && isTerminal(out) {
				if rendered, err := renderMarkdown(reply, terminalWidth(out)); err == nil {
					fmt.Fprint(out, rendered)
					return nil
				}
			}
			fmt.Fprintln(out, reply)
			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print the reply without markdown rendering")
	return cmd
}

func renderMarkdown(text string, width int) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	return renderer.Render(text)
}

// isTerminal checks if w is an interactive terminal
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return defaultWrapWidth
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 || width > defaultWrapWidth {
		return defaultWrapWidth
	}
	return width
}
