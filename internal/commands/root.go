// Package commands provides the CLI commands for wa-gemini-bridge.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/DevRickLin/wa-gemini-bridge/internal/biz"
	"github.com/DevRickLin/wa-gemini-bridge/internal/biz/usecase"
	"github.com/DevRickLin/wa-gemini-bridge/internal/conf"
	"github.com/DevRickLin/wa-gemini-bridge/internal/data"
	"github.com/DevRickLin/wa-gemini-bridge/internal/infra/logger"
	"github.com/DevRickLin/wa-gemini-bridge/internal/infra/whatsapp"
	"github.com/DevRickLin/wa-gemini-bridge/internal/server"
	"github.com/DevRickLin/wa-gemini-bridge/internal/service"
)

// Version info (set at build time)
var Version = "dev"

// flagValues holds command line overrides for environment settings
type flagValues struct {
	authDir     string
	keyword     string
	backend     string
	model       string
	logLevel    string
	repliesPath string
}

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	flags := &flagValues{}

	cmd := &cobra.Command{
		Use:   "wa-gemini-bridge",
		Short: "Relay WhatsApp messages to Gemini",
		Long: `wa-gemini-bridge links to a WhatsApp account, watches incoming messages
and answers those mentioning the trigger keyword with a Gemini reply.

Examples:
  wa-gemini-bridge                      Run the bridge (scan the QR code on first run)
  wa-gemini-bridge --keyword bot        Answer messages mentioning "bot"
  wa-gemini-bridge models               List usable Gemini models
  wa-gemini-bridge ask "What is Go?"    Send a single prompt`,
		Version:       Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runBridge(ctx, cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.authDir, "auth-dir", "", "Directory holding the WhatsApp session (env AUTH_DIR)")
	pf.StringVar(&flags.backend, "backend", "", "Gemini client: rest, openai or genai (env GEMINI_BACKEND)")
	pf.StringVarP(&flags.model, "model", "m", "", "Use this model instead of discovering one (env GEMINI_MODEL)")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error (env LOG_LEVEL)")
	pf.StringVar(&flags.repliesPath, "replies", "", "Path to replies.yaml (env REPLIES_CONFIG_PATH)")
	cmd.Flags().StringVarP(&flags.keyword, "keyword", "k", "", "Trigger keyword (env TRIGGER_KEYWORD)")

	cmd.AddCommand(newModelsCmd(flags))
	cmd.AddCommand(newAskCmd(flags))

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

// loadConfig reads .env, the environment and the replies file, then applies flags
func loadConfig(flags *flagValues) (*conf.Config, error) {
	// Missing .env is fine, the environment may already be set
	_ = godotenv.Load()

	cfg := conf.LoadFromEnv()
	if flags.authDir != "" {
		cfg.WhatsApp.AuthDir = flags.authDir
	}
	if flags.backend != "" {
		cfg.Gemini.Backend = flags.backend
	}
	if flags.model != "" {
		cfg.Gemini.Model = flags.model
	}
	if flags.keyword != "" {
		cfg.TriggerKeyword = flags.keyword
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}
	if flags.repliesPath != "" {
		cfg.RepliesPath = flags.repliesPath
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if _, err := cfg.LoadReplies(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newUsecases wires repositories and selects the active model
func newUsecases(ctx context.Context, cfg *conf.Config, repos *data.Repositories, log zerolog.Logger) (*biz.Usecases, error) {
	selector := usecase.NewSelectorUsecase(repos.Catalog, cfg.ToSelectorConfig(), log)

	model, err := selector.Select(ctx)
	if err != nil {
		return nil, fmt.Errorf("select model: %w", err)
	}

	return &biz.Usecases{
		Selector: selector,
		Reply:    usecase.NewReplyUsecase(repos.Generator, model, cfg.Replies.Replies.NoReply, log),
		Filter:   usecase.NewKeywordFilter(cfg.Keyword()),
	}, nil
}

// runBridge runs the relay until ctx is cancelled or the session ends for good
func runBridge(ctx context.Context, cfg *conf.Config, out, errOut io.Writer) error {
	log := logger.New(errOut, cfg.LogLevel)

	repos, err := data.NewRepositories(ctx, cfg.ToDataOptions())
	if err != nil {
		return fmt.Errorf("create repositories: %w", err)
	}

	ucs, err := newUsecases(ctx, cfg, repos, log)
	if err != nil {
		return err
	}

	relaySvc := service.NewRelayService(ucs.Reply, ucs.Filter, repos.Message, cfg.Replies.Replies.Error, log)

	store, err := whatsapp.OpenStore(ctx, cfg.WhatsApp.AuthDir, log)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	defer store.Close()

	open := func(ctx context.Context) (server.Session, error) {
		client, err := store.NewClient(ctx)
		if err != nil {
			return nil, err
		}
		return client, nil
	}

	srv := server.NewWhatsAppServer(
		open,
		relaySvc,
		repos.Message,
		whatsapp.TerminalQR{Out: out},
		cfg.Reconnect.ToBackoffPolicy(),
		log,
	)

	log.Info().
		Str("keyword", ucs.Filter.Keyword()).
		Str("model", ucs.Reply.Model().String()).
		Str("auth_dir", cfg.WhatsApp.AuthDir).
		Msg("Bridge starting")

	err = srv.Start(ctx)
	relaySvc.Wait()

	if errors.Is(err, context.Canceled) {
		log.Info().Msg("Shutting down")
		return nil
	}
	return err
}
