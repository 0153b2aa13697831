package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Saterlix/Nova/pkg/bridge"
	"github.com/Saterlix/Nova/pkg/config"
	"github.com/Saterlix/Nova/pkg/intake"
	"github.com/Saterlix/Nova/pkg/leads"
	"github.com/Saterlix/Nova/pkg/logger"
	"github.com/Saterlix/Nova/pkg/server"
	"github.com/Saterlix/Nova/pkg/telegram"
)

const sweepInterval = 5 * time.Minute

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the site backend",
	Long:  "Runs the HTTP server with the bot webhook, chat bridge endpoints, and the lead form action.",
	Run: func(cmd *cobra.Command, args []string) {
		_ = args

		_ = godotenv.Load()

		cfg, err := config.Load()
		if err != nil {
			fmt.Printf("failed to load config: %v\n", err)
			return
		}

		appLogger, err := logger.New(cfg.Logging)
		if err != nil {
			fmt.Printf("failed to initialize logger: %v\n", err)
			return
		}
		slog.SetDefault(appLogger)
		log := slog.Default().With("component", "cmd.serve")

		runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		sessions, err := newSessionStore(runCtx, cfg)
		if err != nil {
			log.Error("Failed to open session store", "error", err)
			return
		}
		defer func() { _ = sessions.Close() }()

		webhook, chatBridge, leadRelay, err := buildComponents(cfg, sessions, log)
		if err != nil {
			log.Error("Failed to initialize components", "error", err)
			return
		}

		srv := server.New(cfg.Addr(), webhook, chatBridge, leadRelay, log)
		log.Info("Backend started", "address", cfg.Addr(),
			"intake_bot", cfg.HasIntakeBot(), "group_chat", cfg.HasGroupChat(), "support_bot", cfg.HasSupportBot())
		if err := srv.Run(runCtx); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			log.Error("Backend runtime failed", "error", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// newSessionStore picks the durable store when a path is configured and
// falls back to the in-memory one otherwise.
func newSessionStore(ctx context.Context, cfg *config.Config) (intake.Store, error) {
	if cfg.Sessions.StorePath != "" {
		store, err := intake.NewSQLiteStore(cfg.Sessions.StorePath, cfg.Sessions.TTL)
		if err != nil {
			return nil, fmt.Errorf("open session store at %s: %w", cfg.Sessions.StorePath, err)
		}
		return store, nil
	}

	store := intake.NewMemoryStore(cfg.Sessions.TTL)
	store.StartSweeper(ctx, sweepInterval)
	return store, nil
}

// buildComponents wires the relay components that have credentials. A missing
// credential leaves its component nil so the matching endpoints degrade
// instead of taking the rest of the server down.
func buildComponents(cfg *config.Config, sessions intake.Store, log *slog.Logger) (server.WebhookHandler, server.ChatBridge, server.LeadRelay, error) {
	var webhook server.WebhookHandler
	var chatBridge server.ChatBridge
	var leadRelay server.LeadRelay

	if cfg.HasIntakeBot() {
		client, err := telegram.NewBotClient(cfg.BotToken, log)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("configure intake bot: %w", err)
		}
		webhook = intake.NewController(client, sessions, cfg.GroupChatID, log)
		leadRelay = leads.NewRelay(client, cfg.GroupChatID, log)
	} else {
		log.Warn("Intake bot token missing, webhook and lead delivery disabled")
		leadRelay = leads.NewRelay(nil, 0, log)
	}

	if cfg.HasSupportBot() {
		client, err := telegram.NewBotClient(cfg.SupportBotToken, log)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("configure support bot: %w", err)
		}
		chatBridge = bridge.New(client, cfg.EmployeeID, log)
	} else {
		log.Warn("Support bot not configured, chat endpoints disabled")
	}

	return webhook, chatBridge, leadRelay, nil
}
