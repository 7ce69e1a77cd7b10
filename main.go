package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"kdigo-rationale-server/internal/audit"
	"kdigo-rationale-server/internal/config"
	"kdigo-rationale-server/internal/guideline"
	"kdigo-rationale-server/internal/logger"
	"kdigo-rationale-server/internal/models"
	"kdigo-rationale-server/internal/prompt"
	"kdigo-rationale-server/internal/rationale"
	"kdigo-rationale-server/internal/routes"
	"kdigo-rationale-server/internal/utils"
)

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "kdigo-rationale-server",
		Short:        "Explains KDIGO ESA dosing recommendations and keeps an audit trail",
		SilenceUsage: true,
	}
	serve := serveCmd()
	root.AddCommand(serve, historyCmd(), promptCmd(), tokenCmd())
	root.RunE = serve.RunE
	return root
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			kb, err := loadKnowledgeBase(cfg)
			if err != nil {
				return err
			}

			provider, err := rationale.NewProvider(ctx, cfg.Generation)
			if err != nil {
				log.Error("Failed to initialize generation provider", "provider", cfg.Generation.Provider, "error", err)
				return err
			}
			generator := rationale.NewGenerator(provider, rationale.GeneratorConfig{
				Model:       cfg.Generation.Model,
				Temperature: cfg.Generation.Temperature,
				Timeout:     cfg.Generation.Timeout,
			}, log)

			var store *audit.Store
			if cfg.AuditingEnabled {
				db, err := models.InitDB(models.DatabaseConfig{Driver: cfg.Database.Driver, DSN: cfg.Database.DSN})
				if err != nil {
					log.Error("Error connecting to database", "driver", cfg.Database.Driver, "error", err)
					return err
				}
				defer func() {
					if err := models.CloseDB(db); err != nil {
						log.Warn("Failed to close database", "error", err)
					}
				}()
				store = audit.NewStore(db)
			}

			if cfg.Environment == "production" {
				gin.SetMode(gin.ReleaseMode)
			}
			router := routes.NewRouter(routes.Dependencies{
				Config:    cfg,
				Log:       log,
				Composer:  prompt.NewComposer(kb),
				Generator: generator,
				Store:     store,
			})

			server := &http.Server{
				Addr:              fmt.Sprintf(":%s", cfg.Port),
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				log.Info("Server running", "port", cfg.Port, "auditing", cfg.AuditingEnabled, "provider", cfg.Generation.Provider, "edition", kb.Edition())
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("failed to start server: %w", err)
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Generation.Timeout+5*time.Second)
				defer cancel()
				log.Info("Shutting down server")
				return server.Shutdown(shutdownCtx)
			})
			return g.Wait()
		},
	}
}

func historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Print the most recent audit records as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()

			db, err := models.InitDB(models.DatabaseConfig{Driver: cfg.Database.Driver, DSN: cfg.Database.DSN})
			if err != nil {
				return err
			}
			defer models.CloseDB(db)

			records, err := audit.NewStore(db).Recent(cmd.Context())
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(utils.DataResponse{Data: records})
		},
	}
}

func promptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prompt <payload.json>",
		Short: "Validate a request payload and print the prompt it would send, without calling the provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			kb, err := loadKnowledgeBase(cfg)
			if err != nil {
				return err
			}

			body, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			req, err := utils.ParseRationaleRequest(body)
			if err != nil {
				return err
			}
			text, err := prompt.NewComposer(kb).Compose(req.Inputs, req.RuleOutput)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), text)
			return err
		},
	}
}

func tokenCmd() *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token <subject>",
		Short: "Issue a bearer token for GET /api/history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			if cfg.HistoryJWTSecret == "" {
				return errors.New("HISTORY_JWT_SECRET is not set; history is not token protected")
			}
			token, err := utils.GenerateHistoryToken(args[0], cfg.HistoryJWTSecret, ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	return cmd
}

func bootstrap() (*config.Config, *logger.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("error loading config: %w", err)
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, nil, fmt.Errorf("error creating logger: %w", err)
	}
	return cfg, log, nil
}

func loadKnowledgeBase(cfg *config.Config) (*guideline.KnowledgeBase, error) {
	if cfg.GuidelineFile == "" {
		return guideline.Default(), nil
	}
	return guideline.LoadFile(cfg.GuidelineFile)
}
