package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/weddinginvite/core/internal/adapters/repository"
	"github.com/weddinginvite/core/internal/application/services"
	"github.com/weddinginvite/core/internal/domain/entities"
	"github.com/weddinginvite/core/internal/infrastructure/config"
	"github.com/weddinginvite/core/internal/infrastructure/logger"
	"github.com/weddinginvite/core/internal/infrastructure/server"
	"github.com/weddinginvite/core/internal/ports"
)

// Version is overridden at build time with -ldflags
var Version = "1.0.0"

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the guestbook API server",
		Long:  "Start the guestbook API server with all configured routes and middleware",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

// NewMessagesCommand creates the messages command with subcommands
func NewMessagesCommand() *cobra.Command {
	messagesCmd := &cobra.Command{
		Use:   "messages",
		Short: "Inspect and moderate stored guest messages",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Print stored messages, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")
			return withMessageService(func(svc *services.MessageService) error {
				messages, err := svc.List(cmd.Context())
				if err != nil {
					return err
				}
				return printMessages(cmd.OutOrStdout(), messages, asJSON)
			})
		},
	}
	listCmd.Flags().Bool("json", false, "Print raw JSON instead of a table")

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write every stored message to a JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, _ := cmd.Flags().GetString("out")
			if out == "" {
				return errors.New("--out is required")
			}
			return withMessageService(func(svc *services.MessageService) error {
				messages, err := svc.List(cmd.Context())
				if err != nil {
					return err
				}
				if err := exportMessages(out, messages); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d messages to %s\n", len(messages), out)
				return nil
			})
		},
	}
	exportCmd.Flags().String("out", "", "Destination file (required)")

	deleteCmd := &cobra.Command{
		Use:   "delete ID [ID...]",
		Short: "Delete messages by id",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMessageService(func(svc *services.MessageService) error {
				deleted, err := svc.DeleteBatch(cmd.Context(), args)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d of %d requested messages\n", deleted, len(args))
				return nil
			})
		},
	}

	messagesCmd.AddCommand(listCmd, exportCmd, deleteCmd)
	return messagesCmd
}

// NewAdminCommand creates the admin credential helpers
func NewAdminCommand() *cobra.Command {
	adminCmd := &cobra.Command{
		Use:   "admin",
		Short: "Admin credential helpers",
	}

	hashCmd := &cobra.Command{
		Use:   "hash-password",
		Short: "Print a bcrypt hash for ADMIN_PASSWORD_HASH",
		RunE: func(cmd *cobra.Command, args []string) error {
			password, _ := cmd.Flags().GetString("password")
			if password == "" {
				return errors.New("--password is required")
			}
			hash, err := services.HashPassword(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
	hashCmd.Flags().String("password", "", "Admin password (required)")

	adminCmd.AddCommand(hashCmd)
	return adminCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the guestbook version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "Wedding Guestbook v%s\n", Version)
		},
	}
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer appLogger.Close()

	repo, err := repository.Open(cfg.Storage, appLogger)
	if err != nil {
		appLogger.Errorw("Failed to open message store", "error", err)
		return err
	}
	defer repo.Close()

	if err := repo.EnsureStorageLocation(context.Background()); err != nil {
		appLogger.Errorw("Failed to prepare storage location", "error", err)
		return err
	}

	srv, err := server.New(cfg, repo, appLogger)
	if err != nil {
		appLogger.Errorw("Failed to initialize server", "error", err)
		return err
	}

	appLogger.Infow("Starting guestbook API server",
		"port", cfg.Server.Port,
		"environment", cfg.App.Environment,
		"storage", cfg.Storage.Driver,
		"admin_enabled", cfg.Admin.Enabled(),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(cfg.Server.Address())
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		if err != nil {
			appLogger.Errorw("Server failed", "error", err)
		}
		return err
	case sig := <-quit:
		appLogger.Infow("Shutdown signal received", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(ctx)
}

func withMessageService(fn func(svc *services.MessageService) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.New(config.LoggerConfig{Level: "warn", Format: "console"})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer appLogger.Close()

	repo, err := repository.Open(cfg.Storage, appLogger)
	if err != nil {
		return fmt.Errorf("failed to open message store: %w", err)
	}
	defer repo.Close()

	return fn(services.NewMessageService(repo, nil, appLogger))
}

func printMessages(w io.Writer, messages []entities.GuestMessage, asJSON bool) error {
	sorted := sortNewestFirst(messages)

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(sorted)
	}

	if len(sorted) == 0 {
		fmt.Fprintln(w, "No messages yet.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tGUESTS\tTIME\tMESSAGE")
	for _, m := range sorted {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", m.ID, m.Name, m.AttendeeCount, m.Timestamp, oneLine(m.Message))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	stats := entities.ComputeStats(messages)
	fmt.Fprintf(w, "\n%d messages, %d guests (%.1f per message)\n", stats.TotalMessages, stats.TotalGuests, stats.AverageGuests)
	return nil
}

// sortNewestFirst orders a copy of messages by timestamp, descending, the
// way the admin page displays them
func sortNewestFirst(messages []entities.GuestMessage) []entities.GuestMessage {
	sorted := make([]entities.GuestMessage, len(messages))
	copy(sorted, messages)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt().After(sorted[j].CreatedAt())
	})
	return sorted
}

func exportMessages(path string, messages []entities.GuestMessage) error {
	data, err := json.MarshalIndent(messages, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal messages: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func oneLine(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	if r := []rune(s); len(r) > 60 {
		return string(r[:57]) + "..."
	}
	return s
}

var _ ports.GuestMessageService = (*services.MessageService)(nil)
