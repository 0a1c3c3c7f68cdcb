package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/byusi/indexfo/pkg/config"
	"github.com/byusi/indexfo/pkg/server"
	"github.com/byusi/indexfo/pkg/sysstats"
	"github.com/byusi/indexfo/pkg/telemetry"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the directory index server",
	Long: `Start the HTTP server that exposes the data root for browsing,
listing and downloading, and serves the single-page browsing UI.`,
	RunE: runServe,
}

func init() {
	viper.AutomaticEnv()
	// Replace . with _ in env var names (e.g., server.port becomes SERVER_PORT)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	rootCmd.AddCommand(serveCmd)

	// Serve-specific flags
	serveCmd.Flags().String("host", "0.0.0.0", "Address to listen on")
	serveCmd.Flags().IntP("port", "p", 8000, "Port to listen on")
	serveCmd.Flags().String("data-root", "cdnData", "Directory to serve (created if absent)")
	serveCmd.Flags().String("template", "index.html", "HTML template for the browsing UI")
	serveCmd.Flags().StringSlice("protected-paths", []string{}, "Paths that always respond 403")
	serveCmd.Flags().Bool("expose-errors", false, "Include failure details in 500 responses")
	serveCmd.Flags().Bool("enable-telemetry", false, "Enable OpenTelemetry tracing")
	serveCmd.Flags().String("otel-endpoint", "", "OpenTelemetry endpoint (if empty, uses auto-export)")

	// Bind flags to viper
	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("server.expose_errors", serveCmd.Flags().Lookup("expose-errors"))
	_ = viper.BindPFlag("data.root", serveCmd.Flags().Lookup("data-root"))
	_ = viper.BindPFlag("data.template_file", serveCmd.Flags().Lookup("template"))
	_ = viper.BindPFlag("data.protected_paths", serveCmd.Flags().Lookup("protected-paths"))
	_ = viper.BindPFlag("telemetry.enabled", serveCmd.Flags().Lookup("enable-telemetry"))
	_ = viper.BindPFlag("telemetry.endpoint", serveCmd.Flags().Lookup("otel-endpoint"))
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := GetLogger()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize telemetry if enabled
	var cleanup func()
	if cfg.Telemetry.Enabled {
		logger.Info("Initializing OpenTelemetry")
		cleanup, err = telemetry.Initialize(cfg.Telemetry)
		if err != nil {
			logger.Warnf("Failed to initialize telemetry: %v", err)
		} else {
			defer cleanup()
		}
	}

	// Create the server; the data root is created if it does not exist.
	stats := sysstats.NewHostProvider(logger, cfg.Data.Root)
	srv, err := server.New(cfg, logger, stats)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	printBanner(cfg, srv)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.Start()
	}()

	// Wait for interrupt signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-interrupt:
		logger.Infof("Received signal %v, shutting down...", sig)

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Errorf("Server shutdown error: %v", err)
			return err
		}

		logger.Info("Server stopped gracefully")
		return nil
	}
}

func printBanner(cfg *config.Config, srv *server.Server) {
	title := color.New(color.FgRed, color.Bold)
	label := color.New(color.FgCyan, color.Bold)

	fmt.Println()
	title.Println("  " + cfg.Theme.SiteTitle)
	title.Println("  directory index and file distribution")
	fmt.Println()

	label.Print("  Address:      ")
	fmt.Printf("http://%s:%d\n", cfg.Server.Host, cfg.Server.Port)
	label.Print("  Data root:    ")
	fmt.Println(srv.Resolver().Root())
	label.Print("  Theme color:  ")
	fmt.Println(cfg.Theme.Color)
	label.Print("  Blur:         ")
	fmt.Println(cfg.Theme.BlurIntensity)
	fmt.Println()
}
