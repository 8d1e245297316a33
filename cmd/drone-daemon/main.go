package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/nerfzael/drone-daemon/pkg/api"
	"github.com/nerfzael/drone-daemon/pkg/log"
	"github.com/nerfzael/drone-daemon/pkg/multiplexer"
	"github.com/nerfzael/drone-daemon/pkg/process"
	"github.com/nerfzael/drone-daemon/pkg/scheduler"
	"github.com/nerfzael/drone-daemon/pkg/store"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "drone-daemon",
	Short:   "Drone Daemon - bearer-authenticated prompt job queue and terminal bridge",
	Version: Version,
	RunE:    runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the daemon (the default when no subcommand is given)",
	RunE:  runServe,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"drone-daemon version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")
	cobra.OnInitialize(initLogging)

	for _, cmd := range []*cobra.Command{rootCmd, serveCmd} {
		cmd.Flags().String("host", "0.0.0.0", "Address to listen on")
		cmd.Flags().Int("port", 0, "Port to listen on (required)")
		cmd.Flags().String("data-dir", "/dvm-data/drone", "Daemon data directory")
		cmd.Flags().String("token", "", "Bearer token (verbatim); overrides --token-file")
		cmd.Flags().String("token-file", "", "Path to a file holding the bearer token (default <data-dir>/token)")
	}

	rootCmd.AddCommand(serveCmd)
}

func initLogging() {
	logLevel, _ := rootCmd.PersistentFlags().GetString("log-level")
	logJSON, _ := rootCmd.PersistentFlags().GetBool("log-json")

	log.Init(log.Config{
		Level:      log.Level(logLevel),
		JSONOutput: logJSON,
	})
}

func resolveToken(flagToken, tokenFile, dataDir string) (string, error) {
	if flagToken != "" {
		return flagToken, nil
	}
	if tokenFile == "" {
		tokenFile = filepath.Join(dataDir, "token")
	}
	data, err := os.ReadFile(tokenFile)
	if err != nil {
		return "", fmt.Errorf("read token file %s: %w", tokenFile, err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", fmt.Errorf("token file %s is empty", tokenFile)
	}
	return token, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	host, _ := cmd.Flags().GetString("host")
	port, _ := cmd.Flags().GetInt("port")
	dataDir, _ := cmd.Flags().GetString("data-dir")
	flagToken, _ := cmd.Flags().GetString("token")
	tokenFile, _ := cmd.Flags().GetString("token-file")

	if port == 0 {
		return fmt.Errorf("--port is required")
	}

	token, err := resolveToken(flagToken, tokenFile, dataDir)
	if err != nil {
		return err
	}

	logsDir := filepath.Join(dataDir, "logs")
	promptsDir := filepath.Join(dataDir, "prompts")
	jobsDir := filepath.Join(promptsDir, "jobs")
	outDir := filepath.Join(promptsDir, "out")
	for _, dir := range []string{logsDir, jobsDir, outDir} {
		if err := store.EnsureDirectory(dir); err != nil {
			return fmt.Errorf("bootstrap data directory %s: %w", dir, err)
		}
	}

	muxAdapter := multiplexer.New()
	jobs := store.NewJobStore(promptsDir)
	supervisor := process.New(muxAdapter, dataDir, logsDir)
	pump := scheduler.NewPump(jobs, muxAdapter, outDir)

	// Crash recovery: finalize any running job whose session is already
	// gone, and resume queued jobs, before the HTTP server starts accepting
	// requests.
	pump.Tick(context.Background())
	pump.Start()
	defer pump.Stop()

	server := api.NewServer(muxAdapter, jobs, supervisor, pump, token, "drone-daemon")

	httpServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", host, port),
		Handler: server.Router(),
	}

	color.New(color.FgGreen).Printf("drone-daemon listening on %s\n", httpServer.Addr)

	mainLogger := log.WithComponent("main")

	errCh := make(chan error, 1)
	go func() {
		mainLogger.Info().Str("addr", httpServer.Addr).Msg("drone-daemon listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		mainLogger.Info().Msg("shutting down")
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
