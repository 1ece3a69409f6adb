// Package main is the entry point for the Solace CLI.
// Solace is an emotion-aware wellness companion engine that classifies
// emotional state from text, detects crisis language, and orchestrates
// supportive responses across generative and rule-based backends.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/havenlabs/solace/internal/backend"
	"github.com/havenlabs/solace/internal/config"
	"github.com/havenlabs/solace/internal/coping"
	"github.com/havenlabs/solace/internal/health"
	"github.com/havenlabs/solace/internal/logging"
	"github.com/havenlabs/solace/internal/orchestrator"
	"github.com/havenlabs/solace/internal/server"
)

var (
	version = "0.1.0"
	cfgPath string
	verbose bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "solace",
		Short: "Solace - emotion-aware wellness response engine",
		Long: `Solace analyzes free-form text for emotional state and produces a
supportive response:
  • Lexicon-based emotion classification with sentiment scoring
  • Crisis language detection with immediate intervention responses
  • Generative backends (Gemini, OpenAI, Ollama) with circuit-breaker
    failover to deterministic templates
  • Coping tool recommendations matched to the detected emotion

Run the HTTP server:   solace serve
Analyze one input:     solace analyze "I feel overwhelmed lately"
Browse coping tools:   solace tools`,
		PersistentPreRunE: initLogging,
	}

	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file path (default ~/.solace/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Solace v%s\n", version)
		},
	})

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(toolsCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// ═══════════════════════════════════════════════════════════════════════════════
// LOGGING INITIALIZATION
// ═══════════════════════════════════════════════════════════════════════════════

func initLogging(cmd *cobra.Command, args []string) error {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	logFile := filepath.Join(home, ".solace", "logs",
		fmt.Sprintf("solace_%s.log", time.Now().Format("2006-01-02")))

	cfg := logging.DefaultConfig()
	cfg.File = logFile
	cfg.Verbose = verbose
	if err := logging.Setup(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: file logging unavailable: %v\n", err)
		cfg.File = ""
		return logging.Setup(cfg)
	}
	return nil
}

// ═══════════════════════════════════════════════════════════════════════════════
// ENGINE ASSEMBLY
// ═══════════════════════════════════════════════════════════════════════════════

func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if cfgPath != "" {
		cfg, err = config.LoadFromPath(cfgPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func buildEngine(cfg *config.Config) (*orchestrator.Engine, error) {
	backends := make([]backend.Backend, 0, len(cfg.Backends.Order))
	for _, name := range cfg.Backends.Order {
		b, err := backend.New(name, cfg.Backends.Settings[name])
		if err != nil {
			return nil, err
		}
		if !b.Available() {
			log.Debug().Str("backend", name).Msg("backend not configured, staying in chain as unavailable")
		}
		backends = append(backends, b)
	}

	monitor := health.NewMonitor(cfg.Breaker)
	return orchestrator.NewTuned(cfg.Orchestrator, cfg.Sentiment, cfg.Emotion, backends, monitor)
}

// ═══════════════════════════════════════════════════════════════════════════════
// SERVE COMMAND
// ═══════════════════════════════════════════════════════════════════════════════

func serveCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the Solace HTTP server",
		Long: `Run the HTTP server exposing the analysis API.

Endpoints:
  POST /api/v1/analyze          Analyze one text input
  GET  /api/v1/health           Backend health and breaker states
  GET  /api/v1/tools            Coping tool catalog
  POST /api/v1/tools/{id}/session  Start a guided tool session
  GET  /ws                      Interactive WebSocket chat`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if port != 0 {
				cfg.Server.Port = port
			}

			engine, err := buildEngine(cfg)
			if err != nil {
				return fmt.Errorf("failed to build engine: %w", err)
			}
			srv := server.New(engine, cfg.Server.Port)

			errCh := make(chan error, 1)
			go func() {
				if err := srv.Start(); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
			}()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			fmt.Printf("\n⬡ Solace\n")
			fmt.Printf("  URL: http://127.0.0.1:%d\n", cfg.Server.Port)
			fmt.Printf("  Strategy: %s\n", cfg.Orchestrator.Strategy)
			fmt.Printf("\nPress Ctrl+C to stop...\n")

			select {
			case err := <-errCh:
				return err
			case <-sigCh:
			}
			fmt.Println("\nShutting down...")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("shutdown error")
				return err
			}
			log.Info().Msg("server stopped gracefully")
			return nil
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides config)")
	return cmd
}

// ═══════════════════════════════════════════════════════════════════════════════
// ANALYZE COMMAND
// ═══════════════════════════════════════════════════════════════════════════════

func analyzeCmd() *cobra.Command {
	var asJSON bool
	var ruleOnly bool

	cmd := &cobra.Command{
		Use:   "analyze <text>",
		Short: "Analyze one text input and print the response",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if ruleOnly {
				cfg.Orchestrator.Strategy = orchestrator.StrategyRuleOnly
			}

			engine, err := buildEngine(cfg)
			if err != nil {
				return fmt.Errorf("failed to build engine: %w", err)
			}

			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			defer cancel()

			result, err := engine.Process(ctx, strings.Join(args, " "), backend.Context{})
			if err != nil {
				return err
			}

			if asJSON {
				out, err := json.MarshalIndent(result, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(out))
				return nil
			}
			printResult(result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw JSON result")
	cmd.Flags().BoolVar(&ruleOnly, "rule-only", false, "skip generative backends")
	return cmd
}

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Width(14)
	emotionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
	crisisStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func printResult(result *orchestrator.Result) {
	lipgloss.SetColorProfile(termenv.ANSI256)

	fmt.Println()
	fmt.Println(headerStyle.Render("─── Analysis ───"))
	fmt.Printf("%s %s", labelStyle.Render("Emotion"), emotionStyle.Render(string(result.PrimaryEmotion)))
	fmt.Printf(" %s\n", dimStyle.Render(fmt.Sprintf("(confidence %.2f)", result.Confidence)))
	fmt.Printf("%s %.2f / %s\n", labelStyle.Render("Sentiment"), result.SentimentScore, result.Intensity)
	if len(result.MatchedKeywords) > 0 {
		fmt.Printf("%s %s\n", labelStyle.Render("Matched"), strings.Join(result.MatchedKeywords, ", "))
	}

	if result.Safety.InterventionTriggered {
		fmt.Println()
		fmt.Println(crisisStyle.Render("⚠ Safety intervention triggered"))
		for _, r := range result.Safety.Resources {
			fmt.Printf("  %s: %s %s\n", r.Name, r.Contact, dimStyle.Render(r.Availability))
		}
	}

	fmt.Println()
	fmt.Println(headerStyle.Render("─── Response ───"))
	fmt.Println(result.ResponseMessage)
	fmt.Printf("%s\n", dimStyle.Render(fmt.Sprintf("source: %s, %dms", result.SourceBackend, result.ProcessingTimeMS)))

	if len(result.CopingTools) > 0 {
		fmt.Println()
		fmt.Println(headerStyle.Render("─── Coping Tools ───"))
		for _, tool := range result.CopingTools {
			fmt.Printf("  • %s %s\n", tool.Name, dimStyle.Render(fmt.Sprintf("(%s, %d min)", tool.Type, tool.DurationMinutes)))
		}
	}
	fmt.Println()
}

// ═══════════════════════════════════════════════════════════════════════════════
// TOOLS COMMAND
// ═══════════════════════════════════════════════════════════════════════════════

func toolsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools [id]",
		Short: "Browse the coping tool catalog",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := coping.Default()
			if err != nil {
				return err
			}

			if len(args) == 1 {
				tool, ok := catalog.ByID(args[0])
				if !ok {
					return fmt.Errorf("unknown coping tool %q", args[0])
				}
				fmt.Println()
				fmt.Println(headerStyle.Render(tool.Name))
				fmt.Println(tool.Description)
				fmt.Printf("%s %s, %d min, %s\n", labelStyle.Render("Details"), tool.Type, tool.DurationMinutes, tool.Difficulty)
				fmt.Println()
				for i, step := range tool.Instructions {
					fmt.Printf("  %d. %s\n", i+1, step)
				}
				fmt.Println()
				return nil
			}

			fmt.Println()
			for _, tool := range catalog.All() {
				fmt.Printf("  %-32s %s\n", emotionStyle.Render(tool.ID),
					dimStyle.Render(fmt.Sprintf("%s, %d min", tool.Type, tool.DurationMinutes)))
			}
			fmt.Println()
			return nil
		},
	}
	return cmd
}

// ═══════════════════════════════════════════════════════════════════════════════
// CONFIG COMMAND
// ═══════════════════════════════════════════════════════════════════════════════

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage Solace configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			fmt.Print(string(out))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfgPath != "" {
				fmt.Println(cfgPath)
				return nil
			}
			home, err := os.UserHomeDir()
			if err != nil {
				return err
			}
			fmt.Println(filepath.Join(home, ".solace", "config.yaml"))
			return nil
		},
	})

	return cmd
}
