// Package main is the entry point for the keypad calculator.
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/lemonberrylabs/keypad-calculator/pkg/api"
	grpcapi "github.com/lemonberrylabs/keypad-calculator/pkg/api/grpc"
	"github.com/lemonberrylabs/keypad-calculator/pkg/calculator"
	"github.com/lemonberrylabs/keypad-calculator/pkg/config"
	"github.com/lemonberrylabs/keypad-calculator/pkg/editor"
	"github.com/lemonberrylabs/keypad-calculator/pkg/store"
	"github.com/lemonberrylabs/keypad-calculator/pkg/tui"
	"github.com/lemonberrylabs/keypad-calculator/web"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:          "keycalc",
	Short:        "Keypad calculator server and tools",
	RunE:         serve,
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP, gRPC and web UI servers",
	Args:  cobra.NoArgs,
	RunE:  serve,
}

var evalCmd = &cobra.Command{
	Use:   "eval <expression>",
	Short: "Evaluate an expression and print the answer",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEval(cmd.OutOrStdout(), strings.Join(args, ""))
	},
}

var pressCmd = &cobra.Command{
	Use:   "press <label>...",
	Short: "Replay key labels from an empty calculator",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPress(cmd.OutOrStdout(), args)
	},
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Run the calculator in the terminal",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return tui.Run(cfg.Keypad.Rows)
	},
}

func init() {
	rootCmd.Version = version + " (commit=" + commit + ", built=" + date + ")"
	rootCmd.SetVersionTemplate("keycalc version {{.Version}}\n")

	rootCmd.PersistentFlags().String("config", "", "YAML config file (env KEYCALC_CONFIG)")

	for _, cmd := range []*cobra.Command{rootCmd, serveCmd} {
		cmd.Flags().Int("port", 0, "HTTP server port (default 8787, env PORT)")
		cmd.Flags().Int("grpc-port", 0, "gRPC server port (default 8788, env GRPC_PORT)")
		cmd.Flags().String("host", "", "Bind address (default 0.0.0.0, env HOST)")
		cmd.Flags().Int("max-sessions", 0, "Maximum concurrent sessions (default 1000)")
		cmd.Flags().Bool("request-log", false, "Log every HTTP request")
	}

	rootCmd.AddCommand(serveCmd, evalCmd, pressCmd, tuiCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := os.Getenv("KEYCALC_CONFIG")
	if v, _ := cmd.Flags().GetString("config"); v != "" {
		path = v
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func serve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if v, _ := cmd.Flags().GetInt("port"); v != 0 {
		cfg.Server.Port = v
	}
	if v, _ := cmd.Flags().GetInt("grpc-port"); v != 0 {
		cfg.Server.GRPCPort = v
	}
	if v, _ := cmd.Flags().GetString("host"); v != "" {
		cfg.Server.Host = v
	}
	if v, _ := cmd.Flags().GetInt("max-sessions"); v != 0 {
		cfg.Sessions.Max = v
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	requestLog, _ := cmd.Flags().GetBool("request-log")

	s := store.New(cfg.Sessions.Max)
	server := api.New(s, api.Options{RequestLog: requestLog})

	// Register the web UI (non-fatal if template parsing fails)
	func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("Warning: web UI disabled due to template error: %v", r)
			}
		}()
		ui := web.New(s, cfg.Keypad.Rows)
		ui.Register(server.App())
	}()

	// Start gRPC server
	grpcServer := grpcapi.New(s)
	go func() {
		log.Printf("gRPC server listening on %s", cfg.GRPCAddr())
		if err := grpcServer.Serve(cfg.GRPCAddr()); err != nil {
			log.Fatalf("gRPC server error: %v", err)
		}
	}()

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("Shutting down keycalc...")
		grpcServer.GracefulStop()
		if err := server.Shutdown(); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	}()

	log.Printf("keycalc listening on %s (max sessions=%d)", cfg.Addr(), cfg.Sessions.Max)
	return server.Listen(cfg.Addr())
}

func runEval(w io.Writer, expression string) error {
	answer, err := calculator.Answer(expression)
	if err != nil {
		fmt.Fprintln(w, color.RedString(editor.ErrorAnswer))
		return fmt.Errorf("evaluating %q: %w", expression, err)
	}
	if answer == "" {
		return fmt.Errorf("expression %q is incomplete", expression)
	}
	fmt.Fprintln(w, answer)
	return nil
}

func runPress(w io.Writer, labels []string) error {
	calc := calculator.New()
	for _, label := range labels {
		if _, err := calc.Press(label); err != nil {
			return err
		}
	}

	state := calc.State()
	fmt.Fprintf(w, "%s\n", state.Expression)
	switch state.Answer {
	case "":
	case editor.ErrorAnswer:
		fmt.Fprintln(w, color.RedString("= %s", state.Answer))
	default:
		fmt.Fprintln(w, color.GreenString("= %s", state.Answer))
	}
	return nil
}
