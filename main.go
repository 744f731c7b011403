package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"fetchbot/internal/app"
	"fetchbot/internal/config"
	"fetchbot/internal/formatter"
	"fetchbot/internal/scraper"

	"github.com/spf13/cobra"
)

var version = "dev"

var (
	outputFormat string
	outputFile   string
	timeout      time.Duration
	showUI       bool
	proxyURL     string
	configPath   string
	logLevel     string
)

func main() {
	var rootCmd = &cobra.Command{
		Use:     "fetchbot",
		Short:   "Chat-bot style fetchers for weather, classes, feeds and comics",
		Version: version,
		Long: `fetchbot answers the commands of a small chat bot from the terminal:
BOM weather forecasts, Compass class lists, top posts of a reddit
community and random xkcd comics.`,
		Example: `  # Today's forecast for Melbourne
  fetchbot weather melbourne vic

  # Top three posts of r/golang as JSON
  fetchbot feed golang 3 -f json

  # Several commands at once, printed in order
  fetchbot run "meme 2" "comic" "weather sydney nsw"

  # Class list, with the browser window visible
  fetchbot classes s12345 'hunter2' --showui`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "text", "Output format (html, text, markdown, json, csv)")
	rootCmd.PersistentFlags().StringVarP(&outputFile, "output", "o", "", "Output file path (format inferred from extension if -f not specified)")
	rootCmd.PersistentFlags().DurationVarP(&timeout, "timeout", "t", 0, "Per-request or per-browser-step timeout (0 keeps the configured value)")
	rootCmd.PersistentFlags().BoolVar(&showUI, "showui", false, "Show browser UI (disable headless mode)")
	rootCmd.PersistentFlags().StringVarP(&proxyURL, "proxy", "p", os.Getenv("FETCHBOT_PROXY"), "Proxy URL (e.g. http://127.0.0.1:7890), defaults to FETCHBOT_PROXY env var")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		verbCommand("weather <locality> <region>", "BOM forecast for a locality, e.g. weather melbourne vic", cobra.ExactArgs(2)),
		verbCommand("classes <username> <password>", "Log into Compass and list today's classes", cobra.ExactArgs(2)),
		verbCommand("feed <community> [limit]", "Top posts of a reddit community", cobra.RangeArgs(1, 2), "subreddit"),
		verbCommand("meme [limit]", "Top posts from r/memes", cobra.MaximumNArgs(1)),
		verbCommand("dankmeme [limit]", "Top posts from r/dankmemes", cobra.MaximumNArgs(1)),
		verbCommand("shitpost [limit]", "Top posts from r/shitposting", cobra.MaximumNArgs(1)),
		verbCommand("comic", "A random xkcd comic", cobra.NoArgs),
		runCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		var r reported
		if !errors.As(err, &r) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

// reported marks an error that was already printed.
type reported struct{ error }

func verbCommand(use, short string, args cobra.PositionalArgs, aliases ...string) *cobra.Command {
	verb := strings.Fields(use)[0]
	return &cobra.Command{
		Use:     use,
		Short:   short,
		Aliases: aliases,
		Args:    args,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				content, err := a.Dispatch(ctx, verb, args, options())
				if err != nil {
					fmt.Fprintln(os.Stderr, errorLine(verb, err))
					return reported{err}
				}
				out, err := formatter.Format(content, outputFormat)
				if err != nil {
					fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
					return reported{err}
				}
				if err := writeOutput(out); err != nil {
					fmt.Fprintln(os.Stderr, "Error:", err)
					return reported{err}
				}
				return nil
			})
		},
	}
}

func runCommand() *cobra.Command {
	return &cobra.Command{
		Use:   `run "<command> [args]"...`,
		Short: "Run several commands concurrently and print them in order",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, lines []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				var failed []error
				var outputs []string
				for _, r := range a.RunMany(ctx, lines, options()) {
					if r.Err != nil {
						fmt.Fprintln(os.Stderr, errorLine(r.Verb, r.Err))
						failed = append(failed, r.Err)
						continue
					}
					out, err := formatter.Format(r.Content, outputFormat)
					if err != nil {
						fmt.Fprintf(os.Stderr, "Error formatting output of %q: %v\n", r.Line, err)
						failed = append(failed, err)
						continue
					}
					outputs = append(outputs, out)
				}
				if len(outputs) > 0 {
					if err := writeOutput(strings.Join(outputs, "\n")); err != nil {
						fmt.Fprintln(os.Stderr, "Error:", err)
						return reported{err}
					}
				}
				if len(failed) > 0 {
					return reported{errors.Join(failed...)}
				}
				return nil
			})
		},
	}
}

// withApp loads configuration, applies flag overrides and runs fn with a
// ready App that is closed afterwards.
func withApp(ctx context.Context, fn func(ctx context.Context, a *app.App) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// If output file is specified but format is not, infer format from file extension
	if outputFile != "" && outputFormat == "text" {
		if inferred := formatter.InferFromExtension(outputFile); inferred != "" {
			outputFormat = inferred
		}
	}
	if !formatter.Valid(outputFormat) {
		err := fmt.Errorf("invalid output format: %s", outputFormat)
		fmt.Fprintln(os.Stderr, "Error:", err)
		return reported{err}
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config:", err)
		return reported{err}
	}
	if proxyURL != "" {
		cfg.HTTP.ProxyURL = proxyURL
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
		if err := cfg.Validate(); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return reported{err}
		}
	}

	a, err := app.New(ctx, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return reported{err}
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.Close(shutdownCtx); err != nil {
			a.Logger().Warn("shutdown failed", "err", err)
		}
	}()

	return fn(ctx, a)
}

func options() scraper.Options {
	return scraper.Options{Timeout: timeout, ShowUI: showUI}
}

// errorLine is the single line a failed command prints.
func errorLine(verb string, err error) string {
	if errors.Is(err, scraper.ErrNoResult) {
		return fmt.Sprintf("Could not fetch a %s.", verb)
	}
	if verb == "" {
		return fmt.Sprintf("Error: %v", err)
	}
	return fmt.Sprintf("Error fetching %s: %v", verb, err)
}

func writeOutput(out string) error {
	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(out), 0644); err != nil {
			return fmt.Errorf("failed to write to file: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Output written to: %s\n", outputFile)
		return nil
	}
	fmt.Print(out)
	if !strings.HasSuffix(out, "\n") {
		fmt.Println()
	}
	return nil
}
