// Package commands provides CLI commands for localchat.
package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/diogo/localchat/internal/config"
	"github.com/diogo/localchat/internal/engine"
)

var (
	// Global flags
	modelFlag       string
	outputFlag      string
	fileFlag        string
	personaFlag     string
	temperatureFlag float64
	rawFlag         bool

	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "localchat [prompt]",
	Short: "Chat with a local inference engine",
	Long: `localchat is a command-line interface for chatting with a locally
hosted inference engine such as llama.cpp or llama-swap. Models are
loaded on demand and conversations are stored on disk.

Examples:
  localchat chat                        Start interactive chat
  localchat config                      Configure settings
  localchat "What is Go?"               Send a single query
  localchat -f prompt.md                Read prompt from file
  cat prompt.md | localchat             Read prompt from stdin
  localchat "Hello" -o response.md      Save response to file`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// Check for version flag
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Printf("localchat %s (built %s)\n", Version, BuildTime)
			return nil
		}

		// Check for stdin input
		stat, _ := os.Stdin.Stat()
		hasStdin := (stat.Mode() & os.ModeCharDevice) == 0

		// Check for file input
		if fileFlag != "" {
			data, err := os.ReadFile(fileFlag)
			if err != nil {
				return fmt.Errorf("failed to read file: %w", err)
			}
			return runQuery(string(data), rawFlag || !isStdoutTTY())
		}

		// Check for stdin
		if hasStdin {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("failed to read stdin: %w", err)
			}
			return runQuery(string(data), rawFlag || !isStdoutTTY())
		}

		// Check for positional argument
		if len(args) > 0 {
			return runQuery(args[0], rawFlag || !isStdoutTTY())
		}

		// No input - show help
		return cmd.Help()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&modelFlag, "model", "m", "", "Model to use (e.g., qwen2.5-7b-instruct)")
	rootCmd.PersistentFlags().StringVarP(&personaFlag, "persona", "p", "", "Persona (system prompt) to use")
	rootCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Save response to file")
	rootCmd.Flags().StringVarP(&fileFlag, "file", "f", "", "Read prompt from file")
	rootCmd.Flags().Float64VarP(&temperatureFlag, "temperature", "t", -1, "Sampling temperature (overrides config)")
	rootCmd.Flags().BoolVar(&rawFlag, "raw", false, "Print raw response text without decoration")
	rootCmd.Flags().BoolP("version", "v", false, "Show version and exit")

	// Add subcommands
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(personaCmd)
}

// getModel returns the model to use (from flag or config)
func getModel() string {
	if modelFlag != "" {
		return modelFlag
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return ""
	}

	return cfg.DefaultModel
}

// getTemperature returns the sampling temperature (from flag or config)
func getTemperature(cfg config.Config) float64 {
	if temperatureFlag >= 0 {
		return temperatureFlag
	}
	return cfg.Temperature
}

// newEngineClient builds an engine client from config
func newEngineClient(cfg config.Config) *engine.Client {
	url := cfg.EngineURL
	if url == "" {
		url = engine.DefaultBaseURL
	}
	return engine.NewClient(engine.WithBaseURL(url))
}
