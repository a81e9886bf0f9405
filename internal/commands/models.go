package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/diogo/localchat/internal/config"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List models available on the engine",
	Long:  `List the models the local inference engine knows about and their load state.`,
	RunE:  runModels,
}

func runModels(cmd *cobra.Command, args []string) error {
	cfg, _ := config.LoadConfig()
	client := newEngineClient(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	statuses, err := client.ListModels(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, formatErrorMessage(err, "Failed to list models"))
		return fmt.Errorf("failed to list models: %w", err)
	}

	if len(statuses) == 0 {
		fmt.Println("No models found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tSTATUS\tLOADED\tDEFAULT")
	_, _ = fmt.Fprintln(w, "--\t------\t------\t-------")

	for _, st := range statuses {
		status := st.Status
		if status == "" {
			status = "available"
		}
		loaded := ""
		if st.Loaded {
			loaded = "✓"
		}
		isDefault := ""
		if st.ID == cfg.DefaultModel {
			isDefault = "✓"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", st.ID, status, loaded, isDefault)
	}

	return w.Flush()
}
