package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diogo/localchat/internal/config"
	"github.com/diogo/localchat/internal/engine"
	"github.com/diogo/localchat/internal/history"
	"github.com/diogo/localchat/internal/tui"
)

var resumeFlag bool

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Start an interactive chat session with a local model.

The chat maintains conversation context across messages and the
transcript is saved to disk as you go. The model is loaded on the
first message. Type 'exit', 'quit', or press Ctrl+C to end the session.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat()
	},
}

func init() {
	chatCmd.Flags().BoolVarP(&resumeFlag, "resume", "r", false, "Pick a previous conversation to continue")
}

func runChat() error {
	cfg, _ := config.LoadConfig()

	modelName := getModel()
	if modelName == "" {
		return fmt.Errorf("no model configured: pass --model or set a default with 'localchat config'")
	}

	client := newEngineClient(cfg)
	manager := engine.NewManager(client)

	store, err := history.DefaultStore()
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}

	// Check the engine is reachable before dropping into the TUI
	spin := newSpinner("Connecting to engine")
	spin.start()
	if err := client.Health(context.Background()); err != nil {
		spin.stopWithError()
		fmt.Println(formatErrorMessage(err, "Engine unreachable"))
		return fmt.Errorf("engine unreachable: %w", err)
	}
	spin.stopWithSuccess("Connected")

	var conversationID string
	if resumeFlag {
		result, err := tui.RunHistorySelector(store, modelName)
		if err != nil {
			return fmt.Errorf("history selector failed: %w", err)
		}
		if !result.Confirmed {
			return nil
		}
		if !result.IsNew && result.Conversation != nil {
			conversationID = result.Conversation.ID
			if modelFlag == "" && result.Conversation.Model != "" {
				modelName = result.Conversation.Model
			}
		}
	}

	if conversationID == "" {
		conv, err := store.CreateConversation(modelName)
		if err != nil {
			return fmt.Errorf("failed to create conversation: %w", err)
		}
		conversationID = conv.ID
	}

	// Run chat TUI
	return tui.RunChat(client, manager, store, conversationID, modelName)
}
