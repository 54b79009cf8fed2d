package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docsmith/internal/core/domain"
)

var (
	chatTemplate string
	chatSession  string
	chatContext  []string
)

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Talk to the document assistant",
	Long: `Starts a conversation with the document assistant. Describe a product
idea and the assistant asks for whatever is missing before drafting a
document from the chosen template.

With a message argument a single turn is run and printed. Otherwise an
interactive session starts. REPL commands:

  /history   review the conversation
  /sessions  list sessions held by this process
  /clear     start over
  /quit      leave`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatTemplate, "template", "t", "", "template kind (default lean)")
	chatCmd.Flags().StringVar(&chatSession, "session", "", "session ID to continue")
	chatCmd.Flags().StringArrayVar(&chatContext, "context", nil, "project context as key=value (repeatable)")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	if agentService == nil {
		return errors.New("agent not configured")
	}

	kv, err := parseKeyValues(chatContext)
	if err != nil {
		return err
	}
	project := make(map[string]any, len(kv))
	for k, v := range kv {
		project[k] = v
	}

	sessionID := chatSession
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	ctx := context.Background()

	if len(args) > 0 {
		return chatTurn(ctx, cmd, sessionID, strings.Join(args, " "), project)
	}

	interactive := isInteractive(cmd.InOrStdin())
	if interactive {
		cmd.Println(heading("docsmith assistant"))
		cmd.Println(muted("Describe your product idea. /clear to restart, /quit to exit."))
		cmd.Println()
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		if interactive {
			cmd.Print(headingStyle.Render("> "))
		}
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line {
		case "/quit", "/exit":
			return nil
		case "/clear":
			if err := agentService.Clear(sessionID); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
				return fmt.Errorf("failed to clear session: %w", err)
			}
			cmd.Println(muted("Conversation cleared."))
			continue
		case "/history":
			if err := printHistory(cmd, sessionID); err != nil {
				return err
			}
			continue
		case "/sessions":
			for _, id := range agentService.Sessions() {
				marker := " "
				if id == sessionID {
					marker = "*"
				}
				cmd.Printf("%s %s\n", marker, id)
			}
			continue
		}

		if err := chatTurn(ctx, cmd, sessionID, line, project); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	return nil
}

func chatTurn(ctx context.Context, cmd *cobra.Command, sessionID, message string, project map[string]any) error {
	resp, err := agentService.Turn(ctx, sessionID, domain.TurnRequest{
		Message:        message,
		TemplateKind:   chatTemplate,
		ProjectContext: project,
	})
	if err != nil {
		return fmt.Errorf("agent failed: %w", err)
	}

	switch resp.Type {
	case domain.ResponseClarification:
		cmd.Println(warningStyle.Render(resp.Content))
	case domain.ResponseError:
		cmd.Println(errorStyle.Render(resp.Content))
	default:
		cmd.Println(resp.Content)
	}
	cmd.Println()
	return nil
}

func printHistory(cmd *cobra.Command, sessionID string) error {
	turns, err := agentService.History(sessionID)
	if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		return fmt.Errorf("failed to load history: %w", err)
	}
	if len(turns) == 0 {
		cmd.Println(muted("No messages yet."))
		return nil
	}
	for _, t := range turns {
		cmd.Printf("%s %s\n", muted(t.Timestamp.Format("15:04")), headingStyle.Render(string(t.Role)+":"))
		cmd.Println(t.Content)
		cmd.Println()
	}
	return nil
}

// isInteractive reports whether r is a terminal.
func isInteractive(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && isTerminal(f)
}
