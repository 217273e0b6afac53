package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat interactively about the indexed document",
	Long: `Starts an interactive session against the indexed document. The
conversation is persisted between runs.

Commands inside the chat:
  /history   show recent turns
  /suggest   show follow-up suggestions
  /clear     forget the conversation
  /quit      exit`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	sess, store, err := openCLISession(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	if n := sess.ChunkCount(); n > 0 {
		fmt.Printf("Chatting over %d indexed chunk(s) (%s index). Type /quit to exit.\n", n, sess.IndexName())
	} else {
		fmt.Println("No document indexed yet; general questions only. Type /quit to exit.")
	}

	save := func() {
		if err := store.SaveConversation(ctx, cliSessionID, sess.DocumentSource(), sess.History(0)); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not persist conversation: %v\n", err)
		}
	}

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line {
		case "/quit", "/exit":
			save()
			return nil
		case "/clear":
			sess.ClearConversation()
			save()
			fmt.Println("Conversation cleared.")
			continue
		case "/history":
			turns := sess.History(10)
			if len(turns) == 0 {
				fmt.Println("No conversation yet.")
				continue
			}
			for _, turn := range turns {
				fmt.Printf("[%s] You: %s\n", turn.Timestamp.Format("15:04"), turn.UserInput)
				fmt.Printf("        %s\n", truncate(turn.AgentResponse, 200))
			}
			continue
		case "/suggest":
			for _, s := range sess.Suggestions() {
				fmt.Println("  - " + s)
			}
			continue
		}

		answer, err := sess.Ask(ctx, line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}
		fmt.Println()
		fmt.Println(answer)
		fmt.Println()
		save()
	}

	save()
	return scanner.Err()
}
