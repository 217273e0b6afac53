package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/clauselens/clauselens/internal/db"
	"github.com/clauselens/clauselens/internal/session"
)

// cliSessionID keys the persisted CLI conversation. One per data dir.
const cliSessionID = "cli"

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a single question about the indexed document",
	Long: `Runs one agent turn against the indexed document. The conversation is
persisted in the data directory, so consecutive asks build on each
other the way a chat does.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

// openCLISession prepares a session with the persisted index and the
// stored CLI conversation.
func openCLISession(ctx context.Context) (sess *session.Session, store *db.DB, err error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	opts, err := sessionOptionsFromConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	sess, err = session.New(opts)
	if err != nil {
		return nil, nil, err
	}

	if err := sess.LoadIndex(ctx, indexDir(cfg)); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: no index loaded (%v)\nDocument questions need `clauselens ingest` first.\n", err)
	}

	store, err = db.Open(dbPath(cfg))
	if err != nil {
		return nil, nil, fmt.Errorf("opening history store: %w", err)
	}
	turns, err := store.LoadConversation(ctx, cliSessionID)
	if err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("loading conversation: %w", err)
	}
	if len(turns) > 0 {
		sess.RestoreConversation(turns)
	}
	return sess, store, nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	sess, store, err := openCLISession(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	answer, err := sess.Ask(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Println(answer)

	if err := store.SaveConversation(ctx, cliSessionID, sess.DocumentSource(), sess.History(0)); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not persist conversation: %v\n", err)
	}
	return nil
}
