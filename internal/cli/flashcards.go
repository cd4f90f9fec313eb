package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var flashcardCount int

var flashcardsCmd = &cobra.Command{
	Use:   "flashcards <deck> [topic]",
	Short: "Have the mentor write new flashcards for a deck",
	Long: `Generates flashcards with the configured model and adds them to a deck.

The topic defaults to the deck title. Without a Gemini key the cards are
demo placeholders.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runFlashcards,
}

func init() {
	flashcardsCmd.Flags().IntVarP(&flashcardCount, "count", "n", 5, "Number of cards to generate")
}

func runFlashcards(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	env, err := openEnvironment(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	var topic string
	if len(args) > 1 {
		topic = strings.TrimSpace(args[1])
	}
	cards, err := env.svc.GenerateDeckCards(ctx, args[0], topic, flashcardCount)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Added %d flashcards to %s\n", len(cards), args[0])
	for _, c := range cards {
		fmt.Fprintf(out, "  %s: %s\n", c.ID, c.Question)
	}
	return nil
}
