package cli

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/example/novalearn/internal/app"
	"github.com/example/novalearn/internal/catalog"
	"github.com/example/novalearn/internal/excel"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	importSheet    string
	importStartRow int

	onboardUsername string
	onboardHour     int
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the built-in catalog of cases, decks and quests",
	Args:  cobra.NoArgs,
	RunE:  runSeed,
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import catalog items from an Excel or CSV file",
	Long: `Imports catalog items from an .xlsx or .csv file.

Columns: id, kind, title, domain, difficulty, xp, skills (';'-separated), description.
A row with only a domain name in the first column starts a new domain section.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var onboardCmd = &cobra.Command{
	Use:   "onboard <domain>",
	Short: "Create a learner outside Telegram",
	Args:  cobra.ExactArgs(1),
	RunE:  runOnboard,
}

var statusCmd = &cobra.Command{
	Use:   "status <user>",
	Short: "Show a learner's progression",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

var awardCmd = &cobra.Command{
	Use:   "award <user> <xp>",
	Short: "Grant XP to a learner",
	Args:  cobra.ExactArgs(2),
	RunE:  runAward,
}

var completeCmd = &cobra.Command{
	Use:   "complete <user> <item>",
	Short: "Mark a catalog item completed for a learner",
	Long:  `Completes an item by id ("chest-pain") or by key ("case:chest-pain").`,
	Args:  cobra.ExactArgs(2),
	RunE:  runComplete,
}

var resetCmd = &cobra.Command{
	Use:   "reset <user>",
	Short: "Wipe a learner's progression, reviews and streak",
	Args:  cobra.ExactArgs(1),
	RunE:  runReset,
}

func init() {
	importCmd.Flags().StringVar(&importSheet, "sheet", "Sheet1", "Sheet to read from Excel files")
	importCmd.Flags().IntVar(&importStartRow, "start-row", 2, "First row to import (1-based)")

	onboardCmd.Flags().StringVar(&onboardUsername, "username", "", "Display name")
	onboardCmd.Flags().IntVar(&onboardHour, "hour", app.DefaultNotificationHour, "Reminder hour (0-23)")
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	env, err := openEnvironment(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	res, err := catalog.Seed(ctx, env.catalog())
	if err != nil {
		return err
	}
	logger.Info("catalog seeded", zap.Int("created", res.Created), zap.Int("updated", res.Updated))
	fmt.Fprintf(cmd.OutOrStdout(), "Seeded catalog: %d created, %d updated, %d flashcards\n",
		res.Created, res.Updated, res.Flashcards)
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	env, err := openEnvironment(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	ic := excel.DefaultImportConfig()
	ic.FilePath = args[0]
	ic.SheetName = importSheet
	ic.StartRow = importStartRow

	res, err := excel.ImportItems(ctx, env.catalog(), ic)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Processed %d rows: %d created, %d updated, %d skipped\n",
		res.TotalProcessed, res.Created, res.Updated, res.Skipped)
	for _, e := range res.Errors {
		fmt.Fprintf(out, "  %s\n", e)
	}
	return nil
}

func runOnboard(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	env, err := openEnvironment(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	hour := onboardHour
	p, _, err := env.svc.Onboard(ctx, app.OnboardRequest{
		Username:         onboardUsername,
		DomainID:         args[0],
		NotificationHour: &hour,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created learner %s in %s\n", p.ID, p.DomainID)
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	env, err := openEnvironment(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	st, err := env.svc.Status(ctx, args[0])
	if err != nil {
		return err
	}
	printStatus(cmd.OutOrStdout(), st)
	return nil
}

func printStatus(w io.Writer, st *app.Status) {
	p := st.Progress
	name := st.Profile.Username
	if name == "" {
		name = st.Profile.ID
	}
	fmt.Fprintf(w, "Learner:   %s\n", name)
	if st.Domain.ID != "" {
		fmt.Fprintf(w, "Domain:    %s\n", st.Domain.Name)
	}
	fmt.Fprintf(w, "Rank:      %s\n", p.Rank)
	fmt.Fprintf(w, "Level:     %d (%d XP, %d to next)\n", p.Level, p.TotalXP, p.XPToNextLevel)
	fmt.Fprintf(w, "Streak:    %d\n", p.Streak)
	fmt.Fprintf(w, "Completed: %d\n", len(p.CompletedItems))
	fmt.Fprintf(w, "Due cards: %d\n", st.DueCards)

	if len(p.SkillPoints) > 0 {
		skills := make([]string, 0, len(p.SkillPoints))
		for s := range p.SkillPoints {
			skills = append(skills, s)
		}
		sort.Strings(skills)
		parts := make([]string, 0, len(skills))
		for _, s := range skills {
			parts = append(parts, fmt.Sprintf("%s=%d", s, p.SkillPoints[s]))
		}
		fmt.Fprintf(w, "Skills:    %s\n", strings.Join(parts, ", "))
	}
	for _, a := range st.Achievements {
		fmt.Fprintf(w, "Achievement: %s\n", a.Name)
	}
}

func runAward(cmd *cobra.Command, args []string) error {
	amount, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid xp amount %q", args[1])
	}

	ctx := commandContext(cmd)
	env, err := openEnvironment(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	out, err := env.svc.AwardXP(ctx, args[0], amount)
	if err != nil {
		return err
	}
	printOutcome(cmd.OutOrStdout(), fmt.Sprintf("Awarded %d XP", amount), out)
	return nil
}

func runComplete(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	env, err := openEnvironment(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	item, out, err := env.svc.CompleteItem(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	title := fmt.Sprintf("Completed %s", item.Title)
	if !out.Award.Granted {
		title = fmt.Sprintf("%s was already completed", item.Title)
	}
	printOutcome(cmd.OutOrStdout(), title, out)
	return nil
}

func printOutcome(w io.Writer, title string, out app.Outcome) {
	a := out.Award
	fmt.Fprintf(w, "%s: %d XP total, level %d, %s\n", title, a.TotalXP, a.Level, a.Rank)
	if a.LeveledUp() {
		fmt.Fprintf(w, "Level up: %d -> %d\n", a.PreviousLevel, a.Level)
	}
	if a.RankChanged() {
		fmt.Fprintf(w, "New rank: %s\n", a.Rank)
	}
	for _, ach := range out.Unlocked {
		fmt.Fprintf(w, "Achievement unlocked: %s (+%d XP)\n", ach.Name, ach.XPReward)
	}
}

func runReset(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	env, err := openEnvironment(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	if err := env.svc.Reset(ctx, args[0]); err != nil {
		return err
	}
	logger.Info("progression reset", zap.String("user", args[0]))
	fmt.Fprintf(cmd.OutOrStdout(), "Reset progression of %s\n", args[0])
	return nil
}
