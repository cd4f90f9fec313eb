package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/example/novalearn/internal/bot"
	"github.com/example/novalearn/internal/scheduler"
	"github.com/example/novalearn/pkg/models"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var remindDryRun bool

var remindCmd = &cobra.Command{
	Use:   "remind <user>",
	Short: "Send a learner's streak reminder now",
	Long: `Checks one learner outside the notification window and sends the streak
reminder through Telegram unless they were already active today.`,
	Args: cobra.ExactArgs(1),
	RunE: runRemind,
}

func init() {
	remindCmd.Flags().BoolVar(&remindDryRun, "dry-run", false, "Print the reminder instead of sending it")
}

// printNotifier writes reminders to the terminal
type printNotifier struct {
	w io.Writer
}

func (n printNotifier) SendStreakReminder(_ context.Context, p models.Profile, streak int) error {
	name := p.Username
	if name == "" {
		name = p.ID
	}
	_, err := fmt.Fprintf(n.w, "Would remind %s (streak %d)\n", name, streak)
	return err
}

func runRemind(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	env, err := openEnvironment(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	out := cmd.OutOrStdout()
	var notifier scheduler.Notifier = printNotifier{w: out}
	if !remindDryRun {
		b, err := bot.New(env.svc, bot.Options{Token: cfg.Telegram.Token}, logger)
		if err != nil {
			return err
		}
		if _, err := b.Connect(); err != nil {
			return err
		}
		notifier = b
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	sched := scheduler.New(notifier, env.svc.Profiles(), env.svc.Activities(), env.svc.Sessions(), scheduler.Options{
		StartHour: cfg.Notifications.StartHour,
		EndHour:   cfg.Notifications.EndHour,
		Location:  loc,
	}, logger)

	sent, err := sched.RunManualCheck(ctx, args[0])
	if err != nil {
		return err
	}
	logger.Info("manual reminder check", zap.String("user", args[0]), zap.Bool("sent", sent))
	if !sent {
		fmt.Fprintf(out, "%s was already active today\n", args[0])
		return nil
	}
	if !remindDryRun {
		fmt.Fprintf(out, "Reminder sent to %s\n", args[0])
	}
	return nil
}
