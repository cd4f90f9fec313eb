package cli

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/example/novalearn/internal/bot"
	"github.com/example/novalearn/internal/scheduler"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// botCmd runs the Telegram bot together with the reminder scheduler
var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the Telegram bot and the streak scheduler",
	Long: `Runs the Telegram bot until interrupted.

The scheduler expires broken streaks after midnight and sends reminders
inside the configured notification window.`,
	Args: cobra.NoArgs,
	RunE: runBot,
}

func runBot(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	env, err := openEnvironment(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	b, err := bot.New(env.svc, bot.Options{
		Token:        cfg.Telegram.Token,
		AdminUserIDs: cfg.Telegram.AdminUserIDs,
	}, logger)
	if err != nil {
		return err
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	sched := scheduler.New(b, env.svc.Profiles(), env.svc.Activities(), env.svc.Sessions(), scheduler.Options{
		StartHour: cfg.Notifications.StartHour,
		EndHour:   cfg.Notifications.EndHour,
		Location:  loc,
	}, logger)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		// Stop the scheduler too when the update stream ends
		defer stop()
		return b.Run(egCtx)
	})
	eg.Go(func() error {
		if err := sched.Start(); err != nil {
			return err
		}
		<-egCtx.Done()
		sched.Stop()
		return nil
	})

	logger.Info("nova is running", zap.String("flavor", cfg.Flavor), zap.String("database", cfg.Database.Type))
	if err := eg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("shutting down")
	return nil
}
