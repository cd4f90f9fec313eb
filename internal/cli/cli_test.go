package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/novalearn/internal/app"
	"github.com/example/novalearn/internal/config"
	"github.com/example/novalearn/internal/database"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// setupCLI points the global config at a fresh SQLite file
func setupCLI(t *testing.T) {
	t.Helper()
	prevCfg, prevLogger := cfg, logger
	t.Cleanup(func() { cfg, logger = prevCfg, prevLogger })

	cfg = config.Default()
	cfg.Database.Type = "sqlite"
	cfg.Database.SQLitePath = filepath.Join(t.TempDir(), "nova.db")
	cfg.Redis.URL = ""
	cfg.Gemini.APIKey = ""
	logger = zaptest.NewLogger(t)
}

func run(t *testing.T, fn func(*cobra.Command, []string) error, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	err := fn(cmd, args)
	return buf.String(), err
}

func mustRun(t *testing.T, fn func(*cobra.Command, []string) error, args ...string) string {
	t.Helper()
	out, err := run(t, fn, args...)
	require.NoError(t, err)
	return out
}

func onboardLearner(t *testing.T, domain string) string {
	t.Helper()
	prevName, prevHour := onboardUsername, onboardHour
	t.Cleanup(func() { onboardUsername, onboardHour = prevName, prevHour })
	onboardUsername = "dr-test"
	onboardHour = app.DefaultNotificationHour

	out := mustRun(t, runOnboard, domain)
	fields := strings.Fields(out)
	require.GreaterOrEqual(t, len(fields), 3, out)
	return fields[2]
}

func TestSeedAndComplete(t *testing.T) {
	setupCLI(t)

	out := mustRun(t, runSeed)
	assert.Contains(t, out, "Seeded catalog:")

	// Seeding twice only updates
	out = mustRun(t, runSeed)
	assert.Contains(t, out, " 0 created")

	user := onboardLearner(t, "internal-medicine")

	out = mustRun(t, runComplete, user, "case:chest-pain")
	assert.Contains(t, out, "Completed Acute Chest Pain Assessment: 350 XP total")
	assert.Contains(t, out, "Achievement unlocked: First Diagnosis (+50 XP)")

	out = mustRun(t, runComplete, user, "chest-pain")
	assert.Contains(t, out, "was already completed")

	out = mustRun(t, runStatus, user)
	assert.Contains(t, out, "Learner:   dr-test")
	assert.Contains(t, out, "Level:     1 (350 XP")
	assert.Contains(t, out, "Skills:    Cardiology=3")
	assert.Contains(t, out, "Achievement: First Diagnosis")
}

func TestComplete_UnknownItem(t *testing.T) {
	setupCLI(t)
	mustRun(t, runSeed)
	user := onboardLearner(t, "psychiatry")

	_, err := run(t, runComplete, user, "case:does-not-exist")
	assert.ErrorIs(t, err, app.ErrUnknownItem)
}

func TestAward(t *testing.T) {
	setupCLI(t)
	user := onboardLearner(t, "internal-medicine")

	out := mustRun(t, runAward, user, "2000")
	assert.Contains(t, out, "Awarded 2000 XP: 2300 XP total, level 3")
	assert.Contains(t, out, "Level up: 1 -> 3")
	assert.Contains(t, out, "Achievement unlocked: Residency (+300 XP)")

	_, err := run(t, runAward, user, "lots")
	assert.Error(t, err)

	_, err = run(t, runAward, "nobody", "10")
	assert.ErrorIs(t, err, app.ErrNotOnboarded)
}

func TestReset(t *testing.T) {
	setupCLI(t)
	user := onboardLearner(t, "internal-medicine")
	mustRun(t, runAward, user, "500")

	out := mustRun(t, runReset, user)
	assert.Contains(t, out, "Reset progression of "+user)

	out = mustRun(t, runStatus, user)
	assert.Contains(t, out, "Level:     1 (0 XP")
	assert.Contains(t, out, "Streak:    0")
}

func TestOnboard_UnknownDomain(t *testing.T) {
	setupCLI(t)
	_, err := run(t, runOnboard, "astrology")
	assert.ErrorIs(t, err, app.ErrUnknownDomain)
}

func TestImport(t *testing.T) {
	setupCLI(t)
	prevSheet, prevRow := importSheet, importStartRow
	t.Cleanup(func() { importSheet, importStartRow = prevSheet, prevRow })
	importSheet, importStartRow = "Sheet1", 2

	body := "id,kind,title,domain,difficulty,xp,skills,description\n" +
		"Pediatrics,,\n" +
		"bronchiolitis,case,Wheezy Infant,,beginner,150,Neonatology,\n" +
		"overdose,battle,Paracetamol Overdose,emergency-medicine,advanced,350,Toxicology,\n"
	path := filepath.Join(t.TempDir(), "items.csv")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	out := mustRun(t, runImport, path)
	assert.Contains(t, out, "Processed 2 rows: 2 created, 0 updated, 0 skipped")

	user := onboardLearner(t, "pediatrics")
	out = mustRun(t, runComplete, user, "bronchiolitis")
	assert.Contains(t, out, "Completed Wheezy Infant")
}

func TestFlashcards(t *testing.T) {
	setupCLI(t)
	mustRun(t, runSeed)
	prev := flashcardCount
	t.Cleanup(func() { flashcardCount = prev })
	flashcardCount = 2

	out := mustRun(t, runFlashcards, "cardiovascular", "heart failure")
	assert.Contains(t, out, "Added 2 flashcards to cardiovascular")
	assert.Contains(t, out, "cardiovascular-")
	assert.Contains(t, out, "heart failure")

	_, err := run(t, runFlashcards, "chest-pain")
	assert.ErrorIs(t, err, app.ErrUnknownItem)
}

func TestRemind_DryRun(t *testing.T) {
	setupCLI(t)
	prev := remindDryRun
	t.Cleanup(func() { remindDryRun = prev })
	remindDryRun = true

	user := onboardLearner(t, "internal-medicine")

	// Enrolling counts as today's activity
	out := mustRun(t, runRemind, user)
	assert.Contains(t, out, "already active today")

	mustRun(t, runReset, user)
	out = mustRun(t, runRemind, user)
	assert.Contains(t, out, "Would remind dr-test (streak 0)")

	_, err := run(t, runRemind, "nobody")
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestRemind_RequiresToken(t *testing.T) {
	setupCLI(t)
	prev := remindDryRun
	t.Cleanup(func() { remindDryRun = prev })
	remindDryRun = false
	cfg.Telegram.Token = ""

	user := onboardLearner(t, "internal-medicine")
	_, err := run(t, runRemind, user)
	assert.Error(t, err)
}

func TestRootLoadsConfigFile(t *testing.T) {
	prevCfg, prevLogger := cfg, logger
	prevPath, prevVerbose := configPath, verbose
	t.Cleanup(func() {
		cfg, logger = prevCfg, prevLogger
		configPath, verbose = prevPath, prevVerbose
	})
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("TIMEZONE", "")

	path := filepath.Join(t.TempDir(), "nova.yaml")
	require.NoError(t, os.WriteFile(path, []byte("flavor: mentoro\nlog:\n  level: warn\ntimezone: UTC\n"), 0o644))

	configPath, verbose = path, false
	require.NoError(t, rootCmd.PersistentPreRunE(rootCmd, nil))
	assert.Equal(t, "mentoro", cfg.Flavor)
	assert.Equal(t, "warn", cfg.Log.Level)
	require.NotNil(t, logger)

	verbose = true
	require.NoError(t, rootCmd.PersistentPreRunE(rootCmd, nil))
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestRootRejectsMissingConfigFile(t *testing.T) {
	prevPath := configPath
	t.Cleanup(func() { configPath = prevPath })

	configPath = filepath.Join(t.TempDir(), "missing.yaml")
	assert.Error(t, rootCmd.PersistentPreRunE(rootCmd, nil))
}

func TestBot_RequiresToken(t *testing.T) {
	setupCLI(t)
	cfg.Telegram.Token = ""
	_, err := run(t, runBot)
	assert.Error(t, err)
}
