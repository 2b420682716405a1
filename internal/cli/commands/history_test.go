package commands

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/leapstack-labs/strscan/internal/cli/config"
	cliutil "github.com/leapstack-labs/strscan/internal/cli/testutil"
	"github.com/leapstack-labs/strscan/internal/state"
	"github.com/leapstack-labs/strscan/internal/testutil"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listRuns(t *testing.T, path string) []state.Run {
	t.Helper()
	store, err := state.Open(path)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	runs, err := store.ListRuns(context.Background(), 0)
	require.NoError(t, err)
	return runs
}

func TestScan_RecordsRun(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")

	res := execute(t, NewScanCommand(), "a=1\nb=2\n", "--recipe", "k=until:= char:= v=int", "--db", db)
	require.NoError(t, res.err)

	runs := listRuns(t, db)
	require.Len(t, runs, 1)
	run := runs[0]
	assert.Equal(t, "k=until:= char:= v=int", run.Recipe)
	assert.Equal(t, "<stdin>", run.Source)
	assert.Equal(t, 2, run.Lines)
	assert.Zero(t, run.Failed)
	assert.Empty(t, run.Error)
	assert.NotNil(t, run.FinishedAt)

	show := execute(t, NewHistoryCommand(), "", "--db", db, run.ShortID())
	require.NoError(t, show.err)
	assert.Equal(t, res.stdout, show.stdout, "history prints what scan printed")
}

func TestScan_RecordsFailedRun(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")
	input := writeFile(t, "in.txt", "a=1\nb=x\nc=3\n")

	res := execute(t, NewScanCommand(), "", "--recipe", "k=until:= char:= v=int", "--db", db, input)
	require.Error(t, res.err)

	runs := listRuns(t, db)
	require.Len(t, runs, 1)
	assert.Equal(t, input, runs[0].Source)
	assert.Equal(t, 2, runs[0].Lines)
	assert.Equal(t, 1, runs[0].Failed)
	assert.Contains(t, runs[0].Error, "in.txt:2: step 3 (v=int)")

	list := execute(t, NewHistoryCommand(), "", "--db", db)
	require.NoError(t, list.err)
	assert.True(t, strings.HasPrefix(list.stdout, runs[0].ShortID()+" "), list.stdout)
	assert.Contains(t, list.stdout, " error ")
	assert.Contains(t, list.stdout, "2 lines")
}

func TestHistory_Limit(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")
	for range 3 {
		require.NoError(t, execute(t, NewScanCommand(), "x\n", "--recipe", "word", "--db", db).err)
	}

	res := execute(t, NewHistoryCommand(), "", "--db", db, "--limit", "2")
	require.NoError(t, res.err)
	assert.Len(t, strings.Split(strings.TrimSpace(res.stdout), "\n"), 2)

	res = execute(t, NewHistoryCommand(), "", "--db", db, "--limit", "0")
	require.NoError(t, res.err)
	assert.Len(t, strings.Split(strings.TrimSpace(res.stdout), "\n"), 3)
}

func TestHistory_Errors(t *testing.T) {
	res := execute(t, NewHistoryCommand(), "")
	require.ErrorIs(t, res.err, ErrNoDatabase)

	db := filepath.Join(t.TempDir(), "runs.db")
	res = execute(t, NewHistoryCommand(), "", "--db", db, "deadbeef")
	require.ErrorIs(t, res.err, state.ErrRunNotFound)
}

func TestHistory_FromConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "strscan.yaml"), []byte("db: runs.db\n"), 0o600))

	require.NoError(t, executeIn(t, dir, NewScanCommand(), "HTTP/1.1 200 OK\n").err)

	res := executeIn(t, dir, NewHistoryCommand(), "")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "lit:HTTP/ version=word code=u16 reason=rest")
}

func TestScan_Follow(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	config.ResetConfig()
	t.Cleanup(config.ResetConfig)

	path := filepath.Join(dir, "app.log")
	require.NoError(t, os.WriteFile(path, []byte("a=1\n"), 0o600))

	cmd := NewScanCommand()
	cmd.PreRunE = func(c *cobra.Command, _ []string) error {
		_, err := config.LoadConfig("", c.Flags())
		return err
	}
	var stdout, logs testutil.LogBuffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stdout)
	cmd.SetArgs([]string{"--follow", "--recipe", "k=until:= char:= v=int", path})

	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx, cancel := context.WithCancel(config.WithLogger(context.Background(), logger))
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	require.Eventually(t, func() bool {
		return strings.Contains(logs.String(), "following inputs")
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, "1: k=a v=1\n", stdout.String())

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	_, err = f.WriteString("b=2\nc=")
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return strings.Contains(stdout.String(), "2: k=b v=2\n")
	}, 5*time.Second, 10*time.Millisecond)
	assert.NotContains(t, stdout.String(), "3:", "a partial line waits for its newline")

	_, err = f.WriteString("3\n")
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return strings.Contains(stdout.String(), "3: k=c v=3\n")
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("scan --follow did not stop after cancel")
	}
}

func TestScan_FollowNeedsFiles(t *testing.T) {
	res := execute(t, NewScanCommand(), "a\n", "--follow")

	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "--follow needs at least one input file")
}

func TestScan_ColorFromConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "strscan.yaml"), []byte("color: always\n"), 0o600))

	res := executeIn(t, dir, NewScanCommand(), "HTTP/1.1 x\n")
	require.Error(t, res.err)
	assert.Contains(t, res.stderr, "\x1b[")

	res = execute(t, NewScanCommand(), "HTTP/1.1 x\n")
	require.Error(t, res.err)
	cliutil.AssertNoANSI(t, res.stderr)
}
