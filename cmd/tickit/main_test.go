package main

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/fentz26/tickit/internal/store"
	"github.com/fentz26/tickit/internal/tasks"
	"github.com/fentz26/tickit/internal/undo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var createdRe = regexp.MustCompile(`Created task (\S+):`)

type env struct {
	t       *testing.T
	dir     string
	backend string
}

func newEnv(t *testing.T, backend string) *env {
	t.Helper()
	for _, k := range []string{"TICKIT_DATA_DIR", "TICKIT_BACKEND", "TICKIT_LOG_LEVEL", "TICKIT_UNDO_CAPACITY"} {
		t.Setenv(k, "")
	}
	t.Setenv("TICKIT_TIMEZONE", "UTC")
	return &env{t: t, dir: t.TempDir(), backend: backend}
}

func (e *env) run(args ...string) (string, string, error) {
	e.t.Helper()
	full := append([]string{
		"--config", filepath.Join(e.dir, "missing.yaml"),
		"--data-dir", e.dir,
		"--backend", e.backend,
	}, args...)
	var stdout, stderr bytes.Buffer
	err := execute(full, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func (e *env) mustRun(args ...string) string {
	e.t.Helper()
	out, stderr, err := e.run(args...)
	require.NoError(e.t, err, "stderr: %s", stderr)
	return out
}

func (e *env) add(args ...string) string {
	e.t.Helper()
	out := e.mustRun(append([]string{"add"}, args...)...)
	m := createdRe.FindStringSubmatch(out)
	require.NotNil(e.t, m, "unexpected output %q", out)
	return m[1]
}

func TestVersionSkipsStore(t *testing.T) {
	e := newEnv(t, "sqlite")
	out := e.mustRun("version")
	assert.Contains(t, out, "tickit version")

	_, err := os.Stat(filepath.Join(e.dir, "tickit.db"))
	assert.True(t, os.IsNotExist(err))
}

func TestUnknownCommand(t *testing.T) {
	e := newEnv(t, "file")
	_, _, err := e.run("frobnicate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
}

func TestAddListShow(t *testing.T) {
	e := newEnv(t, "file")
	id := e.add("Buy", "milk", "--priority", "high", "--tag", "home,errand", "--due", "2030-05-01")
	e.add("Write report")

	out := e.mustRun("list")
	assert.Contains(t, out, "Buy milk")
	assert.Contains(t, out, "Write report")
	assert.Contains(t, out, "home,errand")

	out = e.mustRun("list", "-q", "report")
	assert.NotContains(t, out, "Buy milk")
	assert.Contains(t, out, "Write report")

	out = e.mustRun("show", id)
	assert.Contains(t, out, "Title:     Buy milk")
	assert.Contains(t, out, "Priority:  high")
	assert.Contains(t, out, "2030-05-01 00:00")
}

func TestAddRejectsBadInput(t *testing.T) {
	e := newEnv(t, "file")

	_, _, err := e.run("add", "x", "--priority", "urgent")
	assert.Error(t, err)

	_, _, err = e.run("add", "x", "--due", "someday")
	assert.Error(t, err)

	_, _, err = e.run("add", "   ")
	assert.ErrorIs(t, err, tasks.ErrEmptyTitle)

	assert.Contains(t, e.mustRun("list"), "No tasks found")
}

func TestListSortAndViewFlags(t *testing.T) {
	e := newEnv(t, "file")
	e.add("later", "--due", "2030-01-02")
	e.add("sooner", "--due", "2030-01-01")

	out := e.mustRun("list", "--sort", "due-asc")
	assert.Less(t, strings.Index(out, "sooner"), strings.Index(out, "later"))

	_, _, err := e.run("list", "--view", "someday")
	assert.Error(t, err)
	_, _, err = e.run("list", "--sort", "random")
	assert.Error(t, err)
}

func TestDoneHidesAndRecurs(t *testing.T) {
	e := newEnv(t, "file")
	id := e.add("Pay rent", "--due", "2030-01-31 09:00", "--recurring", "monthly")

	out := e.mustRun("done", id)
	assert.Contains(t, out, "Completed Pay rent")
	assert.Contains(t, out, "2030-02-28 09:00")

	out = e.mustRun("list")
	assert.Contains(t, out, "2030-02-28")
	assert.NotContains(t, out, "2030-01-31")

	out = e.mustRun("list", "--completed")
	assert.Contains(t, out, "2030-01-31")
}

func TestEdit(t *testing.T) {
	e := newEnv(t, "file")
	id := e.add("Draft", "--due", "2030-01-01")

	e.mustRun("edit", id, "--title", "Final", "--due", "none", "-p", "low")
	out := e.mustRun("show", id)
	assert.Contains(t, out, "Title:     Final")
	assert.Contains(t, out, "Due:       -")
	assert.Contains(t, out, "Priority:  low")

	_, _, err := e.run("edit", id)
	assert.Error(t, err)
}

func TestRmAndUndoAcrossInvocations(t *testing.T) {
	e := newEnv(t, "file")
	a := e.add("alpha")
	b := e.add("beta")

	out := e.mustRun("rm", a, b)
	assert.Contains(t, out, "Deleted 2 task(s)")
	assert.Contains(t, e.mustRun("list"), "No tasks found")

	out = e.mustRun("undo")
	assert.Contains(t, out, "Undone")
	out = e.mustRun("list")
	assert.Contains(t, out, "alpha")
	assert.Contains(t, out, "beta")
}

func TestUndoWithNothingToUndo(t *testing.T) {
	e := newEnv(t, "file")
	assert.Contains(t, e.mustRun("undo"), "Nothing to undo")
}

func TestUnknownTaskID(t *testing.T) {
	e := newEnv(t, "file")
	e.add("alpha")
	_, _, err := e.run("done", "zzzzzzzz")
	assert.ErrorIs(t, err, tasks.ErrTaskNotFound)
}

func TestArchiveUnarchiveAndClear(t *testing.T) {
	e := newEnv(t, "file")
	a := e.add("alpha")
	b := e.add("beta")

	assert.Contains(t, e.mustRun("archive", a), "Archived 1 task(s)")
	assert.NotContains(t, e.mustRun("list"), "alpha")
	assert.Contains(t, e.mustRun("list", "--archived"), "alpha")

	e.mustRun("unarchive", a)
	assert.Contains(t, e.mustRun("list"), "alpha")

	e.mustRun("done", b)
	assert.Contains(t, e.mustRun("clear"), "Deleted 1 completed task(s)")
	assert.NotContains(t, e.mustRun("list", "-c", "-a"), "beta")
}

func TestReorderDupAndAction(t *testing.T) {
	e := newEnv(t, "file")
	a := e.add("alpha")
	b := e.add("beta")

	e.mustRun("reorder", b, a)
	out := e.mustRun("list")
	assert.Less(t, strings.Index(out, "beta"), strings.Index(out, "alpha"))

	_, _, err := e.run("reorder", a, a)
	assert.Error(t, err)

	e.mustRun("dup", a)
	assert.Equal(t, 2, strings.Count(e.mustRun("list"), "alpha"))

	e.mustRun("action", b, "tag:work")
	assert.Contains(t, e.mustRun("show", b), "Tags:      work")

	_, _, err = e.run("action", b, "explode")
	assert.ErrorIs(t, err, tasks.ErrInvalidAction)
}

func TestSubtasks(t *testing.T) {
	e := newEnv(t, "file")
	id := e.add("Pack", "-s", "socks", "-s", "shoes")

	e.mustRun("subtask", "add", id, "hat")
	e.mustRun("subtask", "done", id, "2")
	out := e.mustRun("show", id)
	assert.Contains(t, out, "1. [ ] socks")
	assert.Contains(t, out, "2. [x] shoes")
	assert.Contains(t, out, "3. [ ] hat")

	e.mustRun("subtask", "rm", id, "1")
	assert.NotContains(t, e.mustRun("show", id), "socks")

	_, _, err := e.run("subtask", "done", id, "9")
	assert.ErrorIs(t, err, tasks.ErrSubtaskNotFound)
}

func TestExportImport(t *testing.T) {
	src := newEnv(t, "file")
	src.add("alpha", "--tag", "x")
	src.add("beta")
	path := filepath.Join(t.TempDir(), "tasks.yaml")
	assert.Contains(t, src.mustRun("export", "--out", path), "Exported 2 task(s)")

	dst := &env{t: t, dir: t.TempDir(), backend: "file"}
	assert.Contains(t, dst.mustRun("import", path), "Imported 2 task(s), skipped 0")
	assert.Contains(t, dst.mustRun("import", path), "Imported 0 task(s), skipped 2")

	out := dst.mustRun("list")
	assert.Contains(t, out, "alpha")
	assert.Contains(t, out, "beta")

	out = src.mustRun("export", "-f", "toml")
	assert.Contains(t, out, "[[tasks]]")
}

func TestImportRejectsInvalidFile(t *testing.T) {
	e := newEnv(t, "file")
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"tasks":[{"title":"no id"}]}`), 0o644))

	_, _, err := e.run("import", path)
	var ie *tasks.ImportError
	assert.ErrorAs(t, err, &ie)
	assert.Contains(t, e.mustRun("list"), "No tasks found")
}

func TestHistoryNeedsSQLite(t *testing.T) {
	e := newEnv(t, "file")
	_, _, err := e.run("history")
	assert.Error(t, err)
}

func TestHistorySQLite(t *testing.T) {
	e := newEnv(t, "sqlite")
	id := e.add("alpha")
	e.mustRun("done", id)

	out := e.mustRun("history")
	assert.Contains(t, out, "task.create")
	assert.Contains(t, out, "task.toggle")
}

func TestStats(t *testing.T) {
	e := newEnv(t, "file")
	a := e.add("alpha")
	e.add("beta")
	e.mustRun("done", a)

	out := e.mustRun("stats")
	assert.Regexp(t, `Total:\s+2`, out)
	assert.Regexp(t, `Active:\s+1`, out)
	assert.Regexp(t, `Completed:\s+1`, out)
}

func TestInvalidBackend(t *testing.T) {
	e := newEnv(t, "floppy")
	_, _, err := e.run("list")
	assert.Error(t, err)
}

func TestConfigInitAndShow(t *testing.T) {
	e := newEnv(t, "file")
	path := filepath.Join(e.dir, "missing.yaml")

	out := e.mustRun("config", "init")
	assert.Contains(t, out, "Wrote "+path)
	_, err := os.Stat(filepath.Join(e.dir, "slots"))
	assert.True(t, os.IsNotExist(err), "config commands never open the store")

	_, _, err = e.run("config", "init")
	assert.Error(t, err)
	e.mustRun("config", "init", "--force")

	out = e.mustRun("config", "show")
	assert.Contains(t, out, "backend: file")
	assert.Contains(t, out, "notify: bell")
}

func TestDueSoonAlertStyles(t *testing.T) {
	e := newEnv(t, "file")
	soon := time.Now().Add(30 * time.Minute).UTC().Format(time.RFC3339)

	_, stderr, err := e.run("add", "stand-up", "--due", soon)
	require.NoError(t, err)
	assert.Contains(t, stderr, "\a")
	assert.Contains(t, stderr, `"stand-up" is due in`)

	cfgPath := filepath.Join(e.dir, "missing.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("notify: log\n"), 0o600))
	_, stderr, err = e.run("add", "review", "--due", soon)
	require.NoError(t, err)
	assert.NotContains(t, stderr, "\a")
	assert.Contains(t, stderr, "task due soon")
	assert.Contains(t, stderr, "review")

	require.NoError(t, os.WriteFile(cfgPath, []byte("notify: none\n"), 0o600))
	_, stderr, err = e.run("add", "lunch", "--due", soon)
	require.NoError(t, err)
	assert.Empty(t, stderr)
}

func TestUndoReportsCorruptSnapshot(t *testing.T) {
	e := newEnv(t, "file")
	e.add("alpha")

	slot, err := store.NewFileSlot(filepath.Join(e.dir, "slots"))
	require.NoError(t, err)
	st := store.New(slot, nil)
	require.NoError(t, st.SaveHistory(append(st.LoadHistory(), []byte{0xc1})))
	require.NoError(t, slot.Close())

	_, _, err = e.run("undo")
	assert.ErrorIs(t, err, undo.ErrCorruptSnapshot)
	assert.Contains(t, e.mustRun("list"), "alpha")

	e.mustRun("undo")
	assert.Contains(t, e.mustRun("list"), "No tasks found")
}
