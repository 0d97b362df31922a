package tui

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fentz26/tickit/internal/models"
	"github.com/fentz26/tickit/internal/tasks"
)

// parseAddArgs splits "add" arguments into title words and inline markers:
// #tag, !high|!medium|!low, due:<date> and every:<daily|weekly|monthly>.
func (a *App) parseAddArgs(args []string) (models.NewTask, error) {
	var in models.NewTask
	var title []string
	for _, arg := range args {
		switch {
		case strings.HasPrefix(arg, "#") && len(arg) > 1:
			in.Tags = append(in.Tags, arg[1:])
		case strings.HasPrefix(arg, "!") && len(arg) > 1:
			p, err := models.ParsePriority(arg[1:])
			if err != nil {
				return in, err
			}
			in.Priority = p
		case strings.HasPrefix(arg, "due:"):
			due, err := tasks.ParseDue(strings.TrimPrefix(arg, "due:"), a.now(), a.loc)
			if err != nil {
				return in, err
			}
			in.Due = due
		case strings.HasPrefix(arg, "every:"):
			r, err := models.ParseRecurrence(strings.TrimPrefix(arg, "every:"))
			if err != nil {
				return in, err
			}
			in.Recurring = r
		default:
			title = append(title, arg)
		}
	}
	in.Title = strings.Join(title, " ")
	return in, nil
}

// execute runs a command bar line against the repository.
func (a *App) execute(input string) tea.Cmd {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return nil
	}
	cmd, args := parts[0], parts[1:]
	rest := strings.Join(args, " ")

	switch cmd {
	case "add":
		in, err := a.parseAddArgs(args)
		if err != nil {
			a.fail(err)
			return nil
		}
		t, err := a.repo.Create(in)
		if err != nil {
			a.fail(err)
			return nil
		}
		a.flash(fmt.Sprintf("✓ Created %q", t.Title))
		a.afterWrite()
		a.focus(t.ID)

	case "edit":
		a.patchCurrent(models.Patch{Title: &rest}, "✓ Renamed")

	case "notes":
		a.patchCurrent(models.Patch{Notes: &rest}, "✓ Notes saved")

	case "due":
		due, err := tasks.ParseDue(rest, a.now(), a.loc)
		if err != nil {
			a.fail(err)
			return nil
		}
		a.patchCurrent(models.Patch{Due: due, ClearDue: due == nil}, "✓ Due date set")

	case "prio", "priority":
		p, err := models.ParsePriority(rest)
		if err != nil {
			a.fail(err)
			return nil
		}
		a.patchCurrent(models.Patch{Priority: &p}, "✓ Priority set")

	case "every", "repeat":
		r, err := models.ParseRecurrence(rest)
		if err != nil {
			a.fail(err)
			return nil
		}
		a.patchCurrent(models.Patch{Recurring: &r}, "✓ Recurrence set")

	case "tag", "archive", "dup", "duplicate":
		raw := cmd
		if cmd == "tag" {
			raw = "tag:" + rest
		}
		act, err := tasks.ParseAction(raw)
		if err != nil {
			a.fail(err)
			return nil
		}
		a.runAction(act)

	case "unarchive":
		t, ok := a.current()
		if !ok {
			a.fail(fmt.Errorf("no task selected"))
			return nil
		}
		if _, err := a.repo.Unarchive(t.ID); err != nil {
			a.fail(err)
			return nil
		}
		a.flash("✓ Restored")
		a.afterWrite()

	case "sub":
		t, ok := a.current()
		if !ok {
			a.fail(fmt.Errorf("no task selected"))
			return nil
		}
		if _, err := a.repo.AddSubtask(t.ID, rest); err != nil {
			a.fail(err)
			return nil
		}
		a.flash("✓ Subtask added")
		a.afterWrite()

	case "search":
		a.query.Text = rest
		a.refresh()

	case "clear":
		n := a.repo.ClearCompleted()
		a.flash(fmt.Sprintf("✓ Cleared %d completed task(s)", n))
		a.afterWrite()

	case "export":
		if rest == "" {
			a.fail(fmt.Errorf("usage: export <file>"))
			return nil
		}
		if err := a.exportTo(rest); err != nil {
			a.fail(err)
			return nil
		}
		a.flash("✓ Exported to " + rest)

	case "import":
		if rest == "" {
			a.fail(fmt.Errorf("usage: import <file>"))
			return nil
		}
		res, err := a.importFrom(rest)
		if err != nil {
			a.fail(err)
			return nil
		}
		a.flash(fmt.Sprintf("✓ Imported %d task(s), skipped %d", res.Added, res.Skipped))
		a.afterWrite()

	case "undo":
		a.undo()

	case "q", "quit", "exit":
		return tea.Quit

	default:
		a.fail(fmt.Errorf("unknown command %q (try: add, tag, archive, dup, sub, search)", cmd))
	}

	if a.detailID != "" {
		if _, ok := a.repo.Get(a.detailID); !ok {
			a.detailID = ""
			a.mode = modeList
		}
		a.renderDetail()
	}
	return nil
}

func (a *App) patchCurrent(p models.Patch, okMsg string) {
	t, ok := a.current()
	if !ok {
		a.fail(fmt.Errorf("no task selected"))
		return
	}
	if _, err := a.repo.Update(t.ID, p); err != nil {
		a.fail(err)
		return
	}
	a.flash(okMsg)
	a.afterWrite()
}

// focus moves the cursor onto id when it is visible.
func (a *App) focus(id string) {
	for i, t := range a.visible {
		if t.ID == id {
			a.cursor = i
			return
		}
	}
}

func (a *App) exportTo(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := a.repo.Export(f, tasks.FormatFromPath(path)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (a *App) importFrom(path string) (tasks.ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return tasks.ImportResult{}, err
	}
	defer f.Close()
	return a.repo.Import(f, tasks.FormatFromPath(path))
}
