// Package tui provides the interactive terminal UI for tickit.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fentz26/tickit/internal/models"
	"github.com/fentz26/tickit/internal/tasks"
	"github.com/fentz26/tickit/internal/view"
)

var (
	// Colors
	primaryColor   = lipgloss.Color("#7C3AED")
	secondaryColor = lipgloss.Color("#6366F1")
	successColor   = lipgloss.Color("#10B981")
	warningColor   = lipgloss.Color("#F59E0B")
	errorColor     = lipgloss.Color("#EF4444")
	mutedColor     = lipgloss.Color("#6B7280")
	fgColor        = lipgloss.Color("#F9FAFB")
	cyanColor      = lipgloss.Color("#06B6D4")

	// Styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#374151")).
			Foreground(fgColor).
			Padding(0, 1)

	inputBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(0, 1)

	taskItemStyle = lipgloss.NewStyle().
			Padding(0, 2)

	cursorStyle = lipgloss.NewStyle().
			Background(primaryColor).
			Foreground(fgColor).
			Bold(true).
			Padding(0, 2)

	helpStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(secondaryColor).
			MarginTop(1)
)

// Modes.
const (
	modeList    = "list"
	modeDetail  = "detail"
	modeCommand = "command"
	modeSearch  = "search"
)

// App is the main TUI application model.
type App struct {
	repo *tasks.Repository
	now  func() time.Time
	loc  *time.Location

	query     view.Query
	visible   []models.Task
	cursor    int
	selection *tasks.Selection

	mode        string
	prevMode    string
	detailID    string
	input       textinput.Model
	viewport    viewport.Model
	suggestions *Suggestions

	width   int
	height  int
	message string
	isError bool
	alert   string
}

// Option configures an App.
type Option func(*App)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

// WithLocation sets the zone used for typed due dates and date views.
func WithLocation(loc *time.Location) Option {
	return func(a *App) { a.loc = loc }
}

// WithQuery sets the initial view.
func WithQuery(q view.Query) Option {
	return func(a *App) { a.query = q }
}

// New creates a new TUI application over repo. It registers itself as the
// repository's due-soon notifier.
func New(repo *tasks.Repository, opts ...Option) *App {
	ti := textinput.New()
	ti.Placeholder = "add <title> | tag <name> | archive | dup | sub <title> | search <text>"
	ti.CharLimit = 256
	ti.Width = 80

	a := &App{
		repo:        repo,
		now:         time.Now,
		loc:         time.Local,
		selection:   tasks.NewSelection(),
		mode:        modeList,
		input:       ti,
		viewport:    viewport.New(80, 20),
		suggestions: NewSuggestions(),
		width:       80,
		height:      24,
	}
	for _, opt := range opts {
		opt(a)
	}
	repo.SetNotifier(a)
	a.refresh()
	return a
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Notify shows a due-soon alert in the message bar.
func (a *App) Notify(t models.Task, until time.Duration) {
	a.alert = fmt.Sprintf("⏰ %q is due in %s", t.Title, until.Round(time.Minute))
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.input.Width = msg.Width - 4
		a.viewport.Width = msg.Width
		a.viewport.Height = max(msg.Height-8, 5)
		a.renderDetail()
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		a.alert = ""
		switch a.mode {
		case modeCommand, modeSearch:
			return a.updateInput(msg)
		case modeDetail:
			return a.updateDetail(msg)
		}
		return a.updateList(msg)
	}
	return a, nil
}

func (a *App) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return a, tea.Quit

	case "up", "k":
		if a.cursor > 0 {
			a.cursor--
		}

	case "down", "j":
		if a.cursor < len(a.visible)-1 {
			a.cursor++
		}

	case "K", "shift+up":
		a.moveCurrent(-1)

	case "J", "shift+down":
		a.moveCurrent(1)

	case " ":
		if t, ok := a.current(); ok {
			a.selection.Toggle(t.ID)
		}

	case "A":
		if a.selection.Len() > 0 {
			a.selection.Clear()
		} else {
			a.selection.SelectAll(a.visible)
		}

	case "esc":
		a.selection.Clear()
		a.message = ""

	case "x":
		a.toggleCurrent()

	case "d":
		a.deleteTargets()

	case "a":
		a.runAction(tasks.ArchiveAction{})

	case "D":
		a.runAction(tasks.DuplicateAction{})

	case "u":
		a.undo()

	case "v":
		a.query.Filter = a.query.Filter.Next()
		a.refresh()

	case "s":
		a.query.Sort = a.query.Sort.Next()
		a.refresh()

	case "c":
		a.query.ShowCompleted = !a.query.ShowCompleted
		a.refresh()

	case "z":
		a.query.ShowArchived = !a.query.ShowArchived
		a.refresh()

	case "enter":
		if t, ok := a.current(); ok {
			a.mode = modeDetail
			a.detailID = t.ID
			a.viewport.GotoTop()
			a.renderDetail()
		}

	case ":":
		a.openInput(modeCommand, "")

	case "/":
		a.openInput(modeSearch, a.query.Text)
	}
	return a, nil
}

func (a *App) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "esc", "q":
		a.mode = modeList
		a.detailID = ""
		a.refresh()
		return a, nil
	case "x":
		a.toggleCurrent()
	case "u":
		a.undo()
	case ":":
		a.openInput(modeCommand, "")
		return a, nil
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		a.toggleSubtask(int(key[0] - '1'))
	default:
		var cmd tea.Cmd
		a.viewport, cmd = a.viewport.Update(msg)
		return a, cmd
	}
	if _, ok := a.repo.Get(a.detailID); !ok {
		a.mode = modeList
		a.detailID = ""
	}
	a.renderDetail()
	return a, nil
}

func (a *App) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.closeInput()
		return a, nil

	case "up":
		a.suggestions.Prev()
		return a, nil

	case "down":
		a.suggestions.Next()
		return a, nil

	case "tab":
		if selected := a.suggestions.Selected(); selected != nil {
			a.input.SetValue(selected.Text + " ")
			a.input.CursorEnd()
			a.suggestions.Update("")
		}
		return a, nil

	case "enter":
		value := strings.TrimSpace(a.input.Value())
		mode := a.mode
		a.closeInput()
		if mode == modeSearch {
			a.query.Text = value
			a.refresh()
			return a, nil
		}
		if value == "" {
			return a, nil
		}
		return a, a.execute(value)
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	if a.mode == modeCommand {
		a.suggestions.Update(a.input.Value())
	} else {
		a.query.Text = a.input.Value()
		a.refresh()
	}
	return a, cmd
}

func (a *App) openInput(mode, value string) {
	a.prevMode = a.mode
	a.mode = mode
	a.input.SetValue(value)
	a.input.CursorEnd()
	a.input.Focus()
	if mode == modeCommand {
		all := a.repo.Tasks()
		lists := make([][]string, len(all))
		for i, t := range all {
			lists[i] = t.Tags
		}
		a.suggestions.SetTags(knownTags(lists))
	}
	a.suggestions.Update("")
}

func (a *App) closeInput() {
	a.input.Blur()
	a.input.SetValue("")
	a.suggestions.Update("")
	a.mode = a.prevMode
	if a.mode == "" || a.mode == modeCommand || a.mode == modeSearch {
		a.mode = modeList
	}
}

// refresh re-projects the task list and keeps the cursor in range.
func (a *App) refresh() {
	all := a.repo.Tasks()
	a.selection.Prune(all)
	a.visible = view.Project(all, a.query, a.now().In(a.loc))
	if a.cursor >= len(a.visible) {
		a.cursor = max(0, len(a.visible)-1)
	}
}

func (a *App) current() (models.Task, bool) {
	if a.detailID != "" {
		return a.repo.Get(a.detailID)
	}
	if a.cursor < 0 || a.cursor >= len(a.visible) {
		return models.Task{}, false
	}
	return a.visible[a.cursor], true
}

// targets returns the selection when there is one, else the current task.
func (a *App) targets() []string {
	if a.selection.Len() > 0 {
		return a.selection.IDs()
	}
	if t, ok := a.current(); ok {
		return []string{t.ID}
	}
	return nil
}

func (a *App) flash(msg string) {
	a.message = msg
	a.isError = false
}

func (a *App) fail(err error) {
	a.message = "Error: " + err.Error()
	a.isError = true
}

// afterWrite surfaces a failed save as a warning.
func (a *App) afterWrite() {
	if err := a.repo.LastSaveError(); err != nil {
		a.message += "  (warning: not saved: " + err.Error() + ")"
		a.isError = true
	}
	a.refresh()
}

func (a *App) moveCurrent(delta int) {
	if a.query.Sort != view.SortManual && a.query.Sort != "" {
		a.fail(fmt.Errorf("reordering needs manual sort (press s)"))
		return
	}
	i := a.cursor
	j := i + delta
	if i < 0 || j < 0 || j >= len(a.visible) {
		return
	}
	cur, other := a.visible[i], a.visible[j]
	var ok bool
	if delta < 0 {
		ok = a.repo.Reorder(cur.ID, other.ID)
	} else {
		ok = a.repo.Reorder(other.ID, cur.ID)
	}
	if !ok {
		a.fail(fmt.Errorf("cannot move archived tasks"))
		return
	}
	a.flash("✓ Moved")
	a.afterWrite()
	for k, t := range a.visible {
		if t.ID == cur.ID {
			a.cursor = k
		}
	}
}

func (a *App) toggleCurrent() {
	t, ok := a.current()
	if !ok {
		return
	}
	res, err := a.repo.ToggleComplete(t.ID)
	if err != nil {
		a.fail(err)
		return
	}
	switch {
	case res.Next != nil:
		a.flash(fmt.Sprintf("✓ Done. Next %q due %s", res.Next.Title, formatDue(*res.Next.Due, a.loc)))
	case res.Task.Completed:
		a.flash("✓ Done")
	default:
		a.flash("○ Reopened")
	}
	a.afterWrite()
}

func (a *App) toggleSubtask(n int) {
	t, ok := a.repo.Get(a.detailID)
	if !ok || n >= len(t.Subtasks) {
		return
	}
	if _, err := a.repo.ToggleSubtask(t.ID, t.Subtasks[n].ID); err != nil {
		a.fail(err)
		return
	}
	a.flash("✓ Subtask updated")
	a.afterWrite()
}

func (a *App) deleteTargets() {
	var n int
	if a.selection.Len() > 0 {
		n = a.repo.DeleteSelected(a.selection)
	} else if t, ok := a.current(); ok && a.repo.Delete(t.ID) {
		n = 1
	}
	if n == 0 {
		return
	}
	a.flash(fmt.Sprintf("✓ Deleted %d task(s) (u to undo)", n))
	a.afterWrite()
}

func (a *App) runAction(act tasks.Action) {
	ids := a.targets()
	if len(ids) == 0 {
		a.fail(fmt.Errorf("no task selected"))
		return
	}
	if _, ok := act.(tasks.ArchiveAction); ok && a.selection.Len() > 0 {
		n := a.repo.ArchiveSelected(a.selection)
		a.selection.Clear()
		a.flash(fmt.Sprintf("✓ Archived %d task(s)", n))
		a.afterWrite()
		return
	}
	for _, id := range ids {
		if _, err := a.repo.Apply(id, act); err != nil {
			a.fail(err)
			a.refresh()
			return
		}
	}
	a.flash(fmt.Sprintf("✓ %s: %d task(s)", act.Name(), len(ids)))
	a.afterWrite()
}

func (a *App) undo() {
	if !a.repo.CanUndo() {
		a.flash("Nothing to undo")
		return
	}
	ok, err := a.repo.Undo()
	if err != nil {
		a.fail(err)
		a.refresh()
		return
	}
	if !ok {
		a.flash("Nothing to undo")
		return
	}
	a.flash("↶ Undone")
	a.afterWrite()
}

// View implements tea.Model
func (a *App) View() string {
	var b strings.Builder

	stats := view.Summarize(a.repo.Tasks(), a.now().In(a.loc))
	header := titleStyle.Render("✔ tickit")
	header += "  " + lipgloss.NewStyle().Foreground(cyanColor).Render(fmt.Sprintf("[%d active]", stats.Active))
	if stats.Overdue > 0 {
		header += "  " + lipgloss.NewStyle().Foreground(errorColor).Render(fmt.Sprintf("[%d overdue]", stats.Overdue))
	}
	if stats.DueToday > 0 {
		header += "  " + lipgloss.NewStyle().Foreground(warningColor).Render(fmt.Sprintf("[%d today]", stats.DueToday))
	}
	b.WriteString(header + "\n")
	b.WriteString(strings.Repeat("─", max(a.width, 10)) + "\n")

	contentHeight := max(a.height-8, 5)

	if a.detailID != "" {
		b.WriteString(a.viewport.View())
	} else {
		b.WriteString(labelStyle.Render(a.queryLabel()) + "\n")
		b.WriteString(a.renderTaskList(contentHeight - 1))
	}

	// Message bar
	b.WriteString("\n")
	if a.alert != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(warningColor).Bold(true).Render(a.alert) + "\n")
	}
	if a.message != "" {
		msgStyle := lipgloss.NewStyle().Foreground(successColor)
		if a.isError {
			msgStyle = lipgloss.NewStyle().Foreground(errorColor)
		}
		b.WriteString(msgStyle.Render(a.message))
	}
	b.WriteString("\n")

	if a.mode == modeCommand || a.mode == modeSearch {
		prompt := ":"
		if a.mode == modeSearch {
			prompt = "/"
		}
		b.WriteString(inputBoxStyle.Render(prompt + " " + a.input.View()))
		if a.suggestions.IsVisible() {
			b.WriteString("\n" + a.suggestions.Render(a.width))
		}
		b.WriteString("\n")
	}

	var status string
	switch a.mode {
	case modeDetail:
		status = " 1-9:subtask | x:done" + a.undoHint() + " | ::command | Esc:back"
	case modeCommand:
		status = " Tab:complete | ↑↓:pick | Enter:run | Esc:cancel"
	case modeSearch:
		status = " Enter/Esc:keep filter"
	default:
		status = fmt.Sprintf(" %d shown | ↑↓:nav | J/K:move | space:select | x:done | d:del | a:archive | D:dup%s | v:view | s:sort | c/z:done/archived | ::cmd | /:search | q:quit",
			len(a.visible), a.undoHint())
	}
	b.WriteString(statusBarStyle.Width(max(a.width, 10)).Render(status))
	return b.String()
}

// undoHint advertises u only when there is something to undo.
func (a *App) undoHint() string {
	if !a.repo.CanUndo() {
		return ""
	}
	return fmt.Sprintf(" | u:undo(%d)", a.repo.UndoDepth())
}

func (a *App) queryLabel() string {
	f := a.query.Filter
	if f == "" {
		f = view.FilterAll
	}
	s := a.query.Sort
	if s == "" {
		s = view.SortManual
	}
	label := fmt.Sprintf(" View: [%s]  Sort: [%s]", strings.ToUpper(string(f)), s)
	if a.query.ShowCompleted {
		label += "  +done"
	}
	if a.query.ShowArchived {
		label += "  +archived"
	}
	if a.query.Text != "" {
		label += fmt.Sprintf("  search: %q", a.query.Text)
	}
	if n := a.selection.Len(); n > 0 {
		label += fmt.Sprintf("  %d selected", n)
	}
	return label
}

func (a *App) renderTaskList(height int) string {
	if len(a.visible) == 0 {
		return "\n  No tasks here. Press : and type add <title> to create one.\n"
	}

	now := a.now()
	lines := make([]string, 0, len(a.visible))
	for i, t := range a.visible {
		mark := " "
		if a.selection.Has(t.ID) {
			mark = "•"
		}
		if i == a.cursor {
			lines = append(lines, cursorStyle.Render(fmt.Sprintf("▶%s %s %s", mark, checkbox(t), rowText(t, now, a.loc))))
			continue
		}
		line := fmt.Sprintf(" %s %s %s", mark, checkbox(t), rowText(t, now, a.loc))
		lines = append(lines, taskItemStyle.Inherit(rowStyle(t, now)).Render(line))
	}

	if len(lines) > height {
		start := max(a.cursor-height/2, 0)
		end := start + height
		if end > len(lines) {
			end = len(lines)
			start = max(0, end-height)
		}
		lines = lines[start:end]
	}
	return strings.Join(lines, "\n")
}

func checkbox(t models.Task) string {
	if t.Completed {
		return "[x]"
	}
	return "[ ]"
}

func rowText(t models.Task, now time.Time, loc *time.Location) string {
	var b strings.Builder
	b.WriteString(priorityGlyph(t.Priority) + " " + t.Title)
	if t.Due != nil {
		b.WriteString("  ⏱ " + formatDue(*t.Due, loc))
		if view.IsOverdue(t, now) {
			b.WriteString(" (overdue)")
		}
	}
	if t.Recurring != models.RecurNone {
		b.WriteString("  ↻ " + string(t.Recurring))
	}
	if len(t.Subtasks) > 0 {
		done := 0
		for _, st := range t.Subtasks {
			if st.Completed {
				done++
			}
		}
		b.WriteString(fmt.Sprintf("  [%d/%d]", done, len(t.Subtasks)))
	}
	for _, tag := range t.Tags {
		b.WriteString("  #" + tag)
	}
	if t.Archived {
		b.WriteString("  (archived)")
	}
	return b.String()
}

func rowStyle(t models.Task, now time.Time) lipgloss.Style {
	switch {
	case t.Archived || t.Completed:
		return lipgloss.NewStyle().Foreground(mutedColor)
	case view.IsOverdue(t, now):
		return lipgloss.NewStyle().Foreground(errorColor)
	case t.Priority == models.PriorityHigh:
		return lipgloss.NewStyle().Foreground(warningColor)
	}
	return lipgloss.NewStyle()
}

func priorityGlyph(p models.Priority) string {
	switch p {
	case models.PriorityHigh:
		return "!!"
	case models.PriorityLow:
		return " ·"
	default:
		return " !"
	}
}

func formatDue(t time.Time, loc *time.Location) string {
	t = t.In(loc)
	if t.Hour() == 0 && t.Minute() == 0 {
		return t.Format("Mon Jan 2")
	}
	return t.Format("Mon Jan 2 15:04")
}

// renderDetail fills the viewport with the task under detailID.
func (a *App) renderDetail() {
	if a.detailID == "" {
		return
	}
	t, ok := a.repo.Get(a.detailID)
	if !ok {
		a.viewport.SetContent("\n  Task no longer exists.\n")
		return
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("\n  %s %s\n", checkbox(t), lipgloss.NewStyle().Bold(true).Render(t.Title)))
	field := func(label, value string) {
		b.WriteString(fmt.Sprintf("  %s %s\n", labelStyle.Render(fmt.Sprintf("%-10s", label)), value))
	}
	field("ID:", t.ID)
	field("Priority:", string(t.Priority))
	if t.Due != nil {
		field("Due:", formatDue(*t.Due, a.loc))
	}
	if t.Recurring != models.RecurNone {
		field("Repeats:", string(t.Recurring))
	}
	if len(t.Tags) > 0 {
		field("Tags:", "#"+strings.Join(t.Tags, " #"))
	}
	field("Created:", t.CreatedAt.In(a.loc).Format("2006-01-02 15:04"))
	if t.Archived {
		field("Status:", "archived")
	}
	if t.Notes != "" {
		b.WriteString(sectionStyle.Render("  Notes") + "\n")
		for _, line := range strings.Split(t.Notes, "\n") {
			b.WriteString("    " + line + "\n")
		}
	}
	b.WriteString(sectionStyle.Render("  Subtasks") + "\n")
	if len(t.Subtasks) == 0 {
		b.WriteString("    " + helpStyle.Render("none (:sub <title> to add)") + "\n")
	}
	for i, st := range t.Subtasks {
		box := "[ ]"
		if st.Completed {
			box = "[x]"
		}
		b.WriteString(fmt.Sprintf("    %d. %s %s\n", i+1, box, st.Title))
	}
	a.viewport.SetContent(b.String())
}
