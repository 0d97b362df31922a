// Package tasks owns the task collection. Every mutation goes through the
// Repository, which snapshots for undo, mutates, then persists.
package tasks

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fentz26/tickit/internal/audit"
	"github.com/fentz26/tickit/internal/models"
	"github.com/fentz26/tickit/internal/notify"
	"github.com/fentz26/tickit/internal/recurrence"
	"github.com/fentz26/tickit/internal/state"
	"github.com/fentz26/tickit/internal/store"
	"github.com/fentz26/tickit/internal/undo"
	"github.com/google/uuid"
)

// Repository is the sole mutator of the task collection. It is not safe for
// concurrent use.
type Repository struct {
	container *state.Container
	undo      *undo.Log
	store     *store.Store

	audit        *audit.Recorder
	notifier     notify.Notifier
	notifyWindow time.Duration
	logger       *log.Logger
	now          func() time.Time
	newID        func() string
	loc          *time.Location
	undoCapacity int

	lastSaveErr error
}

// Option configures a Repository.
type Option func(*Repository)

// WithLogger sets the logger used for persistence warnings.
func WithLogger(l *log.Logger) Option {
	return func(r *Repository) { r.logger = l }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// WithIDGenerator overrides the uuid-based id generator.
func WithIDGenerator(gen func() string) Option {
	return func(r *Repository) { r.newID = gen }
}

// WithLocation sets the zone whose wall clock recurring tasks keep.
func WithLocation(loc *time.Location) Option {
	return func(r *Repository) { r.loc = loc }
}

// WithNotifier sets the collaborator alerted about tasks due soon.
func WithNotifier(n notify.Notifier) Option {
	return func(r *Repository) { r.notifier = n }
}

// WithNotifyWindow sets how far ahead a due date triggers an alert.
func WithNotifyWindow(d time.Duration) Option {
	return func(r *Repository) { r.notifyWindow = d }
}

// WithAudit records every mutation through rec.
func WithAudit(rec *audit.Recorder) Option {
	return func(r *Repository) { r.audit = rec }
}

// WithUndoCapacity sets the undo depth used by Open.
func WithUndoCapacity(n int) Option {
	return func(r *Repository) { r.undoCapacity = n }
}

func newRepository(opts []Option) *Repository {
	r := &Repository{
		notifier:     notify.Nop{},
		notifyWindow: notify.DefaultWindow,
		logger:       log.Default(),
		now:          time.Now,
		newID:        func() string { return uuid.New().String() },
		loc:          time.UTC,
		undoCapacity: undo.DefaultCapacity,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// New wires a repository around an existing container, undo log and store.
func New(c *state.Container, u *undo.Log, st *store.Store, opts ...Option) *Repository {
	r := newRepository(opts)
	r.container = c
	r.undo = u
	r.store = st
	return r
}

// Open loads persisted state and undo history from st, falling back to the
// default state when nothing usable is stored.
func Open(st *store.Store, opts ...Option) *Repository {
	r := newRepository(opts)
	r.store = st
	r.container = state.New(st.Load())
	r.undo = undo.New(r.container, r.undoCapacity)
	r.undo.Restore(st.LoadHistory())
	return r
}

// Close flushes state and undo history one last time and closes the store.
func (r *Repository) Close() error {
	r.persist()
	if err := r.store.Close(); err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	return r.lastSaveErr
}

// --- Reads ---

// Tasks returns a deep copy of all tasks in collection order.
func (r *Repository) Tasks() []models.Task {
	st := r.container.Get()
	out := make([]models.Task, len(st.Tasks))
	for i, t := range st.Tasks {
		out[i] = t.Clone()
	}
	return out
}

// Get returns a copy of the task with id.
func (r *Repository) Get(id string) (models.Task, bool) {
	i := r.find(id)
	if i < 0 {
		return models.Task{}, false
	}
	return r.container.Get().Tasks[i].Clone(), true
}

// State returns a deep copy of the whole AppState.
func (r *Repository) State() models.AppState {
	return r.container.Snapshot()
}

// SetNotifier replaces the due-soon collaborator, for front ends that are
// built after the repository.
func (r *Repository) SetNotifier(n notify.Notifier) {
	if n == nil {
		n = notify.Nop{}
	}
	r.notifier = n
}

// LastSaveError returns the error from the most recent write, if it failed.
func (r *Repository) LastSaveError() error {
	return r.lastSaveErr
}

// CanUndo reports whether Undo would do anything.
func (r *Repository) CanUndo() bool {
	return r.undo.Len() > 0
}

// UndoDepth returns the number of retained undo snapshots.
func (r *Repository) UndoDepth() int {
	return r.undo.Len()
}

// ResolveID maps a full id or a unique prefix of at least 4 characters to a task id.
func (r *Repository) ResolveID(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if r.find(ref) >= 0 {
		return ref, nil
	}
	if len(ref) < 4 {
		return "", fmt.Errorf("%w: %q", ErrTaskNotFound, ref)
	}
	match := ""
	for _, t := range r.container.Get().Tasks {
		if strings.HasPrefix(t.ID, ref) {
			if match != "" {
				return "", fmt.Errorf("%w: %q", ErrAmbiguousID, ref)
			}
			match = t.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("%w: %q", ErrTaskNotFound, ref)
	}
	return match, nil
}

// --- Mutations ---

// Create validates and appends a new task.
func (r *Repository) Create(in models.NewTask) (models.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return models.Task{}, ErrEmptyTitle
	}
	priority := in.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !priority.Valid() {
		return models.Task{}, fmt.Errorf("%w: %q", models.ErrInvalidPriority, priority)
	}
	if !in.Recurring.Valid() {
		return models.Task{}, fmt.Errorf("%w: %q", models.ErrInvalidRecurrence, in.Recurring)
	}

	t := models.Task{
		ID:        r.newID(),
		Title:     title,
		Notes:     in.Notes,
		Due:       utcPtr(in.Due),
		Priority:  priority,
		Tags:      cleanTags(in.Tags),
		Subtasks:  []models.Subtask{},
		CreatedAt: r.now().UTC(),
		Order:     r.maxOrder() + 1,
		Recurring: in.Recurring,
	}
	for _, st := range in.Subtasks {
		if st = strings.TrimSpace(st); st != "" {
			t.Subtasks = append(t.Subtasks, models.Subtask{ID: r.newID(), Title: st})
		}
	}

	r.begin()
	s := r.container.Get()
	s.Tasks = append(s.Tasks, t)
	r.commit("task.create", in, t.ID)

	if until, ok := notify.DueWithin(t, r.now(), r.notifyWindow); ok {
		r.notifier.Notify(t.Clone(), until)
	}
	return t.Clone(), nil
}

// Update merges p into the task with id. It never changes id, createdAt or order.
func (r *Repository) Update(id string, p models.Patch) (models.Task, error) {
	i := r.find(id)
	if i < 0 {
		return models.Task{}, ErrTaskNotFound
	}
	if err := validatePatch(p); err != nil {
		return models.Task{}, err
	}
	if p.IsEmpty() {
		return r.container.Get().Tasks[i].Clone(), nil
	}

	r.begin()
	t := &r.container.Get().Tasks[i]
	if p.Archived != nil && !*p.Archived && t.Archived {
		t.Order = r.maxOrder() + 1
	}
	applyPatch(t, p)
	out := t.Clone()
	r.commit("task.update", p, id)
	return out, nil
}

// Delete removes the task with id together with its subtasks.
func (r *Repository) Delete(id string) bool {
	i := r.find(id)
	if i < 0 {
		return false
	}

	r.begin()
	s := r.container.Get()
	s.Tasks = append(s.Tasks[:i], s.Tasks[i+1:]...)
	r.commit("task.delete", id, id)
	return true
}

// ToggleResult describes a completion toggle.
type ToggleResult struct {
	Task models.Task
	// Next is the successor created when a recurring task was completed.
	Next *models.Task
}

// ToggleComplete flips completion. Completing a recurring task with a due
// date appends its next occurrence in the same mutation.
func (r *Repository) ToggleComplete(id string) (ToggleResult, error) {
	i := r.find(id)
	if i < 0 {
		return ToggleResult{}, ErrTaskNotFound
	}

	r.begin()
	s := r.container.Get()
	t := &s.Tasks[i]
	t.Completed = !t.Completed
	res := ToggleResult{Task: t.Clone()}

	if t.Completed {
		if next, ok := recurrence.Successor(*t, r.now().UTC(), r.loc, r.newID); ok {
			next.Order = r.maxOrder() + 1
			s.Tasks = append(s.Tasks, next)
			c := next.Clone()
			res.Next = &c
		}
	}

	r.commit("task.toggle", id, id)
	return res, nil
}

// Reorder moves draggedID to sit immediately before targetID among the
// non-archived tasks, then renumbers them 0..N-1. It returns false when
// either id is unknown, archived, or both are the same.
func (r *Repository) Reorder(draggedID, targetID string) bool {
	if draggedID == targetID {
		return false
	}
	di, ti := r.find(draggedID), r.find(targetID)
	if di < 0 || ti < 0 {
		return false
	}
	s := r.container.Get()
	if s.Tasks[di].Archived || s.Tasks[ti].Archived {
		return false
	}

	active := r.activeByOrder()
	moved := make([]int, 0, len(active))
	for _, idx := range active {
		if idx != di {
			moved = append(moved, idx)
		}
	}
	pos := 0
	for pos < len(moved) && moved[pos] != ti {
		pos++
	}
	moved = append(moved, 0)
	copy(moved[pos+1:], moved[pos:])
	moved[pos] = di

	r.begin()
	for order, idx := range moved {
		s.Tasks[idx].Order = order
	}
	r.commit("task.reorder", []string{draggedID, targetID}, draggedID)
	return true
}

// Duplicate copies the task with id. The copy gets a new id, creation time
// and order; completion and archive flags are kept.
func (r *Repository) Duplicate(id string) (models.Task, error) {
	i := r.find(id)
	if i < 0 {
		return models.Task{}, ErrTaskNotFound
	}

	s := r.container.Get()
	c := s.Tasks[i].Clone()
	c.ID = r.newID()
	c.CreatedAt = r.now().UTC()
	c.Order = r.maxOrder() + 1
	for j := range c.Subtasks {
		c.Subtasks[j].ID = r.newID()
	}

	r.begin()
	s.Tasks = append(s.Tasks, c)
	r.commit("task.duplicate", id, c.ID)
	return c.Clone(), nil
}

// Archive hides the task from active views.
func (r *Repository) Archive(id string) (models.Task, error) {
	i := r.find(id)
	if i < 0 {
		return models.Task{}, ErrTaskNotFound
	}
	t := &r.container.Get().Tasks[i]
	if t.Archived {
		return t.Clone(), nil
	}

	r.begin()
	t.Archived = true
	out := t.Clone()
	r.commit("task.archive", id, id)
	return out, nil
}

// Unarchive restores the task to the end of the active list.
func (r *Repository) Unarchive(id string) (models.Task, error) {
	i := r.find(id)
	if i < 0 {
		return models.Task{}, ErrTaskNotFound
	}
	t := &r.container.Get().Tasks[i]
	if !t.Archived {
		return t.Clone(), nil
	}

	r.begin()
	t.Order = r.maxOrder() + 1
	t.Archived = false
	out := t.Clone()
	r.commit("task.unarchive", id, id)
	return out, nil
}

// AddTag appends tag unless the task already carries it.
func (r *Repository) AddTag(id, tag string) (models.Task, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return models.Task{}, fmt.Errorf("%w: blank tag", ErrInvalidAction)
	}
	i := r.find(id)
	if i < 0 {
		return models.Task{}, ErrTaskNotFound
	}
	t := &r.container.Get().Tasks[i]
	if t.HasTag(tag) {
		return t.Clone(), nil
	}

	r.begin()
	t.Tags = append(t.Tags, tag)
	out := t.Clone()
	r.commit("task.tag", tag, id)
	return out, nil
}

// BulkDelete removes every task whose id is in ids and returns how many went.
func (r *Repository) BulkDelete(ids []string) int {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return r.deleteWhere("task.bulk_delete", ids, func(t models.Task) bool { return set[t.ID] })
}

// BulkArchive archives every non-archived task matching pred.
func (r *Repository) BulkArchive(pred func(models.Task) bool) int {
	s := r.container.Get()
	var hits []int
	for i, t := range s.Tasks {
		if !t.Archived && pred(t) {
			hits = append(hits, i)
		}
	}
	if len(hits) == 0 {
		return 0
	}

	r.begin()
	ids := make([]string, len(hits))
	for n, i := range hits {
		s.Tasks[i].Archived = true
		ids[n] = s.Tasks[i].ID
	}
	r.commit("task.bulk_archive", ids, "")
	return len(hits)
}

// ClearCompleted deletes completed tasks that are not archived.
func (r *Repository) ClearCompleted() int {
	return r.deleteWhere("task.clear_completed", nil, func(t models.Task) bool {
		return t.Completed && !t.Archived
	})
}

// ArchiveCompleted archives every completed task.
func (r *Repository) ArchiveCompleted() int {
	return r.BulkArchive(func(t models.Task) bool { return t.Completed })
}

// DeleteSelected deletes the selected tasks and drops them from sel.
func (r *Repository) DeleteSelected(sel *Selection) int {
	ids := sel.IDs()
	n := r.BulkDelete(ids)
	for _, id := range ids {
		sel.Remove(id)
	}
	return n
}

// ArchiveSelected archives the selected tasks.
func (r *Repository) ArchiveSelected(sel *Selection) int {
	return r.BulkArchive(func(t models.Task) bool { return sel.Has(t.ID) })
}

func (r *Repository) deleteWhere(action string, inputs interface{}, pred func(models.Task) bool) int {
	s := r.container.Get()
	n := 0
	for _, t := range s.Tasks {
		if pred(t) {
			n++
		}
	}
	if n == 0 {
		return 0
	}

	r.begin()
	kept := s.Tasks[:0]
	for _, t := range s.Tasks {
		if !pred(t) {
			kept = append(kept, t)
		}
	}
	s.Tasks = kept
	r.commit(action, inputs, "")
	return n
}

// --- Subtasks ---

// AddSubtask appends a subtask to the task with taskID.
func (r *Repository) AddSubtask(taskID, title string) (models.Subtask, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.Subtask{}, ErrEmptyTitle
	}
	i := r.find(taskID)
	if i < 0 {
		return models.Subtask{}, ErrTaskNotFound
	}

	r.begin()
	t := &r.container.Get().Tasks[i]
	sub := models.Subtask{ID: r.newID(), Title: title}
	t.Subtasks = append(t.Subtasks, sub)
	r.commit("subtask.add", title, taskID)
	return sub, nil
}

// ToggleSubtask flips a subtask's completion.
func (r *Repository) ToggleSubtask(taskID, subtaskID string) (models.Subtask, error) {
	i, j, err := r.findSubtask(taskID, subtaskID)
	if err != nil {
		return models.Subtask{}, err
	}

	r.begin()
	sub := &r.container.Get().Tasks[i].Subtasks[j]
	sub.Completed = !sub.Completed
	out := *sub
	r.commit("subtask.toggle", subtaskID, taskID)
	return out, nil
}

// RemoveSubtask deletes a subtask.
func (r *Repository) RemoveSubtask(taskID, subtaskID string) error {
	i, j, err := r.findSubtask(taskID, subtaskID)
	if err != nil {
		return err
	}

	r.begin()
	t := &r.container.Get().Tasks[i]
	t.Subtasks = append(t.Subtasks[:j], t.Subtasks[j+1:]...)
	r.commit("subtask.remove", subtaskID, taskID)
	return nil
}

// --- Undo ---

// Undo reverts the most recent mutation. It returns false when there is
// nothing to undo. Undoing is itself not undoable. An unreadable snapshot is
// discarded and reported as undo.ErrCorruptSnapshot; older ones remain.
func (r *Repository) Undo() (bool, error) {
	ok, err := r.undo.Undo()
	if err != nil {
		r.logger.Error("undo snapshot dropped", "err", err)
		r.persist()
		return false, err
	}
	if !ok {
		return false, nil
	}
	r.persist()
	r.record("undo", nil, "")
	return true, nil
}

// --- Internals ---

// begin snapshots the current state for undo.
func (r *Repository) begin() {
	if err := r.undo.Capture(); err != nil {
		r.logger.Error("undo snapshot failed", "err", err)
	}
}

// commit persists the mutation and records it.
func (r *Repository) commit(action string, inputs interface{}, taskID string) {
	r.persist()
	r.record(action, inputs, taskID)
}

func (r *Repository) persist() {
	err := r.store.Save(*r.container.Get())
	if err == nil {
		err = r.store.SaveHistory(r.undo.Entries())
	}
	r.lastSaveErr = err
	if err != nil {
		r.logger.Warn("changes kept in memory but not saved", "err", err)
	}
}

func (r *Repository) record(action string, inputs interface{}, taskID string) {
	if r.audit == nil {
		return
	}
	outcome := audit.OutcomeSuccess
	if r.lastSaveErr != nil {
		outcome = audit.OutcomeWarning
	}
	if _, err := r.audit.Record(action, inputs, outcome, taskID); err != nil {
		r.logger.Debug("audit write failed", "action", action, "err", err)
	}
}

func (r *Repository) find(id string) int {
	for i, t := range r.container.Get().Tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (r *Repository) findSubtask(taskID, subtaskID string) (int, int, error) {
	i := r.find(taskID)
	if i < 0 {
		return -1, -1, ErrTaskNotFound
	}
	for j, st := range r.container.Get().Tasks[i].Subtasks {
		if st.ID == subtaskID {
			return i, j, nil
		}
	}
	return -1, -1, ErrSubtaskNotFound
}

// maxOrder returns the highest order among non-archived tasks, or -1.
func (r *Repository) maxOrder() int {
	max := -1
	for _, t := range r.container.Get().Tasks {
		if !t.Archived && t.Order > max {
			max = t.Order
		}
	}
	return max
}

// activeByOrder returns indexes of non-archived tasks sorted by order.
func (r *Repository) activeByOrder() []int {
	s := r.container.Get()
	var idx []int
	for i, t := range s.Tasks {
		if !t.Archived {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return s.Tasks[idx[a]].Order < s.Tasks[idx[b]].Order
	})
	return idx
}

func validatePatch(p models.Patch) error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return ErrEmptyTitle
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return fmt.Errorf("%w: %q", models.ErrInvalidPriority, *p.Priority)
	}
	if p.Recurring != nil && !p.Recurring.Valid() {
		return fmt.Errorf("%w: %q", models.ErrInvalidRecurrence, *p.Recurring)
	}
	return nil
}

func applyPatch(t *models.Task, p models.Patch) {
	if p.Title != nil {
		t.Title = strings.TrimSpace(*p.Title)
	}
	if p.Notes != nil {
		t.Notes = *p.Notes
	}
	if p.ClearDue {
		t.Due = nil
	} else if p.Due != nil {
		t.Due = utcPtr(p.Due)
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Tags != nil {
		t.Tags = cleanTags(*p.Tags)
	}
	if p.Recurring != nil {
		t.Recurring = *p.Recurring
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.Archived != nil {
		t.Archived = *p.Archived
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// cleanTags trims tags and drops blanks. Duplicates are kept.
func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}
