package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTask(title string, created time.Time) *Task {
	return &Task{ID: uuid.New(), Title: title, Priority: PriorityMedium, CreatedAt: created, UpdatedAt: created}
}

func titles(tasks []*Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Title)
	}
	return out
}

func TestProject_SearchMatchesCategoryCaseInsensitive(t *testing.T) {
	now := time.Now().UTC()
	report := newTask("Write report", now)
	report.Category = "Work"
	milk := newTask("Buy milk", now.Add(-time.Minute))

	got := Project([]*Task{report, milk}, ViewQuery{Search: "work"})

	require.Len(t, got, 1)
	assert.Equal(t, "Write report", got[0].Title)
}

func TestProject_SearchDescriptionAndEmptyQuery(t *testing.T) {
	now := time.Now().UTC()
	a := newTask("A", now)
	a.Description = "Llamar al FONTANERO"
	b := newTask("B", now.Add(-time.Minute))

	assert.Equal(t, []string{"A"}, titles(Project([]*Task{a, b}, ViewQuery{Search: "fontanero"})))
	assert.Equal(t, []string{"A", "B"}, titles(Project([]*Task{a, b}, ViewQuery{})))
	assert.Empty(t, Project([]*Task{a, b}, ViewQuery{Search: "zzz"}))
}

func TestProject_StatusFilter(t *testing.T) {
	now := time.Now().UTC()
	done := newTask("hecha", now)
	done.Completed = true
	open := newTask("abierta", now.Add(-time.Minute))
	tasks := []*Task{done, open}

	assert.Equal(t, []string{"hecha", "abierta"}, titles(Project(tasks, ViewQuery{Filter: FilterAll})))
	assert.Equal(t, []string{"hecha"}, titles(Project(tasks, ViewQuery{Filter: FilterCompleted})))
	assert.Equal(t, []string{"abierta"}, titles(Project(tasks, ViewQuery{Filter: FilterPending})))
}

func TestProject_SortCreatedNewestFirst(t *testing.T) {
	now := time.Now().UTC()
	old := newTask("old", now.Add(-2*time.Hour))
	mid := newTask("mid", now.Add(-1*time.Hour))
	fresh := newTask("new", now)

	got := Project([]*Task{old, fresh, mid}, ViewQuery{Sort: SortCreated})
	assert.Equal(t, []string{"new", "mid", "old"}, titles(got))
}

func TestProject_SortTitleLocaleAware(t *testing.T) {
	now := time.Now().UTC()
	tasks := []*Task{newTask("banana", now), newTask("Árbol", now), newTask("apple", now), newTask("Zebra", now)}

	got := Project(tasks, ViewQuery{Sort: SortTitle})
	assert.Equal(t, []string{"apple", "Árbol", "banana", "Zebra"}, titles(got))
}

func TestProject_SortDueDateMissingLast(t *testing.T) {
	now := time.Now().UTC()
	none := newTask("sin fecha", now)
	late := newTask("tarde", now)
	late.DueDate = ptr(MustParseDate("2024-12-31"))
	early := newTask("pronto", now)
	early.DueDate = ptr(MustParseDate("2024-01-01"))
	early.Completed = true

	for _, f := range []StatusFilter{FilterAll, FilterPending} {
		got := Project([]*Task{none, late, early}, ViewQuery{Sort: SortDueDate, Filter: f})
		assert.Equal(t, "sin fecha", got[len(got)-1].Title, "las tareas sin fecha van siempre al final (filtro %s)", f)
	}
	got := Project([]*Task{none, late, early}, ViewQuery{Sort: SortDueDate})
	assert.Equal(t, []string{"pronto", "tarde", "sin fecha"}, titles(got))
}

func TestProject_SortPriorityStable(t *testing.T) {
	now := time.Now().UTC()
	m1 := newTask("m1", now)
	l1 := newTask("l1", now)
	l1.Priority = PriorityLow
	h1 := newTask("h1", now)
	h1.Priority = PriorityHigh
	m2 := newTask("m2", now)
	h2 := newTask("h2", now)
	h2.Priority = PriorityHigh

	got := Project([]*Task{m1, l1, h1, m2, h2}, ViewQuery{Sort: SortPriority})
	assert.Equal(t, []string{"h1", "h2", "m1", "m2", "l1"}, titles(got))
}

func TestProject_DeterministicAndPure(t *testing.T) {
	now := time.Now().UTC()
	tasks := []*Task{newTask("b", now.Add(-time.Hour)), newTask("a", now), newTask("c", now.Add(-2*time.Hour))}
	before := titles(tasks)
	q := ViewQuery{Search: "", Filter: FilterAll, Sort: SortTitle}

	first := Project(tasks, q)
	second := Project(tasks, q)

	assert.Equal(t, first, second)
	assert.Equal(t, before, titles(tasks), "la entrada no debe reordenarse")
}

func TestCountsFor_IgnoresStatusFilter(t *testing.T) {
	now := time.Now().UTC()
	a := newTask("Write report", now)
	a.Category = "Work"
	b := newTask("Work out", now)
	b.Completed = true
	c := newTask("Buy milk", now)

	assert.Equal(t, FilterCounts{All: 2, Completed: 1, Pending: 1}, CountsFor([]*Task{a, b, c}, "WORK"))
	assert.Equal(t, FilterCounts{All: 3, Completed: 1, Pending: 2}, CountsFor([]*Task{a, b, c}, ""))
}

func TestParseStatusFilterAndSortKey(t *testing.T) {
	f, err := ParseStatusFilter("")
	assert.NoError(t, err)
	assert.Equal(t, FilterAll, f)
	_, err = ParseStatusFilter("archived")
	assert.Error(t, err)

	k, err := ParseSortKey("dueDate")
	assert.NoError(t, err)
	assert.Equal(t, SortDueDate, k)
	k, err = ParseSortKey("")
	assert.NoError(t, err)
	assert.Equal(t, SortCreated, k)
	_, err = ParseSortKey("color")
	assert.Error(t, err)
}

func TestEmptyStateFor(t *testing.T) {
	assert.Equal(t, EmptyNoTasks, EmptyStateFor(0, 0, FilterCompleted))
	assert.Equal(t, EmptyNone, EmptyStateFor(3, 1, FilterAll))
	assert.Equal(t, EmptyCompleted, EmptyStateFor(3, 0, FilterCompleted))
	assert.Equal(t, EmptyPending, EmptyStateFor(3, 0, FilterPending))
	assert.Equal(t, EmptyNoResults, EmptyStateFor(3, 0, FilterAll))
}
