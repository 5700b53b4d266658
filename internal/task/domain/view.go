package domain

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type StatusFilter string

const (
	FilterAll       StatusFilter = "all"
	FilterCompleted StatusFilter = "completed"
	FilterPending   StatusFilter = "pending"
)

type SortKey string

const (
	SortCreated  SortKey = "created"
	SortTitle    SortKey = "title"
	SortDueDate  SortKey = "dueDate"
	SortPriority SortKey = "priority"
)

// ParseStatusFilter: vacío equivale a "all".
func ParseStatusFilter(s string) (StatusFilter, error) {
	switch StatusFilter(s) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterCompleted, FilterPending:
		return StatusFilter(s), nil
	}
	return "", fmt.Errorf("unknown status filter %q", s)
}

// ParseSortKey: vacío equivale a "created".
func ParseSortKey(s string) (SortKey, error) {
	switch SortKey(s) {
	case "", SortCreated:
		return SortCreated, nil
	case SortTitle, SortDueDate, SortPriority:
		return SortKey(s), nil
	}
	return "", fmt.Errorf("unknown sort key %q", s)
}

// ViewQuery agrupa las entradas de la proyección.
// Language es la etiqueta de idioma para comparar títulos; language.Und usa inglés.
type ViewQuery struct {
	Search   string
	Filter   StatusFilter
	Sort     SortKey
	Language language.Tag
}

// FilterCounts son las cifras de cada pestaña para la búsqueda actual.
type FilterCounts struct {
	All       int
	Completed int
	Pending   int
}

// Project deriva la lista visible: búsqueda, filtro de estado y orden estable,
// siempre en ese orden. No modifica el slice de entrada.
func Project(tasks []*Task, q ViewQuery) []*Task {
	visible := make([]*Task, 0, len(tasks))
	for _, t := range search(tasks, q.Search) {
		if matchesFilter(t, q.Filter) {
			visible = append(visible, t)
		}
	}
	sortTasks(visible, q.Sort, q.Language)
	return visible
}

// CountsFor cuenta sobre el conjunto filtrado por la búsqueda, sin aplicar el filtro de estado.
func CountsFor(tasks []*Task, query string) FilterCounts {
	var c FilterCounts
	for _, t := range search(tasks, query) {
		c.All++
		if t.Completed {
			c.Completed++
		} else {
			c.Pending++
		}
	}
	return c
}

// --- Pipeline ---

func search(tasks []*Task, query string) []*Task {
	if query == "" {
		return tasks
	}
	needle := strings.ToLower(query)
	var out []*Task
	for _, t := range tasks {
		if containsFold(t.Title, needle) || containsFold(t.Description, needle) || containsFold(t.Category, needle) {
			out = append(out, t)
		}
	}
	return out
}

// Un campo vacío se considera ausente y nunca coincide.
func containsFold(field, lowerNeedle string) bool {
	return field != "" && strings.Contains(strings.ToLower(field), lowerNeedle)
}

func matchesFilter(t *Task, f StatusFilter) bool {
	switch f {
	case FilterCompleted:
		return t.Completed
	case FilterPending:
		return !t.Completed
	}
	return true
}

func sortTasks(list []*Task, key SortKey, lang language.Tag) {
	switch key {
	case SortTitle:
		if lang == language.Und {
			lang = language.English
		}
		// collate.Collator no es seguro para uso concurrente: uno por llamada.
		col := collate.New(lang)
		sort.SliceStable(list, func(i, j int) bool {
			return col.CompareString(list[i].Title, list[j].Title) < 0
		})
	case SortDueDate:
		sort.SliceStable(list, func(i, j int) bool {
			a, b := list[i].DueDate, list[j].DueDate
			switch {
			case a == nil:
				return false
			case b == nil:
				return true
			}
			return a.Before(*b)
		})
	case SortPriority:
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Priority.Rank() > list[j].Priority.Rank()
		})
	default:
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		})
	}
}

// --- Estado vacío ---

type EmptyState string

const (
	EmptyNone      EmptyState = ""
	EmptyNoTasks   EmptyState = "no-tasks"
	EmptyNoResults EmptyState = "no-results"
	EmptyCompleted EmptyState = "no-completed"
	EmptyPending   EmptyState = "no-pending"
)

// EmptyStateFor decide qué mensaje mostrar cuando la vista no tiene elementos.
func EmptyStateFor(total, visible int, filter StatusFilter) EmptyState {
	if total == 0 {
		return EmptyNoTasks
	}
	if visible > 0 {
		return EmptyNone
	}
	switch filter {
	case FilterCompleted:
		return EmptyCompleted
	case FilterPending:
		return EmptyPending
	}
	return EmptyNoResults
}
