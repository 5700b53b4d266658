package domain

import "math"

// TaskStats es derivado, nunca se persiste. Total == Completed + Pending siempre.
type TaskStats struct {
	Total     int
	Completed int
	Pending   int
}

func ComputeStats(tasks []*Task) TaskStats {
	var s TaskStats
	s.Total = len(tasks)
	for _, t := range tasks {
		if t.Completed {
			s.Completed++
		}
	}
	s.Pending = s.Total - s.Completed
	return s
}

// CompletionRate es el porcentaje redondeado de tareas completadas; 0 si no hay tareas.
func (s TaskStats) CompletionRate() int {
	if s.Total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(s.Completed) / float64(s.Total)))
}

// --- Transiciones de contadores usadas por la sesión ---

func (s TaskStats) Added() TaskStats {
	s.Total++
	s.Pending++
	return s
}

func (s TaskStats) Toggled(completed bool) TaskStats {
	if completed {
		s.Completed++
		s.Pending--
	} else {
		s.Completed--
		s.Pending++
	}
	return s
}

func (s TaskStats) Removed(wasCompleted bool) TaskStats {
	s.Total--
	if wasCompleted {
		s.Completed--
	} else {
		s.Pending--
	}
	return s
}
