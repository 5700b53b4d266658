package domain

import (
	"time"

	"github.com/google/uuid"
)

var (
	seedFirstID  = uuid.MustParse("6f1d2c9e-0b4a-4c1e-9a57-3d2f8e1b0001")
	seedSecondID = uuid.MustParse("6f1d2c9e-0b4a-4c1e-9a57-3d2f8e1b0002")
)

// SeedTasks es el estado inicial determinista cuando no hay nada persistido.
// Cada llamada devuelve instancias nuevas.
func SeedTasks() []*Task {
	first := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	second := time.Date(2024, 1, 14, 15, 30, 0, 0, time.UTC)
	return []*Task{
		{
			ID:          seedFirstID,
			Title:       "Complete React assignment",
			Description: "Build a task tracker application",
			Priority:    PriorityMedium,
			CreatedAt:   first,
			UpdatedAt:   first,
		},
		{
			ID:          seedSecondID,
			Title:       "Review JavaScript concepts",
			Description: "Go through ES6+ features",
			Completed:   true,
			Priority:    PriorityMedium,
			CreatedAt:   second,
			UpdatedAt:   second,
		},
	}
}
