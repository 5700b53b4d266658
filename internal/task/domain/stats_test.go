package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeStats(t *testing.T) {
	tasks := []*Task{{Completed: true}, {}, {}, {Completed: true}, {Completed: true}}

	s := ComputeStats(tasks)

	assert.Equal(t, TaskStats{Total: 5, Completed: 3, Pending: 2}, s)
	assert.Equal(t, 60, s.CompletionRate())
}

func TestComputeStats_Empty(t *testing.T) {
	s := ComputeStats(nil)

	assert.Equal(t, TaskStats{}, s)
	assert.Equal(t, 0, s.CompletionRate(), "sin tareas el porcentaje es 0, no NaN")
}

func TestCompletionRate_Rounds(t *testing.T) {
	assert.Equal(t, 33, TaskStats{Total: 3, Completed: 1, Pending: 2}.CompletionRate())
	assert.Equal(t, 67, TaskStats{Total: 3, Completed: 2, Pending: 1}.CompletionRate())
	assert.Equal(t, 100, TaskStats{Total: 2, Completed: 2}.CompletionRate())
}

func TestTaskStats_Transitions(t *testing.T) {
	s := TaskStats{}.Added().Added().Added()
	assert.Equal(t, TaskStats{Total: 3, Pending: 3}, s)

	s = s.Toggled(true)
	assert.Equal(t, TaskStats{Total: 3, Completed: 1, Pending: 2}, s)

	s = s.Removed(true)
	assert.Equal(t, TaskStats{Total: 2, Completed: 0, Pending: 2}, s)

	s = s.Toggled(true).Toggled(false).Removed(false)
	assert.Equal(t, TaskStats{Total: 1, Completed: 0, Pending: 1}, s)
	assert.Equal(t, s.Total, s.Completed+s.Pending)
}
