package board

import "github.com/p-blackswan/mission-control/internal/models"

// Board kinds served by Mission Control.
var (
	TaskKind = Kind[models.TaskStatus]{
		Name:     "tasks",
		Statuses: models.TaskStatuses,
		Initial:  models.TaskTodo,
		Done:     models.TaskDone,
	}
	ContentKind = Kind[models.ContentStage]{
		Name:     "content",
		Statuses: models.ContentStages,
		Initial:  models.StageIdea,
		Done:     models.StagePublished,
	}
	CalendarKind = Kind[models.EventStatus]{
		Name:     "calendar",
		Statuses: models.EventStatuses,
		Initial:  models.EventPending,
		Done:     models.EventCompleted,
	}
)
