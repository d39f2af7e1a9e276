package models

import "slices"

// Badge is the display descriptor for one enum value.
type Badge struct {
	Label string `json:"label"`
	Color string `json:"color"`
	Icon  string `json:"icon,omitempty"`
}

// Agent is one of the named roles work can be assigned to.
type Agent string

const (
	AgentHamza Agent = "Hamza"
	AgentLuna  Agent = "Luna"
	AgentAtlas Agent = "Atlas"
	AgentNova  Agent = "Nova"
	AgentOrion Agent = "Orion"
)

// Agents is the roster in display order.
var Agents = []Agent{AgentHamza, AgentLuna, AgentAtlas, AgentNova, AgentOrion}

// Valid reports whether a is on the roster.
func (a Agent) Valid() bool { return slices.Contains(Agents, a) }

// Priority ranks work independently of its status. Memories call it importance.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities lists every priority, lowest first.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

var priorityBadges = map[Priority]Badge{
	PriorityLow:    {Label: "Low", Color: "slate"},
	PriorityMedium: {Label: "Medium", Color: "amber"},
	PriorityHigh:   {Label: "High", Color: "red"},
}

func (p Priority) Valid() bool { return slices.Contains(Priorities, p) }
func (p Priority) Badge() Badge { return priorityBadges[p] }

// TaskStatus is the bucket key of the tasks board.
type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in-progress"
	TaskDone       TaskStatus = "done"
)

// TaskStatuses lists the task columns left to right.
var TaskStatuses = []TaskStatus{TaskTodo, TaskInProgress, TaskDone}

var taskStatusBadges = map[TaskStatus]Badge{
	TaskTodo:       {Label: "To Do", Color: "slate", Icon: "circle"},
	TaskInProgress: {Label: "In Progress", Color: "blue", Icon: "loader"},
	TaskDone:       {Label: "Done", Color: "green", Icon: "check-circle"},
}

func (s TaskStatus) Valid() bool { return slices.Contains(TaskStatuses, s) }
func (s TaskStatus) Badge() Badge { return taskStatusBadges[s] }

// ContentStage is the bucket key of the content pipeline.
type ContentStage string

const (
	StageIdea      ContentStage = "idea"
	StageScript    ContentStage = "script"
	StageThumbnail ContentStage = "thumbnail"
	StageFilming   ContentStage = "filming"
	StagePublished ContentStage = "published"
)

// ContentStages lists the pipeline stages in order.
var ContentStages = []ContentStage{StageIdea, StageScript, StageThumbnail, StageFilming, StagePublished}

var contentStageBadges = map[ContentStage]Badge{
	StageIdea:      {Label: "Idea", Color: "purple", Icon: "lightbulb"},
	StageScript:    {Label: "Script", Color: "blue", Icon: "file-text"},
	StageThumbnail: {Label: "Thumbnail", Color: "pink", Icon: "image"},
	StageFilming:   {Label: "Filming", Color: "orange", Icon: "video"},
	StagePublished: {Label: "Published", Color: "green", Icon: "globe"},
}

func (s ContentStage) Valid() bool { return slices.Contains(ContentStages, s) }
func (s ContentStage) Badge() Badge { return contentStageBadges[s] }

// EventStatus is the bucket key of the calendar day list.
type EventStatus string

const (
	EventPending   EventStatus = "pending"
	EventCompleted EventStatus = "completed"
	EventFailed    EventStatus = "failed"
	EventScheduled EventStatus = "scheduled"
	EventCancelled EventStatus = "cancelled"
)

// EventStatuses lists every calendar event status.
var EventStatuses = []EventStatus{EventPending, EventCompleted, EventFailed, EventScheduled, EventCancelled}

var eventStatusBadges = map[EventStatus]Badge{
	EventPending:   {Label: "Pending", Color: "amber", Icon: "clock"},
	EventCompleted: {Label: "Completed", Color: "green", Icon: "check"},
	EventFailed:    {Label: "Failed", Color: "red", Icon: "x-circle"},
	EventScheduled: {Label: "Scheduled", Color: "blue", Icon: "calendar"},
	EventCancelled: {Label: "Cancelled", Color: "gray", Icon: "ban"},
}

func (s EventStatus) Valid() bool { return slices.Contains(EventStatuses, s) }
func (s EventStatus) Badge() Badge { return eventStatusBadges[s] }

// Recurrence describes how a calendar event repeats.
type Recurrence string

const (
	RecurNone    Recurrence = "none"
	RecurDaily   Recurrence = "daily"
	RecurWeekly  Recurrence = "weekly"
	RecurMonthly Recurrence = "monthly"
)

var Recurrences = []Recurrence{RecurNone, RecurDaily, RecurWeekly, RecurMonthly}

func (r Recurrence) Valid() bool { return slices.Contains(Recurrences, r) }

// Action is the verb recorded in the activity log.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionMove   Action = "move"
	ActionDelete Action = "delete"
	ActionPin    Action = "pin"
	ActionBulk   Action = "bulk"
	ActionClear  Action = "clear"
)

var Actions = []Action{ActionCreate, ActionUpdate, ActionMove, ActionDelete, ActionPin, ActionBulk, ActionClear}

var actionBadges = map[Action]Badge{
	ActionCreate: {Label: "Created", Color: "green", Icon: "plus"},
	ActionUpdate: {Label: "Updated", Color: "blue", Icon: "pencil"},
	ActionMove:   {Label: "Moved", Color: "purple", Icon: "arrow-right"},
	ActionDelete: {Label: "Deleted", Color: "red", Icon: "trash"},
	ActionPin:    {Label: "Pinned", Color: "amber", Icon: "pin"},
	ActionBulk:   {Label: "Bulk edit", Color: "indigo", Icon: "layers"},
	ActionClear:  {Label: "Cleared", Color: "gray", Icon: "eraser"},
}

func (a Action) Valid() bool { return slices.Contains(Actions, a) }
func (a Action) Badge() Badge { return actionBadges[a] }
