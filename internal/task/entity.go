package task

import (
	"time"
)

// Task is exclusively owned by the user whose email is UserEmail. UserEmail
// never changes after creation.
type Task struct {
	ID                 string    `yaml:"id" json:"id"`
	Title              string    `yaml:"title" json:"title"`
	Description        string    `yaml:"description" json:"description"`
	EstimatedPomodoros int       `yaml:"estimated_pomodoros" json:"estimated_pomodoros"`
	CompletedPomodoros int       `yaml:"completed_pomodoros" json:"completed_pomodoros"`
	Completed          bool      `yaml:"completed" json:"completed"`
	UserEmail          string    `yaml:"user_email" json:"user_email"`
	CreatedAt          time.Time `yaml:"created_at" json:"created_at"`
	UpdatedAt          time.Time `yaml:"updated_at" json:"updated_at"`
}

// Patch carries the fields of a partial update; nil fields are left as is.
type Patch struct {
	Title              *string `json:"title,omitempty"`
	Description        *string `json:"description,omitempty"`
	EstimatedPomodoros *int    `json:"estimated_pomodoros,omitempty"`
	Completed          *bool   `json:"completed,omitempty"`
}

func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.EstimatedPomodoros == nil && p.Completed == nil
}

// Apply merges p into t. The estimate is clamped to at least one pomodoro.
func (p Patch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.EstimatedPomodoros != nil {
		t.EstimatedPomodoros = ClampPomodoros(*p.EstimatedPomodoros)
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
}
