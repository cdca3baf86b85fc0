package core

import "time"

// QuestStatus is the lifecycle state of a quest.
type QuestStatus string

const (
	QuestStatusActive    QuestStatus = "active"
	QuestStatusCompleted QuestStatus = "completed"
	QuestStatusArchived  QuestStatus = "archived"
)

// Valid reports whether s is one of the known statuses.
func (s QuestStatus) Valid() bool {
	switch s {
	case QuestStatusActive, QuestStatusCompleted, QuestStatusArchived:
		return true
	}
	return false
}

// Quest is a user-owned document tracking a goal and its objectives.
// Objectives travel inside the quest document rather than as separate rows.
type Quest struct {
	ID          string      `json:"id"`
	Owner       string      `json:"owner"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Status      QuestStatus `json:"status"`
	Objectives  []Objective `json:"objectives"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Objective is a single step within a quest.
type Objective struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Done        bool       `json:"done"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// FindObjective returns a pointer to the objective with the given id, or nil.
func (q *Quest) FindObjective(id string) *Objective {
	for i := range q.Objectives {
		if q.Objectives[i].ID == id {
			return &q.Objectives[i]
		}
	}
	return nil
}

// AllObjectivesDone reports whether every objective is complete. A quest with
// no objectives is not considered done.
func (q *Quest) AllObjectivesDone() bool {
	if len(q.Objectives) == 0 {
		return false
	}
	for i := range q.Objectives {
		if !q.Objectives[i].Done {
			return false
		}
	}
	return true
}
