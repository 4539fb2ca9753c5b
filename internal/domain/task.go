package domain

import "time"

// TaskInstance is one dated obligation produced by generation. Instances are
// values: generation never mutates one after producing it.
type TaskInstance struct {
	Name           string
	Category       string
	FormCode       string
	DueDate        time.Time
	ClientID       string
	Exercice       int
	SourceRuleID   string
	SourceBranchID string
}

// DueEpoch returns the due date as Unix seconds at UTC midnight.
func (t TaskInstance) DueEpoch() int64 {
	return t.DueDate.Unix()
}

// Run groups the tasks materialized for one client and exercice.
type Run struct {
	ID        string
	ClientID  string
	Exercice  int
	TaskCount int
	CreatedAt time.Time
}

// StoredTask is a materialized TaskInstance bound to a run. Status and
// assignment are owned by the task lifecycle outside generation.
type StoredTask struct {
	ID     string
	RunID  string
	Status TaskStatus
	TaskInstance
	CreatedAt time.Time
}
