package service

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/lf9/taskdesk/internal/core/domain"
)

// SortOrder orders a task list.
type SortOrder string

const (
	SortNone     SortOrder = ""
	SortPriority SortOrder = "priority"
	SortDate     SortOrder = "date"
)

// missingPriority ranks tasks without a priority after every real one.
const missingPriority = 99

// TaskFilter narrows a task list. Zero values match everything.
type TaskFilter struct {
	UserID     int64
	ProjectID  int64
	PriorityID int64
	Sort       SortOrder
}

// MyTasks returns the tasks assigned to userID, filtered and sorted.
func MyTasks(tasks []domain.Task, userID int64, f TaskFilter) []domain.Task {
	f.UserID = userID
	return TeamTasks(tasks, f)
}

// TeamTasks filters the whole collection. The input is not modified.
func TeamTasks(tasks []domain.Task, f TaskFilter) []domain.Task {
	out := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if f.UserID != 0 && !t.AssignedTo(f.UserID) {
			continue
		}
		if f.ProjectID != 0 && (t.ProjectID == nil || *t.ProjectID != f.ProjectID) {
			continue
		}
		if f.PriorityID != 0 && (t.PriorityID == nil || *t.PriorityID != f.PriorityID) {
			continue
		}
		out = append(out, t)
	}

	switch f.Sort {
	case SortPriority:
		slices.SortStableFunc(out, func(a, b domain.Task) int {
			return cmp.Compare(priorityRank(a), priorityRank(b))
		})
	case SortDate:
		slices.SortStableFunc(out, func(a, b domain.Task) int {
			return strings.Compare(a.DueDate, b.DueDate)
		})
	}
	return out
}

func priorityRank(t domain.Task) int64 {
	if t.PriorityID == nil {
		return missingPriority
	}
	return *t.PriorityID
}

// FindTask looks a task up by id.
func FindTask(tasks []domain.Task, id int64) (domain.Task, bool) {
	i := slices.IndexFunc(tasks, func(t domain.Task) bool { return t.ID == id })
	if i < 0 {
		return domain.Task{}, false
	}
	return tasks[i], true
}

// Stats are the dashboard counters of one user.
type Stats struct {
	Total   int
	Open    int
	Done    int
	Overdue int
}

// Dashboard counts userID's tasks. A task is overdue when it is open and
// its due date lies before now.
func Dashboard(tasks []domain.Task, userID int64, now time.Time) Stats {
	var s Stats
	for _, t := range tasks {
		if !t.AssignedTo(userID) {
			continue
		}
		s.Total++
		if t.Done {
			s.Done++
			continue
		}
		s.Open++
		if Overdue(t, now) {
			s.Overdue++
		}
	}
	return s
}

// Overdue reports whether an open task's due date has passed. Dates that
// do not parse are never overdue.
func Overdue(t domain.Task, now time.Time) bool {
	if t.Done || t.DueDate == "" {
		return false
	}
	due, err := time.Parse(time.DateOnly, t.DueDate)
	if err != nil {
		due, err = time.Parse(time.RFC3339, t.DueDate)
		if err != nil {
			return false
		}
	}
	return due.Before(now)
}

// Tone classifies a priority name for display.
type Tone string

const (
	ToneHigh    Tone = "high"
	ToneMedium  Tone = "medium"
	ToneLow     Tone = "low"
	ToneNeutral Tone = "neutral"
)

// PriorityTone maps German and English priority names to a tone.
func PriorityTone(name string) Tone {
	n := strings.ToLower(name)
	switch {
	case containsAny(n, "hoch", "high", "urgent"):
		return ToneHigh
	case containsAny(n, "mittel", "medium", "normal"):
		return ToneMedium
	case containsAny(n, "niedrig", "low"):
		return ToneLow
	default:
		return ToneNeutral
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// Names indexes catalog entries and users by id for display.
type Names struct {
	Projects   map[int64]string
	Priorities map[int64]string
	Users      map[int64]string
}

// NewNames builds the lookup tables.
func NewNames(projects []domain.Project, priorities []domain.Priority, users []domain.User) Names {
	n := Names{
		Projects:   make(map[int64]string, len(projects)),
		Priorities: make(map[int64]string, len(priorities)),
		Users:      make(map[int64]string, len(users)),
	}
	for _, p := range projects {
		n.Projects[p.ID] = p.Name
	}
	for _, p := range priorities {
		n.Priorities[p.ID] = p.Name
	}
	for _, u := range users {
		n.Users[u.ID] = u.Username
	}
	return n
}

func lookup(m map[int64]string, id *int64) string {
	if id == nil {
		return ""
	}
	return m[*id]
}

func (n Names) Project(t domain.Task) string  { return lookup(n.Projects, t.ProjectID) }
func (n Names) Priority(t domain.Task) string { return lookup(n.Priorities, t.PriorityID) }
func (n Names) User(t domain.Task) string     { return lookup(n.Users, t.UserID) }
