package service

import (
	"testing"
	"time"

	"github.com/lf9/taskdesk/internal/core/domain"
)

func sampleTasks() []domain.Task {
	return []domain.Task{
		{ID: 1, Title: "a", UserID: domain.Ref(7), PriorityID: domain.Ref(3), ProjectID: domain.Ref(1), DueDate: "2026-05-10"},
		{ID: 2, Title: "b", UserID: domain.Ref(7), PriorityID: domain.Ref(1), ProjectID: domain.Ref(2), DueDate: "2026-04-01", Done: true},
		{ID: 3, Title: "c", UserID: domain.Ref(8), PriorityID: domain.Ref(2), ProjectID: domain.Ref(1), DueDate: "2026-01-15"},
		{ID: 4, Title: "d", UserID: domain.Ref(7), DueDate: "2026-01-20"},
		{ID: 5, Title: "e"},
	}
}

func ids(tasks []domain.Task) []int64 {
	out := make([]int64, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestMyTasks(t *testing.T) {
	got := ids(MyTasks(sampleTasks(), 7, TaskFilter{Sort: SortPriority}))
	// missing priority ranks last
	if want := []int64{2, 1, 4}; !equalIDs(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	got = ids(MyTasks(sampleTasks(), 7, TaskFilter{UserID: 8, Sort: SortDate}))
	if want := []int64{4, 2, 1}; !equalIDs(got, want) {
		t.Fatalf("expected user filter to be forced, got %v", got)
	}
}

func TestTeamTasks(t *testing.T) {
	tests := []struct {
		name   string
		filter TaskFilter
		want   []int64
	}{
		{"no filter keeps order", TaskFilter{}, []int64{1, 2, 3, 4, 5}},
		{"by project", TaskFilter{ProjectID: 1}, []int64{1, 3}},
		{"by priority", TaskFilter{PriorityID: 2}, []int64{3}},
		{"by user", TaskFilter{UserID: 8}, []int64{3}},
		{"by date", TaskFilter{Sort: SortDate}, []int64{5, 3, 4, 2, 1}},
		{"combined", TaskFilter{ProjectID: 1, Sort: SortPriority}, []int64{3, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := sampleTasks()
			got := ids(TeamTasks(in, tt.filter))
			if !equalIDs(got, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			if !equalIDs(ids(in), []int64{1, 2, 3, 4, 5}) {
				t.Fatalf("input was reordered")
			}
		})
	}
}

func TestTeamTasks_PriorityOrderWithLargeIDs(t *testing.T) {
	in := []domain.Task{
		{ID: 1, PriorityID: domain.Ref(int64(1) << 32)},
		{ID: 2, PriorityID: domain.Ref(1)},
		{ID: 3},
	}
	got := ids(TeamTasks(in, TaskFilter{Sort: SortPriority}))
	if want := []int64{2, 3, 1}; !equalIDs(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestDashboard(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	s := Dashboard(sampleTasks(), 7, now)
	want := Stats{Total: 3, Open: 2, Done: 1, Overdue: 1}
	if s != want {
		t.Fatalf("expected %+v, got %+v", want, s)
	}
}

func TestOverdue(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		task domain.Task
		want bool
	}{
		{domain.Task{DueDate: "2026-02-28"}, true},
		{domain.Task{DueDate: "2026-03-02"}, false},
		{domain.Task{DueDate: "2026-02-28", Done: true}, false},
		{domain.Task{DueDate: "2026-02-28T10:00:00Z"}, true},
		{domain.Task{DueDate: "irgendwann"}, false},
		{domain.Task{}, false},
	}
	for _, c := range cases {
		if got := Overdue(c.task, now); got != c.want {
			t.Errorf("%+v: expected %v, got %v", c.task, c.want, got)
		}
	}
}

func TestPriorityTone(t *testing.T) {
	cases := map[string]Tone{
		"Hoch":    ToneHigh,
		"URGENT":  ToneHigh,
		"Mittel":  ToneMedium,
		"normal":  ToneMedium,
		"Niedrig": ToneLow,
		"low":     ToneLow,
		"Sonst":   ToneNeutral,
		"":        ToneNeutral,
	}
	for name, want := range cases {
		if got := PriorityTone(name); got != want {
			t.Errorf("%q: expected %s, got %s", name, want, got)
		}
	}
}

func TestNames(t *testing.T) {
	n := NewNames(
		[]domain.Project{{ID: 1, Name: "Intern"}},
		[]domain.Priority{{ID: 3, Name: "Hoch"}},
		[]domain.User{{ID: 7, Username: "alice"}},
	)
	task := sampleTasks()[0]
	if n.Project(task) != "Intern" || n.Priority(task) != "Hoch" || n.User(task) != "alice" {
		t.Fatalf("unexpected names %q %q %q", n.Project(task), n.Priority(task), n.User(task))
	}
	if n.Project(domain.Task{}) != "" {
		t.Fatalf("expected empty name for missing reference")
	}
}
