package scheduler

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// Wednesday 2025-03-05 10:00 UTC
var fixedNow = time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("task-%d", n)
	}
}

func TestParseClock(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"5pm", "17:00", true},
		{"5:30pm", "17:30", true},
		{"5:30 PM", "17:30", true},
		{"12am", "00:00", true},
		{"12pm", "12:00", true},
		{"17:30", "17:30", true},
		{"9", "09:00", true},
		{"25", "", false},
		{"13pm", "", false},
		{"noon", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := ParseClock(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("ParseClock(%q) = %q,%v want %q,%v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestCategorize(t *testing.T) {
	cases := map[string]string{
		"Team meeting":     "work",
		"morning workout":  "health",
		"finish homework":  "education",
		"dinner with mom":  "social",
		"water the plants": "personal",
	}
	for in, want := range cases {
		if got := Categorize(in); got != want {
			t.Fatalf("Categorize(%q) = %q, want %q", in, got, want)
		}
	}
	if CategoryColor("health") != "bg-red-500" || CategoryColor("unknown") != "bg-gray-500" {
		t.Fatalf("unexpected colours")
	}
}

func TestGenerateTasksOneOff(t *testing.T) {
	tasks := GenerateTasks("Team meeting at 5pm, gym from 6pm to 7:30pm. read a book", fixedNow, sequentialIDs())
	if len(tasks) != 3 {
		t.Fatalf("got %d tasks", len(tasks))
	}

	type row struct{ ID, Title, Start, End, Category, Color, Date string }
	got := make([]row, 0, len(tasks))
	for _, task := range tasks {
		if !task.AIGenerated || task.Repeating || task.Completed {
			t.Fatalf("unexpected flags on %+v", task)
		}
		got = append(got, row{task.ID, task.Title, task.StartTime, task.EndTime, task.Category, task.Color, task.Date})
	}
	want := []row{
		{"task-1", "Team Meeting", "17:00", "17:30", "work", "bg-blue-500", "2025-03-05"},
		{"task-2", "Gym", "18:00", "19:30", "health", "bg-red-500", "2025-03-05"},
		{"task-3", "Read A Book", "09:00", "10:00", "education", "bg-purple-500", "2025-03-05"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("tasks mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateTasksRepeating(t *testing.T) {
	tasks := GenerateTasks("weekly workout at 7am on monday and friday", fixedNow, sequentialIDs())
	if len(tasks) != 2 {
		t.Fatalf("got %d tasks", len(tasks))
	}
	if tasks[0].Date != "2025-03-10" || tasks[1].Date != "2025-03-07" {
		t.Fatalf("dates = %s, %s", tasks[0].Date, tasks[1].Date)
	}
	for _, task := range tasks {
		if !task.Repeating || task.StartTime != "07:00" || task.EndTime != "08:30" {
			t.Fatalf("unexpected task %+v", task)
		}
		if diff := cmp.Diff([]string{"monday", "friday"}, task.RepeatDays); diff != "" {
			t.Fatalf("repeat days mismatch:\n%s", diff)
		}
	}
}

func TestGenerateTasksRepeatingToday(t *testing.T) {
	passed := GenerateTasks("repeating standup at 9am wednesday", fixedNow, sequentialIDs())
	if len(passed) != 1 || passed[0].Date != "2025-03-12" {
		t.Fatalf("passed start should roll to next week: %+v", passed)
	}
	upcoming := GenerateTasks("repeating standup at 11am wednesday", fixedNow, sequentialIDs())
	if len(upcoming) != 1 || upcoming[0].Date != "2025-03-05" {
		t.Fatalf("upcoming start should stay today: %+v", upcoming)
	}
}

func TestGenerateTasksDefaultsToWeekdays(t *testing.T) {
	tasks := GenerateTasks("weekly review", fixedNow, sequentialIDs())
	if len(tasks) != 5 {
		t.Fatalf("got %d tasks, want 5", len(tasks))
	}
	if tasks[0].Title != "Weekly Review" || tasks[0].Date != "2025-03-10" {
		t.Fatalf("unexpected first task %+v", tasks[0])
	}
}

func TestGenerateTasksSkipsShortClauses(t *testing.T) {
	if tasks := GenerateTasks("ok. hi,\n", fixedNow, sequentialIDs()); len(tasks) != 0 {
		t.Fatalf("expected no tasks, got %d", len(tasks))
	}
}

func TestTitleCase(t *testing.T) {
	if got := titleCase("go to GYM"); got != "Go To Gym" {
		t.Fatalf("got %q", got)
	}
	if got := titleCase("call mom's phone"); got != "Call Mom'S Phone" {
		t.Fatalf("got %q", got)
	}
}
