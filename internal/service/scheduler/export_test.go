package scheduler

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/park285/playpad-server/internal/domain"
)

func seededService(t *testing.T) *Service {
	t.Helper()
	svc := newTestService(t)
	ctx := context.Background()
	tasks := []domain.Task{
		{Title: "Team Meeting", Date: "2025-03-05", StartTime: "17:00", EndTime: "17:30", Category: "work", Color: "bg-blue-500"},
		{Title: "Gym, legs", Date: "2025-03-06", StartTime: "18:00", EndTime: "19:30", Category: "health", Color: "bg-red-500"},
	}
	for _, task := range tasks {
		if _, err := svc.Create(ctx, task); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	done := true
	if _, err := svc.Update(ctx, "task-2", domain.TaskPatch{Completed: &done}); err != nil {
		t.Fatalf("update: %v", err)
	}
	return svc
}

func TestExportCSV(t *testing.T) {
	svc := seededService(t)
	var buf bytes.Buffer
	if err := svc.ExportCSV(context.Background(), &buf); err != nil {
		t.Fatalf("export: %v", err)
	}
	want := "id,title,startTime,endTime,category,date,color,completed\n" +
		"task-1,Team Meeting,17:00,17:30,work,2025-03-05,bg-blue-500,false\n" +
		"task-2,\"Gym, legs\",18:00,19:30,health,2025-03-06,bg-red-500,true\n"
	if buf.String() != want {
		t.Fatalf("csv mismatch:\n%s", buf.String())
	}
}

func TestExportICS(t *testing.T) {
	svc := seededService(t)
	var buf bytes.Buffer
	if err := svc.ExportICS(context.Background(), &buf); err != nil {
		t.Fatalf("export: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"BEGIN:VCALENDAR",
		"SUMMARY:Team Meeting",
		"DTSTART:20250305T170000",
		"DTEND:20250305T173000",
		"DESCRIPTION:Category: work",
		"DTSTART:20250306T180000",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("ics missing %q:\n%s", want, out)
		}
	}
	if n := strings.Count(out, "BEGIN:VEVENT"); n != 2 {
		t.Fatalf("got %d events", n)
	}
}

func TestTaskWindow(t *testing.T) {
	start, end, ok := taskWindow(&domain.Task{Date: "2025-03-05", StartTime: "23:30"})
	if !ok || end.Sub(start).Hours() != 1 {
		t.Fatalf("default duration: ok=%v start=%v end=%v", ok, start, end)
	}
	if _, _, ok := taskWindow(&domain.Task{Date: "tomorrow", StartTime: "10:00"}); ok {
		t.Fatalf("bad date accepted")
	}
	if _, _, ok := taskWindow(&domain.Task{StartTime: "10:00"}); ok {
		t.Fatalf("missing date accepted")
	}
}

func TestExportPDF(t *testing.T) {
	for name, svc := range map[string]*Service{"empty": newTestService(t), "seeded": seededService(t)} {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := svc.ExportPDF(context.Background(), &buf); err != nil {
				t.Fatalf("export: %v", err)
			}
			if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
				t.Fatalf("not a pdf: %q", buf.Bytes()[:16])
			}
		})
	}
}

func TestPDFLine(t *testing.T) {
	got := pdfLine(&domain.Task{Title: "Gym", Date: "2025-03-06", StartTime: "18:00", EndTime: "19:30", Category: "health", Completed: true})
	if got != "[x] Gym | 2025-03-06 18:00-19:30 | health" {
		t.Fatalf("line = %q", got)
	}
	if got := pdfLine(&domain.Task{}); got != "[ ] Untitled Task | No date No time | General" {
		t.Fatalf("defaults = %q", got)
	}
}
