package scheduler

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/jung-kurt/gofpdf"
	"github.com/park285/playpad-server/internal/domain"
	"go.uber.org/zap"
)

const icsLocalLayout = "20060102T150405"

var csvHeader = []string{"id", "title", "startTime", "endTime", "category", "date", "color", "completed"}

// ExportCSV writes every task as one CSV row under a fixed header.
func (s *Service) ExportCSV(ctx context.Context, w io.Writer) error {
	tasks, err := s.repo.List(ctx)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, t := range tasks {
		row := []string{t.ID, t.Title, t.StartTime, t.EndTime, t.Category, t.Date, t.Color, strconv.FormatBool(t.Completed)}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportICS writes a calendar with one event per dated task. Tasks without a
// date or start time, or with unparsable ones, are skipped.
func (s *Service) ExportICS(ctx context.Context, w io.Writer) error {
	tasks, err := s.repo.List(ctx)
	if err != nil {
		return err
	}
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//PlayPad//Scheduler//EN")
	stamp := s.now()

	for _, t := range tasks {
		start, end, ok := taskWindow(t)
		if !ok {
			s.logger.Debug("ics_task_skipped", zap.String("id", t.ID))
			continue
		}
		ev := cal.AddEvent(t.ID + "@playpad")
		ev.SetDtStampTime(stamp)
		ev.SetProperty(ics.ComponentPropertyDtStart, start.Format(icsLocalLayout))
		ev.SetProperty(ics.ComponentPropertyDtEnd, end.Format(icsLocalLayout))
		ev.SetSummary(orDefault(t.Title, "Task"))
		ev.SetDescription("Category: " + orDefault(t.Category, "General"))
	}

	if _, err := io.WriteString(w, cal.Serialize()); err != nil {
		return fmt.Errorf("write ics: %w", err)
	}
	return nil
}

// taskWindow resolves a task's start and end as floating local times. The
// end defaults to one hour after the start.
func taskWindow(t *domain.Task) (time.Time, time.Time, bool) {
	if t.Date == "" || t.StartTime == "" {
		return time.Time{}, time.Time{}, false
	}
	start, err := time.Parse(dateLayout+" "+clockLayout, t.Date+" "+t.StartTime)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	if t.EndTime == "" {
		return start, start.Add(time.Hour), true
	}
	end, err := time.Parse(dateLayout+" "+clockLayout, t.Date+" "+t.EndTime)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

// ExportPDF writes a one-column A4 listing of the tasks.
func (s *Service) ExportPDF(ctx context.Context, w io.Writer) error {
	tasks, err := s.repo.List(ctx)
	if err != nil {
		return err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCreator("PlayPad", false)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 10, tr(s.catalog.Text("scheduler.pdf_title", nil, "Scheduled Tasks")), "", 1, "C", false, 0, "")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 12)

	if len(tasks) == 0 {
		pdf.CellFormat(190, 10, tr(s.catalog.Text("scheduler.pdf_empty", nil, "No tasks found")), "", 1, "C", false, 0, "")
	}
	for _, t := range tasks {
		pdf.CellFormat(190, 8, tr(pdfLine(t)), "", 1, "L", false, 0, "")
		pdf.Ln(2)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

// pdfLine renders "[x] Title | date start-end | category".
func pdfLine(t *domain.Task) string {
	mark := "[ ]"
	if t.Completed {
		mark = "[x]"
	}
	line := fmt.Sprintf("%s %s | %s %s", mark, orDefault(t.Title, "Untitled Task"), orDefault(t.Date, "No date"), orDefault(t.StartTime, "No time"))
	if t.EndTime != "" {
		line += "-" + t.EndTime
	}
	return line + " | " + orDefault(t.Category, "General")
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
