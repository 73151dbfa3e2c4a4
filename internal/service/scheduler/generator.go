package scheduler

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/park285/playpad-server/internal/domain"
)

const (
	defaultStart    = "09:00"
	dateLayout      = "2006-01-02"
	clockLayout     = "15:04"
	minSentenceRune = 3
)

var weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

var (
	sentenceSplit = regexp.MustCompile(`[.,\n]`)
	timeToken     = `(\d{1,2}(?::\d{2})?\s*(?:am|pm)?)`
	taskPatterns  = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(.+?)\s+at\s+` + timeToken),
		regexp.MustCompile(`(?i)(.+?)\s+from\s+` + timeToken + `\s+to\s+` + timeToken),
		regexp.MustCompile(`(?i)(.+?)\s+by\s+` + timeToken),
		regexp.MustCompile(`(?i)(.+?)(?:\s+(?:at|from|by|until)\s+.+)?$`),
	}
	trailingClause = regexp.MustCompile(`(?i)\s+(at|from|to|by|until)\s+.+$`)
	clockPattern   = regexp.MustCompile(`^(\d{1,2})(?::(\d{2}))?\s*(am|pm)?`)
)

type categoryRule struct {
	name     string
	keywords []string
}

// First keyword substring match wins; "workout" and "homework" must resolve
// before "work".
var categoryRules = []categoryRule{
	{"health", []string{"workout", "gym", "exercise", "run", "health"}},
	{"education", []string{"study", "learn", "read", "course", "homework"}},
	{"work", []string{"work", "meeting", "project", "office", "client"}},
	{"social", []string{"family", "friends", "social", "party", "dinner"}},
}

var categoryColors = map[string]string{
	"work":      "bg-blue-500",
	"health":    "bg-red-500",
	"education": "bg-purple-500",
	"personal":  "bg-green-500",
	"social":    "bg-yellow-500",
}

// Categorize maps a task name to a category by keyword.
func Categorize(name string) string {
	lower := strings.ToLower(name)
	for _, rule := range categoryRules {
		if containsAny(lower, rule.keywords) {
			return rule.name
		}
	}
	return "personal"
}

// CategoryColor returns the calendar colour class of a category.
func CategoryColor(category string) string {
	if c, ok := categoryColors[category]; ok {
		return c
	}
	return "bg-gray-500"
}

// ParseClock normalises "5pm", "5:30 PM", "17:30" or "5" to HH:MM.
func ParseClock(raw string) (string, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return "", false
	}
	m := clockPattern.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	hour, _ := strconv.Atoi(m[1])
	minute := 0
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}
	switch m[3] {
	case "pm":
		if hour != 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	}
	if hour > 23 || minute > 59 {
		return "", false
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), true
}

// durationFor estimates a task's length from its name.
func durationFor(name string) time.Duration {
	lower := strings.ToLower(name)
	switch {
	case containsAny(lower, []string{"meeting", "call"}):
		return 30 * time.Minute
	case containsAny(lower, []string{"workout", "exercise"}):
		return 90 * time.Minute
	case containsAny(lower, []string{"study", "learn"}):
		return 120 * time.Minute
	default:
		return 60 * time.Minute
	}
}

func addClock(start string, d time.Duration) string {
	t, err := time.Parse(clockLayout, start)
	if err != nil {
		return start
	}
	return t.Add(d).Format(clockLayout)
}

type draft struct {
	name  string
	start string
	end   string
}

// parseSentence extracts a task name and optional times from one clause.
func parseSentence(sentence string) (draft, bool) {
	var d draft
	for _, re := range taskPatterns {
		m := re.FindStringSubmatch(sentence)
		if m == nil {
			continue
		}
		d.name = strings.TrimSpace(m[1])
		if len(m) > 2 {
			d.start, _ = ParseClock(m[2])
		}
		if len(m) > 3 {
			d.end, _ = ParseClock(m[3])
		}
		break
	}
	d.name = strings.TrimSpace(trailingClause.ReplaceAllString(d.name, ""))
	if d.name == "" {
		return d, false
	}
	if d.start == "" {
		d.start = defaultStart
	}
	if d.end == "" {
		d.end = addClock(d.start, durationFor(d.name))
	}
	return d, true
}

// repeatDaysFor returns the weekdays a repeating prompt names, or Monday to
// Friday when it names none. Non-repeating prompts return nil.
func repeatDaysFor(prompt string) []string {
	lower := strings.ToLower(prompt)
	if !strings.Contains(lower, "repeating") && !strings.Contains(lower, "weekly") {
		return nil
	}
	var days []string
	for _, day := range weekdays {
		if strings.Contains(lower, day) {
			days = append(days, day)
		}
	}
	if len(days) == 0 {
		days = append(days, weekdays[:5]...)
	}
	return days
}

// nextOccurrence is the date of the next given weekday on or after now. The
// current day counts only while its start time has not passed.
func nextOccurrence(now time.Time, day, start string) string {
	target := indexOf(weekdays, day)
	today := (int(now.Weekday()) + 6) % 7
	delta := (target - today + 7) % 7
	if delta == 0 {
		if t, err := time.Parse(clockLayout, start); err == nil {
			midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
			startAt := midnight.Add(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute)
			if now.After(startAt) {
				delta = 7
			}
		}
	}
	return now.AddDate(0, 0, delta).Format(dateLayout)
}

// GenerateTasks turns a free-text prompt into tasks. Each clause split on
// '.', ',' or newline becomes one task, or one per weekday when the prompt
// asks for a repeating schedule.
func GenerateTasks(prompt string, now time.Time, newID func() string) []*domain.Task {
	repeat := repeatDaysFor(prompt)
	out := make([]*domain.Task, 0)

	for _, raw := range sentenceSplit.Split(prompt, -1) {
		sentence := strings.TrimSpace(raw)
		if utf8.RuneCountInString(sentence) < minSentenceRune {
			continue
		}
		d, ok := parseSentence(sentence)
		if !ok {
			continue
		}
		category := Categorize(d.name)
		base := domain.Task{
			Title:       titleCase(d.name),
			StartTime:   d.start,
			EndTime:     d.end,
			Category:    category,
			Color:       CategoryColor(category),
			AIGenerated: true,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if repeat == nil {
			t := base
			t.ID = newID()
			t.Date = now.Format(dateLayout)
			out = append(out, &t)
			continue
		}
		for _, day := range repeat {
			t := base
			t.ID = newID()
			t.Date = nextOccurrence(now, day, d.start)
			t.Repeating = true
			t.RepeatDays = append([]string(nil), repeat...)
			out = append(out, &t)
		}
	}
	return out
}

// titleCase upper-cases the first letter of every run of letters and
// lower-cases the rest.
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
			continue
		}
		b.WriteRune(r)
		prevLetter = false
	}
	return b.String()
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func indexOf(list []string, v string) int {
	for i, s := range list {
		if s == v {
			return i
		}
	}
	return 0
}
