package domain

import "time"

// Task is one scheduler entry. Date is YYYY-MM-DD and times are HH:MM, kept
// as strings to match what the calendar front-end sends.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	StartTime   string    `json:"startTime"`
	EndTime     string    `json:"endTime"`
	Category    string    `json:"category"`
	Date        string    `json:"date"`
	Color       string    `json:"color,omitempty"`
	Completed   bool      `json:"completed"`
	AIGenerated bool      `json:"aiGenerated,omitempty"`
	Repeating   bool      `json:"repeating,omitempty"`
	RepeatDays  []string  `json:"repeatDays,omitempty"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

// TaskPatch carries the fields of a partial update; nil means unchanged.
type TaskPatch struct {
	Title       *string   `json:"title"`
	StartTime   *string   `json:"startTime"`
	EndTime     *string   `json:"endTime"`
	Category    *string   `json:"category"`
	Date        *string   `json:"date"`
	Color       *string   `json:"color"`
	Completed   *bool     `json:"completed"`
	AIGenerated *bool     `json:"aiGenerated"`
	Repeating   *bool     `json:"repeating"`
	RepeatDays  *[]string `json:"repeatDays"`
}

// Apply copies the set fields of p onto t. The ID is never changed.
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.StartTime != nil {
		t.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		t.EndTime = *p.EndTime
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.Color != nil {
		t.Color = *p.Color
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.AIGenerated != nil {
		t.AIGenerated = *p.AIGenerated
	}
	if p.Repeating != nil {
		t.Repeating = *p.Repeating
	}
	if p.RepeatDays != nil {
		t.RepeatDays = append([]string(nil), (*p.RepeatDays)...)
	}
}

// IsEmpty reports whether the patch sets nothing.
func (p TaskPatch) IsEmpty() bool {
	return p == (TaskPatch{})
}
