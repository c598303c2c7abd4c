package api

import (
	"encoding/json"
	"time"
)

// Pattern describes how often a recurring task repeats.
type Pattern string

// Recurrence patterns accepted by the backend.
const (
	PatternDaily    Pattern = "daily"
	PatternWeekdays Pattern = "weekdays"
	PatternWeekly   Pattern = "weekly"
	PatternMonthly  Pattern = "monthly"
	PatternYearly   Pattern = "yearly"
	PatternCustom   Pattern = "custom"
)

// Recurrence bounds the validity of a recurring task.
// A zero End means the recurrence is unbounded.
type Recurrence struct {
	Pattern Pattern
	Start   time.Time
	End     time.Time
}

// Task represents a Tarefista task.
//
// A task is either one-time (Recurrence is nil, due only on its creation
// date) or recurring (Recurrence set, due on dates matching the pattern
// within [Start, End]). Completed is independent of visibility.
type Task struct {
	ID         string
	Text       string
	Completed  bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
	UserID     string
	TempUserID string
	Recurrence *Recurrence
}

// IsRecurring reports whether the task repeats.
func (t Task) IsRecurring() bool {
	return t.Recurrence != nil
}

// Identity scopes task and goal queries. Exactly one field is set.
type Identity struct {
	// UserID is the stable id of an authenticated user.
	UserID string

	// TempUserID is a locally generated anonymous id.
	TempUserID string
}

// IsZero reports whether no identity has been established.
func (id Identity) IsZero() bool {
	return id.UserID == "" && id.TempUserID == ""
}

// String returns whichever id is set, for display and logging.
func (id Identity) String() string {
	if id.UserID != "" {
		return id.UserID
	}
	return id.TempUserID
}

// TaskInput represents the input for creating or updating a task.
type TaskInput struct {
	Text       string
	Completed  bool
	Recurrence *Recurrence
	Identity   Identity
}

// Periodicity is the repetition frequency tag attached to a goal.
// It is used only for grouping and display; goals have no date filtering.
type Periodicity string

// Goal periodicities accepted by the backend.
const (
	PeriodicityDaily      Periodicity = "daily"
	PeriodicityWeekly     Periodicity = "weekly"
	PeriodicityMonthly    Periodicity = "monthly"
	PeriodicityQuarterly  Periodicity = "quarterly"
	PeriodicitySemiannual Periodicity = "semiannual"
	PeriodicityAnnual     Periodicity = "annual"
)

// Periodicities lists all goal periodicities in display order.
var Periodicities = []Periodicity{
	PeriodicityDaily,
	PeriodicityWeekly,
	PeriodicityMonthly,
	PeriodicityQuarterly,
	PeriodicitySemiannual,
	PeriodicityAnnual,
}

// Valid reports whether p is a known periodicity.
func (p Periodicity) Valid() bool {
	for _, known := range Periodicities {
		if p == known {
			return true
		}
	}
	return false
}

// Goal represents a periodic goal.
type Goal struct {
	ID          string
	Text        string
	Periodicity Periodicity
	UserID      string
}

// GoalInput represents the input for creating a goal.
type GoalInput struct {
	Text        string
	Periodicity Periodicity
	UserID      string
}

// Profile is the cached user profile returned by the backend on login.
type Profile struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoURL"`
}

// Credentials bundles the bearer token and profile returned by login.
type Credentials struct {
	Token string
	User  Profile
}

// taskWire is the task record as it travels over the API.
// Optional fields are omitted rather than sent as null, matching what the
// backend expects from clients.
type taskWire struct {
	ID                string `json:"id,omitempty"`
	Text              string `json:"text"`
	Completed         bool   `json:"completed"`
	CreatedAt         string `json:"createdAt,omitempty"`
	UpdatedAt         string `json:"updatedAt,omitempty"`
	UserID            string `json:"userId,omitempty"`
	TempUserID        string `json:"tempUserId,omitempty"`
	IsRecurring       bool   `json:"isRecurring"`
	RecurrencePattern string `json:"recurrencePattern,omitempty"`
	StartDate         string `json:"startDate,omitempty"`
	EndDate           string `json:"endDate,omitempty"`
}

// goalWire is the goal record as it travels over the API.
type goalWire struct {
	ID          string `json:"id,omitempty"`
	Text        string `json:"text"`
	Periodicity string `json:"periodicity"`
	UserID      string `json:"userId,omitempty"`
}

// parseWireTime decodes an RFC3339 timestamp, returning the zero time for
// empty or malformed values. The backend stores dates as ISO strings and
// older records are not always well formed; a malformed date is treated as
// "field absent" rather than an error.
func parseWireTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func formatWireTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// toTask converts a wire record to a Task.
func toTask(w taskWire) Task {
	t := Task{
		ID:         w.ID,
		Text:       w.Text,
		Completed:  w.Completed,
		CreatedAt:  parseWireTime(w.CreatedAt),
		UpdatedAt:  parseWireTime(w.UpdatedAt),
		UserID:     w.UserID,
		TempUserID: w.TempUserID,
	}

	if w.IsRecurring {
		t.Recurrence = &Recurrence{
			Pattern: Pattern(w.RecurrencePattern),
			Start:   parseWireTime(w.StartDate),
			End:     parseWireTime(w.EndDate),
		}
		// Records flagged recurring without a pattern predate the pattern
		// field; they were created when daily was the only option.
		if t.Recurrence.Pattern == "" {
			t.Recurrence.Pattern = PatternDaily
		}
	}

	return t
}

// taskPayload converts a TaskInput into a wire record for create and update
// calls. UpdatedAt is always refreshed; CreatedAt is set by the server on
// creation.
func taskPayload(in TaskInput, now time.Time) taskWire {
	w := taskWire{
		Text:       in.Text,
		Completed:  in.Completed,
		UpdatedAt:  formatWireTime(now),
		UserID:     in.Identity.UserID,
		TempUserID: in.Identity.TempUserID,
	}

	if in.Recurrence != nil {
		w.IsRecurring = true
		w.RecurrencePattern = string(in.Recurrence.Pattern)
		w.StartDate = formatWireTime(in.Recurrence.Start)
		w.EndDate = formatWireTime(in.Recurrence.End)
	}

	return w
}

// toGoal converts a wire record to a Goal.
func toGoal(w goalWire) Goal {
	return Goal{
		ID:          w.ID,
		Text:        w.Text,
		Periodicity: Periodicity(w.Periodicity),
		UserID:      w.UserID,
	}
}

// decodeProfile tolerates both {user: {...}} and a bare profile object.
func decodeProfile(raw json.RawMessage) Profile {
	var p Profile
	if len(raw) == 0 {
		return p
	}
	_ = json.Unmarshal(raw, &p)
	return p
}
