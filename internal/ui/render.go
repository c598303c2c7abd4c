package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/tarefista/tarefista/internal/api"
)

const displayDateLayout = "Mon, 02 Jan 2006"

// TaskList renders the visible tasks for a date as a numbered checklist.
func TaskList(tasks []api.Task, date time.Time) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Tasks"))
	b.WriteString(" ")
	b.WriteString(dateStyle.Render(date.Format(displayDateLayout)))
	b.WriteString("\n")

	if len(tasks) == 0 {
		b.WriteString(emptyStyle.Render("No tasks for this day."))
		b.WriteString("\n")
		return b.String()
	}

	for i, t := range tasks {
		b.WriteString(taskLine(i+1, t))
		b.WriteString("\n")
	}

	return b.String()
}

func taskLine(n int, t api.Task) string {
	box := "[ ]"
	style := pendingStyle
	if t.Completed {
		box = "[x]"
		style = completedStyle
	}

	line := fmt.Sprintf("%3d. %s %s", n, box, style.Render(t.Text))
	if t.IsRecurring() {
		line += " " + recurringMark.Render("↻")
	}
	return line
}

// GoalList renders goals grouped by periodicity, in display order.
func GoalList(goals []api.Goal) string {
	if len(goals) == 0 {
		return emptyStyle.Render("No goals yet.") + "\n"
	}

	grouped := make(map[api.Periodicity][]api.Goal)
	for _, g := range goals {
		grouped[g.Periodicity] = append(grouped[g.Periodicity], g)
	}

	var b strings.Builder
	for _, p := range api.Periodicities {
		group := grouped[p]
		if len(group) == 0 {
			continue
		}

		b.WriteString(periodicityStyle(p).Render(strings.ToUpper(string(p))))
		b.WriteString("\n")
		for _, g := range group {
			b.WriteString("  • ")
			b.WriteString(g.Text)
			b.WriteString("\n")
		}
	}

	// Unknown periodicities still show, at the end.
	for p, group := range grouped {
		if p.Valid() {
			continue
		}
		b.WriteString(periodicityDefault.Render(strings.ToUpper(string(p))))
		b.WriteString("\n")
		for _, g := range group {
			b.WriteString("  • ")
			b.WriteString(g.Text)
			b.WriteString("\n")
		}
	}

	return b.String()
}

func periodicityStyle(p api.Periodicity) lipgloss.Style {
	if s, ok := periodicityStyles[string(p)]; ok {
		return s
	}
	return periodicityDefault
}

// Phrase renders the motivational phrase of the day.
func Phrase(text string) string {
	return phraseStyle.Render("“"+text+"”") + "\n"
}

// Offline renders the stale-data banner shown when the task list comes from
// the local mirror instead of the backend.
func Offline(fetchedAt time.Time) string {
	if fetchedAt.IsZero() {
		return offlineStyle.Render("offline, no cached tasks") + "\n"
	}
	return offlineStyle.Render("offline, showing tasks from "+fetchedAt.Local().Format("2006-01-02 15:04")) + "\n"
}

// Errorf renders an error line.
func Errorf(format string, args ...interface{}) string {
	return errorStyle.Render(fmt.Sprintf(format, args...)) + "\n"
}
