// Package observability provides metrics collectors and formatted CLI output.
package observability

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/jonathan/portal-planner/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 10
)

// Printer handles formatted output for the CLI
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintResult outputs a summary of an aggregation result.
func (p *Printer) PrintResult(result *types.Result) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Student:   %s\n", result.User))
	sb.WriteString(fmt.Sprintf("Semester:  %s\n", result.CurrentSemester))
	sb.WriteString(fmt.Sprintf("Catalog:   %d courses\n", result.CurriculumCourses.Len()))
	sb.WriteString(fmt.Sprintf("Completed: %d courses, %d credits\n", len(result.CompletedCourses), completedCredits(result.CompletedCourses)))
	sb.WriteString(fmt.Sprintf("Pre-registered: %d courses\n", len(result.PreregisteredCourses)))
	sb.WriteString(fmt.Sprintf("Semesters: %d", len(result.SemesterClassRoutine.Order)))

	p.printBox("AGGREGATION RESULT", sb.String())
	p.PrintUnlocked(result)
}

// PrintUnlocked lists the courses the student may register for, retakes first.
func (p *Printer) PrintUnlocked(result *types.Result) {
	if result == nil {
		return
	}

	order := result.UnlockedOrder
	if len(order) == 0 {
		for code := range result.UnlockedCourses {
			order = append(order, code)
		}
		slices.Sort(order)
	}

	if len(order) == 0 {
		p.printBox("UNLOCKED COURSES", "No courses available for registration")
		return
	}

	var sb strings.Builder
	count := min(len(order), maxItemsToShow)
	for i := 0; i < count; i++ {
		code := order[i]
		course := result.UnlockedCourses[code]
		sb.WriteString(fmt.Sprintf("  • %s %s (%d cr)", code, course.Name, course.Credit))
		if course.Retake {
			sb.WriteString(" [retake]")
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}
	if len(order) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n  ... and %d more", len(order)-maxItemsToShow))
	}

	p.printBox(fmt.Sprintf("UNLOCKED COURSES (%d)", len(order)), sb.String())
}

func completedCredits(completed map[string]types.LedgerEntry) int {
	total := 0
	for _, c := range completed {
		total += c.Credit
	}
	return total
}
