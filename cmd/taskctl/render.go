package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"notes/internal/client"
	"notes/internal/report"
)

func renderTasks(out io.Writer, state client.State) {
	if len(state.Tasks) == 0 {
		fmt.Fprintln(out, "No tasks added yet!")
		return
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tDESCRIPTION\tIMPORTANCE\tSTATUS\tDUE\t")
	for _, t := range state.Tasks {
		due := t.DueDate.String()
		if t.Overdue(state.FetchedAt) {
			due += " (overdue)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t\n",
			t.ID, t.Title, t.Description, t.Importance, t.Status, due)
	}
	tw.Flush()
}

func renderStats(out io.Writer, s report.Stats) {
	fmt.Fprintf(out, "Total Tasks: %d\n", s.Total)
	fmt.Fprintf(out, "Pending: %d\n", s.Pending)
	fmt.Fprintf(out, "Completed: %d\n", s.Completed)
	fmt.Fprintf(out, "Important: %d\n", s.Important)
	fmt.Fprintf(out, "Overdue: %d\n", s.Overdue)
}
