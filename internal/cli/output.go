package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/claude/ironcycle/internal/models"
	"github.com/claude/ironcycle/internal/progression"
	"github.com/claude/ironcycle/internal/workout"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func printWeeks(out io.Writer, weeks []progression.WeekParams) error {
	tw := newTable(out)
	fmt.Fprintln(tw, "WEEK\tBLOCK\tINTENSITY\tSETS x REPS\t")
	for _, wp := range weeks {
		note := ""
		if wp.IsDeload {
			note = "deload"
		}
		fmt.Fprintf(tw, "%d\t%d.%d\t%.1f%%\t%d x %d\t%s\n",
			wp.Week, wp.Block, wp.WeekInBlock, wp.Intensity*100, wp.Sets, wp.TargetReps, note)
	}
	return tw.Flush()
}

func printStatus(out io.Writer, w *workout.Workout, wp progression.WeekParams) error {
	fmt.Fprintf(out, "%s (%s)\n", w.Name, w.ID)
	fmt.Fprintf(out, "Status: %s, week %d of %d (block %d", w.Status, w.CurrentWeek, w.TotalWeeks, wp.Block)
	if wp.IsDeload {
		fmt.Fprint(out, ", deload")
	}
	fmt.Fprintln(out, ")")
	fmt.Fprintf(out, "Completed days this week: %s\n\n", joinInts(w.CompletedDays))

	tw := newTable(out)
	fmt.Fprintln(tw, "DAY\tEXERCISE\tPROGRESSION\tSTATE\t")
	for _, ex := range w.Exercises {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t\n", ex.AssignedDay, ex.Name, ex.Progression.Kind(), describe(ex.Progression))
	}
	return tw.Flush()
}

func printPlan(out io.Writer, plan *workout.DayPlan) error {
	fmt.Fprintf(out, "Week %d, day %d: %.1f%%, %d x %d", plan.Week.Week, plan.Day, plan.Week.Intensity*100, plan.Week.Sets, plan.Week.TargetReps)
	if plan.Week.IsDeload {
		fmt.Fprint(out, " (deload)")
	}
	if plan.Completed {
		fmt.Fprint(out, " [completed]")
	}
	fmt.Fprintln(out)

	tw := newTable(out)
	for _, ex := range plan.Exercises {
		fmt.Fprintf(tw, "%s\t", ex.ExerciseName)
		sets := make([]string, 0, len(ex.Sets))
		for _, s := range ex.Sets {
			set := fmt.Sprintf("%s x %d", s.Weight, s.Reps)
			if s.Amrap {
				set += "+"
			}
			sets = append(sets, set)
		}
		fmt.Fprintf(tw, "%s\t\n", strings.Join(sets, ", "))
	}
	return tw.Flush()
}

func printDayResult(out io.Writer, r *workout.CompleteDayResult) {
	fmt.Fprintf(out, "Day %d complete: %d exercises\n", r.Day, r.ExercisesCompleted)
	for _, c := range r.ProgressionChanges {
		fmt.Fprintf(out, "  %s: %s (%s)\n", c.ExerciseName, c.Change, c.Result)
	}
	switch {
	case r.ProgramComplete:
		fmt.Fprintln(out, "Program complete.")
	case r.WeekProgressed:
		fmt.Fprintf(out, "Advanced to week %d", r.NewCurrentWeek)
		if r.IsDeloadWeek {
			fmt.Fprint(out, " (deload)")
		}
		fmt.Fprintln(out)
	}
}

func printHistory(out io.Writer, rows []models.ProgressionLogRow) error {
	if len(rows) == 0 {
		fmt.Fprintln(out, "No progression changes yet.")
		return nil
	}
	tw := newTable(out)
	fmt.Fprintln(tw, "WEEK\tDAY\tEXERCISE\tRESULT\tCHANGE\t")
	for _, r := range rows {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t\n", r.Week, r.Day, r.ExerciseName, r.Result, r.Change)
	}
	return tw.Flush()
}

// describe summarizes a strategy's current state in one line.
func describe(state progression.State) string {
	switch s := state.Strategy.(type) {
	case *progression.Linear:
		d := "TM " + s.TrainingMax.String()
		if s.UseAmrap {
			d += ", AMRAP"
		}
		return d
	case *progression.RepsPerSet:
		d := fmt.Sprintf("%s, %d sets of %d-%d", s.CurrentWeight, s.CurrentSets, s.RepRange.Min, s.RepRange.Max)
		if s.IsUnilateral {
			d += " per side"
		}
		return d
	case *progression.MinimalSets:
		return fmt.Sprintf("%s, %d sets for %d total reps", s.CurrentWeight, s.CurrentSets, s.TargetTotalReps)
	default:
		return "-"
	}
}

func joinInts(xs []int) string {
	if len(xs) == 0 {
		return "none"
	}
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = fmt.Sprint(x)
	}
	return strings.Join(parts, ", ")
}
