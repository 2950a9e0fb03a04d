package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/claude/ironcycle/internal/ingest/sessionlog"
	"github.com/claude/ironcycle/internal/tracker"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newWeeksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "weeks",
		Short: "Print the program's week table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeDB, err := openService(cmd)
			if err != nil {
				return err
			}
			defer closeDB()
			return printWeeks(cmd.OutOrStdout(), svc.Table().All())
		},
	}
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init <program.yaml>",
		Short: "Create a workout from a program file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading program file: %w", err)
			}
			var spec tracker.WorkoutSpec
			if err := yaml.Unmarshal(data, &spec); err != nil {
				return fmt.Errorf("parsing program file: %w", err)
			}

			svc, closeDB, err := openService(cmd)
			if err != nil {
				return err
			}
			defer closeDB()

			w, err := svc.CreateWorkout(cmd.Context(), localUserID, spec)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created workout %q (%s) with %d exercises\n", w.Name, w.ID, len(w.Exercises))
			return nil
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current week and each exercise's progression state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeDB, err := openService(cmd)
			if err != nil {
				return err
			}
			defer closeDB()

			id, err := workoutID(cmd, svc)
			if err != nil {
				return err
			}
			w, err := svc.GetWorkout(cmd.Context(), id)
			if err != nil {
				return err
			}
			wp, err := svc.WeekParameters(w.CurrentWeek)
			if err != nil {
				return err
			}
			return printStatus(cmd.OutOrStdout(), w, wp)
		},
	}
}

func newPlanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plan <day>",
		Short: "Print the prescribed sets for a day of the current week",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid day %q", args[0])
			}
			svc, closeDB, err := openService(cmd)
			if err != nil {
				return err
			}
			defer closeDB()

			id, err := workoutID(cmd, svc)
			if err != nil {
				return err
			}
			plan, err := svc.PlanDay(cmd.Context(), id, day)
			if err != nil {
				return err
			}
			return printPlan(cmd.OutOrStdout(), plan)
		},
	}
}

func newCompleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "complete <day> <session.log>",
		Short: "Complete a training day from a session log (\"-\" reads stdin)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid day %q", args[0])
			}
			var in io.Reader = cmd.InOrStdin()
			if args[1] != "-" {
				f, err := os.Open(args[1])
				if err != nil {
					return fmt.Errorf("opening session log: %w", err)
				}
				defer f.Close()
				in = f
			}

			svc, closeDB, err := openService(cmd)
			if err != nil {
				return err
			}
			defer closeDB()

			id, err := workoutID(cmd, svc)
			if err != nil {
				return err
			}
			result, err := sessionlog.NewProvider(svc, logger(cmd)).Ingest(cmd.Context(), in, id, day)
			if err != nil {
				return err
			}
			printDayResult(cmd.OutOrStdout(), result.Day)
			return nil
		},
	}
}

func newProgressWeekCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "progress-week",
		Short: "Advance to the next week without completing the remaining days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeDB, err := openService(cmd)
			if err != nil {
				return err
			}
			defer closeDB()

			id, err := workoutID(cmd, svc)
			if err != nil {
				return err
			}
			result, err := svc.ProgressWeek(cmd.Context(), id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if result.IsProgramComplete {
				fmt.Fprintln(out, "Program complete.")
				return nil
			}
			fmt.Fprintf(out, "Week %d -> %d (block %d)", result.PreviousWeek, result.NewWeek, result.NewBlock)
			if result.IsDeloadWeek {
				fmt.Fprint(out, ", deload")
			}
			fmt.Fprintln(out)
			return nil
		},
	}
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent progression changes, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			svc, closeDB, err := openService(cmd)
			if err != nil {
				return err
			}
			defer closeDB()

			id, err := workoutID(cmd, svc)
			if err != nil {
				return err
			}
			rows, err := svc.History(cmd.Context(), id, limit)
			if err != nil {
				return err
			}
			return printHistory(cmd.OutOrStdout(), rows)
		},
	}
	cmd.Flags().Int("limit", tracker.DefaultHistoryLimit, "Maximum number of changes to list")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "ironcyclectl", Version)
		},
	}
}
