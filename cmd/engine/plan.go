package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"daymark-engine/internal/assign"
	"daymark-engine/internal/domain"
	"daymark-engine/internal/timeshift"
)

var (
	planDate string
	planJSON bool
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Print a day's tasks shifted around its busy time",
	RunE:  runPlan,
}

func init() {
	planCmd.Flags().StringVar(&planDate, "date", "", "Day to plan as YYYY-MM-DD (defaults to today)")
	planCmd.Flags().BoolVar(&planJSON, "json", false, "Print the plan as JSON")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	dataDir, err := resolveDataDir()
	if err != nil {
		return err
	}
	cfg, _, err := loadConfig(dataDir)
	if err != nil {
		return err
	}

	date := planDate
	if date == "" {
		date = assign.Today(time.Now(), cfg.Location())
	}
	if err := assign.CheckDate(date); err != nil {
		return err
	}
	w, err := cfg.Window(date)
	if err != nil {
		return err
	}

	db, _, err := openStore(ctx, dataDir)
	if err != nil {
		return err
	}
	defer db.Close()

	tasks, err := db.ListTasks(ctx, cfg.App.UserID, date)
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}
	busy, err := db.BusySlots(ctx, cfg.App.UserID, date)
	if err != nil {
		return fmt.Errorf("busy slots: %w", err)
	}
	plan := timeshift.NewCache().Schedule(tasks, busy, w, cfg.Schedule.AutoShift)

	out := cmd.OutOrStdout()
	if planJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(plan)
	}

	loc := cfg.Location()
	fmt.Fprintf(out, "%s  work=%s-%s  busy=%d  autoShift=%t\n\n", date, cfg.Schedule.WorkStart, cfg.Schedule.WorkEnd, len(busy), cfg.Schedule.AutoShift)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "START\tEND\tMIN\tSTATUS\tTITLE\tNOTE")
	for _, t := range plan.Tasks {
		note := ""
		if t.WasAutoShifted && t.OriginalStartTime != nil {
			note = "moved from " + t.OriginalStartTime.In(loc).Format("15:04")
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n", clock(t.StartTime, loc), clock(t.EndTime, loc), t.Duration, t.Status, t.Title, note)
	}
	_ = tw.Flush()

	fmt.Fprintln(out, "\nfree:")
	for _, s := range plan.Slots {
		fmt.Fprintf(out, "  %s\n", slotLine(s, loc))
	}
	return nil
}

func clock(t *time.Time, loc *time.Location) string {
	if t == nil {
		return "--:--"
	}
	return t.In(loc).Format("15:04")
}

func slotLine(s domain.TimeSlot, loc *time.Location) string {
	return fmt.Sprintf("%s-%s", s.Start.In(loc).Format("15:04"), s.End.In(loc).Format("15:04"))
}
