package commands

import (
	"fmt"

	"github.com/penwyp/go-health-monitor/internal/application/tracker"
	"github.com/penwyp/go-health-monitor/internal/core/queue"
	"github.com/penwyp/go-health-monitor/internal/presentation/formatter"
	"github.com/spf13/cobra"
)

var queueOutput string

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Inspect and replay writes queued while the service was unreachable",
}

var queueListCmd = &cobra.Command{
	Use:   "list",
	Short: "List queued writes, oldest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTracker(func(t *tracker.Tracker) error {
			actions, err := t.QueuedActions()
			if err != nil {
				return err
			}
			return render(cmd, queueOutput, formatter.QueueReport(actions, t.Store().QueueCapacity()))
		})
	},
}

var queueReplayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Send queued writes to the service once",
	Long: `Replays queued writes oldest first. Replay stops while the service is
unreachable. A write the service rejects is handled by --policy: retry keeps it
at the head and stops, drop discards it, requeue moves it to the tail.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTracker(func(t *tracker.Tracker) error {
			report, err := t.Sync(commandContext(cmd), "")
			if err != nil {
				return err
			}
			return render(cmd, queueOutput, replayReport(report))
		})
	},
}

func init() {
	rootCmd.AddCommand(queueCmd)
	queueCmd.AddCommand(queueListCmd, queueReplayCmd)

	queueCmd.PersistentFlags().StringVarP(&queueOutput, "output", "o", formatter.FormatTable,
		"Output format (table, json, csv)")
}

type replayView struct {
	Settled   int           `json:"settled"`
	Dropped   int           `json:"dropped"`
	Requeued  int           `json:"requeued"`
	Remaining int           `json:"remaining"`
	Offline   bool          `json:"offline"`
	Cancelled bool          `json:"cancelled"`
	Failure   string        `json:"failure,omitempty"`
	Outcomes  []outcomeView `json:"outcomes"`
}

type outcomeView struct {
	ActionID string `json:"actionId"`
	Name     string `json:"name"`
	State    string `json:"state"`
	Error    string `json:"error,omitempty"`
}

// replayReport renders one replay as a table of outcomes
func replayReport(report queue.Report) *formatter.Report {
	view := replayView{
		Settled:   report.Settled,
		Dropped:   report.Dropped,
		Requeued:  report.Requeued,
		Remaining: report.Remaining,
		Offline:   report.Offline,
		Cancelled: report.Cancelled,
		Outcomes:  []outcomeView{},
	}
	if report.Failure != nil {
		view.Failure = report.Failure.Error()
	}

	r := &formatter.Report{
		Title:   "Replay",
		Headers: []string{"Action ID", "Name", "State", "Error"},
	}
	for _, o := range report.Outcomes {
		errText := ""
		if o.Err != nil {
			errText = o.Err.Error()
		}
		view.Outcomes = append(view.Outcomes, outcomeView{
			ActionID: o.Action.ActionID,
			Name:     o.Action.Name,
			State:    o.State.String(),
			Error:    errText,
		})
		r.Rows = append(r.Rows, []string{o.Action.ActionID, o.Action.Name, o.State.String(), errText})
	}

	r.Summary = []string{fmt.Sprintf("Settled %d, dropped %d, requeued %d, remaining %d",
		report.Settled, report.Dropped, report.Requeued, report.Remaining)}
	if report.Offline {
		r.Summary = append(r.Summary, "Service unreachable; remaining writes stay queued")
	}
	if report.Cancelled {
		r.Summary = append(r.Summary, "Replay interrupted; remaining writes stay queued")
	}
	if len(report.Outcomes) == 0 {
		r.Headers = nil
		r.Summary = []string{"Nothing to replay"}
	}
	r.Data = view
	return r
}
