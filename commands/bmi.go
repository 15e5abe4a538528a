package commands

import (
	"fmt"

	"github.com/penwyp/go-health-monitor/internal/application/tracker"
	"github.com/penwyp/go-health-monitor/internal/presentation/formatter"
	"github.com/penwyp/go-health-monitor/internal/util"
	"github.com/spf13/cobra"
)

var (
	bmiHeight float64
	bmiOutput string
)

var bmiCmd = &cobra.Command{
	Use:   "bmi",
	Short: "Show the body-mass index for the latest weight",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTracker(func(t *tracker.Tracker) error {
			report, err := t.BMI(commandContext(cmd), bmiHeight)
			if err != nil {
				return err
			}
			return render(cmd, bmiOutput, formatter.MessageReport("Body-mass index", report,
				fmt.Sprintf("Weight: %s", util.FormatWeight(report.WeightKg, "kg")),
				fmt.Sprintf("Height: %.0f cm", report.HeightCm),
				fmt.Sprintf("BMI: %.1f", report.BMI),
				fmt.Sprintf("Status: %s", report.Status),
			))
		})
	},
}

func init() {
	rootCmd.AddCommand(bmiCmd)

	bmiCmd.Flags().Float64Var(&bmiHeight, "height", 0,
		"Height in cm; saved before computing")
	bmiCmd.Flags().StringVarP(&bmiOutput, "output", "o", formatter.FormatTable,
		"Output format (table, json)")
}
