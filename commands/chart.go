package commands

import (
	"github.com/penwyp/go-health-monitor/internal/core/health"
	"github.com/penwyp/go-health-monitor/internal/core/model"
	"github.com/penwyp/go-health-monitor/internal/presentation/formatter"
	"github.com/spf13/cobra"
)

var (
	chartDays   int
	chartOutput string
	chartToday  float64
	chartUnit   string
)

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Show a daily chart of intake, fasting or weight",
	Long: `Builds one point per day for the last --days days, ending today.

Days without records are shown as gaps. Weight days after the first weigh-in
carry the last known value, shown in parentheses.`,
}

var chartIntakeCmd = &cobra.Command{
	Use:   "intake",
	Short: "Daily water intake",
	Args:  cobra.NoArgs,
	RunE:  runChartIntake,
}

var chartFastingCmd = &cobra.Command{
	Use:   "fasting",
	Short: "Daily fasting hours",
	Args:  cobra.NoArgs,
	RunE:  runChartFasting,
}

var chartWeightCmd = &cobra.Command{
	Use:   "weight",
	Short: "Daily body weight",
	Args:  cobra.NoArgs,
	RunE:  runChartWeight,
}

func init() {
	rootCmd.AddCommand(chartCmd)
	chartCmd.AddCommand(chartIntakeCmd, chartFastingCmd, chartWeightCmd)

	chartCmd.PersistentFlags().IntVar(&chartDays, "days", 0,
		"Number of days to show (0 = 122)")
	addOutputFlag(chartIntakeCmd, &chartOutput)
	addOutputFlag(chartFastingCmd, &chartOutput)
	addOutputFlag(chartWeightCmd, &chartOutput)

	chartIntakeCmd.Flags().Float64Var(&chartToday, "today", 0,
		"Show today's intake as this many ml instead of the stored value")
	chartWeightCmd.Flags().StringVar(&chartUnit, "unit", health.UnitKilogram,
		"Weight unit (kg, lb)")
}

func runChartIntake(cmd *cobra.Command, args []string) error {
	t, err := newTracker()
	if err != nil {
		return err
	}
	defer t.Close()

	var today *model.IntakeRecord
	if chartToday > 0 {
		if today, err = t.TodayIntake(chartToday); err != nil {
			return err
		}
	}

	series, err := t.IntakeChart(chartDays, today)
	if err != nil {
		return err
	}
	return render(cmd, chartOutput, formatter.IntakeReport(series))
}

func runChartFasting(cmd *cobra.Command, args []string) error {
	t, err := newTracker()
	if err != nil {
		return err
	}
	defer t.Close()

	series, err := t.FastingChart(chartDays)
	if err != nil {
		return err
	}
	return render(cmd, chartOutput, formatter.FastingReport(series))
}

func runChartWeight(cmd *cobra.Command, args []string) error {
	unit, err := health.NormalizeUnit(chartUnit)
	if err != nil {
		return err
	}

	t, err := newTracker()
	if err != nil {
		return err
	}
	defer t.Close()

	series, err := t.WeightChart(chartDays)
	if err != nil {
		return err
	}
	return render(cmd, chartOutput, formatter.WeightReport(series, unit))
}
