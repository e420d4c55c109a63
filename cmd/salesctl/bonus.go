package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var bonusCmd = &cobra.Command{
	Use:   "bonus <advisor-id> <period-id>",
	Short: "Evaluate an advisor's bonus for a period",
	Args:  cobra.ExactArgs(2),
	RunE:  runBonus,
}

func runBonus(cmd *cobra.Command, args []string) error {
	ctx := operatorContext(cmd.Context())
	a, log, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if err := a.LoadTiers(ctx); err != nil {
		return err
	}

	result, err := a.Incentives.EvaluateBonus(ctx, args[0], args[1])
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(result)
	}

	fmt.Printf("advisor:  %s\n", result.AdvisorID)
	fmt.Printf("period:   %s\n", result.PeriodID)
	fmt.Printf("modality: %s\n", result.Modality)
	fmt.Printf("score:    %s%%\n", result.ScorePct.StringFixed(2))
	tier := result.TierLabel
	if tier == "" {
		tier = "-"
	}
	fmt.Printf("bonus:    %s (%s)\n", result.BonoActual.StringFixed(2), tier)
	if result.ActivityGateMet != nil && !*result.ActivityGateMet {
		fmt.Println("activity: gate not met")
	}
	if result.NextTier != nil {
		fmt.Printf("next:     %s at %s%%, %s to go for %s\n",
			result.NextTier.Label,
			result.NextTier.ThresholdPct.StringFixed(2),
			result.NextTier.FaltaUSD.StringFixed(2),
			result.NextTier.BonusAmount.StringFixed(2))
	} else {
		fmt.Println("next:     top tier reached")
	}
	return nil
}
