package main

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/straye-as/salesflow-api/internal/domain"
	"github.com/straye-as/salesflow-api/internal/lifecycle"
)

var transitionNotes string

var transitionCmd = &cobra.Command{
	Use:   "transition <sale-id> <stage>",
	Short: "Move a sale to a new lifecycle stage",
	Long: `Request a lifecycle transition for a sale. Re-running a transition the
sale already made is a no-op and reports replayed=true.`,
	Args: cobra.ExactArgs(2),
	RunE: runTransition,
}

func init() {
	transitionCmd.Flags().StringVarP(&transitionNotes, "notes", "n", "", "Notes recorded in stage history")
}

func runTransition(cmd *cobra.Command, args []string) error {
	saleID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid sale ID %q: %w", args[0], err)
	}
	target := domain.SaleStage(args[1])

	ctx := operatorContext(cmd.Context())
	a, log, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	result, err := a.Lifecycle.RequestTransition(ctx, saleID, target, transitionNotes)
	if err != nil && !(errors.Is(err, lifecycle.ErrSideEffectFailed) && result != nil) {
		var invalid *lifecycle.InvalidTransitionError
		if errors.As(err, &invalid) && jsonOutput {
			_ = printJSON(map[string]interface{}{"error": invalid.Error(), "allowed": invalid.Allowed})
		}
		return err
	}

	if jsonOutput {
		return printJSON(result)
	}

	fmt.Printf("%s: %s -> %s (version %d)\n", result.SaleID, result.PreviousState, result.NewState, result.Version)
	if result.Replayed {
		fmt.Println("already applied, nothing changed")
	}
	if result.TicketCreated != nil {
		if *result.TicketCreated {
			fmt.Printf("training ticket: %s\n", result.TicketID)
		} else {
			fmt.Println("training ticket: not created")
		}
	}
	if result.Warning != "" {
		fmt.Printf("warning: %s\n", result.Warning)
	}
	return nil
}
