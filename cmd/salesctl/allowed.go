package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/straye-as/salesflow-api/internal/domain"
	"github.com/straye-as/salesflow-api/internal/lifecycle"
	"github.com/straye-as/salesflow-api/internal/mapper"
)

var allowedCmd = &cobra.Command{
	Use:   "allowed [stage]",
	Short: "Show legal next stages",
	Long: `Show the stages a sale may move to from the given stage. Without an
argument the whole transition table is printed. No database is needed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAllowed,
}

func runAllowed(cmd *cobra.Command, args []string) error {
	table := lifecycle.DefaultTransitionTable()

	out := mapper.ToTransitionTableDTO(table)
	if len(args) == 1 {
		stage := domain.SaleStage(args[0])
		if !table.IsKnown(stage) {
			return fmt.Errorf("%w: %s", lifecycle.ErrUnknownStage, stage)
		}
		out = []domain.StageTransitionsDTO{mapper.ToStageTransitionsDTO(stage, table.AllowedNext(stage))}
	}

	if jsonOutput {
		return printJSON(out)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FROM\tTO\tKIND")
	for _, st := range out {
		if len(st.Allowed) == 0 {
			fmt.Fprintf(w, "%s\t-\tterminal\n", st.Stage)
			continue
		}
		for _, a := range st.Allowed {
			fmt.Fprintf(w, "%s\t%s\t%s\n", st.Stage, a.Stage, a.Kind)
		}
	}
	return w.Flush()
}
