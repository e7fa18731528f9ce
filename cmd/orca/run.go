package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/parthasarathygopu/orca/internal/engine"
	"github.com/parthasarathygopu/orca/internal/models"

	"github.com/spf13/cobra"
)

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a case or a suite once and print the execution request",
	}
	cmd.AddCommand(runTarget("case", models.HistoryTypeTestCase))
	cmd.AddCommand(runTarget("suite", models.HistoryTypeTestSuite))
	return cmd
}

func runTarget(name string, historyType models.HistoryType) *cobra.Command {
	cmd := &cobra.Command{
		Use:   name + " <id>",
		Short: "Run a " + name,
		Long:  fmt.Sprintf(`orca run %s [--dry-run] [--triggered-by=name] <id>`, name),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			supervisor, err := a.supervisor(cmd.Context(), nil)
			if err != nil {
				return err
			}

			dryRun, _ := cmd.Flags().GetBool("dry-run")
			triggeredBy, _ := cmd.Flags().GetString("triggered-by")
			trigger := engine.Trigger{DryRun: dryRun, TriggeredBy: triggeredBy, Description: "cli"}

			var er *models.ExecutionRequest
			if historyType == models.HistoryTypeTestSuite {
				er, err = supervisor.RunSuite(cmd.Context(), args[0], trigger)
			} else {
				er, err = supervisor.RunCase(cmd.Context(), args[0], trigger)
			}
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(er); err != nil {
				return err
			}
			if er.Status != models.ExecutionCompleted {
				return fmt.Errorf("run %d finished %s", er.ID, er.Status)
			}
			return nil
		},
	}
	cmd.Flags().Bool("dry-run", false, "validate actions without opening a browser")
	cmd.Flags().String("triggered-by", os.Getenv("USER"), "who triggered the run")
	return cmd
}
