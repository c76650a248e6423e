package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pylens/pylens/internal/metrics"
	"github.com/pylens/pylens/internal/ui"
)

var metricsJSON bool

var metricsCmd = &cobra.Command{
	Use:   "metrics <file>",
	Short: "Compute quality metrics for a Python file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := os.ReadFile(args[0])
		if err != nil {
			PrintError(fmt.Sprintf("Cannot read %s.", args[0]), err)
			return err
		}

		rep := metrics.Compute(cmd.Context(), src)

		if metricsJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(rep)
		}

		if rep.Err != nil {
			fmt.Printf("%s %s\n", ui.StyleError.Render("✘"), rep.Err.Error())
			return nil
		}

		fmt.Println(ui.StyleHeader.Render("Metrics: " + args[0]))
		fmt.Printf("  total complexity      %d\n", rep.TotalComplexity)
		fmt.Printf("  functions             %d (avg complexity %.2f)\n", rep.FunctionCount, rep.AvgFunctionComplexity)
		fmt.Printf("  lines                 %d total, %d code, %d blank, %d comment\n",
			rep.TotalLines, rep.CodeLines, rep.BlankLines, rep.CommentLines)
		fmt.Printf("  comment ratio         %.3f\n", rep.CommentRatio)
		fmt.Printf("  maintainability index %.1f\n", rep.MaintainabilityIndex)
		for _, fc := range rep.FunctionComplexities {
			style := ui.StyleSubtle
			if fc.Complexity > 10 {
				style = ui.StyleWarning
			}
			fmt.Printf("    %s\n", style.Render(fmt.Sprintf("%s (line %d): %d", fc.Name, fc.Line, fc.Complexity)))
		}
		return nil
	},
}

func init() {
	metricsCmd.Flags().BoolVar(&metricsJSON, "json", false, "print the report as JSON")
	rootCmd.AddCommand(metricsCmd)
}
