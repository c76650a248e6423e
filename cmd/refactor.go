package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pylens/pylens/internal/refactor"
	"github.com/pylens/pylens/internal/ui"
	"github.com/pylens/pylens/internal/workspace"
)

var (
	refactorApply  bool
	refactorOutput string
)

var refactorCmd = &cobra.Command{
	Use:   "refactor <suggestion-id>",
	Short: "Generate a candidate rewrite for a suggestion",
	Long: `Refactor asks the configured LLM backend for a rewritten version of the
file a suggestion points at. The candidate is validated by re-parsing before
it can be applied; applying backs up the original file first.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		ws, err := workspace.Open(true)
		if err != nil {
			HandleFatalError("Could not set up the refactoring backend.", err)
		}
		defer func() { _ = ws.Close() }()

		candidate, err := ws.Refactor.GenerateCode(cmd.Context(), id)
		if err != nil {
			if errors.Is(err, refactor.ErrNoOracle) {
				PrintError("No LLM backend configured. Set llm.provider or an API key.", err)
			} else {
				PrintError("Code generation failed.", err)
			}
			return err
		}

		if !ws.Refactor.Validate(cmd.Context(), candidate) {
			PrintError("The generated candidate does not parse; not applying.", nil)
			fmt.Println(ui.StyleCodeBlock.Render(candidate))
			return fmt.Errorf("candidate for suggestion %d does not parse", id)
		}

		if refactorOutput != "" {
			if err := ws.Files.Write(refactorOutput, []byte(candidate)); err != nil {
				PrintError("Could not write the candidate file.", err)
				return err
			}
			fmt.Printf("%s candidate written to %s\n", ui.StyleSuccess.Render("✔"), refactorOutput)
		}

		if refactorApply {
			backup, err := ws.Refactor.Apply(cmd.Context(), id, candidate)
			if err != nil {
				PrintError("Applying the candidate failed.", err)
				return err
			}
			fmt.Printf("%s applied suggestion %d (backup at %s)\n", ui.StyleSuccess.Render("✔"), id, backup)
			return nil
		}

		if refactorOutput == "" {
			fmt.Println(ui.StyleCodeBlock.Render(candidate))
			fmt.Println(ui.StyleSubtle.Render("re-run with --apply to write this to the file"))
		}
		return nil
	},
}

func init() {
	refactorCmd.Flags().BoolVar(&refactorApply, "apply", false, "write the candidate over the original file (with backup)")
	refactorCmd.Flags().StringVarP(&refactorOutput, "output", "o", "", "write the candidate to this path instead of stdout")
	rootCmd.AddCommand(refactorCmd)
}
