package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pylens/pylens/internal/patterns"
	"github.com/pylens/pylens/internal/pyast"
	"github.com/pylens/pylens/internal/ui"
)

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "Inspect the pattern catalog and detect patterns in files",
}

var patternsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the patterns the detector knows",
	Run: func(cmd *cobra.Command, args []string) {
		catalog := patterns.NewCatalog()
		for _, name := range catalog.Names() {
			info, _ := catalog.Get(name)
			fmt.Printf("%s  %s\n", ui.StylePrimary.Render(fmt.Sprintf("%-15s", name)), info.Description)
		}
	},
}

var patternsShowCmd = &cobra.Command{
	Use:   "show <pattern>",
	Short: "Show catalog details for one pattern",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog := patterns.NewCatalog()
		info, ok := catalog.Get(args[0])
		if !ok {
			PrintError(fmt.Sprintf("Unknown pattern %q. Try 'pylens patterns list'.", args[0]), nil)
			return fmt.Errorf("unknown pattern %q", args[0])
		}

		fmt.Println(ui.StyleHeader.Render(info.Name))
		fmt.Println(info.Description)
		fmt.Println()
		fmt.Println(ui.StyleTitle.Render("When to use"))
		fmt.Println("  " + catalog.Applicability(args[0]))
		printList("Benefits", info.Benefits)
		printList("Drawbacks", info.Drawbacks)
		printList("Implementation tips", info.ImplementationTips)
		printList("Refactoring tips", info.RefactoringTips)
		if rel := catalog.Related(args[0]); len(rel) > 0 {
			fmt.Println(ui.StyleTitle.Render("Related patterns"))
			for name, how := range rel {
				fmt.Printf("  %s: %s\n", ui.StylePrimary.Render(name), how)
			}
		}
		fmt.Println(ui.StyleTitle.Render("Example"))
		fmt.Println(ui.StyleCodeBlock.Render(info.Example))
		return nil
	},
}

var patternsDetectCmd = &cobra.Command{
	Use:   "detect <file>",
	Short: "Detect pattern occurrences in a Python file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := os.ReadFile(args[0])
		if err != nil {
			PrintError(fmt.Sprintf("Cannot read %s.", args[0]), err)
			return err
		}
		tree, err := pyast.Parse(cmd.Context(), src)
		if err != nil {
			PrintError(fmt.Sprintf("%s does not parse.", args[0]), err)
			return err
		}
		defer tree.Close()

		detected := patterns.NewMatcher().Detect(tree)
		if len(detected) == 0 {
			fmt.Println(ui.StyleSubtle.Render("no patterns detected"))
			return nil
		}
		for _, name := range patterns.All() {
			for _, occ := range detected[name] {
				fmt.Printf("%s  class %s (line %d)\n",
					ui.StylePrimary.Render(fmt.Sprintf("%-15s", name)), occ.Subject, occ.Line)
			}
		}
		return nil
	},
}

func printList(title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Println(ui.StyleTitle.Render(title))
	for _, item := range items {
		fmt.Println("  - " + item)
	}
}

func init() {
	patternsCmd.AddCommand(patternsListCmd, patternsShowCmd, patternsDetectCmd)
	rootCmd.AddCommand(patternsCmd)
}
