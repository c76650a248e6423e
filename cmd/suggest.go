package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pylens/pylens/internal/ui"
	"github.com/pylens/pylens/internal/workspace"
	"github.com/pylens/pylens/models"
	"github.com/pylens/pylens/store"
)

var (
	suggestFile    string
	suggestPending bool
)

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "List and manage recorded suggestions",
}

var suggestListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored suggestions",
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := workspace.Open(false)
		if err != nil {
			HandleFatalError("Could not open the suggestion store.", err)
		}
		defer func() { _ = ws.Close() }()

		var (
			sugs []models.Suggestion
		)
		switch {
		case suggestFile != "":
			sugs, err = ws.Store.ForFile(suggestFile)
		case suggestPending:
			sugs, err = ws.Store.Pending()
		default:
			sugs, err = ws.Store.All()
		}
		if err != nil {
			PrintError("Could not list suggestions.", err)
			return err
		}
		if len(sugs) == 0 {
			fmt.Println(ui.StyleSubtle.Render("no suggestions recorded"))
			return nil
		}
		for _, s := range sugs {
			status := " "
			if s.Applied {
				status = ui.StyleSuccess.Render("✔")
			}
			fmt.Printf("%s [%4d] %s %s  %s:%d\n",
				status,
				s.ID,
				ui.SeverityStyle(string(s.Severity)).Render(fmt.Sprintf("%-6s", s.Severity)),
				ui.StylePrimary.Render(fmt.Sprintf("%-20s", s.Type)),
				s.Location.FilePath, s.Location.StartLine)
		}
		return nil
	},
}

var suggestShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one suggestion in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		ws, err := workspace.Open(false)
		if err != nil {
			HandleFatalError("Could not open the suggestion store.", err)
		}
		defer func() { _ = ws.Close() }()

		s, err := ws.Store.Get(id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				PrintError(fmt.Sprintf("No suggestion with id %d.", id), err)
			} else {
				PrintError("Could not read the suggestion.", err)
			}
			return err
		}

		fmt.Println(ui.StyleHeader.Render(fmt.Sprintf("Suggestion %d: %s", s.ID, s.Type)))
		fmt.Printf("  severity   %s\n", ui.SeverityStyle(string(s.Severity)).Render(string(s.Severity)))
		fmt.Printf("  location   %s:%d", s.Location.FilePath, s.Location.StartLine)
		if s.Location.ClassName != "" {
			fmt.Printf(" (class %s)", s.Location.ClassName)
		}
		fmt.Println()
		fmt.Printf("  created    %s\n", s.CreatedAt.Format("2006-01-02 15:04:05"))
		if s.Applied && s.AppliedAt != nil {
			fmt.Printf("  applied    %s\n", s.AppliedAt.Format("2006-01-02 15:04:05"))
		}
		fmt.Println()
		fmt.Println(s.Description)
		if s.Recommendation != "" {
			fmt.Println(ui.StyleTitle.Render("Recommendation"))
			fmt.Println("  " + s.Recommendation)
		}
		if s.CodeExample != "" {
			fmt.Println(ui.StyleTitle.Render("Example"))
			fmt.Println(ui.StyleCodeBlock.Render(s.CodeExample))
		}
		return nil
	},
}

var suggestApplyCmd = &cobra.Command{
	Use:   "apply <id>",
	Short: "Mark a suggestion as applied",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		ws, err := workspace.Open(false)
		if err != nil {
			HandleFatalError("Could not open the suggestion store.", err)
		}
		defer func() { _ = ws.Close() }()

		if _, err := ws.Store.MarkApplied(id); err != nil {
			PrintError(fmt.Sprintf("Could not mark suggestion %d applied.", id), err)
			return err
		}
		fmt.Printf("%s suggestion %d marked applied\n", ui.StyleSuccess.Render("✔"), id)
		return nil
	},
}

var suggestRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a suggestion from the store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		ws, err := workspace.Open(false)
		if err != nil {
			HandleFatalError("Could not open the suggestion store.", err)
		}
		defer func() { _ = ws.Close() }()

		if _, err := ws.Store.Remove(id); err != nil {
			PrintError(fmt.Sprintf("Could not remove suggestion %d.", id), err)
			return err
		}
		fmt.Printf("%s suggestion %d removed\n", ui.StyleSuccess.Render("✔"), id)
		return nil
	},
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id < 1 {
		PrintError(fmt.Sprintf("%q is not a valid suggestion id.", arg), err)
		return 0, fmt.Errorf("invalid suggestion id %q", arg)
	}
	return id, nil
}

func init() {
	suggestListCmd.Flags().StringVarP(&suggestFile, "file", "f", "", "only suggestions for this file path")
	suggestListCmd.Flags().BoolVarP(&suggestPending, "pending", "p", false, "only suggestions not yet applied")
	suggestCmd.AddCommand(suggestListCmd, suggestShowCmd, suggestApplyCmd, suggestRemoveCmd)
	rootCmd.AddCommand(suggestCmd)
}
