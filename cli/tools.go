package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/quartzlabs/devtools"
)

// NewToolsCmd creates the "tools" command group.
func NewToolsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Manage developer tools",
	}
	cmd.PersistentFlags().String("store-path", "", "Path to snapshot file (default: ~/.devtools/tools.json)")

	cmd.AddCommand(newToolsListCmd())
	cmd.AddCommand(newToolsInspectCmd())
	cmd.AddCommand(newToolsEnableCmd())
	cmd.AddCommand(newToolsDisableCmd())
	cmd.AddCommand(newToolsToggleCmd())

	return cmd
}

func newToolsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered tools and their enabled state",
		RunE:  runToolsList,
	}
}

func runToolsList(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	writer := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
	fmt.Fprintln(writer, "NAME\tENABLED\tKEY")
	for _, status := range s.dispatcher.Tools() {
		fmt.Fprintf(writer, "%s\t%t\t%s\n", status.Name, status.Enabled, status.Key)
	}
	return writer.Flush()
}

func newToolsInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <name>",
		Short: "Show one tool's full state as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  runToolsInspect,
	}
}

func runToolsInspect(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	status, ok := s.dispatcher.ToolStatus(args[0])
	if !ok {
		return exitError(exitValidation, "tool %q not found", args[0])
	}
	fmt.Fprintf(cmd.OutOrStdout(), "name:    %s\n", status.Name)
	fmt.Fprintf(cmd.OutOrStdout(), "key:     %s\n", status.Key)
	fmt.Fprintf(cmd.OutOrStdout(), "enabled: %t\n", status.Enabled)
	fmt.Fprintf(cmd.OutOrStdout(), "state:   %s\n", status.Value.Raw())
	return nil
}

func newToolsEnableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enable <name>",
		Short: "Enable a tool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runToolsFlip(cmd, args[0], func(s *session) (devtools.Event, error) {
				return s.dispatcher.SetToolEnabled(args[0], true)
			})
		},
	}
}

func newToolsDisableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disable <name>",
		Short: "Disable a tool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runToolsFlip(cmd, args[0], func(s *session) (devtools.Event, error) {
				return s.dispatcher.SetToolEnabled(args[0], false)
			})
		},
	}
}

func newToolsToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <name>",
		Short: "Toggle a tool's enabled flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runToolsFlip(cmd, args[0], func(s *session) (devtools.Event, error) {
				return s.dispatcher.ToggleTool(args[0])
			})
		},
	}
}

func runToolsFlip(cmd *cobra.Command, ref string, flip func(*session) (devtools.Event, error)) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	if _, err := flip(s); err != nil {
		if derr, ok := devtools.AsDispatchError(err); ok {
			return exitError(exitValidation, "%s", derr.Message)
		}
		return exitError(exitRuntime, "dispatch failed: %v", err)
	}
	if err := s.persistTool(cmd.Context(), ref); err != nil {
		return err
	}

	status, _ := s.dispatcher.ToolStatus(ref)
	fmt.Fprintf(cmd.OutOrStdout(), "%s enabled=%t\n", status.Name, status.Enabled)
	return nil
}
