package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/quartzlabs/devtools"
	"github.com/quartzlabs/devtools/reflected"
)

// NewCommandsCmd creates the "commands" command group.
func NewCommandsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "commands",
		Short: "List and dispatch registered commands",
	}
	cmd.PersistentFlags().String("store-path", "", "Path to snapshot file (default: ~/.devtools/tools.json)")

	cmd.AddCommand(newCommandsListCmd())
	cmd.AddCommand(newCommandsApplyCmd())

	return cmd
}

func newCommandsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered commands",
		RunE:  runCommandsList,
	}
}

func runCommandsList(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	writer := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
	fmt.Fprintln(writer, "NAME\tKEY")
	for _, entry := range s.registry.Commands() {
		fmt.Fprintf(writer, "%s\t%s\n", entry.Name, entry.Key)
	}
	return writer.Flush()
}

func newCommandsApplyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply <command>",
		Short: "Dispatch a command by name or type key",
		Long: `Dispatch a command by its display name (e.g. "Toggle[fps_overlay]") or its
full type key. The payload defaults to an empty object; pass --payload for
inline JSON or --payload-file to read it from disk.`,
		Args: cobra.ExactArgs(1),
		RunE: runCommandsApply,
	}
	cmd.Flags().String("payload", "", "Inline JSON payload")
	cmd.Flags().String("payload-file", "", "Path to JSON payload file")
	return cmd
}

func runCommandsApply(cmd *cobra.Command, args []string) error {
	payload, err := resolvePayload(cmd)
	if err != nil {
		return err
	}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	event, err := s.dispatcher.Dispatch(args[0], reflected.FromJSON("", payload))
	if err != nil {
		if derr, ok := devtools.AsDispatchError(err); ok {
			return exitError(exitValidation, "%s", derr.Message)
		}
		return exitError(exitRuntime, "dispatch failed: %v", err)
	}

	// Adapter commands change one tool; persist its new state.
	for _, status := range s.dispatcher.Tools() {
		if strings.HasSuffix(event.Command, "["+status.Name+"]") {
			if err := s.persistTool(cmd.Context(), status.Name); err != nil {
				return err
			}
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "applied %s (dispatch %s)\n", event.Command, event.ID)
	return nil
}

func resolvePayload(cmd *cobra.Command) ([]byte, error) {
	inline, _ := cmd.Flags().GetString("payload")
	file, _ := cmd.Flags().GetString("payload-file")

	switch {
	case inline != "" && file != "":
		return nil, exitError(exitValidation, "--payload and --payload-file are mutually exclusive")
	case inline != "":
		if !json.Valid([]byte(inline)) {
			return nil, exitError(exitValidation, "--payload is not valid JSON")
		}
		return []byte(inline), nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, exitError(exitValidation, "reading payload file: %v", err)
		}
		if !json.Valid(data) {
			return nil, exitError(exitValidation, "payload file is not valid JSON")
		}
		return data, nil
	default:
		return []byte(`{}`), nil
	}
}
