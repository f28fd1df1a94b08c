// Package cli implements the devtools command line: listing and flipping
// tools against a file-backed snapshot store, dispatching raw commands, and
// starting the daemon server.
package cli

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quartzlabs/devtools"
	"github.com/quartzlabs/devtools/persist"
	"github.com/quartzlabs/devtools/tools"
)

// session bundles the registry, state, and dispatcher a CLI invocation works
// against, plus the store its results are persisted to. Each invocation
// builds a fresh session seeded from the store.
type session struct {
	registry   *devtools.Registry
	dispatcher *devtools.Dispatcher
	store      persist.Store
}

// newSession registers the builtin tools, restores persisted enabled flags,
// and returns a ready dispatcher.
func newSession(cmd *cobra.Command) (*session, error) {
	store, err := resolveStore(cmd)
	if err != nil {
		return nil, err
	}

	reg := devtools.NewRegistry()
	state := devtools.NewState()
	tools.RegisterBuiltins(reg, state)

	dispatcher, err := devtools.NewDispatcher(devtools.DispatcherConfig{
		Registry: reg,
		State:    state,
	})
	if err != nil {
		return nil, exitError(exitRuntime, "creating dispatcher: %v", err)
	}

	s := &session{
		registry:   reg,
		dispatcher: dispatcher,
		store:      store,
	}
	if err := s.restore(cmd.Context()); err != nil {
		return nil, err
	}
	return s, nil
}

func resolveStore(cmd *cobra.Command) (persist.Store, error) {
	path, _ := cmd.Flags().GetString("store-path")
	if clean := strings.TrimSpace(path); clean != "" {
		return persist.NewFileStore(clean), nil
	}
	defaultPath, err := persist.DefaultFilePath()
	if err != nil {
		return nil, exitError(exitRuntime, "resolving store path: %v", err)
	}
	return persist.NewFileStore(defaultPath), nil
}

// restore reapplies persisted enabled flags. Snapshots for tools that are no
// longer registered are ignored.
func (s *session) restore(ctx context.Context) error {
	snaps, err := s.store.List(ctx)
	if err != nil {
		return exitError(exitRuntime, "reading snapshot store: %v", err)
	}
	for _, snap := range snaps {
		if _, ok := s.dispatcher.ToolStatus(snap.Key); !ok {
			continue
		}
		if _, err := s.dispatcher.SetToolEnabled(snap.Key, snap.Enabled); err != nil {
			return exitError(exitRuntime, "restoring tool %q: %v", snap.Key, err)
		}
	}
	return nil
}

// persistTool writes the tool's current status back to the store.
func (s *session) persistTool(ctx context.Context, ref string) error {
	status, ok := s.dispatcher.ToolStatus(ref)
	if !ok {
		return exitError(exitRuntime, "tool %q disappeared after dispatch", ref)
	}
	snap := persist.Snapshot{
		Key:     string(status.Key),
		Name:    status.Name,
		Enabled: status.Enabled,
		Payload: json.RawMessage(status.Value.Raw()),
	}
	if err := s.store.Upsert(ctx, snap); err != nil {
		return exitError(exitRuntime, "saving snapshot for %q: %v", status.Name, err)
	}
	return nil
}
