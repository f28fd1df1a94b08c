package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/quartzlabs/devtools"
	"github.com/quartzlabs/devtools/persist"
	"github.com/quartzlabs/devtools/reflected"
)

// ServerConfig controls daemon HTTP server dependencies.
type ServerConfig struct {
	Dispatcher *devtools.Dispatcher
	Registry   *devtools.Registry
	Store      persist.Store
	Logger     *slog.Logger
}

// Server exposes tool listing and command dispatch over HTTP. Every
// successful mutation writes a fresh snapshot to the backing store.
type Server struct {
	dispatcher *devtools.Dispatcher
	reg        *devtools.Registry
	store      persist.Store
	logger     *slog.Logger
}

// NewServer constructs a daemon API server with default in-memory storage.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Dispatcher == nil {
		return nil, errors.New("daemon server dispatcher is nil")
	}
	if cfg.Registry == nil {
		return nil, errors.New("daemon server registry is nil")
	}
	store := cfg.Store
	if store == nil {
		store = persist.NewMemoryStore()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		dispatcher: cfg.Dispatcher,
		reg:        cfg.Registry,
		store:      store,
		logger:     logger,
	}, nil
}

// Store returns the backing snapshot store.
func (s *Server) Store() persist.Store {
	return s.store
}

// Handler returns an http.Handler exposing daemon APIs.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/tools", s.handleListTools)
	mux.HandleFunc("GET /api/tools/{name}", s.handleGetTool)
	mux.HandleFunc("PUT /api/tools/{name}/enable", s.handleEnableTool)
	mux.HandleFunc("PUT /api/tools/{name}/disable", s.handleDisableTool)
	mux.HandleFunc("PUT /api/tools/{name}/toggle", s.handleToggleTool)

	mux.HandleFunc("GET /api/commands", s.handleListCommands)
	mux.HandleFunc("POST /api/commands", s.handleDispatchCommand)

	return mux
}

type toolResponse struct {
	Key     string          `json:"key"`
	Name    string          `json:"name"`
	Enabled bool            `json:"enabled"`
	Value   json.RawMessage `json:"value,omitempty"`
}

type commandResponse struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

type dispatchRequest struct {
	Command string          `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type eventResponse struct {
	ID      string `json:"id"`
	Kind    string `json:"kind"`
	Command string `json:"command"`
	Key     string `json:"key,omitempty"`
	Elapsed string `json:"elapsed,omitempty"`
}

func toolResponseFrom(status devtools.ToolStatus) toolResponse {
	return toolResponse{
		Key:     string(status.Key),
		Name:    status.Name,
		Enabled: status.Enabled,
		Value:   json.RawMessage(status.Value.Raw()),
	}
}

func eventResponseFrom(event devtools.Event) eventResponse {
	return eventResponse{
		ID:      event.ID,
		Kind:    string(event.Kind),
		Command: event.Command,
		Key:     string(event.Key),
		Elapsed: event.Elapsed.String(),
	}
}

func (s *Server) handleListTools(w http.ResponseWriter, r *http.Request) {
	statuses := s.dispatcher.Tools()
	tools := make([]toolResponse, 0, len(statuses))
	for _, status := range statuses {
		tools = append(tools, toolResponseFrom(status))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tools": tools,
		"count": len(tools),
	})
}

func (s *Server) handleGetTool(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	status, ok := s.dispatcher.ToolStatus(name)
	if !ok {
		writeJSONError(w, http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("tool %q not found", name), nil)
		return
	}
	writeJSON(w, http.StatusOK, toolResponseFrom(status))
}

func (s *Server) handleEnableTool(w http.ResponseWriter, r *http.Request) {
	s.setToolEnabled(w, r, true)
}

func (s *Server) handleDisableTool(w http.ResponseWriter, r *http.Request) {
	s.setToolEnabled(w, r, false)
}

func (s *Server) setToolEnabled(w http.ResponseWriter, r *http.Request, enabled bool) {
	name := r.PathValue("name")
	if _, err := s.dispatcher.SetToolEnabled(name, enabled); err != nil {
		writeDispatchError(w, err)
		return
	}
	s.persistTool(r.Context(), name)

	status, ok := s.dispatcher.ToolStatus(name)
	if !ok {
		writeJSONError(w, http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("tool %q not found", name), nil)
		return
	}
	writeJSON(w, http.StatusOK, toolResponseFrom(status))
}

func (s *Server) handleToggleTool(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if _, err := s.dispatcher.ToggleTool(name); err != nil {
		writeDispatchError(w, err)
		return
	}
	s.persistTool(r.Context(), name)

	status, ok := s.dispatcher.ToolStatus(name)
	if !ok {
		writeJSONError(w, http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("tool %q not found", name), nil)
		return
	}
	writeJSON(w, http.StatusOK, toolResponseFrom(status))
}

func (s *Server) handleListCommands(w http.ResponseWriter, r *http.Request) {
	entries := s.reg.Commands()
	commands := make([]commandResponse, 0, len(entries))
	for _, entry := range entries {
		commands = append(commands, commandResponse{
			Key:  string(entry.Key),
			Name: entry.Name,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"commands": commands,
		"count":    len(commands),
	})
}

func (s *Server) handleDispatchCommand(w http.ResponseWriter, r *http.Request) {
	var req dispatchRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "INVALID_JSON", err.Error(), nil)
		return
	}
	if req.Command == "" {
		writeJSONError(w, http.StatusBadRequest, "INVALID_REQUEST", "command is required", nil)
		return
	}
	payload := req.Payload
	if len(payload) == 0 {
		payload = json.RawMessage(`{}`)
	}

	event, err := s.dispatcher.Dispatch(req.Command, reflected.FromJSON("", payload))
	if err != nil {
		writeDispatchError(w, err)
		return
	}
	if key, ok := toolRefFromCommand(event.Command); ok {
		s.persistTool(r.Context(), key)
	}
	writeJSON(w, http.StatusOK, eventResponseFrom(event))
}

// toolRefFromCommand extracts the tool display name from an adapter command
// name like "Enable[fps_overlay]". Custom commands return false; their
// effects are persisted on the next flip.
func toolRefFromCommand(command string) (string, bool) {
	open := -1
	for i, c := range command {
		if c == '[' {
			open = i
			break
		}
	}
	if open < 0 || command[len(command)-1] != ']' {
		return "", false
	}
	switch command[:open] {
	case "Enable", "Disable", "Toggle":
		return command[open+1 : len(command)-1], true
	}
	return "", false
}

func (s *Server) persistTool(ctx context.Context, ref string) {
	status, ok := s.dispatcher.ToolStatus(ref)
	if !ok {
		return
	}
	snap := persist.Snapshot{
		Key:     string(status.Key),
		Name:    status.Name,
		Enabled: status.Enabled,
		Payload: json.RawMessage(status.Value.Raw()),
	}
	if err := s.store.Upsert(ctx, snap); err != nil {
		s.logger.Warn("persist tool snapshot", "tool", status.Name, "error", err)
	}
}

// RestoreFromStore reapplies persisted enabled flags by dispatching Enable or
// Disable for each snapshot whose tool is still registered. Snapshots for
// unknown tools are skipped.
func (s *Server) RestoreFromStore(ctx context.Context) error {
	snaps, err := s.store.List(ctx)
	if err != nil {
		return fmt.Errorf("list snapshots: %w", err)
	}
	for _, snap := range snaps {
		if _, ok := s.dispatcher.ToolStatus(snap.Key); !ok {
			s.logger.Warn("skipping snapshot for unknown tool", "key", snap.Key)
			continue
		}
		if _, err := s.dispatcher.SetToolEnabled(snap.Key, snap.Enabled); err != nil {
			return fmt.Errorf("restore tool %q: %w", snap.Key, err)
		}
	}
	return nil
}

// SyncToStore writes a snapshot for every live tool.
func (s *Server) SyncToStore(ctx context.Context) error {
	for _, status := range s.dispatcher.Tools() {
		snap := persist.Snapshot{
			Key:     string(status.Key),
			Name:    status.Name,
			Enabled: status.Enabled,
			Payload: json.RawMessage(status.Value.Raw()),
		}
		if err := s.store.Upsert(ctx, snap); err != nil {
			return fmt.Errorf("sync tool %q: %w", status.Name, err)
		}
	}
	return nil
}

// ApplyConfig seeds tool enabled flags from a declarative startup config.
func (s *Server) ApplyConfig(cfg Config) error {
	for name, decl := range cfg.Tools {
		if decl.Enabled == nil {
			continue
		}
		if _, err := s.dispatcher.SetToolEnabled(name, *decl.Enabled); err != nil {
			return fmt.Errorf("seed tool %q: %w", name, err)
		}
	}
	return nil
}

type apiErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type apiErrorResponse struct {
	Error apiErrorDetail `json:"error"`
}

func decodeJSONBody(r *http.Request, target any) error {
	if target == nil {
		return errors.New("decode target is nil")
	}
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return err
	}
	if decoder.More() {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeJSONError(w http.ResponseWriter, status int, code, message string, details any) {
	writeJSON(w, status, apiErrorResponse{
		Error: apiErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

func writeDispatchError(w http.ResponseWriter, err error) {
	if derr, ok := devtools.AsDispatchError(err); ok {
		status := http.StatusBadRequest
		if derr.Code == devtools.DispatchErrorCodeUnknownType {
			status = http.StatusNotFound
		}
		writeJSONError(w, status, derr.Code, derr.Message, nil)
		return
	}
	writeJSONError(w, http.StatusInternalServerError, "INTERNAL", err.Error(), nil)
}
