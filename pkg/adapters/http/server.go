package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/formwork"
	"github.com/aretw0/formwork/internal/logging"
	"github.com/aretw0/formwork/internal/presentation/graph"
	"github.com/aretw0/formwork/pkg/designer"
	"github.com/aretw0/formwork/pkg/domain"
	"github.com/aretw0/formwork/pkg/observability"
	"github.com/aretw0/formwork/pkg/ports"
	"github.com/aretw0/formwork/pkg/schema"
	"github.com/aretw0/formwork/pkg/session"
	"github.com/aretw0/formwork/pkg/tree"
	"github.com/go-chi/chi/v5"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 4 << 20

// Server exposes open forms over HTTP.
type Server struct {
	Sessions  *session.Manager
	Streams   *StreamManager
	Templates ports.TemplateLibrary
	Metrics   *observability.Metrics
	Kinds     schema.Kinds
	logger    *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithStreams shares a StreamManager that is also registered as a session listener.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.Streams = sm
	}
}

// WithTemplates enables the template endpoints.
func WithTemplates(lib ports.TemplateLibrary) Option {
	return func(s *Server) {
		s.Templates = lib
	}
}

// WithMetrics mounts /metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) {
		s.Metrics = m
	}
}

// WithKinds sets the property schemas used by /validate and /kinds.
func WithKinds(kinds schema.Kinds) Option {
	return func(s *Server) {
		s.Kinds = kinds
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler creates the HTTP handler for a session manager.
//
// Diffs only reach /events when the same StreamManager passed with WithStreams is
// registered on the manager through session.WithListener(streams.Publish).
func NewHandler(sessions *session.Manager, opts ...Option) http.Handler {
	s := &Server{
		Sessions: sessions,
		Kinds:    schema.Defaults(),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Streams == nil {
		s.Streams = NewStreamManager(s.logger)
	}
	return s.Routes()
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/commands", s.ListCommands)
	r.Get("/kinds", s.ListKinds)
	if s.Metrics != nil {
		r.Handle("/metrics", s.Metrics.Handler())
	}
	if s.Templates != nil {
		r.Get("/templates", s.ListTemplates)
	}

	r.Get("/forms", s.ListForms)
	r.Route("/forms/{formID}", func(r chi.Router) {
		r.Get("/", s.GetForm)
		r.Put("/", s.PutForm)
		r.Delete("/", s.DeleteForm)
		r.Post("/save", s.SaveForm)
		r.Post("/close", s.CloseForm)
		r.Get("/state", s.GetState)
		r.Post("/commands", s.ApplyCommands)
		r.Get("/validate", s.ValidateForm)
		r.Get("/outline", s.GetOutline)
		r.Get("/events", s.SubscribeEvents)
		if s.Templates != nil {
			r.Post("/templates/{templateID}", s.InsertTemplate)
		}
	})
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps domain sentinels to status codes.
func (s *Server) writeError(w http.ResponseWriter, op string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrFormNotFound), errors.Is(err, domain.ErrTemplateNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrUnknownCommand), errors.Is(err, domain.ErrInvalidArguments):
		status = http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		s.logger.Error(op+" failed", "err", err)
	} else {
		s.logger.Warn(op+" rejected", "err", err, "status", status)
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func formID(r *http.Request) string {
	return chi.URLParam(r, "formID")
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"app":        "formwork-http",
		"version":    strings.TrimSpace(formwork.Version),
		"open_forms": len(s.Sessions.OpenForms()),
	})
}

// ListCommands handles GET /commands.
func (s *Server) ListCommands(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, designer.Commands())
}

// ListKinds handles GET /kinds, returning the property schema of every component kind.
func (s *Server) ListKinds(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Kinds.All())
}

// ListForms handles GET /forms.
func (s *Server) ListForms(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		s.writeError(w, "ListForms", err)
		return
	}
	s.writeJSON(w, http.StatusOK, ids)
}

// GetForm handles GET /forms/{formID}. Unknown forms open as empty documents.
func (s *Server) GetForm(w http.ResponseWriter, r *http.Request) {
	def, err := s.Sessions.Open(r.Context(), formID(r))
	if err != nil {
		s.writeError(w, "GetForm", err)
		return
	}
	s.writeJSON(w, http.StatusOK, def)
}

// PutForm handles PUT /forms/{formID}: replaces and saves the whole document.
// The body may be a definition or a legacy bare component list.
func (s *Server) PutForm(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return
	}
	def, err := domain.DecodeDefinition(data)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	id := formID(r)
	out, err := s.Sessions.Replace(r.Context(), id, def)
	if err == nil {
		err = s.Sessions.Save(r.Context(), id)
	}
	if err != nil {
		s.writeError(w, "PutForm", err)
		return
	}
	s.writeJSON(w, http.StatusOK, out)
}

// DeleteForm handles DELETE /forms/{formID}.
func (s *Server) DeleteForm(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.Delete(r.Context(), formID(r)); err != nil {
		s.writeError(w, "DeleteForm", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SaveForm handles POST /forms/{formID}/save.
func (s *Server) SaveForm(w http.ResponseWriter, r *http.Request) {
	id := formID(r)
	if _, err := s.Sessions.Open(r.Context(), id); err != nil {
		s.writeError(w, "SaveForm", err)
		return
	}
	if err := s.Sessions.Save(r.Context(), id); err != nil {
		s.writeError(w, "SaveForm", err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

// CloseForm handles POST /forms/{formID}/close?save=true.
func (s *Server) CloseForm(w http.ResponseWriter, r *http.Request) {
	save := r.URL.Query().Get("save") == "true"
	if err := s.Sessions.Close(r.Context(), formID(r), save); err != nil {
		s.writeError(w, "CloseForm", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetState handles GET /forms/{formID}/state.
func (s *Server) GetState(w http.ResponseWriter, r *http.Request) {
	st, err := s.Sessions.State(r.Context(), formID(r))
	if err != nil {
		s.writeError(w, "GetState", err)
		return
	}
	s.writeJSON(w, http.StatusOK, st)
}

type commandsResponse struct {
	Results []designer.Result `json:"results"`
	State   designer.State    `json:"state"`
}

// ApplyCommands handles POST /forms/{formID}/commands.
// The body is one command or an array of commands, applied in order under one lock.
// A decoding error aborts the batch; commands applied before it are kept.
func (s *Server) ApplyCommands(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return
	}
	cmds, err := decodeCommands(data)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	var resp commandsResponse
	err = s.Sessions.Do(r.Context(), formID(r), func(st *designer.Store) error {
		for i, cmd := range cmds {
			res, err := st.Apply(cmd)
			if err != nil {
				return fmt.Errorf("command %d (%s): %w", i, cmd.Name, err)
			}
			resp.Results = append(resp.Results, res)
		}
		resp.State = st.State()
		return nil
	})
	if err != nil {
		s.writeError(w, "ApplyCommands", err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func decodeCommands(data []byte) ([]designer.Command, error) {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var cmds []designer.Command
		if err := json.Unmarshal(data, &cmds); err != nil {
			return nil, fmt.Errorf("invalid command list: %w", err)
		}
		return cmds, nil
	}
	var cmd designer.Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		return nil, fmt.Errorf("invalid command: %w", err)
	}
	return []designer.Command{cmd}, nil
}

// ValidateForm handles GET /forms/{formID}/validate.
func (s *Server) ValidateForm(w http.ResponseWriter, r *http.Request) {
	def, err := s.Sessions.Open(r.Context(), formID(r))
	if err != nil {
		s.writeError(w, "ValidateForm", err)
		return
	}
	issues := designer.ValidateKinds(def, s.Kinds)
	if issues == nil {
		issues = []designer.Issue{}
	}
	s.writeJSON(w, http.StatusOK, issues)
}

// GetOutline handles GET /forms/{formID}/outline?format=mermaid|markdown.
func (s *Server) GetOutline(w http.ResponseWriter, r *http.Request) {
	id := formID(r)
	st, err := s.Sessions.State(r.Context(), id)
	if err != nil {
		s.writeError(w, "GetOutline", err)
		return
	}

	switch r.URL.Query().Get("format") {
	case "markdown", "md":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		io.WriteString(w, graph.GenerateOutline(id, st.Document))
	default:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		io.WriteString(w, graph.GenerateMermaid(st.Document.Components, &graph.Overlay{
			Selected: st.Selection.IDs,
			Hover:    st.Hover,
		}))
	}
}

// ListTemplates handles GET /templates.
func (s *Server) ListTemplates(w http.ResponseWriter, r *http.Request) {
	infos, err := s.Templates.ListTemplates(r.Context())
	if err != nil {
		s.writeError(w, "ListTemplates", err)
		return
	}
	s.writeJSON(w, http.StatusOK, infos)
}

// InsertTemplate handles POST /forms/{formID}/templates/{templateID}: the template fragment
// is appended at the root with fresh ids and becomes the selection.
func (s *Server) InsertTemplate(w http.ResponseWriter, r *http.Request) {
	tpl, err := s.Templates.GetTemplate(r.Context(), chi.URLParam(r, "templateID"))
	if err != nil {
		s.writeError(w, "InsertTemplate", err)
		return
	}

	var res designer.Result
	err = s.Sessions.Do(r.Context(), formID(r), func(st *designer.Store) error {
		ids := st.AddTree(tpl.Components, domain.Root(), tree.End)
		res = designer.Result{Applied: len(ids) > 0, IDs: ids}
		return nil
	})
	if err != nil {
		s.writeError(w, "InsertTemplate", err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

// SubscribeEvents handles GET /forms/{formID}/events (SSE).
// ?watch=added,removed,changed,canvas filters events by the kind of change they carry.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	id := formID(r)
	var watch []string
	if raw := r.URL.Query().Get("watch"); raw != "" {
		watch = strings.Split(raw, ",")
	}

	ch, cancel := s.Streams.Subscribe(id)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()
	s.logger.Info("SSE: Subscribing to form updates", "form_id", id)

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE Client Disconnected", "form_id", id)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if len(watch) > 0 && !matchesWatch(msg, watch) {
				continue
			}
			fmt.Fprintf(w, "event: diff\ndata: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func matchesWatch(msg string, watch []string) bool {
	var diff domain.DocumentDiff
	if err := json.Unmarshal([]byte(msg), &diff); err != nil {
		return true
	}
	for _, field := range watch {
		switch strings.TrimSpace(field) {
		case "added":
			if len(diff.Added) > 0 {
				return true
			}
		case "removed":
			if len(diff.Removed) > 0 {
				return true
			}
		case "changed":
			if len(diff.Changed) > 0 {
				return true
			}
		case "canvas":
			if diff.CanvasSize != nil || diff.Zoom != nil {
				return true
			}
		}
	}
	return false
}
