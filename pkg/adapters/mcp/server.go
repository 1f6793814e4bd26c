package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/formwork"
	"github.com/aretw0/formwork/internal/logging"
	"github.com/aretw0/formwork/internal/presentation/graph"
	"github.com/aretw0/formwork/pkg/designer"
	"github.com/aretw0/formwork/pkg/domain"
	"github.com/aretw0/formwork/pkg/ports"
	"github.com/aretw0/formwork/pkg/schema"
	"github.com/aretw0/formwork/pkg/session"
	"github.com/aretw0/formwork/pkg/tree"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const formURIPrefix = "formwork://forms/"

// ApplyResponse is the outcome of one designer command together with the resulting state.
type ApplyResponse struct {
	Result designer.Result `json:"result" jsonschema_description:"Whether the command applied, and the ids it produced"`
	State  designer.State  `json:"state" jsonschema_description:"The document, selection and transient editor state after the command"`
}

// Server exposes open forms as MCP tools and resources.
type Server struct {
	sessions  *session.Manager
	templates ports.TemplateLibrary
	kinds     schema.Kinds
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithTemplates enables list_templates and insert_template.
func WithTemplates(lib ports.TemplateLibrary) Option {
	return func(s *Server) {
		s.templates = lib
	}
}

// WithKinds sets the property schemas used by validate and list_kinds.
func WithKinds(kinds schema.Kinds) Option {
	return func(s *Server) {
		s.kinds = kinds
	}
}

// WithLogger configures a logger for the Server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		sessions: sessions,
		kinds:    schema.Defaults(),
		mcpServer: server.NewMCPServer("formwork-mcp", strings.TrimSpace(formwork.Version),
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
		),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server, for embedding in other transports.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops when ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: apply_command
	applyTool := mcp.NewTool("apply_command",
		mcp.WithDescription("Apply one designer command (add, move, align, group, ...) to a form. Call list_commands for the names."),
		mcp.WithString("form_id", mcp.Required(), mcp.Description("The form to edit; unknown forms start empty")),
		mcp.WithString("name", mcp.Required(), mcp.Description("Command name, e.g. add, moveTo, distribute")),
		mcp.WithObject("args", mcp.Description("Command arguments (object, or a JSON string)")),
		mcp.WithOutputSchema[ApplyResponse](),
	)
	s.mcpServer.AddTool(applyTool, mcp.NewStructuredToolHandler(s.handleApply))

	// TOOL: get_state
	stateTool := mcp.NewTool("get_state",
		mcp.WithDescription("Get the document, selection, hover and drag state of a form."),
		mcp.WithString("form_id", mcp.Required(), mcp.Description("Form ID")),
		mcp.WithOutputSchema[designer.State](),
	)
	s.mcpServer.AddTool(stateTool, mcp.NewStructuredToolHandler(s.handleState))

	s.mcpServer.AddTool(mcp.NewTool("get_document",
		mcp.WithDescription("Get the saved-form JSON of a form."),
		mcp.WithString("form_id", mcp.Required(), mcp.Description("Form ID")),
	), s.handleGetDocument)

	s.mcpServer.AddTool(mcp.NewTool("load_document",
		mcp.WithDescription("Replace a form with a definition. Accepts the legacy flat parentId list as well."),
		mcp.WithString("form_id", mcp.Required(), mcp.Description("Form ID")),
		mcp.WithString("definition", mcp.Required(), mcp.Description("Definition JSON")),
		mcp.WithBoolean("save", mcp.Description("Persist immediately (default false)")),
	), s.handleLoadDocument)

	s.mcpServer.AddTool(mcp.NewTool("save_document",
		mcp.WithDescription("Persist an open form."),
		mcp.WithString("form_id", mcp.Required(), mcp.Description("Form ID")),
	), s.handleSaveDocument)

	s.mcpServer.AddTool(mcp.NewTool("list_forms",
		mcp.WithDescription("List stored and open forms."),
	), s.handleListForms)

	s.mcpServer.AddTool(mcp.NewTool("list_commands",
		mcp.WithDescription("List the command names apply_command accepts."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(designer.Commands())
	})

	s.mcpServer.AddTool(mcp.NewTool("list_kinds",
		mcp.WithDescription("List component kinds with the type of each property they understand."),
	), s.handleListKinds)

	s.mcpServer.AddTool(mcp.NewTool("validate",
		mcp.WithDescription("Check a form for structural problems (duplicate ids, stray column tags, unknown kinds)."),
		mcp.WithString("form_id", mcp.Required(), mcp.Description("Form ID")),
	), s.handleValidate)

	s.mcpServer.AddTool(mcp.NewTool("outline",
		mcp.WithDescription("Render a form as a Mermaid diagram or a markdown outline."),
		mcp.WithString("form_id", mcp.Required(), mcp.Description("Form ID")),
		mcp.WithString("format", mcp.Enum("mermaid", "markdown"), mcp.Description("Output format (default mermaid)")),
	), s.handleOutline)

	if s.templates == nil {
		return
	}

	s.mcpServer.AddTool(mcp.NewTool("list_templates",
		mcp.WithDescription("List the component templates available for insert_template."),
	), s.handleListTemplates)

	s.mcpServer.AddTool(mcp.NewTool("insert_template",
		mcp.WithDescription("Append a template's components to the root of a form with fresh ids and select them."),
		mcp.WithString("form_id", mcp.Required(), mcp.Description("Form ID")),
		mcp.WithString("template_id", mcp.Required(), mcp.Description("Template ID")),
	), s.handleInsertTemplate)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// commandArgs accepts the args parameter as an object or a JSON-encoded object.
func commandArgs(raw any) (map[string]any, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return v, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		var out map[string]any
		if err := json.Unmarshal([]byte(v), &out); err != nil {
			return nil, fmt.Errorf("%w: args: %v", domain.ErrInvalidArguments, err)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: args must be an object", domain.ErrInvalidArguments)
}

func (s *Server) handleApply(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (ApplyResponse, error) {
	formID, _ := args["form_id"].(string)
	name, _ := args["name"].(string)
	if formID == "" || name == "" {
		return ApplyResponse{}, fmt.Errorf("%w: form_id and name are required", domain.ErrInvalidArguments)
	}
	cmdArgs, err := commandArgs(args["args"])
	if err != nil {
		return ApplyResponse{}, err
	}

	var resp ApplyResponse
	err = s.sessions.Do(ctx, formID, func(st *designer.Store) error {
		res, err := st.Apply(designer.Command{Name: name, Args: cmdArgs})
		if err != nil {
			return err
		}
		resp = ApplyResponse{Result: res, State: st.State()}
		return nil
	})
	if err != nil {
		s.logger.Warn("MCP apply_command rejected", "form_id", formID, "command", name, "err", err)
		return ApplyResponse{}, err
	}
	return resp, nil
}

func (s *Server) handleState(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (designer.State, error) {
	formID, _ := args["form_id"].(string)
	if formID == "" {
		return designer.State{}, fmt.Errorf("%w: form_id is required", domain.ErrInvalidArguments)
	}
	return s.sessions.State(ctx, formID)
}

func (s *Server) handleGetDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	formID, err := request.RequireString("form_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	def, err := s.sessions.Open(ctx, formID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("open failed: %v", err)), nil
	}
	return jsonResult(def)
}

func (s *Server) handleLoadDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	formID, err := request.RequireString("form_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	raw, err := request.RequireString("definition")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	def, err := domain.DecodeDefinition([]byte(raw))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid definition: %v", err)), nil
	}

	loaded, err := s.sessions.Replace(ctx, formID, def)
	if err == nil && request.GetBool("save", false) {
		err = s.sessions.Save(ctx, formID)
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("load failed: %v", err)), nil
	}
	return jsonResult(loaded)
}

func (s *Server) handleSaveDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	formID, err := request.RequireString("form_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, err := s.sessions.Open(ctx, formID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("open failed: %v", err)), nil
	}
	if err := s.sessions.Save(ctx, formID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("save failed: %v", err)), nil
	}
	return mcp.NewToolResultText("saved " + formID), nil
}

func (s *Server) handleListForms(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ids, err := s.sessions.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
	}
	if ids == nil {
		ids = []string{}
	}
	return jsonResult(ids)
}

func (s *Server) handleListKinds(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.kinds.All())
}

func (s *Server) handleValidate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	formID, err := request.RequireString("form_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	def, err := s.sessions.Open(ctx, formID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("open failed: %v", err)), nil
	}
	issues := designer.ValidateKinds(def, s.kinds)
	if issues == nil {
		issues = []designer.Issue{}
	}
	return jsonResult(issues)
}

func (s *Server) handleOutline(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	formID, err := request.RequireString("form_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	st, err := s.sessions.State(ctx, formID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("open failed: %v", err)), nil
	}
	if request.GetString("format", "mermaid") == "markdown" {
		return mcp.NewToolResultText(graph.GenerateOutline(formID, st.Document)), nil
	}
	return mcp.NewToolResultText(graph.GenerateMermaid(st.Document.Components, &graph.Overlay{
		Selected: st.Selection.IDs,
		Hover:    st.Hover,
	})), nil
}

func (s *Server) handleListTemplates(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	infos, err := s.templates.ListTemplates(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
	}
	if infos == nil {
		infos = []ports.TemplateInfo{}
	}
	return jsonResult(infos)
}

func (s *Server) handleInsertTemplate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	formID, err := request.RequireString("form_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	templateID, err := request.RequireString("template_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tpl, err := s.templates.GetTemplate(ctx, templateID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var res designer.Result
	err = s.sessions.Do(ctx, formID, func(st *designer.Store) error {
		ids := st.AddTree(tpl.Components, domain.Root(), tree.End)
		res = designer.Result{Applied: len(ids) > 0, IDs: ids}
		return nil
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("insert failed: %v", err)), nil
	}
	return jsonResult(res)
}

func (s *Server) registerResources() {
	// EXPOSE: formwork://commands
	s.mcpServer.AddResource(mcp.NewResource("formwork://commands", "Designer Commands",
		mcp.WithResourceDescription("Names accepted by apply_command"),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, _ := json.Marshal(designer.Commands())
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "formwork://commands",
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})

	// EXPOSE: formwork://forms/{id}
	s.mcpServer.AddResourceTemplate(mcp.NewResourceTemplate(formURIPrefix+"{id}", "Form Definition",
		mcp.WithTemplateDescription("The saved-form JSON of a form"),
		mcp.WithTemplateMIMEType("application/json"),
	), s.readForm)
}

func (s *Server) readForm(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := request.Params.URI
	formID := strings.TrimPrefix(uri, formURIPrefix)
	if formID == "" || formID == uri {
		return nil, fmt.Errorf("%w: %s", domain.ErrFormNotFound, uri)
	}

	def, err := s.sessions.Open(ctx, formID)
	if err != nil {
		return nil, fmt.Errorf("failed to open form: %w", err)
	}
	data, err := json.Marshal(def)
	if err != nil {
		return nil, errors.Join(errors.New("failed to encode form"), err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
