package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/claude/repnotes/internal/codec"
	"github.com/claude/repnotes/internal/ingest/alpha"
	"github.com/claude/repnotes/internal/ingest/plaintext"
	repmcp "github.com/claude/repnotes/internal/mcp"
	"github.com/claude/repnotes/internal/models"
	"github.com/claude/repnotes/internal/storage"
	"github.com/claude/repnotes/internal/volume"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Store is the persistence the server needs. *storage.DB implements it.
type Store interface {
	SaveWorkout(ctx context.Context, w *models.Workout) error
	GetWorkout(ctx context.Context, id uuid.UUID, userID int) (*models.Workout, error)
	ListWorkouts(ctx context.Context, userID int, start, end time.Time) ([]models.WorkoutSummary, error)
	DeleteWorkout(ctx context.Context, id uuid.UUID, userID int) error
	GetDataStats(ctx context.Context, userID int) (*storage.DataStats, error)
	InsertImportLog(ctx context.Context, log storage.ImportLog) (int64, error)
	QueryImportLogs(ctx context.Context, f storage.ImportLogFilter) ([]storage.ImportLog, error)
}

var _ Store = (*storage.DB)(nil)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store    Store
	notes    *plaintext.Provider
	alpha    *alpha.Provider
	builder  *codec.Builder
	rows     *volume.Editor
	log      *slog.Logger
	apiKey   string
	identity func(http.Handler) http.Handler
	router   chi.Router
}

// New creates a new Server with all routes configured. Requests are
// attributed to the local user until SetTailscale installs real identities.
func New(store Store, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		store:    store,
		notes:    plaintext.NewProvider(store, log),
		alpha:    alpha.NewProvider(store, log),
		builder:  codec.NewBuilder(),
		rows:     volume.NewEditor(),
		log:      log,
		apiKey:   apiKey,
		identity: DevIdentity,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

// SetTailscale resolves request identities through the tailnet.
func (s *Server) SetTailscale(whois WhoIser, users UserResolver) {
	s.identity = TailscaleIdentity(whois, users, s.log)
}

// SetMCP mounts the MCP streamable HTTP transport at /mcp. Tool calls run as
// the user resolved by the identity middleware.
func (s *Server) SetMCP(m *mcpserver.MCPServer) {
	h := mcpserver.NewStreamableHTTPServer(m,
		mcpserver.WithHTTPContextFunc(func(ctx context.Context, r *http.Request) context.Context {
			return repmcp.WithUserID(ctx, userIDFromContext(r))
		}),
	)
	s.router.Handle("/mcp", h)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s.identity(next).ServeHTTP(w, r)
		})
	})

	// Ingest endpoints (API key required)
	s.router.Route("/api/v1/ingest", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/", s.handleNotesIngest)
		r.Post("/alpha", s.handleAlphaIngest)
	})

	// Stateless codec endpoints
	s.router.Post("/api/v1/codec/decode", s.handleDecode)
	s.router.Post("/api/v1/codec/encode", s.handleEncode)
	s.router.Post("/api/v1/rows", s.handleRows)
	s.router.Post("/api/v1/rows/add", s.handleRowAdd)
	s.router.Post("/api/v1/rows/remove", s.handleRowRemove)
	s.router.Post("/api/v1/rows/update", s.handleRowUpdate)

	// Stored workouts (no API key, tsnet handles access)
	s.router.Get("/api/v1/workouts", s.handleListWorkouts)
	s.router.Post("/api/v1/workouts", s.handleCreateWorkout)
	s.router.Get("/api/v1/workouts/{id}", s.handleGetWorkout)
	s.router.Delete("/api/v1/workouts/{id}", s.handleDeleteWorkout)
	s.router.Get("/api/v1/workouts/{id}/text", s.handleGetWorkoutText)
	s.router.Put("/api/v1/workouts/{id}/text", s.handlePutWorkoutText)

	s.router.Get("/api/v1/me", s.handleMe)
	s.router.Get("/api/v1/stats", s.handleStats)
	s.router.Get("/api/v1/imports", s.handleImportLogs)
}
