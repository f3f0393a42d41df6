package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"log/slog"

	"platter/internal/api"
	"platter/internal/catalog"
	"platter/internal/config"
	"platter/internal/logging"
	"platter/internal/services"
)

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	if cfg == nil || d == nil {
		return nil, nil
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, nil
	}

	srv := &apiServer{
		bind:   bind,
		logger: logger,
		daemon: d,
	}

	token := strings.TrimSpace(cfg.Paths.APIToken)
	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", authMiddleware(token, srv.handleStatus))
	mux.HandleFunc("/api/items", authMiddleware(token, srv.handleItems))
	mux.HandleFunc("/api/items/", authMiddleware(token, srv.handleItem))
	mux.HandleFunc("/api/zones", authMiddleware(token, srv.handleZones))
	mux.HandleFunc("/api/zones/", authMiddleware(token, srv.handleZoneBins))
	mux.HandleFunc("/api/runs", authMiddleware(token, srv.handleRuns))
	mux.HandleFunc("/api/runs/", authMiddleware(token, srv.handleRunSubresource))
	mux.HandleFunc("/api/reports/early-warning", authMiddleware(token, srv.handleEarlyWarning))
	mux.HandleFunc("/api/reports/first-last", authMiddleware(token, srv.handleFirstLast))

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	status, err := s.daemon.reportSvc.Status(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, status)
}

func (s *apiServer) handleItems(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	query := r.URL.Query()
	filter := catalog.ItemFilter{
		Unassigned: query.Get("unassigned") == "1" || strings.EqualFold(query.Get("unassigned"), "true"),
	}

	if code := strings.TrimSpace(query.Get("zone")); code != "" {
		zone, err := s.daemon.store.GetZoneByCode(r.Context(), code)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if zone == nil {
			s.writeError(w, http.StatusNotFound, "unknown zone "+code)
			return
		}
		filter.ZoneID = zone.ID
	}
	if code := strings.TrimSpace(query.Get("bucket")); code != "" {
		bucket, err := s.daemon.store.GetBucketByCode(r.Context(), code)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if bucket == nil {
			s.writeError(w, http.StatusNotFound, "unknown bucket "+code)
			return
		}
		filter.BucketID = bucket.ID
	}

	items, err := s.daemon.store.ListItems(r.Context(), filter)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.ItemListResponse{Items: api.FromItems(items)})
}

// itemDetail joins an item with its current computed placement.
type itemDetail struct {
	Item      api.MediaItem         `json:"item"`
	Placement api.AssignmentOutcome `json:"placement"`
}

func (s *apiServer) handleItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	idStr := strings.TrimPrefix(r.URL.Path, "/api/items/")
	if idStr == "" || strings.Contains(idStr, "/") {
		s.writeError(w, http.StatusNotFound, "item not found")
		return
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}
	item, err := s.daemon.store.GetItem(r.Context(), id)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if item == nil {
		s.writeError(w, http.StatusNotFound, "item not found")
		return
	}
	placement, err := s.daemon.binningSvc.AssignItem(r.Context(), id, false)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, itemDetail{Item: api.FromItem(item), Placement: placement})
}

func (s *apiServer) handleZones(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	zones, err := s.daemon.store.ListZones(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string][]api.Zone{"zones": api.FromZones(zones)})
}

func (s *apiServer) handleZoneBins(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/zones/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] != "bins" {
		s.writeError(w, http.StatusNotFound, "not found")
		return
	}
	bins, err := s.daemon.reportSvc.ZoneBins(r.Context(), parts[0])
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string][]api.BinOccupancy{"bins": bins})
}

func (s *apiServer) handleRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 50
	}
	runs, err := s.daemon.store.ListRuns(r.Context(), limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	out := make([]api.RebinRun, 0, len(runs))
	for _, run := range runs {
		moves, err := s.daemon.store.ListMovesForRun(r.Context(), run.ID)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		out = append(out, api.FromRun(run, len(moves)))
	}
	s.writeJSON(w, http.StatusOK, api.RunListResponse{Runs: out})
}

func (s *apiServer) handleRunSubresource(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/runs/")
	parts := strings.Split(rest, "/")
	switch {
	case len(parts) == 2 && parts[1] == "moves":
		if r.Method != http.MethodGet {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		s.serveRunMoves(w, r, parts[0])
	case len(parts) == 4 && parts[1] == "moves" && parts[3] == "done":
		if r.Method != http.MethodPost {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		s.serveMarkMoveDone(w, r, parts[2])
	default:
		s.writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *apiServer) serveRunMoves(w http.ResponseWriter, r *http.Request, runID string) {
	run, err := s.daemon.store.GetRun(r.Context(), runID)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if run == nil {
		s.writeError(w, http.StatusNotFound, "run not found")
		return
	}
	moves, err := s.daemon.store.ListMovesForRun(r.Context(), runID)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.MoveListResponse{Moves: api.FromMoves(moves)})
}

func (s *apiServer) serveMarkMoveDone(w http.ResponseWriter, r *http.Request, moveIDStr string) {
	moveID, err := strconv.ParseInt(moveIDStr, 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid move id")
		return
	}
	if err := s.daemon.binningSvc.MarkMoveDone(r.Context(), moveID, true); err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"done": true})
}

func (s *apiServer) handleEarlyWarning(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	rows, err := s.daemon.reportSvc.EarlyWarning(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"rows": rows})
}

func (s *apiServer) handleFirstLast(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	zoneCode := strings.TrimSpace(r.URL.Query().Get("zone"))
	if zoneCode == "" {
		s.writeError(w, http.StatusBadRequest, "zone query parameter is required")
		return
	}
	rows, err := s.daemon.reportSvc.FirstLast(r.Context(), zoneCode)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"rows": rows})
}

func (s *apiServer) writeServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrValidation):
		status = http.StatusBadRequest
	}
	s.writeError(w, status, err.Error())
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return s.logger.With(logging.String(logging.FieldComponent, "api-server"))
	}
	return logging.NewNop()
}
