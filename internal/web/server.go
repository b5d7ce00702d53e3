package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"image-converter-go/internal/codec"
	"image-converter-go/internal/engine"
	"image-converter-go/internal/formats"
	"image-converter-go/internal/inspect"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Server exposes one engine over HTTP. Only one discovery or conversion runs at a
// time; configuration changes are refused while it does.
type Server struct {
	engine     *engine.Engine
	inspector  *inspect.Inspector
	log        *logrus.Logger
	router     *mux.Router
	httpServer *http.Server
	wsUpgrader websocket.Upgrader
	wsClients  map[*websocket.Conn]bool
	wsMutex    sync.Mutex

	// Current operation state
	operationMutex sync.RWMutex
	isRunning      bool
	cancelPending  bool
	operationID    string
	operation      string
	progress       Progress
	state          EngineState
}

type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type PathRequest struct {
	Path string `json:"path"`
}

type FilterRequest struct {
	Extensions []string `json:"extensions"`
}

type ScaleRequest struct {
	Percent int `json:"percent"`
}

// EngineState is the engine configuration as last seen outside an operation.
type EngineState struct {
	SourcePath   string   `json:"source_path"`
	OutputPath   string   `json:"output_path"`
	SelectedAt   string   `json:"selected_at,omitempty"`
	SourceFilter []string `json:"source_extensions"`
	OutputFilter []string `json:"output_extensions"`
	ScalePercent int      `json:"scale_percent"`
	Targets      int      `json:"targets"`
}

// Progress is the latest report of the running operation.
type Progress struct {
	Phase   string `json:"phase,omitempty"`
	Matches int    `json:"matches"`
	Scanned int    `json:"scanned"`
	Current string `json:"current,omitempty"`
	Handled int    `json:"handled"`
	Total   int    `json:"total"`
}

type TargetInfo struct {
	Name    string               `json:"name"`
	Path    string               `json:"path"`
	Errors  []engine.ErrorRecord `json:"errors"`
	Outputs []string             `json:"outputs"`
}

type FormatInfo struct {
	Name      string   `json:"name"`
	Spellings []string `json:"spellings"`
	CanEncode bool     `json:"can_encode"`
}

type WSMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

func NewServer(eng *engine.Engine, inspector *inspect.Inspector, log *logrus.Logger) *Server {
	s := &Server{
		engine:    eng,
		inspector: inspector,
		log:       log,
		router:    mux.NewRouter(),
		wsClients: make(map[*websocket.Conn]bool),
		wsUpgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}

	eng.SetLogHook(func(level, message string) {
		s.broadcastWSMessage("log", map[string]interface{}{
			"level":   level,
			"message": message,
		})
	})
	s.state = s.captureState()
	s.setupRoutes()
	return s
}

// Handler returns the HTTP handler serving the API.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/status", s.handleStatus).Methods("GET")
	api.HandleFunc("/statistics", s.handleGetStatistics).Methods("GET")
	api.HandleFunc("/formats", s.handleFormats).Methods("GET")
	api.HandleFunc("/source", s.handleSetSource).Methods("POST")
	api.HandleFunc("/source", s.handleClearSource).Methods("DELETE")
	api.HandleFunc("/output", s.handleSetOutput).Methods("POST")
	api.HandleFunc("/output", s.handleClearOutput).Methods("DELETE")
	api.HandleFunc("/filters/{kind:source|output}", s.handleSetFilter).Methods("PUT")
	api.HandleFunc("/scale", s.handleSetScale).Methods("PUT")
	api.HandleFunc("/discover", s.handleDiscover).Methods("POST")
	api.HandleFunc("/convert", s.handleConvert).Methods("POST")
	api.HandleFunc("/cancel", s.handleCancel).Methods("POST")
	api.HandleFunc("/targets", s.handleTargets).Methods("GET")
	api.HandleFunc("/inspect", s.handleInspect).Methods("GET")

	s.router.HandleFunc("/ws", s.handleWebSocket)
}

func (s *Server) Start(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	s.log.Infof("Starting web server on http://%s", addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.engine.RequestCancelDiscovery()
	s.engine.RequestCancelConversion()
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.operationMutex.RLock()
	data := map[string]interface{}{
		"running":      s.isRunning,
		"operation":    s.operation,
		"operation_id": s.operationID,
		"progress":     s.progress,
		"engine":       s.state,
	}
	s.operationMutex.RUnlock()

	s.writeJSON(w, APIResponse{Success: true, Data: data})
}

func (s *Server) handleGetStatistics(w http.ResponseWriter, r *http.Request) {
	stats := s.engine.Statistics()
	s.writeJSON(w, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"summary":  stats.GetSummary(),
			"counters": stats.Snapshot(),
		},
	})
}

func (s *Server) handleFormats(w http.ResponseWriter, r *http.Request) {
	list := make([]FormatInfo, 0, len(formats.All))
	for _, ext := range formats.All {
		list = append(list, FormatInfo{
			Name:      string(ext),
			Spellings: ext.Spellings(),
			CanEncode: codec.CanEncode(ext),
		})
	}
	s.writeJSON(w, APIResponse{Success: true, Data: list})
}

func (s *Server) handleSetSource(w http.ResponseWriter, r *http.Request) {
	var req PathRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	s.configure(w, "Source folder set", func() error {
		return s.engine.SetSourcePath(req.Path)
	})
}

func (s *Server) handleClearSource(w http.ResponseWriter, r *http.Request) {
	s.configure(w, "Source folder cleared", func() error {
		s.engine.ClearSourcePath()
		return nil
	})
}

func (s *Server) handleSetOutput(w http.ResponseWriter, r *http.Request) {
	var req PathRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	s.configure(w, "Output folder set", func() error {
		return s.engine.SetOutputPath(req.Path)
	})
}

func (s *Server) handleClearOutput(w http.ResponseWriter, r *http.Request) {
	s.configure(w, "Output folder cleared", func() error {
		s.engine.ClearOutputPath()
		return nil
	})
}

func (s *Server) handleSetFilter(w http.ResponseWriter, r *http.Request) {
	var req FilterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	filter, err := formats.ParseFilter(req.Extensions)
	if err != nil {
		s.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	kind := mux.Vars(r)["kind"]
	s.configure(w, fmt.Sprintf("%s extensions set to %s", kind, filter), func() error {
		if kind == "source" {
			s.engine.SetSourceFilter(filter)
		} else {
			s.engine.SetOutputFilter(filter)
		}
		return nil
	})
}

func (s *Server) handleSetScale(w http.ResponseWriter, r *http.Request) {
	var req ScaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	s.configure(w, fmt.Sprintf("Scale set to %d%%", req.Percent), func() error {
		return s.engine.SetScale(req.Percent)
	})
}

// configure applies a configuration change unless an operation is running.
func (s *Server) configure(w http.ResponseWriter, message string, apply func() error) {
	s.operationMutex.Lock()
	defer s.operationMutex.Unlock()

	if s.isRunning {
		s.writeError(w, "Operation already in progress", http.StatusConflict)
		return
	}
	if err := apply(); err != nil {
		s.writeError(w, err.Error(), statusFor(err))
		return
	}
	s.state = s.captureState()
	s.writeJSON(w, APIResponse{Success: true, Message: message, Data: s.state})
}

func (s *Server) handleDiscover(w http.ResponseWriter, r *http.Request) {
	id, err := s.beginOperation("discover", func() error {
		if s.engine.SourcePath() == "" {
			return engine.ErrSourceNotSet
		}
		return nil
	})
	if err != nil {
		s.writeError(w, err.Error(), statusFor(err))
		return
	}

	go s.runDiscoverAsync(id)

	s.writeJSONStatus(w, http.StatusAccepted, APIResponse{
		Success: true,
		Message: "Discovery started",
		Data:    map[string]string{"operation_id": id},
	})
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	id, err := s.beginOperation("convert", func() error {
		if s.engine.OutputPath() == "" {
			return engine.ErrOutputNotSet
		}
		return nil
	})
	if err != nil {
		s.writeError(w, err.Error(), statusFor(err))
		return
	}

	go s.runConvertAsync(id)

	s.writeJSONStatus(w, http.StatusAccepted, APIResponse{
		Success: true,
		Message: "Conversion started",
		Data:    map[string]string{"operation_id": id},
	})
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	s.operationMutex.Lock()
	running := s.isRunning
	operation := s.operation
	if running {
		s.cancelPending = true
	}
	s.operationMutex.Unlock()

	if !running {
		s.writeError(w, "No operation in progress", http.StatusConflict)
		return
	}

	if operation == "discover" {
		s.engine.RequestCancelDiscovery()
	} else {
		s.engine.RequestCancelConversion()
	}

	s.writeJSON(w, APIResponse{
		Success: true,
		Message: "Cancel requested",
	})
}

func (s *Server) handleTargets(w http.ResponseWriter, r *http.Request) {
	s.operationMutex.RLock()
	defer s.operationMutex.RUnlock()

	if s.isRunning {
		s.writeError(w, "Operation already in progress", http.StatusConflict)
		return
	}

	targets := make([]TargetInfo, 0, s.engine.Targets().Len())
	s.engine.Targets().Each(func(path string, entry *engine.TargetEntry) {
		info := TargetInfo{
			Name:    filepath.Base(path),
			Path:    path,
			Errors:  entry.Errors,
			Outputs: make([]string, 0, len(entry.Outputs)),
		}
		for _, out := range entry.Outputs {
			info.Outputs = append(info.Outputs, out.Path)
		}
		targets = append(targets, info)
	})

	s.writeJSON(w, APIResponse{Success: true, Data: targets})
}

func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		s.writeError(w, "Path is required", http.StatusBadRequest)
		return
	}

	s.operationMutex.RLock()
	scale := s.state.ScalePercent
	s.operationMutex.RUnlock()
	if raw := r.URL.Query().Get("scale"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > 100 {
			s.writeError(w, engine.ErrInvalidScale.Error(), http.StatusBadRequest)
			return
		}
		scale = v
	}

	report, err := s.inspector.Inspect(path, scale)
	if err != nil {
		s.writeError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	s.writeJSON(w, APIResponse{Success: true, Data: report})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Errorf("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	s.wsMutex.Lock()
	s.wsClients[conn] = true
	s.wsMutex.Unlock()

	s.log.Debug("WebSocket client connected")

	defer func() {
		s.wsMutex.Lock()
		delete(s.wsClients, conn)
		s.wsMutex.Unlock()
		s.log.Debug("WebSocket client disconnected")
	}()

	// Keep connection alive
	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			break
		}
	}
}

// beginOperation marks the server busy after check passes and returns the new operation ID.
func (s *Server) beginOperation(name string, check func() error) (string, error) {
	s.operationMutex.Lock()
	defer s.operationMutex.Unlock()

	if s.isRunning {
		return "", errBusy
	}
	if err := check(); err != nil {
		return "", err
	}

	s.isRunning = true
	s.cancelPending = false
	s.operation = name
	s.operationID = uuid.NewString()
	s.progress = Progress{Phase: name}
	return s.operationID, nil
}

func (s *Server) endOperation() {
	s.operationMutex.Lock()
	s.isRunning = false
	s.state = s.captureState()
	s.operationMutex.Unlock()
}

// setProgress stores p and reports whether a cancel was requested for the
// current operation. The engine resets its cancel flag when an operation starts,
// so callers re-arm it from the progress callback.
func (s *Server) setProgress(p Progress) bool {
	s.operationMutex.Lock()
	defer s.operationMutex.Unlock()
	s.progress = p
	return s.cancelPending
}

func (s *Server) runDiscoverAsync(id string) {
	s.broadcastWSMessage("discover_started", map[string]interface{}{
		"operation_id": id,
	})

	result, err := s.engine.Discover(func(matches, scanned int) {
		p := Progress{Phase: "discover", Matches: matches, Scanned: scanned}
		if s.setProgress(p) {
			s.engine.RequestCancelDiscovery()
		}
		s.broadcastWSMessage("discover_progress", p)
	})

	s.endOperation()

	if err != nil {
		s.log.Errorf("Discovery failed: %v", err)
		s.broadcastWSMessage("discover_error", map[string]interface{}{
			"operation_id": id,
			"error":        err.Error(),
		})
		return
	}
	s.broadcastWSMessage("discover_completed", map[string]interface{}{
		"operation_id": id,
		"found":        result.Targets.Len(),
		"errored":      len(result.ErroredKeys),
		"scanned":      result.Scanned,
		"canceled":     result.Canceled,
	})
}

func (s *Server) runConvertAsync(id string) {
	s.broadcastWSMessage("convert_started", map[string]interface{}{
		"operation_id": id,
	})

	result, err := s.engine.ConvertAll(func(current string, handled, total int) {
		p := Progress{Phase: "convert", Current: current, Handled: handled, Total: total}
		if s.setProgress(p) {
			s.engine.RequestCancelConversion()
		}
		s.broadcastWSMessage("convert_progress", p)
	})

	s.endOperation()

	if err != nil {
		s.log.Errorf("Conversion failed: %v", err)
		s.broadcastWSMessage("convert_error", map[string]interface{}{
			"operation_id": id,
			"error":        err.Error(),
		})
		return
	}
	s.broadcastWSMessage("convert_completed", map[string]interface{}{
		"operation_id": id,
		"handled":      result.Handled,
		"errored":      len(result.ErroredKeys),
		"canceled":     result.Canceled,
		"log_path":     result.LogPath,
		"statistics":   s.engine.Statistics().GetSummary(),
	})
}

// captureState must run while no operation is using the engine.
func (s *Server) captureState() EngineState {
	state := EngineState{
		SourcePath:   s.engine.SourcePath(),
		OutputPath:   s.engine.OutputPath(),
		SourceFilter: s.engine.SourceFilter().Names(),
		OutputFilter: s.engine.OutputFilter().Names(),
		ScalePercent: s.engine.ScalePercent(),
		Targets:      s.engine.Targets().Len(),
	}
	if at := s.engine.SelectedAt(); !at.IsZero() {
		state.SelectedAt = at.Format(time.RFC3339)
	}
	return state
}

func (s *Server) broadcastWSMessage(messageType string, data interface{}) {
	message := WSMessage{
		Type: messageType,
		Data: data,
	}

	msgBytes, err := json.Marshal(message)
	if err != nil {
		s.log.Errorf("Failed to marshal WebSocket message: %v", err)
		return
	}

	s.wsMutex.Lock()
	defer s.wsMutex.Unlock()

	for conn := range s.wsClients {
		if err := conn.WriteMessage(websocket.TextMessage, msgBytes); err != nil {
			s.log.Errorf("Failed to write WebSocket message: %v", err)
			delete(s.wsClients, conn)
			conn.Close()
		}
	}
}

var errBusy = errors.New("operation already in progress")

func statusFor(err error) int {
	switch {
	case errors.Is(err, errBusy):
		return http.StatusConflict
	case errors.Is(err, engine.ErrPathNotFound):
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}) {
	s.writeJSONStatus(w, http.StatusOK, data)
}

func (s *Server) writeJSONStatus(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(APIResponse{
		Success: false,
		Error:   message,
	})
}
