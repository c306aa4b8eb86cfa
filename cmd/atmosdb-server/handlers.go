package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/invopop/jsonschema"

	"github.com/daniacca/atmosdb/internal/atmos"
	"github.com/daniacca/atmosdb/internal/chamber"
	"github.com/daniacca/atmosdb/internal/chamber/notifiers"
	"github.com/daniacca/atmosdb/internal/store"
)

const (
	defaultRunInterval = 1000 * time.Millisecond
	maxTicksPerRequest = 10000
)

// extractChamberID splits /chamber/{id}/rest into the id and "/rest".
func extractChamberID(path string) (chamber.ID, string) {
	if !strings.HasPrefix(path, "/chamber/") {
		return "", ""
	}
	rest := strings.TrimPrefix(path, "/chamber/")
	idx := strings.Index(rest, "/")
	if idx == -1 {
		return chamber.ID(rest), ""
	}
	return chamber.ID(rest[:idx]), rest[idx:]
}

// extractNotifierID splits /notifiers/{id}/rest into the id and "/rest".
func extractNotifierID(path string) (string, string) {
	if !strings.HasPrefix(path, "/notifiers/") {
		return "", ""
	}
	rest := strings.TrimPrefix(path, "/notifiers/")
	idx := strings.Index(rest, "/")
	if idx == -1 {
		return rest, ""
	}
	return rest[:idx], rest[idx:]
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warnf("Failed to encode response: error=%v", err)
	}
}

func writeText(w http.ResponseWriter, msg string) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(msg))
}

// chamberFromPath resolves the chamber named in the request path, writing
// the error response when it cannot.
func (s *Server) chamberFromPath(w http.ResponseWriter, r *http.Request) (*chamber.Chamber, bool) {
	id, _ := extractChamberID(r.URL.Path)
	if id == "" {
		http.Error(w, "chamber ID is required in path: /chamber/{id}/...", http.StatusBadRequest)
		return nil, false
	}
	c, exists := s.manager.GetChamber(id)
	if !exists {
		http.Error(w, "chamber not found", http.StatusNotFound)
		return nil, false
	}
	return c, true
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeText(w, "ok")
}

// GET /ruleset/schema
// JSON Schema of the ruleset document accepted by POST /chamber/{id}/ruleset
func (s *Server) handleRulesetSchema(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	reflector := jsonschema.Reflector{}
	schema := reflector.Reflect(new(atmos.RulesetConfig))
	schema.Title = "AtmosDB ruleset"
	schema.Description = "Gas species and reaction rules loaded into a chamber"
	s.writeJSON(w, http.StatusOK, schema)
}

// handleChambers routes /chambers requests
func (s *Server) handleChambers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListChambers(w, r)
	case http.MethodPost:
		s.handleCreateChamber(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// GET /chambers
func (s *Server) handleListChambers(w http.ResponseWriter, _ *http.Request) {
	chamberIDs := s.manager.ListChambers()
	ids := make([]string, len(chamberIDs))
	for i, id := range chamberIDs {
		ids[i] = string(id)
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"chambers": ids})
}

type rulesetResponse struct {
	ChamberID string `json:"chamber_id"`
	Ruleset   string `json:"ruleset"`
	Rules     int    `json:"rules"`
	Created   bool   `json:"created"`
}

// POST /chamber/{id}/ruleset
// Body: RulesetConfig JSON
// Creates the chamber with the ruleset, or swaps the ruleset of an existing one
func (s *Server) handleRuleset(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	id, _ := extractChamberID(r.URL.Path)
	if id == "" {
		http.Error(w, "chamber ID is required in path: /chamber/{id}/ruleset", http.StatusBadRequest)
		return
	}

	var cfg atmos.RulesetConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		http.Error(w, "invalid ruleset json: "+err.Error(), http.StatusBadRequest)
		return
	}
	rs, err := chamber.NewRuleset(cfg)
	if err != nil {
		http.Error(w, "cannot build ruleset: "+err.Error(), http.StatusBadRequest)
		return
	}

	created := true
	if _, err := s.manager.CreateChamber(id, rs); err != nil {
		if !errors.Is(err, chamber.ErrChamberExists) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := s.manager.UpdateChamberRuleset(id, rs); err != nil {
			s.logger.Warnf("Failed to update chamber ruleset: chamber_id=%s error=%v", id, err)
			http.Error(w, "cannot update chamber: "+err.Error(), http.StatusConflict)
			return
		}
		created = false
		s.logger.Infof("Chamber ruleset updated: chamber_id=%s ruleset=%s", id, cfg.Name)
	} else {
		s.logger.Infof("Chamber created: chamber_id=%s ruleset=%s", id, cfg.Name)
	}

	s.writeJSON(w, http.StatusOK, rulesetResponse{
		ChamberID: string(id),
		Ruleset:   cfg.Name,
		Rules:     len(rs.Engine.Rules()),
		Created:   created,
	})
}

// POST /chambers
// Body: optional RulesetConfig JSON; the standard ruleset is used when empty
// Creates a chamber under a server-generated ID
func (s *Server) handleCreateChamber(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	rs := chamber.StandardRuleset()
	var cfg atmos.RulesetConfig
	err := json.NewDecoder(r.Body).Decode(&cfg)
	switch {
	case errors.Is(err, io.EOF):
	case err != nil:
		http.Error(w, "invalid ruleset json: "+err.Error(), http.StatusBadRequest)
		return
	default:
		rs, err = chamber.NewRuleset(cfg)
		if err != nil {
			http.Error(w, "cannot build ruleset: "+err.Error(), http.StatusBadRequest)
			return
		}
	}

	var c *chamber.Chamber
	for attempt := 0; attempt < 3; attempt++ {
		c, err = s.manager.CreateChamber(chamber.ID(chamber.NewRandomID()), rs)
		if !errors.Is(err, chamber.ErrChamberExists) {
			break
		}
	}
	if err != nil {
		http.Error(w, "cannot create chamber: "+err.Error(), http.StatusInternalServerError)
		return
	}
	s.logger.Infof("Chamber created: chamber_id=%s ruleset=%s", c.ID(), rs.Config.Name)

	s.writeJSON(w, http.StatusCreated, rulesetResponse{
		ChamberID: string(c.ID()),
		Ruleset:   rs.Config.Name,
		Rules:     len(rs.Engine.Rules()),
		Created:   true,
	})
}

type rulesResponse struct {
	Ruleset string             `json:"ruleset"`
	Rules   []atmos.RuleConfig `json:"rules"`
}

// GET /chamber/{id}/rules
func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	c, ok := s.chamberFromPath(w, r)
	if !ok {
		return
	}
	rs := c.Ruleset()
	s.writeJSON(w, http.StatusOK, rulesResponse{Ruleset: rs.Config.Name, Rules: rs.Rules()})
}

type mixtureResponse struct {
	ChamberID string                `json:"chamber_id"`
	Tick      int64                 `json:"tick"`
	Running   bool                  `json:"running"`
	Mixture   atmos.MixtureSnapshot `json:"mixture"`
	Eligible  []string              `json:"eligible"`
}

func (s *Server) writeMixture(w http.ResponseWriter, c *chamber.Chamber) {
	s.writeJSON(w, http.StatusOK, mixtureResponse{
		ChamberID: string(c.ID()),
		Tick:      c.Tick(),
		Running:   c.IsRunning(),
		Mixture:   c.Mixture(),
		Eligible:  c.Preview(),
	})
}

// GET /chamber/{id}/mixture
func (s *Server) handleGetMixture(w http.ResponseWriter, r *http.Request) {
	c, ok := s.chamberFromPath(w, r)
	if !ok {
		return
	}
	s.writeMixture(w, c)
}

// PUT /chamber/{id}/mixture
// Body: MixtureSnapshot JSON
func (s *Server) handleReplaceMixture(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	c, ok := s.chamberFromPath(w, r)
	if !ok {
		return
	}

	var snap atmos.MixtureSnapshot
	if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
		http.Error(w, "invalid mixture json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := c.ReplaceMixture(snap); err != nil {
		http.Error(w, "cannot replace mixture: "+err.Error(), http.StatusBadRequest)
		return
	}
	s.logger.Debugf("Mixture replaced: chamber_id=%s gases=%d", c.ID(), len(snap.Gases))
	s.writeMixture(w, c)
}

// POST /chamber/{id}/gas
// Body: { "gas": "o2", "moles": 10, "temperature": 293.15 }
type addGasRequest struct {
	Gas         string  `json:"gas"`
	Moles       float64 `json:"moles"`
	Temperature float64 `json:"temperature,omitempty"`
}

func (s *Server) handleAddGas(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	c, ok := s.chamberFromPath(w, r)
	if !ok {
		return
	}

	var req addGasRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := c.AddGas(atmos.SpeciesID(req.Gas), req.Moles, req.Temperature); err != nil {
		http.Error(w, "cannot add gas: "+err.Error(), http.StatusBadRequest)
		return
	}
	s.logger.Debugf("Gas added: chamber_id=%s gas=%s moles=%v", c.ID(), req.Gas, req.Moles)
	s.writeMixture(w, c)
}

type removeResponse struct {
	Removed atmos.MixtureSnapshot `json:"removed"`
	Mixture atmos.MixtureSnapshot `json:"mixture"`
}

// POST /chamber/{id}/remove?amount=<moles> or ?ratio=<fraction>
func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	c, ok := s.chamberFromPath(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	amountStr, ratioStr := q.Get("amount"), q.Get("ratio")
	if (amountStr == "") == (ratioStr == "") {
		http.Error(w, "exactly one of amount or ratio is required", http.StatusBadRequest)
		return
	}

	var (
		removed atmos.MixtureSnapshot
		err     error
	)
	if amountStr != "" {
		amount, perr := strconv.ParseFloat(amountStr, 64)
		if perr != nil {
			http.Error(w, "invalid amount: "+perr.Error(), http.StatusBadRequest)
			return
		}
		removed, err = c.Remove(amount)
	} else {
		ratio, perr := strconv.ParseFloat(ratioStr, 64)
		if perr != nil {
			http.Error(w, "invalid ratio: "+perr.Error(), http.StatusBadRequest)
			return
		}
		removed, err = c.RemoveRatio(ratio)
	}
	if err != nil {
		http.Error(w, "cannot remove gas: "+err.Error(), http.StatusBadRequest)
		return
	}
	s.writeJSON(w, http.StatusOK, removeResponse{Removed: removed, Mixture: c.Mixture()})
}

type tickResponse struct {
	ChamberID string                `json:"chamber_id"`
	Tick      int64                 `json:"tick"`
	Results   []atmos.Result        `json:"results"`
	Mixture   atmos.MixtureSnapshot `json:"mixture"`
}

// POST /chamber/{id}/tick
// Steps the chamber once, or ?count=N times
func (s *Server) handleTick(w http.ResponseWriter, r *http.Request) {
	c, ok := s.chamberFromPath(w, r)
	if !ok {
		return
	}

	count := 1
	if countStr := r.URL.Query().Get("count"); countStr != "" {
		n, err := strconv.Atoi(countStr)
		if err != nil || n <= 0 || n > maxTicksPerRequest {
			http.Error(w, fmt.Sprintf("invalid count: must be an integer between 1 and %d", maxTicksPerRequest), http.StatusBadRequest)
			return
		}
		count = n
	}

	results := make([]atmos.Result, 0, count)
	for i := 0; i < count; i++ {
		res, err := c.Step(r.Context())
		if err != nil {
			http.Error(w, fmt.Sprintf("step failed at tick %d: %v", c.Tick(), err), http.StatusInternalServerError)
			return
		}
		results = append(results, res)
	}

	s.writeJSON(w, http.StatusOK, tickResponse{
		ChamberID: string(c.ID()),
		Tick:      c.Tick(),
		Results:   results,
		Mixture:   c.Mixture(),
	})
}

// POST /chamber/{id}/start
// Query param: interval in milliseconds (default: 1000ms)
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	c, ok := s.chamberFromPath(w, r)
	if !ok {
		return
	}

	interval := defaultRunInterval
	if intervalStr := r.URL.Query().Get("interval"); intervalStr != "" {
		ms, err := strconv.Atoi(intervalStr)
		if err != nil || ms <= 0 {
			http.Error(w, "invalid interval: must be a positive integer (milliseconds)", http.StatusBadRequest)
			return
		}
		interval = time.Duration(ms) * time.Millisecond
	}

	if err := c.Run(interval); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.logger.Infof("Chamber started: chamber_id=%s interval=%v", c.ID(), interval)
	writeText(w, "chamber started")
}

// POST /chamber/{id}/stop
func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	c, ok := s.chamberFromPath(w, r)
	if !ok {
		return
	}
	c.Stop()
	s.logger.Infof("Chamber stopped: chamber_id=%s", c.ID())
	writeText(w, "chamber stopped")
}

type snapshotResponse struct {
	Status    string `json:"status"`
	ChamberID string `json:"chamber_id"`
	Tick      int64  `json:"tick"`
	Driver    string `json:"driver"`
}

// POST /chamber/{id}/snapshot
// Writes the chamber state to the snapshot store synchronously
func (s *Server) handleSaveSnapshot(w http.ResponseWriter, r *http.Request) {
	c, ok := s.chamberFromPath(w, r)
	if !ok {
		return
	}

	rec, err := c.SaveSnapshot(r.Context())
	if errors.Is(err, chamber.ErrNoStore) {
		http.Error(w, "snapshot store not configured", http.StatusServiceUnavailable)
		return
	}
	if err != nil {
		s.logger.Errorf("Failed to save snapshot: chamber_id=%s error=%v", c.ID(), err)
		http.Error(w, "failed to save snapshot: "+err.Error(), http.StatusInternalServerError)
		return
	}
	s.logger.Debugf("Snapshot saved: chamber_id=%s tick=%d", c.ID(), rec.Tick)

	s.writeJSON(w, http.StatusOK, snapshotResponse{
		Status:    "ok",
		ChamberID: rec.ChamberID,
		Tick:      rec.Tick,
		Driver:    string(s.manager.Store().Driver()),
	})
}

// GET /chamber/{id}/snapshot
// Returns the stored record if one exists
func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	c, ok := s.chamberFromPath(w, r)
	if !ok {
		return
	}
	st := s.manager.Store()
	if st == nil {
		http.Error(w, "snapshot store not configured", http.StatusServiceUnavailable)
		return
	}

	rec, err := st.Load(r.Context(), string(c.ID()))
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "snapshot not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "failed to read snapshot: "+err.Error(), http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

// POST /chamber/{id}/restore
// Resumes the chamber from its stored record
func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	c, ok := s.chamberFromPath(w, r)
	if !ok {
		return
	}

	rec, err := c.Restore(r.Context())
	switch {
	case errors.Is(err, chamber.ErrNoStore):
		http.Error(w, "snapshot store not configured", http.StatusServiceUnavailable)
		return
	case errors.Is(err, store.ErrNotFound):
		http.Error(w, "snapshot not found", http.StatusNotFound)
		return
	case err != nil:
		http.Error(w, "failed to restore snapshot: "+err.Error(), http.StatusInternalServerError)
		return
	}
	s.logger.Infof("Chamber restored: chamber_id=%s tick=%d", c.ID(), rec.Tick)
	s.writeJSON(w, http.StatusOK, rec)
}

// DELETE /chamber/{id}
func (s *Server) handleDeleteChamber(w http.ResponseWriter, r *http.Request) {
	id, _ := extractChamberID(r.URL.Path)
	if id == "" {
		http.Error(w, "chamber ID is required in path: /chamber/{id}", http.StatusBadRequest)
		return
	}

	if err := s.manager.DeleteChamber(id); err != nil {
		s.logger.Warnf("Failed to delete chamber: chamber_id=%s error=%v", id, err)
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	s.logger.Infof("Chamber deleted: chamber_id=%s", id)
	writeText(w, "chamber deleted")
}

// handleChamberRoutes routes /chamber/{id}/... requests
func (s *Server) handleChamberRoutes(w http.ResponseWriter, r *http.Request) {
	id, remainingPath := extractChamberID(r.URL.Path)
	if id == "" {
		http.Error(w, "chamber ID is required in path: /chamber/{id}/...", http.StatusBadRequest)
		return
	}

	switch {
	case remainingPath == "/ruleset" && r.Method == http.MethodPost:
		s.handleRuleset(w, r)
	case remainingPath == "/rules" && r.Method == http.MethodGet:
		s.handleRules(w, r)
	case remainingPath == "/mixture" && r.Method == http.MethodGet:
		s.handleGetMixture(w, r)
	case remainingPath == "/mixture" && r.Method == http.MethodPut:
		s.handleReplaceMixture(w, r)
	case remainingPath == "/gas" && r.Method == http.MethodPost:
		s.handleAddGas(w, r)
	case remainingPath == "/remove" && r.Method == http.MethodPost:
		s.handleRemove(w, r)
	case remainingPath == "/tick" && r.Method == http.MethodPost:
		s.handleTick(w, r)
	case remainingPath == "/start" && r.Method == http.MethodPost:
		s.handleStart(w, r)
	case remainingPath == "/stop" && r.Method == http.MethodPost:
		s.handleStop(w, r)
	case remainingPath == "/snapshot" && r.Method == http.MethodPost:
		s.handleSaveSnapshot(w, r)
	case remainingPath == "/snapshot" && r.Method == http.MethodGet:
		s.handleGetSnapshot(w, r)
	case remainingPath == "/restore" && r.Method == http.MethodPost:
		s.handleRestore(w, r)
	case remainingPath == "" && r.Method == http.MethodDelete:
		s.handleDeleteChamber(w, r)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

// handleNotifiersRoutes routes /notifiers and /notifiers/{id}/... requests
func (s *Server) handleNotifiersRoutes(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/notifiers" {
		switch r.Method {
		case http.MethodGet:
			s.handleListNotifiers(w, r)
		case http.MethodPost:
			s.handleRegisterNotifier(w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	_, remainingPath := extractNotifierID(r.URL.Path)
	switch {
	case remainingPath == "" && r.Method == http.MethodDelete:
		s.handleUnregisterNotifier(w, r)
	case remainingPath == "/ws" && r.Method == http.MethodGet:
		s.handleNotifierWebSocket(w, r)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

type notifierInfo struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	URL    string `json:"url,omitempty"`
	WSPath string `json:"ws_path,omitempty"`
}

func describeNotifier(n chamber.Notifier) notifierInfo {
	info := notifierInfo{ID: n.ID(), Type: n.Type()}
	switch v := n.(type) {
	case *notifiers.WebhookNotifier:
		info.URL = v.URL()
	case *notifiers.WebSocketNotifier:
		info.WSPath = "/notifiers/" + v.ID() + "/ws"
	}
	return info
}

// GET /notifiers
func (s *Server) handleListNotifiers(w http.ResponseWriter, _ *http.Request) {
	ids := s.notifications.ListNotifiers()
	list := make([]notifierInfo, 0, len(ids))
	for _, id := range ids {
		if n, exists := s.notifications.GetNotifier(id); exists {
			list = append(list, describeNotifier(n))
		}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"notifiers": list})
}

// POST /notifiers
// Body: { "type": "webhook", "id": "my-webhook", "config": { "url": "http://...", "headers": {...} } }
// or    { "type": "websocket", "id": "live" }
type registerNotifierRequest struct {
	Type   string         `json:"type"`
	ID     string         `json:"id"`
	Config map[string]any `json:"config"`
}

func (s *Server) handleRegisterNotifier(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req registerNotifierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.ID == "" {
		http.Error(w, "notifier ID is required", http.StatusBadRequest)
		return
	}

	var notifier chamber.Notifier
	switch req.Type {
	case "webhook":
		url, ok := req.Config["url"].(string)
		if !ok || url == "" {
			http.Error(w, "webhook URL is required", http.StatusBadRequest)
			return
		}
		wh := notifiers.NewWebhookNotifier(req.ID, url)
		if headers, ok := req.Config["headers"].(map[string]any); ok {
			for k, v := range headers {
				if vStr, ok := v.(string); ok {
					wh.SetHeader(k, vStr)
				}
			}
		}
		notifier = wh
	case "websocket":
		notifier = notifiers.NewWebSocketNotifier(req.ID)
	default:
		http.Error(w, "unknown notifier type: "+req.Type, http.StatusBadRequest)
		return
	}

	if err := s.notifications.RegisterNotifier(notifier); err != nil {
		_ = notifier.Close()
		http.Error(w, "cannot register notifier: "+err.Error(), http.StatusBadRequest)
		return
	}
	s.logger.Infof("Notifier registered: notifier_id=%s type=%s", req.ID, req.Type)
	s.writeJSON(w, http.StatusOK, describeNotifier(notifier))
}

// DELETE /notifiers/{id}
func (s *Server) handleUnregisterNotifier(w http.ResponseWriter, r *http.Request) {
	notifierID, _ := extractNotifierID(r.URL.Path)
	if notifierID == "" {
		http.Error(w, "notifier ID is required", http.StatusBadRequest)
		return
	}

	if err := s.notifications.UnregisterNotifier(notifierID); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	s.logger.Infof("Notifier unregistered: notifier_id=%s", notifierID)
	writeText(w, "notifier unregistered")
}

// GET /notifiers/{id}/ws
// Upgrades to a WebSocket that receives the notifier's reaction events
func (s *Server) handleNotifierWebSocket(w http.ResponseWriter, r *http.Request) {
	notifierID, _ := extractNotifierID(r.URL.Path)
	n, exists := s.notifications.GetNotifier(notifierID)
	if !exists {
		http.Error(w, "notifier not found", http.StatusNotFound)
		return
	}
	ws, ok := n.(*notifiers.WebSocketNotifier)
	if !ok {
		http.Error(w, "notifier "+notifierID+" does not accept websocket clients", http.StatusBadRequest)
		return
	}
	ws.ServeHTTP(w, r)
}
