// Package server exposes the simulator and its history over a JSON HTTP API.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/iwvelando/signal-timing/internal/history"
	"github.com/iwvelando/signal-timing/internal/simulation"
	"github.com/iwvelando/signal-timing/internal/traffic"
	"github.com/iwvelando/signal-timing/pkg/coerce"
	"github.com/iwvelando/signal-timing/pkg/constants"
	"github.com/iwvelando/signal-timing/pkg/validation"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type handler struct {
	logger      *zap.Logger
	runner      *simulation.Runner
	recorder    *history.Recorder
	maxBodySize int64
	version     string
}

// NewHandler constructs the HTTP handler for the simulation API. A nil runner
// uses the default runner; a nil recorder disables history.
func NewHandler(logger *zap.Logger, runner *simulation.Runner, recorder *history.Recorder, maxBodySize int64, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if runner == nil {
		runner = simulation.NewRunner(logger)
	}
	if recorder == nil {
		recorder = history.NewRecorder(logger, nil)
	}

	if maxBodySize <= 0 {
		maxBodySize = constants.DefaultMaxBodySizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:      logger,
		runner:      runner,
		recorder:    recorder,
		maxBodySize: maxBodySize,
		version:     trimmedVersion,
	}

	mux := http.NewServeMux()

	// Run one before/after comparison
	mux.HandleFunc("/api/simulate", h.handleSimulate)

	// Built-in scenarios and the default intersection for the editor
	mux.HandleFunc("/api/presets", h.handlePresets)
	mux.HandleFunc("/api/defaults", h.handleDefaults)

	// Past runs, most recent first
	mux.HandleFunc("/api/history", h.handleHistory)

	// Config serialization endpoint for editor downloads
	mux.HandleFunc("/api/editor/export", h.handleConfigExport)

	// Version endpoint for UI metadata
	mux.HandleFunc("/api/version", h.handleVersion)

	return mux
}

type simulateResponse struct {
	simulation.Result
	Warnings []string `json:"warnings,omitempty"`
	Saved    bool     `json:"saved"`
	Duration string   `json:"duration"`
}

type simulateRequest struct {
	raw  traffic.RawConfig
	save bool
}

func (h *handler) handleSimulate(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSimulate"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	payload, ok := h.decodeBody(w, r, op)
	if !ok {
		return
	}

	req, err := parseSimulateRequest(payload)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	validator := validation.IntersectionValidator{Raw: req.raw}
	warnings := validator.ValidateAll()

	result := h.runner.Run(req.raw)
	saved := false
	if req.save && h.recorder.Enabled() {
		h.recorder.SaveResult(result)
		saved = true
	}

	elapsed := time.Since(start)
	h.logger.Info("simulation served",
		zap.String("op", op),
		zap.String("id", result.ID),
		zap.Int("warnings", len(warnings)),
		zap.Bool("saved", saved),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, simulateResponse{
		Result:   result,
		Warnings: warnings,
		Saved:    saved,
		Duration: elapsed.String(),
	})
}

// parseSimulateRequest accepts a raw configuration, {"config": {...}} or
// {"preset": "name"}, each with an optional "save" flag. An empty request
// simulates the default intersection.
func parseSimulateRequest(payload map[string]interface{}) (simulateRequest, error) {
	req := simulateRequest{save: true}
	if value, ok := payload["save"]; ok {
		req.save = coerce.Bool(value)
		delete(payload, "save")
	}

	if value, ok := payload["preset"]; ok {
		name, _ := coerce.String(value)
		preset, found := traffic.LookupPreset(name)
		if !found {
			return req, fmt.Errorf("unknown preset %q", name)
		}
		req.raw = preset.Config.Raw()
		return req, nil
	}

	configPayload := payload
	if value, ok := payload["config"]; ok {
		cfgMap, ok := value.(map[string]interface{})
		if !ok {
			return req, errors.New("invalid config payload: expected object")
		}
		configPayload = cfgMap
	}

	if len(configPayload) == 0 {
		req.raw = traffic.DefaultConfig().Raw()
		return req, nil
	}
	req.raw = traffic.DecodeRaw(configPayload)
	return req, nil
}

func (h *handler) handlePresets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	h.writeJSON(w, http.StatusOK, traffic.Presets())
}

func (h *handler) handleDefaults(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	h.writeJSON(w, http.StatusOK, traffic.DefaultConfig())
}

func (h *handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.writeJSON(w, http.StatusOK, h.recorder.GetHistory())
	case http.MethodDelete:
		h.recorder.ClearHistory()
		h.logger.Info("simulation history cleared", zap.String("op", "server.handleHistory"))
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	}
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) handleConfigExport(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleConfigExport"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	payload, ok := h.decodeBody(w, r, op)
	if !ok {
		return
	}

	yamlBytes, err := marshalOrderedConfigYAML(payload)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to encode configuration: %v", err), op)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"configYaml": string(yamlBytes),
	})
}

// decodeBody reads a JSON object from the size-limited request body. An
// empty body decodes to an empty object. On failure the error response has
// already been written.
func (h *handler) decodeBody(w http.ResponseWriter, r *http.Request, op string) (map[string]interface{}, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds limit of %d bytes", h.maxBodySize), op)
			return nil, false
		}
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to read request: %v", err), op)
		return nil, false
	}

	payload := make(map[string]interface{})
	if len(bytes.TrimSpace(data)) == 0 {
		return payload, true
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to decode configuration: %v", err), op)
		return nil, false
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}
	return payload, true
}

var (
	runConfigKeys    = []string{"logging", "output", "history", "optimizer", "preset", "intersection"}
	intersectionKeys = []string{"cycleLength", "lanes", "signalTiming"}
	directionKeys    = lo.Map(traffic.Directions, func(dir traffic.Direction, _ int) string {
		return string(dir)
	})
)

// marshalOrderedConfigYAML writes either a run configuration (when it has an
// intersection section) or a bare intersection, with keys in reading order
// and approaches in north, south, east, west order.
func marshalOrderedConfigYAML(payload map[string]interface{}) ([]byte, error) {
	if _, ok := payload["intersection"]; ok {
		ordered := newOrderedConfig(payload, runConfigKeys)
		for i, item := range ordered.items {
			if nested, ok := item.value.(map[string]interface{}); ok && item.key == "intersection" {
				ordered.items[i].value = orderIntersection(nested)
			}
		}
		return yaml.Marshal(ordered)
	}
	return yaml.Marshal(orderIntersection(payload))
}

func orderIntersection(m map[string]interface{}) orderedConfig {
	ordered := newOrderedConfig(m, intersectionKeys)
	for i, item := range ordered.items {
		if item.key != "lanes" && item.key != "signalTiming" {
			continue
		}
		if nested, ok := item.value.(map[string]interface{}); ok {
			ordered.items[i].value = newOrderedConfig(nested, directionKeys)
		}
	}
	return ordered
}

// newOrderedConfig lists the keys of m named in priority first, in that
// order, followed by the rest sorted.
func newOrderedConfig(m map[string]interface{}, priority []string) orderedConfig {
	items := make([]orderedItem, 0, len(m))
	seen := make(map[string]struct{})

	for _, key := range priority {
		if value, ok := m[key]; ok {
			items = append(items, orderedItem{key: key, value: value})
			seen[key] = struct{}{}
		}
	}

	remainingKeys := make([]string, 0, len(m))
	for key := range m {
		if _, already := seen[key]; already {
			continue
		}
		remainingKeys = append(remainingKeys, key)
	}
	sort.Strings(remainingKeys)
	for _, key := range remainingKeys {
		items = append(items, orderedItem{key: key, value: m[key]})
	}

	return orderedConfig{items: items}
}

type orderedConfig struct {
	items []orderedItem
}

type orderedItem struct {
	key   string
	value interface{}
}

func (o orderedConfig) MarshalYAML() (interface{}, error) {
	mapNode := &yaml.Node{
		Kind: yaml.MappingNode,
		Tag:  "!!map",
	}

	for _, item := range o.items {
		keyNode := &yaml.Node{
			Kind:  yaml.ScalarNode,
			Tag:   "!!str",
			Value: item.key,
		}
		valueNode := &yaml.Node{}
		if err := valueNode.Encode(item.value); err != nil {
			return nil, err
		}
		mapNode.Content = append(mapNode.Content, keyNode, valueNode)
	}

	return mapNode, nil
}

func (h *handler) respondError(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
