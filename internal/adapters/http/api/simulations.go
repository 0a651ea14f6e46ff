package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	service "github.com/okian/podium/internal/app"
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/simulation"
	"github.com/okian/podium/internal/intake"
	"github.com/okian/podium/pkg/logger"
)

// simulationRequest mirrors the OpenAPI schema for POST /v1/simulations.
// Competitors go through the same parser as CLI JSON input, so alias keys
// are accepted here too.
type simulationRequest struct {
	RequestID       string          `json:"request_id"`
	Competitors     json.RawMessage `json:"competitors"`
	RemainingEvents *int            `json:"remaining_events"`
	Trials          int             `json:"trials"`
	Seed            uint64          `json:"seed"`
	Top             int             `json:"top"`
}

type simulationResponse struct {
	RequestID string `json:"request_id"`
	service.Outcome
}

// SimulationsHandler runs a simulation per request.
type SimulationsHandler struct {
	deps           Dependencies
	defaultTrials  int
	maxTrials      int
	maxCompetitors int
	maxBodyBytes   int64
	logger         logger.Logger
}

// NewSimulationsHandler creates a new simulations handler.
func NewSimulationsHandler(deps Dependencies) *SimulationsHandler {
	return &SimulationsHandler{
		deps:           deps,
		defaultTrials:  defaultTrials,
		maxTrials:      defaultMaxTrials,
		maxCompetitors: defaultMaxCompetitors,
		maxBodyBytes:   defaultMaxBodyBytes,
		logger:         logger.Get().Named("api"),
	}
}

// HandlePostSimulation handles POST /v1/simulations requests.
func (h *SimulationsHandler) HandlePostSimulation(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_simulation"
	ctx := r.Context()

	var req simulationRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	roster, err := h.validate(&req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	if h.deps.SeenAndRecord(ctx, req.RequestID) {
		writeError(w, http.StatusConflict, "conflict", NewKind(op, ErrConflict))
		return
	}
	defer h.deps.Unrecord(context.WithoutCancel(ctx), req.RequestID)

	out, err := h.deps.RunMonteCarlo(ctx, roster, *req.RemainingEvents, req.Trials,
		service.WithRunSeed(req.Seed),
		service.WithTop(req.Top),
	)
	if err != nil {
		status, code, kind := classify(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error(ctx, "simulation failed",
				logger.String("requestID", req.RequestID),
				logger.Error(err),
			)
		}
		writeError(w, status, code, WrapKind(op, kind, err))
		return
	}

	writeJSON(w, http.StatusOK, simulationResponse{RequestID: req.RequestID, Outcome: out})
}

func (h *SimulationsHandler) validate(req *simulationRequest) (model.Roster, error) {
	if len(req.Competitors) == 0 {
		return nil, errors.New("missing competitors")
	}
	roster, err := intake.ParseJSON(req.Competitors)
	if err != nil {
		return nil, err
	}
	if len(roster) > h.maxCompetitors {
		return nil, fmt.Errorf("too many competitors: %d > %d", len(roster), h.maxCompetitors)
	}

	switch {
	case req.RemainingEvents == nil:
		return nil, errors.New("missing remaining_events")
	case *req.RemainingEvents < 0:
		return nil, fmt.Errorf("remaining_events must not be negative: %w", simulation.ErrInvalidArgument)
	}

	switch {
	case req.Trials == 0:
		req.Trials = h.defaultTrials
	case req.Trials < 0:
		return nil, fmt.Errorf("trials must be positive: %w", simulation.ErrInvalidArgument)
	case req.Trials > h.maxTrials:
		return nil, fmt.Errorf("trials must not exceed %d", h.maxTrials)
	}

	if req.Top < 0 {
		return nil, errors.New("top must not be negative")
	}

	req.RequestID = strings.TrimSpace(req.RequestID)
	return roster, nil
}

// classify maps a run error to a status, a response code and an error kind.
func classify(err error) (int, string, error) {
	switch {
	case errors.Is(err, intake.ErrValidation), errors.Is(err, simulation.ErrInvalidArgument):
		return http.StatusBadRequest, "bad_request", ErrBadRequest
	case errors.Is(err, service.ErrStopped),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "unavailable", ErrUnavailable
	default:
		return http.StatusInternalServerError, "internal_error", ErrInternal
	}
}
