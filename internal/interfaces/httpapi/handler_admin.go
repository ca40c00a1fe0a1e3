package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/riskibarqy/fpl-insights/internal/domain/refreshrun"
	"github.com/riskibarqy/fpl-insights/internal/usecase"
)

type refreshRequest struct {
	// External schedulers hitting this endpoint can label their runs.
	Trigger string `json:"trigger" validate:"omitempty,oneof=manual scheduled"`
}

type refreshResultDTO struct {
	Trigger     string    `json:"trigger"`
	StatsGW     int       `json:"stats_gw"`
	TransfersGW int       `json:"transfers_gw"`
	PlayerCount int       `json:"player_count"`
	BuiltAt     time.Time `json:"built_at"`
}

func (h *Handler) RefreshSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RefreshSnapshot")
	defer span.End()

	req := refreshRequest{Trigger: string(refreshrun.TriggerManual)}
	if r.Body != nil {
		decoder := jsoniter.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
			return
		}
	}
	if req.Trigger == "" {
		req.Trigger = string(refreshrun.TriggerManual)
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	snap, err := h.statsService.Refresh(ctx, refreshrun.Trigger(req.Trigger))
	if err != nil {
		h.logger.ErrorContext(ctx, "forced refresh failed", "trigger", req.Trigger, "error", err)
		writeError(ctx, w, fmt.Errorf("%w: snapshot refresh failed: %v", usecase.ErrDependencyUnavailable, err))
		return
	}

	writeSuccess(ctx, w, http.StatusOK, refreshResultDTO{
		Trigger:     req.Trigger,
		StatsGW:     snap.Gameweeks.StatsGW,
		TransfersGW: snap.Gameweeks.TransfersGW,
		PlayerCount: len(snap.Players),
		BuiltAt:     snap.BuiltAt,
	})
}

func (h *Handler) GetCacheStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetCacheStatus")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, h.statsService.CacheStatus(ctx))
}
