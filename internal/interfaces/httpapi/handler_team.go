package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/riskibarqy/fpl-insights/internal/usecase"
)

func (h *Handler) GetMyTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMyTeam")
	defer span.End()

	raw := r.PathValue("entryID")
	entryID, err := strconv.Atoi(raw)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: entry id %q is not a number", usecase.ErrInvalidInput, raw))
		return
	}

	team, err := h.teamService.MyTeam(ctx, entryID)
	if err != nil {
		h.logger.WarnContext(ctx, "my team lookup failed", "entry_id", entryID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, team)
}
