package httpapi

import (
	"net/http"

	"github.com/riskibarqy/fpl-insights/internal/domain/player"
	"github.com/riskibarqy/fpl-insights/internal/domain/view"
	"github.com/riskibarqy/fpl-insights/internal/usecase"
)

type overviewDTO struct {
	Headline  string                  `json:"headline,omitempty"`
	Gameweeks usecase.GameweekInfo    `json:"gameweeks"`
	Groups    []usecase.PositionGroup `json:"groups"`
}

type columnDTO struct {
	Field string `json:"field"`
	Label string `json:"label"`
}

type viewDTO struct {
	Name    string       `json:"name"`
	Title   string       `json:"title"`
	Columns []columnDTO  `json:"columns"`
	Players player.Table `json:"players"`
}

type searchRequest struct {
	Query string `validate:"required,min=1,max=60"`
}

func (h *Handler) GetOverview(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetOverview")
	defer span.End()

	groups, gameweeks := h.analysisService.Overview(ctx)

	writeSuccess(ctx, w, http.StatusOK, overviewDTO{
		Headline:  h.headlineService.Headline(ctx, gameweeks.Latest),
		Gameweeks: gameweeks,
		Groups:    groups,
	})
}

func (h *Handler) GetPosition(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPosition")
	defer span.End()

	position := r.PathValue("position")
	group, err := h.analysisService.Position(ctx, position)
	if err != nil {
		h.logger.WarnContext(ctx, "position board failed", "position", position, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, group)
}

func (h *Handler) GetDifferentials(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetDifferentials")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, h.analysisService.Differentials(ctx))
}

func (h *Handler) SearchPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SearchPlayers")
	defer span.End()

	req := searchRequest{Query: r.URL.Query().Get("q")}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	rows, err := h.analysisService.Search(ctx, req.Query)
	if err != nil {
		h.logger.WarnContext(ctx, "player search failed", "query", req.Query, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, rows)
}

func (h *Handler) ListViews(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListViews")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, view.Names())
}

func (h *Handler) GetView(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetView")
	defer span.End()

	name := r.PathValue("name")
	cfg, rows, err := h.analysisService.View(ctx, name)
	if err != nil {
		h.logger.WarnContext(ctx, "view lookup failed", "view", name, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, viewToDTO(cfg, rows))
}

func viewToDTO(cfg view.Config, rows player.Table) viewDTO {
	columns := make([]columnDTO, 0, len(cfg.Columns))
	for _, field := range cfg.Columns {
		columns = append(columns, columnDTO{
			Field: field,
			Label: view.Label(field),
		})
	}

	return viewDTO{
		Name:    cfg.Name,
		Title:   cfg.Title,
		Columns: columns,
		Players: rows,
	}
}
