package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"mercator-hq/relay/pkg/models"
	"mercator-hq/relay/pkg/proxy"
	"mercator-hq/relay/pkg/proxy/types"
)

// ModelLister lists the models the relay exposes.
type ModelLister interface {
	List() []models.Info
}

// ModelsHandler serves GET /v1/models.
type ModelsHandler struct {
	lister  ModelLister
	created int64
	logger  *slog.Logger
}

// NewModelsHandler creates a models handler. Every entry reports the
// handler's creation time as its "created" timestamp.
func NewModelsHandler(lister ModelLister, logger *slog.Logger) *ModelsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ModelsHandler{lister: lister, created: time.Now().Unix(), logger: logger}
}

// ServeHTTP implements http.Handler.
func (h *ModelsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		_ = proxy.WriteErrorResponse(w, types.NewInvalidRequestError(
			"Method "+r.Method+" not allowed. Use GET instead.", "method", "method_not_allowed"))
		return
	}

	infos := h.lister.List()
	list := types.ModelList{Object: "list", Data: make([]types.Model, 0, len(infos))}
	for _, info := range infos {
		list.Data = append(list.Data, types.Model{
			ID:      info.ID,
			Object:  "model",
			Created: h.created,
			OwnedBy: "google",
		})
	}

	if err := proxy.WriteJSONResponse(w, http.StatusOK, list); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to write models response", "error", err)
	}
}
