package handler

import (
	"net/http"

	"adhub/internal/adspaces/service"
	apperrors "adhub/pkg/errors"
	httputil "adhub/pkg/http"
	"adhub/pkg/logger"
	"adhub/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type AdSpaceHandler struct {
	service service.AdSpaceService
	log     *logger.Logger
}

func NewAdSpaceHandler(service service.AdSpaceService, log *logger.Logger) *AdSpaceHandler {
	return &AdSpaceHandler{
		service: service,
		log:     log,
	}
}

func (h *AdSpaceHandler) ListAvailable(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()

	var filter model.AdSpaceFilter
	if typeStr := query.Get("type"); typeStr != "" {
		adSpaceType, err := model.ParseAdSpaceType(typeStr)
		if err != nil {
			h.writeError(w, "ListAvailable", apperrors.InvalidInput("Invalid ad space type: "+typeStr))
			return
		}
		filter.Type = adSpaceType
	}
	filter.City = query.Get("city")

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "ListAvailable", err)
		return
	}

	adSpaces, total, err := h.service.ListAvailable(r.Context(), filter, limit, offset)
	if err != nil {
		h.writeError(w, "ListAvailable", err)
		return
	}

	if err := httputil.WritePaginated(w, adSpaces, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "ListAvailable", "operation", "WritePaginated", "error", err)
	}
}

func (h *AdSpaceHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	adSpace, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, adSpace); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AdSpaceHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *AdSpaceHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/ad-spaces", h.ListAvailable)
	router.GET("/api/v1/ad-spaces/id/:id", h.GetByID)
}
