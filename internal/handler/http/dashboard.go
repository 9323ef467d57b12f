package http

import (
	"net/http"

	"github.com/sitebooks/sitebooks-backend/internal/domain/dashboard"
	"github.com/sitebooks/sitebooks-backend/internal/handler/http/response"
)

type DashboardHandler interface {
	// GetSummary returns the dashboard of a single site
	GetSummary(w http.ResponseWriter, r *http.Request)
}

type dashboardHandlerImpl struct {
	dashboardService dashboard.DashboardService
}

func NewDashboardHandler(dashboardService dashboard.DashboardService) DashboardHandler {
	return &dashboardHandlerImpl{dashboardService: dashboardService}
}

// GetSummary handles GET /dashboard/summary?siteId=&from=&to=
func (h *dashboardHandlerImpl) GetSummary(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := dashboard.SummaryRequest{
		SiteID: query.Get("siteId"),
		From:   query.Get("from"), // format: YYYY-MM-DD, default: 30 days before to
		To:     query.Get("to"),   // format: YYYY-MM-DD, default: today
	}

	result, err := h.dashboardService.GetSummary(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
