package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sitebooks/sitebooks-backend/internal/domain/siteprofit"
	"github.com/sitebooks/sitebooks-backend/internal/handler/http/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type SiteProfitHandler interface {
	// List returns the profit row of every site
	List(w http.ResponseWriter, r *http.Request)
	// Export returns the same rows as a spreadsheet attachment
	Export(w http.ResponseWriter, r *http.Request)
}

type siteProfitHandlerImpl struct {
	siteProfitService siteprofit.SiteProfitService
	logger            *slog.Logger
}

func NewSiteProfitHandler(siteProfitService siteprofit.SiteProfitService, logger *slog.Logger) SiteProfitHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &siteProfitHandlerImpl{siteProfitService: siteProfitService, logger: logger}
}

// siteProfitFailure keeps the list shape so clients can render an empty table.
type siteProfitFailure struct {
	Success bool                       `json:"success"`
	Data    []siteprofit.SiteProfitRow `json:"data"`
	Error   string                     `json:"error"`
}

// List handles GET /site-profit
func (h *siteProfitHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.siteProfitService.ComputeSiteProfit(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "site profit computation failed", slog.String("error", err.Error()))
		response.JSON(w, http.StatusInternalServerError, siteProfitFailure{
			Success: false,
			Data:    []siteprofit.SiteProfitRow{},
			Error:   "Failed to compute site profit",
		})
		return
	}

	response.JSON(w, http.StatusOK, result)
}

// Export handles GET /site-profit/export
func (h *siteProfitHandlerImpl) Export(w http.ResponseWriter, r *http.Request) {
	// Buffer the workbook so a failure can still produce a JSON error.
	var buf bytes.Buffer
	if err := h.siteProfitService.ExportSiteProfit(r.Context(), &buf); err != nil {
		h.logger.ErrorContext(r.Context(), "site profit export failed", slog.String("error", err.Error()))
		response.HandleError(w, err)
		return
	}

	filename := fmt.Sprintf("site-profit-%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
