package handler

import (
	"net/http"

	"github.com/Crissancio/Backend-Taller/internal/dto"
	"github.com/Crissancio/Backend-Taller/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportesHandler struct{ svc service.ReporteService }

func NewReportesHandler(svc service.ReporteService) *ReportesHandler {
	return &ReportesHandler{svc: svc}
}

// Dashboard godoc
// @Summary      Resumen financiero del periodo
// @Tags         reportes
// @Produce      json
// @Security     BearerAuth
// @Param        periodo query string false "mes | trimestre | anio"
// @Success      200 {object} dto.DashboardResponse
// @Router       /v1/reportes/dashboard [get]
func (h *ReportesHandler) Dashboard(c *gin.Context) {
	alc, ok := alcance(c)
	if !ok {
		return
	}
	var filter dto.DashboardFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Dashboard(c.Request.Context(), alc, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
