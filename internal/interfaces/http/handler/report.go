package handler

import (
	"time"

	reportapp "github.com/erp/retail/internal/application/report"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/gin-gonic/gin"
)

// ReportHandler serves the income statement
type ReportHandler struct {
	BaseHandler
	dre *reportapp.DREService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(dre *reportapp.DREService) *ReportHandler {
	return &ReportHandler{dre: dre}
}

// DREQuery selects the statement period: either a from/to day range or a
// year with an optional month
type DREQuery struct {
	From  string `form:"from" binding:"required_with=To"`
	To    string `form:"to" binding:"required_with=From"`
	Year  int    `form:"year" binding:"required_without=From,omitempty,min=2000,max=2100"`
	Month int    `form:"month" binding:"omitempty,min=1,max=12"`
}

// DRE handles GET /reports/dre?year=2024&month=3 and
// GET /reports/dre?from=2024-03-20&to=2024-04-10. With a year and no month the
// annual statement with its twelve months is returned.
func (h *ReportHandler) DRE(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var q DREQuery
	if !h.bindQuery(c, &q) {
		return
	}

	if q.From != "" {
		from, ok := h.dateQuery(c, "from", time.Time{})
		if !ok {
			return
		}
		to, ok := h.dateQuery(c, "to", time.Time{})
		if !ok {
			return
		}
		period, err := shared.NewPeriod(from, to)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		statement, err := h.dre.Statement(c.Request.Context(), actor.TenantID, period)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, statement)
		return
	}

	if q.Month == 0 {
		statement, err := h.dre.Annual(c.Request.Context(), actor.TenantID, q.Year)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, statement)
		return
	}

	statement, err := h.dre.Monthly(c.Request.Context(), actor.TenantID, q.Year, time.Month(q.Month))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, statement)
}
