package handlers

import (
	"bytes"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"diningroom/internal/stats"
)

func Statistics(svc *stats.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /statistics"
		defer handlePanic(c, route)

		from, to, err := stats.ParseRange(c.Query("from"), c.Query("to"), time.Now())
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		report, err := svc.Report(c.Request.Context(), from, to)
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		respondOK(c, http.StatusOK, report)
	}
}

// ExportStatistics serves the report as a CSV attachment (default) or as a
// printable HTML page with ?format=html.
func ExportStatistics(svc *stats.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /statistics/export"
		defer handlePanic(c, route)

		format := strings.ToLower(strings.TrimSpace(c.DefaultQuery("format", "csv")))
		if format != "csv" && format != "html" {
			respondWithError(c, http.StatusBadRequest, route, "format must be csv or html")
			return
		}

		from, to, err := stats.ParseRange(c.Query("from"), c.Query("to"), time.Now())
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		report, err := svc.Report(c.Request.Context(), from, to)
		if err != nil {
			respondAppError(c, route, err)
			return
		}

		if format == "html" {
			c.HTML(http.StatusOK, stats.ReportTemplateName, report)
			return
		}

		var buf bytes.Buffer
		if err := stats.WriteCSV(&buf, report); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "export failed")
			return
		}
		c.Header("Content-Disposition", `attachment; filename="`+stats.CSVFilename(report)+`"`)
		c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
	}
}
