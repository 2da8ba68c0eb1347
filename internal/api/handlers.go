package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/OliwiaLewandowska/som-monitor/internal/analyzer"
	"github.com/OliwiaLewandowska/som-monitor/internal/models"
	"github.com/OliwiaLewandowska/som-monitor/internal/stats"
	"github.com/OliwiaLewandowska/som-monitor/internal/storage"
)

// healthCheck handles GET /api/v1/health
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"status":    "healthy",
			"timestamp": time.Now().UTC(),
		},
	})
}

// ReportResponse pairs the ranked metrics with a confidence interval for
// each brand's mention rate.
type ReportResponse struct {
	Report    *models.SOMReport                    `json:"report"`
	Intervals map[string]models.ConfidenceInterval `json:"intervals,omitempty"`
}

// getReport handles GET /api/v1/report
func (s *Server) getReport(c *gin.Context) {
	results, err := s.results.LoadLatest(c.Request.Context())
	if err != nil {
		s.errorResponse(c, http.StatusNotFound, "Failed to load latest survey: "+err.Error())
		return
	}

	report, err := analyzer.BuildReport(results, s.brands, len(results), 0)
	if err != nil {
		s.errorResponse(c, http.StatusInternalServerError, "Failed to build report: "+err.Error())
		return
	}

	intervals := make(map[string]models.ConfidenceInterval, len(report.Metrics))
	for _, m := range report.Metrics {
		ci, err := stats.ConfidenceInterval(m.TotalMentions, m.SampleSize, s.confidenceLevel)
		if err != nil {
			continue
		}
		intervals[m.Brand] = ci
	}

	s.successResponse(c, ReportResponse{Report: report, Intervals: intervals})
}

// CompareResponse reports the significance test between two brands' rates.
type CompareResponse struct {
	BrandA     string            `json:"brand_a"`
	BrandB     string            `json:"brand_b"`
	SampleSize int               `json:"sample_size"`
	Comparison models.Comparison `json:"comparison"`
}

// getComparison handles GET /api/v1/compare
func (s *Server) getComparison(c *gin.Context) {
	brandA := c.Query("brand_a")
	brandB := c.Query("brand_b")
	if brandA == "" || brandB == "" {
		s.errorResponse(c, http.StatusBadRequest, "brand_a and brand_b query parameters are required")
		return
	}

	results, err := s.results.LoadLatest(c.Request.Context())
	if err != nil {
		s.errorResponse(c, http.StatusNotFound, "Failed to load latest survey: "+err.Error())
		return
	}

	successesA := countMentions(results, brandA)
	successesB := countMentions(results, brandB)

	cmp, err := stats.Compare(successesA, len(results), successesB, len(results), s.alpha)
	if err != nil {
		s.errorResponse(c, http.StatusUnprocessableEntity, "Comparison failed: "+err.Error())
		return
	}

	s.successResponse(c, CompareResponse{
		BrandA:     brandA,
		BrandB:     brandB,
		SampleSize: len(results),
		Comparison: cmp,
	})
}

// TrendResponse pairs the detected trend with the series it was fit on.
type TrendResponse struct {
	Brand  string                   `json:"brand"`
	Series []models.TimeSeriesPoint `json:"series"`
	Trend  models.TrendResult       `json:"trend"`
}

// getTrend handles GET /api/v1/trend
func (s *Server) getTrend(c *gin.Context) {
	brand := c.Query("brand")
	if brand == "" {
		s.errorResponse(c, http.StatusBadRequest, "brand query parameter is required")
		return
	}

	filter := storage.SeriesFilter{
		Category: c.Query("category"),
		Model:    c.Query("model"),
	}

	points, err := s.history.RateSeries(c.Request.Context(), brand, filter)
	if err != nil {
		s.errorResponse(c, http.StatusNotFound, "Failed to load history: "+err.Error())
		return
	}

	rates := make([]float64, len(points))
	for i, p := range points {
		rates[i] = p.Rate
	}

	trend, err := stats.DetectTrend(rates, s.alpha)
	if err != nil {
		s.errorResponse(c, http.StatusUnprocessableEntity, "Trend detection failed: "+err.Error())
		return
	}

	s.successResponse(c, TrendResponse{
		Brand:  brand,
		Series: points,
		Trend:  trend,
	})
}

func countMentions(results []models.QueryResult, brand string) int {
	count := 0
	for _, res := range results {
		if m, ok := res.Mentions[brand]; ok && m.Mentioned {
			count++
		}
	}
	return count
}
