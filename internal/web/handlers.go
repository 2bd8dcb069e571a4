// ABOUTME: REST handlers for dashboard reads and table writes.
// ABOUTME: Maps storage and validation errors onto HTTP status codes.
package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/harperreed/classdash/internal/models"
	"github.com/harperreed/classdash/internal/storage"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// dashboardResponse mirrors the Syncer state for the view layer.
type dashboardResponse struct {
	PerformanceData       []*models.PerformanceRecord  `json:"performance_data"`
	SubjectData           []*models.SubjectRecord      `json:"subject_data"`
	ClassDistributionData []*models.DistributionRecord `json:"class_distribution"`
	Loading               bool                         `json:"loading"`
	Error                 string                       `json:"error,omitempty"`
}

func (s *Server) handleDashboard(c *gin.Context) {
	state := s.syncer.State()
	resp := dashboardResponse{
		PerformanceData:       state.Performance,
		SubjectData:           state.Subjects,
		ClassDistributionData: state.Distribution,
		Loading:               state.Loading,
	}
	if state.Err != nil {
		resp.Error = state.Err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleChart(c *gin.Context) {
	c.JSON(http.StatusOK, s.syncer.ChartData())
}

func (s *Server) handleSummary(c *gin.Context) {
	c.JSON(http.StatusOK, s.syncer.ChartData().Summary())
}

func (s *Server) handleSeed(c *gin.Context) {
	res, err := s.seed(c.Request.Context(), s.repo)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// handleRefresh forces a full refetch and returns the resulting chart data.
func (s *Server) handleRefresh(c *gin.Context) {
	if err := s.syncer.Refresh(c.Request.Context()); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s.syncer.ChartData())
}

func (s *Server) handleListTable(c *gin.Context) {
	table, ok := s.table(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	var (
		rows any
		err  error
	)
	switch table {
	case models.TablePerformance:
		rows, err = s.repo.ListPerformance(ctx)
	case models.TableSubjects:
		rows, err = s.repo.ListSubjects(ctx)
	case models.TableDistribution:
		rows, err = s.repo.ListDistribution(ctx)
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (s *Server) handleCreate(c *gin.Context) {
	table, ok := s.table(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	switch table {
	case models.TablePerformance:
		var r models.PerformanceRecord
		if !s.bind(c, &r) {
			return
		}
		if err := s.repo.CreatePerformance(ctx, &r); err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, r)
	case models.TableSubjects:
		var r models.SubjectRecord
		if !s.bind(c, &r) {
			return
		}
		if r.Color == "" {
			r.Color = models.DefaultColor
		}
		if err := s.repo.CreateSubject(ctx, &r); err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, r)
	case models.TableDistribution:
		var r models.DistributionRecord
		if !s.bind(c, &r) {
			return
		}
		if r.Color == "" {
			r.Color = models.DefaultColor
		}
		if err := s.repo.CreateDistribution(ctx, &r); err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, r)
	}
}

// handleUpdate replaces the mutable fields of one row. The id comes from
// the path; any id in the body is ignored.
func (s *Server) handleUpdate(c *gin.Context) {
	table, ok := s.table(c)
	if !ok {
		return
	}
	id, ok := s.id(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	switch table {
	case models.TablePerformance:
		var r models.PerformanceRecord
		if !s.bind(c, &r) {
			return
		}
		r.ID = id
		if err := s.repo.UpdatePerformance(ctx, &r); err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, r)
	case models.TableSubjects:
		var r models.SubjectRecord
		if !s.bind(c, &r) {
			return
		}
		r.ID = id
		if r.Color == "" {
			r.Color = models.DefaultColor
		}
		if err := s.repo.UpdateSubject(ctx, &r); err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, r)
	case models.TableDistribution:
		var r models.DistributionRecord
		if !s.bind(c, &r) {
			return
		}
		r.ID = id
		if r.Color == "" {
			r.Color = models.DefaultColor
		}
		if err := s.repo.UpdateDistribution(ctx, &r); err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, r)
	}
}

func (s *Server) handleClear(c *gin.Context) {
	table, ok := s.table(c)
	if !ok {
		return
	}

	n, err := s.repo.Clear(c.Request.Context(), table)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"table": table, "removed": n})
}

func (s *Server) handleDelete(c *gin.Context) {
	table, ok := s.table(c)
	if !ok {
		return
	}

	id, ok := s.id(c)
	if !ok {
		return
	}

	if err := s.repo.Delete(c.Request.Context(), table, id); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) table(c *gin.Context) (models.Table, bool) {
	table, err := models.ParseTable(c.Param("table"))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return "", false
	}
	return table, true
}

func (s *Server) id(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
		return 0, false
	}
	return id, true
}

func (s *Server) bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return false
	}
	return true
}

func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrInvalid):
		status = http.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound):
		status = http.StatusNotFound
	default:
		s.log.Error("request failed", "path", c.FullPath(), "err", err)
	}
	c.JSON(status, ErrorResponse{Error: err.Error()})
}
