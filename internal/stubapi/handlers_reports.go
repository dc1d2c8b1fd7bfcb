package stubapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/genlink-dev/genlink/internal/cli/api"
)

// genPointsPerCase is credited on every completed report
const genPointsPerCase = 10

// reportCreateRequest mirrors the backend's report creation schema
type reportCreateRequest struct {
	FullName      string `json:"full_name" validate:"required,min=3,max=100"`
	Phone         string `json:"phone" validate:"required,phone9"`
	Age           *int   `json:"age" validate:"omitempty,min=1,max=120"`
	Address       string `json:"address" validate:"required,max=200"`
	City          string `json:"city" validate:"required,max=100"`
	Problem       string `json:"problem" validate:"required,max=2000"`
	ContactOK     bool   `json:"contact_ok"`
	ReportTypeID  int    `json:"report_type_id" validate:"required"`
	ReportDetails string `json:"report_details" validate:"max=2000"`
	ReporterEmail string `json:"reporter_email" validate:"omitempty,email"`
}

func (s *Server) createReport(c *gin.Context) {
	var req reportCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "Invalid request body"})
		return
	}
	if !s.checkStruct(c, req) {
		return
	}

	var typeCount int64
	if err := s.db.Model(&ReportType{}).Where("id = ?", req.ReportTypeID).Count(&typeCount).Error; err != nil {
		s.internalError(c, err, "Failed to check report type")
		return
	}
	if typeCount == 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []fieldDetail{{
			Loc: []string{"body", "report_type_id"},
			Msg: "Unknown report type",
		}}})
		return
	}

	report := &Report{
		FullName:      req.FullName,
		Phone:         req.Phone,
		Age:           req.Age,
		Address:       req.Address,
		City:          req.City,
		Problem:       req.Problem,
		ContactOK:     req.ContactOK,
		ReportTypeID:  req.ReportTypeID,
		ReportDetails: req.ReportDetails,
		ReporterEmail: req.ReporterEmail,
		Status:        api.ReportStatusPending,
		ReportedAt:    time.Now(),
	}
	if err := s.db.Create(report).Error; err != nil {
		s.internalError(c, err, "Failed to create report")
		return
	}

	s.logger.Info().Int("report_id", report.ID).Str("city", report.City).Msg("Report created")
	c.JSON(http.StatusCreated, reportView(report))
}

func (s *Server) listReports(c *gin.Context) {
	query := s.db.Model(&Report{}).Where("status = ?", api.ReportStatusPending)

	if city := c.Query("city"); city != "" {
		query = query.Where("city = ?", city)
	}
	if typeID := c.Query("report_type_id"); typeID != "" {
		id, err := strconv.Atoi(typeID)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "report_type_id must be an integer"})
			return
		}
		query = query.Where("report_type_id = ?", id)
	}
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where("problem LIKE ? OR full_name LIKE ?", like, like)
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	skip := 0
	if raw := c.Query("skip"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 {
			skip = parsed
		}
	}

	var reports []Report
	if err := query.Order("reported_at desc").Limit(limit).Offset(skip).Find(&reports).Error; err != nil {
		s.internalError(c, err, "Failed to list reports")
		return
	}

	views := make([]api.Report, 0, len(reports))
	for i := range reports {
		views = append(views, reportView(&reports[i]))
	}
	c.JSON(http.StatusOK, views)
}

func (s *Server) getReport(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "Report ID must be an integer"})
		return
	}

	var report Report
	if err := s.db.First(&report, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Report not found"})
			return
		}
		s.internalError(c, err, "Failed to load report")
		return
	}

	c.JSON(http.StatusOK, reportView(&report))
}

func (s *Server) acceptReport(c *gin.Context) {
	account := currentAccount(c)

	if account.ActiveReportID != nil {
		c.JSON(http.StatusConflict, gin.H{"detail": "Volunteer already has an active report"})
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "Report ID must be an integer"})
		return
	}

	var report Report
	if err := s.db.First(&report, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Report not found"})
			return
		}
		s.internalError(c, err, "Failed to load report")
		return
	}

	if report.Status != api.ReportStatusPending {
		c.JSON(http.StatusConflict, gin.H{"detail": "Report is not available"})
		return
	}

	now := time.Now()
	report.Status = api.ReportStatusAccepted
	report.AcceptedAt = &now
	report.AcceptedByID = &account.ID
	account.ActiveReportID = &report.ID

	if err := s.db.Save(&report).Error; err != nil {
		s.internalError(c, err, "Failed to accept report")
		return
	}
	if err := s.db.Save(account).Error; err != nil {
		s.internalError(c, err, "Failed to update account")
		return
	}

	s.logger.Info().Int("report_id", report.ID).Str("account_id", account.ID).Msg("Report accepted")
	c.JSON(http.StatusOK, reportView(&report))
}

func (s *Server) cancelActiveReport(c *gin.Context) {
	account := currentAccount(c)

	if account.ActiveReportID == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "No active report"})
		return
	}

	var report Report
	if err := s.db.First(&report, *account.ActiveReportID).Error; err != nil {
		s.internalError(c, err, "Failed to load active report")
		return
	}

	report.Status = api.ReportStatusPending
	report.AcceptedAt = nil
	report.AcceptedByID = nil
	account.ActiveReportID = nil

	if err := s.db.Save(&report).Error; err != nil {
		s.internalError(c, err, "Failed to cancel report")
		return
	}
	if err := s.db.Model(account).Update("active_report_id", nil).Error; err != nil {
		s.internalError(c, err, "Failed to update account")
		return
	}

	c.JSON(http.StatusOK, reportView(&report))
}

func (s *Server) completeActiveReport(c *gin.Context) {
	account := currentAccount(c)

	if account.ActiveReportID == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "No active report"})
		return
	}

	var report Report
	if err := s.db.First(&report, *account.ActiveReportID).Error; err != nil {
		s.internalError(c, err, "Failed to load active report")
		return
	}

	now := time.Now()
	report.Status = api.ReportStatusCompleted
	report.CompletedAt = &now
	account.ActiveReportID = nil
	account.ResolvedCases++
	account.ResolvedCasesThisYear++
	account.GenPoints += genPointsPerCase

	if err := s.db.Save(&report).Error; err != nil {
		s.internalError(c, err, "Failed to complete report")
		return
	}
	if err := s.db.Model(account).Updates(map[string]any{
		"active_report_id":         nil,
		"resolved_cases":           account.ResolvedCases,
		"resolved_cases_this_year": account.ResolvedCasesThisYear,
		"gen_points":               account.GenPoints,
	}).Error; err != nil {
		s.internalError(c, err, "Failed to update account")
		return
	}

	s.logger.Info().Int("report_id", report.ID).Str("account_id", account.ID).Msg("Report completed")
	c.JSON(http.StatusOK, reportView(&report))
}

func (s *Server) myAcceptedReport(c *gin.Context) {
	account := currentAccount(c)

	if account.ActiveReportID == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "No active report"})
		return
	}

	var report Report
	if err := s.db.First(&report, *account.ActiveReportID).Error; err != nil {
		s.internalError(c, err, "Failed to load active report")
		return
	}

	c.JSON(http.StatusOK, reportView(&report))
}

func (s *Server) myCompletedReports(c *gin.Context) {
	account := currentAccount(c)

	var reports []Report
	err := s.db.
		Where("accepted_by_id = ? AND status = ?", account.ID, api.ReportStatusCompleted).
		Order("completed_at desc").
		Find(&reports).Error
	if err != nil {
		s.internalError(c, err, "Failed to list completed reports")
		return
	}

	views := make([]api.Report, 0, len(reports))
	for i := range reports {
		views = append(views, reportView(&reports[i]))
	}
	c.JSON(http.StatusOK, views)
}

func (s *Server) reportStats(c *gin.Context) {
	var total int64
	if err := s.db.Model(&Report{}).Count(&total).Error; err != nil {
		s.internalError(c, err, "Failed to count reports")
		return
	}

	var rows []struct {
		Name  string
		Count int
	}
	err := s.db.Model(&Report{}).
		Select("report_types.name as name, count(reports.id) as count").
		Joins("join report_types on report_types.id = reports.report_type_id").
		Group("report_types.name").
		Scan(&rows).Error
	if err != nil {
		s.internalError(c, err, "Failed to aggregate reports")
		return
	}

	byType := make(map[string]int, len(rows))
	for _, row := range rows {
		byType[row.Name] = row.Count
	}

	c.JSON(http.StatusOK, api.ReportStats{
		TotalReports: int(total),
		ByType:       byType,
	})
}

func (s *Server) listReportTypes(c *gin.Context) {
	var types []ReportType
	if err := s.db.Order("id").Find(&types).Error; err != nil {
		s.internalError(c, err, "Failed to list report types")
		return
	}

	views := make([]api.ReportType, 0, len(types))
	for _, t := range types {
		views = append(views, api.ReportType{ID: t.ID, Name: t.Name, Description: t.Description})
	}
	c.JSON(http.StatusOK, views)
}

func (s *Server) listAvailabilityTypes(c *gin.Context) {
	var types []AvailabilityType
	if err := s.db.Order("id").Find(&types).Error; err != nil {
		s.internalError(c, err, "Failed to list availability types")
		return
	}

	views := make([]api.AvailabilityType, 0, len(types))
	for _, t := range types {
		views = append(views, api.AvailabilityType{ID: t.ID, Name: t.Name, Description: t.Description})
	}
	c.JSON(http.StatusOK, views)
}
