package stubapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/genlink-dev/genlink/internal/cli/api"
)

// registerRequest mirrors the backend's account creation schema
type registerRequest struct {
	Email            string                 `json:"email" validate:"required,email"`
	Password         string                 `json:"password" validate:"required,min=8,max=100,passwordmix"`
	FullName         string                 `json:"full_name" validate:"required,min=3,max=100"`
	Phone            string                 `json:"phone" validate:"phone9"`
	City             string                 `json:"city" validate:"max=100"`
	AvailabilityType *int                   `json:"availability_type" validate:"required"`
	Availability     []api.AvailabilitySlot `json:"availability"`
}

func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "Invalid request body"})
		return
	}
	if !s.checkStruct(c, req) {
		return
	}
	if details := validateSlots(req.Availability); len(details) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": details})
		return
	}

	var count int64
	if err := s.db.Model(&Account{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
		s.internalError(c, err, "Failed to check email uniqueness")
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"detail": "Email already registered"})
		return
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		s.internalError(c, err, "Failed to hash password")
		return
	}

	account := &Account{
		Email:              req.Email,
		PasswordHash:       hash,
		FullName:           req.FullName,
		Phone:              req.Phone,
		City:               req.City,
		AvailabilityTypeID: req.AvailabilityType,
		AvailabilityJSON:   marshalSlots(req.Availability),
	}
	if err := s.db.Create(account).Error; err != nil {
		s.internalError(c, err, "Failed to create account")
		return
	}

	s.logger.Info().Str("account_id", account.ID).Str("email", account.Email).Msg("Account registered")
	c.JSON(http.StatusCreated, accountView(account, time.Now()))
}

func (s *Server) login(c *gin.Context) {
	var req api.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "Invalid request body"})
		return
	}

	var account Account
	err := s.db.Where("email = ?", req.Email).First(&account).Error
	if err != nil || !CheckPassword(account.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Incorrect email or password"})
		return
	}

	token, err := s.tokens.Generate(account.ID, account.Email)
	if err != nil {
		s.internalError(c, err, "Failed to generate token")
		return
	}

	c.JSON(http.StatusOK, api.LoginResponse{AccessToken: token, TokenType: "bearer"})
}

func (s *Server) getMyAccount(c *gin.Context) {
	account := currentAccount(c)
	c.JSON(http.StatusOK, accountView(account, time.Now()))
}

// accountUpdateRequest mirrors the backend's partial update schema
type accountUpdateRequest struct {
	FullName         *string                `json:"full_name" validate:"omitempty,min=3,max=100"`
	Phone            *string                `json:"phone" validate:"omitempty,phone9"`
	City             *string                `json:"city" validate:"omitempty,max=100"`
	Availability     []api.AvailabilitySlot `json:"availability"`
	AvailabilityType *int                   `json:"availability_type"`
	IsActive         *bool                  `json:"is_active"`
}

func (s *Server) updateMyAccount(c *gin.Context) {
	account := currentAccount(c)

	var req accountUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "Invalid request body"})
		return
	}
	if !s.checkStruct(c, req) {
		return
	}
	if details := validateSlots(req.Availability); len(details) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": details})
		return
	}

	if req.FullName != nil {
		account.FullName = *req.FullName
	}
	if req.Phone != nil {
		account.Phone = *req.Phone
	}
	if req.City != nil {
		account.City = *req.City
	}
	if req.AvailabilityType != nil {
		account.AvailabilityTypeID = req.AvailabilityType
	}
	if req.IsActive != nil {
		account.IsActive = *req.IsActive
	}
	if req.Availability != nil {
		account.AvailabilityJSON = marshalSlots(req.Availability)
	}

	if err := s.db.Save(account).Error; err != nil {
		s.internalError(c, err, "Failed to update account")
		return
	}

	c.JSON(http.StatusOK, accountView(account, time.Now()))
}

func (s *Server) deleteMyAccount(c *gin.Context) {
	account := currentAccount(c)

	// Release the active report back into the pool first
	if account.ActiveReportID != nil {
		s.releaseReport(*account.ActiveReportID)
	}

	if err := s.db.Delete(account).Error; err != nil {
		s.internalError(c, err, "Failed to delete account")
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) listActiveVolunteers(c *gin.Context) {
	var accounts []Account
	if err := s.db.Find(&accounts).Error; err != nil {
		s.internalError(c, err, "Failed to list volunteers")
		return
	}

	now := time.Now()
	volunteers := make([]api.ActiveVolunteerProfile, 0)
	for i := range accounts {
		slots := accounts[i].availabilitySlots()
		schedActive := scheduleActiveNow(slots, now)
		if !accounts[i].IsActive && !schedActive {
			continue
		}
		volunteers = append(volunteers, api.ActiveVolunteerProfile{
			Email:             accounts[i].Email,
			FullName:          accounts[i].FullName,
			City:              accounts[i].City,
			Availability:      slots,
			IsActive:          accounts[i].IsActive,
			IsActiveNow:       true,
			ScheduleActiveNow: schedActive,
		})
	}

	c.JSON(http.StatusOK, volunteers)
}

// releaseReport returns a report to the pending pool, used when its
// volunteer disappears
func (s *Server) releaseReport(reportID int) {
	var report Report
	if err := s.db.First(&report, reportID).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn().Err(err).Int("report_id", reportID).Msg("Failed to load report for release")
		}
		return
	}
	report.Status = api.ReportStatusPending
	report.AcceptedAt = nil
	report.AcceptedByID = nil
	if err := s.db.Save(&report).Error; err != nil {
		s.logger.Warn().Err(err).Int("report_id", reportID).Msg("Failed to release report")
	}
}

func (s *Server) internalError(c *gin.Context, err error, msg string) {
	s.logger.Error().Err(err).Msg(msg)
	c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
}

// validateSlots checks availability windows the way the backend does
func validateSlots(slots []api.AvailabilitySlot) []fieldDetail {
	var details []fieldDetail
	for _, slot := range slots {
		if slot.DayOfWeek < 0 || slot.DayOfWeek > 6 {
			details = append(details, fieldDetail{
				Loc: []string{"body", "availability"},
				Msg: "day_of_week must be between 0 and 6",
			})
		}
		if slot.EndTime <= slot.StartTime {
			details = append(details, fieldDetail{
				Loc: []string{"body", "availability"},
				Msg: "end_time must be later than start_time",
			})
		}
	}
	return details
}

func marshalSlots(slots []api.AvailabilitySlot) string {
	if len(slots) == 0 {
		return ""
	}
	data, err := json.Marshal(slots)
	if err != nil {
		return ""
	}
	return string(data)
}
