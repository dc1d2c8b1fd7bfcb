package api

// AvailabilitySlot describes one weekly availability window
type AvailabilitySlot struct {
	DayOfWeek int    `json:"day_of_week"` // 0=Monday, 6=Sunday
	StartTime string `json:"start_time"`  // HH:MM
	EndTime   string `json:"end_time"`    // HH:MM
	IsActive  bool   `json:"is_active"`
}

// Account represents the authenticated volunteer profile
type Account struct {
	Email                 string             `json:"email"`
	FullName              string             `json:"full_name"`
	Phone                 string             `json:"phone,omitempty"`
	City                  string             `json:"city,omitempty"`
	ResolvedCases         int                `json:"resolved_cases"`
	ResolvedCasesThisYear int                `json:"resolved_cases_this_year"`
	ActiveReport          *int               `json:"active_report,omitempty"`
	Availability          []AvailabilitySlot `json:"availability,omitempty"`
	AvailabilityType      *int               `json:"availability_type,omitempty"`
	IsActive              bool               `json:"is_active"`
	IsActiveNow           bool               `json:"is_active_now"`
	ScheduleActiveNow     bool               `json:"schedule_active_now"`
	GenPoints             int                `json:"genpoints"`
}

// Report represents a tech-support request from a senior
type Report struct {
	ID            int    `json:"id"`
	FullName      string `json:"full_name"`
	Phone         string `json:"phone"`
	Age           *int   `json:"age,omitempty"`
	Address       string `json:"address"`
	City          string `json:"city"`
	Problem       string `json:"problem"`
	ContactOK     bool   `json:"contact_ok"`
	ReportTypeID  int    `json:"report_type_id"`
	ReportDetails string `json:"report_details,omitempty"`
	ReporterEmail string `json:"reporter_email,omitempty"`
	Status        string `json:"status,omitempty"`
	ReportedAt    string `json:"reported_at"`
	AcceptedAt    string `json:"accepted_at,omitempty"`
	CompletedAt   string `json:"completed_at,omitempty"`
}

// Report lifecycle statuses
const (
	ReportStatusPending   = "pending"
	ReportStatusAccepted  = "accepted"
	ReportStatusCompleted = "completed"
)

// ReportType is a category a report can be filed under
type ReportType struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// AvailabilityType is a coarse availability category for volunteers
type AvailabilityType struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ReportStats summarizes report volume by category
type ReportStats struct {
	TotalReports int            `json:"total_reports"`
	ByType       map[string]int `json:"by_type"`
}

// ActiveVolunteerProfile is the public listing entry for an active volunteer
type ActiveVolunteerProfile struct {
	Email             string             `json:"email"`
	FullName          string             `json:"full_name"`
	City              string             `json:"city,omitempty"`
	Availability      []AvailabilitySlot `json:"availability,omitempty"`
	IsActive          bool               `json:"is_active"`
	IsActiveNow       bool               `json:"is_active_now"`
	ScheduleActiveNow bool               `json:"schedule_active_now"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// RegisterRequest represents the account registration body
type RegisterRequest struct {
	Email            string             `json:"email"`
	Password         string             `json:"password"`
	FullName         string             `json:"full_name"`
	Phone            string             `json:"phone,omitempty"`
	City             string             `json:"city,omitempty"`
	AvailabilityType int                `json:"availability_type"`
	Availability     []AvailabilitySlot `json:"availability,omitempty"`
}

// AccountUpdateRequest represents a partial account update
type AccountUpdateRequest struct {
	FullName         *string            `json:"full_name,omitempty"`
	Phone            *string            `json:"phone,omitempty"`
	City             *string            `json:"city,omitempty"`
	Availability     []AvailabilitySlot `json:"availability,omitempty"`
	AvailabilityType *int               `json:"availability_type,omitempty"`
	IsActive         *bool              `json:"is_active,omitempty"`
}

// ReportCreateRequest represents a new help request
type ReportCreateRequest struct {
	FullName      string `json:"full_name"`
	Phone         string `json:"phone"`
	Age           *int   `json:"age,omitempty"`
	Address       string `json:"address"`
	City          string `json:"city"`
	Problem       string `json:"problem"`
	ContactOK     bool   `json:"contact_ok"`
	ReportTypeID  int    `json:"report_type_id"`
	ReportDetails string `json:"report_details,omitempty"`
	ReporterEmail string `json:"reporter_email,omitempty"`
}

// ReportFilter narrows report listings
type ReportFilter struct {
	City         string
	ReportTypeID int
	Search       string
	Limit        int
	Skip         int
}
