package stubapi

import (
	"encoding/json"
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"

	"github.com/genlink-dev/genlink/internal/cli/api"
)

// Account is a volunteer account row
type Account struct {
	ID        string    `gorm:"primaryKey;type:varchar(26)"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	FullName     string `gorm:"not null"`
	Phone        string
	City         string

	AvailabilityTypeID *int
	AvailabilityJSON   string
	IsActive           bool

	ResolvedCases         int
	ResolvedCasesThisYear int
	GenPoints             int

	ActiveReportID *int
}

// BeforeCreate generates a ULID for the ID field if it's empty
func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = ulid.Make().String()
	}
	return nil
}

// Report is a tech-support request row
type Report struct {
	ID int `gorm:"primaryKey;autoIncrement"`

	FullName      string `gorm:"not null"`
	Phone         string `gorm:"not null"`
	Age           *int
	Address       string
	City          string `gorm:"index"`
	Problem       string
	ContactOK     bool
	ReportTypeID  int `gorm:"index"`
	ReportDetails string
	ReporterEmail string

	Status       string `gorm:"index;default:pending"`
	ReportedAt   time.Time
	AcceptedAt   *time.Time
	CompletedAt  *time.Time
	AcceptedByID *string
}

// ReportType is a report category row
type ReportType struct {
	ID          int `gorm:"primaryKey;autoIncrement"`
	Name        string
	Description string
}

// AvailabilityType is a coarse volunteer availability category row
type AvailabilityType struct {
	ID          int `gorm:"primaryKey;autoIncrement"`
	Name        string
	Description string
}

// AutoMigrate runs the schema migrations and seeds the type tables
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&Account{}, &Report{}, &ReportType{}, &AvailabilityType{}); err != nil {
		return err
	}
	return seedTypes(db)
}

func seedTypes(db *gorm.DB) error {
	var count int64
	if err := db.Model(&ReportType{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		types := []ReportType{
			{Name: "Smartfon", Description: "Telefon, aplikacje, SMS"},
			{Name: "Komputer", Description: "Laptop lub komputer stacjonarny"},
			{Name: "Internet", Description: "Wi-Fi, router, przeglądarka"},
			{Name: "Telewizor", Description: "Smart TV, dekoder"},
			{Name: "Inne", Description: "Pozostałe urządzenia"},
		}
		if err := db.Create(&types).Error; err != nil {
			return err
		}
	}

	if err := db.Model(&AvailabilityType{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		types := []AvailabilityType{
			{Name: "Elastyczna", Description: "Dostępność ustawiana ręcznie"},
			{Name: "Według grafiku", Description: "Dostępność według tygodniowego grafiku"},
			{Name: "Weekendy", Description: "Głównie soboty i niedziele"},
		}
		if err := db.Create(&types).Error; err != nil {
			return err
		}
	}
	return nil
}

// availabilitySlots decodes the stored weekly schedule, empty on bad data
func (a *Account) availabilitySlots() []api.AvailabilitySlot {
	if a.AvailabilityJSON == "" {
		return nil
	}
	var slots []api.AvailabilitySlot
	if err := json.Unmarshal([]byte(a.AvailabilityJSON), &slots); err != nil {
		return nil
	}
	return slots
}

// scheduleActiveNow reports whether any active slot covers the given moment.
// Slots use 0=Monday, matching the API contract.
func scheduleActiveNow(slots []api.AvailabilitySlot, moment time.Time) bool {
	weekday := (int(moment.Weekday()) + 6) % 7
	clock := moment.Format("15:04")
	for _, slot := range slots {
		if !slot.IsActive || slot.DayOfWeek != weekday {
			continue
		}
		if slot.StartTime <= clock && clock <= slot.EndTime {
			return true
		}
	}
	return false
}

// accountView maps a row onto the wire shape the client consumes
func accountView(a *Account, now time.Time) api.Account {
	slots := a.availabilitySlots()
	schedActive := scheduleActiveNow(slots, now)
	return api.Account{
		Email:                 a.Email,
		FullName:              a.FullName,
		Phone:                 a.Phone,
		City:                  a.City,
		ResolvedCases:         a.ResolvedCases,
		ResolvedCasesThisYear: a.ResolvedCasesThisYear,
		ActiveReport:          a.ActiveReportID,
		Availability:          slots,
		AvailabilityType:      a.AvailabilityTypeID,
		IsActive:              a.IsActive,
		IsActiveNow:           a.IsActive || schedActive,
		ScheduleActiveNow:     schedActive,
		GenPoints:             a.GenPoints,
	}
}

// reportView maps a row onto the wire shape the client consumes
func reportView(r *Report) api.Report {
	view := api.Report{
		ID:            r.ID,
		FullName:      r.FullName,
		Phone:         r.Phone,
		Age:           r.Age,
		Address:       r.Address,
		City:          r.City,
		Problem:       r.Problem,
		ContactOK:     r.ContactOK,
		ReportTypeID:  r.ReportTypeID,
		ReportDetails: r.ReportDetails,
		ReporterEmail: r.ReporterEmail,
		Status:        r.Status,
		ReportedAt:    r.ReportedAt.UTC().Format(time.RFC3339),
	}
	if r.AcceptedAt != nil {
		view.AcceptedAt = r.AcceptedAt.UTC().Format(time.RFC3339)
	}
	if r.CompletedAt != nil {
		view.CompletedAt = r.CompletedAt.UTC().Format(time.RFC3339)
	}
	return view
}
