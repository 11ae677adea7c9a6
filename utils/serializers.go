package utils

import (
	"time"

	"dancestudio_go/models"
)

// Compact representations used across APIs
type StudioShort struct {
	ID   uint   `json:"id"`
	Name string `json:"name,omitempty"`
	Code string `json:"code,omitempty"`
}

type UserDTO struct {
	ID       uint        `json:"id"`
	Username string      `json:"username"`
	Email    string      `json:"email,omitempty"`
	Phone    string      `json:"phone,omitempty"`
	Role     string      `json:"role"`
	StudioID uint        `json:"studio_id"`
	Status   string      `json:"status"`
	Studio   StudioShort `json:"studio"`
}

type AttendanceEntryDTO struct {
	RecordID       uint       `json:"record_id"`
	SessionID      uint       `json:"session_id"`
	StudentID      uint       `json:"student_id"`
	StudentName    string     `json:"student_name"`
	Status         string     `json:"status"`
	Note           string     `json:"note,omitempty"`
	IsSubstitute   bool       `json:"is_substitute"`
	SubstituteName string     `json:"substitute_name,omitempty"`
	MarkedBy       uint       `json:"marked_by,omitempty"`
	MarkedAt       *time.Time `json:"marked_at,omitempty"`
}

type PassDTO struct {
	ID            uint   `json:"id"`
	StudentID     uint   `json:"student_id"`
	TemplateName  string `json:"template_name"`
	ValidFrom     string `json:"valid_from"`
	ValidUntil    string `json:"valid_until"`
	Price         int    `json:"price"`
	TotalEntries  *int   `json:"total_entries,omitempty"`
	UsedEntries   int    `json:"used_entries"`
	AutoRenew     bool   `json:"auto_renew"`
	IsActive      bool   `json:"is_active"`
	RenewedFromID *uint  `json:"renewed_from_id,omitempty"`
}

// SerializeUser maps a models.User to the API shape. The password hash never
// leaves the model anyway (json:"-"), the DTO also trims the heavy
// relationship payloads.
func SerializeUser(u models.User) UserDTO {
	dto := UserDTO{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Phone:    u.Phone,
		Role:     u.Role,
		StudioID: u.StudioID,
		Status:   u.Status,
	}
	if u.Studio.ID != 0 {
		dto.Studio = StudioShort{ID: u.Studio.ID, Name: u.Studio.Name, Code: u.Studio.Code}
	}
	return dto
}

// SerializeAttendanceRecord flattens the record and its student name. The
// student relation may be unloaded for a record fresh off an optimistic
// write; the substitute name is the fallback display name then.
func SerializeAttendanceRecord(rec models.AttendanceRecord) AttendanceEntryDTO {
	name := rec.Student.FullName
	if name == "" {
		name = rec.SubstituteName
	}
	return AttendanceEntryDTO{
		RecordID:       rec.ID,
		SessionID:      rec.SessionID,
		StudentID:      rec.StudentID,
		StudentName:    name,
		Status:         rec.Status,
		Note:           rec.Note,
		IsSubstitute:   rec.IsSubstitute,
		SubstituteName: rec.SubstituteName,
		MarkedBy:       rec.MarkedBy,
		MarkedAt:       rec.MarkedAt,
	}
}

// SerializeAttendanceRecords maps a session view in order.
func SerializeAttendanceRecords(records []models.AttendanceRecord) []AttendanceEntryDTO {
	out := make([]AttendanceEntryDTO, 0, len(records))
	for _, rec := range records {
		out = append(out, SerializeAttendanceRecord(rec))
	}
	return out
}

// SerializePass maps a pass with ISO date strings for the window bounds.
func SerializePass(p models.Pass) PassDTO {
	return PassDTO{
		ID:            p.ID,
		StudentID:     p.StudentID,
		TemplateName:  p.TemplateName,
		ValidFrom:     FormatISODate(p.ValidFrom),
		ValidUntil:    FormatISODate(p.ValidUntil),
		Price:         p.Price,
		TotalEntries:  p.TotalEntries,
		UsedEntries:   p.UsedEntries,
		AutoRenew:     p.AutoRenew,
		IsActive:      p.IsActive,
		RenewedFromID: p.RenewedFromID,
	}
}

// SerializePasses maps a pass list in order.
func SerializePasses(passes []models.Pass) []PassDTO {
	out := make([]PassDTO, 0, len(passes))
	for _, p := range passes {
		out = append(out, SerializePass(p))
	}
	return out
}
