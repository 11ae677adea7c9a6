package models

import (
	"database/sql/driver"
	"time"

	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// JSON field type for GORM
type JSON []byte

func (j JSON) Value() (driver.Value, error) {
	if j.IsNull() {
		return nil, nil
	}
	return string(j), nil
}

func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	s, ok := value.([]byte)
	if !ok {
		return nil
	}
	*j = append((*j)[0:0], s...)
	return nil
}

func (j JSON) MarshalJSON() ([]byte, error) {
	if j == nil {
		return []byte("null"), nil
	}
	return j, nil
}

func (j *JSON) UnmarshalJSON(data []byte) error {
	if j == nil {
		return nil
	}
	*j = append((*j)[0:0], data...)
	return nil
}

func (j JSON) IsNull() bool {
	return len(j) == 0 || string(j) == "null"
}

// Attendance statuses
const (
	AttendanceNone    = "none"
	AttendancePresent = "present"
	AttendanceAbsent  = "absent"
	AttendanceExcused = "excused"
)

// Payment methods
const (
	PaymentCash     = "cash"
	PaymentTransfer = "transfer"
)

// Studio model - one physical location of the chain
type Studio struct {
	BaseModel
	Name    string `json:"name" gorm:"size:255;not null"`
	Code    string `json:"code" gorm:"size:50;not null;uniqueIndex"`
	Address string `json:"address" gorm:"size:500"`
	City    string `json:"city" gorm:"size:100"`
	Phone   string `json:"phone" gorm:"size:20"`
	Active  bool   `json:"active" gorm:"default:true"`

	// Relationships
	Users    []User    `json:"users,omitempty" gorm:"foreignKey:StudioID"`
	Groups   []Group   `json:"groups,omitempty" gorm:"foreignKey:StudioID"`
	Students []Student `json:"students,omitempty" gorm:"foreignKey:StudioID"`
}

// User model - staff accounts (owners, admins, instructors)
type User struct {
	BaseModel
	Username string `json:"username" gorm:"size:100;not null;uniqueIndex"`
	Password string `json:"-" gorm:"size:255;not null"`
	Email    string `json:"email" gorm:"size:255;uniqueIndex"`
	Phone    string `json:"phone" gorm:"size:20"`
	Role     string `json:"role" gorm:"size:50;not null;default:'instructor';type:enum('owner','admin','instructor')"` // owner, admin, instructor
	StudioID uint   `json:"studio_id" gorm:"not null"`
	Status   string `json:"status" gorm:"size:50;not null;default:'active';type:enum('active','inactive','suspended')"` // active, inactive, suspended

	// Relationships
	Studio Studio `json:"studio,omitempty" gorm:"foreignKey:StudioID"`
}

// Student model - a studio member. Guests added ad hoc on the attendance
// screen become minimal Student rows with IsGuest set.
type Student struct {
	BaseModel
	StudioID  uint       `json:"studio_id" gorm:"not null;index:idx_students_studio_name,priority:1"`
	FullName  string     `json:"full_name" gorm:"size:200;not null;index:idx_students_studio_name,priority:2"`
	Phone     string     `json:"phone" gorm:"size:20"`
	Email     string     `json:"email" gorm:"size:255"`
	BirthDate *time.Time `json:"birth_date"`
	Notes     string     `json:"notes" gorm:"type:text"`
	IsGuest   bool       `json:"is_guest" gorm:"default:false"`
	Active    bool       `json:"active" gorm:"default:true"`

	// Relationships
	Studio   Studio    `json:"studio,omitempty" gorm:"foreignKey:StudioID"`
	Passes   []Pass    `json:"passes,omitempty" gorm:"foreignKey:StudentID"`
	Payments []Payment `json:"payments,omitempty" gorm:"foreignKey:StudentID"`
}

// Group model - a recurring weekly class slot. Never hard-deleted;
// deactivation cancels future sessions and keeps past ones.
type Group struct {
	BaseModel
	StudioID     uint   `json:"studio_id" gorm:"not null"`
	Name         string `json:"name" gorm:"size:200;not null"`
	Style        string `json:"style" gorm:"size:100"`
	Level        string `json:"level" gorm:"size:50"`
	Weekday      int    `json:"weekday" gorm:"not null"` // 0=Sunday .. 6=Saturday
	StartTime    string `json:"start_time" gorm:"size:5;not null"`
	EndTime      string `json:"end_time" gorm:"size:5;not null"`
	Capacity     int    `json:"capacity" gorm:"default:20"`
	InstructorID *uint  `json:"instructor_id"`
	Active       bool   `json:"active" gorm:"default:true"`

	// Relationships
	Studio     Studio        `json:"studio,omitempty" gorm:"foreignKey:StudioID"`
	Instructor *User         `json:"instructor,omitempty" gorm:"foreignKey:InstructorID"`
	Members    []GroupMember `json:"members,omitempty" gorm:"foreignKey:GroupID"`
	Sessions   []ClassSession `json:"sessions,omitempty" gorm:"foreignKey:GroupID"`
}

// GroupMember links a student to a group roster
type GroupMember struct {
	BaseModel
	GroupID   uint       `json:"group_id" gorm:"not null;uniqueIndex:idx_group_student"`
	StudentID uint       `json:"student_id" gorm:"not null;uniqueIndex:idx_group_student"`
	Status    string     `json:"status" gorm:"size:50;default:'active';type:enum('active','inactive')"` // active, inactive
	JoinedAt  *time.Time `json:"joined_at"`

	// Relationships
	Group   Group   `json:"group,omitempty" gorm:"foreignKey:GroupID"`
	Student Student `json:"student,omitempty" gorm:"foreignKey:StudentID"`
}

// ClassSession - one materialized occurrence of a Group on a calendar date.
// The (group_id, session_date) unique index backs idempotent creation.
type ClassSession struct {
	BaseModel
	GroupID     uint      `json:"group_id" gorm:"not null;uniqueIndex:idx_group_date"`
	SessionDate time.Time `json:"session_date" gorm:"type:date;not null;uniqueIndex:idx_group_date"`
	Cancelled   bool      `json:"cancelled" gorm:"default:false"`
	Note        string    `json:"note" gorm:"type:text"`

	// Relationships
	Group   Group              `json:"group,omitempty" gorm:"foreignKey:GroupID"`
	Records []AttendanceRecord `json:"records,omitempty" gorm:"foreignKey:SessionID"`
}

// AttendanceRecord - at most one per (session, student); toggling is an
// upsert, never an append.
type AttendanceRecord struct {
	BaseModel
	SessionID      uint       `json:"session_id" gorm:"not null;uniqueIndex:idx_session_student"`
	StudentID      uint       `json:"student_id" gorm:"not null;uniqueIndex:idx_session_student"`
	Status         string     `json:"status" gorm:"size:20;not null;default:'none';type:enum('none','present','absent','excused')"` // none, present, absent, excused
	Note           string     `json:"note" gorm:"type:text"`
	IsSubstitute   bool       `json:"is_substitute" gorm:"default:false"`
	SubstituteName string     `json:"substitute_name" gorm:"size:200"`
	MarkedBy       uint       `json:"marked_by"`
	MarkedAt       *time.Time `json:"marked_at"`

	// Relationships
	Session ClassSession `json:"session,omitempty" gorm:"foreignKey:SessionID"`
	Student Student      `json:"student,omitempty" gorm:"foreignKey:StudentID"`
}

// Pass model - a subscription covering [ValidFrom, ValidUntil], both dates
// inclusive. Renewal deactivates the old row and inserts a successor whose
// ValidFrom is the day after the old ValidUntil.
type Pass struct {
	BaseModel
	StudentID     uint      `json:"student_id" gorm:"not null;index"`
	TemplateName  string    `json:"template_name" gorm:"size:100;not null"`
	ValidFrom     time.Time `json:"valid_from" gorm:"type:date;not null"`
	ValidUntil    time.Time `json:"valid_until" gorm:"type:date;not null"`
	Price         int       `json:"price" gorm:"not null"` // grosz
	TotalEntries  *int      `json:"total_entries"`
	UsedEntries   int       `json:"used_entries" gorm:"default:0"`
	AutoRenew     bool      `json:"auto_renew" gorm:"default:false"`
	IsActive      bool      `json:"is_active" gorm:"default:true;index"`
	RenewedFromID *uint     `json:"renewed_from_id" gorm:"default:null"`

	// Relationships
	Student  Student   `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	Payments []Payment `json:"payments,omitempty" gorm:"foreignKey:PassID"`
}

// Payment model - a payment covers a pass period when PaidAt >= the pass
// ValidFrom; earlier payments never count toward the current period.
type Payment struct {
	BaseModel
	StudentID  uint      `json:"student_id" gorm:"not null;index"`
	PassID     *uint     `json:"pass_id" gorm:"index;default:null"`
	Amount     int       `json:"amount" gorm:"not null"` // grosz
	Method     string    `json:"method" gorm:"size:20;not null;type:enum('cash','transfer')"` // cash, transfer
	PaidAt     time.Time `json:"paid_at" gorm:"not null;index"`
	RecordedBy uint      `json:"recorded_by"`

	// Relationships
	Student Student `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	Pass    *Pass   `json:"pass,omitempty" gorm:"foreignKey:PassID"`
}

// PublicHoliday - studio-wide closure day. Weekday holidays extend
// auto-renewing pass windows so members are not billed for closures.
type PublicHoliday struct {
	BaseModel
	HolidayDate time.Time `json:"holiday_date" gorm:"type:date;not null;uniqueIndex"`
	Label       string    `json:"label" gorm:"size:200;not null"`
}

// Log model for activity tracking
type ActivityLog struct {
	BaseModel
	UserID     uint   `json:"user_id"`
	Action     string `json:"action" gorm:"size:100;not null"`
	Resource   string `json:"resource" gorm:"size:100;not null"`
	ResourceID uint   `json:"resource_id"`
	Details    JSON   `json:"details" gorm:"type:json"`
	IPAddress  string `json:"ip_address" gorm:"size:45"`
	UserAgent  string `json:"user_agent" gorm:"size:500"`

	// Relationships
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// Notification model - in-app only
type Notification struct {
	BaseModel
	UserID  uint       `json:"user_id" gorm:"not null"`
	Title   string     `json:"title" gorm:"size:255;not null"`
	Message string     `json:"message" gorm:"type:text;not null"`
	Type    string     `json:"type" gorm:"size:50;not null;type:enum('info','warning','error','success')"` // info, warning, error, success
	Read    bool       `json:"read" gorm:"default:false"`
	ReadAt  *time.Time `json:"read_at"`

	// Relationships
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// ReportArchive tracks generated report files uploaded to S3
type ReportArchive struct {
	BaseModel
	FileName    string `json:"file_name" gorm:"size:255;not null"`
	S3Key       string `json:"s3_key" gorm:"size:500;not null"`
	ReportType  string `json:"report_type" gorm:"size:50;not null;type:enum('monthly_revenue','unpaid_passes','activity_logs')"` // monthly_revenue, unpaid_passes, activity_logs
	StudioID    uint   `json:"studio_id"`
	PeriodYear  int    `json:"period_year"`
	PeriodMonth int    `json:"period_month"`
	RecordCount int    `json:"record_count" gorm:"not null"`
	FileSize    int64  `json:"file_size" gorm:"not null"`
	Status      string `json:"status" gorm:"size:50;not null;default:'pending';type:enum('pending','completed','failed')"` // pending, completed, failed
	Error       string `json:"error" gorm:"type:text"`
}
