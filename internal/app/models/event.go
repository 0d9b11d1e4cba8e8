package models

import "time"

// RSVPStatus is a user's answer to an event invitation
type RSVPStatus string

const (
	RSVPGoing      RSVPStatus = "going"
	RSVPInterested RSVPStatus = "interested"
	RSVPNotGoing   RSVPStatus = "not_going"
)

// AttendanceStatus is recorded by admins after an event
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceExcused AttendanceStatus = "excused"
)

// Event is a scheduled community event
type Event struct {
	ID            int64      `json:"id" db:"id"`
	Title         string     `json:"title" db:"title"`
	Description   *string    `json:"description,omitempty" db:"description"`
	Location      *string    `json:"location,omitempty" db:"location"`
	StartsAt      time.Time  `json:"startsAt" db:"starts_at"`
	EndsAt        *time.Time `json:"endsAt,omitempty" db:"ends_at"`
	Capacity      *int       `json:"capacity,omitempty" db:"capacity"`
	CoverImageURL *string    `json:"coverImageUrl,omitempty" db:"cover_image_url"`
	CreatedBy     *int64     `json:"createdBy,omitempty" db:"created_by"`
	CreatedAt     time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time  `json:"updatedAt" db:"updated_at"`

	GoingCount      int64       `json:"goingCount"`
	InterestedCount int64       `json:"interestedCount"`
	MyRSVP          *RSVPStatus `json:"myRsvp,omitempty"`
}

// EventRSVP is a user's RSVP for an event
type EventRSVP struct {
	EventID   int64        `json:"eventId" db:"event_id"`
	UserID    int64        `json:"userId" db:"user_id"`
	Status    RSVPStatus   `json:"status" db:"status"`
	CreatedAt time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time    `json:"updatedAt" db:"updated_at"`
	User      *UserSummary `json:"user,omitempty"`
}

// Attendance is one attendance mark for an event
type Attendance struct {
	EventID  int64            `json:"eventId" db:"event_id"`
	UserID   int64            `json:"userId" db:"user_id"`
	Status   AttendanceStatus `json:"status" db:"status"`
	MarkedBy *int64           `json:"markedBy,omitempty" db:"marked_by"`
	MarkedAt time.Time        `json:"markedAt" db:"marked_at"`

	User       *UserSummary `json:"user,omitempty"`
	EventTitle string       `json:"eventTitle,omitempty"`
}
