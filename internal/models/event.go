package models

import "time"

// EventDateLayout is the accepted input format for event dates.
const EventDateLayout = "2006-01-02T15:04"

// Event is a dated happening owned by exactly one club.
type Event struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:120;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Date        time.Time `gorm:"not null" json:"date"`
	Location    string    `gorm:"size:200" json:"location"`
	ClubID      uint      `gorm:"not null;index" json:"club_id"`
	Club        *Club     `gorm:"foreignKey:ClubID" json:"club,omitempty"`
	ImageURL    string    `gorm:"size:255" json:"image_url,omitempty"`
	Attendees   []User    `gorm:"many2many:event_attendees" json:"attendees,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Event) TableName() string {
	return "events"
}

// EventAttendee is the join row between an event and an attending user.
type EventAttendee struct {
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	EventID   uint      `gorm:"primaryKey;autoIncrement:false;index" json:"event_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM.
func (EventAttendee) TableName() string {
	return "event_attendees"
}
