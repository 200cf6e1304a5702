package models

import "time"

// Club is a group of users led by a president.
type Club struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:120;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	ImageURL    string    `gorm:"size:255" json:"image_url,omitempty"`
	PresidentID *uint     `gorm:"index" json:"president_id"`
	President   *User     `gorm:"foreignKey:PresidentID;constraint:OnDelete:SET NULL" json:"president,omitempty"`
	Members     []User    `gorm:"many2many:club_members" json:"members,omitempty"`
	Events      []Event   `gorm:"foreignKey:ClubID;constraint:OnDelete:CASCADE" json:"events,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Club) TableName() string {
	return "clubs"
}

// ClubMember is the join row between a club and one of its members.
type ClubMember struct {
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	ClubID    uint      `gorm:"primaryKey;autoIncrement:false;index" json:"club_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM.
func (ClubMember) TableName() string {
	return "club_members"
}
