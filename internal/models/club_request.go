package models

import "time"

// ClubRequestStatus defines lifecycle states for club creation requests.
type ClubRequestStatus string

const (
	// ClubRequestStatusPending indicates the request is awaiting review.
	ClubRequestStatusPending ClubRequestStatus = "pending"
	// ClubRequestStatusApproved indicates the request was accepted and a club created.
	ClubRequestStatusApproved ClubRequestStatus = "approved"
	// ClubRequestStatusRejected indicates the request was denied.
	ClubRequestStatusRejected ClubRequestStatus = "rejected"
)

// ClubRequestAction is an admin decision applied to a pending request.
type ClubRequestAction string

const (
	ClubRequestActionApprove ClubRequestAction = "approve"
	ClubRequestActionReject  ClubRequestAction = "reject"
)

// ClubRequest is a member-submitted proposal to create a club.
type ClubRequest struct {
	ID               uint              `gorm:"primaryKey" json:"id"`
	Name             string            `gorm:"size:120;not null" json:"name"`
	Description      string            `gorm:"type:text" json:"description"`
	UserID           uint              `gorm:"not null;index" json:"user_id"`
	User             *User             `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Status           ClubRequestStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ReviewedByUserID *uint             `json:"reviewed_by_user_id,omitempty"`
	ReviewedByUser   *User             `gorm:"foreignKey:ReviewedByUserID" json:"reviewed_by_user,omitempty"`
	ReviewedAt       *time.Time        `json:"reviewed_at,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (ClubRequest) TableName() string {
	return "club_requests"
}

// Terminal reports whether the request has already been resolved.
func (r *ClubRequest) Terminal() bool {
	return r.Status == ClubRequestStatusApproved || r.Status == ClubRequestStatusRejected
}
