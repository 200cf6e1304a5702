package database

import "clubhouse/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
// Join models follow the tables they reference.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Club{},
		&models.Event{},
		&models.ClubMember{},
		&models.EventAttendee{},
		&models.ClubRequest{},
	}
}
