package repository

import "time"

type clientRecord struct {
	ID        string  `gorm:"primaryKey;type:varchar(36)"`
	Name      string  `gorm:"not null"`
	Email     *string `gorm:"default:null"`
	CreatedAt time.Time
}

func (clientRecord) TableName() string {
	return "clients"
}

// DueDate stays a nullable string so malformed legacy values can be read back and skipped.
type projectRecord struct {
	ID        string  `gorm:"primaryKey;type:varchar(36)"`
	Name      string  `gorm:"not null"`
	DueDate   *string `gorm:"type:date"`
	Status    string  `gorm:"not null;default:pending;index"`
	ClientID  *string `gorm:"type:varchar(36);index"`
	CreatedAt time.Time
}

func (projectRecord) TableName() string {
	return "projects"
}

type alertRecord struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)"`
	ProjectID string    `gorm:"type:varchar(36);not null;index:idx_alerts_project_type_created,priority:1"`
	AlertType string    `gorm:"not null;index:idx_alerts_project_type_created,priority:2"`
	Message   string    `gorm:"not null"`
	IsRead    bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"index:idx_alerts_project_type_created,priority:3"`
}

func (alertRecord) TableName() string {
	return "alerts"
}
