package model

import "time"

// EventModel mirrors the 'events' table.
type EventModel struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	Title       string    `gorm:"type:varchar(200);not null"`
	Details     string    `gorm:"type:text"`
	DateCreated time.Time `gorm:"not null"`

	Images []PhotoModel `gorm:"foreignKey:EventID"`
}

// TableName explicitly sets the table name for GORM.
func (EventModel) TableName() string {
	return "events"
}

// PhotoModel mirrors the 'photos' table. A partial unique index keeps at most one
// main photo per event.
type PhotoModel struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	EventID     int64     `gorm:"not null;index"`
	FileName    string    `gorm:"type:text;not null"`
	IsMain      bool      `gorm:"not null;default:false"`
	PublicID    string    `gorm:"type:varchar(255);not null;default:''"`
	DateCreated time.Time `gorm:"not null"`
}

// TableName explicitly sets the table name for GORM.
func (PhotoModel) TableName() string {
	return "photos"
}
