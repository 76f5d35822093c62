package model

import "time"

// SubscriberModel mirrors the 'subscribers' table. The email is the primary key.
type SubscriberModel struct {
	Email       string    `gorm:"type:varchar(255);primaryKey"`
	DateCreated time.Time `gorm:"not null"`
}

// TableName explicitly sets the table name for GORM.
func (SubscriberModel) TableName() string {
	return "subscribers"
}
