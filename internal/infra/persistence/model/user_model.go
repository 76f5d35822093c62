// Package model holds the GORM persistence models mirroring the database tables.
package model

import "time"

// UserModel mirrors the 'users' table.
type UserModel struct {
	ID             int64     `gorm:"primaryKey;autoIncrement"`
	Name           string    `gorm:"type:varchar(50);not null"`
	Email          string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash   []byte    `gorm:"type:bytea;not null"`
	PasswordSalt   []byte    `gorm:"type:bytea;not null"`
	DateRegistered time.Time `gorm:"not null"`
	Role           string    `gorm:"type:varchar(20);not null"`
	Enabled        bool      `gorm:"not null;default:true"`
	EmailVerified  bool      `gorm:"not null;default:false"`
}

// TableName explicitly sets the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}
