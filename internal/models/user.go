package models

import (
	"time"

	"github.com/google/uuid"
)

// User maps one row of the users table. ID is internal and never serialized;
// clients only ever see UUID.
type User struct {
	ID        uint64    `json:"-" gorm:"column:id;primaryKey;autoIncrement"`
	UUID      uuid.UUID `json:"uuid" gorm:"column:uuid;type:uuid;uniqueIndex;not null"`
	Username  string    `json:"username" gorm:"column:username;uniqueIndex;not null"`
	Email     string    `json:"email" gorm:"column:email;not null"`
	FullName  string    `json:"full_name" gorm:"column:full_name;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}
