package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	Id         uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	FullName   string         `gorm:"type:varchar(255);not null"`
	Email      string         `gorm:"type:varchar(255);not null;uniqueIndex"`
	Password   string         `gorm:"type:varchar(255)"`
	Provider   string         `gorm:"type:varchar(50);not null;default:'local'"`
	ProviderId string         `gorm:"type:varchar(255)"`
	AvatarUrl  string         `gorm:"type:text"`
	CreatedAt  time.Time      `gorm:"autoCreateTime"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime"`
	DeletedAt  gorm.DeletedAt `gorm:"index"`
}

func (User) TableName() string {
	return "users"
}
