package mapper

import (
	"time"

	"deep-research-be/internal/entity"
	"deep-research-be/internal/model"

	"gorm.io/gorm"
)

type UserMapper struct{}

func NewUserMapper() *UserMapper {
	return &UserMapper{}
}

func (m *UserMapper) ToEntity(u *model.User) *entity.User {
	if u == nil {
		return nil
	}
	return &entity.User{
		Id:         u.Id,
		FullName:   u.FullName,
		Email:      u.Email,
		Password:   u.Password,
		Provider:   u.Provider,
		ProviderId: u.ProviderId,
		AvatarUrl:  u.AvatarUrl,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  optionalTime(u.UpdatedAt),
		DeletedAt:  deletedAtPtr(u.DeletedAt),
	}
}

func (m *UserMapper) ToModel(u *entity.User) *model.User {
	if u == nil {
		return nil
	}
	return &model.User{
		Id:         u.Id,
		FullName:   u.FullName,
		Email:      u.Email,
		Password:   u.Password,
		Provider:   u.Provider,
		ProviderId: u.ProviderId,
		AvatarUrl:  u.AvatarUrl,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  valueTime(u.UpdatedAt),
		DeletedAt:  deletedAtValue(u.DeletedAt),
	}
}

// Shared conversion helpers for all mappers in this package.

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	out := t
	return &out
}

func valueTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

func deletedAtPtr(d gorm.DeletedAt) *time.Time {
	if !d.Valid {
		return nil
	}
	t := d.Time
	return &t
}

func deletedAtValue(t *time.Time) gorm.DeletedAt {
	if t == nil {
		return gorm.DeletedAt{}
	}
	return gorm.DeletedAt{Time: *t, Valid: true}
}
