package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByLabel struct {
	Label string
}

func (s ByLabel) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("label = ?", s.Label)
}

type ByNodeID struct {
	NodeID uuid.UUID
}

func (s ByNodeID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("node_id = ?", s.NodeID)
}

// ByNodeName filters nodes by name (case-insensitive)
type ByNodeName struct {
	Name string
}

func (s ByNodeName) Apply(db *gorm.DB) *gorm.DB {
	pattern := "%" + s.Name + "%"
	return db.Where("name ILIKE ?", pattern)
}
