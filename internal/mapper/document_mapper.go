package mapper

import (
	"encoding/json"

	"deep-research-be/internal/entity"
	"deep-research-be/internal/model"

	"gorm.io/datatypes"
)

type DocumentMapper struct{}

func NewDocumentMapper() *DocumentMapper {
	return &DocumentMapper{}
}

func (m *DocumentMapper) ToEntity(d *model.Document) *entity.Document {
	if d == nil {
		return nil
	}

	var citations []entity.Citation
	if len(d.Citations) > 0 {
		// A malformed citations column degrades to an empty list.
		_ = json.Unmarshal(d.Citations, &citations)
	}

	return &entity.Document{
		Id:            d.Id,
		UserId:        d.UserId,
		ChatSessionId: d.ChatSessionId,
		Title:         d.Title,
		Content:       d.Content,
		Kind:          d.Kind,
		Citations:     citations,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     optionalTime(d.UpdatedAt),
		DeletedAt:     deletedAtPtr(d.DeletedAt),
	}
}

func (m *DocumentMapper) ToModel(d *entity.Document) *model.Document {
	if d == nil {
		return nil
	}

	var citations datatypes.JSON
	if len(d.Citations) > 0 {
		raw, err := json.Marshal(d.Citations)
		if err == nil {
			citations = datatypes.JSON(raw)
		}
	}

	return &model.Document{
		Id:            d.Id,
		UserId:        d.UserId,
		ChatSessionId: d.ChatSessionId,
		Title:         d.Title,
		Content:       d.Content,
		Kind:          d.Kind,
		Citations:     citations,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     valueTime(d.UpdatedAt),
		DeletedAt:     deletedAtValue(d.DeletedAt),
	}
}
