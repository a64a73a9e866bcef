package service

import (
	"context"

	"deep-research-be/internal/dto"
	"deep-research-be/internal/entity"
	"deep-research-be/internal/repository/specification"
	"deep-research-be/internal/repository/unitofwork"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IDocumentService interface {
	GetDocument(ctx context.Context, userId uuid.UUID, documentId uuid.UUID) (*dto.DocumentResponse, error)
	GetDocuments(ctx context.Context, userId uuid.UUID, search string) ([]dto.DocumentListItemResponse, error)
	DeleteDocument(ctx context.Context, userId uuid.UUID, documentId uuid.UUID) error
}

type documentService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewDocumentService(uowFactory unitofwork.RepositoryFactory) IDocumentService {
	return &documentService{uowFactory: uowFactory}
}

func (s *documentService) GetDocument(ctx context.Context, userId uuid.UUID, documentId uuid.UUID) (*dto.DocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	document, err := s.findOwnedDocument(ctx, uow, userId, documentId)
	if err != nil {
		return nil, err
	}

	return &dto.DocumentResponse{
		Id:        document.Id,
		Title:     document.Title,
		Kind:      document.Kind,
		Content:   document.Content,
		Citations: document.Citations,
		CreatedAt: document.CreatedAt,
	}, nil
}

func (s *documentService) GetDocuments(ctx context.Context, userId uuid.UUID, search string) ([]dto.DocumentListItemResponse, error) {
	specs := []specification.Specification{
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	}
	if search != "" {
		specs = append(specs, specification.DocumentSearchQuery{Query: search})
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	documents, err := uow.DocumentRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	res := make([]dto.DocumentListItemResponse, 0, len(documents))
	for _, document := range documents {
		res = append(res, dto.DocumentListItemResponse{
			Id:        document.Id,
			Title:     document.Title,
			Kind:      document.Kind,
			CreatedAt: document.CreatedAt,
		})
	}
	return res, nil
}

func (s *documentService) DeleteDocument(ctx context.Context, userId uuid.UUID, documentId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if _, err := s.findOwnedDocument(ctx, uow, userId, documentId); err != nil {
		return err
	}
	return uow.DocumentRepository().Delete(ctx, documentId)
}

func (s *documentService) findOwnedDocument(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, documentId uuid.UUID) (*entity.Document, error) {
	document, err := uow.DocumentRepository().FindOne(ctx,
		specification.ByID{ID: documentId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if document == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "document not found")
	}
	return document, nil
}
