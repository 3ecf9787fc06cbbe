package performance

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

func (s *Service) ListTemplates(ctx context.Context, tenantID string) ([]Template, error) {
	return s.store.ListTemplates(ctx, tenantID)
}

func (s *Service) GetTemplate(ctx context.Context, tenantID, templateID string) (Template, error) {
	return s.store.GetTemplate(ctx, tenantID, templateID)
}

func (s *Service) CreateTemplate(ctx context.Context, tenantID string, tpl Template) (string, error) {
	tpl = normalizeTemplate(tpl)
	if err := invalid(ErrInvalidTemplate, ValidateTemplate(tpl)); err != nil {
		return "", err
	}
	return s.store.CreateTemplate(ctx, tenantID, tpl)
}

// UpdateTemplate replaces a template. Templates referenced by an assessment
// are frozen so stored records keep matching their weight tree.
func (s *Service) UpdateTemplate(ctx context.Context, tenantID string, tpl Template) error {
	if _, err := s.store.GetTemplate(ctx, tenantID, tpl.ID); err != nil {
		return err
	}
	tpl = normalizeTemplate(tpl)
	if err := invalid(ErrInvalidTemplate, ValidateTemplate(tpl)); err != nil {
		return err
	}
	inUse, err := s.store.TemplateInUse(ctx, tenantID, tpl.ID)
	if err != nil {
		return err
	}
	if inUse {
		return ErrTemplateInUse
	}
	return s.store.UpdateTemplate(ctx, tenantID, tpl)
}

func (s *Service) DeleteTemplate(ctx context.Context, tenantID, templateID string) error {
	inUse, err := s.store.TemplateInUse(ctx, tenantID, templateID)
	if err != nil {
		return err
	}
	if inUse {
		return ErrTemplateInUse
	}
	return s.store.DeleteTemplate(ctx, tenantID, templateID)
}

// normalizeTemplate trims names and assigns ids to new categories and items.
func normalizeTemplate(tpl Template) Template {
	tpl.Name = strings.TrimSpace(tpl.Name)
	categories := make([]TemplateCategory, len(tpl.Categories))
	for i, category := range tpl.Categories {
		category.Name = strings.TrimSpace(category.Name)
		if category.ID == "" {
			category.ID = uuid.NewString()
		}
		items := make([]TemplateItem, len(category.Items))
		for j, item := range category.Items {
			item.Name = strings.TrimSpace(item.Name)
			if item.ID == "" {
				item.ID = uuid.NewString()
			}
			items[j] = item
		}
		category.Items = items
		categories[i] = category
	}
	tpl.Categories = categories
	return tpl
}
