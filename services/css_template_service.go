package services

import (
	"context"
	"fmt"

	"bidemoloader/models"
	"bidemoloader/pkg/logger"
	"bidemoloader/repository"
	"bidemoloader/utils"
)

// CssTemplateService upserts named dashboard stylesheets.
type CssTemplateService interface {
	Upsert(ctx context.Context, name, css string) (*models.CssTemplate, error)
}

type cssTemplateService struct {
	baseRepo repository.BaseRepository
	cssRepo  repository.CssTemplateRepository
}

// NewCssTemplateService creates a CSS template service.
func NewCssTemplateService(baseRepo repository.BaseRepository, cssRepo repository.CssTemplateRepository) CssTemplateService {
	return &cssTemplateService{baseRepo: baseRepo, cssRepo: cssRepo}
}

func (s *cssTemplateService) Upsert(ctx context.Context, name, css string) (*models.CssTemplate, error) {
	db := s.baseRepo.DB().WithContext(ctx)

	tmpl, err := s.cssRepo.GetByName(db, name)
	if err != nil {
		return nil, fmt.Errorf("look up CSS template %s: %w", name, err)
	}
	if tmpl == nil {
		tmpl = &models.CssTemplate{TemplateName: name}
	}
	tmpl.Css = css
	if err := utils.ValidateStruct(tmpl); err != nil {
		return nil, err
	}
	if err := s.cssRepo.Save(db, tmpl); err != nil {
		return nil, fmt.Errorf("save CSS template %s: %w", name, err)
	}
	logger.Infof("Saved CSS template %s", name)
	return tmpl, nil
}
