package services

import (
	"context"
	"fmt"

	"bidemoloader/models"
	"bidemoloader/pkg/logger"
	"bidemoloader/repository"
	"bidemoloader/utils"
)

// SearchClusterName is the connection record the example indices are registered under.
const SearchClusterName = "ElasticSearch examples"

// ReferenceService resolves the connection records example datasources point at.
type ReferenceService interface {
	// GetOrCreateDatabase finds the database record called name, creating it
	// when absent, and sets its connection URI.
	GetOrCreateDatabase(ctx context.Context, name, uri string) (*models.Database, error)

	// GetOrCreateSearchCluster finds the cluster record called name, creating
	// it when absent, and sets its node URLs.
	GetOrCreateSearchCluster(ctx context.Context, name string, urls []string) (*models.SearchCluster, error)
}

type referenceService struct {
	baseRepo    repository.BaseRepository
	dbRepo      repository.DatabaseRepository
	clusterRepo repository.SearchClusterRepository
}

// NewReferenceService creates a reference service with the given repositories.
func NewReferenceService(
	baseRepo repository.BaseRepository,
	dbRepo repository.DatabaseRepository,
	clusterRepo repository.SearchClusterRepository,
) ReferenceService {
	return &referenceService{
		baseRepo:    baseRepo,
		dbRepo:      dbRepo,
		clusterRepo: clusterRepo,
	}
}

func (s *referenceService) GetOrCreateDatabase(ctx context.Context, name, uri string) (*models.Database, error) {
	logger.Infof("Creating database reference %s", name)
	db := s.baseRepo.DB().WithContext(ctx)

	rec, err := s.dbRepo.GetByName(db, name)
	if err != nil {
		return nil, fmt.Errorf("look up database %s: %w", name, err)
	}
	if rec == nil {
		rec = &models.Database{DatabaseName: name}
	}
	rec.SqlalchemyURI = uri
	if err := utils.ValidateStruct(rec); err != nil {
		return nil, err
	}
	if err := s.dbRepo.Save(db, rec); err != nil {
		return nil, fmt.Errorf("save database %s: %w", name, err)
	}
	return rec, nil
}

func (s *referenceService) GetOrCreateSearchCluster(ctx context.Context, name string, urls []string) (*models.SearchCluster, error) {
	logger.Infof("Creating search cluster reference %s", name)
	db := s.baseRepo.DB().WithContext(ctx)

	rec, err := s.clusterRepo.GetByName(db, name)
	if err != nil {
		return nil, fmt.Errorf("look up search cluster %s: %w", name, err)
	}
	if rec == nil {
		rec = &models.SearchCluster{ClusterName: name}
	}
	rec.URLs = append([]string(nil), urls...)
	if err := utils.ValidateStruct(rec); err != nil {
		return nil, err
	}
	if err := s.clusterRepo.Save(db, rec); err != nil {
		return nil, fmt.Errorf("save search cluster %s: %w", name, err)
	}
	return rec, nil
}
