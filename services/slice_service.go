package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"bidemoloader/models"
	"bidemoloader/pkg/logger"
	"bidemoloader/pkg/metrics"
	"bidemoloader/repository"
	"bidemoloader/utils"
)

// SearchSliceSuffix marks slices built on a search index so they do not
// collide with the table-backed slice of the same name.
const SearchSliceSuffix = " (ES)"

// SliceSpec describes a slice to (re)create.
type SliceSpec struct {
	Name       string            `validate:"required"`
	VizType    string            `validate:"required"`
	Datasource models.Datasource `validate:"-"`
	Defaults   map[string]interface{}
	Params     map[string]interface{}
}

// SliceService replaces slices by name.
type SliceService interface {
	// GetOrCreateSlice deletes any slice with the effective name of spec and
	// creates a new one with merged parameters.
	GetOrCreateSlice(ctx context.Context, spec SliceSpec) (*models.Slice, error)
}

type sliceService struct {
	baseRepo  repository.BaseRepository
	sliceRepo repository.SliceRepository
	metrics   *metrics.Recorder
}

// NewSliceService creates a slice service. rec may be nil.
func NewSliceService(baseRepo repository.BaseRepository, sliceRepo repository.SliceRepository, rec *metrics.Recorder) SliceService {
	return &sliceService{baseRepo: baseRepo, sliceRepo: sliceRepo, metrics: rec}
}

// EffectiveSliceName returns the stored name of a slice on ds.
func EffectiveSliceName(name string, ds models.Datasource) string {
	if ds.DatasourceType() == models.DatasourceTypeSearch {
		return name + SearchSliceSuffix
	}
	return name
}

// BuildParams merges defaults, the datasource identity and params. Later
// sources win.
func BuildParams(name, vizType string, ds models.Datasource, defaults, params map[string]interface{}) map[string]interface{} {
	p := make(map[string]interface{}, len(defaults)+len(params)+5)
	for k, v := range defaults {
		p[k] = v
	}
	p["slice_name"] = name
	p["viz_type"] = vizType
	p["datasource_type"] = ds.DatasourceType()
	p["datasource_id"] = ds.DatasourceID()
	p["datasource_name"] = ds.DatasourceName()
	for k, v := range params {
		p[k] = v
	}
	return p
}

// MarshalParams serializes params with sorted keys and a four-space indent.
// HTML is left unescaped so markup slices stay readable.
func MarshalParams(params map[string]interface{}) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(params); err != nil {
		return "", fmt.Errorf("encode slice params: %w", err)
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

func (s *sliceService) GetOrCreateSlice(ctx context.Context, spec SliceSpec) (*models.Slice, error) {
	if err := utils.ValidateStruct(spec); err != nil {
		return nil, err
	}
	if spec.Datasource == nil {
		return nil, fmt.Errorf("slice %s: no datasource", spec.Name)
	}
	ds := spec.Datasource
	name := EffectiveSliceName(spec.Name, ds)

	params, err := MarshalParams(BuildParams(name, spec.VizType, ds, spec.Defaults, spec.Params))
	if err != nil {
		return nil, fmt.Errorf("slice %s: %w", name, err)
	}

	slc := &models.Slice{
		SliceName:      name,
		VizType:        spec.VizType,
		DatasourceType: ds.DatasourceType(),
		Params:         params,
	}
	id := ds.DatasourceID()
	if ds.DatasourceType() == models.DatasourceTypeSearch {
		slc.SearchDatasourceID = &id
	} else {
		slc.TableID = &id
	}
	if err := utils.ValidateStruct(slc); err != nil {
		return nil, err
	}

	tx := s.baseRepo.BeginContext(ctx)
	if tx.Error != nil {
		return nil, fmt.Errorf("begin transaction: %w", tx.Error)
	}

	existing, err := s.sliceRepo.GetByName(tx, name)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("look up slice %s: %w", name, err)
	}
	if existing != nil {
		logger.Debugf("Replacing slice %s (id=%d)", name, existing.ID)
		if err := s.sliceRepo.Delete(tx, existing); err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("delete slice %s: %w", name, err)
		}
	}
	if err := s.sliceRepo.Create(tx, slc); err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("create slice %s: %w", name, err)
	}
	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("commit slice %s: %w", name, err)
	}

	s.metrics.SliceCreated()
	logger.Infof("Created slice %s (id=%d, viz=%s)", name, slc.ID, slc.VizType)
	return slc, nil
}
