package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"bidemoloader/models"
	"bidemoloader/pkg/logger"
	"bidemoloader/pkg/metrics"
	"bidemoloader/repository"
	"bidemoloader/utils"

	"gorm.io/gorm"
)

// LookupKey selects which dashboard field identifies an existing dashboard.
type LookupKey int

const (
	LookupBySlug LookupKey = iota
	LookupByTitle
)

// LayoutSlot is one grid cell of a dashboard, keyed by slice name.
type LayoutSlot struct {
	SliceName string `validate:"required"`
	Col       int    `validate:"min=1"`
	Row       int    `validate:"min=1"`
	SizeX     int    `validate:"min=1"`
	SizeY     int    `validate:"min=1"`
}

// DashboardSpec describes a dashboard to create or overwrite.
type DashboardSpec struct {
	Title    string `validate:"required"`
	Slug     string `validate:"required,slug"`
	LookupBy LookupKey
	Layout   []LayoutSlot    `validate:"required,min=1,dive"`
	Members  []*models.Slice `validate:"required,min=1"`
}

// position is the stored form of a layout slot.
type position struct {
	SizeY   int    `json:"size_y"`
	SizeX   int    `json:"size_x"`
	Col     int    `json:"col"`
	SliceID string `json:"slice_id"`
	Row     int    `json:"row"`
}

// DashboardService assembles dashboards from persisted slices.
type DashboardService interface {
	// Upsert finds the dashboard by spec.LookupBy and overwrites its title,
	// slug, layout and membership.
	Upsert(ctx context.Context, spec DashboardSpec) (*models.Dashboard, error)
}

type dashboardService struct {
	baseRepo repository.BaseRepository
	dashRepo repository.DashboardRepository
	metrics  *metrics.Recorder
}

// NewDashboardService creates a dashboard service. rec may be nil.
func NewDashboardService(baseRepo repository.BaseRepository, dashRepo repository.DashboardRepository, rec *metrics.Recorder) DashboardService {
	return &dashboardService{baseRepo: baseRepo, dashRepo: dashRepo, metrics: rec}
}

// slotMatches reports whether a slot name refers to slc. Slots name the
// base slice, so the search suffix is ignored.
func slotMatches(slot string, slc *models.Slice) bool {
	return slc.SliceName == slot || strings.TrimSuffix(slc.SliceName, SearchSliceSuffix) == slot
}

// BuildPositionJSON resolves every slot to a member's ID. Each member must
// occupy exactly one slot and every slot must name a member.
func BuildPositionJSON(layout []LayoutSlot, members []*models.Slice) (string, error) {
	used := make(map[uint]string, len(members))
	positions := make([]position, 0, len(layout))

	for _, slot := range layout {
		var match *models.Slice
		for _, m := range members {
			if m != nil && slotMatches(slot.SliceName, m) {
				match = m
				break
			}
		}
		if match == nil {
			return "", fmt.Errorf("layout slot %q does not name a member slice", slot.SliceName)
		}
		if prev, dup := used[match.ID]; dup {
			return "", fmt.Errorf("slice %q occupies slots %q and %q", match.SliceName, prev, slot.SliceName)
		}
		used[match.ID] = slot.SliceName
		positions = append(positions, position{
			SizeY:   slot.SizeY,
			SizeX:   slot.SizeX,
			Col:     slot.Col,
			SliceID: strconv.FormatUint(uint64(match.ID), 10),
			Row:     slot.Row,
		})
	}
	for _, m := range members {
		if _, ok := used[m.ID]; !ok {
			return "", fmt.Errorf("member slice %q has no layout slot", m.SliceName)
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "    ")
	if err := enc.Encode(positions); err != nil {
		return "", fmt.Errorf("encode layout: %w", err)
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

func (s *dashboardService) Upsert(ctx context.Context, spec DashboardSpec) (*models.Dashboard, error) {
	if err := utils.ValidateStruct(spec); err != nil {
		return nil, err
	}
	for _, m := range spec.Members {
		if m == nil || m.ID == 0 {
			return nil, fmt.Errorf("dashboard %s: members must be persisted slices", spec.Slug)
		}
	}
	positionJSON, err := BuildPositionJSON(spec.Layout, spec.Members)
	if err != nil {
		return nil, fmt.Errorf("dashboard %s: %w", spec.Slug, err)
	}

	tx := s.baseRepo.BeginContext(ctx)
	if tx.Error != nil {
		return nil, fmt.Errorf("begin transaction: %w", tx.Error)
	}

	dash, err := s.lookup(tx, spec)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if dash == nil {
		dash = &models.Dashboard{}
	}
	dash.DashboardTitle = spec.Title
	dash.Slug = spec.Slug
	dash.PositionJSON = positionJSON

	if err := s.dashRepo.Save(tx, dash); err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("save dashboard %s: %w", spec.Slug, err)
	}
	if err := s.dashRepo.ReplaceSlices(tx, dash, spec.Members); err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("set slices of dashboard %s: %w", spec.Slug, err)
	}
	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("commit dashboard %s: %w", spec.Slug, err)
	}

	s.metrics.DashboardSaved()
	logger.Infof("Saved dashboard %q (slug=%s, id=%d) with %d slices in %d slots",
		dash.DashboardTitle, dash.Slug, dash.ID, len(spec.Members), len(spec.Layout))
	return dash, nil
}

// lookup finds the dashboard by the configured key. A title miss falls back
// to the slug so a retitled dashboard does not collide with its own slug.
func (s *dashboardService) lookup(tx *gorm.DB, spec DashboardSpec) (*models.Dashboard, error) {
	if spec.LookupBy == LookupByTitle {
		dash, err := s.dashRepo.GetByTitle(tx, spec.Title)
		if err != nil {
			return nil, fmt.Errorf("look up dashboard %q: %w", spec.Title, err)
		}
		if dash != nil {
			return dash, nil
		}
	}
	dash, err := s.dashRepo.GetBySlug(tx, spec.Slug)
	if err != nil {
		return nil, fmt.Errorf("look up dashboard %s: %w", spec.Slug, err)
	}
	return dash, nil
}
