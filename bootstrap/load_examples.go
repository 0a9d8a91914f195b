package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bidemoloader/models"
	"bidemoloader/pkg/logger"
	"bidemoloader/pkg/metrics"
	"bidemoloader/repository"
	"bidemoloader/services"
	"bidemoloader/services/datafiles"
	"bidemoloader/services/importer"
	"bidemoloader/services/metadata"
	"bidemoloader/services/search"

	"gorm.io/gorm"
)

// Example loader names accepted in Options.Examples.
const (
	ExampleEnergy           = "energy"
	ExampleWorldBank        = "world_bank"
	ExampleCSSTemplates     = "css_templates"
	ExampleBirthNames       = "birth_names"
	ExampleUnicodeTest      = "unicode_test"
	ExampleRandomTimeSeries = "random_time_series"
)

// Options controls a LoadExamples run.
type Options struct {
	// DatabaseURI is stored on the "main" connection record.
	DatabaseURI string
	// RowLimit is stamped into slice parameters.
	RowLimit int
	// ElasticsearchURLs, when set, sends the JSON datasets to the search cluster.
	ElasticsearchURLs []string
	// Examples restricts the run to the named loaders, in run order. Empty runs all.
	Examples []string
	// LoadTestData enables the unicode test loader when Examples is empty.
	LoadTestData bool
	// NewSearch overrides the search client constructor.
	NewSearch search.Factory
}

// Summary reports what a run wrote.
type Summary struct {
	Loaders      []string
	Datasources  []string
	Slices       int
	Dashboards   int
	CssTemplates int
	Duration     time.Duration
}

// Loader runs the example recipes against one metadata database.
type Loader struct {
	source     datafiles.Source
	importer   *importer.Importer
	refs       services.ReferenceService
	slices     services.SliceService
	dashboards services.DashboardService
	css        services.CssTemplateService
	rowLimit   int
	now        func() time.Time
	summary    *Summary
}

// NewLoader wires the services used by the example recipes.
func NewLoader(db *gorm.DB, source datafiles.Source, opts Options, rec *metrics.Recorder) *Loader {
	newSearch := opts.NewSearch
	if newSearch == nil {
		newSearch = search.NewClient
	}
	base := repository.NewBaseRepository(db)
	refs := services.NewReferenceService(base, repository.NewDatabaseRepository(db), repository.NewSearchClusterRepository(db))

	return &Loader{
		source: source,
		importer: importer.New(db, importer.Options{
			Source:      source,
			Databases:   refs,
			Refresher:   metadata.NewRefresher(db, repository.NewColumnRepository(db), newSearch),
			NewSearch:   newSearch,
			Metrics:     rec,
			DatabaseURI: opts.DatabaseURI,
		}),
		refs:       refs,
		slices:     services.NewSliceService(base, repository.NewSliceRepository(db), rec),
		dashboards: services.NewDashboardService(base, repository.NewDashboardRepository(db), rec),
		css:        services.NewCssTemplateService(base, repository.NewCssTemplateRepository(db)),
		rowLimit:   opts.RowLimit,
		now:        time.Now,
		summary:    &Summary{},
	}
}

type step struct {
	name string
	run  func(ctx context.Context, cluster *models.SearchCluster) error
}

func (l *Loader) steps() []step {
	return []step{
		{ExampleEnergy, l.LoadEnergy},
		{ExampleWorldBank, l.LoadWorldBankHealthNPop},
		{ExampleCSSTemplates, l.LoadCSSTemplates},
		{ExampleBirthNames, l.LoadBirthNames},
		{ExampleUnicodeTest, l.LoadUnicodeTestData},
		{ExampleRandomTimeSeries, l.LoadRandomTimeSeriesData},
	}
}

// selectSteps resolves the requested loaders. Without an explicit list every
// loader runs except the unicode test data, which needs loadTestData.
func selectSteps(all []step, names []string, loadTestData bool) ([]step, error) {
	if len(names) == 0 {
		out := make([]step, 0, len(all))
		for _, s := range all {
			if s.name == ExampleUnicodeTest && !loadTestData {
				continue
			}
			out = append(out, s)
		}
		return out, nil
	}

	byName := make(map[string]step, len(all))
	for _, s := range all {
		byName[s.name] = s
	}
	out := make([]step, 0, len(names))
	for _, n := range names {
		s, ok := byName[strings.ToLower(strings.TrimSpace(n))]
		if !ok {
			return nil, fmt.Errorf("unknown example %q", n)
		}
		out = append(out, s)
	}
	return out, nil
}

// LoadExamples registers the search cluster when configured and runs the
// selected example loaders in order. The first failure stops the run.
func LoadExamples(ctx context.Context, db *gorm.DB, source datafiles.Source, opts Options, rec *metrics.Recorder) (*Summary, error) {
	start := time.Now()
	logger.Infof("Starting example loading...")

	l := NewLoader(db, source, opts, rec)
	selected, err := selectSteps(l.steps(), opts.Examples, opts.LoadTestData)
	if err != nil {
		return nil, err
	}

	var cluster *models.SearchCluster
	if len(opts.ElasticsearchURLs) > 0 {
		cluster, err = l.refs.GetOrCreateSearchCluster(ctx, services.SearchClusterName, opts.ElasticsearchURLs)
		if err != nil {
			return nil, err
		}
	}

	for _, s := range selected {
		if err := ctx.Err(); err != nil {
			return l.summary, err
		}
		logger.Infof("Loading example %s", s.name)
		stepStart := time.Now()
		if err := s.run(ctx, cluster); err != nil {
			logger.Errorf("Failed to load example %s: %v", s.name, err)
			return l.summary, fmt.Errorf("load %s: %w", s.name, err)
		}
		rec.LoaderFinished(s.name, time.Since(stepStart).Seconds())
		l.summary.Loaders = append(l.summary.Loaders, s.name)
		logger.Infof("%s", strings.Repeat("-", 80))
	}

	l.summary.Duration = time.Since(start)
	rec.MarkSuccess()
	logger.Infof("Example loading completed: %d loaders, %d datasources, %d slices, %d dashboards, %d CSS templates in %s",
		len(l.summary.Loaders), len(l.summary.Datasources), l.summary.Slices, l.summary.Dashboards,
		l.summary.CssTemplates, l.summary.Duration.Round(time.Millisecond))
	return l.summary, nil
}

// sliceDef is one literal slice recipe.
type sliceDef struct {
	name    string
	vizType string
	params  map[string]interface{}
}

func (l *Loader) importData(ctx context.Context, spec importer.ImportSpec, cluster *models.SearchCluster) (models.Datasource, error) {
	ds, err := l.importer.ImportData(ctx, spec, cluster)
	if err != nil {
		return nil, err
	}
	l.summary.Datasources = append(l.summary.Datasources, ds.DatasourceName())
	return ds, nil
}

func (l *Loader) createSlices(ctx context.Context, ds models.Datasource, defaults map[string]interface{}, defs []sliceDef) ([]*models.Slice, error) {
	out := make([]*models.Slice, 0, len(defs))
	for _, d := range defs {
		slc, err := l.slices.GetOrCreateSlice(ctx, services.SliceSpec{
			Name:       d.name,
			VizType:    d.vizType,
			Datasource: ds,
			Defaults:   defaults,
			Params:     d.params,
		})
		if err != nil {
			return nil, err
		}
		l.summary.Slices++
		out = append(out, slc)
	}
	return out, nil
}

func (l *Loader) upsertDashboard(ctx context.Context, spec services.DashboardSpec) error {
	if _, err := l.dashboards.Upsert(ctx, spec); err != nil {
		return err
	}
	l.summary.Dashboards++
	return nil
}
