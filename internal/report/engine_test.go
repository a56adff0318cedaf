package report

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heliograph/heliograph/internal/compose"
	"github.com/heliograph/heliograph/internal/model"
	"github.com/heliograph/heliograph/internal/output"
	"github.com/heliograph/heliograph/internal/snapshot"
	"github.com/heliograph/heliograph/internal/store"
	"github.com/heliograph/heliograph/internal/template"
	"github.com/heliograph/heliograph/pkg/errors"
)

// unavailableProvider simulates a telemetry source that is down
type unavailableProvider struct{}

func (unavailableProvider) Fetch(context.Context) (*model.Snapshot, error) {
	return nil, errors.ErrDataUnavailable(fmt.Errorf("connection refused"))
}

func (unavailableProvider) FetchCharts(context.Context) (model.ChartSet, error) {
	return nil, errors.ErrDataUnavailable(fmt.Errorf("connection refused"))
}

func setupEngine(t *testing.T) (*Engine, store.Store, string, func()) {
	t.Helper()
	s, cleanup := store.SetupTestDB(t)
	dir := t.TempDir()
	engine := NewEngine(s, snapshot.NewSimulated(0), compose.New(compose.NewChartRasterizer()), output.NewWriter(dir), 1)
	return engine, s, dir, cleanup
}

func TestEngineGenerate(t *testing.T) {
	engine, s, dir, cleanup := setupEngine(t)
	defer cleanup()

	record, err := engine.Generate(context.Background(), GenerateRequest{
		Template: template.Basic,
		Variant:  model.ReportVariantPlain,
		Text:     "Plant stable. [texto_grande:true] [color_texto:#112233]",
	})
	require.NoError(t, err)

	assert.Equal(t, "Report_1.pdf", record.Name)
	assert.Equal(t, 1, record.Version)
	assert.Equal(t, "Plant stable.", record.Content)
	assert.Equal(t, "true", record.DirectiveMap()["texto_grande"])
	assert.Equal(t, "#112233", record.DirectiveMap()["color_texto"])

	// The frozen snapshot travels with the record
	stored, err := s.Report().GetByID(record.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, stored.Data.Metrics["irradiance"].Values)

	data, err := os.ReadFile(stored.ArtifactPath)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data[:4]))
	assert.Contains(t, stored.ArtifactPath, dir)
}

func TestEngineGenerateChartVariant(t *testing.T) {
	engine, s, _, cleanup := setupEngine(t)
	defer cleanup()

	record, err := engine.Generate(context.Background(), GenerateRequest{
		Template: template.Detailed,
		Variant:  model.ReportVariantChart,
		Text:     "Afternoon peak reached. [recomendaciones:Inspect inverter 3.]",
	})
	require.NoError(t, err)
	assert.Equal(t, "Report_Graph_1.pdf", record.Name)

	stored, err := s.Report().GetByID(record.ID)
	require.NoError(t, err)
	// Chart series are frozen alongside the metrics
	assert.Len(t, stored.Data.Charts, len(model.AllChartNames()))
}

func TestEngineGenerateDefaults(t *testing.T) {
	engine, _, _, cleanup := setupEngine(t)
	defer cleanup()

	record, err := engine.Generate(context.Background(), GenerateRequest{Text: "ok"})
	require.NoError(t, err)
	assert.Equal(t, template.Basic, record.Template)
	assert.Equal(t, model.ReportVariantPlain, record.Variant)
}

func TestEngineGenerateUnknownTemplate(t *testing.T) {
	engine, s, _, cleanup := setupEngine(t)
	defer cleanup()

	_, err := engine.Generate(context.Background(), GenerateRequest{Template: "nope", Text: "ok"})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeUnknownTemplate))

	count, err := s.Report().Count()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestEngineGenerateDataUnavailable(t *testing.T) {
	s, cleanup := store.SetupTestDB(t)
	defer cleanup()
	engine := NewEngine(s, unavailableProvider{}, compose.New(compose.NewChartRasterizer()), output.NewWriter(t.TempDir()), 1)

	_, err := engine.Generate(context.Background(), GenerateRequest{Text: "ok"})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeDataUnavailable))

	// Nothing is persisted when the plant cannot be reached
	count, err := s.Report().Count()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestEngineUpgrade(t *testing.T) {
	engine, s, _, cleanup := setupEngine(t)
	defer cleanup()

	record, err := engine.Generate(context.Background(), GenerateRequest{Text: "Original text."})
	require.NoError(t, err)
	originalArtifact := mustArtifactPath(t, s, record.ID)
	frozen := record.Data.Metrics["irradiance"].Values

	upgraded, err := engine.Upgrade(context.Background(), record.ID, "Revised text. [formato_fecha:largo]")
	require.NoError(t, err)

	assert.Equal(t, 2, upgraded.Version)
	assert.Equal(t, "Revised text.", upgraded.Content)
	assert.Equal(t, "largo", upgraded.DirectiveMap()["formato_fecha"])
	// The snapshot stays frozen across upgrades
	assert.Equal(t, frozen, upgraded.Data.Metrics["irradiance"].Values)

	upgradedArtifact := mustArtifactPath(t, s, record.ID)
	assert.Contains(t, upgradedArtifact, "Report_1_v2.pdf")
	// Earlier artifacts survive the upgrade
	assert.FileExists(t, originalArtifact)
	assert.FileExists(t, upgradedArtifact)
}

func TestEngineUpgradeNotFound(t *testing.T) {
	engine, _, _, cleanup := setupEngine(t)
	defer cleanup()

	_, err := engine.Upgrade(context.Background(), "missing-id", "text")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeRecordNotFound))
}

func TestEngineUpgradeFetchesMissingCharts(t *testing.T) {
	engine, s, _, cleanup := setupEngine(t)
	defer cleanup()

	// A chart record whose frozen snapshot predates chart capture
	record := store.CreateTestRecord(t, s, func(r *model.ReportRecord) {
		r.Variant = model.ReportVariantChart
	})

	upgraded, err := engine.Upgrade(context.Background(), record.ID, "Revised.")
	require.NoError(t, err)
	assert.Equal(t, 2, upgraded.Version)
}

func TestEngineGenerateAndWait(t *testing.T) {
	engine, _, _, cleanup := setupEngine(t)
	defer cleanup()

	engine.Start()
	defer engine.Stop()

	record, err := engine.GenerateAndWait(context.Background(), GenerateRequest{Text: "Queued generation."})
	require.NoError(t, err)
	assert.Equal(t, "Queued generation.", record.Content)
	assert.Equal(t, "Report_1.pdf", record.Name)
}

func TestArtifactName(t *testing.T) {
	record := &model.ReportRecord{Name: "Report_3.pdf", Version: 1}
	assert.Equal(t, "Report_3.pdf", artifactName(record))

	record.Version = 4
	assert.Equal(t, "Report_3_v4.pdf", artifactName(record))
}

func mustArtifactPath(t *testing.T, s store.Store, id string) string {
	t.Helper()
	record, err := s.Report().GetByID(id)
	require.NoError(t, err)
	require.NotEmpty(t, record.ArtifactPath)
	return record.ArtifactPath
}
