package store

import (
	"fmt"
	"testing"

	"github.com/heliograph/heliograph/consts"
	"github.com/heliograph/heliograph/internal/model"
	"github.com/heliograph/heliograph/pkg/errors"
)

// TestReportStore_Append tests appending a record and name assignment
func TestReportStore_Append(t *testing.T) {
	store, cleanup := SetupTestDB(t)
	defer cleanup()

	record := CreateTestRecord(t, store)

	if record.ID == "" {
		t.Error("Append() did not assign an ID")
	}
	if record.Version != 1 {
		t.Errorf("Expected Version 1, got %d", record.Version)
	}
	if record.Name != consts.PlainReportPrefix+"1"+consts.ReportExtension {
		t.Errorf("Expected Name 'Report_1.pdf', got '%s'", record.Name)
	}

	// Verify the record was persisted
	retrieved, err := store.Report().GetByID(record.ID)
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if retrieved.Content != record.Content {
		t.Errorf("Expected Content '%s', got '%s'", record.Content, retrieved.Content)
	}
	if retrieved.Variant != model.ReportVariantPlain {
		t.Errorf("Expected Variant plain, got '%s'", retrieved.Variant)
	}
}

// TestReportStore_AppendSequentialNames tests the per-variant name counters
func TestReportStore_AppendSequentialNames(t *testing.T) {
	store, cleanup := SetupTestDB(t)
	defer cleanup()

	for i := 1; i <= 3; i++ {
		record := CreateTestRecord(t, store)
		want := fmt.Sprintf("%s%d%s", consts.PlainReportPrefix, i, consts.ReportExtension)
		if record.Name != want {
			t.Errorf("plain record %d: Name = '%s', want '%s'", i, record.Name, want)
		}
	}

	// Chart records count independently of plain records
	chart := CreateTestRecord(t, store, func(r *model.ReportRecord) {
		r.Variant = model.ReportVariantChart
	})
	want := consts.ChartReportPrefix + "1" + consts.ReportExtension
	if chart.Name != want {
		t.Errorf("chart record: Name = '%s', want '%s'", chart.Name, want)
	}
}

// TestReportStore_AppendInvalidVariant tests variant validation
func TestReportStore_AppendInvalidVariant(t *testing.T) {
	store, cleanup := SetupTestDB(t)
	defer cleanup()

	record := &model.ReportRecord{
		Template: "basic",
		Variant:  model.ReportVariant("fancy"),
	}
	err := store.Report().Append(record)
	if err == nil {
		t.Fatal("Append() should reject an unknown variant")
	}
	if !errors.HasCode(err, errors.ErrCodeValidation) {
		t.Errorf("Expected validation error, got %v", err)
	}
}

// TestReportStore_GetByID tests retrieving a record by ID
func TestReportStore_GetByID(t *testing.T) {
	store, cleanup := SetupTestDB(t)
	defer cleanup()

	record := CreateTestRecord(t, store)

	retrieved, err := store.Report().GetByID(record.ID)
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if retrieved.ID != record.ID {
		t.Errorf("Expected ID '%s', got '%s'", record.ID, retrieved.ID)
	}

	// Frozen snapshot survives the round trip
	resolved, ok := retrieved.Data.Resolve("irradiance")
	if !ok {
		t.Fatal("retrieved record lost its snapshot data")
	}
	min, max, avg, ok := resolved.Series.Stats()
	if !ok || min != 750 || max != 840 || avg != 798 {
		t.Errorf("snapshot stats = %v/%v/%v, want 750/840/798", min, max, avg)
	}

	// Non-existent record
	_, err = store.Report().GetByID("non-existent")
	if err == nil {
		t.Fatal("GetByID() should return error for non-existent record")
	}
	if !errors.HasCode(err, errors.ErrCodeRecordNotFound) {
		t.Errorf("Expected record-not-found error, got %v", err)
	}
}

// TestReportStore_Update tests the version-incrementing content update
func TestReportStore_Update(t *testing.T) {
	store, cleanup := SetupTestDB(t)
	defer cleanup()

	record := CreateTestRecord(t, store)
	originalName := record.Name
	originalCreatedAt := record.CreatedAt

	directives := model.DirectivesFromMap(map[string]string{"texto_grande": "true"})
	updated, err := store.Report().Update(record.ID, "revised body text", directives)
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}

	if updated.Version != 2 {
		t.Errorf("Expected Version 2, got %d", updated.Version)
	}
	if updated.Content != "revised body text" {
		t.Errorf("Expected updated content, got '%s'", updated.Content)
	}

	// Name, Data, Template, Variant and CreatedAt stay untouched
	retrieved, err := store.Report().GetByID(record.ID)
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if retrieved.Name != originalName {
		t.Errorf("Update() changed Name: %s -> %s", originalName, retrieved.Name)
	}
	if retrieved.Template != "basic" {
		t.Errorf("Update() changed Template: got %s", retrieved.Template)
	}
	if !retrieved.CreatedAt.Equal(originalCreatedAt) {
		t.Errorf("Update() changed CreatedAt: %v -> %v", originalCreatedAt, retrieved.CreatedAt)
	}
	if _, ok := retrieved.Data.Resolve("irradiance"); !ok {
		t.Error("Update() dropped the frozen snapshot")
	}
	if retrieved.DirectiveMap()["texto_grande"] != "true" {
		t.Error("Update() did not persist the new directives")
	}

	// Repeated updates keep incrementing
	updated, err = store.Report().Update(record.ID, "third body", nil)
	if err != nil {
		t.Fatalf("second Update() failed: %v", err)
	}
	if updated.Version != 3 {
		t.Errorf("Expected Version 3, got %d", updated.Version)
	}

	// Non-existent record
	_, err = store.Report().Update("non-existent", "x", nil)
	if !errors.HasCode(err, errors.ErrCodeRecordNotFound) {
		t.Errorf("Expected record-not-found error, got %v", err)
	}
}

// TestReportStore_List tests listing records in creation order
func TestReportStore_List(t *testing.T) {
	store, cleanup := SetupTestDB(t)
	defer cleanup()

	first := CreateTestRecord(t, store)
	second := CreateTestRecord(t, store, func(r *model.ReportRecord) {
		r.Variant = model.ReportVariantChart
	})

	records, err := store.Report().List()
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if records[0].ID != first.ID || records[1].ID != second.ID {
		t.Error("List() did not return records in creation order")
	}
}

// TestReportStore_Count tests the record counter
func TestReportStore_Count(t *testing.T) {
	store, cleanup := SetupTestDB(t)
	defer cleanup()

	count, err := store.Report().Count()
	if err != nil {
		t.Fatalf("Count() failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected 0 records, got %d", count)
	}

	CreateTestRecord(t, store)
	CreateTestRecord(t, store)

	count, err = store.Report().Count()
	if err != nil {
		t.Fatalf("Count() failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 records, got %d", count)
	}
}

// TestReportStore_UpdateArtifactPath tests artifact path bookkeeping
func TestReportStore_UpdateArtifactPath(t *testing.T) {
	store, cleanup := SetupTestDB(t)
	defer cleanup()

	record := CreateTestRecord(t, store)

	if err := store.Report().UpdateArtifactPath(record.ID, "Report_1.pdf"); err != nil {
		t.Fatalf("UpdateArtifactPath() failed: %v", err)
	}

	retrieved, err := store.Report().GetByID(record.ID)
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if retrieved.ArtifactPath != "Report_1.pdf" {
		t.Errorf("Expected artifact path 'Report_1.pdf', got '%s'", retrieved.ArtifactPath)
	}

	err = store.Report().UpdateArtifactPath("non-existent", "x.pdf")
	if !errors.HasCode(err, errors.ErrCodeRecordNotFound) {
		t.Errorf("Expected record-not-found error, got %v", err)
	}
}

// TestReportStore_Delete tests soft deletion
func TestReportStore_Delete(t *testing.T) {
	store, cleanup := SetupTestDB(t)
	defer cleanup()

	record := CreateTestRecord(t, store)

	if err := store.Report().Delete(record.ID); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}

	_, err := store.Report().GetByID(record.ID)
	if !errors.HasCode(err, errors.ErrCodeRecordNotFound) {
		t.Errorf("Expected record-not-found after delete, got %v", err)
	}

	err = store.Report().Delete(record.ID)
	if !errors.HasCode(err, errors.ErrCodeRecordNotFound) {
		t.Errorf("Expected record-not-found on double delete, got %v", err)
	}
}
