package store

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/heliograph/heliograph/consts"
	"github.com/heliograph/heliograph/internal/model"
	"github.com/heliograph/heliograph/pkg/errors"
	"github.com/heliograph/heliograph/pkg/idgen"
)

// ReportStore defines operations for ReportRecord persistence.
type ReportStore interface {
	// Append persists a new record, assigning its ID and sequential Name.
	// The name counter is the row count at call time; concurrent appends may
	// collide on the display name (IDs stay unique, last write wins).
	Append(record *model.ReportRecord) error

	// Update replaces the record content and directives and increments Version.
	// Data, Template, Variant and CreatedAt are left untouched.
	Update(id string, content string, directives model.JSONMap) (*model.ReportRecord, error)

	// Queries
	GetByID(id string) (*model.ReportRecord, error)
	List() ([]model.ReportRecord, error)
	Count() (int64, error)

	// UpdateArtifactPath records where the last PDF artifact was written
	UpdateArtifactPath(id string, path string) error

	Delete(id string) error
}

// reportStore implements ReportStore using GORM.
type reportStore struct {
	db *gorm.DB
}

func newReportStore(db *gorm.DB) ReportStore {
	return &reportStore{db: db}
}

// nextName builds the sequential artifact name for a variant from the
// current row count
func (s *reportStore) nextName(variant model.ReportVariant) (string, error) {
	var count int64
	if err := s.db.Model(&model.ReportRecord{}).
		Where("variant = ?", variant).
		Count(&count).Error; err != nil {
		return "", errors.Wrap(errors.ErrCodeDBQuery, "failed to count report records", err)
	}

	prefix := consts.PlainReportPrefix
	if variant == model.ReportVariantChart {
		prefix = consts.ChartReportPrefix
	}
	return fmt.Sprintf("%s%d%s", prefix, count+1, consts.ReportExtension), nil
}

func (s *reportStore) Append(record *model.ReportRecord) error {
	if !record.Variant.Valid() {
		return errors.ErrValidation(fmt.Sprintf("invalid report variant: %s", record.Variant))
	}

	if record.ID == "" {
		record.ID = idgen.NewRecordID()
	}
	if record.Version == 0 {
		record.Version = 1
	}

	name, err := s.nextName(record.Variant)
	if err != nil {
		return err
	}
	record.Name = name

	if err := s.db.Create(record).Error; err != nil {
		return errors.Wrap(errors.ErrCodeDBQuery, "failed to append report record", err)
	}
	return nil
}

func (s *reportStore) Update(id string, content string, directives model.JSONMap) (*model.ReportRecord, error) {
	record, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	record.Content = content
	record.Directives = directives
	record.Version++

	if err := s.db.Model(record).Updates(map[string]interface{}{
		"content":    record.Content,
		"directives": record.Directives,
		"version":    record.Version,
	}).Error; err != nil {
		return nil, errors.Wrap(errors.ErrCodeDBQuery, "failed to update report record", err)
	}
	return record, nil
}

func (s *reportStore) GetByID(id string) (*model.ReportRecord, error) {
	var record model.ReportRecord
	err := s.db.First(&record, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrRecordNotFound(id)
		}
		return nil, errors.Wrap(errors.ErrCodeDBQuery, "failed to query report record", err)
	}
	return &record, nil
}

func (s *reportStore) List() ([]model.ReportRecord, error) {
	var records []model.ReportRecord
	if err := s.db.Order("created_at ASC").Find(&records).Error; err != nil {
		return nil, errors.Wrap(errors.ErrCodeDBQuery, "failed to list report records", err)
	}
	return records, nil
}

func (s *reportStore) Count() (int64, error) {
	var count int64
	if err := s.db.Model(&model.ReportRecord{}).Count(&count).Error; err != nil {
		return 0, errors.Wrap(errors.ErrCodeDBQuery, "failed to count report records", err)
	}
	return count, nil
}

func (s *reportStore) UpdateArtifactPath(id string, path string) error {
	result := s.db.Model(&model.ReportRecord{}).Where("id = ?", id).Update("artifact_path", path)
	if result.Error != nil {
		return errors.Wrap(errors.ErrCodeDBQuery, "failed to update artifact path", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.ErrRecordNotFound(id)
	}
	return nil
}

func (s *reportStore) Delete(id string) error {
	result := s.db.Delete(&model.ReportRecord{}, "id = ?", id)
	if result.Error != nil {
		return errors.Wrap(errors.ErrCodeDBQuery, "failed to delete report record", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.ErrRecordNotFound(id)
	}
	return nil
}
