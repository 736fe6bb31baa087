// Package store persists export jobs and Peppol transmissions with gorm.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNotFound is returned when a record does not exist
var ErrNotFound = errors.New("store: record not found")

// Store wraps the database handle
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

// Dialector picks the driver from the DSN: postgres URLs and key/value
// strings use postgres, anything else is a sqlite path.
func Dialector(dsn string) gorm.Dialector {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return postgres.Open(dsn)
	}
	return sqlite.Open(dsn)
}

// Open connects and migrates the schema
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := gorm.Open(Dialector(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}

	s := New(db)
	if err := s.Migrate(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// New wraps an existing connection
func New(db *gorm.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Migrate creates or updates the tables
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&ExportJob{}, &PeppolTransmission{}); err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// CreateExportJob inserts a pending job
func (s *Store) CreateExportJob(ctx context.Context, job *ExportJob) error {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	job.Status = StatusPending
	return s.db.WithContext(ctx).Create(job).Error
}

// GetExportJob loads a job by ID
func (s *Store) GetExportJob(ctx context.Context, id uuid.UUID) (*ExportJob, error) {
	var job ExportJob
	if err := s.db.WithContext(ctx).First(&job, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: export job %s", ErrNotFound, id)
		}
		return nil, err
	}
	return &job, nil
}

// ListExportJobs returns the latest jobs of a tenant
func (s *Store) ListExportJobs(ctx context.Context, tenantID int64, limit int) ([]ExportJob, error) {
	var jobs []ExportJob
	err := s.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Limit(limit).
		Find(&jobs).Error
	return jobs, err
}

// StartExportJob moves a job to processing
func (s *Store) StartExportJob(ctx context.Context, id uuid.UUID) error {
	return s.transitionJob(ctx, id, TriggerStart, nil)
}

// CompleteExportJob records the produced file
func (s *Store) CompleteExportJob(ctx context.Context, id uuid.UUID, fileName string, size int64) error {
	return s.transitionJob(ctx, id, TriggerComplete, func(job *ExportJob) {
		now := s.now()
		job.FileName = fileName
		job.Size = size
		job.CompletedAt = &now
	})
}

// FailExportJob records the failure cause
func (s *Store) FailExportJob(ctx context.Context, id uuid.UUID, cause error) error {
	return s.transitionJob(ctx, id, TriggerFail, func(job *ExportJob) {
		if cause != nil {
			job.Error = cause.Error()
		}
	})
}

func (s *Store) transitionJob(ctx context.Context, id uuid.UUID, trigger Trigger, mutate func(*ExportJob)) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var job ExportJob
		if err := tx.First(&job, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: export job %s", ErrNotFound, id)
			}
			return err
		}

		next, err := NextStatus(job.Status, trigger)
		if err != nil {
			return err
		}
		job.Status = next
		if mutate != nil {
			mutate(&job)
		}
		return tx.Save(&job).Error
	})
}

// CreateTransmission inserts a pending transmission
func (s *Store) CreateTransmission(ctx context.Context, t *PeppolTransmission) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	t.Status = TransmissionPending
	return s.db.WithContext(ctx).Create(t).Error
}

// GetTransmission loads a transmission by ID
func (s *Store) GetTransmission(ctx context.Context, id uuid.UUID) (*PeppolTransmission, error) {
	var t PeppolTransmission
	if err := s.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: transmission %s", ErrNotFound, id)
		}
		return nil, err
	}
	return &t, nil
}

// BeginAttempt marks a transmission as sending and counts the attempt
func (s *Store) BeginAttempt(ctx context.Context, id uuid.UUID) error {
	return s.transitionTransmission(ctx, id, TriggerSend, func(t *PeppolTransmission) {
		t.Attempts++
	})
}

// MarkSent records the access point document ID
func (s *Store) MarkSent(ctx context.Context, id uuid.UUID, documentID string) error {
	return s.transitionTransmission(ctx, id, TriggerDeliver, func(t *PeppolTransmission) {
		now := s.now()
		t.DocumentID = documentID
		t.LastError = ""
		t.SentAt = &now
	})
}

// MarkRetrying records a transient failure
func (s *Store) MarkRetrying(ctx context.Context, id uuid.UUID, message string) error {
	return s.transitionTransmission(ctx, id, TriggerRetry, func(t *PeppolTransmission) {
		t.LastError = message
	})
}

// MarkFailed records a final failure
func (s *Store) MarkFailed(ctx context.Context, id uuid.UUID, message string) error {
	return s.transitionTransmission(ctx, id, TriggerReject, func(t *PeppolTransmission) {
		t.LastError = message
	})
}

func (s *Store) transitionTransmission(ctx context.Context, id uuid.UUID, trigger Trigger, mutate func(*PeppolTransmission)) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t PeppolTransmission
		if err := tx.First(&t, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: transmission %s", ErrNotFound, id)
			}
			return err
		}

		next, err := NextTransmissionStatus(t.Status, trigger)
		if err != nil {
			return err
		}
		t.Status = next
		mutate(&t)
		return tx.Save(&t).Error
	})
}
