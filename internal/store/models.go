package store

import (
	"time"

	"github.com/google/uuid"
)

// ExportJob records one generated accounting export
type ExportJob struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID    int64     `gorm:"index"`
	Format      string    `gorm:"size:32"`
	PeriodFrom  time.Time
	PeriodTo    time.Time
	Status      Status `gorm:"size:16;index"`
	FileName    string
	Size        int64
	Error       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
}

// PeppolTransmission records delivery attempts of one invoice
type PeppolTransmission struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID      int64     `gorm:"index"`
	InvoiceNumber string    `gorm:"size:64;index"`
	Provider      string    `gorm:"size:32"`
	DocumentID    string
	Status        TransmissionStatus `gorm:"size:16;index"`
	Attempts      int
	LastError     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	SentAt        *time.Time
}
