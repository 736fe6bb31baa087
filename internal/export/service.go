package export

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fakturlu/faktur-accounting/internal/accounting"
	"github.com/fakturlu/faktur-accounting/internal/logging"
	"github.com/fakturlu/faktur-accounting/internal/metrics"
	"github.com/fakturlu/faktur-accounting/internal/model"
	"github.com/fakturlu/faktur-accounting/internal/store"
)

// JobRecorder tracks the lifecycle of export jobs
type JobRecorder interface {
	CreateExportJob(ctx context.Context, job *store.ExportJob) error
	StartExportJob(ctx context.Context, id uuid.UUID) error
	CompleteExportJob(ctx context.Context, id uuid.UUID, fileName string, size int64) error
	FailExportJob(ctx context.Context, id uuid.UUID, cause error) error
}

// Request selects what to export
type Request struct {
	TenantID    int64
	Format      Format
	Seller      *model.Seller
	Settings    model.AccountingSettings
	Invoices    []model.InvoiceSnapshot
	From        time.Time
	To          time.Time
	GeneratedAt time.Time
}

// File is a rendered export
type File struct {
	JobID       uuid.UUID
	Name        string
	ContentType string
	Data        []byte
	Invoices    int
	Entries     int
}

// Service generates export files and records their jobs
type Service struct {
	registry *Registry
	jobs     JobRecorder
	metrics  *metrics.Metrics
	logger   *zap.Logger
	now      func() time.Time
}

// ServiceOption configures the service
type ServiceOption func(*Service)

// WithRegistry replaces the formatter registry
func WithRegistry(r *Registry) ServiceOption {
	return func(s *Service) {
		s.registry = r
	}
}

// WithJobRecorder persists job status changes
func WithJobRecorder(j JobRecorder) ServiceOption {
	return func(s *Service) {
		s.jobs = j
	}
}

// WithMetrics records export counters
func WithMetrics(m *metrics.Metrics) ServiceOption {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logging.OrNop(l)
	}
}

// WithClock sets the time source used for the generation date
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates an export service
func NewService(opts ...ServiceOption) *Service {
	s := &Service{
		registry: NewRegistry(),
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Registry returns the formatters known to the service
func (s *Service) Registry() *Registry {
	return s.registry
}

// Generate renders one format. On failure the job is marked failed and no
// file is returned.
func (s *Service) Generate(ctx context.Context, req Request) (*File, error) {
	return s.generate(ctx, req, nil)
}

// GenerateArchive renders several formats concurrently into one ZIP file
func (s *Service) GenerateArchive(ctx context.Context, req Request, formats []Format) (*File, error) {
	return s.generateArchive(ctx, req, formats, nil)
}

// Save renders the formats (one file, or an archive for several) and stores
// the result in dir under a tenant-scoped name before the job completes. The
// file appears in dir whole or not at all; when it cannot be written the job
// is marked failed.
func (s *Service) Save(ctx context.Context, req Request, formats []Format, dir string) (*File, string, error) {
	format := "archive"
	if len(formats) == 1 {
		format = string(formats[0])
	}

	var path string
	commit := func(file *File) error {
		file.Name = StoredName(req.TenantID, file.Name)
		path = filepath.Join(dir, file.Name)
		if err := writeFileAtomic(dir, file.Name, file.Data); err != nil {
			return model.NewExportError(format, "write file", err)
		}
		return nil
	}

	var (
		file *File
		err  error
	)
	switch len(formats) {
	case 0:
		return nil, "", model.NewExportError("", "no format requested", model.ErrUnsupportedFormat)
	case 1:
		req.Format = formats[0]
		file, err = s.generate(ctx, req, commit)
	default:
		file, err = s.generateArchive(ctx, req, formats, commit)
	}
	if err != nil {
		return nil, "", err
	}
	return file, path, nil
}

// StoredName prefixes a file name with its tenant so exports of several
// tenants can share a directory
func StoredName(tenantID int64, name string) string {
	if tenantID == 0 {
		return name
	}
	return fmt.Sprintf("tenant%d_%s", tenantID, name)
}

func writeFileAtomic(dir, name string, data []byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+name+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(dir, name))
}

// commit runs before the job is completed; a failing commit fails the job
func (s *Service) generate(ctx context.Context, req Request, commit func(*File) error) (*File, error) {
	formatter, err := s.registry.Get(req.Format)
	if err != nil {
		return nil, err
	}
	if err := validatePeriod(req); err != nil {
		return nil, err
	}

	jobID, err := s.startJob(ctx, req, string(req.Format))
	if err != nil {
		return nil, err
	}

	start := time.Now()
	file, err := s.render(ctx, formatter, req)
	s.metrics.ObserveExport(string(req.Format), start, fileSize(file), err)

	if err != nil {
		s.failJob(ctx, jobID, err)
		return nil, err
	}
	file.JobID = jobID
	if commit != nil {
		if err := commit(file); err != nil {
			s.failJob(ctx, jobID, err)
			return nil, err
		}
	}
	if err := s.completeJob(ctx, jobID, file); err != nil {
		return nil, err
	}

	s.logger.Info("export generated",
		zap.String("format", string(req.Format)),
		zap.String("file", file.Name),
		zap.Int("invoices", file.Invoices),
		zap.Int("entries", file.Entries),
		zap.Int("bytes", len(file.Data)),
	)
	return file, nil
}

func (s *Service) generateArchive(ctx context.Context, req Request, formats []Format, commit func(*File) error) (*File, error) {
	if len(formats) == 0 {
		return nil, model.NewExportError("archive", "no format requested", model.ErrUnsupportedFormat)
	}
	formatters := make([]Formatter, len(formats))
	names := make([]string, len(formats))
	for i, f := range formats {
		formatter, err := s.registry.Get(f)
		if err != nil {
			return nil, err
		}
		formatters[i] = formatter
		names[i] = string(f)
	}
	if err := validatePeriod(req); err != nil {
		return nil, err
	}

	jobID, err := s.startJob(ctx, req, strings.Join(names, "+"))
	if err != nil {
		return nil, err
	}

	files := make([]*File, len(formatters))
	g, gctx := errgroup.WithContext(ctx)
	for i, formatter := range formatters {
		g.Go(func() error {
			start := time.Now()
			file, err := s.render(gctx, formatter, req)
			s.metrics.ObserveExport(string(formatter.Format()), start, fileSize(file), err)
			if err != nil {
				return err
			}
			files[i] = file
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.failJob(ctx, jobID, err)
		return nil, err
	}

	archive, err := zipFiles(files)
	if err != nil {
		err = model.NewExportError("archive", "create zip", err)
		s.failJob(ctx, jobID, err)
		return nil, err
	}

	out := &File{
		JobID:       jobID,
		Name:        fmt.Sprintf("export_%s_%s.zip", req.From.Format("20060102"), req.To.Format("20060102")),
		ContentType: "application/zip",
		Data:        archive,
		Invoices:    files[0].Invoices,
		Entries:     files[0].Entries,
	}
	if commit != nil {
		if err := commit(out); err != nil {
			s.failJob(ctx, jobID, err)
			return nil, err
		}
	}
	if err := s.completeJob(ctx, jobID, out); err != nil {
		return nil, err
	}

	s.logger.Info("export archive generated", zap.Strings("formats", names), zap.String("file", out.Name), zap.Int("bytes", len(archive)))
	return out, nil
}

func (s *Service) render(ctx context.Context, formatter Formatter, req Request) (*File, error) {
	invoices := SelectInvoices(req.Invoices, req.From, req.To)
	if len(invoices) == 0 {
		return nil, model.NewExportError(string(formatter.Format()), "nothing to export", model.ErrNoInvoices)
	}

	entries, err := accounting.BuildEntries(invoices, req.Settings)
	if err != nil {
		return nil, model.NewExportError(string(formatter.Format()), "build entries", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	generatedAt := req.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = s.now()
	}

	var buf bytes.Buffer
	err = formatter.Write(&buf, Input{
		Entries:     entries,
		Invoices:    invoices,
		Settings:    req.Settings,
		Seller:      req.Seller,
		From:        req.From,
		To:          req.To,
		GeneratedAt: generatedAt,
	})
	if err != nil {
		return nil, err
	}

	return &File{
		Name:        FileName(formatter, req.From, req.To),
		ContentType: formatter.ContentType(),
		Data:        buf.Bytes(),
		Invoices:    len(invoices),
		Entries:     len(entries),
	}, nil
}

func (s *Service) startJob(ctx context.Context, req Request, format string) (uuid.UUID, error) {
	if s.jobs == nil {
		return uuid.Nil, nil
	}
	job := &store.ExportJob{
		TenantID:   req.TenantID,
		Format:     format,
		PeriodFrom: req.From,
		PeriodTo:   req.To,
	}
	if err := s.jobs.CreateExportJob(ctx, job); err != nil {
		return uuid.Nil, fmt.Errorf("export: create job: %w", err)
	}
	if err := s.jobs.StartExportJob(ctx, job.ID); err != nil {
		return uuid.Nil, fmt.Errorf("export: start job: %w", err)
	}
	return job.ID, nil
}

func (s *Service) completeJob(ctx context.Context, id uuid.UUID, file *File) error {
	if s.jobs == nil {
		return nil
	}
	if err := s.jobs.CompleteExportJob(ctx, id, file.Name, int64(len(file.Data))); err != nil {
		return fmt.Errorf("export: complete job: %w", err)
	}
	return nil
}

func (s *Service) failJob(ctx context.Context, id uuid.UUID, cause error) {
	s.logger.Warn("export failed", zap.Stringer("job", id), zap.Error(cause))
	if s.jobs == nil {
		return
	}
	// the request context may already be cancelled
	if err := s.jobs.FailExportJob(context.WithoutCancel(ctx), id, cause); err != nil {
		s.logger.Error("record export failure", zap.Stringer("job", id), zap.Error(err))
	}
}

// SelectInvoices keeps finalized invoices issued within [from, to], compared
// by calendar day, preserving input order.
func SelectInvoices(invoices []model.InvoiceSnapshot, from, to time.Time) []model.InvoiceSnapshot {
	first, last := day(from), day(to)
	out := make([]model.InvoiceSnapshot, 0, len(invoices))
	for _, inv := range invoices {
		if !inv.IsFinalized() {
			continue
		}
		issued := day(inv.IssuedAt)
		if issued.Before(first) || issued.After(last) {
			continue
		}
		out = append(out, inv)
	}
	return out
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func validatePeriod(req Request) error {
	if req.From.IsZero() || req.To.IsZero() {
		return model.NewValidationError("From", nil, "required", "export period is required")
	}
	if req.To.Before(req.From) {
		return model.NewValidationError("To", req.To.Format("2006-01-02"), "gtefield", "period end before start")
	}
	return nil
}

func fileSize(f *File) int {
	if f == nil {
		return 0
	}
	return len(f.Data)
}

func zipFiles(files []*File) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range files {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: f.Name, Method: zip.Deflate})
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(f.Data); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
