package peppol

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fakturlu/faktur-accounting/internal/logging"
	"github.com/fakturlu/faktur-accounting/internal/metrics"
	"github.com/fakturlu/faktur-accounting/internal/model"
	"github.com/fakturlu/faktur-accounting/internal/store"
	"github.com/fakturlu/faktur-accounting/internal/vat"
)

const (
	DefaultMaxAttempts = 3
	DefaultBackoff     = 60 * time.Second
)

// Recorder persists the transmission history
type Recorder interface {
	CreateTransmission(ctx context.Context, t *store.PeppolTransmission) error
	BeginAttempt(ctx context.Context, id uuid.UUID) error
	MarkSent(ctx context.Context, id uuid.UUID, documentID string) error
	MarkRetrying(ctx context.Context, id uuid.UUID, message string) error
	MarkFailed(ctx context.Context, id uuid.UUID, message string) error
}

// Receipt describes a delivered invoice
type Receipt struct {
	TransmissionID uuid.UUID `json:"transmission_id"`
	Provider       string    `json:"provider"`
	InvoiceNumber  string    `json:"invoice_number"`
	DocumentID     string    `json:"document_id"`
	Attempts       int       `json:"attempts"`
}

// Transmitter generates UBL and delivers it with bounded retries
type Transmitter struct {
	ap          AccessPoint
	resolver    *vat.Resolver
	maxAttempts int
	backoff     time.Duration
	recorder    Recorder
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

// TransmitterOption configures the transmitter
type TransmitterOption func(*Transmitter)

// WithMaxAttempts bounds the number of sends per invoice
func WithMaxAttempts(n int) TransmitterOption {
	return func(t *Transmitter) {
		if n > 0 {
			t.maxAttempts = n
		}
	}
}

// WithBackoff sets the pause between attempts
func WithBackoff(d time.Duration) TransmitterOption {
	return func(t *Transmitter) {
		t.backoff = d
	}
}

// WithResolver replaces the VAT resolver
func WithResolver(r *vat.Resolver) TransmitterOption {
	return func(t *Transmitter) {
		t.resolver = r
	}
}

// WithRecorder persists each attempt
func WithRecorder(r Recorder) TransmitterOption {
	return func(t *Transmitter) {
		t.recorder = r
	}
}

// WithMetrics counts attempts by outcome
func WithMetrics(m *metrics.Metrics) TransmitterOption {
	return func(t *Transmitter) {
		t.metrics = m
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) TransmitterOption {
	return func(t *Transmitter) {
		t.logger = logging.OrNop(l)
	}
}

// NewTransmitter creates a transmitter over an access point
func NewTransmitter(ap AccessPoint, opts ...TransmitterOption) *Transmitter {
	t := &Transmitter{
		ap:          ap,
		resolver:    vat.NewResolver(),
		maxAttempts: DefaultMaxAttempts,
		backoff:     DefaultBackoff,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// AccessPoint returns the provider used for delivery
func (t *Transmitter) AccessPoint() AccessPoint {
	return t.ap
}

// Transmit sends one invoice. Transient failures are retried up to the
// configured number of attempts; a permanent failure stops immediately.
// Failures are returned as *model.TransmissionError.
func (t *Transmitter) Transmit(ctx context.Context, seller *model.Seller, inv *model.InvoiceSnapshot) (*Receipt, error) {
	provider := t.ap.ProviderName()
	if seller == nil || inv == nil {
		return nil, model.NewTransmissionError(provider, "", "seller and invoice are required", true, nil)
	}
	if !t.ap.IsConfigured() {
		return nil, model.NewTransmissionError(provider, inv.Number, "access point not configured", true, model.ErrProviderNotConfigured)
	}

	scenario := t.resolver.ForInvoice(seller, inv.Client)
	doc, err := GenerateUBL(seller, inv, scenario)
	if err != nil {
		return nil, model.NewTransmissionError(provider, inv.Number, "generate UBL", true, err)
	}

	tr := &store.PeppolTransmission{
		TenantID:      seller.ID,
		InvoiceNumber: inv.Number,
		Provider:      provider,
	}
	if t.recorder != nil {
		if err := t.recorder.CreateTransmission(ctx, tr); err != nil {
			return nil, model.NewTransmissionError(provider, inv.Number, "record transmission", false, err)
		}
	}

	log := t.logger.With(zap.String("provider", provider), zap.String("invoice", inv.Number))

	for attempt := 1; ; attempt++ {
		t.record(func(r Recorder) error { return r.BeginAttempt(ctx, tr.ID) })

		res, err := t.ap.SendInvoice(ctx, inv, doc)
		if err == nil && res.Success {
			t.metrics.ObserveTransmission(provider, metrics.OutcomeSent)
			t.record(func(r Recorder) error { return r.MarkSent(ctx, tr.ID, res.DocumentID) })
			log.Info("peppol invoice sent", zap.String("document", res.DocumentID), zap.Int("attempt", attempt))
			return &Receipt{
				TransmissionID: tr.ID,
				Provider:       provider,
				InvoiceNumber:  inv.Number,
				DocumentID:     res.DocumentID,
				Attempts:       attempt,
			}, nil
		}

		message, permanent := classify(res, err)
		if permanent {
			t.metrics.ObserveTransmission(provider, metrics.OutcomePermanent)
		} else {
			t.metrics.ObserveTransmission(provider, metrics.OutcomeTransient)
		}

		last := permanent || attempt >= t.maxAttempts || ctx.Err() != nil
		if last {
			t.record(func(r Recorder) error { return r.MarkFailed(context.WithoutCancel(ctx), tr.ID, message) })
			log.Warn("peppol transmission failed", zap.String("error", message), zap.Bool("permanent", permanent), zap.Int("attempts", attempt))
			terr := model.NewTransmissionError(provider, inv.Number, message, permanent, err)
			terr.Attempts = attempt
			return nil, terr
		}

		t.record(func(r Recorder) error { return r.MarkRetrying(ctx, tr.ID, message) })
		log.Info("peppol transmission retrying", zap.String("error", message), zap.Int("attempt", attempt), zap.Duration("backoff", t.backoff))
		if err := sleep(ctx, t.backoff); err != nil {
			t.record(func(r Recorder) error { return r.MarkFailed(context.WithoutCancel(ctx), tr.ID, err.Error()) })
			terr := model.NewTransmissionError(provider, inv.Number, message, false, err)
			terr.Attempts = attempt
			return nil, terr
		}
	}
}

// Status queries the access point for a delivered document
func (t *Transmitter) Status(ctx context.Context, documentID string) (string, error) {
	if !t.ap.IsConfigured() {
		return "", model.ErrProviderNotConfigured
	}
	return t.ap.GetTransmissionStatus(ctx, documentID)
}

func (t *Transmitter) record(fn func(Recorder) error) {
	if t.recorder == nil {
		return
	}
	if err := fn(t.recorder); err != nil {
		t.logger.Error("record transmission", zap.Error(err))
	}
}

// classify turns an access point answer into a message and whether the
// failure is final
func classify(res *SendResult, err error) (string, bool) {
	if err != nil {
		return err.Error(), errors.Is(err, model.ErrProviderNotConfigured)
	}
	if res == nil {
		return "empty access point response", false
	}
	msg := res.ErrorMessage
	if msg == "" {
		msg = "access point rejected the document"
	}
	return msg, IsPermanentError(msg)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
