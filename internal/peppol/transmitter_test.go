package peppol_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/fakturlu/faktur-accounting/internal/metrics"
	"github.com/fakturlu/faktur-accounting/internal/model"
	"github.com/fakturlu/faktur-accounting/internal/peppol"
	"github.com/fakturlu/faktur-accounting/internal/store"
	"github.com/fakturlu/faktur-accounting/internal/vat"
)

type reply struct {
	result *peppol.SendResult
	err    error
}

// scriptedAccessPoint answers each send with the next scripted reply and
// repeats the last one
type scriptedAccessPoint struct {
	replies    []reply
	calls      int
	configured bool
	documents  [][]byte
}

func (s *scriptedAccessPoint) SendInvoice(_ context.Context, _ *model.InvoiceSnapshot, xml []byte) (*peppol.SendResult, error) {
	s.documents = append(s.documents, xml)
	r := s.replies[min(s.calls, len(s.replies)-1)]
	s.calls++
	return r.result, r.err
}

func (s *scriptedAccessPoint) GetTransmissionStatus(context.Context, string) (string, error) {
	return "delivered", nil
}

func (s *scriptedAccessPoint) IsConfigured() bool { return s.configured }

func (s *scriptedAccessPoint) ProviderName() string { return "scripted" }

func script(replies ...reply) *scriptedAccessPoint {
	return &scriptedAccessPoint{replies: replies, configured: true}
}

func sent(id string) reply {
	return reply{result: &peppol.SendResult{Success: true, DocumentID: id}}
}

func rejected(msg string) reply {
	return reply{result: &peppol.SendResult{ErrorMessage: msg}}
}

func newStore(t *testing.T) *store.Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	s := store.New(db)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestTransmit_FirstAttempt(t *testing.T) {
	ap := script(sent("doc-1"))
	db := newStore(t)
	tr := peppol.NewTransmitter(ap, peppol.WithRecorder(db), peppol.WithBackoff(0))

	receipt, err := tr.Transmit(context.Background(), seller(), acmeInvoice())
	require.NoError(t, err)
	assert.Equal(t, "doc-1", receipt.DocumentID)
	assert.Equal(t, 1, receipt.Attempts)
	assert.Equal(t, "scripted", receipt.Provider)
	require.Len(t, ap.documents, 1)
	assert.Contains(t, string(ap.documents[0]), "<cbc:InvoiceTypeCode>380</cbc:InvoiceTypeCode>")

	rec, err := db.GetTransmission(context.Background(), receipt.TransmissionID)
	require.NoError(t, err)
	assert.Equal(t, store.TransmissionSent, rec.Status)
	assert.Equal(t, "doc-1", rec.DocumentID)
	assert.EqualValues(t, 11, rec.TenantID)
}

func TestTransmit_RetriesTransientFailures(t *testing.T) {
	ap := script(rejected("access point timeout"), reply{err: errors.New("connection reset")}, sent("doc-3"))
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	tr := peppol.NewTransmitter(ap, peppol.WithBackoff(0), peppol.WithMaxAttempts(3), peppol.WithMetrics(m))

	receipt, err := tr.Transmit(context.Background(), seller(), acmeInvoice())
	require.NoError(t, err)
	assert.Equal(t, 3, receipt.Attempts)
	assert.Equal(t, 3, ap.calls)
	assert.InDelta(t, 2, testutil.ToFloat64(m.TransmissionCounter("scripted", metrics.OutcomeTransient)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.TransmissionCounter("scripted", metrics.OutcomeSent)), 0)
}

func TestTransmit_GivesUpAfterMaxAttempts(t *testing.T) {
	ap := script(rejected("service temporarily unavailable"))
	db := newStore(t)
	tr := peppol.NewTransmitter(ap, peppol.WithRecorder(db), peppol.WithBackoff(0), peppol.WithMaxAttempts(3))

	receipt, err := tr.Transmit(context.Background(), seller(), acmeInvoice())
	require.Error(t, err)
	assert.Nil(t, receipt)
	assert.Equal(t, 3, ap.calls)

	var terr *model.TransmissionError
	require.ErrorAs(t, err, &terr)
	assert.False(t, terr.Permanent)
	assert.Equal(t, 3, terr.Attempts)
	assert.Equal(t, "2026-0001", terr.InvoiceNumber)
	assert.Equal(t, "service temporarily unavailable", terr.Message)
}

func TestTransmit_PermanentFailureStops(t *testing.T) {
	ap := script(rejected("Recipient not found"), sent("never"))
	tr := peppol.NewTransmitter(ap, peppol.WithBackoff(0), peppol.WithMaxAttempts(5))

	_, err := tr.Transmit(context.Background(), seller(), acmeInvoice())

	var terr *model.TransmissionError
	require.ErrorAs(t, err, &terr)
	assert.True(t, terr.Permanent)
	assert.Equal(t, 1, terr.Attempts)
	assert.Equal(t, 1, ap.calls)
}

func TestTransmit_NotConfigured(t *testing.T) {
	ap := script(sent("doc"))
	ap.configured = false
	tr := peppol.NewTransmitter(ap)

	_, err := tr.Transmit(context.Background(), seller(), acmeInvoice())
	require.ErrorIs(t, err, model.ErrProviderNotConfigured)

	var terr *model.TransmissionError
	require.ErrorAs(t, err, &terr)
	assert.True(t, terr.Permanent)
	assert.Zero(t, ap.calls)

	_, err = tr.Status(context.Background(), "doc")
	require.ErrorIs(t, err, model.ErrProviderNotConfigured)
}

func TestTransmit_InvalidDocument(t *testing.T) {
	ap := script(sent("doc"))
	tr := peppol.NewTransmitter(ap)

	inv := acmeInvoice()
	inv.Client.PeppolID = ""
	_, err := tr.Transmit(context.Background(), seller(), inv)

	var valErr *model.ValidationError
	require.ErrorAs(t, err, &valErr)
	var terr *model.TransmissionError
	require.ErrorAs(t, err, &terr)
	assert.True(t, terr.Permanent)
	assert.Zero(t, ap.calls)
}

func TestTransmit_ContextCancelledDuringBackoff(t *testing.T) {
	ap := script(rejected("access point timeout"))
	db := newStore(t)
	tr := peppol.NewTransmitter(ap, peppol.WithRecorder(db), peppol.WithBackoff(time.Hour))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := tr.Transmit(ctx, seller(), acmeInvoice())
	require.ErrorIs(t, err, context.DeadlineExceeded)

	var terr *model.TransmissionError
	require.ErrorAs(t, err, &terr)
	assert.False(t, terr.Permanent)
	assert.Equal(t, 1, terr.Attempts)
}

func TestTransmit_Status(t *testing.T) {
	tr := peppol.NewTransmitter(script(sent("doc")))

	status, err := tr.Status(context.Background(), "doc")
	require.NoError(t, err)
	assert.Equal(t, "delivered", status)
}

func TestTransmit_WithSimulator(t *testing.T) {
	sim := peppol.NewSimulator(peppol.WithSuccessRate(1))
	tr := peppol.NewTransmitter(sim, peppol.WithBackoff(0))

	receipt, err := tr.Transmit(context.Background(), seller(), creditNote())
	require.NoError(t, err)

	status, err := tr.Status(context.Background(), receipt.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, peppol.StatusDelivered, status)
}

func TestTransmit_UsesResolver(t *testing.T) {
	ap := script(sent("doc-be"))
	// a Belgian seller invoicing a Luxembourg company reverse-charges
	tr := peppol.NewTransmitter(ap, peppol.WithResolver(vat.NewResolver(vat.WithHomeCountry("BE"))))

	_, err := tr.Transmit(context.Background(), seller(), acmeInvoice())
	require.NoError(t, err)
	require.Len(t, ap.documents, 1)
	assert.Contains(t, string(ap.documents[0]), "<cbc:ID>AE</cbc:ID>")
}
