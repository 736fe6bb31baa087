package metrics_test

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/fakturlu/faktur-accounting/internal/metrics"
)

func TestObserveExport(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.ObserveExport("sage_bob", time.Now(), 315, nil)
	m.ObserveExport("sage_bob", time.Now(), 0, errors.New("boom"))
	m.ObserveExport("faia", time.Now(), 1024, nil)

	count, err := testutil.GatherAndCount(reg, "faktur_exports_total")
	assert.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.InDelta(t, 1, testutil.ToFloat64(m.ExportCounter("sage_bob", "failure")), 0)
}

func TestObserveTransmission(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.ObserveTransmission("simulator", metrics.OutcomeSent)
	m.ObserveTransmission("simulator", metrics.OutcomeSent)
	m.ObserveTransmission("simulator", metrics.OutcomePermanent)

	count, err := testutil.GatherAndCount(reg, "faktur_peppol_transmissions_total")
	assert.NoError(t, err)
	assert.Equal(t, 2, count, "one series per outcome")
	assert.InDelta(t, 2, testutil.ToFloat64(m.TransmissionCounter("simulator", metrics.OutcomeSent)), 0)
}

func TestNilMetrics(t *testing.T) {
	var m *metrics.Metrics
	m.ObserveExport("sage100", time.Now(), 10, nil)
	m.ObserveTransmission("storecove", metrics.OutcomeTransient)
}
