package peppol_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fakturlu/faktur-accounting/internal/peppol"
)

var payload = []byte("<Invoice/>")

func TestSimulator_AlwaysSucceeds(t *testing.T) {
	sim := peppol.NewSimulator(peppol.WithSuccessRate(1))
	assert.True(t, sim.IsConfigured())
	assert.Equal(t, peppol.ProviderSimulator, sim.ProviderName())

	res, err := sim.SendInvoice(context.Background(), acmeInvoice(), payload)
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.NotEmpty(t, res.DocumentID)

	other, err := peppol.NewSimulator(peppol.WithSuccessRate(1)).SendInvoice(context.Background(), acmeInvoice(), payload)
	require.NoError(t, err)
	assert.Equal(t, res.DocumentID, other.DocumentID, "document IDs derive from the invoice number")

	status, err := sim.GetTransmissionStatus(context.Background(), res.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, peppol.StatusDelivered, status)

	status, err = sim.GetTransmissionStatus(context.Background(), "nope")
	require.NoError(t, err)
	assert.Equal(t, peppol.StatusUnknown, status)
}

func TestSimulator_AlwaysFails(t *testing.T) {
	sim := peppol.NewSimulator(peppol.WithSuccessRate(0))

	for i := 0; i < 5; i++ {
		res, err := sim.SendInvoice(context.Background(), acmeInvoice(), payload)
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.Empty(t, res.DocumentID)
		assert.NotEmpty(t, res.ErrorMessage)
	}
}

func TestSimulator_Deterministic(t *testing.T) {
	run := func() []bool {
		sim := peppol.NewSimulator(peppol.WithSuccessRate(0.5))
		var outcomes []bool
		for i := 0; i < 20; i++ {
			inv := acmeInvoice()
			inv.Number = fmt.Sprintf("2026-%04d", i%7)
			res, err := sim.SendInvoice(context.Background(), inv, payload)
			require.NoError(t, err)
			outcomes = append(outcomes, res.Success)
		}
		return outcomes
	}

	assert.Equal(t, run(), run())
}

func TestSimulator_EmptyPayload(t *testing.T) {
	sim := peppol.NewSimulator(peppol.WithSuccessRate(1))

	res, err := sim.SendInvoice(context.Background(), acmeInvoice(), nil)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.True(t, peppol.IsPermanentError(res.ErrorMessage))
}

func TestSimulator_DelayHonoursContext(t *testing.T) {
	sim := peppol.NewSimulator(peppol.WithDelay(time.Hour))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := sim.SendInvoice(ctx, acmeInvoice(), payload)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
