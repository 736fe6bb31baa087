package peppol

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fakturlu/faktur-accounting/internal/model"
)

// Simulator statuses
const (
	StatusDelivered = "delivered"
	StatusUnknown   = "unknown"
)

// simulatorNamespace seeds the name based document IDs
var simulatorNamespace = uuid.MustParse("6f1d2a0e-3c55-4c1b-9d8e-5f0a6b7c8d90")

var simulatedFailures = []string{
	"access point timeout",
	"recipient not found in SMP",
	"service temporarily unavailable",
	"invalid document: schema validation failed",
	"rate limit exceeded",
}

// Simulator is an in-process access point. The outcome of each attempt is a
// pure function of the invoice number and the attempt count, so runs are
// reproducible.
type Simulator struct {
	successRate float64
	delay       time.Duration

	mu        sync.Mutex
	attempts  map[string]int
	delivered map[string]string
}

// SimulatorOption configures the simulator
type SimulatorOption func(*Simulator)

// WithSuccessRate sets the share of attempts that succeed, between 0 and 1
func WithSuccessRate(rate float64) SimulatorOption {
	return func(s *Simulator) {
		s.successRate = min(max(rate, 0), 1)
	}
}

// WithDelay simulates network latency
func WithDelay(d time.Duration) SimulatorOption {
	return func(s *Simulator) {
		s.delay = d
	}
}

// NewSimulator creates a simulator succeeding 90% of the time
func NewSimulator(opts ...SimulatorOption) *Simulator {
	s := &Simulator{
		successRate: 0.9,
		attempts:    make(map[string]int),
		delivered:   make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProviderName implements AccessPoint
func (s *Simulator) ProviderName() string { return ProviderSimulator }

// IsConfigured implements AccessPoint
func (s *Simulator) IsConfigured() bool { return true }

// SendInvoice implements AccessPoint
func (s *Simulator) SendInvoice(ctx context.Context, inv *model.InvoiceSnapshot, xml []byte) (*SendResult, error) {
	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	if len(xml) == 0 {
		return &SendResult{ErrorMessage: "invalid document: empty payload"}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.attempts[inv.Number]++
	attempt := s.attempts[inv.Number]
	h := hash(fmt.Sprintf("%s#%d", inv.Number, attempt))

	if float64(h%10000)/10000 < s.successRate {
		id := uuid.NewSHA1(simulatorNamespace, []byte(inv.Number)).String()
		s.delivered[id] = inv.Number
		return &SendResult{
			Success:    true,
			DocumentID: id,
			ResponseData: map[string]any{
				"provider": ProviderSimulator,
				"attempt":  attempt,
				"bytes":    len(xml),
			},
		}, nil
	}

	return &SendResult{
		ErrorMessage: simulatedFailures[int(h>>16)%len(simulatedFailures)],
		ResponseData: map[string]any{
			"provider": ProviderSimulator,
			"attempt":  attempt,
		},
	}, nil
}

// GetTransmissionStatus implements AccessPoint
func (s *Simulator) GetTransmissionStatus(_ context.Context, documentID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.delivered[documentID]; ok {
		return StatusDelivered, nil
	}
	return StatusUnknown, nil
}

func hash(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}
