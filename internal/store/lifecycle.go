package store

import (
	"errors"
	"fmt"

	"github.com/qmuntal/stateless"
)

// ErrInvalidTransition is returned when a status change is not permitted
var ErrInvalidTransition = errors.New("store: invalid status transition")

// Status is the lifecycle of an export job
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// TransmissionStatus is the lifecycle of a Peppol transmission
type TransmissionStatus string

const (
	TransmissionPending  TransmissionStatus = "pending"
	TransmissionSending  TransmissionStatus = "sending"
	TransmissionRetrying TransmissionStatus = "retrying"
	TransmissionSent     TransmissionStatus = "sent"
	TransmissionFailed   TransmissionStatus = "failed"
)

// Trigger names a lifecycle event
type Trigger string

const (
	TriggerStart    Trigger = "start"
	TriggerComplete Trigger = "complete"
	TriggerFail     Trigger = "fail"

	TriggerSend    Trigger = "send"
	TriggerDeliver Trigger = "deliver"
	TriggerRetry   Trigger = "retry"
	TriggerReject  Trigger = "reject"
)

// NextStatus applies a trigger to an export job status
func NextStatus(from Status, trigger Trigger) (Status, error) {
	machine := stateless.NewStateMachine(from)

	machine.Configure(StatusPending).
		Permit(TriggerStart, StatusProcessing).
		Permit(TriggerFail, StatusFailed)

	machine.Configure(StatusProcessing).
		Permit(TriggerComplete, StatusCompleted).
		Permit(TriggerFail, StatusFailed)

	next, err := fire(machine, trigger, from)
	if err != nil {
		return from, err
	}
	return next.(Status), nil
}

// NextTransmissionStatus applies a trigger to a transmission status
func NextTransmissionStatus(from TransmissionStatus, trigger Trigger) (TransmissionStatus, error) {
	machine := stateless.NewStateMachine(from)

	machine.Configure(TransmissionPending).
		Permit(TriggerSend, TransmissionSending)

	machine.Configure(TransmissionSending).
		Permit(TriggerDeliver, TransmissionSent).
		Permit(TriggerRetry, TransmissionRetrying).
		Permit(TriggerReject, TransmissionFailed)

	machine.Configure(TransmissionRetrying).
		Permit(TriggerSend, TransmissionSending).
		Permit(TriggerReject, TransmissionFailed)

	next, err := fire(machine, trigger, from)
	if err != nil {
		return from, err
	}
	return next.(TransmissionStatus), nil
}

func fire(machine *stateless.StateMachine, trigger Trigger, from any) (any, error) {
	if err := machine.Fire(trigger); err != nil {
		return nil, fmt.Errorf("%w: %s on %v", ErrInvalidTransition, trigger, from)
	}
	return machine.MustState(), nil
}
