package application

import (
	"errors"
	"fmt"

	"github.com/chaintrack/shipment-tracking-api/internal/domains/shipments/domain"
	"github.com/chaintrack/shipment-tracking-api/internal/domains/shipments/ports"
)

var (
	// ErrInvalidInput signals the request violated a creation or checkpoint
	// invariant.
	ErrInvalidInput = errors.New("invalid shipment input")
	// ErrInvalidState signals the shipment's current status forbids the
	// requested transition.
	ErrInvalidState = errors.New("invalid shipment state transition")
	// ErrTransient marks infrastructure failures worth retrying.
	ErrTransient = errors.New("transient shipment storage failure")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrEmptyID) ||
		errors.Is(err, domain.ErrMissingParty) ||
		errors.Is(err, domain.ErrArrivalWindow) ||
		errors.Is(err, domain.ErrCheckpointLocation) ||
		errors.Is(err, domain.ErrCheckpointCoordinate) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if errors.Is(err, domain.ErrAlertNotFound) {
		return fmt.Errorf("%w: %w", ports.ErrNotFound, err)
	}
	if errors.Is(err, domain.ErrTerminalStatus) ||
		errors.Is(err, domain.ErrNotDeliverable) ||
		errors.Is(err, domain.ErrNotCancellable) ||
		errors.Is(err, domain.ErrAlertResolved) {
		return fmt.Errorf("%w: %w", ErrInvalidState, err)
	}
	return err
}

// mapStorageError keeps not-found intact and flags everything else from the
// repository as transient.
func mapStorageError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ports.ErrNotFound) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrTransient, err)
}
