package application

import (
	"errors"
	"fmt"

	shipports "github.com/chaintrack/shipment-tracking-api/internal/domains/shipments/ports"
)

// ErrUnavailable marks failures reading shipment data that are worth
// retrying.
var ErrUnavailable = errors.New("analytics source unavailable")

func mapSourceError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, shipports.ErrNotFound) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}
