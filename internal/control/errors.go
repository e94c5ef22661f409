package control

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	sim "github.com/signalsfoundry/chronomesh/internal/sim/state"
)

// ErrNotReady is returned when the server has no mission attached.
var ErrNotReady = errors.New("mission control not initialised")

// ToStatusError maps mission errors onto gRPC status codes.
func ToStatusError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, sim.ErrInvalidSpeedLevel):
		return status.Error(codes.InvalidArgument, err.Error())

	case errors.Is(err, sim.ErrSpeedLocked),
		errors.Is(err, sim.ErrNoRecipients),
		errors.Is(err, sim.ErrDisplayUnavailable),
		errors.Is(err, sim.ErrNoActiveDecision):
		return status.Error(codes.FailedPrecondition, err.Error())

	case errors.Is(err, ErrNotReady):
		return status.Error(codes.Unavailable, err.Error())

	default:
		return status.Error(codes.Internal, err.Error())
	}
}
