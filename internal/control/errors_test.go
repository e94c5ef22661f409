package control

import (
	"errors"
	"fmt"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	sim "github.com/signalsfoundry/chronomesh/internal/sim/state"
)

func TestToStatusError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		err     error
		code    codes.Code
		wantNil bool
	}{
		{name: "nil", err: nil, wantNil: true},
		{name: "status passthrough", err: status.Error(codes.PermissionDenied, "denied"), code: codes.PermissionDenied},
		{name: "invalid speed", err: fmt.Errorf("%w: 9", sim.ErrInvalidSpeedLevel), code: codes.InvalidArgument},
		{name: "speed locked", err: sim.ErrSpeedLocked, code: codes.FailedPrecondition},
		{name: "no recipients", err: sim.ErrNoRecipients, code: codes.FailedPrecondition},
		{name: "display unavailable", err: sim.ErrDisplayUnavailable, code: codes.FailedPrecondition},
		{name: "no active decision", err: sim.ErrNoActiveDecision, code: codes.FailedPrecondition},
		{name: "not ready", err: ErrNotReady, code: codes.Unavailable},
		{name: "fallback", err: errors.New("boom"), code: codes.Internal},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := ToStatusError(tc.err)
			if tc.wantNil {
				if got != nil {
					t.Fatalf("ToStatusError(nil) = %v, want nil", got)
				}
				return
			}
			if code := status.Code(got); code != tc.code {
				t.Fatalf("ToStatusError(%v) code = %v, want %v", tc.err, code, tc.code)
			}
		})
	}
}
