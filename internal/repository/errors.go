package repository

import (
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/bharatcyclehub/bch-admin/internal/model"
)

// classify maps Firestore gRPC errors onto the model sentinels so callers can
// branch with errors.Is while the original error stays in the chain.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	switch status.Code(err) {
	case codes.NotFound:
		return fmt.Errorf("%s: %w: %w", op, model.ErrNotFound, err)
	case codes.PermissionDenied:
		return fmt.Errorf("%s: %w (check that the Firestore database is created in the Firebase console and the service account can reach it): %w", op, model.ErrPermissionDenied, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
