package grpc

import (
	"errors"

	"github.com/DRSN-tech/storefront/pkg/e"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// GRPCErrorResponse переводит ошибку операции в статус gRPC.
func GRPCErrorResponse(err error) error {
	if v, ok := e.AsValidation(err); ok {
		return status.Error(codes.InvalidArgument, v.Error())
	}

	switch {
	case errors.Is(err, e.ErrUnauthenticated):
		return status.Error(codes.Unauthenticated, e.ErrUnauthenticated.Error())
	case errors.Is(err, e.ErrForbidden):
		return status.Error(codes.PermissionDenied, e.ErrForbidden.Error())
	case errors.Is(err, e.ErrNotFound):
		return status.Error(codes.NotFound, e.ErrNotFound.Error())
	case errors.Is(err, e.ErrOutOfStock):
		return status.Error(codes.FailedPrecondition, e.ErrOutOfStock.Error())
	case errors.Is(err, e.ErrConflict):
		return status.Error(codes.AlreadyExists, e.ErrConflict.Error())
	case errors.Is(err, e.ErrTransientIO):
		return status.Error(codes.Unavailable, e.ErrTransientIO.Error())
	default:
		return status.Error(codes.Internal, e.ErrInternalServerError.Error())
	}
}
