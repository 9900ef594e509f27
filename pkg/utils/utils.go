package utils

import (
	"context"

	"stock-analyzer/pkg/logger"
)

func ToPointer[T any](value T) *T {
	return &value
}

// ShouldContinue reports whether the context is still live, logging once when it is not.
func ShouldContinue(ctx context.Context, log *logger.Logger) bool {
	select {
	case <-ctx.Done():
		log.Warn("Context cancelled", logger.ErrorField(ctx.Err()))
		return false
	default:
		return true
	}
}
