package ports

import (
	"context"

	"go.trai.ch/weft/internal/core/domain"
)

// Executor defines the interface for running external commands.
//
//go:generate go run go.uber.org/mock/mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Execute runs cmd, streaming its output to the logger.
	//
	// cmd.Env is layered over the process environment.
	//
	// It returns an error if the command cannot start or exits non-zero.
	Execute(ctx context.Context, cmd domain.Command) error
}
