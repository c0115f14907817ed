package executor

import (
	"context"
	"errors"
	"io"
)

// mockRunner is a ProcessRunner for tests.
type mockRunner struct {
	// runFunc provides custom behaviour; nil returns empty success.
	runFunc func(ctx context.Context, args []string, stdin []byte) (stdout, stderr []byte, err error)

	// blockUntilDone simulates a hung plugin.
	blockUntilDone bool

	calls    int
	lastPath string
	lastArgs []string
}

func (m *mockRunner) Run(ctx context.Context, path string, args []string, stdin io.Reader) ([]byte, []byte, error) {
	m.calls++
	m.lastPath = path
	m.lastArgs = args

	var in []byte
	if stdin != nil {
		var err error
		if in, err = io.ReadAll(stdin); err != nil {
			return nil, nil, err
		}
	}

	if m.blockUntilDone && (len(args) == 0 || args[len(args)-1] != "--plugin-info") {
		<-ctx.Done()
		return nil, nil, ctx.Err()
	}

	if m.runFunc != nil {
		return m.runFunc(ctx, args, in)
	}
	return []byte("{}"), nil, nil
}

func failingRunner(msg string) *mockRunner {
	return &mockRunner{
		runFunc: func(context.Context, []string, []byte) ([]byte, []byte, error) {
			return nil, []byte(msg), errors.New("exit status 2")
		},
	}
}
