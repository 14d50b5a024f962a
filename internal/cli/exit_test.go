package cli

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetExitCode(t *testing.T) {
	base := errors.New("boom")

	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(base))
	assert.Equal(t, ExitCommandError, GetExitCode(WrapExitError(ExitCommandError, "load config", base)))

	wrapped := fmt.Errorf("outer: %w", WrapExitError(ExitFailure, "export wave", base))
	assert.Equal(t, ExitFailure, GetExitCode(wrapped))
}

func TestExitErrorMessage(t *testing.T) {
	err := WrapExitError(ExitFailure, "add item", errors.New("no such file"))
	assert.Equal(t, "add item: no such file", err.Error())
	assert.Equal(t, "close project", (&ExitError{Step: "close project"}).Error())
	assert.ErrorContains(t, err.Unwrap(), "no such file")
}
