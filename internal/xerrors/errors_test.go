package xerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormatting(t *testing.T) {
	err := New(CategoryConfig, SeverityFatal, "bad config")
	assert.Equal(t, "config (fatal): bad config", err.Error())

	wrapped := Wrap(errors.New("boom"), CategoryDeploy, SeverityError, "push failed")
	assert.Equal(t, "deploy (error): push failed: boom", wrapped.Error())
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("underlying")
	err := Wrap(cause, CategoryContent, SeverityError, "load")
	assert.ErrorIs(t, err, cause)

	var se *SiteError
	assert.True(t, errors.As(fmt.Errorf("outer: %w", err), &se))
	assert.Equal(t, CategoryContent, se.Category)
}

func TestWithContext(t *testing.T) {
	err := New(CategoryPlugin, SeverityWarning, "hook failed").
		WithContext("plugin", "word-count").
		WithContext("hook", "init")
	assert.Equal(t, "word-count", err.Context["plugin"])
	assert.Equal(t, "init", err.Context["hook"])
}

func TestIsCategory(t *testing.T) {
	err := ValidationError("missing title")
	assert.True(t, IsCategory(err, CategoryValidation))
	assert.False(t, IsCategory(err, CategoryConfig))
	assert.False(t, IsCategory(errors.New("plain"), CategoryValidation))

	wrapped := fmt.Errorf("context: %w", err)
	assert.True(t, IsCategory(wrapped, CategoryValidation))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(WrapRetryable(errors.New("net"), CategoryDeploy, SeverityError, "push")))
	assert.False(t, IsRetryable(New(CategoryDeploy, SeverityError, "push")))
	assert.False(t, IsRetryable(errors.New("plain")))
}

func TestGetCategory(t *testing.T) {
	assert.Equal(t, CategoryServer, GetCategory(New(CategoryServer, SeverityError, "bind")))
	assert.Equal(t, CategoryInternal, GetCategory(errors.New("plain")))
}
