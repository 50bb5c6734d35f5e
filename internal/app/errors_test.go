package app

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dshills/stylesync/internal/session"
)

func TestOperationError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *OperationError
		expected string
	}{
		{"nil error", nil, ""},
		{"op only", &OperationError{Op: "save"}, "save"},
		{"op and target", &OperationError{Op: "open", Target: "/ws/a.go"}, "open /ws/a.go"},
		{"with context", &OperationError{Op: "save", Target: "/ws/a.go", Context: "encoding"}, "save /ws/a.go (encoding)"},
		{
			"full chain",
			&OperationError{Op: "open", Target: "/ws/a.go", Context: "decoding", Err: errors.New("bad bytes")},
			"open /ws/a.go (decoding): bad bytes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestOperationError_WithContextNil(t *testing.T) {
	var err *OperationError
	assert.Nil(t, err.WithContext("x"))
}

func TestOperationError_Is(t *testing.T) {
	err := NewOperationError("open", "/ws/missing", fs.ErrNotExist)

	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.ErrorIs(t, err, err)
	assert.NotErrorIs(t, err, &OperationError{Op: "open"})
	assert.NotErrorIs(t, err, ErrDocumentNotFound)

	var target *OperationError
	assert.True(t, errors.As(error(err), &target))
	assert.Equal(t, "open", target.Op)
}

func TestErrSessionDisposedMatchesSession(t *testing.T) {
	assert.ErrorIs(t, NewOperationError("save", "", session.ErrDisposed), ErrSessionDisposed)
}
