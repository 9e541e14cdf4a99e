package parser

import (
	"errors"
	"io/fs"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseErrorMessage(t *testing.T) {
	inner := errors.New("unexpected token")

	e := &ParseError{Path: "a.json", Line: 3, Column: 7, Err: inner}
	assert.Equal(t, "parse error in a.json at line 3, column 7: unexpected token", e.Error())
	assert.ErrorIs(t, e, inner)

	e = &ParseError{Path: "a.json", Line: 3, Err: inner}
	assert.Equal(t, "parse error in a.json at line 3: unexpected token", e.Error())

	e = &ParseError{Path: "a.json", Err: inner}
	assert.Equal(t, "parse error in a.json: unexpected token", e.Error())
}

func TestClassifyWriteError(t *testing.T) {
	cases := []struct {
		err       error
		reason    WriteReason
		transient bool
	}{
		{fs.ErrPermission, WriteReasonPermission, false},
		{syscall.EBUSY, WriteReasonLocked, true},
		{syscall.EAGAIN, WriteReasonLocked, true},
		{syscall.ETXTBSY, WriteReasonLocked, true},
		{errors.New("disk on fire"), WriteReasonIO, false},
	}

	for _, tc := range cases {
		we := classifyWriteError("cfg.ini", tc.err)
		require.NotNil(t, we)
		assert.Equal(t, tc.reason, we.Reason, "classify %v", tc.err)
		assert.Equal(t, tc.transient, we.Transient(), "transient %v", tc.err)
		assert.ErrorIs(t, we, tc.err)
	}
}

func TestWriteReasonString(t *testing.T) {
	assert.Equal(t, "permission_denied", WriteReasonPermission.String())
	assert.Equal(t, "file_locked", WriteReasonLocked.String())
	assert.Equal(t, "io_error", WriteReasonIO.String())
}
