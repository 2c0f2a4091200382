package cmd

import (
	"net"
	"testing"

	"github.com/choreo/choreoserve/fs"
	"github.com/choreo/choreoserve/lib/exitcode"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExitCode(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() {
		_ = l.Close()
	}()
	_, inUseErr := net.Listen("tcp", l.Addr().String())
	require.Error(t, inUseErr)

	for _, test := range []struct {
		err  error
		want int
	}{
		{nil, exitcode.Success},
		{errors.Wrap(fs.ErrorDirNotFound, "can't serve \"missing\""), exitcode.DirNotFound},
		{errors.Wrap(fs.ErrorNotADirectory, "can't serve \"app.mjs\""), exitcode.DirNotFound},
		{errorNotEnoughArguments, exitcode.UsageError},
		{errorTooManyArguments, exitcode.UsageError},
		{errorBadFlags, exitcode.UsageError},
		{errors.Wrapf(inUseErr, "failed to listen on %q", l.Addr().String()), exitcode.BindError},
		{&net.OpError{Op: "listen", Net: "tcp", Err: errors.New("permission denied")}, exitcode.BindError},
		{errors.New("potato"), exitcode.UncategorizedError},
	} {
		assert.Equal(t, test.want, exitCode(test.err), test.err)
	}
}

func TestResolveExitCode(t *testing.T) {
	oldExit := exit
	defer func() { exit = oldExit }()
	var got []int
	exit = func(code int) {
		got = append(got, code)
	}

	resolveExitCode(nil)
	resolveExitCode(errorTooManyArguments)
	assert.Equal(t, []int{exitcode.Success, exitcode.UsageError}, got)
}

func TestCheckArgs(t *testing.T) {
	oldExit := exit
	defer func() { exit = oldExit }()
	var got []int
	exit = func(code int) {
		got = append(got, code)
	}

	CheckArgs(0, 1, Root, []string{"."})
	assert.Nil(t, got)
	CheckArgs(0, 1, Root, []string{".", "extra"})
	assert.Equal(t, []int{exitcode.UsageError}, got)
}
