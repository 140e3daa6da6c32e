package main

import (
	"errors"
	"testing"

	"github.com/jessevdk/go-flags"
	"github.com/qmsk/numsend/dashes"
	"github.com/stretchr/testify/require"
)

func TestParseOptions(t *testing.T) {
	options, err := parseOptions([]string{}, flags.PassDoubleDash)
	require.NoError(t, err)

	require.Equal(t, "0.0.0.0:9999", options.Recv.ListenAddr)
	require.False(t, options.Recv.TCP)
	require.False(t, options.Recv.Echo)
	require.Equal(t, "0.0.0.0:9999", options.Stats.Instance)

	options, err = parseOptions([]string{"--listen-addr=127.0.0.1:1337", "--tcp", "--echo", "-v", "--stats-instance=test"}, flags.PassDoubleDash)
	require.NoError(t, err)

	require.Equal(t, "127.0.0.1:1337", options.Recv.ListenAddr)
	require.True(t, options.Recv.TCP)
	require.True(t, options.Recv.Echo)
	require.True(t, options.Log.Verbose)
	require.Equal(t, "test", options.Stats.Instance)
}

func TestParseOptionsErrors(t *testing.T) {
	_, err := parseOptions([]string{"--unknown"}, flags.PassDoubleDash)
	require.Error(t, err)

	_, err = parseOptions([]string{"extra"}, flags.PassDoubleDash)
	require.True(t, errors.Is(err, dashes.ErrInvalidArgument))
}
