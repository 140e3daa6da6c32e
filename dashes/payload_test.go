package dashes

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCounterSequence(t *testing.T) {
	var counter Counter
	var lengths []int

	for i := 0; i < 2*(MAX_DASHES+1); i++ {
		lengths = append(lengths, len(counter.Next().Pack())-1)
	}

	require.Equal(t, []int{
		1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 0,
		1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 0,
	}, lengths)
}

func TestPayloadNext(t *testing.T) {
	var counter Counter

	last := counter.Next()

	for i := 0; i < 100; i++ {
		next := counter.Next()

		require.Equal(t, next, last.Next(), "after %v", last)

		last = next
	}
}

var testPayloadPack = []struct {
	payload Payload
	buf     string
}{
	{0, "\n"},
	{1, "-\n"},
	{5, "-----\n"},
	{16, "----------------\n"},
}

func TestPayloadPack(t *testing.T) {
	for _, test := range testPayloadPack {
		require.Equal(t, test.buf, string(test.payload.Pack()))

		var payload Payload

		require.NoError(t, payload.Unpack([]byte(test.buf)))
		require.Equal(t, test.payload, payload)
	}
}

var testPayloadUnpackErrors = []string{
	"",
	"---",
	"--x\n",
	"--\n\n",
	"-----------------\n",
	"\r\n",
}

func TestPayloadUnpackErrors(t *testing.T) {
	for _, buf := range testPayloadUnpackErrors {
		var payload Payload

		require.Error(t, payload.Unpack([]byte(buf)), "unpack %q", buf)
	}
}
