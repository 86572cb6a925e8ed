package wire

import (
	"bytes"
	"encoding/binary"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrependLength(t *testing.T) {
	t.Parallel()

	payload := []byte("hello")
	framed := PrependLength(payload)
	require.Len(t, framed, FrameHeaderSize+len(payload))
	assert.Equal(t, uint32(len(payload)), binary.LittleEndian.Uint32(framed[:FrameHeaderSize]))
	assert.Equal(t, payload, framed[FrameHeaderSize:])
}

func TestAccumulatorSingleFrame(t *testing.T) {
	t.Parallel()

	var acc Accumulator
	acc.Push(PrependLength([]byte("payload")))

	frame, err := acc.Next()
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), frame)

	frame, err = acc.Next()
	require.NoError(t, err)
	assert.Nil(t, frame)
	assert.Equal(t, 0, acc.Pending())
}

func TestAccumulatorPartialThenComplete(t *testing.T) {
	t.Parallel()

	var acc Accumulator
	framed := PrependLength([]byte("abcdef"))

	acc.Push(framed[:3])
	frame, err := acc.Next()
	require.NoError(t, err)
	assert.Nil(t, frame)

	acc.Push(framed[3:])
	frame, err = acc.Next()
	require.NoError(t, err)
	assert.Equal(t, []byte("abcdef"), frame)
}

// TestAccumulatorArbitraryChunking streams several back-to-back frames
// through the accumulator in random chunk sizes, down to one byte at a
// time, and expects the exact same frame sequence out.
func TestAccumulatorArbitraryChunking(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(99))
	var want [][]byte
	var stream bytes.Buffer
	for i := 0; i < 20; i++ {
		payload := make([]byte, rng.Intn(300))
		rng.Read(payload)
		want = append(want, payload)
		stream.Write(PrependLength(payload))
	}

	for _, chunkMax := range []int{1, 2, 7, 64, 100000} {
		var acc Accumulator
		var got [][]byte
		raw := stream.Bytes()
		for len(raw) > 0 {
			n := 1 + rng.Intn(chunkMax)
			if n > len(raw) {
				n = len(raw)
			}
			acc.Push(raw[:n])
			raw = raw[n:]
			for {
				frame, err := acc.Next()
				require.NoError(t, err)
				if frame == nil {
					break
				}
				got = append(got, append([]byte(nil), frame...))
			}
		}
		require.Len(t, got, len(want), "chunkMax %d", chunkMax)
		for i := range want {
			assert.Equal(t, want[i], got[i], "frame %d chunkMax %d", i, chunkMax)
		}
	}
}

func TestAccumulatorRejectsOversizedFrame(t *testing.T) {
	t.Parallel()

	header := make([]byte, FrameHeaderSize)
	binary.LittleEndian.PutUint32(header, uint32(MaxFrameSize+1))

	var acc Accumulator
	acc.Push(header)
	_, err := acc.Next()
	assert.ErrorIs(t, err, ErrFrameTooLarge)
}

func TestAccumulatorZeroLengthFrame(t *testing.T) {
	t.Parallel()

	var acc Accumulator
	acc.Push(PrependLength(nil))
	acc.Push(PrependLength([]byte("after")))

	frame, err := acc.Next()
	require.NoError(t, err)
	require.NotNil(t, frame)
	assert.Empty(t, frame)

	frame, err = acc.Next()
	require.NoError(t, err)
	assert.Equal(t, []byte("after"), frame)
}
