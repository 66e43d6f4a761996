package pcm

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloatsFromInts(t *testing.T) {
	tests := []struct {
		name     string
		data     []int
		bitDepth int
		want     []float32
	}{
		{
			name:     "16-bit full scale",
			data:     []int{32767, -32768, 0},
			bitDepth: 16,
			want:     []float32{32767.0 / 32768.0, -1, 0},
		},
		{
			name:     "8-bit",
			data:     []int{127, -128},
			bitDepth: 8,
			want:     []float32{127.0 / 128.0, -1},
		},
		{
			name:     "24-bit",
			data:     []int{8388607, -8388608},
			bitDepth: 24,
			want:     []float32{8388607.0 / 8388608.0, -1},
		},
		{
			name:     "empty",
			data:     nil,
			bitDepth: 16,
			want:     []float32{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FloatsFromInts(tt.data, tt.bitDepth)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.InDelta(t, tt.want[i], got[i], 1e-6)
			}
		})
	}
}

func TestDownmix(t *testing.T) {
	t.Run("stereo averages pairs", func(t *testing.T) {
		in := []float32{1, 0, 0.5, 0.5, -1, 1}
		got := Downmix(in, 2)
		require.Len(t, got, 3)
		assert.InDelta(t, 0.5, got[0], 1e-6)
		assert.InDelta(t, 0.5, got[1], 1e-6)
		assert.InDelta(t, 0, got[2], 1e-6)
	})

	t.Run("mono passes through", func(t *testing.T) {
		in := []float32{0.1, 0.2, 0.3}
		got := Downmix(in, 1)
		assert.Equal(t, in, got)
	})

	t.Run("trailing partial frame dropped", func(t *testing.T) {
		in := []float32{1, 1, 0.5}
		got := Downmix(in, 2)
		require.Len(t, got, 1)
		assert.InDelta(t, 1, got[0], 1e-6)
	})

	t.Run("zero channels treated as mono", func(t *testing.T) {
		in := []float32{0.1, 0.2}
		assert.Equal(t, in, Downmix(in, 0))
	})
}

func TestResample(t *testing.T) {
	t.Run("same rate passes through", func(t *testing.T) {
		in := []float32{0.1, 0.2, 0.3}
		assert.Equal(t, in, Resample(in, 16000, 16000))
	})

	t.Run("downsample halves length", func(t *testing.T) {
		in := make([]float32, 32000)
		got := Resample(in, 32000, 16000)
		assert.Len(t, got, 16000)
	})

	t.Run("upsample doubles length", func(t *testing.T) {
		in := make([]float32, 8000)
		got := Resample(in, 8000, 16000)
		assert.Len(t, got, 16000)
	})

	t.Run("interpolates between neighbors", func(t *testing.T) {
		// Halving 4 samples of a ramp keeps endpoints on the ramp.
		in := []float32{0, 1, 2, 3}
		got := Resample(in, 4, 2)
		require.Len(t, got, 2)
		assert.InDelta(t, 0, got[0], 1e-6)
		assert.InDelta(t, 2, got[1], 1e-6)
	})

	t.Run("constant signal survives 44100 to 16000", func(t *testing.T) {
		in := make([]float32, 44100)
		for i := range in {
			in[i] = 0.25
		}
		got := Resample(in, 44100, 16000)
		require.Len(t, got, 16000)
		for _, s := range got {
			assert.InDelta(t, 0.25, s, 1e-4)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, Resample(nil, 44100, 16000))
	})
}

func TestEncodeWAV(t *testing.T) {
	samples := []float32{0, 0.5, -0.5, 1, -1, 2, -2}
	buf := EncodeWAV(samples, 16000)

	require.Len(t, buf, 44+len(samples)*2)

	assert.Equal(t, "RIFF", string(buf[0:4]))
	assert.Equal(t, uint32(36+len(samples)*2), binary.LittleEndian.Uint32(buf[4:8]))
	assert.Equal(t, "WAVE", string(buf[8:12]))
	assert.Equal(t, "fmt ", string(buf[12:16]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(buf[20:22]), "format should be PCM")
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(buf[22:24]), "channels should be mono")
	assert.Equal(t, uint32(16000), binary.LittleEndian.Uint32(buf[24:28]))
	assert.Equal(t, uint32(32000), binary.LittleEndian.Uint32(buf[28:32]), "byte rate")
	assert.Equal(t, uint16(2), binary.LittleEndian.Uint16(buf[32:34]), "block align")
	assert.Equal(t, uint16(16), binary.LittleEndian.Uint16(buf[34:36]), "bits per sample")
	assert.Equal(t, "data", string(buf[36:40]))
	assert.Equal(t, uint32(len(samples)*2), binary.LittleEndian.Uint32(buf[40:44]))

	read := func(i int) int16 {
		return int16(binary.LittleEndian.Uint16(buf[44+i*2:]))
	}
	assert.Equal(t, int16(0), read(0))
	assert.InDelta(t, 16383, read(1), 1)
	assert.InDelta(t, -16383, read(2), 1)
	assert.Equal(t, int16(32767), read(3))
	assert.InDelta(t, -32767, read(4), 1)
	assert.Equal(t, int16(32767), read(5), "overdriven sample clamps high")
	assert.Equal(t, int16(-32768), read(6), "overdriven sample clamps low")
}

func TestEncodeWAVEmpty(t *testing.T) {
	buf := EncodeWAV(nil, 16000)
	require.Len(t, buf, 44)
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(buf[40:44]))
}
