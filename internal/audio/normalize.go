package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/go-audio/wav"

	"github.com/voicecanvas/voicecanvas/pkg/pcm"
)

// TargetRate is the sample rate transcription models expect.
const TargetRate = 16000

// DecodeError marks a recording that could not be decoded into PCM. Callers
// may degrade to handing the raw file to the transcription engine instead of
// failing the request outright.
type DecodeError struct {
	Format string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s audio: %v", e.Format, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// PCM is a normalized recording: mono float samples at TargetRate, plus a
// scoped temporary WAV rendering of the same samples for file-based
// transcription. Callers must Remove it when the request completes.
type PCM struct {
	Samples        []float32
	Rate           int
	SourceRate     int
	SourceChannels int
	Path           string
}

func (p *PCM) Remove() error {
	if p == nil || p.Path == "" {
		return nil
	}
	if err := os.Remove(p.Path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Normalizer decodes uploaded recordings to mono 16 kHz PCM. Non-WAV formats
// are transcoded through ffmpeg first.
type Normalizer struct {
	FFmpegBin string
}

func NewNormalizer(ffmpegBin string) *Normalizer {
	if ffmpegBin == "" {
		ffmpegBin = "ffmpeg"
	}
	return &Normalizer{FFmpegBin: ffmpegBin}
}

func (n *Normalizer) Normalize(ctx context.Context, asset *Asset) (*PCM, error) {
	format := strings.TrimPrefix(asset.Ext, ".")

	wavPath := asset.Path
	if asset.Ext != ".wav" {
		converted, err := n.toWAV(ctx, asset.Path)
		if err != nil {
			return nil, &DecodeError{Format: format, Err: err}
		}
		defer os.Remove(converted)
		wavPath = converted
	}

	f, err := os.Open(wavPath)
	if err != nil {
		return nil, &DecodeError{Format: format, Err: err}
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, &DecodeError{Format: format, Err: err}
	}
	if buf == nil || buf.Format == nil || len(buf.Data) == 0 {
		return nil, &DecodeError{Format: format, Err: errors.New("no PCM data in stream")}
	}

	bitDepth := buf.SourceBitDepth
	if bitDepth == 0 {
		bitDepth = int(dec.BitDepth)
	}

	samples := pcm.FloatsFromInts(buf.Data, bitDepth)
	mono := pcm.Downmix(samples, buf.Format.NumChannels)
	resampled := pcm.Resample(mono, buf.Format.SampleRate, TargetRate)

	out, err := os.CreateTemp("", "normalized-*.wav")
	if err != nil {
		return nil, fmt.Errorf("creating normalized temp file: %w", err)
	}
	_, err = out.Write(pcm.EncodeWAV(resampled, TargetRate))
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(out.Name())
		return nil, fmt.Errorf("writing normalized wav: %w", err)
	}

	return &PCM{
		Samples:        resampled,
		Rate:           TargetRate,
		SourceRate:     buf.Format.SampleRate,
		SourceChannels: buf.Format.NumChannels,
		Path:           out.Name(),
	}, nil
}

// toWAV transcodes any ffmpeg-readable format to PCM WAV, preserving the
// source rate and channel count. Downmix and resample happen in Go so every
// format runs through the same path.
func (n *Normalizer) toWAV(ctx context.Context, src string) (string, error) {
	out, err := os.CreateTemp("", "decode-*.wav")
	if err != nil {
		return "", fmt.Errorf("creating decode temp file: %w", err)
	}
	out.Close()

	cmd := exec.CommandContext(ctx, n.FFmpegBin,
		"-hide_banner", "-loglevel", "error",
		"-y", "-i", src,
		"-acodec", "pcm_s16le",
		out.Name())

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		os.Remove(out.Name())
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("ffmpeg: %w (%s)", err, msg)
		}
		return "", fmt.Errorf("ffmpeg: %w", err)
	}

	return out.Name(), nil
}
