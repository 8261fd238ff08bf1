package recommendation

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"strings"

	"jamb/utils"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"google.golang.org/api/option"
)

const (
	MaxVoiceSeconds = 60
	MaxVoiceBytes   = 5 << 20
)

// WAVInfo is the format of a PCM WAV recording.
type WAVInfo struct {
	Channels      int
	SampleRate    int
	BitsPerSample int
	DataSize      int
}

// Seconds returns the duration of the audio data.
func (w WAVInfo) Seconds() float64 {
	bytesPerSecond := w.SampleRate * w.Channels * w.BitsPerSample / 8
	if bytesPerSecond == 0 {
		return 0
	}
	return float64(w.DataSize) / float64(bytesPerSecond)
}

// ParseWAV walks the RIFF chunks of a WAV file and returns its PCM format. Only
// uncompressed 16-bit audio is accepted, which is what LINEAR16 recognition expects.
func ParseWAV(data []byte) (WAVInfo, error) {
	var info WAVInfo
	if len(data) < 12 || !bytes.Equal(data[0:4], []byte("RIFF")) || !bytes.Equal(data[8:12], []byte("WAVE")) {
		return info, utils.NewValidationError("audio must be a WAV file")
	}

	var sawFmt bool
	for off := 12; off+8 <= len(data); {
		id := string(data[off : off+4])
		size := int(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		body := off + 8
		switch id {
		case "fmt ":
			if size < 16 || body+16 > len(data) {
				return info, utils.NewValidationError("WAV format chunk is truncated")
			}
			if format := binary.LittleEndian.Uint16(data[body : body+2]); format != 1 {
				return info, utils.NewValidationError("WAV audio must be uncompressed PCM")
			}
			info.Channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			info.SampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			info.BitsPerSample = int(binary.LittleEndian.Uint16(data[body+14 : body+16]))
			sawFmt = true
		case "data":
			if !sawFmt {
				return info, utils.NewValidationError("WAV data chunk precedes its format chunk")
			}
			info.DataSize = min(size, len(data)-body)
			if info.BitsPerSample != 16 {
				return info, utils.NewValidationError("WAV audio must be 16-bit")
			}
			if info.Channels < 1 || info.SampleRate <= 0 {
				return info, utils.NewValidationError("WAV header is invalid")
			}
			return info, nil
		}
		// Chunks are padded to an even size.
		off = body + size + size%2
	}
	return info, utils.NewValidationError("WAV file has no audio data")
}

// GoogleTranscriber implements Transcriber with Google Cloud Speech-to-Text.
type GoogleTranscriber struct {
	client *speech.Client
}

func NewGoogleTranscriber(ctx context.Context, credentialsFile string) (*GoogleTranscriber, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize speech client: %w", err)
	}
	return &GoogleTranscriber{client: client}, nil
}

func (t *GoogleTranscriber) Close() error {
	return t.client.Close()
}

func (t *GoogleTranscriber) Transcribe(ctx context.Context, audio []byte, language string) (string, error) {
	info, err := ParseWAV(audio)
	if err != nil {
		return "", err
	}
	if language == "" {
		language = "en-US"
	}

	req := &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:          speechpb.RecognitionConfig_LINEAR16,
			SampleRateHertz:   int32(info.SampleRate),
			LanguageCode:      language,
			AudioChannelCount: int32(info.Channels),
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	}
	resp, err := t.client.Recognize(ctx, req)
	if err != nil {
		return "", fmt.Errorf("speech recognition failed: %w", err)
	}

	var transcript strings.Builder
	for _, result := range resp.Results {
		if len(result.Alternatives) > 0 {
			transcript.WriteString(result.Alternatives[0].Transcript + " ")
		}
	}
	return strings.TrimSpace(transcript.String()), nil
}
