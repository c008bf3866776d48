package media

import (
	"context"
	"fmt"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"

	"microlearn/internal/config"
	"microlearn/internal/domain"
	"microlearn/internal/logger"

	"go.uber.org/zap"
)

type speechRecognizer interface {
	Recognize(ctx context.Context, req *speechpb.RecognizeRequest, opts ...gax.CallOption) (*speechpb.RecognizeResponse, error)
	Close() error
}

// GoogleSpeechTranscriber transcribes short uploads with Cloud Speech-to-Text.
type GoogleSpeechTranscriber struct {
	client       speechRecognizer
	languageCode string
}

// NewGoogleSpeechTranscriber uses the credentials file when given, otherwise ADC.
func NewGoogleSpeechTranscriber(ctx context.Context, cfg config.MediaConfig) (*GoogleSpeechTranscriber, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	c, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("speech client: %w", err)
	}
	return newGoogleSpeechTranscriber(c, cfg.LanguageCode), nil
}

func newGoogleSpeechTranscriber(client speechRecognizer, languageCode string) *GoogleSpeechTranscriber {
	if languageCode == "" {
		languageCode = "en-US"
	}
	return &GoogleSpeechTranscriber{client: client, languageCode: languageCode}
}

func (t *GoogleSpeechTranscriber) Close() error {
	if t == nil || t.client == nil {
		return nil
	}
	return t.client.Close()
}

// Transcribe implements domain.Transcriber.
func (t *GoogleSpeechTranscriber) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if len(audio) == 0 {
		return "", domain.NewValidationError("audio upload is empty")
	}

	rc := &speechpb.RecognitionConfig{
		Encoding:                   inferSpeechEncoding(mimeType),
		LanguageCode:               t.languageCode,
		EnableAutomaticPunctuation: true,
	}
	switch rc.Encoding {
	case speechpb.RecognitionConfig_OGG_OPUS, speechpb.RecognitionConfig_WEBM_OPUS:
		rc.SampleRateHertz = 48000
	}

	resp, err := t.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: rc,
		Audio:  &speechpb.RecognitionAudio{AudioSource: &speechpb.RecognitionAudio_Content{Content: audio}},
	})
	if err != nil {
		logger.Get().Error("Speech recognition failed", zap.Error(err), zap.String("mime_type", mimeType))
		return "", domain.NewUpstreamError("Failed to transcribe audio", err)
	}

	var parts []string
	for _, r := range resp.GetResults() {
		if r == nil || len(r.Alternatives) == 0 || r.Alternatives[0] == nil {
			continue
		}
		if s := strings.TrimSpace(r.Alternatives[0].Transcript); s != "" {
			parts = append(parts, s)
		}
	}
	text := strings.Join(parts, " ")
	if text == "" {
		return "", domain.NewUpstreamError("No transcription result for uploaded audio", nil)
	}
	return text, nil
}

func inferSpeechEncoding(mimeType string) speechpb.RecognitionConfig_AudioEncoding {
	m := strings.ToLower(strings.TrimSpace(mimeType))
	switch {
	case strings.Contains(m, "wav"):
		return speechpb.RecognitionConfig_LINEAR16
	case strings.Contains(m, "flac"):
		return speechpb.RecognitionConfig_FLAC
	case strings.Contains(m, "mp3"), strings.Contains(m, "mpeg"):
		return speechpb.RecognitionConfig_MP3
	case strings.Contains(m, "webm"):
		return speechpb.RecognitionConfig_WEBM_OPUS
	case strings.Contains(m, "ogg"), strings.Contains(m, "opus"):
		return speechpb.RecognitionConfig_OGG_OPUS
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED
	}
}

var _ domain.Transcriber = (*GoogleSpeechTranscriber)(nil)
