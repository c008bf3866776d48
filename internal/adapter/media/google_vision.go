package media

import (
	"context"
	"fmt"
	"strings"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"

	"microlearn/internal/config"
	"microlearn/internal/domain"
	"microlearn/internal/logger"

	"go.uber.org/zap"
)

type imageAnnotator interface {
	BatchAnnotateImages(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest, opts ...gax.CallOption) (*visionpb.BatchAnnotateImagesResponse, error)
	Close() error
}

// GoogleVisionCaptioner builds a textual description of an image from Cloud
// Vision labels and any text printed in it (slides, diagrams).
type GoogleVisionCaptioner struct {
	client    imageAnnotator
	maxLabels int
}

// NewGoogleVisionCaptioner uses the credentials file when given, otherwise ADC.
func NewGoogleVisionCaptioner(ctx context.Context, cfg config.MediaConfig) (*GoogleVisionCaptioner, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	c, err := vision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("vision client: %w", err)
	}
	return newGoogleVisionCaptioner(c, cfg.MaxLabels), nil
}

func newGoogleVisionCaptioner(client imageAnnotator, maxLabels int) *GoogleVisionCaptioner {
	if maxLabels <= 0 {
		maxLabels = 10
	}
	return &GoogleVisionCaptioner{client: client, maxLabels: maxLabels}
}

func (c *GoogleVisionCaptioner) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// Caption implements domain.Captioner.
func (c *GoogleVisionCaptioner) Caption(ctx context.Context, image []byte, mimeType string) (string, error) {
	if len(image) == 0 {
		return "", domain.NewValidationError("image upload is empty")
	}

	resp, err := c.client.BatchAnnotateImages(ctx, &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{{
			Image: &visionpb.Image{Content: image},
			Features: []*visionpb.Feature{
				{Type: visionpb.Feature_LABEL_DETECTION, MaxResults: int32(c.maxLabels)},
				{Type: visionpb.Feature_TEXT_DETECTION},
			},
		}},
	})
	if err != nil {
		logger.Get().Error("Image annotation failed", zap.Error(err), zap.String("mime_type", mimeType))
		return "", domain.NewUpstreamError("Failed to caption image", err)
	}
	if len(resp.GetResponses()) == 0 {
		return "", domain.NewUpstreamError("No caption generated for uploaded image", nil)
	}
	r := resp.GetResponses()[0]
	if r.GetError() != nil && r.GetError().GetMessage() != "" {
		return "", domain.NewUpstreamError("Failed to caption image", fmt.Errorf("%s", r.GetError().GetMessage()))
	}

	caption := composeCaption(r)
	if caption == "" {
		return "", domain.NewUpstreamError("No caption generated for uploaded image", nil)
	}
	return caption, nil
}

func composeCaption(r *visionpb.AnnotateImageResponse) string {
	var labels []string
	for _, l := range r.GetLabelAnnotations() {
		if d := strings.TrimSpace(l.GetDescription()); d != "" {
			labels = append(labels, strings.ToLower(d))
		}
	}

	var sb strings.Builder
	if len(labels) > 0 {
		sb.WriteString("An image showing ")
		sb.WriteString(strings.Join(labels, ", "))
		sb.WriteString(".")
	}
	// The first text annotation holds the full detected text.
	if texts := r.GetTextAnnotations(); len(texts) > 0 {
		if txt := strings.Join(strings.Fields(texts[0].GetDescription()), " "); txt != "" {
			if sb.Len() > 0 {
				sb.WriteString(" ")
			}
			sb.WriteString("Text in the image: ")
			sb.WriteString(txt)
		}
	}
	return sb.String()
}

var _ domain.Captioner = (*GoogleVisionCaptioner)(nil)
