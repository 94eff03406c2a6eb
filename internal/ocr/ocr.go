// Package ocr reads syllabus text out of scanned or photographed pages.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	vision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"

	"github.com/pavelanni/papergen/internal/model"
	"github.com/pavelanni/papergen/internal/syllabus"
)

// ErrEmptyImage is returned when no image bytes were supplied.
var ErrEmptyImage = errors.New("empty image")

const annotateTimeout = 60 * time.Second

// Extractor turns an image into syllabus text.
type Extractor interface {
	Extract(ctx context.Context, image []byte, mimeType string) (model.ExtractedSyllabus, error)
}

type annotator interface {
	BatchAnnotateImages(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest, opts ...gax.CallOption) (*visionpb.BatchAnnotateImagesResponse, error)
	Close() error
}

// VisionExtractor runs Google Cloud Vision document text detection.
type VisionExtractor struct {
	client annotator
}

// NewVision creates a Vision client. An empty credentialsFile uses
// application default credentials.
func NewVision(ctx context.Context, credentialsFile string) (*VisionExtractor, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	c, err := vision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("vision client: %w", err)
	}
	return &VisionExtractor{client: c}, nil
}

func (v *VisionExtractor) Close() error {
	if v == nil || v.client == nil {
		return nil
	}
	return v.client.Close()
}

func (v *VisionExtractor) Extract(ctx context.Context, image []byte, mimeType string) (model.ExtractedSyllabus, error) {
	if len(image) == 0 {
		return model.ExtractedSyllabus{}, ErrEmptyImage
	}

	ctx, cancel := context.WithTimeout(ctx, annotateTimeout)
	defer cancel()

	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{{
			Image: &visionpb.Image{Content: image},
			Features: []*visionpb.Feature{
				{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
			},
		}},
	}
	resp, err := v.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return model.ExtractedSyllabus{}, fmt.Errorf("vision BatchAnnotateImages (%s): %w", mimeType, err)
	}
	if resp == nil || len(resp.Responses) == 0 || resp.Responses[0] == nil {
		return FromText(""), nil
	}

	r0 := resp.Responses[0]
	if r0.Error != nil && r0.Error.Message != "" {
		return model.ExtractedSyllabus{}, fmt.Errorf("vision annotate error: %s", r0.Error.Message)
	}
	if r0.FullTextAnnotation == nil {
		return FromText(""), nil
	}
	return FromText(r0.FullTextAnnotation.Text), nil
}

// FromText normalizes OCR output and derives the subject name. Line breaks
// are kept because unit headers are matched per line.
func FromText(text string) model.ExtractedSyllabus {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t")
	}
	text = strings.TrimSpace(strings.Join(lines, "\n"))
	return model.ExtractedSyllabus{
		SubjectName:  syllabus.SubjectName(text),
		SyllabusText: text,
	}
}
