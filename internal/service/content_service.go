package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/maheshrc27/autopost/internal/models"
)

// HighlightDelimiter marks emphasized spans inside a generated body.
// The platform poster decides how to render them.
const HighlightDelimiter = "%%"

type Content struct {
	Title string
	Body  string
}

// ContentGenerator is the external AI text generator. Prompt engineering
// lives behind this interface.
type ContentGenerator interface {
	Generate(ctx context.Context, product *models.Product, platform string) (*Content, error)
}

// ContentService wraps the generator and never fails: on any generator
// error or panic it substitutes a deterministic fallback template.
type ContentService interface {
	BuildContent(ctx context.Context, product *models.Product, platform string) *Content
}

type contentService struct {
	gen ContentGenerator
}

func NewContentService(gen ContentGenerator) ContentService {
	return &contentService{gen: gen}
}

func (s *contentService) BuildContent(ctx context.Context, product *models.Product, platform string) (content *Content) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("content generator panicked, using fallback", "product_id", product.ID, "panic", r)
			content = FallbackContent(product)
		}
	}()

	generated, err := s.gen.Generate(ctx, product, platform)
	if err != nil || generated == nil || generated.Title == "" {
		if err != nil {
			slog.Info(err.Error())
		}
		return FallbackContent(product)
	}
	return generated
}

// FallbackContent renders the deterministic template used when the
// generator is unavailable.
func FallbackContent(p *models.Product) *Content {
	var b strings.Builder
	fmt.Fprintf(&b, "%s 소개합니다.\n\n", p.Name)
	if p.StoreName != "" {
		fmt.Fprintf(&b, "판매처: %s\n", p.StoreName)
	}
	if p.Price != "" {
		fmt.Fprintf(&b, "가격: %s%s%s\n", HighlightDelimiter, p.Price, HighlightDelimiter)
	}
	if p.Rating > 0 {
		fmt.Fprintf(&b, "평점: %.1f (리뷰 %d개)\n", p.Rating, p.ReviewCount)
	}
	fmt.Fprintf(&b, "\n%s\n", p.ReferralURL)

	return &Content{
		Title: p.Name,
		Body:  b.String(),
	}
}

type Segment struct {
	Text      string
	Highlight bool
}

// SplitHighlights parses delimiter-marked spans out of a body. An
// unterminated delimiter is treated as plain text.
func SplitHighlights(body string) []Segment {
	parts := strings.Split(body, HighlightDelimiter)
	if len(parts)%2 == 0 {
		// Odd delimiter count: give the last span back its delimiter.
		parts[len(parts)-2] = parts[len(parts)-2] + HighlightDelimiter + parts[len(parts)-1]
		parts = parts[:len(parts)-1]
	}

	var segments []Segment
	for i, part := range parts {
		if part == "" {
			continue
		}
		segments = append(segments, Segment{Text: part, Highlight: i%2 == 1})
	}
	return segments
}
