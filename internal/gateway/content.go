package gateway

import (
	"context"
	"fmt"

	"github.com/leonardcser/storefront-mcp/internal/cms"
	"github.com/leonardcser/storefront-mcp/internal/domain"
)

// SectionsRPC is the stored procedure returning sections with their
// categories.
const SectionsRPC = "get_sections_with_categories"

// ContentKey returns the cache key for CMS content of kind in locale,
// e.g. "faqDato_en".
func ContentKey(kind, locale string) string {
	return fmt.Sprintf("%sDato_%s", kind, locale)
}

// Content kinds as they appear in cache keys.
const (
	KindAbout   = "about"
	KindCSR     = "csr"
	KindContact = "contact"
	KindFAQ     = "faq"
	KindLegal   = "legal"
	KindNews    = "news"
	KindHome    = "home"
)

func (g *Gateway) content() (Content, error) {
	if g.src.Content == nil {
		return nil, fmt.Errorf("%w: cms", ErrUnavailable)
	}
	return g.src.Content, nil
}

func (g *Gateway) About(ctx context.Context, locale string) (*cms.About, error) {
	c, err := g.content()
	if err != nil {
		return nil, err
	}
	return load(ctx, g, ContentKey(KindAbout, locale), "cms", nilPtr[cms.About], func(ctx context.Context) (*cms.About, error) {
		return c.About(ctx, locale)
	})
}

func (g *Gateway) CSR(ctx context.Context, locale string) (*cms.CSR, error) {
	c, err := g.content()
	if err != nil {
		return nil, err
	}
	return load(ctx, g, ContentKey(KindCSR, locale), "cms", nilPtr[cms.CSR], func(ctx context.Context) (*cms.CSR, error) {
		return c.CSR(ctx, locale)
	})
}

func (g *Gateway) Contact(ctx context.Context, locale string) (*cms.Contact, error) {
	c, err := g.content()
	if err != nil {
		return nil, err
	}
	return load(ctx, g, ContentKey(KindContact, locale), "cms", nilPtr[cms.Contact], func(ctx context.Context) (*cms.Contact, error) {
		return c.Contact(ctx, locale)
	})
}

func (g *Gateway) FAQs(ctx context.Context, locale string) ([]cms.FAQ, error) {
	c, err := g.content()
	if err != nil {
		return nil, err
	}
	return load(ctx, g, ContentKey(KindFAQ, locale), "cms", emptySlice[cms.FAQ], func(ctx context.Context) ([]cms.FAQ, error) {
		return c.FAQs(ctx, locale)
	})
}

func (g *Gateway) Legals(ctx context.Context, locale string) ([]cms.Legal, error) {
	c, err := g.content()
	if err != nil {
		return nil, err
	}
	return load(ctx, g, ContentKey(KindLegal, locale), "cms", emptySlice[cms.Legal], func(ctx context.Context) ([]cms.Legal, error) {
		return c.Legals(ctx, locale)
	})
}

func (g *Gateway) News(ctx context.Context, locale string) ([]cms.NewsArticle, error) {
	c, err := g.content()
	if err != nil {
		return nil, err
	}
	return load(ctx, g, ContentKey(KindNews, locale), "cms", emptySlice[cms.NewsArticle], func(ctx context.Context) ([]cms.NewsArticle, error) {
		return c.News(ctx, locale)
	})
}

// HomeSliders loads the home-screen carousel.
func (g *Gateway) HomeSliders(ctx context.Context, locale string) ([]cms.HomeSlider, error) {
	c, err := g.content()
	if err != nil {
		return nil, err
	}
	return load(ctx, g, ContentKey(KindHome, locale), "cms", emptySlice[cms.HomeSlider], func(ctx context.Context) ([]cms.HomeSlider, error) {
		return c.HomeSliders(ctx, locale)
	})
}

// Sections loads home-screen sections with their categories.
func (g *Gateway) Sections(ctx context.Context) ([]domain.Section, error) {
	if g.src.RPC == nil {
		return nil, fmt.Errorf("%w: sections", ErrUnavailable)
	}
	return load(ctx, g, KeySections, "sections", emptySlice[domain.Section], func(ctx context.Context) ([]domain.Section, error) {
		var sections []domain.Section
		if err := g.src.RPC.RPC(ctx, SectionsRPC, nil, &sections); err != nil {
			return nil, err
		}
		if err := domain.ValidateAll(sections); err != nil {
			return nil, err
		}
		return sections, nil
	})
}
