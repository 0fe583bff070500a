package cms

import (
	"context"
	"encoding/json"
	"time"
)

// StructuredText is a rich-text document tree. It is kept as raw JSON;
// rendering belongs to the presentation layer.
type StructuredText struct {
	Value json.RawMessage `json:"value"`
}

type ResponsiveImage struct {
	Src    string `json:"src"`
	Sizes  string `json:"sizes,omitempty"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Alt    string `json:"alt,omitempty"`
	Title  string `json:"title,omitempty"`
	Base64 string `json:"base64,omitempty"`
}

type Image struct {
	ResponsiveImage *ResponsiveImage `json:"responsiveImage,omitempty"`
}

type About struct {
	Image   *Image         `json:"image,omitempty"`
	Content StructuredText `json:"content"`
}

type CSR struct {
	BannerImage *Image       `json:"bannerImage,omitempty"`
	Sections    []CSRSection `json:"sections"`
}

type CSRSection struct {
	Image   *Image         `json:"image,omitempty"`
	Content StructuredText `json:"content"`
	Link    string         `json:"link,omitempty"`
}

type Contact struct {
	TitleDesc []struct {
		ID          string         `json:"id"`
		Title       string         `json:"title"`
		Description StructuredText `json:"description"`
	} `json:"titleDesc"`
	IconLinks []struct {
		ID   string `json:"id"`
		Icon struct {
			URL string `json:"url"`
		} `json:"icon"`
		URL string `json:"url"`
	} `json:"iconLinks"`
}

type FAQ struct {
	ID       string         `json:"id"`
	Question string         `json:"question"`
	Answer   StructuredText `json:"answer"`
}

type Legal struct {
	ID      string         `json:"id"`
	Title   string         `json:"title"`
	Slug    string         `json:"slug"`
	Content StructuredText `json:"content"`
	Status  string         `json:"_status,omitempty"`
}

type NewsArticle struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Content     StructuredText `json:"content"`
	Image       *Image         `json:"image,omitempty"`
	PublishedAt time.Time      `json:"publishedAt"`
}

type HomeSlider struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	SubHeading string `json:"subHeading"`
	Image      *Image `json:"image,omitempty"`
	ProductID  string `json:"productId,omitempty"`
}

const imageFields = `responsiveImage(imgixParams: {fit: crop, w: 450, h: 280, auto: format}) {
      sizes
      src
      width
      height
      alt
      title
      base64
    }`

const (
	aboutQuery = `query About($locale: SiteLocale) {
  about(locale: $locale) {
    image { ` + imageFields + ` }
    content { value }
  }
}`
	csrQuery = `query CSR($locale: SiteLocale) {
  csr(locale: $locale) {
    bannerImage { ` + imageFields + ` }
    sections {
      image { ` + imageFields + ` }
      content { value }
      link
    }
  }
}`
	contactQuery = `query Contact($locale: SiteLocale) {
  contact(locale: $locale) {
    titleDesc { id title description { value } }
    iconLinks { id icon { url } url }
  }
}`
	faqQuery = `query FAQ($locale: SiteLocale) {
  allFaqs(locale: $locale) { id question answer { value } }
}`
	legalQuery = `query Legal($locale: SiteLocale) {
  allLegals(locale: $locale) { id title content { value } slug _status }
}`
	newsQuery = `query News($locale: SiteLocale) {
  allNewsArticles(locale: $locale) {
    id
    title
    content { value }
    image { ` + imageFields + ` }
    publishedAt
  }
}`
	homeQuery = `query Home($locale: SiteLocale) {
  heroSection(locale: $locale) {
    sliders {
      id
      title
      subHeading
      image { ` + imageFields + ` }
      productId
    }
  }
}`
)

func localeVars(locale string) map[string]any {
	return map[string]any{"locale": locale}
}

// About returns nil when the locale has no about record.
func (c *Client) About(ctx context.Context, locale string) (*About, error) {
	var data struct {
		About *About `json:"about"`
	}
	if err := c.Query(ctx, aboutQuery, localeVars(locale), &data); err != nil {
		return nil, err
	}
	return data.About, nil
}

func (c *Client) CSR(ctx context.Context, locale string) (*CSR, error) {
	var data struct {
		CSR *CSR `json:"csr"`
	}
	if err := c.Query(ctx, csrQuery, localeVars(locale), &data); err != nil {
		return nil, err
	}
	return data.CSR, nil
}

func (c *Client) Contact(ctx context.Context, locale string) (*Contact, error) {
	var data struct {
		Contact *Contact `json:"contact"`
	}
	if err := c.Query(ctx, contactQuery, localeVars(locale), &data); err != nil {
		return nil, err
	}
	return data.Contact, nil
}

func (c *Client) FAQs(ctx context.Context, locale string) ([]FAQ, error) {
	var data struct {
		AllFaqs []FAQ `json:"allFaqs"`
	}
	if err := c.Query(ctx, faqQuery, localeVars(locale), &data); err != nil {
		return nil, err
	}
	return data.AllFaqs, nil
}

func (c *Client) Legals(ctx context.Context, locale string) ([]Legal, error) {
	var data struct {
		AllLegals []Legal `json:"allLegals"`
	}
	if err := c.Query(ctx, legalQuery, localeVars(locale), &data); err != nil {
		return nil, err
	}
	return data.AllLegals, nil
}

func (c *Client) News(ctx context.Context, locale string) ([]NewsArticle, error) {
	var data struct {
		AllNewsArticles []NewsArticle `json:"allNewsArticles"`
	}
	if err := c.Query(ctx, newsQuery, localeVars(locale), &data); err != nil {
		return nil, err
	}
	return data.AllNewsArticles, nil
}

func (c *Client) HomeSliders(ctx context.Context, locale string) ([]HomeSlider, error) {
	var data struct {
		HeroSection *struct {
			Sliders []HomeSlider `json:"sliders"`
		} `json:"heroSection"`
	}
	if err := c.Query(ctx, homeQuery, localeVars(locale), &data); err != nil {
		return nil, err
	}
	if data.HeroSection == nil {
		return nil, nil
	}
	return data.HeroSection.Sliders, nil
}
