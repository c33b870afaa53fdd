package googlebooks

import "strings"

// SearchResult is one page of volumes.
type SearchResult struct {
	TotalItems int      `json:"totalItems"`
	Volumes    []Volume `json:"volumes"`
}

// Volume is a book as described by Google Books.
type Volume struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Subtitle      string     `json:"subtitle,omitempty"`
	Authors       []string   `json:"authors"`
	Publisher     string     `json:"publisher,omitempty"`
	PublishedDate string     `json:"publishedDate,omitempty"` // "2005", "2005-03" or "2005-03-14"
	Description   string     `json:"description,omitempty"`   // May contain HTML
	ISBN10        string     `json:"isbn10,omitempty"`
	ISBN13        string     `json:"isbn13,omitempty"`
	PageCount     int        `json:"pageCount,omitempty"`
	Categories    []string   `json:"categories"`
	Images        ImageLinks `json:"imageLinks"`
	Language      string     `json:"language,omitempty"` // BCP 47 code
	PreviewLink   string     `json:"previewLink,omitempty"`
	InfoLink      string     `json:"infoLink,omitempty"`
	ListPrice     *Price     `json:"listPrice,omitempty"`
}

// ImageLinks holds cover URLs by size.
type ImageLinks struct {
	SmallThumbnail string `json:"smallThumbnail,omitempty"`
	Thumbnail      string `json:"thumbnail,omitempty"`
	Small          string `json:"small,omitempty"`
	Medium         string `json:"medium,omitempty"`
	Large          string `json:"large,omitempty"`
	ExtraLarge     string `json:"extraLarge,omitempty"`
}

// Price is a sale price.
type Price struct {
	Amount       float64 `json:"amount"`
	CurrencyCode string  `json:"currencyCode"`
}

// ISBN returns the ISBN-13 when present, otherwise the ISBN-10.
func (v *Volume) ISBN() string {
	if v.ISBN13 != "" {
		return v.ISBN13
	}
	return v.ISBN10
}

// CoverURL returns the largest available cover, upgraded to https.
func (v *Volume) CoverURL() string {
	for _, u := range []string{
		v.Images.ExtraLarge,
		v.Images.Large,
		v.Images.Medium,
		v.Images.Small,
		v.Images.Thumbnail,
		v.Images.SmallThumbnail,
	} {
		if u != "" {
			if rest, ok := strings.CutPrefix(u, "http://"); ok {
				return "https://" + rest
			}
			return u
		}
	}
	return ""
}

// Raw API response types (internal)

type rawSearchResponse struct {
	Kind       string      `json:"kind"`
	TotalItems int         `json:"totalItems"`
	Items      []rawVolume `json:"items"`
}

type rawVolume struct {
	ID         string        `json:"id"`
	VolumeInfo rawVolumeInfo `json:"volumeInfo"`
	SaleInfo   *rawSaleInfo  `json:"saleInfo"`
}

type rawVolumeInfo struct {
	Title               string                  `json:"title"`
	Subtitle            string                  `json:"subtitle"`
	Authors             []string                `json:"authors"`
	Publisher           string                  `json:"publisher"`
	PublishedDate       string                  `json:"publishedDate"`
	Description         string                  `json:"description"`
	IndustryIdentifiers []rawIndustryIdentifier `json:"industryIdentifiers"`
	PageCount           int                     `json:"pageCount"`
	Categories          []string                `json:"categories"`
	ImageLinks          *ImageLinks             `json:"imageLinks"`
	Language            string                  `json:"language"`
	PreviewLink         string                  `json:"previewLink"`
	InfoLink            string                  `json:"infoLink"`
}

type rawIndustryIdentifier struct {
	Type       string `json:"type"` // "ISBN_10", "ISBN_13", "OTHER"
	Identifier string `json:"identifier"`
}

type rawSaleInfo struct {
	Country     string    `json:"country"`
	Saleability string    `json:"saleability"`
	ListPrice   *rawPrice `json:"listPrice"`
	RetailPrice *rawPrice `json:"retailPrice"`
}

type rawPrice struct {
	Amount       float64 `json:"amount"`
	CurrencyCode string  `json:"currencyCode"`
}

func (r *rawVolume) toVolume() Volume {
	info := &r.VolumeInfo
	v := Volume{
		ID:            r.ID,
		Title:         info.Title,
		Subtitle:      info.Subtitle,
		Authors:       info.Authors,
		Publisher:     info.Publisher,
		PublishedDate: info.PublishedDate,
		Description:   info.Description,
		PageCount:     info.PageCount,
		Categories:    info.Categories,
		Language:      info.Language,
		PreviewLink:   info.PreviewLink,
		InfoLink:      info.InfoLink,
	}
	if v.Authors == nil {
		v.Authors = []string{}
	}
	if v.Categories == nil {
		v.Categories = []string{}
	}
	if info.ImageLinks != nil {
		v.Images = *info.ImageLinks
	}
	for _, id := range info.IndustryIdentifiers {
		switch id.Type {
		case "ISBN_13":
			v.ISBN13 = id.Identifier
		case "ISBN_10":
			v.ISBN10 = id.Identifier
		}
	}
	if r.SaleInfo != nil {
		p := r.SaleInfo.ListPrice
		if p == nil {
			p = r.SaleInfo.RetailPrice
		}
		if p != nil {
			v.ListPrice = &Price{Amount: p.Amount, CurrencyCode: p.CurrencyCode}
		}
	}
	return v
}
