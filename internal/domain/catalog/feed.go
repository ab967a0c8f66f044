package catalog

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/marketplace/backend/internal/domain/shared"
)

// Feed ingestion error codes
const (
	CodeInvalidURL      = "INVALID_URL"
	CodeFetchError      = "FETCH_ERROR"
	CodeParseError      = "PARSE_ERROR"
	CodeMissingShopName = "MISSING_SHOP_NAME"
	CodeMissingGoods    = "MISSING_GOODS"
	CodeInvalidGood     = "INVALID_GOOD"
	CodeShopNameTaken   = "SHOP_NAME_MISMATCH"
)

// Feed is a parsed catalog document submitted by a shop owner
type Feed struct {
	ShopName string
	// Goods is nil when the document has no goods key at all
	Goods []FeedGood
}

// FeedGood is one product entry of a feed
type FeedGood struct {
	ExternalID int64
	Name       string
	Category   string
	Quantity   int64
	Price      int64
	PriceRCC   int64
	Parameters map[string]string
}

// ErrMissingShopName is returned for a feed without a shop name
func ErrMissingShopName() *shared.DomainError {
	return shared.NewValidationError(CodeMissingShopName, "Feed does not contain a shop name")
}

// ErrMissingGoods is returned for a feed without a goods list
func ErrMissingGoods() *shared.DomainError {
	return shared.NewValidationError(CodeMissingGoods, "Feed does not contain a goods list")
}

// NewFetchError wraps an upstream failure while downloading a feed
func NewFetchError(message string) *shared.DomainError {
	return shared.NewDomainError(shared.KindUpstreamFetch, CodeFetchError, message)
}

// NewParseError reports a feed that is not well-formed YAML
func NewParseError(message string) *shared.DomainError {
	return shared.NewDomainError(shared.KindParse, CodeParseError, message)
}

// NewInvalidURLError reports a malformed feed URL
func NewInvalidURLError(message string) *shared.DomainError {
	return shared.NewValidationError(CodeInvalidURL, message)
}

// ValidateFeedURL accepts absolute http and https URLs with a host
func ValidateFeedURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return NewInvalidURLError("Feed URL is required")
	}
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return NewInvalidURLError(fmt.Sprintf("Feed URL %q is not a valid absolute URL", raw))
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return NewInvalidURLError(fmt.Sprintf("Feed URL scheme %q is not supported", u.Scheme))
	}
	return nil
}

// ValidateHeader checks the document-level fields in the order the ingestor
// requires them: shop name first, then the goods list.
func (f *Feed) ValidateHeader() error {
	if NormalizeName(f.ShopName) == "" {
		return ErrMissingShopName()
	}
	if f.Goods == nil {
		return ErrMissingGoods()
	}
	return nil
}

// Validate checks the header and every good. One bad good fails the feed.
func (f *Feed) Validate() error {
	if err := f.ValidateHeader(); err != nil {
		return err
	}
	for i, g := range f.Goods {
		if err := g.Validate(); err != nil {
			return shared.NewValidationError(CodeInvalidGood, fmt.Sprintf("goods[%d]: %s", i, err.Error()))
		}
	}
	return nil
}

// CategoryNames returns the distinct normalized category names used by the feed
func (f *Feed) CategoryNames() []string {
	seen := make(map[string]struct{})
	names := make([]string, 0)
	for _, g := range f.Goods {
		n := NormalizeName(g.Category)
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		names = append(names, n)
	}
	return names
}

// Validate checks the values of a single good
func (g FeedGood) Validate() error {
	name := strings.TrimSpace(g.Name)
	if name == "" {
		return shared.NewValidationError(CodeInvalidGood, "good name cannot be empty")
	}
	if utf8.RuneCountInString(name) > 96 {
		return shared.NewValidationError(CodeInvalidGood, "good name cannot exceed 96 characters")
	}
	if NormalizeName(g.Category) == "" {
		return shared.NewValidationError(CodeInvalidGood, "good category cannot be empty")
	}
	if g.ExternalID < 0 || g.Quantity < 0 || g.Price < 0 || g.PriceRCC < 0 {
		return shared.NewValidationError(CodeInvalidGood, "external_id, quantity, price and price_rcc must not be negative")
	}
	for k, v := range g.Parameters {
		if NormalizeName(k) == "" {
			return shared.NewValidationError(CodeInvalidGood, "parameter name cannot be empty")
		}
		if utf8.RuneCountInString(v) > 255 {
			return shared.NewValidationError(CodeInvalidGood, fmt.Sprintf("parameter %q value cannot exceed 255 characters", k))
		}
	}
	return nil
}

// SortedParameterNames returns the parameter keys in a stable order
func (g FeedGood) SortedParameterNames() []string {
	keys := make([]string, 0, len(g.Parameters))
	for k := range g.Parameters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
