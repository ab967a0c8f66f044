package feed

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/marketplace/backend/internal/domain/catalog"
	"github.com/marketplace/backend/internal/domain/shared"
)

// document is the wire shape of a catalog feed
type document struct {
	Shop string `yaml:"shop"`
	// Goods is a pointer so a missing key can be told apart from an empty list
	Goods *[]good `yaml:"goods" validate:"omitempty,dive"`
}

type good struct {
	ExternalID int64          `yaml:"external_id" validate:"gte=0"`
	Name       string         `yaml:"name" validate:"required,max=96"`
	Category   string         `yaml:"category" validate:"required,max=48"`
	Quantity   int64          `yaml:"quantity" validate:"gte=0"`
	Price      int64          `yaml:"price" validate:"gte=0"`
	PriceRCC   int64          `yaml:"price_rcc" validate:"gte=0"`
	Parameters map[string]any `yaml:"parameters"`
}

// YAMLDecoder parses YAML feed documents
type YAMLDecoder struct {
	validate *validator.Validate
}

// NewYAMLDecoder creates a new YAMLDecoder
func NewYAMLDecoder() *YAMLDecoder {
	return &YAMLDecoder{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// Decode parses data into a feed. Syntax and type errors are PARSE_ERROR,
// field constraint violations are INVALID_GOOD. Goods are not checked when the
// shop name is missing.
func (d *YAMLDecoder) Decode(data []byte) (*catalog.Feed, error) {
	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, catalog.NewParseError(fmt.Sprintf("invalid feed document: %v", err))
	}

	feed := &catalog.Feed{ShopName: doc.Shop}
	if doc.Goods == nil {
		return feed, nil
	}
	feed.Goods = []catalog.FeedGood{}
	// header errors outrank good errors and are reported by Feed.Validate
	if feed.ValidateHeader() != nil {
		return feed, nil
	}
	if err := d.validate.Struct(doc); err != nil {
		return nil, translateValidationError(err)
	}

	feed.Goods = make([]catalog.FeedGood, 0, len(*doc.Goods))
	for _, g := range *doc.Goods {
		feed.Goods = append(feed.Goods, catalog.FeedGood{
			ExternalID: g.ExternalID,
			Name:       g.Name,
			Category:   g.Category,
			Quantity:   g.Quantity,
			Price:      g.Price,
			PriceRCC:   g.PriceRCC,
			Parameters: stringifyParameters(g.Parameters),
		})
	}
	return feed, nil
}

// stringifyParameters renders scalar parameter values the way they were written
func stringifyParameters(params map[string]any) map[string]string {
	if len(params) == 0 {
		return map[string]string{}
	}
	out := make(map[string]string, len(params))
	for k, v := range params {
		switch val := v.(type) {
		case nil:
			out[k] = ""
		case string:
			out[k] = val
		default:
			out[k] = fmt.Sprint(val)
		}
	}
	return out
}

func translateValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return catalog.NewParseError(err.Error())
	}
	fe := verrs[0]
	// Namespace looks like document.Goods[3].Name
	field := strings.TrimPrefix(fe.Namespace(), "document.")
	field = strings.Replace(field, "Goods", "goods", 1)
	return shared.NewValidationError(catalog.CodeInvalidGood,
		fmt.Sprintf("%s failed on the '%s' rule", field, fe.Tag()))
}
