// Package derive computes the storefront's secondary structures from a configuration.
// Every function is pure and fills missing fields with fixed defaults.
package derive

import (
	"github.com/Beka01247/shopbuilder/internal/domain"
	"github.com/spf13/cast"
)

const (
	DefaultMinQuantity = 5
	DefaultMinWeight   = 15
)

var DefaultQuantityOptions = []float64{5, 10, 20}

type PricingTables struct {
	domain.Pricing
	DeliveryPrices map[string]domain.City      `json:"deliveryPrices"`
	PromoCodes     map[string]domain.PromoCode `json:"promoCodes"`
}

// Data is everything the storefront renders besides the raw configuration.
type Data struct {
	Products   []domain.Product  `json:"products"`
	Categories []domain.Category `json:"categories"`
	Pricing    PricingTables     `json:"pricing"`
}

func All(cfg domain.Configuration) Data {
	return Data{
		Products:   Products(cfg),
		Categories: Categories(cfg),
		Pricing:    Pricing(cfg),
	}
}

func Products(cfg domain.Configuration) []domain.Product {
	raw := cfg.Array(domain.KeyProducts)
	out := make([]domain.Product, 0, len(raw))

	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}

		media := stringSlice(m["media"])
		sources := make([][]domain.MediaSource, 0, len(media))
		for _, url := range media {
			sources = append(sources, []domain.MediaSource{{URL: url, Quality: 1}})
		}

		out = append(out, domain.Product{
			ID:            str(m["id"]),
			Category:      str(m["category"]),
			Name:          str(m["name"]),
			Price:         optionalFloat(m["price"]),
			OldPrice:      optionalFloat(m["oldPrice"]),
			OriginalPrice: optionalFloat(m["originalPrice"]),
			Weight:        optionalFloat(m["weight"]),
			Badge:         optionalString(m["badge"]),
			Media:         media,
			MediaSources:  sources,
			Posters:       stringSlice(m["posters"]),
			Thumbnail:     str(m["thumbnail"]),
			Desc:          str(m["desc"]),
			IsPack:        cast.ToBool(m["isPack"]),
			CatalogOnly:   cast.ToBool(m["catalogOnly"]),
			Details:       stringSlice(m["details"]),
		})
	}

	return out
}

func Categories(cfg domain.Configuration) []domain.Category {
	raw := cfg.Array(domain.KeyCategories)
	out := make([]domain.Category, 0, len(raw))

	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, domain.Category{
			ID:       str(m["id"]),
			Label:    str(m["label"]),
			Emoji:    str(m["emoji"]),
			Gradient: str(m["gradient"]),
			IsNew:    cast.ToBool(m["isNew"]),
		})
	}

	return out
}

func Pricing(cfg domain.Configuration) PricingTables {
	pricing := cfg.Object(domain.KeyPricing)

	tables := PricingTables{
		Pricing: domain.Pricing{
			PricesPerCategory: map[string]float64{},
			QuantityOptions:   append([]float64(nil), DefaultQuantityOptions...),
			MinQuantity:       positiveOr(pricing["minQuantity"], DefaultMinQuantity),
			MinWeight:         positiveOr(pricing["minWeight"], DefaultMinWeight),
		},
		DeliveryPrices: map[string]domain.City{},
		PromoCodes:     map[string]domain.PromoCode{},
	}

	if prices, ok := pricing["pricesPerCategory"].(map[string]any); ok {
		for id, v := range prices {
			if f, err := cast.ToFloat64E(v); err == nil {
				tables.PricesPerCategory[id] = f
			}
		}
	}

	if opts, ok := pricing["quantityOptions"].([]any); ok {
		var parsed []float64
		for _, v := range opts {
			if f, err := cast.ToFloat64E(v); err == nil {
				parsed = append(parsed, f)
			}
		}
		// nothing usable keeps the defaults
		if len(parsed) > 0 {
			tables.QuantityOptions = parsed
		}
	}

	if cities, ok := cfg.Object(domain.KeyDelivery)["cities"].(map[string]any); ok {
		for id, v := range cities {
			m, ok := v.(map[string]any)
			if !ok {
				continue
			}
			tables.DeliveryPrices[id] = domain.City{
				Name:          str(m["name"]),
				Price:         cast.ToFloat64(m["price"]),
				Emoji:         str(m["emoji"]),
				EstimatedDays: cast.ToInt(m["estimatedDays"]),
			}
		}
	}

	for code, v := range cfg.Object(domain.KeyPromoCodes) {
		m, ok := v.(map[string]any)
		if !ok {
			continue
		}
		tables.PromoCodes[code] = domain.PromoCode{
			Label:    str(m["label"]),
			Discount: cast.ToFloat64(m["discount"]),
		}
	}

	return tables
}

// FilterByCategory keeps products of one category; products pointing at a
// missing category simply never match.
func FilterByCategory(products []domain.Product, categoryID string) []domain.Product {
	if categoryID == "" {
		return products
	}

	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if p.Category == categoryID {
			out = append(out, p)
		}
	}
	return out
}

func str(v any) string {
	switch v.(type) {
	case map[string]any, []any, nil:
		return ""
	}
	return cast.ToString(v)
}

func stringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return []string{}
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := str(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func optionalFloat(v any) *float64 {
	if v == nil {
		return nil
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return nil
	}
	return &f
}

func optionalString(v any) *string {
	s := str(v)
	if s == "" {
		return nil
	}
	return &s
}

func positiveOr(v any, def float64) float64 {
	f, err := cast.ToFloat64E(v)
	if err != nil || f <= 0 {
		return def
	}
	return f
}
