package domain

import "github.com/spf13/cast"

type Brand struct {
	Name        string `json:"name"`
	Slogan      string `json:"slogan,omitempty"`
	Description string `json:"description,omitempty"`
	Logo        string `json:"logo,omitempty"`
	Favicon     string `json:"favicon,omitempty"`
	Language    string `json:"language,omitempty"`
}

type Theme struct {
	ID              string            `json:"id,omitempty"`
	PrimaryColor    string            `json:"primaryColor,omitempty"`
	SecondaryColor  string            `json:"secondaryColor,omitempty"`
	AccentColor     string            `json:"accentColor,omitempty"`
	BackgroundColor string            `json:"backgroundColor,omitempty"`
	TextColor       string            `json:"textColor,omitempty"`
	FontFamily      string            `json:"fontFamily,omitempty"`
	FontWeight      string            `json:"fontWeight,omitempty"`
	BorderRadius    string            `json:"borderRadius,omitempty"`
	BorderWidth     string            `json:"borderWidth,omitempty"`
	CustomColors    map[string]string `json:"customColors,omitempty"`
}

type Category struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Emoji    string `json:"emoji"`
	Gradient string `json:"gradient"`
	IsNew    bool   `json:"isNew"`
}

type MediaSource struct {
	URL     string  `json:"url"`
	Quality float64 `json:"quality"`
}

type Product struct {
	ID            string          `json:"id"`
	Category      string          `json:"category"`
	Name          string          `json:"name"`
	Price         *float64        `json:"price"`
	OldPrice      *float64        `json:"oldPrice"`
	OriginalPrice *float64        `json:"originalPrice"`
	Weight        *float64        `json:"weight"`
	Badge         *string         `json:"badge"`
	Media         []string        `json:"media"`
	MediaSources  [][]MediaSource `json:"mediaSources"`
	Posters       []string        `json:"posters"`
	Thumbnail     string          `json:"thumbnail"`
	Desc          string          `json:"desc"`
	IsPack        bool            `json:"isPack"`
	CatalogOnly   bool            `json:"catalogOnly"`
	Details       []string        `json:"details"`
}

type City struct {
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	Emoji         string  `json:"emoji"`
	EstimatedDays int     `json:"estimatedDays"`
}

type Contact struct {
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	WhatsApp string `json:"whatsapp,omitempty"`
	Telegram string `json:"telegram,omitempty"`
}

type PromoCode struct {
	Label    string  `json:"label"`
	Discount float64 `json:"discount"`
}

type Pricing struct {
	PricesPerCategory map[string]float64 `json:"pricesPerCategory"`
	QuantityOptions   []float64          `json:"quantityOptions"`
	MinQuantity       float64            `json:"minQuantity"`
	MinWeight         float64            `json:"minWeight"`
}

// DecodeTheme reads a theme object leniently. Fields of the wrong type decode as empty.
func DecodeTheme(v any) Theme {
	m, _ := v.(map[string]any)
	if m == nil {
		return Theme{}
	}

	th := Theme{
		ID:              str(m["id"]),
		PrimaryColor:    str(m["primaryColor"]),
		SecondaryColor:  str(m["secondaryColor"]),
		AccentColor:     str(m["accentColor"]),
		BackgroundColor: str(m["backgroundColor"]),
		TextColor:       str(m["textColor"]),
		FontFamily:      str(m["fontFamily"]),
		FontWeight:      str(m["fontWeight"]),
		BorderRadius:    str(m["borderRadius"]),
		BorderWidth:     str(m["borderWidth"]),
	}

	if custom, ok := m["customColors"].(map[string]any); ok {
		th.CustomColors = make(map[string]string, len(custom))
		for k, val := range custom {
			if s := str(val); s != "" {
				th.CustomColors[k] = s
			}
		}
	}

	return th
}

// Map converts a theme back into the JSON-shaped form used for patches.
func (t Theme) Map() map[string]any {
	out := map[string]any{}
	set := func(key, val string) {
		if val != "" {
			out[key] = val
		}
	}
	set("id", t.ID)
	set("primaryColor", t.PrimaryColor)
	set("secondaryColor", t.SecondaryColor)
	set("accentColor", t.AccentColor)
	set("backgroundColor", t.BackgroundColor)
	set("textColor", t.TextColor)
	set("fontFamily", t.FontFamily)
	set("fontWeight", t.FontWeight)
	set("borderRadius", t.BorderRadius)
	set("borderWidth", t.BorderWidth)

	custom := make(map[string]any, len(t.CustomColors))
	for k, v := range t.CustomColors {
		custom[k] = v
	}
	out["customColors"] = custom

	return out
}

func DecodeBrand(v any) Brand {
	m, _ := v.(map[string]any)
	return Brand{
		Name:        str(m["name"]),
		Slogan:      str(m["slogan"]),
		Description: str(m["description"]),
		Logo:        str(m["logo"]),
		Favicon:     str(m["favicon"]),
		Language:    str(m["language"]),
	}
}

func DecodeContact(v any) Contact {
	m, _ := v.(map[string]any)
	return Contact{
		Email:    str(m["email"]),
		Phone:    str(m["phone"]),
		WhatsApp: str(m["whatsapp"]),
		Telegram: str(m["telegram"]),
	}
}

// str coerces scalars to string; objects and arrays become "".
func str(v any) string {
	switch v.(type) {
	case map[string]any, []any, nil:
		return ""
	}
	return cast.ToString(v)
}
