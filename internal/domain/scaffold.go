package domain

// DefaultConfiguration is the scaffold a project starts from when created without a config.
func DefaultConfiguration(name string) Configuration {
	preset, _ := FindThemePreset(PresetOcean)

	return Configuration{
		KeyBrand: map[string]any{
			"name":        name,
			"slogan":      "",
			"description": "",
			"logo":        "",
			"language":    "en",
		},
		KeyTheme:      preset.Theme.Map(),
		KeyCategories: []any{},
		KeyProducts:   []any{},
		KeyDelivery: map[string]any{
			"cities": map[string]any{
				"local": map[string]any{
					"name":          "Local pickup",
					"price":         float64(0),
					"emoji":         "📍",
					"estimatedDays": float64(0),
				},
			},
		},
		KeyContact: map[string]any{},
		KeySocial:  map[string]any{},
		KeyPricing: map[string]any{
			"pricesPerCategory": map[string]any{},
			"quantityOptions":   []any{float64(5), float64(10), float64(20)},
			"minQuantity":       float64(5),
			"minWeight":         float64(15),
		},
		KeyPromoCodes: map[string]any{},
	}
}
