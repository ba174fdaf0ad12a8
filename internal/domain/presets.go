package domain

type ThemePreset struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
	Theme       Theme  `json:"theme"`
}

const (
	PresetNeoBrutalist       = "neo-brutalist"
	PresetTeenageEngineering = "teenage-engineering"
	PresetSunset             = "sunset"
	PresetOcean              = "ocean"
	PresetForest             = "forest"
)

var ThemePresets = []ThemePreset{
	{
		ID:          PresetNeoBrutalist,
		Name:        "Neo Brutalist",
		Icon:        "🔲",
		Description: "Bold, high contrast, geometric",
		Theme: Theme{
			ID:              PresetNeoBrutalist,
			PrimaryColor:    "#000000",
			SecondaryColor:  "#ffff00",
			AccentColor:     "#ff00ff",
			BackgroundColor: "#0a0a0a",
			TextColor:       "#ffffff",
			FontFamily:      `"Space Grotesk", "Inter", system-ui, -apple-system, sans-serif`,
			FontWeight:      "700",
			BorderRadius:    "0px",
			BorderWidth:     "4px",
			CustomColors: map[string]string{
				"backgroundGradient": "repeating-linear-gradient(45deg, #0a0a0a 0px, #0a0a0a 20px, #1a1a1a 20px, #1a1a1a 40px), " +
					"repeating-linear-gradient(-45deg, #0a0a0a 0px, #0a0a0a 20px, #151515 20px, #151515 40px)",
			},
		},
	},
	{
		ID:          PresetTeenageEngineering,
		Name:        "Teenage Engineering",
		Icon:        "🎛️",
		Description: "Minimal, tech, monochrome",
		Theme: Theme{
			ID:              PresetTeenageEngineering,
			PrimaryColor:    "#ffffff",
			SecondaryColor:  "#e5e5e5",
			AccentColor:     "#a3a3a3",
			BackgroundColor: "#0a0a0a",
			TextColor:       "#ffffff",
			FontFamily:      `"Roboto Condensed", "DIN 2014", "Helvetica Neue", system-ui, -apple-system, sans-serif`,
			FontWeight:      "300",
			BorderRadius:    "2px",
			BorderWidth:     "1px",
		},
	},
	{
		ID:          PresetSunset,
		Name:        "Sunset",
		Icon:        "🌅",
		Description: "Warm, vibrant, energetic",
		Theme: Theme{
			ID:              PresetSunset,
			PrimaryColor:    "#f97316",
			SecondaryColor:  "#fb923c",
			AccentColor:     "#fdba74",
			BackgroundColor: "#1c1917",
			TextColor:       "#ffffff",
			FontFamily:      `"Poppins", "Outfit", "Montserrat", system-ui, -apple-system, sans-serif`,
			FontWeight:      "600",
			BorderRadius:    "16px",
			BorderWidth:     "1px",
		},
	},
	{
		ID:          PresetOcean,
		Name:        "Ocean",
		Icon:        "🌊",
		Description: "Cool, calm, refreshing",
		Theme: Theme{
			ID:              PresetOcean,
			PrimaryColor:    "#0ea5e9",
			SecondaryColor:  "#06b6d4",
			AccentColor:     "#22d3ee",
			BackgroundColor: "#0c0a09",
			TextColor:       "#ffffff",
			FontFamily:      `"Inter", "Sora", "Plus Jakarta Sans", "Manrope", system-ui, -apple-system, sans-serif`,
			FontWeight:      "500",
			BorderRadius:    "12px",
			BorderWidth:     "1px",
		},
	},
	{
		ID:          PresetForest,
		Name:        "Forest",
		Icon:        "🌲",
		Description: "Natural, green, organic",
		Theme: Theme{
			ID:              PresetForest,
			PrimaryColor:    "#16a34a",
			SecondaryColor:  "#22c55e",
			AccentColor:     "#4ade80",
			BackgroundColor: "#0a0f0a",
			TextColor:       "#ffffff",
			FontFamily:      `"Lora", "Merriweather", "Source Serif 4", "Cabin", system-ui, -apple-system, sans-serif`,
			FontWeight:      "600",
			BorderRadius:    "20px",
			BorderWidth:     "2px",
		},
	},
}

func FindThemePreset(id string) (ThemePreset, bool) {
	for _, p := range ThemePresets {
		if p.ID == id {
			return p, true
		}
	}
	return ThemePreset{}, false
}
