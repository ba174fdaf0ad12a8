package theme

import (
	"strings"

	"github.com/Beka01247/shopbuilder/internal/domain"
)

const AttrTheme = "data-theme"

// Target is the style scope a Projector writes into.
type Target interface {
	SetProperty(name, value string)
	SetAttribute(name, value string)
}

// Projector maps a theme onto CSS variables. Absent fields are skipped,
// so a partial theme never resets variables written earlier.
type Projector struct {
	target Target
}

func NewProjector(target Target) *Projector {
	return &Projector{target: target}
}

func (p *Projector) Project(th domain.Theme) {
	colors := []struct {
		name  string
		value string
	}{
		{"primary", th.PrimaryColor},
		{"secondary", th.SecondaryColor},
		{"accent", th.AccentColor},
		{"background", th.BackgroundColor},
		{"text", th.TextColor},
	}
	for _, c := range colors {
		if c.value == "" {
			continue
		}
		p.target.SetProperty("--color-"+c.name, c.value)
		p.target.SetProperty("--color-"+c.name+"-rgb", HexToRGBTriplet(c.value))
	}

	p.setIf("--theme-font-family", th.FontFamily)
	p.setIf("--theme-font-weight", th.FontWeight)
	p.setIf("--theme-border-radius", th.BorderRadius)
	p.setIf("--theme-border-width", th.BorderWidth)

	for key, value := range th.CustomColors {
		p.target.SetProperty("--color-"+key, value)
	}

	if th.PrimaryColor != "" && th.SecondaryColor != "" {
		p.target.SetProperty("--gradient-primary",
			"linear-gradient(135deg, "+th.PrimaryColor+", "+th.SecondaryColor+")")
	}

	// the body background is only set with a background color; the preset
	// pattern then takes precedence over the flat color
	if th.BackgroundColor != "" {
		if bg := th.CustomColors["backgroundGradient"]; bg != "" {
			p.target.SetProperty("--body-background", bg)
		} else {
			p.target.SetProperty("--body-background", th.BackgroundColor)
		}
	}

	if id := DetectPreset(th); id != "" {
		p.target.SetAttribute(AttrTheme, id)
	}
}

// ProjectConfig projects the theme object of a configuration, if any.
func (p *Projector) ProjectConfig(cfg domain.Configuration) {
	if cfg == nil {
		return
	}
	if raw, ok := cfg[domain.KeyTheme]; ok {
		p.Project(domain.DecodeTheme(raw))
	}
}

func (p *Projector) setIf(name, value string) {
	if value != "" {
		p.target.SetProperty(name, value)
	}
}

// DetectPreset returns the explicit theme id or recognizes the two presets
// that have a dedicated stylesheet from their colors.
func DetectPreset(th domain.Theme) string {
	if th.ID != "" {
		return th.ID
	}

	primary := strings.ToLower(th.PrimaryColor)
	switch {
	case primary == "#000000" && strings.ToLower(th.SecondaryColor) == "#ffff00":
		return domain.PresetNeoBrutalist
	case primary == "#ffffff" && strings.ToLower(th.BackgroundColor) == "#0a0a0a":
		return domain.PresetTeenageEngineering
	}
	return ""
}
