/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package color normalizes color token values in resolved documents
// to canonical CSS strings.
package color

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/mazznoer/csscolorparser"
)

// AlphaThreshold is the value below which alpha is included in CSS
// output. Values >= 0.999 are treated as fully opaque.
const AlphaThreshold = 0.999

// ValidColorSpaces lists the 14 color spaces supported by the DTCG
// 2025.10 spec.
var ValidColorSpaces = map[string]bool{
	"srgb":         true,
	"display-p3":   true,
	"a98-rgb":      true,
	"prophoto-rgb": true,
	"rec2020":      true,
	"xyz-d50":      true,
	"xyz-d65":      true,
	"lab":          true,
	"lch":          true,
	"oklab":        true,
	"oklch":        true,
	"srgb-linear":  true,
	"hsl":          true,
	"hwb":          true,
}

// Normalize returns a copy of a resolved document with every
// color-typed token value rewritten to a canonical CSS string. Values
// that cannot be interpreted are left unchanged.
func Normalize(doc map[string]any) map[string]any {
	return normalizeLevel(doc, "").(map[string]any)
}

func normalizeLevel(value any, inheritedType string) any {
	m, ok := value.(map[string]any)
	if !ok {
		return value
	}

	currentType := inheritedType
	if t, ok := m["$type"].(string); ok {
		currentType = t
	}

	out := make(map[string]any, len(m))
	for key, child := range m {
		if key == "$value" && currentType == "color" {
			if css, ok := ToCSS(child); ok {
				out[key] = css
				continue
			}
		}
		if strings.HasPrefix(key, "$") {
			out[key] = child
			continue
		}
		out[key] = normalizeLevel(child, currentType)
	}
	return out
}

// ToCSS converts a color token value to a CSS string. String values
// are parsed and re-emitted as hex; structured 2025.10 values are
// converted through their color space where supported, and rendered
// as CSS color functions otherwise.
func ToCSS(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		c, err := csscolorparser.Parse(v)
		if err != nil {
			return "", false
		}
		return c.HexString(), true
	case map[string]any:
		return structuredToCSS(v)
	default:
		return "", false
	}
}

// structuredToCSS converts a {colorSpace, components, alpha?, hex?}
// color value.
func structuredToCSS(obj map[string]any) (string, bool) {
	if hex, ok := obj["hex"].(string); ok && hex != "" {
		return hex, true
	}

	space, ok := obj["colorSpace"].(string)
	if !ok || !ValidColorSpaces[space] {
		return "", false
	}
	componentsRaw, ok := obj["components"].([]any)
	if !ok {
		return "", false
	}

	alpha := 1.0
	if a, ok := obj["alpha"].(float64); ok {
		alpha = a
	}

	components, numeric := floatComponents(componentsRaw)
	if numeric && len(components) == 3 {
		if c, ok := convert(space, components); ok {
			return hexWithAlpha(c.Clamped(), alpha), true
		}
	}

	return cssColorFunction(space, componentsRaw, alpha), true
}

// convert maps structured components to an sRGB color for the spaces
// go-colorful models directly. CSS-scale percentage components
// (hsl saturation/lightness, lab/lch lightness and chroma) are
// rescaled to go-colorful's 0..1 convention.
func convert(space string, c []float64) (colorful.Color, bool) {
	switch space {
	case "srgb":
		return colorful.Color{R: c[0], G: c[1], B: c[2]}, true
	case "srgb-linear":
		return colorful.LinearRgb(c[0], c[1], c[2]), true
	case "hsl":
		return colorful.Hsl(c[0], c[1]/100, c[2]/100), true
	case "lab":
		return colorful.Lab(c[0]/100, c[1]/100, c[2]/100), true
	case "lch":
		return colorful.Hcl(c[2], c[1]/100, c[0]/100), true
	case "xyz-d65":
		return colorful.Xyz(c[0], c[1], c[2]), true
	default:
		return colorful.Color{}, false
	}
}

func floatComponents(raw []any) ([]float64, bool) {
	out := make([]float64, 0, len(raw))
	for _, comp := range raw {
		f, ok := comp.(float64)
		if !ok {
			return nil, false
		}
		out = append(out, f)
	}
	return out, true
}

// hexWithAlpha renders a color as #RRGGBB, appending the alpha byte
// only when it is meaningfully translucent.
func hexWithAlpha(c colorful.Color, alpha float64) string {
	hex := c.Hex()
	if alpha < AlphaThreshold {
		a := int(alpha*255 + 0.5)
		if a < 0 {
			a = 0
		} else if a > 255 {
			a = 255
		}
		hex = fmt.Sprintf("%s%02x", hex, a)
	}
	return hex
}

// cssColorFunction renders spaces without a direct conversion as CSS
// color functions, like lab(...) or color(display-p3 ...).
func cssColorFunction(space string, components []any, alpha float64) string {
	var sb strings.Builder
	for i, comp := range components {
		if i > 0 {
			sb.WriteString(" ")
		}
		switch v := comp.(type) {
		case float64:
			fmt.Fprintf(&sb, "%.4g", v)
		default:
			fmt.Fprintf(&sb, "%v", v)
		}
	}

	hasAlpha := alpha < AlphaThreshold

	switch space {
	case "hsl", "hwb", "lab", "lch", "oklab", "oklch":
		if hasAlpha {
			return fmt.Sprintf("%s(%s / %.4g)", space, sb.String(), alpha)
		}
		return fmt.Sprintf("%s(%s)", space, sb.String())
	default:
		if hasAlpha {
			return fmt.Sprintf("color(%s %s / %.4g)", space, sb.String(), alpha)
		}
		return fmt.Sprintf("color(%s %s)", space, sb.String())
	}
}
