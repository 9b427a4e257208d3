/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package schema_test

import (
	"testing"

	"bennypowers.dev/kesher/schema"
)

func TestDetectVersion(t *testing.T) {
	tests := []struct {
		name     string
		doc      map[string]any
		fallback schema.Version
		want     schema.Version
	}{
		{
			name: "explicit draft $schema",
			doc: map[string]any{
				"$schema": "https://www.designtokens.org/schemas/draft.json",
			},
			fallback: schema.Unknown,
			want:     schema.Draft,
		},
		{
			name: "explicit 2025.10 $schema",
			doc: map[string]any{
				"$schema": "https://www.designtokens.org/schemas/2025.10.json",
			},
			fallback: schema.Unknown,
			want:     schema.V2025_10,
		},
		{
			name: "$schema wins over fallback",
			doc: map[string]any{
				"$schema": "https://www.designtokens.org/schemas/2025.10.json",
			},
			fallback: schema.Draft,
			want:     schema.V2025_10,
		},
		{
			name: "unrecognized $schema falls through to fallback",
			doc: map[string]any{
				"$schema": "https://example.com/custom.json",
			},
			fallback: schema.V2025_10,
			want:     schema.V2025_10,
		},
		{
			name:     "fallback used when no $schema",
			doc:      map[string]any{"color": map[string]any{"$value": "#fff"}},
			fallback: schema.V2025_10,
			want:     schema.V2025_10,
		},
		{
			name: "$ref implies 2025.10",
			doc: map[string]any{
				"color": map[string]any{
					"alias": map[string]any{
						"$ref": "#/color/primary/$value",
					},
				},
			},
			fallback: schema.Unknown,
			want:     schema.V2025_10,
		},
		{
			name: "structured color implies 2025.10",
			doc: map[string]any{
				"color": map[string]any{
					"primary": map[string]any{
						"$type": "color",
						"$value": map[string]any{
							"colorSpace": "srgb",
							"components": []any{1.0, 0.0, 0.0},
						},
					},
				},
			},
			fallback: schema.Unknown,
			want:     schema.V2025_10,
		},
		{
			name: "plain string tokens default to draft",
			doc: map[string]any{
				"color": map[string]any{
					"primary": map[string]any{
						"$type":  "color",
						"$value": "#ff0000",
					},
				},
			},
			fallback: schema.Unknown,
			want:     schema.Draft,
		},
		{
			name:     "empty document defaults to draft",
			doc:      map[string]any{},
			fallback: schema.Unknown,
			want:     schema.Draft,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := schema.DetectVersion(tt.doc, tt.fallback); got != tt.want {
				t.Errorf("DetectVersion() = %v, want %v", got, tt.want)
			}
		})
	}
}
