package parser

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cast"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Catalog is the part of a configuration a spreadsheet import replaces.
// Entries are JSON-shaped so they can be merged as a patch directly.
type Catalog struct {
	Categories []any
	Products   []any
}

type GoogleSheetsParser struct {
	service *sheets.Service
}

type Config struct {
	CredentialsJSON []byte
}

func New(cfg Config) (*GoogleSheetsParser, error) {
	ctx := context.Background()

	service, err := sheets.NewService(ctx, option.WithCredentialsJSON(cfg.CredentialsJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &GoogleSheetsParser{
		service: service,
	}, nil
}

func (p *GoogleSheetsParser) ParseCatalog(ctx context.Context, spreadsheetID string) (*Catalog, error) {
	readRange := "A:G" // id, name, price, oldPrice, desc, media, isPack
	resp, err := p.service.Spreadsheets.Values.Get(spreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read spreadsheet: %w", err)
	}

	return ParseRows(resp.Values)
}

// ParseRows reads a sheet laid out as a header row followed by category rows
// (a single filled cell) and product rows belonging to the last category.
func ParseRows(rows [][]interface{}) (*Catalog, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("no data found in spreadsheet")
	}

	catalog := &Catalog{
		Categories: []any{},
		Products:   []any{},
	}
	seen := make(map[string]bool)
	var currentCategory string

	// skip header
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if len(row) == 0 || cell(row, 0) == "" {
			continue
		}

		// check if this is a category row
		if len(row) == 1 || cell(row, 1) == "" {
			label := cell(row, 0)
			currentCategory = categoryID(label)
			if !seen[currentCategory] {
				seen[currentCategory] = true
				catalog.Categories = append(catalog.Categories, map[string]any{
					"id":    currentCategory,
					"label": label,
				})
			}
			continue
		}

		product := map[string]any{
			"id":       cell(row, 0),
			"name":     cell(row, 1),
			"category": currentCategory,
		}
		if price, ok := number(row, 2); ok {
			product["price"] = price
		}
		if oldPrice, ok := number(row, 3); ok {
			product["oldPrice"] = oldPrice
		}
		if desc := cell(row, 4); desc != "" {
			product["desc"] = desc
		}
		if media := mediaList(cell(row, 5)); len(media) > 0 {
			product["media"] = media
		}
		if strings.EqualFold(cell(row, 6), "TRUE") {
			product["isPack"] = true
		}

		catalog.Products = append(catalog.Products, product)
	}

	return catalog, nil
}

func cell(row []interface{}, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(cast.ToString(row[i]))
}

func number(row []interface{}, i int) (float64, bool) {
	s := cell(row, i)
	if s == "" {
		return 0, false
	}
	f, err := cast.ToFloat64E(s)
	if err != nil {
		return 0, false
	}
	return f, true
}

func mediaList(s string) []any {
	var out []any
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func categoryID(label string) string {
	// simple ID generation
	return strings.Join(strings.Fields(strings.ToLower(label)), "-")
}
