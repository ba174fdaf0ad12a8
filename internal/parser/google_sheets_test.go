package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRows(t *testing.T) {
	rows := [][]interface{}{
		{"id", "name", "price", "oldPrice", "desc", "media", "isPack"},
		{"Green Tea"},
		{"t1", "Sencha", "12.5", "", "Grassy", "a.jpg, b.mp4", "FALSE"},
		{"t2", "Matcha", "abc", "30", "", "", "true"},
		{},
		{"Coffee Beans", ""},
		{"c1", "Espresso", 8},
	}

	catalog, err := ParseRows(rows)
	require.NoError(t, err)

	assert.Equal(t, []any{
		map[string]any{"id": "green-tea", "label": "Green Tea"},
		map[string]any{"id": "coffee-beans", "label": "Coffee Beans"},
	}, catalog.Categories)

	require.Len(t, catalog.Products, 3)
	assert.Equal(t, map[string]any{
		"id":       "t1",
		"name":     "Sencha",
		"category": "green-tea",
		"price":    12.5,
		"desc":     "Grassy",
		"media":    []any{"a.jpg", "b.mp4"},
	}, catalog.Products[0])
	assert.Equal(t, map[string]any{
		"id":       "t2",
		"name":     "Matcha",
		"category": "green-tea",
		"oldPrice": float64(30),
		"isPack":   true,
	}, catalog.Products[1])
	assert.Equal(t, map[string]any{
		"id":       "c1",
		"name":     "Espresso",
		"category": "coffee-beans",
		"price":    float64(8),
	}, catalog.Products[2])
}

func TestParseRowsEmpty(t *testing.T) {
	_, err := ParseRows(nil)
	assert.Error(t, err)

	catalog, err := ParseRows([][]interface{}{{"header"}})
	require.NoError(t, err)
	assert.Empty(t, catalog.Categories)
	assert.Empty(t, catalog.Products)
}
