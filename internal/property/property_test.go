package property

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestValueTreatsZeroAsMissing(t *testing.T) {
	tests := []struct {
		name    string
		in      *float64
		want    float64
		present bool
	}{
		{"nil", nil, 0, false},
		{"zero", Float(0), 0, false},
		{"positive", Float(1500), 1500, true},
		{"negative", Float(-2), -2, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := Value(tt.in)
			assert.Equal(t, tt.present, ok)
			assert.Equal(t, tt.want, v)
		})
	}

	_, ok := IntValue(Int(0))
	assert.False(t, ok)
	n, ok := IntValue(Int(3))
	assert.True(t, ok)
	assert.Equal(t, 3, n)
}

func TestFlag(t *testing.T) {
	_, ok := Flag(nil)
	assert.False(t, ok)

	v, ok := Flag(Bool(false))
	assert.True(t, ok)
	assert.False(t, v)
}

func TestSaleTime(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want time.Time
		ok   bool
	}{
		{"date only", "2024-03-15", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), true},
		{"rfc3339", "2024-03-15T10:30:00Z", time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC), true},
		{"no zone", "2024-03-15T10:30:00", time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC), true},
		{"empty", "", time.Time{}, false},
		{"garbage", "last spring", time.Time{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ComparableProperty{SaleDate: tt.in}.SaleTime()
			assert.Equal(t, tt.ok, ok)
			assert.True(t, tt.want.Equal(got), "got %v want %v", got, tt.want)
		})
	}
}

func TestComparableDecodesFlatFields(t *testing.T) {
	const doc = `
id: comp-1
latitude: 40.5
longitude: -78.4
sqft: 1450
bedrooms: 3
has_pool: false
sale_price: 185000
sale_date: "2024-06-01"
`
	var c ComparableProperty
	require.NoError(t, yaml.Unmarshal([]byte(doc), &c))
	assert.Equal(t, "comp-1", c.ID)
	assert.Equal(t, 40.5, c.Latitude)
	require.NotNil(t, c.Sqft)
	assert.Equal(t, 1450.0, *c.Sqft)
	require.NotNil(t, c.HasPool)
	assert.False(t, *c.HasPool)
	assert.Equal(t, 185000.0, c.SalePrice)

	var j ComparableProperty
	require.NoError(t, json.Unmarshal([]byte(`{"latitude":1,"longitude":2,"bedrooms":4,"sale_price":10}`), &j))
	require.NotNil(t, j.Bedrooms)
	assert.Equal(t, 4, *j.Bedrooms)
	assert.Equal(t, 2.0, j.Longitude)
}
