package weather

import (
	"math"
	"strconv"
)

// clothingBracket applies to temperatures strictly below maxF.
type clothingBracket struct {
	maxF        float64
	top         []string
	bottom      []string
	outerwear   []string
	accessories []string
}

// Evaluated in order; the last bracket catches everything else, NaN included.
var clothingTable = []clothingBracket{
	{
		maxF:        32,
		top:         []string{"Thermal base layer", "Long-sleeve shirt", "Sweater"},
		bottom:      []string{"Thermal leggings", "Warm pants"},
		outerwear:   []string{"Heavy winter coat", "Insulated jacket"},
		accessories: []string{"Winter hat", "Gloves", "Scarf", "Warm socks", "Winter boots"},
	},
	{
		maxF:        45,
		top:         []string{"Long-sleeve shirt", "Sweater"},
		bottom:      []string{"Warm pants", "Jeans"},
		outerwear:   []string{"Winter coat", "Heavy jacket"},
		accessories: []string{"Hat", "Gloves", "Scarf", "Warm socks"},
	},
	{
		maxF:        60,
		top:         []string{"Long-sleeve shirt", "Light sweater"},
		bottom:      []string{"Pants", "Jeans"},
		outerwear:   []string{"Light jacket", "Sweatshirt"},
		accessories: []string{"Light scarf", "Closed-toe shoes"},
	},
	{
		maxF:        75,
		top:         []string{"Short-sleeve shirt", "Light long-sleeve shirt"},
		bottom:      []string{"Pants", "Jeans", "Shorts"},
		outerwear:   []string{"Light jacket (optional)"},
		accessories: []string{"Comfortable shoes"},
	},
	{
		maxF:        math.Inf(1),
		top:         []string{"Short-sleeve shirt", "Tank top"},
		bottom:      []string{"Shorts", "Light pants"},
		outerwear:   []string{"Light cover-up (optional)"},
		accessories: []string{"Sunglasses", "Hat", "Sunscreen"},
	},
}

// SuggestClothing maps a Fahrenheit temperature to clothing suggestions.
func SuggestClothing(tempF float64) ClothingSuggestions {
	b := clothingTable[len(clothingTable)-1]
	for _, candidate := range clothingTable {
		if tempF < candidate.maxF {
			b = candidate
			break
		}
	}

	// Copies so callers can't mutate the shared table.
	return ClothingSuggestions{
		Top:         append([]string(nil), b.top...),
		Bottom:      append([]string(nil), b.bottom...),
		Outerwear:   append([]string(nil), b.outerwear...),
		Accessories: append([]string(nil), b.accessories...),
	}
}

// CelsiusToFahrenheit converts and rounds to one decimal place. Rounding goes
// through the exact decimal value, so ties such as 34.25 round to even.
func CelsiusToFahrenheit(c float64) float64 {
	f, _ := strconv.ParseFloat(strconv.FormatFloat(c*9/5+32, 'f', 1, 64), 64)
	return f
}
