// Package pricing computes the estimated cost of a project from its
// page count, selected features and website type.  The calculation is
// pure: the same inputs always produce the same output, and nothing is
// read from or written to outside state.  Handlers store the result on
// the project row as a cache, but it can be recomputed at any time.
package pricing

import (
	"math"

	"github.com/launchform/intake-api/internal/model"
)

// baseCost is charged for every project regardless of size.
const baseCost = 1000

// perPageCost is added for each requested page.
const perPageCost = 200

// FeatureCosts maps each known feature name to its flat price in
// dollars.  Feature names not present here contribute nothing to the
// estimate; they are ignored rather than rejected so that the form can
// grow new options without breaking older clients.
var FeatureCosts = map[string]int{
	"Responsive Design":        500,
	"SEO Optimization":         300,
	"Contact Forms":            200,
	"E-commerce":               1500,
	"Blog/CMS":                 800,
	"User Authentication":      600,
	"Payment Integration":      1000,
	"Analytics":                300,
	"Social Media Integration": 250,
	"Custom Functionality":     2000,
}

// multipliers scales the subtotal by website type.
var multipliers = map[model.WebsiteType]float64{
	model.WebsiteBusiness:  1.0,
	model.WebsiteEcommerce: 1.5,
	model.WebsitePortfolio: 0.8,
	model.WebsiteBlog:      0.9,
	model.WebsiteCustom:    2.0,
}

// Multiplier returns the pricing multiplier for a website type.
// Unrecognized types fall back to 1.0.
func Multiplier(t model.WebsiteType) float64 {
	if m, ok := multipliers[t]; ok {
		return m
	}
	return 1.0
}

// Estimate returns the estimated cost in whole dollars:
//
//	round((base + perPage*pages + sum(feature costs)) * multiplier)
//
// Duplicate feature names are counted once.  Rounding happens after
// the multiplier is applied, not before.
func Estimate(pages int, features []string, websiteType model.WebsiteType) int {
	subtotal := float64(baseCost + perPageCost*pages)
	seen := make(map[string]bool, len(features))
	for _, f := range features {
		if seen[f] {
			continue
		}
		seen[f] = true
		subtotal += float64(FeatureCosts[f])
	}
	return int(math.Round(subtotal * Multiplier(websiteType)))
}
