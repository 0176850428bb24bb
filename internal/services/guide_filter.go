package services

import (
	"sort"
	"strings"

	"github.com/wanderguide/marketplace-api/internal/dto"
	"github.com/wanderguide/marketplace-api/internal/models"
)

// FilterGuides applies the in-memory listing predicates and ordering. The
// city and verified filters are applied in SQL before this runs.
func FilterGuides(guides []models.GuideProfile, f dto.GuideFilter) []models.GuideProfile {
	q := strings.ToLower(strings.TrimSpace(f.Q))
	out := make([]models.GuideProfile, 0, len(guides))
	for _, g := range guides {
		if f.Language != "" && !containsFold(g.Languages, f.Language) {
			continue
		}
		if f.Theme != "" && !containsFold(g.Themes, f.Theme) {
			continue
		}
		price := g.HourlyPrice()
		if f.MinPrice != nil && price < *f.MinPrice {
			continue
		}
		if f.MaxPrice != nil && price > *f.MaxPrice {
			continue
		}
		if f.MinRating != nil && g.RatingAvg < *f.MinRating {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(g.DisplayName+" "+g.Bio+" "+g.Location), q) {
			continue
		}
		out = append(out, g)
	}

	switch f.Sort {
	case "price_asc":
		sort.SliceStable(out, func(i, j int) bool { return out[i].HourlyPrice() < out[j].HourlyPrice() })
	case "price_desc":
		sort.SliceStable(out, func(i, j int) bool { return out[i].HourlyPrice() > out[j].HourlyPrice() })
	case "newest":
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	default:
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].RatingAvg != out[j].RatingAvg {
				return out[i].RatingAvg > out[j].RatingAvg
			}
			return out[i].RatingCount > out[j].RatingCount
		})
	}
	return out
}

func containsFold(list []string, v string) bool {
	for _, item := range list {
		if strings.EqualFold(item, v) {
			return true
		}
	}
	return false
}
