package pricing

import (
	"fmt"
	"sort"
	"time"

	"github.com/ravito-ci/ravito-api/internal/domain"
	"github.com/ravito-ci/ravito-api/internal/domain/entity"
	"github.com/ravito-ci/ravito-api/pkg/money"
)

// TrendBucket agrégat d'un jour calendaire.
type TrendBucket struct {
	Date        time.Time // minuit du jour dans le fuseau d'agrégation
	AvgPrice    int64
	MinPrice    int64
	MaxPrice    int64
	SampleCount int
}

// AggregateTrend regroupe les échantillons par jour calendaire dans loc (UTC si nil)
// et renvoie les jours par ordre croissant. Entrée vide: slice vide.
func AggregateTrend(samples []entity.PriceSample, loc *time.Location) ([]TrendBucket, error) {
	if loc == nil {
		loc = time.UTC
	}
	type acc struct {
		sum, min, max int64
		count         int
	}
	byDay := make(map[time.Time]*acc)
	for _, s := range samples {
		if s.Price <= 0 {
			return nil, fmt.Errorf("%w: prix d'échantillon non positif (%d)", domain.ErrInvalidInput, s.Price)
		}
		t := s.Timestamp.In(loc)
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
		a, ok := byDay[day]
		if !ok {
			byDay[day] = &acc{sum: s.Price, min: s.Price, max: s.Price, count: 1}
			continue
		}
		a.sum += s.Price
		a.count++
		if s.Price < a.min {
			a.min = s.Price
		}
		if s.Price > a.max {
			a.max = s.Price
		}
	}

	buckets := make([]TrendBucket, 0, len(byDay))
	for day, a := range byDay {
		avg, err := money.RoundHalfUpDiv(a.sum, int64(a.count))
		if err != nil {
			return nil, err
		}
		buckets = append(buckets, TrendBucket{
			Date:        day,
			AvgPrice:    avg,
			MinPrice:    a.min,
			MaxPrice:    a.max,
			SampleCount: a.count,
		})
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Date.Before(buckets[j].Date) })
	return buckets, nil
}
