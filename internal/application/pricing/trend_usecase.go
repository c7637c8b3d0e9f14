package pricing

import (
	"context"
	"fmt"
	"time"

	"github.com/ravito-ci/ravito-api/internal/application/dto"
	"github.com/ravito-ci/ravito-api/internal/domain"
	domainpricing "github.com/ravito-ci/ravito-api/internal/domain/pricing"
	"github.com/ravito-ci/ravito-api/internal/domain/repository"
)

const (
	defaultTrendDays = 30
	maxTrendDays     = 366
	dateLayout       = "2006-01-02"
)

// TrendUseCase tendance journalière des prix appliqués sur les commandes livrées.
type TrendUseCase struct {
	products repository.ProductRepository
	samples  repository.PriceSampleRepository
	loc      *time.Location
	now      func() time.Time
}

// NewTrendUseCase construit le cas d'usage; loc est le fuseau de découpage des jours.
func NewTrendUseCase(products repository.ProductRepository, samples repository.PriceSampleRepository, loc *time.Location) *TrendUseCase {
	if loc == nil {
		loc = time.UTC
	}
	return &TrendUseCase{products: products, samples: samples, loc: loc, now: time.Now}
}

// GetProductTrend agrège les prix par jour sur [startDate, endDate] (YYYY-MM-DD, inclus).
// Par défaut les 30 derniers jours; fenêtre limitée à 366 jours.
func (uc *TrendUseCase) GetProductTrend(ctx context.Context, productID, startDate, endDate string) (*dto.ProductTrendDTO, error) {
	from, to, err := uc.window(startDate, endDate)
	if err != nil {
		return nil, err
	}
	if _, err := loadProduct(ctx, uc.products, productID); err != nil {
		return nil, err
	}

	samples, err := uc.samples.ListSamples(ctx, productID, from, to)
	if err != nil {
		return nil, fmt.Errorf("pricing: lire les échantillons: %w", err)
	}
	buckets, err := domainpricing.AggregateTrend(samples, uc.loc)
	if err != nil {
		return nil, err
	}

	out := &dto.ProductTrendDTO{
		ProductID: productID,
		StartDate: from.Format(dateLayout),
		EndDate:   to.Add(-time.Nanosecond).Format(dateLayout),
		Timezone:  uc.loc.String(),
		Points:    make([]dto.TrendPointDTO, 0, len(buckets)),
	}
	for _, b := range buckets {
		out.Points = append(out.Points, dto.TrendPointDTO{
			Date:        b.Date.Format(dateLayout),
			AvgPrice:    b.AvgPrice,
			MinPrice:    b.MinPrice,
			MaxPrice:    b.MaxPrice,
			SampleCount: b.SampleCount,
		})
	}
	return out, nil
}

// window renvoie [début du premier jour, début du lendemain du dernier jour[ dans loc.
func (uc *TrendUseCase) window(startDate, endDate string) (time.Time, time.Time, error) {
	today := uc.now().In(uc.loc)
	end := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, uc.loc)
	if endDate != "" {
		t, err := time.ParseInLocation(dateLayout, endDate, uc.loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: end_date doit être au format YYYY-MM-DD", domain.ErrInvalidInput)
		}
		end = t
	}
	start := end.AddDate(0, 0, -(defaultTrendDays - 1))
	if startDate != "" {
		t, err := time.ParseInLocation(dateLayout, startDate, uc.loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: start_date doit être au format YYYY-MM-DD", domain.ErrInvalidInput)
		}
		start = t
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start_date postérieure à end_date", domain.ErrInvalidInput)
	}
	if end.Sub(start) > time.Duration(maxTrendDays)*24*time.Hour {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: période limitée à %d jours", domain.ErrInvalidInput, maxTrendDays)
	}
	return start, end.AddDate(0, 0, 1), nil
}
