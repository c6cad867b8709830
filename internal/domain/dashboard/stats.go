package dashboard

import (
	"cmp"
	"slices"
	"time"

	"github.com/Spok95/clinic-stock/internal/domain/materials"
)

// Build assembles the overview from the catalog with its totals and the
// batches that still have a shelf life set.
func Build(now time.Time, mats []materials.Material, batches []materials.Batch) *Stats {
	return &Stats{
		LowStockItems:        LowStock(mats),
		ExpiringSoonBatches:  ExpiringSoon(batches, now),
		MaterialDistribution: Distribution(mats),
	}
}

// LowStock keeps materials below their minimum, the most depleted first.
func LowStock(mats []materials.Material) []materials.Material {
	out := []materials.Material{}
	for _, m := range mats {
		if m.TotalQuantity < m.MinQuantity {
			out = append(out, m)
		}
	}
	slices.SortStableFunc(out, func(a, b materials.Material) int {
		if c := cmp.Compare(a.TotalQuantity/a.MinQuantity, b.TotalQuantity/b.MinQuantity); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return out
}

// ExpiryRange is the inclusive span of calendar days that counts as
// "expiring soon" on the day of now.
func ExpiryRange(now time.Time) (from, to time.Time) {
	return day(now), day(now.Add(ExpiryWindow))
}

// ExpiringSoon keeps batches that expire inside ExpiryRange and still hold
// stock, soonest first.
func ExpiringSoon(batches []materials.Batch, now time.Time) []materials.Batch {
	from, to := ExpiryRange(now)
	out := []materials.Batch{}
	for _, b := range batches {
		if b.CurrentQuantity <= 0 || b.ExpirationDate == nil {
			continue
		}
		d := day(*b.ExpirationDate)
		if d.Before(from) || d.After(to) {
			continue
		}
		out = append(out, b)
	}
	slices.SortStableFunc(out, func(a, b materials.Batch) int {
		if c := a.ExpirationDate.Compare(*b.ExpirationDate); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// Distribution lists the DistributionLimit largest totals.
func Distribution(mats []materials.Material) []DistributionItem {
	out := []DistributionItem{}
	for _, m := range mats {
		if m.TotalQuantity > 0 {
			out = append(out, DistributionItem{Name: m.Name, TotalQuantity: m.TotalQuantity})
		}
	}
	slices.SortStableFunc(out, func(a, b DistributionItem) int {
		if c := cmp.Compare(b.TotalQuantity, a.TotalQuantity); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	if len(out) > DistributionLimit {
		out = out[:DistributionLimit]
	}
	return out
}

// day drops the clock: сроки годности хранятся как DATE.
func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
