package service

import (
	"context"

	"github.com/iliyamo/facility-booking/internal/model"
)

// QuotaResolver returns the effective booking limits for a
// (client, user, facility) combination.  When no explicit rule exists
// the hard-coded defaults apply, so a lookup miss never blocks a
// booking.
type QuotaResolver struct {
	quotas QuotaStore
}

// NewQuotaResolver constructs a resolver over the given store.
func NewQuotaResolver(quotas QuotaStore) *QuotaResolver {
	if quotas == nil {
		panic("nil quota store passed to NewQuotaResolver")
	}
	return &QuotaResolver{quotas: quotas}
}

// Resolve looks up the rule for (client, user, facility) and returns
// its limits, or the defaults when no rule matches.  Only a storage
// failure produces an error.
func (r *QuotaResolver) Resolve(ctx context.Context, clientID, userID, facilityID uint64) (model.Quota, error) {
	rule, err := r.quotas.Find(ctx, clientID, userID, facilityID)
	if err != nil {
		return model.Quota{}, persistence(err)
	}
	if rule == nil {
		return model.DefaultQuota(), nil
	}
	return model.Quota{
		MaxWeeksAdvance:     rule.MaxWeeksAdvance,
		MaxBookingsPerWeek:  rule.MaxBookingsPerWeek,
		MaxBookingsPerMonth: rule.MaxBookingsPerMonth,
	}, nil
}
