package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"agrimart/internal/service/inventory/domain"
)

func TestTierFor(t *testing.T) {
	tests := []struct {
		name      string
		available int64
		threshold int64
		want      domain.Urgency
	}{
		{"zero stock is critical", 0, 10, domain.UrgencyCritical},
		{"zero stock critical even without threshold", 0, 0, domain.UrgencyCritical},
		{"quarter of threshold is high", 2, 10, domain.UrgencyHigh},
		{"just above quarter is medium", 3, 10, domain.UrgencyMedium},
		{"half of threshold is medium", 5, 10, domain.UrgencyMedium},
		{"at threshold is low", 10, 10, domain.UrgencyLow},
		{"no threshold with stock is low", 5, 0, domain.UrgencyLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.TierFor(tt.available, tt.threshold))
		})
	}
}

func TestUrgencyRank_Ordering(t *testing.T) {
	assert.Greater(t, domain.UrgencyCritical.Rank(), domain.UrgencyHigh.Rank())
	assert.Greater(t, domain.UrgencyHigh.Rank(), domain.UrgencyMedium.Rank())
	assert.Greater(t, domain.UrgencyMedium.Rank(), domain.UrgencyLow.Rank())
}
