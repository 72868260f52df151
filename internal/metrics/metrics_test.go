package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveAddsToAllThreeCounters(t *testing.T) {
	rec := NewRecorder()

	rec.Observe(10, 2, 3)
	rec.Observe(5, 1, 0)

	assert.Equal(t, float64(15), testutil.ToFloat64(rec.CommitsWalked))
	assert.Equal(t, float64(3), testutil.ToFloat64(rec.AchievementsGranted))
	assert.Equal(t, float64(3), testutil.ToFloat64(rec.CacheHits))
}
