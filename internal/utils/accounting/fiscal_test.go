package accounting_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/vextrus/ledger-core/internal/utils/accounting"
)

func TestFiscalYearOf(t *testing.T) {
	tests := []struct {
		name      string
		date      time.Time
		wantStart time.Time
		wantLabel string
	}{
		{
			name:      "mid fiscal year, october",
			date:      time.Date(2024, 10, 15, 0, 0, 0, 0, time.UTC),
			wantStart: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
			wantLabel: "2024-25",
		},
		{
			name:      "second half, march belongs to previous july",
			date:      time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
			wantStart: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
			wantLabel: "2024-25",
		},
		{
			name:      "july 1 starts a new fiscal year",
			date:      time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
			wantStart: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
			wantLabel: "2025-26",
		},
		{
			name:      "june 30 closes the old fiscal year",
			date:      time.Date(2025, 6, 30, 23, 0, 0, 0, time.UTC),
			wantStart: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
			wantLabel: "2024-25",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fy := accounting.FiscalYearOf(tt.date)
			assert.Equal(t, tt.wantStart, fy.Start)
			assert.Equal(t, tt.wantLabel, fy.Label())
			assert.True(t, fy.Contains(tt.date))
		})
	}
}

func TestFiscalYear_Contains(t *testing.T) {
	fy := accounting.FiscalYearOf(time.Date(2024, 10, 15, 0, 0, 0, 0, time.UTC))
	assert.False(t, fy.Contains(time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)))
	assert.True(t, fy.Contains(time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, fy.Contains(time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)))
}
