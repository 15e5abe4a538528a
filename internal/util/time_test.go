package util

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeTimeProvider(t *testing.T) {
	mu.Lock()
	globalTimeProvider = nil
	mu.Unlock()

	tests := []struct {
		name     string
		timezone string
		wantErr  bool
	}{
		{name: "local timezone", timezone: "Local"},
		{name: "UTC timezone", timezone: "UTC"},
		{name: "valid timezone Asia/Shanghai", timezone: "Asia/Shanghai"},
		{name: "invalid timezone", timezone: "Invalid/Timezone", wantErr: true},
		{name: "empty timezone defaults to Local", timezone: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := InitializeTimeProvider(tt.timezone)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "invalid timezone")
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, GetTimeProvider())
			}
		})
	}
}

func TestGetTimeProvider(t *testing.T) {
	mu.Lock()
	globalTimeProvider = nil
	mu.Unlock()

	provider := GetTimeProvider()
	assert.NotNil(t, provider)
	assert.Same(t, provider, GetTimeProvider())
	assert.Equal(t, time.Local, provider.Location())
}

func TestTimeProvider_Now(t *testing.T) {
	provider := &TimeProvider{}
	require.NoError(t, provider.SetTimezone("UTC"))

	before := time.Now()
	now := provider.Now()
	after := time.Now()

	assert.False(t, now.Before(before))
	assert.False(t, now.After(after))
	assert.Equal(t, "UTC", now.Location().String())
}

func TestTimeProvider_TimezoneConversions(t *testing.T) {
	provider := &TimeProvider{}
	testTime := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		timezone     string
		expectedHour int
		expectedDay  int
	}{
		{"UTC", 12, 15},
		{"Asia/Shanghai", 20, 15},
		{"America/New_York", 8, 15},
		{"Pacific/Kiritimati", 2, 16},
	}

	for _, tt := range tests {
		t.Run(tt.timezone, func(t *testing.T) {
			require.NoError(t, provider.SetTimezone(tt.timezone))
			converted := provider.In(testTime)
			assert.Equal(t, tt.expectedHour, converted.Hour())
			assert.Equal(t, tt.expectedDay, converted.Day())
		})
	}
}

func TestTimeProvider_Format(t *testing.T) {
	provider := &TimeProvider{}
	require.NoError(t, provider.SetTimezone("UTC"))

	ts := time.Date(2024, 3, 15, 14, 30, 45, 0, time.UTC)
	assert.Equal(t, "2024-03-15", provider.Format(ts, "2006-01-02"))
	assert.Equal(t, "14:30", provider.Format(ts, "15:04"))
}

func TestTimeProvider_Concurrency(t *testing.T) {
	provider := &TimeProvider{}
	require.NoError(t, provider.SetTimezone("UTC"))

	var wg sync.WaitGroup
	timezones := []string{"UTC", "Asia/Shanghai", "America/New_York", "Europe/London"}
	for i := 0; i < 40; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = provider.Now()
			_ = provider.Format(time.Now(), time.RFC3339)
		}()
		go func(idx int) {
			defer wg.Done()
			assert.NoError(t, provider.SetTimezone(timezones[idx%len(timezones)]))
		}(i)
	}
	wg.Wait()
}

func TestFixedClock(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	at := time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC)
	clock := FixedClock{At: at, Loc: tokyo}

	assert.Equal(t, tokyo, clock.Location())
	assert.Equal(t, 8, clock.Now().Hour())
	assert.Equal(t, 2, clock.Now().Day())

	utc := FixedClock{At: at}
	assert.Equal(t, time.UTC, utc.Location())
}

func TestInitializeTimeProvider_ErrorMessage(t *testing.T) {
	err := InitializeTimeProvider("Invalid/Zone")
	require.Error(t, err)

	assert.Contains(t, err.Error(), "invalid timezone 'Invalid/Zone'")
	assert.Contains(t, err.Error(), "Valid examples:")
}
