package shortener

import (
	"context"
	"math/rand/v2"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/porticus-lab/go-toolbox/internal/apperr"
)

var fixedNow = time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

func newTestService(opts ...Option) *Service {
	base := []Option{
		WithRand(rand.New(rand.NewPCG(1, 2))),
		WithClock(func() time.Time { return fixedNow }),
	}
	return New(append(base, opts...)...)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		kind error
	}{
		{"ok", Request{URL: "https://example.com/a/b"}, nil},
		{"missing", Request{}, apperr.ErrRequired},
		{"no scheme", Request{URL: "example.com"}, apperr.ErrInvalidURL},
		{"ftp", Request{URL: "ftp://example.com"}, apperr.ErrInvalidURL},
		{"custom without path", Request{URL: "http://x.io", UseCustom: true}, apperr.ErrRequired},
		{"custom with slash", Request{URL: "http://x.io", UseCustom: true, CustomPath: "a/b"}, apperr.ErrUnsupportedValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.req)
			if tt.kind == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}

func TestShorten_RandomCode(t *testing.T) {
	s := newTestService()
	codeRE := regexp.MustCompile(`^[a-z0-9]{6}$`)

	a, err := s.Shorten(context.Background(), Request{URL: "https://example.com", Tracking: true})
	require.NoError(t, err)
	b, err := s.Shorten(context.Background(), Request{URL: "https://example.com"})
	require.NoError(t, err)

	assert.Regexp(t, codeRE, a.Code)
	assert.Regexp(t, codeRE, b.Code)
	assert.NotEqual(t, a.Code, b.Code)
	assert.Equal(t, "short.url/"+a.Code, a.Short)
	assert.Equal(t, "https://short.url/"+a.Code, a.URL())
	assert.Len(t, a.ID, 36)
	assert.True(t, a.Tracking)
	assert.Equal(t, fixedNow, a.CreatedAt)
}

func TestShorten_CustomPath(t *testing.T) {
	s := newTestService()
	req := Request{URL: "https://example.com", UseCustom: true, CustomPath: "launch"}

	l, err := s.Shorten(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "short.url/launch", l.Short)

	_, err = s.Shorten(context.Background(), req)
	assert.ErrorIs(t, err, apperr.ErrUnsupportedValue)
}

func TestShorten_ReusesExpiredCustomPath(t *testing.T) {
	now := fixedNow
	s := New(
		WithRand(rand.New(rand.NewPCG(1, 2))),
		WithClock(func() time.Time { return now }),
	)
	expires := fixedNow.Add(time.Hour)

	_, err := s.Shorten(context.Background(), Request{
		URL: "https://old.example.com", UseCustom: true, CustomPath: "promo", ExpiresAt: &expires,
	})
	require.NoError(t, err)

	now = fixedNow.Add(2 * time.Hour)
	_, ok := s.Resolve("promo")
	require.False(t, ok)

	l, err := s.Shorten(context.Background(), Request{
		URL: "https://new.example.com", UseCustom: true, CustomPath: "promo",
	})
	require.NoError(t, err)
	assert.Equal(t, "promo", l.Code)

	got, ok := s.Resolve("promo")
	require.True(t, ok)
	assert.Equal(t, "https://new.example.com", got.Target)
	assert.Equal(t, 1, s.Len())
}

func TestShorten_CapacityPrunesExpired(t *testing.T) {
	s := newTestService(WithCapacity(10))
	past := fixedNow.Add(-time.Minute)

	for range 1000 {
		_, err := s.Shorten(context.Background(), Request{URL: "https://example.com", ExpiresAt: &past})
		require.NoError(t, err)
		require.LessOrEqual(t, s.Len(), 10)
	}

	for range 10 {
		_, err := s.Shorten(context.Background(), Request{URL: "https://example.com"})
		require.NoError(t, err)
	}
	assert.Equal(t, 10, s.Len())

	_, err := s.Shorten(context.Background(), Request{URL: "https://example.com"})
	assert.ErrorIs(t, err, ErrFull)
}

func TestShorten_DelayHonoursContext(t *testing.T) {
	s := newTestService(WithDelay(time.Hour))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Shorten(ctx, Request{URL: "https://example.com"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResolve(t *testing.T) {
	s := newTestService()
	past := fixedNow.Add(-time.Minute)

	live, err := s.Shorten(context.Background(), Request{URL: "https://a.io"})
	require.NoError(t, err)
	gone, err := s.Shorten(context.Background(), Request{URL: "https://b.io", ExpiresAt: &past})
	require.NoError(t, err)

	got, ok := s.Resolve(live.Code)
	assert.True(t, ok)
	assert.Equal(t, "https://a.io", got.Target)

	_, ok = s.Resolve(gone.Code)
	assert.False(t, ok)
	_, ok = s.Resolve("nope00")
	assert.False(t, ok)
}

func TestStats(t *testing.T) {
	s := newTestService()
	for _, tt := range []struct {
		p    Period
		days int
	}{{Last7Days, 7}, {Last30Days, 30}, {Last90Days, 90}, {"", 7}} {
		st, err := s.Stats(tt.p)
		require.NoError(t, err)
		require.Len(t, st.Daily, tt.days)

		sum := 0
		for _, d := range st.Daily {
			assert.GreaterOrEqual(t, d.Clicks, 1)
			assert.LessOrEqual(t, d.Clicks, 50)
			sum += d.Clicks
		}
		assert.Equal(t, sum, st.TotalClicks)
		assert.Equal(t, st.TotalClicks*7/10, st.UniqueVisitors)
		assert.Equal(t, "Mar 15", st.Daily[tt.days-1].Date)
	}
}

func TestStats_Breakdowns(t *testing.T) {
	st, err := newTestService().Stats(Last30Days)
	require.NoError(t, err)

	require.Len(t, st.Devices, 3)
	assert.Equal(t, "Desktop", st.Devices[0].Name)
	assert.GreaterOrEqual(t, st.Devices[0].Value, 20)
	assert.Less(t, st.Devices[0].Value, 80)

	require.Len(t, st.Locations, 5)
	assert.Equal(t, "United States", st.Locations[0].Name)
	require.Len(t, st.Referrers, 5)
	assert.Equal(t, "LinkedIn", st.Referrers[4].Name)
	assert.GreaterOrEqual(t, st.Referrers[4].Value, 5)
	assert.Less(t, st.Referrers[4].Value, 35)
}

func TestStats_UnknownPeriod(t *testing.T) {
	_, err := newTestService().Stats("1y")
	assert.ErrorIs(t, err, apperr.ErrUnsupportedValue)
}
