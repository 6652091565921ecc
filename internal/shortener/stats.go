package shortener

import (
	"fmt"

	"github.com/porticus-lab/go-toolbox/internal/apperr"
)

// Period is an analytics window.
type Period string

const (
	Last7Days  Period = "7d"
	Last30Days Period = "30d"
	Last90Days Period = "90d"
)

// Days returns the number of days the period covers.
func (p Period) Days() (int, error) {
	switch p {
	case Last7Days, "":
		return 7, nil
	case Last30Days:
		return 30, nil
	case Last90Days:
		return 90, nil
	}
	return 0, fmt.Errorf("%w: period %q", apperr.ErrUnsupportedValue, p)
}

// DailyClicks is the click count of one day.
type DailyClicks struct {
	Date   string `json:"date"` // "Jan 2"
	Clicks int    `json:"clicks"`
}

// Share is a named portion of traffic. Devices report a percentage, the
// other breakdowns a click count.
type Share struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// Stats is the analytics view of a link.
type Stats struct {
	Period         Period        `json:"period"`
	Daily          []DailyClicks `json:"daily"`
	TotalClicks    int           `json:"totalClicks"`
	UniqueVisitors int           `json:"uniqueVisitors"`
	Devices        []Share       `json:"devices"`
	Locations      []Share       `json:"locations"`
	Referrers      []Share       `json:"referrers"`
}

// dayLayout labels DailyClicks.Date.
const dayLayout = "Jan 2"

// span is a uniform integer range [base, base+n).
type span struct {
	name    string
	n, base int
}

var (
	deviceSpans = []span{
		{"Desktop", 60, 20}, {"Mobile", 40, 10}, {"Tablet", 20, 5},
	}
	locationSpans = []span{
		{"United States", 100, 50}, {"United Kingdom", 50, 20}, {"Canada", 40, 15},
		{"Germany", 30, 10}, {"France", 25, 5},
	}
	referrerSpans = []span{
		{"Direct", 100, 50}, {"Google", 80, 30}, {"Twitter", 60, 20},
		{"Facebook", 40, 10}, {"LinkedIn", 30, 5},
	}
)

// Stats generates simulated analytics for period. Days run oldest first
// and end today; unique visitors are 70% of clicks, rounded down.
func (s *Service) Stats(p Period) (Stats, error) {
	days, err := p.Days()
	if err != nil {
		return Stats{}, err
	}
	if p == "" {
		p = Last7Days
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{Period: p, Daily: make([]DailyClicks, days)}
	today := s.now()
	for i := 0; i < days; i++ {
		clicks := s.rnd.IntN(50) + 1
		st.TotalClicks += clicks
		st.Daily[days-1-i] = DailyClicks{
			Date:   today.AddDate(0, 0, -i).Format(dayLayout),
			Clicks: clicks,
		}
	}
	st.UniqueVisitors = st.TotalClicks * 7 / 10
	st.Devices = s.draw(deviceSpans)
	st.Locations = s.draw(locationSpans)
	st.Referrers = s.draw(referrerSpans)
	return st, nil
}

func (s *Service) draw(spans []span) []Share {
	out := make([]Share, len(spans))
	for i, sp := range spans {
		out[i] = Share{Name: sp.name, Value: s.rnd.IntN(sp.n) + sp.base}
	}
	return out
}
