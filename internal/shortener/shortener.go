// Package shortener creates short links and produces simulated click
// analytics for them. Links live in memory for the life of the process.
package shortener

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/porticus-lab/go-toolbox/internal/apperr"
)

// Host is the public host of every short link.
const Host = "short.url"

// DefaultCapacity bounds the number of links held at once.
const DefaultCapacity = 100_000

const (
	codeLen      = 6
	codeAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// ErrFull is returned when every slot in the registry holds a live link.
var ErrFull = errors.New("link registry is full")

// Request describes a link to shorten.
type Request struct {
	URL        string     `json:"url" yaml:"url"`
	CustomPath string     `json:"customPath,omitempty" yaml:"customPath"`
	UseCustom  bool       `json:"useCustomPath,omitempty" yaml:"useCustomPath"`
	Tracking   bool       `json:"tracking" yaml:"tracking"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty" yaml:"expiresAt"`
}

// Link is a created short link.
type Link struct {
	ID        string     `json:"id"`
	Code      string     `json:"code"`
	Target    string     `json:"target"`
	Short     string     `json:"short"`
	Tracking  bool       `json:"tracking"`
	CreatedAt time.Time  `json:"createdAt"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// URL returns the clickable https form of the short link.
func (l Link) URL() string {
	return "https://" + l.Short
}

// Expired reports whether the link has passed its expiration at t.
func (l Link) Expired(t time.Time) bool {
	return l.ExpiresAt != nil && !t.Before(*l.ExpiresAt)
}

// Service shortens URLs. It is safe for concurrent use.
type Service struct {
	mu    sync.Mutex
	rnd   *rand.Rand
	now   func() time.Time
	delay time.Duration
	limit int
	links map[string]Link
}

// Option configures a Service.
type Option func(*Service)

// WithRand sets the random source for codes and statistics.
func WithRand(r *rand.Rand) Option {
	return func(s *Service) { s.rnd = r }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithDelay simulates backend latency on Shorten.
func WithDelay(d time.Duration) Option {
	return func(s *Service) { s.delay = d }
}

// WithCapacity bounds the registry. Values below 1 are ignored.
func WithCapacity(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.limit = n
		}
	}
}

// New returns a Service.
func New(opts ...Option) *Service {
	s := &Service{
		rnd:   rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		now:   time.Now,
		limit: DefaultCapacity,
		links: make(map[string]Link),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Validate checks r without creating a link.
func Validate(r Request) error {
	if strings.TrimSpace(r.URL) == "" {
		return apperr.New(apperr.ErrRequired, "Please enter a URL to shorten.")
	}
	u, err := url.Parse(r.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return apperr.New(apperr.ErrInvalidURL, "Please enter a valid URL including http:// or https://")
	}
	if r.UseCustom {
		if r.CustomPath == "" {
			return apperr.New(apperr.ErrRequired, "Please enter a custom path or disable the custom path option.")
		}
		if strings.ContainsAny(r.CustomPath, "/?# ") {
			return fmt.Errorf("%w: custom path %q", apperr.ErrUnsupportedValue, r.CustomPath)
		}
	}
	return nil
}

// Shorten validates r and registers a new link.
func (s *Service) Shorten(ctx context.Context, r Request) (Link, error) {
	if err := Validate(r); err != nil {
		return Link{}, err
	}
	if s.delay > 0 {
		t := time.NewTimer(s.delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return Link{}, ctx.Err()
		case <-t.C:
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	code := r.CustomPath
	if !r.UseCustom {
		for {
			code = s.code()
			if !s.taken(code, now) {
				break
			}
		}
	} else if s.taken(code, now) {
		return Link{}, fmt.Errorf("%w: custom path %q is already in use", apperr.ErrUnsupportedValue, code)
	}
	if _, replacing := s.links[code]; !replacing && len(s.links) >= s.limit {
		s.prune(now)
		if len(s.links) >= s.limit {
			return Link{}, ErrFull
		}
	}

	l := Link{
		ID:        uuid.NewString(),
		Code:      code,
		Target:    r.URL,
		Short:     Host + "/" + code,
		Tracking:  r.Tracking,
		CreatedAt: now,
		ExpiresAt: r.ExpiresAt,
	}
	s.links[code] = l
	return l, nil
}

// Resolve returns the live link registered under code.
func (s *Service) Resolve(code string) (Link, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.links[code]
	if !ok || l.Expired(s.now()) {
		return Link{}, false
	}
	return l, true
}

// Len returns the number of links held, expired ones included.
func (s *Service) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.links)
}

// taken reports whether code belongs to a live link. Callers hold s.mu.
func (s *Service) taken(code string, now time.Time) bool {
	l, ok := s.links[code]
	return ok && !l.Expired(now)
}

// prune drops expired links. Callers hold s.mu.
func (s *Service) prune(now time.Time) {
	for code, l := range s.links {
		if l.Expired(now) {
			delete(s.links, code)
		}
	}
}

// code draws a random code. Callers hold s.mu.
func (s *Service) code() string {
	b := make([]byte, codeLen)
	for i := range b {
		b[i] = codeAlphabet[s.rnd.IntN(len(codeAlphabet))]
	}
	return string(b)
}
