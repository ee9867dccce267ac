package series

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Period is a selectable span controlling both the trailing window and the
// point budget of a reduced series.
type Period string

const (
	Period24h Period = "24h"
	Period7d  Period = "7d"
	Period30d Period = "30d"
	PeriodAll Period = "all"

	DefaultPeriod = Period24h
)

var ErrUnknownPeriod = errors.New("unknown period")

type periodPolicy struct {
	// Window is the trailing window; zero means unbounded.
	Window time.Duration
	Budget int
}

var periodPolicies = map[Period]periodPolicy{
	Period24h: {Window: 24 * time.Hour, Budget: 144},
	Period7d:  {Window: 7 * 24 * time.Hour, Budget: 168},
	Period30d: {Window: 30 * 24 * time.Hour, Budget: 360},
	PeriodAll: {Window: 0, Budget: 720},
}

// Periods lists the known periods in selector order.
func Periods() []Period {
	return []Period{Period24h, Period7d, Period30d, PeriodAll}
}

// ParsePeriod resolves a period token. An empty token selects DefaultPeriod.
func ParsePeriod(s string) (Period, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultPeriod, nil
	}
	p := Period(s)
	if !p.Valid() {
		return "", fmt.Errorf("invalid period %q (allowed: 24h, 7d, 30d, all): %w", s, ErrUnknownPeriod)
	}
	return p, nil
}

func (p Period) Valid() bool {
	_, ok := periodPolicies[p]
	return ok
}

// Budget returns the maximum number of points the sampler aims for.
// Unknown periods use the 24h budget.
func (p Period) Budget() int {
	if policy, ok := periodPolicies[p]; ok {
		return policy.Budget
	}
	return periodPolicies[DefaultPeriod].Budget
}

// Window returns the trailing window of p. bounded is false for PeriodAll
// and for unknown periods; use Valid to tell them apart.
func (p Period) Window() (window time.Duration, bounded bool) {
	policy, ok := periodPolicies[p]
	if !ok || policy.Window == 0 {
		return 0, false
	}
	return policy.Window, true
}

func (p Period) String() string {
	return string(p)
}
