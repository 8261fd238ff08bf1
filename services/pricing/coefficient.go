package pricing

import (
	"fmt"
	"math"
	"strings"
	"time"

	"jamb/models"
	"jamb/utils"
)

// Tier applies Factor to dates at most MaxDays ahead. MaxDays < 0 matches any lead time.
type Tier struct {
	MaxDays int
	Factor  float64
}

// CoefficientPolicy turns a service date into the labor multiplier (time coefficient).
type CoefficientPolicy struct {
	Tiers         []Tier
	WeekendFactor float64
	HolidayFactor float64
	Holidays      map[string]bool
	// MaxLeadDays bounds how far ahead an order may be scheduled.
	MaxLeadDays int
}

// ParseHolidays trims each entry and rejects anything that is not a YYYY-MM-DD date.
// Blank entries are skipped.
func ParseHolidays(holidays []string) (map[string]bool, error) {
	set := make(map[string]bool, len(holidays))
	for _, h := range holidays {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		d, err := time.Parse(utils.DateLayout, h)
		if err != nil {
			return nil, fmt.Errorf("holiday %q must use the YYYY-MM-DD format", h)
		}
		set[d.Format(utils.DateLayout)] = true
	}
	return set, nil
}

// DefaultPolicy returns the standard urgency tiers with the given holiday dates.
func DefaultPolicy(holidays map[string]bool) CoefficientPolicy {
	if holidays == nil {
		holidays = map[string]bool{}
	}
	return CoefficientPolicy{
		Tiers: []Tier{
			{MaxDays: 1, Factor: 1.5},
			{MaxDays: 3, Factor: 1.25},
			{MaxDays: 13, Factor: 1.0},
			{MaxDays: -1, Factor: 0.9},
		},
		WeekendFactor: 1.1,
		HolidayFactor: 1.2,
		Holidays:      holidays,
		MaxLeadDays:   365,
	}
}

// ParseDate parses a YYYY-MM-DD service date.
func ParseDate(value string) (time.Time, error) {
	d, err := time.Parse(utils.DateLayout, value)
	if err != nil {
		return time.Time{}, utils.NewValidationError("date %q must use the YYYY-MM-DD format", value)
	}
	return d, nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// LeadDays returns the number of whole days between now's calendar date and date.
func LeadDays(date, now time.Time) int {
	return int(math.Round(dateOnly(date).Sub(dateOnly(now)).Hours() / 24))
}

// Coefficient returns the time coefficient for a service on date, as seen at now.
func (p CoefficientPolicy) Coefficient(date, now time.Time) (float64, error) {
	lead := LeadDays(date, now)
	if lead < 0 {
		return 0, utils.NewValidationError("date %s is in the past", date.Format(utils.DateLayout))
	}
	if p.MaxLeadDays > 0 && lead > p.MaxLeadDays {
		return 0, utils.NewValidationError("date %s is more than %d days ahead", date.Format(utils.DateLayout), p.MaxLeadDays)
	}

	factor := 1.0
	for _, tier := range p.Tiers {
		if tier.MaxDays < 0 || lead <= tier.MaxDays {
			factor = tier.Factor
			break
		}
	}

	switch {
	case p.Holidays[date.Format(utils.DateLayout)]:
		factor *= p.HolidayFactor
	case isWeekend(date):
		factor *= p.WeekendFactor
	}
	return math.Round(factor*100) / 100, nil
}

// CoefficientFor parses value and returns its coefficient.
func (p CoefficientPolicy) CoefficientFor(value string, now time.Time) (float64, error) {
	date, err := ParseDate(value)
	if err != nil {
		return 0, err
	}
	return p.Coefficient(date, now)
}

// Calendar lists the coefficient of each of the next days starting at from.
func (p CoefficientPolicy) Calendar(from time.Time, days int, now time.Time) ([]models.CalendarDay, error) {
	if days <= 0 || days > 90 {
		return nil, utils.NewValidationError("days must be between 1 and 90")
	}
	out := make([]models.CalendarDay, 0, days)
	for i := 0; i < days; i++ {
		date := dateOnly(from).AddDate(0, 0, i)
		coef, err := p.Coefficient(date, now)
		if err != nil {
			return nil, err
		}
		out = append(out, models.CalendarDay{
			Date:        date.Format(utils.DateLayout),
			Coefficient: coef,
			Kind:        coefficientKind(coef),
		})
	}
	return out, nil
}

func coefficientKind(coef float64) string {
	switch {
	case coef > 1:
		return "surcharge"
	case coef < 1:
		return "discount"
	default:
		return "standard"
	}
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
