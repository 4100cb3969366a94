package calendar

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

const (
	// maxOccurrences caps materialization of a single template.
	maxOccurrences = 500
	// defaultHorizon bounds unbounded rules (no EndDate, no Count).
	defaultHorizon = 365 * 24 * time.Hour
)

var weekdayByCode = map[string]rrule.Weekday{
	"MO": rrule.MO,
	"TU": rrule.TU,
	"WE": rrule.WE,
	"TH": rrule.TH,
	"FR": rrule.FR,
	"SA": rrule.SA,
	"SU": rrule.SU,
}

func (r *RecurrenceRule) rrule(dtstart time.Time) (*rrule.RRule, error) {
	opt := rrule.ROption{Dtstart: dtstart}

	switch r.Frequency {
	case FreqDaily:
		opt.Freq = rrule.DAILY
	case FreqWeekly:
		opt.Freq = rrule.WEEKLY
	case FreqMonthly:
		opt.Freq = rrule.MONTHLY
	default:
		return nil, fmt.Errorf("unknown recurrence frequency %q", r.Frequency)
	}

	if r.Interval > 0 {
		opt.Interval = r.Interval
	}
	if r.Count > 0 {
		opt.Count = r.Count
	}
	if r.EndDate != nil {
		opt.Until = r.EndDate.In(dtstart.Location())
	}
	for _, code := range r.ByDay {
		wd, ok := weekdayByCode[code]
		if !ok {
			return nil, fmt.Errorf("unknown weekday code %q", code)
		}
		opt.Byweekday = append(opt.Byweekday, wd)
	}
	if len(r.ByMonthDay) > 0 {
		opt.Bymonthday = r.ByMonthDay
	}

	return rrule.NewRRule(opt)
}

// ExpandTemplate materializes the concrete occurrences of a recurrence
// template. Occurrence arithmetic runs in the template's authoring timezone,
// so a weekly 09:00 meeting stays at 09:00 local across DST transitions;
// resulting instants are UTC-normalized. Occurrence ids are deterministic so
// re-materialization after a series edit produces the same identifiers.
func ExpandTemplate(template Event) ([]Event, error) {
	if template.Recurrence == nil {
		return nil, nil
	}

	loc, err := time.LoadLocation(template.Timezone)
	if err != nil {
		loc = time.UTC
	}

	localStart := template.Start.In(loc)
	rule, err := template.Recurrence.rrule(localStart)
	if err != nil {
		return nil, fmt.Errorf("invalid recurrence rule: %w", err)
	}

	duration := template.End.Sub(template.Start)

	var starts []time.Time
	switch {
	case template.Recurrence.EndDate != nil:
		starts = rule.Between(localStart, template.Recurrence.EndDate.In(loc), true)
	case template.Recurrence.Count > 0:
		// Count terminates the rule on its own; the horizon must not
		// truncate it.
		starts = rule.All()
	default:
		starts = rule.Between(localStart, localStart.Add(defaultHorizon), true)
	}
	if len(starts) > maxOccurrences {
		starts = starts[:maxOccurrences]
	}

	occurrences := make([]Event, 0, len(starts))
	for _, s := range starts {
		occ := template
		occ.ID = OccurrenceID(template.ID, s)
		occ.Recurrence = nil
		occ.RecurrenceParentID = template.ID
		occ.Start = s.UTC()
		occ.End = s.Add(duration).UTC()
		occurrences = append(occurrences, occ)
	}

	return occurrences, nil
}

// OccurrenceID derives the stable id of a materialized occurrence from its
// template id and start instant.
func OccurrenceID(templateID string, start time.Time) string {
	return templateID + ":" + start.UTC().Format(time.RFC3339)
}
