// Package calendar exports day plans as iCalendar (.ics) data.
package calendar

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"

	"github.com/S-Leuthold/echo/internal/block"
)

// ProductID identifies echo as the producer of exported calendars.
const ProductID = "-//echo//day planner//EN"

// uidNamespace scopes event UIDs so they do not collide with other producers.
var uidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/S-Leuthold/echo"))

// Exporter converts day plans to iCalendar.
type Exporter struct {
	name     string
	location *time.Location
	now      func() time.Time
}

// NewExporter creates an Exporter. Block times are interpreted in loc;
// a nil loc means time.Local.
func NewExporter(name string, loc *time.Location) *Exporter {
	if loc == nil {
		loc = time.Local
	}
	return &Exporter{name: name, location: loc, now: time.Now}
}

// EventUID returns the UID of the event exported for b on date. The same
// date, span and label always give the same UID, so re-importing an
// export updates events instead of duplicating them.
func EventUID(date time.Time, b block.Block) string {
	key := date.Format("2006-01-02") + "|" + b.Span() + "|" + b.Label
	return uuid.NewSHA1(uidNamespace, []byte(key)).String() + "@echo"
}

// Calendar builds a VCALENDAR with one VEVENT per block.
func (e *Exporter) Calendar(date time.Time, blocks []block.Block) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, ProductID)
	if e.name != "" {
		cal.Props.SetText("X-WR-CALNAME", e.name)
	}

	stamp := e.now().UTC()
	for _, b := range block.Sort(blocks) {
		cal.Children = append(cal.Children, e.event(date, b, stamp))
	}
	return cal
}

// Write encodes the plan for date to w.
func (e *Exporter) Write(w io.Writer, date time.Time, blocks []block.Block) error {
	if err := ical.NewEncoder(w).Encode(e.Calendar(date, blocks)); err != nil {
		return fmt.Errorf("encoding calendar: %w", err)
	}
	return nil
}

func (e *Exporter) event(date time.Time, b block.Block, stamp time.Time) *ical.Component {
	ve := ical.NewComponent(ical.CompEvent)
	ve.Props.SetText(ical.PropUID, EventUID(date, b))
	ve.Props.SetText(ical.PropSummary, b.Label)
	ve.Props.SetDateTime(ical.PropDateTimeStamp, stamp)
	ve.Props.SetDateTime(ical.PropDateTimeStart, e.at(date, b.Start))
	ve.Props.SetDateTime(ical.PropDateTimeEnd, e.at(date, b.End))

	ve.Props.SetText(ical.PropCategories, string(b.Type))
	if project := b.Project(); project != "" {
		p := ical.NewProp(ical.PropCategories)
		p.SetText(project)
		ve.Props.Add(p)
	}

	if desc := description(b.Metadata); desc != "" {
		ve.Props.SetText(ical.PropDescription, desc)
	}
	if b.Type.Immovable() {
		ve.Props.SetText(ical.PropTransparency, "OPAQUE")
	} else {
		ve.Props.SetText(ical.PropTransparency, "TRANSPARENT")
	}
	return ve
}

// at returns the instant of c on date in the exporter's location, in UTC.
// Events are written in the "Z" form since no VTIMEZONE is emitted.
func (e *Exporter) at(date time.Time, c block.Clock) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), c.Hour, c.Minute, c.Second, 0, e.location).UTC()
}

// description renders metadata as "key: value" lines in key order.
func description(meta map[string]string) string {
	var sb strings.Builder
	for _, k := range slices.Sorted(maps.Keys(meta)) {
		if meta[k] == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%s: %s", k, meta[k])
	}
	return sb.String()
}
