package reply

import (
	"regexp"
	"strconv"
	"strings"
)

// CalendarReply is the intent extracted from a calendar-response email.
type CalendarReply struct {
	EventID  int
	UID      string
	Partstat string
}

// Participation status tokens per RFC 5545. Anything absent from the body
// falls back to subject keywords and finally to NEEDS-ACTION.
const (
	PartstatAccepted    = "ACCEPTED"
	PartstatDeclined    = "DECLINED"
	PartstatTentative   = "TENTATIVE"
	PartstatNeedsAction = "NEEDS-ACTION"
)

// uidPattern matches the event identifier grammar. Digit runs are bounded so
// matching stays linear on adversarial input; the captured domain is compared
// for exact, case-sensitive equality afterwards.
var uidPattern = regexp.MustCompile(`event-(\d{1,9})(?:-\d{1,9})?@([A-Za-z0-9.-]{1,253})`)

// CalendarParser extracts RSVP intent from calendar-reply email bodies for a
// single configured calendar domain.
type CalendarParser struct {
	domain string
}

func NewCalendarParser(domain string) *CalendarParser {
	return &CalendarParser{domain: domain}
}

// Parse scans the concatenated text and HTML bodies for an event identifier
// scoped to the configured domain, then for a participation status. A missing
// or foreign-domain identifier rejects the whole reply (nil), no matter how
// well-formed the rest looks. Markup is treated as opaque text.
func (p *CalendarParser) Parse(text, html, subject string) *CalendarReply {
	if p.domain == "" {
		return nil
	}

	body := text + "\n" + html

	var uid string
	var eventID int

	for _, m := range uidPattern.FindAllStringSubmatch(body, 64) {
		if m[2] != p.domain {
			continue
		}
		id, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		uid = m[0]
		eventID = id
		break
	}

	if uid == "" {
		return nil
	}

	return &CalendarReply{
		EventID:  eventID,
		UID:      uid,
		Partstat: findPartstat(body, subject),
	}
}

func findPartstat(body, subject string) string {
	for _, token := range []string{PartstatAccepted, PartstatDeclined, PartstatTentative, PartstatNeedsAction} {
		if strings.Contains(body, token) {
			return token
		}
	}

	lowerSubject := strings.ToLower(subject)
	switch {
	case strings.Contains(lowerSubject, "accept"):
		return PartstatAccepted
	case strings.Contains(lowerSubject, "declin"):
		return PartstatDeclined
	case strings.Contains(lowerSubject, "tentative"), strings.Contains(lowerSubject, "maybe"):
		return PartstatTentative
	default:
		return PartstatNeedsAction
	}
}
