package reply

// legacyEventRedirects corrects event ids that calendar clients still hold
// from historical duplicate-event rows. Consulted once, after parsing and
// before event lookup, so stale invites keep working instead of 404ing.
var legacyEventRedirects = map[int]int{
	47: 46,
	52: 51,
}

func RedirectLegacyEventID(id int) int {
	if to, ok := legacyEventRedirects[id]; ok {
		return to
	}
	return id
}
