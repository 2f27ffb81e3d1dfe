package reply

import "strings"

// Intent is the classified meaning of an inbound SMS body.
type Intent int

const (
	IntentUnknown Intent = iota
	IntentYes
	IntentNo
	IntentOptOut
	IntentHelp
)

func (i Intent) String() string {
	switch i {
	case IntentYes:
		return "yes"
	case IntentNo:
		return "no"
	case IntentOptOut:
		return "opt_out"
	case IntentHelp:
		return "help"
	default:
		return "unknown"
	}
}

var (
	optOutWords = wordSet("stop", "stopall", "unsubscribe", "cancel", "end", "quit")
	helpWords   = wordSet("help", "info")
	yesWords    = wordSet("yes", "y", "yeah", "yep", "yup", "sure", "ok", "confirm")
	noWords     = wordSet("no", "n", "nope", "nah", "decline")
)

// ParseSms classifies a free-text SMS body. The whole body, lowercased with
// non-letters stripped, is matched against the keyword sets first; failing
// that, the first alphabetic token wins. Unrecognized text is IntentUnknown,
// never an error: the caller answers with help copy.
func ParseSms(body string) Intent {
	whole := letters(strings.ToLower(body))
	if intent := classify(whole); intent != IntentUnknown {
		return intent
	}

	if first := firstToken(strings.ToLower(body)); first != "" {
		return classify(first)
	}

	return IntentUnknown
}

func classify(word string) Intent {
	switch {
	case optOutWords[word]:
		return IntentOptOut
	case helpWords[word]:
		return IntentHelp
	case yesWords[word]:
		return IntentYes
	case noWords[word]:
		return IntentNo
	default:
		return IntentUnknown
	}
}

func wordSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

func letters(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// firstToken returns the first maximal run of ASCII letters.
func firstToken(s string) string {
	start := -1
	for i, r := range s {
		if r >= 'a' && r <= 'z' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			return s[start:i]
		}
	}
	if start >= 0 {
		return s[start:]
	}
	return ""
}
