package llm

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tigertix/ticket-assistant/internal/model"
)

// The fallback parser classifies text with ordered pattern rules. It
// is deterministic, needs no network, and handles every message the
// remote provider cannot. Rule order matters: a greeting wins even
// when booking vocabulary appears later in the same sentence.

var (
	greetingRe = regexp.MustCompile(`^(hi|hello|hey|greetings|good morning|good afternoon|good evening)`)

	viewVerbRe  = regexp.MustCompile(`\b(show|list|view|see|display|what|available|all|which)\b.*\b(event|concert|show|ticket)`)
	viewNounRe  = regexp.MustCompile(`\b(event|concert|show|ticket)s?\b.*\b(available|list|show)`)
	viewPhrases = regexp.MustCompile(`which are available|what.*available`)

	bookVerbRe = regexp.MustCompile(`\b(book|purchase|buy|get|reserve|want)\b`)
	countRe    = regexp.MustCompile(`(\d+)\s*(?:ticket|seat|spot|reservation)?s?`)

	quotedRe = regexp.MustCompile(`["']([^"']+)["']`)
	forRe    = regexp.MustCompile(`\bfor\s+(?:the\s+)?([a-z0-9\s]+?)(?:\s+concert|\s+show|\s+event|$)`)
	toRe     = regexp.MustCompile(`\bto\s+(?:the\s+)?([a-z0-9\s]+?)(?:\s+concert|\s+show|\s+event|$)`)
	stopRe   = regexp.MustCompile(`\b(book|purchase|buy|get|reserve|want|ticket|tickets|for|to|the|a|an)\b`)
	digitRe  = regexp.MustCompile(`\d+`)
)

const (
	greetingResponse = "Hi! I'm TigerTix, your ticket assistant. I can show you available events or help you book tickets. What would you like to do?"
	helpResponse     = "I'm TigerTix, your ticket booking assistant! I can help you view available events or book tickets. What would you like to do?"
	clarifyResponse  = "I'd love to help you book tickets! Could you tell me which event you're interested in? Try saying something like 'Book 2 tickets for Jazz Night'."
)

// Fallback classifies text without the remote provider. It never
// fails: any input maps to one of greeting, view, book or chat.
func Fallback(text string) model.Intent {
	lower := strings.ToLower(strings.TrimSpace(text))

	if greetingRe.MatchString(lower) {
		return model.Intent{Kind: model.IntentGreeting, Response: greetingResponse}
	}

	if viewVerbRe.MatchString(lower) || viewNounRe.MatchString(lower) || viewPhrases.MatchString(lower) {
		return model.Intent{Kind: model.IntentView}
	}

	if bookVerbRe.MatchString(lower) {
		tickets := 1
		if m := countRe.FindStringSubmatch(lower); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
				tickets = n
			}
		}
		if event := extractEventName(lower); event != "" {
			return model.Intent{
				Kind:     model.IntentBook,
				Event:    event,
				Tickets:  tickets,
				Response: "Got it! Let me find tickets for " + event + ".",
			}
		}
		// Booking verb but no recognizable event: ask rather than error.
		return model.Intent{Kind: model.IntentChat, Response: clarifyResponse}
	}

	return model.Intent{Kind: model.IntentChat, Response: helpResponse}
}

// extractEventName pulls an event-name fragment out of lower-cased
// text, trying patterns from most to least specific: a quoted
// substring, a "for <name>" clause, a "to <name>" clause, and finally
// whatever remains after stripping booking stop-words and digits.
func extractEventName(lower string) string {
	if m := quotedRe.FindStringSubmatch(lower); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := forRe.FindStringSubmatch(lower); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := toRe.FindStringSubmatch(lower); m != nil {
		return strings.TrimSpace(m[1])
	}
	rest := stopRe.ReplaceAllString(lower, " ")
	rest = digitRe.ReplaceAllString(rest, " ")
	return strings.Join(strings.Fields(rest), " ")
}
