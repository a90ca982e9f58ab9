package model

// IntentKind classifies free-text input into one of a fixed set of
// request categories. The values match the `intent` field of the JSON
// contract with the generative-text provider, so an Intent can be
// unmarshalled directly from a provider response.
type IntentKind string

const (
	IntentGreeting IntentKind = "greeting" // user said hi/hello/hey
	IntentView     IntentKind = "view"     // user wants to list available events
	IntentBook     IntentKind = "book"     // user wants to reserve tickets
	IntentChat     IntentKind = "chat"     // small talk or anything unclassified
	IntentError    IntentKind = "error"    // provider-reported error payload
)

// Intent is the typed result of resolving a free-text message. It is
// transient: produced fresh per request and discarded once the response
// has been sent. Event and Tickets are only meaningful for IntentBook;
// Response carries conversational text for greeting/chat/error kinds.
type Intent struct {
	Kind     IntentKind `json:"intent"`
	Event    string     `json:"event,omitempty"`
	Tickets  int        `json:"tickets,omitempty"`
	Response string     `json:"response,omitempty"`
}
