package domain

// TypingSignal is an ephemeral indicator that a user is composing a
// message. It is never persisted; the client owns the debounce (stop is
// scheduled after one second of inactivity) and the server relays it
// verbatim when the recipient is online.
type TypingSignal struct {
	SenderID    string
	RecipientID string
	Started     bool
}
