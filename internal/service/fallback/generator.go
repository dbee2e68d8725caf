package fallback

import (
	"fmt"
	"math/rand"
)

// templates each embed the user's text verbatim so the canned reply still
// reads as a response to what was actually said.
var templates = []string{
	"Interesting! Tell me more about %q.",
	"I hear %q. Here's a quick tip: stay curious.",
	"Let's explore %q together.",
	"%q sounds exciting! What's the next step?",
}

// Generate produces a canned reply for the given input without touching the
// network. Used whenever the upstream model is unreachable or unconfigured.
func Generate(input string) string {
	return fmt.Sprintf(templates[rand.Intn(len(templates))], input)
}
