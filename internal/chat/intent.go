package chat

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Intent is the coarse classification of one inbound text message. This is a
// heuristic pattern matcher, not NLU: anything it cannot place falls through
// to IntentFreeChat, where the free-chat agent takes over.
type Intent int

const (
	IntentFreeChat Intent = iota
	IntentGreeting
	IntentSymptoms     // menu "1"
	IntentClinics      // menu "2"
	IntentPrescription // menu "3"
	IntentTips         // menu "4"
	IntentDashboard    // menu "5"
	IntentHelp         // menu "0"
)

// Greeting tokens matched against the full normalized message, or against
// the leading token when followed by a product alias ("hi shecare").
var greetingTokens = map[string]bool{
	"hi":             true,
	"hello":          true,
	"hey":            true,
	"mambo":          true,
	"habari":         true,
	"niaje":          true,
	"jambo":          true,
	"hujambo":        true,
	"good morning":   true,
	"good afternoon": true,
	"good evening":   true,
}

// Stretched-letter variants like "heyyy" or "hiii".
var greetingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^h+e+y+$`),
	regexp.MustCompile(`^h+i+$`),
	regexp.MustCompile(`^he+l+o+$`),
}

var productAliases = map[string]bool{
	"shecare":  true,
	"she care": true,
}

var greetingEmoji = []rune{'👋', '🙋', '🤗'}

// Menu keyword tables. Kept as data so the whole classifier is testable
// without touching control flow.
var menuKeywords = map[string]Intent{
	"1": IntentSymptoms,
	"2": IntentClinics,
	"3": IntentPrescription,
	"4": IntentTips,
	"5": IntentDashboard,

	"dashboard": IntentDashboard,
	"account":   IntentDashboard,
	"profile":   IntentDashboard,
	"settings":  IntentDashboard,

	"0":    IntentHelp,
	"help": IntentHelp,
	"menu": IntentHelp,
}

var backTokens = map[string]bool{
	"menu": true,
	"0":    true,
	"back": true,
}

func matchesGreetingToken(n string) bool {
	if greetingTokens[n] {
		return true
	}
	for _, re := range greetingPatterns {
		if re.MatchString(n) {
			return true
		}
	}
	return false
}

// IsGreeting reports whether the raw message reads as a greeting: a known
// greeting token (possibly stretched, possibly followed by a product alias),
// or a wave emoji on a short message.
func IsGreeting(raw string) bool {
	n := Normalize(raw)
	if n != "" && matchesGreetingToken(n) {
		return true
	}

	// "hi shecare", "jambo she care"
	if parts := strings.Fields(n); len(parts) >= 2 {
		for cut := 1; cut <= 3 && cut < len(parts); cut++ {
			head := strings.Join(parts[:cut], " ")
			rest := strings.Join(parts[cut:], " ")
			if matchesGreetingToken(head) && productAliases[rest] {
				return true
			}
		}
	}

	if utf8.RuneCountInString(raw) <= 20 {
		for _, e := range greetingEmoji {
			if strings.ContainsRune(raw, e) {
				return true
			}
		}
	}

	return false
}

// IsBack reports whether the normalized message asks to return to the menu
// from a pending state.
func IsBack(normalized string) bool {
	return backTokens[normalized]
}

// Classify maps a raw message to an Intent using the normalized form.
func Classify(raw string) Intent {
	if IsGreeting(raw) {
		return IntentGreeting
	}
	if intent, ok := menuKeywords[Normalize(raw)]; ok {
		return intent
	}
	return IntentFreeChat
}
