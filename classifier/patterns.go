package classifier

import (
	"regexp"
	"unicode"
)

var linkRegex = regexp.MustCompile(`https?://\S+`)

// DefaultPatterns is the standard table used by the Kingdom apps. Order is
// not significant for outcomes (escalation is highest-wins), but the table is
// kept roughly least-to-most severe for readability.
func DefaultPatterns() []Pattern {
	return []Pattern{
		RegexPattern("follow-bait", TypeText, SeverityLow, ActionFlag,
			`(?i)\b(follow for follow|f4f|l4l|like for like|sub4sub)\b`),
		RegexPattern("dm-solicitation", TypeText, SeverityLow, ActionFlag,
			`(?i)\bdm me (for|to|now)\b`),
		RegexPattern("link-shortener", TypeLink, SeverityMedium, ActionFlag,
			`(?i)\b(bit\.ly|tinyurl\.com|goo\.gl|t\.co|is\.gd)/\S+`),
		BehaviorPattern("link-stuffing", SeverityMedium, ActionModerate, linkStuffing),
		BehaviorPattern("excessive-caps", SeverityMedium, ActionModerate, excessiveCaps),
		RegexPattern("click-bait", TypeText, SeverityHigh, ActionModerate,
			`(?i)click here`),
		RegexPattern("money-scam", TypeText, SeverityHigh, ActionShadowban,
			`(?i)\b(free money|get rich quick|double your money|guaranteed (income|returns))\b`),
		RegexPattern("crypto-scam", TypeText, SeverityHigh, ActionShadowban,
			`(?i)\b(crypto giveaway|send (btc|bitcoin|eth)|wallet seed)\b`),
		BehaviorPattern("repeated-phrase", SeverityHigh, ActionShadowban, repeatedPhrase),
	}
}

// three or more links in one piece of content
func linkStuffing(content string) bool {
	return len(linkRegex.FindAllString(content, 3)) >= 3
}

// mostly-uppercase content, long enough that it can't be an acronym or shout
func excessiveCaps(content string) bool {
	letters, uppers := 0, 0
	for _, r := range content {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				uppers++
			}
		}
	}
	return letters >= 20 && float64(uppers)/float64(letters) > 0.7
}

// the same token appearing four or more times
func repeatedPhrase(content string) bool {
	freq := make(map[string]int)
	for _, tok := range tokenizeText(content) {
		freq[tok]++
		if freq[tok] >= 4 {
			return true
		}
	}
	return false
}
