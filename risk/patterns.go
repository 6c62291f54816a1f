package risk

import (
	"regexp"
	"strings"
)

// Words that show up disproportionately in rug launches.
var scamLexicon = []string{
	"elon", "musk", "trump", "pepe2", "inu2",
	"moon100x", "1000x", "guaranteed", "presale",
	"airdrop", "free", "giveaway", "stealth",
}

// Four or more consecutive digits in a name is a bulk-generated pattern.
var sequentialDigits = regexp.MustCompile(`\d{4,}`)

// suspiciousName reports whether a token name or symbol matches the scam
// lexicon or a generated-looking pattern.
func suspiciousName(name, symbol string) bool {
	lowered := strings.ToLower(name + " " + symbol)
	for _, word := range scamLexicon {
		if strings.Contains(lowered, word) {
			return true
		}
	}
	return sequentialDigits.MatchString(name) || sequentialDigits.MatchString(symbol)
}
