package voice

import "strings"

// Platform voice lists carry no gender field; the voice name is the only
// signal. Female markers are checked first because "female" contains "male".
var (
	femaleMarkers = []string{
		"female", "woman",
		"kyoko", "o-ren", "haruka", "ayumi", "sayaka", "nanami", "aoi", "mayu", "shiori", "mizuki",
		"yuna", "sora", "heami", "sunhi", "seoyeon", "jimin",
		"samantha", "victoria", "karen", "moira", "zira", "jenny", "aria",
	}
	maleMarkers = []string{
		"male",
		"otoya", "hattori", "ichiro", "keita", "daichi", "naoki", "takumi",
		"injoon", "hyunsu", "bongjin", "gookmin",
		"daniel", "fred", "david", "mark", "guy",
	}
	preferredMarkers = []string{"google", "natural", "neural", "premium", "enhanced"}
)

// classify returns the gender a voice name signals, if any.
func classify(name string) Gender {
	lower := strings.ToLower(name)
	if containsAny(lower, femaleMarkers) {
		return GenderFemale
	}
	if containsAny(lower, maleMarkers) {
		return GenderMale
	}
	return GenderUnknown
}

func preferred(name string) bool {
	return containsAny(strings.ToLower(name), preferredMarkers)
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
