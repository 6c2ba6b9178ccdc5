package safety

// DefaultPatterns contains the built-in wordlist and harmful topic patterns.
// Matching is blunt on purpose: words like "die", "stupid" or "hate" are flagged without any context.
var DefaultPatterns = Patterns{
	Words: []string{
		// profanity
		"fuck", "fucking", "fucked", "shit", "shitty", "bullshit", "bitch", "bastard", "asshole",
		"ass", "damn", "dammit", "crap", "piss", "pissed", "dick", "prick", "cunt", "slut", "whore",
		"wtf", "stfu",
		// insults
		"idiot", "idiots", "stupid", "dumb", "moron", "loser", "retard", "retarded", "pathetic",
		"worthless",
		// harm & intensity
		"hate", "kill", "die", "murder", "attack", "destroy",
	},
	Topics: []string{
		// violence & weapons
		`\b(guns?|rifles?|pistols?|firearms?|weapons?|bombs?|explosives?|shoot(ing|er)?|stab(bing)?|massacre)\b`,
		// self-harm
		`\b(suicide|suicidal|self[- ]?harm|cut(ting)? myself|kill(ing)? myself|end(ing)? my life)\b`,
		// drugs
		`\b(cocaine|heroin|meth(amphetamine)?|fentanyl|crack|ecstasy|mdma|lsd|opioids?)\b`,
	},
}

// Patterns holds the raw wordlist and topic regexes.
type Patterns struct {
	Words  []string `yaml:"words"`
	Topics []string `yaml:"topics"`
}

// markupPattern matches any tag-like substring, benign ones included.
const markupPattern = `<[^>]*>`

// scriptPatterns are tested in order; the first match wins.
var scriptPatterns = []string{
	`(?i)<\s*script\b[^>]*>[\s\S]*?<\s*/\s*script\s*>`,
	`(?i)javascript\s*:`,
	`(?i)\bon\w+\s*=`,
	`(?i)\bdata\s*:\s*[a-z]+/[a-z0-9.+-]+`,
}
