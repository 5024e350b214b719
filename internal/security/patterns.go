package security

import "regexp"

// One class of prompt-injection signatures. The sanitizer hard-blocks on any
// match in any category; the detector adds Score per match for the
// categories it reports on (Score 0 = block-only, not scored).
type PatternCategory struct {
	Name     string
	Issue    string
	Score    int
	Patterns []*regexp.Regexp
}

var injectionCategories = []PatternCategory{
	{
		Name:  "role_manipulation",
		Issue: "Role manipulation attempt",
		Score: 2,
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)you are (now|a|an)`),
			regexp.MustCompile(`(?i)act as`),
			regexp.MustCompile(`(?i)pretend to be`),
			regexp.MustCompile(`(?i)role.{0,10}play`),
		},
	},
	{
		Name:  "instruction_override",
		Issue: "Instruction override attempt",
		Score: 3,
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(ignore|forget|disregard).{0,20}(previous|above|all)(.{0,20}(instruction|prompt|rule))?`),
		},
	},
	{
		Name:  "data_extraction",
		Issue: "Data extraction attempt",
		Score: 2,
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(reveal|show|tell me).{0,20}(prompt|instruction|system|internal)`),
			regexp.MustCompile(`(?i)(list|show|reveal).{0,20}(all|personal|financial|data)`),
		},
	},
	{
		Name:  "meta_probing",
		Issue: "System prompt probing",
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(system|assistant|ai).{0,10}(prompt|instruction|behavior)`),
		},
	},
	{
		Name:  "context_break",
		Issue: "Context break attempt",
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(instead|rather than|don't|stop).{0,20}(financial|budget|money)`),
		},
	},
	{
		Name:  "topic_hijack",
		Issue: "Off-topic persona attempt",
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(cryptocurrency|crypto|bitcoin|investment advisor|loan shark)`),
			regexp.MustCompile(`(?i)(recommend|suggest).{0,20}(loan|debt|risky)`),
		},
	},
	{
		Name:  "profile_probing",
		Issue: "Profile data probing",
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)what.{0,10}(tier|access|savings|income|bills)`),
		},
	},
	{
		Name:  "jailbreak",
		Issue: "Jailbreak attempt",
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(jailbreak|bypass|override|hack)`),
			regexp.MustCompile(`(?i)(developer|admin|root|sudo)`),
		},
	},
}

// Words that trigger extra scrutiny. Three or more distinct hits reject the
// input even when no signature pattern matches.
var suspiciousWords = []string{
	"ignore", "forget", "disregard", "override", "bypass", "hack",
	"reveal", "show", "tell", "list", "extract", "dump",
	"system", "prompt", "instruction", "admin", "root",
	"jailbreak", "cryptocurrency", "bitcoin", "loan shark",
}
