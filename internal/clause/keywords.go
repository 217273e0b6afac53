package clause

// Vocabulary is the fixed list of clause-topic keywords matched against
// chunk content during tagging. Order matters: tags are recorded in
// vocabulary order.
var Vocabulary = []string{
	"termination",
	"notice",
	"liability",
	"indemnification",
	"confidentiality",
	"non-disclosure",
	"payment terms",
	"force majeure",
	"governing law",
	"dispute resolution",
	"intellectual property",
	"warranties",
	"representations",
}

// SessionKeywords is the superset of legal terms tracked by the
// conversation memory. It extends the clause vocabulary with non-clause
// terms users commonly ask about.
var SessionKeywords = []string{
	"termination",
	"liability",
	"payment",
	"confidentiality",
	"indemnification",
	"intellectual property",
	"force majeure",
	"governing law",
	"notice",
	"breach",
	"damages",
	"warranty",
}

// topicSynonyms maps each retrievable clause topic to the phrasings a
// user might use for it. Used to route free-text questions to
// clause-aware retrieval.
var topicSynonyms = map[string][]string{
	"termination":           {"termination", "terminate", "end contract"},
	"payment":               {"payment", "pay", "fees", "invoice"},
	"liability":             {"liability", "liable", "responsibility"},
	"confidentiality":       {"confidential", "non-disclosure", "nda"},
	"notice":                {"notice", "notification", "inform"},
	"indemnification":       {"indemnify", "indemnification"},
	"intellectual property": {"intellectual property", "copyright", " ip "},
	"force majeure":         {"force majeure", "act of god"},
	"governing law":         {"governing law", "jurisdiction"},
}

// topicOrder fixes the iteration order over topicSynonyms so detection
// is deterministic.
var topicOrder = []string{
	"termination",
	"payment",
	"liability",
	"confidentiality",
	"notice",
	"indemnification",
	"intellectual property",
	"force majeure",
	"governing law",
}
