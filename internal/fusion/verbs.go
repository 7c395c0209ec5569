package fusion

// VerbBoostCap bounds a single verb boost, per the documented score ranges.
const VerbBoostCap = 0.3

// defaultVerbDomains maps core action verbs to the tool domains they signal.
// A query verb only boosts tools that declare one of the mapped domains.
var defaultVerbDomains = map[string][]string{
	"commit":   {"git"},
	"push":     {"git"},
	"pull":     {"git"},
	"merge":    {"git"},
	"rebase":   {"git"},
	"branch":   {"git"},
	"clone":    {"git"},
	"search":   {"search", "web"},
	"find":     {"search", "file"},
	"grep":     {"search"},
	"crawl":    {"crawl4ai", "web"},
	"fetch":    {"crawl4ai", "web"},
	"scrape":   {"crawl4ai", "web"},
	"deploy":   {"deploy"},
	"release":  {"deploy"},
	"rollback": {"deploy"},
	"test":     {"test"},
	"verify":   {"test"},
	"cover":    {"test"},
	"review":   {"review"},
	"audit":    {"review"},
	"lint":     {"review"},
	"research": {"researcher", "web"},
	"analyze":  {"researcher"},
	"read":     {"file"},
	"write":    {"file"},
	"edit":     {"file"},
	"create":   {"file"},
	"delete":   {"file"},
	"run":      {"shell"},
	"exec":     {"shell"},
	"install":  {"shell"},
	"build":    {"shell", "build"},
}

// VerbTable maps action verbs to domain affinities. Immutable after
// construction so the fusion engine stays side-effect-free.
type VerbTable struct {
	domains map[string]map[string]bool // verb -> domain set
	boost   float64
}

// NewVerbTable builds a table from the embedded defaults merged with
// overrides (verb -> domains; an override replaces the default entry for
// that verb). boost is the flat value applied on a match, capped at
// VerbBoostCap.
func NewVerbTable(overrides map[string][]string, boost float64) *VerbTable {
	if boost < 0 {
		boost = 0
	}
	if boost > VerbBoostCap {
		boost = VerbBoostCap
	}

	domains := make(map[string]map[string]bool, len(defaultVerbDomains)+len(overrides))
	add := func(verb string, ds []string) {
		set := make(map[string]bool, len(ds))
		for _, d := range ds {
			set[d] = true
		}
		domains[verb] = set
	}
	for verb, ds := range defaultVerbDomains {
		add(verb, ds)
	}
	for verb, ds := range overrides {
		add(verb, ds)
	}

	return &VerbTable{domains: domains, boost: boost}
}

// Boost returns the verb boost for a tool declaring toolDomains given the
// query terms, along with the verb that matched. At most one verb applies;
// the first matching query term wins, keeping the result deterministic for
// a fixed token order.
func (t *VerbTable) Boost(queryTerms []string, toolDomains []string) (float64, string) {
	for _, term := range queryTerms {
		set, ok := t.domains[term]
		if !ok {
			continue
		}
		for _, d := range toolDomains {
			if set[d] {
				return t.boost, term
			}
		}
	}
	return 0, ""
}
