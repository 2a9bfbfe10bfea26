package scoring

import "strings"

// Classifier partitions categorical labels into equivalence groups. Lookup
// is case-insensitive and treats hyphens and underscores as spaces. Labels
// not in the table are ungrouped and only ever match themselves exactly.
type Classifier struct {
	groups map[string]string
}

// NewClassifier builds a Classifier from group id -> member labels.
func NewClassifier(groups map[string][]string) Classifier {
	c := Classifier{groups: make(map[string]string)}
	for id, labels := range groups {
		for _, l := range labels {
			c.groups[normalizeLabel(l)] = id
		}
	}
	return c
}

// Group returns the group id for a label.
func (c Classifier) Group(label string) (string, bool) {
	id, ok := c.groups[normalizeLabel(label)]
	return id, ok
}

func (c Classifier) compare(name, subject, comp string, sameGroup, different float64) FactorResult {
	s := normalizeLabel(subject)
	o := normalizeLabel(comp)
	if s == "" || o == "" {
		return missing(name, name+" unknown")
	}
	if s == o {
		return available(name, MaxScore, "exact match")
	}
	gs, okS := c.groups[s]
	gc, okC := c.groups[o]
	if okS && okC && gs == gc {
		return available(name, sameGroup, "same group: "+gs)
	}
	return available(name, different, "different group")
}

func normalizeLabel(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("-", " ", "_", " ", "/", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// DefaultPropertyTypeGroups returns the built-in property type partition.
func DefaultPropertyTypeGroups() map[string][]string {
	return map[string][]string{
		"single_family": {"sfr", "single family", "single family residence", "single family residential", "house", "detached", "residential"},
		"condo":         {"condo", "condominium", "apartment condo"},
		"townhouse":     {"townhouse", "townhome", "row house", "rowhouse", "attached"},
		"multi_family":  {"multi family", "multifamily", "duplex", "triplex", "fourplex", "quadplex", "2 4 units"},
		"manufactured":  {"mobile home", "manufactured", "manufactured home", "mobile"},
		"land":          {"land", "vacant land", "lot", "vacant lot"},
	}
}

// DefaultStyleGroups returns the built-in architectural style partition.
func DefaultStyleGroups() map[string][]string {
	return map[string][]string{
		"ranch":        {"ranch", "rambler", "single story", "one story"},
		"colonial":     {"colonial", "traditional", "federal", "georgian"},
		"cape":         {"cape cod", "cape"},
		"contemporary": {"contemporary", "modern", "mid century modern"},
		"victorian":    {"victorian", "queen anne", "second empire"},
		"craftsman":    {"craftsman", "bungalow", "arts and crafts"},
		"split_level":  {"split level", "bi level", "tri level", "split entry", "raised ranch"},
		"farmhouse":    {"farmhouse", "farm house", "country"},
	}
}

var (
	defaultPropertyTypes = NewClassifier(DefaultPropertyTypeGroups())
	defaultStyles        = NewClassifier(DefaultStyleGroups())
)
