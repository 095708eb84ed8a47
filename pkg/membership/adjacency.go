package membership

import (
	"encoding/json"
	"slices"
	"strings"
)

// DefaultSeparator marks the start of a platform discriminator suffix in
// member ids ("alice#0001" → "alice").
const DefaultSeparator = "#"

// Option configures [Build].
type Option func(*buildConfig)

type buildConfig struct {
	separator string
}

// WithSeparator sets the discriminator separator. An empty separator keeps
// member ids verbatim.
func WithSeparator(sep string) Option {
	return func(c *buildConfig) { c.separator = sep }
}

// NormalizeID removes everything from the first occurrence of sep onward.
func NormalizeID(id, sep string) string {
	if sep == "" {
		return id
	}
	if i := strings.Index(id, sep); i >= 0 {
		return id[:i]
	}
	return id
}

// Adjacency is the normalized person → groups relation.
// Every group list is sorted and duplicate-free.
type Adjacency struct {
	persons []string
	groups  map[string][]string
	all     []string
}

// Build merges every (group, member) pair of the snapshot, plus each member's
// mutual-group hints, into an [Adjacency]. Members that normalize to an empty
// id and empty group names are skipped.
func Build(s Snapshot, opts ...Option) *Adjacency {
	cfg := buildConfig{separator: DefaultSeparator}
	for _, opt := range opts {
		opt(&cfg)
	}

	sets := make(map[string]map[string]struct{})
	add := func(person, group string) {
		if group == "" {
			return
		}
		set, ok := sets[person]
		if !ok {
			set = make(map[string]struct{})
			sets[person] = set
		}
		set[group] = struct{}{}
	}

	for group, members := range s {
		for memberID, info := range members {
			person := NormalizeID(memberID, cfg.separator)
			if person == "" {
				continue
			}
			add(person, group)
			for _, hint := range info.MutualGroups {
				add(person, hint)
			}
		}
	}

	lists := make(map[string][]string, len(sets))
	for person, set := range sets {
		list := make([]string, 0, len(set))
		for g := range set {
			list = append(list, g)
		}
		lists[person] = list
	}
	return FromMap(lists)
}

// FromMap builds an Adjacency from an already-merged person → groups map,
// sorting and deduplicating each list. The input is not retained.
// Persons with no groups are kept; they contribute no edges.
func FromMap(m map[string][]string) *Adjacency {
	a := &Adjacency{
		persons: make([]string, 0, len(m)),
		groups:  make(map[string][]string, len(m)),
	}
	seen := make(map[string]struct{})
	for person, groups := range m {
		list := slices.Clone(groups)
		slices.Sort(list)
		list = slices.Compact(list)
		a.persons = append(a.persons, person)
		a.groups[person] = list
		for _, g := range list {
			seen[g] = struct{}{}
		}
	}
	slices.Sort(a.persons)

	a.all = make([]string, 0, len(seen))
	for g := range seen {
		a.all = append(a.all, g)
	}
	slices.Sort(a.all)
	return a
}

// Persons returns all person ids in ascending order.
func (a *Adjacency) Persons() []string { return slices.Clone(a.persons) }

// Groups returns the sorted group list of person, or nil if unknown.
func (a *Adjacency) Groups(person string) []string { return slices.Clone(a.groups[person]) }

// Has reports whether person is known.
func (a *Adjacency) Has(person string) bool {
	_, ok := a.groups[person]
	return ok
}

// AllGroups returns the distinct union of all group lists, sorted.
func (a *Adjacency) AllGroups() []string { return slices.Clone(a.all) }

// Members returns every person whose group list contains group, in person
// order. This is a full scan over all persons.
func (a *Adjacency) Members(group string) []string {
	var out []string
	for _, p := range a.persons {
		if _, found := slices.BinarySearch(a.groups[p], group); found {
			out = append(out, p)
		}
	}
	return out
}

// MemberCount returns len(Members(group)) without allocating.
func (a *Adjacency) MemberCount(group string) int {
	n := 0
	for _, p := range a.persons {
		if _, found := slices.BinarySearch(a.groups[p], group); found {
			n++
		}
	}
	return n
}

// Len returns the number of persons.
func (a *Adjacency) Len() int { return len(a.persons) }

// GroupCount returns the number of distinct groups.
func (a *Adjacency) GroupCount() int { return len(a.all) }

// MembershipCount returns the total number of (person, group) pairs.
func (a *Adjacency) MembershipCount() int {
	n := 0
	for _, list := range a.groups {
		n += len(list)
	}
	return n
}

// Map returns a copy of the relation as a plain map.
func (a *Adjacency) Map() map[string][]string {
	out := make(map[string][]string, len(a.groups))
	for p, list := range a.groups {
		out[p] = slices.Clone(list)
	}
	return out
}

// MarshalJSON encodes the relation as a person → groups object.
func (a *Adjacency) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.groups)
}

// UnmarshalJSON decodes a person → groups object, normalizing the lists.
func (a *Adjacency) UnmarshalJSON(data []byte) error {
	var m map[string][]string
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*a = *FromMap(m)
	return nil
}
