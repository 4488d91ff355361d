package nostr

import "encoding/json"

// Filter is a subscription predicate. Absent fields are unconstrained, not
// "match none": every populated field narrows the match via AND, and a
// field's own set is matched via OR.
type Filter struct {
	IDs     []string `json:"ids,omitempty"`
	Authors []string `json:"authors,omitempty"`
	Kinds   []int    `json:"kinds,omitempty"`
	Since   *int64   `json:"since,omitempty"`
	Until   *int64   `json:"until,omitempty"`
	Limit   int      `json:"limit,omitempty"`
	Search  string   `json:"search,omitempty"`
	HTags   []string `json:"#h,omitempty"`
	PTags   []string `json:"#p,omitempty"`
	ETags   []string `json:"#e,omitempty"`
	DTags   []string `json:"#d,omitempty"`
}

// ParseFilter decodes a raw JSON filter object.
func ParseFilter(raw json.RawMessage) (Filter, error) {
	var f Filter
	if err := json.Unmarshal(raw, &f); err != nil {
		return Filter{}, err
	}
	return f, nil
}

// Matches evaluates the AND-of-populated-constraints rule against a single
// event. Used both for live broadcast routing and as the ground truth the
// store's SQL compilation must agree with.
func (f *Filter) Matches(e *Event) bool {
	if len(f.IDs) > 0 && !containsString(f.IDs, e.ID) {
		return false
	}
	if len(f.Authors) > 0 && !containsString(f.Authors, e.PubKey) {
		return false
	}
	if len(f.Kinds) > 0 && !containsInt(f.Kinds, e.Kind) {
		return false
	}
	if f.Since != nil && e.CreatedAt < *f.Since {
		return false
	}
	if f.Until != nil && e.CreatedAt > *f.Until {
		return false
	}
	if len(f.HTags) > 0 && !tagMatches(e, "h", f.HTags) {
		return false
	}
	if len(f.DTags) > 0 && !tagMatches(e, "d", f.DTags) {
		return false
	}
	if len(f.PTags) > 0 && !anyTagMatches(e, "p", f.PTags) {
		return false
	}
	if len(f.ETags) > 0 && !anyTagMatches(e, "e", f.ETags) {
		return false
	}
	return true
}

// tagMatches checks the first tag named `name` (used for #h and #d, which
// are denormalized to single columns in storage).
func tagMatches(e *Event, name string, set []string) bool {
	val, ok := e.GetTagValue(name)
	return ok && containsString(set, val)
}

// anyTagMatches checks every tag named `name` (used for #p and #e, which
// can appear multiple times on one event).
func anyTagMatches(e *Event, name string, set []string) bool {
	for _, v := range e.TagValues(name) {
		if containsString(set, v) {
			return true
		}
	}
	return false
}

func containsString(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func containsInt(set []int, v int) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
