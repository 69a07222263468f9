package domain

import "slices"

// DefaultTopK is the number of documents retrieved per chat query
const DefaultTopK = 5

// Scope is the data partition a query should be answered from
type Scope int

const (
	ScopeUnknown Scope = iota // no usable classification, search everything
	ScopeSite                 // general site info and course offerings
	ScopeCourse               // a single course and its contents
	ScopeUser                 // the current user's profile and activity
)

// Scope labels as the classifier is asked to answer them
const (
	LabelSiteContext   = "Site-Context"
	LabelCourseContext = "Course-Context"
	LabelUserContext   = "User-Context"
)

// String returns the classifier label for the scope
func (s Scope) String() string {
	switch s {
	case ScopeSite:
		return LabelSiteContext
	case ScopeCourse:
		return LabelCourseContext
	case ScopeUser:
		return LabelUserContext
	default:
		return "unknown"
	}
}

// ParseScope maps a classifier label to a scope. Unrecognised labels map to ScopeUnknown.
func ParseScope(label string) Scope {
	switch label {
	case LabelSiteContext:
		return ScopeSite
	case LabelCourseContext:
		return ScopeCourse
	case LabelUserContext:
		return ScopeUser
	default:
		return ScopeUnknown
	}
}

// FilterOp is a metadata comparison operator
type FilterOp string

const (
	FilterOpEq FilterOp = "eq"
	FilterOpIn FilterOp = "in"
)

// Condition compares one metadata field
type Condition struct {
	Field  string   `json:"field"`
	Op     FilterOp `json:"op"`
	Values []string `json:"values"`
}

// Matches reports whether the metadata satisfies the condition.
// A missing field never matches.
func (c Condition) Matches(metadata map[string]string) bool {
	v, ok := metadata[c.Field]
	if !ok {
		return false
	}
	switch c.Op {
	case FilterOpEq:
		return len(c.Values) == 1 && v == c.Values[0]
	case FilterOpIn:
		return slices.Contains(c.Values, v)
	default:
		return false
	}
}

// Filter is a conjunction of conditions. The zero value matches everything.
type Filter struct {
	Conditions []Condition `json:"conditions,omitempty"`
}

// IsEmpty reports whether the filter applies no restriction
func (f Filter) IsEmpty() bool {
	return len(f.Conditions) == 0
}

// Matches reports whether the metadata satisfies every condition
func (f Filter) Matches(metadata map[string]string) bool {
	for _, c := range f.Conditions {
		if !c.Matches(metadata) {
			return false
		}
	}
	return true
}

// Eq builds an equality condition
func Eq(field, value string) Condition {
	return Condition{Field: field, Op: FilterOpEq, Values: []string{value}}
}

// In builds a set-membership condition
func In(field string, values ...string) Condition {
	return Condition{Field: field, Op: FilterOpIn, Values: values}
}

// BuildFilter maps a classified scope and optional course ID to a metadata filter.
// Site scope searches site and course overviews, course scope with a course ID
// searches that course's overview and modules, everything else is unfiltered.
func BuildFilter(scope Scope, courseID string) Filter {
	switch scope {
	case ScopeSite:
		return Filter{Conditions: []Condition{
			In(MetaDocType, DocTypeSite, DocTypeCourse),
		}}
	case ScopeCourse:
		if courseID == "" {
			return Filter{}
		}
		return Filter{Conditions: []Condition{
			Eq(MetaCourseID, courseID),
			In(MetaDocType, DocTypeCourse, DocTypeModule),
		}}
	default:
		return Filter{}
	}
}

// SearchOptions configures a vector search
type SearchOptions struct {
	Limit  int    `json:"limit"`
	Filter Filter `json:"filter"`
}
