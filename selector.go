package datafy

import (
	"path"
	"strings"

	"github.com/gobwas/glob"
)

// Member describes an archive entry before it is resolved.
type Member struct {
	// Path is the member's SourcePath: its path inside the archive, joined
	// onto the enclosing member's path for nested archives.
	Path string

	// Name is the final element of Path.
	Name string

	// Tag is the type tag implied by the member's extension.
	Tag TypeTag

	// Size is the uncompressed size in bytes.
	Size int64
}

// MemberSelector decides which archive members a resolution produces.
//
//	// Only the CSV and shapefile members
//	datafy.Resolve(ctx, uri, datafy.WithSelector(datafy.Or(
//	    datafy.Tags(datafy.TagCSV),
//	    datafy.Glob("**.shp"),
//	)))
type MemberSelector interface {
	// Match returns true if a non-archive member should become an item.
	Match(m *Member) bool

	// ExpandArchive returns true if a nested archive member should be
	// expanded. If false, the archive and everything inside it is skipped.
	ExpandArchive(m *Member) bool
}

// selects applies sel to m, treating a nil selector as All.
func selects(sel MemberSelector, m *Member) bool {
	if sel == nil {
		return true
	}
	if IsArchive(m.Tag) {
		return sel.ExpandArchive(m)
	}
	return sel.Match(m)
}

type allSelector struct{}

func (allSelector) Match(*Member) bool         { return true }
func (allSelector) ExpandArchive(*Member) bool { return true }

// All selects every member.
func All() MemberSelector {
	return allSelector{}
}

type globSelector struct {
	pattern string
	g       glob.Glob
}

// Glob matches the member path against a pattern. "*" does not cross "/",
// "**" does; "?", "[a-z]" and "{a,b}" are supported.
//
// Examples:
//
//	Glob("*.csv")          // CSV files at the archive root
//	Glob("**.csv")         // CSV files at any depth
//	Glob("data/{a,b}.json")
//
// An invalid pattern matches nothing; use CompileGlob to see the error.
func Glob(pattern string) MemberSelector {
	g, _ := glob.Compile(pattern, '/')
	return &globSelector{pattern: pattern, g: g}
}

// CompileGlob is Glob with pattern validation.
func CompileGlob(pattern string) (MemberSelector, error) {
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return nil, err
	}
	return &globSelector{pattern: pattern, g: g}, nil
}

func (s *globSelector) Match(m *Member) bool {
	if s.g == nil {
		return false
	}
	return s.g.Match(m.Path)
}

func (s *globSelector) ExpandArchive(*Member) bool {
	return true
}

type tagSelector struct {
	tags map[TypeTag]struct{}
}

// Tags matches members whose extension maps to one of tags.
func Tags(tags ...TypeTag) MemberSelector {
	set := make(map[TypeTag]struct{}, len(tags))
	for _, t := range tags {
		set[TypeTag(strings.ToLower(string(t)))] = struct{}{}
	}
	return &tagSelector{tags: set}
}

func (s *tagSelector) Match(m *Member) bool {
	_, ok := s.tags[m.Tag]
	return ok
}

func (s *tagSelector) ExpandArchive(*Member) bool {
	return true
}

type depthSelector struct {
	maxDepth int
}

// Depth limits selection to members at most maxDepth path levels deep.
// Depth 1 = the archive root only.
func Depth(maxDepth int) MemberSelector {
	return &depthSelector{maxDepth: maxDepth}
}

func (s *depthSelector) depth(p string) int {
	p = strings.Trim(path.Clean(p), "/")
	if p == "" || p == "." {
		return 0
	}
	return strings.Count(p, "/") + 1
}

func (s *depthSelector) Match(m *Member) bool {
	return s.depth(m.Path) <= s.maxDepth
}

func (s *depthSelector) ExpandArchive(m *Member) bool {
	return s.depth(m.Path) < s.maxDepth
}

type andSelector struct {
	selectors []MemberSelector
}

// And matches only if ALL selectors match.
func And(selectors ...MemberSelector) MemberSelector {
	return &andSelector{selectors: selectors}
}

func (s *andSelector) Match(m *Member) bool {
	for _, sel := range s.selectors {
		if !sel.Match(m) {
			return false
		}
	}
	return true
}

func (s *andSelector) ExpandArchive(m *Member) bool {
	for _, sel := range s.selectors {
		if !sel.ExpandArchive(m) {
			return false
		}
	}
	return true
}

type orSelector struct {
	selectors []MemberSelector
}

// Or matches if ANY selector matches.
func Or(selectors ...MemberSelector) MemberSelector {
	return &orSelector{selectors: selectors}
}

func (s *orSelector) Match(m *Member) bool {
	for _, sel := range s.selectors {
		if sel.Match(m) {
			return true
		}
	}
	return false
}

func (s *orSelector) ExpandArchive(m *Member) bool {
	for _, sel := range s.selectors {
		if sel.ExpandArchive(m) {
			return true
		}
	}
	return false
}

type notSelector struct {
	selector MemberSelector
}

// Not inverts a selector's match result. Archives are still expanded.
func Not(selector MemberSelector) MemberSelector {
	return &notSelector{selector: selector}
}

func (s *notSelector) Match(m *Member) bool {
	return !s.selector.Match(m)
}

func (s *notSelector) ExpandArchive(*Member) bool {
	return true
}

type funcSelector struct {
	matchFn  func(*Member) bool
	expandFn func(*Member) bool
}

// FuncSelector creates a selector from a custom function.
//
//	FuncSelector(func(m *datafy.Member) bool {
//	    return m.Size < 10*1024*1024 && strings.Contains(m.Name, "report")
//	})
func FuncSelector(fn func(*Member) bool) MemberSelector {
	return &funcSelector{
		matchFn:  fn,
		expandFn: func(*Member) bool { return true },
	}
}

// FuncSelectorFull creates a selector with custom match and expand functions.
func FuncSelectorFull(matchFn, expandFn func(*Member) bool) MemberSelector {
	return &funcSelector{
		matchFn:  matchFn,
		expandFn: expandFn,
	}
}

func (s *funcSelector) Match(m *Member) bool         { return s.matchFn(m) }
func (s *funcSelector) ExpandArchive(m *Member) bool { return s.expandFn(m) }
