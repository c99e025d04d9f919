package sim

import (
	"strings"

	"github.com/gobwas/glob"
)

// Entry is a file or directory on the simulated card.
type Entry struct {
	Name     string
	Dir      bool
	Data     []byte
	Children []*Entry

	parent *Entry
}

func newDir(name string, parent *Entry) *Entry {
	return &Entry{Name: name, Dir: true, parent: parent}
}

// Lookup finds a direct child by name, case insensitive.
func (e *Entry) Lookup(name string) *Entry {
	for _, c := range e.Children {
		if strings.EqualFold(c.Name, name) {
			return c
		}
	}
	return nil
}

func (e *Entry) add(child *Entry) *Entry {
	child.parent = e
	e.Children = append(e.Children, child)
	return child
}

func (e *Entry) remove(child *Entry) {
	for n, c := range e.Children {
		if c == child {
			e.Children = append(e.Children[:n], e.Children[n+1:]...)
			return
		}
	}
}

// count returns the number of entries in the tree rooted at e, e included.
func (e *Entry) count() int {
	n := 1
	for _, c := range e.Children {
		n += c.count()
	}
	return n
}

// match lists names of children matching pattern. A trailing '/' in
// pattern selects directories only. Directory names get a '/' suffix.
func (e *Entry) match(pattern string) []string {
	dirsOnly := strings.HasSuffix(pattern, "/")
	pattern = strings.TrimSuffix(pattern, "/")
	if pattern == "" {
		pattern = "*"
	}
	g, err := glob.Compile(strings.ToUpper(pattern))
	if err != nil {
		return nil
	}
	var names []string
	for _, c := range e.Children {
		if dirsOnly && !c.Dir {
			continue
		}
		if !g.Match(strings.ToUpper(c.Name)) {
			continue
		}
		name := c.Name
		if c.Dir {
			name += "/"
		}
		names = append(names, name)
	}
	return names
}

// matchFiles returns the child files matching pattern.
func (e *Entry) matchFiles(pattern string) []*Entry {
	g, err := glob.Compile(strings.ToUpper(pattern))
	if err != nil {
		return nil
	}
	var files []*Entry
	for _, c := range e.Children {
		if !c.Dir && g.Match(strings.ToUpper(c.Name)) {
			files = append(files, c)
		}
	}
	return files
}

// walk resolves a slash separated path relative to e.
func (e *Entry) walk(path string, create bool) *Entry {
	cur := e
	for _, name := range strings.Split(strings.Trim(path, "/"), "/") {
		if name == "" || name == "." {
			continue
		}
		next := cur.Lookup(name)
		if next == nil {
			if !create {
				return nil
			}
			next = cur.add(newDir(name, cur))
		}
		cur = next
	}
	return cur
}
