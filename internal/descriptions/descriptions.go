// Package descriptions provides class descriptions keyed by activity name.
//
// Descriptions are often copied from the recreation website as HTML fragments; they are
// reduced to plain text when loaded.
package descriptions

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var blankRun = regexp.MustCompile(`[ \t]+`)

// Catalog maps activity names to plain-text descriptions.
type Catalog struct {
	entries map[string]string
	keys    []string // longest first, for substring lookup
}

// Load reads a catalog from a JSON object file of name to description.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading descriptions: %w", err)
	}
	return Parse(data)
}

// Parse decodes a JSON object of name to description.
func Parse(data []byte) (*Catalog, error) {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing descriptions: %w", err)
	}
	return New(raw)
}

// New builds a catalog, stripping HTML from every description.
func New(raw map[string]string) (*Catalog, error) {
	c := &Catalog{entries: make(map[string]string, len(raw))}
	for name, desc := range raw {
		key := normalize(name)
		if key == "" {
			continue
		}
		text, err := PlainText(desc)
		if err != nil {
			return nil, fmt.Errorf("description for %q: %w", name, err)
		}
		c.entries[key] = text
		c.keys = append(c.keys, key)
	}
	sort.Slice(c.keys, func(i, j int) bool {
		if len(c.keys[i]) != len(c.keys[j]) {
			return len(c.keys[i]) > len(c.keys[j])
		}
		return c.keys[i] < c.keys[j]
	})
	return c, nil
}

// Len returns the number of descriptions.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Lookup finds the description for a class title: an exact name match ignoring case,
// otherwise the longest catalog name contained in the title.
func (c *Catalog) Lookup(title string) (string, bool) {
	if c == nil {
		return "", false
	}
	t := normalize(title)
	if t == "" {
		return "", false
	}
	if d, ok := c.entries[t]; ok {
		return d, true
	}
	for _, k := range c.keys {
		if strings.Contains(t, k) {
			return c.entries[k], true
		}
	}
	return "", false
}

// PlainText converts an HTML fragment to text, keeping paragraph and line breaks.
func PlainText(fragment string) (string, error) {
	if !strings.Contains(fragment, "<") {
		return tidy(fragment), nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}
	doc.Find("script, style").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p, div, li, h1, h2, h3, h4, tr").Each(func(i int, sel *goquery.Selection) {
		sel.AppendHtml("\n")
	})
	return tidy(doc.Text()), nil
}

func tidy(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\u00a0", " "), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(blankRun.ReplaceAllString(line, " "))
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
