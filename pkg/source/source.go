// Package source locates resume templates: by path, by http(s) URL, or by a fuzzy
// name match against the template directory.
package source

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/nikogura/resume-randomizer/pkg/template"
	"github.com/pkg/errors"
	"github.com/sahilm/fuzzy"
)

// FragmentPrefix marks a template file that is only meant to be spliced into others.
const FragmentPrefix = "*fragment*"

// Entry is one template found in a directory.
type Entry struct {
	Name    string
	Path    string
	Version string
}

// Resolve loads a template from a URL, an existing file, or the best fuzzy match for
// input among the templates in dir.
func Resolve(ctx context.Context, dir, input string) (tmpl *template.Template, err error) {
	if isURL(input) {
		var text string
		text, err = fetchFromURL(ctx, input)
		if err != nil {
			err = errors.Wrapf(err, "failed to fetch template from URL: %s", input)
			return tmpl, err
		}
		tmpl, err = template.Parse(input, text)
		return tmpl, err
	}

	path := input
	_, statErr := os.Stat(path)
	if statErr != nil {
		path, err = Find(dir, input)
		if err != nil {
			return tmpl, err
		}
	}

	tmpl, err = template.Load(path)
	return tmpl, err
}

func isURL(input string) (yes bool) {
	parsedURL, urlErr := url.Parse(input)
	yes = urlErr == nil && (parsedURL.Scheme == "http" || parsedURL.Scheme == "https")
	return yes
}

// List returns the .txt templates in dir, skipping fragments, sorted by name.
func List(dir string) (entries []Entry, err error) {
	var paths []string
	paths, err = filepath.Glob(filepath.Join(dir, "*.txt"))
	if err != nil {
		err = errors.Wrapf(err, "failed to list templates in %s", dir)
		return entries, err
	}

	for _, path := range paths {
		var first string
		first, err = firstLine(path)
		if err != nil {
			return entries, err
		}
		if strings.HasPrefix(strings.TrimSpace(first), FragmentPrefix) {
			continue
		}

		entry := Entry{
			Name: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
			Path: path,
		}
		fields := strings.Fields(first)
		if len(fields) >= 4 && strings.Join(fields[1:4], " ") == template.HeaderSuffix {
			entry.Version = fields[0]
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

	return entries, err
}

// Find returns the path of the template in dir whose name best matches query.
func Find(dir, query string) (path string, err error) {
	var entries []Entry
	entries, err = List(dir)
	if err != nil {
		return path, err
	}

	names := make([]string, len(entries))
	for i, e := range entries {
		if e.Name == query {
			path = e.Path
			return path, err
		}
		names[i] = e.Name
	}

	matches := fuzzy.Find(query, names)
	if len(matches) == 0 {
		err = errors.Errorf("no template in %s matches %q (run 'resume-randomizer list')", dir, query)
		return path, err
	}

	path = entries[matches[0].Index].Path
	return path, err
}

func firstLine(path string) (line string, err error) {
	var f *os.File
	f, err = os.Open(path)
	if err != nil {
		err = errors.Wrapf(err, "failed to open template: %s", path)
		return line, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if scanner.Scan() {
		line = strings.TrimPrefix(scanner.Text(), "\ufeff")
	}
	err = scanner.Err()
	if err != nil {
		err = errors.Wrapf(err, "failed to read template: %s", path)
		return line, err
	}

	return line, err
}

// fetchFromURL retrieves template text over http(s).
func fetchFromURL(ctx context.Context, urlStr string) (content string, err error) {
	var req *http.Request
	req, err = http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		err = errors.Wrap(err, "failed to create HTTP request")
		return content, err
	}

	req.Header.Set("User-Agent", "resume-randomizer/1.0")

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	var resp *http.Response
	resp, err = client.Do(req)
	if err != nil {
		err = errors.Wrap(err, "HTTP request failed")
		return content, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err = errors.Errorf("HTTP request failed with status: %d", resp.StatusCode)
		return content, err
	}

	var bodyBytes []byte
	bodyBytes, err = io.ReadAll(resp.Body)
	if err != nil {
		err = errors.Wrap(err, "failed to read response body")
		return content, err
	}

	content = string(bodyBytes)
	if strings.TrimSpace(content) == "" {
		err = errors.New("fetched template is empty")
		return content, err
	}

	return content, err
}
