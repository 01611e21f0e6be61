// Copyright 2026 The pepperbot Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package knowledge loads the project knowledge file the generator grounds
// its answers on. The file is markdown split into "## Section" blocks; the
// planner addresses sections by their slugged tag ("Token Basics" ->
// "token-basics"). Files ending in .gz are transparently decompressed.
package knowledge

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
	log "github.com/sirupsen/logrus"
)

// Provider serves sectioned knowledge content. Safe for concurrent use;
// Reload swaps the section map atomically under the lock.
type Provider struct {
	mu       sync.RWMutex
	path     string
	sections map[string]string
	order    []string
	loaded   bool
}

// NewProvider creates a Provider for the given file path and performs the
// initial load. A missing or unreadable file is not fatal: the provider
// reports unavailable and the generator answers with its fixed notice.
func NewProvider(path string) *Provider {
	p := &Provider{path: path}
	if err := p.Reload(); err != nil {
		log.WithError(err).WithField("path", path).Warn("Knowledge file unavailable at startup")
	}
	return p
}

// IsAvailable reports whether knowledge content is loaded. The generator
// refuses to call the remote model while this is false.
func (p *Provider) IsAvailable() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.loaded && len(p.sections) > 0
}

// Content returns the requested sections joined in file order. Unknown tags
// are skipped; if nothing matches, the overview section (or the whole file
// as a last resort) is returned so generation is never grounded on nothing.
func (p *Provider) Content(tags []string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.loaded {
		return ""
	}

	want := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		want[t] = struct{}{}
	}

	var parts []string
	for _, tag := range p.order {
		if _, ok := want[tag]; ok {
			parts = append(parts, p.sections[tag])
		}
	}
	if len(parts) == 0 {
		if overview, ok := p.sections["overview"]; ok {
			return overview
		}
		for _, tag := range p.order {
			parts = append(parts, p.sections[tag])
		}
	}
	return strings.Join(parts, "\n\n")
}

// Sections lists the loaded section tags in file order.
func (p *Provider) Sections() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]string(nil), p.order...)
}

// Reload re-reads the knowledge file from disk.
func (p *Provider) Reload() error {
	f, err := os.Open(p.path)
	if err != nil {
		return fmt.Errorf("opening knowledge file: %w", err)
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(p.path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("opening gzip knowledge file: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	sections, order, err := parseSections(reader)
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.sections = sections
	p.order = order
	p.loaded = true
	p.mu.Unlock()

	log.WithFields(log.Fields{
		"path":     p.path,
		"sections": len(order),
	}).Info("Knowledge file loaded")
	return nil
}

// parseSections splits markdown on "## " headers. Content before the first
// header lands in the "overview" section.
func parseSections(r io.Reader) (map[string]string, []string, error) {
	sections := make(map[string]string)
	var order []string

	current := "overview"
	var buf strings.Builder

	flush := func() {
		text := strings.TrimSpace(buf.String())
		if text == "" {
			return
		}
		if _, exists := sections[current]; !exists {
			order = append(order, current)
		}
		sections[current] += text
		buf.Reset()
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "## ") {
			flush()
			current = slug(strings.TrimPrefix(line, "## "))
			continue
		}
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("reading knowledge file: %w", err)
	}
	flush()

	return sections, order, nil
}

// slug converts a header title to its section tag.
func slug(title string) string {
	title = strings.ToLower(strings.TrimSpace(title))
	var b strings.Builder
	lastHyphen := false
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen && b.Len() > 0 {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
