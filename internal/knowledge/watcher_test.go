// Copyright 2026 The pepperbot Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package knowledge

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"
)

// Watch runs until its context ends; callers must give it a goroutine or
// they never get control back.
func TestWatch_BlocksUntilCanceled(t *testing.T) {
	p := NewProvider(writeTemp(t, "knowledge.md", sampleDoc))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- p.Watch(ctx)
	}()

	select {
	case err := <-done:
		t.Fatalf("Watch returned early: %v", err)
	case <-time.After(300 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Watch returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestWatch_ReloadsOnChange(t *testing.T) {
	path := writeTemp(t, "knowledge.md", sampleDoc)
	p := NewProvider(path)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = p.Watch(ctx) }()

	// Let the watcher register before rewriting the file.
	time.Sleep(200 * time.Millisecond)

	updated := sampleDoc + "\n## Governance\n\nVoting happens on-chain.\n"
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if strings.Contains(p.Content([]string{"governance"}), "Voting happens") {
			return
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatal("knowledge content was not reloaded after file change")
}

func TestWatch_MissingFile(t *testing.T) {
	p := &Provider{path: "/nonexistent/knowledge.md"}
	if err := p.Watch(context.Background()); err == nil {
		t.Fatal("Watch should fail for a missing file")
	}
}
