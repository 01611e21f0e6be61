// Copyright 2026 The pepperbot Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package llm

import "context"

// MockClient is a recording fake for tests.
type MockClient struct {
	// Response is returned from every Complete call.
	Response Result
	// Calls records the requests received, in order.
	Calls []MockCall
}

// MockCall is one recorded Complete invocation.
type MockCall struct {
	Messages []Message
	Opts     Options
}

// Complete records the call and returns the canned response.
func (m *MockClient) Complete(_ context.Context, messages []Message, opts Options) Result {
	m.Calls = append(m.Calls, MockCall{Messages: messages, Opts: opts})
	return m.Response
}
