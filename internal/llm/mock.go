package llm

import "context"

// MockClient is a canned-reply Client for tests and local debugging. It
// never touches the network.
type MockClient struct {
	Reply string
	Err   error
	// Calls records every prompt pair Generate received.
	Calls []MockCall
	// Name is reported by Provider; defaults to ProviderGemini.
	Name Provider
}

// MockCall is one recorded Generate invocation.
type MockCall struct {
	System string
	User   string
	Opts   Options
}

// Generate records the call and returns the canned reply or error.
func (m *MockClient) Generate(_ context.Context, system, user string, opts Options) (string, error) {
	m.Calls = append(m.Calls, MockCall{System: system, User: user, Opts: opts})
	if m.Err != nil {
		return "", m.Err
	}
	return m.Reply, nil
}

// Provider returns the configured name.
func (m *MockClient) Provider() Provider {
	if m.Name == "" {
		return ProviderGemini
	}
	return m.Name
}

// Close is a no-op.
func (m *MockClient) Close() error {
	return nil
}
