package provider

import (
	"context"
	"fmt"
)

type mockStep struct {
	reply string
	err   error
}

// Mock is a scriptable provider for tests. Outcomes are consumed in
// order; once the script is exhausted every call succeeds with a
// default reply.
type Mock struct {
	name    string
	script  []mockStep
	Prompts []string
}

// NewMock creates a mock provider with the given name.
func NewMock(name string) *Mock {
	return &Mock{name: name}
}

// Reply queues a successful response.
func (m *Mock) Reply(content string) *Mock {
	m.script = append(m.script, mockStep{reply: content})
	return m
}

// Fail queues a failed call.
func (m *Mock) Fail(err error) *Mock {
	m.script = append(m.script, mockStep{err: err})
	return m
}

// Name returns the mock's identifier.
func (m *Mock) Name() string { return m.name }

// Models returns a single synthetic model.
func (m *Mock) Models() []string { return []string{m.name + "-1"} }

// Calls reports how many times the mock was invoked.
func (m *Mock) Calls() int { return len(m.Prompts) }

// Generate pops the next scripted outcome.
func (m *Mock) Generate(_ context.Context, model string, prompt string) (*Reply, error) {
	m.Prompts = append(m.Prompts, prompt)

	if len(m.script) == 0 {
		return &Reply{
			Content:  fmt.Sprintf("mock response: %s", prompt),
			Provider: m.name,
			Model:    model,
		}, nil
	}

	step := m.script[0]
	m.script = m.script[1:]
	if step.err != nil {
		return nil, step.err
	}
	return &Reply{Content: step.reply, Provider: m.name, Model: model}, nil
}

// GenerateWithSystem behaves like Generate, ignoring the persona.
func (m *Mock) GenerateWithSystem(ctx context.Context, model string, _ string, prompt string) (*Reply, error) {
	return m.Generate(ctx, model, prompt)
}

// GenerateParts behaves like Generate, ignoring attachments.
func (m *Mock) GenerateParts(ctx context.Context, model string, prompt string, _ []Attachment) (*Reply, error) {
	return m.Generate(ctx, model, prompt)
}
