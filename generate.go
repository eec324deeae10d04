package main

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DescriptionGenerator is the opaque text-to-graph collaborator: a
// prompt goes out, a diagram description comes back. The core only
// parses the result; what produces it is not its business.
type DescriptionGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// generationMsg carries a completed generation back into the update
// loop. The token decides whether the result still matters.
type generationMsg struct {
	token uint64
	text  string
	err   error
}

// generateCmd runs the generator off the UI thread and delivers the
// result as a message. Cancellation is implicit: a result with a stale
// token is simply ignored by the session.
func generateCmd(gen DescriptionGenerator, token uint64, prompt string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		text, err := gen.Generate(ctx, prompt)
		return generationMsg{token: token, text: text, err: err}
	}
}

// localGenerator is the offline fallback generator: it turns a prompt
// like "plan, build and ship" into a linear chain description. A real
// service plugs in behind the same interface.
type localGenerator struct{}

func (localGenerator) Generate(_ context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", nil
	}

	replacer := strings.NewReplacer(",", "\n", " and ", "\n", " then ", "\n", "->", "\n")
	var steps []string
	for _, part := range strings.Split(replacer.Replace(prompt), "\n") {
		part = strings.TrimSpace(part)
		if part != "" {
			steps = append(steps, part)
		}
	}

	var b strings.Builder
	for _, step := range steps {
		b.WriteString(step)
		b.WriteString("\n")
	}
	for i := 0; i+1 < len(steps); i++ {
		b.WriteString(steps[i])
		b.WriteString(" -> ")
		b.WriteString(steps[i+1])
		b.WriteString("\n")
	}
	return b.String(), nil
}
