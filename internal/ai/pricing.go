package ai

import "strings"

// USD per million tokens (input, output). Matched by model name prefix,
// longest prefix first.
var prices = []struct {
	prefix        string
	input, output float64
}{
	{"gpt-4o-mini", 0.15, 0.60},
	{"gpt-4o", 2.50, 10.00},
	{"gpt-4.1-mini", 0.40, 1.60},
	{"gpt-4.1", 2.00, 8.00},
	{"claude-3-5-haiku", 0.80, 4.00},
	{"claude-sonnet", 3.00, 15.00},
	{"claude-opus", 15.00, 75.00},
	{"gemini-2.5-flash", 0.30, 2.50},
	{"gemini-2.5-pro", 1.25, 10.00},
}

// Cost estimates the price of the call; unknown models cost nothing.
func (u Usage) Cost() float64 {
	for _, p := range prices {
		if strings.HasPrefix(u.Model, p.prefix) {
			return (float64(u.PromptTokens)*p.input + float64(u.CompletionTokens)*p.output) / 1e6
		}
	}
	return 0
}
