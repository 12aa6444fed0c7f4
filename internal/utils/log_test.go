package utils

import "testing"

func TestTruncateForLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		limit  int
		expect string
	}{
		{
			name:   "disabled preview",
			input:  `{"matchedJobs":[]}`,
			limit:  0,
			expect: "",
		},
		{
			name:   "short model reply kept as is",
			input:  `{"matchedJobs":[]}`,
			limit:  200,
			expect: `{"matchedJobs":[]}`,
		},
		{
			name:   "long resume cut at the limit",
			input:  "Senior Go developer with ten years of backend experience",
			limit:  19,
			expect: "Senior Go developer...",
		},
		{
			name:   "counts runes not bytes",
			input:  "Инженер-программист",
			limit:  7,
			expect: "Инженер...",
		},
		{
			name:   "surrounding whitespace is not counted",
			input:  "\n  Data Analyst  \n",
			limit:  12,
			expect: "Data Analyst",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := TruncateForLog(tt.input, tt.limit); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestOneLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{name: "resume paragraphs", input: "  Experienced backend\n\tengineer  with Go ", expect: "Experienced backend engineer with Go"},
		{name: "fenced model reply", input: "```json\n{\"matchedJobs\": []}\n```", expect: "```json {\"matchedJobs\": []} ```"},
		{name: "blank", input: " \r\n\t ", expect: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := OneLine(tt.input); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestPreviewOfMultilineReply(t *testing.T) {
	got := TruncateForLog(OneLine("{\n  \"matchedJobs\": [\n    {\"id\": 1, \"title\": \"Backend Engineer\"}\n  ]\n}"), 20)
	if got != `{ "matchedJobs": [ {...` {
		t.Fatalf("unexpected preview: %q", got)
	}
}
