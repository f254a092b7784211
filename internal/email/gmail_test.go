package email

import (
	"strings"
	"testing"

	"fixture-matching/internal/config"
)

func TestHTMLToText(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		contains []string
		excludes []string
	}{
		{
			name:     "simple paragraph",
			html:     "<p>MV Ocean Star open Singapore 15-20 Oct</p>",
			contains: []string{"MV Ocean Star open Singapore 15-20 Oct"},
		},
		{
			name:     "strips script and style",
			html:     "<style>.a{color:red}</style><script>alert(1)</script><p>50000 mt iron ore</p>",
			contains: []string{"50000 mt iron ore"},
			excludes: []string{"color:red", "alert"},
		},
		{
			name:     "decodes entities",
			html:     "<p>Rotterdam &amp; Antwerp &quot;prompt&quot;</p>",
			contains: []string{`Rotterdam & Antwerp "prompt"`},
		},
		{
			name:     "block elements become line breaks",
			html:     "<div>Cargo: grain</div><div>Qty: 25000 mt</div>",
			contains: []string{"Cargo: grain", "Qty: 25000 mt"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := htmlToText(tt.html)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("htmlToText() = %q, want substring %q", got, want)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(got, unwanted) {
					t.Errorf("htmlToText() = %q, should not contain %q", got, unwanted)
				}
			}
		})
	}
}

func TestBuildSearchQuery(t *testing.T) {
	tests := []struct {
		name     string
		search   *config.SearchConfig
		contains []string
	}{
		{
			name:     "default query",
			search:   &config.SearchConfig{},
			contains: []string{"subject:(cargo OR vessel OR fixture OR laycan"},
		},
		{
			name:     "explicit query overrides",
			search:   &config.SearchConfig{Query: "label:chartering"},
			contains: []string{"label:chartering"},
		},
		{
			name:     "unread only",
			search:   &config.SearchConfig{UnreadOnly: true},
			contains: []string{"is:unread"},
		},
		{
			name:     "after days",
			search:   &config.SearchConfig{AfterDays: 7},
			contains: []string{"after:"},
		},
		{
			name:     "include and exclude labels",
			search:   &config.SearchConfig{IncludeLabels: []string{"brokers"}, ExcludeLabels: []string{"spam"}},
			contains: []string{"label:brokers", "-label:spam"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &GmailClient{search: tt.search}
			got := client.BuildSearchQuery()
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("BuildSearchQuery() = %q, want substring %q", got, want)
				}
			}
		})
	}
}
