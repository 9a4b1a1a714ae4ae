package minify

import (
	"strings"

	"golang.org/x/net/html"
)

// Report summarizes one minification result for the --analyze output.
type Report struct {
	SourceBytes       int     `json:"source_bytes"`
	MinifiedBytes     int     `json:"minified_bytes"`
	SavedBytes        int     `json:"saved_bytes"`
	SavedPercent      float64 `json:"saved_percent"`
	Elements          int     `json:"elements"`
	ProtectedElements int     `json:"protected_elements"`
}

// Analyze tokenizes the minified output and reports byte savings and
// element counts. The tokenizer is forgiving about embedded code regions,
// which is all that is needed for a size report.
func Analyze(source, minified string, protected []string) *Report {
	if len(protected) == 0 {
		protected = DefaultProtectedElements
	}

	report := &Report{
		SourceBytes:   len(source),
		MinifiedBytes: len(minified),
		SavedBytes:    len(source) - len(minified),
	}
	if report.SourceBytes > 0 {
		report.SavedPercent = float64(report.SavedBytes) / float64(report.SourceBytes) * 100
	}

	z := html.NewTokenizer(strings.NewReader(minified))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}

		name, _ := z.TagName()
		report.Elements++
		for _, p := range protected {
			if strings.EqualFold(string(name), p) {
				report.ProtectedElements++
				break
			}
		}
	}

	return report
}
