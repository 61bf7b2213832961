// SPDX-FileCopyrightText: 2023 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gardener/kube-scanner/pkg/rule"
)

const (
	tmplReportName           = "report"
	tmplReportPath           = "templates/html/report.html"
	tmplDifferenceReportName = "difference_report"
	tmplDifferenceReportPath = "templates/html/difference_report.html"
	tmplStylesPath           = "templates/html/_styles.tpl"
	tmplFindingsPath         = "templates/html/_findings.tpl"
)

var (
	//go:embed templates/html/*
	files embed.FS
)

// HTMLRenderer renders scan reports in html format.
type HTMLRenderer struct {
	templates map[string]*template.Template
}

// NewHTMLRenderer creates a HTMLRenderer.
func NewHTMLRenderer() (*HTMLRenderer, error) {
	convTimeFunc := func(time time.Time) string {
		return time.Format("01-02-2006 15:04:05")
	}
	yamlFormat := func(v any) string {
		yaml, err := yaml.Marshal(v)
		if err != nil {
			return err.Error()
		}
		return string(yaml)
	}
	funcs := template.FuncMap{
		"severityIcon":          rule.SeverityIcon,
		"time":                  convTimeFunc,
		"yamlFormat":            yamlFormat,
		"severitiesSummaryText": severitiesSummaryText,
	}
	templates := make(map[string]*template.Template)

	parsedReport, err := template.New(tmplReportName+".html").Funcs(funcs).ParseFS(files, tmplReportPath, tmplFindingsPath, tmplStylesPath)
	if err != nil {
		return nil, err
	}
	templates[tmplReportName] = parsedReport

	parsedDifferenceReport, err := template.New(tmplDifferenceReportName+".html").Funcs(funcs).ParseFS(files, tmplDifferenceReportPath, tmplFindingsPath, tmplStylesPath)
	if err != nil {
		return nil, err
	}
	templates[tmplDifferenceReportName] = parsedDifferenceReport

	return &HTMLRenderer{
		templates: templates,
	}, nil
}

// Render writes a report in html format into the passed writer.
func (r *HTMLRenderer) Render(w io.Writer, report any) error {
	switch rep := report.(type) {
	case *ScanReport:
		return r.templates[tmplReportName].Execute(w, rep)
	case *Difference:
		return r.templates[tmplDifferenceReportName].Execute(w, rep)
	default:
		return fmt.Errorf("unsupported report type: %T", report)
	}
}

// severitiesSummaryText returns a summary string with the number of findings per severity.
func severitiesSummaryText(findings Findings) string {
	counts := findings.Severities()
	summaryText := ""
	for _, severity := range rule.Severities() {
		num := counts[severity]
		if num != 0 {
			if len(summaryText) > 0 {
				summaryText = fmt.Sprintf("%s, ", summaryText)
			}
			summaryText = fmt.Sprintf("%s%dx %s %c", summaryText, num, severity, rule.SeverityIcon(severity))
		}
	}
	if len(summaryText) == 0 {
		return "no findings"
	}
	return summaryText
}
