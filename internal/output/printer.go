// Package output renders upload results for humans and scripts.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/zinc-sig/pst/internal/config"
	"github.com/zinc-sig/pst/internal/orchestrator"
	"github.com/zinc-sig/pst/internal/upload"
)

// Format selects how a result is printed
type Format string

const (
	FormatURL     Format = "url"
	FormatJSON    Format = "json"
	FormatVerbose Format = "verbose"
)

const (
	heavyRule = "========================================"
	lightRule = "----------------------------------------"
)

// ParseFormat validates an --output value
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatURL, FormatJSON, FormatVerbose:
		return f, nil
	case "":
		return FormatURL, nil
	}
	return "", fmt.Errorf("invalid output format %q: must be url, json or verbose", s)
}

// Printer writes results to stdout and diagnostics to stderr
type Printer struct {
	out    io.Writer
	errOut io.Writer
	green  *color.Color
	red    *color.Color
	yellow *color.Color
	bold   *color.Color
}

// NewPrinter creates a printer. Colors are only emitted when colorize is set.
func NewPrinter(out, errOut io.Writer, colorize bool) *Printer {
	p := &Printer{
		out:    out,
		errOut: errOut,
		green:  color.New(color.FgGreen),
		red:    color.New(color.FgRed),
		yellow: color.New(color.FgYellow),
		bold:   color.New(color.Bold),
	}
	for _, c := range []*color.Color{p.green, p.red, p.yellow, p.bold} {
		if colorize {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Print renders res in the given format
func (p *Printer) Print(res *orchestrator.Result, format Format) error {
	switch format {
	case FormatJSON:
		return p.printJSON(res)
	case FormatVerbose:
		p.printVerbose(res)
		return nil
	default:
		p.printURL(res)
		return nil
	}
}

func (p *Printer) printURL(res *orchestrator.Result) {
	if res.Succeeded() {
		fmt.Fprintln(p.out, res.URL)
		return
	}
	fmt.Fprintf(p.errOut, "%s %s\n", p.red.Sprint("Error:"), res.Err)
}

func (p *Printer) printJSON(res *orchestrator.Result) error {
	data, err := json.Marshal(NewResult(res))
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Fprintln(p.out, string(data))
	return nil
}

func (p *Printer) printVerbose(res *orchestrator.Result) {
	w := p.errOut
	fmt.Fprintln(w, heavyRule)
	fmt.Fprintln(w, "Upload Details")
	fmt.Fprintln(w, heavyRule)
	c := res.Classification
	fmt.Fprintf(w, "File:       %s\n", c.Filename)
	fmt.Fprintf(w, "Kind:       %s\n", c.Kind)
	if c.MIME != "" {
		fmt.Fprintf(w, "MIME:       %s\n", c.MIME)
	}
	if res.Group != "" {
		fmt.Fprintf(w, "Group:      %s\n", res.Group)
	}
	if len(res.Candidates) > 0 {
		fmt.Fprintf(w, "Candidates: %s\n", strings.Join(res.Candidates, ", "))
	}
	fmt.Fprintln(w, lightRule)
	fmt.Fprintln(w, "Attempts:")
	fmt.Fprintln(w, lightRule)
	if len(res.Attempts) == 0 {
		fmt.Fprintln(w, "(none)")
	}
	for i, a := range res.Attempts {
		status := p.green.Sprint("ok")
		detail := ""
		retried := i+1 < len(res.Attempts) && res.Attempts[i+1].Provider == a.Provider
		switch {
		case a.Success:
		case retried:
			status = p.yellow.Sprint("retry")
			detail = " " + a.Err.Error()
		default:
			status = p.red.Sprint("failed")
			detail = " " + a.Err.Error()
		}
		fmt.Fprintf(w, "%2d. %-12s try %d  %8s  %s%s\n",
			i+1, a.Provider, a.Retry+1, a.Duration.Round(time.Millisecond), status, detail)
	}
	fmt.Fprintln(w, lightRule)
	fmt.Fprintln(w, "Result:")
	fmt.Fprintln(w, lightRule)
	if res.Succeeded() {
		fmt.Fprintf(w, "Status:     %s\n", p.green.Sprint(res.Status))
		fmt.Fprintf(w, "Provider:   %s\n", res.Provider)
		fmt.Fprintf(w, "URL:        %s\n", p.bold.Sprint(res.URL))
	} else {
		fmt.Fprintf(w, "Status:     %s\n", p.red.Sprint(res.Status))
		fmt.Fprintf(w, "Reason:     %s\n", res.Err.Reason)
		fmt.Fprintf(w, "Error:      %s\n", res.Err)
	}
	fmt.Fprintf(w, "Duration:   %s\n", res.Duration.Round(time.Millisecond))
	fmt.Fprintln(w, heavyRule)

	if res.Succeeded() {
		fmt.Fprintln(p.out, res.URL)
	}
}

// PlanDetails is what a dry run prints
type PlanDetails struct {
	Plan           *orchestrator.Plan
	Schedule       []time.Duration
	AttemptTimeout time.Duration
	Deadline       time.Duration
}

// PrintPlan prints the classification and candidate list of a dry run
func (p *Printer) PrintPlan(d PlanDetails) {
	w := p.errOut
	c := d.Plan.Classification
	fmt.Fprintln(w, heavyRule)
	fmt.Fprintln(w, "Upload Plan (DRY RUN)")
	fmt.Fprintln(w, heavyRule)
	fmt.Fprintf(w, "File:       %s\n", c.Filename)
	fmt.Fprintf(w, "Size:       %s\n", humanize.IBytes(uint64(d.Plan.Size)))
	fmt.Fprintf(w, "Kind:       %s\n", c.Kind)
	if c.MIME != "" {
		fmt.Fprintf(w, "MIME:       %s\n", c.MIME)
	}
	if d.Plan.Group != "" {
		fmt.Fprintf(w, "Group:      %s\n", d.Plan.Group)
	}
	fmt.Fprintln(w, lightRule)
	fmt.Fprintln(w, "Candidates:")
	fmt.Fprintln(w, lightRule)
	for i, name := range d.Plan.Candidates {
		fmt.Fprintf(w, "%2d. %s\n", i+1, name)
	}
	fmt.Fprintln(w, lightRule)
	if d.AttemptTimeout > 0 {
		fmt.Fprintf(w, "Attempt Timeout: %s\n", d.AttemptTimeout)
	}
	if d.Deadline > 0 {
		fmt.Fprintf(w, "Deadline:        %s\n", d.Deadline)
	}
	if len(d.Schedule) > 0 {
		delays := make([]string, len(d.Schedule))
		for i, s := range d.Schedule {
			delays[i] = s.String()
		}
		fmt.Fprintf(w, "Retry Delays:    %s\n", strings.Join(delays, ", "))
	}
	fmt.Fprintln(w, "[DRY RUN] Nothing was uploaded")
	fmt.Fprintln(w, heavyRule)
}

// AdapterLookup finds the adapter built for an enabled provider
type AdapterLookup interface {
	Adapter(name string) (upload.Adapter, bool)
}

// PrintProviders lists the configured providers and groups on stdout.
// Limits of enabled providers come from their built adapters, so service
// defaults are shown; disabled ones only show what the file sets.
func (p *Printer) PrintProviders(cfg *config.Config, adapters AdapterLookup) {
	w := p.out
	fmt.Fprintln(w, heavyRule)
	fmt.Fprintln(w, "Providers")
	fmt.Fprintln(w, heavyRule)
	for _, pr := range cfg.Providers {
		state := p.green.Sprint("enabled")
		limit, accepts := "-", "-"
		if a, ok := adapters.Adapter(pr.Name); ok {
			limit, accepts = describeCapabilities(a.Capabilities())
		} else {
			state = p.red.Sprint("disabled")
			if n := pr.MaxSizeBytes(); n > 0 {
				limit = humanize.IBytes(uint64(n))
			}
			if len(pr.Accepts) > 0 {
				accepts = strings.Join(pr.Accepts, ", ")
			}
		}
		fmt.Fprintf(w, "%-12s %-9s priority %-3d max %-10s accepts %-13s %s\n",
			pr.Name, pr.Type, pr.Priority, limit, accepts, state)
	}

	fmt.Fprintln(w, lightRule)
	fmt.Fprintln(w, "Groups")
	fmt.Fprintln(w, lightRule)
	names := make([]string, 0, len(cfg.ProviderGroups))
	for name := range cfg.ProviderGroups {
		names = append(names, name)
	}
	sort.Strings(names)
	if len(names) == 0 {
		fmt.Fprintln(w, "(none)")
	}
	for _, name := range names {
		fmt.Fprintf(w, "%-12s %s\n", name, strings.Join(cfg.ProviderGroups[name].Providers, " -> "))
	}
	fmt.Fprintln(w, heavyRule)
}

func describeCapabilities(c upload.Capabilities) (limit, accepts string) {
	limit = "unlimited"
	if c.MaxSizeBytes > 0 {
		limit = humanize.IBytes(uint64(c.MaxSizeBytes))
	}
	kinds := make([]string, len(c.Accepts))
	for i, k := range c.Accepts {
		kinds[i] = k.String()
	}
	return limit, strings.Join(kinds, ", ")
}
