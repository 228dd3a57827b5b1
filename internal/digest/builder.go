package digest

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"amdesk/internal/approval"
	"amdesk/internal/mandate"
	"amdesk/internal/rfp"
	"amdesk/internal/user"
)

// Each digest section shows at most this many items.
const sectionLimit = 8

// BuildInput is everything Build needs. Breaches are expected pre-filtered to
// Open and sorted newest-first by the aggregator.
type BuildInput struct {
	User      user.User
	RFPs      []rfp.RFP
	Approvals []approval.Approval
	Breaches  []mandate.FlatBreach
}

// Build assembles the digest subject and HTML body. Pure function: no store
// access, no clock beyond the generated-at footer. Every business-supplied
// string passes through HTML escaping before concatenation.
func Build(in BuildInput) (subject, bodyHTML string) {
	dueSoon := make([]rfp.RFP, 0, sectionLimit)
	for _, r := range in.RFPs {
		if r.Due != "" {
			dueSoon = append(dueSoon, r)
		}
	}
	// Due is an ISO date string, so lexicographic ascending is chronological.
	sort.SliceStable(dueSoon, func(i, j int) bool { return dueSoon[i].Due < dueSoon[j].Due })
	if len(dueSoon) > sectionLimit {
		dueSoon = dueSoon[:sectionLimit]
	}

	pending := make([]approval.Approval, 0, sectionLimit)
	for _, a := range in.Approvals {
		if a.Status == approval.StatusPending {
			pending = append(pending, a)
			if len(pending) == sectionLimit {
				break
			}
		}
	}

	open := make([]mandate.FlatBreach, 0, sectionLimit)
	for _, b := range in.Breaches {
		if b.Status == mandate.StatusOpen {
			open = append(open, b)
			if len(open) == sectionLimit {
				break
			}
		}
	}

	var rfpRows strings.Builder
	for _, r := range dueSoon {
		fmt.Fprintf(&rfpRows,
			`<div><b>%s</b> - %s <span style="color:#6b7280">(%s)</span> • Due %s</div>`,
			esc(r.ID), esc(r.Title), esc(r.Client), esc(r.Due))
	}

	var approvalRows strings.Builder
	for _, a := range pending {
		label := a.ID
		if label == "" {
			label = "Approval"
		}
		summary := a.Summary
		if summary == "" {
			summary = "Pending approval"
		}
		fmt.Fprintf(&approvalRows, `<div><b>%s</b> - %s</div>`, esc(label), esc(summary))
	}

	var breachRows strings.Builder
	for _, b := range open {
		color := "#92400e"
		if b.Severity == mandate.SeverityCritical {
			color = "#b91c1c"
		}
		fmt.Fprintf(&breachRows,
			`<div><b>%s</b> - %s • <span style="color:%s">%s</span></div>`,
			esc(b.MandateID), esc(b.Type), color, esc(string(b.Severity)))
	}

	greeting := in.User.Name
	if greeting == "" {
		greeting = in.User.Email
	}

	var body strings.Builder
	body.WriteString(`<table width="100%" cellpadding="0" cellspacing="0" style="max-width:680px;margin:0 auto;">`)
	body.WriteString(`<tr><td style="font:600 18px system-ui,Arial">Daily Digest</td></tr>`)
	fmt.Fprintf(&body,
		`<tr><td style="color:#6b7280;font:14px system-ui,Arial">Hi %s, here's your snapshot.</td></tr>`,
		esc(greeting))
	body.WriteString(`<tr><td style="height:10px;"></td></tr>`)
	body.WriteString(section("RFPs due soon (next 14 days)", rfpRows.String()))
	body.WriteString(section("Pending approvals", approvalRows.String()))
	body.WriteString(section("Open mandate breaches", breachRows.String()))
	fmt.Fprintf(&body,
		`<tr><td style="color:#9ca3af;font:12px system-ui,Arial">Generated %s</td></tr>`,
		time.Now().UTC().Format(time.RFC1123))
	body.WriteString(`</table>`)

	return "AM Desk Workspace - Daily Digest", body.String()
}

func section(title, rowsHTML string) string {
	if rowsHTML == "" {
		rowsHTML = `<div style="color:#6b7280">No items</div>`
	}
	return fmt.Sprintf(
		`<tr><td style="font:600 16px system-ui,Arial;margin:0 0 6px;">%s</td></tr>`+
			`<tr><td style="padding:8px 12px;border:1px solid #e5e7eb;border-radius:8px;background:#fafafa;">%s</td></tr>`+
			`<tr><td style="height:12px;"></td></tr>`,
		esc(title), rowsHTML)
}

func esc(s string) string {
	return html.EscapeString(s)
}
