package alerts

import (
	"fmt"
	"html"
	"strings"
	"time"

	"droughtwatch/internal/external"
	"droughtwatch/internal/types"
)

// renderAlertEmail builds the notification email for one fired trigger. Both
// a plain-text and an HTML body are produced; the provider decides which the
// recipient's client renders.
func renderAlertEmail(user *types.User, result types.AlertResult, sentAt time.Time) external.SendInput {
	trigger := result.Trigger
	timestamp := sentAt.Format("2006-01-02 15:04:05 MST")

	return external.SendInput{
		To:       user.Email,
		ToName:   user.Name,
		Subject:  fmt.Sprintf("Drought Alert: %s - %s", trigger.Region, trigger.Name),
		BodyText: renderTextBody(user, result, timestamp),
		BodyHTML: renderHTMLBody(user, result, timestamp),
	}
}

func renderTextBody(user *types.User, result types.AlertResult, timestamp string) string {
	trigger := result.Trigger

	var sb strings.Builder
	sb.WriteString("Drought Alert\n\n")
	fmt.Fprintf(&sb, "Hello %s,\n\n", user.Name)
	fmt.Fprintf(&sb, "Your drought monitoring trigger %q has been activated for %s.\n\n",
		trigger.Name, trigger.Region)
	sb.WriteString("CONDITIONS MET:\n")
	for _, c := range result.ConditionsMet {
		if !c.Met {
			continue
		}
		fmt.Fprintf(&sb, "- %s: %s %s %s\n",
			c.Indicator.Label(),
			formatReading(c.ActualValue, c.Indicator.Unit()),
			c.Operator,
			formatValue(c.Threshold, c.Indicator.Unit()),
		)
	}

	if len(result.Recommendations) > 0 {
		sb.WriteString("\nRECOMMENDED ACTIONS:\n")
		for _, rec := range result.Recommendations {
			fmt.Fprintf(&sb, "- %s\n", rec)
		}
	}

	fmt.Fprintf(&sb, "\nPlease monitor conditions closely and take appropriate action.\n\n---\nThis alert was sent on %s\n", timestamp)
	return sb.String()
}

func renderHTMLBody(user *types.User, result types.AlertResult, timestamp string) string {
	trigger := result.Trigger

	var sb strings.Builder
	sb.WriteString("<html><body>")
	sb.WriteString("<h2>Drought Alert</h2>")
	fmt.Fprintf(&sb, "<p>Hello %s,</p>", html.EscapeString(user.Name))
	fmt.Fprintf(&sb, "<p>Your drought monitoring trigger <strong>%s</strong> has been activated for <strong>%s</strong>.</p>",
		html.EscapeString(trigger.Name), html.EscapeString(trigger.Region))

	sb.WriteString("<h3>Conditions met</h3><table border=\"1\" cellpadding=\"4\">")
	sb.WriteString("<tr><th>Indicator</th><th>Observed</th><th>Condition</th></tr>")
	for _, c := range result.ConditionsMet {
		if !c.Met {
			continue
		}
		fmt.Fprintf(&sb, "<tr><td>%s</td><td>%s</td><td>%s %s</td></tr>",
			html.EscapeString(c.Indicator.Label()),
			html.EscapeString(formatReading(c.ActualValue, c.Indicator.Unit())),
			html.EscapeString(string(c.Operator)),
			html.EscapeString(formatValue(c.Threshold, c.Indicator.Unit())),
		)
	}
	sb.WriteString("</table>")

	if len(result.Recommendations) > 0 {
		sb.WriteString("<h3>Recommended actions</h3><ul>")
		for _, rec := range result.Recommendations {
			fmt.Fprintf(&sb, "<li>%s</li>", html.EscapeString(rec))
		}
		sb.WriteString("</ul>")
	}

	fmt.Fprintf(&sb, "<p><small>This alert was sent on %s</small></p>", timestamp)
	sb.WriteString("</body></html>")
	return sb.String()
}

func formatReading(v *float64, unit string) string {
	if v == nil {
		return "n/a"
	}
	return formatValue(*v, unit)
}

func formatValue(v float64, unit string) string {
	return strings.TrimSpace(fmt.Sprintf("%g %s", v, unit))
}
