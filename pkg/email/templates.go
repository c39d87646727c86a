package email

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"time"
)

// ContactNotificationData is what the admin sees about a new submission.
type ContactNotificationData struct {
	ID           string
	FullName     string
	Email        string
	Mobile       string
	ProjectTitle string
	Description  string
	CreatedAt    time.Time
	Extra        map[string]any
}

// BuildContactNotificationEmail tells the admin a contact form came in.
// Reply-To is set to the submitter when they left an address.
func BuildContactNotificationEmail(to string, data ContactNotificationData) Message {
	subject := fmt.Sprintf("New project enquiry: %s", data.ProjectTitle)

	rows := [][2]string{
		{"Project", data.ProjectTitle},
		{"Name", data.FullName},
		{"Email", data.Email},
		{"Mobile", data.Mobile},
		{"Description", data.Description},
	}
	keys := make([]string, 0, len(data.Extra))
	for k := range data.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		rows = append(rows, [2]string{k, fmt.Sprint(data.Extra[k])})
	}
	rows = append(rows,
		[2]string{"Received", data.CreatedAt.UTC().Format(time.RFC1123)},
		[2]string{"ID", data.ID},
	)

	var text, htmlRows strings.Builder
	text.WriteString("A new message arrived through the contact form.\n\n")
	for _, r := range rows {
		if r[1] == "" {
			continue
		}
		fmt.Fprintf(&text, "%s: %s\n", r[0], r[1])
		fmt.Fprintf(&htmlRows, `<tr><td style="padding: 4px 12px 4px 0; color: #6b7280;">%s</td><td style="padding: 4px 0;">%s</td></tr>`,
			html.EscapeString(r[0]), html.EscapeString(r[1]))
	}

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: #2563eb;">New project enquiry</h2>
    <table>%s</table>
</body>
</html>`, htmlRows.String())

	return Message{
		To:      []string{to},
		ReplyTo: data.Email,
		Subject: subject,
		Text:    text.String(),
		HTML:    htmlBody,
	}
}
