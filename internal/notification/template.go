package notification

import (
	"bytes"
	"html/template"
	"strings"
)

// emailTmpl is the HTML alternative part of every build e-mail.
// {{.Subject}} and {{.Body}} are auto-escaped by html/template.
var emailTmpl = template.Must(template.New("email").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width,initial-scale=1.0">
  <title>{{.Subject}}</title>
</head>
<body style="margin:0;padding:0;background-color:#f3f4f6;
     font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',Roboto,Arial,sans-serif;">
  <table width="100%" cellpadding="0" cellspacing="0" role="presentation"
         style="background-color:#f3f4f6;padding:32px 16px;">
    <tr>
      <td align="center">
        <table width="640" cellpadding="0" cellspacing="0" role="presentation"
               style="max-width:640px;width:100%;">
          <tr>
            <td style="background-color:{{.Accent}};padding:18px 32px;border-radius:8px 8px 0 0;">
              <p style="margin:0;font-size:16px;font-weight:600;color:#ffffff;">{{.Subject}}</p>
            </td>
          </tr>
          <tr>
            <td style="background-color:#ffffff;padding:28px 32px;border-radius:0 0 8px 8px;">
              <pre style="margin:0;font-size:13px;line-height:1.6;color:#1f2937;
                          white-space:pre-wrap;word-break:break-word;
                          font-family:Menlo,Consolas,monospace;">{{.Body}}</pre>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>
`))

// buildEmailHTML renders the HTML part for a subject and plain-text body.
// Failed builds get a red header, everything else green.
func buildEmailHTML(subject, body string) (string, error) {
	accent := template.CSS("#15803d")
	if strings.HasSuffix(subject, " failed") {
		accent = template.CSS("#b91c1c")
	}

	data := struct {
		Subject, Body string
		Accent        template.CSS
	}{subject, body, accent}

	var buf bytes.Buffer
	err := emailTmpl.Execute(&buf, data)
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
