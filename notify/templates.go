package notify

import (
	"bytes"
	"html/template"
)

const appName = "OrderEase"

var layout = template.Must(template.New("layout").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"><title>{{.Title}}</title></head>
<body style="font-family: Arial, sans-serif; color: #333; background: #f4f4f4;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px; background: #fff; border-radius: 8px;">
    <h2 style="color: #f97316;">{{.App}}</h2>
    <h3>{{.Title}}</h3>
    {{range .Lines}}<p>{{.}}</p>{{end}}
    {{if .Link}}<p style="text-align: center;"><a href="{{.Link}}" style="display: inline-block; padding: 12px 24px; background: #f97316; color: #fff; text-decoration: none; border-radius: 4px;">{{.LinkText}}</a></p>
    <p style="font-size: 0.9em;">{{.Link}}</p>{{end}}
    <p style="font-size: 0.8em; color: #777;">This email was sent automatically, please do not reply.</p>
  </div>
</body>
</html>`))

type message struct {
	Subject  string
	Title    string
	Lines    []string
	Link     string
	LinkText string
}

func (m message) render() (string, error) {
	var buf bytes.Buffer
	err := layout.Execute(&buf, struct {
		message
		App string
	}{m, appName})
	return buf.String(), err
}

func welcomeMessage(name string) message {
	return message{
		Subject: "Welcome to " + appName,
		Title:   "Welcome, " + name + "!",
		Lines: []string{
			"Your account is verified and ready to use.",
			"Browse restaurants near you and place your first order.",
		},
	}
}

func passwordResetMessage(resetURL string) message {
	return message{
		Subject:  "Reset your password",
		Title:    "Password reset request",
		Lines:    []string{"We received a request to reset your password. The link below expires in one hour.", "If you did not ask for this, ignore this email."},
		Link:     resetURL,
		LinkText: "Reset password",
	}
}

func resetSuccessMessage() message {
	return message{
		Subject: "Password Reset Successful",
		Title:   "Your password was changed",
		Lines:   []string{"Your password has been reset. If this was not you, contact support immediately."},
	}
}
