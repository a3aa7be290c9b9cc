package handler

import (
	"html/template"
	"log/slog"
	"net/http"
)

const statusSucceeded = "succeeded"

var confirmTemplate = template.Must(template.New("confirm").Parse(`<!DOCTYPE html>
<html>
<head><title>Ramen Co.</title></head>
<body>
{{if .Succeeded}}
<h2>Order Confirmed!</h2>
<p>Thank you for your order. Check your email for more details.</p>
<p>If you don't see the email in your inbox, please check your spam folder for a message from kanishka@ateulerlabs.com</p>
{{else}}
<h2>Payment Failed</h2>
<p>Sorry, there was an issue processing your payment. Please try again or contact support.</p>
{{end}}
</body>
</html>
`))

// ConfirmationHandler renders the post-payment landing page. Anything other
// than status=succeeded, including a missing parameter, shows the failure
// copy.
func ConfirmationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := struct{ Succeeded bool }{
			Succeeded: r.URL.Query().Get("status") == statusSucceeded,
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := confirmTemplate.Execute(w, data); err != nil {
			slog.Error("confirmation render failed", "error", err)
		}
	}
}
