package notify

import (
	"html/template"

	"github.com/booktrackerapp/booktracker-server/internal/domain"
)

// emailData is the template payload for the availability email.
type emailData struct {
	Title    string
	Author   string
	ISBN     string
	CoverURL string
	Link     string
}

// availableEmail maps a tracked search onto the email payload. The link
// prefers the canonical catalog record and is empty when neither a record
// nor a search page is known, which the template tolerates.
func availableEmail(search *domain.TrackedSearch) emailData {
	return emailData{
		Title:    search.Title,
		Author:   search.Author,
		ISBN:     search.ISBN,
		CoverURL: search.CoverURL,
		Link:     search.CatalogURL,
	}
}

var availableTemplate = template.Must(template.New("available").Parse(`<html>
<body style="font-family: sans-serif; color: #222;">
  <h2>Good news!</h2>
  <p><strong>{{.Title}}</strong> by {{.Author}} is now available at your library.</p>
  {{if .CoverURL}}<p><img src="{{.CoverURL}}" alt="Cover of {{.Title}}" style="max-height: 200px;"></p>{{end}}
  <p>ISBN: {{.ISBN}}</p>
  {{if .Link}}<p><a href="{{.Link}}">View it in the catalog</a></p>{{end}}
  <p style="color: #888; font-size: 12px;">You are receiving this because you tracked this book. This is the only notice you will get for it.</p>
</body>
</html>`))
