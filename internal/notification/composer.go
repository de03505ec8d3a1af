package notification

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"text/template"
)

// DefaultProductTag is the bracketed tag that prefixes every subject line.
const DefaultProductTag = "CruiseControl"

// DefaultDashboardNote is appended to bodies that fall back to inline build
// output because no dashboard URL is configured.
const DefaultDashboardNote = "Note: if you set dashboard_url in the site configuration " +
	"(BUILDNOTIFY_DASHBOARD_URL), you'd see a link to the build page here instead of the build log."

var (
	// ErrNoFromAddress is returned when neither the notifier nor the site
	// configuration supplies a sender address.
	ErrNoFromAddress = errors.New("notification: no from address configured")
	// ErrNoBuild is returned for events that carry no build.
	ErrNoBuild = errors.New("notification: event has no build")
)

var bodyTmpl = template.Must(template.New("body").Parse(`{{.Headline}}

{{if .BuildURL}}See {{.BuildURL}} for details.
{{else}}{{.Output}}
{{- if .Note}}

{{.Note}}{{end}}
{{end}}`))

// Composer turns build events into e-mail messages.
type Composer struct {
	productTag    string
	dashboardNote string
}

// NewComposer returns a Composer. Empty arguments select DefaultProductTag
// and DefaultDashboardNote.
func NewComposer(productTag, dashboardNote string) *Composer {
	if strings.TrimSpace(productTag) == "" {
		productTag = DefaultProductTag
	}
	if strings.TrimSpace(dashboardNote) == "" {
		dashboardNote = DefaultDashboardNote
	}
	return &Composer{productTag: productTag, dashboardNote: dashboardNote}
}

// ProductTag returns the tag used in subject lines.
func (c *Composer) ProductTag() string { return c.productTag }

// Subject returns the subject line for e, e.g.
// "[CruiseControl] myproj build 5 failed".
func (c *Composer) Subject(e Event) string {
	b := e.subject()
	return fmt.Sprintf("[%s] %s build %d %s", c.productTag, b.ProjectName(), b.Label(), verb(e))
}

// Compose builds the message for e. recipients are copied, from must be the
// already resolved sender and dashboardURL may be empty.
func (c *Composer) Compose(e Event, recipients []string, from, dashboardURL string) (Message, error) {
	b := e.subject()
	if b == nil {
		return Message{}, ErrNoBuild
	}
	if strings.TrimSpace(from) == "" {
		return Message{}, ErrNoFromAddress
	}

	data := struct {
		Headline string
		BuildURL string
		Output   string
		Note     string
	}{Headline: headline(e)}
	if dashboardURL != "" {
		data.BuildURL = BuildURL(dashboardURL, b.ProjectName(), b.Label())
	} else {
		data.Output = b.Output()
		data.Note = c.dashboardNote
	}

	var buf bytes.Buffer
	if err := bodyTmpl.Execute(&buf, data); err != nil {
		return Message{}, fmt.Errorf("rendering message body: %w", err)
	}

	return Message{
		Subject: c.Subject(e),
		Body:    buf.String(),
		To:      append([]string(nil), recipients...),
		From:    from,
	}, nil
}

// BuildURL returns the dashboard page of a build:
// <dashboardURL>/builds/<project>/<label>.
func BuildURL(dashboardURL, project string, label int) string {
	return strings.TrimRight(dashboardURL, "/") + "/builds/" + url.PathEscape(project) + "/" + strconv.Itoa(label)
}

// resolveFrom picks the notifier's own sender when set, otherwise asks site
// for its default at call time.
func resolveFrom(own string, site SiteConfig) (string, error) {
	if from := strings.TrimSpace(own); from != "" {
		return from, nil
	}
	if site != nil {
		if from := strings.TrimSpace(site.DefaultFromAddress()); from != "" {
			return from, nil
		}
	}
	return "", ErrNoFromAddress
}

func verb(e Event) string {
	if e.Kind() == KindFixed {
		return "fixed"
	}
	return "failed"
}

func headline(e Event) string {
	if e.Kind() == KindFixed {
		return "The build has been fixed."
	}
	return "The build failed."
}
