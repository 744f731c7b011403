package calendar

import (
	"strings"
	"time"

	"fetchbot/internal/extract"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"
)

// Portal selectors. They track the Compass and Microsoft sign-in pages and
// are the first thing to check when a login starts failing.
const (
	selSignIn        = `[name=ctl10]`
	selEmail         = `#i0116`
	selNext          = `#idSIButton9`
	selPassword      = `#i0118`
	selStaySignedIn  = `#idBtn_Back`
	selCalendarSlots = `.ext-cal-day-col-gutter`
)

const (
	stepLaunch         = "launch browser"
	stepNavigate       = "open login page"
	stepSignIn         = "choose sign-in"
	stepEmail          = "enter email"
	stepSubmitEmail    = "submit email"
	stepPassword       = "enter password"
	stepSubmitPassword = "submit password"
	stepCalendar       = "wait for calendar"
	stepParse          = "read classes"
	stepSession        = "session"
)

// promptWait bounds the optional "stay signed in?" prompt.
const promptWait = 3 * time.Second

type step struct {
	name string
	run  func(p *rod.Page) error
}

func loginSteps(loginURL string, creds Credentials) []step {
	return []step{
		{stepNavigate, func(p *rod.Page) error {
			if err := p.Navigate(loginURL); err != nil {
				return err
			}
			return p.WaitLoad()
		}},
		{stepSignIn, click(selSignIn)},
		{stepEmail, fill(selEmail, creds.Email)},
		{stepSubmitEmail, click(selNext)},
		{stepPassword, fill(selPassword, creds.Password)},
		{stepSubmitPassword, func(p *rod.Page) error {
			el, err := p.Element(selPassword)
			if err != nil {
				return err
			}
			return el.Type(input.Enter)
		}},
	}
}

func click(selector string) func(p *rod.Page) error {
	return func(p *rod.Page) error {
		el, err := p.Element(selector)
		if err != nil {
			return err
		}
		return el.Click(proto.InputMouseButtonLeft, 1)
	}
}

func fill(selector, text string) func(p *rod.Page) error {
	return func(p *rod.Page) error {
		el, err := p.Element(selector)
		if err != nil {
			return err
		}
		return el.Input(text)
	}
}

// dismissStaySignedIn answers "no" to the prompt when it shows up.
func dismissStaySignedIn(p *rod.Page) {
	el, err := p.Timeout(promptWait).Element(selStaySignedIn)
	if err != nil {
		return
	}
	_ = el.Click(proto.InputMouseButtonLeft, 1)
}

func calendarHTML(p *rod.Page) (string, error) {
	el, err := p.Element(selCalendarSlots)
	if err != nil {
		return "", err
	}
	return el.HTML()
}

// parseClasses returns the trimmed text of the first span in every div of
// the calendar gutter, in document order. Nested divs repeat their span.
func parseClasses(html string) ([]string, error) {
	doc, err := extract.Parse([]byte(html))
	if err != nil {
		return nil, err
	}
	classes := []string{}
	doc.Find("div").Each(func(_ int, div *goquery.Selection) {
		span := div.Find("span").First()
		if span.Length() == 0 {
			return
		}
		classes = append(classes, strings.TrimSpace(span.Text()))
	})
	return classes, nil
}
