package render

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/a11yscan/internal/model"
	"github.com/nao1215/a11yscan/internal/sanitize"
)

const maxElementText = 100

// landmarkSelector matches elements that let users skip to a region.
const landmarkSelector = `[role="main"], [role="navigation"], [role="banner"], [role="contentinfo"], main, nav`

var (
	skipTextPattern  = regexp.MustCompile(`(?i)skip|main|content`)
	skipLabelPattern = regexp.MustCompile(`(?i)skip.*content|skip.*main`)
	timerPattern     = regexp.MustCompile(`(?i)setTimeout|setInterval`)
	autoPattern      = regexp.MustCompile(`(?i)autoplay|auto.*play|carousel|slideshow`)
	animationPattern = regexp.MustCompile(`(?i)animation|transition`)
)

// interactiveTags are always collected as interactive elements.
var interactiveTags = map[string]bool{
	"a": true, "button": true, "input": true, "select": true,
	"textarea": true, "details": true, "summary": true,
}

// focusableByDefault are in the tab order without a tabindex attribute.
var focusableByDefault = map[string]bool{
	"a": true, "area": true, "button": true, "input": true, "select": true,
	"textarea": true, "summary": true, "iframe": true, "object": true,
}

// formControls can carry the disabled state.
var formControls = map[string]bool{
	"button": true, "input": true, "select": true, "textarea": true,
	"optgroup": true, "option": true, "fieldset": true,
}

// Extract reduces a parsed document to a snapshot. base resolves relative
// links and image sources.
func Extract(doc *goquery.Document, base *url.URL) *model.PageSnapshot {
	s := &model.PageSnapshot{
		Title:               strings.TrimSpace(doc.Find("title").First().Text()),
		Headings:            []model.Heading{},
		Images:              []model.Image{},
		InteractiveElements: []model.InteractiveElement{},
		FormInputs:          []model.FormInput{},
		Links:               []model.Link{},
	}
	if base != nil {
		s.URL = base.String()
	}

	doc.Find("*").Each(func(_ int, sel *goquery.Selection) {
		tag := goquery.NodeName(sel)
		if el, ok := interactiveElement(tag, sel); ok {
			s.InteractiveElements = append(s.InteractiveElements, el)
		}
		if isAnimated(tag, sel) {
			s.Animations++
		}
	})

	doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		alt := sel.AttrOr("alt", "")
		s.Images = append(s.Images, model.Image{
			Src:    resolve(base, sel.AttrOr("src", "")),
			HasAlt: alt != "",
			Title:  sel.AttrOr("title", ""),
		})
	})

	for level := 1; level <= 6; level++ {
		doc.Find("h" + strconv.Itoa(level)).Each(func(_ int, sel *goquery.Selection) {
			s.Headings = append(s.Headings, model.Heading{
				Level: level,
				Text:  elementText(sel),
			})
		})
	}

	doc.Find("input, select, textarea").Each(func(_ int, sel *goquery.Selection) {
		if in, ok := formInput(doc, sel); ok {
			s.FormInputs = append(s.FormInputs, in)
		}
	})

	doc.Find("a").Each(func(_ int, sel *goquery.Selection) {
		s.Links = append(s.Links, link(base, sel))
	})

	s.HasLandmarks = doc.Find(landmarkSelector).Length() > 0

	scripts := strings.Join(doc.Find("script").Map(func(_ int, sel *goquery.Selection) string {
		return sel.Text()
	}), " ")
	s.HasTimers = timerPattern.MatchString(scripts)
	s.HasAutoAdvance = autoPattern.MatchString(scripts)

	return s
}

func interactiveElement(tag string, sel *goquery.Selection) (model.InteractiveElement, bool) {
	_, hasOnclick := sel.Attr("onclick")
	role, hasRole := sel.Attr("role")
	tabIndex := tabIndexOf(tag, sel)

	if !interactiveTags[tag] && !hasOnclick && !hasRole && tabIndex < 0 {
		return model.InteractiveElement{}, false
	}

	_, disabled := sel.Attr("disabled")
	return model.InteractiveElement{
		Tag:            tag,
		Text:           elementText(sel),
		TabIndex:       tabIndex,
		AriaLabel:      sel.AttrOr("aria-label", ""),
		AriaLabelledBy: sel.AttrOr("aria-labelledby", ""),
		Role:           role,
		Disabled:       disabled && formControls[tag],
		HasOnclick:     hasOnclick,
	}, true
}

// tabIndexOf returns the parsed tabindex attribute, or the default for the
// tag when the attribute is missing or not an integer.
func tabIndexOf(tag string, sel *goquery.Selection) int {
	if raw, ok := sel.Attr("tabindex"); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
			return n
		}
	}
	if focusableByDefault[tag] {
		return 0
	}
	return -1
}

func isAnimated(tag string, sel *goquery.Selection) bool {
	if tag == "marquee" || tag == "blink" {
		return true
	}
	return animationPattern.MatchString(sel.AttrOr("style", ""))
}

// formInput describes an input, select or textarea. Hidden inputs are not
// user-facing and are skipped.
func formInput(doc *goquery.Document, sel *goquery.Selection) (model.FormInput, bool) {
	tag := goquery.NodeName(sel)
	typ := tag
	switch tag {
	case "input":
		typ = strings.ToLower(strings.TrimSpace(sel.AttrOr("type", "text")))
		if typ == "" {
			typ = "text"
		}
		if typ == "hidden" {
			return model.FormInput{}, false
		}
	case "select":
		typ = "select-one"
		if _, multiple := sel.Attr("multiple"); multiple {
			typ = "select-multiple"
		}
	}

	ariaLabel := sel.AttrOr("aria-label", "")
	label := labelText(doc, sel)
	if label == "" {
		label = ariaLabel
	}
	if label == "" {
		label = strings.TrimSpace(sel.AttrOr("placeholder", ""))
	}

	return model.FormInput{
		Type:           typ,
		Name:           sel.AttrOr("name", ""),
		Label:          label,
		AriaLabel:      ariaLabel,
		AriaLabelledBy: sel.AttrOr("aria-labelledby", ""),
	}, true
}

// labelText returns the text of the first label associated with sel,
// either through label[for] or by wrapping it.
func labelText(doc *goquery.Document, sel *goquery.Selection) string {
	if id := sel.AttrOr("id", ""); id != "" {
		forLabel := doc.Find("label").FilterFunction(func(_ int, l *goquery.Selection) bool {
			return l.AttrOr("for", "") == id
		}).First()
		if forLabel.Length() > 0 {
			return strings.TrimSpace(forLabel.Text())
		}
	}
	if wrapping := sel.Closest("label"); wrapping.Length() > 0 {
		return strings.TrimSpace(wrapping.Text())
	}
	return ""
}

func link(base *url.URL, sel *goquery.Selection) model.Link {
	text := elementText(sel)
	ariaLabel := sel.AttrOr("aria-label", "")

	raw, hasHref := sel.Attr("href")
	href := "#"
	if hasHref {
		href = resolve(base, raw)
	}

	skip := (hasHref && strings.Contains(href, "#") && skipTextPattern.MatchString(text)) ||
		skipLabelPattern.MatchString(ariaLabel)

	return model.Link{
		Href:       href,
		Text:       text,
		AriaLabel:  ariaLabel,
		IsSkipLink: skip,
	}
}

// elementText is the trimmed text content, clipped for the snapshot.
func elementText(sel *goquery.Selection) string {
	return sanitize.Clip(strings.TrimSpace(sel.Text()), maxElementText)
}

// resolve makes ref absolute against base. Unparseable references are
// returned as they are.
func resolve(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	if base == nil {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(u).String()
}
