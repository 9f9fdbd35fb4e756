package model

// PageSnapshot holds the structural facts extracted from a page at one
// instant. The renderer fills it in; the rule engine only reads it.
type PageSnapshot struct {
	// URL is the address that was rendered.
	URL string `json:"url"`

	// Title is the document title.
	Title string `json:"title,omitempty"`

	// Headings are grouped by level (all h1, then all h2, ...), and in
	// document order within a level.
	Headings []Heading `json:"headings"`

	Images              []Image              `json:"images"`
	InteractiveElements []InteractiveElement `json:"interactiveElements"`
	FormInputs          []FormInput          `json:"formInputs"`
	Links               []Link               `json:"links"`

	// HasTimers is true when inline scripts reference setTimeout or setInterval.
	HasTimers bool `json:"hasTimers"`

	// HasAutoAdvance is true when inline scripts mention autoplay, carousels
	// or slideshows.
	HasAutoAdvance bool `json:"hasAutoAdvance"`

	// HasLandmarks is true when the page has a main/nav element or an ARIA
	// landmark role.
	HasLandmarks bool `json:"hasLandmarks"`

	// Animations counts elements that carry animation or transition signals.
	Animations int `json:"animations"`
}

// Heading is an h1-h6 element.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

// Image is an img element.
type Image struct {
	Src string `json:"src,omitempty"`

	// HasAlt is true when the alt attribute is present and non-empty.
	HasAlt bool   `json:"hasAlt"`
	Title  string `json:"title,omitempty"`
}

// InteractiveElement is any element a user can act on: native controls,
// elements with a role or onclick handler, and focusable elements.
type InteractiveElement struct {
	Tag            string `json:"tag"`
	Text           string `json:"text,omitempty"`
	TabIndex       int    `json:"tabIndex"`
	AriaLabel      string `json:"ariaLabel,omitempty"`
	AriaLabelledBy string `json:"ariaLabelledBy,omitempty"`
	Role           string `json:"role,omitempty"`
	Disabled       bool   `json:"disabled"`
	HasOnclick     bool   `json:"hasOnclick"`
}

// FormInput is an input, select or textarea element.
type FormInput struct {
	Type string `json:"type"`
	Name string `json:"name,omitempty"`

	// Label is the text of the associated label element, falling back to
	// aria-label and then placeholder.
	Label          string `json:"label,omitempty"`
	AriaLabel      string `json:"ariaLabel,omitempty"`
	AriaLabelledBy string `json:"ariaLabelledBy,omitempty"`
}

// Link is an anchor element.
type Link struct {
	Href       string `json:"href"`
	Text       string `json:"text,omitempty"`
	AriaLabel  string `json:"ariaLabel,omitempty"`
	IsSkipLink bool   `json:"isSkipLink"`
}

// HasLevel reports whether the snapshot contains a heading of the given level.
func (s *PageSnapshot) HasLevel(level int) bool {
	for _, h := range s.Headings {
		if h.Level == level {
			return true
		}
	}
	return false
}
