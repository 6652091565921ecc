// Package newsletter models email newsletters and renders them with one
// of four visual templates.
package newsletter

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/porticus-lab/go-toolbox/internal/apperr"
)

// Selector is the id of the element an export captures.
const Selector = "newsletter-preview"

type Section struct {
	Title   string `json:"title" yaml:"title"`
	Content string `json:"content" yaml:"content"`
	Image   string `json:"image" yaml:"image"`
}

type CallToAction struct {
	Text string `json:"text" yaml:"text"`
	URL  string `json:"url" yaml:"url"`
}

type SocialLinks struct {
	Facebook  string `json:"facebook" yaml:"facebook"`
	Twitter   string `json:"twitter" yaml:"twitter"`
	Instagram string `json:"instagram" yaml:"instagram"`
	LinkedIn  string `json:"linkedin" yaml:"linkedin"`
}

// Data is the content of one newsletter issue.
type Data struct {
	Title        string       `json:"title" yaml:"title"`
	Subtitle     string       `json:"subtitle" yaml:"subtitle"`
	HeaderImage  string       `json:"headerImage" yaml:"headerImage"`
	CompanyName  string       `json:"companyName" yaml:"companyName"`
	CompanyLogo  string       `json:"companyLogo" yaml:"companyLogo"`
	Date         string       `json:"date" yaml:"date"`
	Greeting     string       `json:"greeting" yaml:"greeting"`
	MainContent  string       `json:"mainContent" yaml:"mainContent"`
	Sections     []Section    `json:"sections" yaml:"sections"`
	CallToAction CallToAction `json:"callToAction" yaml:"callToAction"`
	FooterText   string       `json:"footerText" yaml:"footerText"`
	SocialLinks  SocialLinks  `json:"socialLinks" yaml:"socialLinks"`
}

// Default returns the starter newsletter dated now.
func Default(now time.Time) *Data {
	return &Data{
		Title:       "Monthly Newsletter",
		Subtitle:    "Stay updated with our latest news and updates",
		CompanyName: "Your Company",
		Date:        now.Format("1/2/2006"),
		Greeting:    "Hello subscribers,",
		MainContent: "Welcome to our monthly newsletter! We're excited to share the latest updates and news with you. " +
			"This month has been filled with exciting developments and we can't wait to tell you all about them.",
		Sections: []Section{
			{Title: "Latest News", Content: "We've launched our new website! Check it out and let us know what you think. We've also added new features to our product line."},
			{Title: "Upcoming Events", Content: "Join us for our webinar on digital marketing strategies on June 15th. We'll be discussing the latest trends and how to implement them in your business."},
			{Title: "Featured Product", Content: "Our new product is now available! It's designed to help you streamline your workflow and increase productivity."},
		},
		CallToAction: CallToAction{Text: "Visit Our Website", URL: "https://example.com"},
		FooterText:   "Thank you for subscribing to our newsletter. If you have any questions, please contact us.",
		SocialLinks: SocialLinks{
			Facebook:  "https://facebook.com",
			Twitter:   "https://twitter.com",
			Instagram: "https://instagram.com",
			LinkedIn:  "https://linkedin.com",
		},
	}
}

// Filename returns "Newsletter-YYYY-MM-DD.<ext>" for the given day.
func Filename(now time.Time, ext string) string {
	return fmt.Sprintf("Newsletter-%s.%s", now.UTC().Format("2006-01-02"), ext)
}

// Template is a visual style.
type Template string

const (
	Modern  Template = "modern"
	Classic Template = "classic"
	Minimal Template = "minimal"
	Bold    Template = "bold"
)

// theme holds the colours each template paints with.
type theme struct {
	HeaderBg  template.CSS
	HeaderFg  template.CSS
	Accent    template.CSS
	Button    template.CSS
	FooterBg  template.CSS
	FooterFg  template.CSS
	Link      template.CSS
	Align     template.CSS
	TitleSize template.CSS
}

var themes = map[Template]theme{
	Modern:  {HeaderBg: "#eff6ff", HeaderFg: "#1e40af", Accent: "#1e40af", Button: "#2563eb", FooterBg: "#f3f4f6", FooterFg: "#4b5563", Link: "#2563eb", Align: "center", TitleSize: "24px"},
	Classic: {HeaderBg: "#e5e7eb", HeaderFg: "#111827", Accent: "#111827", Button: "#1f2937", FooterBg: "#e5e7eb", FooterFg: "#4b5563", Link: "#374151", Align: "left", TitleSize: "24px"},
	Minimal: {HeaderBg: "#ffffff", HeaderFg: "#111827", Accent: "#111827", Button: "#111827", FooterBg: "#ffffff", FooterFg: "#6b7280", Link: "#111827", Align: "left", TitleSize: "22px"},
	Bold:    {HeaderBg: "#6b21a8", HeaderFg: "#ffffff", Accent: "#6b21a8", Button: "#6b21a8", FooterBg: "#111827", FooterFg: "#ffffff", Link: "#d8b4fe", Align: "center", TitleSize: "30px"},
}

// ParseTemplate resolves a template name; empty means modern.
func ParseTemplate(name string) (Template, error) {
	t := Template(strings.ToLower(strings.TrimSpace(name)))
	if t == "" {
		return Modern, nil
	}
	if _, ok := themes[t]; !ok {
		return "", fmt.Errorf("%w: newsletter template %q", apperr.ErrUnsupportedValue, name)
	}
	return t, nil
}

//go:embed templates/newsletter.html.tmpl
var templateFS embed.FS

var page = template.Must(template.New("newsletter.html.tmpl").Funcs(template.FuncMap{
	"url": safeURL,
}).ParseFS(templateFS, "templates/newsletter.html.tmpl"))

// safeURL admits inline images and web addresses.
func safeURL(s string) template.URL {
	if strings.HasPrefix(s, "data:image/") || strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "http://") {
		return template.URL(s)
	}
	return ""
}

// Render returns the newsletter as a standalone HTML document. year is
// printed in the copyright line.
func Render(d *Data, t Template, year int) (string, error) {
	th, ok := themes[t]
	if !ok {
		return "", fmt.Errorf("%w: newsletter template %q", apperr.ErrUnsupportedValue, t)
	}
	var buf bytes.Buffer
	if err := page.Execute(&buf, map[string]any{
		"Data":     d,
		"Template": t,
		"Theme":    th,
		"Selector": Selector,
		"Year":     year,
	}); err != nil {
		return "", fmt.Errorf("rendering newsletter: %w", err)
	}
	return buf.String(), nil
}
