package views

import "html/template"

// Site holds site-wide settings shown in every page's chrome.
type Site struct {
	Name        string
	URL         string
	Description string
}

// Viewer describes who is looking at the page, for navigation only.
type Viewer struct {
	Authenticated bool
	Name          string
	Admin         bool
	Owner         bool
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	Image       string
}

// Page is the data every template receives.
type Page struct {
	Site    Site
	Title   string
	Meta    PageMeta
	JSONLD  template.JS
	Viewer  Viewer
	Flashes []string
	CSRF    string
	Year    int
}

// FormErrors maps a form field name to its message. The empty key holds
// form-level errors.
type FormErrors map[string]string

// PostCard is a post as listed on the home page.
type PostCard struct {
	ID         uint
	Title      string
	Subtitle   string
	Date       string
	AuthorName string
}

// PostView is a full post with its body already rendered to HTML.
type PostView struct {
	ID         uint
	Title      string
	Subtitle   string
	Date       string
	AuthorName string
	ImgURL     string
	Body       template.HTML
}

// CommentView is a comment as shown under a post.
type CommentView struct {
	AuthorName  string
	AuthorEmail string
	Text        string
}

// AuthForm holds the values echoed back into the login and register forms.
type AuthForm struct {
	Email string
	Name  string
}

// PostForm holds the values of the create/edit post form.
type PostForm struct {
	Action   string
	Editing  bool
	Title    string
	Subtitle string
	ImgURL   string
	Body     string
}

// ImageView is an uploaded image in the admin image library.
type ImageView struct {
	Filename     string
	URL          string
	OriginalName string
	Width        int
	Height       int
	Size         int
	UploadedAt   string
}
