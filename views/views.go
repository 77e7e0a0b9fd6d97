// Package views renders the blog's pages. Pages are html/template files
// embedded in the binary and handed to callers as templ components, so
// handlers render every page through the same templ pipeline.
package views

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/a-h/templ"
)

//go:embed templates/*.html
var files embed.FS

var pages = map[string]*template.Template{}

func init() {
	for _, name := range []string{
		"index.html", "post.html", "login.html", "register.html",
		"make-post.html", "add-admin.html", "about.html", "contact.html",
		"images.html", "error.html",
	} {
		pages[name] = template.Must(
			template.New("layout.html").Funcs(funcs).ParseFS(files, "templates/layout.html", "templates/"+name),
		)
	}
}

func page(name string, data any) templ.Component {
	return templ.FromGoHTML(pages[name], data)
}

// Index lists every post.
func Index(p Page, posts []PostCard) templ.Component {
	return page("index.html", struct {
		Page
		Posts []PostCard
	}{p, posts})
}

// Post shows one post, its comments and the comment form.
func Post(p Page, post PostView, comments []CommentView, draft string, errs FormErrors) templ.Component {
	return page("post.html", struct {
		Page
		Post     PostView
		Comments []CommentView
		Draft    string
		Errors   FormErrors
	}{p, post, comments, draft, errs})
}

// Login renders the login form.
func Login(p Page, form AuthForm, errs FormErrors) templ.Component {
	return page("login.html", struct {
		Page
		Form   AuthForm
		Errors FormErrors
	}{p, form, errs})
}

// Register renders the registration form.
func Register(p Page, form AuthForm, errs FormErrors) templ.Component {
	return page("register.html", struct {
		Page
		Form   AuthForm
		Errors FormErrors
	}{p, form, errs})
}

// PostEditor renders the create/edit post form.
func PostEditor(p Page, form PostForm, errs FormErrors) templ.Component {
	return page("make-post.html", struct {
		Page
		Form   PostForm
		Errors FormErrors
	}{p, form, errs})
}

// AddAdmin renders the promotion form.
func AddAdmin(p Page, email string, errs FormErrors) templ.Component {
	return page("add-admin.html", struct {
		Page
		Email  string
		Errors FormErrors
	}{p, email, errs})
}

func About(p Page) templ.Component   { return page("about.html", p) }
func Contact(p Page) templ.Component { return page("contact.html", p) }

// Images renders the admin image library.
func Images(p Page, images []ImageView, errs FormErrors) templ.Component {
	return page("images.html", struct {
		Page
		Images []ImageView
		Errors FormErrors
	}{p, images, errs})
}

// Error renders a status page for code.
func Error(p Page, code int, message string) templ.Component {
	if message == "" {
		message = http.StatusText(code)
	}
	return page("error.html", struct {
		Page
		Code    int
		Message string
	}{p, code, message})
}
