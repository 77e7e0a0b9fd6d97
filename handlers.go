package inkblog

import (
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/inkblog/markdown"
	"github.com/eringen/inkblog/views"
)

// page builds the data shared by every template: site settings, the
// navigation view of id, pending flashes and the CSRF token.
func (a *App) page(c echo.Context, id Identity, title string) views.Page {
	return views.Page{
		Site: views.Site{
			Name:        a.Config.Name,
			URL:         a.Config.URL,
			Description: a.Config.Description,
		},
		Title: title,
		Meta: views.PageMeta{
			Description: a.Config.Description,
			URL:         BuildURL(a.Config.URL, c.Request().URL.Path),
			OGType:      "website",
		},
		Viewer: views.Viewer{
			Authenticated: id.Authenticated(),
			Name:          id.Name,
			Admin:         IsAdmin(id),
			Owner:         IsOwner(id),
		},
		Flashes: a.popFlashes(c),
		CSRF:    CsrfToken(c),
		Year:    a.now().Year(),
	}
}

// postID parses the :id path parameter. Anything that is not a positive
// integer is reported as not found.
func postID(c echo.Context) (uint, error) {
	n, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil || n == 0 {
		return 0, echo.ErrNotFound
	}
	return uint(n), nil
}

// loadPost fetches post id, mapping a missing row to a 404.
func (a *App) loadPost(c echo.Context, id uint) (PostEntry, error) {
	post, err := a.Store.GetPost(c.Request().Context(), id)
	if errors.Is(err, ErrNotFound) {
		return PostEntry{}, echo.ErrNotFound
	}
	return post, err
}

func (a *App) handleHome(c echo.Context, id Identity) error {
	posts, err := a.Store.ListPosts(c.Request().Context())
	if err != nil {
		return err
	}
	cards := make([]views.PostCard, 0, len(posts))
	for _, p := range posts {
		cards = append(cards, views.PostCard{
			ID:         p.ID,
			Title:      p.Title,
			Subtitle:   p.Subtitle,
			Date:       p.Date,
			AuthorName: p.AuthorName,
		})
	}
	page := a.page(c, id, "")
	page.JSONLD = template.JS(WebsiteJsonLD(a.Config))
	return Render(c, views.Index(page, cards))
}

type commentForm struct {
	Comment string `form:"comment" validate:"required"`
}

// handlePost shows a post and accepts comments on it. Anonymous comment
// submissions are sent to the login page and never stored.
func (a *App) handlePost(c echo.Context, id Identity) error {
	pid, err := postID(c)
	if err != nil {
		return err
	}
	post, err := a.loadPost(c, pid)
	if err != nil {
		return err
	}

	var (
		draft string
		errs  views.FormErrors
	)
	if c.Request().Method == http.MethodPost {
		if !id.Authenticated() {
			return c.Redirect(http.StatusSeeOther, "/login?not_authorized=1")
		}
		var form commentForm
		if err := c.Bind(&form); err != nil {
			return err
		}
		form.Comment = strings.TrimSpace(form.Comment)
		if err := c.Validate(&form); err != nil {
			if errs = formErrors(err); errs == nil {
				return err
			}
			draft = form.Comment
		} else if err := a.Store.CreateComment(c.Request().Context(), &Comment{
			AuthorID: id.ID,
			PostID:   post.ID,
			Text:     form.Comment,
		}); err != nil {
			return err
		}
	}

	return a.renderPost(c, id, post, draft, errs)
}

func (a *App) renderPost(c echo.Context, id Identity, post PostEntry, draft string, errs views.FormErrors) error {
	entries, err := a.Store.ListComments(c.Request().Context(), post.ID)
	if err != nil {
		return err
	}
	comments := make([]views.CommentView, 0, len(entries))
	for _, e := range entries {
		comments = append(comments, views.CommentView{
			AuthorName:  e.AuthorName,
			AuthorEmail: e.AuthorEmail,
			Text:        e.Text,
		})
	}

	page := a.page(c, id, post.Title)
	page.Meta.Description = post.Subtitle
	page.Meta.URL = BuildURL(a.Config.URL, "post", strconv.FormatUint(uint64(post.ID), 10))
	page.Meta.OGType = "article"
	page.Meta.Image = absoluteURL(a.Config.URL, post.ImgURL)
	page.JSONLD = template.JS(BlogPostingJsonLD(post, a.Config))

	return Render(c, views.Post(page, views.PostView{
		ID:         post.ID,
		Title:      post.Title,
		Subtitle:   post.Subtitle,
		Date:       post.Date,
		AuthorName: post.AuthorName,
		ImgURL:     post.ImgURL,
		Body:       markdown.HTML(post.Body),
	}, comments, draft, errs))
}

func (a *App) handleAbout(c echo.Context, id Identity) error {
	return Render(c, views.About(a.page(c, id, "About")))
}

func (a *App) handleContact(c echo.Context, id Identity) error {
	return Render(c, views.Contact(a.page(c, id, "Contact")))
}
