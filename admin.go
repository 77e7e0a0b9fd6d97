package inkblog

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/inkblog/views"
)

// PostDateLayout formats the display date stamped on new posts.
const PostDateLayout = "January 02, 2006"

const (
	msgTitleTaken  = "A post with that title already exists."
	msgUnknownUser = "The user you entered does not exist! Please try again."
)

type postForm struct {
	Title    string `form:"title" validate:"required,max=250"`
	Subtitle string `form:"subtitle" validate:"required,max=250"`
	ImgURL   string `form:"img_url" validate:"required,max=250,http_url|startswith=/"`
	Body     string `form:"body" validate:"required"`
}

func (f *postForm) trim() {
	f.Title = strings.TrimSpace(f.Title)
	f.Subtitle = strings.TrimSpace(f.Subtitle)
	f.ImgURL = strings.TrimSpace(f.ImgURL)
}

func (f postForm) view(action string, editing bool) views.PostForm {
	return views.PostForm{
		Action:   action,
		Editing:  editing,
		Title:    f.Title,
		Subtitle: f.Subtitle,
		ImgURL:   f.ImgURL,
		Body:     f.Body,
	}
}

// bindPostForm reads and validates the post editor. When the input is
// invalid it returns the field messages and a nil error.
func bindPostForm(c echo.Context) (postForm, views.FormErrors, error) {
	var form postForm
	if err := c.Bind(&form); err != nil {
		return form, nil, err
	}
	form.trim()
	if err := c.Validate(&form); err != nil {
		if errs := formErrors(err); errs != nil {
			return form, errs, nil
		}
		return form, nil, err
	}
	return form, nil, nil
}

func (a *App) handleNewPostForm(c echo.Context, id Identity) error {
	return Render(c, views.PostEditor(a.page(c, id, "New Post"), views.PostForm{Action: "/new-post"}, nil))
}

func (a *App) handleNewPost(c echo.Context, id Identity) error {
	form, errs, err := bindPostForm(c)
	if err != nil {
		return err
	}
	if errs != nil {
		return Render(c, views.PostEditor(a.page(c, id, "New Post"), form.view("/new-post", false), errs))
	}

	post := BlogPost{
		AuthorID: id.ID,
		Title:    form.Title,
		Subtitle: form.Subtitle,
		Date:     a.now().Format(PostDateLayout),
		Body:     form.Body,
		ImgURL:   form.ImgURL,
	}
	if err := a.Store.CreatePost(c.Request().Context(), &post); err != nil {
		if errors.Is(err, ErrTitleTaken) {
			return Render(c, views.PostEditor(a.page(c, id, "New Post"), form.view("/new-post", false), views.FormErrors{"title": msgTitleTaken}))
		}
		return err
	}
	a.Logger.Info("post created", "post_id", post.ID, "author_id", id.ID)
	return c.Redirect(http.StatusSeeOther, "/")
}

func (a *App) handleEditPostForm(c echo.Context, id Identity) error {
	pid, err := postID(c)
	if err != nil {
		return err
	}
	post, err := a.loadPost(c, pid)
	if err != nil {
		return err
	}
	form := postForm{Title: post.Title, Subtitle: post.Subtitle, ImgURL: post.ImgURL, Body: post.Body}
	return Render(c, views.PostEditor(a.page(c, id, "Edit Post"), form.view(editAction(pid), true), nil))
}

// handleEditPost overwrites the editable fields of a post. The author and
// date stay as they were; concurrent edits are last-write-wins.
func (a *App) handleEditPost(c echo.Context, id Identity) error {
	pid, err := postID(c)
	if err != nil {
		return err
	}
	if _, err := a.loadPost(c, pid); err != nil {
		return err
	}
	form, errs, err := bindPostForm(c)
	if err != nil {
		return err
	}
	if errs == nil {
		err = a.Store.UpdatePost(c.Request().Context(), pid, form.Title, form.Subtitle, form.ImgURL, form.Body)
		switch {
		case err == nil:
			return c.Redirect(http.StatusSeeOther, fmt.Sprintf("/post/%d", pid))
		case errors.Is(err, ErrTitleTaken):
			errs = views.FormErrors{"title": msgTitleTaken}
		case errors.Is(err, ErrNotFound):
			return echo.ErrNotFound
		default:
			return err
		}
	}
	return Render(c, views.PostEditor(a.page(c, id, "Edit Post"), form.view(editAction(pid), true), errs))
}

func editAction(id uint) string {
	return fmt.Sprintf("/edit-post/%d", id)
}

// handleDeletePost removes a post and its comments.
func (a *App) handleDeletePost(c echo.Context) error {
	pid, err := postID(c)
	if err != nil {
		return err
	}
	if err := a.Store.DeletePost(c.Request().Context(), pid); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.ErrNotFound
		}
		return err
	}
	a.Logger.Info("post deleted", "post_id", pid)
	return c.Redirect(http.StatusSeeOther, "/")
}

type addAdminForm struct {
	Email string `form:"email" validate:"required,email"`
}

func (a *App) handleAddAdminForm(c echo.Context, id Identity) error {
	return Render(c, views.AddAdmin(a.page(c, id, "Add Admin"), "", nil))
}

// handleAddAdmin grants the admin level to the user registered under the
// submitted email.
func (a *App) handleAddAdmin(c echo.Context, id Identity) error {
	var form addAdminForm
	if err := c.Bind(&form); err != nil {
		return err
	}
	form.Email = strings.TrimSpace(form.Email)
	if err := c.Validate(&form); err != nil {
		errs := formErrors(err)
		if errs == nil {
			return err
		}
		return Render(c, views.AddAdmin(a.page(c, id, "Add Admin"), form.Email, errs))
	}

	u, err := a.Store.PromoteUser(c.Request().Context(), form.Email)
	if errors.Is(err, ErrNotFound) {
		return Render(c, views.AddAdmin(a.page(c, id, "Add Admin"), form.Email, views.FormErrors{"": msgUnknownUser}))
	}
	if err != nil {
		return err
	}
	a.Logger.Info("user promoted", "user_id", u.ID, "by", id.ID)
	if err := addFlash(c, u.Name+" is now an admin."); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/")
}
