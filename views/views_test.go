package views

import (
	"bytes"
	"context"
	"html/template"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func testPage() Page {
	return Page{
		Site: Site{Name: "Ink", URL: "https://blog.test"},
		CSRF: "tok",
		Year: 2024,
	}
}

func TestNavigationFollowsViewer(t *testing.T) {
	tests := []struct {
		name    string
		viewer  Viewer
		present []string
		absent  []string
	}{
		{
			name:    "anonymous",
			present: []string{`href="/login"`, `href="/register"`},
			absent:  []string{`href="/logout"`, `href="/new-post"`, `href="/add-admin"`},
		},
		{
			name:    "reader",
			viewer:  Viewer{Authenticated: true, Name: "Bob"},
			present: []string{`href="/logout"`},
			absent:  []string{`href="/login"`, `href="/new-post"`, `href="/add-admin"`},
		},
		{
			name:    "admin",
			viewer:  Viewer{Authenticated: true, Admin: true},
			present: []string{`href="/new-post"`, `href="/images"`},
			absent:  []string{`href="/add-admin"`},
		},
		{
			name:    "owner",
			viewer:  Viewer{Authenticated: true, Owner: true},
			present: []string{`href="/add-admin"`},
			absent:  []string{`href="/new-post"`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testPage()
			p.Viewer = tt.viewer
			out := render(t, About(p))
			for _, s := range tt.present {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.absent {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestFlashesAndTitle(t *testing.T) {
	p := testPage()
	p.Title = "Log In"
	p.Flashes = []string{"Welcome <back>"}
	out := render(t, Login(p, AuthForm{Email: "a@b.c"}, FormErrors{"": "Nope"}))

	assert.Contains(t, out, "<title>Log In | Ink</title>")
	assert.Contains(t, out, "Welcome &lt;back&gt;")
	assert.Contains(t, out, `<p class="form-error">Nope</p>`)
	assert.Contains(t, out, `value="a@b.c"`)
	assert.Contains(t, out, `name="_csrf" value="tok"`)
}

func TestPostRendersBodyAndComments(t *testing.T) {
	out := render(t, Post(testPage(), PostView{
		ID:         3,
		Title:      "Hello",
		Subtitle:   "World",
		Date:       "March 05, 2024",
		AuthorName: "Ada",
		Body:       template.HTML("<p>trusted</p>"),
	}, []CommentView{{AuthorName: "Bob", AuthorEmail: "bob@example.com", Text: "<i>hi</i>"}}, "", nil))

	assert.Contains(t, out, "<p>trusted</p>")
	assert.Contains(t, out, "&lt;i&gt;hi&lt;/i&gt;")
	assert.Contains(t, out, `action="/post/3"`)
	assert.Contains(t, out, "Posted by Ada on March 05, 2024")
	assert.NotContains(t, out, `href="/edit-post/3"`)
}

func TestPostEditorModes(t *testing.T) {
	create := render(t, PostEditor(testPage(), PostForm{Action: "/new-post"}, nil))
	assert.Contains(t, create, "New Post</h1>")

	edit := render(t, PostEditor(testPage(), PostForm{Action: "/edit-post/2", Editing: true, Title: "T"}, FormErrors{"title": "taken"}))
	assert.Contains(t, edit, "Edit Post</h1>")
	assert.Contains(t, edit, `action="/edit-post/2"`)
	assert.Contains(t, edit, `<p class="field-error">taken</p>`)
}

func TestErrorDefaultsMessage(t *testing.T) {
	out := render(t, Error(testPage(), 404, ""))
	assert.Contains(t, out, "<h1>404</h1>")
	assert.Contains(t, out, "Not Found")
}

func TestEveryPageRenders(t *testing.T) {
	p := testPage()
	pages := map[string]templ.Component{
		"index":     Index(p, []PostCard{{ID: 1, Title: "A"}}),
		"register":  Register(p, AuthForm{}, nil),
		"add-admin": AddAdmin(p, "x@y.z", nil),
		"contact":   Contact(p),
		"images":    Images(p, []ImageView{{Filename: "a.jpg", URL: "/static/uploads/a.jpg", Size: 2048}}, nil),
	}
	for name, c := range pages {
		out := render(t, c)
		assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"), name)
		assert.Contains(t, out, "Copyright &copy; Ink 2024", name)
	}
}

func TestGravatar(t *testing.T) {
	got := Gravatar("  Bob@Example.com ")
	assert.Equal(t, "https://www.gravatar.com/avatar/4b9bb80620f03eb3719e0a061c14283d?d=retro&r=g&s=100", got)
}

func TestHumanSize(t *testing.T) {
	assert.Equal(t, "512 B", HumanSize(512))
	assert.Equal(t, "2 KB", HumanSize(2048))
	assert.Equal(t, "1.5 MB", HumanSize(3<<19))
}
