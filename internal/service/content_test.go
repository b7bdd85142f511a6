package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/SimoHua/symphonyx/internal/i18n"
	"github.com/SimoHua/symphonyx/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransform_ResolvesMentionAndRenders(t *testing.T) {
	e := newEnv(t, alice, bob)
	p := &model.Article{ID: "1", AuthorID: alice.ID, Content: "hello @bob"}

	out, err := e.content.Transform(context.Background(), p, ModerationContext{Author: alice})

	require.NoError(t, err)
	assert.Contains(t, out, `href="http://localhost/member/bob"`)
	assert.Contains(t, out, ">bob</a>")
	assert.NotContains(t, out, "@bob")
	assert.Contains(t, out, "<p>")
}

func TestTransform_BlockedAuthorAlwaysYieldsPlaceholder(t *testing.T) {
	e := newEnv(t, alice, bob)
	blocked := *alice
	blocked.Status = model.StatusInvalid

	for _, content := range []string{"hello @bob", "**bold** [Go] :smile:", "", "<script>x</script>"} {
		p := &model.Article{ID: "1", AuthorID: alice.ID, Content: content}
		out, err := e.content.Transform(context.Background(), p, ModerationContext{Author: &blocked})
		require.NoError(t, err)
		assert.Equal(t, e.labels.Get(i18n.ContentBlockLabel), out, "content %q", content)
	}
}

func TestTransform_InvalidParagraphIsBlockedBeforeMentions(t *testing.T) {
	e := newEnv(t, alice, bob)
	e.users.err = errors.New("directory must not be queried")
	p := &model.Article{ID: "1", AuthorID: alice.ID, Content: "hello @bob", Status: model.StatusInvalid}

	out, err := e.content.Transform(context.Background(), p, ModerationContext{Author: alice})

	require.NoError(t, err)
	assert.Equal(t, "This content has been blocked", out)
}

func TestTransform_InvalidParagraphWithUnknownAuthorIsBlocked(t *testing.T) {
	e := newEnv(t, alice)
	p := &model.Article{ID: "1", AuthorID: "ghost", Content: "hi", Status: model.StatusInvalid}

	out, err := e.content.Transform(context.Background(), p, ModerationContext{})

	require.NoError(t, err)
	assert.Equal(t, e.labels.Get(i18n.ContentBlockLabel), out)
}

func TestTransform_UnknownAuthor(t *testing.T) {
	e := newEnv(t, alice)
	p := &model.Article{ID: "1", AuthorID: "ghost", Content: "hi"}

	_, err := e.content.Transform(context.Background(), p, ModerationContext{})
	assert.ErrorIs(t, err, ErrUnknownAuthor)

	out := e.content.TransformOrPlaceholder(context.Background(), p, ModerationContext{})
	assert.Equal(t, e.labels.Get(i18n.ContentRenderFailedLabel), out)
}

type panicRenderer struct{}

func (panicRenderer) ToHTML(string) (string, error) { panic("renderer exploded") }
func (panicRenderer) Clean(h string) string         { return h }

func TestTransformOrPlaceholder_RecoversPanic(t *testing.T) {
	e := newEnv(t, alice)
	c := NewContentService(e.users, e.articles, e.tags, panicRenderer{}, e.labels, servePath, servePath)
	p := &model.Article{ID: "1", AuthorID: alice.ID, Content: "hi"}

	_, err := c.Transform(context.Background(), p, ModerationContext{Author: alice})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "renderer exploded")

	out := c.TransformOrPlaceholder(context.Background(), p, ModerationContext{Author: alice})
	assert.Equal(t, "This content is temporarily unavailable", out)
}

func TestTransform_StripsScripts(t *testing.T) {
	e := newEnv(t, alice)
	p := &model.Article{ID: "1", AuthorID: alice.ID, Content: "hi <script>alert(1)</script> <img src=x onerror=alert(1)>"}

	out, err := e.content.Transform(context.Background(), p, ModerationContext{Author: alice})

	require.NoError(t, err)
	assert.NotContains(t, out, "<script")
	assert.NotContains(t, out, "onerror")
	assert.Contains(t, out, "hi")
}

func TestTransform_DiscussionVisibility(t *testing.T) {
	dave := &model.User{ID: "u4", Name: "dave"}
	admin := &model.User{ID: "u5", Name: "root", Role: model.RoleAdmin}
	erin := &model.User{ID: "u6", Name: "erin"}
	e := newEnv(t, alice, bob, carol, dave, admin, erin)
	parent := &model.Article{ID: "p1", AuthorID: carol.ID, Type: model.ArticleTypeDiscussion, Content: "@bob please review, @dave请看"}
	p := &model.Article{ID: "1", AuthorID: alice.ID, Content: "secret", ParentID: parent.ID}
	hidden := e.labels.Get(i18n.DiscussionContentLabel)

	tests := []struct {
		name   string
		viewer *model.User
		hidden bool
	}{
		{"anonymous", nil, true},
		{"outsider", erin, true},
		{"author", alice, false},
		{"thread owner", carol, false},
		{"mentioned", bob, false},
		{"mentioned with text glued on", dave, false},
		{"admin", admin, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := e.content.Transform(context.Background(), p,
				ModerationContext{Author: alice, Parent: parent, Viewer: tt.viewer})
			require.NoError(t, err)
			if tt.hidden {
				assert.Equal(t, hidden, out)
			} else {
				assert.Contains(t, out, "secret")
			}
		})
	}
}

func TestResolveMentions(t *testing.T) {
	bobby := &model.User{ID: "u9", Name: "bobby"}
	e := newEnv(t, alice, bob, bobby)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"unknown stays", "hi @nobody", "hi @nobody"},
		{"known", "hi @bob!", "hi <a href='http://localhost/member/bob'>bob</a>!"},
		{"longest name wins", "@bobby", "<a href='http://localhost/member/bobby'>bobby</a>"},
		{"email is not a mention", "mail bob@example.com", "mail bob@example.com"},
		{"case sensitive", "@Bob", "@Bob"},
		{"mixed", "@nobody @alice", "@nobody <a href='http://localhost/member/alice'>alice</a>"},
		{"lone at", "a @ b", "a @ b"},
		{"cjk glued after name", "@bob你好", "<a href='http://localhost/member/bob'>bob</a>你好"},
		{"underscore glued after name", "@bob_", "<a href='http://localhost/member/bob'>bob</a>_"},
		{"shorter known prefix", "@bobbie", "<a href='http://localhost/member/bob'>bob</a>bie"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.content.ResolveMentions(context.Background(), tt.in))
		})
	}
}

func TestResolveMentions_OneLookupForAllCandidates(t *testing.T) {
	bobby := &model.User{ID: "u9", Name: "bobby"}
	e := newEnv(t, alice, bob, bobby)

	out := e.content.ResolveMentions(context.Background(), "@bobby你好 @alice_x @bob")

	assert.Equal(t, "<a href='http://localhost/member/bobby'>bobby</a>你好 "+
		"<a href='http://localhost/member/alice'>alice</a>_x "+
		"<a href='http://localhost/member/bob'>bob</a>", out)
	assert.EqualValues(t, 1, e.users.nameLookups.Load())
}

func TestResolveMentions_DoesNotDoubleWrap(t *testing.T) {
	e := newEnv(t, bob)
	once := e.content.ResolveMentions(context.Background(), "hello @bob")

	assert.Equal(t, once, e.content.ResolveMentions(context.Background(), once))
}

func TestResolveMentions_LookupFailureKeepsText(t *testing.T) {
	e := newEnv(t, bob)
	e.users.err = errors.New("db down")

	assert.Equal(t, "hello @bob", e.content.ResolveMentions(context.Background(), "hello @bob"))
}

func TestMentionedNames(t *testing.T) {
	assert.Equal(t, []string{"bob", "alice"}, MentionedNames("@bob @alice @bob x@y"))
	assert.Empty(t, MentionedNames("nothing here"))
}

func TestRewriteArticleLinks(t *testing.T) {
	e := newEnv(t, alice)
	e.articles.add(model.Article{ID: "1700000000000", Title: "Weekly <notes>", Permalink: "/article/1700000000000"})
	e.articles.add(model.Article{ID: "1700000000001", Title: "Private", Type: model.ArticleTypeDiscussion})
	e.articles.add(model.Article{ID: "1700000000002", Title: "Gone", Status: model.StatusInvalid})
	e.articles.add(model.Article{ID: "1700000000003", Permalink: "https://elsewhere.example.com/a"})

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"valid", "see [1700000000000]", "see <a href='http://localhost/article/1700000000000'>Weekly &lt;notes&gt;</a>"},
		{"discussion", "[1700000000001]", "[1700000000001]"},
		{"invalid", "[1700000000002]", "[1700000000002]"},
		{"missing", "[1799999999999]", "[1799999999999]"},
		{"absolute permalink", "[1700000000003]", "<a href='https://elsewhere.example.com/a'>1700000000003</a>"},
		{"markdown link", "[1700000000000](http://x.example.com)", "[1700000000000](http://x.example.com)"},
		{"too short", "[12345]", "[12345]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.content.RewriteArticleLinks(context.Background(), tt.in))
		})
	}
}

func TestRewriteArticleLinks_LooksUpEachIDOnce(t *testing.T) {
	e := newEnv(t, alice)
	e.articles.add(model.Article{ID: "1700000000000", Title: "W"})

	e.content.RewriteArticleLinks(context.Background(), "[1700000000000] and [1700000000000]")

	assert.Equal(t, 1, e.articles.gets)
}

func TestRewriteTagLinks(t *testing.T) {
	e := newEnv(t, alice)
	e.tags.tags = []model.Tag{{ID: "t1", Title: "Go", URI: "go"}}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"tag", "about [Go]", "about <a href='http://localhost/tag/go'>Go</a>"},
		{"unknown", "[Rust]", "[Rust]"},
		{"image", "![Go](go.png)", "![Go](go.png)"},
		{"link", "[Go](https://go.dev)", "[Go](https://go.dev)"},
		{"reference", "[Go][1]", "[Go][1]"},
		{"definition", "[Go]: https://go.dev", "[Go]: https://go.dev"},
		{"article id ignored", "[1700000000000]", "[1700000000000]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.content.RewriteTagLinks(context.Background(), tt.in))
		})
	}
}

func TestRewriteStages_BracketedArticleTitleIsNotRelinked(t *testing.T) {
	e := newEnv(t, alice)
	e.articles.add(model.Article{ID: "1700000000000", Title: "Learning [Go]"})
	e.tags.tags = []model.Tag{{ID: "t1", Title: "Go", URI: "go"}}

	linked := e.content.RewriteArticleLinks(context.Background(), "see [1700000000000]")
	out := e.content.RewriteTagLinks(context.Background(), linked)

	assert.Equal(t, "see <a href='http://localhost/article/1700000000000'>Learning &#91;Go&#93;</a>", out)
	assert.Equal(t, 1, strings.Count(out, "<a "))
}

func TestTransform_BracketedArticleTitleRendersOnce(t *testing.T) {
	e := newEnv(t, alice)
	e.articles.add(model.Article{ID: "1700000000000", Title: "Learning [Go]"})
	e.tags.tags = []model.Tag{{ID: "t1", Title: "Go", URI: "go"}}
	p := &model.Article{ID: "1", AuthorID: alice.ID, Content: "see [1700000000000]"}

	out, err := e.content.Transform(context.Background(), p, ModerationContext{Author: alice})

	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "<a "))
	assert.Contains(t, out, "Learning [Go]</a>")
	assert.NotContains(t, out, "/tag/go")
}

func TestRewriteTagLinks_NoBracketsNoQuery(t *testing.T) {
	e := newEnv(t, alice)

	e.content.RewriteTagLinks(context.Background(), "plain text")

	assert.Zero(t, e.tags.calls)
}

func TestEmojify(t *testing.T) {
	e := newEnv(t)

	out := e.content.Emojify("great :smile: :not_an_emoji: at 10:30:45")

	assert.Equal(t, "great <img alt='smile' class='emoji' src='http://localhost/static/emoji/graphics/smile.png' title='smile'>"+
		" :not_an_emoji: at 10:30:45", out)
}

func TestTransform_EmojiSurvivesSanitizer(t *testing.T) {
	e := newEnv(t, alice)
	p := &model.Article{ID: "1", AuthorID: alice.ID, Content: "done :tada:"}

	out, err := e.content.Transform(context.Background(), p, ModerationContext{Author: alice})

	require.NoError(t, err)
	assert.Contains(t, out, `class="emoji"`)
	assert.Contains(t, out, `src="http://localhost/static/emoji/graphics/tada.png"`)
}
