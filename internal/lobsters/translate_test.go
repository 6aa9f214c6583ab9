package lobsters

import (
	"errors"
	"net/http"
	"reflect"
	"testing"

	"github.com/torosent/lobsters-trawler/internal/workload"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name     string
		req      workload.Request
		method   string
		path     string
		user     workload.UserID
		authed   bool
		fields   []string
		body     string
		expected int
	}{
		{
			name:     "frontpage",
			req:      workload.Frontpage{},
			method:   http.MethodGet,
			path:     "",
			expected: http.StatusOK,
		},
		{
			name:     "recent",
			req:      workload.Recent{},
			method:   http.MethodGet,
			path:     "recent",
			expected: http.StatusOK,
		},
		{
			name:     "story",
			req:      workload.Story{ID: "abc123"},
			method:   http.MethodGet,
			path:     "s/abc123",
			expected: http.StatusOK,
		},
		{
			name:     "story upvote",
			req:      workload.StoryVote{User: 7, Story: "abc123", Vote: workload.VoteUp},
			method:   http.MethodPost,
			path:     "stories/abc123/upvote",
			user:     7,
			authed:   true,
			expected: http.StatusOK,
		},
		{
			name:     "story down vote retracts",
			req:      workload.StoryVote{User: 7, Story: "abc123", Vote: workload.VoteDown},
			method:   http.MethodPost,
			path:     "stories/abc123/unvote",
			user:     7,
			authed:   true,
			expected: http.StatusOK,
		},
		{
			name:     "comment upvote",
			req:      workload.CommentVote{User: 2, Comment: "c0ffee", Vote: workload.VoteUp},
			method:   http.MethodPost,
			path:     "comments/c0ffee/upvote",
			user:     2,
			authed:   true,
			expected: http.StatusOK,
		},
		{
			name:     "comment down vote retracts",
			req:      workload.CommentVote{User: 2, Comment: "c0ffee", Vote: workload.VoteDown},
			method:   http.MethodPost,
			path:     "comments/c0ffee/unvote",
			user:     2,
			authed:   true,
			expected: http.StatusOK,
		},
		{
			name:   "submit",
			req:    workload.Submit{ID: "new001", User: 3, Title: "Hello World"},
			method: http.MethodPost,
			path:   "stories",
			user:   3,
			authed: true,
			fields: []string{"commit", "story[short_id]", "story[tags_a][]", "story[title]", "story[description]", "utf8"},
			body: "commit=Submit&story%5Bshort_id%5D=new001&story%5Btags_a%5D%5B%5D=benchmark" +
				"&story%5Btitle%5D=Hello+World&story%5Bdescription%5D=to+infinity&utf8=%E2%9C%93",
			expected: http.StatusFound,
		},
		{
			name:     "top-level comment omits parent",
			req:      workload.Comment{ID: "cm0001", User: 4, Story: "abc123"},
			method:   http.MethodPost,
			path:     "comments",
			user:     4,
			authed:   true,
			fields:   []string{"short_id", "comment", "story_id", "utf8"},
			body:     "short_id=cm0001&comment=moar+benchmarking&story_id=abc123&utf8=%E2%9C%93",
			expected: http.StatusOK,
		},
		{
			name:     "reply carries parent",
			req:      workload.Comment{ID: "cm0002", User: 4, Story: "abc123", Parent: workload.ShortID("cm0001").Ref()},
			method:   http.MethodPost,
			path:     "comments",
			user:     4,
			authed:   true,
			fields:   []string{"short_id", "comment", "parent_comment_short_id", "story_id", "utf8"},
			body:     "short_id=cm0002&comment=moar+benchmarking&parent_comment_short_id=cm0001&story_id=abc123&utf8=%E2%9C%93",
			expected: http.StatusOK,
		},
		{
			name:     "present but empty parent is sent",
			req:      workload.Comment{ID: "cm0003", User: 4, Story: "abc123", Parent: workload.ShortID("").Ref()},
			method:   http.MethodPost,
			path:     "comments",
			user:     4,
			authed:   true,
			fields:   []string{"short_id", "comment", "parent_comment_short_id", "story_id", "utf8"},
			body:     "short_id=cm0003&comment=moar+benchmarking&parent_comment_short_id=&story_id=abc123&utf8=%E2%9C%93",
			expected: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok, err := translate(tt.req)
			if err != nil || !ok {
				t.Fatalf("translate() = ok %v, err %v", ok, err)
			}
			if c.kind != tt.req.Kind() {
				t.Errorf("kind = %s, want %s", c.kind, tt.req.Kind())
			}
			if c.spec.Method != tt.method {
				t.Errorf("method = %s, want %s", c.spec.Method, tt.method)
			}
			if c.spec.Path != tt.path {
				t.Errorf("path = %q, want %q", c.spec.Path, tt.path)
			}
			if c.authed != tt.authed || c.user != tt.user {
				t.Errorf("auth = (%v, %d), want (%v, %d)", c.authed, c.user, tt.authed, tt.user)
			}
			if c.expected != tt.expected {
				t.Errorf("expected status = %d, want %d", c.expected, tt.expected)
			}
			if tt.fields == nil {
				if c.spec.Form != nil {
					t.Errorf("unexpected body %q", c.spec.Form.Encode())
				}
				return
			}
			if got := c.spec.Form.Keys(); !reflect.DeepEqual(got, tt.fields) {
				t.Errorf("fields = %v, want %v", got, tt.fields)
			}
			if got := c.spec.Form.Encode(); got != tt.body {
				t.Errorf("body = %q, want %q", got, tt.body)
			}
		})
	}
}

func TestTranslateIsDeterministic(t *testing.T) {
	req := workload.Comment{ID: "cm0002", User: 4, Story: "abc123", Parent: workload.ShortID("cm0001").Ref()}
	a, _, _ := translate(req)
	b, _, _ := translate(req)
	if a.spec.Form.Encode() != b.spec.Form.Encode() || a.spec.Path != b.spec.Path {
		t.Fatal("identical requests translated differently")
	}
}

func TestTranslateNoOps(t *testing.T) {
	for _, req := range []workload.Request{workload.Login{User: 1}, workload.Logout{User: 1}} {
		_, ok, err := translate(req)
		if err != nil || ok {
			t.Errorf("translate(%T) = ok %v, err %v; want no-op", req, ok, err)
		}
	}
}

func TestTranslateRejectsUnknown(t *testing.T) {
	tests := []workload.Request{nil, &workload.Frontpage{}}
	for _, req := range tests {
		_, _, err := translate(req)
		if !errors.Is(err, ErrConfig) {
			t.Errorf("translate(%#v) error = %v, want ErrConfig", req, err)
		}
	}
}
