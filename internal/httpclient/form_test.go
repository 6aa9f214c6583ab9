package httpclient

import (
	"io"
	"reflect"
	"testing"
)

func TestFormEncodeKeepsInsertionOrder(t *testing.T) {
	form := &Form{}
	form.Add("commit", "Submit")
	form.Add("story[short_id]", "abc")
	form.Add("story[tags_a][]", "benchmark")
	form.Add("story[description]", "to infinity")

	want := "commit=Submit&story%5Bshort_id%5D=abc&story%5Btags_a%5D%5B%5D=benchmark&story%5Bdescription%5D=to+infinity"
	if got := form.Encode(); got != want {
		t.Fatalf("Encode() = %q, want %q", got, want)
	}
	if got := form.Keys(); !reflect.DeepEqual(got, []string{"commit", "story[short_id]", "story[tags_a][]", "story[description]"}) {
		t.Fatalf("Keys() = %v", got)
	}
}

func TestFormGet(t *testing.T) {
	var nilForm *Form
	if _, ok := nilForm.Get("x"); ok {
		t.Fatal("nil form should not report fields")
	}
	if nilForm.Encode() != "" {
		t.Fatal("nil form should encode empty")
	}

	form := &Form{}
	form.Add("a", "1")
	form.Add("a", "2")
	if v, ok := form.Get("a"); !ok || v != "1" {
		t.Fatalf("Get(a) = %q, %v", v, ok)
	}
	if _, ok := form.Get("b"); ok {
		t.Fatal("Get(b) should be missing")
	}
}

func TestBodySources(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		src := NewBodySource(nil)
		if n, ok := src.ContentLength(); !ok || n != 0 {
			t.Fatalf("ContentLength() = %d, %v", n, ok)
		}
		rc, err := src.NewReader()
		if err != nil {
			t.Fatalf("NewReader error = %v", err)
		}
		data, _ := io.ReadAll(rc)
		if len(data) != 0 {
			t.Fatalf("expected empty body, got %q", data)
		}
	})

	t.Run("form", func(t *testing.T) {
		form := &Form{}
		form.Add("k", "v w")
		src := NewBodySource(form)
		for i := 0; i < 2; i++ {
			rc, err := src.NewReader()
			if err != nil {
				t.Fatalf("NewReader error = %v", err)
			}
			data, _ := io.ReadAll(rc)
			_ = rc.Close()
			if string(data) != "k=v+w" {
				t.Fatalf("iteration %d body = %q", i, data)
			}
		}
	})
}
