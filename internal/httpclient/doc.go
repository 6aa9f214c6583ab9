// Package httpclient provides the outbound HTTP plumbing for the lobste.rs
// benchmark adapter.
//
// # Request Building
//
// A [RequestBuilder] is rooted at a base endpoint validated by [ParseBase]
// and turns a [Spec] into an *http.Request:
//
//	base, err := httpclient.ParseBase("http://localhost:3000")
//	if err != nil {
//		return err
//	}
//	builder, _ := httpclient.NewRequestBuilder(base)
//	form := &httpclient.Form{}
//	form.Add("short_id", "abc123")
//	req, err := builder.Build(ctx, httpclient.Spec{
//		Method: http.MethodPost,
//		Path:   "comments",
//		Form:   form,
//	})
//
// [Form] keeps fields in insertion order, so identical specs encode to
// identical bytes.
//
// # HTTP Client
//
// [NewClient] creates a pooled client that never follows redirects:
//
//	client := httpclient.NewClient(0)
//	resp, err := client.Do(req)
package httpclient
