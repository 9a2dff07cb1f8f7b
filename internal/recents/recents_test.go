package recents

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"downloadpage/internal/cookies"
	"downloadpage/internal/diag"
	"downloadpage/internal/dom"
	"downloadpage/internal/request"
	"downloadpage/internal/request/requesttest"
)

const page = `<html><body><table><tbody>
<tr><td><a href="/a">a</a></td></tr>
<tr><td><a href="/b">b</a></td></tr>
<tr><td><a href="/c">c</a></td></tr>
</tbody></table></body></html>`

type fixture struct {
	rec   *Reconciler
	doc   *dom.Document
	table *dom.LinkTable
	tr    *requesttest.Transport
	sink  *diag.Recorder
}

func newFixture(t *testing.T, withCookie bool, reply requesttest.Reply) *fixture {
	t.Helper()
	doc, err := dom.ParseString(page)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	table, err := dom.NewLinkTable(doc, dom.DefaultTableOptions())
	if err != nil {
		t.Fatalf("table: %v", err)
	}
	f, err := request.NewFactory("http://localhost:8008/", "")
	if err != nil {
		t.Fatalf("factory: %v", err)
	}
	pageURL, _ := url.Parse("http://localhost:8008/")
	store := cookies.NewJarStore(pageURL)
	if withCookie {
		store.Set(&http.Cookie{Name: cookies.SessionName, Value: "S1", Path: "/"})
	}
	tr := requesttest.NewTransport().On("/app/recent-downloads", reply)
	sink := &diag.Recorder{}
	return &fixture{
		rec:   New(request.NewClient(f, store, tr.Client()), store, table, sink),
		doc:   doc,
		table: table,
		tr:    tr,
		sink:  sink,
	}
}

func order(table *dom.LinkTable) string {
	var out []string
	for _, r := range table.Rows() {
		out = append(out, r.Link)
	}
	return strings.Join(out, ",")
}

func TestReconcileReordersAndMarks(t *testing.T) {
	t.Parallel()
	fx := newFixture(t, true, requesttest.Reply{Body: `["/a","/c"]`})
	res, err := fx.rec.Reconcile(context.Background())
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if !res.Fetched || len(res.Matched) != 2 {
		t.Fatalf("unexpected result %+v", res)
	}
	if got := order(fx.table); got != "/a,/c,/b" {
		t.Fatalf("order = %s, want /a,/c,/b", got)
	}
	for _, link := range []string{"/a", "/c"} {
		if n := fx.table.MarkerCount(link); n != 1 {
			t.Fatalf("%s has %d markers, want 1", link, n)
		}
		if !fx.table.MarkerFollowsLink(link) {
			t.Fatalf("%s marker is not right after the link", link)
		}
	}
	if n := fx.table.MarkerCount("/b"); n != 0 {
		t.Fatalf("/b has %d markers, want 0", n)
	}

	reqs := fx.tr.Requests()
	if len(reqs) != 1 {
		t.Fatalf("requests = %d", len(reqs))
	}
	if reqs[0].Header.Get("Cache-Control") != "no-cache" {
		t.Fatalf("recents request is cacheable: %v", reqs[0].Header)
	}
	if reqs[0].Header.Get("Cookie") != "downloadkubernetes=S1" {
		t.Fatalf("session cookie not sent: %v", reqs[0].Header)
	}
}

func TestReconcileWithoutCookieDoesNothing(t *testing.T) {
	t.Parallel()
	fx := newFixture(t, false, requesttest.Reply{Body: `["/c"]`})
	before := fx.doc.String()
	res, err := fx.rec.Reconcile(context.Background())
	if err != nil || res.Fetched {
		t.Fatalf("Reconcile = %+v, %v", res, err)
	}
	if len(fx.tr.Requests()) != 0 {
		t.Fatalf("request issued without a session cookie")
	}
	if fx.doc.String() != before {
		t.Fatalf("table modified without a session cookie")
	}
}

func TestReconcileTwiceKeepsOneMarker(t *testing.T) {
	t.Parallel()
	fx := newFixture(t, true, requesttest.Reply{Body: `["/c","/b"]`})
	for i := 0; i < 2; i++ {
		if _, err := fx.rec.Reconcile(context.Background()); err != nil {
			t.Fatalf("Reconcile %d: %v", i, err)
		}
	}
	if got := order(fx.table); got != "/c,/b,/a" {
		t.Fatalf("order = %s", got)
	}
	for _, link := range []string{"/c", "/b"} {
		if n := fx.table.MarkerCount(link); n != 1 {
			t.Fatalf("%s has %d markers after two runs", link, n)
		}
	}
}

func TestReconcileFailuresLeaveTable(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		reply requesttest.Reply
		check func(error) bool
	}{
		{"server error", requesttest.Reply{Status: http.StatusForbidden}, func(err error) bool {
			var se *request.StatusError
			return errors.As(err, &se) && se.Code == http.StatusForbidden
		}},
		{"bad json", requesttest.Reply{Body: `{"not":"a list"}`}, func(err error) bool {
			var pe *request.ParseError
			return errors.As(err, &pe)
		}},
		{"trailing garbage", requesttest.Reply{Body: `["/c"] trailing-garbage`}, func(err error) bool {
			var pe *request.ParseError
			return errors.As(err, &pe)
		}},
		{"second value", requesttest.Reply{Body: `["/c"]{"x":1}`}, func(err error) bool {
			var pe *request.ParseError
			return errors.As(err, &pe)
		}},
		{"null", requesttest.Reply{Body: `null`}, func(err error) bool {
			var pe *request.ParseError
			return errors.As(err, &pe)
		}},
		{"network", requesttest.Reply{Err: requesttest.ErrOffline}, func(err error) bool {
			var ne *request.NetworkError
			return errors.As(err, &ne)
		}},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			fx := newFixture(t, true, tc.reply)
			row, ok := fx.table.Find("/b")
			if !ok {
				t.Fatalf("row /b missing")
			}
			fx.table.Mark(row)
			before := fx.doc.String()
			_, err := fx.rec.Reconcile(context.Background())
			if !tc.check(err) {
				t.Fatalf("unexpected error %v", err)
			}
			if fx.doc.String() != before {
				t.Fatalf("table modified after a failed fetch")
			}
			if !fx.sink.Contains("RECENTS fetch failed") {
				t.Fatalf("failure not logged: %v", fx.sink.Lines())
			}
		})
	}
}

func TestApplySkipsUnknownAndDuplicates(t *testing.T) {
	t.Parallel()
	fx := newFixture(t, true, requesttest.Reply{})
	res := fx.rec.Apply([]string{"/zzz", "/b", "/b", "/a"})
	if got := order(fx.table); got != "/b,/a,/c" {
		t.Fatalf("order = %s", got)
	}
	if len(res.Skipped) != 1 || res.Skipped[0] != "/zzz" {
		t.Fatalf("skipped = %v", res.Skipped)
	}
	if fx.table.MarkerCount("/b") != 1 {
		t.Fatalf("duplicate link produced extra markers")
	}
}
