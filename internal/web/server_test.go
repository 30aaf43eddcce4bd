package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"lsfd202201/internal/auth"
	"lsfd202201/internal/site"
	"lsfd202201/internal/testutil"
)

const (
	uploadPassword = "class-password"
	adminPassword  = "admin-password"
)

type webFixture struct {
	ts      *httptest.Server
	client  *http.Client
	service *site.Service
	store   site.Store
}

func newWebFixture(t *testing.T) *webFixture {
	t.Helper()

	store := testutil.NewTestStore(t)

	uploadHash, err := auth.HashPassword(uploadPassword)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	adminHash, err := auth.HashPassword(adminPassword)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	verifier := auth.NewVerifierFromHashes(uploadHash, adminHash, []string{"rice", "andyzhou"})

	svc := site.NewService(store, verifier, testutil.NewRecordingMailSender(), site.NewNopLogger(),
		testutil.FixedClock(), testutil.NewStubIDGenerator(), nil)

	server, err := NewServer(svc, verifier, "test-session-key", site.NewNopLogger(), nil)
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}

	ts := httptest.NewServer(server.Router())
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar.New() error = %v", err)
	}

	return &webFixture{
		ts:      ts,
		client:  &http.Client{Jar: jar},
		service: svc,
		store:   store,
	}
}

func (f *webFixture) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := f.client.Get(f.ts.URL + path)
	if err != nil {
		t.Fatalf("GET %s error = %v", path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	return resp, string(body)
}

func (f *webFixture) postForm(t *testing.T, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := f.client.PostForm(f.ts.URL+path, form)
	if err != nil {
		t.Fatalf("POST %s error = %v", path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	return resp, string(body)
}

// login authenticates the fixture client as an admin.
func (f *webFixture) login(t *testing.T) {
	t.Helper()
	resp, body := f.postForm(t, "/admin", url.Values{
		"admin_name": {"rice"},
		"password":   {adminPassword},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d, want 200 after redirect", resp.StatusCode)
	}
	if !strings.Contains(body, "Welcome, Rice") {
		t.Fatalf("admin panel missing greeting, got: %.200s", body)
	}
}

func (f *webFixture) submitArticle(t *testing.T, title string) int64 {
	t.Helper()
	a, err := f.service.SubmitArticle(context.Background(), site.SubmitRequest{
		Name:     "rice",
		Password: uploadPassword,
		Date:     "2022-06-01",
		Title:    title,
		Content:  "# hello",
	})
	if err != nil {
		t.Fatalf("SubmitArticle() error = %v", err)
	}
	return a.ID
}

func TestServer_StaticPages(t *testing.T) {
	f := newWebFixture(t)

	pages := []string{"/", "/index", "/main", "/members", "/video", "/share", "/markdown-help", "/about", "/about-en", "/about-zh", "/kzkt", "/feedback", "/upload"}
	for _, path := range pages {
		resp, _ := f.get(t, path)
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", path, resp.StatusCode)
		}
	}
}

func TestServer_NotFound(t *testing.T) {
	f := newWebFixture(t)

	resp, body := f.get(t, "/no-such-page")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
	if !strings.Contains(body, "404") {
		t.Error("404 body missing the themed page")
	}

	// The easter-egg route serves the same page on purpose, but as a hit.
	resp, eggBody := f.get(t, "/hrtg")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("GET /hrtg status = %d, want 404", resp.StatusCode)
	}
	if !strings.Contains(eggBody, "404") {
		t.Error("/hrtg body missing the themed page")
	}
}

func TestServer_MethodNotAllowed(t *testing.T) {
	f := newWebFixture(t)

	resp, body := f.postForm(t, "/articles", url.Values{})
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", resp.StatusCode)
	}
	if !strings.Contains(body, "405 METHOD NOT ALLOWED") {
		t.Error("405 body missing the themed page")
	}
}

func TestServer_UploadFlow(t *testing.T) {
	t.Run("wrong password", func(t *testing.T) {
		f := newWebFixture(t)

		_, body := f.postForm(t, "/upload-result", url.Values{
			"name":     {"rice"},
			"password": {"wrong"},
			"date":     {"2022-06-01"},
			"title":    {"Nope"},
			"content":  {"# no"},
		})
		if !strings.Contains(body, "Wrong Password") {
			t.Error("fail page missing the Wrong Password flash")
		}

		all, err := f.service.Articles(context.Background())
		if err != nil {
			t.Fatalf("Articles() error = %v", err)
		}
		if len(all) != 0 {
			t.Errorf("len(articles) = %d after rejected upload, want 0", len(all))
		}
	})

	t.Run("successful upload", func(t *testing.T) {
		f := newWebFixture(t)

		_, body := f.postForm(t, "/upload-result", url.Values{
			"name":     {"rice"},
			"password": {uploadPassword},
			"date":     {"2022-06-01"},
			"title":    {"Graduation"},
			"content":  {"# So long"},
		})
		if !strings.Contains(body, "Upload Success") {
			t.Errorf("result page missing the success flash, got: %.200s", body)
		}

		all, err := f.service.Articles(context.Background())
		if err != nil {
			t.Fatalf("Articles() error = %v", err)
		}
		if len(all) != 1 {
			t.Fatalf("len(articles) = %d, want 1", len(all))
		}
	})
}

func TestServer_Articles(t *testing.T) {
	t.Run("no articles yet", func(t *testing.T) {
		f := newWebFixture(t)

		_, body := f.get(t, "/articles")
		if !strings.Contains(body, "No Articles! Please Create one first!") {
			t.Error("empty-table visit missing the flash")
		}
	})

	t.Run("renders markdown", func(t *testing.T) {
		f := newWebFixture(t)
		f.submitArticle(t, "Rendered")

		resp, body := f.get(t, "/articles")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want 200", resp.StatusCode)
		}
		if !strings.Contains(body, "<h1>hello</h1>") {
			t.Error("markdown heading was not rendered to HTML")
		}
	})

	t.Run("page past the end is 404", func(t *testing.T) {
		f := newWebFixture(t)
		f.submitArticle(t, "Only")

		resp, _ := f.get(t, "/articles/9")
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("status = %d, want 404", resp.StatusCode)
		}
	})
}

func TestServer_AdminGate(t *testing.T) {
	f := newWebFixture(t)

	noRedirect := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	resp, err := noRedirect.Get(f.ts.URL + "/admin")
	if err != nil {
		t.Fatalf("GET /admin error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Errorf("status = %d, want 303", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/admin-login" {
		t.Errorf("Location = %q, want /admin-login", loc)
	}
}

func TestServer_AdminLogin(t *testing.T) {
	t.Run("valid credentials reach the panel", func(t *testing.T) {
		f := newWebFixture(t)
		f.login(t)

		resp, _ := f.get(t, "/admin")
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET /admin after login status = %d, want 200", resp.StatusCode)
		}
	})

	t.Run("unknown user bounces back to login", func(t *testing.T) {
		f := newWebFixture(t)

		_, body := f.postForm(t, "/admin", url.Values{
			"admin_name": {"stranger"},
			"password":   {adminPassword},
		})
		if strings.Contains(body, "Welcome,") {
			t.Error("unknown user reached the admin panel")
		}
	})

	t.Run("opening the login page drops the session", func(t *testing.T) {
		f := newWebFixture(t)
		f.login(t)

		f.get(t, "/admin-login")

		noRedirect := &http.Client{
			Jar: f.client.Jar,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		}
		resp, err := noRedirect.Get(f.ts.URL + "/admin")
		if err != nil {
			t.Fatalf("GET /admin error = %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusSeeOther {
			t.Errorf("status = %d after revisiting login page, want 303", resp.StatusCode)
		}
	})
}

func TestServer_AdminDelete(t *testing.T) {
	t.Run("requires the session", func(t *testing.T) {
		f := newWebFixture(t)
		id := f.submitArticle(t, "Keep me")

		_, body := f.postForm(t, "/admin-delete", url.Values{"id": {strconv.FormatInt(id, 10)}})
		if !strings.Contains(body, "Not Admin") {
			t.Error("fail page missing the Not Admin flash")
		}

		if _, err := f.service.Article(context.Background(), id); err != nil {
			t.Errorf("article was deleted without a session: %v", err)
		}
	})

	t.Run("deletes by id", func(t *testing.T) {
		f := newWebFixture(t)
		id := f.submitArticle(t, "Doomed")
		f.login(t)

		_, body := f.postForm(t, "/admin-delete", url.Values{"id": {strconv.FormatInt(id, 10)}})
		if !strings.Contains(body, "deleted") {
			t.Errorf("result page missing the deletion flash, got: %.200s", body)
		}

		if _, err := f.service.Article(context.Background(), id); err == nil {
			t.Error("article still present after delete")
		}
	})

	t.Run("missing id reports not found", func(t *testing.T) {
		f := newWebFixture(t)
		f.login(t)

		_, body := f.postForm(t, "/admin-delete", url.Values{"id": {"404"}})
		if !strings.Contains(body, "not found") {
			t.Errorf("result page missing the not-found flash, got: %.200s", body)
		}
	})
}

func TestServer_EditFlow(t *testing.T) {
	t.Run("edit requires the session", func(t *testing.T) {
		f := newWebFixture(t)
		id := f.submitArticle(t, "Private")

		_, body := f.get(t, "/edit/"+strconv.FormatInt(id, 10))
		if !strings.Contains(body, "Not Admin") {
			t.Error("fail page missing the Not Admin flash")
		}
	})

	t.Run("edit replaces the content", func(t *testing.T) {
		f := newWebFixture(t)
		id := f.submitArticle(t, "Editable")
		f.login(t)

		_, body := f.postForm(t, "/edit-result/"+strconv.FormatInt(id, 10), url.Values{
			"content": {"rewritten"},
		})
		if !strings.Contains(body, "Edit Succeeded") {
			t.Errorf("result page missing the success flash, got: %.200s", body)
		}

		a, err := f.service.Article(context.Background(), id)
		if err != nil {
			t.Fatalf("Article() error = %v", err)
		}
		if a.Content != "rewritten" {
			t.Errorf("Content = %q, want rewritten", a.Content)
		}
	})
}

func TestServer_FeedbackFlow(t *testing.T) {
	f := newWebFixture(t)

	_, body := f.postForm(t, "/feedback-result", url.Values{
		"author": {"andy"},
		"body":   {"nice work"},
	})
	if !strings.Contains(body, "Thanks for your feedback!") {
		t.Errorf("result page missing the thanks flash, got: %.200s", body)
	}

	all, err := f.service.Feedback(context.Background())
	if err != nil {
		t.Fatalf("Feedback() error = %v", err)
	}
	if len(all) != 1 {
		t.Errorf("len(feedback) = %d, want 1", len(all))
	}
}

func TestServer_API(t *testing.T) {
	t.Run("lists articles as JSON", func(t *testing.T) {
		f := newWebFixture(t)
		f.submitArticle(t, "From the API")

		resp, body := f.get(t, "/api/articles")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want 200", resp.StatusCode)
		}

		var list []ArticleResponse
		if err := json.Unmarshal([]byte(body), &list); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if len(list) != 1 || list[0].Title != "From the API" {
			t.Errorf("list = %+v", list)
		}
	})

	t.Run("fetches one article", func(t *testing.T) {
		f := newWebFixture(t)
		id := f.submitArticle(t, "Single")

		resp, body := f.get(t, "/api/articles/"+strconv.FormatInt(id, 10))
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want 200", resp.StatusCode)
		}

		var a ArticleResponse
		if err := json.Unmarshal([]byte(body), &a); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if a.ID != id || a.Title != "Single" {
			t.Errorf("article = %+v", a)
		}
	})

	t.Run("missing article is a JSON 404", func(t *testing.T) {
		f := newWebFixture(t)

		resp, body := f.get(t, "/api/articles/42")
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("status = %d, want 404", resp.StatusCode)
		}
		if !strings.Contains(body, "Resource not found.") {
			t.Errorf("body = %.200s, want JSON error payload", body)
		}
	})

	t.Run("store failure hides internal detail", func(t *testing.T) {
		f := newWebFixture(t)
		f.submitArticle(t, "Doomed")
		if err := f.store.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}

		resp, body := f.get(t, "/api/articles")
		if resp.StatusCode != http.StatusInternalServerError {
			t.Fatalf("status = %d, want 500", resp.StatusCode)
		}
		if !strings.Contains(body, "Internal server error.") {
			t.Errorf("body = %.200s, want generic status text", body)
		}
		if strings.Contains(body, `"error"`) || strings.Contains(body, "database is closed") {
			t.Errorf("body = %.200s, leaks internal error detail", body)
		}
	})
}
