package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"gradescope-api/lib/telemetry"

	"github.com/stretchr/testify/require"
)

const loginPage = `
<html><body>
<form action="/login">
	<input type="hidden" name="authenticity_token" value="tok-123">
	<input type="email" name="session[email]">
	<input type="password" name="session[password]">
</form>
</body></html>
`

// fakeOrigin mimics the login flow: a token-bearing login form, a login
// endpoint that sets the session cookie, and a page that requires it.
func fakeOrigin(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /login", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, loginPage)
	})
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		err := r.ParseForm()
		if err != nil {
			t.Fatal(err)
		}
		if r.PostForm.Get("authenticity_token") != "tok-123" ||
			r.PostForm.Get("session[remember_me]") != "1" ||
			r.PostForm.Get("commit") != "Log In" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			return
		}
		if r.PostForm.Get("session[email]") != "alee@berkeley.edu" ||
			r.PostForm.Get("session[password]") != "hunter2" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "signed_token", Value: "session-abc"})
	})
	mux.HandleFunc("GET /account", func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("signed_token")
		if err != nil || cookie.Value != "session-abc" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, baseUrl string) *Client {
	client, err := NewClient(context.Background(), ClientOptions{BaseUrl: baseUrl})
	if err != nil {
		t.Fatal(err)
	}
	return client
}

func TestLogin(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/gradescope/core")
	defer cleanup()

	srv := fakeOrigin(t)
	client := newTestClient(t, srv.URL)
	ctx := context.Background()

	// unauthenticated sessions are rejected by the protected page
	res, err := client.Http.R().SetContext(ctx).Get("/account")
	require.NoError(t, err)
	require.Error(t, CheckResponse(res, "could not load account"))

	err = client.Login(ctx, "alee@berkeley.edu", "hunter2")
	require.NoError(t, err)

	// the cookie jar now authenticates every subsequent request
	res, err = client.Http.R().SetContext(ctx).Get("/account")
	require.NoError(t, err)
	require.NoError(t, CheckResponse(res, "could not load account"))
}

func TestLoginBadCredentials(t *testing.T) {
	srv := fakeOrigin(t)
	client := newTestClient(t, srv.URL)
	ctx := context.Background()

	err := client.Login(ctx, "alee@berkeley.edu", "wrong")
	require.True(t, errors.Is(err, ErrLoginFailed))

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)

	// the failed session carries no authenticated cookie
	res, err := client.Http.R().SetContext(ctx).Get("/account")
	require.NoError(t, err)
	require.Error(t, CheckResponse(res, "could not load account"))
}

func TestSubmitFormHeaders(t *testing.T) {
	var gotOrigin, gotReferer, gotField string

	mux := http.NewServeMux()
	mux.HandleFunc("POST /target", func(w http.ResponseWriter, r *http.Request) {
		gotOrigin = r.Header.Get("Origin")
		gotReferer = r.Header.Get("Referer")
		r.ParseForm()
		gotField = r.PostForm.Get("a")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	res, err := client.SubmitForm(context.Background(), Form{
		Url:  "/target",
		Data: map[string]string{"a": "b"},
	})
	require.NoError(t, err)
	require.NoError(t, CheckResponse(res, "submit failed"))

	require.Equal(t, srv.URL, gotOrigin)
	// referer defaults to the submitted url, resolved against the origin
	require.Equal(t, srv.URL+"/target", gotReferer)
	require.Equal(t, "b", gotField)
}

func TestSubmitFormJsonBody(t *testing.T) {
	var gotToken, gotContentType string
	var gotBody map[string]string

	mux := http.NewServeMux()
	mux.HandleFunc("POST /target", func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-CSRF-Token")
		gotContentType = r.Header.Get("Content-Type")
		err := json.NewDecoder(r.Body).Decode(&gotBody)
		if err != nil {
			t.Fatal(err)
		}
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	res, err := client.SubmitForm(context.Background(), Form{
		Url:         "/target",
		RefererUrl:  "/elsewhere",
		HeaderToken: "hdr-tok",
		Json:        map[string]string{"k": "v"},
	})
	require.NoError(t, err)
	require.NoError(t, CheckResponse(res, "submit failed"))

	require.Equal(t, "hdr-tok", gotToken)
	require.Equal(t, "application/json", gotContentType)
	require.Equal(t, map[string]string{"k": "v"}, gotBody)
}

func TestCheckResponse(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /missing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	res, err := client.Http.R().Get("/missing")
	require.NoError(t, err)

	err = CheckResponse(res, "could not load assignment")
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	require.Contains(t, err.Error(), "could not load assignment")
}
