// Package core owns the authenticated Gradescope session: one cookie jar,
// browser-like default headers, login, and the generic form/JSON submit
// primitive every mutating operation goes through. Gradescope publishes no
// machine API, so everything here mimics a browser against server-rendered
// pages.
package core

import (
	"context"
	"fmt"
	"io"
	"net/http/cookiejar"
	"net/url"
	"time"

	"gradescope-api/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/gradescope/core")

const DefaultBaseUrl = "https://www.gradescope.com"

const userAgent = "gradescope-api"

type Client struct {
	BaseUrl *url.URL
	Http    *resty.Client
}

type ClientOptions struct {
	// defaults to DefaultBaseUrl when empty
	BaseUrl string
}

func NewClient(ctx context.Context, opts ClientOptions) (*Client, error) {
	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", userAgent)
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))
	client.SetTimeout(time.Second * 20)

	telemetry.InstrumentResty(client, "scrapers/gradescope/http")

	return &Client{
		BaseUrl: baseUrl,
		Http:    client,
	}, nil
}

// Origin returns scheme://host of the remote application, the value
// mutating requests must present as their Origin header.
func (c *Client) Origin() string {
	return fmt.Sprintf("%s://%s", c.BaseUrl.Scheme, c.BaseUrl.Host)
}

// absolute resolves a possibly-relative url against the session origin.
func (c *Client) absolute(rawurl string) string {
	u, err := url.Parse(rawurl)
	if err != nil {
		return rawurl
	}
	return c.BaseUrl.ResolveReference(u).String()
}

// FormFile is one multipart attachment of a form submission.
type FormFile struct {
	Param    string
	FileName string
	Reader   io.Reader
}

// Form describes one POST against the remote application.
type Form struct {
	Url string
	// defaults to Url
	RefererUrl string
	Data       map[string]string
	Files      []FormFile
	// set as X-CSRF-Token; used by JSON-body endpoints, which take the
	// meta-tag token channel instead of an embedded form field
	HeaderToken string
	// when non-nil the request is a JSON body post and Data is ignored
	Json any
}

// SubmitForm is the generic mutation primitive: it POSTs the form with
// Host/Origin/Referer set to the application's own origin so the request
// is indistinguishable from an in-browser submission. Callers validate
// the returned response with CheckResponse.
func (c *Client) SubmitForm(ctx context.Context, form Form) (*resty.Response, error) {
	ctx, span := tracer.Start(ctx, "client:SubmitForm")
	defer span.End()

	referer := form.RefererUrl
	if referer == "" {
		referer = form.Url
	}

	req := c.Http.R().
		SetContext(ctx).
		SetHeader("Host", c.BaseUrl.Host).
		SetHeader("Origin", c.Origin()).
		SetHeader("Referer", c.absolute(referer))

	if form.HeaderToken != "" {
		req.SetHeader("X-CSRF-Token", form.HeaderToken)
	}
	if form.Json != nil {
		req.SetHeader("Content-Type", "application/json")
		req.SetBody(form.Json)
	} else if form.Data != nil {
		req.SetFormData(form.Data)
	}
	for _, f := range form.Files {
		req.SetFileReader(f.Param, f.FileName, f.Reader)
	}

	res, err := req.Post(form.Url)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to submit form")
		return nil, err
	}
	return res, nil
}

// Login authenticates the session. On success the cookie jar carries the
// session cookie and every subsequent request on this client is
// authenticated; on failure the session is unusable until a later Login
// succeeds.
func (c *Client) Login(ctx context.Context, email, password string) error {
	ctx, span := tracer.Start(ctx, "client:Login")
	defer span.End()

	token, err := c.Token(ctx, "/login", FirstForm())
	if err != nil {
		span.SetStatus(codes.Error, "failed to get login token")
		return err
	}

	res, err := c.SubmitForm(ctx, Form{
		Url: "/login",
		Data: map[string]string{
			"utf8":                     "\u2713",
			"authenticity_token":       token,
			"session[email]":           email,
			"session[password]":        password,
			"session[remember_me]":     "1",
			"commit":                   "Log In",
			"session[remember_me_sso]": "0",
		},
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to make login request")
		return err
	}
	if err := CheckResponse(res, "failed to log in"); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}
	return nil
}
