package core

import (
	"bytes"
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/codes"
)

// TokenLocator selects which element of a page carries the authenticity
// token. The zero value selects the first form on the page.
type TokenLocator struct {
	formAction string
	meta       string
}

// FirstForm locates the token input of the first form on the page.
func FirstForm() TokenLocator {
	return TokenLocator{}
}

// FormAction locates the token input of the form posting to the given action.
func FormAction(action string) TokenLocator {
	return TokenLocator{formAction: action}
}

// MetaTag locates the content attribute of a named meta tag. Endpoints
// taking JSON bodies expect this token in the X-CSRF-Token header instead
// of a form field.
func MetaTag(name string) TokenLocator {
	return TokenLocator{meta: name}
}

// TokenFromDocument extracts the authenticity token selected by the
// locator from an already-parsed document.
func TokenFromDocument(doc *goquery.Document, locator TokenLocator) (string, error) {
	if locator.meta != "" {
		tag := doc.Find(fmt.Sprintf(`meta[name=%q]`, locator.meta))
		content, ok := tag.Attr("content")
		if !ok {
			return "", fmt.Errorf("%w: meta tag %q", ErrTokenNotFound, locator.meta)
		}
		return content, nil
	}

	var form *goquery.Selection
	if locator.formAction != "" {
		form = doc.Find(fmt.Sprintf(`form[action=%q]`, locator.formAction))
	} else {
		form = doc.Find("form").First()
	}
	if len(form.Nodes) == 0 {
		return "", fmt.Errorf("%w: no matching form", ErrTokenNotFound)
	}

	token, ok := form.Find(`input[name="authenticity_token"]`).Attr("value")
	if !ok {
		return "", fmt.Errorf("%w: form has no authenticity_token input", ErrTokenNotFound)
	}
	return token, nil
}

// Token fetches the page at url (relative to the session origin) and
// extracts its authenticity token. Every mutating operation derives its
// token from a fresh fetch; tokens are never reused across pages.
func (c *Client) Token(ctx context.Context, url string, locator TokenLocator) (string, error) {
	ctx, span := tracer.Start(ctx, "client:Token")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch token page")
		return "", err
	}
	if err := CheckResponse(res, "could not load token page"); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse html")
		return "", err
	}

	token, err := TokenFromDocument(doc, locator)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	return token, nil
}
