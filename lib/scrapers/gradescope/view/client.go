// Package view is the read side of a Gradescope session: course and
// roster resolution plus submission enumeration, all parsed out of
// server-rendered listing pages.
package view

import (
	"bytes"
	"context"
	"fmt"

	"gradescope-api/lib/gsurl"
	"gradescope-api/lib/htmlutil"
	"gradescope-api/lib/scrapers/gradescope/core"
	"gradescope-api/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/gradescope/view")

type Client struct {
	Core *core.Client
}

func NewClient(coreClient *core.Client) Client {
	return Client{Core: coreClient}
}

func (c Client) fetchDocument(ctx context.Context, path string, errContext string) (*goquery.Document, error) {
	res, err := c.Core.Http.R().
		SetContext(ctx).
		Get(path)
	if err != nil {
		return nil, err
	}
	if err := core.CheckResponse(res, errContext); err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
}

// Courses walks the dashboard top to bottom. Term labels and the course
// tiles following them alternate in the markup, so term association is
// positional: each run of courses is annotated with the last term label
// seen above it.
func (c Client) Courses(ctx context.Context) ([]Course, error) {
	ctx, span := tracer.Start(ctx, "client:Courses")
	defer span.End()

	doc, err := c.fetchDocument(ctx, "/", "could not load dashboard")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch dashboard")
		return nil, err
	}

	var courses []Course
	currentTerm := ""
	doc.Find("div.courseList--term, div.courseList--coursesForTerm").Each(func(_ int, s *goquery.Selection) {
		if s.HasClass("courseList--term") {
			currentTerm = textutil.NormalizeName(s.Text())
			return
		}
		s.Find("a").Each(func(_ int, a *goquery.Selection) {
			href, ok := a.Attr("href")
			if !ok {
				return
			}
			name := textutil.NormalizeName(htmlutil.FirstText(a.Find("h3")))
			courses = append(courses, Course{
				Id:   gsurl.TrailingID(href),
				Name: name,
				Term: currentTerm,
			})
		})
	})

	span.SetAttributes(attribute.Int("count", len(courses)))
	return courses, nil
}

// CourseName returns the cached display name, fetching the course page at
// most once per Course value. The cached name is never refreshed; a
// rename on the remote end is not observed by this value.
func (c Client) CourseName(ctx context.Context, course *Course) (string, error) {
	if course.Name != "" {
		return course.Name, nil
	}

	ctx, span := tracer.Start(ctx, "client:CourseName")
	defer span.End()

	doc, err := c.fetchDocument(ctx, course.Path(), "could not load course")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch course page")
		return "", err
	}

	name := textutil.NormalizeName(doc.Find("h1.courseHeader--title").First().Text())
	if name == "" {
		err := fmt.Errorf("course %s: title heading not found", course.Id)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	course.Name = name
	return name, nil
}

// AssignmentName resolves the display name off the sidebar heading's
// title attribute, caching it for the value's remaining lifetime.
func (c Client) AssignmentName(ctx context.Context, assignment *Assignment) (string, error) {
	if assignment.Name != "" {
		return assignment.Name, nil
	}

	ctx, span := tracer.Start(ctx, "client:AssignmentName")
	defer span.End()

	doc, err := c.fetchDocument(ctx, assignment.Path(), "could not load assignment")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch assignment page")
		return "", err
	}

	name, ok := doc.Find("h2.sidebar--title").First().Attr("title")
	if !ok {
		err := fmt.Errorf("assignment %s: sidebar title not found", assignment.Id)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	assignment.Name = name
	return name, nil
}

// Roster lists the students of a course from its memberships table.
func (c Client) Roster(ctx context.Context, course Course) ([]Student, error) {
	ctx, span := tracer.Start(ctx, "client:Roster")
	defer span.End()

	doc, err := c.fetchDocument(ctx, course.Path()+"/memberships", "could not load roster")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch roster")
		return nil, err
	}

	var roster []Student
	doc.Find("table.js-rosterTable tbody tr").Each(func(_ int, row *goquery.Selection) {
		name := textutil.NormalizeName(row.Find("td").First().Text())
		userId := row.Find("[data-user-id]").First().AttrOr("data-user-id", "")
		if name == "" || userId == "" {
			return
		}
		roster = append(roster, Student{
			FullName: name,
			UserId:   userId,
		})
	})

	span.SetAttributes(attribute.Int("count", len(roster)))
	return roster, nil
}
