package view

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gradescope-api/lib/gsurl"
	"gradescope-api/lib/scrapers/gradescope/core"
	"gradescope-api/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var ErrInvalidFilter = errors.New("filter is neither a predicate nor a student list")

type filterKind int

const (
	filterUnset filterKind = iota
	filterAny
	filterPred
	filterStudents
)

// Filter selects submissions. It is a tagged variant: construct one with
// AnySubmission, Where or ByStudents. The zero value is invalid and fails
// enumeration with ErrInvalidFilter.
type Filter struct {
	kind     filterKind
	pred     func(Submission) bool
	students map[string]struct{}
}

// AnySubmission includes every submission.
func AnySubmission() Filter {
	return Filter{kind: filterAny}
}

// Where includes submissions the predicate evaluates true for.
func Where(pred func(Submission) bool) Filter {
	return Filter{kind: filterPred, pred: pred}
}

// ByStudents includes submissions whose student's user id is in the given
// set, regardless of order.
func ByStudents(students ...Student) Filter {
	set := make(map[string]struct{}, len(students))
	for _, s := range students {
		set[s.UserId] = struct{}{}
	}
	return Filter{kind: filterStudents, students: set}
}

func (f Filter) validate() error {
	switch f.kind {
	case filterAny, filterStudents:
		return nil
	case filterPred:
		if f.pred == nil {
			return ErrInvalidFilter
		}
		return nil
	}
	return ErrInvalidFilter
}

func (f Filter) matches(s Submission) bool {
	switch f.kind {
	case filterAny:
		return true
	case filterPred:
		return f.pred(s)
	case filterStudents:
		_, ok := f.students[s.Student.UserId]
		return ok
	}
	return false
}

type submissionRow struct {
	name string
	id   string
}

// listing rows carry the student name as the primary link text and the
// submission id as the link's trailing path segment
func submissionRows(doc *goquery.Document) []submissionRow {
	var rows []submissionRow
	doc.Find("td.table--primaryLink a").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		rows = append(rows, submissionRow{
			name: textutil.NormalizeName(a.Text()),
			id:   gsurl.TrailingID(href),
		})
	})
	return rows
}

// LatestSubmission scans the submissions listing in document order for the
// first row whose student name matches and returns found=false when no row
// does. "Has not submitted" is an expected state, not an error. Matching
// is by whitespace-normalized name; duplicate names resolve to the first
// row, deterministically.
func (c Client) LatestSubmission(ctx context.Context, assignment Assignment, student Student) (Submission, bool, error) {
	ctx, span := tracer.Start(ctx, "client:LatestSubmission")
	defer span.End()

	doc, err := c.fetchDocument(ctx, assignment.Path()+"/submissions", "could not load assignment")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch submissions listing")
		return Submission{}, false, err
	}

	want := textutil.NormalizeName(student.FullName)
	for _, row := range submissionRows(doc) {
		if row.name != want {
			continue
		}
		return Submission{
			CourseId:     assignment.CourseId,
			AssignmentId: assignment.Id,
			Id:           row.id,
			Student:      student,
		}, true, nil
	}
	return Submission{}, false, nil
}

// LatestSubmissions builds one Submission per listing row, joining each
// row to the course roster by normalized name (first roster entry wins on
// duplicates), then applies the filter post-hoc. Row order is preserved.
func (c Client) LatestSubmissions(ctx context.Context, assignment Assignment, where Filter) ([]Submission, error) {
	if err := where.validate(); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "client:LatestSubmissions")
	defer span.End()

	doc, err := c.fetchDocument(ctx, assignment.Path()+"/submissions", "could not load assignment")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch submissions listing")
		return nil, err
	}

	roster, err := c.Roster(ctx, Course{Id: assignment.CourseId})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch roster")
		return nil, err
	}
	byName := make(map[string]Student, len(roster))
	for _, s := range roster {
		key := textutil.NormalizeName(s.FullName)
		if _, taken := byName[key]; !taken {
			byName[key] = s
		}
	}

	var submissions []Submission
	for _, row := range submissionRows(doc) {
		student, ok := byName[row.name]
		if !ok {
			err := fmt.Errorf("submission row %q has no roster entry", row.name)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		sub := Submission{
			CourseId:     assignment.CourseId,
			AssignmentId: assignment.Id,
			Id:           row.id,
			Student:      student,
		}
		if where.matches(sub) {
			submissions = append(submissions, sub)
		}
	}

	span.SetAttributes(attribute.Int("count", len(submissions)))
	return submissions, nil
}

// AllSubmissions enumerates every submission, historical ones included.
// The latest set is resolved per whereLatest, then each latest submission
// costs one further round trip for its past-submissions fragment; `where`
// filters the historical entries individually. Order follows the latest
// set, and within each, the server's payload order. A failing history
// fetch aborts the whole enumeration.
func (c Client) AllSubmissions(ctx context.Context, assignment Assignment, where Filter, whereLatest Filter) ([]Submission, error) {
	if err := where.validate(); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "client:AllSubmissions")
	defer span.End()

	latest, err := c.LatestSubmissions(ctx, assignment, whereLatest)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to enumerate latest submissions")
		return nil, err
	}

	var all []Submission
	for _, latestSub := range latest {
		res, err := c.Core.Http.R().
			SetContext(ctx).
			SetQueryString("content=react&only_keys[]=past_submissions").
			Get(latestSub.Path() + ".json")
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to fetch past submissions")
			return nil, err
		}
		if err := core.CheckResponse(res, "could not load past submissions"); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}

		var payload struct {
			PastSubmissions []struct {
				Id json.Number `json:"id"`
			} `json:"past_submissions"`
		}
		err = json.Unmarshal(res.Body(), &payload)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to parse past submissions json")
			return nil, err
		}

		for _, past := range payload.PastSubmissions {
			sub := Submission{
				CourseId:     assignment.CourseId,
				AssignmentId: assignment.Id,
				Id:           past.Id.String(),
				Student:      latestSub.Student,
			}
			if where.matches(sub) {
				all = append(all, sub)
			}
		}
	}

	span.SetAttributes(attribute.Int("count", len(all)))
	return all, nil
}
