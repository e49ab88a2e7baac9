package view

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const submissionsPage = `
<html><body>
<table>
<tbody>
	<tr>
		<td class="table--primaryLink"><a href="/courses/123/assignments/456/submissions/789">Alice Lee</a></td>
		<td>98.0</td>
	</tr>
	<tr>
		<td class="table--primaryLink"><a href="/courses/123/assignments/456/submissions/790">Bob  Chen</a></td>
		<td>87.5</td>
	</tr>
</tbody>
</table>
</body></html>
`

// fakeCourse serves the submissions listing, the roster behind it, and
// per-submission past-submission fragments.
func fakeCourse(t *testing.T) Client {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /courses/123/assignments/456/submissions", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, submissionsPage)
	})
	mux.HandleFunc("GET /courses/123/memberships", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, membershipsPage)
	})
	mux.HandleFunc("GET /courses/123/assignments/456/submissions/789.json", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("content") != "react" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		fmt.Fprint(w, `{"past_submissions":[{"id":701},{"id":702}]}`)
	})
	mux.HandleFunc("GET /courses/123/assignments/456/submissions/790.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"past_submissions":[{"id":750}]}`)
	})
	return newViewClient(t, mux)
}

var testAssignment = Assignment{CourseId: "123", Id: "456"}

func TestLatestSubmission(t *testing.T) {
	client := fakeCourse(t)
	ctx := context.Background()

	alice := Student{FullName: "Alice Lee", UserId: "111"}
	sub, found, err := client.LatestSubmission(ctx, testAssignment, alice)
	if err != nil {
		t.Fatal(err)
	}
	if !found {
		t.Fatal("expected a submission for Alice Lee")
	}
	expected := Submission{
		CourseId:     "123",
		AssignmentId: "456",
		Id:           "789",
		Student:      alice,
	}
	if diff := cmp.Diff(expected, sub); diff != "" {
		t.Fatalf("submission mismatch (-expected +got):\n%s", diff)
	}

	// absence of a row is not an error
	_, found, err = client.LatestSubmission(ctx, testAssignment, Student{FullName: "Carol Wu", UserId: "444"})
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Fatal("expected no submission for Carol Wu")
	}
}

func TestLatestSubmissions(t *testing.T) {
	client := fakeCourse(t)

	subs, err := client.LatestSubmissions(context.Background(), testAssignment, AnySubmission())
	if err != nil {
		t.Fatal(err)
	}

	// listing order is preserved; row names join the roster after
	// whitespace normalization
	expected := []Submission{
		{CourseId: "123", AssignmentId: "456", Id: "789", Student: Student{FullName: "Alice Lee", UserId: "111"}},
		{CourseId: "123", AssignmentId: "456", Id: "790", Student: Student{FullName: "Bob Chen", UserId: "222"}},
	}
	if diff := cmp.Diff(expected, subs); diff != "" {
		t.Fatalf("submissions mismatch (-expected +got):\n%s", diff)
	}
}

func TestLatestSubmissionsByStudents(t *testing.T) {
	client := fakeCourse(t)

	bob := Student{FullName: "Bob Chen", UserId: "222"}
	subs, err := client.LatestSubmissions(context.Background(), testAssignment, ByStudents(bob))
	if err != nil {
		t.Fatal(err)
	}
	if len(subs) != 1 || subs[0].Id != "790" {
		t.Fatalf("expected only Bob's submission 790, got %+v", subs)
	}
}

func TestLatestSubmissionsWherePredicate(t *testing.T) {
	client := fakeCourse(t)

	subs, err := client.LatestSubmissions(context.Background(), testAssignment, Where(func(s Submission) bool {
		return s.Student.UserId == "111"
	}))
	if err != nil {
		t.Fatal(err)
	}
	if len(subs) != 1 || subs[0].Id != "789" {
		t.Fatalf("expected only Alice's submission 789, got %+v", subs)
	}
}

func TestInvalidFilter(t *testing.T) {
	client := fakeCourse(t)
	ctx := context.Background()

	_, err := client.LatestSubmissions(ctx, testAssignment, Filter{})
	if !errors.Is(err, ErrInvalidFilter) {
		t.Fatalf("expected ErrInvalidFilter, got %v", err)
	}

	_, err = client.LatestSubmissions(ctx, testAssignment, Where(nil))
	if !errors.Is(err, ErrInvalidFilter) {
		t.Fatalf("expected ErrInvalidFilter for a nil predicate, got %v", err)
	}

	_, err = client.AllSubmissions(ctx, testAssignment, Filter{}, AnySubmission())
	if !errors.Is(err, ErrInvalidFilter) {
		t.Fatalf("expected ErrInvalidFilter, got %v", err)
	}
}

func TestLatestSubmissionsUnknownRow(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /courses/123/assignments/456/submissions", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><table><tbody>
			<td class="table--primaryLink"><a href="/courses/123/assignments/456/submissions/800">Dana Park</a></td>
		</tbody></table></body></html>`)
	})
	mux.HandleFunc("GET /courses/123/memberships", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, membershipsPage)
	})
	client := newViewClient(t, mux)

	_, err := client.LatestSubmissions(context.Background(), testAssignment, AnySubmission())
	if err == nil {
		t.Fatal("expected an error for a submission row missing from the roster")
	}
}

func TestAllSubmissions(t *testing.T) {
	client := fakeCourse(t)

	alice := Student{FullName: "Alice Lee", UserId: "111"}
	subs, err := client.AllSubmissions(context.Background(), testAssignment, AnySubmission(), ByStudents(alice))
	if err != nil {
		t.Fatal(err)
	}

	// history entries follow the server's payload order and inherit the
	// latest submission's student
	expected := []Submission{
		{CourseId: "123", AssignmentId: "456", Id: "701", Student: alice},
		{CourseId: "123", AssignmentId: "456", Id: "702", Student: alice},
	}
	if diff := cmp.Diff(expected, subs); diff != "" {
		t.Fatalf("submissions mismatch (-expected +got):\n%s", diff)
	}
}

func TestAllSubmissionsFiltersHistoryIndividually(t *testing.T) {
	client := fakeCourse(t)

	subs, err := client.AllSubmissions(context.Background(), testAssignment, Where(func(s Submission) bool {
		return s.Id == "702" || s.Id == "750"
	}), AnySubmission())
	if err != nil {
		t.Fatal(err)
	}
	if len(subs) != 2 || subs[0].Id != "702" || subs[1].Id != "750" {
		t.Fatalf("expected submissions 702 and 750, got %+v", subs)
	}
}

func TestAllSubmissionsFailingHistoryFetch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /courses/123/assignments/456/submissions", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, submissionsPage)
	})
	mux.HandleFunc("GET /courses/123/memberships", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, membershipsPage)
	})
	mux.HandleFunc("GET /courses/123/assignments/456/submissions/789.json", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	client := newViewClient(t, mux)

	_, err := client.AllSubmissions(context.Background(), testAssignment, AnySubmission(), AnySubmission())
	if err == nil {
		t.Fatal("expected a failing history fetch to abort the enumeration")
	}
}
