package view

import (
	"fmt"
	"strings"

	"gradescope-api/lib/gsurl"
	"gradescope-api/lib/scrapers/gradescope/core"
)

// Course is plain data; all I/O hangs off Client. Name and Term are
// optional annotations filled at construction or lazily by CourseName,
// never refreshed afterwards.
type Course struct {
	Id   string
	Name string
	Term string
}

func (c Course) Path() string {
	return "/courses/" + c.Id
}

func (c Course) URL() string {
	return core.DefaultBaseUrl + c.Path()
}

type Assignment struct {
	CourseId string
	Id       string
	// optional, lazily resolved by Client.AssignmentName
	Name string
}

func (a Assignment) Path() string {
	return fmt.Sprintf("/courses/%s/assignments/%s", a.CourseId, a.Id)
}

func (a Assignment) URL() string {
	return core.DefaultBaseUrl + a.Path()
}

// Student is one roster entry of a course.
type Student struct {
	FullName string
	UserId   string
}

// Submission keeps its owning identifiers for URL construction only.
// Submissions are always resolved through a submissions listing, never
// guessed from ids.
type Submission struct {
	CourseId     string
	AssignmentId string
	Id           string
	Student      Student
}

func (s Submission) Path() string {
	return fmt.Sprintf("/courses/%s/assignments/%s/submissions/%s", s.CourseId, s.AssignmentId, s.Id)
}

func (s Submission) URL() string {
	return core.DefaultBaseUrl + s.Path()
}

// ResolveCourse constructs a Course from either a full course URL or a raw
// identifier. Name and term are optional annotations.
func ResolveCourse(urlOrId string, name string, term string) (Course, error) {
	id := urlOrId
	if strings.Contains(urlOrId, "/") {
		var err error
		id, err = gsurl.ExtractID(urlOrId, "courses")
		if err != nil {
			return Course{}, err
		}
	}
	return Course{Id: id, Name: name, Term: term}, nil
}
