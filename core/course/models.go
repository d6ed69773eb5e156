package course

import (
	"fmt"

	"github.com/campuskit/gradebook/core"
)

// DefaultComponents is the fixed set of graded components assigned to
// every new course, in display order.
var DefaultComponents = []string{"Quiz 1", "Midterm", "Quiz 2", "Final", "Assignments"}

// Schedule is a weekly class slot. Slots are stored as given; overlap
// between them is not checked.
type Schedule struct {
	Day       string `json:"day" validate:"required"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
}

func (s Schedule) String() string {
	return fmt.Sprintf("%s %s - %s", s.Day, s.StartTime, s.EndTime)
}

type Course struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ProfessorID string `json:"professor_id"`
	// Capacity is immutable after creation.
	Capacity int `json:"capacity"`
	// EnrolledStudentIDs is unique and never longer than Capacity.
	EnrolledStudentIDs []string `json:"enrolled_student_ids"`
	Components         []string `json:"components"`
	// Grades maps student ID -> component name -> score. Every enrolled
	// student has a record with an entry per component.
	Grades        map[string]map[string]float64 `json:"grades"`
	GradesVisible bool                          `json:"grades_visible"`
	Schedules     []Schedule                    `json:"schedules,omitempty"`
}

// Clone returns a deep copy; repositories hand these out so callers can
// stage changes without touching stored state.
func (c Course) Clone() Course {
	c.EnrolledStudentIDs = cloneStrings(c.EnrolledStudentIDs)
	c.Components = cloneStrings(c.Components)
	if c.Schedules != nil {
		scheds := make([]Schedule, len(c.Schedules))
		copy(scheds, c.Schedules)
		c.Schedules = scheds
	}
	if c.Grades != nil {
		grades := make(map[string]map[string]float64, len(c.Grades))
		for studentID, record := range c.Grades {
			rec := make(map[string]float64, len(record))
			for comp, score := range record {
				rec[comp] = score
			}
			grades[studentID] = rec
		}
		c.Grades = grades
	}
	return c
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func (c *Course) IsFull() bool {
	return len(c.EnrolledStudentIDs) >= c.Capacity
}

func (c *Course) IsEnrolled(studentID string) bool {
	for _, id := range c.EnrolledStudentIDs {
		if id == studentID {
			return true
		}
	}
	return false
}

func (c *Course) HasComponent(name string) bool {
	for _, comp := range c.Components {
		if comp == name {
			return true
		}
	}
	return false
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	ProfessorID string     `json:"professor_id" validate:"required"`
	Name        string     `json:"name" validate:"required"`
	Capacity    int        `json:"capacity" validate:"required,gte=1"`
	Schedules   []Schedule `json:"schedules" validate:"omitempty,dive"`
}

func (nc *NewCourse) Validate() error {
	nc.ProfessorID = core.CleanString(nc.ProfessorID)
	nc.Name = core.CleanString(nc.Name)

	if err := core.Validate.Struct(nc); err != nil {
		return core.TranslateValidationError(err)
	}
	return nil
}

// GradeReport is what a student sees for one course. Hidden reports are
// a deliberate outcome, not a failure: Scores is empty and Total zero.
type GradeReport struct {
	CourseID   string
	CourseName string
	Hidden     bool
	Components []string
	Scores     map[string]float64
	Total      float64
}

// Row is one student's line in a grade sheet; Scores is aligned with the
// sheet's Components.
type Row struct {
	StudentID string
	Scores    []float64
	Total     float64
}

// Sheet is the tabular export of a course's grades, one Row per enrolled
// student in enrollment order.
type Sheet struct {
	CourseID   string
	Components []string
	Rows       []Row
}
