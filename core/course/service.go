package course

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/campuskit/gradebook/core"
	"github.com/campuskit/gradebook/core/user"
)

var (
	// errors
	ErrNotFound         = errors.New("course not found")
	ErrCourseFull       = errors.New("course is full")
	ErrAlreadyEnrolled  = errors.New("student is already enrolled in this course")
	ErrNotEnrolled      = errors.New("student is not enrolled in this course")
	ErrInvalidComponent = errors.New("unknown grade component")
	ErrNotOwner         = errors.New("course is not owned by this professor")

	randIntn = rand.Intn // mockable
)

type (
	Repository interface {
		CourseExists(id string) (bool, error)
		CreateCourse(crs Course) (Course, error)
		QueryAllCourses() ([]Course, error)
		GetCourseByID(id string) (Course, error)
		UpdateCourse(crs Course) (Course, error)
	}

	Service struct {
		repo   Repository
		users  user.Repository
		logger core.Logger
	}
)

func NewService(repo Repository, users user.Repository, logger core.Logger) *Service {
	return &Service{
		repo:   repo,
		users:  users,
		logger: logger,
	}
}

// generateCourseID draws 4-digit IDs until one is free. Course IDs share
// no format with user IDs.
func (svc *Service) generateCourseID() (string, error) {
	for {
		id := fmt.Sprintf("%d", 1000+randIntn(9000))
		exists, err := svc.repo.CourseExists(id)
		if err != nil {
			return "", err
		}
		if !exists {
			return id, nil
		}
	}
}

// Create registers a new course owned by nc.ProfessorID and appends it
// to the professor's owned list.
func (svc *Service) Create(nc NewCourse) (Course, error) {
	if err := nc.Validate(); err != nil {
		return Course{}, err
	}

	prof, err := svc.users.GetUserByID(nc.ProfessorID)
	if err != nil {
		return Course{}, err
	}
	if !prof.IsProfessor() {
		return Course{}, core.NewValidationError(
			errors.New("invalid professor"),
			core.FieldError{Field: "professor_id", Error: "user is not a professor"},
		)
	}

	id, err := svc.generateCourseID()
	if err != nil {
		return Course{}, err
	}

	crs := Course{
		ID:                 id,
		Name:               nc.Name,
		ProfessorID:        prof.ID,
		Capacity:           nc.Capacity,
		EnrolledStudentIDs: []string{},
		Components:         append([]string(nil), DefaultComponents...),
		Grades:             make(map[string]map[string]float64),
		Schedules:          nc.Schedules,
	}
	if crs, err = svc.repo.CreateCourse(crs); err != nil {
		return Course{}, err
	}

	prof.OwnedCourseIDs = append(prof.OwnedCourseIDs, crs.ID)
	if _, err = svc.users.UpdateUser(prof); err != nil {
		return Course{}, err
	}
	svc.logger.Info("course created", "courseID", crs.ID, "professorID", prof.ID, "capacity", crs.Capacity)
	return crs, nil
}

// Enroll adds the student to the course and zero-initializes a grade
// record for every declared component. The capacity invariant holds on
// every return path: a full course is left untouched.
func (svc *Service) Enroll(courseID, studentID string) error {
	crs, err := svc.repo.GetCourseByID(courseID)
	if err != nil {
		return err
	}
	std, err := svc.users.GetUserByID(studentID)
	if err != nil {
		return err
	}
	if !std.IsStudent() {
		return core.NewValidationError(
			errors.New("invalid student"),
			core.FieldError{Field: "student_id", Error: "user is not a student"},
		)
	}
	if crs.IsEnrolled(std.ID) {
		return ErrAlreadyEnrolled
	}
	if crs.IsFull() {
		return ErrCourseFull
	}

	crs.EnrolledStudentIDs = append(crs.EnrolledStudentIDs, std.ID)
	record := make(map[string]float64, len(crs.Components))
	for _, comp := range crs.Components {
		record[comp] = 0
	}
	crs.Grades[std.ID] = record
	if _, err = svc.repo.UpdateCourse(crs); err != nil {
		return err
	}

	std.EnrolledCourseIDs = append(std.EnrolledCourseIDs, crs.ID)
	if _, err = svc.users.UpdateUser(std); err != nil {
		return err
	}
	svc.logger.Info("student enrolled", "courseID", crs.ID, "studentID", std.ID)
	return nil
}

// SetGrade overwrites one component score for an enrolled student.
func (svc *Service) SetGrade(courseID, studentID, component string, value float64) error {
	crs, err := svc.repo.GetCourseByID(courseID)
	if err != nil {
		return err
	}
	if !crs.HasComponent(component) {
		return ErrInvalidComponent
	}
	record, ok := crs.Grades[studentID]
	if !ok {
		return ErrNotEnrolled
	}
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return core.NewValidationError(
			errors.New("invalid grade"),
			core.FieldError{Field: "value", Error: "grade must be a non-negative number"},
		)
	}

	record[component] = value
	if _, err = svc.repo.UpdateCourse(crs); err != nil {
		return err
	}
	svc.logger.Info("grade set", "courseID", crs.ID, "studentID", studentID, "component", component)
	return nil
}

// ToggleVisibility flips the grade visibility flag and returns the new
// value.
func (svc *Service) ToggleVisibility(courseID string) (bool, error) {
	crs, err := svc.repo.GetCourseByID(courseID)
	if err != nil {
		return false, err
	}
	crs.GradesVisible = !crs.GradesVisible
	if crs, err = svc.repo.UpdateCourse(crs); err != nil {
		return false, err
	}
	svc.logger.Info("grade visibility toggled", "courseID", crs.ID, "visible", crs.GradesVisible)
	return crs.GradesVisible, nil
}

// ViewGrades returns the student's scores for one course. While the
// course keeps grades hidden the report comes back with Hidden set and
// no scores; that is an outcome, not an error.
func (svc *Service) ViewGrades(studentID, courseID string) (GradeReport, error) {
	crs, err := svc.repo.GetCourseByID(courseID)
	if err != nil {
		return GradeReport{}, err
	}
	record, ok := crs.Grades[studentID]
	if !ok {
		return GradeReport{}, ErrNotEnrolled
	}

	report := GradeReport{
		CourseID:   crs.ID,
		CourseName: crs.Name,
		Components: append([]string(nil), crs.Components...),
	}
	if !crs.GradesVisible {
		report.Hidden = true
		return report, nil
	}

	report.Scores = make(map[string]float64, len(record))
	for comp, score := range record {
		report.Scores[comp] = score
		report.Total += score
	}
	return report, nil
}

// GradeSheet builds the tabular export for a course: one row per student
// in enrollment order, one column per component plus Total.
func (svc *Service) GradeSheet(courseID string) (Sheet, error) {
	crs, err := svc.repo.GetCourseByID(courseID)
	if err != nil {
		return Sheet{}, err
	}

	sheet := Sheet{
		CourseID:   crs.ID,
		Components: append([]string(nil), crs.Components...),
		Rows:       make([]Row, 0, len(crs.EnrolledStudentIDs)),
	}
	for _, studentID := range crs.EnrolledStudentIDs {
		record := crs.Grades[studentID]
		row := Row{
			StudentID: studentID,
			Scores:    make([]float64, 0, len(sheet.Components)),
		}
		for _, comp := range sheet.Components {
			score := record[comp]
			row.Scores = append(row.Scores, score)
			row.Total += score
		}
		sheet.Rows = append(sheet.Rows, row)
	}
	return sheet, nil
}

// AddSchedule attaches a class slot to the course. Slots are not checked
// against each other.
func (svc *Service) AddSchedule(courseID string, sched Schedule) error {
	if err := core.Validate.Struct(sched); err != nil {
		return core.TranslateValidationError(err)
	}
	crs, err := svc.repo.GetCourseByID(courseID)
	if err != nil {
		return err
	}
	crs.Schedules = append(crs.Schedules, sched)
	_, err = svc.repo.UpdateCourse(crs)
	return err
}

// EnsureOwner fails with ErrNotOwner unless the course belongs to the
// given professor.
func (svc *Service) EnsureOwner(professorID, courseID string) (Course, error) {
	crs, err := svc.repo.GetCourseByID(courseID)
	if err != nil {
		return Course{}, err
	}
	if crs.ProfessorID != professorID {
		return Course{}, ErrNotOwner
	}
	return crs, nil
}

func (svc *Service) GetByID(id string) (Course, error) {
	return svc.repo.GetCourseByID(id)
}

func (svc *Service) ListAll() ([]Course, error) {
	return svc.repo.QueryAllCourses()
}

// ListByProfessor returns the professor's courses in creation order.
func (svc *Service) ListByProfessor(professorID string) ([]Course, error) {
	prof, err := svc.users.GetUserByID(professorID)
	if err != nil {
		return nil, err
	}
	courses := make([]Course, 0, len(prof.OwnedCourseIDs))
	for _, id := range prof.OwnedCourseIDs {
		crs, err := svc.repo.GetCourseByID(id)
		if err != nil {
			if err == ErrNotFound {
				continue
			}
			return nil, err
		}
		courses = append(courses, crs)
	}
	return courses, nil
}
