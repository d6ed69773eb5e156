// Package jsonfiledb is the persistence gateway: a single JSON document
// holding every user and course, reloaded whole at startup and flushed
// whole after every repository mutation. It assumes one process with
// exclusive access to the file; there is no locking across processes.
package jsonfiledb

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"github.com/campuskit/gradebook/core"
	"github.com/campuskit/gradebook/core/course"
	"github.com/campuskit/gradebook/core/user"
)

type DB struct {
	path   string
	logger core.Logger

	mu      sync.RWMutex
	users   map[string]*user.User
	courses map[string]*course.Course
}

// Open loads the document at path, or starts empty when the file does
// not exist yet.
func Open(path string, logger core.Logger) (*DB, error) {
	db := &DB{
		path:    path,
		logger:  logger,
		users:   make(map[string]*user.User),
		courses: make(map[string]*course.Course),
	}
	if err := db.load(); err != nil {
		return nil, err
	}
	return db, nil
}

// document is the durable schema. Users are keyed by ID with a role tag
// and the role-specific course list; courses carry their full state,
// grades and visibility included.
type (
	document struct {
		Users   map[string]userRecord   `json:"users"`
		Courses map[string]courseRecord `json:"courses"`
	}

	userRecord struct {
		Role            string   `json:"role"`
		ID              string   `json:"id"`
		Name            string   `json:"name"`
		Email           string   `json:"email"`
		Phone           string   `json:"phone"`
		PasswordHash    string   `json:"passwordHash"`
		StaysLoggedIn   bool     `json:"staysLoggedIn"`
		EnrolledCourses []string `json:"enrolledCourses,omitempty"`
		Courses         []string `json:"courses,omitempty"`
	}

	courseRecord struct {
		ID            string                        `json:"id"`
		Name          string                        `json:"name"`
		ProfessorID   string                        `json:"professorId"`
		Capacity      int                           `json:"capacity"`
		Students      []string                      `json:"enrolledStudentIds"`
		Components    []string                      `json:"gradeComponents"`
		StudentGrades map[string]map[string]float64 `json:"studentGrades"`
		GradesVisible bool                          `json:"gradesVisible"`
		Schedules     []scheduleRecord              `json:"schedules,omitempty"`
	}

	scheduleRecord struct {
		Day       string `json:"day"`
		StartTime string `json:"startTime"`
		EndTime   string `json:"endTime"`
	}
)

func (db *DB) load() error {
	data, err := os.ReadFile(db.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "jsonfiledb: reading %s", db.path)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return errors.Wrapf(err, "jsonfiledb: parsing %s", db.path)
	}

	for id, rec := range doc.Users {
		usr := rec.toUser()
		db.users[id] = &usr
	}
	for id, rec := range doc.Courses {
		crs := rec.toCourse()
		db.courses[id] = &crs
	}
	db.logger.Debug("state loaded", "path", db.path, "users", len(db.users), "courses", len(db.courses))
	return nil
}

// save flushes the whole document, writing to a temp file in the same
// directory and renaming over the target. Callers must hold db.mu.
func (db *DB) save() error {
	doc := document{
		Users:   make(map[string]userRecord, len(db.users)),
		Courses: make(map[string]courseRecord, len(db.courses)),
	}
	for id, usr := range db.users {
		doc.Users[id] = newUserRecord(*usr)
	}
	for id, crs := range db.courses {
		doc.Courses[id] = newCourseRecord(*crs)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(err, "jsonfiledb: marshaling document")
	}

	dir := filepath.Dir(db.path)
	tmp, err := os.CreateTemp(dir, ".gradebook-*")
	if err != nil {
		return errors.Wrapf(err, "jsonfiledb: creating temp file in %s", dir)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "jsonfiledb: writing %s", tmp.Name())
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "jsonfiledb: closing %s", tmp.Name())
	}
	if err := os.Rename(tmp.Name(), db.path); err != nil {
		return errors.Wrapf(err, "jsonfiledb: renaming %s to %s", tmp.Name(), db.path)
	}
	return nil
}

func newUserRecord(usr user.User) userRecord {
	rec := userRecord{
		Role:          string(usr.Kind),
		ID:            usr.ID,
		Name:          usr.Name,
		Email:         usr.Email,
		Phone:         usr.Phone,
		PasswordHash:  string(usr.PasswordHash),
		StaysLoggedIn: usr.StaysLoggedIn,
	}
	switch usr.Kind {
	case user.KindStudent:
		rec.EnrolledCourses = usr.EnrolledCourseIDs
	case user.KindProfessor:
		rec.Courses = usr.OwnedCourseIDs
	}
	return rec
}

func (rec userRecord) toUser() user.User {
	usr := user.User{
		ID:            rec.ID,
		Kind:          user.Kind(rec.Role),
		Name:          rec.Name,
		Email:         rec.Email,
		Phone:         rec.Phone,
		PasswordHash:  []byte(rec.PasswordHash),
		StaysLoggedIn: rec.StaysLoggedIn,
	}
	switch usr.Kind {
	case user.KindStudent:
		usr.EnrolledCourseIDs = rec.EnrolledCourses
		if usr.EnrolledCourseIDs == nil {
			usr.EnrolledCourseIDs = []string{}
		}
	case user.KindProfessor:
		usr.OwnedCourseIDs = rec.Courses
		if usr.OwnedCourseIDs == nil {
			usr.OwnedCourseIDs = []string{}
		}
	}
	return usr
}

func newCourseRecord(crs course.Course) courseRecord {
	rec := courseRecord{
		ID:            crs.ID,
		Name:          crs.Name,
		ProfessorID:   crs.ProfessorID,
		Capacity:      crs.Capacity,
		Students:      crs.EnrolledStudentIDs,
		Components:    crs.Components,
		StudentGrades: crs.Grades,
		GradesVisible: crs.GradesVisible,
	}
	for _, sched := range crs.Schedules {
		rec.Schedules = append(rec.Schedules, scheduleRecord(sched))
	}
	return rec
}

func (rec courseRecord) toCourse() course.Course {
	crs := course.Course{
		ID:                 rec.ID,
		Name:               rec.Name,
		ProfessorID:        rec.ProfessorID,
		Capacity:           rec.Capacity,
		EnrolledStudentIDs: rec.Students,
		Components:         rec.Components,
		Grades:             rec.StudentGrades,
		GradesVisible:      rec.GradesVisible,
	}
	if crs.EnrolledStudentIDs == nil {
		crs.EnrolledStudentIDs = []string{}
	}
	if crs.Grades == nil {
		crs.Grades = make(map[string]map[string]float64)
	}
	for _, sched := range rec.Schedules {
		crs.Schedules = append(crs.Schedules, course.Schedule(sched))
	}
	return crs
}
