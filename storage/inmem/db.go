// Package inmemdb provides map-backed repositories with no durable
// state. It stands in for the file-backed store in tests.
package inmemdb

import (
	"sync"

	"github.com/campuskit/gradebook/core/course"
	"github.com/campuskit/gradebook/core/user"
)

type (
	DB struct {
		user   *userTable
		course *courseTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	courseTable struct {
		sync.RWMutex
		table map[string]*course.Course
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:   &userTable{table: make(map[string]*user.User)},
		course: &courseTable{table: make(map[string]*course.Course)},
	}
	return db, nil
}
