package dummydb

import (
	"sync"

	"github.com/gurujilabs/guruji/core/certificate"
	"github.com/gurujilabs/guruji/core/course"
	"github.com/gurujilabs/guruji/core/enroll"
	"github.com/gurujilabs/guruji/core/user"
)

type (
	DB struct {
		user        *userTable
		course      *courseTable
		enrollment  *enrollmentTable
		certificate *certificateTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	courseTable struct {
		sync.RWMutex
		table      map[string]*course.Course
		recordings map[string]*course.Recording
		notes      map[string]*course.Note
	}

	enrollmentTable struct {
		sync.RWMutex
		table map[string]*enroll.Enrollment
	}

	certificateTable struct {
		sync.RWMutex
		table map[string]*certificate.Certificate
	}
)

func Open() (*DB, error) {
	db := &DB{
		user: &userTable{table: make(map[string]*user.User)},
		course: &courseTable{
			table:      make(map[string]*course.Course),
			recordings: make(map[string]*course.Recording),
			notes:      make(map[string]*course.Note),
		},
		enrollment:  &enrollmentTable{table: make(map[string]*enroll.Enrollment)},
		certificate: &certificateTable{table: make(map[string]*certificate.Certificate)},
	}
	return db, nil
}
