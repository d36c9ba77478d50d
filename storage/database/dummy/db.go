package dummydb

import (
	"sync"

	"github.com/trezcool/mwalimu/core/followup"
	"github.com/trezcool/mwalimu/core/student"
)

type (
	DB struct {
		student  *studentTable
		followup *followupTable
	}

	studentTable struct {
		sync.RWMutex
		table map[string]*student.Student
	}

	followupTable struct {
		sync.RWMutex
		table map[string]*followup.Followup
	}
)

func Open() (*DB, error) {
	db := &DB{
		student:  &studentTable{table: make(map[string]*student.Student)},
		followup: &followupTable{table: make(map[string]*followup.Followup)},
	}
	return db, nil
}
