package dummydb

import (
	"sync"

	"github.com/educert/backend/core/assignment"
	"github.com/educert/backend/core/certification"
	"github.com/educert/backend/core/course"
	"github.com/educert/backend/core/enrollment"
	"github.com/educert/backend/core/exam"
	"github.com/educert/backend/core/notification"
	"github.com/educert/backend/core/payment"
	"github.com/educert/backend/core/report"
	"github.com/educert/backend/core/user"
)

type (
	DB struct {
		user          *userTable
		course        *courseTable
		enrollment    *enrollmentTable
		assignment    *assignmentTable
		exam          *examTable
		certification *certificationTable
		payment       *paymentTable
		report        *reportTable
		notification  *notificationTable
	}

	userTable struct {
		sync.RWMutex
		table map[int]*user.User
	}

	courseTable struct {
		sync.RWMutex
		courses  map[int]*course.Course
		modules  map[int]*course.Module
		lectures map[int]*course.Lecture
		contents map[int]*course.Content
		reviews  map[int]*course.Review
	}

	enrollmentTable struct {
		sync.RWMutex
		table map[int]*enrollment.Enrollment
	}

	assignmentTable struct {
		sync.RWMutex
		assignments map[int]*assignment.Assignment
		submissions map[int]*assignment.Submission
	}

	examQuestionRow struct {
		examID      int
		questionID  int
		orderNumber int
	}

	examTable struct {
		sync.RWMutex
		exams         map[int]*exam.Exam
		questions     map[int]*exam.Question
		examQuestions []examQuestionRow
		attempts      map[int]*exam.Attempt
	}

	courseCertRow struct {
		courseID        int
		certificationID int
	}

	certificationTable struct {
		sync.RWMutex
		certifications map[int]*certification.Certification
		courseCerts    []courseCertRow
		issuances      []*certification.Issuance
	}

	paymentTable struct {
		sync.RWMutex
		table map[int]*payment.Payment
	}

	reportTable struct {
		sync.RWMutex
		table map[int]*report.Report
	}

	notificationTable struct {
		sync.RWMutex
		table map[int]*notification.Notification
	}
)

func Open() (*DB, error) {
	db := &DB{
		user: &userTable{table: make(map[int]*user.User)},
		course: &courseTable{
			courses:  make(map[int]*course.Course),
			modules:  make(map[int]*course.Module),
			lectures: make(map[int]*course.Lecture),
			contents: make(map[int]*course.Content),
			reviews:  make(map[int]*course.Review),
		},
		enrollment: &enrollmentTable{table: make(map[int]*enrollment.Enrollment)},
		assignment: &assignmentTable{
			assignments: make(map[int]*assignment.Assignment),
			submissions: make(map[int]*assignment.Submission),
		},
		exam: &examTable{
			exams:     make(map[int]*exam.Exam),
			questions: make(map[int]*exam.Question),
			attempts:  make(map[int]*exam.Attempt),
		},
		certification: &certificationTable{certifications: make(map[int]*certification.Certification)},
		payment:       &paymentTable{table: make(map[int]*payment.Payment)},
		report:        &reportTable{table: make(map[int]*report.Report)},
		notification:  &notificationTable{table: make(map[int]*notification.Notification)},
	}
	return db, nil
}
