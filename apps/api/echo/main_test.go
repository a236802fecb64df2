package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"strconv"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/educert/backend/core"
	"github.com/educert/backend/core/assignment"
	"github.com/educert/backend/core/certification"
	"github.com/educert/backend/core/course"
	"github.com/educert/backend/core/enrollment"
	"github.com/educert/backend/core/exam"
	"github.com/educert/backend/core/notification"
	"github.com/educert/backend/core/payment"
	"github.com/educert/backend/core/report"
	"github.com/educert/backend/core/user"
	emailsvc "github.com/educert/backend/services/email"
	dummydb "github.com/educert/backend/storage/database/dummy"
)

var (
	app  Server
	conf *core.Config

	usrSvc     *user.Service
	courseSvc  *course.Service
	enrollSvc  *enrollment.Service
	assignSvc  *assignment.Service
	examSvc    *exam.Service
	certSvc    *certification.Service
	paymentSvc *payment.Service
	reportSvc  *report.Service
	notifSvc   *notification.Service

	errMissingToken = httpErr{Message: "missing or malformed jwt"}
	errForbidden    = httpErr{Message: "permission denied"}
	errNotFound     = httpErr{Message: "not found"}
)

// testLogger drops everything; server errors surface in response codes.
type testLogger struct{}

func (testLogger) Debug(msg string, args ...interface{}) {}
func (testLogger) Info(msg string, args ...interface{})  {}
func (testLogger) Warn(msg string, args ...interface{})  {}
func (testLogger) Error(msg string, args ...interface{}) {}
func (testLogger) Fatal(msg string, args ...interface{}) {}

func TestMain(m *testing.M) {
	conf = &core.Config{
		TestMode:                  true,
		AppName:                   "EduCert",
		SecretKey:                 []byte("secret"),
		FrontendBaseURL:           "http://localhost:3000",
		PasswordResetTimeoutDelta: 3 * 24 * time.Hour,
	}
	conf.Server.ShutdownTimeout = 5 * time.Second
	conf.Server.JWTExpirationDelta = 10 * time.Minute
	conf.Server.JWTRefreshExpirationDelta = 4 * time.Hour

	translator, _ := ut.New(en.New()).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	db, err := dummydb.Open()
	if err != nil {
		os.Exit(1)
	}
	mailSvc := emailsvc.NewConsoleServiceMock(conf)

	usrSvc = user.NewService(dummydb.NewUserRepository(db), mailSvc, conf)
	courseSvc = course.NewService(dummydb.NewCourseRepository(db))
	enrollSvc = enrollment.NewService(dummydb.NewEnrollmentRepository(db), courseSvc)
	assignSvc = assignment.NewService(dummydb.NewAssignmentRepository(db))
	examSvc = exam.NewService(dummydb.NewExamRepository(db))
	certSvc = certification.NewService(dummydb.NewCertificationRepository(db))
	paymentSvc = payment.NewService(dummydb.NewPaymentRepository(db))
	reportSvc = report.NewService(dummydb.NewReportRepository(db), enrollSvc, courseSvc)
	notifSvc = notification.NewService(dummydb.NewNotificationRepository(db), usrSvc, mailSvc)

	app = NewServer(
		"",  /* addr */
		nil, /* shutdown */
		&Deps{
			Conf:       conf,
			Logger:     testLogger{},
			Validate:   validate,
			Translator: translator,
			UserSvc:    usrSvc,
			CourseSvc:  courseSvc,
			EnrollSvc:  enrollSvc,
			AssignSvc:  assignSvc,
			ExamSvc:    examSvc,
			CertSvc:    certSvc,
			PaymentSvc: paymentSvc,
			ReportSvc:  reportSvc,
			NotifSvc:   notifSvc,
		},
	)

	os.Exit(m.Run())
}

type httpErr struct {
	Message string `json:"message"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	claims := GetUserClaims(usr)
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func itoa(id int) string {
	return strconv.Itoa(id)
}

// Seed helpers

func createTestUser(t *testing.T, name, email, role string) user.User {
	t.Helper()
	nu := user.NewUser{
		Email:    email,
		Name:     name,
		Password: "S3cretPwd!",
		Role:     role,
	}
	usr, err := usrSvc.Register(context.Background(), nu)
	if err != nil {
		t.Fatalf("createTestUser(): %v", err)
	}
	return usr
}

func createTestCourse(t *testing.T, instructorID int, title string) course.Course {
	t.Helper()
	crs, err := courseSvc.Create(context.Background(), course.NewCourse{Title: title}, instructorID)
	if err != nil {
		t.Fatalf("createTestCourse(): %v", err)
	}
	return crs
}

func createTestLecture(t *testing.T, courseID int) course.Lecture {
	t.Helper()
	ctx := context.Background()
	mod, err := courseSvc.CreateModule(ctx, course.NewModule{Title: "Module 1", CourseID: courseID})
	if err != nil {
		t.Fatalf("createTestLecture(): %v", err)
	}
	lec, err := courseSvc.CreateLecture(ctx, course.NewLecture{Title: "Lecture 1", ModuleID: mod.ID})
	if err != nil {
		t.Fatalf("createTestLecture(): %v", err)
	}
	return lec
}

func createTestAssignment(t *testing.T, lectureID, maxPoints int) assignment.Assignment {
	t.Helper()
	asg, err := assignSvc.Create(context.Background(), assignment.NewAssignment{
		Title:     "Assignment 1",
		MaxPoints: maxPoints,
		LectureID: lectureID,
	})
	if err != nil {
		t.Fatalf("createTestAssignment(): %v", err)
	}
	return asg
}

func createTestExam(t *testing.T, courseID, totalPoints, passingScore int) exam.Exam {
	t.Helper()
	exm, err := examSvc.Create(context.Background(), exam.NewExam{
		Title:        "Exam 1",
		TotalPoints:  totalPoints,
		PassingScore: passingScore,
		CourseID:     courseID,
	})
	if err != nil {
		t.Fatalf("createTestExam(): %v", err)
	}
	return exm
}
