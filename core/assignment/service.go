package assignment

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/educert/backend/core"
)

var (
	// ErrNotFound is returned when a requested assignment does not exist.
	ErrNotFound = core.NewNotFoundError("assignment not found")
	// ErrSubmissionNotFound is returned when a requested submission does not exist.
	ErrSubmissionNotFound = core.NewNotFoundError("submission not found")
	// ErrGradeTooHigh rejects a grade above the assignment's maximum.
	ErrGradeTooHigh = core.NewValidationError(errors.New("grade exceeds the assignment's maximum points"))
)

type (
	Repository interface {
		CreateAssignment(ctx context.Context, asg Assignment) (Assignment, error)
		GetAssignmentByID(ctx context.Context, id int) (Assignment, error)
		QueryLectureAssignments(ctx context.Context, lectureID int) ([]Assignment, error)
		UpdateAssignment(ctx context.Context, asg Assignment) (Assignment, error)
		DeleteAssignment(ctx context.Context, id int) error

		CreateSubmission(ctx context.Context, sub Submission) (Submission, error)
		GetSubmissionByID(ctx context.Context, id int) (Submission, error)
		GetSubmission(ctx context.Context, studentID, assignmentID int) (Submission, error)
		QueryAssignmentSubmissions(ctx context.Context, assignmentID int) ([]Submission, error)
		QueryStudentSubmissions(ctx context.Context, studentID int) ([]Submission, error)
		UpdateSubmission(ctx context.Context, sub Submission) (Submission, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, na NewAssignment) (Assignment, error) {
	now := time.Now().UTC()
	asg := Assignment{
		Title:     na.Title,
		DueDate:   na.DueDate,
		MaxPoints: na.MaxPoints,
		Weight:    na.Weight,
		LectureID: na.LectureID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	asg, err := svc.repo.CreateAssignment(ctx, asg)
	return asg, errors.Wrap(err, "creating assignment")
}

func (svc *Service) GetByID(ctx context.Context, id int) (Assignment, error) {
	return svc.repo.GetAssignmentByID(ctx, id)
}

func (svc *Service) QueryByLecture(ctx context.Context, lectureID int) ([]Assignment, error) {
	asgs, err := svc.repo.QueryLectureAssignments(ctx, lectureID)
	return asgs, errors.Wrap(err, "querying lecture assignments")
}

func (svc *Service) Update(ctx context.Context, orig Assignment, ua UpdateAssignment) (Assignment, error) {
	orig.Title = ua.Title
	orig.DueDate = ua.DueDate
	orig.MaxPoints = ua.MaxPoints
	orig.Weight = ua.Weight
	orig.UpdatedAt = time.Now().UTC()
	asg, err := svc.repo.UpdateAssignment(ctx, orig)
	return asg, errors.Wrap(err, "updating assignment")
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	return errors.Wrap(svc.repo.DeleteAssignment(ctx, id), "deleting assignment")
}

// Submit records the student's work on an assignment. A student holds at most
// one submission per assignment; submitting again overwrites the content and
// date on the existing row and resets any prior grading.
func (svc *Service) Submit(ctx context.Context, studentID, assignmentID int, content string) (Submission, error) {
	if _, err := svc.repo.GetAssignmentByID(ctx, assignmentID); err != nil {
		return Submission{}, err
	}
	now := time.Now().UTC()

	sub, err := svc.repo.GetSubmission(ctx, studentID, assignmentID)
	switch {
	case err == nil:
		sub.SubmissionContent = content
		sub.SubmissionDate = now
		sub.Grade = null.Int{}
		sub.FeedbackText = ""
		sub, err = svc.repo.UpdateSubmission(ctx, sub)
		return sub, errors.Wrap(err, "updating submission")
	case core.IsNotFound(err):
		sub = Submission{
			SubmissionContent: content,
			SubmissionDate:    now,
			StudentID:         studentID,
			AssignmentID:      assignmentID,
		}
		sub, err = svc.repo.CreateSubmission(ctx, sub)
		return sub, errors.Wrap(err, "creating submission")
	default:
		return Submission{}, errors.Wrap(err, "checking existing submission")
	}
}

func (svc *Service) GetSubmissionByID(ctx context.Context, id int) (Submission, error) {
	return svc.repo.GetSubmissionByID(ctx, id)
}

func (svc *Service) GetSubmission(ctx context.Context, studentID, assignmentID int) (Submission, error) {
	return svc.repo.GetSubmission(ctx, studentID, assignmentID)
}

func (svc *Service) QuerySubmissions(ctx context.Context, assignmentID int) ([]Submission, error) {
	if _, err := svc.repo.GetAssignmentByID(ctx, assignmentID); err != nil {
		return nil, err
	}
	subs, err := svc.repo.QueryAssignmentSubmissions(ctx, assignmentID)
	return subs, errors.Wrap(err, "querying assignment submissions")
}

func (svc *Service) QueryStudentSubmissions(ctx context.Context, studentID int) ([]Submission, error) {
	subs, err := svc.repo.QueryStudentSubmissions(ctx, studentID)
	return subs, errors.Wrap(err, "querying student submissions")
}

// Grade records an instructor's mark and feedback on a submission.
func (svc *Service) Grade(ctx context.Context, submissionID int, gs GradeSubmission) (Submission, error) {
	sub, err := svc.repo.GetSubmissionByID(ctx, submissionID)
	if err != nil {
		return Submission{}, err
	}
	asg, err := svc.repo.GetAssignmentByID(ctx, sub.AssignmentID)
	if err != nil {
		return Submission{}, err
	}
	if asg.MaxPoints > 0 && gs.Grade > asg.MaxPoints {
		return Submission{}, ErrGradeTooHigh
	}
	sub.Grade = null.IntFrom(gs.Grade)
	sub.FeedbackText = gs.FeedbackText
	sub, err = svc.repo.UpdateSubmission(ctx, sub)
	return sub, errors.Wrap(err, "grading submission")
}
