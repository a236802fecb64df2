package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/educert/backend/core"
	"github.com/educert/backend/core/course"
)

var (
	coursePKCount  int
	modulePKCount  int
	lecturePKCount int
	contentPKCount int
	reviewPKCount  int
)

type courseRepository struct {
	db    *courseTable
	users *userTable
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *DB) *courseRepository {
	return &courseRepository{db: db.course, users: db.user}
}

func (repo *courseRepository) instructorName(id int) string {
	repo.users.RLock()
	defer repo.users.RUnlock()
	if usr, ok := repo.users.table[id]; ok {
		return usr.Name
	}
	return ""
}

// aggregate fills the derived fields; a course without reviews averages 0.
func (repo *courseRepository) aggregate(crs course.Course) course.Course {
	var sum, count int
	for _, rev := range repo.db.reviews {
		if rev.CourseID == crs.ID {
			sum += rev.Rating
			count++
		}
	}
	crs.AverageRating = 0
	if count > 0 {
		crs.AverageRating = float64(sum) / float64(count)
	}
	crs.ReviewCount = count
	crs.InstructorName = repo.instructorName(crs.InstructorID)
	return crs
}

func (repo *courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	coursePKCount++
	crs.ID = coursePKCount
	repo.db.courses[crs.ID] = &crs
	return repo.aggregate(crs), nil
}

func (repo *courseRepository) FilterCourses(ctx context.Context, filter course.QueryFilter, ordering ...core.DBOrdering) ([]course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	courses := make([]course.Course, 0, len(repo.db.courses))
	for _, crs := range repo.db.courses {
		c := repo.aggregate(*crs)
		if filter.Title != "" && !strings.Contains(strings.ToLower(c.Title), strings.ToLower(filter.Title)) {
			continue
		}
		if filter.Difficulty != "" && c.Difficulty != filter.Difficulty {
			continue
		}
		if filter.Language != "" && c.Language != filter.Language {
			continue
		}
		if filter.InstructorID != 0 && c.InstructorID != filter.InstructorID {
			continue
		}
		if filter.InstructorName != "" && !strings.Contains(strings.ToLower(c.InstructorName), strings.ToLower(filter.InstructorName)) {
			continue
		}
		courses = append(courses, c)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].ID < courses[j].ID })
	return courses, nil
}

func (repo *courseRepository) GetCourseByID(ctx context.Context, id int) (course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if crs, ok := repo.db.courses[id]; ok {
		return repo.aggregate(*crs), nil
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) GetCourseDetail(ctx context.Context, id int) (course.Course, error) {
	crs, err := repo.GetCourseByID(ctx, id)
	if err != nil {
		return course.Course{}, err
	}
	if crs.Modules, err = repo.QueryCourseModules(ctx, id); err != nil {
		return course.Course{}, err
	}
	for i := range crs.Modules {
		if crs.Modules[i].Lectures, err = repo.QueryModuleLectures(ctx, crs.Modules[i].ID); err != nil {
			return course.Course{}, err
		}
		for j := range crs.Modules[i].Lectures {
			lec := &crs.Modules[i].Lectures[j]
			if lec.Contents, err = repo.QueryLectureContents(ctx, lec.ID); err != nil {
				return course.Course{}, err
			}
		}
	}
	if crs.Reviews, err = repo.QueryCourseReviews(ctx, id); err != nil {
		return course.Course{}, err
	}
	return crs, nil
}

func (repo *courseRepository) UpdateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.courses[crs.ID]; !ok {
		return course.Course{}, course.ErrNotFound
	}
	repo.db.courses[crs.ID] = &crs
	return repo.aggregate(crs), nil
}

func (repo *courseRepository) DeleteCourse(ctx context.Context, id int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.courses[id]; !ok {
		return course.ErrNotFound
	}
	delete(repo.db.courses, id)

	// cascade through the containment hierarchy
	for mid, mod := range repo.db.modules {
		if mod.CourseID != id {
			continue
		}
		for lid, lec := range repo.db.lectures {
			if lec.ModuleID != mid {
				continue
			}
			for cid, cnt := range repo.db.contents {
				if cnt.LectureID == lid {
					delete(repo.db.contents, cid)
				}
			}
			delete(repo.db.lectures, lid)
		}
		delete(repo.db.modules, mid)
	}
	for rid, rev := range repo.db.reviews {
		if rev.CourseID == id {
			delete(repo.db.reviews, rid)
		}
	}
	return nil
}

func (repo *courseRepository) CreateModule(ctx context.Context, mod course.Module) (course.Module, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	modulePKCount++
	mod.ID = modulePKCount
	repo.db.modules[mod.ID] = &mod
	return mod, nil
}

func (repo *courseRepository) GetModuleByID(ctx context.Context, id int) (course.Module, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if mod, ok := repo.db.modules[id]; ok {
		return *mod, nil
	}
	return course.Module{}, course.ErrModuleNotFound
}

func (repo *courseRepository) QueryCourseModules(ctx context.Context, courseID int) ([]course.Module, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var mods []course.Module
	for _, mod := range repo.db.modules {
		if mod.CourseID == courseID {
			mods = append(mods, *mod)
		}
	}
	sort.Slice(mods, func(i, j int) bool { return mods[i].OrderNumber < mods[j].OrderNumber })
	return mods, nil
}

func (repo *courseRepository) UpdateModule(ctx context.Context, mod course.Module) (course.Module, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.modules[mod.ID]; !ok {
		return course.Module{}, course.ErrModuleNotFound
	}
	repo.db.modules[mod.ID] = &mod
	return mod, nil
}

func (repo *courseRepository) DeleteModule(ctx context.Context, id int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.modules[id]; !ok {
		return course.ErrModuleNotFound
	}
	delete(repo.db.modules, id)
	for lid, lec := range repo.db.lectures {
		if lec.ModuleID != id {
			continue
		}
		for cid, cnt := range repo.db.contents {
			if cnt.LectureID == lid {
				delete(repo.db.contents, cid)
			}
		}
		delete(repo.db.lectures, lid)
	}
	return nil
}

func (repo *courseRepository) CreateLecture(ctx context.Context, lec course.Lecture) (course.Lecture, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	lecturePKCount++
	lec.ID = lecturePKCount
	repo.db.lectures[lec.ID] = &lec
	return lec, nil
}

func (repo *courseRepository) GetLectureByID(ctx context.Context, id int) (course.Lecture, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if lec, ok := repo.db.lectures[id]; ok {
		return *lec, nil
	}
	return course.Lecture{}, course.ErrLectureNotFound
}

func (repo *courseRepository) QueryModuleLectures(ctx context.Context, moduleID int) ([]course.Lecture, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var lecs []course.Lecture
	for _, lec := range repo.db.lectures {
		if lec.ModuleID == moduleID {
			lecs = append(lecs, *lec)
		}
	}
	sort.Slice(lecs, func(i, j int) bool { return lecs[i].OrderNumber < lecs[j].OrderNumber })
	return lecs, nil
}

func (repo *courseRepository) UpdateLecture(ctx context.Context, lec course.Lecture) (course.Lecture, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.lectures[lec.ID]; !ok {
		return course.Lecture{}, course.ErrLectureNotFound
	}
	repo.db.lectures[lec.ID] = &lec
	return lec, nil
}

func (repo *courseRepository) DeleteLecture(ctx context.Context, id int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.lectures[id]; !ok {
		return course.ErrLectureNotFound
	}
	delete(repo.db.lectures, id)
	for cid, cnt := range repo.db.contents {
		if cnt.LectureID == id {
			delete(repo.db.contents, cid)
		}
	}
	return nil
}

func (repo *courseRepository) CreateContent(ctx context.Context, cnt course.Content) (course.Content, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	contentPKCount++
	cnt.ID = contentPKCount
	repo.db.contents[cnt.ID] = &cnt
	return cnt, nil
}

func (repo *courseRepository) GetContentByID(ctx context.Context, id int) (course.Content, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if cnt, ok := repo.db.contents[id]; ok {
		return *cnt, nil
	}
	return course.Content{}, course.ErrContentNotFound
}

func (repo *courseRepository) QueryLectureContents(ctx context.Context, lectureID int) ([]course.Content, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var cnts []course.Content
	for _, cnt := range repo.db.contents {
		if cnt.LectureID == lectureID {
			cnts = append(cnts, *cnt)
		}
	}
	sort.Slice(cnts, func(i, j int) bool { return cnts[i].ID < cnts[j].ID })
	return cnts, nil
}

func (repo *courseRepository) UpdateContent(ctx context.Context, cnt course.Content) (course.Content, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.contents[cnt.ID]; !ok {
		return course.Content{}, course.ErrContentNotFound
	}
	repo.db.contents[cnt.ID] = &cnt
	return cnt, nil
}

func (repo *courseRepository) DeleteContent(ctx context.Context, id int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.contents[id]; !ok {
		return course.ErrContentNotFound
	}
	delete(repo.db.contents, id)
	return nil
}

func (repo *courseRepository) CreateReview(ctx context.Context, rev course.Review) (course.Review, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	reviewPKCount++
	rev.ID = reviewPKCount
	repo.db.reviews[rev.ID] = &rev
	return rev, nil
}

func (repo *courseRepository) CheckReviewUniqueness(ctx context.Context, studentID, courseID int) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, rev := range repo.db.reviews {
		if rev.StudentID == studentID && rev.CourseID == courseID {
			return course.ErrReviewExists
		}
	}
	return nil
}

func (repo *courseRepository) QueryCourseReviews(ctx context.Context, courseID int) ([]course.Review, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var revs []course.Review
	for _, rev := range repo.db.reviews {
		if rev.CourseID == courseID {
			revs = append(revs, *rev)
		}
	}
	sort.Slice(revs, func(i, j int) bool { return revs[i].Date.After(revs[j].Date) })
	return revs, nil
}

func (repo *courseRepository) QueryRatingStats(ctx context.Context) ([]course.RatingStat, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	stats := make([]course.RatingStat, 0, len(repo.db.courses))
	for _, crs := range repo.db.courses {
		c := repo.aggregate(*crs)
		stats = append(stats, course.RatingStat{
			CourseID:      c.ID,
			Title:         c.Title,
			AverageRating: c.AverageRating,
			ReviewCount:   c.ReviewCount,
		})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].AverageRating > stats[j].AverageRating })
	return stats, nil
}
