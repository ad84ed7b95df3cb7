package service

import (
	"context"
	"errors"
	"testing"

	"blogicum/internal/models"
	"blogicum/internal/repository"

	"github.com/stretchr/testify/require"
)

type postRepoStub struct {
	createFn  func(context.Context, *models.Post) error
	getByIDFn func(context.Context, uint) (*models.Post, error)
	updateFn  func(context.Context, *models.Post) error
	deleteFn  func(context.Context, uint) error
	countFn   func(context.Context, repository.PostQuery) (int64, error)
	listFn    func(context.Context, repository.PostQuery, int, int) ([]*models.Post, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *postRepoStub) Count(ctx context.Context, q repository.PostQuery) (int64, error) {
	return s.countFn(ctx, q)
}
func (s *postRepoStub) List(ctx context.Context, q repository.PostQuery, limit, offset int) ([]*models.Post, error) {
	return s.listFn(ctx, q, limit, offset)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn: func(_ context.Context, p *models.Post) error { p.ID = 1; return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Post, error) {
			return nil, models.NewNotFoundError("Post", id)
		},
		updateFn: func(_ context.Context, _ *models.Post) error { return nil },
		deleteFn: func(_ context.Context, _ uint) error { return nil },
		countFn:  func(_ context.Context, _ repository.PostQuery) (int64, error) { return 0, nil },
		listFn: func(_ context.Context, _ repository.PostQuery, _, _ int) ([]*models.Post, error) {
			return []*models.Post{}, nil
		},
	}
}

type commentRepoStub struct {
	createFn     func(context.Context, *models.Comment) error
	getByIDFn    func(context.Context, uint) (*models.Comment, error)
	listByPostFn func(context.Context, uint) ([]*models.Comment, error)
	updateFn     func(context.Context, *models.Comment) error
	deleteFn     func(context.Context, uint) error
}

func (s *commentRepoStub) Create(ctx context.Context, c *models.Comment) error {
	return s.createFn(ctx, c)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	return s.listByPostFn(ctx, postID)
}
func (s *commentRepoStub) Update(ctx context.Context, c *models.Comment) error {
	return s.updateFn(ctx, c)
}
func (s *commentRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn: func(_ context.Context, c *models.Comment) error { c.ID = 1; return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Comment, error) {
			return nil, models.NewNotFoundError("Comment", id)
		},
		listByPostFn: func(_ context.Context, _ uint) ([]*models.Comment, error) { return []*models.Comment{}, nil },
		updateFn:     func(_ context.Context, _ *models.Comment) error { return nil },
		deleteFn:     func(_ context.Context, _ uint) error { return nil },
	}
}

type categoryRepoStub struct {
	bySlug map[string]*models.Category
	byID   map[uint]*models.Category
}

func (s *categoryRepoStub) Create(_ context.Context, _ *models.Category) error {
	return errors.New("not supported")
}
func (s *categoryRepoStub) GetBySlug(_ context.Context, slug string) (*models.Category, error) {
	if c, ok := s.bySlug[slug]; ok {
		return c, nil
	}
	return nil, models.NewNotFoundError("Category", slug)
}
func (s *categoryRepoStub) GetByID(_ context.Context, id uint) (*models.Category, error) {
	if c, ok := s.byID[id]; ok {
		return c, nil
	}
	return nil, models.NewNotFoundError("Category", id)
}

func newCategoryRepo(categories ...*models.Category) *categoryRepoStub {
	s := &categoryRepoStub{bySlug: map[string]*models.Category{}, byID: map[uint]*models.Category{}}
	for _, c := range categories {
		s.bySlug[c.Slug] = c
		s.byID[c.ID] = c
	}
	return s
}

type locationRepoStub struct {
	byID map[uint]*models.Location
}

func (s *locationRepoStub) Create(_ context.Context, _ *models.Location) error {
	return errors.New("not supported")
}
func (s *locationRepoStub) GetByID(_ context.Context, id uint) (*models.Location, error) {
	if l, ok := s.byID[id]; ok {
		return l, nil
	}
	return nil, models.NewNotFoundError("Location", id)
}

type userRepoStub struct {
	createFn        func(context.Context, *models.User) error
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	takenFn         func(context.Context, string, string, uint) (bool, error)
	updateProfileFn func(context.Context, *models.User, string) error
}

func (s *userRepoStub) Create(ctx context.Context, u *models.User) error {
	return s.createFn(ctx, u)
}
func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Taken(ctx context.Context, column, value string, exceptID uint) (bool, error) {
	return s.takenFn(ctx, column, value, exceptID)
}
func (s *userRepoStub) UpdateProfile(ctx context.Context, u *models.User, previous string) error {
	return s.updateProfileFn(ctx, u, previous)
}

func usersRepo(users ...*models.User) *userRepoStub {
	find := func(match func(*models.User) bool) *models.User {
		for _, u := range users {
			if match(u) {
				copied := *u
				return &copied
			}
		}
		return nil
	}
	return &userRepoStub{
		createFn: func(_ context.Context, _ *models.User) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			if u := find(func(u *models.User) bool { return u.ID == id }); u != nil {
				return u, nil
			}
			return nil, models.NewNotFoundError("User", id)
		},
		getByUsernameFn: func(_ context.Context, username string) (*models.User, error) {
			if u := find(func(u *models.User) bool { return u.Username == username }); u != nil {
				return u, nil
			}
			return nil, models.NewNotFoundError("User", username)
		},
		takenFn: func(_ context.Context, column, value string, exceptID uint) (bool, error) {
			u := find(func(u *models.User) bool {
				if u.ID == exceptID {
					return false
				}
				return (column == "username" && u.Username == value) || (column == "email" && u.Email == value)
			})
			return u != nil, nil
		},
		updateProfileFn: func(_ context.Context, _ *models.User, _ string) error { return nil },
	}
}

func assertErrorCode(t *testing.T, err error, code string) *models.AppError {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, code, appErr.Code)
	return appErr
}
