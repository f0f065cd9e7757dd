// Package userservice manages business logic layer of users.
package userservice

import (
	"context"

	"github.com/AdinarayanSahu/campus-reads/internal/domain"
	"github.com/AdinarayanSahu/campus-reads/pkg/errorspkg"
	"github.com/AdinarayanSahu/campus-reads/pkg/passpkg"
	"github.com/rs/zerolog"
)

// Repo provides data access layer interface needed by user service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package userservice
type Repo interface {
	Create(ctx context.Context, arg domain.CreateUserParams) (domain.User, error)
	Get(ctx context.Context, id int64) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
}

// Service facilitates user service layer logic.
type Service struct {
	repo Repo
}

// New returns user service struct to manage user business logic.
func New(ur Repo) *Service {
	return &Service{
		repo: ur,
	}
}

// NewUserWithoutPassword returns user with removed sensitive data.
func NewUserWithoutPassword(u domain.User) domain.UserWithoutPassword {
	return domain.UserWithoutPassword{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Gender:    u.Gender,
		Mobile:    u.Mobile,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// RegisterParams is the input data to register a library member.
type RegisterParams struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	Gender          string `json:"gender"`
	Mobile          string `json:"mobile"`
}

// Register creates a member account and returns it. New accounts always get
// the USER role; librarians are promoted out of band.
func (s *Service) Register(ctx context.Context, arg RegisterParams) (domain.UserWithoutPassword, error) {
	l := zerolog.Ctx(ctx)

	var result domain.UserWithoutPassword

	if arg.Password != arg.ConfirmPassword {
		return result, domain.ErrPasswordMismatch
	}

	hashedPassword, err := passpkg.Hash(arg.Password)
	if err != nil {
		l.Error().Err(err).Send()
		return result, errorspkg.ErrInternal
	}

	gotUser, err := s.repo.Create(ctx, domain.CreateUserParams{
		Name:           arg.Name,
		Email:          arg.Email,
		HashedPassword: hashedPassword,
		Gender:         arg.Gender,
		Mobile:         arg.Mobile,
		Role:           domain.RoleUser,
	})
	if err != nil {
		return result, err
	}

	return NewUserWithoutPassword(gotUser), nil
}

// CheckPassword checks if the password is valid for the user with the given email.
func (s *Service) CheckPassword(ctx context.Context, email, password string) (domain.UserWithoutPassword, error) {
	l := zerolog.Ctx(ctx)

	var response domain.UserWithoutPassword

	gotUser, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if err == domain.ErrUserNotFound {
			return response, domain.ErrWrongPassword
		}

		return response, err
	}

	if err := passpkg.Check(password, gotUser.HashedPassword); err != nil {
		l.Warn().Err(err).Send()
		return response, domain.ErrWrongPassword
	}

	return NewUserWithoutPassword(gotUser), nil
}

// Get returns the user with the given id.
func (s *Service) Get(ctx context.Context, id int64) (domain.User, error) {
	return s.repo.Get(ctx, id)
}

// List returns all registered users without password data.
func (s *Service) List(ctx context.Context) ([]domain.UserWithoutPassword, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]domain.UserWithoutPassword, 0, len(users))
	for _, u := range users {
		items = append(items, NewUserWithoutPassword(u))
	}

	return items, nil
}
