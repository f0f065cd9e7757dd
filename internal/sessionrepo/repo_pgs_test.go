package sessionrepo

import (
	"context"
	"database/sql"
	"log"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/AdinarayanSahu/campus-reads/internal/domain"
	"github.com/AdinarayanSahu/campus-reads/internal/userrepo"
	"github.com/AdinarayanSahu/campus-reads/pkg/configpkg"
	"github.com/AdinarayanSahu/campus-reads/pkg/passpkg"
	"github.com/AdinarayanSahu/campus-reads/pkg/randompkg"
)

var (
	testRepo     *RepoPGS
	testUserRepo *userrepo.RepoPGS
)

func TestMain(m *testing.M) {
	config, err := configpkg.Load("../../configs")
	if err != nil {
		log.Fatal("cannot load config:", err)
	}

	testDB, err := sql.Open(config.DBDriver, config.DBSource)
	if err != nil {
		log.Fatal("cannot connect to db:", err)
	}

	testRepo = NewRepoPGS(testDB)
	testUserRepo = userrepo.NewRepoPGS(testDB)

	os.Exit(m.Run())
}

func createRandomUser(t *testing.T) domain.User {
	t.Helper()

	hashedPassword, err := passpkg.Hash(randompkg.String(10))
	require.NoError(t, err)

	user, err := testUserRepo.Create(context.Background(), domain.CreateUserParams{
		Name:           randompkg.Name(),
		Email:          randompkg.Email(),
		HashedPassword: hashedPassword,
		Role:           domain.RoleUser,
	})
	require.NoError(t, err)

	return user
}

func createRandomSession(t *testing.T, user domain.User) domain.Session {
	t.Helper()

	arg := domain.CreateSessionParams{
		ID:           uuid.New(),
		UserID:       user.ID,
		RefreshToken: randompkg.String(32),
		UserAgent:    "test-agent",
		ClientIP:     "127.0.0.1",
		ExpiresAt:    time.Now().Add(time.Hour),
	}

	sess, err := testRepo.Create(context.Background(), arg)
	require.NoError(t, err)

	require.Equal(t, arg.ID, sess.ID)
	require.Equal(t, arg.UserID, sess.UserID)
	require.Equal(t, arg.RefreshToken, sess.RefreshToken)
	require.False(t, sess.IsBlocked)
	require.NotZero(t, sess.CreatedAt)

	return sess
}

func TestCreate(t *testing.T) {
	user := createRandomUser(t)
	createRandomSession(t, user)
}

func TestCreateUnknownUser(t *testing.T) {
	arg := domain.CreateSessionParams{
		ID:           uuid.New(),
		UserID:       -1,
		RefreshToken: randompkg.String(32),
		ExpiresAt:    time.Now().Add(time.Hour),
	}

	_, err := testRepo.Create(context.Background(), arg)
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestGet(t *testing.T) {
	user := createRandomUser(t)
	sess := createRandomSession(t, user)

	got, err := testRepo.Get(context.Background(), sess.ID)
	require.NoError(t, err)
	require.Equal(t, sess.ID, got.ID)
	require.Equal(t, sess.RefreshToken, got.RefreshToken)

	_, err = testRepo.Get(context.Background(), uuid.New())
	require.ErrorIs(t, err, domain.ErrSessionNotFound)
}
