package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"bitwise74/files-api/internal/blob"
	"bitwise74/files-api/internal/model"
	"bitwise74/files-api/internal/repository"
	"bitwise74/files-api/internal/session"
	"bitwise74/files-api/pkg/security"

	"github.com/stretchr/testify/require"
)

// recordingQueue keeps enqueued jobs instead of running them
type recordingQueue struct {
	mu   sync.Mutex
	jobs []model.ThumbnailJob
	err  error
}

func (q *recordingQueue) Enqueue(_ context.Context, job model.ThumbnailJob) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.err != nil {
		return q.err
	}

	q.jobs = append(q.jobs, job)
	return nil
}

func (q *recordingQueue) Jobs() []model.ThumbnailJob {
	q.mu.Lock()
	defer q.mu.Unlock()

	return append([]model.ThumbnailJob(nil), q.jobs...)
}

type testEnv struct {
	sessions *session.Store
	repo     repository.Repository
	blobs    *blob.Local
	queue    *recordingQueue
	users    *Users
	files    *Files
}

// Cheap parameters, the real ones take a noticeable time per hash
func testArgon() *security.ArgonHash {
	return &security.ArgonHash{
		Memory:      1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	return newTestEnvTTL(t, time.Hour)
}

// newTestEnvTTL is newTestEnv with sessions lasting ttl
func newTestEnvTTL(t *testing.T, ttl time.Duration) *testEnv {
	t.Helper()
	ctx := context.Background()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	repo, err := repository.NewSQL(ctx, repository.SQLOpts{
		Driver: "sqlite",
		DSN:    fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano()),
	})
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close(ctx) })

	blobs, err := blob.NewLocal(t.TempDir())
	require.NoError(t, err)

	sessions := session.NewStore(session.NewMemory(), ttl)
	t.Cleanup(func() { sessions.Close() })

	q := &recordingQueue{}

	return &testEnv{
		sessions: sessions,
		repo:     repo,
		blobs:    blobs,
		queue:    q,
		users:    NewUsers(sessions, repo, testArgon()),
		files:    NewFiles(sessions, repo, blobs, q),
	}
}

// login registers email and returns a session token for it
func (e *testEnv) login(t *testing.T, email string) string {
	t.Helper()
	ctx := context.Background()

	_, err := e.users.Register(ctx, email, "toto1234!")
	require.NoError(t, err)

	return e.connect(t, email)
}

// connect opens a new session for an already registered email
func (e *testEnv) connect(t *testing.T, email string) string {
	t.Helper()

	token, err := e.users.Connect(context.Background(), email, "toto1234!")
	require.NoError(t, err)

	return token
}
