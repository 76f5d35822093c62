package impl

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"

	"spurt/config"
	"spurt/internal/domain/entity"
	"spurt/internal/domain/repository"
	"spurt/internal/domain/service"

	"github.com/stretchr/testify/mock"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestConfig() *config.Config {
	return &config.Config{
		SecretKey: config.SecretKeyConfig{Token: "test-signing-secret"},
		App:       config.AppConfig{PublicOrigin: "https://spurt.example"},
		Mail: &config.MailConfig{
			FromAddress: "noreply@234spaces.com",
			FromName:    "234Spaces Admin",
		},
		Media: &config.MediaConfig{
			MaxUploadBytes:     1024,
			AcceptedExtensions: []string{".jpg", ".jpeg", ".png"},
		},
	}
}

// memStore is an in-memory backing store shared by the fake repositories.
type memStore struct {
	mu          sync.Mutex
	users       map[int64]*entity.User
	events      map[int64]*entity.Event
	photos      map[int64]*entity.Photo
	subscribers map[string]*entity.Subscriber
	nextID      int64
}

func newMemStore() *memStore {
	return &memStore{
		users:       map[int64]*entity.User{},
		events:      map[int64]*entity.Event{},
		photos:      map[int64]*entity.Photo{},
		subscribers: map[string]*entity.Subscriber{},
	}
}

func (s *memStore) id() int64 {
	s.nextID++

	return s.nextID
}

func (s *memStore) addEvent(title string) *entity.Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := &entity.Event{ID: s.id(), Title: title}
	s.events[e.ID] = e

	return e
}

func (s *memStore) addPhoto(eventID int64, isMain bool, publicID string) *entity.Photo {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := &entity.Photo{ID: s.id(), EventID: eventID, IsMain: isMain, PublicID: publicID}
	s.photos[p.ID] = p

	return p
}

func (s *memStore) photo(id int64) (entity.Photo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.photos[id]
	if !ok {
		return entity.Photo{}, false
	}

	return *p, true
}

func (s *memStore) user(email string) (entity.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			return *u, true
		}
	}

	return entity.User{}, false
}

type memSnapshot struct {
	users  map[int64]entity.User
	photos map[int64]entity.Photo
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := memSnapshot{users: map[int64]entity.User{}, photos: map[int64]entity.Photo{}}
	for id, u := range s.users {
		snap.users[id] = *u
	}
	for id, p := range s.photos {
		snap.photos[id] = *p
	}

	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users = map[int64]*entity.User{}
	for id, u := range snap.users {
		s.users[id] = &u
	}
	s.photos = map[int64]*entity.Photo{}
	for id, p := range snap.photos {
		s.photos[id] = &p
	}
}

// fakeTxManager runs fn against the store and restores it when fn or the commit fails.
type fakeTxManager struct {
	store     *memStore
	commitErr error
	calls     int
}

func (m *fakeTxManager) Execute(_ context.Context, fn func(repository.RepositoryFactory) error) error {
	m.calls++
	snap := m.store.snapshot()
	if err := fn(&fakeRepoFactory{store: m.store}); err != nil {
		m.store.restore(snap)

		return err
	}
	if m.commitErr != nil {
		m.store.restore(snap)

		return m.commitErr
	}

	return nil
}

type fakeRepoFactory struct {
	store *memStore
}

func (f *fakeRepoFactory) UserRepo() repository.UserRepository {
	return &fakeUserRepo{store: f.store}
}

func (f *fakeRepoFactory) EventRepo() repository.EventRepository {
	return &fakeEventRepo{store: f.store}
}

func (f *fakeRepoFactory) PhotoRepo() repository.PhotoRepository {
	return &fakePhotoRepo{store: f.store}
}

func (f *fakeRepoFactory) SubscriberRepo() repository.SubscriberRepository {
	return &fakeSubscriberRepo{store: f.store}
}

type fakeUserRepo struct {
	store *memStore
}

func (r *fakeUserRepo) FindByID(_ context.Context, id int64) (*entity.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	u, ok := r.store.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u

	return &cp, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	u, ok := r.store.user(email)
	if !ok {
		return nil, repository.ErrUserNotFound
	}

	return &u, nil
}

func (r *fakeUserRepo) Create(_ context.Context, user *entity.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, u := range r.store.users {
		if strings.EqualFold(u.Email, user.Email) {
			return repository.ErrDuplicateUser
		}
	}
	user.ID = r.store.id()
	cp := *user
	r.store.users[user.ID] = &cp

	return nil
}

func (r *fakeUserRepo) MarkEmailVerified(_ context.Context, id int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	u, ok := r.store.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.EmailVerified = true

	return nil
}

type fakeEventRepo struct {
	store *memStore
}

func (r *fakeEventRepo) Create(_ context.Context, event *entity.Event) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	event.ID = r.store.id()
	cp := *event
	r.store.events[event.ID] = &cp

	return nil
}

func (r *fakeEventRepo) FindByID(_ context.Context, id int64) (*entity.Event, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	e, ok := r.store.events[id]
	if !ok {
		return nil, repository.ErrEventNotFound
	}
	cp := *e

	return &cp, nil
}

func (r *fakeEventRepo) List(_ context.Context) ([]*entity.Event, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	out := make([]*entity.Event, 0, len(r.store.events))
	for _, e := range r.store.events {
		cp := *e
		out = append(out, &cp)
	}

	return out, nil
}

func (r *fakeEventRepo) Exists(_ context.Context, id int64) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	_, ok := r.store.events[id]

	return ok, nil
}

type fakePhotoRepo struct {
	store     *memStore
	createErr error
}

func (r *fakePhotoRepo) FindByID(_ context.Context, id int64) (*entity.Photo, error) {
	p, ok := r.store.photo(id)
	if !ok {
		return nil, repository.ErrPhotoNotFound
	}

	return &p, nil
}

func (r *fakePhotoRepo) FindByIDForUpdate(ctx context.Context, id int64) (*entity.Photo, error) {
	return r.FindByID(ctx, id)
}

func (r *fakePhotoRepo) FindMainByEvent(_ context.Context, eventID int64) (*entity.Photo, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, p := range r.store.photos {
		if p.EventID == eventID && p.IsMain {
			cp := *p

			return &cp, nil
		}
	}

	return nil, repository.ErrPhotoNotFound
}

func (r *fakePhotoRepo) Create(_ context.Context, photo *entity.Photo) error {
	if r.createErr != nil {
		return r.createErr
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	photo.ID = r.store.id()
	cp := *photo
	r.store.photos[photo.ID] = &cp

	return nil
}

func (r *fakePhotoRepo) SetMainFlag(_ context.Context, id int64, isMain bool) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	p, ok := r.store.photos[id]
	if !ok {
		return repository.ErrPhotoNotFound
	}
	if isMain {
		for _, other := range r.store.photos {
			if other.ID != id && other.EventID == p.EventID && other.IsMain {
				return repository.ErrMainPhotoConflict
			}
		}
	}
	p.IsMain = isMain

	return nil
}

func (r *fakePhotoRepo) ClearMainFlags(_ context.Context, eventID, keepID int64) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var n int64
	for _, p := range r.store.photos {
		if p.EventID == eventID && p.IsMain && p.ID != keepID {
			p.IsMain = false
			n++
		}
	}

	return n, nil
}

func (r *fakePhotoRepo) Delete(_ context.Context, id int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.photos[id]; !ok {
		return repository.ErrPhotoNotFound
	}
	delete(r.store.photos, id)

	return nil
}

type fakeSubscriberRepo struct {
	store *memStore
}

func (r *fakeSubscriberRepo) Create(_ context.Context, subscriber *entity.Subscriber) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.subscribers[subscriber.Email]; ok {
		return repository.ErrDuplicateSubscriber
	}
	cp := *subscriber
	r.store.subscribers[subscriber.Email] = &cp

	return nil
}

// fakeUniquenessRepo compares users ignoring case and subscribers exactly.
type fakeUniquenessRepo struct {
	store *memStore
}

func (r *fakeUniquenessRepo) EntityExists(_ context.Context, candidate entity.UniquenessCheckable) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	key := candidate.UniqueKey()
	switch candidate.Kind() {
	case entity.EntityKindUser:
		for _, u := range r.store.users {
			if strings.EqualFold(u.Email, key) {
				return true, nil
			}
		}

		return false, nil
	case entity.EntityKindSubscriber:
		_, ok := r.store.subscribers[key]

		return ok, nil
	default:
		return false, nil
	}
}

// countingHasher wraps a real hasher and counts Verify calls.
type countingHasher struct {
	service.PasswordHasher

	mu          sync.Mutex
	verifyCalls int
}

func (h *countingHasher) Verify(password string, storedHash, storedSalt []byte) (bool, error) {
	h.mu.Lock()
	h.verifyCalls++
	h.mu.Unlock()

	return h.PasswordHasher.Verify(password, storedHash, storedSalt)
}

func (h *countingHasher) verifications() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.verifyCalls
}

type mockMediaHost struct {
	mock.Mock
}

func (m *mockMediaHost) Upload(ctx context.Context, fileName string, r io.Reader) (string, string, error) {
	args := m.Called(ctx, fileName, r)

	return args.String(0), args.String(1), args.Error(2)
}

func (m *mockMediaHost) Delete(ctx context.Context, publicID string) error {
	args := m.Called(ctx, publicID)

	return args.Error(0)
}

// recordingSender captures sent messages. When release is set, Send blocks until it is closed.
type recordingSender struct {
	release chan struct{}
	sent    chan *service.EmailMessage
	err     error
}

func newRecordingSender() *recordingSender {
	return &recordingSender{sent: make(chan *service.EmailMessage, 4)}
}

func (s *recordingSender) Send(ctx context.Context, msg *service.EmailMessage) error {
	if s.release != nil {
		select {
		case <-s.release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	s.sent <- msg

	return s.err
}

func (s *recordingSender) Close() error {
	return nil
}
