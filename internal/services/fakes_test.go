package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"vet-portal/internal/models"
	"vet-portal/internal/storage"
)

// --- fakes ---

// fakeRepo is an in-memory AppointmentRepository with version checks.
type fakeRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]models.Appointment

	createErr error
	deleteErr error
	// beforeUpdate runs before the version check, under no lock.
	beforeUpdate func(appt *models.Appointment)
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{items: map[uuid.UUID]models.Appointment{}}
}

func (r *fakeRepo) Create(ctx context.Context, appt *models.Appointment) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if appt.Version == 0 {
		appt.Version = 1
	}
	r.items[appt.ID] = *appt
	return nil
}

func (r *fakeRepo) Get(ctx context.Context, id uuid.UUID) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.items[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &a, nil
}

func (r *fakeRepo) ListByPhone(ctx context.Context, phone string) ([]models.Appointment, error) {
	all, _ := r.ListAll(ctx)
	var out []models.Appointment
	for _, a := range all {
		if a.UserPhone == phone {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListAll(ctx context.Context) ([]models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Appointment, 0, len(r.items))
	for _, a := range r.items {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r *fakeRepo) Update(ctx context.Context, appt *models.Appointment) error {
	if r.beforeUpdate != nil {
		r.beforeUpdate(appt)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.items[appt.ID]
	if !ok {
		return models.ErrNotFound
	}
	if cur.Version != appt.Version {
		return models.ErrConflict
	}
	appt.Version++
	r.items[appt.ID] = *appt
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return models.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

// fakeStore is an in-memory PhotoStore.
type fakeStore struct {
	mu      sync.Mutex
	locator *storage.Locator
	objects map[string][]byte

	putErr    error
	deleteErr error
	deleted   []string
	onDelete  func(key string)
}

func newFakeStore(l *storage.Locator) *fakeStore {
	return &fakeStore{locator: l, objects: map[string][]byte{}}
}

func (s *fakeStore) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	if s.putErr != nil {
		return "", s.putErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	return s.locator.URL(key), nil
}

func (s *fakeStore) Delete(ctx context.Context, key string) storage.DeleteResult {
	if s.onDelete != nil {
		s.onDelete(key)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, key)
	if s.deleteErr != nil {
		return storage.DeleteResult{Key: key, Outcome: storage.DeleteFailed, Err: s.deleteErr}
	}
	if _, ok := s.objects[key]; !ok {
		return storage.DeleteResult{Key: key, Outcome: storage.DeleteNotFound}
	}
	delete(s.objects, key)
	return storage.DeleteResult{Key: key, Outcome: storage.DeleteDeleted}
}

func (s *fakeStore) List(ctx context.Context, prefix string, maxResults int) ([]models.StoredObject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.StoredObject
	for key, data := range s.objects {
		if strings.HasPrefix(key, prefix) {
			out = append(out, models.StoredObject{Key: key, Size: int64(len(data)), URL: s.locator.URL(key)})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	if len(out) > maxResults {
		out = out[:maxResults]
	}
	return out, nil
}

func (s *fakeStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *fakeStore) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[key]
	return ok
}

func (s *fakeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

var errStoreDown = errors.New("store unavailable")
