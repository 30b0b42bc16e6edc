package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"vet-portal/internal/logger"
	"vet-portal/internal/models"
	"vet-portal/internal/storage"
)

var (
	owner    = models.Caller{Subject: "u-1", Phone: "+1000", Role: models.RoleUser}
	stranger = models.Caller{Subject: "u-2", Phone: "+2000", Role: models.RoleUser}
	doctor   = models.Caller{Subject: "d-1", Phone: "+3000", Role: models.RoleDoctor}
)

type fixture struct {
	repo    *fakeRepo
	store   *fakeStore
	locator *storage.Locator
	svc     *AppointmentService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	l, err := storage.NewLocator("https://storage.example.net", "vet-bucket")
	if err != nil {
		t.Fatalf("NewLocator() error = %v", err)
	}
	repo := newFakeRepo()
	store := newFakeStore(l)
	att := NewAttachmentService(store, l, "appointments", logger.Discard(), nil)
	return &fixture{
		repo:    repo,
		store:   store,
		locator: l,
		svc:     NewAppointmentService(repo, att, time.UTC, logger.Discard()),
	}
}

func validInput() models.AppointmentInput {
	return models.AppointmentInput{
		FullName:   "Anna Petrova",
		AnimalType: "cat",
		Nickname:   "Barsik",
		Date:       "2026-05-01",
		Time:       "14:30",
	}
}

func photo(name, body string) *models.Upload {
	return &models.Upload{
		Filename:    name,
		ContentType: "image/jpeg",
		Size:        int64(len(body)),
		Body:        strings.NewReader(body),
	}
}

// --- Book ---

func TestBook_WithPhoto(t *testing.T) {
	f := newFixture(t)

	appt, err := f.svc.Book(context.Background(), owner, validInput(), photo("rex.jpg", "jpeg-bytes"))
	if err != nil {
		t.Fatalf("Book() error = %v", err)
	}
	if appt.UserPhone != "+1000" {
		t.Errorf("UserPhone = %q, want caller phone", appt.UserPhone)
	}
	if !strings.HasPrefix(appt.PhotoKey, "appointments/") || !strings.HasSuffix(appt.PhotoKey, "_rex.jpg") {
		t.Errorf("PhotoKey = %q", appt.PhotoKey)
	}
	if appt.PhotoURL != f.locator.URL(appt.PhotoKey) {
		t.Errorf("PhotoURL = %q, want URL of key", appt.PhotoURL)
	}
	if !f.store.has(appt.PhotoKey) {
		t.Error("photo object not stored")
	}
	want := time.Date(2026, 5, 1, 14, 30, 0, 0, time.UTC)
	if !appt.Date.Equal(want) || appt.Date.Location() != time.UTC {
		t.Errorf("Date = %v, want %v UTC", appt.Date, want)
	}
	stored, _ := f.repo.Get(context.Background(), appt.ID)
	if stored.PhotoURL != appt.PhotoURL {
		t.Errorf("stored PhotoURL = %q, want %q", stored.PhotoURL, appt.PhotoURL)
	}
}

func TestBook_UploadFailureDegradesToNoPhoto(t *testing.T) {
	f := newFixture(t)
	f.store.putErr = errStoreDown

	appt, err := f.svc.Book(context.Background(), owner, validInput(), photo("rex.jpg", "x"))
	if err != nil {
		t.Fatalf("Book() error = %v, want nil on photo failure", err)
	}
	if appt.HasPhoto() {
		t.Errorf("appointment has photo %q/%q after failed upload", appt.PhotoKey, appt.PhotoURL)
	}
	if _, err := f.repo.Get(context.Background(), appt.ID); err != nil {
		t.Errorf("appointment not persisted: %v", err)
	}
}

func TestBook_RecordFailureReleasesUpload(t *testing.T) {
	f := newFixture(t)
	f.repo.createErr = errors.New("db down")

	if _, err := f.svc.Book(context.Background(), owner, validInput(), photo("rex.jpg", "x")); err == nil {
		t.Fatal("Book() error = nil, want error")
	}
	if f.store.count() != 0 {
		t.Errorf("store holds %d objects, want 0 after failed create", f.store.count())
	}
}

func TestBook_Validation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		mutate func(*models.AppointmentInput)
	}{
		{"no name", func(in *models.AppointmentInput) { in.FullName = "  " }},
		{"no animal", func(in *models.AppointmentInput) { in.AnimalType = "" }},
		{"no nickname", func(in *models.AppointmentInput) { in.Nickname = "" }},
		{"bad date", func(in *models.AppointmentInput) { in.Date = "01.05.2026" }},
		{"no time", func(in *models.AppointmentInput) { in.Time = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			_, err := f.svc.Book(context.Background(), owner, in, nil)
			if !errors.Is(err, models.ErrInvalidInput) {
				t.Errorf("Book() error = %v, want ErrInvalidInput", err)
			}
		})
	}

	if _, err := f.svc.Book(context.Background(), models.Caller{Subject: "x"}, validInput(), nil); !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("Book() without caller phone error = %v, want ErrInvalidInput", err)
	}
}

// --- Edit ---

func TestEdit_ReplacePhotoTwiceLeavesOneLiveObject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	appt, err := f.svc.Book(ctx, owner, validInput(), photo("first.jpg", "1"))
	if err != nil {
		t.Fatalf("Book() error = %v", err)
	}
	firstKey := appt.PhotoKey

	second, err := f.svc.Edit(ctx, owner, appt.ID, validInput(), photo("second.jpg", "2"))
	if err != nil {
		t.Fatalf("Edit() #1 error = %v", err)
	}
	third, err := f.svc.Edit(ctx, owner, appt.ID, validInput(), photo("third.jpg", "3"))
	if err != nil {
		t.Fatalf("Edit() #2 error = %v", err)
	}

	if f.store.count() != 1 {
		t.Errorf("live objects = %d, want 1", f.store.count())
	}
	if f.store.has(firstKey) || f.store.has(second.PhotoKey) {
		t.Error("previous photos still stored")
	}
	stored, _ := f.repo.Get(ctx, appt.ID)
	if stored.PhotoKey != third.PhotoKey || !f.store.has(stored.PhotoKey) {
		t.Errorf("record references %q, want live %q", stored.PhotoKey, third.PhotoKey)
	}
	if stored.Version != 3 {
		t.Errorf("Version = %d, want 3", stored.Version)
	}
}

func TestEdit_CommitsRecordBeforeDeletingOldPhoto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	appt, _ := f.svc.Book(ctx, owner, validInput(), photo("old.jpg", "old"))
	oldKey := appt.PhotoKey

	var refAtDelete string
	f.store.onDelete = func(key string) {
		cur, _ := f.repo.Get(ctx, appt.ID)
		refAtDelete = cur.PhotoKey
	}

	updated, err := f.svc.Edit(ctx, owner, appt.ID, validInput(), photo("new.jpg", "new"))
	if err != nil {
		t.Fatalf("Edit() error = %v", err)
	}
	if refAtDelete != updated.PhotoKey {
		t.Errorf("record referenced %q while deleting %q, want new key %q", refAtDelete, oldKey, updated.PhotoKey)
	}
}

func TestEdit_OldPhotoDeleteFailureStillConverges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	appt, _ := f.svc.Book(ctx, owner, validInput(), photo("old.jpg", "old"))
	oldKey := appt.PhotoKey
	f.store.deleteErr = errStoreDown

	updated, err := f.svc.Edit(ctx, owner, appt.ID, validInput(), photo("new.jpg", "new"))
	if err != nil {
		t.Fatalf("Edit() error = %v, want nil on cleanup failure", err)
	}
	stored, _ := f.repo.Get(ctx, appt.ID)
	if stored.PhotoKey != updated.PhotoKey || !f.store.has(stored.PhotoKey) {
		t.Errorf("record references %q, want new live key", stored.PhotoKey)
	}
	if len(f.store.deleted) != 1 || f.store.deleted[0] != oldKey {
		t.Errorf("delete attempts = %v, want [%s]", f.store.deleted, oldKey)
	}
}

func TestEdit_UploadFailureKeepsPreviousPhoto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	appt, _ := f.svc.Book(ctx, owner, validInput(), photo("old.jpg", "old"))
	f.store.putErr = errStoreDown

	in := validInput()
	in.Nickname = "Murzik"
	updated, err := f.svc.Edit(ctx, owner, appt.ID, in, photo("new.jpg", "new"))
	if err != nil {
		t.Fatalf("Edit() error = %v", err)
	}
	if updated.PhotoKey != appt.PhotoKey {
		t.Errorf("PhotoKey = %q, want previous %q", updated.PhotoKey, appt.PhotoKey)
	}
	if updated.Nickname != "Murzik" {
		t.Errorf("Nickname = %q, want %q", updated.Nickname, "Murzik")
	}
	if len(f.store.deleted) != 0 {
		t.Errorf("delete attempts = %v, want none", f.store.deleted)
	}
}

func TestEdit_ConcurrentModificationReleasesNewUpload(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	appt, _ := f.svc.Book(ctx, owner, validInput(), photo("old.jpg", "old"))
	f.repo.beforeUpdate = func(*models.Appointment) {
		f.repo.mu.Lock()
		cur := f.repo.items[appt.ID]
		cur.Version++
		f.repo.items[appt.ID] = cur
		f.repo.mu.Unlock()
	}

	_, err := f.svc.Edit(ctx, owner, appt.ID, validInput(), photo("new.jpg", "new"))
	if !errors.Is(err, models.ErrConflict) {
		t.Fatalf("Edit() error = %v, want ErrConflict", err)
	}
	if f.store.count() != 1 || !f.store.has(appt.PhotoKey) {
		t.Errorf("store should only hold the original photo, has %d objects", f.store.count())
	}
	stored, _ := f.repo.Get(ctx, appt.ID)
	if stored.PhotoKey != appt.PhotoKey {
		t.Errorf("record photo changed to %q on conflict", stored.PhotoKey)
	}
}

func TestEdit_Authorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	appt, _ := f.svc.Book(ctx, owner, validInput(), nil)

	if _, err := f.svc.Edit(ctx, stranger, appt.ID, validInput(), nil); !errors.Is(err, models.ErrForbidden) {
		t.Errorf("Edit() by stranger error = %v, want ErrForbidden", err)
	}

	in := validInput()
	in.PhoneNumber = "+4000"
	updated, err := f.svc.Edit(ctx, doctor, appt.ID, in, nil)
	if err != nil {
		t.Fatalf("Edit() by staff error = %v", err)
	}
	if updated.UserPhone != "+4000" {
		t.Errorf("UserPhone = %q, want staff reassignment to +4000", updated.UserPhone)
	}
}

func TestEdit_OwnerCannotReassignPhone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	appt, _ := f.svc.Book(ctx, owner, validInput(), nil)

	in := validInput()
	in.PhoneNumber = "+9999"
	updated, err := f.svc.Edit(ctx, owner, appt.ID, in, nil)
	if err != nil {
		t.Fatalf("Edit() error = %v", err)
	}
	if updated.UserPhone != owner.Phone {
		t.Errorf("UserPhone = %q, want %q", updated.UserPhone, owner.Phone)
	}
}

func TestEdit_NotFound(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.Edit(context.Background(), owner, uuid.New(), validInput(), nil); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Edit() error = %v, want ErrNotFound", err)
	}
}

// --- Remove ---

func TestRemove_StoreFailureStillRemovesRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	appt, _ := f.svc.Book(ctx, owner, validInput(), photo("rex.jpg", "x"))
	f.store.deleteErr = errStoreDown

	if err := f.svc.Remove(ctx, owner, appt.ID); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, err := f.repo.Get(ctx, appt.ID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("record still present: %v", err)
	}
	if len(f.store.deleted) != 1 || f.store.deleted[0] != appt.PhotoKey {
		t.Errorf("delete attempts = %v, want [%s]", f.store.deleted, appt.PhotoKey)
	}
}

func TestRemove_LegacyRowRecoversKeyFromURL(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	key := "appointments/20250101/legacy_old photo.jpg"
	f.store.objects[key] = []byte("x")
	legacy := &models.Appointment{
		ID:        uuid.New(),
		FullName:  "Anna",
		UserPhone: owner.Phone,
		PhotoURL:  f.locator.URL(key),
	}
	_ = f.repo.Create(ctx, legacy)

	if err := f.svc.Remove(ctx, owner, legacy.ID); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if f.store.has(key) {
		t.Error("legacy photo was not deleted")
	}
}

func TestRemove_MalformedURLIsNothingToDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	legacy := &models.Appointment{
		ID:        uuid.New(),
		UserPhone: owner.Phone,
		PhotoURL:  "https://elsewhere.example.com/other-bucket/x.jpg",
	}
	_ = f.repo.Create(ctx, legacy)

	if err := f.svc.Remove(ctx, owner, legacy.ID); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if len(f.store.deleted) != 0 {
		t.Errorf("delete attempts = %v, want none", f.store.deleted)
	}
	if _, err := f.repo.Get(ctx, legacy.ID); !errors.Is(err, models.ErrNotFound) {
		t.Error("record still present")
	}
}

func TestRemove_Forbidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	appt, _ := f.svc.Book(ctx, owner, validInput(), photo("rex.jpg", "x"))

	if err := f.svc.Remove(ctx, stranger, appt.ID); !errors.Is(err, models.ErrForbidden) {
		t.Errorf("Remove() error = %v, want ErrForbidden", err)
	}
	if !f.store.has(appt.PhotoKey) {
		t.Error("photo deleted by unauthorized caller")
	}
}

// --- listing and dates ---

func TestListMine_OnlyCallerAppointments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, _ = f.svc.Book(ctx, owner, validInput(), nil)
	_, _ = f.svc.Book(ctx, stranger, validInput(), nil)

	mine, err := f.svc.ListMine(ctx, owner)
	if err != nil {
		t.Fatalf("ListMine() error = %v", err)
	}
	if len(mine) != 1 || mine[0].UserPhone != owner.Phone {
		t.Errorf("ListMine() = %+v", mine)
	}
	all, _ := f.svc.ListAll(ctx)
	if len(all) != 2 {
		t.Errorf("ListAll() returned %d, want 2", len(all))
	}
}

func TestParseLocalDateTime(t *testing.T) {
	msk := time.FixedZone("MSK", 3*3600)

	got, err := ParseLocalDateTime("2026-05-01", "09:15", msk)
	if err != nil {
		t.Fatalf("ParseLocalDateTime() error = %v", err)
	}
	want := time.Date(2026, 5, 1, 6, 15, 0, 0, time.UTC)
	if !got.Equal(want) || got.Location() != time.UTC {
		t.Errorf("ParseLocalDateTime() = %v, want %v", got, want)
	}

	withSeconds, err := ParseLocalDateTime("2026-05-01", "09:15:30", msk)
	if err != nil {
		t.Fatalf("ParseLocalDateTime() with seconds error = %v", err)
	}
	if withSeconds.Second() != 30 {
		t.Errorf("seconds = %d, want 30", withSeconds.Second())
	}
}
