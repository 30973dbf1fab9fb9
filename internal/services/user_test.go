package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/nadavbr/lessonforge-backend/internal/apierr"
	"github.com/nadavbr/lessonforge-backend/internal/logger"
	"github.com/nadavbr/lessonforge-backend/internal/repos"
	"github.com/nadavbr/lessonforge-backend/internal/types"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := gdb.AutoMigrate(&types.User{}, &types.Category{}, &types.SubCategory{}, &types.Lesson{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return gdb
}

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func newUserService(t *testing.T) (UserService, *gorm.DB) {
	t.Helper()
	gdb := newTestDB(t)
	log := newTestLogger(t)
	return NewUserService(gdb, log, repos.NewUserRepo(gdb, log)), gdb
}

func assertStatus(t *testing.T, err error, want int) {
	t.Helper()
	var ae *apierr.Error
	if !errors.As(err, &ae) {
		t.Fatalf("error type: want *apierr.Error, got %T (%v)", err, err)
	}
	if ae.Status != want {
		t.Fatalf("status: want=%d got=%d", want, ae.Status)
	}
}

func TestNormalizePhoneStripsAllWhitespace(t *testing.T) {
	for _, in := range []string{"0541234567", "054 123 4567", " 054\t123 4567 ", "054 123 4567"} {
		if got := NormalizePhone(in); got != "0541234567" {
			t.Fatalf("NormalizePhone(%q): got=%q", in, got)
		}
	}
	// idempotent
	if got := NormalizePhone(NormalizePhone("054 123 4567")); got != "0541234567" {
		t.Fatalf("double normalize: got=%q", got)
	}
}

func TestRegisterConflictsOnNormalizedPhone(t *testing.T) {
	us, gdb := newUserService(t)
	ctx := context.Background()

	first, err := us.Register(ctx, "Dana", "054 123 4567")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if first.Phone != "0541234567" {
		t.Fatalf("stored phone: got=%q", first.Phone)
	}

	_, err = us.Register(ctx, "Dana Again", "0541 234 567")
	assertStatus(t, err, http.StatusConflict)

	var count int64
	if err := gdb.Model(&types.User{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("user rows: want=1 got=%d", count)
	}
}

func TestCheckByPhoneIsWhitespaceInsensitive(t *testing.T) {
	us, _ := newUserService(t)
	ctx := context.Background()

	if _, err := us.Register(ctx, "Noa", "0521112233"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	found, err := us.CheckByPhone(ctx, " 052 111 22 33 ")
	if err != nil {
		t.Fatalf("CheckByPhone: %v", err)
	}
	if found == nil || found.Name != "Noa" {
		t.Fatalf("found: got=%+v", found)
	}

	missing, err := us.CheckByPhone(ctx, "0529998877")
	if err != nil {
		t.Fatalf("CheckByPhone: %v", err)
	}
	if missing != nil {
		t.Fatalf("missing: want nil, got %+v", missing)
	}
}

func TestListUsersPagination(t *testing.T) {
	us, _ := newUserService(t)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		if _, err := us.Register(ctx, fmt.Sprintf("User %02d", i), fmt.Sprintf("05200000%02d", i)); err != nil {
			t.Fatalf("Register %d: %v", i, err)
		}
	}

	page1, err := us.List(ctx, 1, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page1.Items) != 10 {
		t.Fatalf("items: want=10 got=%d", len(page1.Items))
	}
	if page1.Total != 25 {
		t.Fatalf("total: want=25 got=%d", page1.Total)
	}
	if page1.Pages != 3 {
		t.Fatalf("pages: want=3 got=%d", page1.Pages)
	}

	page3, err := us.List(ctx, 3, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page3.Items) != 5 {
		t.Fatalf("last page items: want=5 got=%d", len(page3.Items))
	}

	clamped, err := us.List(ctx, 1, 1000)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if clamped.PageSize != 50 {
		t.Fatalf("pageSize: want=50 got=%d", clamped.PageSize)
	}
	if len(clamped.Items) != 25 {
		t.Fatalf("items: want=25 got=%d", len(clamped.Items))
	}
}

func TestUpdateUserEmptyPayloadRejected(t *testing.T) {
	us, _ := newUserService(t)
	ctx := context.Background()

	user, err := us.Register(ctx, "Omer", "0531234567")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, err = us.Update(ctx, user.ID, UpdateUserInput{})
	assertStatus(t, err, http.StatusBadRequest)
}

func TestUpdateUserPhoneConflict(t *testing.T) {
	us, _ := newUserService(t)
	ctx := context.Background()

	if _, err := us.Register(ctx, "A", "0530000001"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	second, err := us.Register(ctx, "B", "0530000002")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	phone := "053 000 0001"
	_, err = us.Update(ctx, second.ID, UpdateUserInput{Phone: &phone})
	assertStatus(t, err, http.StatusConflict)

	// updating to its own phone is not a conflict
	own := "053 000 0002"
	updated, err := us.Update(ctx, second.ID, UpdateUserInput{Phone: &own})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Phone != "0530000002" {
		t.Fatalf("phone: got=%q", updated.Phone)
	}
}

func TestUpdateMissingUser(t *testing.T) {
	us, _ := newUserService(t)
	name := "Ghost"
	_, err := us.Update(context.Background(), 9999, UpdateUserInput{Name: &name})
	assertStatus(t, err, http.StatusNotFound)
}

func TestDeleteUser(t *testing.T) {
	us, _ := newUserService(t)
	ctx := context.Background()

	user, err := us.Register(ctx, "Temp", "0549998877")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := us.Delete(ctx, user.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	_, err = us.GetByID(ctx, user.ID)
	assertStatus(t, err, http.StatusNotFound)

	err = us.Delete(ctx, user.ID)
	assertStatus(t, err, http.StatusNotFound)
}
