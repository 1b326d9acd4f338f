package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"urban-match/internal/domain"
)

func TestUserServiceCreateTrimsAndCleans(t *testing.T) {
	svc := NewUserService(newStubUserRepository())

	user, err := svc.Create(context.Background(), domain.User{
		ID:        55,
		Name:      "  Pooja Reddy ",
		Age:       24,
		Gender:    "female",
		Email:     "pooja.reddy@email.com",
		City:      " Bangalore",
		Interests: []string{"Cooking", " travel ", "", "cooking"},
	})
	require.NoError(t, err)

	assert.EqualValues(t, 1, user.ID)
	assert.Equal(t, "Pooja Reddy", user.Name)
	assert.Equal(t, "Bangalore", user.City)
	assert.Equal(t, []string{"Cooking", "travel"}, user.Interests)
}

func TestUserServiceCreateValidation(t *testing.T) {
	svc := NewUserService(newStubUserRepository())
	valid := domain.User{Name: "a", Age: 1, Gender: "male", Email: "a@x.io", City: "Pune"}

	tests := []struct {
		name  string
		edit  func(*domain.User)
		field string
	}{
		{name: "blank name", edit: func(u *domain.User) { u.Name = "  " }, field: "name"},
		{name: "negative age", edit: func(u *domain.User) { u.Age = -1 }, field: "age"},
		{name: "blank gender", edit: func(u *domain.User) { u.Gender = "" }, field: "gender"},
		{name: "blank email", edit: func(u *domain.User) { u.Email = "" }, field: "email"},
		{name: "blank city", edit: func(u *domain.User) { u.City = "" }, field: "city"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := valid
			tt.edit(&u)
			_, err := svc.Create(context.Background(), u)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestUserServiceGetMissing(t *testing.T) {
	svc := NewUserService(newStubUserRepository())

	_, err := svc.Get(context.Background(), 3)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserServiceList(t *testing.T) {
	repo := newStubUserRepository()
	for i := 0; i < 120; i++ {
		repo.Create(context.Background(), &domain.User{Name: "u"})
	}
	svc := NewUserService(repo)
	ctx := context.Background()

	page, err := svc.List(ctx, 0, DefaultListLimit)
	require.NoError(t, err)
	assert.Len(t, page, 10)
	assert.EqualValues(t, 1, page[0].ID)

	page, err = svc.List(ctx, 5, 1000)
	require.NoError(t, err)
	assert.Len(t, page, MaxListLimit)
	assert.EqualValues(t, 6, page[0].ID)

	page, err = svc.List(ctx, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, page)

	_, err = svc.List(ctx, -1, 10)
	assert.Error(t, err)
	_, err = svc.List(ctx, 0, -1)
	assert.Error(t, err)
}

func TestUserServiceUpdate(t *testing.T) {
	repo := newStubUserRepository(domain.User{Name: "Vikram", Age: 30, Gender: "male", Email: "v@x.io", City: "Bangalore", Interests: []string{"Gaming"}})
	svc := NewUserService(repo)
	ctx := context.Background()

	age := 31
	user, err := svc.Update(ctx, 1, domain.UserPatch{Age: &age, Interests: []string{" Stock Market", "gaming"}})
	require.NoError(t, err)
	assert.Equal(t, 31, user.Age)
	assert.Equal(t, []string{"Gaming", "Stock Market"}, user.Interests)

	blank := " "
	_, err = svc.Update(ctx, 1, domain.UserPatch{City: &blank})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "city", verr.Field)

	unchanged, err := svc.Update(ctx, 1, domain.UserPatch{})
	require.NoError(t, err)
	assert.Equal(t, 31, unchanged.Age)

	_, err = svc.Update(ctx, 9, domain.UserPatch{Age: &age})
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = svc.Update(ctx, 9, domain.UserPatch{})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserServiceDelete(t *testing.T) {
	svc := NewUserService(newStubUserRepository(domain.User{Name: "a"}))
	ctx := context.Background()

	require.NoError(t, svc.Delete(ctx, 1))
	assert.ErrorIs(t, svc.Delete(ctx, 1), ErrUserNotFound)
}
