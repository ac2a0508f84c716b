package users

import (
	"context"
	"sync"
	"testing"
	"time"

	"quickbite-backend/internal/models"
	emailSvc "quickbite-backend/pkg/email"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// fakeRepo backs the user service with maps. The address methods reproduce
// the repository's rules: the first address is always the default, and the
// default switch flips every row for the user in one step.
type fakeRepo struct {
	mu           sync.Mutex
	usersByEmail map[string]*models.User
	addresses    map[string]*models.Address
	nextID       int
	resetTokens  map[string]string // token -> userID
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		usersByEmail: make(map[string]*models.User),
		addresses:    make(map[string]*models.Address),
		resetTokens:  make(map[string]string),
	}
}

func (f *fakeRepo) FindByID(ctx context.Context, userID string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.usersByEmail {
		if u.ID == userID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.usersByEmail[email]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeRepo) FindByPasswordResetToken(ctx context.Context, token string) (*models.User, error) {
	f.mu.Lock()
	userID, ok := f.resetTokens[token]
	f.mu.Unlock()
	if !ok {
		return nil, models.ErrInvalidToken
	}
	return f.FindByID(context.Background(), userID)
}

func (f *fakeRepo) Create(ctx context.Context, user *models.User, passwordHash string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.usersByEmail[user.Email]; exists {
		return nil, models.ErrConflict
	}
	f.nextID++
	cp := *user
	cp.ID = "user-" + time.Now().Format("150405") + "-" + string(rune('a'+f.nextID))
	cp.PasswordHash = passwordHash
	cp.CreatedAt = time.Now()
	f.usersByEmail[cp.Email] = &cp
	out := cp
	return &out, nil
}

func (f *fakeRepo) CreateOAuthUser(ctx context.Context, user *models.User) (*models.User, error) {
	return f.Create(ctx, user, "")
}

func (f *fakeRepo) Update(ctx context.Context, userID string, data models.UserUpdateData) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.usersByEmail {
		if u.ID == userID {
			if data.Name != nil {
				u.Name = *data.Name
			}
			if data.Phone != nil {
				u.Phone = *data.Phone
			}
			cp := *u
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeRepo) SetPasswordResetToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resetTokens[token] = userID
	return nil
}

func (f *fakeRepo) UpdatePasswordAndClearResetToken(ctx context.Context, userID, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.usersByEmail {
		if u.ID == userID {
			u.PasswordHash = passwordHash
			for tok, uid := range f.resetTokens {
				if uid == userID {
					delete(f.resetTokens, tok)
				}
			}
			return nil
		}
	}
	return models.ErrNotFound
}

func (f *fakeRepo) ListAddresses(ctx context.Context, userID string) ([]models.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Address{}
	for _, a := range f.addresses {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeRepo) FindAddress(ctx context.Context, userID, addressID string) (*models.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.addresses[addressID]
	if !ok || a.UserID != userID {
		return nil, models.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeRepo) CountAddresses(ctx context.Context, userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, a := range f.addresses {
		if a.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) AddAddress(ctx context.Context, userID string, req models.AddAddressRequest) (*models.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	addr := &models.Address{
		ID:            "addr-" + string(rune('a'+f.nextID)),
		UserID:        userID,
		Label:         req.Label,
		StreetAddress: req.StreetAddress,
		IsDefault:     req.IsDefault,
		CreatedAt:     time.Now(),
	}
	existing := 0
	for _, a := range f.addresses {
		if a.UserID == userID {
			existing++
		}
	}
	if existing == 0 {
		addr.IsDefault = true
	} else if addr.IsDefault {
		for _, a := range f.addresses {
			if a.UserID == userID {
				a.IsDefault = false
			}
		}
	}
	f.addresses[addr.ID] = addr
	cp := *addr
	return &cp, nil
}

func (f *fakeRepo) UpdateAddress(ctx context.Context, userID, addressID string, req models.UpdateAddressRequest) (*models.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.addresses[addressID]
	if !ok || a.UserID != userID {
		return nil, models.ErrNotFound
	}
	if req.Label != "" {
		a.Label = req.Label
	}
	if req.StreetAddress != "" {
		a.StreetAddress = req.StreetAddress
	}
	cp := *a
	return &cp, nil
}

// SetDefaultAddress mirrors the single-statement switch: every row for the
// user is rewritten so exactly one ends up default.
func (f *fakeRepo) SetDefaultAddress(ctx context.Context, userID, addressID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	target, ok := f.addresses[addressID]
	if !ok || target.UserID != userID {
		return models.ErrNotFound
	}
	for _, a := range f.addresses {
		if a.UserID == userID {
			a.IsDefault = a.ID == addressID
		}
	}
	return nil
}

func (f *fakeRepo) DeleteAddress(ctx context.Context, userID, addressID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.addresses[addressID]
	if !ok || a.UserID != userID {
		return models.ErrNotFound
	}
	delete(f.addresses, addressID)
	return nil
}

// fakeEmailer swallows outgoing mail.
type fakeEmailer struct{}

func (fakeEmailer) SendEmail(ctx context.Context, to, subject, plainTextContent, htmlContent string) error {
	return nil
}

func newTestService(t *testing.T, repo RepositoryInterface) ServiceInterface {
	t.Helper()
	tm, err := emailSvc.NewTemplateManager()
	require.NoError(t, err)
	return NewService(repo, fakeEmailer{}, tm, "test-secret", "http://localhost:3000", nil)
}

func TestSignupAndLogin(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo)

	resp, err := svc.Signup(context.Background(), models.SignupRequest{
		Name:     "Dana",
		Email:    "dana@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, models.RoleCustomer, resp.User.Role)

	login, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "dana@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, login.User.ID)

	_, err = svc.Login(context.Background(), models.LoginRequest{
		Email:    "dana@example.com",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestSignupDuplicateEmail(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo)

	req := models.SignupRequest{Name: "Dana", Email: "dana@example.com", Password: "correct horse"}
	_, err := svc.Signup(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.Signup(context.Background(), req)
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestLoginUnknownEmailHidesExistence(t *testing.T) {
	svc := newTestService(t, newFakeRepo())

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "ghost@example.com",
		Password: "whatever",
	})
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestPasswordResetFlow(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo)

	_, err := svc.Signup(context.Background(), models.SignupRequest{
		Name: "Dana", Email: "dana@example.com", Password: "old password",
	})
	require.NoError(t, err)

	// Unknown addresses are silently accepted.
	require.NoError(t, svc.RequestPasswordReset(context.Background(), "ghost@example.com"))
	assert.Empty(t, repo.resetTokens)

	require.NoError(t, svc.RequestPasswordReset(context.Background(), "dana@example.com"))
	require.Len(t, repo.resetTokens, 1)
	var token string
	for tok := range repo.resetTokens {
		token = tok
	}

	resp, err := svc.ResetPassword(context.Background(), token, "new password")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)

	// Token is single-use.
	_, err = svc.ResetPassword(context.Background(), token, "another one")
	assert.ErrorIs(t, err, models.ErrInvalidToken)

	user, err := repo.FindByEmail(context.Background(), "dana@example.com")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("new password")))
}

func TestFirstAddressBecomesDefault(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo)

	addr, err := svc.AddAddress(context.Background(), "user-1", models.AddAddressRequest{
		Label:         "Home",
		StreetAddress: "123 Main Street, Springfield",
		IsDefault:     false,
	})
	require.NoError(t, err)
	assert.True(t, addr.IsDefault)
}

func TestSetDefaultAddressLeavesExactlyOneDefault(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo)

	first, err := svc.AddAddress(context.Background(), "user-1", models.AddAddressRequest{
		Label: "Home", StreetAddress: "123 Main Street, Springfield",
	})
	require.NoError(t, err)
	second, err := svc.AddAddress(context.Background(), "user-1", models.AddAddressRequest{
		Label: "Work", StreetAddress: "456 Office Park, Springfield",
	})
	require.NoError(t, err)
	assert.True(t, first.IsDefault)
	assert.False(t, second.IsDefault)

	require.NoError(t, svc.SetDefaultAddress(context.Background(), "user-1", second.ID))

	addrs, err := svc.ListAddresses(context.Background(), "user-1")
	require.NoError(t, err)
	defaults := 0
	for _, a := range addrs {
		if a.IsDefault {
			defaults++
			assert.Equal(t, second.ID, a.ID)
		}
	}
	assert.Equal(t, 1, defaults)
}

func TestSetDefaultAddressUnknown(t *testing.T) {
	svc := newTestService(t, newFakeRepo())

	err := svc.SetDefaultAddress(context.Background(), "user-1", "nope")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestDeleteDefaultAddressBlockedWhileOthersExist(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo)

	first, err := svc.AddAddress(context.Background(), "user-1", models.AddAddressRequest{
		Label: "Home", StreetAddress: "123 Main Street, Springfield",
	})
	require.NoError(t, err)
	second, err := svc.AddAddress(context.Background(), "user-1", models.AddAddressRequest{
		Label: "Work", StreetAddress: "456 Office Park, Springfield",
	})
	require.NoError(t, err)

	err = svc.DeleteAddress(context.Background(), "user-1", first.ID)
	assert.ErrorIs(t, err, models.ErrDefaultAddressInUse)

	// Non-default addresses delete freely.
	require.NoError(t, svc.DeleteAddress(context.Background(), "user-1", second.ID))

	// With the alternative gone the default is the sole address and may go too.
	require.NoError(t, svc.DeleteAddress(context.Background(), "user-1", first.ID))
}

func TestDeleteAddressScopedToOwner(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo)

	addr, err := svc.AddAddress(context.Background(), "user-1", models.AddAddressRequest{
		Label: "Home", StreetAddress: "123 Main Street, Springfield",
	})
	require.NoError(t, err)

	err = svc.DeleteAddress(context.Background(), "user-2", addr.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}
