package usecase

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/otpgate/internal/identity/entity"
	otpuc "github.com/shandysiswandi/otpgate/internal/otp/usecase"
	"github.com/shandysiswandi/otpgate/internal/pkg/clock"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/shandysiswandi/otpgate/internal/pkg/hash"
	"github.com/shandysiswandi/otpgate/internal/pkg/idempotency"
	"github.com/shandysiswandi/otpgate/internal/pkg/jwt"
	"github.com/shandysiswandi/otpgate/internal/pkg/validator"
	"golang.org/x/crypto/bcrypt"
)

var testNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type fakeRepo struct {
	mu    sync.Mutex
	users map[int64]*entity.User
	err   error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: map[int64]*entity.User{}}
}

func (f *fakeRepo) byEmail(email string) *entity.User {
	for _, u := range f.users {
		if u.Email == email && u.DeletedAt == nil {
			return u
		}
	}
	return nil
}

func (f *fakeRepo) GetUserByEmail(_ context.Context, email string, _ bool) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	u := f.byEmail(email)
	if u == nil {
		return nil, goerror.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeRepo) GetUserByID(_ context.Context, id int64, _ bool) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok || u.DeletedAt != nil {
		return nil, goerror.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeRepo) GetUserList(_ context.Context, fl entity.UserListFilter) ([]entity.User, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []entity.User
	for _, u := range f.users {
		if u.Status == fl.Status && u.DeletedAt == nil {
			all = append(all, *u)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })

	total := int64(len(all))
	start := min(int(fl.Offset), len(all))
	end := min(start+int(fl.Limit), len(all))
	return all[start:end], total, nil
}

func (f *fakeRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	return f.byEmail(email) != nil, nil
}

func (f *fakeRepo) CreateUser(_ context.Context, in entity.NewUser) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.byEmail(in.Email) != nil {
		return goerror.ErrConflict
	}
	f.users[in.ID] = &entity.User{
		ID:           in.ID,
		Email:        in.Email,
		Name:         in.Name,
		Phone:        in.Phone,
		Profession:   in.Profession,
		PasswordHash: in.PasswordHash,
		Status:       in.Status,
		CreatedAt:    testNow,
		UpdatedAt:    testNow,
	}
	return nil
}

func (f *fakeRepo) MarkVerified(_ context.Context, email string, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := f.byEmail(email)
	if u == nil || u.Status != entity.UserStatusUnverified {
		return false, nil
	}
	u.Status = entity.UserStatusActive
	u.VerifiedAt = &at
	return true, nil
}

func (f *fakeRepo) UpdateUser(_ context.Context, in entity.UpdateUser) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[in.ID]
	if !ok || u.DeletedAt != nil {
		return goerror.ErrNotFound
	}
	u.Name, u.Phone, u.Profession = in.Name, in.Phone, in.Profession
	return nil
}

func (f *fakeRepo) MarkUserDeleted(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok || u.DeletedAt != nil {
		return goerror.ErrNotFound
	}
	at := testNow
	u.DeletedAt = &at
	return nil
}

func (f *fakeRepo) put(u entity.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[u.ID] = &u
}

type fakeMessaging struct {
	events []UserVerifiedEvent
	err    error
}

func (f *fakeMessaging) PublishUserVerified(_ context.Context, msg UserVerifiedEvent) error {
	f.events = append(f.events, msg)
	return f.err
}

type fakeOTP struct {
	issued    []otpuc.IssueInput
	resent    []otpuc.ResendInput
	verified  []otpuc.VerifyInput
	issueErr  error
	verifyErr error
}

func (f *fakeOTP) Issue(_ context.Context, in otpuc.IssueInput) (*otpuc.IssueOutput, error) {
	f.issued = append(f.issued, in)
	if f.issueErr != nil {
		return nil, f.issueErr
	}
	return &otpuc.IssueOutput{Subject: in.Subject, ExpiresIn: 300}, nil
}

func (f *fakeOTP) Resend(_ context.Context, in otpuc.ResendInput) (*otpuc.IssueOutput, error) {
	f.resent = append(f.resent, in)
	return &otpuc.IssueOutput{Subject: in.Subject, ExpiresIn: 300}, nil
}

func (f *fakeOTP) Verify(_ context.Context, in otpuc.VerifyInput) error {
	f.verified = append(f.verified, in)
	return f.verifyErr
}

type seqID struct{ n int64 }

func (s *seqID) Generate() int64 {
	s.n++
	return s.n
}

type fixedString string

func (f fixedString) Generate() string { return string(f) }

type fixture struct {
	uc     *Usecase
	repo   *fakeRepo
	msg    *fakeMessaging
	otp    *fakeOTP
	bcrypt *hash.Bcrypt
	jwt    *jwt.Symmetric
}

func newFixture(t *testing.T, idemp idempotency.Idempotency) *fixture {
	t.Helper()

	v, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("validator: %v", err)
	}

	clk := clock.NewManual(testNow)
	tokens, err := jwt.NewHS512(jwt.Config{
		Secret:    []byte(strings.Repeat("s", 64)),
		Issuer:    "otpgate",
		Audiences: []string{"otpgate-api"},
		TTL:       time.Hour,
		Clock:     clk,
		UUID:      fixedString("jti"),
	})
	if err != nil {
		t.Fatalf("jwt: %v", err)
	}

	f := &fixture{
		repo:   newFakeRepo(),
		msg:    &fakeMessaging{},
		otp:    &fakeOTP{},
		bcrypt: hash.NewBcrypt(bcrypt.MinCost, ""),
		jwt:    tokens,
	}
	f.uc = New(Dependency{
		RepoDB:        f.repo,
		RepoMessaging: f.msg,
		OTP:           f.otp,
		Idempotency:   idemp,
		Validator:     v,
		Bcrypt:        f.bcrypt,
		UID:           &seqID{n: 100},
		Clock:         clk,
		JWT:           tokens,
	})
	return f
}

func (f *fixture) seedUser(t *testing.T, id int64, email string, status entity.UserStatus) {
	t.Helper()
	hashed, err := f.bcrypt.Hash("s3cret-pass")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	f.repo.put(entity.User{
		ID:           id,
		Email:        email,
		Name:         "Ada Lovelace",
		Phone:        "+62 812 3456 7890",
		PasswordHash: string(hashed),
		Status:       status,
		CreatedAt:    testNow,
	})
}

func authed(id int64, email string) context.Context {
	return jwt.SetAuth(context.Background(), jwt.Claims{UserID: id, UserEmail: email})
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var gerr *goerror.Error
	if !errors.As(err, &gerr) {
		t.Fatalf("expected *goerror.Error, got %T (%v)", err, err)
	}
	return gerr.StatusCode()
}

func validRegister() RegisterInput {
	return RegisterInput{
		Email:      "  Ada@Example.com ",
		Password:   "s3cret-pass",
		Name:       "Ada Lovelace",
		Phone:      "+62 812 3456 7890",
		Profession: "Engineer",
	}
}

func TestRegister(t *testing.T) {
	// Arrange
	f := newFixture(t, nil)

	// Act
	out, err := f.uc.Register(context.Background(), validRegister())

	// Assert
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if out.Email != "ada@example.com" || out.ExpiresIn != 300 || out.UserID != 101 {
		t.Fatalf("unexpected output %+v", out)
	}
	u, err := f.repo.GetUserByEmail(context.Background(), "ada@example.com", false)
	if err != nil {
		t.Fatalf("user not stored: %v", err)
	}
	if u.Status != entity.UserStatusUnverified {
		t.Fatalf("status = %s, want Unverified", u.Status)
	}
	if u.PasswordHash == "s3cret-pass" || !f.bcrypt.Verify(u.PasswordHash, "s3cret-pass") {
		t.Fatal("password must be stored as a bcrypt hash")
	}
	if len(f.otp.issued) != 1 {
		t.Fatalf("otp issued %d times", len(f.otp.issued))
	}
	if got := f.otp.issued[0]; got.Subject != "ada@example.com" || got.Purpose != "registration" || got.Name != "Ada Lovelace" {
		t.Fatalf("unexpected issue input %+v", got)
	}
}

func TestRegisterAlreadyRegistered(t *testing.T) {
	f := newFixture(t, nil)
	f.seedUser(t, 7, "ada@example.com", entity.UserStatusActive)

	_, err := f.uc.Register(context.Background(), validRegister())

	if got := statusOf(t, err); got != http.StatusConflict {
		t.Fatalf("status = %d, want 409", got)
	}
	if len(f.otp.issued) != 0 {
		t.Fatal("no code may be sent for a registered email")
	}
}

func TestRegisterInvalidInput(t *testing.T) {
	// Arrange
	f := newFixture(t, nil)
	in := RegisterInput{Email: "nope", Password: "short", Name: "R2-D2", Phone: "123"}

	// Act
	_, err := f.uc.Register(context.Background(), in)

	// Assert
	if got := statusOf(t, err); got != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", got)
	}
	var verr validator.V10ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation details, got %v", err)
	}
	for _, field := range []string{"email", "password", "name", "phone"} {
		if _, ok := verr.Values()[field]; !ok {
			t.Fatalf("missing %q in %v", field, verr.Values())
		}
	}
}

func TestRegisterDeliveryFailureKeepsAccount(t *testing.T) {
	// Arrange
	f := newFixture(t, nil)
	f.otp.issueErr = goerror.NewDelivery(errors.New("smtp: 421"), "Failed to send verification code")

	// Act
	_, err := f.uc.Register(context.Background(), validRegister())

	// Assert
	if got := statusOf(t, err); got != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", got)
	}
	if _, err := f.repo.GetUserByEmail(context.Background(), "ada@example.com", false); err != nil {
		t.Fatalf("account should remain pending: %v", err)
	}
}

func TestRegisterIdempotent(t *testing.T) {
	// Arrange
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	f := newFixture(t, idempotency.New(client))

	// Act
	_, first := f.uc.Register(context.Background(), validRegister())
	_, second := f.uc.Register(context.Background(), validRegister())

	// Assert
	if first != nil {
		t.Fatalf("first Register() error = %v", first)
	}
	if got := statusOf(t, second); got != http.StatusConflict {
		t.Fatalf("status = %d, want 409", got)
	}
	if !mr.Exists("idempotency:register:ada@example.com") {
		t.Fatal("expected idempotency key for the normalized email")
	}
	if len(f.otp.issued) != 1 {
		t.Fatalf("otp issued %d times, want 1", len(f.otp.issued))
	}
}

func TestRegisterVerify(t *testing.T) {
	// Arrange
	f := newFixture(t, nil)
	f.seedUser(t, 7, "ada@example.com", entity.UserStatusUnverified)

	// Act
	err := f.uc.RegisterVerify(context.Background(), RegisterVerifyInput{Email: "ADA@example.com", Code: "483920"})

	// Assert
	if err != nil {
		t.Fatalf("RegisterVerify() error = %v", err)
	}
	if got := f.otp.verified[0]; got.Subject != "ada@example.com" || got.Code != "483920" {
		t.Fatalf("unexpected verify input %+v", got)
	}
	u, _ := f.repo.GetUserByID(context.Background(), 7, false)
	if u.Status != entity.UserStatusActive || u.VerifiedAt == nil || !u.VerifiedAt.Equal(testNow) {
		t.Fatalf("user not activated: %+v", u)
	}
	if len(f.msg.events) != 1 || f.msg.events[0].UserID != 7 || f.msg.events[0].Name != "Ada Lovelace" {
		t.Fatalf("unexpected events %+v", f.msg.events)
	}
}

func TestRegisterVerifyRejectedCode(t *testing.T) {
	f := newFixture(t, nil)
	f.seedUser(t, 7, "ada@example.com", entity.UserStatusUnverified)
	f.otp.verifyErr = goerror.NewBusiness("Invalid OTP", goerror.CodeBadRequest)

	err := f.uc.RegisterVerify(context.Background(), RegisterVerifyInput{Email: "ada@example.com", Code: "000000"})

	if got := statusOf(t, err); got != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", got)
	}
	u, _ := f.repo.GetUserByID(context.Background(), 7, false)
	if u.Status != entity.UserStatusUnverified {
		t.Fatal("account must stay unverified")
	}
	if len(f.msg.events) != 0 {
		t.Fatal("no event may be published")
	}
}

func TestRegisterVerifyPublishFailureIsNotFatal(t *testing.T) {
	f := newFixture(t, nil)
	f.seedUser(t, 7, "ada@example.com", entity.UserStatusUnverified)
	f.msg.err = errors.New("broker down")

	if err := f.uc.RegisterVerify(context.Background(), RegisterVerifyInput{Email: "ada@example.com", Code: "483920"}); err != nil {
		t.Fatalf("RegisterVerify() error = %v", err)
	}
}

func TestRegisterVerifyWithoutPendingAccount(t *testing.T) {
	f := newFixture(t, nil)

	err := f.uc.RegisterVerify(context.Background(), RegisterVerifyInput{Email: "ghost@example.com", Code: "483920"})

	if got := statusOf(t, err); got != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", got)
	}
}

func TestRegisterResend(t *testing.T) {
	tests := []struct {
		name     string
		seed     entity.UserStatus
		wantSent bool
	}{
		{name: "pending account", seed: entity.UserStatusUnverified, wantSent: true},
		{name: "verified account", seed: entity.UserStatusActive, wantSent: false},
		{name: "unknown email", seed: entity.UserStatusUnknown, wantSent: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			f := newFixture(t, nil)
			if tt.seed != entity.UserStatusUnknown {
				f.seedUser(t, 7, "ada@example.com", tt.seed)
			}

			// Act
			err := f.uc.RegisterResend(context.Background(), RegisterResendInput{Email: "ada@example.com"})

			// Assert
			if err != nil {
				t.Fatalf("RegisterResend() error = %v", err)
			}
			if sent := len(f.otp.resent) == 1; sent != tt.wantSent {
				t.Fatalf("sent = %v, want %v", sent, tt.wantSent)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name     string
		seed     entity.UserStatus
		password string
		want     int
	}{
		{name: "unknown email", seed: entity.UserStatusUnknown, password: "s3cret-pass", want: http.StatusUnauthorized},
		{name: "wrong password", seed: entity.UserStatusActive, password: "wrong-pass", want: http.StatusUnauthorized},
		{name: "not verified", seed: entity.UserStatusUnverified, password: "s3cret-pass", want: http.StatusForbidden},
		{name: "ok", seed: entity.UserStatusActive, password: "s3cret-pass", want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			f := newFixture(t, nil)
			if tt.seed != entity.UserStatusUnknown {
				f.seedUser(t, 7, "ada@example.com", tt.seed)
			}

			// Act
			out, err := f.uc.Login(context.Background(), LoginInput{Email: "Ada@example.com", Password: tt.password})

			// Assert
			if tt.want != http.StatusOK {
				if got := statusOf(t, err); got != tt.want {
					t.Fatalf("status = %d, want %d", got, tt.want)
				}
				return
			}
			if err != nil {
				t.Fatalf("Login() error = %v", err)
			}
			claims, err := f.jwt.Verify(out.AccessToken)
			if err != nil {
				t.Fatalf("token does not verify: %v", err)
			}
			if claims.UserID != 7 || claims.UserEmail != "ada@example.com" || out.User.ID != 7 {
				t.Fatalf("unexpected login result %+v / %+v", out.User, claims)
			}
		})
	}
}

func TestUserList(t *testing.T) {
	// Arrange
	f := newFixture(t, nil)
	for id := int64(1); id <= 3; id++ {
		f.seedUser(t, id, "u"+string(rune('0'+id))+"@example.com", entity.UserStatusActive)
	}
	f.seedUser(t, 9, "pending@example.com", entity.UserStatusUnverified)

	// Act
	_, unauth := f.uc.UserList(context.Background(), UserListInput{})
	out, err := f.uc.UserList(authed(1, "u1@example.com"), UserListInput{Page: 2, Size: 2})

	// Assert
	if got := statusOf(t, unauth); got != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", got)
	}
	if err != nil {
		t.Fatalf("UserList() error = %v", err)
	}
	if out.Total != 3 || out.Page != 2 || out.Size != 2 {
		t.Fatalf("unexpected paging %+v", out)
	}
	if len(out.Users) != 1 || out.Users[0].ID != 1 {
		t.Fatalf("unexpected page contents %+v", out.Users)
	}
}

func TestUserListDefaultsSize(t *testing.T) {
	f := newFixture(t, nil)

	out, err := f.uc.UserList(authed(1, "u1@example.com"), UserListInput{Size: 5000})

	if err != nil {
		t.Fatalf("UserList() error = %v", err)
	}
	if out.Size != 10 || out.Page != 1 {
		t.Fatalf("unexpected paging %+v", out)
	}
}

func TestUserUpdate(t *testing.T) {
	// Arrange
	f := newFixture(t, nil)
	f.seedUser(t, 7, "ada@example.com", entity.UserStatusActive)
	f.seedUser(t, 8, "bob@example.com", entity.UserStatusActive)
	in := UserUpdateInput{ID: 7, Name: " Ada King ", Phone: "0812 3456 7890", Profession: "Mathematician"}

	// Act
	_, forbidden := f.uc.UserUpdate(authed(8, "bob@example.com"), in)
	user, err := f.uc.UserUpdate(authed(7, "ada@example.com"), in)

	// Assert
	if got := statusOf(t, forbidden); got != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", got)
	}
	if err != nil {
		t.Fatalf("UserUpdate() error = %v", err)
	}
	if user.Name != "Ada King" || user.Profession != "Mathematician" {
		t.Fatalf("unexpected user %+v", user)
	}
}

func TestUserDelete(t *testing.T) {
	// Arrange
	f := newFixture(t, nil)
	f.seedUser(t, 7, "ada@example.com", entity.UserStatusActive)
	ctx := authed(7, "ada@example.com")

	// Act
	first := f.uc.UserDelete(ctx, UserDeleteInput{ID: 7})
	second := f.uc.UserDelete(ctx, UserDeleteInput{ID: 7})
	other := f.uc.UserDelete(ctx, UserDeleteInput{ID: 8})

	// Assert
	if first != nil {
		t.Fatalf("UserDelete() error = %v", first)
	}
	if got := statusOf(t, second); got != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", got)
	}
	if got := statusOf(t, other); got != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", got)
	}
	if _, err := f.repo.GetUserByEmail(context.Background(), "ada@example.com", false); !errors.Is(err, goerror.ErrNotFound) {
		t.Fatalf("deleted user still visible: %v", err)
	}
}
