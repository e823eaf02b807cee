package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cwrk-planet/chat-service/internal/domain"
	"github.com/cwrk-planet/chat-service/internal/errs"
	"github.com/cwrk-planet/chat-service/internal/repository"
	"github.com/cwrk-planet/chat-service/internal/security"

	"github.com/google/uuid"
)

type AuthConfig struct {
	SessionTTL         time.Duration
	AccessTTL          time.Duration
	RefreshTTL         time.Duration
	MaxSessionsPerUser int // 0 - без ограничения
	Password           domain.PasswordPolicy
	Bcrypt             security.BcryptConfig
	BootstrapTTL       time.Duration
}

// Tokens - пара токенов одной сессии
type Tokens struct {
	SessionID        domain.SessionID
	AccessToken      string // подписанный JWT для cookie
	AccessExpiresAt  time.Time
	RefreshToken     uuid.UUID
	RefreshExpiresAt time.Time
}

type LoginResult struct {
	User   *domain.User
	Tokens *Tokens
}

// Principal - аутентифицированный пользователь запроса
type Principal struct {
	User      domain.User
	SessionID domain.SessionID
	TokenID   uuid.UUID
}

type AuthService struct {
	store repository.Store
	jwt   *security.JWTSigner
	cfg   AuthConfig
	now   func() time.Time
}

func NewAuthService(store repository.Store, jwt *security.JWTSigner, cfg AuthConfig, now func() time.Time) *AuthService {
	if cfg.BootstrapTTL <= 0 {
		cfg.BootstrapTTL = domain.DefaultInvitationTTL
	}

	return &AuthService{
		store: store,
		jwt:   jwt,
		cfg:   cfg,
		now:   orNow(now),
	}
}

// Signup создаёт пользователя по одноразовому коду приглашения
func (s *AuthService) Signup(ctx context.Context, name, email, password, invitationCode string) (*domain.User, error) {
	n, err := domain.NewName(name)
	if err != nil {
		return nil, err
	}
	e, err := domain.NewEmail(email)
	if err != nil {
		return nil, err
	}
	p, err := domain.NewPassword(password, s.cfg.Password)
	if err != nil {
		return nil, err
	}
	code, err := uuid.Parse(invitationCode)
	if err != nil {
		return nil, errs.ErrImInvitationNotFound
	}

	hash, err := security.HashPassword(p, s.cfg.Bcrypt)
	if err != nil {
		return nil, fail("auth.signup.hashPassword", err)
	}

	now := s.now()
	var user *domain.User
	err = s.store.WithinTx(ctx, func(r repository.Repositories) error {
		inv, err := r.ImInvitations.GetByToken(ctx, code)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return errs.ErrImInvitationNotFound
			}
			return fail("auth.signup.getInvitation", err)
		}
		if inv.IsExpired(now) && inv.Status == domain.InvitationPending {
			return errs.ErrImInvitationExpired
		}
		if err := inv.Use(); err != nil {
			return errs.ErrImInvitationUsed
		}

		taken, err := r.Users.ExistsByName(ctx, n)
		if err != nil {
			return fail("auth.signup.existsByName", err)
		}
		if taken {
			return errs.ErrUsernameTaken
		}
		taken, err = r.Users.ExistsByEmail(ctx, e)
		if err != nil {
			return fail("auth.signup.existsByEmail", err)
		}
		if taken {
			return errs.ErrEmailTaken
		}

		u, err := domain.NewUser(n, e, hash, now)
		if err != nil {
			return err
		}
		id, err := r.Users.Create(ctx, u)
		if err != nil {
			if errors.Is(err, repository.ErrAlreadyExists) {
				return errs.ErrUsernameTaken
			}
			return fail("auth.signup.createUser", err)
		}
		u.ID = id

		if err := r.ImInvitations.UpdateStatus(ctx, code, domain.InvitationPending, inv.Status); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return errs.ErrImInvitationUsed
			}
			return fail("auth.signup.useInvitation", err)
		}

		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("auth.signup user created", slog.Int64("user_id", int64(user.ID)))
	return user, nil
}

// Login аутентифицирует по имени+пароль и открывает новую сессию
func (s *AuthService) Login(ctx context.Context, name, password string) (*LoginResult, error) {
	n, err := domain.NewName(name)
	if err != nil {
		return nil, errs.ErrInvalidCredentials
	}

	u, err := s.store.Repositories().Users.GetByName(ctx, n)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.ErrInvalidCredentials
		}
		return nil, fail("auth.login.getByName", err)
	}

	ok, err := security.ComparePassword(u.PasswordHash, password)
	if err != nil {
		return nil, fail("auth.login.comparePassword", err)
	}
	if !ok {
		return nil, errs.ErrInvalidCredentials
	}

	now := s.now()
	sess, err := domain.NewSession(u.ID, now.Add(s.cfg.SessionTTL), now)
	if err != nil {
		return nil, fail("auth.login.newSession", err)
	}

	var tokens *Tokens
	err = s.store.WithinTx(ctx, func(r repository.Repositories) error {
		id, err := r.Sessions.CreateSession(ctx, sess)
		if err != nil {
			return fail("auth.login.createSession", err)
		}
		sess.ID = id

		tokens, err = s.issueTokens(ctx, r, sess, now)
		if err != nil {
			return err
		}

		if s.cfg.MaxSessionsPerUser > 0 {
			if _, err := r.Sessions.DeleteOldestSessions(ctx, u.ID, s.cfg.MaxSessionsPerUser); err != nil {
				return fail("auth.login.deleteOldestSessions", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &LoginResult{User: u, Tokens: tokens}, nil
}

// Refresh меняет refresh-токен на новую пару в той же сессии; старый токен удаляется
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*Tokens, error) {
	token, err := uuid.Parse(refreshToken)
	if err != nil {
		return nil, errs.ErrInvalidRefreshToken
	}

	repos := s.store.Repositories()
	now := s.now()

	rt, err := repos.Sessions.GetRefreshToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.ErrInvalidRefreshToken
		}
		return nil, fail("auth.refresh.getRefreshToken", err)
	}
	if rt.IsExpired(now) {
		if err := repos.Sessions.DeleteRefreshToken(ctx, token); err != nil && !errors.Is(err, repository.ErrNotFound) {
			slog.Warn("auth.refresh.deleteExpiredToken failed", slog.Any("err", err))
		}
		return nil, errs.ErrRefreshTokenExpired
	}

	sess, err := repos.Sessions.GetSession(ctx, rt.SessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.ErrInvalidRefreshToken
		}
		return nil, fail("auth.refresh.getSession", err)
	}
	if sess.IsExpired(now) {
		if err := repos.Sessions.DeleteSession(ctx, sess.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			slog.Warn("auth.refresh.deleteExpiredSession failed", slog.Any("err", err))
		}
		return nil, errs.ErrSessionExpired
	}

	var tokens *Tokens
	err = s.store.WithinTx(ctx, func(r repository.Repositories) error {
		// параллельная ротация уже забрала этот токен
		if err := r.Sessions.DeleteRefreshToken(ctx, token); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return errs.ErrInvalidRefreshToken
			}
			return fail("auth.refresh.deleteRefreshToken", err)
		}

		tokens, err = s.issueTokens(ctx, r, sess, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	return tokens, nil
}

// Logout закрывает сессию access-токена вместе со всеми её токенами
func (s *AuthService) Logout(ctx context.Context, accessToken string) error {
	p, err := s.Authenticate(ctx, accessToken)
	if err != nil {
		return err
	}

	if err := s.store.Repositories().Sessions.DeleteSession(ctx, p.SessionID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fail("auth.logout.deleteSession", err)
	}
	return nil
}

// Authenticate проверяет JWT из cookie и затем токен и сессию в хранилище
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*Principal, error) {
	if accessToken == "" {
		return nil, errs.ErrUnauthenticated
	}

	now := s.now()
	claims, err := s.jwt.ParseAndValidate(accessToken, now)
	if err != nil {
		if errors.Is(err, errs.ErrAccessTokenExpired) {
			return nil, errs.ErrAccessTokenExpired
		}
		return nil, errs.ErrInvalidAccessToken
	}
	tokenID, err := security.TokenID(claims)
	if err != nil {
		return nil, errs.ErrInvalidAccessToken
	}
	userID, err := security.SubjectAsUserID(claims)
	if err != nil {
		return nil, errs.ErrInvalidAccessToken
	}

	repos := s.store.Repositories()

	at, err := repos.Sessions.GetAccessToken(ctx, tokenID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.ErrInvalidAccessToken
		}
		return nil, fail("auth.authenticate.getAccessToken", err)
	}
	if at.IsExpired(now) {
		return nil, errs.ErrAccessTokenExpired
	}

	sess, err := repos.Sessions.GetSession(ctx, at.SessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.ErrInvalidAccessToken
		}
		return nil, fail("auth.authenticate.getSession", err)
	}
	if sess.UserID != userID {
		return nil, errs.ErrInvalidAccessToken
	}
	if sess.IsExpired(now) {
		return nil, errs.ErrSessionExpired
	}

	u, err := repos.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.ErrInvalidAccessToken
		}
		return nil, fail("auth.authenticate.getUser", err)
	}

	return &Principal{User: *u, SessionID: sess.ID, TokenID: tokenID}, nil
}

// CreateImInvitation выпускает код регистрации; без expiresAt - на сутки
func (s *AuthService) CreateImInvitation(ctx context.Context, user domain.UserID, expiresAt *time.Time) (*domain.ImInvitation, error) {
	now := s.now()
	exp, err := domain.ResolveInvitationExpiry(expiresAt, now)
	if err != nil {
		return nil, err
	}

	inv, err := domain.NewImInvitation(exp, now)
	if err != nil {
		return nil, err
	}
	if err := s.store.Repositories().ImInvitations.Create(ctx, inv); err != nil {
		return nil, fail("auth.createImInvitation.create", err)
	}

	slog.Info("auth.im invitation created",
		slog.Int64("user_id", int64(user)),
		slog.Time("expires_at", inv.ExpiresAt),
	)
	return inv, nil
}

func (s *AuthService) GetImInvitation(ctx context.Context, code string) (*domain.ImInvitation, error) {
	token, err := uuid.Parse(code)
	if err != nil {
		return nil, errs.ErrImInvitationNotFound
	}

	inv, err := s.store.Repositories().ImInvitations.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.ErrImInvitationNotFound
		}
		return nil, fail("auth.getImInvitation.getByToken", err)
	}
	return inv, nil
}

// EnsureBootstrapInvitation: пока нет ни одного пользователя, создаёт код
// для первой регистрации и пишет его в лог. nil - пользователи уже есть.
func (s *AuthService) EnsureBootstrapInvitation(ctx context.Context) (*domain.ImInvitation, error) {
	n, err := s.store.Repositories().Users.Count(ctx)
	if err != nil {
		return nil, fail("auth.bootstrap.countUsers", err)
	}
	if n > 0 {
		return nil, nil
	}

	now := s.now()
	inv, err := domain.NewImInvitation(now.Add(s.cfg.BootstrapTTL), now)
	if err != nil {
		return nil, fail("auth.bootstrap.newInvitation", err)
	}
	if err := s.store.Repositories().ImInvitations.Create(ctx, inv); err != nil {
		return nil, fail("auth.bootstrap.create", err)
	}

	slog.Warn("no users yet, use this invitation code to sign up",
		slog.String("code", inv.Token.String()),
		slog.Time("expires_at", inv.ExpiresAt),
	)
	return inv, nil
}

// issueTokens сохраняет новую пару токенов сессии и подписывает access JWT
func (s *AuthService) issueTokens(ctx context.Context, r repository.Repositories, sess *domain.Session, now time.Time) (*Tokens, error) {
	at := domain.NewAccessToken(sess, s.cfg.AccessTTL, now)
	rt := domain.NewRefreshToken(sess, s.cfg.RefreshTTL, now)

	if err := r.Sessions.CreateAccessToken(ctx, at); err != nil {
		return nil, fail("auth.issueTokens.createAccessToken", err)
	}
	if err := r.Sessions.CreateRefreshToken(ctx, rt); err != nil {
		return nil, fail("auth.issueTokens.createRefreshToken", err)
	}

	signed, err := s.jwt.SignAccessToken(sess.UserID, at.Token, at.ExpiresAt, now)
	if err != nil {
		return nil, fail("auth.issueTokens.sign", err)
	}

	return &Tokens{
		SessionID:        sess.ID,
		AccessToken:      signed,
		AccessExpiresAt:  at.ExpiresAt,
		RefreshToken:     rt.Token,
		RefreshExpiresAt: rt.ExpiresAt,
	}, nil
}
