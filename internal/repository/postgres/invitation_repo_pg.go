package postgres

import (
	"context"
	"time"

	"github.com/cwrk-planet/chat-service/internal/domain"
	"github.com/cwrk-planet/chat-service/internal/repository"
	"github.com/cwrk-planet/chat-service/internal/repository/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// casStatus: 0 строк - либо записи нет, либо статус уже другой
func casStatus(ctx context.Context, q querier, tag pgconn.CommandTag, err error, existsSQL string, key any) error {
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	ok, err := exists(ctx, q, existsSQL, key)
	if err != nil {
		return err
	}
	if !ok {
		return repository.ErrNotFound
	}
	return repository.ErrConflict
}

type ImInvitationRepo struct {
	q querier
}

var _ repository.ImInvitationRepository = (*ImInvitationRepo)(nil)

func (r *ImInvitationRepo) Create(ctx context.Context, inv *domain.ImInvitation) error {
	_, err := r.q.Exec(ctx, queries.QueryCreateImInvitation, inv.Token, inv.Status, inv.CreatedAt, inv.ExpiresAt)
	return mapPgError(err)
}

func (r *ImInvitationRepo) GetByToken(ctx context.Context, token uuid.UUID) (*domain.ImInvitation, error) {
	var inv domain.ImInvitation
	err := r.q.QueryRow(ctx, queries.QueryGetImInvitation, token).
		Scan(&inv.Token, &inv.Status, &inv.CreatedAt, &inv.ExpiresAt)
	if err != nil {
		return nil, mapPgError(err)
	}
	return &inv, nil
}

func (r *ImInvitationRepo) UpdateStatus(ctx context.Context, token uuid.UUID, from, to domain.InvitationStatus) error {
	tag, err := r.q.Exec(ctx, queries.QueryUpdateImInvitationStatus, token, from, to)
	return casStatus(ctx, r.q, tag, err, queries.QueryExistsImInvitation, token)
}

type ChannelInvitationRepo struct {
	q querier
}

var _ repository.ChannelInvitationRepository = (*ChannelInvitationRepo)(nil)

func scanChannelInvitation(row pgx.Row) (domain.ChannelInvitation, error) {
	var i domain.ChannelInvitation
	err := row.Scan(
		&i.ID, &i.ChannelID, &i.ChannelName,
		&i.Inviter.ID, &i.Inviter.Name,
		&i.Invitee.ID, &i.Invitee.Name,
		&i.Status, &i.Role, &i.CreatedAt, &i.ExpiresAt,
	)
	return i, err
}

func (r *ChannelInvitationRepo) Create(ctx context.Context, inv *domain.ChannelInvitation) (domain.InvitationID, error) {
	var id domain.InvitationID
	err := r.q.QueryRow(ctx, queries.QueryCreateChannelInvitation,
		inv.ChannelID, inv.Inviter.ID, inv.Invitee.ID, inv.Status, inv.Role, inv.CreatedAt, inv.ExpiresAt,
	).Scan(&id)
	if err != nil {
		return 0, mapPgError(err)
	}
	return id, nil
}

func (r *ChannelInvitationRepo) GetByID(ctx context.Context, id domain.InvitationID) (*domain.ChannelInvitation, error) {
	inv, err := scanChannelInvitation(r.q.QueryRow(ctx, queries.QueryGetChannelInvitation, id))
	if err != nil {
		return nil, mapPgError(err)
	}
	return &inv, nil
}

func (r *ChannelInvitationRepo) ListReceived(ctx context.Context, userID domain.UserID, status domain.InvitationStatus, now time.Time, page domain.PageRequest) (domain.Page[domain.ChannelInvitation], error) {
	return queryPage(ctx, r.q,
		queries.QueryCountReceivedInvitations, queries.QueryListReceivedInvitations,
		page, scanChannelInvitation, userID, status, now,
	)
}

func (r *ChannelInvitationRepo) ListByChannel(ctx context.Context, channelID domain.ChannelID, page domain.PageRequest) (domain.Page[domain.ChannelInvitation], error) {
	return queryPage(ctx, r.q,
		queries.QueryCountChannelInvitations, queries.QueryListChannelInvitations,
		page, scanChannelInvitation, channelID,
	)
}

func (r *ChannelInvitationRepo) ExistsPending(ctx context.Context, channelID domain.ChannelID, inviteeID domain.UserID, now time.Time) (bool, error) {
	return exists(ctx, r.q, queries.QueryExistsPendingInvitation, channelID, inviteeID, now)
}

func (r *ChannelInvitationRepo) UpdateStatus(ctx context.Context, id domain.InvitationID, from, to domain.InvitationStatus) error {
	tag, err := r.q.Exec(ctx, queries.QueryUpdateChannelInvitationStatus, id, from, to)
	return casStatus(ctx, r.q, tag, err, queries.QueryExistsChannelInvitation, id)
}

func (r *ChannelInvitationRepo) Delete(ctx context.Context, id domain.InvitationID) error {
	return affectedOne(r.q.Exec(ctx, queries.QueryDeleteChannelInvitation, id))
}
